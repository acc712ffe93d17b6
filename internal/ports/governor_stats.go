package ports

import "time"

// GovernorStats — снимок состояния governor'а для наблюдаемости.
type GovernorStats struct {
	QueueLength      int           `json:"queue_length"`
	WindowCount      int           `json:"window_count"`
	BackedOff        bool          `json:"backed_off"`
	BackoffRemaining time.Duration `json:"backoff_remaining"`
}
