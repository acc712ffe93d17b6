package ports

import "context"

// ConsumerStatus — состояние push-транспорта для наблюдаемости:
// подключение и идентификаторы активной подписки.
type ConsumerStatus struct {
	Connected bool   `json:"connected"`
	Topic     string `json:"topic"`
	GroupID   string `json:"group_id"`
}

type MessageConsumer interface {
	Run(ctx context.Context) error
	Status() ConsumerStatus
	Close() error
}
