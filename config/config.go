package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type HTTP struct {
	Addr              string        `default:":8080" envconfig:"ADDR"`
	GinMode           string        `default:"debug" envconfig:"GIN_MODE"`
	ReadTimeout       time.Duration `default:"10s" envconfig:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `default:"10s" envconfig:"WRITE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `default:"5s" envconfig:"READ_HEADER_TIMEOUT"`
	IdleTimeout       time.Duration `default:"60s" envconfig:"IDLE_TIMEOUT"`
	HandlerTimeout    time.Duration `default:"3s" envconfig:"HANDLER_TIMEOUT"`
	GracefulTimeout   time.Duration `default:"5s" envconfig:"GRACEFUL_TIMEOUT"`
}

type Metrics struct {
	Addr string `default:":2112" envconfig:"ADDR"`
}

type Tracing struct {
	Enabled     bool    `default:"false" envconfig:"OTEL_ENABLED"`
	ServiceName string  `default:"catalog-app" envconfig:"OTEL_SERVICE_NAME"`
	Endpoint    string  `default:"jaeger:4318" envconfig:"OTEL_ENDPOINT"`
	SampleRatio float64 `default:"1" envconfig:"OTEL_SAMPLE_RATIO"`
}

// Provider — внешний каталог и параметры governor'а запросов к нему.
type Provider struct {
	BaseURL              string        `default:"http://provider:8081" envconfig:"BASE_URL"`
	Collection           string        `default:"listings" envconfig:"COLLECTION"`
	Timeout              time.Duration `default:"10s" envconfig:"TIMEOUT"`
	MaxRequestsPerMinute int           `default:"60" envconfig:"MAX_REQUESTS_PER_MINUTE"`
	BaseBackoff          time.Duration `default:"1s" envconfig:"BASE_BACKOFF"`
	MaxBackoff           time.Duration `default:"30s" envconfig:"MAX_BACKOFF"`
	RetryAttempts        int           `default:"2" envconfig:"RETRY_ATTEMPTS"`
}

// Feed — режим синхронизации ленты: pull (опрос снимков) или push (Kafka).
type Feed struct {
	Mode     string        `default:"pull" envconfig:"MODE"`
	Interval time.Duration `default:"30s" envconfig:"INTERVAL"`
}

type Kafka struct {
	Brokers        []string      `default:"kafka:9092" envconfig:"BROKERS"`
	Topic          string        `default:"listings" envconfig:"TOPIC"`
	GroupID        string        `default:"catalog" envconfig:"GROUP_ID"`
	StartOffset    string        `default:"last" envconfig:"START_OFFSET"`
	ProcessTimeout time.Duration `default:"5s" envconfig:"PROCESS_TIMEOUT"`
	RetryInitial   time.Duration `default:"1s" envconfig:"RETRY_INITIAL"`
	RetryMax       time.Duration `default:"30s" envconfig:"RETRY_MAX"`
}

type Cache struct {
	Capacity      int           `default:"1000" envconfig:"CAPACITY"`
	TTL           time.Duration `default:"10m" envconfig:"TTL"`
	SweepInterval time.Duration `default:"1m" envconfig:"SWEEP_INTERVAL"`
}

type Logger struct {
	IsProd bool `default:"false" envconfig:"IS_PROD"`
}

type Config struct {
	HTTP     HTTP
	Metrics  Metrics
	Tracing  Tracing
	Provider Provider
	Feed     Feed
	Kafka    Kafka
	Cache    Cache
	Logger   Logger
}

// LoadWithPrefix — читает конфигурацию из окружения с заданным префиксом.
// Отдельный вход нужен тестам: у каждого теста свой префикс, и они не
// мешают друг другу через общее окружение процесса.
func LoadWithPrefix(prefix string) (Config, error) {
	var c Config

	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Load — конфигурация процесса (префикс MARKET).
func Load() (Config, error) {
	return LoadWithPrefix("MARKET")
}
