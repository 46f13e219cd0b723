package notifications

import "time"

// Config tunes the live stream endpoint.
type Config struct {
	// StreamWriteTimeout bounds each event write so a stalled client fails
	// its connection instead of blocking the hub.
	StreamWriteTimeout time.Duration `env:"NOTIFY_STREAM_WRITE_TIMEOUT" envDefault:"10s"`
	// StreamRetry is the reconnect delay suggested to clients.
	StreamRetry  time.Duration `env:"NOTIFY_STREAM_RETRY" envDefault:"3s"`
	MaxBodyBytes int64         `env:"NOTIFY_MAX_BODY_BYTES" envDefault:"65536"`
}

func DefaultConfig() Config {
	return Config{
		StreamWriteTimeout: 10 * time.Second,
		StreamRetry:        3 * time.Second,
		MaxBodyBytes:       64 << 10,
	}
}
