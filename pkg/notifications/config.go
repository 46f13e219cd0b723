package notifications

import "time"

// Config holds the NOTIFY_* settings shared by Hub and Manager.
type Config struct {
	HeartbeatInterval time.Duration `env:"NOTIFY_HEARTBEAT_INTERVAL" envDefault:"30s"`
	PendingLimit      int           `env:"NOTIFY_PENDING_LIMIT" envDefault:"100"` // 0 disables the limit
	DispatchMode      DispatchMode  `env:"NOTIFY_DISPATCH_MODE" envDefault:"detached"`
	DispatchTimeout   time.Duration `env:"NOTIFY_DISPATCH_TIMEOUT" envDefault:"15s"`
}

func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 30 * time.Second,
		PendingLimit:      100,
		DispatchMode:      DispatchDetached,
		DispatchTimeout:   15 * time.Second,
	}
}
