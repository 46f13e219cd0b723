package logger

import (
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under the key "error".
// A nil error yields an empty Attr, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Recipient records the notification recipient key.
func Recipient(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("recipient", id)
}

// NotificationID records a notification identifier.
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// ConnectionID records the identifier of a live stream connection.
func ConnectionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("connection_id", id)
}

func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Receipt records the provider message id returned by a side channel.
func Receipt(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("receipt", id)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}
