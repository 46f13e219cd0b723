package notifications

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid notification input")
	ErrEmptyChannels        = fmt.Errorf("%w: at least one channel is required", ErrInvalidInput)
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrPersistence          = errors.New("failed to persist notification")
	ErrHubClosed            = errors.New("connection hub is closed")
	ErrNoDispatcher         = errors.New("no dispatcher configured for channel")
	ErrMissingContact       = errors.New("recipient has no address for channel")
	ErrInvalidDispatchMode  = errors.New("invalid dispatch mode")
	ErrChannelOptedOut      = errors.New("recipient opted out of channel")
	ErrQuietHours           = errors.New("channel held back during quiet hours")
)
