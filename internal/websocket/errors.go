package websocket

import "errors"

var (
	ErrHubClosed       = errors.New("hub is closed")
	ErrChannelAuth     = errors.New("channel authorization failed")
	ErrInvalidChannel  = errors.New("invalid channel name")
	ErrTooManyChannels = errors.New("too many channel subscriptions")
)
