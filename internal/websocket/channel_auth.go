package websocket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"artisanal-futures/internal/domain/dispatch"
)

// ChannelAuth signs and checks subscriptions to private channels. The token
// format is "<key>:<hex hmac-sha256(socket_id:channel)>".
type ChannelAuth struct {
	key    string
	secret []byte
}

func NewChannelAuth(key, secret string) *ChannelAuth {
	return &ChannelAuth{key: key, secret: []byte(secret)}
}

// IsPrivate reports whether subscribing to channel needs a signed token.
// Depot scoped map channels are private; the global map channel is not.
func IsPrivate(channel string) bool {
	return strings.HasPrefix(channel, dispatch.GlobalChannel+"-")
}

func (a *ChannelAuth) Sign(socketID, channel string) string {
	return a.key + ":" + hex.EncodeToString(a.mac(socketID, channel))
}

func (a *ChannelAuth) Verify(socketID, channel, token string) bool {
	if a == nil || len(a.secret) == 0 {
		return false
	}

	key, sig, ok := strings.Cut(token, ":")
	if !ok || key != a.key {
		return false
	}

	raw, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	return hmac.Equal(raw, a.mac(socketID, channel))
}

func (a *ChannelAuth) mac(socketID, channel string) []byte {
	m := hmac.New(sha256.New, a.secret)
	m.Write([]byte(socketID + ":" + channel))
	return m.Sum(nil)
}
