package websocket

import (
	"encoding/json"
	"regexp"
)

var channelPattern = regexp.MustCompile(`^[A-Za-z0-9_\-=@,.;]{1,164}$`)

// validChannel matches the channel names accepted by hosted pub/sub relays.
func validChannel(name string) bool {
	return channelPattern.MatchString(name)
}

// DecodeData converts a message payload into a specific struct using JSON
// marshaling.
func DecodeData(data interface{}, target interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}
