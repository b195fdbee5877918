package handlers

import (
	"context"
	"fmt"

	"artisanal-futures/internal/domain/dispatch"
	wstypes "artisanal-futures/internal/domain/websocket"
	ws "artisanal-futures/internal/websocket"
)

// HistorySource returns the accumulated dispatch state of a channel.
type HistorySource interface {
	History(ctx context.Context, channel string) ([]dispatch.Message, []dispatch.Location, error)
}

// DispatchHistoryHandler replays a channel's messages and latest locations
// to a client that just subscribed.
type DispatchHistoryHandler struct {
	source HistorySource
}

func NewDispatchHistoryHandler(source HistorySource) *DispatchHistoryHandler {
	return &DispatchHistoryHandler{source: source}
}

func (h *DispatchHistoryHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{wstypes.EventTypeDispatchHistory}
}

func (h *DispatchHistoryHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req struct {
		Channel string `json:"channel"`
	}
	if err := ws.DecodeData(msg.Data, &req); err != nil {
		client.SendError("invalid_request", "Invalid history request", err.Error())
		return nil
	}

	// Subscription already enforced channel auth.
	if !client.IsSubscribed(req.Channel) {
		client.SendError("not_subscribed", "Subscribe to the channel first", req.Channel)
		return nil
	}

	messages, locations, err := h.source.History(ctx, req.Channel)
	if err != nil {
		return fmt.Errorf("load history for %s: %w", req.Channel, err)
	}

	client.SendMessage(wstypes.NewChannelMessage(req.Channel, wstypes.EventTypeDispatchHistory, map[string]interface{}{
		"channel":   req.Channel,
		"messages":  messages,
		"locations": locations,
	}))
	return nil
}
