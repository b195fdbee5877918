package websocket

import (
	"context"
	"sync"

	wstypes "artisanal-futures/internal/domain/websocket"
	"artisanal-futures/internal/metrics"

	"go.uber.org/zap"
)

const broadcastQueueSize = 256

// Hub fans channel messages out to subscribed clients. Run owns all
// mutations of the client set; readers take mu.RLock.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	handlerRegistry *HandlerRegistry
	auth            *ChannelAuth
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

type BroadcastMessage struct {
	Channel string
	Message *wstypes.WSMessage
}

func NewHub(auth *ChannelAuth, m *metrics.Metrics, logger *zap.Logger) *Hub {
	return newHub(auth, m, logger, broadcastQueueSize)
}

func newHub(auth *ChannelAuth, m *metrics.Metrics, logger *zap.Logger, queue int) *Hub {
	return &Hub{
		clients:         make(map[string]*Client),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, queue),
		done:            make(chan struct{}),
		handlerRegistry: NewHandlerRegistry(),
		auth:            auth,
		metrics:         m,
		logger:          logger,
	}
}

// RegisterHandler adds a client message handler. Call before Run.
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage routes msg to a registered handler and reports whether
// one was found.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register hands a client to the running hub.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event on channel without blocking. A full queue drops the
// event and returns false.
func (h *Hub) Publish(channel, event string, data interface{}) bool {
	msg := &BroadcastMessage{
		Channel: channel,
		Message: wstypes.NewChannelMessage(channel, wstypes.EventType(event), data),
	}

	select {
	case h.broadcast <- msg:
		h.metrics.EventPublished(event)
		return true
	default:
		h.metrics.EventDropped(event)
		h.logger.Warn("broadcast queue full, event dropped",
			zap.String("channel", channel),
			zap.String("event", event),
		)
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client.socketID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.metrics.ClientConnected()
	h.logger.Debug("websocket client connected",
		zap.String("socket_id", client.socketID),
		zap.Int("total", total),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"socket_id": client.socketID,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, exists := h.clients[client.socketID]
	if exists {
		delete(h.clients, client.socketID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	client.Close()
	if !exists {
		return
	}

	h.metrics.ClientDisconnected()
	h.logger.Debug("websocket client disconnected",
		zap.String("socket_id", client.socketID),
		zap.Int("total", total),
	)
}

// BroadcastMessage delivers msg to every client subscribed to its channel.
func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.IsSubscribed(msg.Channel) {
			client.SendMessage(msg.Message)
		}
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ChannelSubscribers counts clients subscribed to channel.
func (h *Hub) ChannelSubscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, client := range h.clients {
		if client.IsSubscribed(channel) {
			n++
		}
	}
	return n
}

// authorize checks a subscription request against the channel auth.
func (h *Hub) authorize(socketID, channel, token string) error {
	if !validChannel(channel) {
		return ErrInvalidChannel
	}
	if !IsPrivate(channel) {
		return nil
	}
	if !h.auth.Verify(socketID, channel, token) {
		return ErrChannelAuth
	}
	return nil
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
		h.metrics.ClientDisconnected()
	}
}
