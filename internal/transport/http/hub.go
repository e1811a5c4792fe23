package http

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quiz-duel-service/internal/domain"
)

const sendBuffer = 256

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// Hub tracks live connections by id and delivers coordinator output to them.
// It implements app.Dispatcher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan []byte
	logger  zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]chan []byte),
		logger:  log.With().Str("module", "transport.hub").Logger(),
	}
}

// Register adds a connection and returns its outbound queue.
func (h *Hub) Register(connID string) <-chan []byte {
	send := make(chan []byte, sendBuffer)
	h.mu.Lock()
	h.clients[connID] = send
	h.mu.Unlock()
	return send
}

// Unregister removes a connection and closes its queue.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		close(send)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dispatch encodes each message once and queues it for every recipient. A connection
// whose queue is full is evicted: its queue is closed so the writer hangs up, and the
// read side then runs the normal disconnect.
func (h *Hub) Dispatch(out []domain.Outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, msg := range out {
		data, err := json.Marshal(outboundMessage[any]{Type: string(msg.Type), Payload: msg.Payload})
		if err != nil {
			h.logger.Error().Err(err).Str("event", string(msg.Type)).Msg("encode outbound")
			continue
		}
		for _, id := range msg.To {
			send, ok := h.clients[id]
			if !ok {
				continue
			}
			select {
			case send <- data:
			default:
				h.logger.Warn().Str("conn", id).Str("event", string(msg.Type)).Msg("send buffer full, closing connection")
				delete(h.clients, id)
				close(send)
			}
		}
	}
}

// Send queues a single message for one connection.
func (h *Hub) Send(connID string, typ domain.EventType, payload any) {
	h.Dispatch([]domain.Outbound{domain.Unicast(connID, typ, payload)})
}
