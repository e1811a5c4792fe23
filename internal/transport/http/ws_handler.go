package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quiz-duel-service/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	disconnectWait = 5 * time.Second
)

// Coordinator is the session use-case surface the websocket adapter drives.
// Outbound messages reach connections through the Hub, so the returned slices are
// ignored here.
type Coordinator interface {
	CreateRoom(ctx context.Context, connID, ownerName string) ([]domain.Outbound, error)
	JoinRoom(ctx context.Context, connID, name, code string) ([]domain.Outbound, error)
	PublishQuestion(ctx context.Context, connID string, in domain.QuestionInput) ([]domain.Outbound, error)
	SubmitAnswer(ctx context.Context, connID, answer string) ([]domain.Outbound, error)
	ResetRound(ctx context.Context, connID string) ([]domain.Outbound, error)
	RoomInfo(ctx context.Context, connID string) ([]domain.Outbound, error)
	Ranking(ctx context.Context, connID string) ([]domain.Outbound, error)
	SystemStats(ctx context.Context, connID string) ([]domain.Outbound, error)
	Report(ctx context.Context, connID string, in domain.ReportInput) ([]domain.Outbound, error)
	Disconnect(ctx context.Context, connID string) ([]domain.Outbound, error)
}

type WSHandler struct {
	coord    Coordinator
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewWSHandler(coord Coordinator, hub *Hub) *WSHandler {
	return &WSHandler{
		coord: coord,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log.With().Str("module", "transport.ws").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

var errBadPayload = errors.New("invalid payload")

// ServeWS upgrades HTTP requests to websockets. Each connection gets an opaque id; the
// coordinator learns about it on its first event and forgets it on Disconnect.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	send := h.hub.Register(connID)
	h.logger.Debug().Str("conn", connID).Msg("connection opened")

	writerDone := make(chan struct{})
	go h.writePump(conn, send, writerDone)

	h.readPump(r.Context(), conn, connID)

	ctx, cancel := context.WithTimeout(context.Background(), disconnectWait)
	defer cancel()
	if _, err := h.coord.Disconnect(ctx, connID); err != nil {
		h.logger.Warn().Err(err).Str("conn", connID).Msg("disconnect")
	}
	h.hub.Unregister(connID)
	<-writerDone
	h.logger.Debug().Str("conn", connID).Msg("connection closed")
}

func (h *WSHandler) readPump(ctx context.Context, conn *websocket.Conn, connID string) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Str("conn", connID).Msg("ws read error")
			}
			return
		}
		var inbound inboundMessage
		if err := json.Unmarshal(raw, &inbound); err != nil {
			h.reject(connID, "malformed message")
			continue
		}
		if err := h.handle(ctx, connID, inbound); err != nil {
			if errors.Is(err, errBadPayload) {
				h.reject(connID, "invalid "+inbound.Type+" payload")
				continue
			}
			h.logger.Warn().Err(err).Str("conn", connID).Msg("coordinator unavailable")
			return
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, send <-chan []byte, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case message, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// unregistered or evicted by the hub
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				conn.Close()
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				// unblock the reader so the connection tears down
				conn.Close()
				drain(send)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				drain(send)
				return
			}
		}
	}
}

func drain(send <-chan []byte) {
	for range send {
	}
}

// handle maps one inbound envelope onto the coordinator. Only transport-level failures
// are returned; domain errors reach the client as error events.
func (h *WSHandler) handle(ctx context.Context, connID string, in inboundMessage) error {
	var err error
	switch domain.EventType(in.Type) {
	case domain.EventCreateRoom:
		name, ok := decodeText(in.Payload, "ownerName")
		if !ok {
			return errBadPayload
		}
		_, err = h.coord.CreateRoom(ctx, connID, name)
	case domain.EventJoinRoom:
		var p joinPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return errBadPayload
		}
		_, err = h.coord.JoinRoom(ctx, connID, p.Name, p.Code)
	case domain.EventPublishQuestion:
		var q domain.QuestionInput
		if err := json.Unmarshal(in.Payload, &q); err != nil {
			return errBadPayload
		}
		_, err = h.coord.PublishQuestion(ctx, connID, q)
	case domain.EventSubmitAnswer:
		answer, ok := decodeText(in.Payload, "answerText")
		if !ok {
			return errBadPayload
		}
		_, err = h.coord.SubmitAnswer(ctx, connID, answer)
	case domain.EventResetRound:
		_, err = h.coord.ResetRound(ctx, connID)
	case domain.EventGetRoomInfo:
		_, err = h.coord.RoomInfo(ctx, connID)
	case domain.EventGetRanking:
		_, err = h.coord.Ranking(ctx, connID)
	case domain.EventGetStats:
		_, err = h.coord.SystemStats(ctx, connID)
	case domain.EventReport:
		var rep domain.ReportInput
		if len(in.Payload) > 0 {
			if err := json.Unmarshal(in.Payload, &rep); err != nil {
				return errBadPayload
			}
		}
		_, err = h.coord.Report(ctx, connID, rep)
	default:
		h.reject(connID, "unsupported message type")
	}
	return err
}

func (h *WSHandler) reject(connID, msg string) {
	h.hub.Send(connID, domain.EventErrorValidation, domain.ErrorPayload{Message: msg})
}

// decodeText accepts either a bare JSON string or an object carrying the text under field.
func decodeText(raw json.RawMessage, field string) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	v, ok := obj[field]
	if !ok {
		return "", true
	}
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}
