package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-duel-service/internal/domain"
)

func TestHubDispatchRoutesByConnection(t *testing.T) {
	hub := NewHub()
	a := hub.Register("a")
	b := hub.Register("b")

	hub.Dispatch([]domain.Outbound{
		{To: []string{"a", "b", "gone"}, Type: domain.EventRoundStarted, Payload: struct{}{}},
		domain.Unicast("b", domain.EventRoomClosed, domain.RoomClosedPayload{Reason: "bye"}),
	})

	require.Len(t, a, 1)
	require.Len(t, b, 2)

	var msg outboundMessage[domain.RoomClosedPayload]
	<-b
	require.NoError(t, json.Unmarshal(<-b, &msg))
	assert.Equal(t, "room-closed", msg.Type)
	assert.Equal(t, "bye", msg.Payload.Reason)
}

func TestHubClosesSlowConnection(t *testing.T) {
	hub := NewHub()
	slow := hub.Register("slow")
	other := hub.Register("other")

	for i := 0; i < sendBuffer+10; i++ {
		hub.Dispatch([]domain.Outbound{
			{To: []string{"slow"}, Type: domain.EventGameReset, Payload: struct{}{}},
		})
	}
	hub.Send("other", domain.EventRoomClosed, domain.RoomClosedPayload{Reason: "bye"})

	delivered := 0
	for range slow {
		delivered++
	}
	assert.Equal(t, sendBuffer, delivered, "queued messages are still delivered before the close")
	assert.Equal(t, 1, hub.Len())
	assert.Len(t, other, 1)

	// the evicted connection unregisters later without a double close
	hub.Unregister("slow")
}

func TestHubUnregisterClosesQueue(t *testing.T) {
	hub := NewHub()
	ch := hub.Register("a")
	hub.Unregister("a")
	hub.Unregister("a")

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Len())

	// dispatching to a removed connection is a no-op
	hub.Send("a", domain.EventGameReset, struct{}{})
}
