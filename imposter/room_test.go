package imposter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinValidation(t *testing.T) {
	r, clients := setupRoom(t, "Ann", "Bob", "Cara")

	// Names are unique per room, case-insensitively. The host's name counts.
	assert.ErrorIs(t, r.Join(newTestClient(), "bob"), ErrNameTaken)
	assert.ErrorIs(t, r.Join(newTestClient(), "ANN"), ErrNameTaken)

	// Joining a running game is refused.
	startGame(t, r, clients["Ann"], "Apple", "Banana")
	assert.ErrorIs(t, r.Join(newTestClient(), "Cara"), ErrGameInProgress)
}

func TestJoinRoomFull(t *testing.T) {
	r, _ := setupRoom(t, "Host")

	for i := 1; i < MaxPlayers; i++ {
		require.NoError(t, r.Join(newTestClient(), fmt.Sprintf("Player%d", i)))
	}
	assert.ErrorIs(t, r.Join(newTestClient(), "Straggler"), ErrRoomFull)
}

func TestJoinClosedRoom(t *testing.T) {
	r, _ := setupRoom(t, "Ann")
	r.expire()

	assert.ErrorIs(t, r.Join(newTestClient(), "Bob"), ErrRoomNotFound)
}

func TestJoinBroadcastsRoster(t *testing.T) {
	r, clients := setupRoom(t, "Ann")
	drainAll(clients)

	bob := newTestClient()
	require.NoError(t, r.Join(bob, "Bob"))

	joined, ok := lastOf[RoomJoinedMessage](drain(bob))
	require.True(t, ok)
	assert.Equal(t, r.Code, joined.RoomCode)

	roster, ok := lastOf[PlayerJoinedMessage](drain(clients["Ann"]))
	require.True(t, ok)
	assert.Equal(t, "Ann", roster.Host)
	require.Len(t, roster.Players, 2)
	assert.True(t, roster.Players[0].IsHost)
	assert.Equal(t, "Bob", roster.Players[1].Name)
}

func TestSlowClientDropped(t *testing.T) {
	r, _ := setupRoom(t, "Ann")

	stalled := &Client{
		id:   "stalled",
		send: make(chan any, 4),
		done: make(chan struct{}),
	}
	require.NoError(t, r.Join(stalled, "Bob"))
	drain(stalled)
	for i := 0; i < cap(stalled.send); i++ {
		stalled.send <- struct{}{}
	}

	r.mu.Lock()
	r.broadcastLocked(RoomErrorMessage{Type: "room-error", Message: "x"})
	dropped := !r.clients[stalled]
	r.mu.Unlock()

	assert.True(t, dropped, "a client with a full buffer is cut loose")
	select {
	case <-stalled.done:
	default:
		t.Fatal("dropped client should be closed")
	}
}

func TestSettingsClamp(t *testing.T) {
	tests := []struct {
		name string
		in   int
		lo   int
		hi   int
		want int
	}{
		{"below", 10, 30, 300, 30},
		{"above", 999, 30, 300, 300},
		{"inside", 60, 30, 300, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clamp(tt.in, tt.lo, tt.hi))
		})
	}
}
