package imposter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceJoinAndLeave(t *testing.T) {
	r, clients := setupRoom(t, "Ann", "Bob", "Cara")
	drainAll(clients)

	require.Equal(t, handled, send(r, clients["Bob"], ClientMessage{Type: "voice-join"}))

	// The first joiner finds an empty channel.
	existing, ok := lastOf[VoiceExistingPeersMessage](drain(clients["Bob"]))
	require.True(t, ok)
	assert.Empty(t, existing.Peers)

	joined, ok := lastOf[VoicePeerJoinedMessage](drain(clients["Ann"]))
	require.True(t, ok)
	assert.Equal(t, "Bob", joined.Name)
	assert.Equal(t, clients["Bob"].id, joined.PeerID)

	// The second joiner is told about the first.
	require.Equal(t, handled, send(r, clients["Cara"], ClientMessage{Type: "voice-join"}))
	existing, ok = lastOf[VoiceExistingPeersMessage](drain(clients["Cara"]))
	require.True(t, ok)
	require.Len(t, existing.Peers, 1)
	assert.Equal(t, "Bob", existing.Peers[0].Name)

	drainAll(clients)
	require.Equal(t, handled, send(r, clients["Bob"], ClientMessage{Type: "voice-leave"}))
	left, ok := lastOf[VoicePeerLeftMessage](drain(clients["Cara"]))
	require.True(t, ok)
	assert.Equal(t, "Bob", left.Name)

	// Leaving twice stays silent.
	drainAll(clients)
	require.Equal(t, handled, send(r, clients["Bob"], ClientMessage{Type: "voice-leave"}))
	_, ok = lastOf[VoicePeerLeftMessage](drain(clients["Cara"]))
	assert.False(t, ok)
}

func TestVoiceOfferRelay(t *testing.T) {
	r, clients := setupRoom(t, "Ann", "Bob", "Cara")
	drainAll(clients)

	payload := json.RawMessage(`{"sdp":"v=0"}`)
	require.Equal(t, handled, send(r, clients["Bob"], ClientMessage{
		Type:     "voice-offer",
		TargetID: clients["Cara"].id,
		Offer:    payload,
	}))

	offer, ok := lastOf[VoiceOfferMessage](drain(clients["Cara"]))
	require.True(t, ok)
	assert.Equal(t, clients["Bob"].id, offer.FromID)
	assert.Equal(t, "Bob", offer.FromName)
	assert.JSONEq(t, string(payload), string(offer.Offer))

	// Nobody else sees a directed offer.
	_, ok = lastOf[VoiceOfferMessage](drain(clients["Ann"]))
	assert.False(t, ok)

	// An unknown target is rejected silently.
	assert.Equal(t, rejected, send(r, clients["Bob"], ClientMessage{
		Type:     "voice-offer",
		TargetID: "gone",
		Offer:    payload,
	}))
}

func TestVoiceMuteStatus(t *testing.T) {
	r, clients := setupRoom(t, "Ann", "Bob", "Cara")
	drainAll(clients)

	require.Equal(t, handled, send(r, clients["Bob"], ClientMessage{Type: "voice-mute-status", Muted: true}))

	mute, ok := lastOf[VoiceMuteStatusMessage](drain(clients["Ann"]))
	require.True(t, ok)
	assert.True(t, mute.Muted)
	assert.Equal(t, "Bob", mute.Name)

	// The sender does not hear their own status echoed.
	_, ok = lastOf[VoiceMuteStatusMessage](drain(clients["Bob"]))
	assert.False(t, ok)
}

func TestDisconnectLeavesVoice(t *testing.T) {
	r, clients := setupRoom(t, "Ann", "Bob", "Cara")
	require.Equal(t, handled, send(r, clients["Bob"], ClientMessage{Type: "voice-join"}))
	drainAll(clients)

	r.handleDisconnect(clients["Bob"])

	left, ok := lastOf[VoicePeerLeftMessage](drain(clients["Cara"]))
	require.True(t, ok)
	assert.Equal(t, clients["Bob"].id, left.PeerID)
	assert.Equal(t, "Bob", left.Name)
}
