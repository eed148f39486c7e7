package imposter

// Voice chat signaling. The server only relays WebRTC handshake payloads
// between peers and tracks who is currently broadcasting; the media itself
// never touches it. Voice presence is independent of game phase.

func (r *Room) handleVoiceLocked(c *Client, player *Player, msg ClientMessage) dropReason {
	switch msg.Type {
	case "voice-join":
		return r.handleVoiceJoinLocked(c, player)
	case "voice-leave":
		return r.handleVoiceLeaveLocked(c, player)
	case "voice-offer":
		target := r.findClientByIDLocked(msg.TargetID)
		if target == nil {
			return rejected
		}
		r.sendLocked(target, VoiceOfferMessage{
			Type:     "voice-offer",
			FromID:   c.id,
			FromName: player.Name,
			Offer:    msg.Offer,
		})
		return handled
	case "voice-answer":
		target := r.findClientByIDLocked(msg.TargetID)
		if target == nil {
			return rejected
		}
		r.sendLocked(target, VoiceAnswerMessage{
			Type:   "voice-answer",
			FromID: c.id,
			Answer: msg.Answer,
		})
		return handled
	case "voice-ice-candidate":
		target := r.findClientByIDLocked(msg.TargetID)
		if target == nil {
			return rejected
		}
		r.sendLocked(target, VoiceIceCandidateMessage{
			Type:      "voice-ice-candidate",
			FromID:    c.id,
			Candidate: msg.Candidate,
		})
		return handled
	case "voice-mute-status":
		r.broadcastExceptLocked(c, VoiceMuteStatusMessage{
			Type:   "voice-mute-status",
			PeerID: c.id,
			Name:   player.Name,
			Muted:  msg.Muted,
		})
		return handled
	default:
		return dropUnknownEvent
	}
}

func (r *Room) handleVoiceJoinLocked(c *Client, player *Player) dropReason {
	existing := make([]VoicePeer, 0, len(r.voicePeers))
	for _, vp := range r.voicePeers {
		if vp.ID != c.id {
			existing = append(existing, vp)
		}
	}
	r.sendLocked(c, VoiceExistingPeersMessage{Type: "voice-existing-peers", Peers: existing})

	r.voicePeers = append(existing, VoicePeer{ID: c.id, Name: player.Name})

	r.broadcastExceptLocked(c, VoicePeerJoinedMessage{
		Type:   "voice-peer-joined",
		PeerID: c.id,
		Name:   player.Name,
	})
	return handled
}

func (r *Room) handleVoiceLeaveLocked(c *Client, player *Player) dropReason {
	if !r.removeVoicePeerQuietLocked(c) {
		return handled
	}
	r.broadcastExceptLocked(c, VoicePeerLeftMessage{
		Type:   "voice-peer-left",
		PeerID: c.id,
		Name:   player.Name,
	})
	return handled
}

// removeVoicePeerLocked drops the peer and, if it was broadcasting,
// notifies the rest of the voice channel. Used on disconnect and kick.
func (r *Room) removeVoicePeerLocked(c *Client) {
	var name string
	for _, vp := range r.voicePeers {
		if vp.ID == c.id {
			name = vp.Name
		}
	}
	if !r.removeVoicePeerQuietLocked(c) {
		return
	}
	r.broadcastExceptLocked(c, VoicePeerLeftMessage{
		Type:   "voice-peer-left",
		PeerID: c.id,
		Name:   name,
	})
}

func (r *Room) removeVoicePeerQuietLocked(c *Client) bool {
	dst := r.voicePeers[:0]
	found := false
	for _, vp := range r.voicePeers {
		if vp.ID == c.id {
			found = true
			continue
		}
		dst = append(dst, vp)
	}
	r.voicePeers = dst
	return found
}

func (r *Room) findClientByIDLocked(id string) *Client {
	if id == "" {
		return nil
	}
	for c := range r.clients {
		if c.id == id {
			return c
		}
	}
	return nil
}
