package imposter

import (
	"math/rand/v2"
	"strings"
	"time"
)

// dropReason records why an inbound event was discarded without effect.
// The wire contract stays silent about authorization and stale-phase drops;
// keeping the reason explicit makes the policy testable.
type dropReason int

const (
	handled dropReason = iota // event was processed (or answered privately)
	rejected                  // validation failure, reported to the sender only
	dropUnknownEvent
	dropUnauthorized // sender may not perform this action
	dropWrongPhase   // event belongs to another phase
	dropNotReady     // preconditions for the transition not met
)

type roleReq int

const (
	roleAny         roleReq = iota // any room member, host included
	roleHost                       // Grand Master only
	roleParticipant                // any non-host player
	roleActive                     // non-host, not eliminated
)

type eventGuard struct {
	phases []Phase // nil = any phase
	role   roleReq
}

// guards is the transition table: which sender may raise which event in
// which phase. Everything else is dropped before touching state.
var guards = map[string]eventGuard{
	"update-settings":     {nil, roleHost},
	"start-game":          {[]Phase{PhaseLobby}, roleHost},
	"word-seen":           {[]Phase{PhaseDistribute}, roleParticipant},
	"hint-given":          {[]Phase{PhaseHints}, roleActive},
	"start-discussion":    {[]Phase{PhaseHints}, roleHost},
	"start-voting":        {[]Phase{PhaseDiscussion}, roleHost},
	"submit-vote":         {[]Phase{PhaseVoting}, roleActive},
	"tie-resolution":      {[]Phase{PhaseElimination}, roleHost},
	"play-again":          {[]Phase{PhaseGameOver}, roleHost},
	"kick-player":         {[]Phase{PhaseLobby}, roleHost},
	"chat-message":        {nil, roleAny},
	"voice-join":          {nil, roleAny},
	"voice-leave":         {nil, roleAny},
	"voice-offer":         {nil, roleAny},
	"voice-answer":        {nil, roleAny},
	"voice-ice-candidate": {nil, roleAny},
	"voice-mute-status":   {nil, roleAny},
}

// handle processes one inbound event to completion, broadcasts included.
func (r *Room) handle(ev inbound) dropReason {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActive = time.Now()

	guard, ok := guards[ev.msg.Type]
	if !ok {
		return dropUnknownEvent
	}

	player := r.findPlayerLocked(ev.client)
	if player == nil {
		return dropUnauthorized
	}

	switch guard.role {
	case roleHost:
		if ev.client != r.host {
			r.logf("GAME: %s dropped non-host %q in %s", ev.msg.Type, player.Name, r.Code)
			return dropUnauthorized
		}
	case roleParticipant:
		if ev.client == r.host {
			return dropUnauthorized
		}
	case roleActive:
		if ev.client == r.host || player.Eliminated {
			return dropUnauthorized
		}
	}

	if guard.phases != nil {
		allowed := false
		for _, p := range guard.phases {
			if r.phase == p {
				allowed = true
				break
			}
		}
		if !allowed {
			return dropWrongPhase
		}
	}

	switch ev.msg.Type {
	case "update-settings":
		return r.handleSettingsLocked(ev.msg)
	case "start-game":
		return r.handleStartGameLocked(ev.client, ev.msg)
	case "word-seen":
		return r.handleWordSeenLocked(ev.client)
	case "hint-given":
		return r.handleHintLocked(player)
	case "start-discussion":
		return r.handleStartDiscussionLocked()
	case "start-voting":
		return r.handleStartVotingLocked()
	case "submit-vote":
		return r.handleVoteLocked(ev.client, player, ev.msg.VotedFor)
	case "tie-resolution":
		return r.handleTieResolutionLocked(ev.client, ev.msg.Method)
	case "play-again":
		return r.handlePlayAgainLocked()
	case "kick-player":
		return r.handleKickLocked(ev.client, ev.msg.PlayerName)
	case "chat-message":
		return r.handleChatLocked(player, ev.msg.Message)
	default:
		return r.handleVoiceLocked(ev.client, player, ev.msg)
	}
}

func (r *Room) handleSettingsLocked(msg ClientMessage) dropReason {
	r.settings.apply(msg)
	r.broadcastLocked(SettingsUpdatedMessage{Type: "settings-updated", Settings: r.settings})
	return handled
}

func (r *Room) handleStartGameLocked(host *Client, msg ClientMessage) dropReason {
	participants := r.participantsLocked()
	if len(participants) < 2 {
		r.errorLocked(host, "Need at least 2 players (besides the Grand Master).")
		return rejected
	}

	normal := strings.TrimSpace(msg.NormalWord)
	imposter := strings.TrimSpace(msg.ImposterWord)
	if normal == "" || imposter == "" || strings.EqualFold(normal, imposter) {
		r.errorLocked(host, "Enter two different words.")
		return rejected
	}

	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}
	roles := AssignRoles(names, r.settings.ImposterCount)

	for _, p := range r.players {
		p.Eliminated = false
		p.IsImposter = p.client != r.host && roles.Imposters[p.Name]
	}

	r.normalWord = normal
	r.imposterWord = imposter
	r.phase = PhaseDistribute
	r.round = 0
	r.votes = make(map[string]string)
	r.hintsGiven = nil
	r.tiedPlayers = nil
	r.revote = false
	r.wordSeen = make(map[string]bool)

	imposterNames := make([]string, 0, len(roles.Imposters))
	gmView := make([]RolePlayer, 0, len(participants))
	for _, p := range participants {
		word, role := r.normalWord, "normal"
		if p.IsImposter {
			word, role = r.imposterWord, "imposter"
			imposterNames = append(imposterNames, p.Name)
		}
		r.sendLocked(p.client, YourWordMessage{Type: "your-word", Word: word, Role: role})
		gmView = append(gmView, RolePlayer{Name: p.Name, IsImposter: p.IsImposter})

		r.logf("GAME: %s %q role=%s", r.Code, p.Name, role)
	}

	r.broadcastLocked(GameStartedMessage{
		Type:          "game-started",
		Phase:         PhaseDistribute,
		Players:       namedPlayers(participants),
		ImposterCount: len(roles.Imposters),
		Settings:      r.settings,
	})

	// The Grand Master observes everything but plays nothing.
	r.sendLocked(r.host, GrandMasterInfoMessage{
		Type:         "grand-master-info",
		Imposters:    imposterNames,
		NormalWord:   r.normalWord,
		ImposterWord: r.imposterWord,
		Participants: gmView,
	})

	return handled
}

// wordSeenCountLocked counts acknowledgements among current participants,
// so a disconnect never inflates progress.
func (r *Room) wordSeenCountLocked() int {
	count := 0
	for _, p := range r.participantsLocked() {
		if r.wordSeen[p.client.id] {
			count++
		}
	}
	return count
}

func (r *Room) handleWordSeenLocked(c *Client) dropReason {
	if r.wordSeen == nil {
		r.wordSeen = make(map[string]bool)
	}
	r.wordSeen[c.id] = true

	total := len(r.participantsLocked())
	seen := r.wordSeenCountLocked()

	r.broadcastLocked(WordSeenUpdateMessage{Type: "word-seen-update", Seen: seen, Total: total})

	if seen >= total {
		r.nextRoundLocked()
	}
	return handled
}

func (r *Room) allHintsInLocked() bool {
	given := make(map[string]bool, len(r.hintsGiven))
	for _, name := range r.hintsGiven {
		given[name] = true
	}
	for _, p := range r.activePlayersLocked() {
		if !given[p.Name] {
			return false
		}
	}
	return true
}

func (r *Room) handleHintLocked(player *Player) dropReason {
	already := false
	for _, name := range r.hintsGiven {
		if name == player.Name {
			already = true
			break
		}
	}
	if !already {
		r.hintsGiven = append(r.hintsGiven, player.Name)
	}

	r.broadcastLocked(HintUpdateMessage{
		Type:       "hint-update",
		HintsGiven: r.hintsGiven,
		Total:      len(r.activePlayersLocked()),
	})

	if r.allHintsInLocked() {
		r.broadcastLocked(AllHintsGivenMessage{Type: "all-hints-given"})
	}
	return handled
}

func (r *Room) handleStartDiscussionLocked() dropReason {
	if !r.allHintsInLocked() {
		return dropNotReady
	}

	r.phase = PhaseDiscussion

	// The discussion timer runs client-side; the server only announces it.
	r.broadcastLocked(PhaseChangeMessage{
		Type:          "phase-change",
		Phase:         PhaseDiscussion,
		Round:         r.round,
		Players:       phasePlayers(r.activePlayersLocked()),
		TimerDuration: r.settings.TimerDuration,
	})
	return handled
}

func (r *Room) handleStartVotingLocked() dropReason {
	r.phase = PhaseVoting
	r.votes = make(map[string]string)
	r.revote = false
	r.tiedPlayers = nil

	active := r.activePlayersLocked()

	r.broadcastLocked(PhaseChangeMessage{
		Type:    "phase-change",
		Phase:   PhaseVoting,
		Round:   r.round,
		Players: phasePlayers(active),
	})

	for _, p := range active {
		r.sendLocked(p.client, VoteRequestMessage{
			Type:       "vote-request",
			Candidates: candidatesFor(p.Name, active),
		})
	}
	return handled
}

// voterPoolLocked is the set of players expected to vote this round: every
// active player, narrowed to the tied ones during a revote.
func (r *Room) voterPoolLocked() []*Player {
	active := r.activePlayersLocked()
	if !r.revote {
		return active
	}

	tied := make(map[string]bool, len(r.tiedPlayers))
	for _, name := range r.tiedPlayers {
		tied[name] = true
	}
	pool := make([]*Player, 0, len(active))
	for _, p := range active {
		if tied[p.Name] {
			pool = append(pool, p)
		}
	}
	return pool
}

func (r *Room) votesSubmittedLocked(pool []*Player) int {
	count := 0
	for _, p := range pool {
		if _, ok := r.votes[p.Name]; ok {
			count++
		}
	}
	return count
}

func (r *Room) handleVoteLocked(c *Client, player *Player, votedFor string) dropReason {
	pool := r.voterPoolLocked()

	inPool := false
	validTarget := false
	for _, p := range pool {
		if p == player {
			inPool = true
		} else if p.Name == votedFor {
			validTarget = true
		}
	}
	if !inPool {
		// Outside the revote's tied set, or otherwise not expected to vote.
		return dropUnauthorized
	}
	if votedFor == player.Name {
		r.errorLocked(c, "You cannot vote for yourself.")
		return rejected
	}
	if !validTarget {
		r.errorLocked(c, "Invalid vote target.")
		return rejected
	}

	r.votes[player.Name] = votedFor

	submitted := r.votesSubmittedLocked(pool)
	needed := len(pool)

	r.broadcastLocked(VoteUpdateMessage{
		Type:           "vote-update",
		VotesSubmitted: submitted,
		VotesNeeded:    needed,
	})

	if submitted >= needed {
		r.tallyLocked()
	}
	return handled
}

func (r *Room) tallyLocked() {
	pool := r.voterPoolLocked()
	names := make([]string, 0, len(pool))
	for _, p := range pool {
		names = append(names, p.Name)
	}

	result := Tally(r.votes, names)

	r.phase = PhaseElimination
	r.tiedPlayers = nil
	r.revote = false

	switch {
	case result.MaxVotes == 0:
		// Nobody received a vote; no elimination this round.
		r.broadcastLocked(VoteResultsMessage{Type: "vote-results", Results: result.Ranked})
		r.scheduleAdvanceLocked()
	case result.Tie():
		r.tiedPlayers = result.TiedLeaders
		r.broadcastLocked(VoteResultsMessage{
			Type:        "vote-results",
			Results:     result.Ranked,
			Tie:         true,
			TiedPlayers: result.TiedLeaders,
		})
	default:
		r.eliminateLocked(result.TiedLeaders[0])
	}
}

func (r *Room) eliminateLocked(name string) {
	player := r.findPlayerByNameLocked(name)
	if player == nil || player.Eliminated {
		return
	}
	player.Eliminated = true

	r.logf("GAME: %s eliminated %q (imposter=%t)", r.Code, name, player.IsImposter)

	verdict := EvaluateWin(r.activeRolesLocked())

	// Recount against the post-elimination active set for the reveal screen.
	remaining := make([]string, 0)
	for _, p := range r.activePlayersLocked() {
		remaining = append(remaining, p.Name)
	}
	recount := Tally(r.votes, remaining)

	role := "normal"
	if player.IsImposter {
		role = "imposter"
	}
	r.broadcastLocked(VoteResultsMessage{
		Type:       "vote-results",
		Results:    recount.Ranked,
		Eliminated: name,
		Role:       role,
		GameOver:   verdict,
	})

	if verdict != NoVerdict {
		r.gameOverLocked(verdict)
		return
	}
	r.scheduleAdvanceLocked()
}

// scheduleAdvanceLocked defers the next hint round so clients can play the
// elimination reveal. The round number doubles as an epoch: the callback
// only acts if the room is still in the same elimination it was scheduled
// from.
func (r *Room) scheduleAdvanceLocked() {
	epoch := r.round
	time.AfterFunc(r.revealDelay, func() {
		r.advanceAfterReveal(epoch)
	})
}

func (r *Room) advanceAfterReveal(epoch int) {
	select {
	case <-r.done:
		return
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseElimination || r.round != epoch || len(r.tiedPlayers) > 0 {
		return
	}
	r.nextRoundLocked()
}

func (r *Room) nextRoundLocked() {
	r.round++
	r.votes = make(map[string]string)
	r.hintsGiven = nil
	r.tiedPlayers = nil
	r.revote = false
	r.wordSeen = nil

	if r.settings.MaxRounds > 0 && r.round > r.settings.MaxRounds {
		// Out of rounds; the imposters outlasted the table.
		r.gameOverLocked(ImpostersWin)
		return
	}

	r.phase = PhaseHints
	r.broadcastLocked(PhaseChangeMessage{
		Type:    "phase-change",
		Phase:   PhaseHints,
		Round:   r.round,
		Players: phasePlayers(r.activePlayersLocked()),
	})
}

func (r *Room) gameOverLocked(winner Verdict) {
	r.phase = PhaseGameOver

	imposters := make([]string, 0)
	eliminated := 0
	final := make([]FinalPlayer, 0, len(r.players))
	for _, p := range r.players {
		if p.IsImposter {
			imposters = append(imposters, p.Name)
		}
		if p.Eliminated {
			eliminated++
		}
		final = append(final, FinalPlayer{Name: p.Name, IsImposter: p.IsImposter, Eliminated: p.Eliminated})
	}

	r.logf("GAME: %s over, winner=%s after %d rounds", r.Code, winner, r.round)

	r.broadcastLocked(GameOverMessage{
		Type:      "game-over",
		Winner:    winner,
		Imposters: imposters,
		Words:     GameWords{Normal: r.normalWord, Imposter: r.imposterWord},
		Stats:     GameStats{Rounds: r.round, Eliminated: eliminated},
		Players:   final,
	})
}

func (r *Room) handleTieResolutionLocked(host *Client, method string) dropReason {
	if len(r.tiedPlayers) == 0 {
		return dropNotReady
	}

	tied := make(map[string]bool, len(r.tiedPlayers))
	for _, name := range r.tiedPlayers {
		tied[name] = true
	}
	tiedActive := make([]*Player, 0, len(r.tiedPlayers))
	for _, p := range r.activePlayersLocked() {
		if tied[p.Name] {
			tiedActive = append(tiedActive, p)
		}
	}

	switch method {
	case "revote":
		if len(tiedActive) < 2 {
			// Disconnects dissolved the tie; nothing left to revote over.
			r.skipEliminationLocked()
			return handled
		}

		r.votes = make(map[string]string)
		r.revote = true
		r.phase = PhaseVoting

		r.broadcastLocked(PhaseChangeMessage{
			Type:     "phase-change",
			Phase:    PhaseVoting,
			Round:    r.round,
			Players:  phasePlayers(tiedActive),
			IsRevote: true,
		})

		for _, p := range tiedActive {
			r.sendLocked(p.client, VoteRequestMessage{
				Type:       "vote-request",
				Candidates: candidatesFor(p.Name, tiedActive),
				IsRevote:   true,
			})
		}
		return handled

	case "random":
		if len(tiedActive) == 0 {
			r.skipEliminationLocked()
			return handled
		}
		name := tiedActive[rand.IntN(len(tiedActive))].Name
		r.tiedPlayers = nil
		r.eliminateLocked(name)
		return handled

	case "skip":
		r.skipEliminationLocked()
		return handled

	default:
		r.errorLocked(host, "Unknown tie resolution method.")
		return rejected
	}
}

func (r *Room) skipEliminationLocked() {
	r.tiedPlayers = nil
	if verdict := EvaluateWin(r.activeRolesLocked()); verdict != NoVerdict {
		r.gameOverLocked(verdict)
		return
	}
	r.nextRoundLocked()
}

func (r *Room) handlePlayAgainLocked() dropReason {
	r.phase = PhaseLobby
	r.round = 0
	r.normalWord = ""
	r.imposterWord = ""
	r.votes = make(map[string]string)
	r.hintsGiven = nil
	r.tiedPlayers = nil
	r.revote = false
	r.wordSeen = nil
	for _, p := range r.players {
		p.IsImposter = false
		p.Eliminated = false
	}

	r.broadcastLocked(BackToLobbyMessage{
		Type:    "back-to-lobby",
		Players: r.rosterLocked(),
		Host:    r.hostNameLocked(),
	})
	return handled
}

func (r *Room) handleKickLocked(host *Client, name string) dropReason {
	if name == "" {
		r.errorLocked(host, "No player named.")
		return rejected
	}
	target := r.findPlayerByNameLocked(name)
	if target == nil || target.client == r.host {
		r.errorLocked(host, "Player not found.")
		return rejected
	}

	r.sendLocked(target.client, KickedMessage{Type: "kicked"})

	r.removeVoicePeerLocked(target.client)
	r.removePlayerLocked(target)
	delete(r.clients, target.client)
	target.client.room.Store(nil)

	r.logf("ROOMS: %s kicked %q", r.Code, name)

	r.broadcastRosterLocked()
	return handled
}

func (r *Room) handleChatLocked(player *Player, message string) dropReason {
	text := strings.TrimSpace(message)
	if text == "" {
		r.errorLocked(player.client, "Enter a message.")
		return rejected
	}
	if runes := []rune(text); len(runes) > 200 {
		text = string(runes[:200])
	}

	r.broadcastLocked(ChatBroadcastMessage{
		Type:      "chat-message",
		Author:    player.Name,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
	return handled
}

func (r *Room) removePlayerLocked(target *Player) {
	dst := r.players[:0]
	for _, p := range r.players {
		if p == target {
			continue
		}
		dst = append(dst, p)
	}
	r.players = dst
	delete(r.votes, target.Name)
}

// handleDisconnect folds a dropped connection into the normal state flow:
// voice teardown, host promotion, and win/vote/word-seen rechecks.
func (r *Room) handleDisconnect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActive = time.Now()

	delete(r.clients, c)
	r.removeVoicePeerLocked(c)

	player := r.findPlayerLocked(c)
	if player == nil {
		return
	}
	r.removePlayerLocked(player)

	if len(r.players) == 0 {
		r.closeLocked()
		if r.onEmpty != nil {
			r.onEmpty(r.Code)
		}
		return
	}

	if r.host == c {
		// Promote the next remaining player, in join order.
		r.host = r.players[0].client
		r.logf("ROOMS: %s host left, promoted %q", r.Code, r.players[0].Name)
	}

	r.broadcastLocked(PlayerLeftMessage{
		Type:       "player-left",
		PlayerName: player.Name,
		Players:    r.rosterLocked(),
		Host:       r.hostNameLocked(),
	})

	if r.phase == PhaseLobby || r.phase == PhaseGameOver {
		return
	}

	// A disconnect can end the game on its own.
	if verdict := EvaluateWin(r.activeRolesLocked()); verdict != NoVerdict {
		r.gameOverLocked(verdict)
		return
	}

	switch r.phase {
	case PhaseDistribute:
		total := len(r.participantsLocked())
		if total > 0 && r.wordSeenCountLocked() >= total {
			r.nextRoundLocked()
		}
	case PhaseHints:
		// The departed player may have been the last hint holdout.
		given := false
		for _, name := range r.hintsGiven {
			if name == player.Name {
				given = true
				break
			}
		}
		if !given && r.allHintsInLocked() {
			r.broadcastLocked(AllHintsGivenMessage{Type: "all-hints-given"})
		}
	case PhaseVoting:
		pool := r.voterPoolLocked()
		if r.revote && len(pool) < 2 {
			// Disconnects dissolved the tie; nothing left to revote over.
			r.skipEliminationLocked()
			return
		}
		if len(pool) > 0 && r.votesSubmittedLocked(pool) >= len(pool) {
			r.tallyLocked()
		}
	}
}

func namedPlayers(players []*Player) []NamedPlayer {
	out := make([]NamedPlayer, 0, len(players))
	for _, p := range players {
		out = append(out, NamedPlayer{Name: p.Name})
	}
	return out
}

func phasePlayers(players []*Player) []PhasePlayer {
	out := make([]PhasePlayer, 0, len(players))
	for _, p := range players {
		out = append(out, PhasePlayer{Name: p.Name, Eliminated: p.Eliminated})
	}
	return out
}

func candidatesFor(voter string, pool []*Player) []NamedPlayer {
	out := make([]NamedPlayer, 0, len(pool)-1)
	for _, p := range pool {
		if p.Name == voter {
			continue
		}
		out = append(out, NamedPlayer{Name: p.Name})
	}
	return out
}
