package imposter

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Join failures, reported privately to the joining client.
var (
	ErrRoomNotFound   = errors.New("Room not found.")
	ErrGameInProgress = errors.New("Game already in progress.")
	ErrNameTaken      = errors.New("Name already taken in this room.")
	ErrRoomFull       = errors.New("Room is full (max 20 players).")
)

// Phase is one discrete state of the per-room game state machine.
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseDistribute  Phase = "distribute"
	PhaseHints       Phase = "hints"
	PhaseDiscussion  Phase = "discussion"
	PhaseVoting      Phase = "voting"
	PhaseElimination Phase = "elimination"
	PhaseGameOver    Phase = "gameover"
)

// MaxPlayers caps the roster of a single room, host included.
const MaxPlayers = 20

// Settings are the host-tunable knobs of a room. Out-of-range values are
// clamped, never rejected.
type Settings struct {
	TimerDuration int `json:"timerDuration"` // discussion timer, seconds
	ImposterCount int `json:"imposterCount"` // 0 = auto
	MaxRounds     int `json:"maxRounds"`     // 0 = unlimited
	HintTimer     int `json:"hintTimer"`     // seconds, 0 = off
}

func defaultSettings() Settings {
	return Settings{TimerDuration: 120}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// apply merges the patch fields present in msg, clamping each into range.
func (s *Settings) apply(msg ClientMessage) {
	if msg.TimerDuration != nil {
		s.TimerDuration = clamp(*msg.TimerDuration, 30, 300)
	}
	if msg.ImposterCount != nil {
		s.ImposterCount = clamp(*msg.ImposterCount, 0, 5)
	}
	if msg.MaxRounds != nil {
		s.MaxRounds = clamp(*msg.MaxRounds, 0, 20)
	}
	if msg.HintTimer != nil {
		s.HintTimer = clamp(*msg.HintTimer, 0, 120)
	}
}

// Player is one room member, host included. Elimination only flags the
// entry; a player object is removed solely on disconnect or kick.
type Player struct {
	Name       string
	IsImposter bool
	Eliminated bool

	client *Client
}

type inbound struct {
	client *Client
	msg    ClientMessage
}

// Room is one authoritative game instance. All state behind mu; the run
// loop and the handful of timer callbacks are the only mutators.
type Room struct {
	Code string

	mu sync.RWMutex

	host    *Client
	players []*Player // join order
	clients map[*Client]bool

	settings Settings
	phase    Phase
	round    int

	normalWord   string
	imposterWord string

	votes       map[string]string // voter name -> target name
	wordSeen    map[string]bool   // connection ID -> acknowledged
	hintsGiven  []string          // player names, in acknowledgement order
	tiedPlayers []string
	revote      bool

	voicePeers []VoicePeer

	events chan inbound
	unreg  chan *Client
	done   chan struct{}
	closed sync.Once

	createdAt  time.Time
	lastActive time.Time

	revealDelay time.Duration
	logf        func(string, ...any)
	onEmpty     func(code string)
}

func newRoom(code string, revealDelay time.Duration, logf func(string, ...any), onEmpty func(string)) *Room {
	now := time.Now()
	return &Room{
		Code:        code,
		clients:     make(map[*Client]bool),
		settings:    defaultSettings(),
		phase:       PhaseLobby,
		votes:       make(map[string]string),
		events:      make(chan inbound, 32),
		unreg:       make(chan *Client, 8),
		done:        make(chan struct{}),
		createdAt:   now,
		lastActive:  now,
		revealDelay: revealDelay,
		logf:        logf,
		onEmpty:     onEmpty,
	}
}

// run serializes every inbound event against the room state. One goroutine
// per live room.
func (r *Room) run() {
	for {
		select {
		case ev := <-r.events:
			r.handle(ev)
		case c := <-r.unreg:
			r.handleDisconnect(c)
		case <-r.done:
			return
		}
	}
}

// post queues an event for the run loop, giving up if the room has been
// torn down in the meantime.
func (r *Room) post(ev inbound) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) detach(c *Client) {
	select {
	case r.unreg <- c:
	case <-r.done:
	}
}

// closeLocked stops the run loop. Connections are left to their pumps.
func (r *Room) closeLocked() {
	r.closed.Do(func() {
		close(r.done)
	})
}

// expire tears the room down and disconnects everyone. Used by the
// registry's idle reaper.
func (r *Room) expire() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeLocked()
	for c := range r.clients {
		delete(r.clients, c)
		c.close()
	}
}

// addHost seats the room's creator as its sole player and Grand Master.
func (r *Room) addHost(c *Client, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.host = c
	r.players = append(r.players, &Player{Name: name, client: c})
	r.clients[c] = true
	c.room.Store(r)

	r.sendLocked(c, RoomCreatedMessage{Type: "room-created", RoomCode: r.Code})
	r.broadcastRosterLocked()
}

// Join validates and seats a new player, replying privately and then
// broadcasting the grown roster. Names are unique per room,
// case-insensitively.
func (r *Room) Join(c *Client, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-r.done:
		return ErrRoomNotFound
	default:
	}

	if r.phase != PhaseLobby {
		return ErrGameInProgress
	}
	if r.nameTakenLocked(name) {
		return ErrNameTaken
	}
	if len(r.players) >= MaxPlayers {
		return ErrRoomFull
	}

	r.lastActive = time.Now()
	r.players = append(r.players, &Player{Name: name, client: c})
	r.clients[c] = true
	c.room.Store(r)

	r.logf("ROOMS: %q joined %s", name, r.Code)

	r.sendLocked(c, RoomJoinedMessage{Type: "room-joined", RoomCode: r.Code})
	r.broadcastRosterLocked()

	return nil
}

// LastActive reports when the room last processed an event.
func (r *Room) LastActive() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastActive
}

// Phase reports the room's current phase.
func (r *Room) Phase() Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.phase
}

// findPlayerLocked resolves a connection to its player entry, if any.
func (r *Room) findPlayerLocked(c *Client) *Player {
	for _, p := range r.players {
		if p.client == c {
			return p
		}
	}
	return nil
}

func (r *Room) findPlayerByNameLocked(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) nameTakenLocked(name string) bool {
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// participantsLocked returns every non-host player, eliminated or not.
func (r *Room) participantsLocked() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.client != r.host {
			out = append(out, p)
		}
	}
	return out
}

// activePlayersLocked returns participants still in the game.
func (r *Room) activePlayersLocked() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.client != r.host && !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) activeRolesLocked() []RolePlayer {
	active := r.activePlayersLocked()
	out := make([]RolePlayer, 0, len(active))
	for _, p := range active {
		out = append(out, RolePlayer{Name: p.Name, IsImposter: p.IsImposter})
	}
	return out
}

func (r *Room) rosterLocked() []RosterPlayer {
	out := make([]RosterPlayer, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, RosterPlayer{Name: p.Name, IsHost: p.client == r.host})
	}
	return out
}

func (r *Room) hostNameLocked() string {
	for _, p := range r.players {
		if p.client == r.host {
			return p.Name
		}
	}
	return ""
}

// sendLocked delivers a private message, dropping the client if its send
// buffer is full (a stalled connection must not block the room).
func (r *Room) sendLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(r.clients, c)
		c.close()
	}
}

func (r *Room) broadcastLocked(msg any) {
	for c := range r.clients {
		r.sendLocked(c, msg)
	}
}

func (r *Room) broadcastExceptLocked(skip *Client, msg any) {
	for c := range r.clients {
		if c == skip {
			continue
		}
		r.sendLocked(c, msg)
	}
}

func (r *Room) errorLocked(c *Client, text string) {
	r.sendLocked(c, RoomErrorMessage{Type: "room-error", Message: text})
}

func (r *Room) broadcastRosterLocked() {
	r.broadcastLocked(PlayerJoinedMessage{
		Type:    "player-joined",
		Players: r.rosterLocked(),
		Host:    r.hostNameLocked(),
	})
}
