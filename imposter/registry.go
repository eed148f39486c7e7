package imposter

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"
)

// Room codes avoid characters that read ambiguously when shouted across a
// couch (no 0/O/1/I).
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
)

// DefaultRevealDelay is how long the elimination reveal stays on screen
// before the next hint round starts automatically.
const DefaultRevealDelay = 5 * time.Second

// Options configures a Registry.
type Options struct {
	SessionTimeout time.Duration // idle rooms are reaped after this; 0 disables
	RevealDelay    time.Duration // elimination -> next round delay
	Logf           func(string, ...any)
}

// Registry owns every live room, keyed by code. It is constructed once at
// process start and handed to the gateway; no package-level state.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	opts  Options
}

func NewRegistry(opts Options) *Registry {
	if opts.RevealDelay == 0 {
		opts.RevealDelay = DefaultRevealDelay
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}

	reg := &Registry{
		rooms: make(map[string]*Room),
		opts:  opts,
	}
	if opts.SessionTimeout > 0 {
		go reg.reaperLoop()
	}
	return reg
}

// randomRoomCode draws 6 symbols from the room alphabet. The alphabet
// length divides 256, so modulo sampling stays unbiased.
func randomRoomCode() string {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	out := make([]byte, roomCodeLength)
	for i := range out {
		out[i] = roomCodeAlphabet[int(buf[i])%len(roomCodeAlphabet)]
	}
	return string(out)
}

// CreateRoom makes a fresh room with the given client as sole player and
// host, and starts its event loop.
func (reg *Registry) CreateRoom(c *Client, hostName string) *Room {
	reg.mu.Lock()
	var code string
	for {
		code = randomRoomCode()
		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}

	room := newRoom(code, reg.opts.RevealDelay, reg.opts.Logf, reg.remove)
	reg.rooms[code] = room
	reg.mu.Unlock()

	go room.run()
	room.addHost(c, hostName)

	reg.opts.Logf("ROOMS: %q created %s", hostName, code)

	return room
}

// Find looks up a live room; codes are case-insensitive.
func (reg *Registry) Find(code string) (*Room, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))

	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	return room, ok
}

// Len reports how many rooms are live.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return len(reg.rooms)
}

func (reg *Registry) remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.rooms, code)

	reg.opts.Logf("ROOMS: %s removed", code)
}

// reaperLoop periodically reaps rooms idle past the session timeout.
// Rooms are inspected outside the registry lock; lock order is always
// registry before room.
func (reg *Registry) reaperLoop() {
	ticker := time.NewTicker(reg.opts.SessionTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-reg.opts.SessionTimeout)

		reg.mu.Lock()
		snapshot := make([]*Room, 0, len(reg.rooms))
		for _, room := range reg.rooms {
			snapshot = append(snapshot, room)
		}
		reg.mu.Unlock()

		for _, room := range snapshot {
			if room.LastActive().Before(cutoff) {
				reg.opts.Logf("ROOMS: %s idle, reaping", room.Code)
				room.expire()
				reg.remove(room.Code)
			}
		}
	}
}
