package imposter

import "encoding/json"

// ClientMessage is the single envelope for everything a client sends.
// Only the fields relevant to a given Type are populated.
type ClientMessage struct {
	Type string `json:"type"` // "create-room", "join-room", "update-settings", ...

	PlayerName string `json:"playerName,omitempty"` // create-room / join-room / kick-player
	RoomCode   string `json:"roomCode,omitempty"`   // join-room

	NormalWord   string `json:"normalWord,omitempty"`   // start-game
	ImposterWord string `json:"imposterWord,omitempty"` // start-game

	VotedFor string `json:"votedFor,omitempty"` // submit-vote
	Method   string `json:"method,omitempty"`   // tie-resolution: "revote", "random", "skip"

	Message string `json:"message,omitempty"` // chat-message

	// update-settings: absent fields leave the current value untouched.
	TimerDuration *int `json:"timerDuration,omitempty"`
	ImposterCount *int `json:"imposterCount,omitempty"`
	MaxRounds     *int `json:"maxRounds,omitempty"`
	HintTimer     *int `json:"hintTimer,omitempty"`

	// Voice signaling relay. Offer/Answer/Candidate are opaque to the server.
	TargetID  string          `json:"targetId,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Muted     bool            `json:"muted,omitempty"`
}

// RosterPlayer is one entry of the room roster shown in the lobby.
type RosterPlayer struct {
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Private reply to a successful create-room.
type RoomCreatedMessage struct {
	Type     string `json:"type"` // "room-created"
	RoomCode string `json:"roomCode"`
}

// Private reply to a successful join-room.
type RoomJoinedMessage struct {
	Type     string `json:"type"` // "room-joined"
	RoomCode string `json:"roomCode"`
}

// Private reply when a request fails validation.
type RoomErrorMessage struct {
	Type    string `json:"type"` // "room-error"
	Message string `json:"message"`
}

// Broadcast whenever the roster grows (and after a kick).
type PlayerJoinedMessage struct {
	Type    string         `json:"type"` // "player-joined"
	Players []RosterPlayer `json:"players"`
	Host    string         `json:"host"`
}

// Broadcast when a player disconnects.
type PlayerLeftMessage struct {
	Type       string         `json:"type"` // "player-left"
	PlayerName string         `json:"playerName"`
	Players    []RosterPlayer `json:"players"`
	Host       string         `json:"host"`
}

// Broadcast after the host changes settings.
type SettingsUpdatedMessage struct {
	Type     string   `json:"type"` // "settings-updated"
	Settings Settings `json:"settings"`
}

type NamedPlayer struct {
	Name string `json:"name"`
}

// Broadcast when the host starts a game.
type GameStartedMessage struct {
	Type          string        `json:"type"` // "game-started"
	Phase         Phase         `json:"phase"`
	Players       []NamedPlayer `json:"players"`
	ImposterCount int           `json:"imposterCount"`
	Settings      Settings      `json:"settings"`
}

type RolePlayer struct {
	Name       string `json:"name"`
	IsImposter bool   `json:"isImposter"`
}

// Private to the host: the full picture nobody else may see.
type GrandMasterInfoMessage struct {
	Type         string       `json:"type"` // "grand-master-info"
	Imposters    []string     `json:"imposters"`
	NormalWord   string       `json:"normalWord"`
	ImposterWord string       `json:"imposterWord"`
	Participants []RolePlayer `json:"participants"`
}

// Private to each participant when words are distributed.
type YourWordMessage struct {
	Type string `json:"type"` // "your-word"
	Word string `json:"word"`
	Role string `json:"role"` // "imposter" or "normal"
}

// Broadcast word-seen progress during distribution.
type WordSeenUpdateMessage struct {
	Type  string `json:"type"` // "word-seen-update"
	Seen  int    `json:"seen"`
	Total int    `json:"total"`
}

// Broadcast hint progress.
type HintUpdateMessage struct {
	Type       string   `json:"type"` // "hint-update"
	HintsGiven []string `json:"hintsGiven"`
	Total      int      `json:"total"`
}

// Broadcast once every active player has given a hint. The host still has
// to advance to discussion explicitly.
type AllHintsGivenMessage struct {
	Type string `json:"type"` // "all-hints-given"
}

type PhasePlayer struct {
	Name       string `json:"name"`
	Eliminated bool   `json:"eliminated,omitempty"`
}

// Broadcast on every phase transition.
type PhaseChangeMessage struct {
	Type          string        `json:"type"` // "phase-change"
	Phase         Phase         `json:"phase"`
	Round         int           `json:"round,omitempty"`
	Players       []PhasePlayer `json:"players"`
	TimerDuration int           `json:"timerDuration,omitempty"`
	IsRevote      bool          `json:"isRevote,omitempty"`
}

// Private per active player when voting opens: who they may vote for.
type VoteRequestMessage struct {
	Type       string        `json:"type"` // "vote-request"
	Candidates []NamedPlayer `json:"candidates"`
	IsRevote   bool          `json:"isRevote,omitempty"`
}

// Broadcast after every accepted vote.
type VoteUpdateMessage struct {
	Type           string `json:"type"` // "vote-update"
	VotesSubmitted int    `json:"votesSubmitted"`
	VotesNeeded    int    `json:"votesNeeded"`
}

// Broadcast once a tally completes.
type VoteResultsMessage struct {
	Type        string      `json:"type"` // "vote-results"
	Results     []VoteCount `json:"results"`
	Eliminated  string      `json:"eliminated,omitempty"`
	Role        string      `json:"role,omitempty"`
	Tie         bool        `json:"tie"`
	TiedPlayers []string    `json:"tiedPlayers,omitempty"`
	GameOver    Verdict     `json:"gameOver,omitempty"`
}

type GameWords struct {
	Normal   string `json:"normal"`
	Imposter string `json:"imposter"`
}

type GameStats struct {
	Rounds     int `json:"rounds"`
	Eliminated int `json:"eliminated"`
}

type FinalPlayer struct {
	Name       string `json:"name"`
	IsImposter bool   `json:"isImposter"`
	Eliminated bool   `json:"eliminated"`
}

// Broadcast when the game ends for any reason.
type GameOverMessage struct {
	Type      string        `json:"type"` // "game-over"
	Winner    Verdict       `json:"winner"`
	Imposters []string      `json:"imposters"`
	Words     GameWords     `json:"words"`
	Stats     GameStats     `json:"stats"`
	Players   []FinalPlayer `json:"players"`
}

// Broadcast after the host resets the room for another game.
type BackToLobbyMessage struct {
	Type    string         `json:"type"` // "back-to-lobby"
	Players []RosterPlayer `json:"players"`
	Host    string         `json:"host"`
}

// Private to a player removed by the host.
type KickedMessage struct {
	Type string `json:"type"` // "kicked"
}

// Chat relayed to the whole room.
type ChatBroadcastMessage struct {
	Type      string `json:"type"` // "chat-message"
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// VoicePeer identifies one voice-chat participant.
type VoicePeer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Private to a joining voice peer: who is already broadcasting.
type VoiceExistingPeersMessage struct {
	Type  string      `json:"type"` // "voice-existing-peers"
	Peers []VoicePeer `json:"peers"`
}

type VoicePeerJoinedMessage struct {
	Type   string `json:"type"` // "voice-peer-joined"
	PeerID string `json:"peerId"`
	Name   string `json:"name"`
}

type VoicePeerLeftMessage struct {
	Type   string `json:"type"` // "voice-peer-left"
	PeerID string `json:"peerId"`
	Name   string `json:"name"`
}

type VoiceOfferMessage struct {
	Type     string          `json:"type"` // "voice-offer"
	FromID   string          `json:"fromId"`
	FromName string          `json:"fromName"`
	Offer    json.RawMessage `json:"offer"`
}

type VoiceAnswerMessage struct {
	Type   string          `json:"type"` // "voice-answer"
	FromID string          `json:"fromId"`
	Answer json.RawMessage `json:"answer"`
}

type VoiceIceCandidateMessage struct {
	Type      string          `json:"type"` // "voice-ice-candidate"
	FromID    string          `json:"fromId"`
	Candidate json.RawMessage `json:"candidate"`
}

type VoiceMuteStatusMessage struct {
	Type   string `json:"type"` // "voice-mute-status"
	PeerID string `json:"peerId"`
	Name   string `json:"name"`
	Muted  bool   `json:"muted"`
}
