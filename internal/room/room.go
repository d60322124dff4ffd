// internal/room/room.go
package room

import (
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Capacity and clamp bounds for game settings requested by the host.
const (
	MaxConnections = 5

	minRounds    = 1
	maxRounds    = 10
	minRoundTime = 10 * time.Second
	maxRoundTime = 180 * time.Second

	defaultRounds    = 3
	defaultRoundTime = 10 * time.Second
)

// ErrRoomFull is returned by Join when the room is at capacity.
var ErrRoomFull = errors.New("room limit reached")

// Room is a single game session: an ordered roster of participants, the
// turn/round state machine, and the broadcast fan-out. All state is guarded
// by Mu; exported methods acquire it, *Unsafe methods assume it is held.
type Room struct {
	ID uuid.UUID

	// Players is the ordered roster; insertion order is turn order. The
	// participant at index 0 is the host. Connections is the delivery set,
	// kept separately so membership checks stay independent of ordering.
	Players     []*Conn
	Connections map[*Conn]struct{}

	Phase       string
	Round       int
	MaxRounds   int
	RoundTime   time.Duration
	DrawerIndex int
	Word        string
	Deadline    time.Time

	// Completed holds everyone who has solved the current word, pre-seeded
	// with the drawer at the start of each turn. Cleared on turn change.
	Completed map[*Conn]struct{}

	turnTimer *time.Timer

	// PickWord supplies the secret word for each turn.
	PickWord func() string

	// OnEmpty is invoked (outside the lock) after a leave empties the room,
	// typically wired to RoomStore.DeleteRoom.
	OnEmpty func(roomID uuid.UUID)

	Mu sync.Mutex
}

// NewRoom builds a room in the waiting phase. A word is preselected so that
// participants joining before the first turn already see one.
func NewRoom(pickWord func() string) *Room {
	id, _ := uuid.NewRandom()
	return &Room{
		ID:          id,
		Connections: make(map[*Conn]struct{}),
		Completed:   make(map[*Conn]struct{}),
		Phase:       PhaseWaiting,
		MaxRounds:   defaultRounds,
		RoundTime:   defaultRoundTime,
		DrawerIndex: -1,
		Word:        pickWord(),
		PickWord:    pickWord,
	}
}

// Join adds a connection to the room and announces the new roster. The
// ordered roster is idempotent on re-join; the connection set always gains
// the connection. Fails with ErrRoomFull at capacity, leaving state intact.
func (r *Room) Join(c *Conn) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if len(r.Connections) >= MaxConnections {
		return ErrRoomFull
	}

	if _, present := r.Connections[c]; !present {
		r.Players = append(r.Players, c)
	}
	r.Connections[c] = struct{}{}
	c.RoomID = r.ID

	r.broadcastUnsafe(map[string]interface{}{
		"type":     MsgRoomMemberJoin,
		"player":   map[string]interface{}{"name": c.Handle},
		"players":  r.rosterUnsafe(),
		"status":   r.Phase,
		"word":     r.Word,
		"deadline": r.deadlineMillisUnsafe(),
	}, nil)

	r.appointHostUnsafe()
	return nil
}

// Leave removes a connection from the roster and delivery set. If the leaver
// was drawing, the turn advances immediately to the participant who would
// have drawn next. A leave for a connection not in the room is a no-op.
// When the room empties, OnEmpty is triggered after the lock is released.
func (r *Room) Leave(c *Conn) {
	r.Mu.Lock()

	idx := -1
	for i, p := range r.Players {
		if p == c {
			idx = i
			break
		}
	}
	if _, present := r.Connections[c]; idx == -1 && !present {
		r.Mu.Unlock()
		return
	}

	if idx >= 0 {
		r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	}
	delete(r.Connections, c)
	delete(r.Completed, c)
	c.RoomID = uuid.Nil

	r.broadcastUnsafe(map[string]interface{}{
		"type":    MsgRoomMemberLeave,
		"player":  map[string]interface{}{"name": c.Handle},
		"players": r.rosterUnsafe(),
	}, nil)

	// Keep the rotation aligned: stepping the index back makes the upcoming
	// increment land on the participant who was next in line.
	if r.Phase == PhaseOngoing && idx == r.DrawerIndex {
		r.DrawerIndex--
		r.advanceTurnUnsafe()
	} else if r.Phase == PhaseOngoing && idx >= 0 && idx < r.DrawerIndex {
		// Roster shifted left underneath the drawer.
		r.DrawerIndex--
	}

	r.appointHostUnsafe()

	empty := len(r.Connections) == 0
	onEmpty := r.OnEmpty
	if empty && r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	r.Mu.Unlock()

	if empty && onEmpty != nil {
		onEmpty(r.ID)
	}
}

// RequestStart begins a game with the requested settings. Needs at least two
// connected participants; otherwise a user-visible notice is broadcast and
// nothing changes. Settings are clamped, scores reset, and the first turn
// scheduled.
func (r *Room) RequestStart(rounds int, roundTimeSec int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	r.MaxRounds = clampInt(rounds, minRounds, maxRounds)
	r.RoundTime = clampDuration(time.Duration(roundTimeSec)*time.Second, minRoundTime, maxRoundTime)

	if len(r.Connections) <= 1 {
		r.broadcastUnsafe(map[string]interface{}{
			"type": MsgChatServer,
			"text": "There must be at least two players before the game can start!",
		}, nil)
		return
	}

	for _, p := range r.Players {
		p.Score = 0
	}

	r.Phase = PhaseOngoing
	r.advanceTurnUnsafe()

	r.broadcastUnsafe(map[string]interface{}{
		"type":    MsgGameStart,
		"players": r.rosterUnsafe(),
	}, nil)
}

// HandleMessage dispatches an in-room message from a connection: start
// requests to the scheduler, chat to the guess evaluator, canvas traffic
// relayed verbatim. Unknown types are logged and dropped.
func (r *Room) HandleMessage(c *Conn, msg map[string]interface{}) {
	msgType, _ := msg["type"].(string)
	switch msgType {
	case MsgChatClient:
		r.Mu.Lock()
		r.evaluateGuessUnsafe(c, msg)
		r.Mu.Unlock()

	case MsgCanvasUpdate, MsgCanvasClear:
		r.Mu.Lock()
		r.broadcastUnsafe(msg, nil)
		r.Mu.Unlock()

	case MsgGameRequestStart:
		r.RequestStart(intField(msg, "rounds", defaultRounds), intField(msg, "roundTime", int(defaultRoundTime/time.Second)))

	default:
		log.Printf("room %s: unknown message type %q", r.ID, msgType)
	}
}

// evaluateGuessUnsafe judges a chat message against the current word. A
// correct first-time guess during an ongoing game scores by remaining time;
// anything else is relayed as chat, filtered so that participants who have
// already solved the word cannot leak hints to those still guessing.
func (r *Room) evaluateGuessUnsafe(c *Conn, msg map[string]interface{}) {
	text, _ := msg["text"].(string)
	_, alreadySolved := r.Completed[c]

	if r.Phase == PhaseOngoing && !alreadySolved && strings.EqualFold(text, r.Word) {
		r.Completed[c] = struct{}{}

		// Linear decay from 100 at turn start to 0 at the deadline.
		roundMs := float64(r.RoundTime.Milliseconds())
		elapsedMs := float64(time.Since(r.Deadline.Add(-r.RoundTime)).Milliseconds())
		c.Score += int(math.Round(100 * (roundMs - elapsedMs) / roundMs))

		r.broadcastUnsafe(map[string]interface{}{
			"type":    MsgSuccessfulGuess,
			"guesser": c.Handle,
			"players": r.rosterUnsafe(),
		}, nil)

		// The drawer is pre-seeded into Completed, so a full set means
		// everyone solved it; no reason to wait out the clock.
		if len(r.Completed) == len(r.Connections) {
			r.advanceTurnUnsafe()
		}
		return
	}

	var filter func(*Conn) bool
	if alreadySolved {
		filter = func(peer *Conn) bool {
			_, solved := r.Completed[peer]
			return solved
		}
	}
	r.broadcastUnsafe(msg, filter)
}

// advanceTurnUnsafe moves the game to the next turn: cancels the pending
// expiry timer, rotates the drawer index (wrapping increments the round),
// finishes the game when rounds are exhausted or one participant remains,
// and otherwise schedules the next advance, assigns a fresh word, and resets
// the solved set to the new drawer.
func (r *Room) advanceTurnUnsafe() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}

	if r.DrawerIndex >= 0 && r.DrawerIndex < len(r.Players) {
		r.Players[r.DrawerIndex].Write(map[string]interface{}{"type": MsgGameEndTurn})
	}

	if len(r.Players) == 0 {
		r.finishUnsafe()
		return
	}

	r.DrawerIndex++
	if r.DrawerIndex == len(r.Players) {
		// Last participant finished their turn; the round is complete.
		r.Round++
		r.DrawerIndex = 0
	}

	if len(r.Players) == 1 || r.Round >= r.MaxRounds {
		r.finishUnsafe()
		return
	}

	// The callback checks timer identity so that a timeout which was already
	// in flight when the turn advanced early cannot move the game twice.
	var timer *time.Timer
	timer = time.AfterFunc(r.RoundTime, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		if r.turnTimer != timer {
			return
		}
		r.advanceTurnUnsafe()
	})
	r.turnTimer = timer

	// Round the deadline up to a whole second so every client derives the
	// same countdown from it.
	now := time.Now()
	r.Deadline = now.Truncate(time.Second).Add(time.Second).Add(r.RoundTime)

	r.Word = r.PickWord()
	r.broadcastUnsafe(map[string]interface{}{
		"type":     MsgGameNextWord,
		"word":     r.Word,
		"deadline": r.deadlineMillisUnsafe(),
		"drawer":   r.DrawerIndex,
		"round":    r.Round,
	}, nil)

	drawer := r.Players[r.DrawerIndex]
	drawer.Write(map[string]interface{}{"type": MsgGameStartTurn})
	r.Completed = map[*Conn]struct{}{drawer: {}}
}

// finishUnsafe resets the room to the waiting phase and announces game end.
func (r *Room) finishUnsafe() {
	r.Phase = PhaseWaiting
	r.DrawerIndex = -1
	r.Round = 0
	r.Completed = make(map[*Conn]struct{})

	r.broadcastUnsafe(map[string]interface{}{"type": MsgGameEnd}, nil)
}

// broadcastUnsafe is the single outbound primitive: it delivers msg to every
// open connection satisfying filter (nil means everyone). Undeliverable
// connections are skipped without error; membership cleanup happens on the
// disconnect path, not here.
func (r *Room) broadcastUnsafe(msg map[string]interface{}, filter func(*Conn) bool) {
	for c := range r.Connections {
		if filter != nil && !filter(c) {
			continue
		}
		if !c.Open() {
			continue
		}
		c.Write(msg)
	}
}

// appointHostUnsafe notifies the roster head that it is host. Host status is
// derived from list position and re-announced on every structural change
// rather than stored.
func (r *Room) appointHostUnsafe() {
	if len(r.Players) > 0 {
		r.Players[0].Write(map[string]interface{}{"type": MsgRoomAppointHost})
	}
}

// rosterUnsafe snapshots the ordered participant list for broadcast payloads.
func (r *Room) rosterUnsafe() []map[string]interface{} {
	players := make([]map[string]interface{}, 0, len(r.Players))
	for i, p := range r.Players {
		players = append(players, map[string]interface{}{
			"name":      p.Handle,
			"score":     p.Score,
			"isDrawing": i == r.DrawerIndex,
		})
	}
	return players
}

func (r *Room) deadlineMillisUnsafe() int64 {
	if r.Deadline.IsZero() {
		return 0
	}
	return r.Deadline.UnixMilli()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// intField reads a numeric field from a decoded JSON object, which arrives
// as float64, falling back to def when absent or malformed.
func intField(msg map[string]interface{}, key string, def int) int {
	if f, ok := msg[key].(float64); ok {
		return int(f)
	}
	return def
}
