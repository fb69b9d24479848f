package mines

import "fmt"

// Listener receives game notifications. Callbacks run after the operation
// that produced them has completed, so a listener always observes a
// consistent board and may call back into the game.
type Listener interface {
	GameStarted()
	TileRevealed(t Tile, userInitiated bool)
	TileMarked(t Tile)
	FlaggedCountChanged(count int)
	GameEnded(won bool)
	GameWon()
	GameLost(tippingPoint Tile)
	DetonationSequence(seq []Detonation)
}

// NopListener ignores every notification. Embed it to implement a subset
// of [Listener].
type NopListener struct{}

func (NopListener) GameStarted() {}
func (NopListener) TileRevealed(Tile, bool) {}
func (NopListener) TileMarked(Tile) {}
func (NopListener) FlaggedCountChanged(int) {}
func (NopListener) GameEnded(bool) {}
func (NopListener) GameWon() {}
func (NopListener) GameLost(Tile) {}
func (NopListener) DetonationSequence([]Detonation) {}

// Listeners fans notifications out in order.
type Listeners []Listener

func (ls Listeners) GameStarted() {
	for _, l := range ls {
		l.GameStarted()
	}
}

func (ls Listeners) TileRevealed(t Tile, userInitiated bool) {
	for _, l := range ls {
		l.TileRevealed(t, userInitiated)
	}
}

func (ls Listeners) TileMarked(t Tile) {
	for _, l := range ls {
		l.TileMarked(t)
	}
}

func (ls Listeners) FlaggedCountChanged(count int) {
	for _, l := range ls {
		l.FlaggedCountChanged(count)
	}
}

func (ls Listeners) GameEnded(won bool) {
	for _, l := range ls {
		l.GameEnded(won)
	}
}

func (ls Listeners) GameWon() {
	for _, l := range ls {
		l.GameWon()
	}
}

func (ls Listeners) GameLost(tippingPoint Tile) {
	for _, l := range ls {
		l.GameLost(tippingPoint)
	}
}

func (ls Listeners) DetonationSequence(seq []Detonation) {
	for _, l := range ls {
		l.DetonationSequence(seq)
	}
}

type EventKind uint8

const (
	EventGameStarted EventKind = iota + 1
	EventTileRevealed
	EventTileMarked
	EventFlaggedCountChanged
	EventGameEnded
	EventGameWon
	EventGameLost
	EventDetonationSequence
)

var eventNames = map[EventKind]string{
	EventGameStarted:         "game_started",
	EventTileRevealed:        "tile_revealed",
	EventTileMarked:          "tile_marked",
	EventFlaggedCountChanged: "flagged_count_changed",
	EventGameEnded:           "game_ended",
	EventGameWon:             "game_won",
	EventGameLost:            "game_lost",
	EventDetonationSequence:  "detonation_sequence",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

// Event is a notification captured as a value, so it can be queued until
// the producing operation commits or shipped to a remote subscriber.
type Event struct {
	Kind          EventKind
	Tile          Tile
	UserInitiated bool
	Count         int
	Won           bool
	Detonations   []Detonation
}

func (e Event) Dispatch(l Listener) {
	switch e.Kind {
	case EventGameStarted:
		l.GameStarted()
	case EventTileRevealed:
		l.TileRevealed(e.Tile, e.UserInitiated)
	case EventTileMarked:
		l.TileMarked(e.Tile)
	case EventFlaggedCountChanged:
		l.FlaggedCountChanged(e.Count)
	case EventGameEnded:
		l.GameEnded(e.Won)
	case EventGameWon:
		l.GameWon()
	case EventGameLost:
		l.GameLost(e.Tile)
	case EventDetonationSequence:
		l.DetonationSequence(e.Detonations)
	}
}

// Recorder is a [Listener] that keeps every notification it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Reset() []Event {
	events := r.Events
	r.Events = nil
	return events
}

func (r *Recorder) GameStarted() {
	r.Events = append(r.Events, Event{Kind: EventGameStarted})
}

func (r *Recorder) TileRevealed(t Tile, userInitiated bool) {
	r.Events = append(r.Events, Event{
		Kind: EventTileRevealed, Tile: t, UserInitiated: userInitiated,
	})
}

func (r *Recorder) TileMarked(t Tile) {
	r.Events = append(r.Events, Event{Kind: EventTileMarked, Tile: t})
}

func (r *Recorder) FlaggedCountChanged(count int) {
	r.Events = append(r.Events, Event{Kind: EventFlaggedCountChanged, Count: count})
}

func (r *Recorder) GameEnded(won bool) {
	r.Events = append(r.Events, Event{Kind: EventGameEnded, Won: won})
}

func (r *Recorder) GameWon() {
	r.Events = append(r.Events, Event{Kind: EventGameWon, Won: true})
}

func (r *Recorder) GameLost(tippingPoint Tile) {
	r.Events = append(r.Events, Event{Kind: EventGameLost, Tile: tippingPoint})
}

func (r *Recorder) DetonationSequence(seq []Detonation) {
	r.Events = append(r.Events, Event{Kind: EventDetonationSequence, Detonations: seq})
}

// Count returns how many recorded events are of kind k.
func (r *Recorder) Count(k EventKind) (c int) {
	for _, e := range r.Events {
		if e.Kind == k {
			c++
		}
	}
	return
}
