package mines

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type State uint8

const (
	NotStarted State = iota
	Playing
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Over reports whether s is terminal.
func (s State) Over() bool {
	return s == Won || s == Lost
}

// FormatElapsed renders d as MM:SS, as shown on the game timer. Minutes
// saturate at 99.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	mins := secs / 60
	if mins > 99 {
		mins = 99
	}
	return fmt.Sprintf("%02d:%02d", mins, secs%60)
}
