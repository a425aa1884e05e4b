package rochambeau

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

// Move is the one-byte payload of every datagram. START and END are control values; ROCK, PAPER and SCISSORS are
// playable hands.
type Move int8

const (
	END      Move = -1
	START    Move = 0
	ROCK     Move = 1
	PAPER    Move = 2
	SCISSORS Move = 3
)

var Hands = []Move{ROCK, PAPER, SCISSORS}

func (self Move) IsHand() bool {
	return self == ROCK || self == PAPER || self == SCISSORS
}

func (self Move) IsValid() bool {
	return self == START || self == END || self.IsHand()
}

func (self Move) String() string {
	switch self {
	case START:
		return "START"
	case ROCK:
		return "ROCK"
	case PAPER:
		return "PAPER"
	case SCISSORS:
		return "SCISSORS"
	case END:
		return "END"
	default:
		return fmt.Sprintf("INVALID(%d)", int8(self))
	}
}

func ParseMove(s string) (Move, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "START":
		return START, nil
	case "ROCK":
		return ROCK, nil
	case "PAPER":
		return PAPER, nil
	case "SCISSORS":
		return SCISSORS, nil
	case "END":
		return END, nil
	default:
		return 0, errors.Errorf("unknown move '%s'", s)
	}
}
