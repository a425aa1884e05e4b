package rochambeau

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"math/rand/v2"
	"time"
)

var ErrWaitTimeout = errors.New("timed out waiting for opponents")

// Chooser picks the hand the Driver plays in each round.
type Chooser interface {
	Choose() Move
}

type randomChooser struct{}

func NewRandomChooser() Chooser {
	return randomChooser{}
}

func (randomChooser) Choose() Move {
	return Hands[rand.IntN(len(Hands))]
}

// SequenceChooser plays the given hands in order, repeating the last one once exhausted.
type SequenceChooser struct {
	hands []Move
	next  int
}

func NewSequenceChooser(hands ...Move) *SequenceChooser {
	return &SequenceChooser{hands: hands}
}

func (self *SequenceChooser) Choose() Move {
	if len(self.hands) == 0 {
		return ROCK
	}
	m := self.hands[self.next]
	if self.next < len(self.hands)-1 {
		self.next++
	}
	return m
}

type DriverPhase int

const (
	Joining DriverPhase = iota
	Playing
	Finishing
	Done
)

func (self DriverPhase) String() string {
	switch self {
	case Joining:
		return "JOINING"
	case Playing:
		return "PLAYING"
	case Finishing:
		return "FINISHING"
	case Done:
		return "DONE"
	default:
		return fmt.Sprintf("INVALID(%d)", int(self))
	}
}

// Driver selects and sends this peer's moves, waiting on the round state between sends.
type Driver struct {
	self    PeerID
	state   *roundState
	t       Transport
	chooser Chooser
	games   int
	timeout time.Duration
	phase   DriverPhase
	log     *logrus.Entry
}

func newDriver(self PeerID, state *roundState, t Transport, chooser Chooser, games int, timeout time.Duration, log *logrus.Entry) *Driver {
	return &Driver{
		self:    self,
		state:   state,
		t:       t,
		chooser: chooser,
		games:   games,
		timeout: timeout,
		phase:   Joining,
		log:     log,
	}
}

func (self *Driver) Phase() DriverPhase {
	self.state.lock.Lock()
	defer self.state.lock.Unlock()
	return self.phase
}

// Run plays until the game count is reached or the group terminates, and returns this peer's summary. The shared
// lock is never held across a send.
func (self *Driver) Run(ctx context.Context) (*Summary, error) {
	self.log.Info("started")
	defer self.log.Warn("exited")

	s := self.state
	for {
		s.lock.Lock()
		if s.failure != nil {
			err := s.failure
			self.phase = Done
			s.lock.Unlock()
			return nil, err
		}

		var move Move
		switch {
		case s.roundsCompleted >= self.games:
			move = END
			self.phase = Finishing

		case s.terminated:
			self.phase = Done
			s.lock.Unlock()
			self.log.Info("group terminated")
			return s.summary(), nil

		case !s.started:
			move = START
			self.phase = Joining

		default:
			move = self.chooser.Choose()
			self.phase = Playing
			s.submit(move)
		}
		s.lock.Unlock()

		if err := ctx.Err(); err != nil {
			self.setPhase(Done)
			return nil, err
		}

		if err := self.t.Send(Datagram{self.self, move}); err != nil {
			if s.isTerminated() {
				self.log.Debugf("ignoring send error after termination (%v)", err)
				self.setPhase(Done)
				return s.summary(), nil
			}
			self.setPhase(Done)
			return nil, errors.Wrapf(err, "error sending %s", move)
		}

		if move == END {
			s.lock.Lock()
			s.finishing()
			self.phase = Done
			s.lock.Unlock()
			self.log.Info("sent end")
			return s.summary(), nil
		}

		if err := self.wait(ctx, move); err != nil {
			self.setPhase(Done)
			return nil, err
		}
	}
}

// wait blocks until the barrier is satisfied after a START, or until the round just played has resolved.
func (self *Driver) wait(ctx context.Context, move Move) error {
	wctx := ctx
	if self.timeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, self.timeout)
		defer cancel()
	}

	s := self.state
	s.lock.Lock()
	defer s.lock.Unlock()

	var err error
	if move == START {
		err = s.await(wctx, s.barrier, func() bool { return s.started })
	} else {
		err = s.await(wctx, s.resolved, func() bool { return s.roundsResolved >= s.roundsCompleted })
	}
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(ErrWaitTimeout, "after %s", move)
	}
	return err
}

func (self *Driver) setPhase(phase DriverPhase) {
	self.state.lock.Lock()
	self.phase = phase
	self.state.lock.Unlock()
}
