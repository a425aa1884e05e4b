package rochambeau

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"net"
	"sync"
)

// Listener folds every datagram received from the group into the shared round state. It stops when enough opponents
// have finished, or on the first receive error.
type Listener struct {
	self  PeerID
	state *roundState
	t     Transport
	ii    InstrumentInstance
	log   *logrus.Entry
	done  chan struct{}
	once  sync.Once
	err   error
}

func newListener(self PeerID, state *roundState, t Transport, ii InstrumentInstance, log *logrus.Entry) *Listener {
	return &Listener{
		self:  self,
		state: state,
		t:     t,
		ii:    ii,
		log:   log,
		done:  make(chan struct{}),
	}
}

func (self *Listener) Done() <-chan struct{} {
	return self.done
}

// Err returns the receive error that stopped the Listener, if any. Valid after Done is closed.
func (self *Listener) Err() error {
	<-self.done
	return self.err
}

func (self *Listener) Phase() ListenerPhase {
	self.state.lock.Lock()
	defer self.state.lock.Unlock()
	return self.state.phase
}

func (self *Listener) run() {
	self.log.Info("started")
	defer self.log.Warn("exited")
	defer self.once.Do(func() { close(self.done) })

	for {
		d, err := self.t.Receive()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				self.log.Debug("transport closed")
				self.state.lock.Lock()
				self.state.phase = Stopped
				self.state.lock.Unlock()
				return
			}
			self.ii.ReadError(err)
			self.log.Errorf("error receiving (%v)", err)
			self.err = errors.Wrap(err, "receive")
			self.state.lock.Lock()
			self.state.fail(self.err)
			self.state.lock.Unlock()
			return
		}
		if !self.Fold(d) {
			if err := self.t.Leave(); err != nil {
				self.log.Errorf("error leaving group (%v)", err)
			}
			return
		}
	}
}

// Fold applies one datagram to the round state and reports whether the Listener should keep running.
func (self *Listener) Fold(d Datagram) bool {
	s := self.state
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.phase == Stopped {
		self.ii.Anomaly(d, "datagram after stop")
		return false
	}
	self.ii.DatagramRx(d)
	s.roster.observe(d)

	if !s.started && d.Move == START {
		if s.barrierCount < s.players {
			s.barrierCount++
		}
		self.ii.StartObserved(d.Peer, s.barrierCount)
		self.log.Infof("received start signal from %d players", s.barrierCount)
		if s.barrierCount >= s.players {
			s.started = true
			s.phase = Running
			self.ii.BarrierSatisfied(s.barrierCount)
			self.log.Info("starting")
			s.barrier.Broadcast()
		}
		return true
	}

	if d.Peer == self.self {
		return true
	}

	switch d.Move {
	case START:
		self.ii.Anomaly(d, "start after barrier")
		return true

	case END, ROCK, PAPER, SCISSORS:
		return s.opponent(d)

	default:
		self.ii.Anomaly(d, "invalid move")
		return true
	}
}
