package rochambeau

import (
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"strings"
	"sync"
)

// RoundResult records one resolved round from this peer's point of view.
type RoundResult struct {
	Round     int
	Hand      Move
	Opponents []Move
	Score     int
	Total     int
	Abandoned bool
}

func (self *RoundResult) String() string {
	opponents := make([]string, len(self.Opponents))
	for i, m := range self.Opponents {
		opponents[i] = m.String()
	}
	if self.Abandoned {
		return fmt.Sprintf("#%d played %s, opponents [%s], abandoned, total %d", self.Round, self.Hand, strings.Join(opponents, ", "), self.Total)
	}
	return fmt.Sprintf("#%d played %s, opponents [%s], scored %d, total %d", self.Round, self.Hand, strings.Join(opponents, ", "), self.Score, self.Total)
}

type ListenerPhase int

const (
	WaitingForBarrier ListenerPhase = iota
	Running
	Stopped
)

func (self ListenerPhase) String() string {
	switch self {
	case WaitingForBarrier:
		return "WAITING_FOR_BARRIER"
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("INVALID(%d)", int(self))
	}
}

type pendingMove struct {
	peer PeerID
	move Move
}

// roundState is shared by the Listener, which folds datagrams into it, and the Driver, which submits hands and waits
// on it. Every field is guarded by lock. barrier is signalled when the start barrier is satisfied, resolved when a
// round is resolved; both are broadcast on termination or failure.
type roundState struct {
	lock     *sync.Mutex
	barrier  *sync.Cond
	resolved *sync.Cond

	players   int
	endQuorum int

	phase           ListenerPhase
	barrierCount    int
	started         bool
	pending         []pendingMove
	early           []pendingMove
	hand            Move
	roundsCompleted int
	roundsResolved  int
	roundsClosed    int
	replaying       bool
	ended           bool
	score           int
	terminated      bool
	failure         error
	history         []*RoundResult
	roster          *roster

	ii  InstrumentInstance
	log *logrus.Entry
}

func newRoundState(cfg *Config, ii InstrumentInstance, log *logrus.Entry) *roundState {
	lock := new(sync.Mutex)
	return &roundState{
		lock:      lock,
		barrier:   sync.NewCond(lock),
		resolved:  sync.NewCond(lock),
		players:   cfg.Players,
		endQuorum: cfg.EndQuorum,
		phase:     WaitingForBarrier,
		pending:   make([]pendingMove, 0, cfg.Players-1),
		roster:    newRoster(cfg.RosterOrder),
		ii:        ii,
		log:       log,
	}
}

// submit records the hand the Driver is about to send for the next round. Caller holds lock.
func (self *roundState) submit(hand Move) {
	self.hand = hand
	self.roundsCompleted++
	self.tryResolve()
}

// finishing records that the Driver has sent its last hand, dropping any round it will never play. Caller holds lock.
func (self *roundState) finishing() {
	self.ended = true
	self.tryResolve()
}

// opponent folds one valid, non-START move from another peer into the round, and reports whether the Listener should
// keep running. A peer's second move within a round belongs to the next round and is held until this one closes.
// Caller holds lock.
func (self *roundState) opponent(d Datagram) bool {
	if d.Move == END && self.roster.isFinished(d.Peer) {
		self.ii.Anomaly(d, "duplicate end")
		return true
	}
	if self.hasPending(d.Peer) || self.roundComplete() {
		self.ii.Anomaly(d, "move for next round")
		self.early = append(self.early, pendingMove{d.Peer, d.Move})
		return true
	}

	if d.Move == END {
		finished := self.finish(d.Peer)
		if len(self.pending) == 0 {
			if finished >= self.endQuorum {
				self.terminate()
				return false
			}
			return true
		}
		self.pending = append(self.pending, pendingMove{d.Peer, END})
		self.tryResolve()
		return !self.terminated
	}

	self.ii.OpponentMove(d.Peer, d.Move)
	self.pending = append(self.pending, pendingMove{d.Peer, d.Move})
	self.tryResolve()
	return !self.terminated
}

// finish records peer as finished and returns the number of finished peers. Caller holds lock.
func (self *roundState) finish(peer PeerID) int {
	finished, fresh := self.roster.finish(peer)
	if fresh {
		self.ii.PeerFinished(peer, finished)
		self.log.Infof("peer [%s] finished (%d of %d)", peer, finished, self.endQuorum)
	}
	return finished
}

func (self *roundState) hasPending(peer PeerID) bool {
	for _, pm := range self.pending {
		if pm.peer == peer {
			return true
		}
	}
	return false
}

func (self *roundState) pendingMoves() []Move {
	moves := make([]Move, len(self.pending))
	for i, pm := range self.pending {
		moves[i] = pm.move
	}
	return moves
}

// tryResolve completes the pending round once every opponent move (or an END in place of one) is in and the Driver
// has sent its own hand for the round. Caller holds lock.
func (self *roundState) tryResolve() {
	if !self.roundComplete() {
		return
	}
	if self.roundsCompleted <= self.roundsResolved {
		if self.ended {
			self.log.Debugf("discarding opponent moves %v, no hand left to play", self.pendingMoves())
			self.pending = self.pending[:0]
			self.roundsClosed++
			self.replay()
		}
		return
	}

	opponents := self.pendingMoves()
	r := &RoundResult{
		Round:     self.roundsResolved + 1,
		Hand:      self.hand,
		Opponents: opponents,
	}
	if opponents[len(opponents)-1] == END {
		r.Abandoned = true
	} else {
		r.Score = RoundScore(self.hand, opponents...)
		self.score += r.Score
	}
	r.Total = self.score
	self.roundsResolved++
	self.roundsClosed++
	self.pending = self.pending[:0]
	self.history = append(self.history, r)

	self.ii.RoundResolved(r)
	self.log.Infof("round %s", r)
	self.resolved.Broadcast()

	self.replay()
}

// replay folds the moves held for the next round, repeating while they keep closing rounds. Caller holds lock.
func (self *roundState) replay() {
	if self.replaying {
		return
	}
	self.replaying = true
	defer func() { self.replaying = false }()

	for len(self.early) > 0 && !self.terminated {
		closed := self.roundsClosed
		batch := self.early
		self.early = nil
		for _, pm := range batch {
			if self.terminated {
				break
			}
			self.opponent(Datagram{pm.peer, pm.move})
		}
		if self.roundsClosed == closed {
			break
		}
	}
}

// roundComplete reports whether every opponent move for the pending round is in, counting an END as the last one.
// Peers that have already finished are not waited for. Caller holds lock.
func (self *roundState) roundComplete() bool {
	if len(self.pending) == 0 {
		return false
	}
	if self.pending[len(self.pending)-1].move == END {
		return true
	}
	return len(self.pending) >= self.players-1-self.roster.finished
}

// terminate stops the state machine. Caller holds lock.
func (self *roundState) terminate() {
	self.terminated = true
	self.phase = Stopped
	self.ii.Terminated()
	self.barrier.Broadcast()
	self.resolved.Broadcast()
}

// fail records a fatal listener error and wakes the Driver. Caller holds lock.
func (self *roundState) fail(err error) {
	if self.failure == nil {
		self.failure = err
	}
	self.phase = Stopped
	self.barrier.Broadcast()
	self.resolved.Broadcast()
}

// await blocks on c until ready reports true, the state terminates or fails, or ctx is done. Caller holds lock; the
// lock is released while waiting.
func (self *roundState) await(ctx context.Context, c *sync.Cond, ready func() bool) error {
	stop := context.AfterFunc(ctx, func() {
		self.lock.Lock()
		c.Broadcast()
		self.lock.Unlock()
	})
	defer stop()

	for !ready() && !self.terminated && self.failure == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Wait()
	}
	return self.failure
}

func (self *roundState) isTerminated() bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.terminated
}

func (self *roundState) summary() *Summary {
	self.lock.Lock()
	defer self.lock.Unlock()
	return &Summary{
		Score:      self.score,
		Rounds:     self.roundsCompleted,
		History:    append([]*RoundResult(nil), self.history...),
		Peers:      self.roster.snapshot(),
		Terminated: self.terminated,
	}
}

// Summary is the outcome of a game as seen by one peer.
type Summary struct {
	Score      int
	Rounds     int
	History    []*RoundResult
	Peers      []PeerRecord
	Terminated bool
}

func (self *Summary) String() string {
	return fmt.Sprintf("this player scored %d in %d games", self.Score, self.Rounds)
}
