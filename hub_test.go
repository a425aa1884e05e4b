package rochambeau

import (
	"context"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"sync"
	"testing"
	"time"
)

// hub is an in-memory multicast segment. Every send is delivered, in one global order, to every member that has not
// left, the sender included.
type hub struct {
	lock    sync.Mutex
	members []*hubTransport
}

func newHub() *hub {
	return &hub{}
}

func (self *hub) join() *hubTransport {
	self.lock.Lock()
	defer self.lock.Unlock()
	t := &hubTransport{h: self, in: make(chan Datagram, 1024), closed: make(chan struct{})}
	self.members = append(self.members, t)
	return t
}

type hubTransport struct {
	h      *hub
	in     chan Datagram
	closed chan struct{}
	once   sync.Once
	left   bool
	sent   []Datagram
}

func (self *hubTransport) Send(d Datagram) error {
	self.h.lock.Lock()
	defer self.h.lock.Unlock()
	select {
	case <-self.closed:
		return errors.Wrap(net.ErrClosed, "send")
	default:
	}
	self.sent = append(self.sent, d)
	for _, m := range self.h.members {
		if !m.left {
			m.in <- d
		}
	}
	return nil
}

func (self *hubTransport) Receive() (Datagram, error) {
	select {
	case d := <-self.in:
		return d, nil
	case <-self.closed:
		return Datagram{}, errors.Wrap(net.ErrClosed, "receive")
	}
}

func (self *hubTransport) Leave() error {
	self.h.lock.Lock()
	defer self.h.lock.Unlock()
	self.left = true
	return nil
}

func (self *hubTransport) Close() error {
	self.once.Do(func() { close(self.closed) })
	return nil
}

func (self *hubTransport) Sent() []Datagram {
	self.h.lock.Lock()
	defer self.h.lock.Unlock()
	return append([]Datagram(nil), self.sent...)
}

// nextFrom receives until a datagram from peer arrives.
func (self *hubTransport) nextFrom(t *testing.T, peer PeerID) Datagram {
	for {
		select {
		case d := <-self.in:
			if d.Peer == peer {
				return d
			}
		case <-time.After(5 * time.Second):
			require.FailNow(t, "timed out waiting for datagram", "peer %s", peer)
		}
	}
}

type gameResult struct {
	summary *Summary
	err     error
}

type hubPeer struct {
	games   int
	chooser Chooser
}

func runGames(t *testing.T, cfg *Config, peers map[PeerID]hubPeer) (map[PeerID]gameResult, map[PeerID]*Game) {
	h := newHub()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gs := make(map[PeerID]*Game)
	for peer, hp := range peers {
		tr := h.join()
		g, err := NewGame(cfg, peer, tr, NewNilInstrument().NewInstance("hub", peer), hp.games, hp.chooser)
		require.NoError(t, err)
		gs[peer] = g
	}

	lock := new(sync.Mutex)
	results := make(map[PeerID]gameResult)
	wg := new(sync.WaitGroup)
	for peer, g := range gs {
		wg.Add(1)
		go func(peer PeerID, g *Game) {
			defer wg.Done()
			s, err := g.Run(ctx)
			lock.Lock()
			results[peer] = gameResult{s, err}
			lock.Unlock()
		}(peer, g)
	}
	wg.Wait()
	return results, gs
}

func TestThreePeersCycleScoresZero(t *testing.T) {
	cfg := NewDefaultConfig()
	results, _ := runGames(t, cfg, map[PeerID]hubPeer{
		PeerID(1): {3, NewSequenceChooser(ROCK)},
		PeerID(2): {3, NewSequenceChooser(PAPER)},
		PeerID(3): {3, NewSequenceChooser(SCISSORS)},
	})
	require.Len(t, results, 3)
	for peer, r := range results {
		require.NoError(t, r.err, peer.String())
		assert.Equal(t, 0, r.summary.Score, peer.String())
		assert.Equal(t, 3, r.summary.Rounds, peer.String())
		require.Len(t, r.summary.History, 3, peer.String())
		for _, rr := range r.summary.History {
			assert.False(t, rr.Abandoned)
			assert.Len(t, rr.Opponents, 2)
		}
		assert.Len(t, r.summary.Peers, 3)
	}
}

func TestThreePeersScoring(t *testing.T) {
	cfg := NewDefaultConfig()
	results, _ := runGames(t, cfg, map[PeerID]hubPeer{
		PeerID(1): {2, NewSequenceChooser(ROCK)},
		PeerID(2): {2, NewSequenceChooser(SCISSORS)},
		PeerID(3): {2, NewSequenceChooser(SCISSORS)},
	})
	for _, r := range results {
		require.NoError(t, r.err)
	}
	assert.Equal(t, 4, results[PeerID(1)].summary.Score)
	assert.Equal(t, 0, results[PeerID(2)].summary.Score)
	assert.Equal(t, 0, results[PeerID(3)].summary.Score)
	assert.Equal(t, "this player scored 4 in 2 games", results[PeerID(1)].summary.String())
}

func TestFourPeers(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Players = 4
	results, _ := runGames(t, cfg, map[PeerID]hubPeer{
		PeerID(1): {2, NewSequenceChooser(PAPER)},
		PeerID(2): {2, NewSequenceChooser(ROCK)},
		PeerID(3): {2, NewSequenceChooser(ROCK)},
		PeerID(4): {2, NewSequenceChooser(SCISSORS)},
	})
	for _, r := range results {
		require.NoError(t, r.err)
		assert.Equal(t, 2, r.summary.Rounds)
	}
	assert.Equal(t, 2, results[PeerID(1)].summary.Score)
	assert.Equal(t, 0, results[PeerID(4)].summary.Score)
	assert.Equal(t, 0, results[PeerID(2)].summary.Score)
}

func TestEndQuorumUnevenGames(t *testing.T) {
	for i := 0; i < 20; i++ {
		cfg := NewDefaultConfig()
		cfg.EndQuorum = 2
		cfg.LingerMs = 5000
		results, games := runGames(t, cfg, map[PeerID]hubPeer{
			PeerID(1): {1, NewSequenceChooser(ROCK)},
			PeerID(2): {2, NewSequenceChooser(PAPER)},
			PeerID(3): {2, NewSequenceChooser(SCISSORS)},
		})
		for peer, r := range results {
			require.NoError(t, r.err, peer.String())
			assert.True(t, games[peer].state.isTerminated(), peer.String())
			ends := 0
			for _, d := range games[peer].t.(*hubTransport).Sent() {
				if d.Move == END {
					ends++
				}
			}
			assert.Equal(t, 1, ends, peer.String())
		}
		assert.Equal(t, 1, results[PeerID(1)].summary.Rounds)
		assert.Equal(t, 2, results[PeerID(2)].summary.Rounds)
		assert.Equal(t, 2, results[PeerID(3)].summary.Rounds)
	}
}
