package rochambeau

import (
	"github.com/emirpasic/gods/trees/btree"
)

// PeerRecord accumulates what has been observed from one peer on the segment.
type PeerRecord struct {
	Peer     PeerID
	Starts   int
	Hands    int
	Finished bool
	Last     Move
}

type roster struct {
	tree     *btree.Tree
	finished int
}

func newRoster(order int) *roster {
	return &roster{tree: btree.NewWith(order, peerComparator)}
}

func (self *roster) observe(d Datagram) *PeerRecord {
	var pr *PeerRecord
	if v, found := self.tree.Get(d.Peer); found {
		pr = v.(*PeerRecord)
	} else {
		pr = &PeerRecord{Peer: d.Peer}
		self.tree.Put(d.Peer, pr)
	}
	switch {
	case d.Move == START:
		pr.Starts++
	case d.Move.IsHand():
		pr.Hands++
	}
	pr.Last = d.Move
	return pr
}

// finish marks peer as finished, returning the number of distinct finished peers and whether this call changed it.
func (self *roster) finish(peer PeerID) (int, bool) {
	v, found := self.tree.Get(peer)
	if !found {
		v = &PeerRecord{Peer: peer, Last: END}
		self.tree.Put(peer, v)
	}
	pr := v.(*PeerRecord)
	if pr.Finished {
		return self.finished, false
	}
	pr.Finished = true
	self.finished++
	return self.finished, true
}

func (self *roster) isFinished(peer PeerID) bool {
	v, found := self.tree.Get(peer)
	return found && v.(*PeerRecord).Finished
}

// snapshot copies the records in PeerID order.
func (self *roster) snapshot() []PeerRecord {
	out := make([]PeerRecord, 0, self.tree.Size())
	it := self.tree.Iterator()
	for it.Next() {
		out = append(out, *it.Value().(*PeerRecord))
	}
	return out
}

func peerComparator(a, b interface{}) int {
	pa := a.(PeerID)
	pb := b.(PeerID)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}
