package rochambeau

import (
	"fmt"
	"os"
)

// PeerID identifies one process on the multicast segment. It travels as the first eight bytes of every datagram.
type PeerID int64

func LocalPeerID() PeerID {
	return PeerID(os.Getpid())
}

func (self PeerID) String() string {
	return fmt.Sprintf("%016x", int64(self))
}
