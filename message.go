package rochambeau

import (
	"github.com/openziti/rochambeau/util"
	"github.com/pkg/errors"
)

const (
	peerIdSz   = 8
	DatagramSz = peerIdSz + 1
)

// Datagram is the only message on the wire: the sender's PeerID followed by a signed Move byte.
type Datagram struct {
	Peer PeerID
	Move Move
}

func (self Datagram) String() string {
	return self.Peer.String() + "/" + self.Move.String()
}

func encodeDatagram(d Datagram, buf []byte) (int, error) {
	if len(buf) < DatagramSz {
		return 0, errors.Errorf("short buffer for encode [%d < %d]", len(buf), DatagramSz)
	}
	util.WriteInt64(buf[0:peerIdSz], int64(d.Peer))
	buf[peerIdSz] = byte(d.Move)
	return DatagramSz, nil
}

func decodeDatagram(buf []byte) (Datagram, error) {
	if len(buf) != DatagramSz {
		return Datagram{}, errors.Errorf("unexpected datagram size [%d != %d]", len(buf), DatagramSz)
	}
	return Datagram{
		Peer: PeerID(util.ReadInt64(buf[0:peerIdSz])),
		Move: Move(int8(buf[peerIdSz])),
	}, nil
}
