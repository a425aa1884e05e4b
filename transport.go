package rochambeau

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
	"net"
	"sync"
)

// Transport carries datagrams to and from the group. Leave stops membership without releasing the socket, so that
// a final send can still go out; Close releases it and unblocks a pending Receive with net.ErrClosed.
type Transport interface {
	Send(d Datagram) error
	Receive() (Datagram, error)
	Leave() error
	Close() error
}

// MulticastTransport sends and receives on a single UDP socket joined to the configured group. Peers sharing a host
// share the port, and each peer must see its own START to satisfy the barrier, so multicast loopback is enabled
// unless the config turns it off.
type MulticastTransport struct {
	conn  *net.UDPConn
	pc    *ipv4.PacketConn
	ifi   *net.Interface
	group *net.UDPAddr
	ii    InstrumentInstance
	rxBuf []byte
	txBuf []byte
	txMtx sync.Mutex

	lock   sync.Mutex
	left   bool
	closed bool
}

func Join(cfg *Config, ii InstrumentInstance) (*MulticastTransport, error) {
	group, err := cfg.GroupAddr()
	if err != nil {
		return nil, err
	}
	var ifi *net.Interface
	if cfg.Interface != "" {
		ifi, err = net.InterfaceByName(cfg.Interface)
		if err != nil {
			return nil, errors.Wrapf(err, "unknown interface '%s'", cfg.Interface)
		}
	}

	conn, err := net.ListenMulticastUDP("udp4", ifi, group)
	if err != nil {
		return nil, errors.Wrapf(err, "join [%s]", group)
	}
	if cfg.RxBufferSz > 0 {
		if err := conn.SetReadBuffer(cfg.RxBufferSz); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "set rx buffer")
		}
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetMulticastLoopback(cfg.Loopback); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "set multicast loopback")
	}
	if err := pc.SetMulticastTTL(cfg.Ttl); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "set multicast ttl")
	}
	if ifi != nil {
		if err := pc.SetMulticastInterface(ifi); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "set multicast interface")
		}
	}
	logrus.Infof("joined [%s] (ttl %d, loopback %t)", group, cfg.Ttl, cfg.Loopback)

	return &MulticastTransport{
		conn:  conn,
		pc:    pc,
		ifi:   ifi,
		group: group,
		ii:    ii,
		rxBuf: make([]byte, 64*1024),
		txBuf: make([]byte, DatagramSz),
	}, nil
}

func (self *MulticastTransport) Send(d Datagram) error {
	self.txMtx.Lock()
	defer self.txMtx.Unlock()

	n, err := encodeDatagram(d, self.txBuf)
	if err != nil {
		return err
	}
	if _, err := self.conn.WriteToUDP(self.txBuf[:n], self.group); err != nil {
		self.ii.WriteError(err)
		return errors.Wrapf(err, "send %s", d)
	}
	self.ii.DatagramTx(d)
	return nil
}

// Receive blocks until a well-formed datagram arrives. Datagrams of the wrong size are reported and skipped.
func (self *MulticastTransport) Receive() (Datagram, error) {
	for {
		n, _, err := self.conn.ReadFromUDP(self.rxBuf)
		if err != nil {
			return Datagram{}, errors.Wrap(err, "read")
		}
		d, err := decodeDatagram(self.rxBuf[:n])
		if err != nil {
			self.ii.MalformedDatagram(n)
			logrus.Debugf("dropping datagram (%v)", err)
			continue
		}
		return d, nil
	}
}

func (self *MulticastTransport) Leave() error {
	self.lock.Lock()
	defer self.lock.Unlock()

	if self.left || self.closed {
		return nil
	}
	self.left = true
	if err := self.pc.LeaveGroup(self.ifi, self.group); err != nil {
		return errors.Wrapf(err, "leave [%s]", self.group)
	}
	logrus.Infof("left [%s]", self.group)
	return nil
}

func (self *MulticastTransport) Close() error {
	self.lock.Lock()
	defer self.lock.Unlock()

	if self.closed {
		return nil
	}
	self.closed = true
	return self.conn.Close()
}
