package rochambeau

import (
	"fmt"
	"github.com/openziti/rochambeau/cf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"sync"
)

type traceInstrument struct {
	config *traceInstrumentConfig
	out    io.Writer
}

type traceInstrumentConfig struct {
	Wire    bool `cf:"wire"`
	Barrier bool `cf:"barrier"`
	Round   bool `cf:"round"`
	Error   bool `cf:"error"`
}

type traceInstrumentInstance struct {
	id   string
	self PeerID
	lock *sync.Mutex
	i    *traceInstrument
}

func NewTraceInstrument(config map[string]interface{}) (Instrument, error) {
	i := &traceInstrument{
		config: new(traceInstrumentConfig),
		out:    os.Stdout,
	}
	if err := cf.Load(config, i.config); err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}
	logrus.Info(cf.Dump("config", i.config))
	return i, nil
}

func (self *traceInstrument) NewInstance(id string, peer PeerID) InstrumentInstance {
	return &traceInstrumentInstance{id, peer, new(sync.Mutex), self}
}

func (self *traceInstrumentInstance) println(format string, args ...interface{}) {
	self.lock.Lock()
	_, _ = fmt.Fprintf(self.i.out, "&& %-24s "+format+"\n", append([]interface{}{self.id}, args...)...)
	self.lock.Unlock()
}

/*
 * wire
 */
func (self *traceInstrumentInstance) DatagramTx(d Datagram) {
	if self.i.config.Wire {
		self.println("%-8s %s", "TX", d)
	}
}

func (self *traceInstrumentInstance) DatagramRx(d Datagram) {
	if self.i.config.Wire {
		origin := "OPPONENT"
		if d.Peer == self.self {
			origin = "SELF"
		}
		self.println("%-8s %s (%s)", "RX", d, origin)
	}
}

func (self *traceInstrumentInstance) MalformedDatagram(sz int) {
	if self.i.config.Error {
		self.println("MALFORMED DATAGRAM: %d bytes", sz)
	}
}

func (self *traceInstrumentInstance) ReadError(err error) {
	if self.i.config.Error {
		self.println("READ ERROR: %v", err)
	}
}

func (self *traceInstrumentInstance) WriteError(err error) {
	if self.i.config.Error {
		self.println("WRITE ERROR: %v", err)
	}
}

/*
 * barrier
 */
func (self *traceInstrumentInstance) StartObserved(peer PeerID, count int) {
	if self.i.config.Barrier {
		self.println("START FROM %s, count = %d", peer, count)
	}
}

func (self *traceInstrumentInstance) BarrierSatisfied(count int) {
	if self.i.config.Barrier {
		self.println("BARRIER SATISFIED at %d", count)
	}
}

/*
 * round
 */
func (self *traceInstrumentInstance) OpponentMove(peer PeerID, move Move) {
	if self.i.config.Round {
		self.println("OPPONENT %s PLAYED %s", peer, move)
	}
}

func (self *traceInstrumentInstance) RoundResolved(r *RoundResult) {
	if self.i.config.Round {
		self.println("ROUND %s", r)
	}
}

func (self *traceInstrumentInstance) Anomaly(d Datagram, reason string) {
	if self.i.config.Error {
		self.println("ANOMALY %s: %s", d, reason)
	}
}

/*
 * termination
 */
func (self *traceInstrumentInstance) PeerFinished(peer PeerID, finished int) {
	if self.i.config.Round {
		self.println("FINISHED %s, %d finished", peer, finished)
	}
}

func (self *traceInstrumentInstance) Terminated() {
	if self.i.config.Round {
		self.println("TERMINATED")
	}
}

/*
 * instrument lifecycle
 */
func (self *traceInstrumentInstance) Shutdown() {}
