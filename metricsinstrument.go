package rochambeau

import (
	"fmt"
	"github.com/openziti/rochambeau/cf"
	"github.com/openziti/rochambeau/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const MetricsId = "rochambeau.1"

// MetricsDatasets lists the sample series written by the metrics instrument, in the order they are written.
var MetricsDatasets = []string{
	"tx_datagrams",
	"rx_datagrams",
	"opponent_moves",
	"rounds",
	"score",
	"anomalies",
	"errors",
}

type metricsInstrument struct {
	lock      *sync.Mutex
	config    *metricsInstrumentConfig
	enabled   int32
	instances []*metricsInstrumentInstance
	cl        *util.CtrlListener
}

type metricsInstrumentConfig struct {
	Path       string `cf:"path"`
	SnapshotMs int    `cf:"snapshot_ms"`
	Enabled    bool   `cf:"enabled"`
	Ctrl       bool   `cf:"ctrl"`
	Write      bool   `cf:"write_on_shutdown"`
}

func NewMetricsInstrument(config map[string]interface{}) (Instrument, error) {
	i := &metricsInstrument{
		lock: new(sync.Mutex),
		config: &metricsInstrumentConfig{
			Path:       os.TempDir(),
			SnapshotMs: 1000,
			Enabled:    true,
			Ctrl:       true,
		},
	}
	if err := cf.Load(config, i.config); err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}
	if i.config.SnapshotMs < 1 {
		return nil, errors.Errorf("invalid 'snapshot_ms' [%d]", i.config.SnapshotMs)
	}
	if i.config.Enabled {
		i.enabled = 1
	}
	if i.config.Ctrl {
		cl, err := util.GetCtrlListener(i.config.Path, "rochambeau")
		if err != nil {
			return nil, errors.Wrap(err, "unable to get metrics ctrl listener")
		}
		cl.AddCallback("start", func(string, net.Conn) (int64, error) {
			atomic.StoreInt32(&i.enabled, 1)
			return 0, nil
		})
		cl.AddCallback("stop", func(string, net.Conn) (int64, error) {
			atomic.StoreInt32(&i.enabled, 0)
			return 0, nil
		})
		cl.AddCallback("write", func(string, net.Conn) (int64, error) {
			if err := i.writeAllSamples(); err != nil {
				logrus.Errorf("error writing samples (%v)", err)
				return 0, err
			}
			return 0, nil
		})
		cl.AddCallback("clean", func(string, net.Conn) (int64, error) {
			i.clean()
			return 0, nil
		})
		cl.Start()
		i.cl = cl
		logrus.Infof("metrics ctrl listening at [%s]", cl.Addr())
	}
	logrus.Info(cf.Dump("config", i.config))
	return i, nil
}

func (self *metricsInstrument) NewInstance(id string, peer PeerID) InstrumentInstance {
	self.lock.Lock()
	defer self.lock.Unlock()
	ii := &metricsInstrumentInstance{
		id:     id,
		self:   peer,
		i:      self,
		lock:   new(sync.Mutex),
		series: make(map[string][]*util.Sample),
		close:  make(chan struct{}),
	}
	go ii.snapshotter(self.config.SnapshotMs)
	self.instances = append(self.instances, ii)
	return ii
}

func (self *metricsInstrument) writeAllSamples() error {
	self.lock.Lock()
	defer self.lock.Unlock()

	if err := os.MkdirAll(self.config.Path, os.ModePerm); err != nil {
		return err
	}
	for _, ii := range self.instances {
		if _, err := ii.writeSamples(self.config.Path); err != nil {
			return err
		}
	}
	return nil
}

func (self *metricsInstrument) clean() {
	self.lock.Lock()
	defer self.lock.Unlock()

	for _, ii := range self.instances {
		ii.clean()
	}
}

type metricsInstrumentInstance struct {
	id   string
	self PeerID
	i    *metricsInstrument

	txDatagrams   int64
	rxDatagrams   int64
	opponentMoves int64
	rounds        int64
	score         int64
	anomalies     int64
	errors        int64

	lock   *sync.Mutex
	series map[string][]*util.Sample
	close  chan struct{}
	once   sync.Once
}

/*
 * wire
 */
func (self *metricsInstrumentInstance) DatagramTx(Datagram) {
	atomic.AddInt64(&self.txDatagrams, 1)
}

func (self *metricsInstrumentInstance) DatagramRx(Datagram) {
	atomic.AddInt64(&self.rxDatagrams, 1)
}

func (self *metricsInstrumentInstance) MalformedDatagram(int) {
	atomic.AddInt64(&self.anomalies, 1)
}

func (self *metricsInstrumentInstance) ReadError(error) {
	atomic.AddInt64(&self.errors, 1)
}

func (self *metricsInstrumentInstance) WriteError(error) {
	atomic.AddInt64(&self.errors, 1)
}

/*
 * barrier
 */
func (self *metricsInstrumentInstance) StartObserved(PeerID, int) {}

func (self *metricsInstrumentInstance) BarrierSatisfied(int) {}

/*
 * round
 */
func (self *metricsInstrumentInstance) OpponentMove(PeerID, Move) {
	atomic.AddInt64(&self.opponentMoves, 1)
}

func (self *metricsInstrumentInstance) RoundResolved(r *RoundResult) {
	atomic.AddInt64(&self.rounds, 1)
	atomic.StoreInt64(&self.score, int64(r.Total))
}

func (self *metricsInstrumentInstance) Anomaly(Datagram, string) {
	atomic.AddInt64(&self.anomalies, 1)
}

/*
 * termination
 */
func (self *metricsInstrumentInstance) PeerFinished(PeerID, int) {}

func (self *metricsInstrumentInstance) Terminated() {}

/*
 * instrument lifecycle
 */
func (self *metricsInstrumentInstance) Shutdown() {
	self.once.Do(func() {
		close(self.close)
		self.snapshot(time.Now())
		if self.i.config.Write {
			if err := os.MkdirAll(self.i.config.Path, os.ModePerm); err != nil {
				logrus.Errorf("error creating metrics path (%v)", err)
				return
			}
			if _, err := self.writeSamples(self.i.config.Path); err != nil {
				logrus.Errorf("error writing samples (%v)", err)
			}
		}
	})
}

func (self *metricsInstrumentInstance) snapshotter(ms int) {
	logrus.Infof("started")
	defer logrus.Infof("exited")

	ticker := time.NewTicker(time.Duration(ms) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			self.snapshot(now)
		case <-self.close:
			return
		}
	}
}

// snapshot records the per-interval deltas of the counters and the current score. Nothing is recorded while the
// instrument is stopped, but the counters keep accumulating.
func (self *metricsInstrumentInstance) snapshot(now time.Time) {
	if atomic.LoadInt32(&self.i.enabled) != 1 {
		return
	}
	values := map[string]int64{
		"tx_datagrams":   atomic.SwapInt64(&self.txDatagrams, 0),
		"rx_datagrams":   atomic.SwapInt64(&self.rxDatagrams, 0),
		"opponent_moves": atomic.SwapInt64(&self.opponentMoves, 0),
		"rounds":         atomic.SwapInt64(&self.rounds, 0),
		"score":          atomic.LoadInt64(&self.score),
		"anomalies":      atomic.SwapInt64(&self.anomalies, 0),
		"errors":         atomic.SwapInt64(&self.errors, 0),
	}
	self.lock.Lock()
	for name, v := range values {
		self.series[name] = append(self.series[name], &util.Sample{Ts: now, V: v})
	}
	self.lock.Unlock()
}

func (self *metricsInstrumentInstance) writeSamples(root string) (string, error) {
	self.lock.Lock()
	defer self.lock.Unlock()

	peerName := strings.ReplaceAll(fmt.Sprintf("%s_%s_", self.id, self.self), ":", "-")
	outPath, err := os.MkdirTemp(root, peerName)
	if err != nil {
		return "", err
	}
	logrus.Infof("writing metrics to: %s", outPath)
	if err := util.WriteMetricsId(MetricsId, outPath, map[string]string{"peer": self.self.String()}); err != nil {
		return "", err
	}
	for _, name := range MetricsDatasets {
		if err := util.WriteSamples(name, outPath, self.series[name]); err != nil {
			return "", err
		}
	}
	return outPath, nil
}

func (self *metricsInstrumentInstance) clean() {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.series = make(map[string][]*util.Sample)
}
