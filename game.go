package rochambeau

import (
	"context"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"time"
)

// Game wires one peer's Listener and Driver to a shared round state over a single Transport.
type Game struct {
	cfg      *Config
	self     PeerID
	t        Transport
	ii       InstrumentInstance
	state    *roundState
	listener *Listener
	driver   *Driver
	log      *logrus.Entry
}

func NewGame(cfg *Config, self PeerID, t Transport, ii InstrumentInstance, games int, chooser Chooser) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if games < 1 {
		return nil, errors.Errorf("invalid game count [%d < 1]", games)
	}
	if chooser == nil {
		chooser = NewRandomChooser()
	}
	log := pfxlog.ContextLogger(self.String())
	state := newRoundState(cfg, ii, log)
	return &Game{
		cfg:      cfg,
		self:     self,
		t:        t,
		ii:       ii,
		state:    state,
		listener: newListener(self, state, t, ii, log),
		driver:   newDriver(self, state, t, chooser, games, cfg.WaitTimeout(), log),
		log:      log,
	}, nil
}

func (self *Game) Listener() *Listener {
	return self.listener
}

func (self *Game) Driver() *Driver {
	return self.driver
}

// Run plays the game to completion. The Transport is closed before Run returns.
func (self *Game) Run(ctx context.Context) (*Summary, error) {
	defer self.ii.Shutdown()

	go self.listener.run()
	summary, err := self.driver.Run(ctx)

	if err == nil && !self.state.isTerminated() {
		linger := time.NewTimer(self.cfg.Linger())
		select {
		case <-self.listener.Done():
		case <-linger.C:
			self.log.Debug("listener still running after linger")
		case <-ctx.Done():
		}
		linger.Stop()
	}

	if cErr := self.t.Close(); cErr != nil {
		self.log.Errorf("error closing transport (%v)", cErr)
	}
	<-self.listener.Done()

	if err != nil {
		return nil, err
	}
	if lErr := self.listener.Err(); lErr != nil {
		return nil, lErr
	}
	return summary, nil
}

// Play joins the configured group as the local process and plays games rounds.
func Play(ctx context.Context, cfg *Config, games int) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	self := LocalPeerID()
	addr, err := cfg.GroupAddr()
	if err != nil {
		return nil, err
	}
	ii := cfg.Instrument().NewInstance(addr.String(), self)
	t, err := Join(cfg, ii)
	if err != nil {
		ii.Shutdown()
		return nil, err
	}
	g, err := NewGame(cfg, self, t, ii, games, nil)
	if err != nil {
		_ = t.Close()
		ii.Shutdown()
		return nil, err
	}
	logrus.Infof("playing %d games as [%s]", games, self)
	return g.Run(ctx)
}
