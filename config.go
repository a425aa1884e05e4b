package rochambeau

import (
	"fmt"
	"github.com/openziti/rochambeau/cf"
	"github.com/pkg/errors"
	"net"
	"reflect"
	"time"
)

type Config struct {
	Group         string `cf:"group"`
	Port          int    `cf:"port"`
	Interface     string `cf:"interface"`
	Ttl           int    `cf:"ttl"`
	Loopback      bool   `cf:"loopback"`
	RxBufferSz    int    `cf:"rx_buffer_sz"`
	Players       int    `cf:"players"`
	EndQuorum     int    `cf:"end_quorum"`
	WaitTimeoutMs int    `cf:"wait_timeout_ms"`
	RosterOrder   int    `cf:"roster_order"`
	LingerMs      int    `cf:"linger_ms"`
	i             Instrument
}

func NewDefaultConfig() *Config {
	return &Config{
		Group:       "239.0.0.0",
		Port:        1234,
		Ttl:         0,
		Loopback:    true,
		RxBufferSz:  64 * 1024,
		Players:     3,
		EndQuorum:   1,
		RosterOrder: 4,
		LingerMs:    500,
	}
}

// Load overlays data onto the config. An optional "instrument" submap selects the instrument by "name" and passes
// its "config" submap through.
func (self *Config) Load(data map[string]interface{}) error {
	if err := cf.Load(data, self); err != nil {
		return errors.Wrap(err, "error loading config")
	}
	if v, found := data["instrument"]; found {
		submap, ok := cf.CleanUpMapValue(v).(map[string]interface{})
		if !ok {
			return errors.Errorf("invalid 'instrument' value [%v]", reflect.TypeOf(v))
		}
		var config map[string]interface{}
		if v, found := submap["config"]; found {
			if config, ok = v.(map[string]interface{}); !ok {
				return errors.New("invalid 'instrument/config' value")
			}
		}
		v, found := submap["name"]
		if !found {
			return errors.New("missing 'instrument/name'")
		}
		name, ok := v.(string)
		if !ok {
			return errors.New("invalid 'instrument/name' value")
		}
		i, err := NewInstrument(name, config)
		if err != nil {
			return errors.Wrap(err, "error creating instrument")
		}
		self.i = i
	}
	return nil
}

func (self *Config) Validate() error {
	if self.Players < 2 {
		return errors.Errorf("invalid 'players' [%d < 2]", self.Players)
	}
	if self.Port < 1 || self.Port > 65535 {
		return errors.Errorf("invalid 'port' [%d]", self.Port)
	}
	if self.EndQuorum < 1 || self.EndQuorum > self.Players-1 {
		return errors.Errorf("invalid 'end_quorum' [%d], expected 1..%d", self.EndQuorum, self.Players-1)
	}
	if self.Ttl < 0 || self.Ttl > 255 {
		return errors.Errorf("invalid 'ttl' [%d]", self.Ttl)
	}
	if self.WaitTimeoutMs < 0 {
		return errors.Errorf("invalid 'wait_timeout_ms' [%d]", self.WaitTimeoutMs)
	}
	if self.LingerMs < 0 {
		return errors.Errorf("invalid 'linger_ms' [%d]", self.LingerMs)
	}
	if self.RosterOrder < 3 {
		return errors.Errorf("invalid 'roster_order' [%d < 3]", self.RosterOrder)
	}
	if ip := net.ParseIP(self.Group); ip == nil || !ip.IsMulticast() {
		return errors.Errorf("invalid 'group' [%s], expected multicast address", self.Group)
	}
	return nil
}

func (self *Config) GroupAddr() (*net.UDPAddr, error) {
	addr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", self.Group, self.Port))
	if err != nil {
		return nil, errors.Wrap(err, "resolve group address")
	}
	return addr, nil
}

func (self *Config) WaitTimeout() time.Duration {
	return time.Duration(self.WaitTimeoutMs) * time.Millisecond
}

// Linger bounds how long a finished peer keeps receiving before it closes the socket.
func (self *Config) Linger() time.Duration {
	return time.Duration(self.LingerMs) * time.Millisecond
}

func (self *Config) Instrument() Instrument {
	if self.i == nil {
		return NewNilInstrument()
	}
	return self.i
}

func (self *Config) SetInstrument(i Instrument) {
	self.i = i
}

func (self *Config) Dump() string {
	out := cf.Dump("rochambeau.Config", self)
	return out + fmt.Sprintf(" instrument=%v", reflect.TypeOf(self.i))
}
