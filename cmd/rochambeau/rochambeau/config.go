package rochambeau

import (
	game "github.com/openziti/rochambeau"
	"github.com/openziti/rochambeau/cf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"os"
)

// LoadConfig returns the default config, overlaid with the --config file when one is given.
func LoadConfig() (*game.Config, error) {
	cfg := game.NewDefaultConfig()
	if ConfigPath != "" {
		data, err := os.ReadFile(ConfigPath)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config file [%s]", ConfigPath)
		}
		dataMap := make(map[interface{}]interface{})
		if err := yaml.Unmarshal(data, &dataMap); err != nil {
			return nil, errors.Wrapf(err, "unable to unmarshal config file [%s]", ConfigPath)
		}
		if err := cfg.Load(cf.MapIToMapS(dataMap)); err != nil {
			return nil, errors.Wrapf(err, "unable to load config file [%s]", ConfigPath)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ConfigDump {
		logrus.Info(cfg.Dump())
	}
	return cfg, nil
}
