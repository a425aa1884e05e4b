package rochambeau

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := NewDefaultConfig()
	assert.NoError(t, c.Validate())
	addr, err := c.GroupAddr()
	require.NoError(t, err)
	assert.Equal(t, "239.0.0.0:1234", addr.String())
	assert.IsType(t, &nilInstrument{}, c.Instrument())
}

func TestConfigLoadYaml(t *testing.T) {
	doc := `
players: 4
end_quorum: 3
wait_timeout_ms: 2500
loopback: true
instrument:
  name: trace
  config:
    wire: true
    round: true
`
	data := make(map[string]interface{})
	require.NoError(t, yaml.Unmarshal([]byte(doc), &data))

	c := NewDefaultConfig()
	require.NoError(t, c.Load(data))
	assert.NoError(t, c.Validate())
	assert.Equal(t, 4, c.Players)
	assert.Equal(t, 3, c.EndQuorum)
	assert.Equal(t, 2500, c.WaitTimeoutMs)
	assert.Equal(t, "239.0.0.0", c.Group)
	ti, ok := c.Instrument().(*traceInstrument)
	require.True(t, ok)
	assert.True(t, ti.config.Wire)
	assert.True(t, ti.config.Round)
	assert.False(t, ti.config.Barrier)
	assert.Contains(t, c.Dump(), "end_quorum")
}

func TestConfigLoadUnknownInstrument(t *testing.T) {
	c := NewDefaultConfig()
	err := c.Load(map[string]interface{}{"instrument": map[string]interface{}{"name": "bogus"}})
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	bad := []func(c *Config){
		func(c *Config) { c.Players = 1 },
		func(c *Config) { c.Port = 0 },
		func(c *Config) { c.EndQuorum = 0 },
		func(c *Config) { c.EndQuorum = c.Players },
		func(c *Config) { c.Group = "10.0.0.1" },
		func(c *Config) { c.Ttl = 256 },
		func(c *Config) { c.WaitTimeoutMs = -1 },
		func(c *Config) { c.RosterOrder = 2 },
		func(c *Config) { c.LingerMs = -1 },
	}
	for _, mutate := range bad {
		c := NewDefaultConfig()
		mutate(c)
		assert.Error(t, c.Validate(), c.Dump())
	}
}
