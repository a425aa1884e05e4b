package cf

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

type testConfig struct {
	Players  int                    `cf:"players"`
	Scale    float64                `cf:"scale"`
	Loopback bool                   `cf:"loopback"`
	Group    string                 `cf:"group"`
	Extra    map[string]interface{} `cf:"extra"`
	Untagged int
	hidden   int
}

func TestLoad(t *testing.T) {
	c := &testConfig{Players: 3, Loopback: true}
	err := Load(map[string]interface{}{
		"players":  4,
		"scale":    2,
		"loopback": false,
		"group":    "239.0.0.1",
		"extra":    map[interface{}]interface{}{"wire": true},
		"Untagged": int64(7),
		"unknown":  "ignored",
	}, c)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Players)
	assert.Equal(t, 2.0, c.Scale)
	assert.False(t, c.Loopback)
	assert.Equal(t, "239.0.0.1", c.Group)
	assert.Equal(t, map[string]interface{}{"wire": true}, c.Extra)
	assert.Equal(t, 7, c.Untagged)
	assert.Equal(t, 0, c.hidden)
}

func TestLoadMismatch(t *testing.T) {
	c := &testConfig{}
	err := Load(map[string]interface{}{"players": "three"}, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "players")
}

func TestLoadRequiresPointer(t *testing.T) {
	assert.Error(t, Load(map[string]interface{}{}, testConfig{}))
}

func TestDump(t *testing.T) {
	out := Dump("config", &testConfig{Players: 3, Group: "239.0.0.0"})
	assert.True(t, strings.HasPrefix(out, "config {\n"))
	assert.Contains(t, out, "players")
	assert.Contains(t, out, "239.0.0.0")
	assert.NotContains(t, out, "hidden")
}
