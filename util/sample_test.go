package util

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReadSamples(t *testing.T) {
	root := t.TempDir()
	t0 := time.Unix(0, 1000)
	t1 := time.Unix(0, 2000)
	samples := []*Sample{{Ts: t0, V: 3}, {Ts: t1, V: -1}}
	require.NoError(t, WriteSamples("rx_datagrams", root, samples))

	data, err := ReadSamples(filepath.Join(root, "rx_datagrams.csv"))
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1000: 3, 2000: -1}, data)
}

func TestReadSamplesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("1000,3\nnonsense\n"), 0600))
	_, err := ReadSamples(path)
	assert.Error(t, err)
}
