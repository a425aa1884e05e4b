package rochambeau

import (
	"github.com/openziti/rochambeau/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestMetricsInstrumentWritesSamples(t *testing.T) {
	root := t.TempDir()
	i, err := NewMetricsInstrument(map[string]interface{}{
		"path":              root,
		"snapshot_ms":       60000,
		"ctrl":              false,
		"write_on_shutdown": true,
	})
	require.NoError(t, err)

	ii := i.NewInstance("test", PeerID(7))
	ii.DatagramTx(Datagram{PeerID(7), ROCK})
	ii.DatagramRx(Datagram{PeerID(7), ROCK})
	ii.DatagramRx(Datagram{PeerID(8), PAPER})
	ii.OpponentMove(PeerID(8), PAPER)
	ii.RoundResolved(&RoundResult{Round: 1, Hand: ROCK, Total: 0})
	ii.Anomaly(Datagram{PeerID(8), START}, "late start")
	ii.Shutdown()
	ii.Shutdown()

	found, err := util.DiscoverMetrics(root)
	require.NoError(t, err)
	require.Len(t, found, 1)
	for path, mid := range found {
		assert.Equal(t, MetricsId, mid.Id)
		assert.Equal(t, PeerID(7).String(), mid.Values["peer"])
		for _, dataset := range MetricsDatasets {
			_, err := os.Stat(filepath.Join(path, dataset+".csv"))
			assert.NoError(t, err, dataset)
		}
		rx, err := util.ReadSamples(filepath.Join(path, "rx_datagrams.csv"))
		require.NoError(t, err)
		require.Len(t, rx, 1)
		for _, v := range rx {
			assert.Equal(t, int64(2), v)
		}
	}
}

func TestMetricsInstrumentStoppedRecordsNothing(t *testing.T) {
	i, err := NewMetricsInstrument(map[string]interface{}{
		"path":    t.TempDir(),
		"enabled": false,
		"ctrl":    false,
	})
	require.NoError(t, err)
	ii := i.NewInstance("test", PeerID(1)).(*metricsInstrumentInstance)
	ii.DatagramTx(Datagram{PeerID(1), START})
	ii.Shutdown()
	assert.Empty(t, ii.series)
}

func TestMetricsInstrumentRejectsSnapshotMs(t *testing.T) {
	_, err := NewMetricsInstrument(map[string]interface{}{"snapshot_ms": 0, "ctrl": false})
	assert.Error(t, err)
}
