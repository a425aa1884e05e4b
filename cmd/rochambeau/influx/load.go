package influx

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	game "github.com/openziti/rochambeau"
	"github.com/openziti/rochambeau/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"path/filepath"
	"time"
)

func init() {
	influxCmd.AddCommand(influxLoadCmd)
}

var influxLoadCmd = &cobra.Command{
	Use:   "load <metricsRoot>",
	Short: "Load game metrics into InfluxDB",
	Args:  cobra.ExactArgs(1),
	Run:   influxLoad,
}

func influxLoad(_ *cobra.Command, args []string) {
	client := influxdb2.NewClient(influxDbUrl, influxDbToken)
	defer client.Close()

	writeApi := client.WriteAPI(influxDbOrg, influxDbBucket)
	go func() {
		for err := range writeApi.Errors() {
			logrus.Errorf("error writing point (%v)", err)
		}
	}()

	if err := loadGameMetrics(args[0], writeApi); err != nil {
		logrus.Fatalf("error loading metrics (%v)", err)
	}
	writeApi.Flush()
}

func loadGameMetrics(root string, writeApi api.WriteAPI) error {
	found, err := util.DiscoverMetrics(root)
	if err != nil {
		return errors.Wrap(err, "discover metrics")
	}
	for path, mid := range found {
		if mid.Id != game.MetricsId {
			logrus.Debugf("skipping [%s] with id [%s]", path, mid.Id)
			continue
		}
		peer := mid.Values["peer"]
		for _, dataset := range game.MetricsDatasets {
			data, err := util.ReadSamples(filepath.Join(path, dataset+".csv"))
			if err != nil {
				return errors.Wrapf(err, "error reading dataset [%s]", dataset)
			}
			for ts, v := range data {
				p := influxdb2.NewPoint(dataset, nil, map[string]interface{}{"v": v}, time.Unix(0, ts)).AddTag("type", game.MetricsId).AddTag("peer", peer)
				writeApi.WritePoint(p)
			}
			logrus.Infof("wrote [%d] points for peer [%s] dataset [%s]", len(data), peer, dataset)
		}
	}
	return nil
}
