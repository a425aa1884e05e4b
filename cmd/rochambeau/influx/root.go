package influx

import (
	"github.com/openziti/rochambeau/cmd/rochambeau/rochambeau"
	"github.com/spf13/cobra"
)

func init() {
	influxCmd.PersistentFlags().StringVarP(&influxDbUrl, "url", "", "http://localhost:8086", "InfluxDB URL")
	influxCmd.PersistentFlags().StringVarP(&influxDbToken, "token", "", "", "InfluxDB auth token")
	influxCmd.PersistentFlags().StringVarP(&influxDbOrg, "org", "", "", "InfluxDB organization")
	influxCmd.PersistentFlags().StringVarP(&influxDbBucket, "bucket", "", "rochambeau", "InfluxDB bucket")
	rochambeau.RootCmd.AddCommand(influxCmd)
}

var influxCmd = &cobra.Command{
	Use:   "influx",
	Short: "Manage game metrics in InfluxDB",
}
var influxDbUrl string
var influxDbToken string
var influxDbOrg string
var influxDbBucket string
