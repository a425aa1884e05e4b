package metrics

import (
	"github.com/openziti/rochambeau/cmd/rochambeau/rochambeau"
	"github.com/spf13/cobra"
)

func init() {
	rochambeau.RootCmd.AddCommand(metricsCmd)
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Control metrics instances",
}
