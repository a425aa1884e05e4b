package metrics

import (
	"bufio"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"net"
	"strings"
)

func init() {
	clientCmd.Flags().StringVarP(&clientCommand, "command", "c", "write", "Command to send (start, stop, write, clean)")
	metricsCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client <path>",
	Short: "Connect to a metrics instance controller",
	Args:  cobra.ExactArgs(1),
	Run:   client,
}
var clientCommand string

func client(_ *cobra.Command, args []string) {
	path := args[0]
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		logrus.Fatalf("error resolving [%s] (%v)", path, err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		logrus.Fatalf("error dialing [%s] (%v)", path, err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Write([]byte(fmt.Sprintf("%s\n", clientCommand))); err != nil {
		logrus.Fatalf("error sending [%s] (%v)", clientCommand, err)
	}
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			logrus.Fatalf("error reading response (%v)", err)
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "ok":
			logrus.Infof("received 'ok'")
			return
		case line == "syntax error?" || strings.HasPrefix(line, "error"):
			logrus.Errorf("invalid response '%s'", line)
			return
		default:
			logrus.Infof("response: %s", line)
		}
	}
}
