package play

import (
	"context"
	"fmt"
	game "github.com/openziti/rochambeau"
	"github.com/openziti/rochambeau/cmd/rochambeau/rochambeau"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

func init() {
	playCmd.Flags().IntVarP(&games, "games", "g", 0, "Number of games to play (prompted when not set)")
	rochambeau.RootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Join the group and play",
	Args:  cobra.NoArgs,
	Run:   play,
}
var games int

func play(_ *cobra.Command, _ []string) {
	cfg, err := rochambeau.LoadConfig()
	if err != nil {
		logrus.Fatalf("error loading config (%v)", err)
	}

	if games < 1 {
		games, err = game.PromptGameCount(os.Stdin, os.Stdout)
		if err != nil {
			logrus.Fatalf("error reading game count (%v)", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, err := game.Play(ctx, cfg, games)
	if err != nil {
		logrus.Fatalf("error playing (%v)", err)
	}
	report(summary)
}

func report(summary *game.Summary) {
	rounds := pterm.TableData{{"round", "hand", "opponents", "score", "total"}}
	for _, r := range summary.History {
		score := strconv.Itoa(r.Score)
		if r.Abandoned {
			score = "-"
		}
		rounds = append(rounds, []string{strconv.Itoa(r.Round), r.Hand.String(), fmt.Sprintf("%v", r.Opponents), score, strconv.Itoa(r.Total)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rounds).Render(); err != nil {
		logrus.Errorf("error rendering rounds (%v)", err)
	}

	peers := pterm.TableData{{"peer", "starts", "hands", "finished"}}
	for _, p := range summary.Peers {
		peers = append(peers, []string{p.Peer.String(), strconv.Itoa(p.Starts), strconv.Itoa(p.Hands), strconv.FormatBool(p.Finished)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(peers).Render(); err != nil {
		logrus.Errorf("error rendering peers (%v)", err)
	}

	pterm.Success.Println(summary.String())
}
