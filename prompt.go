package rochambeau

import (
	"bufio"
	"fmt"
	"github.com/pkg/errors"
	"io"
	"strconv"
)

// PromptGameCount asks on out for a positive game count, reading whitespace-separated words from in until one parses.
func PromptGameCount(in io.Reader, out io.Writer) (int, error) {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	for {
		if _, err := fmt.Fprint(out, "Enter the number of games for the players to play: "); err != nil {
			return 0, err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, errors.Wrap(err, "error reading game count")
			}
			return 0, errors.New("no game count entered")
		}
		games, err := strconv.Atoi(scanner.Text())
		if err != nil || games < 1 {
			if _, err := fmt.Fprintln(out, "Make sure to enter a number greater than 0"); err != nil {
				return 0, err
			}
			continue
		}
		return games, nil
	}
}
