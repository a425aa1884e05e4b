package util

import (
	"bufio"
	"bytes"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Sample struct {
	Ts time.Time
	V  int64
}

func WriteSamples(name, outPath string, samples []*Sample) error {
	path := filepath.Join(outPath, fmt.Sprintf("%s.csv", name))
	oF, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.ModePerm)
	if err != nil {
		return err
	}
	defer func() { _ = oF.Close() }()
	for _, sample := range samples {
		line := fmt.Sprintf("%d,%d\n", sample.Ts.UnixNano(), sample.V)
		n, err := oF.Write([]byte(line))
		if err != nil {
			return err
		}
		if n != len(line) {
			return errors.New("short write")
		}
	}
	logrus.Infof("wrote [%d] samples to [%s]", len(samples), path)
	return nil
}

// ReadSamples returns the samples in path keyed by their unix nanosecond timestamp.
func ReadSamples(path string) (map[int64]int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data := make(map[int64]int64)
	scanner := bufio.NewScanner(bytes.NewBuffer(raw))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		tokens := strings.Split(text, ",")
		if len(tokens) != 2 {
			return nil, errors.Errorf("malformed sample at [%s:%d]", path, line)
		}
		ts, err := strconv.ParseInt(tokens[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "timestamp at [%s:%d]", path, line)
		}
		v, err := strconv.ParseInt(tokens[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value at [%s:%d]", path, line)
		}
		data[ts] = v
	}
	return data, scanner.Err()
}
