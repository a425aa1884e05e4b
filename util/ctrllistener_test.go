package util

import (
	"bufio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"strings"
	"testing"
)

func TestCtrlListenerCallbacks(t *testing.T) {
	root := t.TempDir()
	cl, err := GetCtrlListener(root, "ctrltest")
	require.NoError(t, err)
	defer func() { _ = cl.Close() }()

	again, err := GetCtrlListener(root, "ctrltest")
	require.NoError(t, err)
	assert.Same(t, cl, again)

	invoked := make(chan string, 1)
	cl.AddCallback("hello", func(line string, conn net.Conn) (int64, error) {
		invoked <- line
		n, err := conn.Write([]byte("oh, wow!\n"))
		return int64(n), err
	})
	cl.Start()

	conn, err := net.Dial("unix", CtrlSocketPath(root, "ctrltest"))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	_, err = conn.Write([]byte("hello there\n"))
	require.NoError(t, err)
	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "oh, wow!", strings.TrimSpace(line))
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(line))
	assert.Equal(t, "hello there", <-invoked)

	_, err = conn.Write([]byte("bogus\n"))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "syntax error?", strings.TrimSpace(line))
}
