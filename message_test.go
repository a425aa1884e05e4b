package rochambeau

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestEncodeDatagramLayout(t *testing.T) {
	buf := make([]byte, DatagramSz)
	n, err := encodeDatagram(Datagram{PeerID(0x0102030405060708), END}, buf)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 0xff}, buf)
}

func TestDecodeDatagram(t *testing.T) {
	d, err := decodeDatagram([]byte{0, 0, 0, 0, 0, 0, 0x30, 0x39, 3})
	require.NoError(t, err)
	assert.Equal(t, PeerID(12345), d.Peer)
	assert.Equal(t, SCISSORS, d.Move)

	d, err = decodeDatagram([]byte{0, 0, 0, 0, 0, 0, 0, 1, 0xff})
	require.NoError(t, err)
	assert.Equal(t, END, d.Move)
}

func TestDatagramSizeIsExact(t *testing.T) {
	_, err := encodeDatagram(Datagram{PeerID(1), ROCK}, make([]byte, 8))
	assert.Error(t, err)
	_, err = decodeDatagram(make([]byte, 8))
	assert.Error(t, err)
	_, err = decodeDatagram(make([]byte, 10))
	assert.Error(t, err)
}
