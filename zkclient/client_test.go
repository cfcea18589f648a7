package zkclient

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zkattend/zkattend/protocol"
)

// fakeDevice wraps one half of a net.Pipe, providing helpers to read the
// client's next command and write a scripted response, standing in for a
// real ZKTeco device in tests.
type fakeDevice struct {
	conn net.Conn
	br   *bufio.Reader
}

func newFakeDevice(t *testing.T) (*Client, *fakeDevice) {
	t.Helper()
	clientConn, serverConn := net.Pipe()

	c := New("fake", 0, WithReadWriteTimeout(2*time.Second))
	c.conn = clientConn
	c.br = bufio.NewReader(clientConn)
	c.sessionID = 0
	c.replyID = protocol.USHRTMAX - 1

	fd := &fakeDevice{conn: serverConn, br: bufio.NewReader(serverConn)}
	return c, fd
}

func (f *fakeDevice) readCommand(t *testing.T) *protocol.Packet {
	t.Helper()
	var hdr [8]byte
	_, err := io.ReadFull(f.br, hdr[:])
	require.NoError(t, err)
	length, err := protocol.ParseFrameHeader(hdr[:])
	require.NoError(t, err)
	inner := make([]byte, length)
	_, err = io.ReadFull(f.br, inner)
	require.NoError(t, err)
	pkt, err := protocol.ParsePacket(inner)
	require.NoError(t, err)
	return pkt
}

func (f *fakeDevice) respond(t *testing.T, cmd, sessionID, replyID uint16, payload []byte) {
	t.Helper()
	inner := protocol.EncodeCommand(cmd, sessionID, replyID, payload)
	_, err := f.conn.Write(protocol.WrapFrame(inner))
	require.NoError(t, err)
}

func TestConnectHandshakeNoAuth(t *testing.T) {
	c, fd := newFakeDevice(t)
	defer fd.conn.Close()

	done := make(chan error, 1)
	go func() {
		done <- c.Connect(context.Background())
	}()

	req := fd.readCommand(t)
	require.Equal(t, uint16(cmdConnect), req.Command)
	fd.respond(t, cmdAckOK, 0x1234, req.ReplyID, []byte{0x34, 0x12})

	require.NoError(t, <-done)
	require.Equal(t, uint16(0x1234), c.sessionID)
}

func TestConnectHandshakeWithAuth(t *testing.T) {
	c, fd := newFakeDevice(t)
	c.password = 999
	defer fd.conn.Close()

	done := make(chan error, 1)
	go func() {
		done <- c.Connect(context.Background())
	}()

	connectReq := fd.readCommand(t)
	fd.respond(t, cmdAckUnauth, 0xABCD, connectReq.ReplyID, []byte{0xCD, 0xAB})

	authReq := fd.readCommand(t)
	wantKey := protocol.CommKey(999, 0xABCD)
	require.Equal(t, wantKey, authReq.Payload)
	fd.respond(t, cmdAckOK, 0xABCD, authReq.ReplyID, nil)

	require.NoError(t, <-done)
}

func TestConnectHandshakeAuthRejected(t *testing.T) {
	c, fd := newFakeDevice(t)
	c.password = 1
	defer fd.conn.Close()

	done := make(chan error, 1)
	go func() {
		done <- c.Connect(context.Background())
	}()

	connectReq := fd.readCommand(t)
	fd.respond(t, cmdAckUnauth, 0x1, connectReq.ReplyID, []byte{0x01, 0x00})

	authReq := fd.readCommand(t)
	fd.respond(t, cmdAckError, 0x1, authReq.ReplyID, nil)

	err := <-done
	require.ErrorIs(t, err, ErrAuthRejected)
}

func TestCommandReplyIDAdvancesAndWraps(t *testing.T) {
	c, fd := newFakeDevice(t)
	defer fd.conn.Close()
	c.sessionID = 1
	c.replyID = protocol.USHRTMAX - 2

	go func() {
		req := fd.readCommand(t)
		require.Equal(t, uint16(protocol.USHRTMAX-1), req.ReplyID)
		fd.respond(t, cmdAckOK, 1, req.ReplyID, nil)
	}()
	_, err := c.command(cmdEnableDevice, nil)
	require.NoError(t, err)
	require.Equal(t, uint16(protocol.USHRTMAX-1), c.replyID)

	go func() {
		req := fd.readCommand(t)
		require.Equal(t, uint16(0), req.ReplyID)
		fd.respond(t, cmdAckOK, 1, req.ReplyID, nil)
	}()
	_, err = c.command(cmdEnableDevice, nil)
	require.NoError(t, err)
	require.Equal(t, uint16(0), c.replyID)
}

func TestGetOptionExtractsValue(t *testing.T) {
	c, fd := newFakeDevice(t)
	defer fd.conn.Close()
	c.sessionID = 1

	go func() {
		req := fd.readCommand(t)
		require.Equal(t, uint16(cmdOptionsRRQ), req.Command)
		fd.respond(t, cmdAckOK, 1, req.ReplyID, []byte("~DeviceName=Z-9000\x00"))
	}()

	v, err := c.GetOption("~DeviceName")
	require.NoError(t, err)
	require.Equal(t, "Z-9000", v)
}

func TestGetTimeInvalidIsError(t *testing.T) {
	c, fd := newFakeDevice(t)
	defer fd.conn.Close()
	c.sessionID = 1

	go func() {
		req := fd.readCommand(t)
		payload := make([]byte, 4)
		// year=0 (->2000), month index 1 (Feb), day 31: impossible date.
		packed := uint32((1*31 + 30) * 24 * 60 * 60)
		binary.LittleEndian.PutUint32(payload, packed)
		fd.respond(t, cmdAckOK, 1, req.ReplyID, payload)
	}()

	_, err := c.GetTime()
	require.Error(t, err)
}
