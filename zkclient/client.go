// Package zkclient drives one TCP session against a ZKTeco biometric
// time-attendance terminal: the connect/auth handshake, command round
// trips, and the bulk-data transfer state machine layered on top of
// package protocol's framing.
package zkclient

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zkattend/zkattend/protocol"
	"github.com/zkattend/zkattend/zktrace"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultRWTimeout      = 30 * time.Second
)

// Client is a session to a single ZKTeco device over one TCP connection. It
// is not safe for concurrent use: session_id/reply_id only make sense under
// strictly sequential commands (spec.md §5). Separate Clients against
// separate devices are independent and may run concurrently.
type Client struct {
	host string
	port int

	connectTimeout time.Duration
	rwTimeout      time.Duration
	password       uint32

	conn      net.Conn
	br        *bufio.Reader
	sessionID uint16
	replyID   uint16

	log   *logrus.Entry
	trace zktrace.Sink
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithPassword sets the device's CMD_AUTH password, used only if the device
// answers CMD_CONNECT with CMD_ACK_UNAUTH.
func WithPassword(password uint32) Option {
	return func(c *Client) { c.password = password }
}

// WithConnectTimeout overrides the 10s default dial timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) { c.connectTimeout = d }
}

// WithReadWriteTimeout overrides the 30s default per-command read/write
// deadline.
func WithReadWriteTimeout(d time.Duration) Option {
	return func(c *Client) { c.rwTimeout = d }
}

// WithLogger attaches a structured logger; callers typically pass a
// logrus.Entry already carrying request-scoped fields.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// WithTrace attaches a raw-frame sink for debugging against real hardware.
func WithTrace(sink zktrace.Sink) Option {
	return func(c *Client) { c.trace = sink }
}

// New builds a Client for host:port. Call Connect before issuing commands.
func New(host string, port int, opts ...Option) *Client {
	c := &Client{
		host:           host,
		port:           port,
		connectTimeout: defaultConnectTimeout,
		rwTimeout:      defaultRWTimeout,
		replyID:        protocol.USHRTMAX - 1,
		log:            logrus.NewEntry(logrus.StandardLogger()),
		trace:          zktrace.NoopSink{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the device and performs the CMD_CONNECT handshake,
// authenticating with CMD_AUTH if the device demands it (spec.md §4.2).
func (c *Client) Connect(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", c.host, c.port))
	if err != nil {
		return fmt.Errorf("connect %s:%d: %w", c.host, c.port, err)
	}
	c.conn = conn
	c.br = bufio.NewReader(conn)
	c.sessionID = 0
	c.replyID = protocol.USHRTMAX - 1

	pkt, err := c.command(cmdConnect, nil)
	if err != nil {
		conn.Close()
		c.conn = nil
		return fmt.Errorf("connect %s:%d: handshake: %w", c.host, c.port, err)
	}

	switch pkt.Command {
	case cmdAckOK:
		if c.sessionID == 0 && len(pkt.Payload) >= 2 {
			c.sessionID = binary.LittleEndian.Uint16(pkt.Payload[0:2])
		}
		c.log.WithFields(logrus.Fields{"host": c.host, "port": c.port}).Debug("zkclient: connected")
		return nil
	case cmdAckUnauth:
		if c.sessionID == 0 && len(pkt.Payload) >= 2 {
			c.sessionID = binary.LittleEndian.Uint16(pkt.Payload[0:2])
		}
		key := protocol.CommKey(c.password, c.sessionID)
		authPkt, err := c.command(cmdAuth, key)
		if err != nil {
			conn.Close()
			c.conn = nil
			return fmt.Errorf("connect %s:%d: auth: %w", c.host, c.port, err)
		}
		if authPkt.Command != cmdAckOK {
			conn.Close()
			c.conn = nil
			return fmt.Errorf("connect %s:%d: %w: cmd=%d", c.host, c.port, ErrAuthRejected, authPkt.Command)
		}
		c.log.WithFields(logrus.Fields{"host": c.host, "port": c.port}).Debug("zkclient: connected (authenticated)")
		return nil
	default:
		conn.Close()
		c.conn = nil
		return fmt.Errorf("connect %s:%d: %w: cmd=%d", c.host, c.port, ErrUnexpectedCommand, pkt.Command)
	}
}

// Disconnect always attempts CMD_ENABLEDEVICE then CMD_EXIT before closing
// the socket, best-effort, regardless of any earlier command error
// (spec.md §4.2's disconnect invariant), then closes the connection.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	if _, err := c.command(cmdEnableDevice, nil); err != nil {
		c.log.WithError(err).Debug("zkclient: enable-device on disconnect")
	}
	if _, err := c.command(cmdExit, nil); err != nil {
		c.log.WithError(err).Debug("zkclient: exit on disconnect")
	}
	err := c.conn.Close()
	c.conn = nil
	c.br = nil
	return err
}

func (c *Client) adoptSession(pkt *protocol.Packet) {
	if pkt.SessionID != 0 {
		c.sessionID = pkt.SessionID
	}
	c.replyID = pkt.ReplyID
}

// readPacket reads exactly one framed packet off the wire.
func (c *Client) readPacket() (*protocol.Packet, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(c.br, hdr[:]); err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	length, err := protocol.ParseFrameHeader(hdr[:])
	if err != nil {
		return nil, err
	}
	inner := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(c.br, inner); err != nil {
			return nil, fmt.Errorf("read frame body: %w", err)
		}
	}
	c.trace.Frame("in", append(append([]byte(nil), hdr[:]...), inner...))

	pkt, err := protocol.ParsePacket(inner)
	if err != nil {
		return nil, err
	}
	c.adoptSession(pkt)
	return pkt, nil
}

func (c *Client) writeFrame(cmd uint16, payload []byte) error {
	next := protocol.NextReplyID(c.replyID)
	inner := protocol.EncodeCommand(cmd, c.sessionID, next, payload)
	frame := protocol.WrapFrame(inner)
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.rwTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	c.trace.Frame("out", frame)
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("write command %d: %w", cmd, err)
	}
	return nil
}

// command performs one full round trip: send cmd/payload, read exactly one
// response frame.
func (c *Client) command(cmd uint16, payload []byte) (*protocol.Packet, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if err := c.writeFrame(cmd, payload); err != nil {
		return nil, err
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.rwTimeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	pkt, err := c.readPacket()
	if err != nil {
		return nil, fmt.Errorf("command %d: %w", cmd, err)
	}
	return pkt, nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return asNetError(err, &ne) && ne.Timeout()
}

// asNetError walks err's single-Unwrap chain looking for a net.Error, a
// hand-rolled stand-in for errors.As kept in its own function so bulk.go's
// retry loop reads as a single predicate call.
func asNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
