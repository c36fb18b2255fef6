package wayland

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/t4t5/hypruler/internal/apperr"
)

// DefaultDisplay is the socket name used when WAYLAND_DISPLAY is unset.
const DefaultDisplay = "wayland-0"

// maxFDsPerRead bounds the ancillary buffer; libwayland uses the same limit.
const maxFDsPerRead = 28

// handler receives the events addressed to one object.
type handler func(opcode uint16, d *decoder) error

// Conn is a connection to the compositor. It is not safe for concurrent use;
// the whole client runs on the goroutine that calls Dispatch.
type Conn struct {
	sock     *net.UnixConn
	logger   *slog.Logger
	handlers map[uint32]handler
	nextID   uint32

	in   []byte // received bytes not yet forming a whole message
	fds  fdQueue
	rbuf []byte
	oob  []byte
}

// Connect opens the display socket named by WAYLAND_DISPLAY, relative to
// XDG_RUNTIME_DIR unless it is an absolute path.
func Connect(logger *slog.Logger) (*Conn, error) {
	path, err := socketPath()
	if err != nil {
		return nil, err
	}
	sock, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, apperr.Wrap(apperr.ConnectFailed, err, "connect to %s", path)
	}
	logger.Debug("connected to display", "socket", path)
	return newConn(sock, logger), nil
}

func socketPath() (string, error) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = DefaultDisplay
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", apperr.New(apperr.ConnectFailed, "XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(dir, display), nil
}

func newConn(sock *net.UnixConn, logger *slog.Logger) *Conn {
	c := &Conn{
		sock:     sock,
		logger:   logger,
		handlers: make(map[uint32]handler),
		nextID:   displayID + 1,
		rbuf:     make([]byte, 4096),
		oob:      make([]byte, unix.CmsgSpace(maxFDsPerRead*4)),
	}
	c.handlers[displayID] = c.handleDisplay
	return c
}

func (c *Conn) handleDisplay(opcode uint16, d *decoder) error {
	switch opcode {
	case displayError:
		object, code, msg := d.uint(), d.uint(), d.string()
		return apperr.New(apperr.ProtocolError, "object %d: error %d: %s", object, code, msg)
	case displayDeleteID:
		delete(c.handlers, d.uint())
	}
	return nil
}

// newObject allocates a client object id. h may be nil for objects without
// events of interest.
func (c *Conn) newObject(h handler) uint32 {
	id := c.nextID
	c.nextID++
	if h != nil {
		c.handlers[id] = h
	}
	return id
}

func (c *Conn) forget(id uint32) {
	delete(c.handlers, id)
}

// call sends a request whose arguments are all 32-bit words.
func (c *Conn) call(object uint32, opcode uint16, args ...uint32) error {
	var e encoder
	for _, a := range args {
		e.putUint(a)
	}
	return c.send(object, opcode, &e)
}

func (c *Conn) send(object uint32, opcode uint16, e *encoder) error {
	if e == nil {
		e = &encoder{}
	}
	msg, err := e.marshal(object, opcode)
	if err != nil {
		return apperr.Wrap(apperr.ProtocolError, err, "encode request")
	}
	var oob []byte
	if len(e.fds) > 0 {
		oob = unix.UnixRights(e.fds...)
	}
	n, _, err := c.sock.WriteMsgUnix(msg, oob, nil)
	if err != nil {
		return apperr.Wrap(apperr.ProtocolError, err, "send request %d to object %d", opcode, object)
	}
	if n != len(msg) {
		return apperr.New(apperr.ProtocolError, "short write: %d of %d bytes", n, len(msg))
	}
	return nil
}

// Dispatch blocks until the socket is readable, then delivers every complete
// message received to its object's handler.
func (c *Conn) Dispatch() error {
	n, oobn, _, _, err := c.sock.ReadMsgUnix(c.rbuf, c.oob)
	if oobn > 0 {
		c.receiveFDs(c.oob[:oobn])
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.ProtocolError, "compositor closed the connection")
		}
		return apperr.Wrap(apperr.ProtocolError, err, "read from display")
	}
	if n == 0 {
		return apperr.New(apperr.ProtocolError, "compositor closed the connection")
	}
	c.in = append(c.in, c.rbuf[:n]...)
	return c.drain()
}

func (c *Conn) receiveFDs(oob []byte) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		c.logger.Warn("bad control message", "error", err)
		return
	}
	for i := range msgs {
		fds, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		c.fds.push(fds...)
	}
}

func (c *Conn) drain() error {
	buf := c.in
	defer func() { c.in = append(c.in[:0], buf...) }()

	for {
		h, ok := parseHeader(buf)
		if !ok || len(buf) < h.size {
			return nil
		}
		if h.size < headerSize || h.size%4 != 0 {
			return apperr.New(apperr.ProtocolError, "invalid message size %d", h.size)
		}
		body := buf[headerSize:h.size]
		buf = buf[h.size:]

		fn, ok := c.handlers[h.object]
		if !ok {
			c.logger.Debug("event for unknown object", "object", h.object, "opcode", h.opcode)
			continue
		}
		d := decoder{data: body, fds: &c.fds}
		if err := fn(h.opcode, &d); err != nil {
			return err
		}
		if d.err != nil {
			return apperr.Wrap(apperr.ProtocolError, d.err,
				"event %d on object %d", h.opcode, h.object)
		}
	}
}

// Roundtrip blocks until the compositor has processed every request sent so
// far and every event it produced in response has been dispatched.
func (c *Conn) Roundtrip() error {
	done := false
	cb := c.newObject(func(opcode uint16, d *decoder) error {
		if opcode == callbackDone {
			done = true
		}
		return nil
	})
	if err := c.call(displayID, displaySync, cb); err != nil {
		return err
	}
	for !done {
		if err := c.Dispatch(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the socket and any descriptors nobody claimed.
func (c *Conn) Close() error {
	for {
		fd, ok := c.fds.pop()
		if !ok {
			break
		}
		unix.Close(fd)
	}
	if err := c.sock.Close(); err != nil {
		return fmt.Errorf("close display socket: %w", err)
	}
	return nil
}
