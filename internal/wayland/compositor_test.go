package wayland

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/t4t5/hypruler/internal/capture"
)

// Object ids the test client is given for its globals.
const (
	testShm        = 2
	testScreencopy = 3
	testCompositor = 4
	testLayerShell = 5
	testOutput     = 6
)

// request is one client request as seen by the fake compositor. Arguments
// are kept as raw words; fd is the descriptor that came with create_pool.
type request struct {
	object uint32
	opcode uint16
	args   []uint32
	fd     int
}

// fakeCompositor reads requests from the server end of a socket pair,
// answers wl_display.sync itself and hands everything else to react.
type fakeCompositor struct {
	t     *testing.T
	sock  *net.UnixConn
	react func(f *fakeCompositor, req request)

	mu   sync.Mutex
	reqs []request
	done chan struct{}
}

func startCompositor(t *testing.T, sock *net.UnixConn, react func(f *fakeCompositor, req request)) *fakeCompositor {
	t.Helper()
	f := &fakeCompositor{t: t, sock: sock, react: react, done: make(chan struct{})}
	go f.serve()
	t.Cleanup(func() {
		sock.Close()
		<-f.done
		for _, r := range f.requests() {
			if r.fd >= 0 {
				unix.Close(r.fd)
			}
		}
	})
	return f
}

func (f *fakeCompositor) serve() {
	defer close(f.done)

	var pending []byte
	var fds fdQueue
	rbuf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(maxFDsPerRead*4))

	for {
		n, oobn, _, _, err := f.sock.ReadMsgUnix(rbuf, oob)
		if oobn > 0 {
			msgs, _ := unix.ParseSocketControlMessage(oob[:oobn])
			for i := range msgs {
				if got, err := unix.ParseUnixRights(&msgs[i]); err == nil {
					fds.push(got...)
				}
			}
		}
		if err != nil || n == 0 {
			return
		}
		pending = append(pending, rbuf[:n]...)

		for {
			h, ok := parseHeader(pending)
			if !ok || len(pending) < h.size {
				break
			}
			req := request{object: h.object, opcode: h.opcode, fd: -1}
			for body := pending[headerSize:h.size]; len(body) >= 4; body = body[4:] {
				req.args = append(req.args, binary.NativeEndian.Uint32(body))
			}
			pending = pending[h.size:]

			if req.object == testShm && req.opcode == shmCreatePool {
				req.fd, _ = fds.pop()
			}
			f.mu.Lock()
			f.reqs = append(f.reqs, req)
			f.mu.Unlock()

			switch {
			case req.object == displayID && req.opcode == displaySync:
				f.send(req.args[0], callbackDone, 0)
			case f.react != nil:
				f.react(f, req)
			}
		}
	}
}

func (f *fakeCompositor) send(object uint32, opcode uint16, args ...uint32) {
	var e encoder
	for _, a := range args {
		e.putUint(a)
	}
	msg, err := e.marshal(object, opcode)
	if err != nil {
		f.t.Errorf("marshal event: %v", err)
		return
	}
	if _, err := f.sock.Write(msg); err != nil {
		f.t.Errorf("write event: %v", err)
	}
}

func (f *fakeCompositor) requests() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.reqs...)
}

// find returns the requests sent to object with opcode.
func (f *fakeCompositor) find(object uint32, opcode uint16) []request {
	var out []request
	for _, r := range f.requests() {
		if r.object == object && r.opcode == opcode {
			out = append(out, r)
		}
	}
	return out
}

// newFakeClient returns a Client already bound to the fake globals, as
// Dial would leave it.
func newFakeClient(t *testing.T, screencopyVersion uint32, react func(f *fakeCompositor, req request)) (*Client, *fakeCompositor) {
	t.Helper()
	conn, server := newTestConn(t)
	conn.nextID = 10

	c := &Client{
		conn:              conn,
		logger:            discardLogger(),
		formats:           make(map[uint32]bool),
		shm:               testShm,
		screencopy:        testScreencopy,
		screencopyVersion: screencopyVersion,
		compositor:        testCompositor,
		compositorVersion: 4,
		layerShell:        testLayerShell,
		outputs: []*output{{
			id:   testOutput,
			info: capture.Output{ID: 40, Name: "DP-1", Width: 1, Height: 2, Scale: 1},
			done: true,
		}},
	}
	return c, startCompositor(t, server, react)
}
