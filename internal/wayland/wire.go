package wayland

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// headerSize is the object id word plus the size/opcode word.
const headerSize = 8

// maxMessageSize is the largest message the 16-bit size field can describe.
const maxMessageSize = 1<<16 - 1

var (
	errShortMessage = errors.New("message truncated")
	errMissingFD    = errors.New("message expects a file descriptor that was not received")
)

// encoder accumulates the arguments of one request.
type encoder struct {
	buf []byte
	fds []int
}

func (e *encoder) putUint(v uint32) {
	e.buf = binary.NativeEndian.AppendUint32(e.buf, v)
}

func (e *encoder) putInt(v int32) {
	e.putUint(uint32(v))
}

// putFixed writes a 24.8 signed fixed-point number.
func (e *encoder) putFixed(v float64) {
	e.putInt(int32(math.Round(v * 256)))
}

// putString writes a non-null string: length including the NUL, bytes, padding.
func (e *encoder) putString(s string) {
	e.putUint(uint32(len(s) + 1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	e.pad()
}

func (e *encoder) putArray(b []byte) {
	e.putUint(uint32(len(b)))
	e.buf = append(e.buf, b...)
	e.pad()
}

// putFD queues a descriptor for the ancillary data; it takes no body space.
func (e *encoder) putFD(fd int) {
	e.fds = append(e.fds, fd)
}

func (e *encoder) pad() {
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
}

// marshal prefixes the arguments with the message header.
func (e *encoder) marshal(object uint32, opcode uint16) ([]byte, error) {
	size := headerSize + len(e.buf)
	if size > maxMessageSize {
		return nil, fmt.Errorf("request %d on object %d is %d bytes", opcode, object, size)
	}
	msg := make([]byte, 0, size)
	msg = binary.NativeEndian.AppendUint32(msg, object)
	msg = binary.NativeEndian.AppendUint32(msg, uint32(size)<<16|uint32(opcode))
	return append(msg, e.buf...), nil
}

// header is a decoded message header.
type header struct {
	object uint32
	opcode uint16
	size   int
}

func parseHeader(b []byte) (header, bool) {
	if len(b) < headerSize {
		return header{}, false
	}
	word := binary.NativeEndian.Uint32(b[4:])
	return header{
		object: binary.NativeEndian.Uint32(b),
		opcode: uint16(word),
		size:   int(word >> 16),
	}, true
}

// decoder reads the arguments of one event. The first failure sticks in err
// and later reads return zero values, so handlers check err once at the end.
type decoder struct {
	data []byte
	fds  *fdQueue
	err  error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.data) < n {
		d.err = errShortMessage
		return nil
	}
	b := d.data[:n]
	d.data = d.data[n:]
	return b
}

func (d *decoder) uint() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.NativeEndian.Uint32(b)
}

func (d *decoder) int() int32 {
	return int32(d.uint())
}

func (d *decoder) fixed() float64 {
	return float64(d.int()) / 256
}

func (d *decoder) array() []byte {
	n := int(d.uint())
	b := d.take(padded(n))
	if b == nil {
		return nil
	}
	return b[:n]
}

func (d *decoder) string() string {
	b := d.array()
	if len(b) == 0 {
		return ""
	}
	return string(b[:len(b)-1])
}

// fd pops the next received descriptor. The caller owns it.
func (d *decoder) fd() int {
	if d.err != nil {
		return -1
	}
	fd, ok := d.fds.pop()
	if !ok {
		d.err = errMissingFD
		return -1
	}
	return fd
}

func padded(n int) int {
	return (n + 3) &^ 3
}

// fdQueue holds descriptors received over the socket until an event claims
// them. Descriptors arrive in the same order as the messages that carry them.
type fdQueue struct {
	fds []int
}

func (q *fdQueue) push(fds ...int) {
	q.fds = append(q.fds, fds...)
}

func (q *fdQueue) pop() (int, bool) {
	if q == nil || len(q.fds) == 0 {
		return -1, false
	}
	fd := q.fds[0]
	q.fds = q.fds[1:]
	return fd, true
}

func (q *fdQueue) len() int {
	if q == nil {
		return 0
	}
	return len(q.fds)
}
