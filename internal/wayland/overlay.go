package wayland

import (
	"errors"
	"math"

	"golang.org/x/sys/unix"

	"github.com/t4t5/hypruler/internal/apperr"
	"github.com/t4t5/hypruler/internal/capture"
	"github.com/t4t5/hypruler/internal/event"
	"github.com/t4t5/hypruler/internal/imaging"
	"github.com/t4t5/hypruler/internal/render"
)

// Namespace identifies the layer surface to the compositor.
const Namespace = "hypruler"

// slotCount is the number of shm buffers the overlay alternates between.
const slotCount = 2

var errNoBuffer = errors.New("present without a buffer")

type slot struct {
	buffer uint32
	offset int
	busy   bool // attached and not yet released by the compositor
}

// Overlay is a full-screen layer surface on the overlay layer of one output,
// drawn from physical-resolution shm buffers. It turns the compositor's
// events into event.Event values for the session.
type Overlay struct {
	c    *Client
	conn *Conn

	width, height, stride int

	surface  uint32
	viewport uint32
	layer    uint32

	pointer      uint32
	keyboard     uint32
	cursorDevice uint32

	file    *ShmFile
	pool    uint32
	slots   [slotCount]slot
	current int

	queue  []event.Event
	closed bool
}

// CreateOverlay maps the overlay on out. width and height are the buffer
// size in physical pixels; scale is used only when the compositor has no
// viewporter and the buffer must carry an integer scale instead.
func (c *Client) CreateOverlay(out capture.Output, width, height int, scale imaging.ScaleFactor) (*Overlay, error) {
	if c.layerShell == 0 {
		return nil, apperr.New(apperr.ProtocolUnsupported, "compositor does not support %s", ifaceLayerShell)
	}
	if c.overlay != nil {
		return nil, errors.New("overlay already created")
	}
	target := c.findOutput(out.ID)
	if target == nil {
		return nil, apperr.New(apperr.MonitorNotFound, "output %q is gone", out.Name)
	}
	if width <= 0 || height <= 0 {
		return nil, apperr.New(apperr.ShmFailed, "invalid overlay size %dx%d", width, height)
	}

	o := &Overlay{
		c:       c,
		conn:    c.conn,
		width:   width,
		height:  height,
		stride:  width * 4,
		current: -1,
	}
	if err := o.setup(target, scale); err != nil {
		o.Close()
		return nil, err
	}
	c.overlay = o
	if err := o.updateDevices(); err != nil {
		o.Close()
		return nil, err
	}
	return o, nil
}

func (o *Overlay) setup(target *output, scale imaging.ScaleFactor) error {
	conn := o.conn
	o.surface = conn.newObject(nil)
	if err := conn.call(o.c.compositor, compositorCreateSurface, o.surface); err != nil {
		return err
	}

	if o.c.viewporter != 0 {
		o.viewport = conn.newObject(nil)
		if err := conn.call(o.c.viewporter, viewporterGetViewport, o.viewport, o.surface); err != nil {
			return err
		}
	} else if err := conn.call(o.surface, surfaceSetBufferScale, uint32(scale.Integer())); err != nil {
		return err
	}

	region := conn.newObject(nil)
	if err := conn.call(o.c.compositor, compositorCreateRegion, region); err != nil {
		return err
	}
	if err := conn.call(region, regionAdd, 0, 0, math.MaxInt32, math.MaxInt32); err != nil {
		return err
	}
	if err := conn.call(o.surface, surfaceSetOpaqueRegion, region); err != nil {
		return err
	}
	if err := conn.call(region, regionDestroy); err != nil {
		return err
	}

	o.layer = conn.newObject(o.handleLayer)
	var e encoder
	e.putUint(o.layer)
	e.putUint(o.surface)
	e.putUint(target.id)
	e.putUint(layerOverlay)
	e.putString(Namespace)
	if err := conn.send(o.c.layerShell, layerShellGetLayerSurface, &e); err != nil {
		return err
	}
	if err := conn.call(o.layer, layerSurfaceSetAnchor, anchorTop|anchorBottom|anchorLeft|anchorRight); err != nil {
		return err
	}
	var zone encoder
	zone.putInt(-1)
	if err := conn.send(o.layer, layerSurfaceSetExclusiveZone, &zone); err != nil {
		return err
	}
	if err := conn.call(o.layer, layerSurfaceSetKeyboardInteractivity, keyboardInteractivityExclusive); err != nil {
		return err
	}
	// The initial commit carries no buffer; the compositor answers with a
	// configure.
	if err := conn.call(o.surface, surfaceCommit); err != nil {
		return err
	}
	return o.createBuffers()
}

func (o *Overlay) createBuffers() error {
	size := o.stride * o.height
	file, err := NewShmFile("hypruler-overlay", size*slotCount)
	if err != nil {
		return err
	}
	o.file = file
	if o.pool, err = o.c.createPool(file); err != nil {
		return err
	}
	for i := range o.slots {
		s := &o.slots[i]
		s.offset = i * size
		s.buffer = o.conn.newObject(func(opcode uint16, d *decoder) error {
			if opcode == bufferRelease {
				s.busy = false
			}
			return nil
		})
		if err := o.conn.call(o.pool, shmPoolCreateBuffer, s.buffer, uint32(s.offset),
			uint32(o.width), uint32(o.height), uint32(o.stride), uint32(imaging.FormatXRGB8888)); err != nil {
			return err
		}
	}
	return nil
}

// updateDevices creates the pointer and keyboard the seat currently offers.
// Seat capabilities may arrive before or after the overlay exists.
func (o *Overlay) updateDevices() error {
	if o.closed || o.c.seat == 0 {
		return nil
	}
	caps := o.c.seatCaps
	if caps&seatCapPointer != 0 && o.pointer == 0 {
		o.pointer = o.conn.newObject(o.handlePointer)
		if err := o.conn.call(o.c.seat, seatGetPointer, o.pointer); err != nil {
			return err
		}
		if o.c.cursorShape != 0 {
			o.cursorDevice = o.conn.newObject(nil)
			if err := o.conn.call(o.c.cursorShape, cursorShapeGetPointer, o.cursorDevice, o.pointer); err != nil {
				return err
			}
		}
	}
	if caps&seatCapKeyboard != 0 && o.keyboard == 0 {
		o.keyboard = o.conn.newObject(o.handleKeyboard)
		if err := o.conn.call(o.c.seat, seatGetKeyboard, o.keyboard); err != nil {
			return err
		}
	}
	return nil
}

func (o *Overlay) push(ev event.Event) {
	o.queue = append(o.queue, ev)
}

func (o *Overlay) handleLayer(opcode uint16, d *decoder) error {
	switch opcode {
	case layerSurfaceConfigure:
		serial, w, h := d.uint(), d.uint(), d.uint()
		if err := o.conn.call(o.layer, layerSurfaceAckConfigure, serial); err != nil {
			return err
		}
		if o.viewport != 0 && w > 0 && h > 0 {
			if err := o.conn.call(o.viewport, viewportSetDestination, w, h); err != nil {
				return err
			}
		}
		o.push(event.Configure{Width: int(w), Height: int(h)})
	case layerSurfaceClosed:
		o.push(event.Closed{})
	}
	return nil
}

func (o *Overlay) handlePointer(opcode uint16, d *decoder) error {
	switch opcode {
	case pointerEnter:
		serial, _, x, y := d.uint(), d.uint(), d.fixed(), d.fixed()
		o.push(event.PointerEnter{Serial: serial, X: x, Y: y})
	case pointerMotion:
		_, x, y := d.uint(), d.fixed(), d.fixed()
		o.push(event.PointerMotion{X: x, Y: y})
	case pointerButton:
		_, _, button, state := d.uint(), d.uint(), d.uint(), d.uint()
		o.push(event.PointerButton{Button: button, Pressed: state == buttonPressed})
	}
	return nil
}

func (o *Overlay) handleKeyboard(opcode uint16, d *decoder) error {
	switch opcode {
	case keyboardKeymap:
		_, fd := d.uint(), d.fd()
		if fd >= 0 {
			unix.Close(fd)
		}
	case keyboardKey:
		_, _, key, state := d.uint(), d.uint(), d.uint(), d.uint()
		o.push(event.Key{Key: key, Pressed: state == keyPressed})
	}
	return nil
}

// NextEvent returns the next queued event, reading from the display until
// one is available.
func (o *Overlay) NextEvent() (event.Event, error) {
	for len(o.queue) == 0 {
		if err := o.conn.Dispatch(); err != nil {
			return nil, err
		}
	}
	ev := o.queue[0]
	o.queue = o.queue[1:]
	return ev, nil
}

// Buffer returns a canvas over a slot the compositor is not reading, and
// false if both are still attached.
func (o *Overlay) Buffer() (render.Canvas, bool) {
	for i := range o.slots {
		if o.slots[i].busy {
			continue
		}
		o.current = i
		size := o.stride * o.height
		off := o.slots[i].offset
		return render.Canvas{
			Pix:    o.file.Bytes()[off : off+size],
			Width:  o.width,
			Height: o.height,
			Stride: o.stride,
		}, true
	}
	return render.Canvas{}, false
}

// Present attaches the slot last returned by Buffer, damages the whole
// surface, asks for a frame callback and commits.
func (o *Overlay) Present() error {
	if o.current < 0 {
		return errNoBuffer
	}
	s := &o.slots[o.current]
	o.current = -1
	if err := o.conn.call(o.surface, surfaceAttach, s.buffer, 0, 0); err != nil {
		return err
	}
	damage := uint16(surfaceDamageBuffer)
	if o.c.compositorVersion < 4 {
		damage = surfaceDamage
	}
	if err := o.conn.call(o.surface, damage, 0, 0, uint32(o.width), uint32(o.height)); err != nil {
		return err
	}
	s.busy = true
	return o.RequestFrame()
}

// RequestFrame asks for a frame callback and commits. The callback arrives
// as an event.Frame.
func (o *Overlay) RequestFrame() error {
	cb := o.conn.newObject(func(opcode uint16, d *decoder) error {
		if opcode == callbackDone {
			o.push(event.Frame{})
		}
		return nil
	})
	if err := o.conn.call(o.surface, surfaceFrame, cb); err != nil {
		return err
	}
	return o.conn.call(o.surface, surfaceCommit)
}

// SetCursorShape shows a crosshair for the pointer entry identified by
// serial. Without the cursor-shape protocol it does nothing.
func (o *Overlay) SetCursorShape(serial uint32) error {
	if o.cursorDevice == 0 {
		return nil
	}
	return o.conn.call(o.cursorDevice, cursorDeviceSetShape, serial, cursorShapeCrosshair)
}

// Close destroys the surface and its buffers. Errors are ignored: the
// connection is about to be closed anyway.
func (o *Overlay) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	if o.c.overlay == o {
		o.c.overlay = nil
	}
	conn := o.conn
	if o.cursorDevice != 0 {
		_ = conn.call(o.cursorDevice, cursorDeviceDestroy)
	}
	if o.layer != 0 {
		_ = conn.call(o.layer, layerSurfaceDestroy)
		conn.forget(o.layer)
	}
	if o.viewport != 0 {
		_ = conn.call(o.viewport, viewportDestroy)
	}
	if o.surface != 0 {
		_ = conn.call(o.surface, surfaceDestroy)
	}
	for _, s := range o.slots {
		if s.buffer != 0 {
			_ = conn.call(s.buffer, bufferDestroy)
			conn.forget(s.buffer)
		}
	}
	if o.pool != 0 {
		_ = conn.call(o.pool, shmPoolDestroy)
	}
	if o.file != nil {
		return o.file.Close()
	}
	return nil
}
