package wayland

import (
	"fmt"
	"log/slog"

	"github.com/t4t5/hypruler/internal/apperr"
	"github.com/t4t5/hypruler/internal/capture"
	"github.com/t4t5/hypruler/internal/imaging"
)

type global struct {
	name    uint32
	iface   string
	version uint32
}

type output struct {
	id   uint32 // bound object
	info capture.Output
	done bool
}

// Client owns the display connection and the globals bound from it. It
// implements capture.Screencopier and creates the overlay surface.
type Client struct {
	conn   *Conn
	logger *slog.Logger

	registry uint32
	globals  []global

	compositor        uint32
	compositorVersion uint32
	shm               uint32
	seat              uint32
	layerShell        uint32
	screencopy        uint32
	screencopyVersion uint32
	cursorShape       uint32
	viewporter        uint32

	outputs  []*output
	formats  map[uint32]bool
	seatCaps uint32

	overlay *Overlay
}

var _ capture.Screencopier = (*Client)(nil)

// Dial connects to the compositor and binds every global the overlay uses.
// A compositor without wl_compositor or wl_shm is rejected; the optional
// protocols are checked by the operations that need them.
func Dial(logger *slog.Logger) (*Client, error) {
	conn, err := Connect(logger)
	if err != nil {
		return nil, err
	}
	c := &Client{conn: conn, logger: logger, formats: make(map[uint32]bool)}
	if err := c.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) init() error {
	c.registry = c.conn.newObject(c.handleRegistry)
	if err := c.conn.call(displayID, displayGetRegistry, c.registry); err != nil {
		return err
	}
	if err := c.conn.Roundtrip(); err != nil {
		return err
	}
	if err := c.bindGlobals(); err != nil {
		return err
	}
	if c.compositor == 0 {
		return apperr.New(apperr.ProtocolUnsupported, "compositor does not advertise %s", ifaceCompositor)
	}
	if c.shm == 0 {
		return apperr.New(apperr.ProtocolUnsupported, "compositor does not advertise %s", ifaceShm)
	}
	// Output metadata, shm formats and seat capabilities arrive in response
	// to the binds.
	return c.conn.Roundtrip()
}

func (c *Client) handleRegistry(opcode uint16, d *decoder) error {
	switch opcode {
	case registryGlobal:
		g := global{name: d.uint(), iface: d.string(), version: d.uint()}
		c.globals = append(c.globals, g)
	case registryGlobalRemove:
		c.logger.Debug("global removed", "name", d.uint())
	}
	return nil
}

func (c *Client) bind(g global, maxVersion uint32, h handler) (uint32, uint32, error) {
	version := min(g.version, maxVersion)
	id := c.conn.newObject(h)
	var e encoder
	e.putUint(g.name)
	e.putString(g.iface)
	e.putUint(version)
	e.putUint(id)
	if err := c.conn.send(c.registry, registryBind, &e); err != nil {
		return 0, 0, err
	}
	return id, version, nil
}

func (c *Client) bindGlobals() error {
	for _, g := range c.globals {
		var err error
		switch g.iface {
		case ifaceCompositor:
			c.compositor, c.compositorVersion, err = c.bind(g, maxCompositorVersion, nil)
		case ifaceShm:
			c.shm, _, err = c.bind(g, maxShmVersion, c.handleShm)
		case ifaceSeat:
			if c.seat == 0 {
				c.seat, _, err = c.bind(g, maxSeatVersion, c.handleSeat)
			}
		case ifaceOutput:
			o := &output{info: capture.Output{ID: g.name}}
			o.id, _, err = c.bind(g, maxOutputVersion, o.handle)
			c.outputs = append(c.outputs, o)
		case ifaceLayerShell:
			c.layerShell, _, err = c.bind(g, maxLayerShellVersion, nil)
		case ifaceScreencopy:
			c.screencopy, c.screencopyVersion, err = c.bind(g, maxScreencopyVersion, nil)
		case ifaceCursorShape:
			c.cursorShape, _, err = c.bind(g, maxCursorShapeVersion, nil)
		case ifaceViewporter:
			c.viewporter, _, err = c.bind(g, maxViewporterVersion, nil)
		}
		if err != nil {
			return err
		}
	}
	c.logger.Debug("bound globals",
		"outputs", len(c.outputs),
		"screencopy", c.screencopyVersion,
		"layer_shell", c.layerShell != 0,
		"cursor_shape", c.cursorShape != 0,
		"viewporter", c.viewporter != 0)
	return nil
}

func (c *Client) handleShm(opcode uint16, d *decoder) error {
	if opcode == shmFormat {
		c.formats[d.uint()] = true
	}
	return nil
}

func (c *Client) handleSeat(opcode uint16, d *decoder) error {
	if opcode != seatCapabilities {
		return nil
	}
	c.seatCaps = d.uint()
	if c.overlay != nil {
		return c.overlay.updateDevices()
	}
	return nil
}

func (o *output) handle(opcode uint16, d *decoder) error {
	switch opcode {
	case outputMode:
		flags, w, h := d.uint(), d.int(), d.int()
		if flags&outputModeCurrent != 0 {
			o.info.Width, o.info.Height = int(w), int(h)
		}
	case outputScale:
		o.info.Scale = int(d.int())
	case outputName:
		o.info.Name = d.string()
	case outputDone:
		o.done = true
	}
	return nil
}

// Outputs lists the outputs known after the initial roundtrip.
func (c *Client) Outputs() ([]capture.Output, error) {
	outs := make([]capture.Output, 0, len(c.outputs))
	for _, o := range c.outputs {
		outs = append(outs, o.info)
	}
	return outs, nil
}

func (c *Client) findOutput(id uint32) *output {
	for _, o := range c.outputs {
		if o.info.ID == id {
			return o
		}
	}
	return nil
}

// bufferOffer is one shm buffer layout the compositor accepts for a copy.
type bufferOffer struct {
	format imaging.PixelFormat
	width  int
	height int
	stride int
}

// pickOffer prefers a layout matching the overlay buffer so the background
// is a plain copy, then any other layout the imaging package can read.
func pickOffer(offers []bufferOffer) (bufferOffer, bool) {
	for _, o := range offers {
		if o.format.Native() {
			return o, true
		}
	}
	for _, o := range offers {
		if o.format.Supported() {
			return o, true
		}
	}
	return bufferOffer{}, false
}

type frameState struct {
	offers     []bufferOffer
	yInvert    bool
	bufferDone bool
	ready      bool
	failed     bool
}

func (f *frameState) handle(opcode uint16, d *decoder) error {
	switch opcode {
	case frameBuffer:
		format, w, h, stride := d.uint(), d.uint(), d.uint(), d.uint()
		f.offers = append(f.offers, bufferOffer{
			format: imaging.PixelFormat(format),
			width:  int(w),
			height: int(h),
			stride: int(stride),
		})
	case frameFlags:
		f.yInvert = d.uint()&frameFlagYInvert != 0
	case frameReady:
		f.ready = true
	case frameFailed:
		f.failed = true
	case frameBufferDone:
		f.bufferDone = true
	}
	return nil
}

// CaptureOutput copies one frame of out through wlr-screencopy into memory.
// The frame, buffer, pool and shared memory are released on every path.
func (c *Client) CaptureOutput(out capture.Output) (*imaging.Framebuffer, error) {
	if c.screencopy == 0 {
		return nil, apperr.New(apperr.CaptureUnavailable, "compositor does not support %s", ifaceScreencopy)
	}
	o := c.findOutput(out.ID)
	if o == nil {
		return nil, apperr.New(apperr.MonitorNotFound, "output %q is gone", out.Name)
	}

	st := &frameState{}
	frame := c.conn.newObject(st.handle)
	defer func() {
		_ = c.conn.call(frame, frameDestroy)
		c.conn.forget(frame)
	}()
	if err := c.conn.call(c.screencopy, screencopyCaptureOutput, frame, 0, o.id); err != nil {
		return nil, err
	}

	// Version 3 ends the offer list with buffer_done; older versions make a
	// single offer.
	for !st.failed && !st.bufferDone && !(c.screencopyVersion < 3 && len(st.offers) > 0) {
		if err := c.conn.Dispatch(); err != nil {
			return nil, err
		}
	}
	if st.failed {
		return nil, apperr.New(apperr.CaptureUnavailable, "compositor refused to capture %q", out.Name)
	}
	offer, ok := pickOffer(st.offers)
	if !ok {
		return nil, apperr.New(apperr.CaptureUnavailable, "no readable shm format among %d offers", len(st.offers))
	}

	size := offer.stride * offer.height
	file, err := NewShmFile("hypruler-capture", size)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	pool, err := c.createPool(file)
	if err != nil {
		return nil, err
	}
	defer c.conn.call(pool, shmPoolDestroy)

	buffer := c.conn.newObject(nil)
	if err := c.conn.call(pool, shmPoolCreateBuffer, buffer, 0,
		uint32(offer.width), uint32(offer.height), uint32(offer.stride), uint32(offer.format)); err != nil {
		return nil, err
	}
	defer c.conn.call(buffer, bufferDestroy)

	if err := c.conn.call(frame, frameCopy, buffer); err != nil {
		return nil, err
	}
	for !st.ready && !st.failed {
		if err := c.conn.Dispatch(); err != nil {
			return nil, err
		}
	}
	if st.failed {
		return nil, apperr.New(apperr.CaptureUnavailable, "copy of %q failed", out.Name)
	}

	pix := make([]byte, size)
	copy(pix, file.Bytes())
	fb, err := imaging.NewFramebuffer(offer.width, offer.height, offer.stride, offer.format, pix)
	if err != nil {
		return nil, apperr.Wrap(apperr.CaptureUnavailable, err, "captured frame")
	}
	if st.yInvert {
		fb = fb.FlipVertical()
	}
	c.logger.Debug("captured output",
		"output", out.Name,
		"size", fmt.Sprintf("%dx%d", fb.Width, fb.Height),
		"format", fb.Format,
		"y_invert", st.yInvert)
	return fb, nil
}

func (c *Client) createPool(file *ShmFile) (uint32, error) {
	pool := c.conn.newObject(nil)
	var e encoder
	e.putUint(pool)
	e.putFD(file.FD())
	e.putInt(int32(file.Size()))
	if err := c.conn.send(c.shm, shmCreatePool, &e); err != nil {
		return 0, err
	}
	return pool, nil
}

// Close tears down the overlay, if any, and the connection.
func (c *Client) Close() error {
	if c.overlay != nil {
		c.overlay.Close()
	}
	return c.conn.Close()
}
