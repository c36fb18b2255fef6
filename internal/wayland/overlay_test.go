package wayland

import (
	"testing"

	"github.com/t4t5/hypruler/internal/event"
	"github.com/t4t5/hypruler/internal/imaging"
)

// answerFrames completes every surface frame callback at once.
func answerFrames(f *fakeCompositor, req request) {
	if req.opcode != surfaceFrame {
		return
	}
	for _, s := range f.find(testCompositor, compositorCreateSurface) {
		if s.args[0] == req.object {
			f.send(req.args[0], callbackDone, 0)
			return
		}
	}
}

func newFakeOverlay(t *testing.T, compositorVersion uint32) (*Overlay, *fakeCompositor) {
	t.Helper()
	c, f := newFakeClient(t, 3, answerFrames)
	c.compositorVersion = compositorVersion
	o, err := c.CreateOverlay(c.outputs[0].info, 4, 2, imaging.NewScaleFactor(1, 1))
	if err != nil {
		t.Fatalf("CreateOverlay: %v", err)
	}
	t.Cleanup(func() { o.Close() })
	if err := c.conn.Roundtrip(); err != nil {
		t.Fatalf("Roundtrip: %v", err)
	}
	return o, f
}

func TestOverlay_Configure(t *testing.T) {
	o, f := newFakeOverlay(t, 4)

	f.send(o.layer, layerSurfaceConfigure, 77, 1920, 1080)
	ev, err := o.NextEvent()
	if err != nil {
		t.Fatalf("NextEvent: %v", err)
	}
	if ev != (event.Configure{Width: 1920, Height: 1080}) {
		t.Fatalf("event = %#v, want Configure 1920x1080", ev)
	}

	if err := o.conn.Roundtrip(); err != nil {
		t.Fatalf("Roundtrip: %v", err)
	}
	acks := f.find(o.layer, layerSurfaceAckConfigure)
	if len(acks) != 1 || acks[0].args[0] != 77 {
		t.Errorf("ack_configure = %+v, want one with serial 77", acks)
	}
}

func TestOverlay_BufferSlots(t *testing.T) {
	o, f := newFakeOverlay(t, 4)

	pools := f.find(testShm, shmCreatePool)
	if len(pools) != 1 {
		t.Fatalf("create_pool sent %d times, want 1", len(pools))
	}
	buffers := f.find(pools[0].args[0], shmPoolCreateBuffer)
	if len(buffers) != slotCount {
		t.Fatalf("create_buffer sent %d times, want %d", len(buffers), slotCount)
	}
	// Both slots live in one pool, one frame apart.
	if buffers[0].args[1] != 0 || buffers[1].args[1] != 4*4*2 {
		t.Errorf("slot offsets = %d, %d, want 0, 32", buffers[0].args[1], buffers[1].args[1])
	}

	first, ok := o.Buffer()
	if !ok {
		t.Fatal("first Buffer: no free slot")
	}
	if len(first.Pix) != 4*4*2 || first.Stride != 16 {
		t.Fatalf("canvas = %d bytes stride %d, want 32 stride 16", len(first.Pix), first.Stride)
	}
	if err := o.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	second, ok := o.Buffer()
	if !ok {
		t.Fatal("second Buffer: no free slot")
	}
	if &second.Pix[0] == &first.Pix[0] {
		t.Fatal("second Buffer returned the attached slot")
	}
	if err := o.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	if _, ok := o.Buffer(); ok {
		t.Fatal("Buffer returned a slot while both are attached")
	}
	if err := o.Present(); err != errNoBuffer {
		t.Errorf("Present without a buffer = %v, want errNoBuffer", err)
	}

	// The compositor lets go of the first slot.
	f.send(buffers[0].args[0], bufferRelease)
	if err := o.conn.Roundtrip(); err != nil {
		t.Fatalf("Roundtrip: %v", err)
	}
	again, ok := o.Buffer()
	if !ok {
		t.Fatal("Buffer after release: no free slot")
	}
	if &again.Pix[0] != &first.Pix[0] {
		t.Error("Buffer after release did not return the released slot")
	}

	surface := o.surface
	attaches := f.find(surface, surfaceAttach)
	if len(attaches) != 2 || attaches[0].args[0] != buffers[0].args[0] || attaches[1].args[0] != buffers[1].args[0] {
		t.Errorf("attach requests = %+v, want slot 0 then slot 1", attaches)
	}
	damage := f.find(surface, surfaceDamageBuffer)
	if len(damage) != 2 || damage[0].args[2] != 4 || damage[0].args[3] != 2 {
		t.Errorf("damage_buffer requests = %+v, want two covering 4x2", damage)
	}
	if n := len(f.find(surface, surfaceCommit)); n != 3 {
		t.Errorf("commit sent %d times, want 3 (initial plus one per present)", n)
	}

	for i := 0; i < 2; i++ {
		ev, err := o.NextEvent()
		if err != nil {
			t.Fatalf("NextEvent: %v", err)
		}
		if _, ok := ev.(event.Frame); !ok {
			t.Errorf("event %d = %#v, want Frame", i, ev)
		}
	}
}

func TestOverlay_DamageOnOldCompositor(t *testing.T) {
	o, f := newFakeOverlay(t, 3)

	if _, ok := o.Buffer(); !ok {
		t.Fatal("Buffer: no free slot")
	}
	if err := o.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if err := o.conn.Roundtrip(); err != nil {
		t.Fatalf("Roundtrip: %v", err)
	}
	if n := len(f.find(o.surface, surfaceDamage)); n != 1 {
		t.Errorf("damage sent %d times, want 1", n)
	}
	if n := len(f.find(o.surface, surfaceDamageBuffer)); n != 0 {
		t.Errorf("damage_buffer sent %d times on a version 3 compositor", n)
	}
}

func TestOverlay_CloseReleases(t *testing.T) {
	o, f := newFakeOverlay(t, 4)
	surface, layer, pool := o.surface, o.layer, o.pool
	buffers := []uint32{o.slots[0].buffer, o.slots[1].buffer}

	if err := o.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := o.conn.Roundtrip(); err != nil {
		t.Fatalf("Roundtrip: %v", err)
	}

	for _, released := range []struct {
		what   string
		object uint32
		opcode uint16
	}{
		{"layer surface", layer, layerSurfaceDestroy},
		{"surface", surface, surfaceDestroy},
		{"slot 0", buffers[0], bufferDestroy},
		{"slot 1", buffers[1], bufferDestroy},
		{"pool", pool, shmPoolDestroy},
	} {
		if n := len(f.find(released.object, released.opcode)); n != 1 {
			t.Errorf("%s destroyed %d times, want 1", released.what, n)
		}
	}
	if o.c.overlay != nil {
		t.Error("client still holds the closed overlay")
	}
}
