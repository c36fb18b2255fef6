// Package wayland is a small display-protocol client bound by hand to the
// interfaces the overlay needs: the core objects, wlr-layer-shell,
// wlr-screencopy, cursor-shape and viewporter.
//
// # Wire Format
//
// Every message is a header of two 32-bit words in host byte order (object
// id, then size<<16 | opcode) followed by 32-bit aligned arguments. Strings
// and arrays are length-prefixed and zero-padded; fixed-point numbers are
// signed 24.8. File descriptors travel out of band as SCM_RIGHTS control
// messages and are matched to events in arrival order.
//
// # Usage
//
//	client, err := wayland.Dial(logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	svc := capture.NewService(client, logger)
//	shot, err := svc.Acquire(monitor.Name)
//	...
//	surface, err := client.CreateOverlay(shot.Output, w, h, scale)
//
// Client implements capture.Screencopier; Overlay turns compositor events into
// event.Event values.
//
// # Thread Safety
//
// Nothing here is safe for concurrent use. The client is driven from one
// goroutine, which blocks only inside Dispatch.
package wayland
