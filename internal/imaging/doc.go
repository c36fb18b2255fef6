// Package imaging provides the pixel-level substrate of the measurement
// overlay: the captured Framebuffer, the LuminanceField derived from it, and
// the geometry types (Edge, Rectangle, ScaleFactor) shared by detection,
// measurement and rendering.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based physical pixels:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Rectangle sides are inclusive; Rectangle.Image converts to the
//     exclusive image.Rectangle convention
//
// Logical (surface) coordinates only appear at the boundary with the
// compositor and in labels; ScaleFactor converts between the two.
//
// # Pixel Formats
//
// A Framebuffer carries one of four 32-bit layouts, identified by their wl_shm
// codes:
//   - ARGB8888 / XRGB8888: bytes B, G, R, A/X (native surface layout)
//   - ABGR8888 / XBGR8888: bytes R, G, B, A/X (the *image.RGBA layout)
//
// Background converts once into packed opaque ARGB8888 so every redraw is a
// plain copy.
//
// # Thread Safety
//
// Framebuffer and LuminanceField are immutable after construction and may be
// read from any goroutine.
package imaging
