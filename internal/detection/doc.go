// Package detection finds content boundaries in a LuminanceField.
//
// Two queries are provided:
//
//   - DetectEdges: four independent scans outward from a point, used in auto
//     mode to measure the span around the cursor
//   - SnapRectangle: per-side boundary search used to pull a user-drawn
//     rectangle onto nearby content
//
// # Algorithm Overview
//
// Both queries compare luminance against a fixed reference taken where the
// scan starts, never against the preceding pixel. A slow gradient therefore
// does not trigger a boundary until it has drifted more than the threshold
// away from the starting brightness.
//
// # Coordinate System
//
// Offsets are physical pixel coordinates in the field:
//   - Left/right scans produce Vertical edges whose Offset is an x
//   - Up/down scans produce Horizontal edges whose Offset is a y
//
// # Determinism
//
// Every function here is pure: the same field and arguments always give the
// same result, and nothing writes to the field.
package detection
