// Package emit serializes processed frames into the binary scene-script
// format and parses scripts back into frames and commands.
//
// # Script Layout
//
// A script is a fixed header followed by a payload:
//
//	+--------+---------+------+-------------+------------------+
//	| "BCSC" | version | flag | frame count | payload          |
//	| 4 B    | 1 B     | 1 B  | uint32      | variable         |
//	+--------+---------+------+-------------+------------------+
//
// The flag byte carries the byte order (bit 7, set for big-endian) and the
// payload compression type (low nibble). The header itself is never
// compressed so a consumer can sniff the format before touching the payload.
//
// # Payload
//
// Per frame: frame number (uint32), frame type (byte), command count
// (uint32), then the commands. Three commands exist:
//
//   - CmdClear: keyframe preamble, instructs the consumer to discard
//     everything drawn before this frame. No operands.
//   - CmdSpawn: one region. Tag (uint8-length-prefixed string), packed
//     RGB color (uint32), then z-index, bounding box, and pixel count as
//     unsigned varints, followed by the pixel coordinates as delta-encoded
//     varints in row-major order.
//   - CmdKill: a region tag that is now fully occluded and may be dropped.
//
// Fixed-width integers use the byte order declared in the flag byte;
// varints are byte-order neutral.
package emit
