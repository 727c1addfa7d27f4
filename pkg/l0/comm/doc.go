// Package comm implements the serial link to a bridge MCU which fronts the
// HDMI transmitter.
//
// Both ends synchronize with a REQ/ACK handshake carrying their initial
// sequence numbers, after which every frame is prefixed by the next
// expected sequence number of its sender. A frame received out of
// sequence makes the receiver resynchronize. There is no checksum; parity
// can be enabled on the serial port if needed.
//
// The host sends register access requests and the MCU replies with the
// sequence number of the request as the first data byte. Frames with code
// bit 7 set are unsolicited, the MCU uses them to forward the interrupt
// line of the transmitter.
package comm
