// Package stream frames L1 packets on byte streams such as TCP or serial
// connections.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPacketSize bounds the size prefix accepted from the peer.
const MaxPacketSize = 64 << 10

// ReadWriter implements comm.PacketReadWriter. Each packet is prefixed by
// its length as 4 bytes little-endian.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p.ReadWriter, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, fmt.Errorf("packet size %d exceeds %d", size, MaxPacketSize)
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p.ReadWriter, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	_, err := p.ReadWriter.Write(buf)
	return err
}

// Close closes the stream if it can be closed.
func (p *ReadWriter) Close() error {
	if c, ok := p.ReadWriter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
