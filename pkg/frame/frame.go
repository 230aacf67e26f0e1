// Package frame implements the binary envelope used to stream simulation
// frames to renderers.
//
// Every message is wrapped in a fixed header followed by the payload:
//
//	[Magic(1)][OpCode(1)][Length(4)][CRC(4)][Payload(N)]
//
// Length and CRC are little endian; the CRC is IEEE 802.3 over the payload.
package frame

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

const (
	// MagicByte marks the start of a valid frame.
	MagicByte = 0xA5

	// HeaderSize is 1 byte (Magic) + 1 byte (OpCode) + 4 bytes (Length) + 4 bytes (CRC32).
	HeaderSize = 10

	// MaxPayload bounds the length a reader accepts before allocating.
	MaxPayload = 64 << 20
)

// OpCode identifies the payload type.
type OpCode byte

const (
	// OpSnapshot carries a packed simulation frame (see Encode).
	OpSnapshot OpCode = 0x01
)

var (
	// ErrInvalidMagic indicates the stream lost synchronization.
	ErrInvalidMagic = errors.New("frame: invalid magic byte")
	// ErrChecksumMismatch indicates corruption within the payload.
	ErrChecksumMismatch = errors.New("frame: crc32 checksum mismatch")
	// ErrIncompleteFrame indicates the stream ended inside a frame.
	ErrIncompleteFrame = errors.New("frame: incomplete frame")
	// ErrFrameTooLarge indicates a length field above MaxPayload.
	ErrFrameTooLarge = errors.New("frame: payload too large")
)

// Writer writes framed messages to an underlying io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes one framed payload in a single call to the underlying
// writer.
func (fw *Writer) WriteFrame(op OpCode, payload []byte) error {
	_, err := fw.w.Write(Append(nil, op, payload))
	return err
}

// Append appends the framed payload to dst and returns the extended slice.
func Append(dst []byte, op OpCode, payload []byte) []byte {
	dst = append(dst, MagicByte, byte(op))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
	dst = binary.LittleEndian.AppendUint32(dst, crc32.ChecksumIEEE(payload))
	return append(dst, payload...)
}

// ReadFrame reads the next frame from r, validating magic byte and checksum.
// It returns the opcode, the payload and the total bytes consumed. A clean
// io.EOF is returned only when the stream ends exactly at a frame boundary.
func ReadFrame(r io.Reader) (OpCode, []byte, int, error) {
	header := make([]byte, HeaderSize)

	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return 0, nil, 0, io.EOF
		}
		return 0, nil, 0, ErrIncompleteFrame
	}

	if header[0] != MagicByte {
		return 0, nil, HeaderSize, ErrInvalidMagic
	}
	op := OpCode(header[1])

	length := binary.LittleEndian.Uint32(header[2:6])
	expectedCRC := binary.LittleEndian.Uint32(header[6:10])
	if length > MaxPayload {
		return op, nil, HeaderSize, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return op, nil, HeaderSize, ErrIncompleteFrame
	}

	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return op, nil, HeaderSize + int(length), ErrChecksumMismatch
	}

	return op, payload, HeaderSize + int(length), nil
}
