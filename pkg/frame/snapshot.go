package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sanonone/beams/pkg/sim"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrMalformedSnapshot is returned when a snapshot payload cannot be decoded.
var ErrMalformedSnapshot = errors.New("frame: malformed snapshot")

var modeCodes = []sim.ModeKind{sim.KindRails, sim.KindFree, sim.KindCore}

// Fixed record sizes of each section, in bytes.
const (
	headerRecordSize = 16 + 8 + 3*4
	nodeRecordSize   = 3 * 2
	edgeRecordSize   = 3*4 + 1 + 2
	entityRecordSize = 3*2 + 1 + 2 + 2 + 3*2
)

// Encode packs a simulation frame into a compact snapshot payload.
//
// Positions, sizes, fades, wear and colours are stored as IEEE half floats;
// at the default sphere size this keeps about a quarter unit of precision,
// plenty for drawing. Layout (little endian):
//
//	id[16] tick u64 roll,pitch,yaw f32
//	nodes    u32 count, then x,y,z f16
//	edges    u32 count, then src u32, dest u32, hops u32, free u8, wear f16
//	entities u32 count, then x,y,z f16, mode u8, size f16, fade f16, r,g,b f16
func Encode(f sim.Frame) []byte {
	buf := make([]byte, 0, headerRecordSize+
		4+len(f.Nodes)*nodeRecordSize+
		4+len(f.Edges)*edgeRecordSize+
		4+len(f.Entities)*entityRecordSize)

	id, err := uuid.Parse(f.ID)
	if err != nil {
		id = uuid.Nil
	}
	buf = append(buf, id[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, f.Tick)
	buf = appendF32(buf, f.Angles.Roll)
	buf = appendF32(buf, f.Angles.Pitch)
	buf = appendF32(buf, f.Angles.Yaw)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f.Nodes)))
	for _, p := range f.Nodes {
		buf = appendVec(buf, p)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f.Edges)))
	for _, e := range f.Edges {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.Src))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.Dest))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.HopCount))
		var free byte
		if e.Free {
			free = 1
		}
		buf = append(buf, free)
		buf = appendF16(buf, e.Wear)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f.Entities)))
	for _, e := range f.Entities {
		buf = appendVec(buf, e.Pos)
		buf = append(buf, modeCode(e.Mode))
		buf = appendF16(buf, e.Size)
		buf = appendF16(buf, e.Fade)
		for _, c := range e.Color {
			buf = appendF16(buf, c)
		}
	}
	return buf
}

// Decode unpacks a payload produced by Encode. Half-float fields come back
// rounded to half precision.
func Decode(payload []byte) (sim.Frame, error) {
	d := decoder{buf: payload}
	var f sim.Frame

	var id uuid.UUID
	copy(id[:], d.bytes(16))
	f.ID = id.String()
	f.Tick = d.u64()
	f.Angles = sim.Angles{Roll: d.f32(), Pitch: d.f32(), Yaw: d.f32()}

	if n, ok := d.count(nodeRecordSize); ok {
		f.Nodes = make([]r3.Vec, n)
		for i := range f.Nodes {
			f.Nodes[i] = d.vec()
		}
	}

	if n, ok := d.count(edgeRecordSize); ok {
		f.Edges = make([]sim.EdgeView, n)
		for i := range f.Edges {
			f.Edges[i] = sim.EdgeView{
				Src:      int(d.u32()),
				Dest:     int(d.u32()),
				HopCount: int(d.u32()),
				Free:     d.u8() == 1,
				Wear:     d.f16(),
			}
		}
	}

	if n, ok := d.count(entityRecordSize); ok {
		f.Entities = make([]sim.EntityView, n)
		for i := range f.Entities {
			ev := sim.EntityView{Pos: d.vec()}
			code := d.u8()
			if int(code) >= len(modeCodes) {
				return sim.Frame{}, fmt.Errorf("%w: entity %d has unknown mode %d", ErrMalformedSnapshot, i, code)
			}
			ev.Mode = modeCodes[code]
			ev.Size = d.f16()
			ev.Fade = d.f16()
			for c := range ev.Color {
				ev.Color[c] = d.f16()
			}
			f.Entities[i] = ev
		}
	}

	if d.err != nil {
		return sim.Frame{}, d.err
	}
	if d.off != len(payload) {
		return sim.Frame{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedSnapshot, len(payload)-d.off)
	}
	return f, nil
}

func modeCode(k sim.ModeKind) byte {
	for i, m := range modeCodes {
		if m == k {
			return byte(i)
		}
	}
	return 0
}

func appendF32(buf []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
}

func appendF16(buf []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint16(buf, float16.Fromfloat32(float32(v)).Bits())
}

func appendVec(buf []byte, v r3.Vec) []byte {
	buf = appendF16(buf, v.X)
	buf = appendF16(buf, v.Y)
	return appendF16(buf, v.Z)
}

// decoder reads fixed-width fields and latches the first short read.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf)-d.off < n {
		d.err = fmt.Errorf("%w: truncated at offset %d", ErrMalformedSnapshot, d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

// count reads a section length and checks the remaining payload can hold it.
func (d *decoder) count(recordSize int) (int, bool) {
	n := int(d.u32())
	if d.err != nil {
		return 0, false
	}
	if n > (len(d.buf)-d.off)/recordSize {
		d.err = fmt.Errorf("%w: section of %d records exceeds payload", ErrMalformedSnapshot, n)
		return 0, false
	}
	return n, true
}

func (d *decoder) u8() byte {
	if b := d.bytes(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.bytes(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *decoder) u64() uint64 {
	if b := d.bytes(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) f32() float64 {
	return float64(math.Float32frombits(d.u32()))
}

func (d *decoder) f16() float64 {
	b := d.bytes(2)
	if b == nil {
		return 0
	}
	return float64(float16.Frombits(binary.LittleEndian.Uint16(b)).Float32())
}

func (d *decoder) vec() r3.Vec {
	return r3.Vec{X: d.f16(), Y: d.f16(), Z: d.f16()}
}
