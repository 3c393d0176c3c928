package pose

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// Blob format errors.
var (
	ErrInvalidMagic       = errors.New("invalid pose blob magic: expected 'LOAP'")
	ErrUnsupportedVersion = errors.New("unsupported pose blob version")
	ErrTruncated          = errors.New("truncated pose blob")
)

// Blob layout, little-endian:
//
//	magic "LOAP" | version u16 | frameCount u32 | frames... | pointCount u32 | points...
//
// A node is: nameLen u16 | name | position 3×f32 | rotation 4×f32 | childCount u32 | children...
const (
	blobMagic   = "LOAP"
	blobVersion = uint16(1)

	// maxDepth bounds recursion when decoding untrusted blobs.
	maxDepth = 256
)

// Encode serializes the sequence into an opaque string blob.
// Decode(Encode(s)) is equal to s for every sequence.
func Encode(s *Sequence) (string, error) {
	if s == nil {
		s = &Sequence{}
	}

	var buf bytes.Buffer
	buf.WriteString(blobMagic)
	w := &writer{buf: &buf}
	w.u16(blobVersion)

	w.u32(uint32(len(s.Frames)))
	for i := range s.Frames {
		if err := w.node(&s.Frames[i]); err != nil {
			return "", fmt.Errorf("encoding frame %d: %w", i, err)
		}
	}

	w.u32(uint32(len(s.Path)))
	for _, p := range s.Path {
		w.vec3(p)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a blob produced by Encode.
func Decode(blob string) (*Sequence, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	if len(data) < len(blobMagic)+2 {
		return nil, ErrTruncated
	}
	if string(data[:4]) != blobMagic {
		return nil, ErrInvalidMagic
	}

	r := &reader{r: bytes.NewReader(data[4:])}
	version := r.u16()
	if r.err == nil && version != blobVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	seq := &Sequence{}
	frameCount := r.u32()
	for i := uint32(0); i < frameCount && r.err == nil; i++ {
		n := r.node(0)
		if r.err != nil {
			return nil, fmt.Errorf("parsing frame %d: %w", i, r.err)
		}
		seq.Frames = append(seq.Frames, n)
	}

	pointCount := r.u32()
	for i := uint32(0); i < pointCount && r.err == nil; i++ {
		p := r.vec3()
		if r.err == nil {
			seq.Path = append(seq.Path, p)
		}
	}

	if r.err != nil {
		return nil, r.err
	}
	if r.r.Len() != 0 {
		return nil, fmt.Errorf("pose blob has %d trailing bytes", r.r.Len())
	}
	return seq, nil
}

type writer struct {
	buf *bytes.Buffer
}

func (w *writer) u16(v uint16) {
	_ = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w *writer) u32(v uint32) {
	_ = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w *writer) vec3(v math.Vec3) {
	_ = binary.Write(w.buf, binary.LittleEndian, [3]float32{v.X, v.Y, v.Z})
}

func (w *writer) node(n *Node) error {
	if len(n.Name) > 0xFFFF {
		return fmt.Errorf("node name too long (%d bytes)", len(n.Name))
	}
	w.u16(uint16(len(n.Name)))
	w.buf.WriteString(n.Name)
	w.vec3(n.Position)
	_ = binary.Write(w.buf, binary.LittleEndian, [4]float32{n.Rotation.X, n.Rotation.Y, n.Rotation.Z, n.Rotation.W})

	w.u32(uint32(len(n.Children)))
	for i := range n.Children {
		if err := w.node(&n.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// reader records the first error and turns later reads into no-ops.
type reader struct {
	r   *bytes.Reader
	err error
}

func (r *reader) read(v any) {
	if r.err != nil {
		return
	}
	if err := binary.Read(r.r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrTruncated
		}
		r.err = err
	}
}

func (r *reader) u16() uint16 {
	var v uint16
	r.read(&v)
	return v
}

func (r *reader) u32() uint32 {
	var v uint32
	r.read(&v)
	return v
}

func (r *reader) vec3() math.Vec3 {
	var v [3]float32
	r.read(&v)
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func (r *reader) node(depth int) Node {
	if depth > maxDepth {
		r.err = fmt.Errorf("pose tree deeper than %d", maxDepth)
		return Node{}
	}

	var n Node
	nameLen := r.u16()
	if r.err != nil {
		return n
	}
	if int(nameLen) > r.r.Len() {
		r.err = ErrTruncated
		return n
	}
	name := make([]byte, nameLen)
	_, _ = io.ReadFull(r.r, name)
	n.Name = string(name)

	n.Position = r.vec3()
	var q [4]float32
	r.read(&q)
	n.Rotation = math.Quat{X: q[0], Y: q[1], Z: q[2], W: q[3]}

	childCount := r.u32()
	if r.err != nil {
		return n
	}
	// Every child needs at least a name length, so a count larger than the
	// remaining bytes cannot be valid.
	if int64(childCount) > int64(r.r.Len()) {
		r.err = ErrTruncated
		return n
	}
	for i := uint32(0); i < childCount && r.err == nil; i++ {
		n.Children = append(n.Children, r.node(depth+1))
	}
	return n
}
