package pose

import (
	"encoding/base64"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/loa-editor/pkg/math"
)

func sampleFrame(offset float32) Node {
	return Node{
		Name:     "root",
		Position: math.Vec3{X: offset, Y: 0.1, Z: -3.75},
		Rotation: math.QuatFromAxisAngle(math.Vec3{Y: 1}, offset),
		Children: []Node{
			{
				Name:     "spine",
				Position: math.Vec3{Y: 1.3333334},
				Rotation: math.QuatIdentity(),
				Children: []Node{
					{Name: "head", Position: math.Vec3{Y: 0.7}, Rotation: math.Quat{X: 0.1, Y: 0.2, Z: 0.3, W: 0.9}},
				},
			},
			{Name: "tail", Position: math.Vec3{Z: -1}},
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		seq  *Sequence
	}{
		{"empty", &Sequence{}},
		{"single frame", &Sequence{Frames: []Node{sampleFrame(0)}}},
		{"path only", &Sequence{Path: []math.Vec3{{X: 1}, {X: 2, Y: 3}}}},
		{
			"several frames",
			&Sequence{
				Frames: []Node{sampleFrame(0), sampleFrame(0.5), sampleFrame(1.25)},
				Path:   []math.Vec3{{X: 0}, {X: 0.5}, {X: 1.25}},
			},
		},
		{"unicode names", &Sequence{Frames: []Node{{Name: "бедро_левое"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := Encode(tt.seq)
			require.NoError(t, err)

			got, err := Decode(blob)
			require.NoError(t, err)
			assert.True(t, tt.seq.Equal(got), "round trip mismatch:\nwant %+v\ngot  %+v", tt.seq, got)
			assert.Equal(t, tt.seq.Len(), got.Len())
		})
	}
}

func TestEncode_Nil(t *testing.T) {
	blob, err := Encode(nil)
	require.NoError(t, err)

	got, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestDecode_Errors(t *testing.T) {
	good, err := Encode(&Sequence{Frames: []Node{sampleFrame(1)}})
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(good)
	require.NoError(t, err)

	enc := base64.StdEncoding.EncodeToString

	t.Run("not base64", func(t *testing.T) {
		_, err := Decode("%%%")
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := Decode(enc([]byte("LO")))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte("XXXX"), raw[4:]...)
		_, err := Decode(enc(bad))
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("bad version", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[4] = 9
		_, err := Decode(enc(bad))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("truncated frame", func(t *testing.T) {
		_, err := Decode(enc(raw[:len(raw)/2]))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		bad := append(append([]byte(nil), raw...), 0xFF)
		_, err := Decode(enc(bad))
		assert.Error(t, err)
	})
}

func TestNode_CloneIsDeep(t *testing.T) {
	orig := sampleFrame(2)
	clone := orig.Clone()
	require.True(t, orig.Equal(clone))

	clone.Children[0].Children[0].Position.Y = 99
	assert.Equal(t, float32(0.7), orig.Children[0].Children[0].Position.Y)
}

func TestSequence_CloneIsDeep(t *testing.T) {
	seq := &Sequence{Frames: []Node{sampleFrame(0)}, Path: []math.Vec3{{X: 1}}}
	clone := seq.Clone()
	require.True(t, seq.Equal(clone))

	clone.Path[0].X = 5
	clone.Frames[0].Name = "changed"
	assert.Equal(t, float32(1), seq.Path[0].X)
	assert.Equal(t, "root", seq.Frames[0].Name)

	assert.Nil(t, (*Sequence)(nil).Clone())
}

func TestNode_FindAndCount(t *testing.T) {
	f := sampleFrame(0)
	assert.Equal(t, 4, f.Count())

	head := f.Find("head")
	require.NotNil(t, head)
	assert.Equal(t, float32(0.7), head.Position.Y)
	assert.Nil(t, f.Find("missing"))
}

func TestSequence_EqualNilEmpty(t *testing.T) {
	a := &Sequence{Frames: []Node{{Name: "r", Children: []Node{}}}}
	b := &Sequence{Frames: []Node{{Name: "r"}}}
	assert.True(t, a.Equal(b))

	assert.True(t, (*Sequence)(nil).Equal(nil))
	assert.False(t, a.Equal(nil))
}

func TestSequence_EqualIsBitwise(t *testing.T) {
	nan := math32.NaN()
	seq := &Sequence{
		Frames: []Node{{Name: "root", Position: math.Vec3{X: nan}, Rotation: math.Quat{W: nan}}},
		Path:   []math.Vec3{{Y: nan}},
	}

	blob, err := Encode(seq)
	require.NoError(t, err)
	got, err := Decode(blob)
	require.NoError(t, err)

	assert.True(t, seq.Equal(seq))
	assert.True(t, seq.Equal(got))

	negZero := math32.Copysign(0, -1)
	a := &Sequence{Path: []math.Vec3{{X: 0}}}
	b := &Sequence{Path: []math.Vec3{{X: negZero}}}
	assert.False(t, a.Equal(b))
}
