package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matTol = 1.0e-5

func assertMat4Equal(t *testing.T, want, got []float32) {
	t.Helper()
	require.Len(t, got, 16)
	for i := range want {
		assert.InDelta(t, want[i], got[i], matTol, "element %d", i)
	}
}

func TestIdentityMul4(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	BuildModelMatrix(m[:], 1, 2, 3, 0.4, 0.5, 0.6, 1, 2, 3)

	Mul4(out[:], id[:], m[:])
	assertMat4Equal(t, m[:], out[:])

	Mul4(out[:], m[:], id[:])
	assertMat4Equal(t, m[:], out[:])
}

func TestInvert4RoundTrip(t *testing.T) {
	var m, inv, out, id [16]float32
	Identity(id[:])
	BuildModelMatrix(m[:], 5, -3, 2, 0.3, 1.1, -0.7, 2, 0.5, 1.5)

	require.True(t, Invert4(inv[:], m[:]))
	Mul4(out[:], m[:], inv[:])
	assertMat4Equal(t, id[:], out[:])
}

func TestInvert4Singular(t *testing.T) {
	var m, out [16]float32
	// all-zero matrix has no inverse
	assert.False(t, Invert4(out[:], m[:]))
}

func TestTranspose4(t *testing.T) {
	var m, tr, back [16]float32
	BuildModelMatrix(m[:], 1, 2, 3, 0.1, 0.2, 0.3, 1, 1, 1)
	Transpose4(tr[:], m[:])
	assert.Equal(t, m[12], tr[3])
	assert.Equal(t, m[1], tr[4])
	Transpose4(back[:], tr[:])
	assertMat4Equal(t, m[:], back[:])
}

func TestPerspectiveClipSpace(t *testing.T) {
	var p [16]float32
	near, far := float32(0.1), float32(100.0)
	Perspective(p[:], float32(math.Pi/2), 1.0, near, far)

	// a point on the near plane maps to depth 0 after the divide
	_, _, z, w := TransformVec4(p[:], 0, 0, -near, 1)
	assert.InDelta(t, 0.0, float64(z/w), matTol)

	// a point on the far plane maps to depth 1
	_, _, z, w = TransformVec4(p[:], 0, 0, -far, 1)
	assert.InDelta(t, 1.0, float64(z/w), 1e-3)
}

func TestOrthoClipSpace(t *testing.T) {
	var p [16]float32
	Ortho(p[:], -10, 10, -10, 10, 0.1, 100)

	x, y, z := TransformVec3(p[:], 10, 10, -0.1)
	assert.InDelta(t, 1.0, float64(x), matTol)
	assert.InDelta(t, 1.0, float64(y), matTol)
	assert.InDelta(t, 0.0, float64(z), matTol)

	x, y, z = TransformVec3(p[:], -10, -10, -100)
	assert.InDelta(t, -1.0, float64(x), matTol)
	assert.InDelta(t, -1.0, float64(y), matTol)
	assert.InDelta(t, 1.0, float64(z), matTol)
}

func TestLookAtEyeMapsToOrigin(t *testing.T) {
	var v [16]float32
	LookAt(v[:], 3, 4, 5, 0, 0, 0, 0, 1, 0)
	x, y, z := TransformVec3(v[:], 3, 4, 5)
	assert.InDelta(t, 0.0, float64(x), matTol)
	assert.InDelta(t, 0.0, float64(y), matTol)
	assert.InDelta(t, 0.0, float64(z), matTol)

	// the target lies on the negative z axis in view space
	_, _, z = TransformVec3(v[:], 0, 0, 0)
	assert.Less(t, z, float32(0))
}

func TestNormalMatrix3Identity(t *testing.T) {
	var m [16]float32
	var n [12]float32
	Identity(m[:])
	require.True(t, NormalMatrix3(n[:], m[:]))
	want := [12]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}
	for i := range want {
		assert.InDelta(t, want[i], n[i], matTol)
	}
}

func TestNormalMatrix3InverseTranspose(t *testing.T) {
	// non-uniform scale is exactly the case where the normal matrix differs
	// from the model matrix
	var m [16]float32
	var n [12]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0, 0, 0, 2, 1, 1)
	require.True(t, NormalMatrix3(n[:], m[:]))

	// a normal along +x on a surface scaled 2x in x must shrink by 1/2
	nx := n[0]*1 + n[4]*0 + n[8]*0
	assert.InDelta(t, 0.5, float64(nx), matTol)

	// rotation-only matrices keep normals unchanged
	BuildModelMatrix(m[:], 0, 0, 0, 0.3, 0.7, 0.1, 1, 1, 1)
	require.True(t, NormalMatrix3(n[:], m[:]))
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			assert.InDelta(t, float64(m[c*4+r]), float64(n[c*4+r]), matTol)
		}
	}
}

func TestNormalMatrix3MatchesInvertTranspose(t *testing.T) {
	// cross-check the direct cofactor path against the 4x4 route, with a
	// rotation and non-uniform scale so every off-diagonal element is live
	var m, inv, invT [16]float32
	var n [12]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0.7, -1.2, 2.1, 2, 3, 0.5)
	require.True(t, NormalMatrix3(n[:], m[:]))
	require.True(t, Invert4(inv[:], m[:]))
	Transpose4(invT[:], inv[:])

	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			assert.InDelta(t, float64(invT[c*4+r]), float64(n[c*4+r]), matTol,
				"col %d row %d", c, r)
		}
	}
}

func TestNormalMatrix3Singular(t *testing.T) {
	var m [16]float32
	var n [12]float32
	assert.False(t, NormalMatrix3(n[:], m[:]))
	assert.Equal(t, float32(1), n[0])
	assert.Equal(t, float32(1), n[5])
	assert.Equal(t, float32(1), n[10])
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1, 2}
	b := SliceToBytes(data)
	require.Len(t, b, 8)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, b[:4])

	assert.Nil(t, SliceToBytes([]float32(nil)))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 5, Coalesce(0, 0, 5, 7))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Equal(t, 0, Coalesce[int]())
}
