package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUCameraUniformSizeAndLayout(t *testing.T) {
	u := GPUCameraUniform{
		ViewPosition: [4]float32{1, 2, 3, 0},
	}
	u.ViewProj[0] = 7

	require.Equal(t, 80, u.Size())
	buf := u.Marshal()
	require.Len(t, buf, 80)

	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])))
	// view_proj starts at offset 16
	assert.Equal(t, float32(7), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])))
}

func TestCameraUpdatesFromController(t *testing.T) {
	ctrl := NewCameraController(
		WithTarget(0, 0, 0),
		WithRadius(10),
		WithAzimuth(0),
		WithElevation(0.3),
	)
	cam := NewCamera(WithController(ctrl), WithAspect(16.0/9.0))

	vp := cam.ViewProjectionMatrix()
	assert.NotEqual(t, [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}, vp)

	// moving the controller and updating changes the matrices
	ctrl.OrbitRight()
	cam.Update()
	assert.NotEqual(t, vp, cam.ViewProjectionMatrix())
}

func TestControllerOrbitAndZoomClamps(t *testing.T) {
	ctrl := NewCameraController(WithRadius(10), WithRadiusBounds(5, 20))

	ctrl.Zoom(1000)
	assert.Equal(t, float32(5), ctrl.Radius())

	ctrl.Zoom(-1000)
	assert.Equal(t, float32(20), ctrl.Radius())

	ctrl.SetElevation(10)
	assert.LessOrEqual(t, ctrl.Elevation(), float32(math.Pi/2))
}

func TestControllerPositionOnSphere(t *testing.T) {
	ctrl := NewCameraController(
		WithTarget(1, 2, 3),
		WithRadius(10),
		WithAzimuth(0.7),
		WithElevation(0.4),
	)
	x, y, z := ctrl.Position()
	dx, dy, dz := x-1, y-2, z-3
	dist := math.Sqrt(float64(dx*dx + dy*dy + dz*dz))
	assert.InDelta(t, 10.0, dist, 1e-4)
}

func TestControllerPanMovesTargetAndPosition(t *testing.T) {
	ctrl := NewCameraController(WithTarget(0, 0, 0), WithRadius(10))
	px, py, pz := ctrl.Position()

	ctrl.PanUp(4)
	tx, ty, tz := ctrl.Target()
	nx, ny, nz := ctrl.Position()

	// the orbit relationship is preserved: both endpoints moved by the same offset
	assert.InDelta(t, float64(nx-px), float64(tx), 1e-4)
	assert.InDelta(t, float64(ny-py), float64(ty), 1e-4)
	assert.InDelta(t, float64(nz-pz), float64(tz), 1e-4)
}
