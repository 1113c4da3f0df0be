package camera

// CameraControllerOption configures a CameraController during construction.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the starting orbit distance from the target.
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the starting horizontal orbit angle.
//
// Parameters:
//   - azimuth: angle around the Y axis in radians (0 faces +Z)
//
// Returns:
//   - CameraControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the starting vertical orbit angle.
//
// Parameters:
//   - elevation: angle above the horizontal plane in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithTarget sets the orbit pivot the camera looks at.
//
// Parameters:
//   - x: target X coordinate
//   - y: target Y coordinate
//   - z: target Z coordinate
//
// Returns:
//   - CameraControllerOption: functional option to set the target
func WithTarget(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target[0] = x
		cc.target[1] = y
		cc.target[2] = z
	}
}

// WithRadiusBounds clamps how close and how far the camera can zoom.
//
// Parameters:
//   - min: minimum orbit radius
//   - max: maximum orbit radius
//
// Returns:
//   - CameraControllerOption: functional option to set the radius bounds
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = min
		cc.maxRadius = max
	}
}

// WithElevationBounds clamps the vertical orbit angle so the camera cannot
// flip over the poles.
//
// Parameters:
//   - min: minimum elevation in radians
//   - max: maximum elevation in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation bounds
func WithElevationBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minElevation = min
		cc.maxElevation = max
	}
}

// WithOrbitSpeed sets the step size of the keyboard orbit calls.
//
// Parameters:
//   - speed: radians per OrbitLeft/Right/Up/Down call
//
// Returns:
//   - CameraControllerOption: functional option to set the orbit speed
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = speed
	}
}

// WithMouseSensitivity scales mouse drag deltas into orbit angles.
//
// Parameters:
//   - sensitivity: radians per pixel of drag
//
// Returns:
//   - CameraControllerOption: functional option to set the sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed scales scroll input into radius changes.
//
// Parameters:
//   - speed: radius units per scroll step
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed scales pan input into target movement.
//
// Parameters:
//   - speed: world units per pan step
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}
