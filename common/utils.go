package common

// Coalesce returns the first value that is not the zero value of T, falling
// back to the zero value when every input is zero. Used to apply defaults
// over optional staging fields.
//
// Parameters:
//   - values: candidate values in priority order
//
// Returns:
//   - T: the first non-zero value, or T's zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
