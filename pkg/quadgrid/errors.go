package quadgrid

import "errors"

// Error kinds returned by the package. Callers match them with errors.Is;
// every returned error wraps exactly one of these.
var (
	// ErrConfiguration covers invalid resolutions and bounds: non-positive
	// or non-dividing resolution, inverted bounds, bounds outside the
	// global domain, or bounds that snap to an empty grid.
	ErrConfiguration = errors.New("quadgrid: invalid configuration")

	// ErrIndex covers qid encode/decode inputs outside the grid's range.
	ErrIndex = errors.New("quadgrid: index out of range")

	// ErrDomain covers reference coordinates outside the valid
	// latitude/longitude domain.
	ErrDomain = errors.New("quadgrid: coordinate outside valid domain")

	// ErrGeometry marks errors originating in the geometry collaborator
	// (unsupported or malformed regions). ApplyMask passes them through
	// unchanged.
	ErrGeometry = errors.New("quadgrid: geometry error")
)
