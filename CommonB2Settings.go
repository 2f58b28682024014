package box2d

import (
	"fmt"
	"math"
)

/// B2Assert panics when a is false. Assertions guard internal invariants
/// only; misuse of the public API that can be recovered from is logged.
func B2Assert(a bool) {
	if !a {
		panic("box2d: assertion failed")
	}
}

const (
	B2_maxFloat = math.MaxFloat64
	B2_epsilon  = 2.220446049250313e-16
	B2_pi       = math.Pi
)

// Units are meters, kilograms and seconds. Tolerances below are tuned for
// moving objects between 0.1 and 10 meters.

// Collision.
const (
	B2_maxManifoldPoints  = 2
	B2_maxPolygonVertices = 8

	/// Margin added around each proxy AABB in the dynamic tree, in meters.
	B2_aabbExtension = 0.1

	/// Fat AABBs are stretched by this multiple of the frame displacement.
	B2_aabbMultiplier = 2.0

	/// Collision and constraint tolerance, in meters.
	B2_linearSlop  = 0.005
	B2_angularSlop = 2.0 / 180.0 * B2_pi

	/// Skin radius of polygons and edges. Continuous collision relies on
	/// this skin being wider than B2_linearSlop.
	B2_polygonRadius = 2.0 * B2_linearSlop

	/// A contact stops taking part in TOI events after this many sub-steps.
	B2_maxSubSteps = 8

	/// Polygon clipping prefers the first reference face within these tolerances.
	B2_relativeTol = 0.98
	B2_absoluteTol = 0.001

	/// Minimum area improvement for ComputeOBB to switch to another edge.
	B2_obbAreaTol = 0.95
)

// Dynamics.
const (
	B2_maxTOIContactsPerIsland = 32
	B2_maxTOIJointsPerIsland   = 32

	/// Approach speeds under this are treated as inelastic.
	B2_velocityThreshold = 1.0

	B2_maxLinearCorrection  = 0.2
	B2_maxAngularCorrection = 8.0 / 180.0 * B2_pi

	/// Per-step caps on motion. Velocities are scaled down to fit them.
	B2_maxTranslation        = 2.0
	B2_maxTranslationSquared = B2_maxTranslation * B2_maxTranslation
	B2_maxRotation           = 0.5 * B2_pi
	B2_maxRotationSquared    = B2_maxRotation * B2_maxRotation

	/// Fraction of the overlap removed per position iteration.
	B2_baumgarte   = 0.2
	B2_toiBaugarte = 0.75
)

// Sleep.
const (
	/// Seconds a whole island must stay still before it sleeps.
	B2_timeToSleep = 0.5

	B2_linearSleepTolerance  = 0.01
	B2_angularSleepTolerance = 2.0 / 180.0 * B2_pi
)

/// B2Version is the release of the solver behavior this package follows.
type B2Version struct {
	Major, Minor, Revision int
}

func (v B2Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Revision)
}

var B2_version = B2Version{Major: 2, Minor: 1, Revision: 2}
