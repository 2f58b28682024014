package box2d

/// B2Profile records how long each phase of the last Step took, in
/// milliseconds.
type B2Profile struct {
	Step     float64
	Collide  float64
	Solve    float64
	SolveTOI float64

	// Sums over every island of the step.
	SolveInit     float64
	SolveVelocity float64
	SolvePosition float64

	Broadphase float64
}

/// B2TimeStep is what one island solve needs to know about the step.
type B2TimeStep struct {
	Dt     float64
	Inv_dt float64 // zero when Dt is zero

	// Dt times the previous inverse Dt. Warm starting impulses are scaled
	// by it.
	DtRatio float64

	VelocityIterations int
	PositionIterations int

	WarmStarting bool
	BlockSolve   bool
}

func MakeB2TimeStep() B2TimeStep { return B2TimeStep{} }

/// B2Position is the solver's copy of a body's center and angle.
type B2Position struct {
	C B2Vec2
	A float64
}

type B2Velocity struct {
	V B2Vec2
	W float64
}

/// B2SolverData is passed to joints. Both slices are indexed by the body's
/// island slot.
type B2SolverData struct {
	Step       B2TimeStep
	Positions  []B2Position
	Velocities []B2Velocity
	Baumgarte  float64
}

