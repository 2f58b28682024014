package box2d

import "math"

/// B2Island is the set of bodies, touching contacts and joints solved
/// together. The world keeps one for the discrete solve and a smaller one
/// for TOI sub-steps, clearing them between islands.
type B2Island struct {
	M_listener B2ContactListenerInterface

	M_bodies   []*B2Body
	M_contacts []*B2Contact
	M_joints   []B2JointInterface

	// Indexed by M_islandIndex of the bodies.
	M_positions  []B2Position
	M_velocities []B2Velocity
}

func MakeB2Island(bodyCapacity int, contactCapacity int, jointCapacity int, listener B2ContactListenerInterface) B2Island {
	return B2Island{
		M_listener:   listener,
		M_bodies:     make([]*B2Body, 0, bodyCapacity),
		M_contacts:   make([]*B2Contact, 0, contactCapacity),
		M_joints:     make([]B2JointInterface, 0, jointCapacity),
		M_positions:  make([]B2Position, 0, bodyCapacity),
		M_velocities: make([]B2Velocity, 0, bodyCapacity),
	}
}

func (island *B2Island) Clear() {
	island.M_bodies = island.M_bodies[:0]
	island.M_contacts = island.M_contacts[:0]
	island.M_joints = island.M_joints[:0]
}

func (island B2Island) GetBodyCount() int { return len(island.M_bodies) }
func (island B2Island) GetContactCount() int { return len(island.M_contacts) }
func (island B2Island) GetJointCount() int { return len(island.M_joints) }

func (island *B2Island) AddBody(body *B2Body) {
	body.M_islandIndex = len(island.M_bodies)
	island.M_bodies = append(island.M_bodies, body)
}

func (island *B2Island) AddContact(contact *B2Contact) {
	island.M_contacts = append(island.M_contacts, contact)
}

func (island *B2Island) AddJoint(joint B2JointInterface) {
	island.M_joints = append(island.M_joints, joint)
}

func (island *B2Island) loadState() {
	n := len(island.M_bodies)
	island.M_positions = resized(island.M_positions, n)
	island.M_velocities = resized(island.M_velocities, n)
	for i, b := range island.M_bodies {
		island.M_positions[i] = B2Position{C: b.M_sweep.C, A: b.M_sweep.A}
		island.M_velocities[i] = B2Velocity{V: b.M_linearVelocity, W: b.M_angularVelocity}
	}
}

func resized[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

func (island *B2Island) storeState() {
	for i, b := range island.M_bodies {
		b.M_sweep.C, b.M_sweep.A = island.M_positions[i].C, island.M_positions[i].A
		b.M_linearVelocity, b.M_angularVelocity = island.M_velocities[i].V, island.M_velocities[i].W
		b.SynchronizeTransform()
	}
}

// integratePositions moves every body by h times its velocity. Velocities
// that would exceed the per-step translation or rotation caps are scaled
// down first.
func (island *B2Island) integratePositions(h float64) {
	for i := range island.M_bodies {
		pos, vel := &island.M_positions[i], &island.M_velocities[i]

		if d := B2Vec2MulScalar(h, vel.V); B2Vec2Dot(d, d) > B2_maxTranslationSquared {
			vel.V.OperatorScalarMulInplace(B2_maxTranslation / d.Length())
		}
		if r := h * vel.W; r*r > B2_maxRotationSquared {
			vel.W *= B2_maxRotation / math.Abs(r)
		}

		pos.C.OperatorPlusInplace(B2Vec2MulScalar(h, vel.V))
		pos.A += h * vel.W
	}
}

// prepare builds the contact solver and initializes every constraint.
func (island *B2Island) prepare(step B2TimeStep, baumgarte float64) (B2ContactSolver, B2SolverData) {
	data := B2SolverData{
		Step:       step,
		Positions:  island.M_positions,
		Velocities: island.M_velocities,
		Baumgarte:  baumgarte,
	}
	def := B2ContactSolverDef{
		Step:       step,
		Contacts:   island.M_contacts,
		Positions:  island.M_positions,
		Velocities: island.M_velocities,
	}
	solver := MakeB2ContactSolver(&def)
	solver.InitializeVelocityConstraints()
	if step.WarmStarting {
		solver.WarmStart()
	}
	for _, j := range island.M_joints {
		j.InitVelocityConstraints(data)
	}
	return solver, data
}

// correctPositions runs position iterations until every constraint reports
// its error within tolerance. It returns whether that happened.
func (island *B2Island) correctPositions(solver *B2ContactSolver, data B2SolverData) bool {
	for i := 0; i < data.Step.PositionIterations; i++ {
		solved := solver.SolvePositionConstraints(data.Baumgarte)
		for _, j := range island.M_joints {
			solved = j.SolvePositionConstraints(data) && solved
		}
		if solved {
			return true
		}
	}
	return false
}

/// Solve integrates forces, solves velocities, integrates positions and
/// corrects them, then decides whether the island goes to sleep. The
/// island only sleeps when position correction converged.
func (island *B2Island) Solve(profile *B2Profile, step B2TimeStep, gravity B2Vec2, allowSleep bool) {
	h := step.Dt
	island.loadState()

	for i, b := range island.M_bodies {
		b.M_sweep.C0, b.M_sweep.A0 = b.M_sweep.C, b.M_sweep.A
		if b.M_type != B2BodyType.B2_dynamicBody {
			continue
		}

		vel := &island.M_velocities[i]
		accel := B2Vec2Add(B2Vec2MulScalar(b.M_gravityScale, gravity), B2Vec2MulScalar(b.M_invMass, b.M_force))
		vel.V.OperatorPlusInplace(B2Vec2MulScalar(h, accel))
		vel.W += h * b.M_invI * b.M_torque

		// Pade approximation of dv/dt = -c v.
		vel.V.OperatorScalarMulInplace(1 / (1 + h*b.M_linearDamping))
		vel.W *= 1 / (1 + h*b.M_angularDamping)
	}

	timer := MakeB2Timer()
	solver, data := island.prepare(step, B2_baumgarte)
	profile.SolveInit += timer.GetMilliseconds()

	timer.Reset()
	for i := 0; i < step.VelocityIterations; i++ {
		for _, j := range island.M_joints {
			j.SolveVelocityConstraints(data)
		}
		solver.SolveVelocityConstraints()
	}
	solver.StoreImpulses()
	profile.SolveVelocity += timer.GetMilliseconds()

	island.integratePositions(h)

	timer.Reset()
	positionSolved := island.correctPositions(&solver, data)
	island.storeState()
	profile.SolvePosition += timer.GetMilliseconds()

	island.Report(solver.M_velocityConstraints)

	if allowSleep {
		island.updateSleep(h, positionSolved)
	}
}

// updateSleep advances the sleep timers. The whole island sleeps once its
// least rested body has been still for B2_timeToSleep.
func (island *B2Island) updateSleep(h float64, positionSolved bool) {
	const linTolSqr = B2_linearSleepTolerance * B2_linearSleepTolerance
	const angTolSqr = B2_angularSleepTolerance * B2_angularSleepTolerance

	minSleepTime := B2_maxFloat
	for _, b := range island.M_bodies {
		if b.M_type == B2BodyType.B2_staticBody {
			continue
		}
		restless := !b.IsSleepingAllowed() ||
			b.M_angularVelocity*b.M_angularVelocity > angTolSqr ||
			B2Vec2Dot(b.M_linearVelocity, b.M_linearVelocity) > linTolSqr
		if restless {
			b.M_sleepTime = 0
		} else {
			b.M_sleepTime += h
		}
		minSleepTime = math.Min(minSleepTime, b.M_sleepTime)
	}

	if minSleepTime >= B2_timeToSleep && positionSolved {
		for _, b := range island.M_bodies {
			b.SetAwake(false)
		}
	}
}

/// SolveTOI resolves a TOI island over the rest of the step. Nothing is
/// warm started and the impulses are not kept for the next step.
func (island *B2Island) SolveTOI(subStep B2TimeStep) {
	subStep.WarmStarting = false
	island.loadState()
	solver, data := island.prepare(subStep, B2_toiBaugarte)

	for i := 0; i < subStep.VelocityIterations; i++ {
		solver.SolveVelocityConstraints()
		for _, j := range island.M_joints {
			j.SolveVelocityConstraints(data)
		}
	}

	// The sweeps restart at the impact.
	for _, b := range island.M_bodies {
		b.M_sweep.C0, b.M_sweep.A0 = b.M_sweep.C, b.M_sweep.A
	}

	island.integratePositions(subStep.Dt)
	island.correctPositions(&solver, data)
	island.storeState()
	island.Report(solver.M_velocityConstraints)
}

/// Report hands each contact's impulses to the listener's PostSolve.
func (island *B2Island) Report(constraints []B2ContactVelocityConstraint) {
	if island.M_listener == nil {
		return
	}
	for i, c := range island.M_contacts {
		vc := &constraints[i]
		impulse := B2ContactImpulse{Count: vc.PointCount}
		for j := 0; j < vc.PointCount; j++ {
			impulse.NormalImpulses[j] = vc.Points[j].NormalImpulse
			impulse.TangentImpulses[j] = vc.Points[j].TangentImpulse
		}
		island.M_listener.PostSolve(c, &impulse)
	}
}
