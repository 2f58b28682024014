package box2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

/// Per-point solver state. RA and RB are anchors relative to the centers of
/// mass. The impulses accumulate across iterations and are clamped as totals.
type B2VelocityConstraintPoint struct {
	RA, RB         B2Vec2
	NormalImpulse  float64
	TangentImpulse float64
	NormalMass     float64
	TangentMass    float64
	VelocityBias   float64
}

type B2ContactVelocityConstraint struct {
	Points [B2_maxManifoldPoints]B2VelocityConstraintPoint
	Normal B2Vec2

	// K is the 2x2 normal mass matrix of a two point manifold and NormalMass
	// its inverse. Both are zero unless the block solver accepted the pair.
	K, NormalMass mgl64.Mat2

	IndexA, IndexB     int
	InvMassA, InvMassB float64
	InvIA, InvIB       float64
	Friction           float64
	Restitution        float64
	PointCount         int
	ContactIndex       int
}

/// Geometry needed to re-evaluate separation while positions move.
type B2ContactPositionConstraint struct {
	LocalPoints                [B2_maxManifoldPoints]B2Vec2
	LocalNormal, LocalPoint    B2Vec2
	IndexA, IndexB             int
	InvMassA, InvMassB         float64
	LocalCenterA, LocalCenterB B2Vec2
	InvIA, InvIB               float64
	Type                       uint8
	RadiusA, RadiusB           float64
	PointCount                 int
}

type B2ContactSolverDef struct {
	Step       B2TimeStep
	Contacts   []*B2Contact
	Positions  []B2Position
	Velocities []B2Velocity
}

/// B2ContactSolver runs sequential impulses over the touching contacts of an
/// island. Positions and velocities alias the island buffers.
type B2ContactSolver struct {
	M_step                B2TimeStep
	M_positions           []B2Position
	M_velocities          []B2Velocity
	M_positionConstraints []B2ContactPositionConstraint
	M_velocityConstraints []B2ContactVelocityConstraint
	M_contacts            []*B2Contact
	M_count               int
}

// Upper bound on k11^2 / det(K) before a two point manifold is treated as
// a single point.
const b2_maxConditionNumber = 1000.0

func toMglVec2(v B2Vec2) mgl64.Vec2 { return mgl64.Vec2{v.X, v.Y} }
func fromMglVec2(v mgl64.Vec2) B2Vec2 { return B2Vec2{v[0], v[1]} }

func MakeB2ContactSolver(def *B2ContactSolverDef) B2ContactSolver {
	n := len(def.Contacts)
	solver := B2ContactSolver{
		M_step:                def.Step,
		M_positions:           def.Positions,
		M_velocities:          def.Velocities,
		M_contacts:            def.Contacts,
		M_count:               n,
		M_positionConstraints: make([]B2ContactPositionConstraint, n),
		M_velocityConstraints: make([]B2ContactVelocityConstraint, n),
	}

	for i, contact := range def.Contacts {
		fA, fB := contact.GetFixtureA(), contact.GetFixtureB()
		bA, bB := fA.GetBody(), fB.GetBody()
		m := contact.GetManifold()
		B2Assert(m.PointCount > 0)

		solver.M_velocityConstraints[i] = B2ContactVelocityConstraint{
			IndexA:       bA.M_islandIndex,
			IndexB:       bB.M_islandIndex,
			InvMassA:     bA.M_invMass,
			InvMassB:     bB.M_invMass,
			InvIA:        bA.M_invI,
			InvIB:        bB.M_invI,
			Friction:     contact.GetFriction(),
			Restitution:  contact.GetRestitution(),
			PointCount:   m.PointCount,
			ContactIndex: i,
		}
		solver.M_positionConstraints[i] = B2ContactPositionConstraint{
			LocalNormal:  m.LocalNormal,
			LocalPoint:   m.LocalPoint,
			IndexA:       bA.M_islandIndex,
			IndexB:       bB.M_islandIndex,
			InvMassA:     bA.M_invMass,
			InvMassB:     bB.M_invMass,
			LocalCenterA: bA.M_sweep.LocalCenter,
			LocalCenterB: bB.M_sweep.LocalCenter,
			InvIA:        bA.M_invI,
			InvIB:        bB.M_invI,
			Type:         m.Type,
			RadiusA:      fA.GetShape().GetRadius(),
			RadiusB:      fB.GetShape().GetRadius(),
			PointCount:   m.PointCount,
		}

		vc, pc := &solver.M_velocityConstraints[i], &solver.M_positionConstraints[i]
		for j := 0; j < m.PointCount; j++ {
			mp := &m.Points[j]
			pc.LocalPoints[j] = mp.LocalPoint
			if def.Step.WarmStarting {
				vc.Points[j].NormalImpulse = def.Step.DtRatio * mp.NormalImpulse
				vc.Points[j].TangentImpulse = def.Step.DtRatio * mp.TangentImpulse
			}
		}
	}

	return solver
}

// velocityPair is a working copy of the two body velocities one constraint
// touches.
type velocityPair struct {
	vA, vB B2Vec2
	wA, wB float64
}

func (solver *B2ContactSolver) loadPair(vc *B2ContactVelocityConstraint) velocityPair {
	a, b := solver.M_velocities[vc.IndexA], solver.M_velocities[vc.IndexB]
	return velocityPair{vA: a.V, wA: a.W, vB: b.V, wB: b.W}
}

func (solver *B2ContactSolver) storePair(vc *B2ContactVelocityConstraint, p velocityPair) {
	solver.M_velocities[vc.IndexA] = B2Velocity{V: p.vA, W: p.wA}
	solver.M_velocities[vc.IndexB] = B2Velocity{V: p.vB, W: p.wB}
}

// relative is the velocity of B's anchor seen from A's anchor.
func (p *velocityPair) relative(rA, rB B2Vec2) B2Vec2 {
	return B2Vec2Sub(
		B2Vec2Add(p.vB, B2Vec2CrossScalarVector(p.wB, rB)),
		B2Vec2Add(p.vA, B2Vec2CrossScalarVector(p.wA, rA)),
	)
}

// push applies impulse P at the anchors, negative on A and positive on B.
func (p *velocityPair) push(vc *B2ContactVelocityConstraint, rA, rB, P B2Vec2) {
	p.vA.OperatorMinusInplace(B2Vec2MulScalar(vc.InvMassA, P))
	p.wA -= vc.InvIA * B2Vec2Cross(rA, P)
	p.vB.OperatorPlusInplace(B2Vec2MulScalar(vc.InvMassB, P))
	p.wB += vc.InvIB * B2Vec2Cross(rB, P)
}

// effectiveMass is J M^-1 J^T along dir for anchors rA, rB.
func effectiveMass(mA, mB, iA, iB float64, rA, rB, dir B2Vec2) float64 {
	a, b := B2Vec2Cross(rA, dir), B2Vec2Cross(rB, dir)
	return mA + mB + iA*a*a + iB*b*b
}

func invertOrZero(k float64) float64 {
	if k > 0 {
		return 1 / k
	}
	return 0
}

func (solver *B2ContactSolver) transforms(pc *B2ContactPositionConstraint) (xfA, xfB B2Transform) {
	pa, pb := solver.M_positions[pc.IndexA], solver.M_positions[pc.IndexB]
	xfA.R.SetAngle(pa.A)
	xfB.R.SetAngle(pb.A)
	xfA.P = B2Vec2Sub(pa.C, B2Vec2Mat22Mul(xfA.R, pc.LocalCenterA))
	xfB.P = B2Vec2Sub(pb.C, B2Vec2Mat22Mul(xfB.R, pc.LocalCenterB))
	return xfA, xfB
}

/// InitializeVelocityConstraints computes anchors, masses and restitution
/// bias from the current positions.
func (solver *B2ContactSolver) InitializeVelocityConstraints() {
	for i := range solver.M_velocityConstraints {
		vc := &solver.M_velocityConstraints[i]
		pc := &solver.M_positionConstraints[i]
		m := solver.M_contacts[vc.ContactIndex].GetManifold()

		xfA, xfB := solver.transforms(pc)
		var wm B2WorldManifold
		wm.Initialize(m, xfA, pc.RadiusA, xfB, pc.RadiusB)

		cA := solver.M_positions[vc.IndexA].C
		cB := solver.M_positions[vc.IndexB].C
		pair := solver.loadPair(vc)

		vc.Normal = wm.Normal
		tangent := B2Vec2CrossVectorScalar(vc.Normal, 1.0)

		for j := 0; j < vc.PointCount; j++ {
			vcp := &vc.Points[j]
			vcp.RA = B2Vec2Sub(wm.Points[j], cA)
			vcp.RB = B2Vec2Sub(wm.Points[j], cB)
			vcp.NormalMass = invertOrZero(effectiveMass(vc.InvMassA, vc.InvMassB, vc.InvIA, vc.InvIB, vcp.RA, vcp.RB, vc.Normal))
			vcp.TangentMass = invertOrZero(effectiveMass(vc.InvMassA, vc.InvMassB, vc.InvIA, vc.InvIB, vcp.RA, vcp.RB, tangent))

			// Restitution only kicks in above the velocity threshold.
			vcp.VelocityBias = 0
			if vn := B2Vec2Dot(vc.Normal, pair.relative(vcp.RA, vcp.RB)); vn < -B2_velocityThreshold {
				vcp.VelocityBias = -vc.Restitution * vn
			}
		}

		if vc.PointCount == 2 && solver.M_step.BlockSolve {
			solver.prepareBlock(vc)
		}
	}
}

// prepareBlock builds K for a two point manifold, or drops the second point
// when K is badly conditioned.
func (solver *B2ContactSolver) prepareBlock(vc *B2ContactVelocityConstraint) {
	p1, p2 := &vc.Points[0], &vc.Points[1]
	n := vc.Normal
	r1A, r1B := B2Vec2Cross(p1.RA, n), B2Vec2Cross(p1.RB, n)
	r2A, r2B := B2Vec2Cross(p2.RA, n), B2Vec2Cross(p2.RB, n)

	base := vc.InvMassA + vc.InvMassB
	k11 := base + vc.InvIA*r1A*r1A + vc.InvIB*r1B*r1B
	k22 := base + vc.InvIA*r2A*r2A + vc.InvIB*r2B*r2B
	k12 := base + vc.InvIA*r1A*r2A + vc.InvIB*r1B*r2B

	K := mgl64.Mat2FromCols(mgl64.Vec2{k11, k12}, mgl64.Vec2{k12, k22})
	if k11*k11 >= b2_maxConditionNumber*K.Det() {
		vc.PointCount = 1
		return
	}
	vc.K = K
	vc.NormalMass = K.Inv()
}

/// WarmStart applies the impulses carried over from the previous step.
func (solver *B2ContactSolver) WarmStart() {
	for i := range solver.M_velocityConstraints {
		vc := &solver.M_velocityConstraints[i]
		pair := solver.loadPair(vc)
		tangent := B2Vec2CrossVectorScalar(vc.Normal, 1.0)

		for j := 0; j < vc.PointCount; j++ {
			vcp := &vc.Points[j]
			P := B2Vec2Add(B2Vec2MulScalar(vcp.NormalImpulse, vc.Normal), B2Vec2MulScalar(vcp.TangentImpulse, tangent))
			pair.push(vc, vcp.RA, vcp.RB, P)
		}

		solver.storePair(vc, pair)
	}
}

/// SolveVelocityConstraints runs one iteration. Friction is solved before
/// the normal impulses so non-penetration gets the last word.
func (solver *B2ContactSolver) SolveVelocityConstraints() {
	for i := range solver.M_velocityConstraints {
		vc := &solver.M_velocityConstraints[i]
		B2Assert(vc.PointCount == 1 || vc.PointCount == 2)

		pair := solver.loadPair(vc)
		solveFriction(vc, &pair)
		if vc.PointCount == 2 && solver.M_step.BlockSolve {
			solveNormalBlock(vc, &pair)
		} else {
			solveNormalSequential(vc, &pair)
		}
		solver.storePair(vc, pair)
	}
}

func solveFriction(vc *B2ContactVelocityConstraint, pair *velocityPair) {
	tangent := B2Vec2CrossVectorScalar(vc.Normal, 1.0)
	for j := 0; j < vc.PointCount; j++ {
		vcp := &vc.Points[j]
		vt := B2Vec2Dot(pair.relative(vcp.RA, vcp.RB), tangent)

		// The friction cone is bounded by the current normal impulse.
		limit := vc.Friction * vcp.NormalImpulse
		total := B2Clamp(vcp.TangentImpulse-vcp.TangentMass*vt, -limit, limit)
		delta := total - vcp.TangentImpulse
		vcp.TangentImpulse = total

		pair.push(vc, vcp.RA, vcp.RB, B2Vec2MulScalar(delta, tangent))
	}
}

func solveNormalSequential(vc *B2ContactVelocityConstraint, pair *velocityPair) {
	for j := 0; j < vc.PointCount; j++ {
		vcp := &vc.Points[j]
		vn := B2Vec2Dot(pair.relative(vcp.RA, vcp.RB), vc.Normal)

		total := math.Max(vcp.NormalImpulse-vcp.NormalMass*(vn-vcp.VelocityBias), 0)
		delta := total - vcp.NormalImpulse
		vcp.NormalImpulse = total

		pair.push(vc, vcp.RA, vcp.RB, B2Vec2MulScalar(delta, vc.Normal))
	}
}

// solveNormalBlock solves both normal impulses at once as the 2D linear
// complementarity problem
//
//	vn = K x + b',  vn >= 0,  x >= 0,  vn_i x_i = 0
//
// where x is the new total impulse and b' = vn0 - bias - K a for the old
// total a. The four complementary cases are tried in order and the first
// feasible one wins. If none is feasible the impulses are left alone.
func solveNormalBlock(vc *B2ContactVelocityConstraint, pair *velocityPair) {
	p1, p2 := &vc.Points[0], &vc.Points[1]
	a := B2Vec2{p1.NormalImpulse, p2.NormalImpulse}
	B2Assert(a.X >= 0 && a.Y >= 0)

	b := B2Vec2{
		B2Vec2Dot(pair.relative(p1.RA, p1.RB), vc.Normal) - p1.VelocityBias,
		B2Vec2Dot(pair.relative(p2.RA, p2.RB), vc.Normal) - p2.VelocityBias,
	}
	b.OperatorMinusInplace(fromMglVec2(vc.K.Mul2x1(toMglVec2(a))))

	x, ok := blockCandidate(vc, b)
	if !ok {
		return
	}

	d := B2Vec2Sub(x, a)
	P1 := B2Vec2MulScalar(d.X, vc.Normal)
	P2 := B2Vec2MulScalar(d.Y, vc.Normal)
	pair.push(vc, p1.RA, p1.RB, P1)
	pair.push(vc, p2.RA, p2.RB, P2)
	p1.NormalImpulse, p2.NormalImpulse = x.X, x.Y
}

func blockCandidate(vc *B2ContactVelocityConstraint, b B2Vec2) (B2Vec2, bool) {
	// Both points in contact: vn = 0.
	x := fromMglVec2(vc.NormalMass.Mul2x1(toMglVec2(b))).OperatorNegate()
	if x.X >= 0 && x.Y >= 0 {
		return x, true
	}

	// Only the first point pushes.
	x = B2Vec2{-vc.Points[0].NormalMass * b.X, 0}
	if x.X >= 0 && vc.K.At(1, 0)*x.X+b.Y >= 0 {
		return x, true
	}

	// Only the second point pushes.
	x = B2Vec2{0, -vc.Points[1].NormalMass * b.Y}
	if x.Y >= 0 && vc.K.At(0, 1)*x.Y+b.X >= 0 {
		return x, true
	}

	// Both points separating.
	if b.X >= 0 && b.Y >= 0 {
		return B2Vec2{}, true
	}
	return B2Vec2{}, false
}

/// StoreImpulses copies the accumulated impulses back to the manifolds for
/// warm starting the next step.
func (solver *B2ContactSolver) StoreImpulses() {
	for i := range solver.M_velocityConstraints {
		vc := &solver.M_velocityConstraints[i]
		m := solver.M_contacts[vc.ContactIndex].GetManifold()
		for j := 0; j < vc.PointCount; j++ {
			m.Points[j].NormalImpulse = vc.Points[j].NormalImpulse
			m.Points[j].TangentImpulse = vc.Points[j].TangentImpulse
		}
	}
}

// separationAt evaluates manifold point index against the current transforms.
// The normal points from A to B.
func separationAt(pc *B2ContactPositionConstraint, xfA, xfB B2Transform, index int) (normal, point B2Vec2, separation float64) {
	B2Assert(pc.PointCount > 0)
	skin := pc.RadiusA + pc.RadiusB

	switch pc.Type {
	case B2Manifold_Type.E_circles:
		pA := B2TransformVec2Mul(xfA, pc.LocalPoint)
		pB := B2TransformVec2Mul(xfB, pc.LocalPoints[0])
		normal = B2Vec2{1, 0}
		if B2Vec2DistanceSquared(pA, pB) > B2_epsilon*B2_epsilon {
			normal = B2Vec2Sub(pB, pA)
			normal.Normalize()
		}
		point = B2Vec2MulScalar(0.5, B2Vec2Add(pA, pB))
		separation = B2Vec2Dot(B2Vec2Sub(pB, pA), normal) - skin

	case B2Manifold_Type.E_faceA, B2Manifold_Type.E_faceB:
		ref, inc := xfA, xfB
		if pc.Type == B2Manifold_Type.E_faceB {
			ref, inc = xfB, xfA
		}
		normal = B2Vec2Mat22Mul(ref.R, pc.LocalNormal)
		plane := B2TransformVec2Mul(ref, pc.LocalPoint)
		point = B2TransformVec2Mul(inc, pc.LocalPoints[index])
		separation = B2Vec2Dot(B2Vec2Sub(point, plane), normal) - skin
		if pc.Type == B2Manifold_Type.E_faceB {
			normal = normal.OperatorNegate()
		}
	}
	return normal, point, separation
}

/// SolvePositionConstraints pushes overlapping bodies apart with a
/// baumgarte-scaled correction and reports whether the deepest overlap is
/// within 1.5 linear slop.
func (solver *B2ContactSolver) SolvePositionConstraints(baumgarte float64) bool {
	deepest := 0.0

	for i := range solver.M_positionConstraints {
		pc := &solver.M_positionConstraints[i]

		for j := 0; j < pc.PointCount; j++ {
			xfA, xfB := solver.transforms(pc)
			normal, point, sep := separationAt(pc, xfA, xfB, j)
			deepest = math.Min(deepest, sep)

			posA := &solver.M_positions[pc.IndexA]
			posB := &solver.M_positions[pc.IndexB]
			rA := B2Vec2Sub(point, posA.C)
			rB := B2Vec2Sub(point, posB.C)

			// Leave linearSlop of overlap and cap the step.
			C := B2Clamp(baumgarte*(sep+B2_linearSlop), -B2_maxLinearCorrection, 0)
			k := effectiveMass(pc.InvMassA, pc.InvMassB, pc.InvIA, pc.InvIB, rA, rB, normal)
			P := B2Vec2MulScalar(-C*invertOrZero(k), normal)

			posA.C.OperatorMinusInplace(B2Vec2MulScalar(pc.InvMassA, P))
			posA.A -= pc.InvIA * B2Vec2Cross(rA, P)
			posB.C.OperatorPlusInplace(B2Vec2MulScalar(pc.InvMassB, P))
			posB.A += pc.InvIB * B2Vec2Cross(rB, P)
		}
	}

	return deepest >= -1.5*B2_linearSlop
}
