package box2d

import "math"

/// B2RevoluteJointDef pins two bodies at a shared anchor. Anchors are stored
/// relative to each body origin so mass changes do not move the pin.
type B2RevoluteJointDef struct {
	B2JointDef

	LocalAnchorA B2Vec2
	LocalAnchorB B2Vec2

	/// Angle of B minus angle of A when the joint angle reads zero.
	ReferenceAngle float64

	EnableLimit bool
	LowerAngle  float64
	UpperAngle  float64

	EnableMotor bool
	MotorSpeed  float64 // radians per second

	/// Torque cap for the motor, in N*m.
	MaxMotorTorque float64
}

func MakeB2RevoluteJointDef() B2RevoluteJointDef {
	def := B2RevoluteJointDef{B2JointDef: MakeB2JointDef()}
	def.Type = B2JointType.E_revoluteJoint
	return def
}

/// Initialize anchors both bodies at the world point and records the current
/// relative angle as the reference.
func (def *B2RevoluteJointDef) Initialize(bA, bB *B2Body, anchor B2Vec2) {
	def.BodyA, def.BodyB = bA, bB
	def.LocalAnchorA = bA.GetLocalPoint(anchor)
	def.LocalAnchorB = bB.GetLocalPoint(anchor)
	def.ReferenceAngle = bB.GetAngle() - bA.GetAngle()
}

/// B2RevoluteJoint lets two bodies spin about a common point. The relative
/// rotation can be bounded by an angle limit and driven by a torque-limited
/// motor.
type B2RevoluteJoint struct {
	*B2Joint
	b2JointBodies

	M_localAnchorA   B2Vec2
	M_localAnchorB   B2Vec2
	M_referenceAngle float64

	M_enableLimit bool
	M_lowerAngle  float64
	M_upperAngle  float64

	M_enableMotor    bool
	M_motorSpeed     float64
	M_maxMotorTorque float64

	// Accumulated impulses: point (X, Y) plus limit (Z), and the motor.
	M_impulse      B2Vec3
	M_motorImpulse float64

	M_rA, M_rB   B2Vec2
	M_mass       B2Mat33 // point and angle constraints together
	M_motorMass  float64 // 1 / (iA + iB), zero when rotation is locked
	M_limitState uint8
}

func MakeB2RevoluteJoint(def *B2RevoluteJointDef) *B2RevoluteJoint {
	return &B2RevoluteJoint{
		B2Joint:          MakeB2Joint(def),
		M_localAnchorA:   def.LocalAnchorA,
		M_localAnchorB:   def.LocalAnchorB,
		M_referenceAngle: def.ReferenceAngle,
		M_enableLimit:    def.EnableLimit,
		M_lowerAngle:     def.LowerAngle,
		M_upperAngle:     def.UpperAngle,
		M_enableMotor:    def.EnableMotor,
		M_motorSpeed:     def.MotorSpeed,
		M_maxMotorTorque: def.MaxMotorTorque,
		M_limitState:     B2LimitState.E_inactiveLimit,
	}
}

func (joint B2RevoluteJoint) GetLocalAnchorA() B2Vec2 { return joint.M_localAnchorA }
func (joint B2RevoluteJoint) GetLocalAnchorB() B2Vec2 { return joint.M_localAnchorB }
func (joint B2RevoluteJoint) GetReferenceAngle() float64 { return joint.M_referenceAngle }
func (joint B2RevoluteJoint) GetMaxMotorTorque() float64 { return joint.M_maxMotorTorque }
func (joint B2RevoluteJoint) GetMotorSpeed() float64 { return joint.M_motorSpeed }
func (joint B2RevoluteJoint) IsMotorEnabled() bool { return joint.M_enableMotor }
func (joint B2RevoluteJoint) IsLimitEnabled() bool { return joint.M_enableLimit }
func (joint B2RevoluteJoint) GetLowerLimit() float64 { return joint.M_lowerAngle }
func (joint B2RevoluteJoint) GetUpperLimit() float64 { return joint.M_upperAngle }

func (joint B2RevoluteJoint) GetAnchorA() B2Vec2 { return joint.M_bodyA.GetWorldPoint(joint.M_localAnchorA) }
func (joint B2RevoluteJoint) GetAnchorB() B2Vec2 { return joint.M_bodyB.GetWorldPoint(joint.M_localAnchorB) }

func (joint B2RevoluteJoint) GetReactionForce(inv_dt float64) B2Vec2 {
	return B2Vec2{inv_dt * joint.M_impulse.X, inv_dt * joint.M_impulse.Y}
}

func (joint B2RevoluteJoint) GetReactionTorque(inv_dt float64) float64 {
	return inv_dt * joint.M_impulse.Z
}

func (joint B2RevoluteJoint) GetMotorTorque(inv_dt float64) float64 {
	return inv_dt * joint.M_motorImpulse
}

/// GetJointAngle is the current relative angle less the reference angle.
func (joint B2RevoluteJoint) GetJointAngle() float64 {
	return joint.M_bodyB.M_sweep.A - joint.M_bodyA.M_sweep.A - joint.M_referenceAngle
}

func (joint B2RevoluteJoint) GetJointSpeed() float64 {
	return joint.M_bodyB.M_angularVelocity - joint.M_bodyA.M_angularVelocity
}

// wake is called by every setter that changes what the solver does.
func (joint *B2RevoluteJoint) wake() {
	joint.M_bodyA.SetAwake(true)
	joint.M_bodyB.SetAwake(true)
}

func (joint *B2RevoluteJoint) EnableMotor(flag bool) {
	if flag != joint.M_enableMotor {
		joint.wake()
		joint.M_enableMotor = flag
	}
}

func (joint *B2RevoluteJoint) SetMotorSpeed(speed float64) {
	if speed != joint.M_motorSpeed {
		joint.wake()
		joint.M_motorSpeed = speed
	}
}

func (joint *B2RevoluteJoint) SetMaxMotorTorque(torque float64) {
	if torque != joint.M_maxMotorTorque {
		joint.wake()
		joint.M_maxMotorTorque = torque
	}
}

func (joint *B2RevoluteJoint) EnableLimit(flag bool) {
	if flag != joint.M_enableLimit {
		joint.wake()
		joint.M_enableLimit = flag
		joint.M_impulse.Z = 0
	}
}

func (joint *B2RevoluteJoint) SetLimits(lower, upper float64) {
	B2Assert(lower <= upper)
	if lower != joint.M_lowerAngle || upper != joint.M_upperAngle {
		joint.wake()
		joint.M_impulse.Z = 0
		joint.M_lowerAngle, joint.M_upperAngle = lower, upper
	}
}

func (joint B2RevoluteJoint) rotationLocked() bool {
	return joint.M_invIA+joint.M_invIB == 0
}

func (joint B2RevoluteJoint) limitActive() bool {
	return joint.M_enableLimit && joint.M_limitState != B2LimitState.E_inactiveLimit && !joint.rotationLocked()
}

// classifyLimit picks the limit state for angle. Changing state discards the
// accumulated limit impulse.
func (joint *B2RevoluteJoint) classifyLimit(angle float64) {
	if !joint.M_enableLimit || joint.rotationLocked() {
		joint.M_limitState = B2LimitState.E_inactiveLimit
		return
	}
	if math.Abs(joint.M_upperAngle-joint.M_lowerAngle) < 2*B2_angularSlop {
		joint.M_limitState = B2LimitState.E_equalLimits
		return
	}

	next := B2LimitState.E_inactiveLimit
	if angle <= joint.M_lowerAngle {
		next = B2LimitState.E_atLowerLimit
	} else if angle >= joint.M_upperAngle {
		next = B2LimitState.E_atUpperLimit
	}
	if next != joint.M_limitState || next == B2LimitState.E_inactiveLimit {
		joint.M_impulse.Z = 0
	}
	joint.M_limitState = next
}

// pointAngleMass is the symmetric 3x3 mass matrix of the point constraint
// (rows X and Y) stacked with the relative angle constraint (row Z).
func (joint *B2RevoluteJoint) pointAngleMass(rA, rB B2Vec2) B2Mat33 {
	mA, mB, iA, iB := joint.M_invMassA, joint.M_invMassB, joint.M_invIA, joint.M_invIB

	xx := mA + mB + rA.Y*rA.Y*iA + rB.Y*rB.Y*iB
	xy := -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	xz := -rA.Y*iA - rB.Y*iB
	yy := mA + mB + rA.X*rA.X*iA + rB.X*rB.X*iB
	yz := rA.X*iA + rB.X*iB
	zz := iA + iB

	return B2Mat33{
		Ex: B2Vec3{xx, xy, xz},
		Ey: B2Vec3{xy, yy, yz},
		Ez: B2Vec3{xz, yz, zz},
	}
}

func (joint *B2RevoluteJoint) InitVelocityConstraints(data B2SolverData) {
	joint.load(joint.M_bodyA, joint.M_bodyB)
	joint.M_rA, joint.M_rB = joint.arms(data, joint.M_localAnchorA, joint.M_localAnchorB)
	joint.M_mass = joint.pointAngleMass(joint.M_rA, joint.M_rB)
	joint.M_motorMass = invertOrZero(joint.M_invIA + joint.M_invIB)

	if !joint.M_enableMotor || joint.rotationLocked() {
		joint.M_motorImpulse = 0
	}
	joint.classifyLimit(data.Positions[joint.M_indexB].A - data.Positions[joint.M_indexA].A - joint.M_referenceAngle)

	if !data.Step.WarmStarting {
		joint.M_impulse = B2Vec3{}
		joint.M_motorImpulse = 0
		return
	}

	joint.M_impulse.OperatorScalarMultInplace(data.Step.DtRatio)
	joint.M_motorImpulse *= data.Step.DtRatio
	joint.applyImpulse(data, joint.M_rA, joint.M_rB,
		B2Vec2{joint.M_impulse.X, joint.M_impulse.Y}, joint.M_motorImpulse+joint.M_impulse.Z)
}

func (joint *B2RevoluteJoint) angularSpeed(data B2SolverData) float64 {
	return data.Velocities[joint.M_indexB].W - data.Velocities[joint.M_indexA].W
}

func (joint *B2RevoluteJoint) SolveVelocityConstraints(data B2SolverData) {
	if joint.M_enableMotor && joint.M_limitState != B2LimitState.E_equalLimits && !joint.rotationLocked() {
		joint.solveMotor(data)
	}
	if joint.limitActive() {
		joint.solvePointAndLimit(data)
		return
	}

	Cdot := joint.relativeVelocity(data, joint.M_rA, joint.M_rB)
	P := joint.M_mass.Solve22(Cdot.OperatorNegate())
	joint.M_impulse.X += P.X
	joint.M_impulse.Y += P.Y
	joint.applyImpulse(data, joint.M_rA, joint.M_rB, P, 0)
}

func (joint *B2RevoluteJoint) solveMotor(data B2SolverData) {
	limit := data.Step.Dt * joint.M_maxMotorTorque
	prev := joint.M_motorImpulse
	joint.M_motorImpulse = B2Clamp(prev-joint.M_motorMass*(joint.angularSpeed(data)-joint.M_motorSpeed), -limit, limit)
	joint.applyImpulse(data, joint.M_rA, joint.M_rB, B2Vec2{}, joint.M_motorImpulse-prev)
}

// solvePointAndLimit solves the 3x3 system. If the limit impulse would pull
// the bodies toward the limit it is released and the point constraint is
// re-solved with the old limit impulse removed.
func (joint *B2RevoluteJoint) solvePointAndLimit(data B2SolverData) {
	Cdot1 := joint.relativeVelocity(data, joint.M_rA, joint.M_rB)
	impulse := joint.M_mass.Solve33(B2Vec3{Cdot1.X, Cdot1.Y, joint.angularSpeed(data)}).OperatorNegate()

	total := joint.M_impulse.Z + impulse.Z
	pulling := (joint.M_limitState == B2LimitState.E_atLowerLimit && total < 0) ||
		(joint.M_limitState == B2LimitState.E_atUpperLimit && total > 0)

	if pulling {
		column := B2Vec2{joint.M_mass.Ez.X, joint.M_mass.Ez.Y}
		P := joint.M_mass.Solve22(B2Vec2Add(Cdot1.OperatorNegate(), B2Vec2MulScalar(joint.M_impulse.Z, column)))
		impulse = B2Vec3{P.X, P.Y, -joint.M_impulse.Z}
		joint.M_impulse.X += P.X
		joint.M_impulse.Y += P.Y
		joint.M_impulse.Z = 0
	} else {
		joint.M_impulse.OperatorPlusInplace(impulse)
	}

	joint.applyImpulse(data, joint.M_rA, joint.M_rB, B2Vec2{impulse.X, impulse.Y}, impulse.Z)
}

// limitCorrection returns the angular position impulse for the active limit
// and the remaining angular error.
func (joint *B2RevoluteJoint) limitCorrection(angle float64) (impulse, angularError float64) {
	var C float64
	switch joint.M_limitState {
	case B2LimitState.E_equalLimits:
		C = B2Clamp(angle-joint.M_lowerAngle, -B2_maxAngularCorrection, B2_maxAngularCorrection)
		angularError = math.Abs(C)
	case B2LimitState.E_atLowerLimit:
		C = angle - joint.M_lowerAngle
		angularError = -C
		C = B2Clamp(C+B2_angularSlop, -B2_maxAngularCorrection, 0)
	case B2LimitState.E_atUpperLimit:
		C = angle - joint.M_upperAngle
		angularError = C
		C = B2Clamp(C-B2_angularSlop, 0, B2_maxAngularCorrection)
	}
	return -joint.M_motorMass * C, angularError
}

func (joint *B2RevoluteJoint) SolvePositionConstraints(data B2SolverData) bool {
	angularError := 0.0
	if joint.limitActive() {
		angle := data.Positions[joint.M_indexB].A - data.Positions[joint.M_indexA].A - joint.M_referenceAngle
		var impulse float64
		impulse, angularError = joint.limitCorrection(angle)
		joint.applyPositionImpulse(data, B2Vec2{}, B2Vec2{}, B2Vec2{}, impulse)
	}

	// Rotations above moved the anchors, so recompute the arms.
	rA, rB := joint.arms(data, joint.M_localAnchorA, joint.M_localAnchorB)
	gap := B2Vec2Sub(
		B2Vec2Add(data.Positions[joint.M_indexB].C, rB),
		B2Vec2Add(data.Positions[joint.M_indexA].C, rA),
	)
	positionError := gap.Length()

	K3 := joint.pointAngleMass(rA, rB)
	K := MakeB2Mat22FromColumns(B2Vec2{K3.Ex.X, K3.Ex.Y}, B2Vec2{K3.Ey.X, K3.Ey.Y})
	joint.applyPositionImpulse(data, rA, rB, K.Solve(gap).OperatorNegate(), 0)

	return positionError <= B2_linearSlop && angularError <= B2_angularSlop
}
