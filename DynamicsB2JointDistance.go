package box2d

import "math"

/// B2DistanceJointDef ties an anchor on each body at a fixed length. A
/// positive FrequencyHz turns the rod into a damped spring.
type B2DistanceJointDef struct {
	B2JointDef

	LocalAnchorA B2Vec2
	LocalAnchorB B2Vec2

	/// Rest length. Avoid zero or very short lengths.
	Length float64

	FrequencyHz  float64
	DampingRatio float64 // 1 is critical damping
}

func MakeB2DistanceJointDef() B2DistanceJointDef {
	def := B2DistanceJointDef{B2JointDef: MakeB2JointDef(), Length: 1}
	def.Type = B2JointType.E_distanceJoint
	return def
}

/// Initialize takes world anchors and uses their current distance as the
/// rest length.
func (def *B2DistanceJointDef) Initialize(bA, bB *B2Body, anchorA, anchorB B2Vec2) {
	def.BodyA, def.BodyB = bA, bB
	def.LocalAnchorA = bA.GetLocalPoint(anchorA)
	def.LocalAnchorB = bB.GetLocalPoint(anchorB)
	def.Length = B2Vec2Distance(anchorA, anchorB)
}

type B2DistanceJoint struct {
	*B2Joint
	b2JointBodies

	M_localAnchorA B2Vec2
	M_localAnchorB B2Vec2
	M_length       float64
	M_frequencyHz  float64
	M_dampingRatio float64
	M_impulse      float64

	// Recomputed every step.
	M_u        B2Vec2
	M_rA, M_rB B2Vec2
	M_mass     float64
	M_gamma    float64
	M_bias     float64
}

func MakeB2DistanceJoint(def *B2DistanceJointDef) *B2DistanceJoint {
	return &B2DistanceJoint{
		B2Joint:        MakeB2Joint(def),
		M_localAnchorA: def.LocalAnchorA,
		M_localAnchorB: def.LocalAnchorB,
		M_length:       def.Length,
		M_frequencyHz:  def.FrequencyHz,
		M_dampingRatio: def.DampingRatio,
	}
}

func (joint B2DistanceJoint) GetLocalAnchorA() B2Vec2 { return joint.M_localAnchorA }
func (joint B2DistanceJoint) GetLocalAnchorB() B2Vec2 { return joint.M_localAnchorB }
func (joint B2DistanceJoint) GetLength() float64 { return joint.M_length }
func (joint B2DistanceJoint) GetFrequency() float64 { return joint.M_frequencyHz }
func (joint B2DistanceJoint) GetDampingRatio() float64 { return joint.M_dampingRatio }
func (joint *B2DistanceJoint) SetLength(length float64) { joint.M_length = length }
func (joint *B2DistanceJoint) SetFrequency(hz float64) { joint.M_frequencyHz = hz }

func (joint *B2DistanceJoint) SetDampingRatio(ratio float64) { joint.M_dampingRatio = ratio }

func (joint B2DistanceJoint) GetAnchorA() B2Vec2 { return joint.M_bodyA.GetWorldPoint(joint.M_localAnchorA) }
func (joint B2DistanceJoint) GetAnchorB() B2Vec2 { return joint.M_bodyB.GetWorldPoint(joint.M_localAnchorB) }

func (joint B2DistanceJoint) GetReactionForce(inv_dt float64) B2Vec2 {
	return B2Vec2MulScalar(inv_dt*joint.M_impulse, joint.M_u)
}

func (joint B2DistanceJoint) GetReactionTorque(inv_dt float64) float64 { return 0 }

// axis returns the anchor-to-anchor vector for the island positions.
func (joint *B2DistanceJoint) axis(data B2SolverData, rA, rB B2Vec2) B2Vec2 {
	return B2Vec2Sub(
		B2Vec2Add(data.Positions[joint.M_indexB].C, rB),
		B2Vec2Add(data.Positions[joint.M_indexA].C, rA),
	)
}

func (joint *B2DistanceJoint) InitVelocityConstraints(data B2SolverData) {
	joint.load(joint.M_bodyA, joint.M_bodyB)
	joint.M_rA, joint.M_rB = joint.arms(data, joint.M_localAnchorA, joint.M_localAnchorB)

	joint.M_u = joint.axis(data, joint.M_rA, joint.M_rB)
	length := joint.M_u.Length()
	if length > B2_linearSlop {
		joint.M_u.OperatorScalarMulInplace(1 / length)
	} else {
		joint.M_u.SetZero()
	}

	k := effectiveMass(joint.M_invMassA, joint.M_invMassB, joint.M_invIA, joint.M_invIB, joint.M_rA, joint.M_rB, joint.M_u)
	joint.M_mass = invertOrZero(k)
	joint.M_gamma, joint.M_bias = 0, 0

	if joint.M_frequencyHz > 0 {
		// Spring stiffness and damping from the rod's effective mass.
		omega := 2 * B2_pi * joint.M_frequencyHz
		damping := 2 * joint.M_mass * joint.M_dampingRatio * omega
		stiffness := joint.M_mass * omega * omega

		h := data.Step.Dt
		joint.M_gamma = invertOrZero(h * (damping + h*stiffness))
		joint.M_bias = (length - joint.M_length) * h * stiffness * joint.M_gamma
		joint.M_mass = invertOrZero(k + joint.M_gamma)
	}

	if !data.Step.WarmStarting {
		joint.M_impulse = 0
		return
	}
	joint.M_impulse *= data.Step.DtRatio
	joint.applyImpulse(data, joint.M_rA, joint.M_rB, B2Vec2MulScalar(joint.M_impulse, joint.M_u), 0)
}

func (joint *B2DistanceJoint) SolveVelocityConstraints(data B2SolverData) {
	Cdot := B2Vec2Dot(joint.M_u, joint.relativeVelocity(data, joint.M_rA, joint.M_rB))
	impulse := -joint.M_mass * (Cdot + joint.M_bias + joint.M_gamma*joint.M_impulse)
	joint.M_impulse += impulse
	joint.applyImpulse(data, joint.M_rA, joint.M_rB, B2Vec2MulScalar(impulse, joint.M_u), 0)
}

/// SolvePositionConstraints corrects rigid rods only. Springs report solved.
func (joint *B2DistanceJoint) SolvePositionConstraints(data B2SolverData) bool {
	if joint.M_frequencyHz > 0 {
		return true
	}

	rA, rB := joint.arms(data, joint.M_localAnchorA, joint.M_localAnchorB)
	u := joint.axis(data, rA, rB)
	C := B2Clamp(u.Normalize()-joint.M_length, -B2_maxLinearCorrection, B2_maxLinearCorrection)

	mass := invertOrZero(effectiveMass(joint.M_invMassA, joint.M_invMassB, joint.M_invIA, joint.M_invIB, rA, rB, u))
	joint.applyPositionImpulse(data, rA, rB, B2Vec2MulScalar(-mass*C, u), 0)

	return math.Abs(C) < B2_linearSlop
}
