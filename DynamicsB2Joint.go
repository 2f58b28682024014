package box2d

var B2JointType = struct {
	E_unknownJoint  uint8
	E_revoluteJoint uint8
	E_distanceJoint uint8
}{1, 2, 4}

var B2LimitState = struct {
	E_inactiveLimit uint8
	E_atLowerLimit  uint8
	E_atUpperLimit  uint8
	E_equalLimits   uint8
}{1, 2, 3, 4}

/// B2JointEdge is one entry of a body's joint adjacency.
type B2JointEdge struct {
	Other *B2Body
	Joint B2JointInterface
}

/// B2JointDef carries the settings every joint kind shares. Concrete
/// definitions embed it and set Type.
type B2JointDef struct {
	Type     uint8
	UserData interface{}

	BodyA, BodyB *B2Body

	/// CollideConnected lets the two bodies keep colliding.
	CollideConnected bool
}

type B2JointDefInterface interface {
	GetType() uint8
	GetUserData() interface{}
	GetBodyA() *B2Body
	GetBodyB() *B2Body
	IsCollideConnected() bool
}

func MakeB2JointDef() B2JointDef { return B2JointDef{Type: B2JointType.E_unknownJoint} }

func (def B2JointDef) GetType() uint8 { return def.Type }
func (def B2JointDef) GetUserData() interface{} { return def.UserData }
func (def B2JointDef) GetBodyA() *B2Body { return def.BodyA }
func (def B2JointDef) GetBodyB() *B2Body { return def.BodyB }
func (def B2JointDef) IsCollideConnected() bool { return def.CollideConnected }

/// B2JointInterface is what the world and the island solver need from a
/// joint. Implementations must be pointers.
type B2JointInterface interface {
	GetType() uint8
	GetBodyA() *B2Body
	GetBodyB() *B2Body

	/// Anchors in world coordinates.
	GetAnchorA() B2Vec2
	GetAnchorB() B2Vec2

	/// Reaction on bodyB at the anchor, in newtons and newton meters.
	GetReactionForce(inv_dt float64) B2Vec2
	GetReactionTorque(inv_dt float64) float64

	GetUserData() interface{}
	SetUserData(data interface{})
	IsCollideConnected() bool
	IsActive() bool

	GetIndex() int
	SetIndex(index int)
	GetEdgeA() int
	SetEdgeA(slot int)
	GetEdgeB() int
	SetEdgeB(slot int)
	GetIslandFlag() bool
	SetIslandFlag(flag bool)

	InitVelocityConstraints(data B2SolverData)
	SolveVelocityConstraints(data B2SolverData)

	/// SolvePositionConstraints reports whether the error is within
	/// tolerance.
	SolvePositionConstraints(data B2SolverData) bool
}

/// B2Joint holds the graph bookkeeping shared by all joints.
type B2Joint struct {
	M_type           uint8
	M_bodyA, M_bodyB *B2Body

	// Slots in the world's joint slice and in each body's joint edges.
	M_index, M_edgeA, M_edgeB int

	M_islandFlag       bool
	M_collideConnected bool
	M_userData         interface{}
}

/// B2JointCreate returns nil when the definition is not a known joint kind.
func B2JointCreate(def B2JointDefInterface) B2JointInterface {
	switch d := def.(type) {
	case *B2RevoluteJointDef:
		return MakeB2RevoluteJoint(d)
	case *B2DistanceJointDef:
		return MakeB2DistanceJoint(d)
	default:
		return nil
	}
}

func MakeB2Joint(def B2JointDefInterface) *B2Joint {
	B2Assert(def.GetBodyA() != def.GetBodyB())
	return &B2Joint{
		M_type:             def.GetType(),
		M_bodyA:            def.GetBodyA(),
		M_bodyB:            def.GetBodyB(),
		M_index:            -1,
		M_edgeA:            -1,
		M_edgeB:            -1,
		M_collideConnected: def.IsCollideConnected(),
		M_userData:         def.GetUserData(),
	}
}

func (j B2Joint) GetType() uint8 { return j.M_type }
func (j B2Joint) GetBodyA() *B2Body { return j.M_bodyA }
func (j B2Joint) GetBodyB() *B2Body { return j.M_bodyB }
func (j B2Joint) GetUserData() interface{} { return j.M_userData }
func (j B2Joint) GetIndex() int { return j.M_index }
func (j B2Joint) GetEdgeA() int { return j.M_edgeA }
func (j B2Joint) GetEdgeB() int { return j.M_edgeB }
func (j B2Joint) GetIslandFlag() bool { return j.M_islandFlag }

/// IsCollideConnected is fixed at creation. The flag only matters when the
/// fixtures' boxes start to overlap.
func (j B2Joint) IsCollideConnected() bool { return j.M_collideConnected }

/// IsActive is false when either body is inactive.
func (j B2Joint) IsActive() bool { return j.M_bodyA.IsActive() && j.M_bodyB.IsActive() }

func (j *B2Joint) SetUserData(data interface{}) { j.M_userData = data }
func (j *B2Joint) SetIndex(index int) { j.M_index = index }
func (j *B2Joint) SetEdgeA(slot int) { j.M_edgeA = slot }
func (j *B2Joint) SetEdgeB(slot int) { j.M_edgeB = slot }
func (j *B2Joint) SetIslandFlag(flag bool) { j.M_islandFlag = flag }

// b2JointBodies caches the mass properties and island slots of a joint's
// two bodies. load refreshes it at the start of every solve.
type b2JointBodies struct {
	M_indexA, M_indexB             int
	M_localCenterA, M_localCenterB B2Vec2
	M_invMassA, M_invMassB         float64
	M_invIA, M_invIB               float64
}

func (s *b2JointBodies) load(bodyA, bodyB *B2Body) {
	*s = b2JointBodies{
		M_indexA:       bodyA.M_islandIndex,
		M_indexB:       bodyB.M_islandIndex,
		M_localCenterA: bodyA.M_sweep.LocalCenter,
		M_localCenterB: bodyB.M_sweep.LocalCenter,
		M_invMassA:     bodyA.M_invMass,
		M_invMassB:     bodyB.M_invMass,
		M_invIA:        bodyA.M_invI,
		M_invIB:        bodyB.M_invI,
	}
}

// arms rotates the local anchors, taken relative to the centers of mass,
// by the island's current angles.
func (s b2JointBodies) arms(data B2SolverData, localAnchorA, localAnchorB B2Vec2) (rA, rB B2Vec2) {
	rotate := func(index int, anchor, center B2Vec2) B2Vec2 {
		return B2Vec2Mat22Mul(MakeB2Mat22FromAngle(data.Positions[index].A), B2Vec2Sub(anchor, center))
	}
	return rotate(s.M_indexA, localAnchorA, s.M_localCenterA), rotate(s.M_indexB, localAnchorB, s.M_localCenterB)
}

// relativeVelocity is the velocity of anchor B seen from anchor A.
func (s b2JointBodies) relativeVelocity(data B2SolverData, rA, rB B2Vec2) B2Vec2 {
	a, b := data.Velocities[s.M_indexA], data.Velocities[s.M_indexB]
	return B2Vec2Sub(B2Vec2Add(b.V, B2Vec2CrossScalarVector(b.W, rB)), B2Vec2Add(a.V, B2Vec2CrossScalarVector(a.W, rA)))
}

// applyImpulse pushes B by P at rB plus an angular impulse, and A by the
// opposite.
func (s b2JointBodies) applyImpulse(data B2SolverData, rA, rB, P B2Vec2, angular float64) {
	a, b := &data.Velocities[s.M_indexA], &data.Velocities[s.M_indexB]
	a.V.OperatorMinusInplace(B2Vec2MulScalar(s.M_invMassA, P))
	a.W -= s.M_invIA * (B2Vec2Cross(rA, P) + angular)
	b.V.OperatorPlusInplace(B2Vec2MulScalar(s.M_invMassB, P))
	b.W += s.M_invIB * (B2Vec2Cross(rB, P) + angular)
}

// applyPositionImpulse is applyImpulse on positions.
func (s b2JointBodies) applyPositionImpulse(data B2SolverData, rA, rB, P B2Vec2, angular float64) {
	a, b := &data.Positions[s.M_indexA], &data.Positions[s.M_indexB]
	a.C.OperatorMinusInplace(B2Vec2MulScalar(s.M_invMassA, P))
	a.A -= s.M_invIA * (B2Vec2Cross(rA, P) + angular)
	b.C.OperatorPlusInplace(B2Vec2MulScalar(s.M_invMassB, P))
	b.A += s.M_invIB * (B2Vec2Cross(rB, P) + angular)
}
