package box2d

/// Body types. Static bodies never move on their own and have zero mass.
/// Kinematic bodies follow their velocity but ignore forces and contacts.
/// Dynamic bodies have positive mass and are moved by the solver.
var B2BodyType = struct {
	B2_staticBody    uint8
	B2_kinematicBody uint8
	B2_dynamicBody   uint8
}{0, 1, 2}

/// B2BodyDef is copied by CreateBody and may be reused.
type B2BodyDef struct {
	Type uint8

	Position B2Vec2
	Angle    float64

	/// Velocity of the body origin, in world coordinates.
	LinearVelocity  B2Vec2
	AngularVelocity float64

	/// Damping rates in 1/s. Values above 1 make damping depend on the step.
	LinearDamping  float64
	AngularDamping float64

	AllowSleep bool
	Awake      bool

	/// FixedRotation zeroes the rotational inertia.
	FixedRotation bool

	/// Bullet bodies get continuous collision against other dynamic
	/// bodies. Every body gets it against static and kinematic ones.
	Bullet bool

	Active bool

	UserData     interface{}
	GravityScale float64
}

/// MakeB2BodyDef returns an awake, active, static definition at the origin.
func MakeB2BodyDef() B2BodyDef {
	return B2BodyDef{
		Type:         B2BodyType.B2_staticBody,
		AllowSleep:   true,
		Awake:        true,
		Active:       true,
		GravityScale: 1,
	}
}

var B2Body_Flags = struct {
	E_islandFlag        uint32
	E_awakeFlag         uint32
	E_autoSleepFlag     uint32
	E_bulletFlag        uint32
	E_fixedRotationFlag uint32
	E_activeFlag        uint32
}{0x01, 0x02, 0x04, 0x08, 0x10, 0x20}

/// B2Body is a rigid body owned by a B2World. Create one with
/// B2World.CreateBody.
type B2Body struct {
	M_type  uint8
	M_flags uint32

	M_islandIndex int

	// Slot in the world's body slice.
	M_index int

	M_xf    B2Transform
	M_sweep B2Sweep

	M_linearVelocity  B2Vec2
	M_angularVelocity float64

	M_force  B2Vec2
	M_torque float64

	M_world    *B2World
	M_fixtures []*B2Fixture

	M_jointEdges   []B2JointEdge
	M_contactEdges []B2ContactEdge

	M_mass, M_invMass float64

	// Inertia about the center of mass.
	M_I, M_invI float64

	M_linearDamping  float64
	M_angularDamping float64
	M_gravityScale   float64

	M_sleepTime float64

	M_userData interface{}
}

func (body *B2Body) hasFlag(f uint32) bool { return body.M_flags&f != 0 }

func (body *B2Body) setFlag(f uint32, on bool) {
	if on {
		body.M_flags |= f
	} else {
		body.M_flags &^= f
	}
}

func NewB2Body(bd *B2BodyDef, world *B2World) *B2Body {
	B2Assert(bd.Position.IsValid() && bd.LinearVelocity.IsValid())
	B2Assert(B2IsValid(bd.Angle) && B2IsValid(bd.AngularVelocity))
	B2Assert(B2IsValid(bd.LinearDamping) && bd.LinearDamping >= 0)
	B2Assert(B2IsValid(bd.AngularDamping) && bd.AngularDamping >= 0)

	body := &B2Body{
		M_type:            bd.Type,
		M_index:           -1,
		M_world:           world,
		M_linearVelocity:  bd.LinearVelocity,
		M_angularVelocity: bd.AngularVelocity,
		M_linearDamping:   bd.LinearDamping,
		M_angularDamping:  bd.AngularDamping,
		M_gravityScale:    bd.GravityScale,
		M_userData:        bd.UserData,
	}

	body.setFlag(B2Body_Flags.E_bulletFlag, bd.Bullet)
	body.setFlag(B2Body_Flags.E_fixedRotationFlag, bd.FixedRotation)
	body.setFlag(B2Body_Flags.E_autoSleepFlag, bd.AllowSleep)
	body.setFlag(B2Body_Flags.E_awakeFlag, bd.Awake)
	body.setFlag(B2Body_Flags.E_activeFlag, bd.Active)

	body.M_xf.Set(bd.Position, bd.Angle)
	body.M_sweep = B2Sweep{C0: bd.Position, C: bd.Position, A0: bd.Angle, A: bd.Angle}

	if body.M_type == B2BodyType.B2_dynamicBody {
		body.M_mass, body.M_invMass = 1, 1
	}
	return body
}

func (body B2Body) GetType() uint8 { return body.M_type }
func (body B2Body) GetTransform() B2Transform { return body.M_xf }
func (body B2Body) GetPosition() B2Vec2 { return body.M_xf.P }
func (body B2Body) GetAngle() float64 { return body.M_sweep.A }
func (body B2Body) GetWorldCenter() B2Vec2 { return body.M_sweep.C }
func (body B2Body) GetLocalCenter() B2Vec2 { return body.M_sweep.LocalCenter }
func (body B2Body) GetLinearVelocity() B2Vec2 { return body.M_linearVelocity }
func (body B2Body) GetAngularVelocity() float64 { return body.M_angularVelocity }
func (body B2Body) GetMass() float64 { return body.M_mass }
func (body B2Body) GetLinearDamping() float64 { return body.M_linearDamping }
func (body B2Body) GetAngularDamping() float64 { return body.M_angularDamping }
func (body B2Body) GetGravityScale() float64 { return body.M_gravityScale }
func (body B2Body) GetUserData() interface{} { return body.M_userData }
func (body B2Body) GetWorld() *B2World { return body.M_world }
func (body B2Body) GetFixtureList() []*B2Fixture { return body.M_fixtures }
func (body B2Body) GetJointList() []B2JointEdge { return body.M_jointEdges }

/// GetContactList returns the live contact edges. Contacts come and go
/// during a step, so the slice must not be kept.
func (body B2Body) GetContactList() []B2ContactEdge { return body.M_contactEdges }

func (body *B2Body) SetLinearDamping(d float64) { body.M_linearDamping = d }
func (body *B2Body) SetAngularDamping(d float64) { body.M_angularDamping = d }
func (body *B2Body) SetGravityScale(scale float64) { body.M_gravityScale = scale }
func (body *B2Body) SetUserData(data interface{}) { body.M_userData = data }

func (body B2Body) IsBullet() bool { return body.hasFlag(B2Body_Flags.E_bulletFlag) }
func (body B2Body) IsAwake() bool { return body.hasFlag(B2Body_Flags.E_awakeFlag) }
func (body B2Body) IsActive() bool { return body.hasFlag(B2Body_Flags.E_activeFlag) }
func (body B2Body) IsFixedRotation() bool { return body.hasFlag(B2Body_Flags.E_fixedRotationFlag) }
func (body B2Body) IsSleepingAllowed() bool { return body.hasFlag(B2Body_Flags.E_autoSleepFlag) }

func (body *B2Body) SetBullet(flag bool) { body.setFlag(B2Body_Flags.E_bulletFlag, flag) }

/// GetInertia is the rotational inertia about the body origin.
func (body B2Body) GetInertia() float64 {
	return body.M_I + body.M_mass*body.M_sweep.LocalCenter.LengthSquared()
}

func (body B2Body) GetMassData(data *B2MassData) {
	*data = B2MassData{Mass: body.M_mass, Center: body.M_sweep.LocalCenter, I: body.GetInertia()}
}

func (body B2Body) GetWorldPoint(p B2Vec2) B2Vec2 { return B2TransformVec2Mul(body.M_xf, p) }
func (body B2Body) GetWorldVector(v B2Vec2) B2Vec2 { return B2Vec2Mat22Mul(body.M_xf.R, v) }
func (body B2Body) GetLocalPoint(p B2Vec2) B2Vec2 { return B2TransformVec2MulT(body.M_xf, p) }
func (body B2Body) GetLocalVector(v B2Vec2) B2Vec2 { return B2Vec2Mat22MulT(body.M_xf.R, v) }

/// GetLinearVelocityFromWorldPoint is the velocity of the material point
/// currently at p.
func (body B2Body) GetLinearVelocityFromWorldPoint(p B2Vec2) B2Vec2 {
	arm := B2Vec2Sub(p, body.M_sweep.C)
	return B2Vec2Add(body.M_linearVelocity, B2Vec2CrossScalarVector(body.M_angularVelocity, arm))
}

func (body B2Body) GetLinearVelocityFromLocalPoint(p B2Vec2) B2Vec2 {
	return body.GetLinearVelocityFromWorldPoint(body.GetWorldPoint(p))
}

/// SetLinearVelocity is ignored on static bodies. A non-zero value wakes
/// the body.
func (body *B2Body) SetLinearVelocity(v B2Vec2) {
	if body.M_type == B2BodyType.B2_staticBody {
		return
	}
	if v.LengthSquared() > 0 {
		body.SetAwake(true)
	}
	body.M_linearVelocity = v
}

func (body *B2Body) SetAngularVelocity(w float64) {
	if body.M_type == B2BodyType.B2_staticBody {
		return
	}
	if w != 0 {
		body.SetAwake(true)
	}
	body.M_angularVelocity = w
}

/// SetAwake(false) also clears velocity and pending forces.
func (body *B2Body) SetAwake(flag bool) {
	if flag == body.IsAwake() && flag {
		return
	}
	body.setFlag(B2Body_Flags.E_awakeFlag, flag)
	body.M_sleepTime = 0
	if !flag {
		body.M_linearVelocity, body.M_angularVelocity = B2Vec2{}, 0
		body.M_force, body.M_torque = B2Vec2{}, 0
	}
}

/// SetSleepingAllowed(false) wakes the body and keeps it awake.
func (body *B2Body) SetSleepingAllowed(flag bool) {
	body.setFlag(B2Body_Flags.E_autoSleepFlag, flag)
	if !flag {
		body.SetAwake(true)
	}
}

// acceptsInput reports whether a force or impulse should be applied: the
// body must be dynamic, and awake after an optional wake up. Sleeping
// bodies drop input.
func (body *B2Body) acceptsInput(wake bool) bool {
	if body.M_type != B2BodyType.B2_dynamicBody {
		return false
	}
	if wake {
		body.SetAwake(true)
	}
	return body.IsAwake()
}

/// ApplyForce applies force at the world point, adding torque when the
/// point is off the center of mass.
func (body *B2Body) ApplyForce(force, point B2Vec2, wake bool) {
	if body.acceptsInput(wake) {
		body.M_force.OperatorPlusInplace(force)
		body.M_torque += B2Vec2Cross(B2Vec2Sub(point, body.M_sweep.C), force)
	}
}

func (body *B2Body) ApplyForceToCenter(force B2Vec2, wake bool) {
	if body.acceptsInput(wake) {
		body.M_force.OperatorPlusInplace(force)
	}
}

func (body *B2Body) ApplyTorque(torque float64, wake bool) {
	if body.acceptsInput(wake) {
		body.M_torque += torque
	}
}

/// ApplyLinearImpulse changes the velocity immediately.
func (body *B2Body) ApplyLinearImpulse(impulse, point B2Vec2, wake bool) {
	if body.acceptsInput(wake) {
		body.M_linearVelocity.OperatorPlusInplace(B2Vec2MulScalar(body.M_invMass, impulse))
		body.M_angularVelocity += body.M_invI * B2Vec2Cross(B2Vec2Sub(point, body.M_sweep.C), impulse)
	}
}

func (body *B2Body) ApplyAngularImpulse(impulse float64, wake bool) {
	if body.acceptsInput(wake) {
		body.M_angularVelocity += body.M_invI * impulse
	}
}

/// SynchronizeTransform rebuilds the origin transform from the sweep end.
func (body *B2Body) SynchronizeTransform() {
	body.M_xf.R.SetAngle(body.M_sweep.A)
	body.M_xf.P = B2Vec2Sub(body.M_sweep.C, B2Vec2Mat22Mul(body.M_xf.R, body.M_sweep.LocalCenter))
}

/// Advance rewinds the body to fraction t of the step. The broad-phase is
/// not updated.
func (body *B2Body) Advance(t float64) {
	body.M_sweep.Advance(t)
	body.M_sweep.C, body.M_sweep.A = body.M_sweep.C0, body.M_sweep.A0
	body.SynchronizeTransform()
}

// touchProxies makes the broad-phase report all pairs of this body again
// on the next update.
func (body *B2Body) touchProxies() {
	bp := body.M_world.M_contactManager.M_broadPhase
	for _, f := range body.M_fixtures {
		if f.M_proxy.ProxyId != E_nullProxy {
			bp.TouchProxy(f.M_proxy.ProxyId)
		}
	}
}

/// SetType changes the body type, resets the mass and drops every contact.
/// Contacts are rebuilt on the next step.
func (body *B2Body) SetType(bodyType uint8) {
	if body.M_world.rejectLocked("SetType") || body.M_type == bodyType {
		return
	}

	body.M_type = bodyType
	body.ResetMassData()

	if bodyType == B2BodyType.B2_staticBody {
		body.M_linearVelocity, body.M_angularVelocity = B2Vec2{}, 0
		body.M_sweep.C0, body.M_sweep.A0 = body.M_sweep.C, body.M_sweep.A
		body.SynchronizeFixtures()
	}

	body.SetAwake(true)
	body.M_force, body.M_torque = B2Vec2{}, 0

	body.destroyContacts()
	body.touchProxies()
}

/// CreateFixtureFromDef attaches a fixture and updates the mass when the
/// density is positive. Contacts appear on the next step. It returns nil
/// while the world is locked.
func (body *B2Body) CreateFixtureFromDef(def *B2FixtureDef) *B2Fixture {
	if body.M_world.rejectLocked("CreateFixture") {
		return nil
	}

	fixture := NewB2Fixture(body, def)
	if body.IsActive() {
		fixture.CreateProxy(body.M_world.M_contactManager.M_broadPhase, body.M_xf)
	}
	fixture.M_index = len(body.M_fixtures)
	body.M_fixtures = append(body.M_fixtures, fixture)

	if fixture.M_density > 0 {
		body.ResetMassData()
	}
	body.M_world.M_flags |= B2World_Flags.E_newFixture
	return fixture
}

/// CreateFixture attaches shape with default friction, restitution and filter.
func (body *B2Body) CreateFixture(shape B2ShapeInterface, density float64) *B2Fixture {
	def := MakeB2FixtureDef()
	def.Shape, def.Density = shape, density
	return body.CreateFixtureFromDef(&def)
}

/// DestroyFixture removes the fixture with its proxy and contacts, then
/// resets the mass.
func (body *B2Body) DestroyFixture(fixture *B2Fixture) {
	if fixture == nil || body.M_world.rejectLocked("DestroyFixture") {
		return
	}
	B2Assert(fixture.M_body == body)
	B2Assert(fixture.M_index < len(body.M_fixtures) && body.M_fixtures[fixture.M_index] == fixture)

	mgr := &body.M_world.M_contactManager
	for i := 0; i < len(body.M_contactEdges); {
		c := body.M_contactEdges[i].Contact
		if c.GetFixtureA() != fixture && c.GetFixtureB() != fixture {
			i++
			continue
		}
		// Destroy swap-removes edge i, so i is examined again.
		mgr.Destroy(c)
	}

	fixture.DestroyProxy(mgr.M_broadPhase)

	// Keep the remaining fixtures in creation order.
	body.M_fixtures = append(body.M_fixtures[:fixture.M_index], body.M_fixtures[fixture.M_index+1:]...)
	for j, f := range body.M_fixtures[fixture.M_index:] {
		f.M_index = fixture.M_index + j
	}

	fixture.Destroy()
	body.ResetMassData()
}

/// ResetMassData sums the mass of all fixtures with positive density.
/// Static and kinematic bodies get zero mass. A dynamic body with no
/// massive fixture gets unit mass.
func (body *B2Body) ResetMassData() {
	body.M_mass, body.M_invMass, body.M_I, body.M_invI = 0, 0, 0, 0
	body.M_sweep.LocalCenter = B2Vec2{}

	if body.M_type != B2BodyType.B2_dynamicBody {
		body.M_sweep.C0, body.M_sweep.C = body.M_xf.P, body.M_xf.P
		body.M_sweep.A0 = body.M_sweep.A
		return
	}

	var center B2Vec2
	for _, f := range body.M_fixtures {
		if f.M_density == 0 {
			continue
		}
		var md B2MassData
		f.GetMassData(&md)
		body.M_mass += md.Mass
		center.OperatorPlusInplace(B2Vec2MulScalar(md.Mass, md.Center))
		body.M_I += md.I
	}

	if body.M_mass > 0 {
		body.M_invMass = 1 / body.M_mass
		center = B2Vec2MulScalar(body.M_invMass, center)
	} else {
		body.M_mass, body.M_invMass = 1, 1
	}

	body.setRotationalInertia(body.M_I, center)
	body.moveCenterOfMass(center)
}

// setRotationalInertia takes the inertia about the body origin and stores
// it about center. Fixed rotation bodies keep zero inertia.
func (body *B2Body) setRotationalInertia(originI float64, center B2Vec2) {
	body.M_I, body.M_invI = 0, 0
	if originI <= 0 || body.IsFixedRotation() {
		return
	}
	body.M_I = originI - body.M_mass*center.LengthSquared()
	B2Assert(body.M_I > 0)
	body.M_invI = 1 / body.M_I
}

/// SetMassData overrides the fixture masses of a dynamic body. Creating or
/// destroying fixtures afterwards recomputes them.
func (body *B2Body) SetMassData(massData *B2MassData) {
	if body.M_world.rejectLocked("SetMassData") || body.M_type != B2BodyType.B2_dynamicBody {
		return
	}

	body.M_mass = massData.Mass
	if body.M_mass <= 0 {
		body.M_mass = 1
	}
	body.M_invMass = 1 / body.M_mass

	body.setRotationalInertia(massData.I, massData.Center)
	body.moveCenterOfMass(massData.Center)
}

// moveCenterOfMass relocates the sweep center while keeping the origin
// in place, and keeps the velocity of the origin unchanged.
func (body *B2Body) moveCenterOfMass(localCenter B2Vec2) {
	old := body.M_sweep.C
	body.M_sweep.LocalCenter = localCenter
	body.M_sweep.C = B2TransformVec2Mul(body.M_xf, localCenter)
	body.M_sweep.C0 = body.M_sweep.C

	shift := B2Vec2Sub(body.M_sweep.C, old)
	body.M_linearVelocity.OperatorPlusInplace(B2Vec2CrossScalarVector(body.M_angularVelocity, shift))
}

/// ShouldCollide is false when neither body is dynamic or when a joint
/// between them disables collision.
func (body B2Body) ShouldCollide(other *B2Body) bool {
	if body.M_type != B2BodyType.B2_dynamicBody && other.M_type != B2BodyType.B2_dynamicBody {
		return false
	}
	for _, je := range body.M_jointEdges {
		if je.Other == other && !je.Joint.IsCollideConnected() {
			return false
		}
	}
	return true
}

/// SetTransform teleports the body. Contacts are updated right away, which
/// can produce non-physical responses.
func (body *B2Body) SetTransform(position B2Vec2, angle float64) {
	if body.M_world.rejectLocked("SetTransform") {
		return
	}

	body.M_xf.Set(position, angle)
	body.M_sweep.C = B2TransformVec2Mul(body.M_xf, body.M_sweep.LocalCenter)
	body.M_sweep.A = angle
	body.M_sweep.C0, body.M_sweep.A0 = body.M_sweep.C, angle

	bp := body.M_world.M_contactManager.M_broadPhase
	for _, f := range body.M_fixtures {
		f.Synchronize(bp, body.M_xf, body.M_xf)
	}
	body.M_world.M_contactManager.FindNewContacts()
}

/// SynchronizeFixtures moves every proxy to cover the motion from the
/// sweep start to the current transform.
func (body *B2Body) SynchronizeFixtures() {
	var start B2Transform
	body.M_sweep.GetTransform(&start, 0)

	bp := body.M_world.M_contactManager.M_broadPhase
	for _, f := range body.M_fixtures {
		f.Synchronize(bp, start, body.M_xf)
	}
}

/// SetActive adds or removes the body from the broad-phase. Inactive bodies
/// stay in the world but are neither simulated nor collided.
func (body *B2Body) SetActive(flag bool) {
	if body.M_world.rejectLocked("SetActive") || flag == body.IsActive() {
		return
	}

	body.setFlag(B2Body_Flags.E_activeFlag, flag)
	bp := body.M_world.M_contactManager.M_broadPhase
	for _, f := range body.M_fixtures {
		if flag {
			f.CreateProxy(bp, body.M_xf)
		} else {
			f.DestroyProxy(bp)
		}
	}
	if !flag {
		body.destroyContacts()
	}
}

/// SetFixedRotation stops the spin and recomputes the mass. It is ignored
/// while the world is locked.
func (body *B2Body) SetFixedRotation(flag bool) {
	if body.M_world.rejectLocked("SetFixedRotation") || flag == body.IsFixedRotation() {
		return
	}
	body.setFlag(B2Body_Flags.E_fixedRotationFlag, flag)
	body.M_angularVelocity = 0
	body.ResetMassData()
}

func (body *B2Body) destroyContacts() {
	mgr := &body.M_world.M_contactManager
	for len(body.M_contactEdges) > 0 {
		mgr.Destroy(body.M_contactEdges[0].Contact)
	}
}

// addContactEdge returns the slot of the new edge.
func (body *B2Body) addContactEdge(other *B2Body, contact *B2Contact) int {
	body.M_contactEdges = append(body.M_contactEdges, B2ContactEdge{Other: other, Contact: contact})
	return len(body.M_contactEdges) - 1
}

// removeContactEdge swap-removes slot and tells the moved contact its new
// slot on this body.
func (body *B2Body) removeContactEdge(slot int) {
	edges := body.M_contactEdges
	last := len(edges) - 1
	if slot != last {
		edges[slot] = edges[last]
		if c := edges[slot].Contact; c.M_fixtureA.M_body == body {
			c.M_edgeA = slot
		} else {
			c.M_edgeB = slot
		}
	}
	edges[last] = B2ContactEdge{}
	body.M_contactEdges = edges[:last]
}

func (body *B2Body) addJointEdge(other *B2Body, joint B2JointInterface) int {
	body.M_jointEdges = append(body.M_jointEdges, B2JointEdge{Other: other, Joint: joint})
	return len(body.M_jointEdges) - 1
}

func (body *B2Body) removeJointEdge(slot int) {
	edges := body.M_jointEdges
	last := len(edges) - 1
	if slot != last {
		edges[slot] = edges[last]
		if j := edges[slot].Joint; j.GetBodyA() == body {
			j.SetEdgeA(slot)
		} else {
			j.SetEdgeB(slot)
		}
	}
	edges[last] = B2JointEdge{}
	body.M_jointEdges = edges[:last]
}
