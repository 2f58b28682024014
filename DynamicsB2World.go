package box2d

import "log/slog"

var B2World_Flags = struct {
	E_newFixture  int
	E_locked      int
	E_clearForces int
}{0x0001, 0x0002, 0x0004}

/// B2WorldDef holds the world construction settings.
type B2WorldDef struct {
	Gravity B2Vec2

	/// AllowSleep lets idle islands fall asleep.
	AllowSleep bool

	WarmStarting      bool
	ContinuousPhysics bool
	BlockSolve        bool

	/// BroadPhase is the proxy index. Nil selects the dynamic tree.
	BroadPhase B2BroadPhaseInterface

	/// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func MakeB2WorldDef() B2WorldDef {
	return B2WorldDef{
		Gravity:           B2Vec2{0, -10},
		AllowSleep:        true,
		WarmStarting:      true,
		ContinuousPhysics: true,
		BlockSolve:        true,
	}
}

/// B2World owns bodies, joints and contacts and advances them with Step.
/// Mutating calls made while a step is running are logged and ignored.
type B2World struct {
	M_flags          int
	M_contactManager B2ContactManager

	M_bodies []*B2Body
	M_joints []B2JointInterface

	M_gravity    B2Vec2
	M_allowSleep bool

	M_destructionListener B2DestructionListenerInterface

	// Inverse of the previous dt, for warm start scaling.
	M_inv_dt0 float64

	M_warmStarting      bool
	M_continuousPhysics bool
	M_blockSolve        bool

	M_profile B2Profile
	M_logger  *slog.Logger
}

func MakeB2World(gravity B2Vec2) B2World {
	def := MakeB2WorldDef()
	def.Gravity = gravity
	return MakeB2WorldFromDef(def)
}

func MakeB2WorldFromDef(def B2WorldDef) B2World {
	world := B2World{
		M_flags:             B2World_Flags.E_clearForces,
		M_contactManager:    MakeB2ContactManager(def.BroadPhase),
		M_bodies:            make([]*B2Body, 0, 16),
		M_gravity:           def.Gravity,
		M_allowSleep:        def.AllowSleep,
		M_warmStarting:      def.WarmStarting,
		M_continuousPhysics: def.ContinuousPhysics,
		M_blockSolve:        def.BlockSolve,
	}
	world.SetLogger(def.Logger)
	return world
}

func NewB2World(def B2WorldDef) *B2World {
	world := MakeB2WorldFromDef(def)
	return &world
}

func (world B2World) GetBodyList() []*B2Body { return world.M_bodies }
func (world B2World) GetJointList() []B2JointInterface { return world.M_joints }
func (world B2World) GetContactList() []*B2Contact { return world.M_contactManager.M_contacts }
func (world B2World) GetBodyCount() int { return len(world.M_bodies) }
func (world B2World) GetJointCount() int { return len(world.M_joints) }
func (world B2World) GetContactCount() int { return world.M_contactManager.GetContactCount() }
func (world B2World) GetProxyCount() int { return world.M_contactManager.M_broadPhase.GetProxyCount() }
func (world B2World) GetGravity() B2Vec2 { return world.M_gravity }
func (world B2World) GetProfile() B2Profile { return world.M_profile }
func (world B2World) GetLogger() *slog.Logger { return world.M_logger }
func (world B2World) GetAllowSleeping() bool { return world.M_allowSleep }
func (world B2World) GetWarmStarting() bool { return world.M_warmStarting }
func (world B2World) GetContinuousPhysics() bool { return world.M_continuousPhysics }
func (world B2World) GetBlockSolve() bool { return world.M_blockSolve }
func (world B2World) IsLocked() bool { return world.M_flags&B2World_Flags.E_locked != 0 }

/// GetAutoClearForces reports whether Step zeroes forces when it finishes.
func (world B2World) GetAutoClearForces() bool {
	return world.M_flags&B2World_Flags.E_clearForces != 0
}

func (world *B2World) GetContactManager() *B2ContactManager { return &world.M_contactManager }

func (world *B2World) SetGravity(gravity B2Vec2) { world.M_gravity = gravity }
func (world *B2World) SetWarmStarting(flag bool) { world.M_warmStarting = flag }
func (world *B2World) SetContinuousPhysics(flag bool) { world.M_continuousPhysics = flag }
func (world *B2World) SetBlockSolve(flag bool) { world.M_blockSolve = flag }

func (world *B2World) SetAutoClearForces(flag bool) {
	if flag {
		world.M_flags |= B2World_Flags.E_clearForces
	} else {
		world.M_flags &^= B2World_Flags.E_clearForces
	}
}

func (world *B2World) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	world.M_logger = logger
}

func (world *B2World) SetDestructionListener(listener B2DestructionListenerInterface) {
	world.M_destructionListener = listener
}

func (world *B2World) SetContactFilter(filter B2ContactFilterInterface) {
	world.M_contactManager.M_contactFilter = filter
}

func (world *B2World) SetContactListener(listener B2ContactListenerInterface) {
	world.M_contactManager.M_contactListener = listener
}

/// SetAllowSleeping wakes every body when sleep is turned off.
func (world *B2World) SetAllowSleeping(flag bool) {
	if flag == world.M_allowSleep {
		return
	}
	world.M_allowSleep = flag
	if !flag {
		for _, b := range world.M_bodies {
			b.SetAwake(true)
		}
	}
}

// rejectLocked logs and reports true when op arrives mid-step.
func (world *B2World) rejectLocked(op string) bool {
	if world == nil || !world.IsLocked() {
		return false
	}
	world.M_logger.Warn("world is locked, call ignored", "op", op)
	return true
}

/// CreateBody returns nil while the world is locked.
func (world *B2World) CreateBody(def *B2BodyDef) *B2Body {
	if world.rejectLocked("CreateBody") {
		return nil
	}
	b := NewB2Body(def, world)
	b.M_index = len(world.M_bodies)
	world.M_bodies = append(world.M_bodies, b)
	return b
}

/// DestroyBody removes the body with its joints, contacts and fixtures. The
/// destruction listener hears about each joint and fixture first.
func (world *B2World) DestroyBody(b *B2Body) {
	if world.rejectLocked("DestroyBody") {
		return
	}
	B2Assert(b.M_index >= 0 && b.M_index < len(world.M_bodies) && world.M_bodies[b.M_index] == b)
	listener := world.M_destructionListener

	for len(b.M_jointEdges) > 0 {
		joint := b.M_jointEdges[0].Joint
		if listener != nil {
			listener.SayGoodbyeToJoint(joint)
		}
		world.DestroyJoint(joint)
	}

	b.destroyContacts()

	for _, f := range b.M_fixtures {
		if listener != nil {
			listener.SayGoodbyeToFixture(f)
		}
		f.DestroyProxy(world.M_contactManager.M_broadPhase)
		f.Destroy()
	}
	b.M_fixtures = nil

	last := len(world.M_bodies) - 1
	tail := world.M_bodies[last]
	world.M_bodies[b.M_index] = tail
	tail.M_index = b.M_index
	world.M_bodies[last] = nil
	world.M_bodies = world.M_bodies[:last]
	b.M_index = -1
}

/// CreateJoint returns nil while locked or for an unknown joint type.
/// Creating a joint does not wake its bodies.
func (world *B2World) CreateJoint(def B2JointDefInterface) B2JointInterface {
	if world.rejectLocked("CreateJoint") {
		return nil
	}

	j := B2JointCreate(def)
	if j == nil {
		world.M_logger.Warn("unknown joint type", "type", def.GetType())
		return nil
	}
	j.SetIndex(len(world.M_joints))
	world.M_joints = append(world.M_joints, j)

	bodyA, bodyB := j.GetBodyA(), j.GetBodyB()
	j.SetEdgeA(bodyA.addJointEdge(bodyB, j))
	j.SetEdgeB(bodyB.addJointEdge(bodyA, j))

	if !j.IsCollideConnected() {
		world.flagContactsBetween(bodyA, bodyB)
	}
	return j
}

/// DestroyJoint wakes both bodies. If the joint suppressed collision the
/// pair is re-offered to the broad-phase so a contact can form next step.
func (world *B2World) DestroyJoint(j B2JointInterface) {
	if world.rejectLocked("DestroyJoint") {
		return
	}

	index := j.GetIndex()
	B2Assert(index >= 0 && index < len(world.M_joints) && world.M_joints[index] == j)
	last := len(world.M_joints) - 1
	tail := world.M_joints[last]
	world.M_joints[index] = tail
	tail.SetIndex(index)
	world.M_joints[last] = nil
	world.M_joints = world.M_joints[:last]
	j.SetIndex(-1)

	bodyA, bodyB := j.GetBodyA(), j.GetBodyB()
	bodyA.SetAwake(true)
	bodyB.SetAwake(true)
	bodyA.removeJointEdge(j.GetEdgeA())
	bodyB.removeJointEdge(j.GetEdgeB())
	j.SetEdgeA(-1)
	j.SetEdgeB(-1)

	if j.IsCollideConnected() {
		return
	}
	world.flagContactsBetween(bodyA, bodyB)
	for _, f := range bodyA.M_fixtures {
		if id := f.GetProxyId(); id != E_nullProxy {
			world.M_contactManager.M_broadPhase.TouchProxy(id)
			world.M_flags |= B2World_Flags.E_newFixture
		}
	}
}

func (world *B2World) flagContactsBetween(bodyA, bodyB *B2Body) {
	for _, edge := range bodyB.M_contactEdges {
		if edge.Other == bodyA {
			edge.Contact.FlagForFiltering()
		}
	}
}

/// Step advances the world by dt: collide, solve islands, then resolve time
/// of impact events. A zero dt only updates contacts.
func (world *B2World) Step(dt float64, velocityIterations int, positionIterations int) {
	if world.rejectLocked("Step") {
		return
	}
	stepTimer := MakeB2Timer()

	// Fixtures added since the last step need their pairs.
	if world.M_flags&B2World_Flags.E_newFixture != 0 {
		world.M_contactManager.FindNewContacts()
		world.M_flags &^= B2World_Flags.E_newFixture
	}

	world.M_flags |= B2World_Flags.E_locked
	defer func() { world.M_flags &^= B2World_Flags.E_locked }()

	step := MakeB2TimeStep()
	step.Dt = dt
	step.VelocityIterations = velocityIterations
	step.PositionIterations = positionIterations
	if dt > 0 {
		step.Inv_dt = 1 / dt
	}
	step.DtRatio = world.M_inv_dt0 * dt
	step.WarmStarting = world.M_warmStarting
	step.BlockSolve = world.M_blockSolve

	timer := MakeB2Timer()
	world.M_contactManager.Collide()
	world.M_profile.Collide = timer.GetMilliseconds()

	if step.Dt > 0 {
		timer.Reset()
		world.Solve(step)
		world.M_profile.Solve = timer.GetMilliseconds()

		if world.M_continuousPhysics {
			timer.Reset()
			world.SolveTOI(step)
			world.M_profile.SolveTOI = timer.GetMilliseconds()
		}
		world.M_inv_dt0 = step.Inv_dt
	}

	if world.GetAutoClearForces() {
		world.ClearForces()
	}
	world.M_profile.Step = stepTimer.GetMilliseconds()
}

/// ClearForces zeroes accumulated forces and torques. Step does this itself
/// unless auto clearing is off.
func (world *B2World) ClearForces() {
	for _, b := range world.M_bodies {
		b.M_force.SetZero()
		b.M_torque = 0
	}
}

/// QueryAABB reports fixtures whose fat boxes overlap aabb.
func (world *B2World) QueryAABB(callback B2BroadPhaseQueryCallback, aabb B2AABB) {
	bp := world.M_contactManager.M_broadPhase
	bp.Query(func(proxyId int) bool {
		return callback(bp.GetUserData(proxyId).(*B2FixtureProxy).Fixture)
	}, aabb)
}

/// RayCast reports fixtures hit by the segment point1-point2. The callback
/// verdict decides whether to stop, clip or ignore. Shapes containing
/// point1 are not reported.
func (world *B2World) RayCast(callback B2RaycastCallback, point1, point2 B2Vec2) {
	bp := world.M_contactManager.M_broadPhase
	bp.RayCast(func(input B2RayCastInput, proxyId int) B2RayCastVerdict {
		fixture := bp.GetUserData(proxyId).(*B2FixtureProxy).Fixture
		var output B2RayCastOutput
		if !fixture.RayCast(&output, input) {
			return B2RayCastContinue(input.MaxFraction)
		}
		t := output.Fraction
		point := B2Vec2Add(B2Vec2MulScalar(1-t, input.P1), B2Vec2MulScalar(t, input.P2))
		return callback(fixture, point, output.Normal, t)
	}, B2RayCastInput{P1: point1, P2: point2, MaxFraction: 1})
}
