package box2d

/// B2Filter selects which fixtures may collide. A shared non-zero
/// GroupIndex overrides the bits: positive always collides, negative never.
type B2Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

func MakeB2Filter() B2Filter {
	return B2Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF}
}

/// B2FixtureDef describes a fixture. The shape is cloned on creation so a
/// definition can be reused.
type B2FixtureDef struct {
	Shape    B2ShapeInterface
	UserData interface{}

	Friction    float64
	Restitution float64
	Density     float64 // kg/m^2

	/// IsSensor fixtures report overlap but get no collision response.
	IsSensor bool

	Filter B2Filter
}

func MakeB2FixtureDef() B2FixtureDef {
	return B2FixtureDef{Friction: 0.2, Filter: MakeB2Filter()}
}

/// B2FixtureProxy is the broad-phase user data of a fixture.
type B2FixtureProxy struct {
	Aabb    B2AABB
	Fixture *B2Fixture
	ProxyId int
}

/// B2Fixture attaches a shape to a body, with the material and filtering
/// data used by contacts. Create fixtures through B2Body.CreateFixture.
type B2Fixture struct {
	M_body  *B2Body
	M_index int // slot in the body's fixture slice
	M_shape B2ShapeInterface
	M_proxy B2FixtureProxy

	M_density     float64
	M_friction    float64
	M_restitution float64

	M_filter   B2Filter
	M_isSensor bool
	M_userData interface{}
}

func NewB2Fixture(body *B2Body, def *B2FixtureDef) *B2Fixture {
	return &B2Fixture{
		M_body:        body,
		M_index:       -1,
		M_shape:       def.Shape.Clone(),
		M_proxy:       B2FixtureProxy{ProxyId: E_nullProxy},
		M_density:     def.Density,
		M_friction:    def.Friction,
		M_restitution: def.Restitution,
		M_filter:      def.Filter,
		M_isSensor:    def.IsSensor,
		M_userData:    def.UserData,
	}
}

func (fix B2Fixture) GetType() uint8 { return fix.M_shape.GetType() }
func (fix B2Fixture) GetShape() B2ShapeInterface { return fix.M_shape }
func (fix B2Fixture) GetBody() *B2Body { return fix.M_body }
func (fix B2Fixture) IsSensor() bool { return fix.M_isSensor }
func (fix B2Fixture) GetFilterData() B2Filter { return fix.M_filter }
func (fix B2Fixture) GetUserData() interface{} { return fix.M_userData }
func (fix B2Fixture) GetDensity() float64 { return fix.M_density }
func (fix B2Fixture) GetFriction() float64 { return fix.M_friction }
func (fix B2Fixture) GetRestitution() float64 { return fix.M_restitution }
func (fix B2Fixture) GetProxyId() int { return fix.M_proxy.ProxyId }

/// GetAABB returns the box last given to the broad-phase. It covers the
/// swept shape of the previous step and may be stale.
func (fix B2Fixture) GetAABB() B2AABB { return fix.M_proxy.Aabb }

func (fix *B2Fixture) SetUserData(data interface{}) { fix.M_userData = data }

/// SetFriction and SetRestitution affect contacts created afterwards.
/// Existing contacts keep their mixed values until reset.
func (fix *B2Fixture) SetFriction(friction float64) { fix.M_friction = friction }
func (fix *B2Fixture) SetRestitution(restitution float64) { fix.M_restitution = restitution }

/// SetDensity does not update the body mass. Call B2Body.ResetMassData.
func (fix *B2Fixture) SetDensity(density float64) {
	B2Assert(B2IsValid(density) && density >= 0)
	fix.M_density = density
}

/// SetSensor wakes the body when the flag changes.
func (fix *B2Fixture) SetSensor(sensor bool) {
	if sensor == fix.M_isSensor {
		return
	}
	fix.M_body.SetAwake(true)
	fix.M_isSensor = sensor
}

/// TestPoint checks a world point against the shape at the body transform.
func (fix B2Fixture) TestPoint(p B2Vec2) bool {
	return fix.M_shape.TestPoint(fix.M_body.GetTransform(), p)
}

func (fix B2Fixture) RayCast(output *B2RayCastOutput, input B2RayCastInput) bool {
	return fix.M_shape.RayCast(output, input, fix.M_body.GetTransform())
}

/// GetMassData computes mass, centroid and inertia about the shape origin.
func (fix B2Fixture) GetMassData(massData *B2MassData) {
	fix.M_shape.ComputeMass(massData, fix.M_density)
}

/// Destroy requires the proxy to be gone already.
func (fix *B2Fixture) Destroy() {
	B2Assert(fix.M_proxy.ProxyId == E_nullProxy)
	fix.M_shape, fix.M_body = nil, nil
}

func (fix *B2Fixture) CreateProxy(broadPhase B2BroadPhaseInterface, xf B2Transform) {
	B2Assert(fix.M_proxy.ProxyId == E_nullProxy)
	fix.M_shape.ComputeAABB(&fix.M_proxy.Aabb, xf)
	fix.M_proxy.Fixture = fix
	fix.M_proxy.ProxyId = broadPhase.CreateProxy(fix.M_proxy.Aabb, &fix.M_proxy)
}

func (fix *B2Fixture) DestroyProxy(broadPhase B2BroadPhaseInterface) {
	if fix.M_proxy.ProxyId != E_nullProxy {
		broadPhase.DestroyProxy(fix.M_proxy.ProxyId)
		fix.M_proxy.ProxyId = E_nullProxy
	}
}

/// Synchronize moves the proxy to the union of the shape's boxes at both
/// transforms. Rotation between them is not covered exactly.
func (fix *B2Fixture) Synchronize(broadPhase B2BroadPhaseInterface, xf1, xf2 B2Transform) {
	if fix.M_proxy.ProxyId == E_nullProxy {
		return
	}
	var box1, box2 B2AABB
	fix.M_shape.ComputeAABB(&box1, xf1)
	fix.M_shape.ComputeAABB(&box2, xf2)
	fix.M_proxy.Aabb.CombineTwoInPlace(box1, box2)
	broadPhase.MoveProxy(fix.M_proxy.ProxyId, fix.M_proxy.Aabb, B2Vec2Sub(xf2.P, xf1.P))
}

/// SetFilterData takes effect on the next step in which either body is
/// awake.
func (fix *B2Fixture) SetFilterData(filter B2Filter) {
	fix.M_filter = filter
	fix.Refilter()
}

/// Refilter flags this fixture's contacts and re-offers its proxy so pairs
/// rejected earlier can be reconsidered.
func (fix *B2Fixture) Refilter() {
	if fix.M_body == nil {
		return
	}
	for _, edge := range fix.M_body.M_contactEdges {
		if c := edge.Contact; c.M_fixtureA == fix || c.M_fixtureB == fix {
			c.FlagForFiltering()
		}
	}
	if world := fix.M_body.M_world; world != nil && fix.M_proxy.ProxyId != E_nullProxy {
		world.M_contactManager.M_broadPhase.TouchProxy(fix.M_proxy.ProxyId)
	}
}
