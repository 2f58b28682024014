package box2d

import "math"

/// B2MixFriction lets either fixture drive friction to zero. Anything slides
/// on ice.
func B2MixFriction(friction1, friction2 float64) float64 {
	return math.Sqrt(friction1 * friction2)
}

/// B2MixRestitution lets the bouncier fixture win. A superball bounces on
/// anything.
func B2MixRestitution(restitution1, restitution2 float64) float64 {
	return math.Max(restitution1, restitution2)
}

/// B2ContactEvaluateFcn writes the manifold of two fixtures' shapes.
type B2ContactEvaluateFcn func(manifold *B2Manifold, fixtureA *B2Fixture, xfA B2Transform, fixtureB *B2Fixture, xfB B2Transform)

type B2ContactRegister struct {
	Evaluate B2ContactEvaluateFcn

	// Primary is false when the fixtures must be swapped so the evaluate
	// function sees its shapes in order.
	Primary bool
}

/// B2ContactEdge is one entry in a body's contact adjacency. The contact
/// stores its slot in both bodies so removal is O(1).
type B2ContactEdge struct {
	Other   *B2Body
	Contact *B2Contact
}

var B2Contact_Flag = struct {
	E_islandFlag     uint32 // visited while building islands
	E_touchingFlag   uint32
	E_enabledFlag    uint32 // cleared by PreSolve for one step
	E_filterFlag     uint32 // refilter on the next Collide
	E_toiFlag        uint32 // M_toi is valid
	E_sensorFlag     uint32
	E_continuousFlag uint32
}{0x0001, 0x0002, 0x0004, 0x0008, 0x0010, 0x0020, 0x0040}

const b2_shapeTypeCount = 3

// evaluator adapts a typed collide routine to the fixture-level signature.
func evaluator[A, B B2ShapeInterface](collide func(*B2Manifold, A, B2Transform, B, B2Transform)) B2ContactEvaluateFcn {
	return func(m *B2Manifold, fA *B2Fixture, xfA B2Transform, fB *B2Fixture, xfB B2Transform) {
		collide(m, fA.GetShape().(A), xfA, fB.GetShape().(B), xfB)
	}
}

// Indexed by [shape type A][shape type B]. Edges do not collide with edges.
var b2_contactRegisters = func() (table [b2_shapeTypeCount][b2_shapeTypeCount]B2ContactRegister) {
	register := func(fn B2ContactEvaluateFcn, a, b uint8) {
		table[a][b] = B2ContactRegister{Evaluate: fn, Primary: true}
		if a != b {
			table[b][a] = B2ContactRegister{Evaluate: fn}
		}
	}

	register(evaluator(B2CollideCircles), B2Shape_Type.E_circle, B2Shape_Type.E_circle)
	register(evaluator(B2CollidePolygonAndCircle), B2Shape_Type.E_polygon, B2Shape_Type.E_circle)
	register(evaluator(B2CollidePolygons), B2Shape_Type.E_polygon, B2Shape_Type.E_polygon)
	register(evaluator(B2CollideEdgeAndCircle), B2Shape_Type.E_edge, B2Shape_Type.E_circle)
	register(evaluator(B2CollideEdgeAndPolygon), B2Shape_Type.E_edge, B2Shape_Type.E_polygon)
	return table
}()

/// B2Contact tracks one fixture pair whose fat boxes overlap. It may have
/// no manifold points.
type B2Contact struct {
	M_flags uint32
	M_index int // slot in the contact manager

	M_fixtureA, M_fixtureB *B2Fixture
	M_edgeA, M_edgeB       int // slots in the bodies' contact edges

	M_manifold B2Manifold
	M_evaluate B2ContactEvaluateFcn

	M_toiCount int
	M_toi      float64

	M_friction    float64
	M_restitution float64
}

/// B2ContactFactory builds the contact for two fixtures, swapping them if
/// the collide routine wants the other order. Returns nil for edge pairs.
func B2ContactFactory(fixtureA, fixtureB *B2Fixture) *B2Contact {
	tA, tB := fixtureA.GetType(), fixtureB.GetType()
	B2Assert(tA < b2_shapeTypeCount && tB < b2_shapeTypeCount)

	reg := b2_contactRegisters[tA][tB]
	switch {
	case reg.Evaluate == nil:
		return nil
	case reg.Primary:
		return NewB2Contact(fixtureA, fixtureB, reg.Evaluate)
	default:
		return NewB2Contact(fixtureB, fixtureA, reg.Evaluate)
	}
}

/// B2ContactDestroy wakes the bodies of a touching non-sensor contact and
/// drops its references.
func B2ContactDestroy(contact *B2Contact) {
	fA, fB := contact.M_fixtureA, contact.M_fixtureB
	if contact.M_manifold.PointCount > 0 && !fA.IsSensor() && !fB.IsSensor() {
		fA.GetBody().SetAwake(true)
		fB.GetBody().SetAwake(true)
	}
	contact.M_evaluate = nil
	contact.M_fixtureA, contact.M_fixtureB = nil, nil
}

func NewB2Contact(fA, fB *B2Fixture, evaluate B2ContactEvaluateFcn) *B2Contact {
	c := &B2Contact{
		M_flags:    B2Contact_Flag.E_enabledFlag,
		M_index:    -1,
		M_fixtureA: fA,
		M_fixtureB: fB,
		M_edgeA:    -1,
		M_edgeB:    -1,
		M_evaluate: evaluate,
	}
	c.setFlag(B2Contact_Flag.E_sensorFlag, fA.IsSensor() || fB.IsSensor())
	c.ResetFriction()
	c.ResetRestitution()
	return c
}

func (contact B2Contact) hasFlag(flag uint32) bool { return contact.M_flags&flag != 0 }

func (contact *B2Contact) setFlag(flag uint32, on bool) {
	if on {
		contact.M_flags |= flag
	} else {
		contact.M_flags &^= flag
	}
}

func (contact *B2Contact) GetManifold() *B2Manifold { return &contact.M_manifold }
func (contact B2Contact) GetFixtureA() *B2Fixture { return contact.M_fixtureA }
func (contact B2Contact) GetFixtureB() *B2Fixture { return contact.M_fixtureB }
func (contact B2Contact) IsTouching() bool { return contact.hasFlag(B2Contact_Flag.E_touchingFlag) }
func (contact B2Contact) IsEnabled() bool { return contact.hasFlag(B2Contact_Flag.E_enabledFlag) }
func (contact B2Contact) IsSensor() bool { return contact.hasFlag(B2Contact_Flag.E_sensorFlag) }
func (contact B2Contact) IsContinuous() bool { return contact.hasFlag(B2Contact_Flag.E_continuousFlag) }
func (contact B2Contact) GetTOICount() int { return contact.M_toiCount }
func (contact B2Contact) GetFriction() float64 { return contact.M_friction }
func (contact B2Contact) GetRestitution() float64 { return contact.M_restitution }

/// SetEnabled only lasts for the current step or TOI sub-step. Use it from
/// PreSolve.
func (contact *B2Contact) SetEnabled(flag bool) { contact.setFlag(B2Contact_Flag.E_enabledFlag, flag) }

/// FlagForFiltering makes the next Collide rerun the filters.
func (contact *B2Contact) FlagForFiltering() { contact.setFlag(B2Contact_Flag.E_filterFlag, true) }

/// SetFriction overrides the mixed value until reset.
func (contact *B2Contact) SetFriction(friction float64) { contact.M_friction = friction }
func (contact *B2Contact) SetRestitution(restitution float64) { contact.M_restitution = restitution }

func (contact *B2Contact) ResetFriction() {
	contact.M_friction = B2MixFriction(contact.M_fixtureA.M_friction, contact.M_fixtureB.M_friction)
}

func (contact *B2Contact) ResetRestitution() {
	contact.M_restitution = B2MixRestitution(contact.M_fixtureA.M_restitution, contact.M_fixtureB.M_restitution)
}

/// GetWorldManifold places the manifold in world space using the current
/// body transforms.
func (contact B2Contact) GetWorldManifold(worldManifold *B2WorldManifold) {
	fA, fB := contact.M_fixtureA, contact.M_fixtureB
	worldManifold.Initialize(&contact.M_manifold,
		fA.GetBody().GetTransform(), fA.GetShape().GetRadius(),
		fB.GetBody().GetTransform(), fB.GetShape().GetRadius())
}

/// Evaluate runs the collide routine into manifold with caller transforms.
func (contact *B2Contact) Evaluate(manifold *B2Manifold, xfA, xfB B2Transform) {
	contact.M_evaluate(manifold, contact.M_fixtureA, xfA, contact.M_fixtureB, xfB)
}

// inheritImpulses copies accumulated impulses from old points whose id key
// matches. Unmatched points start from zero.
func (m *B2Manifold) inheritImpulses(old *B2Manifold) {
	for i := 0; i < m.PointCount; i++ {
		p := &m.Points[i]
		p.NormalImpulse, p.TangentImpulse = 0, 0
		for j := 0; j < old.PointCount; j++ {
			if old.Points[j].Id.Key() == p.Id.Key() {
				p.NormalImpulse = old.Points[j].NormalImpulse
				p.TangentImpulse = old.Points[j].TangentImpulse
				break
			}
		}
	}
}

/// Update recomputes the manifold and touching state and fires the
/// listener. The fixtures' boxes may no longer overlap.
func (contact *B2Contact) Update(listener B2ContactListenerInterface) {
	oldManifold := contact.M_manifold
	wasTouching := contact.IsTouching()
	contact.setFlag(B2Contact_Flag.E_enabledFlag, true)

	fA, fB := contact.M_fixtureA, contact.M_fixtureB
	bodyA, bodyB := fA.GetBody(), fB.GetBody()
	xfA, xfB := bodyA.GetTransform(), bodyB.GetTransform()

	sensor := fA.IsSensor() || fB.IsSensor()
	contact.setFlag(B2Contact_Flag.E_sensorFlag, sensor)

	var touching bool
	if sensor {
		// Sensors only report overlap and never carry points.
		touching = B2TestOverlapShapes(fA.GetShape(), fB.GetShape(), xfA, xfB)
		contact.M_manifold.PointCount = 0
	} else {
		// Anything touching a non-dynamic body or a bullet is swept in TOI.
		swept := bodyA.GetType() != B2BodyType.B2_dynamicBody || bodyA.IsBullet() ||
			bodyB.GetType() != B2BodyType.B2_dynamicBody || bodyB.IsBullet()
		contact.setFlag(B2Contact_Flag.E_continuousFlag, swept)

		contact.Evaluate(&contact.M_manifold, xfA, xfB)
		touching = contact.M_manifold.PointCount > 0
		contact.M_manifold.inheritImpulses(&oldManifold)

		if touching != wasTouching {
			bodyA.SetAwake(true)
			bodyB.SetAwake(true)
		}
	}
	contact.setFlag(B2Contact_Flag.E_touchingFlag, touching)

	if listener == nil {
		return
	}
	switch {
	case touching && !wasTouching:
		listener.BeginContact(contact)
	case wasTouching && !touching:
		listener.EndContact(contact)
	}
	if touching && !sensor {
		listener.PreSolve(contact, oldManifold)
	}
}

/// ComputeTOI returns the impact fraction of the two sweeps with the linear
/// slop as target tolerance.
func (contact *B2Contact) ComputeTOI(sweepA, sweepB B2Sweep) float64 {
	input := MakeB2TOIInput()
	input.ProxyA.Set(contact.M_fixtureA.GetShape())
	input.ProxyB.Set(contact.M_fixtureB.GetShape())
	input.SweepA, input.SweepB = sweepA, sweepB
	input.Tolerance = B2_linearSlop

	output := MakeB2TOIOutput()
	B2TimeOfImpact(&output, &input)
	return output.T
}
