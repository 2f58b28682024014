package box2d_test

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/b2classic/box2d"
	"github.com/pmezard/go-difflib/difflib"
)

const dt = 1.0 / 60.0

func newWorld(gravity box2d.B2Vec2) *box2d.B2World {
	def := box2d.MakeB2WorldDef()
	def.Gravity = gravity
	def.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return box2d.NewB2World(def)
}

// Ground with its top face at y = 0.
func addGround(world *box2d.B2World) *box2d.B2Body {
	bd := box2d.MakeB2BodyDef()
	bd.Position.Set(0, -1)
	ground := world.CreateBody(&bd)

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(40, 1)
	ground.CreateFixture(&shape, 0)
	return ground
}

func addBox(world *box2d.B2World, x, y, hx, hy float64) *box2d.B2Body {
	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position.Set(x, y)
	body := world.CreateBody(&bd)

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(hx, hy)
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = 1
	fd.Friction = 0.6
	body.CreateFixtureFromDef(&fd)
	return body
}

func addBall(world *box2d.B2World, x, y, r float64) *box2d.B2Body {
	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position.Set(x, y)
	body := world.CreateBody(&bd)

	shape := box2d.MakeB2CircleShape()
	shape.M_radius = r
	body.CreateFixture(&shape, 1)
	return body
}

func TestBoxRestsOnGround(t *testing.T) {
	for _, block := range []bool{true, false} {
		t.Run(fmt.Sprintf("block=%v", block), func(t *testing.T) {
			world := newWorld(box2d.MakeB2Vec2(0, -10))
			world.SetBlockSolve(block)
			addGround(world)
			box := addBox(world, 0, 0.5, 0.5, 0.5)

			for i := 0; i < 60; i++ {
				world.Step(dt, 8, 3)
			}

			p := box.GetPosition()
			if math.Abs(p.X) > 1e-3 || math.Abs(box.GetAngle()) > 1e-3 {
				t.Fatalf("box drifted to %v angle %v", p, box.GetAngle())
			}

			// Both skins are B2_polygonRadius thick and position correction
			// stops once they overlap by B2_linearSlop.
			separation := (p.Y - 0.5) - 2*box2d.B2_polygonRadius
			if separation > 0 || math.Abs(separation+box2d.B2_linearSlop) > 1e-3 {
				t.Fatalf("separation = %v, want about %v", separation, -box2d.B2_linearSlop)
			}
			if v, w := box.GetLinearVelocity(), box.GetAngularVelocity(); v.Length() > 1e-3 || math.Abs(w) > 1e-3 {
				t.Fatalf("box still moving: v=%v w=%v", v, w)
			}

			if world.GetContactCount() != 1 {
				t.Fatalf("contacts = %d, want 1", world.GetContactCount())
			}
			contact := world.GetContactList()[0]
			m := contact.GetManifold()
			if !contact.IsTouching() || m.PointCount != 2 {
				t.Fatalf("touching=%v points=%d", contact.IsTouching(), m.PointCount)
			}
			var wm box2d.B2WorldManifold
			contact.GetWorldManifold(&wm)
			if math.Abs(math.Abs(wm.Normal.Y)-1) > 1e-6 {
				t.Fatalf("normal = %v, want vertical", wm.Normal)
			}
			for i := 0; i < m.PointCount; i++ {
				if math.Abs(wm.Points[i].Y) > 2*box2d.B2_polygonRadius {
					t.Fatalf("contact point %d at %v, want on the ground surface", i, wm.Points[i])
				}
			}
		})
	}
}

func TestBallSettlesAndSleeps(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	addGround(world)
	ball := addBall(world, 0, 5, 0.5)

	for i := 0; i < 300; i++ {
		world.Step(dt, 8, 3)
	}

	y := ball.GetPosition().Y
	if y < 0.49 || y > 0.52 {
		t.Fatalf("ball rests at y=%v", y)
	}
	if ball.IsAwake() {
		t.Fatalf("ball still awake after settling, v=%v", ball.GetLinearVelocity())
	}

	// A force with wake set brings it back.
	ball.ApplyForceToCenter(box2d.MakeB2Vec2(50, 0), true)
	if !ball.IsAwake() {
		t.Fatalf("force did not wake the ball")
	}
	world.Step(dt, 8, 3)
	if ball.GetLinearVelocity().X <= 0 {
		t.Fatalf("ball did not react to the force")
	}
}

func TestSleepingDisabled(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	world.SetAllowSleeping(false)
	addGround(world)
	ball := addBall(world, 0, 1, 0.5)

	for i := 0; i < 180; i++ {
		world.Step(dt, 8, 3)
	}
	if !ball.IsAwake() {
		t.Fatalf("ball fell asleep with sleeping disabled")
	}
}

func bulletRun(continuous bool) float64 {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	world.SetContinuousPhysics(continuous)

	bd := box2d.MakeB2BodyDef()
	wall := world.CreateBody(&bd)
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(0.05, 5)
	wall.CreateFixture(&shape, 0)

	ball := addBall(world, -5.3, 0, 0.1)
	ball.SetLinearVelocity(box2d.MakeB2Vec2(100, 0))

	for i := 0; i < 10; i++ {
		world.Step(dt, 8, 3)
	}
	return ball.GetPosition().X
}

func TestFastBodyStoppedByContinuousCollision(t *testing.T) {
	if x := bulletRun(false); x < 0.5 {
		t.Fatalf("without continuous physics the ball should tunnel, x=%v", x)
	}
	// The wall face is at x=-0.05 and the ball radius is 0.1. Allow the
	// solver slop but nothing more.
	if x := bulletRun(true); x+0.1 > -0.05+2*box2d.B2_linearSlop {
		t.Fatalf("ball penetrated the wall, x=%v", x)
	}
}

func TestBulletAgainstDynamicBody(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))

	target := addBox(world, 0, 0, 0.05, 2)
	bullet := addBall(world, -5.3, 0, 0.1)
	bullet.SetBullet(true)
	bullet.SetLinearVelocity(box2d.MakeB2Vec2(100, 0))

	for i := 0; i < 4; i++ {
		world.Step(dt, 8, 3)
	}

	if target.GetLinearVelocity().X <= 0 {
		t.Fatalf("bullet did not hit the plank: plank v=%v bullet at %v",
			target.GetLinearVelocity(), bullet.GetPosition())
	}
}

func stackTrace(steps int) string {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	addGround(world)

	var bodies []*box2d.B2Body
	for row := 0; row < 5; row++ {
		for col := 0; col < 5-row; col++ {
			x := -2.2 + float64(row)*0.55 + float64(col)*1.1
			bodies = append(bodies, addBox(world, x, 0.5+float64(row), 0.5, 0.5))
		}
	}
	bodies = append(bodies, addBall(world, -6, 6, 0.4))
	bodies[len(bodies)-1].SetLinearVelocity(box2d.MakeB2Vec2(12, 0))

	var sb strings.Builder
	for i := 0; i < steps; i++ {
		world.Step(dt, 8, 3)
		for j, b := range bodies {
			p := b.GetPosition()
			sb.WriteString(fmt.Sprintf("%d(%d): %4.3f %4.3f %4.3f\n", i, j, p.X, p.Y, b.GetAngle()))
		}
	}
	return sb.String()
}

func TestDeterministicStepping(t *testing.T) {
	first := stackTrace(120)
	second := stackTrace(120)

	if first != second {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(first),
			B:        difflib.SplitLines(second),
			FromFile: "first",
			ToFile:   "second",
			Context:  0,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("identical worlds diverged:\n%s", text)
	}
}

func TestDistanceJointKeepsLength(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))

	bd := box2d.MakeB2BodyDef()
	bd.Position.Set(0, 10)
	anchor := world.CreateBody(&bd)
	ball := addBall(world, 3, 10, 0.25)

	jd := box2d.MakeB2DistanceJointDef()
	jd.Initialize(anchor, ball, anchor.GetPosition(), ball.GetPosition())
	joint := world.CreateJoint(&jd).(*box2d.B2DistanceJoint)

	if math.Abs(joint.GetLength()-3) > 1e-12 {
		t.Fatalf("length = %v", joint.GetLength())
	}

	lowest := ball.GetPosition().Y
	for i := 0; i < 120; i++ {
		world.Step(dt, 8, 3)
		d := box2d.B2Vec2Sub(joint.GetAnchorB(), joint.GetAnchorA()).Length()
		if math.Abs(d-3) > 0.02 {
			t.Fatalf("step %d: rod length %v", i, d)
		}
		lowest = math.Min(lowest, ball.GetPosition().Y)
	}

	// The bottom of the swing is one rod length below the anchor.
	if lowest > 7.1 {
		t.Fatalf("ball only swung down to y=%v", lowest)
	}
}

func TestRevoluteJointLimitAndAnchor(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))

	bd := box2d.MakeB2BodyDef()
	pivot := world.CreateBody(&bd)
	arm := addBox(world, 1, 0, 1, 0.1)

	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(pivot, arm, box2d.MakeB2Vec2(0, 0))
	jd.EnableLimit = true
	jd.LowerAngle = -0.5
	jd.UpperAngle = 0.5
	joint := world.CreateJoint(&jd).(*box2d.B2RevoluteJoint)

	for i := 0; i < 120; i++ {
		world.Step(dt, 8, 3)

		gap := box2d.B2Vec2Sub(joint.GetAnchorB(), joint.GetAnchorA()).Length()
		if gap > 0.01 {
			t.Fatalf("step %d: anchors apart by %v", i, gap)
		}
		if a := joint.GetJointAngle(); a < -0.5-2*box2d.B2_angularSlop || a > 0.5+2*box2d.B2_angularSlop {
			t.Fatalf("step %d: joint angle %v outside limits", i, a)
		}
	}

	// Gravity pulls the arm onto the lower limit.
	if a := joint.GetJointAngle(); math.Abs(a+0.5) > 2*box2d.B2_angularSlop {
		t.Fatalf("arm rests at %v, want the lower limit", a)
	}
}

func TestRevoluteMotor(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))

	bd := box2d.MakeB2BodyDef()
	pivot := world.CreateBody(&bd)
	wheel := addBall(world, 0, 0, 1)

	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(pivot, wheel, box2d.MakeB2Vec2(0, 0))
	jd.EnableMotor = true
	jd.MotorSpeed = 2
	jd.MaxMotorTorque = 1000
	world.CreateJoint(&jd)

	for i := 0; i < 30; i++ {
		world.Step(dt, 8, 3)
	}
	if w := wheel.GetAngularVelocity(); math.Abs(w-2) > 1e-3 {
		t.Fatalf("wheel spins at %v, want motor speed 2", w)
	}
}

type contactCounter struct {
	begin, end, pre, post int
	world                 *box2d.B2World
	created               *box2d.B2Body
	spinner               *box2d.B2Body
	locked                bool
}

func (c *contactCounter) BeginContact(contact *box2d.B2Contact) {
	c.begin++
	if c.world != nil {
		c.locked = c.world.IsLocked()
		bd := box2d.MakeB2BodyDef()
		c.created = c.world.CreateBody(&bd)

		c.spinner = contact.GetFixtureA().GetBody()
		if c.spinner.GetType() != box2d.B2BodyType.B2_dynamicBody {
			c.spinner = contact.GetFixtureB().GetBody()
		}
		c.spinner.SetFixedRotation(true)
	}
}

func (c *contactCounter) EndContact(contact *box2d.B2Contact) { c.end++ }

func (c *contactCounter) PreSolve(contact *box2d.B2Contact, oldManifold box2d.B2Manifold) {
	c.pre++
}

func (c *contactCounter) PostSolve(contact *box2d.B2Contact, impulse *box2d.B2ContactImpulse) {
	c.post++
}

func TestContactListenerEvents(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	counter := &contactCounter{}
	world.SetContactListener(counter)

	addGround(world)
	ball := addBall(world, 0, 2, 0.5)

	for i := 0; i < 60; i++ {
		world.Step(dt, 8, 3)
	}
	if counter.begin != 1 || counter.end != 0 {
		t.Fatalf("begin=%d end=%d after landing", counter.begin, counter.end)
	}
	if counter.pre == 0 || counter.post == 0 {
		t.Fatalf("pre=%d post=%d", counter.pre, counter.post)
	}

	ball.ApplyLinearImpulse(box2d.MakeB2Vec2(0, 20), ball.GetWorldCenter(), true)
	for i := 0; i < 10; i++ {
		world.Step(dt, 8, 3)
	}
	if counter.end != 1 {
		t.Fatalf("end=%d after the ball jumped", counter.end)
	}
}

func TestLockedWorldRejectsMutations(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	counter := &contactCounter{world: world}
	world.SetContactListener(counter)

	addGround(world)
	addBall(world, 0, 0.6, 0.5)

	for i := 0; i < 10 && counter.begin == 0; i++ {
		world.Step(dt, 8, 3)
	}

	if counter.begin == 0 {
		t.Fatalf("ball never touched the ground")
	}
	if !counter.locked {
		t.Fatalf("world not locked inside a callback")
	}
	if counter.created != nil {
		t.Fatalf("CreateBody succeeded while locked")
	}
	if counter.spinner.IsFixedRotation() || counter.spinner.GetInertia() == 0 {
		t.Fatalf("SetFixedRotation took effect while locked")
	}
	if world.GetBodyCount() != 2 {
		t.Fatalf("body count = %d, want 2", world.GetBodyCount())
	}
	if world.IsLocked() {
		t.Fatalf("world still locked after Step")
	}
}

func TestSensorDoesNotCollide(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	counter := &contactCounter{}
	world.SetContactListener(counter)

	bd := box2d.MakeB2BodyDef()
	zone := world.CreateBody(&bd)
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(2, 0.5)
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.IsSensor = true
	zone.CreateFixtureFromDef(&fd)

	ball := addBall(world, 0, 2, 0.25)
	for i := 0; i < 60; i++ {
		world.Step(dt, 8, 3)
	}

	if counter.begin != 1 || counter.end != 1 {
		t.Fatalf("sensor begin=%d end=%d", counter.begin, counter.end)
	}
	if counter.post != 0 {
		t.Fatalf("sensor contact reached the solver")
	}
	if ball.GetPosition().Y > -1 {
		t.Fatalf("ball stopped at the sensor: %v", ball.GetPosition())
	}
}

func TestGroupFilterSkipsCollision(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	addGround(world)

	makeMember := func(y float64) *box2d.B2Body {
		bd := box2d.MakeB2BodyDef()
		bd.Type = box2d.B2BodyType.B2_dynamicBody
		bd.Position.Set(0, y)
		body := world.CreateBody(&bd)

		shape := box2d.MakeB2PolygonShape()
		shape.SetAsBox(0.5, 0.5)
		fd := box2d.MakeB2FixtureDef()
		fd.Shape = &shape
		fd.Density = 1
		fd.Filter.GroupIndex = -3
		body.CreateFixtureFromDef(&fd)
		return body
	}

	low := makeMember(0.5)
	high := makeMember(2)

	for i := 0; i < 90; i++ {
		world.Step(dt, 8, 3)
	}

	// The upper box falls through its group mate and lands on the ground.
	if math.Abs(high.GetPosition().Y-low.GetPosition().Y) > 0.05 {
		t.Fatalf("group members collided: low %v high %v", low.GetPosition(), high.GetPosition())
	}
}

func TestQueryAABBAndRayCast(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	near := addBox(world, 2, 0, 0.5, 0.5)
	far := addBox(world, 6, 0, 0.5, 0.5)
	addBox(world, 0, 8, 0.5, 0.5)
	world.Step(dt, 8, 3)

	var found []*box2d.B2Body
	world.QueryAABB(func(fixture *box2d.B2Fixture) bool {
		found = append(found, fixture.GetBody())
		return true
	}, box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(1, -1), box2d.MakeB2Vec2(7, 1)))
	if len(found) != 2 {
		t.Fatalf("query found %d bodies, want 2", len(found))
	}

	// Closest hit by clipping.
	var hit *box2d.B2Body
	var hitPoint box2d.B2Vec2
	world.RayCast(func(fixture *box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) box2d.B2RayCastVerdict {
		hit = fixture.GetBody()
		hitPoint = point
		return box2d.B2RayCastContinue(fraction)
	}, box2d.MakeB2Vec2(-2, 0), box2d.MakeB2Vec2(10, 0))

	if hit != near {
		t.Fatalf("closest hit is not the near box")
	}
	if math.Abs(hitPoint.X-1.5) > 1e-6 {
		t.Fatalf("hit point = %v, want x=1.5", hitPoint)
	}

	// All hits.
	hits := map[*box2d.B2Body]bool{}
	world.RayCast(func(fixture *box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) box2d.B2RayCastVerdict {
		hits[fixture.GetBody()] = true
		return box2d.B2RayCastContinue(1)
	}, box2d.MakeB2Vec2(-2, 0), box2d.MakeB2Vec2(10, 0))
	if len(hits) != 2 || !hits[near] || !hits[far] {
		t.Fatalf("ray hits = %d", len(hits))
	}
}

type goodbyeCounter struct {
	fixtures, joints int
}

func (g *goodbyeCounter) SayGoodbyeToFixture(fixture *box2d.B2Fixture) { g.fixtures++ }
func (g *goodbyeCounter) SayGoodbyeToJoint(joint box2d.B2JointInterface) { g.joints++ }

func TestDestroyBodyCleansUp(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	goodbye := &goodbyeCounter{}
	world.SetDestructionListener(goodbye)

	ground := addGround(world)
	a := addBox(world, 0, 0.5, 0.5, 0.5)
	b := addBox(world, 3, 0.5, 0.5, 0.5)

	jd := box2d.MakeB2DistanceJointDef()
	jd.Initialize(a, b, a.GetPosition(), b.GetPosition())
	world.CreateJoint(&jd)

	for i := 0; i < 10; i++ {
		world.Step(dt, 8, 3)
	}
	if world.GetContactCount() != 2 {
		t.Fatalf("contacts = %d, want 2", world.GetContactCount())
	}

	world.DestroyBody(a)

	if goodbye.joints != 1 || goodbye.fixtures != 1 {
		t.Fatalf("goodbye joints=%d fixtures=%d", goodbye.joints, goodbye.fixtures)
	}
	if world.GetJointCount() != 0 || len(b.GetJointList()) != 0 {
		t.Fatalf("joint survived body destruction")
	}
	if world.GetContactCount() != 1 || len(ground.GetContactList()) != 1 {
		t.Fatalf("contacts = %d after destroy", world.GetContactCount())
	}
	if world.GetBodyCount() != 2 || world.GetProxyCount() != 2 {
		t.Fatalf("bodies = %d proxies = %d", world.GetBodyCount(), world.GetProxyCount())
	}

	// Remaining bodies keep stepping.
	for i := 0; i < 10; i++ {
		world.Step(dt, 8, 3)
	}
	for i, body := range world.GetBodyList() {
		if body == a {
			t.Fatalf("destroyed body still listed at %d", i)
		}
	}
}

func TestDestroyJointRestoresCollision(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	a := addBox(world, 0, 0, 0.5, 0.5)
	b := addBox(world, 0.8, 0, 0.5, 0.5)

	jd := box2d.MakeB2RevoluteJointDef()
	jd.Initialize(a, b, box2d.MakeB2Vec2(0.4, 0))
	joint := world.CreateJoint(&jd)

	world.Step(dt, 8, 3)
	if world.GetContactCount() != 0 {
		t.Fatalf("connected bodies collide: %d contacts", world.GetContactCount())
	}

	world.DestroyJoint(joint)
	world.Step(dt, 8, 3)
	if world.GetContactCount() != 1 {
		t.Fatalf("contacts after joint removal = %d, want 1", world.GetContactCount())
	}
}

func TestZeroStepKeepsState(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	ball := addBall(world, 0, 5, 0.5)
	ball.ApplyForceToCenter(box2d.MakeB2Vec2(100, 0), true)

	world.Step(0, 8, 3)
	if p := ball.GetPosition(); p.X != 0 || p.Y != 5 {
		t.Fatalf("zero step moved the ball to %v", p)
	}

	world.Step(dt, 8, 3)
	if ball.GetLinearVelocity().X != 0 {
		t.Fatalf("force survived the zero step: v=%v", ball.GetLinearVelocity())
	}
}

func TestBallDroppedOnThickGround(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))

	bd := box2d.MakeB2BodyDef()
	ground := world.CreateBody(&bd)
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(50, 10)
	ground.CreateFixture(&shape, 0)

	ball := addBall(world, 0, 10, 0.5)
	for i := 0; i < 120; i++ {
		world.Step(dt, 8, 3)
	}

	if y := ball.GetPosition().Y; math.Abs(y-10.5) > 0.01 {
		t.Fatalf("ball center at y=%v, want 10.5", y)
	}
	if vy := ball.GetLinearVelocity().Y; math.Abs(vy) > 0.05 {
		t.Fatalf("ball still moving, vy=%v", vy)
	}
}

func TestWorldProfileAndAutoClearForces(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	ball := addBall(world, 0, 0, 0.5)

	world.SetAutoClearForces(false)
	ball.ApplyForceToCenter(box2d.MakeB2Vec2(10, 0), true)
	world.Step(dt, 8, 3)
	world.Step(dt, 8, 3)
	v1 := ball.GetLinearVelocity().X

	world.ClearForces()
	world.Step(dt, 8, 3)
	if v2 := ball.GetLinearVelocity().X; math.Abs(v2-v1) > 1e-12 {
		t.Fatalf("velocity changed after ClearForces: %v -> %v", v1, v2)
	}
	if v1 <= 0 {
		t.Fatalf("kept force had no effect, v=%v", v1)
	}
	if world.GetProfile().Step < 0 {
		t.Fatalf("negative step time %v", world.GetProfile().Step)
	}
}
