package box2d_test

import (
	"math"
	"testing"

	"github.com/b2classic/box2d"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func nearVec(a, b box2d.B2Vec2, tol float64) bool {
	return near(a.X, b.X, tol) && near(a.Y, b.Y, tol)
}

func TestBoxMassProperties(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	body := addBox(world, 2, 3, 0.5, 0.5)

	if !near(body.GetMass(), 1, 1e-12) {
		t.Fatalf("mass = %v, want 1", body.GetMass())
	}
	if !nearVec(body.GetLocalCenter(), box2d.MakeB2Vec2(0, 0), 1e-12) {
		t.Fatalf("local center = %v", body.GetLocalCenter())
	}
	if !near(body.GetInertia(), 1.0/6.0, 1e-12) {
		t.Fatalf("inertia = %v, want 1/6", body.GetInertia())
	}

	body.SetFixedRotation(true)
	if body.GetInertia() != 0 {
		t.Fatalf("fixed rotation inertia = %v", body.GetInertia())
	}
	body.ApplyAngularImpulse(1, true)
	if body.GetAngularVelocity() != 0 {
		t.Fatalf("fixed rotation body spun at %v", body.GetAngularVelocity())
	}
}

func TestSetMassDataMovesCenter(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	body := addBox(world, 0, 0, 0.5, 0.5)

	md := box2d.B2MassData{Mass: 2, Center: box2d.MakeB2Vec2(1, 0), I: 5}
	body.SetMassData(&md)

	if !near(body.GetMass(), 2, 1e-12) {
		t.Fatalf("mass = %v", body.GetMass())
	}
	if !nearVec(body.GetWorldCenter(), box2d.MakeB2Vec2(1, 0), 1e-12) {
		t.Fatalf("world center = %v", body.GetWorldCenter())
	}
	// Inertia is reported about the origin.
	if !near(body.GetInertia(), 5, 1e-12) {
		t.Fatalf("inertia = %v, want 5", body.GetInertia())
	}

	body.ResetMassData()
	if !near(body.GetMass(), 1, 1e-12) || !nearVec(body.GetWorldCenter(), box2d.MakeB2Vec2(0, 0), 1e-12) {
		t.Fatalf("reset mass = %v center %v", body.GetMass(), body.GetWorldCenter())
	}
}

func TestPointConversions(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	body := addBox(world, 1, 2, 0.5, 0.5)
	body.SetTransform(box2d.MakeB2Vec2(1, 2), math.Pi/2)

	p := body.GetWorldPoint(box2d.MakeB2Vec2(1, 0))
	if !nearVec(p, box2d.MakeB2Vec2(1, 3), 1e-12) {
		t.Fatalf("world point = %v, want (1,3)", p)
	}
	if q := body.GetLocalPoint(p); !nearVec(q, box2d.MakeB2Vec2(1, 0), 1e-12) {
		t.Fatalf("local point = %v", q)
	}
	if v := body.GetWorldVector(box2d.MakeB2Vec2(0, 1)); !nearVec(v, box2d.MakeB2Vec2(-1, 0), 1e-12) {
		t.Fatalf("world vector = %v", v)
	}
	if v := body.GetLocalVector(box2d.MakeB2Vec2(-1, 0)); !nearVec(v, box2d.MakeB2Vec2(0, 1), 1e-12) {
		t.Fatalf("local vector = %v", v)
	}

	body.SetAngularVelocity(2)
	v := body.GetLinearVelocityFromWorldPoint(box2d.MakeB2Vec2(2, 2))
	if !nearVec(v, box2d.MakeB2Vec2(0, 2), 1e-12) {
		t.Fatalf("point velocity = %v, want (0,2)", v)
	}
}

func TestImpulsesAndSleepingInput(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	body := addBox(world, 0, 0, 0.5, 0.5)

	body.ApplyLinearImpulse(box2d.MakeB2Vec2(0, 1), box2d.MakeB2Vec2(0.5, 0), true)
	if !nearVec(body.GetLinearVelocity(), box2d.MakeB2Vec2(0, 1), 1e-12) {
		t.Fatalf("velocity = %v", body.GetLinearVelocity())
	}
	// Off-center impulse spins the box: 0.5 * 1 / (1/6).
	if !near(body.GetAngularVelocity(), 3, 1e-12) {
		t.Fatalf("angular velocity = %v, want 3", body.GetAngularVelocity())
	}

	body.SetAwake(false)
	if body.GetLinearVelocity().LengthSquared() != 0 {
		t.Fatalf("sleeping body kept velocity %v", body.GetLinearVelocity())
	}
	body.ApplyForceToCenter(box2d.MakeB2Vec2(1, 0), false)
	world.Step(dt, 8, 3)
	if body.IsAwake() || body.GetLinearVelocity().X != 0 {
		t.Fatalf("force without wake moved a sleeping body")
	}
}

func TestStaticBodyIgnoresVelocity(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	ground := addGround(world)
	ground.SetLinearVelocity(box2d.MakeB2Vec2(1, 0))
	ground.ApplyForceToCenter(box2d.MakeB2Vec2(100, 0), true)

	world.Step(dt, 8, 3)
	if ground.GetLinearVelocity().X != 0 || ground.GetPosition().X != 0 {
		t.Fatalf("static body moved: v=%v p=%v", ground.GetLinearVelocity(), ground.GetPosition())
	}
	if ground.GetMass() != 0 {
		t.Fatalf("static mass = %v", ground.GetMass())
	}
}

func TestKinematicBodyFollowsVelocity(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	body := addBox(world, 0, 5, 0.5, 0.5)
	body.SetType(box2d.B2BodyType.B2_kinematicBody)
	body.SetLinearVelocity(box2d.MakeB2Vec2(1, 0))

	for i := 0; i < 60; i++ {
		world.Step(dt, 8, 3)
	}
	if p := body.GetPosition(); !nearVec(p, box2d.MakeB2Vec2(1, 5), 1e-9) {
		t.Fatalf("kinematic body at %v, want (1,5)", p)
	}
}

func TestSetTypeToStaticStopsFalling(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	addGround(world)
	box := addBox(world, 0, 0.5, 0.5, 0.5)
	for i := 0; i < 10; i++ {
		world.Step(dt, 8, 3)
	}
	if world.GetContactCount() != 1 {
		t.Fatalf("contacts = %d before SetType", world.GetContactCount())
	}

	// Static against static never gets a contact.
	box.SetType(box2d.B2BodyType.B2_staticBody)
	world.Step(dt, 8, 3)
	if world.GetContactCount() != 0 {
		t.Fatalf("contacts = %d after making the box static", world.GetContactCount())
	}
	if box.GetLinearVelocity().LengthSquared() != 0 {
		t.Fatalf("static box kept velocity %v", box.GetLinearVelocity())
	}
}

func TestSetActiveRemovesProxies(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, -10))
	addGround(world)
	box := addBox(world, 0, 0.5, 0.5, 0.5)
	world.Step(dt, 8, 3)

	if world.GetProxyCount() != 2 {
		t.Fatalf("proxies = %d, want 2", world.GetProxyCount())
	}

	box.SetActive(false)
	if world.GetProxyCount() != 1 || world.GetContactCount() != 0 {
		t.Fatalf("inactive body: proxies %d contacts %d", world.GetProxyCount(), world.GetContactCount())
	}
	y := box.GetPosition().Y
	world.Step(dt, 8, 3)
	if box.GetPosition().Y != y {
		t.Fatalf("inactive body moved from %v to %v", y, box.GetPosition().Y)
	}

	box.SetActive(true)
	world.Step(dt, 8, 3)
	if world.GetProxyCount() != 2 || world.GetContactCount() != 1 {
		t.Fatalf("reactivated body: proxies %d contacts %d", world.GetProxyCount(), world.GetContactCount())
	}
}

func TestSetTransformTeleports(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	box := addBox(world, 0, 0, 0.5, 0.5)
	box.SetTransform(box2d.MakeB2Vec2(10, -4), 0.25)

	if !nearVec(box.GetPosition(), box2d.MakeB2Vec2(10, -4), 1e-12) || box.GetAngle() != 0.25 {
		t.Fatalf("transform = %v angle %v", box.GetPosition(), box.GetAngle())
	}
	hit := false
	world.QueryAABB(func(f *box2d.B2Fixture) bool {
		hit = f.GetBody() == box
		return false
	}, box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(9.9, -4.1), box2d.MakeB2Vec2(10.1, -3.9)))
	if !hit {
		t.Fatalf("broad-phase did not follow the teleport")
	}
}

func TestDestroyFixtureResetsMass(t *testing.T) {
	world := newWorld(box2d.MakeB2Vec2(0, 0))
	body := addBox(world, 0, 0, 0.5, 0.5)

	shape := box2d.MakeB2CircleShape()
	shape.M_radius = 0.5
	shape.M_p.Set(2, 0)
	ball := body.CreateFixture(&shape, 1)

	if !near(body.GetMass(), 1+math.Pi/4, 1e-9) {
		t.Fatalf("mass with ball = %v", body.GetMass())
	}
	if body.GetLocalCenter().X <= 0 {
		t.Fatalf("center did not shift toward the ball: %v", body.GetLocalCenter())
	}

	body.DestroyFixture(ball)
	if len(body.GetFixtureList()) != 1 || !near(body.GetMass(), 1, 1e-12) {
		t.Fatalf("after destroy: %d fixtures mass %v", len(body.GetFixtureList()), body.GetMass())
	}
	if world.GetProxyCount() != 1 {
		t.Fatalf("proxies = %d", world.GetProxyCount())
	}
}
