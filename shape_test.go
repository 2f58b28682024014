package box2d_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/b2classic/box2d"
)

func TestAABBRayCast(t *testing.T) {
	box := box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(0, 0), box2d.MakeB2Vec2(1, 1))

	var out box2d.B2RayCastOutput
	in := box2d.B2RayCastInput{P1: box2d.MakeB2Vec2(-1, 0.5), P2: box2d.MakeB2Vec2(2, 0.5), MaxFraction: 1}
	if !box.RayCast(&out, in) {
		t.Fatalf("ray through the box missed")
	}
	if !near(out.Fraction, 1.0/3.0, 1e-12) || out.Normal != box2d.MakeB2Vec2(-1, 0) {
		t.Fatalf("hit at %v normal %v", out.Fraction, out.Normal)
	}

	in.MaxFraction = 0.2
	if box.RayCast(&out, in) {
		t.Fatalf("ray clipped before the box still hit")
	}

	in = box2d.B2RayCastInput{P1: box2d.MakeB2Vec2(0.5, 0.5), P2: box2d.MakeB2Vec2(3, 0.5), MaxFraction: 1}
	if box.RayCast(&out, in) {
		t.Fatalf("ray starting inside reported a hit")
	}
}

func manifoldWithKeys(keys ...uint32) box2d.B2Manifold {
	var m box2d.B2Manifold
	for i, k := range keys {
		m.Points[i].Id = box2d.MakeB2ContactIDFromKey(k)
	}
	m.PointCount = len(keys)
	return m
}

func TestGetPointStates(t *testing.T) {
	var s1, s2 [box2d.B2_maxManifoldPoints]uint8
	box2d.B2GetPointStates(&s1, &s2, manifoldWithKeys(0x0101, 0x0202), manifoldWithKeys(0x0202, 0x0303))

	want1 := [box2d.B2_maxManifoldPoints]uint8{box2d.B2PointState.B2_removeState, box2d.B2PointState.B2_persistState}
	want2 := [box2d.B2_maxManifoldPoints]uint8{box2d.B2PointState.B2_persistState, box2d.B2PointState.B2_addState}
	if s1 != want1 || s2 != want2 {
		t.Fatalf("states = %v %v, want %v %v", s1, s2, want1, want2)
	}

	box2d.B2GetPointStates(&s1, &s2, manifoldWithKeys(), manifoldWithKeys(0x0101))
	if s1[0] != box2d.B2PointState.B2_nullState || s2[0] != box2d.B2PointState.B2_addState {
		t.Fatalf("states from empty = %v %v", s1, s2)
	}
}

func TestSubmergedArea(t *testing.T) {
	up := box2d.MakeB2Vec2(0, 1)
	identity := transform(0, 0, 0)

	_, box := boxProxy(0.5, 0.5)
	var c box2d.B2Vec2
	if a := box.ComputeSubmergedArea(up, 0, identity, &c); !near(a, 0.5, 1e-12) || !nearVec(c, box2d.MakeB2Vec2(0, -0.25), 1e-12) {
		t.Fatalf("half box: area %v centroid %v", a, c)
	}
	if a := box.ComputeSubmergedArea(up, 5, identity, &c); !near(a, 1, 1e-12) || !nearVec(c, box2d.MakeB2Vec2(0, 0), 1e-12) {
		t.Fatalf("sunk box: area %v centroid %v", a, c)
	}
	if a := box.ComputeSubmergedArea(up, -5, identity, &c); a != 0 {
		t.Fatalf("dry box: area %v", a)
	}

	circle := box2d.MakeB2CircleShape()
	circle.M_radius = 1
	if a := circle.ComputeSubmergedArea(up, 0, identity, &c); !near(a, math.Pi/2, 1e-12) || !near(c.Y, -4/(3*math.Pi), 1e-12) {
		t.Fatalf("half circle: area %v centroid %v", a, c)
	}

	edge := box2d.MakeB2EdgeShape()
	edge.Set(box2d.MakeB2Vec2(-1, -1), box2d.MakeB2Vec2(1, -1))
	if a := edge.ComputeSubmergedArea(up, 0, identity, &c); !near(a, 1, 1e-12) || !nearVec(c, box2d.MakeB2Vec2(0, -2.0/3.0), 1e-12) {
		t.Fatalf("edge: area %v centroid %v", a, c)
	}
}

func TestShapeTestPoint(t *testing.T) {
	_, box := boxProxy(1, 0.5)
	xf := transform(2, 0, math.Pi/2)
	if !box.TestPoint(xf, box2d.MakeB2Vec2(2, 0.9)) {
		t.Fatalf("rotated box should contain (2,0.9)")
	}
	if box.TestPoint(xf, box2d.MakeB2Vec2(2.9, 0)) {
		t.Fatalf("rotated box should not contain (2.9,0)")
	}

	circle := box2d.MakeB2CircleShape()
	circle.M_radius = 0.5
	circle.M_p.Set(1, 0)
	if !circle.TestPoint(transform(0, 0, 0), box2d.MakeB2Vec2(1.4, 0)) || circle.TestPoint(transform(0, 0, 0), box2d.MakeB2Vec2(0.4, 0)) {
		t.Fatalf("circle containment is wrong")
	}

	edge := box2d.MakeB2EdgeShape()
	edge.Set(box2d.MakeB2Vec2(-1, 0), box2d.MakeB2Vec2(1, 0))
	if edge.TestPoint(transform(0, 0, 0), box2d.MakeB2Vec2(0, 0)) {
		t.Fatalf("edges contain no points")
	}
}

func TestPolygonSetBuildsHull(t *testing.T) {
	points := []box2d.B2Vec2{
		box2d.MakeB2Vec2(-1, -1),
		box2d.MakeB2Vec2(0, 0), // interior
		box2d.MakeB2Vec2(1, 1),
		box2d.MakeB2Vec2(1, -1),
		box2d.MakeB2Vec2(1, -1.001), // welded
		box2d.MakeB2Vec2(-1, 1),
	}
	poly := box2d.MakeB2PolygonShape()
	poly.Set(points)

	if poly.M_count != 4 {
		t.Fatalf("hull has %d vertices, want 4", poly.M_count)
	}
	if !poly.Validate() {
		t.Fatalf("hull is not convex and counter clockwise: %v", poly.M_vertices[:poly.M_count])
	}
	if !nearVec(poly.M_centroid, box2d.MakeB2Vec2(0, 0), 1e-12) {
		t.Fatalf("centroid = %v", poly.M_centroid)
	}

	var md box2d.B2MassData
	poly.ComputeMass(&md, 2)
	if !near(md.Mass, 8, 1e-12) {
		t.Fatalf("mass = %v, want 8", md.Mass)
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		a, _ := boxProxy(0.2+rng.Float64(), 0.2+rng.Float64())
		b := circleProxy(0.1 + rng.Float64())
		xfA := transform(rng.Float64()*6-3, rng.Float64()*6-3, rng.Float64()*2*math.Pi)
		xfB := transform(rng.Float64()*6-3, rng.Float64()*6-3, rng.Float64()*2*math.Pi)

		ab := distance(a, b, xfA, xfB, true)
		ba := distance(b, a, xfB, xfA, true)
		if !near(ab.Distance, ba.Distance, 1e-5) {
			t.Fatalf("case %d: d(A,B)=%v d(B,A)=%v", i, ab.Distance, ba.Distance)
		}
	}
}

func TestManifoldPointCap(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	_, a := boxProxy(0.5, 0.5)
	_, b := boxProxy(0.7, 0.3)
	ball := box2d.MakeB2CircleShape()
	ball.M_radius = 0.4

	for i := 0; i < 500; i++ {
		xfA := transform(0, 0, rng.Float64()*2*math.Pi)
		xfB := transform(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2*math.Pi)

		var m box2d.B2Manifold
		box2d.B2CollidePolygons(&m, a, xfA, b, xfB)
		if m.PointCount > 2 {
			t.Fatalf("polygons produced %d points", m.PointCount)
		}
		box2d.B2CollidePolygonAndCircle(&m, a, xfA, &ball, xfB)
		if m.PointCount > 1 {
			t.Fatalf("polygon and circle produced %d points", m.PointCount)
		}
		box2d.B2CollideCircles(&m, &ball, xfA, &ball, xfB)
		if m.PointCount > 1 {
			t.Fatalf("circles produced %d points", m.PointCount)
		}
	}
}
