package box2d_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/b2classic/box2d"
)

func randomAABB(rng *rand.Rand) box2d.B2AABB {
	x := rng.Float64()*100 - 50
	y := rng.Float64()*100 - 50
	w := rng.Float64()*2 + 0.1
	h := rng.Float64()*2 + 0.1
	return box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(x, y), box2d.MakeB2Vec2(x+w, y+h))
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func TestDynamicTreeQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tree := box2d.MakeB2DynamicTree()

	live := map[int]bool{}
	for i := 0; i < 200; i++ {
		aabb := randomAABB(rng)
		id := tree.CreateProxy(aabb, i)
		live[id] = true

		fat := tree.GetFatAABB(id)
		if !fat.Contains(aabb) {
			t.Fatalf("fat AABB %v does not contain %v", fat, aabb)
		}
	}

	// Move and destroy a few proxies.
	for _, id := range sortedKeys(live) {
		switch id % 5 {
		case 0:
			tree.DestroyProxy(id)
			delete(live, id)
		case 1:
			aabb := randomAABB(rng)
			tree.MoveProxy(id, aabb, box2d.MakeB2Vec2(0.5, -0.25))
			if !tree.GetFatAABB(id).Contains(aabb) {
				t.Fatalf("moved proxy %d lost its AABB", id)
			}
		}
	}

	tree.Rebalance(32)
	tree.Validate()

	if h := tree.GetHeight(); h <= 0 || h >= len(live) {
		t.Fatalf("height %d for %d leaves", h, len(live))
	}

	for q := 0; q < 50; q++ {
		query := randomAABB(rng)
		query.UpperBound.OperatorPlusInplace(box2d.MakeB2Vec2(5, 5))

		got := map[int]bool{}
		tree.Query(func(proxyId int) bool {
			got[proxyId] = true
			return true
		}, query)

		for id := range live {
			want := box2d.B2TestOverlapBoundingBoxes(tree.GetFatAABB(id), query)
			if want != got[id] {
				t.Fatalf("query %d: proxy %d overlap=%v reported=%v", q, id, want, got[id])
			}
		}
		for id := range got {
			if !live[id] {
				t.Fatalf("query reported destroyed proxy %d", id)
			}
		}
	}
}

func TestDynamicTreeQueryStops(t *testing.T) {
	tree := box2d.MakeB2DynamicTree()
	for i := 0; i < 10; i++ {
		x := float64(i)
		tree.CreateProxy(box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(x, 0), box2d.MakeB2Vec2(x+0.5, 0.5)), i)
	}

	calls := 0
	tree.Query(func(proxyId int) bool {
		calls++
		return false
	}, box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(-1, -1), box2d.MakeB2Vec2(20, 2)))

	if calls != 1 {
		t.Fatalf("query continued after returning false: %d calls", calls)
	}
}

func TestDynamicTreeRayCast(t *testing.T) {
	tree := box2d.MakeB2DynamicTree()

	boxes := map[int]float64{}
	for i := 0; i < 8; i++ {
		x := float64(2 * i)
		id := tree.CreateProxy(box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(x, -0.5), box2d.MakeB2Vec2(x+1, 0.5)), i)
		boxes[id] = x
	}
	// Off the ray.
	tree.CreateProxy(box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(4, 5), box2d.MakeB2Vec2(5, 6)), -1)

	input := box2d.MakeB2RayCastInput()
	input.P1 = box2d.MakeB2Vec2(-5, 0)
	input.P2 = box2d.MakeB2Vec2(25, 0)
	input.MaxFraction = 1

	hits := map[int]bool{}
	tree.RayCast(func(in box2d.B2RayCastInput, proxyId int) box2d.B2RayCastVerdict {
		hits[proxyId] = true
		return box2d.B2RayCastContinue(in.MaxFraction)
	}, input)

	if len(hits) != len(boxes) {
		t.Fatalf("ray hit %d proxies, want %d", len(hits), len(boxes))
	}
	for id := range hits {
		if _, ok := boxes[id]; !ok {
			t.Fatalf("ray reported proxy %d off the ray", id)
		}
	}

	// Clipping to the first box only keeps boxes that start before the clip.
	closest := math.MaxFloat64
	tree.RayCast(func(in box2d.B2RayCastInput, proxyId int) box2d.B2RayCastVerdict {
		x := boxes[proxyId]
		fraction := (x - box2d.B2_aabbExtension + 5) / 30
		if fraction < in.MaxFraction {
			closest = math.Min(closest, x)
			return box2d.B2RayCastContinue(fraction)
		}
		return box2d.B2RayCastContinue(in.MaxFraction)
	}, input)
	if closest != 0 {
		t.Fatalf("closest box at %v, want 0", closest)
	}

	calls := 0
	tree.RayCast(func(in box2d.B2RayCastInput, proxyId int) box2d.B2RayCastVerdict {
		calls++
		return box2d.B2RayCastStop()
	}, input)
	if calls != 1 {
		t.Fatalf("ray cast continued after stop: %d calls", calls)
	}
}

func TestBroadPhasePairs(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	bp := box2d.MakeB2BroadPhase()

	ids := make([]int, 0, 100)
	for i := 0; i < 100; i++ {
		aabb := randomAABB(rng)
		aabb.LowerBound.OperatorScalarMulInplace(0.2)
		aabb.UpperBound.OperatorScalarMulInplace(0.2)
		if !aabb.IsValid() {
			aabb.UpperBound = box2d.B2Vec2Add(aabb.LowerBound, box2d.MakeB2Vec2(0.3, 0.3))
		}
		ids = append(ids, bp.CreateProxy(aabb, i))
	}

	type pair struct{ a, b int }
	seen := map[pair]bool{}
	bp.UpdatePairs(func(userDataA, userDataB interface{}) {
		a, b := userDataA.(int), userDataB.(int)
		if a == b {
			t.Fatalf("proxy %d paired with itself", a)
		}
		if a > b {
			a, b = b, a
		}
		p := pair{a, b}
		if seen[p] {
			t.Fatalf("pair %v reported twice", p)
		}
		seen[p] = true
		if !bp.TestOverlap(ids[a], ids[b]) {
			t.Fatalf("pair %v does not overlap", p)
		}
	})

	// Every proxy was new, so every overlapping pair must be reported.
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if bp.TestOverlap(ids[i], ids[j]) && !seen[pair{i, j}] {
				t.Fatalf("missed pair (%d, %d)", i, j)
			}
		}
	}

	// Nothing moved: no new pairs.
	bp.UpdatePairs(func(userDataA, userDataB interface{}) {
		t.Fatalf("unexpected pair after a quiet update")
	})

	if bp.GetProxyCount() != 100 {
		t.Fatalf("proxy count = %d", bp.GetProxyCount())
	}
	bp.DestroyProxy(ids[0])
	if bp.GetProxyCount() != 99 {
		t.Fatalf("proxy count after destroy = %d", bp.GetProxyCount())
	}
	bp.Validate()
}

func TestBroadPhaseDestroyedProxyNotPaired(t *testing.T) {
	bp := box2d.MakeB2BroadPhase()
	a := bp.CreateProxy(box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(0, 0), box2d.MakeB2Vec2(1, 1)), "a")
	b := bp.CreateProxy(box2d.MakeB2AABBFromBounds(box2d.MakeB2Vec2(0.5, 0.5), box2d.MakeB2Vec2(1.5, 1.5)), "b")
	bp.DestroyProxy(b)

	bp.UpdatePairs(func(userDataA, userDataB interface{}) {
		t.Fatalf("pair %v/%v reported after destroy", userDataA, userDataB)
	})
	_ = a
}

func boxProxy(hx, hy float64) (box2d.B2DistanceProxy, *box2d.B2PolygonShape) {
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(hx, hy)
	proxy := box2d.MakeB2DistanceProxy()
	proxy.Set(&shape)
	return proxy, &shape
}

func circleProxy(r float64) box2d.B2DistanceProxy {
	shape := box2d.MakeB2CircleShape()
	shape.M_radius = r
	proxy := box2d.MakeB2DistanceProxy()
	proxy.Set(&shape)
	return proxy
}

func transform(x, y, angle float64) box2d.B2Transform {
	xf := box2d.MakeB2Transform()
	xf.Set(box2d.MakeB2Vec2(x, y), angle)
	return xf
}

func distance(proxyA, proxyB box2d.B2DistanceProxy, xfA, xfB box2d.B2Transform, useRadii bool) box2d.B2DistanceOutput {
	input := box2d.MakeB2DistanceInput()
	input.ProxyA = proxyA
	input.ProxyB = proxyB
	input.TransformA = xfA
	input.TransformB = xfB
	input.UseRadii = useRadii

	cache := box2d.MakeB2SimplexCache()
	output := box2d.MakeB2DistanceOutput()
	box2d.B2Distance(&output, &cache, &input)
	return output
}

func TestDistanceBoxes(t *testing.T) {
	a, _ := boxProxy(0.5, 0.5)
	b, _ := boxProxy(0.5, 0.5)

	xfA := transform(0, 0, 0)
	xfB := transform(3, 0.25, 0)

	ab := distance(a, b, xfA, xfB, false)
	ba := distance(b, a, xfB, xfA, false)

	if math.Abs(ab.Distance-2) > 1e-9 {
		t.Fatalf("distance = %v, want 2", ab.Distance)
	}
	if math.Abs(ab.Distance-ba.Distance) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", ab.Distance, ba.Distance)
	}
	if math.Abs(ab.PointA.X-0.5) > 1e-9 || math.Abs(ab.PointB.X-2.5) > 1e-9 {
		t.Fatalf("witness points %v %v", ab.PointA, ab.PointB)
	}

	// Radii shrink the gap by both skins.
	withRadii := distance(a, b, xfA, xfB, true)
	if math.Abs(withRadii.Distance-(2-2*box2d.B2_polygonRadius)) > 1e-9 {
		t.Fatalf("distance with radii = %v", withRadii.Distance)
	}
}

func TestDistanceCircles(t *testing.T) {
	a := circleProxy(0.5)
	b := circleProxy(1)

	out := distance(a, b, transform(0, 0, 0), transform(0, 4, 0), true)
	if math.Abs(out.Distance-2.5) > 1e-9 {
		t.Fatalf("distance = %v, want 2.5", out.Distance)
	}
	if math.Abs(out.PointA.Y-0.5) > 1e-9 || math.Abs(out.PointB.Y-3) > 1e-9 {
		t.Fatalf("witness points %v %v", out.PointA, out.PointB)
	}

	overlapping := distance(a, b, transform(0, 0, 0), transform(0, 1, 0), true)
	if overlapping.Distance != 0 {
		t.Fatalf("overlapping circles distance = %v", overlapping.Distance)
	}
}

func TestDistanceRotatedBoxCorner(t *testing.T) {
	a, _ := boxProxy(0.5, 0.5)
	b, _ := boxProxy(0.5, 0.5)

	// B is rotated 45 degrees so its corner points at A's face.
	out := distance(a, b, transform(0, 0, 0), transform(2, 0, math.Pi/4), false)
	want := 2 - 0.5 - math.Sqrt2/2
	if math.Abs(out.Distance-want) > 1e-9 {
		t.Fatalf("distance = %v, want %v", out.Distance, want)
	}
}

func TestTimeOfImpactCircleAgainstBox(t *testing.T) {
	box, _ := boxProxy(0.5, 0.5)
	ball := circleProxy(0.5)

	input := box2d.MakeB2TOIInput()
	input.ProxyA = box
	input.ProxyB = ball
	input.SweepA = box2d.B2Sweep{}
	input.SweepB = box2d.B2Sweep{C0: box2d.MakeB2Vec2(-5, 0), C: box2d.MakeB2Vec2(5, 0)}

	output := box2d.MakeB2TOIOutput()
	box2d.B2TimeOfImpact(&output, &input)

	if output.State != box2d.B2TOIOutput_State.E_touching {
		t.Fatalf("state = %d, want touching", output.State)
	}

	// The ball center stops at the combined skin minus the tolerance.
	radius := 0.5 + box2d.B2_polygonRadius
	want := (4.5 - (radius - box2d.B2_linearSlop)) / 10
	if math.Abs(output.T-want) > 0.005 {
		t.Fatalf("toi = %v, want about %v", output.T, want)
	}

	var xfA, xfB box2d.B2Transform
	input.SweepA.GetTransform(&xfA, output.T)
	input.SweepB.GetTransform(&xfB, output.T)
	sep := distance(box, ball, xfA, xfB, false).Distance
	if sep < radius-2*box2d.B2_linearSlop || sep > radius {
		t.Fatalf("separation at impact = %v", sep)
	}
}

func TestTimeOfImpactMiss(t *testing.T) {
	box, _ := boxProxy(0.5, 0.5)
	ball := circleProxy(0.25)

	input := box2d.MakeB2TOIInput()
	input.ProxyA = box
	input.ProxyB = ball
	input.SweepB = box2d.B2Sweep{C0: box2d.MakeB2Vec2(-5, 3), C: box2d.MakeB2Vec2(5, 3)}

	output := box2d.MakeB2TOIOutput()
	box2d.B2TimeOfImpact(&output, &input)

	if output.State != box2d.B2TOIOutput_State.E_separated || output.T != 1 {
		t.Fatalf("state = %d t = %v, want separated at 1", output.State, output.T)
	}
}

func TestCollidePolygons(t *testing.T) {
	_, a := boxProxy(0.5, 0.5)
	_, b := boxProxy(0.5, 0.5)

	var m box2d.B2Manifold
	box2d.B2CollidePolygons(&m, a, transform(0, 0, 0), b, transform(0.2, 0.95, 0))
	if m.PointCount != 2 {
		t.Fatalf("stacked boxes: %d points, want 2", m.PointCount)
	}

	var wm box2d.B2WorldManifold
	wm.Initialize(&m, transform(0, 0, 0), a.M_radius, transform(0.2, 0.95, 0), b.M_radius)
	if math.Abs(wm.Normal.Y-1) > 1e-9 {
		t.Fatalf("normal = %v, want +y", wm.Normal)
	}
	if m.Points[0].Id.Key() == m.Points[1].Id.Key() {
		t.Fatalf("manifold points share id %x", m.Points[0].Id.Key())
	}

	box2d.B2CollidePolygons(&m, a, transform(0, 0, 0), b, transform(3, 0, 0))
	if m.PointCount != 0 {
		t.Fatalf("separated boxes: %d points", m.PointCount)
	}
}

func TestCollideCircles(t *testing.T) {
	a := box2d.MakeB2CircleShape()
	a.M_radius = 0.5
	b := box2d.MakeB2CircleShape()
	b.M_radius = 0.5

	var m box2d.B2Manifold
	box2d.B2CollideCircles(&m, &a, transform(0, 0, 0), &b, transform(0.9, 0, 0))
	if m.PointCount != 1 || m.Type != box2d.B2Manifold_Type.E_circles {
		t.Fatalf("overlapping circles: %d points type %d", m.PointCount, m.Type)
	}

	box2d.B2CollideCircles(&m, &a, transform(0, 0, 0), &b, transform(1.1, 0, 0))
	if m.PointCount != 0 {
		t.Fatalf("separated circles: %d points", m.PointCount)
	}
}

func TestCollidePolygonAndCircle(t *testing.T) {
	_, box := boxProxy(0.5, 0.5)
	ball := box2d.MakeB2CircleShape()
	ball.M_radius = 0.25

	var m box2d.B2Manifold
	box2d.B2CollidePolygonAndCircle(&m, box, transform(0, 0, 0), &ball, transform(0, 0.7, 0))
	if m.PointCount != 1 || m.Type != box2d.B2Manifold_Type.E_faceA {
		t.Fatalf("circle on face: %d points type %d", m.PointCount, m.Type)
	}
	if math.Abs(m.LocalNormal.Y-1) > 1e-9 {
		t.Fatalf("local normal = %v", m.LocalNormal)
	}
}

func TestCollideEdgeAndPolygon(t *testing.T) {
	edge := box2d.MakeB2EdgeShape()
	edge.Set(box2d.MakeB2Vec2(-5, 0), box2d.MakeB2Vec2(5, 0))
	_, box := boxProxy(0.5, 0.5)

	var m box2d.B2Manifold
	box2d.B2CollideEdgeAndPolygon(&m, &edge, transform(0, 0, 0), box, transform(0, 0.49, 0))
	if m.PointCount < 1 || m.PointCount > box2d.B2_maxManifoldPoints {
		t.Fatalf("box on edge: %d points", m.PointCount)
	}
}

func TestContactIDKey(t *testing.T) {
	id := box2d.B2ContactID{ReferenceEdge: 1, IncidentEdge: 2, IncidentVertex: 0, Flip: 1}
	key := id.Key()
	if key != 1|2<<8|1<<24 {
		t.Fatalf("key = %#x", key)
	}
	if box2d.MakeB2ContactIDFromKey(key) != id {
		t.Fatalf("key %#x does not unpack to %+v", key, id)
	}
}

func TestClipSegmentToLine(t *testing.T) {
	var in [2]box2d.B2ClipVertex
	in[0].V = box2d.MakeB2Vec2(-1, 0)
	in[1].V = box2d.MakeB2Vec2(1, 0)

	var out [2]box2d.B2ClipVertex
	n := box2d.B2ClipSegmentToLine(&out, in, box2d.MakeB2Vec2(1, 0), 0.5)
	if n != 2 {
		t.Fatalf("clip kept %d points", n)
	}
	if math.Abs(out[1].V.X-0.5) > 1e-12 {
		t.Fatalf("clip point = %v, want x=0.5", out[1].V)
	}

	n = box2d.B2ClipSegmentToLine(&out, in, box2d.MakeB2Vec2(1, 0), -2)
	if n != 0 {
		t.Fatalf("fully clipped segment kept %d points", n)
	}
}
