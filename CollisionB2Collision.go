package box2d

import "math"

const B2_nullFeature uint8 = math.MaxUint8

/// B2ContactID names the pair of features that produced a contact point so
/// impulses can be matched from one step to the next.
type B2ContactID struct {
	ReferenceEdge  uint8
	IncidentEdge   uint8
	IncidentVertex uint8

	/// 1 when the reference face belongs to the second shape.
	Flip uint8
}

/// Key packs the four features into one word, reference edge lowest.
func (id B2ContactID) Key() uint32 {
	return uint32(id.Flip)<<24 | uint32(id.IncidentVertex)<<16 | uint32(id.IncidentEdge)<<8 | uint32(id.ReferenceEdge)
}

func MakeB2ContactIDFromKey(key uint32) B2ContactID {
	return B2ContactID{
		ReferenceEdge:  uint8(key),
		IncidentEdge:   uint8(key >> 8),
		IncidentVertex: uint8(key >> 16),
		Flip:           uint8(key >> 24),
	}
}

/// B2ManifoldPoint is stored across steps. LocalPoint is the center of
/// circle B for circle manifolds, the clip point on B for faceA and the
/// clip point on A for faceB. The impulses are warm starting state, not
/// reliable contact forces.
type B2ManifoldPoint struct {
	LocalPoint     B2Vec2
	NormalImpulse  float64
	TangentImpulse float64
	Id             B2ContactID
}

/// Manifold kinds. The reference frame of LocalPoint and LocalNormal depends
/// on the kind, which lets position correction follow the bodies as they move.
var B2Manifold_Type = struct {
	E_circles uint8
	E_faceA   uint8
	E_faceB   uint8
}{0, 1, 2}

/// B2Manifold is the contact patch of two convex shapes in local
/// coordinates. LocalNormal is unused for circle manifolds.
type B2Manifold struct {
	Points      [B2_maxManifoldPoints]B2ManifoldPoint
	LocalNormal B2Vec2
	LocalPoint  B2Vec2
	Type        uint8
	PointCount  int
}

/// B2WorldManifold is a manifold evaluated at the current transforms.
/// Normal points from A to B.
type B2WorldManifold struct {
	Normal B2Vec2
	Points [B2_maxManifoldPoints]B2Vec2
}

/// B2PointState classifies manifold points between two updates.
var B2PointState = struct {
	B2_nullState    uint8
	B2_addState     uint8
	B2_persistState uint8
	B2_removeState  uint8
}{0, 1, 2, 3}

type B2ClipVertex struct {
	V  B2Vec2
	Id B2ContactID
}

/// B2RayCastInput describes the segment P1 + t*(P2-P1), t in [0, MaxFraction].
type B2RayCastInput struct {
	P1, P2      B2Vec2
	MaxFraction float64
}

func MakeB2RayCastInput() B2RayCastInput { return B2RayCastInput{} }

/// B2RayCastOutput reports a hit at P1 + Fraction*(P2-P1) of the input.
type B2RayCastOutput struct {
	Normal   B2Vec2
	Fraction float64
}

func MakeB2RayCastOutput() B2RayCastOutput { return B2RayCastOutput{} }

type B2AABB struct {
	LowerBound, UpperBound B2Vec2
}

func MakeB2AABB() B2AABB { return B2AABB{} }

func MakeB2AABBFromBounds(lower, upper B2Vec2) B2AABB {
	return B2AABB{LowerBound: lower, UpperBound: upper}
}

func (bb B2AABB) GetCenter() B2Vec2 {
	return B2Vec2MulScalar(0.5, B2Vec2Add(bb.LowerBound, bb.UpperBound))
}

/// GetExtents returns the half widths.
func (bb B2AABB) GetExtents() B2Vec2 {
	return B2Vec2MulScalar(0.5, B2Vec2Sub(bb.UpperBound, bb.LowerBound))
}

func (bb B2AABB) GetPerimeter() float64 {
	d := B2Vec2Sub(bb.UpperBound, bb.LowerBound)
	return 2 * (d.X + d.Y)
}

/// CombineTwoInPlace sets bb to the union of a and b.
func (bb *B2AABB) CombineTwoInPlace(a, b B2AABB) {
	*bb = B2AABB{B2Vec2Min(a.LowerBound, b.LowerBound), B2Vec2Max(a.UpperBound, b.UpperBound)}
}

/// Contains reports whether inner lies entirely within bb.
func (bb B2AABB) Contains(inner B2AABB) bool {
	lo := B2Vec2Sub(inner.LowerBound, bb.LowerBound)
	hi := B2Vec2Sub(bb.UpperBound, inner.UpperBound)
	return lo.X >= 0 && lo.Y >= 0 && hi.X >= 0 && hi.Y >= 0
}

/// IsValid reports whether the bounds are finite and ordered.
func (bb B2AABB) IsValid() bool {
	d := B2Vec2Sub(bb.UpperBound, bb.LowerBound)
	return d.X >= 0 && d.Y >= 0 && bb.LowerBound.IsValid() && bb.UpperBound.IsValid()
}

/// B2TestOverlapBoundingBoxes treats touching boxes as overlapping.
func B2TestOverlapBoundingBoxes(a, b B2AABB) bool {
	return a.LowerBound.X <= b.UpperBound.X && b.LowerBound.X <= a.UpperBound.X &&
		a.LowerBound.Y <= b.UpperBound.Y && b.LowerBound.Y <= a.UpperBound.Y
}

/// RayCast clips the ray against the box one slab at a time. Rays that
/// start inside the box do not hit it.
func (bb B2AABB) RayCast(output *B2RayCastOutput, input B2RayCastInput) bool {
	enter, exit := -B2_maxFloat, B2_maxFloat
	d := B2Vec2Sub(input.P2, input.P1)
	var normal B2Vec2

	for axis := 0; axis < 2; axis++ {
		p, di := input.P1.OperatorIndexGet(axis), d.OperatorIndexGet(axis)
		lo, hi := bb.LowerBound.OperatorIndexGet(axis), bb.UpperBound.OperatorIndexGet(axis)

		if math.Abs(di) < B2_epsilon {
			if p < lo || hi < p {
				return false
			}
			continue
		}

		near, far := (lo-p)/di, (hi-p)/di
		side := -1.0
		if near > far {
			near, far = far, near
			side = 1
		}
		if near > enter {
			normal = B2Vec2{}
			normal.OperatorIndexSet(axis, side)
			enter = near
		}
		exit = min(exit, far)
		if enter > exit {
			return false
		}
	}

	if enter < 0 || input.MaxFraction < enter {
		return false
	}
	output.Fraction, output.Normal = enter, normal
	return true
}

/// Initialize evaluates manifold at the given transforms. Each point is
/// placed midway between the two skins. The radii must belong to the
/// shapes that produced the manifold.
func (wm *B2WorldManifold) Initialize(manifold *B2Manifold, xfA B2Transform, radiusA float64, xfB B2Transform, radiusB float64) {
	if manifold.PointCount == 0 {
		return
	}

	if manifold.Type == B2Manifold_Type.E_circles {
		pA := B2TransformVec2Mul(xfA, manifold.LocalPoint)
		pB := B2TransformVec2Mul(xfB, manifold.Points[0].LocalPoint)
		wm.Normal = B2Vec2{1, 0}
		if B2Vec2DistanceSquared(pA, pB) > B2_epsilon*B2_epsilon {
			wm.Normal = B2Vec2Sub(pB, pA)
			wm.Normal.Normalize()
		}
		wm.Points[0] = midSkin(pA, radiusA, pB, radiusB, wm.Normal)
		return
	}

	// For face manifolds the reference face belongs to "ref" and the clip
	// points to "inc". faceB swaps the roles and flips the normal at the end.
	xfRef, xfInc, rRef, rInc := xfA, xfB, radiusA, radiusB
	if manifold.Type == B2Manifold_Type.E_faceB {
		xfRef, xfInc, rRef, rInc = xfB, xfA, radiusB, radiusA
	}

	n := B2Vec2Mat22Mul(xfRef.R, manifold.LocalNormal)
	plane := B2TransformVec2Mul(xfRef, manifold.LocalPoint)
	for i := 0; i < manifold.PointCount; i++ {
		clip := B2TransformVec2Mul(xfInc, manifold.Points[i].LocalPoint)
		onRef := B2Vec2Add(clip, B2Vec2MulScalar(rRef-B2Vec2Dot(B2Vec2Sub(clip, plane), n), n))
		onInc := B2Vec2Sub(clip, B2Vec2MulScalar(rInc, n))
		wm.Points[i] = B2Vec2MulScalar(0.5, B2Vec2Add(onRef, onInc))
	}

	if manifold.Type == B2Manifold_Type.E_faceB {
		n = n.OperatorNegate()
	}
	wm.Normal = n
}

func midSkin(pA B2Vec2, rA float64, pB B2Vec2, rB float64, n B2Vec2) B2Vec2 {
	sA := B2Vec2Add(pA, B2Vec2MulScalar(rA, n))
	sB := B2Vec2Sub(pB, B2Vec2MulScalar(rB, n))
	return B2Vec2MulScalar(0.5, B2Vec2Add(sA, sB))
}

/// B2GetPointStates compares two manifolds of the same contact by point id.
/// state1 holds persist or remove for the points of manifold1, state2 holds
/// add or persist for the points of manifold2. Unused slots are null.
func B2GetPointStates(state1, state2 *[B2_maxManifoldPoints]uint8, manifold1, manifold2 B2Manifold) {
	*state1 = [B2_maxManifoldPoints]uint8{}
	*state2 = [B2_maxManifoldPoints]uint8{}

	for i := 0; i < manifold1.PointCount; i++ {
		state1[i] = B2PointState.B2_removeState
		if manifold2.hasPoint(manifold1.Points[i].Id) {
			state1[i] = B2PointState.B2_persistState
		}
	}
	for i := 0; i < manifold2.PointCount; i++ {
		state2[i] = B2PointState.B2_addState
		if manifold1.hasPoint(manifold2.Points[i].Id) {
			state2[i] = B2PointState.B2_persistState
		}
	}
}

func (m *B2Manifold) hasPoint(id B2ContactID) bool {
	for i := 0; i < m.PointCount; i++ {
		if m.Points[i].Id.Key() == id.Key() {
			return true
		}
	}
	return false
}

/// B2ClipSegmentToLine keeps the part of segment vIn with
/// dot(normal, v) <= offset and returns the number of points written.
/// A point made at the crossing inherits the id of the endpoint that was cut.
func B2ClipSegmentToLine(vOut *[2]B2ClipVertex, vIn [2]B2ClipVertex, normal B2Vec2, offset float64) int {
	d0 := B2Vec2Dot(normal, vIn[0].V) - offset
	d1 := B2Vec2Dot(normal, vIn[1].V) - offset

	n := 0
	for i, d := range [2]float64{d0, d1} {
		if d <= 0 {
			vOut[n] = vIn[i]
			n++
		}
	}

	if d0*d1 < 0 {
		t := d0 / (d0 - d1)
		vOut[n].V = B2Vec2Add(vIn[0].V, B2Vec2MulScalar(t, B2Vec2Sub(vIn[1].V, vIn[0].V)))
		if d0 > 0 {
			vOut[n].Id = vIn[0].Id
		} else {
			vOut[n].Id = vIn[1].Id
		}
		n++
	}

	return n
}

/// B2TestOverlapShapes runs GJK between two shapes including their skins.
func B2TestOverlapShapes(shapeA, shapeB B2ShapeInterface, xfA, xfB B2Transform) bool {
	input := B2DistanceInput{TransformA: xfA, TransformB: xfB, UseRadii: true}
	input.ProxyA.Set(shapeA)
	input.ProxyB.Set(shapeB)

	var cache B2SimplexCache
	var output B2DistanceOutput
	B2Distance(&output, &cache, &input)
	return output.Distance < 10*B2_epsilon
}
