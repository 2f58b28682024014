package box2d

import "math"

/// B2TOIInput describes two swept proxies. Tolerance is the separation
/// target slack and defaults to B2_linearSlop when zero.
type B2TOIInput struct {
	ProxyA, ProxyB B2DistanceProxy
	SweepA, SweepB B2Sweep
	Tolerance      float64
}

func MakeB2TOIInput() B2TOIInput { return B2TOIInput{Tolerance: B2_linearSlop} }

var B2TOIOutput_State = struct {
	E_unknown    uint8
	E_failed     uint8
	E_overlapped uint8
	E_touching   uint8
	E_separated  uint8
}{0, 1, 2, 3, 4}

/// B2TOIOutput.T is a fraction of the sweep interval.
type B2TOIOutput struct {
	State      uint8
	T          float64
	Iterations int
}

func MakeB2TOIOutput() B2TOIOutput { return B2TOIOutput{} }

const (
	b2_toiMaxIters     = 1000
	b2_toiMaxRootIters = 50
)

var B2SeparationFunction_Type = struct {
	E_points uint8
	E_faceA  uint8
	E_faceB  uint8
}{0, 1, 2}

/// B2SeparationFunction measures the signed distance between two proxies
/// along an axis fixed by the closest features in a simplex cache. For the
/// face kinds the axis and point are in the face owner's frame.
type B2SeparationFunction struct {
	M_proxyA, M_proxyB *B2DistanceProxy
	M_type             uint8
	M_localPoint       B2Vec2
	M_axis             B2Vec2
}

// segmentParams returns the parameters of the closest points between the
// segments pA+s*dA and pB+t*dB, both clamped to [0,1].
func segmentParams(pA, dA, pB, dB B2Vec2) (s, t float64) {
	a, e := B2Vec2Dot(dA, dA), B2Vec2Dot(dB, dB)
	r := B2Vec2Sub(pA, pB)
	c, f := B2Vec2Dot(dA, r), B2Vec2Dot(dB, r)
	b := B2Vec2Dot(dA, dB)

	if denom := a*e - b*b; denom != 0 {
		s = B2Clamp((b*f-c*e)/denom, 0, 1)
	}
	if e > B2_epsilon {
		t = (b*s + f) / e
	}

	switch {
	case t < 0:
		t = 0
		if a > B2_epsilon {
			s = B2Clamp(-c/a, 0, 1)
		}
	case t > 1:
		t = 1
		if a > B2_epsilon {
			s = B2Clamp((b-c)/a, 0, 1)
		}
	}
	return s, t
}

// setFace uses the edge p1-p2 of the face owner as the axis, oriented so
// the other point lies on its positive side.
func (fn *B2SeparationFunction) setFace(kind uint8, p1, p2, localPoint B2Vec2, xfFace B2Transform, other B2Vec2, xfOther B2Transform) {
	fn.M_type = kind
	fn.M_localPoint = localPoint
	fn.M_axis = B2Vec2CrossVectorScalar(B2Vec2Sub(p2, p1), 1)
	fn.M_axis.Normalize()

	normal := B2Vec2Mat22Mul(xfFace.R, fn.M_axis)
	gap := B2Vec2Sub(B2TransformVec2Mul(xfOther, other), B2TransformVec2Mul(xfFace, localPoint))
	if B2Vec2Dot(gap, normal) < 0 {
		fn.M_axis = fn.M_axis.OperatorNegate()
	}
}

/// Initialize picks the point, faceA or faceB form from the cache's
/// support indices.
func (fn *B2SeparationFunction) Initialize(cache *B2SimplexCache, proxyA *B2DistanceProxy, xfA B2Transform, proxyB *B2DistanceProxy, xfB B2Transform) {
	*fn = B2SeparationFunction{M_proxyA: proxyA, M_proxyB: proxyB}
	B2Assert(0 < cache.Count && cache.Count < 3)

	a1, b1 := proxyA.GetVertex(cache.IndexA[0]), proxyB.GetVertex(cache.IndexB[0])
	if cache.Count == 1 {
		fn.M_type = B2SeparationFunction_Type.E_points
		fn.M_axis = B2Vec2Sub(B2TransformVec2Mul(xfB, b1), B2TransformVec2Mul(xfA, a1))
		fn.M_axis.Normalize()
		return
	}

	a2, b2 := proxyA.GetVertex(cache.IndexA[1]), proxyB.GetVertex(cache.IndexB[1])
	switch {
	case cache.IndexB[0] == cache.IndexB[1]:
		fn.setFace(B2SeparationFunction_Type.E_faceA, a1, a2, lerpVec2(a1, a2, 0.5), xfA, b1, xfB)
	case cache.IndexA[0] == cache.IndexA[1]:
		fn.setFace(B2SeparationFunction_Type.E_faceB, b1, b2, lerpVec2(b1, b2, 0.5), xfB, a1, xfA)
	default:
		// Two edges. The closest points decide which one is the face.
		s, t := segmentParams(
			B2TransformVec2Mul(xfA, a1), B2Vec2Mat22Mul(xfA.R, B2Vec2Sub(a2, a1)),
			B2TransformVec2Mul(xfB, b1), B2Vec2Mat22Mul(xfB.R, B2Vec2Sub(b2, b1)))
		pA, pB := lerpVec2(a1, a2, s), lerpVec2(b1, b2, t)
		if s == 0 || s == 1 {
			fn.setFace(B2SeparationFunction_Type.E_faceB, b1, b2, pB, xfB, pA, xfA)
		} else {
			fn.setFace(B2SeparationFunction_Type.E_faceA, a1, a2, pA, xfA, pB, xfB)
		}
	}
}

// faceSeparation is the distance of other's deepest vertex above the face.
func (fn B2SeparationFunction) faceSeparation(xfFace B2Transform, other *B2DistanceProxy, xfOther B2Transform) float64 {
	normal := B2Vec2Mat22Mul(xfFace.R, fn.M_axis)
	deepest := other.GetSupportVertex(B2Vec2Mat22MulT(xfOther.R, normal.OperatorNegate()))
	return B2Vec2Dot(B2Vec2Sub(B2TransformVec2Mul(xfOther, deepest), B2TransformVec2Mul(xfFace, fn.M_localPoint)), normal)
}

func (fn B2SeparationFunction) Evaluate(xfA B2Transform, xfB B2Transform) float64 {
	switch fn.M_type {
	case B2SeparationFunction_Type.E_points:
		pA := fn.M_proxyA.GetSupportVertex(B2Vec2Mat22MulT(xfA.R, fn.M_axis))
		pB := fn.M_proxyB.GetSupportVertex(B2Vec2Mat22MulT(xfB.R, fn.M_axis.OperatorNegate()))
		return B2Vec2Dot(B2Vec2Sub(B2TransformVec2Mul(xfB, pB), B2TransformVec2Mul(xfA, pA)), fn.M_axis)
	case B2SeparationFunction_Type.E_faceA:
		return fn.faceSeparation(xfA, fn.M_proxyB, xfB)
	case B2SeparationFunction_Type.E_faceB:
		return fn.faceSeparation(xfB, fn.M_proxyA, xfA)
	}
	B2Assert(false)
	return 0
}

// evaluateAt evaluates the separation with both sweeps at time t.
func (fn B2SeparationFunction) evaluateAt(sweepA, sweepB B2Sweep, t float64) float64 {
	var xfA, xfB B2Transform
	sweepA.GetTransform(&xfA, t)
	sweepB.GetTransform(&xfB, t)
	return fn.Evaluate(xfA, xfB)
}

// solveRoot finds x in [x1, x2] where the separation reaches target,
// alternating bisection and the secant rule while keeping the root
// bracketed. It returns -1 when no root is pinned down.
func (fn B2SeparationFunction) solveRoot(sweepA, sweepB B2Sweep, x1, f1, x2, f2, target, tolerance float64) float64 {
	for i := 0; i < b2_toiMaxRootIters; i++ {
		x := 0.5 * (x1 + x2)
		if i&1 == 1 {
			x = x1 + (target-f1)*(x2-x1)/(f2-f1)
		}

		f := fn.evaluateAt(sweepA, sweepB, x)
		if math.Abs(f-target) < 0.025*tolerance {
			return x
		}
		if f > target {
			x1, f1 = x, f
		} else {
			x2, f2 = x, f
		}
	}
	return -1
}

/// B2TimeOfImpact returns, as a fraction of the sweeps, an upper bound on
/// the time the proxies come within target of each other. Conservative
/// advancement brings them toward a target just inside the combined skin
/// radius. Shapes whose cores already overlap report 1 so the discrete
/// solver handles them.
func B2TimeOfImpact(output *B2TOIOutput, input *B2TOIInput) {
	sweepA, sweepB := input.SweepA, input.SweepB
	proxyA, proxyB := &input.ProxyA, &input.ProxyB

	radius := proxyA.M_radius + proxyB.M_radius
	tolerance := input.Tolerance
	if tolerance <= 0 {
		tolerance = B2_linearSlop
	}

	cache := MakeB2SimplexCache()
	distanceInput := MakeB2DistanceInput()
	distanceInput.ProxyA, distanceInput.ProxyB = input.ProxyA, input.ProxyB

	alpha, target := 0.0, 0.0
	state := B2TOIOutput_State.E_unknown
	iter := 0

	for state == B2TOIOutput_State.E_unknown {
		sweepA.GetTransform(&distanceInput.TransformA, alpha)
		sweepB.GetTransform(&distanceInput.TransformB, alpha)
		distanceOutput := MakeB2DistanceOutput()
		B2Distance(&distanceOutput, &cache, &distanceInput)

		var fn B2SeparationFunction
		separation := 0.0
		if distanceOutput.Distance > 0 {
			fn.Initialize(&cache, proxyA, distanceInput.TransformA, proxyB, distanceInput.TransformB)
			separation = fn.Evaluate(distanceInput.TransformA, distanceInput.TransformB)
		}
		if separation <= 0 {
			alpha, state = 1, B2TOIOutput_State.E_overlapped
			break
		}

		if iter == 0 {
			// Leave clearance out of the skins when there is room for it.
			if separation > radius {
				target = math.Max(radius-tolerance, 0.75*radius)
			} else {
				target = math.Max(separation-tolerance, 0.02*radius)
			}
		}

		if separation-target < 0.5*tolerance {
			if iter == 0 {
				alpha = 1
			}
			state = B2TOIOutput_State.E_touching
			break
		}

		end := fn.evaluateAt(sweepA, sweepB, 1)
		if end >= target {
			alpha, state = 1, B2TOIOutput_State.E_separated
			break
		}

		next := fn.solveRoot(sweepA, sweepB, alpha, separation, 1, end, target, tolerance)
		if next < 0 {
			next = alpha
		}

		if next < (1+100*B2_epsilon)*alpha {
			state = B2TOIOutput_State.E_touching
			break
		}
		alpha = next

		if iter++; iter == b2_toiMaxIters {
			state = B2TOIOutput_State.E_failed
		}
	}

	*output = B2TOIOutput{State: state, T: alpha, Iterations: iter}
}
