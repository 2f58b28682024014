package box2d

/// B2DistanceProxy is the convex point set GJK works on: the vertices of a
/// shape plus its skin radius.
type B2DistanceProxy struct {
	M_vertices []B2Vec2
	M_radius   float64
}

func MakeB2DistanceProxy() B2DistanceProxy { return B2DistanceProxy{} }

/// Set points the proxy at the vertices of shape. Polygons are not copied,
/// so the shape must outlive the proxy.
func (p *B2DistanceProxy) Set(shape B2ShapeInterface) {
	switch s := shape.(type) {
	case *B2CircleShape:
		p.M_vertices, p.M_radius = []B2Vec2{s.M_p}, s.M_radius
	case *B2PolygonShape:
		p.M_vertices, p.M_radius = s.M_vertices[:s.M_count], s.M_radius
	case *B2EdgeShape:
		p.M_vertices, p.M_radius = []B2Vec2{s.M_vertex1, s.M_vertex2}, s.M_radius
	default:
		B2Assert(false)
	}
}

func (p B2DistanceProxy) GetVertexCount() int { return len(p.M_vertices) }

func (p B2DistanceProxy) GetVertex(index int) B2Vec2 { return p.M_vertices[index] }

/// GetSupport returns the index of the vertex furthest along d.
func (p B2DistanceProxy) GetSupport(d B2Vec2) int {
	best, bestDot := 0, B2Vec2Dot(p.M_vertices[0], d)
	for i, v := range p.M_vertices[1:] {
		if dot := B2Vec2Dot(v, d); dot > bestDot {
			best, bestDot = i+1, dot
		}
	}
	return best
}

func (p B2DistanceProxy) GetSupportVertex(d B2Vec2) B2Vec2 {
	return p.M_vertices[p.GetSupport(d)]
}

/// B2SimplexCache carries the last simplex between calls so B2Distance can
/// warm start. Count zero means cold.
type B2SimplexCache struct {
	/// Segment length or signed triangle area of the cached simplex.
	Metric float64
	Count  int
	IndexA [3]int
	IndexB [3]int
}

func MakeB2SimplexCache() B2SimplexCache { return B2SimplexCache{} }

type B2DistanceInput struct {
	ProxyA, ProxyB         B2DistanceProxy
	TransformA, TransformB B2Transform

	/// Measure between the skins instead of the core shapes.
	UseRadii bool
}

func MakeB2DistanceInput() B2DistanceInput {
	return B2DistanceInput{TransformA: MakeB2Transform(), TransformB: MakeB2Transform()}
}

type B2DistanceOutput struct {
	PointA, PointB B2Vec2
	Distance       float64
	Iterations     int
}

func MakeB2DistanceOutput() B2DistanceOutput { return B2DistanceOutput{} }

// simplexVertex is one point of the Minkowski difference B - A together
// with the support points it came from.
type simplexVertex struct {
	wA, wB, w      B2Vec2
	bary           float64
	indexA, indexB int
}

type simplex struct {
	v [3]simplexVertex
	n int
}

type gjkFrame struct {
	proxyA, proxyB *B2DistanceProxy
	xfA, xfB       B2Transform
}

func (f gjkFrame) vertex(indexA, indexB int) simplexVertex {
	wA := B2TransformVec2Mul(f.xfA, f.proxyA.GetVertex(indexA))
	wB := B2TransformVec2Mul(f.xfB, f.proxyB.GetVertex(indexB))
	return simplexVertex{wA: wA, wB: wB, w: B2Vec2Sub(wB, wA), indexA: indexA, indexB: indexB}
}

func (s *simplex) load(cache *B2SimplexCache, f gjkFrame) {
	s.n = cache.Count
	for i := 0; i < s.n; i++ {
		s.v[i] = f.vertex(cache.IndexA[i], cache.IndexB[i])
	}

	// A cached simplex whose size changed a lot no longer describes the
	// current configuration.
	if s.n > 1 {
		old, cur := cache.Metric, s.metric()
		if cur < 0.5*old || 2*old < cur || cur < B2_epsilon {
			s.n = 0
		}
	}
	if s.n == 0 {
		s.v[0] = f.vertex(0, 0)
		s.v[0].bary = 1
		s.n = 1
	}
}

func (s *simplex) store(cache *B2SimplexCache) {
	cache.Metric = s.metric()
	cache.Count = s.n
	for i := 0; i < s.n; i++ {
		cache.IndexA[i], cache.IndexB[i] = s.v[i].indexA, s.v[i].indexB
	}
}

func (s *simplex) metric() float64 {
	switch s.n {
	case 2:
		return B2Vec2Distance(s.v[0].w, s.v[1].w)
	case 3:
		return B2Vec2Cross(B2Vec2Sub(s.v[1].w, s.v[0].w), B2Vec2Sub(s.v[2].w, s.v[0].w))
	}
	return 0
}

// searchDirection points from the simplex toward the origin.
func (s *simplex) searchDirection() B2Vec2 {
	if s.n == 1 {
		return s.v[0].w.OperatorNegate()
	}
	e := B2Vec2Sub(s.v[1].w, s.v[0].w)
	if B2Vec2Cross(e, s.v[0].w.OperatorNegate()) > 0 {
		return B2Vec2CrossScalarVector(1, e)
	}
	return B2Vec2CrossVectorScalar(e, 1)
}

func (s *simplex) witnessPoints() (pA, pB B2Vec2) {
	if s.n == 1 {
		// Weights of a warm started point are never solved for.
		return s.v[0].wA, s.v[0].wB
	}
	for i := 0; i < s.n; i++ {
		pA = B2Vec2Add(pA, B2Vec2MulScalar(s.v[i].bary, s.v[i].wA))
		pB = B2Vec2Add(pB, B2Vec2MulScalar(s.v[i].bary, s.v[i].wB))
	}
	if s.n == 3 {
		// The origin is inside the triangle, so both witnesses coincide.
		pB = pA
	}
	return pA, pB
}

// keep reduces the simplex to the listed vertices with the given
// barycentric weights.
func (s *simplex) keep(idx []int, bary []float64) {
	var v [3]simplexVertex
	for k, i := range idx {
		v[k] = s.v[i]
		v[k].bary = bary[k]
	}
	s.v, s.n = v, len(idx)
}

// edgeWeights returns the unnormalized barycentric weights of the closest
// point to the origin on segment ab.
func edgeWeights(a, b B2Vec2) (ua, ub float64) {
	e := B2Vec2Sub(b, a)
	return B2Vec2Dot(b, e), -B2Vec2Dot(a, e)
}

// solve2 finds the Voronoi region of the segment containing the origin.
func (s *simplex) solve2() {
	u1, u2 := edgeWeights(s.v[0].w, s.v[1].w)
	switch {
	case u2 <= 0:
		s.keep([]int{0}, []float64{1})
	case u1 <= 0:
		s.keep([]int{1}, []float64{1})
	default:
		inv := 1 / (u1 + u2)
		s.keep([]int{0, 1}, []float64{u1 * inv, u2 * inv})
	}
}

// solve3 finds the Voronoi region of the triangle containing the origin.
// The vertex added last is always index 2.
func (s *simplex) solve3() {
	w1, w2, w3 := s.v[0].w, s.v[1].w, s.v[2].w

	u12, v12 := edgeWeights(w1, w2)
	u13, v13 := edgeWeights(w1, w3)
	u23, v23 := edgeWeights(w2, w3)

	area := B2Vec2Cross(B2Vec2Sub(w2, w1), B2Vec2Sub(w3, w1))
	t1 := area * B2Vec2Cross(w2, w3)
	t2 := area * B2Vec2Cross(w3, w1)
	t3 := area * B2Vec2Cross(w1, w2)

	switch {
	case v12 <= 0 && v13 <= 0:
		s.keep([]int{0}, []float64{1})
	case u12 > 0 && v12 > 0 && t3 <= 0:
		inv := 1 / (u12 + v12)
		s.keep([]int{0, 1}, []float64{u12 * inv, v12 * inv})
	case u13 > 0 && v13 > 0 && t2 <= 0:
		inv := 1 / (u13 + v13)
		s.keep([]int{0, 2}, []float64{u13 * inv, v13 * inv})
	case u12 <= 0 && v23 <= 0:
		s.keep([]int{1}, []float64{1})
	case u13 <= 0 && u23 <= 0:
		s.keep([]int{2}, []float64{1})
	case u23 > 0 && v23 > 0 && t1 <= 0:
		inv := 1 / (u23 + v23)
		s.keep([]int{2, 1}, []float64{v23 * inv, u23 * inv})
	default:
		inv := 1 / (t1 + t2 + t3)
		s.keep([]int{0, 1, 2}, []float64{t1 * inv, t2 * inv, t3 * inv})
	}
}

const b2_gjkMaxIters = 20

/// B2Distance computes the closest points of two convex proxies with GJK.
/// cache is read for warm starting and rewritten with the final simplex.
/// Overlapping cores report a distance of zero, or close to it.
func B2Distance(output *B2DistanceOutput, cache *B2SimplexCache, input *B2DistanceInput) {
	f := gjkFrame{
		proxyA: &input.ProxyA, proxyB: &input.ProxyB,
		xfA: input.TransformA, xfB: input.TransformB,
	}

	var s simplex
	s.load(cache, f)

	iter := 0
	for iter < b2_gjkMaxIters {
		var lastA, lastB [3]int
		lastN := s.n
		for i := 0; i < lastN; i++ {
			lastA[i], lastB[i] = s.v[i].indexA, s.v[i].indexB
		}

		switch s.n {
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		}
		if s.n == 3 {
			// The origin is enclosed.
			break
		}

		d := s.searchDirection()
		if d.LengthSquared() < B2_epsilon*B2_epsilon {
			// The origin sits on the simplex. Whether the cores overlap or
			// just touch cannot be told apart here.
			break
		}

		next := f.vertex(
			f.proxyA.GetSupport(B2Vec2Mat22MulT(f.xfA.R, d.OperatorNegate())),
			f.proxyB.GetSupport(B2Vec2Mat22MulT(f.xfB.R, d)),
		)
		iter++

		// A repeated support pair means no further progress is possible.
		repeated := false
		for i := 0; i < lastN; i++ {
			if next.indexA == lastA[i] && next.indexB == lastB[i] {
				repeated = true
				break
			}
		}
		if repeated {
			break
		}

		s.v[s.n] = next
		s.n++
	}

	output.PointA, output.PointB = s.witnessPoints()
	output.Distance = B2Vec2Distance(output.PointA, output.PointB)
	output.Iterations = iter
	s.store(cache)

	if !input.UseRadii {
		return
	}

	rA, rB := f.proxyA.M_radius, f.proxyB.M_radius
	if output.Distance > rA+rB && output.Distance > B2_epsilon {
		n := B2Vec2Sub(output.PointB, output.PointA)
		n.Normalize()
		output.Distance -= rA + rB
		output.PointA = B2Vec2Add(output.PointA, B2Vec2MulScalar(rA, n))
		output.PointB = B2Vec2Sub(output.PointB, B2Vec2MulScalar(rB, n))
		return
	}

	mid := B2Vec2MulScalar(0.5, B2Vec2Add(output.PointA, output.PointB))
	output.PointA, output.PointB = mid, mid
	output.Distance = 0
}
