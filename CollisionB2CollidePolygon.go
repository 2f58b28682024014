package box2d

// posedPolygon is a polygon placed by a transform.
type posedPolygon struct {
	*B2PolygonShape
	xf B2Transform
}

func (p posedPolygon) next(i int) int {
	if i+1 < p.M_count {
		return i + 1
	}
	return 0
}

func (p posedPolygon) prev(i int) int {
	if i > 0 {
		return i - 1
	}
	return p.M_count - 1
}

func (p posedPolygon) worldNormal(i int) B2Vec2 { return B2Vec2Mat22Mul(p.xf.R, p.M_normals[i]) }

// minimizing returns the first index whose dot product with dir is
// smallest.
func minimizing(vs []B2Vec2, dir B2Vec2) int {
	best, bestDot := 0, B2_maxFloat
	for i, v := range vs {
		if d := B2Vec2Dot(v, dir); d < bestDot {
			best, bestDot = i, d
		}
	}
	return best
}

// edgeSeparation is the signed distance from face i of p to the deepest
// vertex of other.
func (p posedPolygon) edgeSeparation(i int, other posedPolygon) float64 {
	B2Assert(0 <= i && i < p.M_count)
	n := p.worldNormal(i)
	support := other.M_vertices[minimizing(other.M_vertices[:other.M_count], B2Vec2Mat22MulT(other.xf.R, n))]
	return B2Vec2Dot(B2Vec2Sub(B2TransformVec2Mul(other.xf, support), B2TransformVec2Mul(p.xf, p.M_vertices[i])), n)
}

// maxSeparation finds the face of p that separates it most from other. It
// starts at the face pointing at other's centroid and walks to whichever
// neighbor improves, which convexity makes sufficient.
func (p posedPolygon) maxSeparation(other posedPolygon) (int, float64) {
	d := B2Vec2Sub(B2TransformVec2Mul(other.xf, other.M_centroid), B2TransformVec2Mul(p.xf, p.M_centroid))
	edge := minimizing(p.M_normals[:p.M_count], B2Vec2Mat22MulT(p.xf.R, d).OperatorNegate())
	s := p.edgeSeparation(edge, other)

	prev, next := p.prev(edge), p.next(edge)
	sPrev, sNext := p.edgeSeparation(prev, other), p.edgeSeparation(next, other)

	var walk func(int) int
	switch {
	case sPrev > s && sPrev > sNext:
		walk, edge, s = p.prev, prev, sPrev
	case sNext > s:
		walk, edge, s = p.next, next, sNext
	default:
		return edge, s
	}

	for {
		candidate := walk(edge)
		sc := p.edgeSeparation(candidate, other)
		if sc <= s {
			return edge, s
		}
		edge, s = candidate, sc
	}
}

// incidentEdge picks the face of inc most anti-parallel to reference face
// edge and returns its two world vertices tagged with feature ids.
func (ref posedPolygon) incidentEdge(edge int, inc posedPolygon) (c [2]B2ClipVertex) {
	normal := B2Vec2Mat22MulT(inc.xf.R, ref.worldNormal(edge))
	i1 := minimizing(inc.M_normals[:inc.M_count], normal)
	for k, i := range [2]int{i1, inc.next(i1)} {
		c[k] = B2ClipVertex{
			V: B2TransformVec2Mul(inc.xf, inc.M_vertices[i]),
			Id: B2ContactID{
				ReferenceEdge:  uint8(edge),
				IncidentEdge:   uint8(i),
				IncidentVertex: uint8(k),
			},
		}
	}
	return c
}

/// B2CollidePolygons finds the reference face with the largest separation
/// on either polygon, clips the incident face of the other polygon to the
/// reference face's side planes and keeps the points within the combined
/// skin. The normal points from A to B.
func B2CollidePolygons(manifold *B2Manifold, polyA *B2PolygonShape, xfA B2Transform, polyB *B2PolygonShape, xfB B2Transform) {
	manifold.PointCount = 0
	totalRadius := polyA.M_radius + polyB.M_radius
	a, b := posedPolygon{polyA, xfA}, posedPolygon{polyB, xfB}

	edgeA, separationA := a.maxSeparation(b)
	if separationA > totalRadius {
		return
	}
	edgeB, separationB := b.maxSeparation(a)
	if separationB > totalRadius {
		return
	}

	// A stays the reference unless B is clearly better, so the choice does
	// not flap between nearly equal faces.
	ref, inc, edge := a, b, edgeA
	manifold.Type = B2Manifold_Type.E_faceA
	var flip uint8
	if separationB > B2_relativeTol*separationA+B2_absoluteTol {
		ref, inc, edge = b, a, edgeB
		manifold.Type = B2Manifold_Type.E_faceB
		flip = 1
	}

	incident := ref.incidentEdge(edge, inc)

	v11, v12 := ref.M_vertices[edge], ref.M_vertices[ref.next(edge)]
	localTangent := B2Vec2Sub(v12, v11)
	localTangent.Normalize()

	tangent := B2Vec2Mat22Mul(ref.xf.R, localTangent)
	normal := B2Vec2CrossVectorScalar(tangent, 1)
	w11, w12 := B2TransformVec2Mul(ref.xf, v11), B2TransformVec2Mul(ref.xf, v12)

	// Side planes of the reference face, pushed out by the skins.
	var clipped1, clipped2 [2]B2ClipVertex
	if B2ClipSegmentToLine(&clipped1, incident, tangent.OperatorNegate(), totalRadius-B2Vec2Dot(tangent, w11)) < 2 {
		return
	}
	if B2ClipSegmentToLine(&clipped2, clipped1, tangent, totalRadius+B2Vec2Dot(tangent, w12)) < 2 {
		return
	}

	manifold.LocalNormal = B2Vec2CrossVectorScalar(localTangent, 1)
	manifold.LocalPoint = B2Vec2MulScalar(0.5, B2Vec2Add(v11, v12))

	frontOffset := B2Vec2Dot(normal, w11)
	for _, cv := range clipped2 {
		if B2Vec2Dot(normal, cv.V)-frontOffset > totalRadius {
			continue
		}
		id := cv.Id
		id.Flip = flip
		manifold.Points[manifold.PointCount] = B2ManifoldPoint{
			LocalPoint: B2TransformVec2MulT(inc.xf, cv.V),
			Id:         id,
		}
		manifold.PointCount++
	}
}
