package box2d

/// B2OBB is an oriented box in shape coordinates.
type B2OBB struct {
	R       B2Mat22
	Center  B2Vec2
	Extents B2Vec2
}

/// B2PolygonShape is a convex polygon with counter clockwise winding, so
/// the interior is left of every edge. Two vertex polygons are thick
/// segments; the narrow phase builds them to collide edges.
type B2PolygonShape struct {
	B2Shape

	M_centroid B2Vec2
	M_obb      B2OBB
	M_vertices [B2_maxPolygonVertices]B2Vec2
	M_normals  [B2_maxPolygonVertices]B2Vec2
	M_count    int
}

func MakeB2PolygonShape() B2PolygonShape {
	return B2PolygonShape{B2Shape: B2Shape{M_type: B2Shape_Type.E_polygon, M_radius: B2_polygonRadius}}
}

func (poly B2PolygonShape) GetVertexCount() int { return poly.M_count }

func (poly *B2PolygonShape) GetVertex(index int) B2Vec2 {
	B2Assert(index >= 0 && index < poly.M_count)
	return poly.M_vertices[index]
}

func (poly B2PolygonShape) Clone() B2ShapeInterface {
	clone := poly
	return &clone
}

func (poly *B2PolygonShape) verts() []B2Vec2 { return poly.M_vertices[:poly.M_count] }

// edgeNormal is the outward unit normal of the edge a->b.
func edgeNormal(a, b B2Vec2) B2Vec2 {
	n := B2Vec2CrossVectorScalar(B2Vec2Sub(b, a), 1)
	n.Normalize()
	return n
}

/// SetAsBox makes an axis aligned box with half widths hx and hy centered
/// on the shape origin.
func (poly *B2PolygonShape) SetAsBox(hx, hy float64) {
	poly.M_count = 4
	poly.M_vertices[0] = B2Vec2{-hx, -hy}
	poly.M_vertices[1] = B2Vec2{hx, -hy}
	poly.M_vertices[2] = B2Vec2{hx, hy}
	poly.M_vertices[3] = B2Vec2{-hx, hy}
	poly.M_normals[0] = B2Vec2{0, -1}
	poly.M_normals[1] = B2Vec2{1, 0}
	poly.M_normals[2] = B2Vec2{0, 1}
	poly.M_normals[3] = B2Vec2{-1, 0}
	poly.M_centroid = B2Vec2{}

	poly.M_obb = B2OBB{Extents: B2Vec2{hx, hy}}
	poly.M_obb.R.SetIdentity()
}

/// SetAsOrientedBox makes a box with half widths hx and hy, rotated by
/// angle and centered on center.
func (poly *B2PolygonShape) SetAsOrientedBox(hx, hy float64, center B2Vec2, angle float64) {
	poly.SetAsBox(hx, hy)

	var xf B2Transform
	xf.Set(center, angle)
	for i := range poly.verts() {
		poly.M_vertices[i] = B2TransformVec2Mul(xf, poly.M_vertices[i])
		poly.M_normals[i] = B2Vec2Mat22Mul(xf.R, poly.M_normals[i])
	}

	poly.M_centroid = center
	poly.M_obb.R = xf.R
	poly.M_obb.Center = center
}

/// SetAsEdge makes a two vertex polygon. Its normals point both ways.
func (poly *B2PolygonShape) SetAsEdge(v1, v2 B2Vec2) {
	poly.M_count = 2
	poly.M_vertices[0], poly.M_vertices[1] = v1, v2
	poly.M_normals[0] = edgeNormal(v1, v2)
	poly.M_normals[1] = poly.M_normals[0].OperatorNegate()
	poly.M_centroid = B2Vec2MulScalar(0.5, B2Vec2Add(v1, v2))

	poly.M_obb = B2OBB{
		R:       MakeB2Mat22FromColumns(poly.M_normals[0], poly.M_normals[0].Skew()),
		Center:  poly.M_centroid,
		Extents: B2Vec2{0, 0.5 * B2Vec2Distance(v1, v2)},
	}
}

// vertexMean is the reference point for fanning a polygon into triangles.
// Any point works; the mean keeps rounding error small.
func vertexMean(vs []B2Vec2) B2Vec2 {
	var sum B2Vec2
	for _, v := range vs {
		sum.OperatorPlusInplace(v)
	}
	return B2Vec2MulScalar(1/float64(len(vs)), sum)
}

// polygonCentroid is the area weighted centroid of a convex polygon.
func polygonCentroid(vs []B2Vec2) B2Vec2 {
	B2Assert(len(vs) >= 2)
	if len(vs) == 2 {
		return B2Vec2MulScalar(0.5, B2Vec2Add(vs[0], vs[1]))
	}

	ref := vertexMean(vs)
	var c B2Vec2
	area := 0.0
	for i, a := range vs {
		b := vs[(i+1)%len(vs)]
		tri := 0.5 * B2Vec2Cross(B2Vec2Sub(a, ref), B2Vec2Sub(b, ref))
		area += tri
		c.OperatorPlusInplace(B2Vec2MulScalar(tri/3, B2Vec2Add(B2Vec2Add(ref, a), b)))
	}

	B2Assert(area > B2_epsilon)
	return B2Vec2MulScalar(1/area, c)
}

/// B2ComputeOBB fits the smallest box aligned with one of the polygon edges.
/// A later edge only wins when it shrinks the area below B2_obbAreaTol of
/// the current best, so near ties keep the first fit.
func B2ComputeOBB(obb *B2OBB, vs []B2Vec2) {
	n := len(vs)
	B2Assert(n <= B2_maxPolygonVertices)

	best := B2_maxFloat
	for i := 0; i < n; i++ {
		root := vs[i]
		ux := B2Vec2Sub(vs[(i+1)%n], root)
		B2Assert(ux.Normalize() > B2_epsilon)
		uy := ux.Skew()

		lo := B2Vec2{B2_maxFloat, B2_maxFloat}
		hi := lo.OperatorNegate()
		for _, v := range vs {
			d := B2Vec2Sub(v, root)
			local := B2Vec2{B2Vec2Dot(ux, d), B2Vec2Dot(uy, d)}
			lo, hi = B2Vec2Min(lo, local), B2Vec2Max(hi, local)
		}

		area := (hi.X - lo.X) * (hi.Y - lo.Y)
		if area >= B2_obbAreaTol*best {
			continue
		}
		best = area
		obb.R = MakeB2Mat22FromColumns(ux, uy)
		obb.Center = B2Vec2Add(root, B2Vec2Mat22Mul(obb.R, B2Vec2MulScalar(0.5, B2Vec2Add(lo, hi))))
		obb.Extents = B2Vec2MulScalar(0.5, B2Vec2Sub(hi, lo))
	}

	B2Assert(best < B2_maxFloat)
}

// weldPoints drops points closer than half a linear slop to an earlier
// point and truncates the input to B2_maxPolygonVertices.
func weldPoints(points []B2Vec2) []B2Vec2 {
	const tol = 0.5 * B2_linearSlop
	out := make([]B2Vec2, 0, B2_maxPolygonVertices)
	for _, p := range points[:min(len(points), B2_maxPolygonVertices)] {
		dup := false
		for _, q := range out {
			if B2Vec2DistanceSquared(p, q) < tol*tol {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// giftWrap returns the convex hull of ps in counter clockwise order,
// starting from the rightmost point. Collinear points are skipped.
func giftWrap(ps []B2Vec2) []B2Vec2 {
	start := 0
	for i, p := range ps[1:] {
		if s := ps[start]; p.X > s.X || (p.X == s.X && p.Y < s.Y) {
			start = i + 1
		}
	}

	hull := make([]B2Vec2, 0, len(ps))
	cur := start
	for {
		hull = append(hull, ps[cur])

		next := 0
		for j := 1; j < len(ps); j++ {
			if next == cur {
				next = j
				continue
			}
			r := B2Vec2Sub(ps[next], ps[cur])
			v := B2Vec2Sub(ps[j], ps[cur])
			c := B2Vec2Cross(r, v)
			// Take j when it is right of cur->next, or further along the
			// same line.
			if c < 0 || (c == 0 && v.LengthSquared() > r.LengthSquared()) {
				next = j
			}
		}

		cur = next
		if cur == start || len(hull) == len(ps) {
			return hull
		}
	}
}

/// Set builds the convex hull of points. Near duplicates are welded and
/// only the first B2_maxPolygonVertices points are considered. Input that
/// leaves fewer than three hull points becomes a 2x2 box.
func (poly *B2PolygonShape) Set(points []B2Vec2) {
	ps := weldPoints(points)
	if len(ps) < 3 {
		poly.SetAsBox(1, 1)
		return
	}
	hull := giftWrap(ps)
	if len(hull) < 3 {
		poly.SetAsBox(1, 1)
		return
	}

	poly.M_count = copy(poly.M_vertices[:], hull)
	for i, a := range hull {
		b := hull[(i+1)%len(hull)]
		B2Assert(B2Vec2DistanceSquared(a, b) > B2_epsilon*B2_epsilon)
		poly.M_normals[i] = edgeNormal(a, b)
	}
	poly.M_centroid = polygonCentroid(poly.verts())
	B2ComputeOBB(&poly.M_obb, poly.verts())
}

func (poly B2PolygonShape) TestPoint(xf B2Transform, p B2Vec2) bool {
	local := B2TransformVec2MulT(xf, p)
	for i, v := range poly.verts() {
		if B2Vec2Dot(poly.M_normals[i], B2Vec2Sub(local, v)) > 0 {
			return false
		}
	}
	return true
}

/// RayCast clips the ray against every face half plane, tracking the
/// latest entry and the earliest exit. Rays starting inside report no hit.
func (poly B2PolygonShape) RayCast(output *B2RayCastOutput, input B2RayCastInput, xf B2Transform) bool {
	p1 := B2TransformVec2MulT(xf, input.P1)
	d := B2Vec2Sub(B2TransformVec2MulT(xf, input.P2), p1)

	enter, exit := 0.0, input.MaxFraction
	face := -1

	for i, v := range poly.verts() {
		n := poly.M_normals[i]
		// The ray is inside face i for t with gap - t*rate >= 0 scaled by
		// rate; both are kept unscaled to avoid dividing on rejects.
		gap := B2Vec2Dot(n, B2Vec2Sub(v, p1))
		rate := B2Vec2Dot(n, d)

		switch {
		case rate == 0:
			if gap < 0 {
				return false
			}
		case rate < 0 && gap < enter*rate:
			enter, face = gap/rate, i
		case rate > 0 && gap < exit*rate:
			exit = gap / rate
		}

		if exit < enter {
			return false
		}
	}

	if face < 0 {
		return false
	}
	output.Fraction = enter
	output.Normal = B2Vec2Mat22Mul(xf.R, poly.M_normals[face])
	return true
}

func (poly B2PolygonShape) ComputeAABB(aabb *B2AABB, xf B2Transform) {
	lo := B2TransformVec2Mul(xf, poly.M_vertices[0])
	hi := lo
	for _, v := range poly.verts()[1:] {
		w := B2TransformVec2Mul(xf, v)
		lo, hi = B2Vec2Min(lo, w), B2Vec2Max(hi, w)
	}
	r := B2Vec2{poly.M_radius, poly.M_radius}
	aabb.LowerBound, aabb.UpperBound = B2Vec2Sub(lo, r), B2Vec2Add(hi, r)
}

/// ComputeMass fans the polygon into triangles around the vertex mean and
/// sums their area, first moment and second moment. Each triangle
/// (ref, ref+e1, ref+e2) contributes D/2 to the area with D = cross(e1, e2),
/// and D/12 * (e1.e1 + e1.e2 + e2.e2) to the polar moment about ref.
func (poly B2PolygonShape) ComputeMass(massData *B2MassData, density float64) {
	B2Assert(poly.M_count >= 2)
	if poly.M_count == 2 {
		*massData = B2MassData{Center: B2Vec2MulScalar(0.5, B2Vec2Add(poly.M_vertices[0], poly.M_vertices[1]))}
		return
	}

	vs := poly.verts()
	ref := vertexMean(vs)

	var moment B2Vec2
	area, inertia := 0.0, 0.0
	for i := range vs {
		e1 := B2Vec2Sub(vs[i], ref)
		e2 := B2Vec2Sub(vs[(i+1)%len(vs)], ref)
		D := B2Vec2Cross(e1, e2)

		area += 0.5 * D
		moment.OperatorPlusInplace(B2Vec2MulScalar(D/6, B2Vec2Add(e1, e2)))
		inertia += D / 12 * (B2Vec2Dot(e1, e1) + B2Vec2Dot(e1, e2) + B2Vec2Dot(e2, e2))
	}

	B2Assert(area > B2_epsilon)
	offset := B2Vec2MulScalar(1/area, moment)

	massData.Mass = density * area
	massData.Center = B2Vec2Add(ref, offset)
	// Parallel axis: from ref to the centroid, then out to the shape origin.
	massData.I = density*inertia + massData.Mass*(massData.Center.LengthSquared()-offset.LengthSquared())
}

/// ComputeSubmergedArea clips the polygon against the plane and sums the
/// wet part as a fan from the entry point.
func (poly B2PolygonShape) ComputeSubmergedArea(normal B2Vec2, offset float64, xf B2Transform, c *B2Vec2) float64 {
	n := B2Vec2Mat22MulT(xf.R, normal)
	off := offset - B2Vec2Dot(normal, xf.P)
	count := poly.M_count

	var depth [B2_maxPolygonVertices]float64
	into, outOf := -1, -1
	crossings := 0
	wet := false
	for i := 0; i < count; i++ {
		depth[i] = B2Vec2Dot(n, poly.M_vertices[i]) - off
		under := depth[i] < -B2_epsilon
		if i > 0 && under != wet {
			if under {
				into = i - 1
			} else {
				outOf = i - 1
			}
			crossings++
		}
		wet = under
	}

	if crossings == 0 {
		if !wet {
			return 0
		}
		var md B2MassData
		poly.ComputeMass(&md, 1)
		*c = B2TransformVec2Mul(xf, md.Center)
		return md.Mass
	}
	if crossings == 1 {
		// The wrap from the last vertex to the first crosses too.
		if into == -1 {
			into = count - 1
		} else {
			outOf = count - 1
		}
	}

	cut := func(i int) (B2Vec2, int) {
		j := (i + 1) % count
		t := -depth[i] / (depth[j] - depth[i])
		return lerpVec2(poly.M_vertices[i], poly.M_vertices[j], t), j
	}
	entry, into2 := cut(into)
	exit, outOf2 := cut(outOf)

	var centroid B2Vec2
	area := 0.0
	prev := poly.M_vertices[into2]
	for i := into2; i != outOf2; {
		i = (i + 1) % count
		next := poly.M_vertices[i]
		if i == outOf2 {
			next = exit
		}
		tri := 0.5 * B2Vec2Cross(B2Vec2Sub(prev, entry), B2Vec2Sub(next, entry))
		area += tri
		centroid.OperatorPlusInplace(B2Vec2MulScalar(tri/3, B2Vec2Add(B2Vec2Add(entry, prev), next)))
		prev = next
	}

	if area < B2_epsilon {
		return 0
	}
	*c = B2TransformVec2Mul(xf, B2Vec2MulScalar(1/area, centroid))
	return area
}

/// Validate reports whether every vertex lies left of, or on, every edge.
/// It is quadratic in the vertex count.
func (poly B2PolygonShape) Validate() bool {
	vs := poly.verts()
	for i, a := range vs {
		next := (i + 1) % len(vs)
		e := B2Vec2Sub(vs[next], a)
		for j, v := range vs {
			if j != i && j != next && B2Vec2Cross(e, B2Vec2Sub(v, a)) < 0 {
				return false
			}
		}
	}
	return true
}
