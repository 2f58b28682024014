package box2d

/// B2EdgeShape is a segment with a polygon skin. It has no area or mass.
/// Edges collide with circles and polygons but not with other edges.
type B2EdgeShape struct {
	B2Shape
	M_vertex1, M_vertex2 B2Vec2
}

func MakeB2EdgeShape() B2EdgeShape {
	return B2EdgeShape{B2Shape: B2Shape{M_type: B2Shape_Type.E_edge, M_radius: B2_polygonRadius}}
}

func (edge *B2EdgeShape) Set(v1, v2 B2Vec2) {
	edge.M_vertex1, edge.M_vertex2 = v1, v2
}

func (edge B2EdgeShape) Clone() B2ShapeInterface {
	clone := edge
	return &clone
}

func (edge B2EdgeShape) TestPoint(xf B2Transform, p B2Vec2) bool { return false }

/// RayCast hits either side of the segment. The normal faces the ray origin.
func (edge B2EdgeShape) RayCast(output *B2RayCastOutput, input B2RayCastInput, xf B2Transform) bool {
	p1 := B2TransformVec2MulT(xf, input.P1)
	d := B2Vec2Sub(B2TransformVec2MulT(xf, input.P2), p1)

	e := B2Vec2Sub(edge.M_vertex2, edge.M_vertex1)
	ee := e.LengthSquared()
	if ee == 0 {
		return false
	}
	n := B2Vec2{e.Y, -e.X}
	n.Normalize()

	// Distance of p1 to the line, and how fast the ray closes it.
	gap := B2Vec2Dot(n, B2Vec2Sub(edge.M_vertex1, p1))
	rate := B2Vec2Dot(n, d)
	if rate == 0 {
		return false
	}

	t := gap / rate
	if t < 0 || t > input.MaxFraction {
		return false
	}

	hit := B2Vec2Add(p1, B2Vec2MulScalar(t, d))
	if s := B2Vec2Dot(B2Vec2Sub(hit, edge.M_vertex1), e) / ee; s < 0 || s > 1 {
		return false
	}

	if gap > 0 {
		n = n.OperatorNegate()
	}
	output.Fraction = t
	output.Normal = B2Vec2Mat22Mul(xf.R, n)
	return true
}

func (edge B2EdgeShape) ComputeAABB(aabb *B2AABB, xf B2Transform) {
	a := B2TransformVec2Mul(xf, edge.M_vertex1)
	b := B2TransformVec2Mul(xf, edge.M_vertex2)
	r := B2Vec2{edge.M_radius, edge.M_radius}
	aabb.LowerBound = B2Vec2Sub(B2Vec2Min(a, b), r)
	aabb.UpperBound = B2Vec2Add(B2Vec2Max(a, b), r)
}

func (edge B2EdgeShape) ComputeMass(massData *B2MassData, density float64) {
	*massData = B2MassData{Center: B2Vec2MulScalar(0.5, B2Vec2Add(edge.M_vertex1, edge.M_vertex2))}
}

/// ComputeSubmergedArea returns the signed area of the triangle spanned by
/// the submerged part of the segment and the point offset*normal.
func (edge B2EdgeShape) ComputeSubmergedArea(normal B2Vec2, offset float64, xf B2Transform, c *B2Vec2) float64 {
	apex := B2Vec2MulScalar(offset, normal)
	a := B2TransformVec2Mul(xf, edge.M_vertex1)
	b := B2TransformVec2Mul(xf, edge.M_vertex2)
	da := B2Vec2Dot(normal, a) - offset
	db := B2Vec2Dot(normal, b) - offset

	if da > 0 && db > 0 {
		return 0
	}
	if da > 0 || db > 0 {
		cut := B2Vec2Add(B2Vec2MulScalar(-db/(da-db), a), B2Vec2MulScalar(da/(da-db), b))
		if da > 0 {
			a = cut
		} else {
			b = cut
		}
	}

	*c = B2Vec2MulScalar(1.0/3.0, B2Vec2Add(B2Vec2Add(apex, a), b))
	return 0.5 * B2Vec2Cross(B2Vec2Sub(a, apex), B2Vec2Sub(b, apex))
}
