package box2d

/// B2CollideEdgeAndCircle splits the plane around the segment into the two
/// end point regions and the interior band. End point hits are circle
/// manifolds anchored at the vertex; interior hits use the segment normal
/// facing the circle.
func B2CollideEdgeAndCircle(manifold *B2Manifold, edgeA *B2EdgeShape, xfA B2Transform, circleB *B2CircleShape, xfB B2Transform) {
	manifold.PointCount = 0

	q := B2TransformVec2MulT(xfA, B2TransformVec2Mul(xfB, circleB.M_p))
	a, b := edgeA.M_vertex1, edgeA.M_vertex2
	e := B2Vec2Sub(b, a)
	r := edgeA.M_radius + circleB.M_radius

	id := B2ContactID{ReferenceEdge: B2_nullFeature, IncidentEdge: B2_nullFeature}

	// Weights of a and b for the projection of q onto the line.
	wa := B2Vec2Dot(e, B2Vec2Sub(b, q))
	wb := B2Vec2Dot(e, B2Vec2Sub(q, a))

	if wa <= 0 || wb <= 0 {
		p := a
		id.IncidentVertex = 0
		if wb > 0 {
			p = b
			id.IncidentVertex = 1
		}
		if B2Vec2DistanceSquared(q, p) > r*r {
			return
		}
		circleManifold(manifold, B2Manifold_Type.E_circles, p, B2Vec2{}, circleB.M_p)
		manifold.Points[0].Id = id
		return
	}

	lenSqr := e.LengthSquared()
	if lenSqr <= B2_epsilon {
		return
	}
	p := B2Vec2MulScalar(1/lenSqr, B2Vec2Add(B2Vec2MulScalar(wa, a), B2Vec2MulScalar(wb, b)))
	if B2Vec2DistanceSquared(q, p) > r*r {
		return
	}

	n := e.Skew()
	if B2Vec2Dot(n, B2Vec2Sub(q, a)) < 0 {
		n = n.OperatorNegate()
	}
	n.Normalize()

	id.ReferenceEdge = 0
	id.IncidentVertex = B2_nullFeature
	circleManifold(manifold, B2Manifold_Type.E_faceA, a, n, circleB.M_p)
	manifold.Points[0].Id = id
}

/// B2CollideEdgeAndPolygon collides the edge as a two sided, two vertex
/// polygon. Degenerate edges produce no contact.
func B2CollideEdgeAndPolygon(manifold *B2Manifold, edgeA *B2EdgeShape, xfA B2Transform, polygonB *B2PolygonShape, xfB B2Transform) {
	manifold.PointCount = 0
	if B2Vec2DistanceSquared(edgeA.M_vertex1, edgeA.M_vertex2) <= B2_epsilon*B2_epsilon {
		return
	}

	slab := MakeB2PolygonShape()
	slab.SetAsEdge(edgeA.M_vertex1, edgeA.M_vertex2)
	slab.M_radius = edgeA.M_radius
	B2CollidePolygons(manifold, &slab, xfA, polygonB, xfB)
}
