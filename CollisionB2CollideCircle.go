package box2d

// circleManifold fills m with a single point whose local anchor is the
// center of circle B.
func circleManifold(m *B2Manifold, kind uint8, localPoint, localNormal, centerB B2Vec2) {
	m.Type = kind
	m.LocalPoint = localPoint
	m.LocalNormal = localNormal
	m.Points[0] = B2ManifoldPoint{LocalPoint: centerB}
	m.PointCount = 1
}

/// B2CollideCircles produces one circle manifold point when the circles
/// overlap, touching included.
func B2CollideCircles(manifold *B2Manifold, circleA *B2CircleShape, xfA B2Transform, circleB *B2CircleShape, xfB B2Transform) {
	manifold.PointCount = 0

	gap := B2Vec2DistanceSquared(B2TransformVec2Mul(xfB, circleB.M_p), B2TransformVec2Mul(xfA, circleA.M_p))
	r := circleA.M_radius + circleB.M_radius
	if gap > r*r {
		return
	}

	circleManifold(manifold, B2Manifold_Type.E_circles, circleA.M_p, B2Vec2{}, circleB.M_p)
}

/// B2CollidePolygonAndCircle finds the polygon face of least penetration
/// and then classifies the circle center against that face and its two
/// end vertices. A vertex region yields a normal through the vertex.
func B2CollidePolygonAndCircle(manifold *B2Manifold, polygonA *B2PolygonShape, xfA B2Transform, circleB *B2CircleShape, xfB B2Transform) {
	manifold.PointCount = 0

	c := B2TransformVec2MulT(xfA, B2TransformVec2Mul(xfB, circleB.M_p))
	r := polygonA.M_radius + circleB.M_radius
	n := polygonA.M_count

	face, sep := 0, -B2_maxFloat
	for i := 0; i < n; i++ {
		s := B2Vec2Dot(polygonA.M_normals[i], B2Vec2Sub(c, polygonA.M_vertices[i]))
		if s > r {
			return
		}
		if s > sep {
			face, sep = i, s
		}
	}

	v1 := polygonA.M_vertices[face]
	v2 := polygonA.M_vertices[(face+1)%n]
	mid := B2Vec2MulScalar(0.5, B2Vec2Add(v1, v2))
	faceA := B2Manifold_Type.E_faceA

	if sep < B2_epsilon {
		// Center inside the polygon.
		circleManifold(manifold, faceA, mid, polygonA.M_normals[face], circleB.M_p)
		return
	}

	var corner *B2Vec2
	if B2Vec2Dot(B2Vec2Sub(c, v1), B2Vec2Sub(v2, v1)) <= 0 {
		corner = &v1
	} else if B2Vec2Dot(B2Vec2Sub(c, v2), B2Vec2Sub(v1, v2)) <= 0 {
		corner = &v2
	}

	if corner != nil {
		if B2Vec2DistanceSquared(c, *corner) > r*r {
			return
		}
		normal := B2Vec2Sub(c, *corner)
		normal.Normalize()
		circleManifold(manifold, faceA, *corner, normal, circleB.M_p)
		return
	}

	if B2Vec2Dot(B2Vec2Sub(c, mid), polygonA.M_normals[face]) > r {
		return
	}
	circleManifold(manifold, faceA, mid, polygonA.M_normals[face], circleB.M_p)
}
