package box2d

import "math"

/// B2CircleShape is a solid disc of M_radius centered at M_p.
type B2CircleShape struct {
	B2Shape
	M_p B2Vec2
}

func MakeB2CircleShape() B2CircleShape {
	return B2CircleShape{B2Shape: B2Shape{M_type: B2Shape_Type.E_circle}}
}

func (shape B2CircleShape) Clone() B2ShapeInterface {
	clone := shape
	return &clone
}

func (shape B2CircleShape) TestPoint(xf B2Transform, p B2Vec2) bool {
	return B2Vec2DistanceSquared(p, B2TransformVec2Mul(xf, shape.M_p)) <= shape.M_radius*shape.M_radius
}

/// RayCast intersects the segment with the circle boundary by solving
/// |s + t*d| = r for the smaller root. Segments starting inside miss.
func (shape B2CircleShape) RayCast(output *B2RayCastOutput, input B2RayCastInput, xf B2Transform) bool {
	s := B2Vec2Sub(input.P1, B2TransformVec2Mul(xf, shape.M_p))
	d := B2Vec2Sub(input.P2, input.P1)

	dd := d.LengthSquared()
	sd := B2Vec2Dot(s, d)
	disc := sd*sd - dd*(s.LengthSquared()-shape.M_radius*shape.M_radius)
	if disc < 0 || dd < B2_epsilon {
		return false
	}

	// Root scaled by dd to avoid a division on the miss path.
	t := -(sd + math.Sqrt(disc))
	if t < 0 || t > input.MaxFraction*dd {
		return false
	}

	t /= dd
	output.Fraction = t
	output.Normal = B2Vec2Add(s, B2Vec2MulScalar(t, d))
	output.Normal.Normalize()
	return true
}

func (shape B2CircleShape) ComputeAABB(aabb *B2AABB, xf B2Transform) {
	c := B2TransformVec2Mul(xf, shape.M_p)
	r := B2Vec2{shape.M_radius, shape.M_radius}
	aabb.LowerBound, aabb.UpperBound = B2Vec2Sub(c, r), B2Vec2Add(c, r)
}

func (shape B2CircleShape) ComputeMass(massData *B2MassData, density float64) {
	r2 := shape.M_radius * shape.M_radius
	massData.Mass = density * B2_pi * r2
	massData.Center = shape.M_p
	// Disc inertia about its center, shifted to the shape origin.
	massData.I = massData.Mass * (0.5*r2 + shape.M_p.LengthSquared())
}

/// ComputeSubmergedArea integrates the circular segment below the plane.
func (shape B2CircleShape) ComputeSubmergedArea(normal B2Vec2, offset float64, xf B2Transform, c *B2Vec2) float64 {
	p := B2TransformVec2Mul(xf, shape.M_p)
	r := shape.M_radius

	// Depth of the center below the surface.
	depth := offset - B2Vec2Dot(normal, p)
	switch {
	case depth < B2_epsilon-r:
		return 0
	case depth > r:
		*c = p
		return B2_pi * r * r
	}

	r2, d2 := r*r, depth*depth
	area := r2*(math.Asin(depth/r)+0.5*B2_pi) + depth*math.Sqrt(r2-d2)
	shift := -2.0 / 3.0 * math.Pow(r2-d2, 1.5) / area
	*c = B2Vec2Add(p, B2Vec2MulScalar(shift, normal))
	return area
}
