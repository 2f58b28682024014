package box2d

/// B2MassData is the mass of a shape at a given density. Center is the
/// centroid in shape coordinates and I the inertia about the shape origin.
type B2MassData struct {
	Mass   float64
	Center B2Vec2
	I      float64
}

func MakeMassData() B2MassData { return B2MassData{} }

var B2Shape_Type = struct {
	E_circle  uint8
	E_edge    uint8
	E_polygon uint8
}{0, 1, 2}

/// B2ShapeInterface is the geometry attached to a fixture. Shapes live in
/// body coordinates; every query takes the body transform.
type B2ShapeInterface interface {
	Clone() B2ShapeInterface
	GetType() uint8

	/// GetRadius is the skin thickness. Polygons and edges use B2_polygonRadius.
	GetRadius() float64

	/// TestPoint reports whether the world point p lies inside the shape.
	TestPoint(xf B2Transform, p B2Vec2) bool

	RayCast(output *B2RayCastOutput, input B2RayCastInput, xf B2Transform) bool
	ComputeAABB(aabb *B2AABB, xf B2Transform)

	/// ComputeMass uses density in kg/m^2. Inertia is about the shape origin.
	ComputeMass(massData *B2MassData, density float64)

	/// ComputeSubmergedArea returns the area of the shape below the world
	/// plane dot(normal, x) = offset and writes its centroid to c.
	ComputeSubmergedArea(normal B2Vec2, offset float64, xf B2Transform, c *B2Vec2) float64
}

type B2Shape struct {
	M_type   uint8
	M_radius float64
}

func (shape B2Shape) GetType() uint8 { return shape.M_type }
func (shape B2Shape) GetRadius() float64 { return shape.M_radius }
