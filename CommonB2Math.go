package box2d

import (
	"math"

	"golang.org/x/exp/constraints"
)

/// B2IsValid reports whether x is a finite number.
func B2IsValid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

/// B2Clamp limits a to the closed range [low, high].
func B2Clamp[T constraints.Integer | constraints.Float](a, low, high T) T {
	return max(low, min(a, high))
}

/// B2Vec2 is a column vector in the plane.
type B2Vec2 struct {
	X, Y float64
}

var B2Vec2_zero = B2Vec2{}

func MakeB2Vec2(x, y float64) B2Vec2 { return B2Vec2{X: x, Y: y} }

func (v *B2Vec2) SetZero() { *v = B2Vec2{} }
func (v *B2Vec2) Set(x, y float64) { v.X, v.Y = x, y }

func (v B2Vec2) OperatorNegate() B2Vec2 { return B2Vec2{-v.X, -v.Y} }

/// OperatorIndexGet returns X for i == 0 and Y otherwise.
func (v B2Vec2) OperatorIndexGet(i int) float64 {
	if i == 0 {
		return v.X
	}
	return v.Y
}

func (v *B2Vec2) OperatorIndexSet(i int, value float64) {
	if i == 0 {
		v.X = value
	} else {
		v.Y = value
	}
}

func (v *B2Vec2) OperatorPlusInplace(w B2Vec2) { v.X, v.Y = v.X+w.X, v.Y+w.Y }
func (v *B2Vec2) OperatorMinusInplace(w B2Vec2) { v.X, v.Y = v.X-w.X, v.Y-w.Y }
func (v *B2Vec2) OperatorScalarMulInplace(s float64) { v.X, v.Y = s*v.X, s*v.Y }

func (v B2Vec2) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y }
func (v B2Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

/// Normalize scales v to unit length and returns the old length.
/// Vectors shorter than B2_epsilon are left untouched and report zero.
func (v *B2Vec2) Normalize() float64 {
	n := v.Length()
	if n < B2_epsilon {
		return 0
	}
	v.OperatorScalarMulInplace(1 / n)
	return n
}

func (v B2Vec2) IsValid() bool { return B2IsValid(v.X) && B2IsValid(v.Y) }

/// Skew returns the perpendicular w with dot(w, u) == cross(v, u).
func (v B2Vec2) Skew() B2Vec2 { return B2Vec2{-v.Y, v.X} }

func B2Vec2Add(a, b B2Vec2) B2Vec2 { return B2Vec2{a.X + b.X, a.Y + b.Y} }
func B2Vec2Sub(a, b B2Vec2) B2Vec2 { return B2Vec2{a.X - b.X, a.Y - b.Y} }
func B2Vec2MulScalar(s float64, a B2Vec2) B2Vec2 { return B2Vec2{s * a.X, s * a.Y} }
func B2Vec2Dot(a, b B2Vec2) float64 { return a.X*b.X + a.Y*b.Y }

/// B2Vec2Cross is the z component of the 3D cross product.
func B2Vec2Cross(a, b B2Vec2) float64 { return a.X*b.Y - a.Y*b.X }

/// B2Vec2CrossVectorScalar computes a x s, treating s as a z axis value.
func B2Vec2CrossVectorScalar(a B2Vec2, s float64) B2Vec2 { return B2Vec2{s * a.Y, -s * a.X} }

/// B2Vec2CrossScalarVector computes s x a.
func B2Vec2CrossScalarVector(s float64, a B2Vec2) B2Vec2 { return B2Vec2{-s * a.Y, s * a.X} }

func B2Vec2Distance(a, b B2Vec2) float64 { return B2Vec2Sub(a, b).Length() }

func B2Vec2DistanceSquared(a, b B2Vec2) float64 { return B2Vec2Sub(a, b).LengthSquared() }

func B2Vec2Abs(a B2Vec2) B2Vec2 { return B2Vec2{math.Abs(a.X), math.Abs(a.Y)} }
func B2Vec2Min(a, b B2Vec2) B2Vec2 { return B2Vec2{min(a.X, b.X), min(a.Y, b.Y)} }
func B2Vec2Max(a, b B2Vec2) B2Vec2 { return B2Vec2{max(a.X, b.X), max(a.Y, b.Y)} }

/// B2Vec3 backs the 3x3 point-plus-angle systems of the revolute joint.
type B2Vec3 struct {
	X, Y, Z float64
}

func MakeB2Vec3(x, y, z float64) B2Vec3 { return B2Vec3{x, y, z} }

func (v *B2Vec3) SetZero() { *v = B2Vec3{} }
func (v B2Vec3) OperatorNegate() B2Vec3 { return B2Vec3{-v.X, -v.Y, -v.Z} }
func (v *B2Vec3) OperatorPlusInplace(w B2Vec3) {
	v.X, v.Y, v.Z = v.X+w.X, v.Y+w.Y, v.Z+w.Z
}
func (v *B2Vec3) OperatorScalarMultInplace(s float64) {
	v.X, v.Y, v.Z = s*v.X, s*v.Y, s*v.Z
}

func B2Vec3Dot(a, b B2Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func B2Vec3Cross(a, b B2Vec3) B2Vec3 {
	return B2Vec3{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

/// B2Mat22 is stored by columns. Rotations have Ex = (cos, sin) and
/// Ey = (-sin, cos).
type B2Mat22 struct {
	Ex, Ey B2Vec2
}

func MakeB2Mat22() B2Mat22 { return B2Mat22{} }

func MakeB2Mat22FromColumns(c1, c2 B2Vec2) B2Mat22 { return B2Mat22{Ex: c1, Ey: c2} }

func MakeB2Mat22FromAngle(angle float64) B2Mat22 {
	var m B2Mat22
	m.SetAngle(angle)
	return m
}

func (m *B2Mat22) SetAngle(angle float64) {
	s, c := math.Sincos(angle)
	m.Ex = B2Vec2{c, s}
	m.Ey = B2Vec2{-s, c}
}

func (m *B2Mat22) SetIdentity() { m.Ex, m.Ey = B2Vec2{1, 0}, B2Vec2{0, 1} }
func (m *B2Mat22) SetZero() { *m = B2Mat22{} }

/// GetAngle assumes m is a rotation.
func (m B2Mat22) GetAngle() float64 { return math.Atan2(m.Ex.Y, m.Ex.X) }

/// Solve returns x with m*x = b. A singular matrix yields the zero vector.
func (m B2Mat22) Solve(b B2Vec2) B2Vec2 {
	det := B2Vec2Cross(m.Ex, m.Ey)
	if det != 0 {
		det = 1 / det
	}
	return B2Vec2{
		det * (m.Ey.Y*b.X - m.Ey.X*b.Y),
		det * (m.Ex.X*b.Y - m.Ex.Y*b.X),
	}
}

/// B2Mat33 is stored by columns.
type B2Mat33 struct {
	Ex, Ey, Ez B2Vec3
}

/// Solve33 applies Cramer's rule. A singular matrix yields the zero vector.
func (m B2Mat33) Solve33(b B2Vec3) B2Vec3 {
	det := B2Vec3Dot(m.Ex, B2Vec3Cross(m.Ey, m.Ez))
	if det != 0 {
		det = 1 / det
	}
	return B2Vec3{
		det * B2Vec3Dot(b, B2Vec3Cross(m.Ey, m.Ez)),
		det * B2Vec3Dot(m.Ex, B2Vec3Cross(b, m.Ez)),
		det * B2Vec3Dot(m.Ex, B2Vec3Cross(m.Ey, b)),
	}
}

/// Solve22 solves against the upper-left 2x2 block only.
func (m B2Mat33) Solve22(b B2Vec2) B2Vec2 {
	return MakeB2Mat22FromColumns(B2Vec2{m.Ex.X, m.Ex.Y}, B2Vec2{m.Ey.X, m.Ey.Y}).Solve(b)
}

func B2Vec2Mat22Mul(m B2Mat22, v B2Vec2) B2Vec2 {
	return B2Vec2{m.Ex.X*v.X + m.Ey.X*v.Y, m.Ex.Y*v.X + m.Ey.Y*v.Y}
}

/// B2Vec2Mat22MulT multiplies by the transpose, undoing a rotation.
func B2Vec2Mat22MulT(m B2Mat22, v B2Vec2) B2Vec2 {
	return B2Vec2{B2Vec2Dot(v, m.Ex), B2Vec2Dot(v, m.Ey)}
}

/// B2Transform places a rigid frame: rotate by R, then translate by P.
type B2Transform struct {
	P B2Vec2
	R B2Mat22
}

func MakeB2Transform() B2Transform {
	var xf B2Transform
	xf.SetIdentity()
	return xf
}

func (xf *B2Transform) SetIdentity() {
	xf.P.SetZero()
	xf.R.SetIdentity()
}

func (xf *B2Transform) Set(position B2Vec2, angle float64) {
	xf.P = position
	xf.R.SetAngle(angle)
}

func (xf B2Transform) GetAngle() float64 { return xf.R.GetAngle() }

func B2TransformVec2Mul(xf B2Transform, v B2Vec2) B2Vec2 {
	return B2Vec2Add(xf.P, B2Vec2Mat22Mul(xf.R, v))
}

/// B2TransformVec2MulT maps a world point into the frame of xf.
func B2TransformVec2MulT(xf B2Transform, v B2Vec2) B2Vec2 {
	return B2Vec2Mat22MulT(xf.R, B2Vec2Sub(v, xf.P))
}

/// B2Sweep is the motion of a body's center of mass over a step, used
/// for time of impact. Shapes hang off the body origin, which is
/// LocalCenter away from the mass center.
type B2Sweep struct {
	LocalCenter B2Vec2
	C0, C       B2Vec2
	A0, A       float64

	/// Fraction of the step, in [0,1], that C0 and A0 correspond to.
	T0 float64
}

func lerpVec2(a, b B2Vec2, t float64) B2Vec2 {
	return B2Vec2{a.X + t*(b.X-a.X), a.Y + t*(b.Y-a.Y)}
}

/// GetTransform writes the body origin transform at fraction beta in [0,1]
/// of the interval starting at T0.
func (sweep B2Sweep) GetTransform(xf *B2Transform, beta float64) {
	xf.R.SetAngle(sweep.A0 + beta*(sweep.A-sweep.A0))
	xf.P = B2Vec2Sub(lerpVec2(sweep.C0, sweep.C, beta), B2Vec2Mat22Mul(xf.R, sweep.LocalCenter))
}

/// Advance moves the start of the sweep forward to time t.
func (sweep *B2Sweep) Advance(t float64) {
	if t <= sweep.T0 || 1-sweep.T0 <= B2_epsilon {
		return
	}
	beta := (t - sweep.T0) / (1 - sweep.T0)
	sweep.C0 = lerpVec2(sweep.C0, sweep.C, beta)
	sweep.A0 += beta * (sweep.A - sweep.A0)
	sweep.T0 = t
}

/// Normalize shifts both angles by a multiple of 2pi so that A0 is in [0, 2pi).
func (sweep *B2Sweep) Normalize() {
	d := 2 * B2_pi * math.Floor(sweep.A0/(2*B2_pi))
	sweep.A0 -= d
	sweep.A -= d
}
