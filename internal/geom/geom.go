// Package geom provides the small amount of 3-D vector arithmetic the hull
// builder needs: face normals and a closed-half-space sidedness predicate.
package geom

// Vec3 is a 3-D vector with float64 components.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Normal returns (b-a) x (c-a), a normal of the plane through a, b, c. The
// sign depends on vertex order; callers resolve orientation against a known
// reference point rather than assuming a winding convention.
func Normal(a, b, c Vec3) Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// Above reports whether target lies in the closed half-space on the normal's
// origin side of the plane through a: dot(a - target, normal) >= 0. Points
// exactly on the plane count as above. There is no epsilon handling; inputs
// are assumed to be in general position.
func Above(a, normal, target Vec3) bool {
	return a.Sub(target).Dot(normal) >= 0
}
