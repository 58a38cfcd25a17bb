package playback

import "math"

// Vec3 is a 3-component vector used for position, rotation (radians, ZYX
// order), scale, and pivot throughout the node and layer model.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Vec4 is a 4-component vector, used for homogeneous coordinates and for
// the opaque Vec4 attribute type.
type Vec4 struct {
	X, Y, Z, W float64
}

// Mat4 is a row-major 4x4 matrix.
type Mat4 [16]float64

// identityMat4 is the 4x4 identity matrix.
var identityMat4 = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Mul returns m * o. Applied to a column vector, o acts first and m second,
// so parent.Mul(child) maps child-local points into the parent's space.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * o[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

// MulPoint transforms a point (w=1) by m.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	x := m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]
	y := m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]
	z := m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]
	return Vec3{x, y, z}
}

func translationMat4(v Vec3) Mat4 {
	m := identityMat4
	m[3], m[7], m[11] = v.X, v.Y, v.Z
	return m
}

func scaleMat4(v Vec3) Mat4 {
	m := identityMat4
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// rotationMat4ZYX builds a rotation matrix for Euler angles applied in
// Z, then Y, then X order (intrinsic), using the standard CCW-positive
// convention. The spec's user-facing rotation is clockwise-positive
// looking down each axis, so callers MUST negate angles before calling
// this — see negateForCCW below. Keeping the negation at one call site
// (layerTransformMat4 below) avoids scattering sign flips.
func rotationMat4ZYX(r Vec3) Mat4 {
	sx, cx := math.Sincos(r.X)
	sy, cy := math.Sincos(r.Y)
	sz, cz := math.Sincos(r.Z)

	rx := Mat4{
		1, 0, 0, 0,
		0, cx, -sx, 0,
		0, sx, cx, 0,
		0, 0, 0, 1,
	}
	ry := Mat4{
		cy, 0, sy, 0,
		0, 1, 0, 0,
		-sy, 0, cy, 0,
		0, 0, 0, 1,
	}
	rz := Mat4{
		cz, -sz, 0, 0,
		sz, cz, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	// Z * Y * X, applied to a column vector as Z(Y(X(v))).
	return rz.Mul(ry).Mul(rx)
}

// negateForCCW negates each component of a clockwise-positive user rotation
// so it can be fed to rotationMat4ZYX's CCW-positive convention.
func negateForCCW(r Vec3) Vec3 {
	return Vec3{-r.X, -r.Y, -r.Z}
}

// layerTransformMat4 builds the full local-to-parent-comp transform for a
// layer: Translate(-pivot) -> Scale -> Rotate(ZYX, CW-positive) -> Translate(position).
func layerTransformMat4(position, rotation, scale, pivot Vec3) Mat4 {
	t := translationMat4(position)
	rot := rotationMat4ZYX(negateForCCW(rotation))
	s := scaleMat4(scale)
	negPivot := translationMat4(pivot.Scale(-1))
	return t.Mul(rot).Mul(s).Mul(negPivot)
}

// invertAffine3 inverts a transform built purely from translation, rotation,
// and uniform-ish scale (no skew), by inverting the 3x3 block and negating
// the translated origin. Falls back to the identity for a singular 3x3 block.
func invertAffine3(m Mat4) Mat4 {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[4], m[5], m[6]
	g, h, i := m[8], m[9], m[10]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det > -1e-12 && det < 1e-12 {
		return identityMat4
	}
	invDet := 1.0 / det

	r := identityMat4
	r[0] = (e*i - f*h) * invDet
	r[1] = (c*h - b*i) * invDet
	r[2] = (b*f - c*e) * invDet
	r[4] = (f*g - d*i) * invDet
	r[5] = (a*i - c*g) * invDet
	r[6] = (c*d - a*f) * invDet
	r[8] = (d*h - e*g) * invDet
	r[9] = (b*g - a*h) * invDet
	r[10] = (a*e - b*d) * invDet

	tx, ty, tz := m[3], m[7], m[11]
	r[3] = -(r[0]*tx + r[1]*ty + r[2]*tz)
	r[7] = -(r[4]*tx + r[5]*ty + r[6]*tz)
	r[11] = -(r[8]*tx + r[9]*ty + r[10]*tz)
	return r
}

// orthoMat4 builds a simple orthographic projection mapping a width x height
// plane centered at the origin to normalized [-1, 1] clip space. Composer
// does not call it: its camera view without a camera layer is identityMat4.
func orthoMat4(width, height float64) Mat4 {
	m := identityMat4
	if width == 0 || height == 0 {
		return m
	}
	m[0] = 2 / width
	m[5] = -2 / height // Y down in comp space maps to Y up in clip space
	return m
}
