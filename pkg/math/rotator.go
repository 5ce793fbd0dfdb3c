package math

import "math"

// Rotator is an Euler rotation in degrees. Yaw turns around +Z (counter
// clockwise seen from above), positive Pitch lifts the +X axis towards +Z,
// Roll turns around +X.
type Rotator struct {
	Pitch, Yaw, Roll float32
}

// RotatorFromDirection returns the yaw and pitch that point +X along d.
// Roll is always zero.
func RotatorFromDirection(d Vec3) Rotator {
	yaw := math.Atan2(float64(d.Y), float64(d.X))
	pitch := math.Atan2(float64(d.Z), math.Sqrt(float64(d.X*d.X+d.Y*d.Y)))
	return Rotator{
		Pitch: float32(pitch * 180 / math.Pi),
		Yaw:   float32(yaw * 180 / math.Pi),
	}
}

// AddYaw returns r turned by delta degrees around Z.
func (r Rotator) AddYaw(delta float32) Rotator {
	r.Yaw += delta
	return r
}

// Vector returns the unit direction of the rotated +X axis.
func (r Rotator) Vector() Vec3 {
	cp, sp := sincosDeg(r.Pitch)
	cy, sy := sincosDeg(r.Yaw)
	return Vec3{cp * cy, cp * sy, sp}
}

// Quat converts the rotator to a quaternion (roll, then pitch, then yaw).
func (r Rotator) Quat() Quat {
	yaw := QuatFromAxisAngle(Vec3{0, 0, 1}, radians(r.Yaw))
	pitch := QuatFromAxisAngle(Vec3{0, 1, 0}, -radians(r.Pitch))
	roll := QuatFromAxisAngle(Vec3{1, 0, 0}, radians(r.Roll))
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// Matrix returns the rotation as a matrix, consistent with Quat.
func (r Rotator) Matrix() Mat4 {
	return RotateZ(radians(r.Yaw)).Mul(RotateY(-radians(r.Pitch))).Mul(RotateX(radians(r.Roll)))
}

func radians(deg float32) float32 {
	return deg * math.Pi / 180
}

func sincosDeg(deg float32) (c, s float32) {
	sin, cos := math.Sincos(float64(radians(deg)))
	return float32(cos), float32(sin)
}
