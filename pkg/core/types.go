// pkg/core/types.go
package core

import "math"

// Vec3 is a position or force vector [x, y, z] in the yaw-aligned frame.
// x points downwind along the shaft, z points up.
type Vec3 [3]float64

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the scalar product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// IsFinite reports whether every element is neither NaN nor infinite.
func (v Vec3) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Inertia holds principal mass moments [Ixx, Iyy, Izz] about a component's own centre.
type Inertia [3]float64

// IsFinite reports whether every element is neither NaN nor infinite.
func (i Inertia) IsFinite() bool {
	return Vec3(i).IsFinite()
}

// Tensor6 is a full inertia tensor stored as [Ixx, Iyy, Izz, Ixy, Ixz, Iyz].
type Tensor6 [6]float64

// IsFinite reports whether every element is neither NaN nor infinite.
func (t Tensor6) IsFinite() bool {
	for _, x := range t {
		if !Finite(x) {
			return false
		}
	}
	return true
}

// MassProps is the mass, centre of mass and inertia of one component.
type MassProps struct {
	Mass float64 `json:"mass"`
	CM   Vec3    `json:"cm"`
	I    Inertia `json:"I"`
}

// Finite reports whether x is neither NaN nor infinite.
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
