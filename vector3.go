package tustinpid

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Vector3 is three independent channels. It shares r3.Vector's layout so the two convert freely.
type Vector3 struct {
	X, Y, Z float64
}

// Fill returns a vector with every channel set to s.
func Fill(s float64) Vector3 {
	return Vector3{s, s, s}
}

// FromR3 converts a geo vector.
func FromR3(v r3.Vector) Vector3 {
	return Vector3(v)
}

// R3 converts to a geo vector.
func (v Vector3) R3() r3.Vector {
	return r3.Vector(v)
}

// elementwise

func Add(a, b Vector3) Vector3 {
	return Vector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func Sub(a, b Vector3) Vector3 {
	return Vector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func Mul(a, b Vector3) Vector3 {
	return Vector3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

func Add3(a, b, c Vector3) Vector3 {
	return Vector3{a.X + b.X + c.X, a.Y + b.Y + c.Y, a.Z + b.Z + c.Z}
}

// scalar broadcast, scalar always on the left

func AddScalar(s float64, v Vector3) Vector3 {
	return Vector3{s + v.X, s + v.Y, s + v.Z}
}

// SubScalar returns s - v, not v - s.
func SubScalar(s float64, v Vector3) Vector3 {
	return Vector3{s - v.X, s - v.Y, s - v.Z}
}

func MulScalar(s float64, v Vector3) Vector3 {
	return Vector3{s * v.X, s * v.Y, s * v.Z}
}

// Clamp bounds every channel of v to [lo, hi]. lo must not exceed hi on any channel.
func Clamp(v, lo, hi Vector3) Vector3 {
	return Vector3{
		clamp(v.X, lo.X, hi.X),
		clamp(v.Y, lo.Y, hi.Y),
		clamp(v.Z, lo.Z, hi.Z),
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Add implements Channels.
func (v Vector3) Add(o Vector3) Vector3 { return Add(v, o) }

// Sub implements Channels.
func (v Vector3) Sub(o Vector3) Vector3 { return Sub(v, o) }

// Scale implements Channels.
func (v Vector3) Scale(s float64) Vector3 { return MulScalar(s, v) }

// Clamp implements Channels.
func (v Vector3) Clamp(lo, hi Vector3) Vector3 { return Clamp(v, lo, hi) }

// Components implements Channels.
func (v Vector3) Components() []float64 { return []float64{v.X, v.Y, v.Z} }

func (v Vector3) String() string {
	return fmt.Sprintf("[%v %v %v]", v.X, v.Y, v.Z)
}

// Scalar is the one channel case of Channels.
type Scalar float64

func (s Scalar) Add(o Scalar) Scalar { return s + o }
func (s Scalar) Sub(o Scalar) Scalar { return s - o }
func (s Scalar) Scale(k float64) Scalar { return Scalar(k * float64(s)) }
func (s Scalar) Clamp(lo, hi Scalar) Scalar { return Scalar(clamp(float64(s), float64(lo), float64(hi))) }
func (s Scalar) Components() []float64 { return []float64{float64(s)} }
