// Package tf maintains a tree of rigid transforms between named frames,
// fed from the /tf and /tf_static topics, and answers latest-transform
// queries by chaining edges through the tree.
package tf

import (
	"github.com/edwinhayes/ropose/msgs/geometry_msgs"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

//Transform is a rigid transform: a rotation followed by a translation.
//Rotations are unit quaternions, as they are on the wire; no normalization
//is applied here.
type Transform struct {
	Rotation    quat.Number
	Translation r3.Vector
}

//Identity returns the transform that maps every point to itself.
func Identity() Transform {
	return Transform{Rotation: quat.Number{Real: 1}}
}

//FromMsg converts a wire transform into its algebraic form.
func FromMsg(m geometry_msgs.Transform) Transform {
	return Transform{
		Rotation: quat.Number{
			Real: m.Rotation.W,
			Imag: m.Rotation.X,
			Jmag: m.Rotation.Y,
			Kmag: m.Rotation.Z,
		},
		Translation: r3.Vector{
			X: m.Translation.X,
			Y: m.Translation.Y,
			Z: m.Translation.Z,
		},
	}
}

//ToMsg converts the transform back into its wire form.
func (t Transform) ToMsg() geometry_msgs.Transform {
	return geometry_msgs.Transform{
		Translation: geometry_msgs.Vector3{
			X: t.Translation.X,
			Y: t.Translation.Y,
			Z: t.Translation.Z,
		},
		Rotation: geometry_msgs.Quaternion{
			X: t.Rotation.Imag,
			Y: t.Rotation.Jmag,
			Z: t.Rotation.Kmag,
			W: t.Rotation.Real,
		},
	}
}

func (t Transform) rotate(v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(t.Rotation, p), quat.Conj(t.Rotation))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

//Apply maps a point through the transform: R*p + t.
func (t Transform) Apply(v r3.Vector) r3.Vector {
	return t.rotate(v).Add(t.Translation)
}

//Mul composes two transforms so that t.Mul(o).Apply(p) == t.Apply(o.Apply(p)).
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Rotation:    quat.Mul(t.Rotation, o.Rotation),
		Translation: t.Apply(o.Translation),
	}
}

//Invert returns the inverse transform. The inverse rotation is the
//conjugate and the translation is back-rotated and negated.
func (t Transform) Invert() Transform {
	inv := Transform{Rotation: quat.Conj(t.Rotation)}
	inv.Translation = inv.rotate(t.Translation).Mul(-1)
	return inv
}
