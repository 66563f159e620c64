// Package planar projects rigid 3D transforms onto the plane.
package planar

import (
	"math"

	"github.com/edwinhayes/ropose/msgs/geometry_msgs"
	"github.com/golang/geo/r3"
)

//RotationAngle returns the total rotation angle of q about its own axis,
//2*atan2(|(x,y,z)|, |w|), in [0, pi]. This is the magnitude of the full 3D
//rotation, not the yaw: a frame tilted by roll or pitch contributes its tilt
//to the result. The function is total; a non normalized or even all zero
//quaternion still yields a finite angle.
func RotationAngle(q geometry_msgs.Quaternion) float64 {
	v := r3.Vector{X: q.X, Y: q.Y, Z: q.Z}
	return 2 * math.Atan2(v.Norm(), math.Abs(q.W))
}

//Flatten projects a rigid transform to a planar pose. X and Y are copied
//from the translation, Z is discarded, and the heading is the total
//rotation angle of the quaternion.
func Flatten(t geometry_msgs.Transform) geometry_msgs.Pose2D {
	return geometry_msgs.Pose2D{
		X:     t.Translation.X,
		Y:     t.Translation.Y,
		Theta: RotationAngle(t.Rotation),
	}
}
