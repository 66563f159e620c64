package geometry_msgs

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestPose2DWireLayout(t *testing.T) {
	// Three little endian float64 fields, 24 bytes, no padding.
	m := Pose2D{X: 1.0, Y: 2.0, Theta: 0.5}
	var buf bytes.Buffer
	if err := m.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	if len(b) != 24 {
		t.Fatalf("Expected 24 bytes but %d", len(b))
	}

	x := math.Float64frombits(binary.LittleEndian.Uint64(b[0:8]))
	y := math.Float64frombits(binary.LittleEndian.Uint64(b[8:16]))
	theta := math.Float64frombits(binary.LittleEndian.Uint64(b[16:24]))
	if x != 1.0 || y != 2.0 || theta != 0.5 {
		t.Error(x, y, theta)
	}

	var out Pose2D
	if err := out.Deserialize(bytes.NewReader(b)); err != nil {
		t.Fatal(err)
	}
	if out != m {
		t.Error(out)
	}
}

func TestPose2DTruncated(t *testing.T) {
	var out Pose2D
	if err := out.Deserialize(bytes.NewReader(make([]byte, 8))); err == nil {
		t.Fail()
	}
}
