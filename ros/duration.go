package ros

import (
	"time"
)

//Duration is a span of ROS time as a {sec,nsec} pair.
type Duration struct {
	temporal
}

//NewDuration creates a Duration from the given {sec,nsec} pair.
func NewDuration(sec uint32, nsec uint32) Duration {
	sec, nsec = normalizeTemporal(int64(sec), int64(nsec))
	return Duration{temporal{sec, nsec}}
}

//NewDurationFromSec creates a Duration from floating point seconds.
func NewDurationFromSec(sec float64) Duration {
	var d Duration
	d.FromSec(sec)
	return d
}

//Add returns the sum of this Duration and other.
func (d *Duration) Add(other Duration) Duration {
	sec, nsec := normalizeTemporal(int64(d.Sec)+int64(other.Sec),
		int64(d.NSec)+int64(other.NSec))
	return Duration{temporal{sec, nsec}}
}

//Sub returns this Duration shortened by other.
func (d *Duration) Sub(other Duration) Duration {
	sec, nsec := normalizeTemporal(int64(d.Sec)-int64(other.Sec),
		int64(d.NSec)-int64(other.NSec))
	return Duration{temporal{sec, nsec}}
}

//Cmp returns 1, -1 or 0 as this Duration is longer, shorter or equal to other.
func (d *Duration) Cmp(other Duration) int {
	return cmpUint64(d.ToNSec(), other.ToNSec())
}

//Sleep blocks the calling goroutine for this Duration.
func (d *Duration) Sleep() error {
	if !d.IsZero() {
		time.Sleep(time.Duration(d.ToNSec()) * time.Nanosecond)
	}
	return nil
}
