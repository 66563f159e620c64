// Package bridge drives the fixed-rate sample, project, publish loop that
// turns the latest rigid transform between two frames into a planar pose
// on a topic.
package bridge

import (
	modular "github.com/edwinhayes/logrus-modular"

	"github.com/edwinhayes/ropose/msgs/geometry_msgs"
	"github.com/edwinhayes/ropose/planar"
	"github.com/edwinhayes/ropose/ros"
)

//TransformSource answers latest-transform queries: the pose of the body
//frame expressed in the fixed frame, as last observed. A source that has
//nothing to report returns an error and the iteration is skipped.
type TransformSource interface {
	LookupLatest(fixed, body string) (geometry_msgs.Transform, error)
}

//PoseSink accepts planar poses fire and forget. ros.Publisher satisfies it.
type PoseSink interface {
	Publish(msg ros.Message)
}

//Pacer paces a fixed-rate loop. Sleep blocks or cooperatively yields until
//the current period has elapsed, measured from the period start, then
//advances the period start by one period. Reset re-anchors the period
//start at the current time. *ros.Rate is the thread-blocking
//implementation.
type Pacer interface {
	Sleep() error
	Reset()
}

//Bridge holds the loop collaborators. All fields are fixed at
//construction; the only state that changes across iterations is the
//pacer's period anchor.
type Bridge struct {
	source TransformSource
	sink   PoseSink
	pacer  Pacer
	fixed  string
	body   string
	logger *modular.ModuleLogger
}

//New assembles a bridge from its collaborators. fixed and body are frame
//names, typically odom and base_link.
func New(source TransformSource, sink PoseSink, pacer Pacer, fixed, body string, logger *modular.ModuleLogger) *Bridge {
	return &Bridge{
		source: source,
		sink:   sink,
		pacer:  pacer,
		fixed:  fixed,
		body:   body,
		logger: logger,
	}
}

//Step runs one iteration: sample the latest transform, project it to the
//plane and publish. When the transform is unavailable nothing is published
//and Step reports false; the miss is logged at debug severity only, so a
//node waiting for its first transform stays quiet.
func (b *Bridge) Step() bool {
	tr, err := b.source.LookupLatest(b.fixed, b.body)
	if err != nil {
		logger := *b.logger
		logger.Debugf("No transform %s -> %s this cycle: %s", b.fixed, b.body, err)
		return false
	}
	pose := planar.Flatten(tr)
	b.sink.Publish(&pose)
	return true
}

//Run re-anchors the pacer and loops Step then Sleep while ok reports true.
//Cancellation is observed between iterations; the iteration in flight
//always completes. Publication, when it happens, precedes pacing.
func (b *Bridge) Run(ok func() bool) {
	b.pacer.Reset()
	for ok() {
		b.Step()
		if err := b.pacer.Sleep(); err != nil {
			logger := *b.logger
			logger.Warnf("Pacer failed: %s", err)
		}
	}
}
