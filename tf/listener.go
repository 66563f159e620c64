package tf

import (
	modular "github.com/edwinhayes/logrus-modular"

	"github.com/edwinhayes/ropose/msgs/geometry_msgs"
	"github.com/edwinhayes/ropose/msgs/tf2_msgs"
	"github.com/edwinhayes/ropose/ros"
)

//Listener owns a Buffer and keeps it fed from the /tf and /tf_static
//topics. Lookups delegate to the buffer, so a Listener can stand wherever
//a latest-transform source is needed.
type Listener struct {
	node   ros.Node
	buffer *Buffer
	logger *modular.ModuleLogger
}

//NewListener subscribes to /tf and /tf_static on the given node and routes
//every stamped transform into a fresh buffer with the given cache duration.
func NewListener(node ros.Node, cacheTime ros.Duration) *Listener {
	l := &Listener{
		node:   node,
		buffer: NewBuffer(cacheTime),
		logger: node.Logger(),
	}
	node.NewSubscriber("/tf", tf2_msgs.MsgTFMessage, l.handleDynamic)
	node.NewSubscriber("/tf_static", tf2_msgs.MsgTFMessage, l.handleStatic)
	l.warnIfUnpublished()
	return l
}

func (l *Listener) handleDynamic(msg *tf2_msgs.TFMessage) {
	l.ingest(msg, false)
}

func (l *Listener) handleStatic(msg *tf2_msgs.TFMessage) {
	l.ingest(msg, true)
}

//ingest stamps incoming transforms with the receive time rather than the
//header stamp, so expiry stays meaningful when publishers run on a
//different clock.
func (l *Listener) ingest(msg *tf2_msgs.TFMessage, static bool) {
	logger := *l.logger
	now := ros.Now()
	for i := range msg.Transforms {
		ts := &msg.Transforms[i]
		if ts.Header.FrameId == "" || ts.ChildFrameId == "" {
			logger.Debugf("Dropping transform with empty frame id (%q -> %q)",
				ts.Header.FrameId, ts.ChildFrameId)
			continue
		}
		l.buffer.Set(ts.Header.FrameId, ts.ChildFrameId, ts.Transform, now, static)
	}
}

//warnIfUnpublished asks the master whether anything publishes transforms
//yet and warns once when nothing does. Lookups keep failing harmlessly
//until the first message arrives either way.
func (l *Listener) warnIfUnpublished() {
	logger := *l.logger
	topics, err := l.node.GetPublishedTopics("")
	if err != nil {
		logger.Debugf("getPublishedTopics failed: %s", err)
		return
	}
	for _, item := range topics {
		if pair, ok := item.([]interface{}); ok && len(pair) > 0 {
			if name, ok := pair[0].(string); ok {
				if name == "/tf" || name == "/tf_static" {
					return
				}
			}
		}
	}
	logger.Warn("No publisher on /tf yet; lookups will fail until transforms arrive")
}

//LookupLatest returns the latest pose of body expressed in fixed.
func (l *Listener) LookupLatest(fixed, body string) (geometry_msgs.Transform, error) {
	return l.buffer.LookupLatest(fixed, body)
}

//Buffer exposes the underlying buffer.
func (l *Listener) Buffer() *Buffer {
	return l.buffer
}

//Close unsubscribes from the transform topics. The buffer keeps whatever
//it holds but stops receiving updates.
func (l *Listener) Close() {
	l.node.RemoveSubscriber("/tf")
	l.node.RemoveSubscriber("/tf_static")
}
