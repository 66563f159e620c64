package tf

import (
	"sync"

	"github.com/edwinhayes/ropose/msgs/geometry_msgs"
	"github.com/edwinhayes/ropose/msgs/std_msgs"
	"github.com/edwinhayes/ropose/msgs/tf2_msgs"
	"github.com/edwinhayes/ropose/ros"
)

//Broadcaster publishes stamped transforms on /tf.
type Broadcaster struct {
	pub ros.Publisher
	seq uint32
}

//NewBroadcaster registers a /tf publisher on the node.
func NewBroadcaster(node ros.Node) *Broadcaster {
	return &Broadcaster{pub: node.NewPublisher("/tf", tf2_msgs.MsgTFMessage, 100)}
}

//Send publishes the pose of child expressed in parent at the given stamp.
func (b *Broadcaster) Send(parent, child string, tr geometry_msgs.Transform, stamp ros.Time) {
	b.seq++
	msg := &tf2_msgs.TFMessage{
		Transforms: []geometry_msgs.TransformStamped{{
			Header:       std_msgs.Header{Seq: b.seq, Stamp: stamp, FrameId: parent},
			ChildFrameId: child,
			Transform:    tr,
		}},
	}
	b.pub.Publish(msg)
}

//StaticBroadcaster publishes transforms on /tf_static with latched
//delivery: every subscriber that connects receives the full static set,
//whenever it connects.
type StaticBroadcaster struct {
	mutex      sync.Mutex
	transforms map[string]geometry_msgs.TransformStamped
	pub        ros.Publisher
	seq        uint32
}

//NewStaticBroadcaster registers a /tf_static publisher whose connect
//callback replays the static set to each new subscriber.
func NewStaticBroadcaster(node ros.Node) *StaticBroadcaster {
	b := &StaticBroadcaster{transforms: make(map[string]geometry_msgs.TransformStamped)}
	b.pub = node.NewPublisherWithCallbacks("/tf_static", tf2_msgs.MsgTFMessage, 1, b.onConnect, nil)
	return b
}

func (b *StaticBroadcaster) onConnect(ssp ros.SingleSubscriberPublisher) {
	msg := b.snapshot()
	if len(msg.Transforms) > 0 {
		ssp.Publish(msg)
	}
}

func (b *StaticBroadcaster) snapshot() *tf2_msgs.TFMessage {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	msg := new(tf2_msgs.TFMessage)
	for _, ts := range b.transforms {
		msg.Transforms = append(msg.Transforms, ts)
	}
	return msg
}

//Send adds or replaces the static pose of child expressed in parent and
//publishes the whole set to current subscribers.
func (b *StaticBroadcaster) Send(parent, child string, tr geometry_msgs.Transform, stamp ros.Time) {
	b.mutex.Lock()
	b.seq++
	b.transforms[child] = geometry_msgs.TransformStamped{
		Header:       std_msgs.Header{Seq: b.seq, Stamp: stamp, FrameId: parent},
		ChildFrameId: child,
		Transform:    tr,
	}
	b.mutex.Unlock()
	b.pub.Publish(b.snapshot())
}
