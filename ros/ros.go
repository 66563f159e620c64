package ros

import (
	"time"

	modular "github.com/edwinhayes/logrus-modular"
)

//Node is a running participant of a ROS graph. All methods must be called
//from the goroutine that created the node.
type Node interface {
	//NewPublisher registers a new topic publisher. queueSize caps the
	//outgoing queue kept per subscriber; values below one are treated as
	//one and the oldest message is dropped when the queue is full.
	NewPublisher(topic string, msgType MessageType, queueSize int) Publisher
	// Create a publisher which gives you callbacks when subscribers
	// connect and disconnect.  The callbacks are called in their own
	// goroutines, so they don't need to return immediately to let the
	// connection proceed.
	NewPublisherWithCallbacks(topic string,
		msgType MessageType, queueSize int,
		connectCallback, disconnectCallback func(SingleSubscriberPublisher)) Publisher
	// callback should be a function which takes 0, 1, or 2 arguments.
	// If it takes 0 arguments, it will simply be called without the
	// message.  1-argument functions are the normal case, and the
	// argument should be of the generated message type.  If the
	// function takes 2 arguments, the first argument should be of the
	// generated message type and the second argument should be of
	// type MessageEvent.
	NewSubscriber(topic string, msgType MessageType, callback interface{}) Subscriber
	RemovePublisher(topic string)
	RemoveSubscriber(topic string)

	GetPublishedTopics(subgraph string) ([]interface{}, error)

	OK() bool
	SpinOnce()
	Spin()
	Shutdown()

	GetParam(name string) (interface{}, error)
	SetParam(name string, value interface{}) error
	HasParam(name string) (bool, error)
	SearchParam(name string) (string, error)
	DeleteParam(name string) error

	Name() string
	Logger() *modular.ModuleLogger

	NonRosArgs() []string
}

//NewNode starts a node, registers it with the master and serves its slave
//API. name is the node name, possibly namespaced; args are the command line
//arguments, from which remappings, parameter assignments and the __name,
//__ns, __master, __hostname, __ip and __log specials are extracted.
func NewNode(name string, args []string) (Node, error) {
	return newDefaultNode(name, args)
}

type Publisher interface {
	Publish(msg Message)
	Shutdown()
}

// A publisher which only sends to one specific subscriber.  This is
// sent as an argument to the connect and disconnect callback
// functions passed to Node.NewPublisherWithCallbacks().
type SingleSubscriberPublisher interface {
	Publish(msg Message)
	GetSubscriberName() string
	GetTopic() string
}

type Subscriber interface {
	GetNumPublishers() int
	Shutdown()
}

// Optional second argument to a Subscriber callback.
type MessageEvent struct {
	PublisherName    string
	ReceiptTime      time.Time
	ConnectionHeader map[string]string
}
