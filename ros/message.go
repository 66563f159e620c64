package ros

import (
	"bytes"
)

//MessageType identifies a ROS message type: its canonical definition
//text, fully qualified name and MD5 sum, plus a factory for instances.
type MessageType interface {
	Text() string
	MD5Sum() string
	Name() string
	NewMessage() Message
}

//Message is a single typed message that knows how to move itself through
//the little endian TCPROS wire format.
type Message interface {
	Type() MessageType
	Serialize(buf *bytes.Buffer) error
	Deserialize(buf *bytes.Reader) error
}
