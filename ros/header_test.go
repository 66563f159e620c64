package ros

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestConnectionHeaderRoundTrip(t *testing.T) {
	headers := []header{
		{"topic", "/ropose"},
		{"type", "geometry_msgs/Pose2D"},
		{"md5sum", "938fa65709584ad8e77d238529be13b8"},
		{"callerid", "/ropose"},
	}

	var buf bytes.Buffer
	if err := writeConnectionHeader(headers, &buf); err != nil {
		t.Fatal(err)
	}

	result, err := readConnectionHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != len(headers) {
		t.Fatalf("Expected %d headers but %d", len(headers), len(result))
	}
	for i, h := range headers {
		if result[i].key != h.key {
			t.Error(result[i].key)
		}
		if result[i].value != h.value {
			t.Error(result[i].value)
		}
	}
}

func TestConnectionHeaderMalformed(t *testing.T) {
	// A field without '=' is rejected.
	var buf bytes.Buffer
	field := []byte("no_separator_here")
	binary.Write(&buf, binary.LittleEndian, uint32(4+len(field)))
	binary.Write(&buf, binary.LittleEndian, uint32(len(field)))
	buf.Write(field)

	if _, err := readConnectionHeader(&buf); err == nil {
		t.Fail()
	}
}
