// TCPROS connection header
package ros

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

type header struct {
	key   string
	value string
}

//readConnectionHeader reads a length-prefixed set of key=value fields
//from r. Every field is itself length prefixed; all sizes are little
//endian uint32.
func readConnectionHeader(r io.Reader) ([]header, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadAtLeast(r, buf, 4); err != nil {
		return nil, err
	}
	var headerSize uint32
	bufReader := bytes.NewBuffer(buf)
	if err := binary.Read(bufReader, binary.LittleEndian, &headerSize); err != nil {
		return nil, err
	}
	buf = make([]byte, int(headerSize))
	if _, err := io.ReadAtLeast(r, buf, int(headerSize)); err != nil {
		return nil, err
	}

	var done uint32
	var headers []header
	bufReader = bytes.NewBuffer(buf)
	for {
		if done == headerSize {
			break
		} else if done > headerSize {
			return nil, errors.New("header length overrun")
		}
		var size uint32
		if err := binary.Read(bufReader, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		line := bufReader.Next(int(size))
		sep := bytes.IndexByte(line, '=')
		if sep < 0 {
			return nil, errors.Errorf("malformed header field '%s'", string(line))
		}
		key := string(line[0:sep])
		value := string(line[sep+1:])
		headers = append(headers, header{key, value})
		done += 4 + size
	}
	return headers, nil
}

//writeConnectionHeader writes headers to w in the wire layout that
//readConnectionHeader expects.
func writeConnectionHeader(headers []header, w io.Writer) error {
	var headerSize int
	var sizeList []int
	for _, h := range headers {
		size := len(h.key) + len(h.value) + 1
		sizeList = append(sizeList, size)
		headerSize += size + 4
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(headerSize)); err != nil {
		return err
	}
	for i, h := range headers {
		err := binary.Write(w, binary.LittleEndian, uint32(sizeList[i]))
		if err != nil {
			return err
		}
		if _, err = w.Write([]byte(h.key)); err != nil {
			return err
		}
		if _, err = w.Write([]byte("=")); err != nil {
			return err
		}
		if _, err = w.Write([]byte(h.value)); err != nil {
			return err
		}
	}
	return nil
}
