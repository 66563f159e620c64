// Simple XMLRPC client/server for go
package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

func xmlEscape(s string) string {
	var buffer bytes.Buffer
	xml.Escape(&buffer, []byte(s))
	return buffer.String()
}

func emitValue(buf *bytes.Buffer, value interface{}) error {
	if bs, ok := value.([]byte); ok {
		buf.WriteString("<base64>")
		buf.WriteString(base64.StdEncoding.EncodeToString(bs))
		buf.WriteString("</base64>")
		return nil
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return nil
	}

	t := val.Type()
	k := val.Kind()
	switch k {
	case reflect.Bool:
		b := val.Bool()
		var i int
		if b {
			i = 1
		}
		buf.WriteString("<boolean>")
		buf.WriteString(fmt.Sprint(i))
		buf.WriteString("</boolean>")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := val.Int()
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatInt(i, 10))
		buf.WriteString("</int>")
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := val.Uint()
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatInt(int64(u), 10))
		buf.WriteString("</int>")
	case reflect.Float32, reflect.Float64:
		f := val.Float()
		buf.WriteString("<double>")
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		buf.WriteString("</double>")
	case reflect.Array, reflect.Slice:
		buf.WriteString("<array><data>")
		for i := 0; i < val.Len(); i++ {
			buf.WriteString("<value>")
			v := val.Index(i)
			e := emitValue(buf, v.Interface())
			if e != nil {
				return e
			}
			buf.WriteString("</value>")
		}
		buf.WriteString("</data></array>")
	case reflect.Map:
		keyKind := t.Key().Kind()
		if keyKind != reflect.String {
			return errors.New("map key must be string")
		}
		keys := val.MapKeys()
		buf.WriteString("<struct>")
		for _, key := range keys {
			buf.WriteString("<member><name>")
			buf.WriteString(xmlEscape(key.String()))
			buf.WriteString("</name><value>")
			v := val.MapIndex(key)
			e := emitValue(buf, v.Interface())
			if e != nil {
				return e
			}
			buf.WriteString("</value></member>")
		}
		buf.WriteString("</struct>")
	case reflect.String:
		s := val.String()
		buf.WriteString("<string>")
		buf.WriteString(xmlEscape(s))
		buf.WriteString("</string>")
	default:
		return errors.Errorf("invalid kind %v %v", k.String(), val.Type().Name())
	}
	return nil
}

func emitRequest(buf *bytes.Buffer, method string, args ...interface{}) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	buf.WriteString(xmlEscape(method))
	buf.WriteString("</methodName><params>")
	for _, arg := range args {
		buf.WriteString("<param><value>")
		e := emitValue(buf, arg)
		if e != nil {
			return e
		}
		buf.WriteString("</value></param>")
	}
	buf.WriteString("</params></methodCall>")
	return nil
}

func emitResponse(buf *bytes.Buffer, value interface{}) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><params><param><value>")
	e := emitValue(buf, value)
	if e != nil {
		return e
	}
	buf.WriteString("</value></param></params></methodResponse>")
	return nil
}

func emitFault(buf *bytes.Buffer, code int, message string) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><fault><value>")
	fault := make(map[string]interface{})
	fault["faultCode"] = code
	fault["faultString"] = message
	e := emitValue(buf, fault)
	if e != nil {
		return e
	}
	buf.WriteString("</value></fault></methodResponse>")
	return nil
}

func nextTag(d *xml.Decoder) (xml.StartElement, error) {
	for {
		token, e := d.Token()
		if e != nil {
			return xml.StartElement{}, e
		}
		elem, ok := token.(xml.StartElement)
		if ok {
			return elem, nil
		}
	}
}

func expectNextTag(d *xml.Decoder, name string) (xml.StartElement, error) {
	tag, e := nextTag(d)
	if e != nil {
		return xml.StartElement{}, e
	}
	if tag.Name.Local == name {
		return tag, nil
	}
	return xml.StartElement{}, errors.Errorf("expected element '%s' but found '%s'", name, tag.Name.Local)
}

// Parse a value after the <value> tag has been read.  On (non-error)
// return, the </value> closing tag will have been read.
func parseValue(d *xml.Decoder) (interface{}, error) {
	token, e := d.Token()
	if e != nil {
		return nil, e
	}

	switch t := token.(type) {
	case xml.StartElement:
		switch t.Name.Local {
		case "boolean":
			token, e := d.Token()
			if e != nil {
				return nil, e
			}
			data, ok := token.(xml.CharData)
			if !ok {
				return nil, errors.New("boolean: not a CharData")
			}
			var i int64
			i, e = strconv.ParseInt(string(data), 10, 8)
			if e != nil {
				return nil, e
			}
			switch i {
			case 0:
				d.Skip() // </boolean>
				d.Skip() // </value>
				return false, nil
			case 1:
				d.Skip() // </boolean>
				d.Skip() // </value>
				return true, nil
			default:
				return nil, errors.Errorf("boolean: invalid value %d", i)
			}
		case "i4", "int":
			token, e := d.Token()
			if e != nil {
				return nil, e
			}
			data, ok := token.(xml.CharData)
			if !ok {
				return nil, errors.New("int: not a CharData")
			}
			var i int64
			i, e = strconv.ParseInt(string(data), 0, 32)
			if e != nil {
				return nil, e
			}
			d.Skip() // </i4> or </int>
			d.Skip() // </value>
			return int32(i), nil
		case "double":
			token, e := d.Token()
			if e != nil {
				return nil, e
			}
			data, ok := token.(xml.CharData)
			if !ok {
				return nil, errors.New("double: not a CharData")
			}
			var f float64
			f, e = strconv.ParseFloat(string(data), 64)
			if e != nil {
				return nil, e
			}
			d.Skip() // </double>
			d.Skip() // </value>
			return f, nil
		case "string":
			token, e := d.Token()
			if e != nil {
				return nil, e
			}
			if data, ok := token.(xml.CharData); ok {
				s := string(data.Copy())
				d.Skip() // </string>
				d.Skip() // </value>
				return s, nil
			}
			if end, ok := token.(xml.EndElement); ok && end.Name.Local == "string" {
				d.Skip() // </value>
				return "", nil
			}
			return nil, errors.New("string: parse error")
		case "base64":
			token, e := d.Token()
			if e != nil {
				return nil, e
			}
			data, ok := token.(xml.CharData)
			if !ok {
				return nil, errors.New("base64: not a CharData")
			}
			var bs []byte
			bs, e = base64.StdEncoding.DecodeString(string(data))
			if e != nil {
				return nil, e
			}
			d.Skip() // </base64>
			d.Skip() // </value>
			return bs, nil
		case "array":
			_, e := expectNextTag(d, "data")
			if e != nil {
				return nil, e
			}
			var a []interface{}
			for {
				t, e := d.Token()
				if e != nil {
					return nil, e
				}
				switch elem := t.(type) {
				case xml.StartElement:
					if elem.Name.Local == "value" {
						var val interface{}
						val, e = parseValue(d)
						if e != nil {
							return nil, e
						}
						a = append(a, val)
					}
				case xml.EndElement:
					if elem.Name.Local == "array" {
						d.Skip() // </value>
						return a, nil
					}
				}
			}
		case "struct":
			m := make(map[string]interface{})
			var name string
			var value interface{}
			for {
				t, e := d.Token()
				if e != nil {
					return nil, e
				}
				switch elem := t.(type) {
				case xml.StartElement:
					switch elem.Name.Local {
					case "member":
					case "name":
						t, e = d.Token()
						if e != nil {
							return nil, e
						}
						data, ok := t.(xml.CharData)
						if !ok {
							return nil, errors.New("struct: member name is not a CharData")
						}
						name = string(data)
					case "value":
						value, e = parseValue(d)
						if e != nil {
							return nil, e
						}
					}
				case xml.EndElement:
					switch elem.Name.Local {
					case "member":
						m[name] = value
					case "struct":
						d.Skip() // </value>
						return m, nil
					}
				}
			}
		default:
			return nil, errors.New("not supported: t.Name.Local = " + t.Name.Local)
		}
	case xml.CharData:
		copy := t.Copy()
		// spaces and newlines for pretty formatting of xml
		// show up as chardata, so here we ignore them.
		stripped := strings.TrimSpace(string(copy))
		if stripped != "" {
			d.Skip() // </value>
			return string(copy), nil
		}
		return parseValue(d)
	case xml.EndElement:
		return "", nil
	}

	return nil, errors.New("invalid data type")
}

func parseRequest(d *xml.Decoder) (name string, args []interface{}, e error) {
	_, e = expectNextTag(d, "methodCall")
	if e != nil {
		return
	}
	_, e = expectNextTag(d, "methodName")
	if e != nil {
		return
	}
	var t xml.Token
	t, e = d.Token()
	if e != nil {
		return
	}
	data, ok := t.(xml.CharData)
	if !ok {
		e = errors.New("invalid methodName")
		return
	}
	name = string(data)
	_, e = expectNextTag(d, "params")
	if e != nil {
		return
	}
	for {
		t, e = d.Token()
		if e != nil {
			return
		}
		switch elem := t.(type) {
		case xml.StartElement:
			if elem.Name.Local == "value" {
				var x interface{}
				x, e = parseValue(d)
				if e != nil {
					return
				}
				args = append(args, x)
			}
		case xml.EndElement:
			if elem.Name.Local == "params" {
				d.Skip()
				return
			}
		}
	}
}

func parseResponse(d *xml.Decoder) (ok bool, result interface{}, e error) {
	_, e = expectNextTag(d, "methodResponse")
	if e != nil {
		return
	}
	var se xml.StartElement
	se, e = nextTag(d)
	if e != nil {
		return
	}
	switch se.Name.Local {
	case "params":
		_, e = expectNextTag(d, "param")
		if e != nil {
			return
		}
		_, e = expectNextTag(d, "value")
		if e != nil {
			return
		}
		result, e = parseValue(d)
		if e != nil {
			return
		}
		ok = true
		d.Skip()
		d.Skip()
		d.Skip()
		return
	case "fault":
		_, e = expectNextTag(d, "value")
		if e != nil {
			return
		}
		result, e = parseValue(d)
		if e != nil {
			return
		}
		ok = false
		d.Skip()
		d.Skip()
		return
	}
	e = errors.New("missing end element")
	return
}

// Call invokes an XMLRPC method on the remote host at url. A fault
// response comes back as an error carrying the fault code and string.
func Call(url string, method string, args ...interface{}) (res interface{}, e error) {
	var buffer bytes.Buffer
	e = emitRequest(&buffer, method, args...)
	if e != nil {
		e = errors.Wrap(e, "building request failed")
		return
	}
	var r *http.Response
	r, e = http.Post(url, "text/xml", &buffer)
	if e != nil {
		e = errors.Wrap(e, "sending request failed")
		return
	}
	defer r.Body.Close()
	if r.StatusCode != http.StatusOK {
		e = errors.Errorf("HTTP failed with code %v", r.Status)
		return
	}

	decoder := xml.NewDecoder(r.Body)
	ok, result, e := parseResponse(decoder)
	if e != nil {
		e = errors.Wrap(e, "parsing response failed")
		return
	}
	if ok {
		res = result
		return
	}
	if m, isMap := result.(map[string]interface{}); isMap {
		if c, isInt := m["faultCode"].(int32); isInt {
			if s, isStr := m["faultString"].(string); isStr {
				e = errors.Errorf("XMLRPC fault: code=%v string=%v", c, s)
				return
			}
		}
	}
	e = errors.New("malformed XMLRPC fault response")
	return
}

// Method is a function of the form func(args...) (interface{}, error)
// dispatched by a Handler.
type Method interface{}

// Handler serves a table of named XMLRPC methods over HTTP.
type Handler struct {
	mapping map[string]Method
	wait    sync.WaitGroup
}

func NewHandler(mapping map[string]Method) *Handler {
	handler := new(Handler)
	handler.mapping = mapping
	return handler
}

// WaitForShutdown blocks until every request in flight has completed.
func (h *Handler) WaitForShutdown() {
	h.wait.Wait()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.wait.Add(1)
	defer h.wait.Done()

	decoder := xml.NewDecoder(req.Body)
	var buffer bytes.Buffer

	name, args, err := parseRequest(decoder)
	if err != nil {
		emitFault(&buffer, 1, "Invalid request.")
		buffer.WriteTo(w)
		return
	}

	method, ok := h.mapping[name]
	if !ok {
		emitFault(&buffer, 1, fmt.Sprintf("No method named '%v'.", name))
		buffer.WriteTo(w)
		return
	}

	argValues := []reflect.Value{}
	for _, v := range args {
		argValues = append(argValues, reflect.ValueOf(v))
	}
	resultValues := reflect.ValueOf(method).Call(argValues)
	if len(resultValues) != 2 {
		emitFault(&buffer, 1, fmt.Sprintf("Method '%v' returned invalid results.", name))
		buffer.WriteTo(w)
		return
	}
	errValue := resultValues[1]
	if !errValue.IsNil() {
		if callErr, isErr := errValue.Interface().(error); isErr {
			emitFault(&buffer, 1, callErr.Error())
		} else {
			emitFault(&buffer, 1, fmt.Sprintf("Method '%v' returned an invalid error.", name))
		}
		buffer.WriteTo(w)
		return
	}

	err = emitResponse(&buffer, resultValues[0].Interface())
	if err != nil {
		emitFault(&buffer, 1, fmt.Sprintf("Method '%v' returned an invalid result type.", name))
		buffer.WriteTo(w)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(buffer.Len()))
	buffer.WriteTo(w)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
