package ros

import (
	"github.com/edwinhayes/ropose/xmlrpc"
	"github.com/pkg/errors"
)

const (
	//APIStatusError is an API call which returned an Error
	APIStatusError = -1
	//APIStatusFailure is a failed API call
	APIStatusFailure = 0
	//APIStatusSuccess is a successful API call
	APIStatusSuccess = 1
)

//callRosAPI performs an XML-RPC call to the ROS system. CalleeUri is the address to send the request
//Method is the method to be called in the request. Args is an interface of values that are required
//by the method call. Returns interface of the XML response from callee.
func callRosAPI(calleeURI string, method string, args ...interface{}) (interface{}, error) {
	result, err := xmlrpc.Call(calleeURI, method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s on %s", method, calleeURI)
	}

	var ok bool
	var xs []interface{}
	var code int32
	var message string
	if xs, ok = result.([]interface{}); !ok {
		return nil, errors.New("malformed ROS API result")
	}
	if len(xs) != 3 {
		return nil, errors.Errorf("malformed ROS API result. Length must be 3 but %d", len(xs))
	}
	if code, ok = xs[0].(int32); !ok {
		return nil, errors.New("status code is not int")
	}
	if message, ok = xs[1].(string); !ok {
		return nil, errors.New("message is not string")
	}

	if code != APIStatusSuccess {
		return nil, errors.Errorf("%s failed with code %d: %s", method, code, message)
	}
	return xs[2], nil
}

// Build XMLRPC ready array from ROS API result triplet.
func buildRosAPIResult(code int32, message string, value interface{}) interface{} {
	result := make([]interface{}, 3)
	result[0] = code
	result[1] = message
	result[2] = value
	return result
}
