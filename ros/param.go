package ros

import (
	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

//parseParamValue converts a command line parameter literal into the typed
//value the parameter server stores. Numbers, booleans, strings, arrays and
//maps are recognized the same way rospy treats private parameter arguments.
//A literal that does not parse is kept as a plain string.
func parseParamValue(literal string) interface{} {
	value, vt, _, err := jsonparser.Get([]byte(literal))
	if err != nil {
		return literal
	}
	converted, err := paramFromJSON(value, vt)
	if err != nil {
		return literal
	}
	return converted
}

func paramFromJSON(value []byte, vt jsonparser.ValueType) (interface{}, error) {
	switch vt {
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(value); err == nil {
			return int(i), nil
		}
		return jsonparser.ParseFloat(value)
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Array:
		list := make([]interface{}, 0)
		var convErr error
		_, err := jsonparser.ArrayEach(value, func(item []byte, dt jsonparser.ValueType, _ int, _ error) {
			if convErr != nil {
				return
			}
			v, err := paramFromJSON(item, dt)
			if err != nil {
				convErr = err
				return
			}
			list = append(list, v)
		})
		if err != nil {
			return nil, err
		}
		if convErr != nil {
			return nil, convErr
		}
		return list, nil
	case jsonparser.Object:
		m := make(map[string]interface{})
		err := jsonparser.ObjectEach(value, func(key []byte, item []byte, dt jsonparser.ValueType, _ int) error {
			v, err := paramFromJSON(item, dt)
			if err != nil {
				return err
			}
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			m[k] = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case jsonparser.Null:
		return nil, nil
	}
	return nil, errors.Errorf("unsupported parameter literal type %v", vt)
}
