package ros

import (
	"testing"
)

func TestParseParamValueInt(t *testing.T) {
	value := parseParamValue("42")
	i, ok := value.(int)
	if !ok {
		t.Fatalf("expected int but got %T", value)
	}
	if i != 42 {
		t.Error(i)
	}
}

func TestParseParamValueFloat(t *testing.T) {
	value := parseParamValue("10.0")
	f, ok := value.(float64)
	if !ok {
		t.Fatalf("expected float64 but got %T", value)
	}
	if f != 10.0 {
		t.Error(f)
	}
}

func TestParseParamValueBool(t *testing.T) {
	value := parseParamValue("true")
	b, ok := value.(bool)
	if !ok {
		t.Fatalf("expected bool but got %T", value)
	}
	if !b {
		t.Error(b)
	}
}

func TestParseParamValueBareWordIsString(t *testing.T) {
	value := parseParamValue("odom")
	s, ok := value.(string)
	if !ok {
		t.Fatalf("expected string but got %T", value)
	}
	if s != "odom" {
		t.Error(s)
	}
}

func TestParseParamValueQuotedString(t *testing.T) {
	value := parseParamValue("\"base_link\"")
	s, ok := value.(string)
	if !ok {
		t.Fatalf("expected string but got %T", value)
	}
	if s != "base_link" {
		t.Error(s)
	}
}

func TestParseParamValueArray(t *testing.T) {
	value := parseParamValue("[1, 2.5, \"x\"]")
	list, ok := value.([]interface{})
	if !ok {
		t.Fatalf("expected list but got %T", value)
	}
	if len(list) != 3 {
		t.Fatal(len(list))
	}
	if i, ok := list[0].(int); !ok || i != 1 {
		t.Error(list[0])
	}
	if f, ok := list[1].(float64); !ok || f != 2.5 {
		t.Error(list[1])
	}
	if s, ok := list[2].(string); !ok || s != "x" {
		t.Error(list[2])
	}
}

func TestParseParamValueMap(t *testing.T) {
	value := parseParamValue("{\"rate\": 10, \"frame\": \"odom\"}")
	m, ok := value.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map but got %T", value)
	}
	if i, ok := m["rate"].(int); !ok || i != 10 {
		t.Error(m["rate"])
	}
	if s, ok := m["frame"].(string); !ok || s != "odom" {
		t.Error(m["frame"])
	}
}
