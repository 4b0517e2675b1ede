package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind tags the contents of a Value
type ValueKind int

const (
	ValueNumber ValueKind = iota
	ValueText
)

// Value is a number-or-string held in variable stores and socket literals
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

// Number builds a numeric Value
func Number(n float64) Value {
	return Value{Kind: ValueNumber, Num: n}
}

// Text builds a textual Value
func Text(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// AsNumber returns the numeric reading of the value. Text that parses as
// a float counts as numeric.
func (v Value) AsNumber() (float64, bool) {
	if v.Kind == ValueNumber {
		return v.Num, true
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String renders the value the way it would appear in a socket
func (v Value) String() string {
	if v.Kind == ValueNumber {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Text
}

// IsZero reports whether the value is the numeric zero or empty text
func (v Value) IsZero() bool {
	if v.Kind == ValueNumber {
		return v.Num == 0
	}
	return v.Text == ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == ValueNumber {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Number(0)
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case bytes.Equal(data, []byte("true")):
		*v = Number(1)
	case bytes.Equal(data, []byte("false")):
		*v = Number(0)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("value: %w", err)
		}
		*v = Number(n)
	}
	return nil
}

// Variables is a per-owner variable store
type Variables map[string]Value

// Get returns the named value, or numeric zero when unset
func (vs Variables) Get(name string) Value {
	if v, ok := vs[name]; ok {
		return v
	}
	return Number(0)
}

// Clone returns an independent copy
func (vs Variables) Clone() Variables {
	out := make(Variables, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// SocketKind tags a SocketValue
type SocketKind int

const (
	SocketLiteral SocketKind = iota
	SocketVariable
)

// SocketValue is either a literal or a reference to a named variable on
// the block's owner.
type SocketValue struct {
	Kind     SocketKind
	Literal  Value
	Variable string
	// NameOnly marks references that resolve to the variable's name
	// rather than its value.
	NameOnly bool
}

// Literal builds a literal socket
func Literal(v Value) SocketValue {
	return SocketValue{Kind: SocketLiteral, Literal: v}
}

// VariableRef builds a variable-reference socket
func VariableRef(name string, nameOnly bool) SocketValue {
	return SocketValue{Kind: SocketVariable, Variable: name, NameOnly: nameOnly}
}

// varNameSocket always resolves to the name of the referenced variable
const varNameSocket = "varName"

// Resolve reads the socket against an owner's variables
func (s SocketValue) Resolve(key string, vars Variables) Value {
	if s.Kind == SocketLiteral {
		return s.Literal
	}
	if s.NameOnly || key == varNameSocket {
		return Text(s.Variable)
	}
	return vars.Get(s.Variable)
}

type socketRefJSON struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	VariableOnly bool   `json:"variableOnly,omitempty"`
}

func (s SocketValue) MarshalJSON() ([]byte, error) {
	if s.Kind == SocketVariable {
		return json.Marshal(socketRefJSON{Type: "variable", Name: s.Variable, VariableOnly: s.NameOnly})
	}
	return json.Marshal(s.Literal)
}

func (s *SocketValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var ref socketRefJSON
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		if ref.Type == "variable" {
			*s = VariableRef(ref.Name, ref.VariableOnly)
			return nil
		}
		// Unknown object shapes degrade to an empty literal
		*s = Literal(Text(""))
		return nil
	}
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = Literal(v)
	return nil
}

// Sockets holds a block's socket values by name
type Sockets map[string]SocketValue

// ResolveAll resolves every socket against vars
func (s Sockets) ResolveAll(vars Variables) Resolved {
	out := make(Resolved, len(s))
	for k, sv := range s {
		out[k] = sv.Resolve(k, vars)
	}
	return out
}

// Resolved is a block's sockets after variable lookup
type Resolved map[string]Value

// Str returns the textual reading of a socket, empty when absent
func (r Resolved) Str(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return v.String()
}

// Has reports whether a socket was set
func (r Resolved) Has(key string) bool {
	_, ok := r[key]
	return ok
}
