// Package opt provides an optional value type that round-trips through both JSON and XML, since
// the KIE REST API serves either format.
package opt

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// Maybe is a simple implementation of an optional value type.
type Maybe[V any] struct {
	defined bool
	value   V
}

// Some returns a Maybe that has a defined value.
func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

// None returns a Maybe with no value.
func None[V any]() Maybe[V] { return Maybe[V]{} }

// FromPtr returns Some(*ptr) if ptr is non-nil, or None otherwise.
func FromPtr[V any](ptr *V) Maybe[V] {
	if ptr == nil {
		return None[V]()
	}
	return Some(*ptr)
}

func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value, or the zero value of V if undefined.
func (m Maybe[V]) Value() V { return m.value }

func (m Maybe[V]) AsPtr() *V {
	if !m.defined {
		return nil
	}
	v := m.value
	return &v
}

func (m Maybe[V]) OrElse(valueIfUndefined V) V {
	if m.defined {
		return m.value
	}
	return valueIfUndefined
}

// String returns the value's own String() if it has one, "%v" formatting otherwise, or "[none]".
func (m Maybe[V]) String() string {
	if !m.defined {
		return "[none]"
	}
	if s, ok := any(m.value).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", m.value)
}

func (m Maybe[V]) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON treats a JSON null as None.
func (m *Maybe[V]) UnmarshalJSON(data []byte) error {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe == nil {
		*m = None[V]()
		return nil
	}
	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*m = Some(value)
	return nil
}

// MarshalXML omits the element entirely when the value is undefined.
func (m Maybe[V]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if !m.defined {
		return nil
	}
	return e.EncodeElement(m.value, start)
}

// UnmarshalXML sets Some(value) whenever the element is present, even if it is empty.
func (m *Maybe[V]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var value V
	if err := d.DecodeElement(&value, &start); err != nil {
		return err
	}
	*m = Some(value)
	return nil
}
