package kieapi

import (
	"encoding/json"
	"encoding/xml"
	"sort"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

const (
	parameterTypeString = "string"
	parameterTypeJSON   = "json"
)

// Variables are process or task parameters. String values travel as plain text in XML; anything
// else (numbers, arrays, objects standing in for custom classes) travels as JSON text.
type Variables map[string]ldvalue.Value

type xmlParameter struct {
	Key   string `xml:"key,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// StringVariables is shorthand for Variables holding only strings.
func StringVariables(values map[string]string) Variables {
	ret := make(Variables, len(values))
	for k, v := range values {
		ret[k] = ldvalue.String(v)
	}
	return ret
}

// Keys returns the variable names in sorted order.
func (v Variables) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v Variables) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, k := range v.Keys() {
		value := v[k]
		p := xmlParameter{Key: k, Type: parameterTypeString, Value: value.StringValue()}
		if value.Type() != ldvalue.StringType {
			p.Type, p.Value = parameterTypeJSON, value.JSONString()
		}
		if err := e.EncodeElement(p, xml.StartElement{Name: xml.Name{Local: "parameter"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func (v *Variables) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var wrapper struct {
		Parameters []xmlParameter `xml:"parameter"`
	}
	if err := d.DecodeElement(&wrapper, &start); err != nil {
		return err
	}
	ret := make(Variables, len(wrapper.Parameters))
	for _, p := range wrapper.Parameters {
		if p.Type == parameterTypeJSON {
			var value ldvalue.Value
			if err := json.Unmarshal([]byte(p.Value), &value); err != nil {
				return err
			}
			ret[p.Key] = value
		} else {
			ret[p.Key] = ldvalue.String(p.Value)
		}
	}
	*v = ret
	return nil
}
