package kieapi

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// XMLRooted is implemented by payload types that have a fixed root element name.
type XMLRooted interface {
	XMLRootName() string
}

// Marshal encodes a payload in this media type.
func (m MediaType) Marshal(value any) ([]byte, error) {
	switch m {
	case MediaTypeJSON:
		return json.Marshal(value)
	case MediaTypeXML:
		var buf bytes.Buffer
		buf.WriteString(xml.Header)
		enc := xml.NewEncoder(&buf)
		var err error
		if rooted, ok := value.(XMLRooted); ok {
			err = enc.EncodeElement(value, xml.StartElement{Name: xml.Name{Local: rooted.XMLRootName()}})
		} else {
			err = enc.Encode(value)
		}
		if err == nil {
			err = enc.Flush()
		}
		return buf.Bytes(), err
	}
	return nil, fmt.Errorf("cannot encode media type %q", m)
}

// Unmarshal decodes a payload in this media type.
func (m MediaType) Unmarshal(data []byte, target any) error {
	switch m {
	case MediaTypeJSON:
		return json.Unmarshal(data, target)
	case MediaTypeXML:
		return xml.Unmarshal(data, target)
	}
	return fmt.Errorf("cannot decode media type %q", m)
}

// DetectMediaType guesses the media type of a body from its first non-space character.
func DetectMediaType(body []byte) (MediaType, bool) {
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		return "", false
	case trimmed[0] == '<':
		return MediaTypeXML, true
	case trimmed[0] == '{' || trimmed[0] == '[':
		return MediaTypeJSON, true
	}
	return "", false
}
