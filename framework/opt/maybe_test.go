package opt

import (
	"encoding/json"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owner struct {
	Name string `json:"name" xml:"name"`
}

func TestNoneAndSome(t *testing.T) {
	assert.False(t, None[string]().IsDefined())
	assert.Equal(t, 0, None[int]().Value())
	assert.Equal(t, owner{}, None[owner]().Value())

	assert.True(t, Some("").IsDefined())
	assert.Equal(t, "x", Some("x").Value())

	assert.Equal(t, 3, None[int]().OrElse(3))
	assert.Equal(t, 4, Some(4).OrElse(3))
}

func TestPointers(t *testing.T) {
	assert.Equal(t, None[string](), FromPtr((*string)(nil)))
	s := "salaboy"
	assert.Equal(t, Some(s), FromPtr(&s))
	assert.Nil(t, None[int]().AsPtr())
	assert.Equal(t, &s, Some(s).AsPtr())
}

func TestString(t *testing.T) {
	assert.Equal(t, "[none]", None[int]().String())
	assert.Equal(t, "42", Some(42).String())
}

func TestJSON(t *testing.T) {
	for _, p := range []struct {
		value Maybe[owner]
		json  string
	}{
		{None[owner](), "null"},
		{Some(owner{Name: "salaboy"}), `{"name":"salaboy"}`},
	} {
		data, err := json.Marshal(p.value)
		require.NoError(t, err)
		assert.JSONEq(t, p.json, string(data))

		var back Maybe[owner]
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, p.value, back)
	}

	var m Maybe[owner]
	assert.Error(t, m.UnmarshalJSON([]byte(`malformed`)))
	assert.Error(t, m.UnmarshalJSON([]byte(`{"name": true}`)))
}

type taskXML struct {
	XMLName     xml.Name      `xml:"task"`
	ID          int64         `xml:"id"`
	ActualOwner Maybe[string] `xml:"actual-owner"`
}

func TestXML(t *testing.T) {
	data, err := xml.Marshal(taskXML{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "<task><id>1</id></task>", string(data))

	data, err = xml.Marshal(taskXML{ID: 2, ActualOwner: Some("salaboy")})
	require.NoError(t, err)
	assert.Equal(t, "<task><id>2</id><actual-owner>salaboy</actual-owner></task>", string(data))

	var parsed taskXML
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, Some("salaboy"), parsed.ActualOwner)

	var absent taskXML
	require.NoError(t, xml.Unmarshal([]byte("<task><id>3</id></task>"), &absent))
	assert.False(t, absent.ActualOwner.IsDefined())
}
