package itest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFilters(t *testing.T) {
	restXML := TestID{"rest", "xml", "urls start human task process"}
	restJSON := TestID{"rest", "json", "urls start human task process"}
	undeploy := TestID{"deployment", "undeploy and redeploy"}

	for _, params := range []struct {
		run, skip   []string
		testID      TestID
		shouldMatch bool
	}{
		{nil, nil, nil, true},
		{nil, nil, restXML, true},

		{[]string{"rest"}, nil, nil, true},
		{[]string{"rest"}, nil, TestID{"rest"}, true},
		{[]string{"rest"}, nil, undeploy, false},
		{[]string{"rest"}, nil, restJSON, true},
		{[]string{"ploy"}, nil, undeploy, true},

		// a parent runs whenever one of its children might
		{[]string{"rest/json"}, nil, TestID{"rest"}, true},
		{[]string{"rest/json"}, nil, restJSON, true},
		{[]string{"rest/json"}, nil, restXML, false},
		{[]string{"rest/json", "deployment"}, nil, undeploy, true},
		{[]string{"rest/json", "deployment"}, nil, restXML, false},

		{nil, []string{"rest"}, nil, true},
		{nil, []string{"rest"}, TestID{"rest"}, false},
		{nil, []string{"rest"}, restXML, false},
		{nil, []string{"rest"}, undeploy, true},

		// skipping a child leaves the parent and siblings alone
		{nil, []string{"rest/xml"}, TestID{"rest"}, true},
		{nil, []string{"rest/xml"}, restXML, false},
		{nil, []string{"rest/xml"}, restJSON, true},
		{nil, []string{"rest/xml", "deployment"}, undeploy, false},
		{nil, []string{"rest/xml", "deployment"}, TestID{"remote api"}, true},
		{nil, []string{"xml"}, TestID{"remote api", "xml"}, true},

		{[]string{"rest"}, []string{"json"}, restXML, true},
		{[]string{"rest"}, []string{"rest/json"}, restJSON, false},
	} {
		var r RegexFilters
		for _, s := range params.run {
			require.NoError(t, r.MustMatch.Set(s))
		}
		for _, s := range params.skip {
			require.NoError(t, r.MustNotMatch.Set(s))
		}
		t.Run(fmt.Sprintf("run=%s, skip=%s, id=%s", r.MustMatch, r.MustNotMatch, params.testID), func(t *testing.T) {
			assert.Equal(t, params.shouldMatch, r.Match(params.testID))
		})
	}
}

func TestInvalidPattern(t *testing.T) {
	var l TestIDPatternList
	assert.Error(t, l.Set("rest/("))
	assert.False(t, l.IsDefined())
}

func TestAddLiteralMatchesOnlyThatTest(t *testing.T) {
	var r RegexFilters
	require.NoError(t, r.MustNotMatch.AddLiteral("rest/urls history logs (xml)"))

	assert.False(t, r.Match(TestID{"rest", "urls history logs (xml)"}))
	assert.True(t, r.Match(TestID{"rest", "urls history logs (json)"}))
	assert.True(t, r.Match(TestID{"rest"}))
	assert.True(t, r.Match(TestID{"rest", "urls history logs (xml) again"}))
}

func TestDescribe(t *testing.T) {
	var r RegexFilters
	require.NoError(t, r.MustMatch.Set("rest"))
	require.NoError(t, r.MustNotMatch.Set("deployment/undeploy"))

	var buf bytes.Buffer
	r.Describe(&buf, []string{"remote-api"}, []string{"remote-api", "data-service"})
	out := buf.String()
	assert.Contains(t, out, `skip any not matching "rest"`)
	assert.Contains(t, out, `skip any matching "deployment/undeploy"`)
	assert.Contains(t, out, "  data-service\n")
	assert.NotContains(t, out, "  remote-api\n")
}
