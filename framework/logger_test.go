package framework

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func messages(output CapturedOutput) []string {
	var ret []string
	for _, m := range output {
		ret = append(ret, m.Message)
	}
	return ret
}

func TestCapturingLoggerRoutesToChild(t *testing.T) {
	var parent, child CapturingLogger
	parent.Printf("before %d", 1)
	parent.AddChildLogger(&child)
	parent.Println("during", 2)
	parent.RemoveChildLogger(&child)
	parent.Printf("after")

	assert.Equal(t, []string{"before 1", "after"}, messages(parent.Output()))
	assert.Equal(t, []string{"before 1", "during 2"}, messages(child.Output()))
}

func TestCapturedOutputToString(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6000000, time.UTC)
	output := CapturedOutput{{Time: ts, Message: "a"}, {Time: ts, Message: "b"}}
	assert.Equal(t, "> [2024-01-02 03:04:05.006] a\n> [2024-01-02 03:04:05.006] b", output.ToString("> "))
	assert.Equal(t, "", CapturedOutput(nil).ToString("> "))
}

func TestLoggerWithPrefix(t *testing.T) {
	var base CapturingLogger
	l := LoggerWithPrefix(&base, "[kie] ")
	l.Printf("deployed %s", "org.test:kjar:1.0")
	assert.Equal(t, []string{"[kie] deployed org.test:kjar:1.0"}, messages(base.Output()))

	assert.NotPanics(t, func() { LoggerWithPrefix(nil, "x").Printf("y") })
}

func TestCapabilities(t *testing.T) {
	var cs Capabilities
	assert.NoError(t, cs.Set("remote-api, data-service"))
	assert.NoError(t, cs.Set("remote-api"))
	assert.Equal(t, Capabilities{"remote-api", "data-service"}, cs)
	assert.True(t, cs.Has("data-service"))
	assert.False(t, cs.Has("deployment-api"))
	assert.True(t, cs.HasAny("deployment-api", "remote-api"))
	assert.Equal(t, "data-service,remote-api", cs.String())
}
