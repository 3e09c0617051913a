package helpers

import (
	"testing"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework/opt"

	"github.com/stretchr/testify/assert"
)

func TestNonBlockingSend(t *testing.T) {
	assert.False(t, NonBlockingSend(make(chan int), 1))

	buffered := make(chan int, 1)
	assert.True(t, NonBlockingSend(buffered, 1))
	assert.False(t, NonBlockingSend(buffered, 2))
	assert.Equal(t, 1, <-buffered)
}

func TestTryReceive(t *testing.T) {
	ch := make(chan string, 1)
	assert.Equal(t, opt.None[string](), TryReceive(ch, time.Millisecond))

	go func() {
		time.Sleep(time.Millisecond * 20)
		ch <- "GET /maven/org/test/kjar/1.0/kjar-1.0.jar"
	}()
	assert.Equal(t, opt.Some("GET /maven/org/test/kjar/1.0/kjar-1.0.jar"), TryReceive(ch, time.Second))

	close(ch)
	assert.Equal(t, opt.None[string](), TryReceive(ch, time.Second))
}

func TestRequireValueWithMessage(t *testing.T) {
	ch := make(chan string, 1)

	timedOut := TestRecorder{PanicOnTerminate: true}
	assert.Panics(t, func() {
		_ = RequireValueWithMessage(&timedOut, ch, time.Millisecond, "no request to %s", "maven repository")
	})
	assert.True(t, timedOut.Terminated)
	assert.EqualError(t, timedOut.Err(), "no request to maven repository")

	var received TestRecorder
	ch <- "a"
	assert.Equal(t, "a", RequireValueWithMessage(&received, ch, time.Millisecond, "unused"))
	assert.NoError(t, received.Err())
	assert.False(t, received.Terminated)
}
