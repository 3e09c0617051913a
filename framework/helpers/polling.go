package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned by RetryPoll when the condition never became true.
var ErrRetriesExhausted = errors.New("condition not met before retries were exhausted")

// PollForSpecificResultValue calls testFn every interval until it returns expectedValue or the
// timeout elapses, and reports whether the value was seen.
func PollForSpecificResultValue[V comparable](
	testFn func() V,
	timeout time.Duration,
	interval time.Duration,
	expectedValue V,
) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case <-deadline.C:
			return false
		case <-ticker.C:
			if testFn() == expectedValue {
				return true
			}
		}
	}
}

// RetryPoll calls checkFn up to attempts times, sleeping interval between calls, until it reports
// done. The first call is immediate. An error from checkFn ends the loop and is returned as is.
//
// This is the shape of every server-side job the harness waits for, such as a deployment moving
// from ACCEPTED to DEPLOYED.
func RetryPoll(
	ctx context.Context,
	attempts int,
	interval time.Duration,
	checkFn func(attempt int) (done bool, err error),
) error {
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		done, err := checkFn(i)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return fmt.Errorf("%w (%d attempts, %s apart)", ErrRetriesExhausted, attempts, interval)
}
