package helpers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func deploymentJob(pollsBeforeDeployed int) func() string {
	polls := 0
	return func() string {
		polls++
		if polls <= pollsBeforeDeployed {
			return "DEPLOYING"
		}
		return "DEPLOYED"
	}
}

func TestPollForSpecificResultValue(t *testing.T) {
	assert.True(t, PollForSpecificResultValue(deploymentJob(2), time.Second, time.Millisecond, "DEPLOYED"))
	assert.False(t, PollForSpecificResultValue(deploymentJob(1000), time.Millisecond*10, time.Millisecond, "DEPLOYED"))
}

func TestRetryPoll(t *testing.T) {
	t.Run("done after some attempts", func(t *testing.T) {
		job := deploymentJob(2)
		var attempts []int
		err := RetryPoll(context.Background(), 5, time.Millisecond, func(attempt int) (bool, error) {
			attempts = append(attempts, attempt)
			return job() == "DEPLOYED", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, attempts)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		job := deploymentJob(10)
		err := RetryPoll(context.Background(), 3, time.Millisecond, func(int) (bool, error) {
			return job() == "DEPLOYED", nil
		})
		assert.ErrorIs(t, err, ErrRetriesExhausted)
		assert.Contains(t, err.Error(), "3 attempts")
	})

	t.Run("error ends polling", func(t *testing.T) {
		failed := errors.New("DEPLOY_FAILED")
		calls := 0
		err := RetryPoll(context.Background(), 3, time.Millisecond, func(int) (bool, error) {
			calls++
			return false, failed
		})
		assert.Same(t, failed, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancelled between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := RetryPoll(ctx, 3, time.Hour, func(int) (bool, error) {
			calls++
			return false, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
