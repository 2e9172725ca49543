package sync

import (
	"errors"
	"fmt"
	"time"
)

var ErrMaxRetriesReached = errors.New("max retry attempts reached")

// RetryHandler decides how long to wait between attempts of a failing call to a node
type RetryHandler struct {
	RetryAfterErrorPeriod      time.Duration
	MaxRetryAttemptsAfterError int
}

// Handle sleeps before the next attempt. It returns an error once the max number of
// attempts has been reached. A negative MaxRetryAttemptsAfterError retries forever.
func (h *RetryHandler) Handle(funcName string, attempts int) error {
	if h.MaxRetryAttemptsAfterError > -1 && attempts >= h.MaxRetryAttemptsAfterError {
		return fmt.Errorf("%s failed too many times (%d): %w", funcName, attempts, ErrMaxRetriesReached)
	}
	time.Sleep(h.RetryAfterErrorPeriod)
	return nil
}
