package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test error")

func TestRetryDo(t *testing.T) {
	t.Run("WithMaxAttempts only performs the operation the configured number of times", func(t *testing.T) {
		count := 0
		max := 3

		err := Do(func() error {
			count++
			return errTest
		}, WithMaxAttempts(max), WithInterval(1*time.Millisecond))

		require.ErrorIs(t, err, errTest)
		require.Equal(t, max, count)
	})

	t.Run("backoff caps the interval at five times the initial interval", func(t *testing.T) {
		count := 0
		start := time.Now()

		err := Do(func() error {
			if count++; count < 6 {
				return errTest
			}
			return nil
		}, WithMaxAttempts(10), WithBackoff(true), WithInterval(1*time.Millisecond))

		require.NoError(t, err)
		require.Equal(t, 6, count)
		// Intervals 1+2+4+5+5ms with the cap; well under a second either way.
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("operations are run an unlimited number of times by default", func(t *testing.T) {
		count := 0
		max := 10

		err := Do(func() error {
			if count++; count != max {
				return errTest
			}
			return nil
		}, WithInterval(1*time.Millisecond))

		require.NoError(t, err)
		require.Equal(t, max, count)
	})
}
