package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshal(t *testing.T) {
	tcs := []struct {
		input    string
		expected time.Duration
		err      bool
	}{
		{input: "10s", expected: 10 * time.Second},
		{input: "1m", expected: time.Minute},
		{input: "10m30s", expected: 10*time.Minute + 30*time.Second},
		{input: "nope", err: true},
	}
	for _, tc := range tcs {
		t.Run(tc.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tc.input))
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, d.Duration)
		})
	}
}

func TestNewDuration(t *testing.T) {
	require.Equal(t, time.Minute, NewDuration(time.Minute).Duration)
}
