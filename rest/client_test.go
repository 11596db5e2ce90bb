package rest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff_Doubling(t *testing.T) {
	min := 500 * time.Millisecond
	max := 10 * time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, time.Second},
		{3, 2 * time.Second},
		{4, 4 * time.Second},
	}
	for _, tc := range cases {
		got := exponentialBackoff(min, max, tc.attempt, nil)
		assert.Equal(t, tc.want, got, "attempt %d", tc.attempt)
	}
}

func TestExponentialBackoff_CapsAtMax(t *testing.T) {
	got := exponentialBackoff(500*time.Millisecond, 2*time.Second, 10, nil)
	assert.Equal(t, 2*time.Second, got)
}

func TestCheckRetry_RetriesOnRetryableStatus(t *testing.T) {
	for status := range retryableStatus {
		resp := &http.Response{StatusCode: status}
		retry, err := checkRetry(context.Background(), resp, nil)
		require.NoError(t, err)
		assert.True(t, retry, "expected retry for status %d", status)
	}
}

func TestCheckRetry_NoRetryOnSuccess(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusOK}
	retry, err := checkRetry(context.Background(), resp, nil)
	require.NoError(t, err)
	assert.False(t, retry, "expected no retry on 200")
}

func TestCheckRetry_RetriesOnTransportError(t *testing.T) {
	retry, err := checkRetry(context.Background(), nil, errConnRefused{})
	require.NoError(t, err)
	assert.True(t, retry, "expected retry on transport error")
}

type errConnRefused struct{}

func (errConnRefused) Error() string { return "connection refused" }
