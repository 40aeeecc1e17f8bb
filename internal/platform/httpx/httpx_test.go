package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"net", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"503 wrapped", fmt.Errorf("call: %w", statusErr(503)), true},
		{"429", statusErr(429), true},
		{"404", statusErr(404), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestStatusCodeAndTruncate(t *testing.T) {
	assert.Equal(t, 502, StatusCode(fmt.Errorf("x: %w", statusErr(502))))
	assert.Equal(t, 0, StatusCode(errors.New("x")))
	assert.Equal(t, "<empty body>", Truncate(nil, 10))
	assert.Equal(t, "abc...", Truncate([]byte("abcdef"), 3))
}
