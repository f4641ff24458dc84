package resilience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"503", &StatusError{StatusCode: 503}, true},
		{"429 wrapped", fmt.Errorf("places: %w", &StatusError{StatusCode: 429}), true},
		{"400", &StatusError{StatusCode: 400}, false},
		{"403", &StatusError{StatusCode: 403}, false},
		{"net timeout", timeoutErr{}, true},
		{"conn reset", fmt.Errorf("dial: %w", syscall.ECONNRESET), true},
		{"string pattern", errors.New("read tcp: i/o timeout"), true},
		{"context canceled", context.Canceled, false},
		{"plain", errors.New("bad json"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCheckStatus(t *testing.T) {
	if err := CheckStatus("places", 200, nil); err != nil {
		t.Errorf("expected nil for 200, got %v", err)
	}

	err := CheckStatus("places", 500, []byte(strings.Repeat("x", 1000)))
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if se.StatusCode != 500 || len(se.Body) != 300 {
		t.Errorf("unexpected status error: code=%d body=%d", se.StatusCode, len(se.Body))
	}
	if !strings.HasPrefix(se.Error(), "places: status 500: ") {
		t.Errorf("unexpected message: %s", se.Error())
	}
}
