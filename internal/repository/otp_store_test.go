package repository

import (
	"testing"
	"time"
)

func TestOTPOutcome(t *testing.T) {
	cases := []struct {
		name string
		code int64
		want error
	}{
		{"match consumes the code", 1, nil},
		{"mismatch keeps the code alive", 0, ErrOTPMismatch},
		{"missing or expired key", -1, ErrOTPNotFound},
		{"attempt limit burned the code", -2, ErrOTPExhausted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := otpOutcome(tc.code); got != tc.want {
				t.Fatalf("otpOutcome(%d) = %v, want %v", tc.code, got, tc.want)
			}
		})
	}
}

func TestNewOTPStoreDefaults(t *testing.T) {
	s := NewOTPStore(nil, 0, 0)
	if s.ttl != 5*time.Minute {
		t.Fatalf("ttl = %v, want 5m default", s.ttl)
	}
	if s.attempts != 3 {
		t.Fatalf("attempts = %d, want 3 default", s.attempts)
	}
}
