package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OTPStore keeps short-lived email verification codes in Redis. Each code
// lives under one key with an explicit TTL and a bounded attempt count, so
// codes expire on their own and brute-forcing burns the code. This replaces
// keeping verification state in process memory, which would not survive a
// restart or scale past one instance.
type OTPStore struct {
	rdb      *redis.Client
	ttl      time.Duration
	attempts int
}

// OTP verification failure modes, distinguished so handlers can tell the
// client whether to retry or request a fresh code.
var (
	ErrOTPNotFound  = errors.New("otp expired or never issued")
	ErrOTPMismatch  = errors.New("otp does not match")
	ErrOTPExhausted = errors.New("otp attempt limit reached")
)

// NewOTPStore builds an OTPStore. ttl bounds a code's lifetime; attempts
// bounds how many wrong guesses are allowed before the code is burned.
func NewOTPStore(rdb *redis.Client, ttl time.Duration, attempts int) *OTPStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if attempts <= 0 {
		attempts = 3
	}
	return &OTPStore{rdb: rdb, ttl: ttl, attempts: attempts}
}

func otpKey(email string) string { return "otp:" + email }

// Issue generates a six-digit code for the email, stores it with the TTL
// and a zeroed attempt counter, and returns the code plus an opaque
// challenge ID the client echoes back for log correlation. Reissuing
// replaces any previous code.
func (s *OTPStore) Issue(ctx context.Context, email string) (code, challengeID string, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", err
	}
	code = fmt.Sprintf("%06d", n.Int64())
	challengeID = uuid.NewString()

	key := otpKey(email)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, "code", code, "attempts", 0, "challenge", challengeID)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", "", err
	}
	return code, challengeID, nil
}

// otpVerifyScript looks up, counts and compares in one atomic step. A
// separate HGetAll/HIncrBy pair would race key expiry: the increment could
// recreate the hash without a TTL, leaving a code-less key that never
// expires. Return codes: 1 match, 0 mismatch, -1 missing, -2 exhausted.
var otpVerifyScript = redis.NewScript(`
	local code = redis.call('HGET', KEYS[1], 'code')
	if not code then
		return -1
	end
	local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
	if attempts > tonumber(ARGV[2]) then
		redis.call('DEL', KEYS[1])
		return -2
	end
	if code ~= ARGV[1] then
		return 0
	end
	redis.call('DEL', KEYS[1])
	return 1
`)

// Verify checks a submitted code. On success the key is deleted so a code
// can only be used once. Wrong guesses increment the attempt counter and
// burn the code once the limit is reached.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	n, err := otpVerifyScript.Run(ctx, s.rdb, []string{otpKey(email)}, code, s.attempts).Int64()
	if err != nil {
		return err
	}
	return otpOutcome(n)
}

// otpOutcome maps otpVerifyScript's return code to a sentinel error.
func otpOutcome(n int64) error {
	switch n {
	case 1:
		return nil
	case 0:
		return ErrOTPMismatch
	case -1:
		return ErrOTPNotFound
	default:
		return ErrOTPExhausted
	}
}
