package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/linguabridge/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher hashes and verifies passwords with bcrypt off the calling
// goroutine. At most `concurrency` hash computations run at once; callers
// whose context ends while waiting or computing get ctx.Err() and the
// result, when it arrives, is dropped.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

func NewPasswordHasher(cost int, concurrency int64) *PasswordHasher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PasswordHasher{cost: cost, sem: semaphore.NewWeighted(concurrency)}
}

// Hash returns the bcrypt encoding of password. Passwords longer than 72
// bytes are rejected by bcrypt.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	b, err := run(ctx, h.sem, func() ([]byte, error) {
		return bcrypt.GenerateFromPassword([]byte(password), h.cost)
	})
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// a hash bcrypt cannot read is (false, common.ErrMalformedHash).
func (h *PasswordHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	_, err := run(ctx, h.sem, func() (struct{}, error) {
		return struct{}{}, bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	})

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false, err
	default:
		return false, fmt.Errorf("%w: %v", common.ErrMalformedHash, err)
	}
}

type result[T any] struct {
	v   T
	err error
}

func run[T any](ctx context.Context, sem *semaphore.Weighted, fn func() (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	ch := make(chan result[T], 1)
	go func() {
		defer sem.Release(1)
		v, err := fn()
		ch <- result[T]{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
