package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/sqlsplit"
)

// BackoffKind selects how the delay between attempts grows.
type BackoffKind string

const (
	// BackoffConstant waits the same delay before every retry.
	BackoffConstant BackoffKind = "constant"

	// BackoffExponential doubles the delay after every retry.
	BackoffExponential BackoffKind = "exponential"
)

type (
	// RetryPolicy bounds how failed calls are retried.
	RetryPolicy struct {
		// MaxAttempts is the total number of attempts, including the first.
		// Values below 2 disable retries.
		MaxAttempts int

		// Delay is the wait before the first retry.
		Delay time.Duration

		// Backoff is the delay growth strategy. Defaults to BackoffConstant.
		Backoff BackoffKind

		// Notify, when set, is called before every retry with the error that
		// caused it and the wait that follows.
		Notify func(err error, next time.Duration)
	}

	retryConn struct {
		conn   Conn
		policy RetryPolicy
	}
)

// WithRetry returns a Conn that retries failed Query, Update and Exec calls on
// conn according to p. Exec retries statement by statement. Context
// cancellation is never retried. When p allows a single attempt, conn is
// returned unchanged.
//
// Example usage:
//
//	conn := database.WithRetry(db, database.RetryPolicy{
//		MaxAttempts: 3,
//		Delay:       time.Second,
//		Backoff:     database.BackoffExponential,
//		Notify: func(err error, next time.Duration) {
//			slog.Warn("Retrying statement", "err", err, "in", next)
//		},
//	})
func WithRetry(conn Conn, p RetryPolicy) Conn {
	if p.MaxAttempts < 2 {
		return conn
	}

	return &retryConn{conn: conn, policy: p}
}

// Valid reports whether k is a known backoff kind. The empty kind is valid and
// means BackoffConstant.
func (k BackoffKind) Valid() bool {
	switch k {
	case "", BackoffConstant, BackoffExponential:
		return true
	default:
		return false
	}
}

// NewBackOff builds the backoff.BackOff for the policy, bound to ctx.
func (p RetryPolicy) NewBackOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	switch p.Backoff {
	case BackoffExponential:
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.Delay
		eb.Multiplier = 2
		eb.RandomizationFactor = 0
		eb.MaxInterval = p.Delay << min(p.MaxAttempts, 16)
		eb.MaxElapsedTime = 0
		b = eb
	default:
		b = backoff.NewConstantBackOff(p.Delay)
	}

	retries := max(p.MaxAttempts-1, 0)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (r *retryConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return retry(ctx, r.policy, func() (Rows, error) {
		return r.conn.Query(ctx, query, args...)
	})
}

func (r *retryConn) Update(ctx context.Context, query string, args ...any) (int64, error) {
	return retry(ctx, r.policy, func() (int64, error) {
		return r.conn.Update(ctx, query, args...)
	})
}

// Exec splits script into statements and retries each one on its own, so a
// failure never runs the statements before it a second time.
func (r *retryConn) Exec(ctx context.Context, script string) error {
	stmts, err := sqlsplit.Split(script)
	if err != nil {
		return err
	}

	for i, stmt := range stmts {
		_, err := retry(ctx, r.policy, func() (struct{}, error) {
			return struct{}{}, r.conn.Exec(ctx, stmt)
		})
		if err != nil {
			if len(stmts) == 1 {
				return err
			}
			return errors.Wrapf(err, "failed to execute statement %d of %d", i+1, len(stmts))
		}
	}

	return nil
}

func (r *retryConn) Close() error {
	return r.conn.Close()
}

func retry[T any](ctx context.Context, p RetryPolicy, fn func() (T, error)) (T, error) {
	attempts := 0
	op := func() (T, error) {
		attempts++
		v, err := fn()
		if err != nil && ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}

		return v, err
	}

	var notify backoff.Notify
	if p.Notify != nil {
		notify = backoff.Notify(p.Notify)
	}

	v, err := backoff.RetryNotifyWithData(op, p.NewBackOff(ctx), notify)
	if err != nil && attempts > 1 {
		return v, errors.Wrapf(err, "giving up after %d attempts", attempts)
	}

	return v, err
}
