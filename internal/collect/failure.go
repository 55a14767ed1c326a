package collect

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind separates retryable trouble from facts that will not change
// by asking again.
type FailureKind string

const (
	// KindTransient covers rate limits, timeouts, and upstream errors.
	// Worth one retry; after that the engine degrades to cached data.
	KindTransient FailureKind = "transient"
	// KindPermanent covers inapplicability: the source says this
	// dimension does not exist for the project. Never retried.
	KindPermanent FailureKind = "permanent"
)

// Failure is a typed collector error.
type Failure struct {
	Kind      FailureKind
	Dimension string
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s collector: %s failure: %v", f.Dimension, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Transient wraps err as a retryable failure.
func Transient(dimension string, err error) error {
	return &Failure{Kind: KindTransient, Dimension: dimension, Err: err}
}

// Permanent wraps err as a non-retryable failure.
func Permanent(dimension string, err error) error {
	return &Failure{Kind: KindPermanent, Dimension: dimension, Err: err}
}

// IsPermanent reports whether err is a permanent collector failure.
func IsPermanent(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == KindPermanent
}

// IsTransient reports whether err is a transient collector failure.
// Context cancellation and deadline expiry count as transient: the call
// timed out, the fact may still exist.
func IsTransient(err error) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == KindTransient
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
