package collect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestInvokeRetriesTransientOnce(t *testing.T) {
	var calls int32
	_, err := Invoke(context.Background(), RetryPolicy{Attempts: 2, Backoff: time.Millisecond}, time.Second,
		func(ctx context.Context) (int, error) {
			atomic.AddInt32(&calls, 1)
			return 0, Transient("code", errors.New("upstream 503"))
		})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
	if !IsTransient(err) {
		t.Errorf("expected transient failure, got %v", err)
	}
}

func TestInvokePermanentNoRetry(t *testing.T) {
	var calls int32
	_, err := Invoke(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, time.Second,
		func(ctx context.Context) (int, error) {
			atomic.AddInt32(&calls, 1)
			return 0, Permanent("governance", errors.New("upstream 404"))
		})
	if !IsPermanent(err) {
		t.Fatalf("expected permanent failure, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestInvokeSucceedsAfterTransient(t *testing.T) {
	var calls int32
	v, err := Invoke(context.Background(), RetryPolicy{Attempts: 2, Backoff: time.Millisecond}, time.Second,
		func(ctx context.Context) (int, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return 0, Transient("deps", errors.New("rate limited"))
			}
			return 42, nil
		})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if v != 42 {
		t.Errorf("value = %d, want 42", v)
	}
}

func TestInvokeTimeoutIsTransient(t *testing.T) {
	_, err := Invoke(context.Background(), RetryPolicy{Attempts: 1}, 10*time.Millisecond,
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
	if !IsTransient(err) {
		t.Errorf("expected timeout to count as transient, got %v", err)
	}
}

func TestGetJSONStatusTaxonomy(t *testing.T) {
	tests := []struct {
		status        int
		wantTransient bool
		wantPermanent bool
	}{
		{http.StatusInternalServerError, true, false},
		{http.StatusBadGateway, true, false},
		{http.StatusTooManyRequests, true, false},
		{http.StatusNotFound, false, true},
		{http.StatusForbidden, false, true},
	}
	for _, tc := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		var out struct{}
		err := getJSON(context.Background(), srv.Client(), "test", srv.URL, nil, &out)
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		if IsTransient(err) != tc.wantTransient || IsPermanent(err) != tc.wantPermanent {
			t.Errorf("status %d: transient=%v permanent=%v, want %v/%v",
				tc.status, IsTransient(err), IsPermanent(err), tc.wantTransient, tc.wantPermanent)
		}
	}
}

func TestGetJSONDecodeErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var out struct{}
	err := getJSON(context.Background(), srv.Client(), "test", srv.URL, nil, &out)
	if !IsTransient(err) {
		t.Errorf("expected transient failure on decode error, got %v", err)
	}
}
