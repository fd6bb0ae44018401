package concurrent

import (
	"context"
	"errors"
	"testing"
)

func TestRecoverWithCallback(t *testing.T) {
	t.Run("calls callback on panic", func(t *testing.T) {
		var capturedErr error
		fn := func() {
			defer RecoverWithCallback(func(err error) {
				capturedErr = err
			})
			panic("callback test")
		}

		fn()

		if capturedErr == nil {
			t.Fatal("expected callback to be called with error")
		}

		var panicErr *PanicError
		if !errors.As(capturedErr, &panicErr) {
			t.Fatalf("expected PanicError, got %T", capturedErr)
		}
	})

	t.Run("handles nil callback", func(t *testing.T) {
		fn := func() {
			defer RecoverWithCallback(nil)
			panic("nil callback test")
		}

		// Should not panic
		fn()
	})
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test value"}
	expected := "panic: test value"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestConcurrentPanicRecovery(t *testing.T) {
	// Every other worker panics; ProcessItems must recover each one,
	// report it as that item's error, and still process every item.
	const numItems = 10
	items := make([]int, numItems)
	for i := range items {
		items[i] = i
	}

	pool := NewWorkerPool(4, func(_ context.Context, i int) (int, error) {
		if i%2 == 0 {
			panic("even panic")
		}
		return i, nil
	})

	results, errs := pool.ProcessItems(context.Background(), items)

	errorCount := 0
	for i, err := range errs {
		if err != nil {
			errorCount++
			var panicErr *PanicError
			if !errors.As(err, &panicErr) {
				t.Fatalf("item %d: expected PanicError, got %T", i, err)
			}
			continue
		}
		if results[i] != i {
			t.Errorf("item %d: expected result %d, got %d", i, i, results[i])
		}
	}

	if errorCount != numItems/2 {
		t.Errorf("expected %d errors, got %d", numItems/2, errorCount)
	}
}
