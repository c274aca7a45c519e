package loader

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGoResolves(t *testing.T) {
	f := Go(func() (int, error) { return 42, nil })

	v, err := f.Await(context.Background())
	if err != nil || v != 42 {
		t.Fatalf("Await = %d, %v", v, err)
	}
	r, ok := f.Poll()
	if !ok || r.Value != 42 || r.Err != nil {
		t.Errorf("Poll = %+v, %v", r, ok)
	}
}

func TestGoRejectsWithZeroValue(t *testing.T) {
	boom := errors.New("boom")
	f := Go(func() (*int, error) {
		n := 1
		return &n, boom
	})

	v, err := f.Await(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if v != nil {
		t.Error("rejected future must not carry a value")
	}
}

func TestPollBeforeSettle(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (string, error) {
		<-release
		return "ok", nil
	})

	if _, ok := f.Poll(); ok {
		t.Error("expected Poll to report pending")
	}
	close(release)
	<-f.Done()
	if r, ok := f.Poll(); !ok || r.Value != "ok" {
		t.Errorf("Poll = %+v, %v", r, ok)
	}
}

func TestAwaitContextBoundsWaitOnly(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}

	// the load itself was not cancelled
	close(release)
	v, err := f.Await(context.Background())
	if err != nil || v != 7 {
		t.Errorf("Await after timeout = %d, %v", v, err)
	}
}

func TestThenPostsToExecutor(t *testing.T) {
	queue := make(chan func(), 1)
	post := func(fn func()) { queue <- fn }

	var got int
	Resolved(5).Then(post, func(v int, err error) {
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
		got = v
	})

	select {
	case fn := <-queue:
		if got != 0 {
			t.Fatal("callback ran before the executor")
		}
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("callback was never posted")
	}
	if got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}

func TestRejected(t *testing.T) {
	f := Rejected[int](ErrEmptyPath)
	r, ok := f.Poll()
	if !ok || !errors.Is(r.Err, ErrEmptyPath) {
		t.Errorf("Poll = %+v, %v", r, ok)
	}
}

func TestMap(t *testing.T) {
	doubled := Map(Resolved(21), func(v int) (int, error) { return v * 2, nil })
	if v, err := doubled.Await(context.Background()); err != nil || v != 42 {
		t.Errorf("Map = %d, %v", v, err)
	}

	called := false
	rejected := Map(Rejected[int](ErrEmptyPath), func(v int) (string, error) {
		called = true
		return "x", nil
	})
	if _, err := rejected.Await(context.Background()); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("err = %v", err)
	}
	if called {
		t.Error("fn ran for a rejected future")
	}

	boom := errors.New("boom")
	failed := Map(Resolved(1), func(int) (*int, error) { return nil, boom })
	if _, err := failed.Await(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}
