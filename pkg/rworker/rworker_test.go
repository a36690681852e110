package rworker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_Bounded(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		limit int
		jobs  int
		max   int64
	}{
		{name: "one", limit: 1, jobs: 10, max: 1},
		{name: "three", limit: 3, jobs: 20, max: 3},
		{name: "zero_is_one", limit: 0, jobs: 5, max: 1},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var running, peak, done int64
			p := New(test.limit)
			for i := 0; i < test.jobs; i++ {
				p.Go(func() error {
					n := atomic.AddInt64(&running, 1)
					for {
						old := atomic.LoadInt64(&peak)
						if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt64(&running, -1)
					atomic.AddInt64(&done, 1)
					return nil
				})
			}
			if err := p.Wait(); err != nil {
				t.Fatalf("wait returned an error: %v", err)
			}
			if done != int64(test.jobs) {
				t.Errorf("finished jobs got: %v, expected: %v", done, test.jobs)
			}
			if peak > test.max {
				t.Errorf("jobs in flight got: %v, expected at most: %v", peak, test.max)
			}
		})
	}
}

func TestPool_FirstError(t *testing.T) {
	t.Parallel()
	errFirst := errors.New("first")
	p := New(1)
	p.Go(func() error { return errFirst })
	p.Go(func() error { return errors.New("second") })
	p.Go(func() error { return nil })
	if err := p.Wait(); err == nil {
		t.Errorf("wait must return the job error")
	}
}
