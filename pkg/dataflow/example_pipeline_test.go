package dataflow_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/locvowork/employee_directory/pkg/dataflow"
)

type row struct {
	ID   string
	Name string
}

func TestPipelineWithRetry(t *testing.T) {
	ctx := context.Background()

	source := dataflow.From(ctx, "1,Alice", "2,Bob", "retry,Charlie", "broken")

	var dropped int32
	parsed := dataflow.Map(ctx, source, func(s string) (row, error) {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return row{}, fmt.Errorf("invalid format: %q", s)
		}
		return row{ID: parts[0], Name: parts[1]}, nil
	}, dataflow.WithWorkers(2), dataflow.WithErrorHandler(func(error) bool {
		atomic.AddInt32(&dropped, 1)
		return true
	}))

	var attempts int32
	saved := dataflow.Map(ctx, parsed, func(r row) (row, error) {
		if r.ID == "retry" {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return row{}, errors.New("transient error")
			}
		}
		return r, nil
	}, dataflow.WithRetry(3, func(int) time.Duration { return time.Millisecond }))

	results, err := dataflow.Collect(ctx, saved)
	if err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
	if dropped != 1 {
		t.Errorf("Expected 1 dropped item, got %d", dropped)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts for retried item, got %d", attempts)
	}
}

func TestForEachReturnsFirstError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := dataflow.ForEach(ctx, dataflow.From(ctx, 1, 2, 3), func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	}, dataflow.WithWorkers(3))

	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func TestForEachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := make(chan int)
	err := dataflow.ForEach(ctx, dataflow.New[int](in), func(int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	even := dataflow.Filter(ctx, dataflow.From(ctx, 1, 2, 3, 4, 5, 6), func(n int) bool { return n%2 == 0 })

	got, err := dataflow.Collect(ctx, even)
	if err != nil {
		t.Fatal(err)
	}
	sort.Ints(got)
	if fmt.Sprint(got) != "[2 4 6]" {
		t.Errorf("Expected [2 4 6], got %v", got)
	}
}

func TestFanIn(t *testing.T) {
	ctx := context.Background()

	s1 := dataflow.From(ctx, 1)
	s2 := dataflow.From(ctx, 2)

	merged := dataflow.FanIn(ctx, s1, s2)

	sum := 0
	err := dataflow.ForEach(ctx, merged, func(n int) error {
		sum += n
		return nil
	})

	if err != nil {
		t.Fatal(err)
	}
	if sum != 3 {
		t.Errorf("Expected sum 3, got %d", sum)
	}
}

func TestLinearBackoff(t *testing.T) {
	b := dataflow.LinearBackoff(10 * time.Millisecond)
	if b(3) != 30*time.Millisecond {
		t.Errorf("Expected 30ms, got %v", b(3))
	}
}
