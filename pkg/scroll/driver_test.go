package scroll

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDriverFinishesOnIdle(t *testing.T) {
	finished := make(chan uint64, 1)
	d := NewDriver(func() (bool, error) {
		return false, nil
	}, 2*time.Millisecond, 2, func(run uint64) {
		finished <- run
	})

	run := d.Start(0)

	select {
	case got := <-finished:
		if got != run {
			t.Errorf("completion carried run %d, Start returned %d", got, run)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not report completion on idle")
	}
}

func TestDriverFinishesOnBudget(t *testing.T) {
	var steps int32
	finished := make(chan uint64, 1)
	d := NewDriver(func() (bool, error) {
		atomic.AddInt32(&steps, 1)
		return true, nil // never idle
	}, 2*time.Millisecond, 3, func(run uint64) {
		finished <- run
	})

	d.Start(4)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not report completion on budget")
	}

	if got := atomic.LoadInt32(&steps); got != 4 {
		t.Errorf("expected 4 steps, got %d", got)
	}
}

func TestStoppedDriverNeverReportsCompletion(t *testing.T) {
	finished := make(chan uint64, 1)
	d := NewDriver(func() (bool, error) {
		return false, nil
	}, 2*time.Millisecond, 1, func(run uint64) {
		finished <- run
	})

	d.Start(0)
	d.Stop()

	select {
	case <-finished:
		t.Fatal("stopped driver reported completion")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDriverStepErrorCountsAsIdle(t *testing.T) {
	finished := make(chan uint64, 1)
	d := NewDriver(func() (bool, error) {
		return true, errTest
	}, 2*time.Millisecond, 2, func(run uint64) {
		finished <- run
	})

	d.Start(0)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not treat failing steps as idle")
	}
}

type testError string

func (e testError) Error() string { return string(e) }

var errTest = testError("step failed")

func TestDriverRestartAfterFinish(t *testing.T) {
	finished := make(chan uint64, 2)
	d := NewDriver(func() (bool, error) {
		return false, nil
	}, 2*time.Millisecond, 1, func(run uint64) {
		finished <- run
	})

	var runs []uint64
	for i := 0; i < 2; i++ {
		runs = append(runs, d.Start(0))
		select {
		case got := <-finished:
			if got != runs[i] {
				t.Fatalf("run %d completed with token %d, want %d", i+1, got, runs[i])
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d did not finish", i+1)
		}
	}

	if runs[1] <= runs[0] {
		t.Errorf("restart did not open a new run: tokens %v", runs)
	}
}

func TestDriverStartWhileRunningReturnsActiveRun(t *testing.T) {
	block := make(chan struct{})
	d := NewDriver(func() (bool, error) {
		<-block
		return true, nil
	}, time.Millisecond, 1, func(uint64) {})

	first := d.Start(0)
	second := d.Start(0)
	if first != second {
		t.Errorf("Start while running returned %d, want active run %d", second, first)
	}

	close(block)
	d.Stop()
}

func TestManualDriverIsInert(t *testing.T) {
	m := NewManual()
	if run := m.Start(10); run != 0 {
		t.Errorf("manual driver returned run %d, want 0", run)
	}
	m.Stop()
}
