package apartment

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDo_RunsSetupFirst(t *testing.T) {
	var setupDone atomic.Bool
	th, err := Start(Hooks{Setup: func() error {
		setupDone.Store(true)
		return nil
	}})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer th.Close()

	var sawSetup bool
	if err := th.Do(func() { sawSetup = setupDone.Load() }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !sawSetup {
		t.Error("call ran before Setup")
	}
}

func TestStart_SetupFailure(t *testing.T) {
	var tornDown atomic.Bool
	_, err := Start(Hooks{
		Setup:    func() error { return errors.New("no apartment") },
		Teardown: func() { tornDown.Store(true) },
	})
	if err == nil {
		t.Fatal("expected setup error")
	}
	if !strings.Contains(err.Error(), "no apartment") {
		t.Errorf("error = %q, want to wrap setup error", err)
	}
	if tornDown.Load() {
		t.Error("Teardown ran after failed Setup")
	}
}

func TestDo_NeverOverlaps(t *testing.T) {
	th, err := Start(Hooks{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer th.Close()

	var inFlight, maxInFlight, total atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = th.Do(func() {
				n := inFlight.Add(1)
				if n > maxInFlight.Load() {
					maxInFlight.Store(n)
				}
				total.Add(1)
				inFlight.Add(-1)
			})
		}()
	}
	wg.Wait()

	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent calls = %d, want 1", got)
	}
	if got := total.Load(); got != 50 {
		t.Errorf("calls run = %d, want 50", got)
	}
}

func TestDo_RecoversPanic(t *testing.T) {
	th, err := Start(Hooks{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer th.Close()

	err = th.Do(func() { panic("interop fault") })
	if err == nil || !strings.Contains(err.Error(), "interop fault") {
		t.Fatalf("Do = %v, want panic error", err)
	}

	// The thread keeps serving after a panic.
	ran := false
	if err := th.Do(func() { ran = true }); err != nil {
		t.Fatalf("Do after panic: %v", err)
	}
	if !ran {
		t.Error("call after panic did not run")
	}
}

func TestClose_TeardownOnceAndErrClosed(t *testing.T) {
	var teardowns atomic.Int32
	th, err := Start(Hooks{Teardown: func() { teardowns.Add(1) }})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	th.Close()
	th.Close()

	if got := teardowns.Load(); got != 1 {
		t.Errorf("Teardown ran %d times, want 1", got)
	}
	if err := th.Do(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Do after Close = %v, want ErrClosed", err)
	}
}
