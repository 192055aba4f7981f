//go:build linux

package apartment

import (
	"sync"
	"testing"

	"golang.org/x/sys/unix"
)

func TestDo_SingleOSThread(t *testing.T) {
	var setupTID int
	th, err := Start(Hooks{Setup: func() error {
		setupTID = unix.Gettid()
		return nil
	}})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer th.Close()

	const callers = 200
	tids := make(chan int, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := th.Do(func() { tids <- unix.Gettid() }); err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()
	close(tids)

	for tid := range tids {
		if tid != setupTID {
			t.Fatalf("call ran on thread %d, want %d (the Setup thread)", tid, setupTID)
		}
	}
}
