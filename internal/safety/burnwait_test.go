package safety

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"solana-sniper-bot/internal/domain"
)

type fakeSupplyReader struct {
	supplies []float64
	errs     []error
	calls    int32
}

func (r *fakeSupplyReader) UISupply(ctx context.Context, mint string) (float64, error) {
	n := int(atomic.AddInt32(&r.calls, 1)) - 1
	if n >= len(r.supplies) {
		n = len(r.supplies) - 1
	}
	var err error
	if n < len(r.errs) {
		err = r.errs[n]
	}
	return r.supplies[n], err
}

type fakeSupplyWatcher struct {
	ch        chan float64
	subErr    error
	cancelled int32
}

func (w *fakeSupplyWatcher) WatchSupply(ctx context.Context, mint string) (<-chan float64, func(), error) {
	if w.subErr != nil {
		return nil, nil, w.subErr
	}
	return w.ch, func() { atomic.AddInt32(&w.cancelled, 1) }, nil
}

func testPool() *domain.ParsedPool {
	return &domain.ParsedPool{
		PoolID:      "pool1",
		BaseMint:    domain.WSOLMint,
		QuoteMint:   "TokenMint1111111111111111111111111111111111",
		BaseVault:   "BaseVault111111111111111111111111111111111",
		QuoteVault:  "QuoteVault1111111111111111111111111111111",
		Creator:     "Creator1111111111111111111111111111111111",
		LPTokenMint: "LPMint111111111111111111111111111111111111",
	}
}

func TestBurnedThreshold(t *testing.T) {
	w := NewBurnWaiter(BurnWaiterOptions{Threshold: 100})

	if !w.Burned(0) {
		t.Error("supply 0 should count as burned")
	}
	if !w.Burned(100) {
		t.Error("supply at the threshold should count as burned")
	}
	if w.Burned(100.1) {
		t.Error("supply above the threshold should not count as burned")
	}
}

func TestCheckBurnedImmediate(t *testing.T) {
	reader := &fakeSupplyReader{supplies: []float64{5}}
	w := NewBurnWaiter(BurnWaiterOptions{Reader: reader, Threshold: 100})

	if !w.CheckBurned(context.Background(), "lp") {
		t.Fatal("CheckBurned = false, want true")
	}
	if got := atomic.LoadInt32(&reader.calls); got != 1 {
		t.Errorf("reader calls = %d, want 1", got)
	}
}

func TestCheckBurnedRetriesThenSucceeds(t *testing.T) {
	reader := &fakeSupplyReader{supplies: []float64{5000, 5000, 50}}
	w := NewBurnWaiter(BurnWaiterOptions{Reader: reader, Threshold: 100})

	if !w.CheckBurned(context.Background(), "lp") {
		t.Fatal("CheckBurned = false, want true on the third attempt")
	}
	if got := atomic.LoadInt32(&reader.calls); got != 3 {
		t.Errorf("reader calls = %d, want 3", got)
	}
}

func TestCheckBurnedReadErrorsCountAsNotBurned(t *testing.T) {
	readErr := errors.New("rpc unavailable")
	reader := &fakeSupplyReader{
		supplies: []float64{0, 0, 0},
		errs:     []error{readErr, readErr, readErr},
	}
	w := NewBurnWaiter(BurnWaiterOptions{Reader: reader, Threshold: 100})

	if w.CheckBurned(context.Background(), "lp") {
		t.Fatal("CheckBurned = true, want false when every read fails")
	}
	if got := atomic.LoadInt32(&reader.calls); got != 3 {
		t.Errorf("reader calls = %d, want 3", got)
	}
}

func TestWaitBurnEventWins(t *testing.T) {
	watcher := &fakeSupplyWatcher{ch: make(chan float64, 2)}
	watcher.ch <- 5000 // not burned yet, the wait keeps listening
	watcher.ch <- 10

	w := NewBurnWaiter(BurnWaiterOptions{
		Watcher: watcher,
		Timeout: 5 * time.Second,
	})

	burned, err := w.Wait(context.Background(), testPool())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !burned {
		t.Fatal("burned = false, want true")
	}
	if got := atomic.LoadInt32(&watcher.cancelled); got != 1 {
		t.Errorf("subscription cancelled %d times, want 1", got)
	}
}

func TestWaitTimeoutWins(t *testing.T) {
	watcher := &fakeSupplyWatcher{ch: make(chan float64)}
	w := NewBurnWaiter(BurnWaiterOptions{
		Watcher: watcher,
		Timeout: 50 * time.Millisecond,
	})

	burned, err := w.Wait(context.Background(), testPool())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if burned {
		t.Fatal("burned = true, want false on timeout")
	}
	if got := atomic.LoadInt32(&watcher.cancelled); got != 1 {
		t.Errorf("subscription cancelled %d times, want 1", got)
	}
}

func TestWaitClosedSubscription(t *testing.T) {
	watcher := &fakeSupplyWatcher{ch: make(chan float64)}
	close(watcher.ch)

	w := NewBurnWaiter(BurnWaiterOptions{
		Watcher: watcher,
		Timeout: 5 * time.Second,
	})

	burned, err := w.Wait(context.Background(), testPool())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if burned {
		t.Fatal("burned = true, want false when the subscription dies")
	}
}

func TestWaitContextCancelled(t *testing.T) {
	watcher := &fakeSupplyWatcher{ch: make(chan float64)}
	w := NewBurnWaiter(BurnWaiterOptions{
		Watcher: watcher,
		Timeout: 5 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := w.Wait(ctx, testPool())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestWaitSubscribeError(t *testing.T) {
	watcher := &fakeSupplyWatcher{subErr: errors.New("ws down")}
	w := NewBurnWaiter(BurnWaiterOptions{Watcher: watcher})

	if _, err := w.Wait(context.Background(), testPool()); err == nil {
		t.Fatal("Wait returned nil error, want subscription failure")
	}
}
