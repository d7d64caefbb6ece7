package safety

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"solana-sniper-bot/internal/domain"
	"solana-sniper-bot/internal/solana"
)

// fakeRPC serves canned account state keyed by pubkey.
type fakeRPC struct {
	accounts        map[string]*solana.AccountInfo
	balances        map[string]*solana.TokenAmount
	largest         []solana.TokenAccountBalance
	raydiumAccounts []string

	largestCalls int32
	accountCalls int32
	ownerCalls   int32
	largestGate  chan struct{} // when set, GetTokenLargestAccounts blocks until closed
}

func (f *fakeRPC) GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRPC) GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRPC) GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error) {
	atomic.AddInt32(&f.accountCalls, 1)
	return f.accounts[pubkey], nil
}

func (f *fakeRPC) GetTokenAccountBalance(ctx context.Context, account string) (*solana.TokenAmount, error) {
	bal, ok := f.balances[account]
	if !ok {
		return nil, errors.New("no such token account")
	}
	return bal, nil
}

func (f *fakeRPC) GetTokenLargestAccounts(ctx context.Context, mint string) ([]solana.TokenAccountBalance, error) {
	atomic.AddInt32(&f.largestCalls, 1)
	if f.largestGate != nil {
		<-f.largestGate
	}
	return f.largest, nil
}

func (f *fakeRPC) GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]string, error) {
	atomic.AddInt32(&f.ownerCalls, 1)
	return f.raydiumAccounts, nil
}

var _ solana.RPCClient = (*fakeRPC)(nil)

func encodeMintAccount(supply uint64, decimals byte, mintable bool) []byte {
	data := make([]byte, solana.MintAccountSize)
	if mintable {
		binary.LittleEndian.PutUint32(data[0:4], 1)
		copy(data[4:36], []byte("MintAuthority...MintAuthority..."))
	}
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	return data
}

// greenPoolRPC builds RPC state for a pool that classifies GREEN:
// 80 SOL liquidity, no mint authority, 99.5% of supply in the pool.
func greenPoolRPC(pool *domain.ParsedPool) *fakeRPC {
	tokenMint, _ := pool.TokenMint()
	return &fakeRPC{
		accounts: map[string]*solana.AccountInfo{
			tokenMint: {Data: encodeMintAccount(1_000_000_000, 6, false)},
		},
		balances: map[string]*solana.TokenAmount{
			pool.QuoteVaultForSOL(): {UIAmount: 80, Decimals: domain.WSOLDecimals},
		},
		largest: []solana.TokenAccountBalance{
			{Address: "PoolVault", UIAmount: 995},
		},
		raydiumAccounts: []string{"PoolVault"},
	}
}

func newTestEvaluator(rpc solana.RPCClient, reader SupplyReader, watcher SupplyWatcher, blacklisted ...string) *Evaluator {
	return NewEvaluator(EvaluatorOptions{
		Blacklist: NewBlacklist(blacklisted...),
		Measurer:  NewMeasurer(rpc, 150),
		BurnWaiter: NewBurnWaiter(BurnWaiterOptions{
			Watcher: watcher,
			Reader:  reader,
			Timeout: 5 * time.Second,
		}),
	})
}

func TestEvaluateBlacklistedCreator(t *testing.T) {
	pool := testPool()
	rpc := greenPoolRPC(pool)
	ev := newTestEvaluator(rpc, &fakeSupplyReader{supplies: []float64{0}}, nil, pool.Creator)

	got, err := ev.Evaluate(context.Background(), pool)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got.Blacklisted {
		t.Fatal("Blacklisted = false, want true")
	}
	if calls := atomic.LoadInt32(&rpc.accountCalls); calls != 0 {
		t.Errorf("blacklisted pool was measured anyway: %d account reads", calls)
	}
}

func TestEvaluateGreenPool(t *testing.T) {
	pool := testPool()
	rpc := greenPoolRPC(pool)
	reader := &fakeSupplyReader{supplies: []float64{0}} // LP already burned
	ev := newTestEvaluator(rpc, reader, nil)

	got, err := ev.Evaluate(context.Background(), pool)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Blacklisted {
		t.Fatal("Blacklisted = true, want false")
	}
	if got.Status != domain.StatusGreen {
		t.Fatalf("status = %s (%s), want GREEN", got.Status, got.Reason)
	}
	if !got.LiquidityLocked {
		t.Error("LiquidityLocked = false, want true")
	}
	if got.Data.PoolTokenPercent < 0.99 {
		t.Errorf("PoolTokenPercent = %v, want >= 0.99", got.Data.PoolTokenPercent)
	}
	if got.Data.TotalLiquidity.AmountUSD != 80*150 {
		t.Errorf("AmountUSD = %v, want 12000", got.Data.TotalLiquidity.AmountUSD)
	}
}

func TestEvaluateBurnWaitPath(t *testing.T) {
	pool := testPool()
	rpc := greenPoolRPC(pool)

	// Every pre-check read sees an unburned LP supply; the live
	// subscription then delivers the burn.
	reader := &fakeSupplyReader{supplies: []float64{1_000_000, 1_000_000, 1_000_000}}
	watcher := &fakeSupplyWatcher{ch: make(chan float64, 1)}
	watcher.ch <- 0

	ev := newTestEvaluator(rpc, reader, watcher)

	got, err := ev.Evaluate(context.Background(), pool)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Status != domain.StatusGreen {
		t.Fatalf("status = %s (%s), want GREEN after the burn", got.Status, got.Reason)
	}
	if !got.LiquidityLocked {
		t.Error("LiquidityLocked = false, want true")
	}
	if atomic.LoadInt32(&watcher.cancelled) != 1 {
		t.Error("burn subscription was not released")
	}
}

func TestEvaluateBurnWaitTimeoutGoesRed(t *testing.T) {
	pool := testPool()
	rpc := greenPoolRPC(pool)

	reader := &fakeSupplyReader{supplies: []float64{1_000_000, 1_000_000, 1_000_000}}
	watcher := &fakeSupplyWatcher{ch: make(chan float64)}

	ev := NewEvaluator(EvaluatorOptions{
		Blacklist: NewBlacklist(),
		Measurer:  NewMeasurer(rpc, 150),
		BurnWaiter: NewBurnWaiter(BurnWaiterOptions{
			Watcher: watcher,
			Reader:  reader,
			Timeout: 50 * time.Millisecond,
		}),
	})

	got, err := ev.Evaluate(context.Background(), pool)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Status != domain.StatusRed {
		t.Fatalf("status = %s, want RED after timeout", got.Status)
	}
	if got.Reason != "Liquidity is not locked" {
		t.Errorf("reason = %q, want not-locked", got.Reason)
	}
}

func TestEvaluateSingleFlightPerPool(t *testing.T) {
	pool := testPool()
	rpc := greenPoolRPC(pool)
	rpc.largestGate = make(chan struct{})
	reader := &fakeSupplyReader{supplies: []float64{0}}
	ev := newTestEvaluator(rpc, reader, nil)

	const callers = 5
	results := make([]*Assessment, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := ev.Evaluate(context.Background(), pool)
			if err != nil {
				t.Errorf("Evaluate: %v", err)
				return
			}
			results[i] = got
		}(i)
	}

	// Let every caller join the in-flight evaluation before releasing it.
	time.Sleep(100 * time.Millisecond)
	close(rpc.largestGate)
	wg.Wait()

	if calls := atomic.LoadInt32(&rpc.largestCalls); calls != 1 {
		t.Fatalf("measurement ran %d times for one pool, want 1", calls)
	}
	for i, got := range results {
		if got == nil || got.Status != domain.StatusGreen {
			t.Errorf("caller %d got %+v, want the shared GREEN assessment", i, got)
		}
	}
}
