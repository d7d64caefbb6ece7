package solana

import (
	"testing"

	"github.com/mr-tron/base58"
)

func TestFindAssociatedTokenAddress(t *testing.T) {
	wallet := RaydiumAuthority
	mint := "So11111111111111111111111111111111111111112"

	addr, err := FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	raw, err := base58.Decode(addr)
	if err != nil {
		t.Fatalf("derived address is not base58: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("derived address is %d bytes, want 32", len(raw))
	}
	if isOnCurve(raw) {
		t.Error("derived address must be off the ed25519 curve")
	}

	// Derivation is deterministic
	again, err := FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if again != addr {
		t.Errorf("derivation not deterministic: %s vs %s", addr, again)
	}

	// Different mint yields a different account
	other, err := FindAssociatedTokenAddress(wallet, TokenProgramID)
	if err != nil {
		t.Fatalf("derive other: %v", err)
	}
	if other == addr {
		t.Error("distinct mints must derive distinct accounts")
	}
}

func TestFindAssociatedTokenAddressInvalidInput(t *testing.T) {
	if _, err := FindAssociatedTokenAddress("not-base58-0OIl", TokenProgramID); err == nil {
		t.Error("expected error for invalid wallet")
	}
	if _, err := FindAssociatedTokenAddress(RaydiumAuthority, "not-base58-0OIl"); err == nil {
		t.Error("expected error for invalid mint")
	}
}
