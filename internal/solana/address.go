package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// FindAssociatedTokenAddress derives the associated token account of a wallet
// for a mint: the first off-curve PDA of
// [wallet, tokenProgram, mint] under the associated-token program.
func FindAssociatedTokenAddress(wallet, mint string) (string, error) {
	walletKey, err := base58.Decode(wallet)
	if err != nil {
		return "", fmt.Errorf("decode wallet: %w", err)
	}
	mintKey, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}
	tokenProgram, err := base58.Decode(TokenProgramID)
	if err != nil {
		return "", err
	}
	ataProgram, err := base58.Decode(AssociatedTokenProgramID)
	if err != nil {
		return "", err
	}

	addr := findProgramAddress([][]byte{walletKey, tokenProgram, mintKey}, ataProgram)
	if addr == "" {
		return "", fmt.Errorf("no valid program address for wallet %s mint %s", wallet, mint)
	}
	return addr, nil
}

// findProgramAddress finds the first off-curve derived address, walking the
// bump seed down from 255.
func findProgramAddress(seeds [][]byte, programID []byte) string {
	for bump := byte(255); bump > 0; bump-- {
		var data []byte
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		// A PDA must be off the ed25519 curve
		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}
	return ""
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
