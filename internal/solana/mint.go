package solana

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mr-tron/base58"
)

// MintAccountSize is the serialized size of an SPL mint account.
const MintAccountSize = 82

// MintInfo is the decoded state of an SPL mint account.
type MintInfo struct {
	MintAuthority   string // empty when the authority option is unset
	FreezeAuthority string // empty when the authority option is unset
	Supply          uint64 // raw units
	Decimals        int
}

// UISupply returns the supply adjusted for decimals.
func (m *MintInfo) UISupply() float64 {
	return float64(m.Supply) / math.Pow10(m.Decimals)
}

// IsMintable reports whether a mint authority is still set.
func (m *MintInfo) IsMintable() bool {
	return m.MintAuthority != ""
}

// DecodeMintAccount decodes the SPL mint account layout:
// mintAuthorityOption(4) | mintAuthority(32) | supply(8) | decimals(1) |
// isInitialized(1) | freezeAuthorityOption(4) | freezeAuthority(32).
func DecodeMintAccount(data []byte) (*MintInfo, error) {
	if len(data) < MintAccountSize {
		return nil, fmt.Errorf("mint account data too short: %d", len(data))
	}

	info := &MintInfo{
		Supply:   binary.LittleEndian.Uint64(data[36:44]),
		Decimals: int(data[44]),
	}

	if binary.LittleEndian.Uint32(data[0:4]) > 0 {
		info.MintAuthority = base58.Encode(data[4:36])
	}
	if binary.LittleEndian.Uint32(data[46:50]) > 0 {
		info.FreezeAuthority = base58.Encode(data[50:82])
	}

	return info, nil
}
