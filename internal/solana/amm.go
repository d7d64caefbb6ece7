package solana

import (
	"encoding/binary"
	"fmt"
)

// Raydium AMM v4 pool status values.
const (
	AMMStatusSwap            = 6
	AMMStatusWaitingForStart = 7
)

// ammAccountMinSize covers the fields decoded below; the full layout is larger.
const ammAccountMinSize = 232

// AMMInfo is the slice of the Raydium AMM v4 account state the pipeline reads.
type AMMInfo struct {
	Status       uint64
	PoolOpenTime uint64 // epoch seconds; 0 when the pool is live immediately
}

// SwapEnabled reports whether the pool accepts swaps now or at its open time.
func (a *AMMInfo) SwapEnabled() bool {
	return a.Status == AMMStatusSwap || a.Status == AMMStatusWaitingForStart
}

// DecodeAMMAccount decodes the status and pool open time from a Raydium
// AMM v4 account. Layout: status u64 at offset 0, poolOpenTime u64 at 224.
func DecodeAMMAccount(data []byte) (*AMMInfo, error) {
	if len(data) < ammAccountMinSize {
		return nil, fmt.Errorf("amm account too short: %d bytes, need %d", len(data), ammAccountMinSize)
	}

	return &AMMInfo{
		Status:       binary.LittleEndian.Uint64(data[0:8]),
		PoolOpenTime: binary.LittleEndian.Uint64(data[224:232]),
	}, nil
}
