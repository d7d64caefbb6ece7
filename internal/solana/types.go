package solana

// Well-known program and account addresses.
const (
	// RaydiumAMMV4 is the Raydium AMM v4 program ID, the source of new-pool logs.
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	// RaydiumAuthority is the Raydium V4 owner authority holding pool token accounts.
	RaydiumAuthority = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"
	// TokenProgramID is the SPL token program.
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	// AssociatedTokenProgramID derives associated token accounts.
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// TokenBalance is a pre/post token balance entry from transaction metadata.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	UIAmount     float64
	Decimals     int
}

// InstructionInfo carries the parsed fields this pipeline consumes from
// jsonParsed instructions (SPL transfers and account funding).
type InstructionInfo struct {
	Amount      string `json:"amount"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Authority   string `json:"authority"`
	Mint        string `json:"mint"`
}

// ParsedInstruction is one jsonParsed instruction.
type ParsedInstruction struct {
	Program string
	Type    string
	Info    InstructionInfo
}

// InnerInstructionSet groups inner instructions by outer instruction index.
type InnerInstructionSet struct {
	Index        int
	Instructions []ParsedInstruction
}

// OuterInstruction is one top-level instruction with its resolved account
// addresses. Programs the RPC node cannot parse (Raydium among them) arrive
// in this raw form.
type OuterInstruction struct {
	ProgramID string
	Accounts  []string
	Data      string // base58-encoded instruction data
}

// Transaction is a parsed Solana transaction with the metadata the
// pipeline needs: logs, account keys, token balances and inner transfers.
type Transaction struct {
	Slot              int64
	Signature         string
	BlockTime         int64 // Unix timestamp (seconds)
	Err               interface{}
	LogMessages       []string
	AccountKeys       []string
	Instructions      []OuterInstruction
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
	InnerInstructions []InnerInstructionSet
}

// TokenAmount is a token balance reading.
type TokenAmount struct {
	Amount   string // raw units
	UIAmount float64
	Decimals int
}

// TokenAccountBalance is one entry from getTokenLargestAccounts.
type TokenAccountBalance struct {
	Address  string
	UIAmount float64
	Decimals int
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       []byte // decoded account data
	Executable bool
}
