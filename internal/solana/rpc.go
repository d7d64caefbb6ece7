package solana

import "context"

// RPCClient defines the Solana RPC HTTP surface the pipeline consumes.
type RPCClient interface {
	// GetTransaction retrieves a parsed transaction by signature.
	// Returns nil, nil when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetAccountInfo retrieves raw account data. Returns nil, nil when not found.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetTokenAccountBalance retrieves the balance of a token account.
	GetTokenAccountBalance(ctx context.Context, account string) (*TokenAmount, error)

	// GetTokenLargestAccounts retrieves the largest holders of a mint.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAccountBalance, error)

	// GetTokenAccountsByOwner retrieves token account addresses of an owner for a mint.
	GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]string, error)
}
