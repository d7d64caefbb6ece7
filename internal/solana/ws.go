package solana

import "context"

// WSClient defines the Solana WebSocket subscription surface.
type WSClient interface {
	// SubscribeLogs subscribes to program logs matching the filter.
	// The channel lives until Close.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// SubscribeAccount subscribes to changes of a single account. The
	// returned subscription must be unsubscribed when no longer needed.
	SubscribeAccount(ctx context.Context, pubkey string) (*AccountSubscription, error)

	// Close closes the WebSocket connection and all subscriptions.
	Close() error
}

// LogsFilter defines subscription filter for logs.
type LogsFilter struct {
	// Mentions filters logs that mention any of these program IDs.
	Mentions []string
}

// LogNotification represents a logs subscription message.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}

// AccountNotification represents an account subscription message.
type AccountNotification struct {
	Slot     int64
	Lamports uint64
	Owner    string
	Data     []byte // decoded account data
}
