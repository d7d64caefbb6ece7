package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// OnReconnect is called before each reconnect attempt.
	OnReconnect func()
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

type subKind int

const (
	subLogs subKind = iota
	subAccount
)

// subscription is the client-side state of one live subscription.
// id changes after a reconnect+resubscribe cycle.
type subscription struct {
	kind   subKind
	filter LogsFilter // logs subscriptions
	pubkey string     // account subscriptions
	logsCh chan LogNotification
	accCh  chan AccountNotification
	closed bool
}

// AccountSubscription is a handle to a live account subscription.
type AccountSubscription struct {
	C <-chan AccountNotification

	client *WSClientImpl
	sub    *subscription
	once   sync.Once
}

// Unsubscribe tears the subscription down and closes the channel.
// Safe to call multiple times.
func (s *AccountSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.client.unsubscribe(s.sub)
	})
}

// WSClientImpl implements WSClient using gorilla/websocket.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps server subscription ID to subscription state
	subs   map[int64]*subscription
	subsMu sync.RWMutex

	// pendingSubs maps request ID to channel waiting for subscription ID
	pendingSubs   map[uint64]chan int64
	pendingSubsMu sync.Mutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// Compile-time interface check.
var _ WSClient = (*WSClientImpl)(nil)

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClientImpl{
		endpoint:    endpoint,
		config:      cfg,
		subs:        make(map[int64]*subscription),
		pendingSubs: make(map[uint64]chan int64),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes WebSocket connection.
func (c *WSClientImpl) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// SubscribeLogs subscribes to program logs matching the filter.
func (c *WSClientImpl) SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error) {
	sub := &subscription{
		kind:   subLogs,
		filter: filter,
		// Large buffer plus blocking send ensures no event loss
		logsCh: make(chan LogNotification, 10000),
	}

	subID, err := c.subscribe(ctx, sub)
	if err != nil {
		return nil, err
	}

	c.subsMu.Lock()
	c.subs[subID] = sub
	c.subsMu.Unlock()

	return sub.logsCh, nil
}

// SubscribeAccount subscribes to changes of a single account.
func (c *WSClientImpl) SubscribeAccount(ctx context.Context, pubkey string) (*AccountSubscription, error) {
	sub := &subscription{
		kind:   subAccount,
		pubkey: pubkey,
		accCh:  make(chan AccountNotification, 256),
	}

	subID, err := c.subscribe(ctx, sub)
	if err != nil {
		return nil, err
	}

	c.subsMu.Lock()
	c.subs[subID] = sub
	c.subsMu.Unlock()

	return &AccountSubscription{C: sub.accCh, client: c, sub: sub}, nil
}

// subscribe sends the subscribe request for sub and waits for the server
// subscription ID. The caller stores the mapping.
func (c *WSClientImpl) subscribe(ctx context.Context, sub *subscription) (int64, error) {
	if c.closed.Load() {
		return 0, fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  subscribeMethod(sub.kind),
		Params:  subscribeParams(sub),
	}

	confirmCh := make(chan int64, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = confirmCh
	c.pendingSubsMu.Unlock()

	removePending := func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		removePending()
		return 0, fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		removePending()
		return 0, fmt.Errorf("write subscribe: %w", err)
	}

	// Wait for subscription confirmation (30s timeout for slow providers)
	select {
	case subID := <-confirmCh:
		return subID, nil
	case <-time.After(30 * time.Second):
		removePending()
		return 0, fmt.Errorf("subscription timeout after 30s")
	case <-c.done:
		return 0, fmt.Errorf("client closed")
	case <-ctx.Done():
		removePending()
		return 0, ctx.Err()
	}
}

func subscribeMethod(kind subKind) string {
	if kind == subAccount {
		return "accountSubscribe"
	}
	return "logsSubscribe"
}

func subscribeParams(sub *subscription) []interface{} {
	if sub.kind == subAccount {
		return []interface{}{
			sub.pubkey,
			map[string]string{"encoding": "base64", "commitment": "confirmed"},
		}
	}

	mentionsFilter := make(map[string]interface{})
	if len(sub.filter.Mentions) > 0 {
		mentionsFilter["mentions"] = sub.filter.Mentions
	} else {
		mentionsFilter["all"] = nil
	}
	return []interface{}{
		mentionsFilter,
		map[string]string{"commitment": "confirmed"},
	}
}

// unsubscribe removes sub from the client and notifies the server.
func (c *WSClientImpl) unsubscribe(sub *subscription) {
	var subID int64 = -1

	c.subsMu.Lock()
	for id, s := range c.subs {
		if s == sub {
			subID = id
			delete(c.subs, id)
			break
		}
	}
	if !sub.closed {
		sub.closed = true
		if sub.accCh != nil {
			close(sub.accCh)
		}
		if sub.logsCh != nil {
			close(sub.logsCh)
		}
	}
	c.subsMu.Unlock()

	if subID < 0 || c.closed.Load() {
		return
	}

	method := "logsUnsubscribe"
	if sub.kind == subAccount {
		method = "accountUnsubscribe"
	}
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  []interface{}{subID},
	}

	// Best effort; a failed unsubscribe is cleaned up server-side on disconnect
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		c.conn.WriteJSON(req)
	}
	c.connMu.Unlock()
}

// Close closes the WebSocket connection.
func (c *WSClientImpl) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	// Close all subscription channels
	c.subsMu.Lock()
	for id, sub := range c.subs {
		if !sub.closed {
			sub.closed = true
			if sub.logsCh != nil {
				close(sub.logsCh)
			}
			if sub.accCh != nil {
				close(sub.accCh)
			}
		}
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	// Close pending subscription channels
	c.pendingSubsMu.Lock()
	for id, ch := range c.pendingSubs {
		close(ch)
		delete(c.pendingSubs, id)
	}
	c.pendingSubsMu.Unlock()

	c.wg.Wait()
	return nil
}

// readLoop reads messages from WebSocket and dispatches to subscribers.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *WSClientImpl) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}
	if c.config.OnReconnect != nil {
		c.config.OnReconnect()
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	c.resubscribeAll()
}

// resubscribeAll re-issues all live subscriptions after reconnect and
// remaps their server IDs.
func (c *WSClientImpl) resubscribeAll() {
	c.subsMu.RLock()
	remaining := make(map[int64]*subscription, len(c.subs))
	for id, sub := range c.subs {
		remaining[id] = sub
	}
	c.subsMu.RUnlock()

	for oldSubID, sub := range remaining {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		newSubID, err := c.subscribe(ctx, sub)
		cancel()

		if err != nil {
			// Failed to resubscribe, keep old mapping
			continue
		}

		c.subsMu.Lock()
		delete(c.subs, oldSubID)
		c.subs[newSubID] = sub
		c.subsMu.Unlock()
	}
}

// handleMessage processes incoming WebSocket message.
func (c *WSClientImpl) handleMessage(message []byte) {
	// Try to parse as subscription response first
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.Result > 0 {
		c.handleSubscribeResponse(&resp)
		return
	}

	// Try to parse as notification
	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Params != nil {
		switch notif.Method {
		case "logsNotification":
			c.handleLogsNotification(&notif)
		case "accountNotification":
			c.handleAccountNotification(&notif)
		}
		return
	}

	// Check for error response
	var errResp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      uint64 `json:"id"`
		Error   *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(message, &errResp); err == nil && errResp.Error != nil {
		// Log error but don't crash - subscription will timeout
		fmt.Printf("[ws] Error response: code=%d msg=%s\n", errResp.Error.Code, errResp.Error.Message)
	}
}

// handleSubscribeResponse handles subscription confirmation.
func (c *WSClientImpl) handleSubscribeResponse(resp *wsSubscribeResponse) {
	c.pendingSubsMu.Lock()
	ch, ok := c.pendingSubs[resp.ID]
	if ok {
		delete(c.pendingSubs, resp.ID)
	}
	c.pendingSubsMu.Unlock()

	if ok {
		select {
		case ch <- resp.Result:
		default:
		}
	}
}

// handleLogsNotification dispatches a log notification to its subscriber.
func (c *WSClientImpl) handleLogsNotification(notif *wsNotification) {
	var result struct {
		Context *wsContext `json:"context"`
		Value   struct {
			Signature string      `json:"signature"`
			Logs      []string    `json:"logs"`
			Err       interface{} `json:"err"`
		} `json:"value"`
	}
	if err := json.Unmarshal(notif.Params.Result, &result); err != nil {
		return
	}

	logNotif := LogNotification{
		Signature: result.Value.Signature,
		Logs:      result.Value.Logs,
		Err:       result.Value.Err,
	}
	if result.Context != nil {
		logNotif.Slot = result.Context.Slot
	}

	// The read lock is held across the send so unsubscribe/Close cannot
	// close the channel underneath it; Close releases a blocked send by
	// closing done before it takes the write lock.
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	sub, ok := c.subs[notif.Params.Subscription]
	if ok && sub.kind == subLogs && !sub.closed {
		// Block until we can send - never drop events
		select {
		case sub.logsCh <- logNotif:
		case <-c.done:
		}
	}
}

// handleAccountNotification dispatches an account notification to its subscriber.
func (c *WSClientImpl) handleAccountNotification(notif *wsNotification) {
	var result struct {
		Context *wsContext `json:"context"`
		Value   struct {
			Lamports uint64   `json:"lamports"`
			Owner    string   `json:"owner"`
			Data     []string `json:"data"` // [base64_data, encoding]
		} `json:"value"`
	}
	if err := json.Unmarshal(notif.Params.Result, &result); err != nil {
		return
	}

	accNotif := AccountNotification{
		Lamports: result.Value.Lamports,
		Owner:    result.Value.Owner,
	}
	if result.Context != nil {
		accNotif.Slot = result.Context.Slot
	}
	if len(result.Value.Data) >= 1 {
		if decoded, err := base64.StdEncoding.DecodeString(result.Value.Data[0]); err == nil {
			accNotif.Data = decoded
		}
	}

	// Locked across the send so a concurrent unsubscribe cannot close
	// the channel between the closed check and the send.
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	sub, ok := c.subs[notif.Params.Subscription]
	if ok && sub.kind == subAccount && !sub.closed {
		// Account watchers poll slowly; drop rather than block the read loop
		select {
		case sub.accCh <- accNotif:
		default:
		}
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  int64  `json:"result"` // subscription ID
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64           `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}
