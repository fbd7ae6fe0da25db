package givehub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
)

type ChannelState int

const (
	StateDisconnected ChannelState = iota
	StateConnecting
	StateListening
)

func (s ChannelState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateListening:
		return "listening"
	default:
		return fmt.Sprintf("ChannelState(%d)", int(s))
	}
}

type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Notifications is the push notification channel. After Connect it keeps an
// authenticated websocket open, reconnecting according to the client's
// [ReconnectPolicy] when the connection drops, and delivers every inbound
// message to the listeners registered for its type. Messages are dispatched
// one at a time in the order received.
type Notifications struct {
	client   *Client
	registry *listenerRegistry

	mu     sync.Mutex
	state  ChannelState
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func newNotifications(c *Client) *Notifications {
	done := make(chan struct{})
	close(done)

	return &Notifications{
		client:   c,
		registry: newListenerRegistry(),
		done:     done,
	}
}

// List fetches stored notifications.
func (n *Notifications) List(ctx context.Context, filters Params) (Response, error) {
	return n.client.Request(ctx, Request{
		Method:   http.MethodGet,
		Endpoint: "/notifications",
		Query:    filters,
	})
}

// On registers l for eventType.
func (n *Notifications) On(eventType string, l *Listener) {
	if l == nil {
		return
	}

	n.registry.add(eventType, l)
}

// Off removes l from eventType. Removing a listener that is not registered
// is a no-op.
func (n *Notifications) Off(eventType string, l *Listener) {
	n.registry.remove(eventType, l)
}

func (n *Notifications) State() ChannelState {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.state
}

// Done is closed when the current receive loop exits, either after
// Disconnect or after the reconnect policy gave up.
func (n *Notifications) Done() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.done
}

// Err returns the error that stopped the last receive loop, or nil when it
// was stopped by Disconnect or is still running.
func (n *Notifications) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.err
}

// Connect opens the channel and sends the authentication frame. It fails
// with [ErrAuthRequired] when the client holds no access token. Calling
// Connect on an open channel is a no-op.
func (n *Notifications) Connect(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateDisconnected {
		return nil
	}

	token := n.client.tokens.accessToken()
	if token == "" {
		return &AuthRequiredError{Message: "authentication required for notifications"}
	}

	n.state = StateConnecting

	conn, err := n.dial(ctx, token)
	if err != nil {
		n.state = StateDisconnected
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	n.conn = conn
	n.cancel = cancel
	n.done = done
	n.err = nil
	n.state = StateListening

	go n.listen(loopCtx, conn, done)

	return nil
}

// Disconnect closes the channel. The receive loop stops without
// reconnecting. It does not wait for a handler that is currently running.
func (n *Notifications) Disconnect() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cancel == nil {
		n.state = StateDisconnected
		return nil
	}

	n.cancel()
	n.cancel = nil
	n.state = StateDisconnected

	conn := n.conn
	n.conn = nil

	if conn == nil {
		return nil
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))

	return conn.Close()
}

func (n *Notifications) endpoint() (string, error) {
	u, err := url.Parse(n.client.cfg.BaseURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/notifications"

	return u.String(), nil
}

func (n *Notifications) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	endpoint, err := n.endpoint()
	if err != nil {
		return nil, err
	}

	conn, resp, err := n.client.options.dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			return nil, &RequestError{Method: http.MethodGet, URL: endpoint, StatusCode: resp.StatusCode, Message: err.Error()}
		}

		return nil, &ConnectionError{Method: http.MethodGet, URL: endpoint, Err: err}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := conn.WriteJSON(authFrame{Type: "auth", Token: token}); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Method: http.MethodGet, URL: endpoint, Err: fmt.Errorf("send auth frame: %w", err)}
	}

	n.client.options.requestLogger.Debugf("notification channel connected to %s", endpoint)

	return conn, nil
}

func (n *Notifications) listen(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	policy := n.client.options.reconnectPolicy
	limiter := policy.limiter()

	// failures counts reconnect attempts since the last stable connection.
	failures := 0

	for {
		stable, err := n.receive(ctx, conn, policy.MaxDelay)

		if ctx.Err() != nil {
			return
		}

		if stable {
			failures = 0
		}

		n.client.options.requestLogger.Warnf("notification channel dropped: %v", err)

		conn, failures, err = n.reconnect(ctx, limiter, failures, err)
		if err != nil {
			if ctx.Err() == nil {
				n.client.options.requestLogger.Errorf("notification channel stopped: %v", err)
				n.stop(done, err)
			}

			return
		}
	}
}

// receive reads until the connection fails. The connection counts as stable
// once it delivered a message or stayed up for at least stableAfter.
func (n *Notifications) receive(ctx context.Context, conn *websocket.Conn, stableAfter time.Duration) (bool, error) {
	stop := make(chan struct{})
	defer close(stop)

	opened := time.Now()
	received := false

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go keepAlive(conn, stop)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			return received || time.Since(opened) >= stableAfter, err
		}

		received = true
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		n.dispatch(ctx, data)
	}
}

func keepAlive(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		case <-stop:
			return
		}
	}
}

func (n *Notifications) dispatch(ctx context.Context, data []byte) {
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		n.client.options.requestLogger.Warnf("dropping malformed notification: %v", err)
		return
	}

	eventType, _ := msg["type"].(string)
	n.client.metrics.observeNotification(eventType)

	listeners := n.registry.lookup(eventType)
	if len(listeners) == 0 {
		return
	}

	note := Notification{Type: eventType, Data: msg, Raw: json.RawMessage(data)}

	for _, l := range listeners {
		if err := l.invoke(ctx, note); err != nil {
			n.client.options.requestLogger.Errorf("notification handler for %q failed: %v", eventType, err)
		}
	}
}

// reconnect dials until a connection is authenticated. failures is the number
// of attempts already made since the last stable connection and cause the
// error that dropped it; the updated count is returned.
func (n *Notifications) reconnect(ctx context.Context, limiter *rate.Limiter, failures int, cause error) (*websocket.Conn, int, error) {
	policy := n.client.options.reconnectPolicy
	n.setState(ctx, StateConnecting)

	lastErr := cause

	for {
		attempt := failures + 1
		if policy.Exhausted(attempt) {
			return nil, failures, fmt.Errorf("gave up after %d reconnect attempts: %w", failures, lastErr)
		}

		failures = attempt

		timer := time.NewTimer(policy.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, failures, ctx.Err()
		case <-timer.C:
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, failures, err
		}

		n.client.metrics.observeReconnect()
		n.client.options.requestLogger.Debugf("notification channel reconnect attempt %d", attempt)

		token := n.client.tokens.accessToken()
		if token == "" {
			lastErr = &AuthRequiredError{Message: "authentication required for notifications"}
			continue
		}

		conn, err := n.dial(ctx, token)
		if err != nil {
			lastErr = err
			n.client.options.requestLogger.Warnf("notification channel reconnect attempt %d failed: %v", attempt, err)
			continue
		}

		n.mu.Lock()
		if ctx.Err() != nil {
			n.mu.Unlock()
			_ = conn.Close()
			return nil, failures, ctx.Err()
		}
		n.conn = conn
		n.state = StateListening
		n.mu.Unlock()

		return conn, failures, nil
	}
}

func (n *Notifications) setState(ctx context.Context, state ChannelState) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ctx.Err() == nil {
		n.state = state
	}
}

// stop records a terminal error for the loop owning done, unless a newer
// loop has replaced it.
func (n *Notifications) stop(done chan struct{}, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.done != done {
		return
	}

	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}

	n.conn = nil
	n.state = StateDisconnected
	n.err = err
}
