package nui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"nuiprogress/internal/metrics"
)

// DefaultTimeout bounds a single delivery to the host.
const DefaultTimeout = 2 * time.Second

const queueSize = 64

// ErrQueueFull is returned by NotifyHost when deliveries are backed up.
var ErrQueueFull = errors.New("host notification queue full")

// ErrClientClosed is returned by NotifyHost after Close.
var ErrClientClosed = errors.New("host client closed")

type notification struct {
	event   string
	payload any
}

// Client delivers outbound messages to the host. NotifyHost only enqueues;
// a single background goroutine performs the POSTs in order.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	queue  chan notification
	done   chan struct{}
}

// NewClient creates a Client posting to baseURL and starts its sender.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		queue:   make(chan notification, queueSize),
		done:    make(chan struct{}),
	}
	go c.loop()
	return c
}

// NotifyHost queues event for delivery. It never blocks.
func (c *Client) NotifyHost(_ context.Context, event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.queue <- notification{event: event, payload: payload}:
		return nil
	default:
		metrics.ObserveHostNotification(event, ErrQueueFull, 0)
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits for queued ones to be sent
// or for ctx to end.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.queue)
	}
	c.mu.Unlock()

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) loop() {
	defer close(c.done)
	for n := range c.queue {
		start := time.Now()
		err := c.Send(context.Background(), n.event, n.payload)
		metrics.ObserveHostNotification(n.event, err, time.Since(start))
		if err != nil {
			c.logger.Warn("host notification failed", zap.String("event", n.event), zap.Error(err))
			continue
		}
		c.logger.Debug("host notified", zap.String("event", n.event))
	}
}

// Send POSTs payload to <baseURL>/<event> synchronously. A nil payload is
// sent as an empty object.
func (c *Client) Send(ctx context.Context, event string, payload any) error {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+event, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", event, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: unexpected status %d", event, resp.StatusCode)
	}
	return nil
}

// PostMessage sends a host-style envelope to a bridge server at baseURL. It
// is what the host does to drive the overlay.
func PostMessage(ctx context.Context, client *http.Client, baseURL string, msg Message) error {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/nui", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post message: unexpected status %d", resp.StatusCode)
	}
	return nil
}
