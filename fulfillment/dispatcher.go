package fulfillment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	headerEvent     = "X-Ledger-Event"
	headerSignature = "X-Ledger-Signature"
	eventType       = "rewards.benefit.fulfill"

	defaultMaxAttempts = 3
	defaultMinBackoff  = 2 * time.Second
	defaultMaxBackoff  = 30 * time.Second
)

// payload is the JSON body posted to the benefit endpoint. The remote action
// is invoked with no further arguments; account and delivery id identify the
// redemption.
type payload struct {
	Type         string `json:"type"`
	Account      string `json:"account"`
	Benefit      string `json:"benefit"`
	Action       string `json:"action"`
	DeliveryID   string `json:"deliveryId"`
	DispatchedAt string `json:"dispatchedAt"`
}

// Dispatcher delivers fulfillment requests over signed webhooks. Requests are
// queued and sent by a single worker with bounded retries; the caller never
// waits for delivery.
type Dispatcher struct {
	routes      Routes
	secret      []byte
	client      *http.Client
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan delivery
	wg     sync.WaitGroup
}

type delivery struct {
	endpoint string
	body     []byte
}

// Option mutates dispatcher configuration.
type Option func(*Dispatcher)

// WithHTTPClient overrides the HTTP client used for deliveries.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithRetryPolicy overrides the retry configuration.
func WithRetryPolicy(maxAttempts int, minBackoff, maxBackoff time.Duration) Option {
	return func(d *Dispatcher) {
		if maxAttempts > 0 {
			d.maxAttempts = maxAttempts
		}
		if minBackoff > 0 {
			d.minBackoff = minBackoff
		}
		if maxBackoff >= minBackoff && maxBackoff > 0 {
			d.maxBackoff = maxBackoff
		}
	}
}

// NewDispatcher constructs a dispatcher and spawns the delivery worker.
func NewDispatcher(routes Routes, secret []byte, opts ...Option) (*Dispatcher, error) {
	if err := routes.Validate(); err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, errors.New("fulfillment: signing secret required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		routes:      routes,
		secret:      append([]byte(nil), secret...),
		client:      &http.Client{Timeout: 10 * time.Second},
		maxAttempts: defaultMaxAttempts,
		minBackoff:  defaultMinBackoff,
		maxBackoff:  defaultMaxBackoff,
		ctx:         ctx,
		cancel:      cancel,
		queue:       make(chan delivery, 64),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.wg.Add(1)
	go d.worker()
	return d, nil
}

// Close stops the dispatcher and waits for inflight deliveries to settle.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.cancel()
	d.wg.Wait()
}

// Dispatch enqueues a fulfillment request. It returns once the request is
// queued; delivery outcome is never reported back to the caller.
func (d *Dispatcher) Dispatch(req Request) error {
	if d == nil {
		return errors.New("fulfillment: dispatcher not initialised")
	}
	endpoint := d.routes.Endpoint(req.Benefit)
	if endpoint == "" {
		return errors.New("fulfillment: no endpoint for benefit " + req.Benefit)
	}
	body, err := json.Marshal(payload{
		Type:         eventType,
		Account:      req.Account,
		Benefit:      req.Benefit,
		Action:       req.Action,
		DeliveryID:   uuid.NewString(),
		DispatchedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	select {
	case d.queue <- delivery{endpoint: endpoint, body: body}:
		return nil
	case <-d.ctx.Done():
		return errors.New("fulfillment: dispatcher closed")
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.queue:
			d.process(job)
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) process(job delivery) {
	attempt := 0
	backoff := d.minBackoff
	for {
		attempt++
		ctx, cancel := context.WithTimeout(d.ctx, d.client.Timeout)
		err := d.send(ctx, job)
		cancel()
		if err == nil {
			return
		}
		if attempt >= d.maxAttempts {
			return
		}
		select {
		case <-time.After(backoff):
		case <-d.ctx.Done():
			return
		}
		backoff = nextBackoff(backoff, d.maxBackoff)
	}
}

func (d *Dispatcher) send(ctx context.Context, job delivery) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.endpoint, bytes.NewReader(job.body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEvent, eventType)
	req.Header.Set(headerSignature, d.sign(job.body))
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return errors.New("fulfillment: delivery failed with status " + resp.Status)
}

func (d *Dispatcher) sign(body []byte) string {
	mac := hmac.New(sha256.New, d.secret)
	_, _ = mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max || next < current {
		return max
	}
	return next
}
