package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"finboard/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	if client.isCircuitOpen() {
		t.Fatal("circuit breaker should be closed initially")
	}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("circuit breaker should be open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should let a probe through after the timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatal("state should be half-open after the timeout")
	}

	client.recordFailure()
	if atomic.LoadInt32(&client.state) != StateOpen {
		t.Fatal("a failed probe must reopen the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success must close the circuit and reset failures")
	}
}

func TestClient_PublishGuards(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}
	msg := NewExportRequestMessage(core.KindCard)

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	if err := client.PublishExportRequest(context.Background(), msg); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	client.recordSuccess()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.PublishExportRequest(ctx, msg); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	bad := &ExportRequestMessage{Kind: "loan", RequestedAt: time.Now()}
	if err := client.PublishExportRequest(context.Background(), bad); !errors.Is(err, core.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestExportRequestMessage_JSON(t *testing.T) {
	msg := &ExportRequestMessage{
		Kind:        "card",
		Period:      "custom",
		Start:       "2024-01-01",
		Query:       "uber",
		RequestedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	b, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), `"end"`) {
		t.Fatalf("empty filters must be omitted: %s", b)
	}
	got, err := ExportRequestMessageFromJSON(b)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *msg {
		t.Fatalf("expected %+v, got %+v", msg, got)
	}

	if _, err := ExportRequestMessageFromJSON([]byte(`{"kind": 3}`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

type fakeAck struct {
	acked, nacked, requeued int
}

func (f *fakeAck) Ack(uint64, bool) error { f.acked++; return nil }
func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked++
	if requeue {
		f.requeued++
	}
	return nil
}
func (f *fakeAck) Reject(uint64, bool) error { return nil }

func TestClient_Handle(t *testing.T) {
	valid, _ := NewExportRequestMessage(core.KindAccount).ToJSON()
	failing := func(context.Context, *ExportRequestMessage) error { return errors.New("sheets down") }
	ok := func(context.Context, *ExportRequestMessage) error { return nil }

	tests := []struct {
		name        string
		body        []byte
		redelivered bool
		handler     func(context.Context, *ExportRequestMessage) error
		want        fakeAck
	}{
		{"success", valid, false, ok, fakeAck{acked: 1}},
		{"malformed", []byte("{"), false, ok, fakeAck{nacked: 1}},
		{"unknown kind", []byte(`{"kind":"loan","requested_at":"2024-01-01T00:00:00Z"}`), false, ok, fakeAck{nacked: 1}},
		{"first failure requeues", valid, false, failing, fakeAck{nacked: 1, requeued: 1}},
		{"second failure drops", valid, true, failing, fakeAck{nacked: 1}},
	}
	c := &Client{queueName: "q"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			c.handle(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: tt.body, Redelivered: tt.redelivered}, tt.handler)
			if *ack != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, *ack)
			}
		})
	}
}
