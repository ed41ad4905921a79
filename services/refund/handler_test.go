package refund

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"medibook/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type fakeGateway struct {
	mu      sync.Mutex
	refunds []string
	failRef string
}

func (g *fakeGateway) CreateIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	return nil, errors.New("not used")
}

func (g *fakeGateway) Refund(ctx context.Context, paymentRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if paymentRef == g.failRef {
		return errors.New("gateway unavailable")
	}
	g.refunds = append(g.refunds, paymentRef)
	return nil
}

func (g *fakeGateway) refundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.refunds)
}

type memLedger struct {
	mu   sync.Mutex
	done map[string]bool
	err  error
}

func newMemLedger() *memLedger { return &memLedger{done: make(map[string]bool)} }

func (l *memLedger) MarkDone(ctx context.Context, paymentRef string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.done[paymentRef] {
		return false, nil
	}
	l.done[paymentRef] = true
	return true, nil
}

func (l *memLedger) IsDone(ctx context.Context, paymentRef string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	return l.done[paymentRef], nil
}

func refundTask(t *testing.T, payload models.RefundPayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return asynq.NewTask(TypeRefundIssue, b)
}

func TestHandleRefundTask_IssuesRefundOnce(t *testing.T) {
	gateway := &fakeGateway{}
	ledger := newMemLedger()
	handle := HandleRefundTask(gateway, ledger, zap.NewNop())

	task := refundTask(t, models.RefundPayload{PaymentRef: "pi_123", Amount: 75, SlotID: "s1"})

	// First delivery refunds; a duplicate delivery is absorbed by the ledger.
	for i := 0; i < 2; i++ {
		if err := handle(context.Background(), task); err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i, err)
		}
	}

	if n := gateway.refundCount(); n != 1 {
		t.Fatalf("expected exactly one gateway refund, got %d", n)
	}
	if done, _ := ledger.IsDone(context.Background(), "pi_123"); !done {
		t.Error("refund was not recorded in the ledger")
	}
}

func TestHandleRefundTask_GatewayFailureRetries(t *testing.T) {
	gateway := &fakeGateway{failRef: "pi_down"}
	ledger := newMemLedger()
	handle := HandleRefundTask(gateway, ledger, zap.NewNop())

	task := refundTask(t, models.RefundPayload{PaymentRef: "pi_down", Amount: 75})

	err := handle(context.Background(), task)
	if err == nil {
		t.Fatal("expected an error so the task is retried")
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Error("a transient gateway failure must stay retryable")
	}
	if done, _ := ledger.IsDone(context.Background(), "pi_down"); done {
		t.Error("failed refund must not be marked done")
	}
}

func TestHandleRefundTask_MalformedPayloadSkipsRetry(t *testing.T) {
	handle := HandleRefundTask(&fakeGateway{}, newMemLedger(), zap.NewNop())

	task := asynq.NewTask(TypeRefundIssue, []byte("{not json"))
	err := handle(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandleRefundTask_LedgerOutageRetriesWithoutRefunding(t *testing.T) {
	gateway := &fakeGateway{}
	ledger := newMemLedger()
	handle := HandleRefundTask(gateway, ledger, zap.NewNop())

	task := refundTask(t, models.RefundPayload{PaymentRef: "pi_456", Amount: 50})
	if err := handle(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Redelivery while the ledger is down: the error surfaces for retry and
	// the gateway is not hit again before the ledger can be consulted.
	ledger.err = errors.New("ledger down")
	err := handle(context.Background(), task)
	if err == nil {
		t.Fatal("expected the ledger outage to surface for retry")
	}
	if n := gateway.refundCount(); n != 1 {
		t.Fatalf("expected one gateway refund, got %d", n)
	}
}
