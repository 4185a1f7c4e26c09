package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"github.com/brabsmit/sportsbook-arb/internal/kalshi"
	"github.com/brabsmit/sportsbook-arb/internal/orders"
	"github.com/brabsmit/sportsbook-arb/internal/position"
	"go.uber.org/zap"
)

type fakeClient struct {
	createFn func(ctx context.Context, req kalshi.OrderRequest) (*kalshi.Order, error)
	cancelFn func(ctx context.Context, orderID string) error
}

func (f *fakeClient) CreateOrder(ctx context.Context, req kalshi.OrderRequest) (*kalshi.Order, error) {
	return f.createFn(ctx, req)
}

func (f *fakeClient) CancelOrder(ctx context.Context, orderID string) error {
	return f.cancelFn(ctx, orderID)
}

func newTestExecutor(client ExchangeClient, dryRun bool) (*Executor, *orders.Registry, *position.Ledger) {
	reg := orders.NewRegistry()
	ledger := position.NewLedger()
	exec := New(Config{
		Client:   client,
		Registry: reg,
		Ledger:   ledger,
		Logger:   zap.NewNop(),
		DryRun:   dryRun,
	})
	return exec, reg, ledger
}

func TestSubmitDryRunNeverCallsClientAndRegistersOrderID(t *testing.T) {
	exec, reg, _ := newTestExecutor(&fakeClient{
		createFn: func(ctx context.Context, req kalshi.OrderRequest) (*kalshi.Order, error) {
			t.Fatal("dry-run must not call CreateOrder")
			return nil, nil
		},
	}, true)

	reg.TryRegister("TICK-1", 10, 50, false)
	ack, err := exec.Submit(context.Background(), "TICK-1", domain.Yes, false, 50, 10, domain.Limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack.OrderID == "" {
		t.Error("expected a synthetic order ID")
	}
	po, ok := reg.Get("TICK-1")
	if !ok || po.OrderID != ack.OrderID {
		t.Errorf("registry order ID = %q, want %q", po.OrderID, ack.OrderID)
	}
}

func TestSubmitLiveRecordsOrderIDAndOptimisticFill(t *testing.T) {
	exec, reg, ledger := newTestExecutor(&fakeClient{
		createFn: func(ctx context.Context, req kalshi.OrderRequest) (*kalshi.Order, error) {
			if req.Side != "yes" || req.Action != "buy" || req.YesPrice != 50 {
				t.Errorf("unexpected request: %+v", req)
			}
			return &kalshi.Order{OrderID: "ORD-1", FilledCount: 10}, nil
		},
	}, false)

	reg.TryRegister("TICK-2", 10, 50, false)
	ack, err := exec.Submit(context.Background(), "TICK-2", domain.Yes, false, 50, 10, domain.Limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack.OrderID != "ORD-1" || ack.FilledCount != 10 {
		t.Errorf("ack = %+v, want OrderID=ORD-1 FilledCount=10", ack)
	}

	po, ok := reg.Get("TICK-2")
	if !ok || po.OrderID != "ORD-1" {
		t.Errorf("registry not updated with order ID: %+v", po)
	}

	pos := ledger.Get("TICK-2")
	if pos.Quantity != 10 {
		t.Errorf("expected optimistic position of 10, got %+v", pos)
	}
}

func TestSubmitLiveNoFillDoesNotOpenPosition(t *testing.T) {
	exec, _, ledger := newTestExecutor(&fakeClient{
		createFn: func(ctx context.Context, req kalshi.OrderRequest) (*kalshi.Order, error) {
			return &kalshi.Order{OrderID: "ORD-2", FilledCount: 0}, nil
		},
	}, false)

	_, err := exec.Submit(context.Background(), "TICK-3", domain.Yes, false, 50, 10, domain.Limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos := ledger.Get("TICK-3"); pos.Quantity != 0 {
		t.Error("expected no position to be opened with zero fill count")
	}
}

func TestSubmitPropagatesClientError(t *testing.T) {
	exec, _, _ := newTestExecutor(&fakeClient{
		createFn: func(ctx context.Context, req kalshi.OrderRequest) (*kalshi.Order, error) {
			return nil, errkind.New(errkind.Credentials, "signature rejected")
		},
	}, false)

	_, err := exec.Submit(context.Background(), "TICK-4", domain.Yes, false, 50, 10, domain.Limit)
	if !errkind.Is(err, errkind.Credentials) {
		t.Errorf("expected Credentials error, got %v", err)
	}
}

func TestCancelDryRunAlwaysSucceeds(t *testing.T) {
	exec, _, _ := newTestExecutor(&fakeClient{
		cancelFn: func(ctx context.Context, orderID string) error {
			t.Fatal("dry-run must not call CancelOrder")
			return nil
		},
	}, true)

	if err := exec.Cancel(context.Background(), "ORD-X"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCancel404MapsToSuccess(t *testing.T) {
	exec, _, _ := newTestExecutor(&fakeClient{
		cancelFn: func(ctx context.Context, orderID string) error {
			return errkind.NewHTTP(errkind.Logical, 404, "order not found")
		},
	}, false)

	if err := exec.Cancel(context.Background(), "ORD-Y"); err != nil {
		t.Errorf("expected 404 to map to success, got %v", err)
	}
}

func TestCancelPropagatesOtherErrors(t *testing.T) {
	exec, _, _ := newTestExecutor(&fakeClient{
		cancelFn: func(ctx context.Context, orderID string) error {
			return errors.New("connection reset")
		},
	}, false)

	if err := exec.Cancel(context.Background(), "ORD-Z"); err == nil {
		t.Error("expected error to propagate")
	}
}
