package audithook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/khata"
	audithook "github.com/xraph/khata/audit_hook"
	"github.com/xraph/khata/store/memory"
	"github.com/xraph/khata/types"
)

type trail struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (t *trail) Record(_ context.Context, evt *audithook.AuditEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, evt)
	return nil
}

func (t *trail) actions() map[string]*audithook.AuditEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]*audithook.AuditEvent, len(t.events))
	for _, e := range t.events {
		out[e.Action] = e
	}
	return out
}

func newEngine(t *testing.T, ext *audithook.Extension) *khata.Khata {
	t.Helper()
	k := khata.New(memory.New(),
		khata.WithClock(func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) }),
		khata.WithLocation(time.UTC),
		khata.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		khata.WithPlugin(ext),
	)
	if err := k.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = k.Stop() }) //nolint:errcheck // test cleanup
	return k
}

func TestRecordsLifecycle(t *testing.T) {
	rec := &trail{}
	k := newEngine(t, audithook.New(rec))
	ctx := context.Background()

	s, err := k.CreateShop(ctx, khata.ShopInput{Name: "Sharma Traders", InitialDeposit: types.Units(100)})
	if err != nil {
		t.Fatal(err)
	}
	draft := khata.BillDraft{Items: []khata.ItemInput{{
		NumberOfBags: 1, WeightKg: decimal.NewFromInt(100), RatePerKg: types.Units(10),
	}}}
	b, err := k.CreateBill(ctx, s.ID, draft)
	if err != nil {
		t.Fatal(err)
	}
	// Pending 1000 has passed the 500 limit.
	if _, err = k.CreateBill(ctx, s.ID, draft); !errors.Is(err, khata.ErrCreditLimitExceeded) {
		t.Fatalf("second bill err = %v", err)
	}
	if err = k.DeleteBill(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	got := rec.actions()
	for _, action := range []string{
		audithook.ActionShopCreated,
		audithook.ActionDepositRecorded,
		audithook.ActionBillCreated,
		audithook.ActionBillRefused,
		audithook.ActionBillDeleted,
	} {
		if got[action] == nil {
			t.Errorf("missing %s event", action)
		}
	}

	created := got[audithook.ActionBillCreated]
	if created.ResourceID != b.ID.String() || created.Metadata["bill_number"] != "BILL-20240101-0001" {
		t.Errorf("bill.created = %+v", created)
	}
	refused := got[audithook.ActionBillRefused]
	if refused.Outcome != audithook.OutcomeFailure || refused.Reason != "credit_limit_exceeded" {
		t.Errorf("bill.refused = %+v", refused)
	}
	if refused.Metadata["credit_limit"] != "500.00" {
		t.Errorf("credit_limit = %v", refused.Metadata["credit_limit"])
	}
}

func TestActionFilters(t *testing.T) {
	tests := []struct {
		name string
		opt  audithook.Option
		want map[string]bool
	}{
		{
			name: "enabled only",
			opt:  audithook.WithEnabledActions(audithook.ActionShopCreated),
			want: map[string]bool{audithook.ActionShopCreated: true},
		},
		{
			name: "disabled",
			opt:  audithook.WithDisabledActions(audithook.ActionShopCreated),
			want: map[string]bool{audithook.ActionDepositRecorded: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &trail{}
			k := newEngine(t, audithook.New(rec, tt.opt))
			if _, err := k.CreateShop(context.Background(), khata.ShopInput{Name: "Sharma Traders", InitialDeposit: types.Units(100)}); err != nil {
				t.Fatal(err)
			}
			got := rec.actions()
			if len(got) != len(tt.want) {
				t.Errorf("actions = %v, want %v", got, tt.want)
			}
			for action := range tt.want {
				if got[action] == nil {
					t.Errorf("missing %s", action)
				}
			}
		})
	}
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	failing := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("audit store down")
	})
	ext := audithook.New(failing, audithook.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := ext.OnShopDeleted(context.Background(), khata.ID{}); err != nil {
		t.Errorf("hook returned %v", err)
	}
}
