package observability_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/xraph/khata"
	"github.com/xraph/khata/observability"
	"github.com/xraph/khata/store/memory"
	"github.com/xraph/khata/types"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestMetricsExtensionCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))

	k := khata.New(memory.New(),
		khata.WithClock(func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) }),
		khata.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		khata.WithPlugin(metrics),
	)
	ctx := context.Background()
	if err := k.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer k.Stop() //nolint:errcheck // test cleanup

	s, err := k.CreateShop(ctx, khata.ShopInput{Name: "Sharma Traders", InitialDeposit: types.Units(100)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = k.RecordPayment(ctx, s.ID, khata.EntryInput{Amount: types.Units(10)}); err != nil {
		t.Fatal(err)
	}
	draft := khata.BillDraft{Items: []khata.ItemInput{{
		NumberOfBags: 1, WeightKg: decimal.NewFromInt(100), RatePerKg: types.Units(10),
	}}}
	if _, err = k.CreateBill(ctx, s.ID, draft); err != nil {
		t.Fatal(err)
	}
	if _, err = k.CreateBill(ctx, s.ID, draft); !errors.Is(err, khata.ErrCreditLimitExceeded) {
		t.Fatalf("second bill err = %v", err)
	}
	if _, err = k.UpdateGunnyBagCost(ctx, types.Units(5)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		want float64
	}{
		{"khata_shop_created", 1},
		{"khata_deposit_recorded", 1},
		{"khata_payment_recorded", 1},
		{"khata_bill_created", 1},
		{"khata_bill_refused_credit_limit", 1},
		{"khata_bill_refused_bill_limit", 0},
		{"khata_settings_updated", 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, reg, tt.name); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPrometheusFactoryReusesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := observability.NewPrometheusFactory(reg)

	// A second registration of the same name would panic in MustRegister.
	a := f.Counter("khata.bill.created")
	b := f.Counter("khata.bill.created")
	a.Inc()
	b.Add(2)
	f.Histogram("khata.bill.items").Observe(3)

	if got := counterValue(t, reg, "khata_bill_created"); got != 3 {
		t.Errorf("counter = %v, want 3", got)
	}
}
