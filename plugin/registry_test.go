package plugin_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/report"
)

type billCounter struct {
	name    string
	created atomic.Int32
	fail    bool
}

func (b *billCounter) Name() string { return b.name }

func (b *billCounter) OnBillCreated(_ context.Context, _ *bill.Bill) error {
	b.created.Add(1)
	if b.fail {
		return errors.New("boom")
	}
	return nil
}

type slowInit struct{}

func (slowInit) Name() string { return "slow" }

func (slowInit) OnInit(ctx context.Context, _ any) error {
	<-ctx.Done()
	return ctx.Err()
}

type csvFormatter struct{}

func (csvFormatter) Name() string        { return "csv" }
func (csvFormatter) Format() string      { return "csv" }
func (csvFormatter) ContentType() string { return "text/csv" }
func (csvFormatter) RenderBill(_ context.Context, doc *report.BillDocument, w io.Writer) error {
	_, err := io.WriteString(w, doc.Bill.Number)
	return err
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := plugin.NewRegistry()
	if err := r.Register(&billCounter{name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&billCounter{name: "a"}); err == nil {
		t.Error("expected duplicate registration error")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
	if r.Get("a") == nil || r.Get("missing") != nil {
		t.Error("Get returned wrong plugin")
	}
}

func TestEmitBillCreated(t *testing.T) {
	r := plugin.NewRegistry()
	ok := &billCounter{name: "ok"}
	failing := &billCounter{name: "failing", fail: true}
	_ = r.Register(ok)      //nolint:errcheck // test setup
	_ = r.Register(failing) //nolint:errcheck // test setup

	r.EmitBillCreated(context.Background(), &bill.Bill{Number: "BILL-20240101-0001"})

	// A failing hook does not stop later hooks.
	if ok.created.Load() != 1 || failing.created.Load() != 1 {
		t.Errorf("hooks called %d/%d times, want 1/1", ok.created.Load(), failing.created.Load())
	}
}

func TestHookTimeout(t *testing.T) {
	r := plugin.NewRegistry().WithTimeout(20 * time.Millisecond)
	_ = r.Register(slowInit{}) //nolint:errcheck // test setup

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	r.EmitInit(ctx, nil)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("EmitInit blocked for %s", elapsed)
	}
}

func TestFormatters(t *testing.T) {
	r := plugin.NewRegistry()
	_ = r.Register(csvFormatter{}) //nolint:errcheck // test setup

	if r.BillFormatter("csv") == nil {
		t.Fatal("csv bill formatter not registered")
	}
	if r.StatisticsFormatter("csv") != nil {
		t.Error("csv does not render statistics")
	}
	if got := r.Formats(); len(got) != 1 || got[0] != "csv" {
		t.Errorf("Formats = %v", got)
	}
}
