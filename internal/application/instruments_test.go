package application

import (
	"context"
	"errors"
	"testing"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/internal/domain/errs"
)

func TestSelectPreferredMostRecent(t *testing.T) {
	list := entity.Instruments{
		{ID: "pm_old", CreatedAt: at(1)},
		{ID: "pm_new", CreatedAt: at(30)},
		{ID: "pm_mid", CreatedAt: at(10)},
	}
	got, ok := SelectPreferred(list)
	if !ok || got.ID != "pm_new" {
		t.Fatalf("expected pm_new, got %+v", got)
	}
	if list[0].ID != "pm_old" {
		t.Fatalf("input order must not be modified")
	}
}

func TestSelectPreferredTieBreaksByID(t *testing.T) {
	a := entity.Instruments{{ID: "pm_b", CreatedAt: at(5)}, {ID: "pm_a", CreatedAt: at(5)}}
	b := entity.Instruments{{ID: "pm_a", CreatedAt: at(5)}, {ID: "pm_b", CreatedAt: at(5)}}

	ga, _ := SelectPreferred(a)
	gb, _ := SelectPreferred(b)
	if ga.ID != "pm_a" || gb.ID != "pm_a" {
		t.Fatalf("expected pm_a regardless of order, got %s and %s", ga.ID, gb.ID)
	}
}

func TestSelectPreferredEmpty(t *testing.T) {
	if _, ok := SelectPreferred(nil); ok {
		t.Fatal("expected no selection for empty list")
	}
}

func TestInstrumentResolverValidatesScope(t *testing.T) {
	p := &fakeProcessor{}
	r := NewInstrumentResolver(p)

	if _, err := r.ListForCustomer(context.Background(), "acct_1"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := r.ListForConnectedAccount(context.Background(), "cus_1"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(p.Calls()) != 0 {
		t.Fatalf("expected no processor calls, got %v", p.Calls())
	}
}

func TestInstrumentResolverPassesThrough(t *testing.T) {
	p := &fakeProcessor{CustomerInstruments: entity.Instruments{{ID: "pm_1"}, {ID: "pm_2"}}}
	r := NewInstrumentResolver(p)

	got, err := r.ListForCustomer(context.Background(), "cus_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "pm_1" {
		t.Fatalf("unexpected list %+v", got)
	}
	// no caching: a second call hits the processor again
	_, _ = r.ListForCustomer(context.Background(), "cus_1")
	if n := len(p.Calls()); n != 2 {
		t.Fatalf("expected 2 processor calls, got %d", n)
	}
}
