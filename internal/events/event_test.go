package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNew_AssignsUniqueIDs(t *testing.T) {
	a := New(TypeExpenseRecorded)
	b := New(TypeExpenseRecorded)

	if _, err := uuid.Parse(a.ID); err != nil {
		t.Fatalf("event id %q is not a uuid: %v", a.ID, err)
	}
	if a.ID == b.ID {
		t.Error("two events share an id")
	}
	if a.OccurredAt.IsZero() {
		t.Error("OccurredAt not set")
	}
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	e := New(TypePaymentRecorded)
	e.GroupID = 7
	e.ExpenseID = 42
	e.Sequence = 3
	e.Payer = "bob@example.com"
	e.AmountCents = 2500
	e.Currency = "USD"
	e.SplitType = "EXACT"
	e.Shares = []ShareLine{{Member: "alice@example.com", AmountCents: 2500}}

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if got.ID != e.ID || got.Type != e.Type || got.ExpenseID != 42 || got.AmountCents != 2500 {
		t.Errorf("decoded event differs: %+v", got)
	}
	if len(got.Shares) != 1 || got.Shares[0].Member != "alice@example.com" {
		t.Errorf("shares lost in transit: %+v", got.Shares)
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	if _, err := FromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestMemoryPublisher(t *testing.T) {
	var p MemoryPublisher
	ctx := context.Background()

	if err := p.Publish(ctx, New(TypeExpenseRecorded)); err != nil {
		t.Fatal(err)
	}
	if got := len(p.Events()); got != 1 {
		t.Fatalf("expected 1 event, got %d", got)
	}

	boom := errors.New("broker down")
	p.FailWith(boom)
	if err := p.Publish(ctx, New(TypeExpenseRecorded)); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
	if got := len(p.Events()); got != 1 {
		t.Errorf("failed publish should not be recorded, have %d events", got)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), New(TypeExpenseRecorded)); err != nil {
		t.Errorf("nop publish failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nop close failed: %v", err)
	}
}
