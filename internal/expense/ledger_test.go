package expense

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/fkhayef/splitsmart/internal/expense/split"
)

func participants(keys ...string) []split.Participant {
	out := make([]split.Participant, len(keys))
	for i, k := range keys {
		out[i] = split.Participant{Member: k}
	}
	return out
}

func TestLedger_RecordAssignsSequence(t *testing.T) {
	l := NewLedger(42)

	first, err := l.Record(RecordRequest{
		Payer:        "alice@test.com",
		Amount:       30000,
		Description:  "Hotel",
		SplitType:    split.SplitTypeEqual,
		Participants: participants("alice@test.com", "bob@test.com", "charlie@test.com"),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	second, err := l.Record(RecordRequest{
		Payer:        "bob@test.com",
		Amount:       100,
		Description:  "Coffee",
		SplitType:    split.SplitTypeEqual,
		Participants: participants("alice@test.com", "bob@test.com", "charlie@test.com"),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if first.Sequence() != 1 || second.Sequence() != 2 {
		t.Errorf("sequences = %d, %d; want 1, 2", first.Sequence(), second.Sequence())
	}
	if first.GroupID() != 42 || first.Kind() != KindExpense {
		t.Errorf("unexpected expense header: group %d kind %s", first.GroupID(), first.Kind())
	}
	if first.CreatedAt().IsZero() {
		t.Error("CreatedAt should be set")
	}

	want := []split.Share{{Member: "alice@test.com", Amount: 34}, {Member: "bob@test.com", Amount: 33}, {Member: "charlie@test.com", Amount: 33}}
	if !reflect.DeepEqual(second.Shares(), want) {
		t.Errorf("shares = %v, want %v", second.Shares(), want)
	}
	if second.ShareOf("alice@test.com") != 34 || second.ShareOf("nobody") != 0 {
		t.Error("ShareOf returned wrong amounts")
	}

	got := l.Expenses()
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Errorf("Expenses() not in insertion order: %v", got)
	}
}

func TestLedger_RecordPropagatesSplitError(t *testing.T) {
	l := NewLedger(1)

	_, err := l.Record(RecordRequest{
		Payer:     "a",
		Amount:    100,
		SplitType: split.SplitTypePercentage,
		Participants: []split.Participant{
			{Member: "a", Percentage: decimalPtr("60")},
			{Member: "b", Percentage: decimalPtr("30")},
		},
	})

	var splitErr *split.InvalidSplitError
	if !errors.As(err, &splitErr) {
		t.Fatalf("expected *split.InvalidSplitError, got %v", err)
	}
	if !errors.Is(err, split.ErrInvalidPercentages) {
		t.Errorf("expected ErrInvalidPercentages, got %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("failed record must not append, ledger has %d entries", l.Len())
	}
}

func TestLedger_RecordRejectsBadRequests(t *testing.T) {
	l := NewLedger(1)

	if _, err := l.Record(RecordRequest{Amount: 10, SplitType: split.SplitTypeEqual, Participants: participants("a")}); !errors.Is(err, ErrPayerRequired) {
		t.Errorf("expected ErrPayerRequired, got %v", err)
	}
	if _, err := l.Record(RecordRequest{Kind: "REFUND", Payer: "a", Amount: 10, SplitType: split.SplitTypeEqual, Participants: participants("a")}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := l.Record(RecordRequest{Payer: "a", Amount: 10, SplitType: "EVEN", Participants: participants("a")}); !errors.Is(err, split.ErrUnknownSplitType) {
		t.Errorf("expected ErrUnknownSplitType, got %v", err)
	}
}

func TestExpense_IsImmutable(t *testing.T) {
	l := NewLedger(1)
	e, err := l.Record(RecordRequest{
		Payer:        "a",
		Amount:       90,
		SplitType:    split.SplitTypeEqual,
		Participants: participants("a", "b", "c"),
	})
	if err != nil {
		t.Fatal(err)
	}
	before := e.Record()

	shares := e.Shares()
	shares[0].Amount = 1_000_000
	rec := e.Record()
	rec.Shares[1].Member = "mallory"

	if _, err := l.Record(RecordRequest{Payer: "b", Amount: 10, SplitType: split.SplitTypeEqual, Participants: participants("a", "b")}); err != nil {
		t.Fatal(err)
	}
	_ = l.Expenses()

	if !reflect.DeepEqual(e.Record(), before) {
		t.Errorf("expense changed: got %+v, want %+v", e.Record(), before)
	}
}

func TestLedger_ConcurrentRecordKeepsSequenceUnique(t *testing.T) {
	l := NewLedger(1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Record(RecordRequest{Payer: "a", Amount: 10, SplitType: split.SplitTypeEqual, Participants: participants("a", "b")})
		}()
	}
	wg.Wait()

	for i, e := range l.Expenses() {
		if e.Sequence() != int64(i+1) {
			t.Fatalf("position %d has sequence %d", i, e.Sequence())
		}
	}
	if l.Len() != 50 {
		t.Errorf("Len = %d, want 50", l.Len())
	}
}

func TestLoadLedger(t *testing.T) {
	entries := []*Expense{
		Restore(Record{ID: 10, GroupID: 3, Sequence: 1, Kind: KindExpense, Payer: "a", Amount: 10, SplitType: split.SplitTypeEqual, Shares: []split.Share{{Member: "a", Amount: 5}, {Member: "b", Amount: 5}}}),
		Restore(Record{ID: 11, GroupID: 3, Sequence: 2, Kind: KindPayment, Payer: "b", Amount: 5, SplitType: split.SplitTypeExact, Shares: []split.Share{{Member: "a", Amount: 5}}}),
	}

	l, err := LoadLedger(3, entries)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	next, err := l.Record(RecordRequest{Payer: "a", Amount: 2, SplitType: split.SplitTypeEqual, Participants: participants("a", "b")})
	if err != nil {
		t.Fatal(err)
	}
	if next.Sequence() != 3 {
		t.Errorf("next sequence = %d, want 3", next.Sequence())
	}

	if _, err := LoadLedger(3, entries[1:]); !errors.Is(err, ErrSequenceGap) {
		t.Errorf("expected ErrSequenceGap, got %v", err)
	}
	if _, err := LoadLedger(4, entries); !errors.Is(err, ErrForeignEntry) {
		t.Errorf("expected ErrForeignEntry, got %v", err)
	}
}
