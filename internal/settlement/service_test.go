package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"

	"github.com/fkhayef/splitsmart/internal/database/databasetest"
	"github.com/fkhayef/splitsmart/internal/events"
	"github.com/fkhayef/splitsmart/internal/expense"
	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/log"
	"github.com/fkhayef/splitsmart/internal/member"
	"github.com/fkhayef/splitsmart/pkg/middleware"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
	carol = "carol@example.com"
	dave  = "dave@example.com"
)

type world struct {
	svc      *Service
	groups   *group.Service
	expenses *expense.Service
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	db := databasetest.Open(t)

	members := member.NewService(member.NewRepository(db))
	for _, e := range []string{alice, bob, carol, dave} {
		if _, err := members.Create(ctx, &member.CreateMemberRequest{Name: e, Email: e}); err != nil {
			t.Fatal(err)
		}
	}
	groups := group.NewService(group.NewRepository(db), members)
	expenses := expense.NewService(expense.NewRepository(db), groups, nil, events.NopPublisher{}, "USD", log.Discard())

	return &world{
		svc:      NewService(expenses, groups),
		groups:   groups,
		expenses: expenses,
	}
}

func (w *world) group(t *testing.T, name string, emails ...string) int64 {
	t.Helper()
	ctx := context.Background()
	g, err := w.groups.Create(ctx, emails[0], &group.CreateGroupRequest{Name: name})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range emails[1:] {
		if _, err := w.groups.AddMember(ctx, g.ID, &group.AddMemberRequest{Email: e}); err != nil {
			t.Fatal(err)
		}
	}
	return g.ID
}

func (w *world) spend(t *testing.T, groupID int64, payer string, amount int64, members ...string) {
	t.Helper()
	participants := make([]split.Participant, len(members))
	for i, m := range members {
		participants[i] = split.Participant{Member: m}
	}
	_, err := w.expenses.Record(context.Background(), groupID, expense.RecordRequest{
		Payer:        payer,
		Amount:       amount,
		Description:  "shared",
		SplitType:    split.SplitTypeEqual,
		Participants: participants,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestService_BalancesAndDebts(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	gid := w.group(t, "Trip", alice, bob, carol, dave)
	w.spend(t, gid, alice, 9000, alice, bob, carol)

	b, roster, err := w.svc.Balances(ctx, gid)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int64{alice: 6000, bob: -3000, carol: -3000, dave: 0}
	if !reflect.DeepEqual(map[string]int64(b), want) {
		t.Errorf("balances = %v, want %v", b, want)
	}
	if !reflect.DeepEqual(roster, []string{alice, bob, carol, dave}) {
		t.Errorf("roster = %v", roster)
	}

	debts, err := w.svc.Debts(ctx, gid)
	if err != nil {
		t.Fatal(err)
	}
	wantDebts := []Instruction{{From: bob, To: alice, Amount: 3000}, {From: carol, To: alice, Amount: 3000}}
	if !reflect.DeepEqual(debts, wantDebts) {
		t.Errorf("debts = %v, want %v", debts, wantDebts)
	}
}

func TestService_SettleUp(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	gid := w.group(t, "Trip", alice, bob, carol)
	w.spend(t, gid, alice, 9000, alice, bob, carol)

	payment, err := w.svc.SettleUp(ctx, gid, bob, alice, 0)
	if err != nil {
		t.Fatalf("SettleUp: %v", err)
	}
	if payment.Kind() != expense.KindPayment || payment.Amount() != 3000 || payment.ShareOf(alice) != 3000 {
		t.Errorf("unexpected payment: %+v", payment.Record())
	}

	debts, err := w.svc.Debts(ctx, gid)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(debts, []Instruction{{From: carol, To: alice, Amount: 3000}}) {
		t.Errorf("debts after payment = %v", debts)
	}

	if _, err := w.svc.SettleUp(ctx, gid, bob, alice, 0); !errors.Is(err, ErrNothingToSettle) {
		t.Errorf("expected ErrNothingToSettle, got %v", err)
	}
	if _, err := w.svc.SettleUp(ctx, gid, bob, bob, 100); !errors.Is(err, ErrCannotSettleSelf) {
		t.Errorf("expected ErrCannotSettleSelf, got %v", err)
	}
	if _, err := w.svc.SettleUp(ctx, gid, bob, dave, 100); !errors.Is(err, expense.ErrParticipantNotInGroup) {
		t.Errorf("expected ErrParticipantNotInGroup, got %v", err)
	}

	// partial payment with an explicit amount
	if _, err := w.svc.SettleUp(ctx, gid, carol, alice, 1000); err != nil {
		t.Fatal(err)
	}
	b, _, err := w.svc.Balances(ctx, gid)
	if err != nil {
		t.Fatal(err)
	}
	if b[carol] != -2000 || b[alice] != 2000 || b[bob] != 0 {
		t.Errorf("balances after partial payment = %v", b)
	}
}

func TestService_Summary(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	gid := w.group(t, "Flat", alice, bob)
	w.spend(t, gid, alice, 1000, alice, bob)
	w.spend(t, gid, bob, 300, alice, bob)
	if _, err := w.svc.SettleUp(ctx, gid, bob, alice, 0); err != nil {
		t.Fatal(err)
	}

	sum, err := w.svc.Summary(ctx, gid)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Group.Name != "Flat" || sum.MemberCount != 2 || sum.EntryCount != 3 {
		t.Errorf("unexpected summary header: %+v", sum)
	}
	if sum.TotalExpenses != 1300 {
		t.Errorf("TotalExpenses = %d, want 1300 (payments excluded)", sum.TotalExpenses)
	}
	if len(sum.Debts) != 0 || sum.Balances[alice] != 0 || sum.Balances[bob] != 0 {
		t.Errorf("group should be settled: %+v", sum)
	}

	if _, err := w.svc.Summary(ctx, 98765); !errors.Is(err, group.ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestService_Overview(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	trip := w.group(t, "Trip", alice, bob, carol)
	flat := w.group(t, "Flat", bob, alice)
	w.group(t, "Other", carol, dave)

	w.spend(t, trip, alice, 9000, alice, bob, carol)
	w.spend(t, flat, bob, 500, alice, bob)

	positions, err := w.svc.Overview(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(positions) != 2 {
		t.Fatalf("alice is in %d groups, want 2", len(positions))
	}
	if positions[0].GroupID != trip || positions[0].Balance != 6000 || len(positions[0].Debts) != 2 {
		t.Errorf("trip position = %+v", positions[0])
	}
	if positions[1].GroupID != flat || positions[1].Balance != -250 {
		t.Errorf("flat position = %+v", positions[1])
	}
	if !reflect.DeepEqual(positions[1].Debts, []Instruction{{From: alice, To: bob, Amount: 250}}) {
		t.Errorf("flat debts = %v", positions[1].Debts)
	}

	none, err := w.svc.Overview(ctx, "nobody@example.com")
	if err != nil || len(none) != 0 {
		t.Errorf("overview for stranger = %v, %v", none, err)
	}
}

func TestHandler(t *testing.T) {
	w := newWorld(t)
	gid := w.group(t, "Trip", alice, bob, carol)
	w.spend(t, gid, alice, 9000, alice, bob, carol)
	h := middleware.MemberIdentity(NewHandler(w.svc, w.groups).Routes())
	base := "/group/" + strconv.FormatInt(gid, 10)

	do := func(method, path, actor string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set(middleware.MemberHeader, actor)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, base+"/balances", bob, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balances: %d", rec.Code)
	}
	var balances struct {
		Data []BalanceResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&balances); err != nil {
		t.Fatal(err)
	}
	if len(balances.Data) != 3 || balances.Data[0].Email != alice || balances.Data[0].Balance != "60.00" {
		t.Errorf("balances = %+v", balances.Data)
	}

	if rec := do(http.MethodGet, base+"/debts", dave, nil); rec.Code != http.StatusForbidden {
		t.Errorf("outsider debts: %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/group/31337/summary", alice, nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing group: %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/group/abc/summary", alice, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad group id: %d", rec.Code)
	}
	if rec := do(http.MethodGet, base+"/summary", carol, nil); rec.Code != http.StatusOK {
		t.Errorf("summary: %d", rec.Code)
	}

	if rec := do(http.MethodPost, base+"/settle-up", bob, SettleUpRequest{ToEmail: bob}); rec.Code != http.StatusBadRequest {
		t.Errorf("self settle: %d", rec.Code)
	}
	if rec := do(http.MethodPost, base+"/settle-up", bob, SettleUpRequest{ToEmail: alice, Amount: "-5"}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative settle: %d", rec.Code)
	}
	if rec := do(http.MethodPost, base+"/settle-up", bob, SettleUpRequest{ToEmail: "Alice@Example.com"}); rec.Code != http.StatusCreated {
		t.Errorf("settle: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(http.MethodPost, base+"/settle-up", bob, SettleUpRequest{ToEmail: alice}); rec.Code != http.StatusConflict {
		t.Errorf("settle twice: %d", rec.Code)
	}

	rec = do(http.MethodGet, "/overview", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview: %d", rec.Code)
	}
	var overview struct {
		Data []PositionResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&overview); err != nil {
		t.Fatal(err)
	}
	if len(overview.Data) != 1 || overview.Data[0].BalanceCents != 3000 {
		t.Errorf("overview = %+v", overview.Data)
	}
}
