package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settlewise/internal/calculator"
	"github.com/mmynk/settlewise/internal/lock"
	"github.com/mmynk/settlewise/internal/middleware"
	"github.com/mmynk/settlewise/internal/models"
	"github.com/mmynk/settlewise/internal/service"
	"github.com/mmynk/settlewise/internal/storage/sqlite"
)

// setupTestServer serves a real engine over a temp SQLite database.
func setupTestServer(t *testing.T) (*Client, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := service.NewEngine(store, lock.NewLocal())
	mux := http.NewServeMux()
	mux.Handle(NewSettlementServiceHandler(
		NewSettlementServer(engine),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewClient(server.Client(), server.URL), store
}

// seedDinner creates a network where A paid 120 split three ways.
func seedDinner(t *testing.T, store *sqlite.SQLiteStore) string {
	t.Helper()
	ctx := context.Background()

	network := &models.Network{Name: "Dinner", Currency: "EUR"}
	require.NoError(t, store.CreateNetwork(ctx, network))
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, store.AddMember(ctx, &models.Member{ID: id, NetworkID: network.ID, Name: id}))
	}
	require.NoError(t, store.CreateBill(ctx, &models.Bill{
		NetworkID: network.ID,
		Total:     120,
		Currency:  "EUR",
		CreatorID: "A",
		Splits: []models.BillSplit{
			{MemberID: "A", Amount: 40},
			{MemberID: "B", Amount: 40},
			{MemberID: "C", Amount: 40},
		},
	}))
	return network.ID
}

func TestComputeBalances(t *testing.T) {
	client, store := setupTestServer(t)
	networkID := seedDinner(t, store)

	resp, err := client.ComputeBalances(context.Background(), &ComputeBalancesRequest{NetworkID: networkID})
	require.NoError(t, err)

	assert.Equal(t, "EUR", resp.Currency)
	require.Len(t, resp.Balances, 3)
	want := map[string]string{"A": "80", "B": "-40", "C": "-40"}
	for i, id := range []string{"A", "B", "C"} {
		assert.Equal(t, id, resp.Balances[i].MemberID)
		assert.True(t, resp.Balances[i].Amount.Equal(decimal.RequireFromString(want[id])), "balance of %s", id)
	}
}

func TestPlanAndCommit(t *testing.T) {
	client, store := setupTestServer(t)
	ctx := context.Background()
	networkID := seedDinner(t, store)

	planned, err := client.PlanSettlements(ctx, &PlanSettlementsRequest{NetworkID: networkID})
	require.NoError(t, err)
	assert.False(t, planned.AlreadySettled)
	require.Len(t, planned.Plan.Transfers, 2)
	assert.Equal(t, "B", planned.Plan.Transfers[0].From)
	assert.Equal(t, "C", planned.Plan.Transfers[1].From)

	committed, err := client.CommitPlan(ctx, &CommitPlanRequest{NetworkID: networkID, Plan: planned.Plan})
	require.NoError(t, err)
	require.Len(t, committed.Settlements, 2)
	for _, s := range committed.Settlements {
		assert.Equal(t, "A", s.ToMemberID)
		assert.True(t, s.Amount.Equal(decimal.NewFromInt(40)))
		assert.Equal(t, "pending", s.Status)
	}

	// The same plan cannot be applied twice
	_, err = client.CommitPlan(ctx, &CommitPlanRequest{NetworkID: networkID, Plan: planned.Plan})
	assert.Equal(t, connect.CodeAborted, connect.CodeOf(err))

	again, err := client.PlanSettlements(ctx, &PlanSettlementsRequest{NetworkID: networkID})
	require.NoError(t, err)
	assert.True(t, again.AlreadySettled)
	assert.Empty(t, again.Plan.Transfers)

	listed, err := client.ListSettlements(ctx, &ListSettlementsRequest{NetworkID: networkID})
	require.NoError(t, err)
	assert.Len(t, listed.Settlements, 2)

	require.NoError(t, client.CompleteSettlement(ctx, &CompleteSettlementRequest{SettlementID: committed.Settlements[0].ID}))
	got, err := store.GetSettlement(ctx, committed.Settlements[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementCompleted, got.Status)
}

func TestErrorCodes(t *testing.T) {
	client, store := setupTestServer(t)
	ctx := context.Background()
	networkID := seedDinner(t, store)

	// Z belongs to another network
	other := &models.Network{Name: "Other", Currency: "EUR"}
	require.NoError(t, store.CreateNetwork(ctx, other))
	require.NoError(t, store.AddMember(ctx, &models.Member{ID: "Z", NetworkID: other.ID, Name: "Z"}))
	require.NoError(t, store.CreateBill(ctx, &models.Bill{
		NetworkID: networkID,
		Total:     10,
		Currency:  "EUR",
		CreatorID: "B",
		Splits:    []models.BillSplit{{MemberID: "Z", Amount: 10}},
	}))

	tests := []struct {
		name string
		call func() error
		code connect.Code
	}{
		{
			name: "missing network id",
			call: func() error {
				_, err := client.ComputeBalances(ctx, &ComputeBalancesRequest{})
				return err
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown network",
			call: func() error {
				_, err := client.PlanSettlements(ctx, &PlanSettlementsRequest{NetworkID: "missing"})
				return err
			},
			code: connect.CodeNotFound,
		},
		{
			name: "unknown member in bill",
			call: func() error {
				_, err := client.PlanSettlements(ctx, &PlanSettlementsRequest{NetworkID: networkID})
				return err
			},
			code: connect.CodeFailedPrecondition,
		},
		{
			name: "non-positive transfer",
			call: func() error {
				_, err := client.CommitPlan(ctx, &CommitPlanRequest{
					NetworkID: networkID,
					Plan: calculator.Plan{Currency: "EUR", Transfers: []calculator.Transfer{
						{From: "B", To: "A", Amount: decimal.Zero},
					}},
				})
				return err
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown settlement",
			call: func() error {
				return client.CompleteSettlement(ctx, &CompleteSettlementRequest{SettlementID: "missing"})
			},
			code: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, connect.CodeOf(err))
		})
	}
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		code connect.Code
	}{
		{fmt.Errorf("bill b1: %w", calculator.ErrSplitMismatch), connect.CodeFailedPrecondition},
		{calculator.ErrCurrencyConflict, connect.CodeFailedPrecondition},
		{calculator.ErrUnbalancedLedger, connect.CodeInternal},
		{service.ErrStalePlan, connect.CodeAborted},
		{&service.CommitError{NetworkID: "n1", Err: context.DeadlineExceeded}, connect.CodeUnavailable},
		{errors.New("unexpected"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, connect.CodeOf(toConnectError(tt.err)))
		})
	}
}
