package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rewardengine/internal/adapter/repo/memory"
	"rewardengine/internal/domain"
	"rewardengine/internal/governance"
	"rewardengine/internal/http/handlers"
	"rewardengine/internal/http/httpapi"
	"rewardengine/internal/infra"
	"rewardengine/internal/loyalty"
	"rewardengine/internal/reward"
	"rewardengine/internal/vesting"
)

type testServer struct {
	router   http.Handler
	store    *memory.Store
	governor *governance.Governor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	store.SeedPlan(domain.Plan{ID: "plan-basic", Name: "Basic", MonthlyPointsCap: 1000})
	store.SeedMerchant(domain.Merchant{ID: "merchant-1", Name: "Warung Kopi", RewardBps: 500, PlanID: "plan-basic"})

	ledger := vesting.NewLedger(store)
	engine := loyalty.NewEngine(store, ledger, reward.StaticTierResolver{"holder-vip": 20_000}, loyalty.Config{
		DefaultWindowDays: 30,
		DefaultRewardBps:  500,
	})
	engine.SetNowFunc(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	governor := governance.NewGovernor(store)

	cfg := &infra.Config{DefaultLocale: "en", RateLimitPerMin: 1000}
	logger := zerolog.Nop()
	app := handlers.NewApp(logger, engine, governor)
	return &testServer{
		router:   httpapi.NewRouter(cfg, logger, app),
		store:    store,
		governor: governor,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func processBody(txID string, amount int64) map[string]any {
	return map[string]any{
		"merchant_id":    "merchant-1",
		"holder_id":      "holder-vip",
		"transaction_id": txID,
		"amount":         amount,
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodGet, "/v1/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v, want status ok", body)
	}
}

func TestProcessTransactionEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodPost, "/v1/transactions", processBody("tx-1", 20_000), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %v", rec.Code, body)
	}
	if body["reward_amount"] != float64(200) {
		t.Fatalf("reward_amount = %v, want 200", body["reward_amount"])
	}
	if body["multiplier_bps"] != float64(20_000) {
		t.Fatalf("multiplier_bps = %v, want 20000", body["multiplier_bps"])
	}
	if body["cap_remaining"] != float64(800) {
		t.Fatalf("cap_remaining = %v, want 800", body["cap_remaining"])
	}
	grant, ok := body["grant"].(map[string]any)
	if !ok {
		t.Fatalf("grant missing from response: %v", body)
	}
	if grant["status"] != "vesting" {
		t.Fatalf("grant status = %v, want vesting", grant["status"])
	}
}

func TestProcessTransactionRejectsBadPayload(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/transactions", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed payload status = %d, want 400", rec.Code)
	}

	rec2, body := s.do(t, http.MethodPost, "/v1/transactions", map[string]any{"merchant_id": "merchant-1"}, nil)
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("incomplete payload status = %d, want 400: %v", rec2.Code, body)
	}
}

func TestProcessTransactionUnknownMerchant(t *testing.T) {
	s := newTestServer(t)
	body := processBody("tx-1", 100)
	body["merchant_id"] = "ghost"
	rec, _ := s.do(t, http.MethodPost, "/v1/transactions", body, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProcessTransactionDuplicate(t *testing.T) {
	s := newTestServer(t)
	if rec, _ := s.do(t, http.MethodPost, "/v1/transactions", processBody("tx-1", 1_000), nil); rec.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want 201", rec.Code)
	}
	rec, body := s.do(t, http.MethodPost, "/v1/transactions", processBody("tx-1", 1_000), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
	if body["error"] != "duplicate_transaction" {
		t.Fatalf("error slug = %v, want duplicate_transaction", body["error"])
	}
	if id, ok := body["grant_id"].(string); !ok || id == "" {
		t.Fatalf("grant_id = %v, want the existing grant's id", body["grant_id"])
	}
}

func TestCapExceededIsLocalized(t *testing.T) {
	s := newTestServer(t)
	// holder-vip at 2.0x: 50000 * 5% * 2 = 5000, far over the 1000 cap.
	rec, body := s.do(t, http.MethodPost, "/v1/transactions", processBody("tx-1", 50_000), map[string]string{"X-Locale": "id"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %v", rec.Code, body)
	}
	if body["error"] != "cap_exceeded" {
		t.Fatalf("error slug = %v, want cap_exceeded", body["error"])
	}
	if body["message"] != "batas poin bulanan telah tercapai" {
		t.Fatalf("message = %v, want the Indonesian cap message", body["message"])
	}

	rec, body = s.do(t, http.MethodPost, "/v1/transactions", processBody("tx-2", 50_000), nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if body["message"] != "monthly points limit reached" {
		t.Fatalf("message = %v, want the English cap message", body["message"])
	}
}

func TestCancelTransactionEndpoint(t *testing.T) {
	s := newTestServer(t)
	if rec, _ := s.do(t, http.MethodPost, "/v1/transactions", processBody("tx-1", 1_000), nil); rec.Code != http.StatusCreated {
		t.Fatalf("setup status = %d, want 201", rec.Code)
	}

	rec, body := s.do(t, http.MethodPost, "/v1/transactions/tx-1/cancel", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200: %v", rec.Code, body)
	}
	if body["status"] != "cancelled" {
		t.Fatalf("status = %v, want cancelled", body["status"])
	}

	rec, body = s.do(t, http.MethodPost, "/v1/transactions/tx-1/cancel", nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second cancel status = %d, want 409", rec.Code)
	}
	if body["error"] != "already_cancelled" {
		t.Fatalf("error slug = %v, want already_cancelled", body["error"])
	}

	rec, _ = s.do(t, http.MethodPost, "/v1/transactions/tx-missing/cancel", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown transaction status = %d, want 404", rec.Code)
	}
}

func TestVestingSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	if rec, _ := s.do(t, http.MethodPost, "/v1/transactions", processBody("tx-1", 20_000), nil); rec.Code != http.StatusCreated {
		t.Fatalf("setup status = %d, want 201", rec.Code)
	}

	rec, body := s.do(t, http.MethodGet, "/v1/holders/holder-vip/vesting", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	bucket, ok := body["vesting"].(map[string]any)
	if !ok {
		t.Fatalf("vesting bucket missing: %v", body)
	}
	if bucket["count"] != float64(1) || bucket["total"] != float64(200) {
		t.Fatalf("vesting bucket = %v, want 1 grant totalling 200", bucket)
	}
}

func TestMerchantPointsEndpoint(t *testing.T) {
	s := newTestServer(t)
	if rec, _ := s.do(t, http.MethodPost, "/v1/transactions", processBody("tx-1", 20_000), nil); rec.Code != http.StatusCreated {
		t.Fatalf("setup status = %d, want 201", rec.Code)
	}

	rec, body := s.do(t, http.MethodGet, "/v1/merchants/merchant-1/points", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["points_distributed"] != float64(200) {
		t.Fatalf("points_distributed = %v, want 200", body["points_distributed"])
	}
	if body["points_cap"] != float64(1000) {
		t.Fatalf("points_cap = %v, want 1000", body["points_cap"])
	}
	if body["usage_percent"] != float64(20) {
		t.Fatalf("usage_percent = %v, want 20", body["usage_percent"])
	}
}

func TestGovernanceFlowEndpoints(t *testing.T) {
	s := newTestServer(t)
	propose := map[string]any{
		"change_type":    "merchant_limits",
		"parameter_name": "monthly_points_cap",
		"old_value":      1000,
		"new_value":      2000,
		"reason":         "seasonal adjustment",
		"proposed_by":    "admin-1",
	}

	rec, body := s.do(t, http.MethodPost, "/v1/governance/changes", propose, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("propose status = %d, want 201: %v", rec.Code, body)
	}
	if body["dao"] != "Business & Merchant DAO" {
		t.Fatalf("dao = %v, want Business & Merchant DAO", body["dao"])
	}
	if body["voting_type"] != "simple_majority" {
		t.Fatalf("voting_type = %v, want simple_majority", body["voting_type"])
	}
	change := body["change"].(map[string]any)
	changeID := change["id"].(string)
	proposalID := body["proposal_id"].(string)

	rec, body = s.do(t, http.MethodGet, "/v1/governance/changes", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pending status = %d, want 200", rec.Code)
	}
	if items := body["items"].([]any); len(items) != 1 {
		t.Fatalf("pending items = %v, want one", items)
	}

	path := fmt.Sprintf("/v1/governance/changes/%s/approval", changeID)
	rec, body = s.do(t, http.MethodGet, path, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approval status = %d, want 200", rec.Code)
	}
	if body["approved"] != false {
		t.Fatalf("approved = %v, want false before the vote", body["approved"])
	}

	execPath := fmt.Sprintf("/v1/governance/changes/%s/execute", changeID)
	rec, body = s.do(t, http.MethodPost, execPath, nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("premature execute status = %d, want 409: %v", rec.Code, body)
	}
	if body["error"] != "not_approved" {
		t.Fatalf("error slug = %v, want not_approved", body["error"])
	}

	if !s.store.SetProposalStatus(proposalID, domain.ProposalStatusPassed) {
		t.Fatal("SetProposalStatus failed")
	}

	rec, body = s.do(t, http.MethodGet, path, nil, nil)
	if rec.Code != http.StatusOK || body["approved"] != true {
		t.Fatalf("approval after vote = %d %v, want 200 approved", rec.Code, body)
	}

	rec, body = s.do(t, http.MethodPost, execPath, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("execute status = %d, want 200: %v", rec.Code, body)
	}
	if body["status"] != "implemented" {
		t.Fatalf("change status = %v, want implemented", body["status"])
	}

	rec, body = s.do(t, http.MethodPost, execPath, nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat execute status = %d, want 409", rec.Code)
	}
	if body["error"] != "already_implemented" {
		t.Fatalf("error slug = %v, want already_implemented", body["error"])
	}
}
