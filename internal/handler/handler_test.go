package handler

import (
	"net/http"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"cashflow-engine/internal/engine"
	"cashflow-engine/internal/model"
	"cashflow-engine/internal/store/sqlite"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(engine.New(st, 1000, 0))
}

func doRequest(t *testing.T, h *Handler, method, path string, body any) *fasthttp.RequestCtx {
	t.Helper()
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&fasthttp.Request{}, nil, nil)
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		ctx.Request.SetBody(payload)
	}
	h.Route(ctx)
	return ctx
}

func decodeError(t *testing.T, ctx *fasthttp.RequestCtx) model.ErrorResponse {
	t.Helper()
	var errResp model.ErrorResponse
	if err := json.Unmarshal(ctx.Response.Body(), &errResp); err != nil {
		t.Fatalf("decode error response: %v (%s)", err, ctx.Response.Body())
	}
	return errResp
}

func testScenario() model.CashFlowScenario {
	return model.CashFlowScenario{
		ID:                    "scn-1",
		ClientID:              "cli-1",
		ScenarioType:          model.ScenarioBase,
		ProjectionYears:       30,
		ClientAge:             60,
		RetirementAge:         65,
		LifeExpectancy:        90,
		CurrentSavings:        50000,
		PensionValue:          200000,
		InvestmentValue:       100000,
		CurrentIncome:         40000,
		CurrentExpenses:       35000,
		StatePensionAge:       67,
		StatePensionAmount:    11500,
		InflationRate:         0.02,
		RealEquityReturn:      0.05,
		RealBondReturn:        0.02,
		RealCashReturn:        0.005,
		EquityAllocation:      0.5,
		BondAllocation:        0.25,
		CashAllocation:        0.15,
		AlternativeAllocation: 0.1,
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)
	ctx := doRequest(t, h, fasthttp.MethodGet, "/healthz", nil)
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestHandler(t)
	ctx := doRequest(t, h, fasthttp.MethodGet, "/v1/nope", nil)
	if ctx.Response.StatusCode() != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", ctx.Response.StatusCode())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	ctx := doRequest(t, h, fasthttp.MethodGet, "/v1/simulations", nil)
	if ctx.Response.StatusCode() != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", ctx.Response.StatusCode())
	}
}

func TestProjectionEndpoint(t *testing.T) {
	h := newTestHandler(t)
	ctx := doRequest(t, h, fasthttp.MethodPost, "/v1/projections", model.ProjectionRequest{Scenario: testScenario()})
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}

	var resp model.ProjectionResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Metadata.RunOutcome != model.OutcomeSuccess {
		t.Fatalf("expected SUCCESS, got %s", resp.Metadata.RunOutcome)
	}
	if len(resp.Summary.Projections) != 30 {
		t.Fatalf("expected 30 rows, got %d", len(resp.Summary.Projections))
	}
}

func TestProjectionEndpointRejectsInvalidScenario(t *testing.T) {
	h := newTestHandler(t)
	scenario := testScenario()
	scenario.EquityAllocation = 0.9 // sum now exceeds 1

	ctx := doRequest(t, h, fasthttp.MethodPost, "/v1/projections", model.ProjectionRequest{Scenario: scenario})
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.Response.StatusCode())
	}
	errResp := decodeError(t, ctx)
	if errResp.Code != "ALLOCATION_SUM_INVALID" {
		t.Fatalf("expected ALLOCATION_SUM_INVALID, got %s", errResp.Code)
	}
}

func TestSimulationEndpoint(t *testing.T) {
	h := newTestHandler(t)
	req := model.SimulationRequest{Scenario: testScenario(), Trials: 300, Seed: 9, Persist: true}
	ctx := doRequest(t, h, fasthttp.MethodPost, "/v1/simulations", req)
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}

	var resp model.SimulationResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Trials != 300 {
		t.Fatalf("expected 300 trials, got %d", resp.Trials)
	}
	if len(resp.Bands) != 30 {
		t.Fatalf("expected 30 bands, got %d", len(resp.Bands))
	}
}

func TestSimulationEndpointRejectsBadTrialCount(t *testing.T) {
	h := newTestHandler(t)
	req := model.SimulationRequest{Scenario: testScenario(), Trials: 50}
	ctx := doRequest(t, h, fasthttp.MethodPost, "/v1/simulations", req)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.Response.StatusCode())
	}
	errResp := decodeError(t, ctx)
	if errResp.Code != "TRIAL_COUNT_OUT_OF_RANGE" {
		t.Fatalf("expected TRIAL_COUNT_OUT_OF_RANGE, got %s", errResp.Code)
	}
}

func TestCleanupEndpoint(t *testing.T) {
	h := newTestHandler(t)
	ctx := doRequest(t, h, fasthttp.MethodPost, "/v1/maintenance/cleanup", model.CleanupRequest{OlderThanDays: 90})
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}

	var resp model.CleanupResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DeletedCount != 0 {
		t.Fatalf("expected 0 deleted on empty store, got %d", resp.DeletedCount)
	}
	if resp.OlderThanDays != 90 {
		t.Fatalf("expected threshold echoed back, got %d", resp.OlderThanDays)
	}
	if resp.Timestamp == "" {
		t.Fatal("expected a timestamp")
	}
}

func TestCleanupEndpointRejectsOutOfRange(t *testing.T) {
	h := newTestHandler(t)
	for _, days := range []int{0, 366} {
		ctx := doRequest(t, h, fasthttp.MethodPost, "/v1/maintenance/cleanup", model.CleanupRequest{OlderThanDays: days})
		if ctx.Response.StatusCode() != http.StatusBadRequest {
			t.Fatalf("olderThanDays=%d: expected 400, got %d", days, ctx.Response.StatusCode())
		}
		errResp := decodeError(t, ctx)
		if errResp.Code != "RETENTION_RANGE" {
			t.Fatalf("expected RETENTION_RANGE, got %s", errResp.Code)
		}
	}
}

func TestInvalidBody(t *testing.T) {
	h := newTestHandler(t)
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/v1/projections")
	ctx.Request.SetBodyString("{not json")
	h.Route(ctx)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.Response.StatusCode())
	}
}
