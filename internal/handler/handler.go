// Package handler exposes the engine over HTTP.
package handler

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"cashflow-engine/internal/engine"
	"cashflow-engine/internal/model"
	"cashflow-engine/internal/montecarlo"
	"cashflow-engine/internal/store"
)

type Handler struct {
	engine *engine.Engine
}

func New(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Route dispatches one request. fasthttp's RequestCtx doubles as the
// context.Context passed down to the engine.
func (h *Handler) Route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch path {
	case "/healthz":
		if method != fasthttp.MethodGet {
			h.writeError(ctx, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use GET")
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"ok"}`)
	case "/v1/projections":
		if method != fasthttp.MethodPost {
			h.writeError(ctx, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use POST")
			return
		}
		h.handleProjection(ctx)
	case "/v1/simulations":
		if method != fasthttp.MethodPost {
			h.writeError(ctx, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use POST")
			return
		}
		h.handleSimulation(ctx)
	case "/v1/maintenance/cleanup":
		if method != fasthttp.MethodPost {
			h.writeError(ctx, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use POST")
			return
		}
		h.handleCleanup(ctx)
	default:
		h.writeError(ctx, http.StatusNotFound, "NOT_FOUND", "Unknown route: "+path)
	}
}

func (h *Handler) handleProjection(ctx *fasthttp.RequestCtx) {
	var req model.ProjectionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.engine.RunProjection(ctx, &req)
	if err != nil {
		h.writeEngineError(ctx, err)
		return
	}
	h.writeJSON(ctx, http.StatusOK, resp)
}

func (h *Handler) handleSimulation(ctx *fasthttp.RequestCtx) {
	var req model.SimulationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.engine.RunSimulation(ctx, &req)
	if err != nil {
		h.writeEngineError(ctx, err)
		return
	}
	h.writeJSON(ctx, http.StatusOK, resp)
}

func (h *Handler) handleCleanup(ctx *fasthttp.RequestCtx) {
	var req model.CleanupRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.engine.Cleanup(ctx, req.OlderThanDays)
	if err != nil {
		h.writeEngineError(ctx, err)
		return
	}
	h.writeJSON(ctx, http.StatusOK, resp)
}

// writeEngineError maps the engine's error taxonomy onto HTTP
// statuses with stable codes. Anything unclassified is a store or
// internal failure and surfaces as a 500.
func (h *Handler) writeEngineError(ctx *fasthttp.RequestCtx, err error) {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		code := "INVALID_SCENARIO"
		if len(vErr.Messages) > 0 {
			code = vErr.Messages[0].Code
		}
		h.writeError(ctx, http.StatusBadRequest, code, vErr.Error())
		return
	}

	var cfgErr *montecarlo.ConfigError
	if errors.As(err, &cfgErr) {
		h.writeError(ctx, http.StatusBadRequest, cfgErr.Code, cfgErr.Message)
		return
	}

	var retErr *store.RetentionRangeError
	if errors.As(err, &retErr) {
		h.writeError(ctx, http.StatusBadRequest, "RETENTION_RANGE", retErr.Error())
		return
	}

	h.writeError(ctx, http.StatusInternalServerError, "STORE_FAILURE", err.Error())
}

func (h *Handler) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	payload, err := json.Marshal(body)
	if err != nil {
		ctx.SetStatusCode(http.StatusInternalServerError)
		ctx.SetBodyString(`{"status":500,"code":"ENCODING_FAILURE","message":"failed to encode response"}`)
		return
	}
	ctx.SetBody(payload)
}

func (h *Handler) writeError(ctx *fasthttp.RequestCtx, status int, code, message string) {
	h.writeJSON(ctx, status, model.ErrorResponse{
		Status:  status,
		Code:    code,
		Message: message,
	})
}
