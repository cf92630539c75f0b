package gateway

import (
	"io"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/voicedesk/voicedesk/internal/store"
)

const MaxBodyBytes = 1 << 20

// Handler binds the tool registry to HTTP: one fixed route per tool plus a
// single dispatch-by-name endpoint.
type Handler struct {
	tools  *Tools
	store  *store.Store
	config *aqm.Config
	logger aqm.Logger
	tlm    *telemetry.HTTP
}

func NewHandler(tools *Tools, st *store.Store, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		tools:  tools,
		store:  st,
		config: config,
		logger: logger,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/call", h.Call)

	r.Route("/tools", func(r chi.Router) {
		for _, name := range h.tools.Names() {
			r.Post("/"+name, h.invokeTool(name))
		}
	})

	r.Get("/status", h.Status)
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

// invokeTool serves the fixed per-tool routes. The body may carry arguments
// flat or wrapped under "args"; both land in the same place.
func (h *Handler) invokeTool(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, r, finish := h.tlm.Start(w, r, "Handler."+name)
		defer finish()
		log := h.log(r)
		ctx := r.Context()

		body, ok := h.readBody(w, r)
		if !ok {
			return
		}

		args, err := ParseArgs(body)
		if err != nil {
			log.Debug("invalid tool payload", "tool", name, "error", err)
			WriteEnvelope(w, nil, &CallError{
				Code:    http.StatusBadRequest,
				Message: "invalid JSON payload",
			})
			return
		}

		data, cerr := h.tools.Dispatch(ctx, name, args)
		if cerr != nil {
			log.Debug("tool call failed", "tool", name, "code", cerr.Code, "message", cerr.Message)
		}
		WriteEnvelope(w, data, cerr)
	}
}

// Call is the dispatch endpoint: {"function": <name>, "args": {...}}.
func (h *Handler) Call(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Call")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	name, args, err := DecodeCall(body)
	if err != nil {
		log.Debug("invalid call payload", "error", err)
		WriteEnvelope(w, nil, &CallError{
			Code:    http.StatusBadRequest,
			Message: "invalid JSON payload",
		})
		return
	}
	if name == "" {
		WriteEnvelope(w, nil, &CallError{
			Code:    http.StatusBadRequest,
			Message: "missing function name",
		})
		return
	}

	data, cerr := h.tools.Dispatch(ctx, name, args)
	if cerr != nil {
		log.Debug("tool call failed", "tool", name, "code", cerr.Code, "message", cerr.Message)
	}
	WriteEnvelope(w, data, cerr)
}

// Status is the liveness probe, outside the envelope contract.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Status")
	defer finish()

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"orders": h.store.Count(),
	}, nil)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteEnvelope(w, nil, &CallError{
			Code:    http.StatusBadRequest,
			Message: "could not read request body",
		})
		return nil, false
	}
	return body, true
}
