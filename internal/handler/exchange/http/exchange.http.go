package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/krobus00/derivex-service/internal/config"
	"github.com/krobus00/derivex-service/internal/entity"
	"github.com/krobus00/derivex-service/internal/service/exchange"
	"github.com/krobus00/derivex-service/internal/service/journal"
	"github.com/krobus00/derivex-service/internal/service/tokenid"
)

type CreateExchangeRequest struct {
	Token string `json:"token"`
}

type AssignTokenIDRequest struct {
	Token string `json:"token"`
}

type ExchangeResponse struct {
	Token   string `json:"token"`
	Factory string `json:"factory"`
	Server  string `json:"server"`
	Display string `json:"display"`
}

type TokenResponse struct {
	ID    *uint64 `json:"id,omitempty"`
	Token string  `json:"token"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Token string `json:"token,omitempty"`
}

type Handler struct {
	exchangeService *exchange.ExchangeService
	tokenIDService  *tokenid.TokenIDService
	journalService  *journal.JournalService
	hub             *exchange.EventHub
	guard           *apiKeyGuard
}

func NewExchangeHTTPHandler(exchangeService *exchange.ExchangeService, tokenIDService *tokenid.TokenIDService, journalService *journal.JournalService, hub *exchange.EventHub, apiKeys []config.APIKeyConfig) *Handler {
	return &Handler{
		exchangeService: exchangeService,
		tokenIDService:  tokenIDService,
		journalService:  journalService,
		hub:             hub,
		guard:           newAPIKeyGuard(apiKeys),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/exchange/v1/exchanges", h.guard.middleware(h.Exchanges))
	mux.HandleFunc("/exchange/v1/tokens", h.guard.middleware(h.TokenByExchange))
	mux.HandleFunc("/exchange/v1/tokens/{id}", h.guard.middleware(h.TokenByID))
	mux.HandleFunc("/exchange/v1/events", h.guard.middleware(h.EventHistory))
	mux.HandleFunc("/exchange/v1/events/ws", h.guard.middleware(h.StreamEvents))
}

func (h *Handler) Exchanges(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createExchange(w, r)
	case http.MethodGet:
		if token := r.URL.Query().Get("token"); token != "" {
			h.getExchange(w, token)
			return
		}
		h.listExchanges(w)
	case http.MethodDelete:
		h.removeExchange(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	}
}

func (h *Handler) createExchange(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req CreateExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json body"})
		return
	}

	created, err := h.exchangeService.CreateExchange(r.Context(), req.Token)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapExchangeToResponse(created))
}

func (h *Handler) getExchange(w http.ResponseWriter, token string) {
	found, ok := h.exchangeService.GetExchangeByToken(token)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "exchange not found", Token: token})
		return
	}

	writeJSON(w, http.StatusOK, mapExchangeToResponse(found))
}

func (h *Handler) listExchanges(w http.ResponseWriter) {
	exchanges := h.exchangeService.ListExchanges()
	resp := make([]ExchangeResponse, 0, len(exchanges))
	for _, e := range exchanges {
		resp = append(resp, mapExchangeToResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) removeExchange(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.exchangeService.RemoveExchange(r.Context(), token); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TokenByExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	query := r.URL.Query()
	factory := query.Get("factory")
	if factory == "" {
		factory = h.exchangeService.FactoryLabel()
	}
	server := query.Get("server")
	if server == "" {
		server = h.exchangeService.Server()
	}

	target := entity.NewExchange(query.Get("token"), factory, server)
	token, ok := h.exchangeService.GetTokenByExchange(target)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "token not found", Token: target.Token()})
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *Handler) TokenByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	// token_ids.id is a signed BIGINT
	if err != nil || id > math.MaxInt64 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid token id"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		token, ok, err := h.tokenIDService.Lookup(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "token id not found"})
			return
		}
		writeJSON(w, http.StatusOK, TokenResponse{ID: &id, Token: token})
	case http.MethodPut:
		defer r.Body.Close()

		var req AssignTokenIDRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json body"})
			return
		}

		err := h.tokenIDService.Assign(r.Context(), id, req.Token)
		switch {
		case errors.Is(err, tokenid.ErrEmptyToken):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		default:
			writeJSON(w, http.StatusOK, TokenResponse{ID: &id, Token: req.Token})
		}
	default:
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	}
}

func (h *Handler) EventHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}
	if h.journalService == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "event history is disabled"})
		return
	}

	query := r.URL.Query()
	var limit uint64
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := h.journalService.History(r.Context(), query.Get("token"), limit)
	switch {
	case errors.Is(err, journal.ErrHistoryToken):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if events == nil {
		events = []entity.ExchangeEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func writeRegistryError(w http.ResponseWriter, err error) {
	var registryErr *exchange.RegistryError
	if !errors.As(err, &registryErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := ErrorResponse{
		Error: registryErr.Error(),
		Kind:  string(registryErr.Kind),
		Token: registryErr.Token,
	}

	switch {
	case errors.Is(err, exchange.ErrDuplicateToken):
		writeJSON(w, http.StatusConflict, resp)
	default:
		writeJSON(w, http.StatusBadRequest, resp)
	}
}

func mapExchangeToResponse(e entity.Exchange) ExchangeResponse {
	return ExchangeResponse{
		Token:   e.Token(),
		Factory: e.Factory(),
		Server:  e.Server(),
		Display: e.String(),
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
