// Package api serves the ingestion engine over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/export"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/id"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/ingest"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/logger"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store"
)

// Request headers.
const (
	HeaderTenantID    = "X-Tenant-ID"
	HeaderImportID    = "X-Import-ID"
	HeaderBankAccount = "X-Bank-Account-ID"
)

// Handler serves the import endpoints.
type Handler struct {
	svc           *ingest.Service
	reader        store.Reader
	maxInputBytes int
}

// NewHandler creates a Handler. Bodies longer than maxInputBytes are cut
// one byte past the limit so the orchestrator quarantines them.
func NewHandler(svc *ingest.Service, reader store.Reader, maxInputBytes int) *Handler {
	if maxInputBytes <= 0 {
		maxInputBytes = ingest.DefaultMaxInputBytes
	}
	return &Handler{svc: svc, reader: reader, maxInputBytes: maxInputBytes}
}

// Router returns the chi router with logging and recovery middleware.
func (h *Handler) Router(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/imports", h.createImport)
		r.Get("/imports/{importID}", h.getImport)
		r.Get("/statements/{statementID}/lines", h.listLines)
	})
	return r
}

type errorResponse struct {
	Error    string `json:"error"`
	Format   string `json:"format,omitempty"`
	Hint     string `json:"hint,omitempty"`
	ImportID string `json:"importId,omitempty"`
}

type importResponse struct {
	ImportID string `json:"importId"`
	*ingest.Result
}

type importRecordResponse struct {
	ImportID         string    `json:"importId"`
	Status           string    `json:"status"`
	Format           string    `json:"format,omitempty"`
	BankAccountID    string    `json:"bankAccountId,omitempty"`
	StatementID      string    `json:"statementId,omitempty"`
	TransactionCount int       `json:"transactionCount"`
	Error            string    `json:"error,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createImport handles POST /v1/imports. The body is the raw statement file.
func (h *Handler) createImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	tenantID := r.Header.Get(HeaderTenantID)
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, HeaderTenantID+" header is required")
		return
	}
	importID := r.Header.Get(HeaderImportID)
	if importID == "" {
		importID = id.NewImportID()
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, int64(h.maxInputBytes)+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := h.svc.Accept(ctx, tenantID, importID); err != nil {
		if errors.Is(err, ingest.ErrImportFinished) {
			h.writeIngestError(w, importID, err)
			return
		}
		log.Error().Err(err).Str("import_id", importID).Msg("failed to accept import")
		writeError(w, http.StatusInternalServerError, "failed to record import")
		return
	}

	res, err := h.svc.Ingest(ctx, ingest.Request{
		RawContent:            string(body),
		ImportID:              importID,
		TenantID:              tenantID,
		ExplicitBankAccountID: r.Header.Get(HeaderBankAccount),
	})
	if err != nil {
		h.writeIngestError(w, importID, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{ImportID: importID, Result: res})
}

func (h *Handler) writeIngestError(w http.ResponseWriter, importID string, err error) {
	var qerr *ingest.QuarantineError
	switch {
	case errors.As(err, &qerr) && !errors.Is(err, ingest.ErrPersistence):
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ingest.ErrInputTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{
			Error:    qerr.Error(),
			Format:   qerr.Format.Label(),
			Hint:     qerr.Hint,
			ImportID: importID,
		})
	case errors.Is(err, ingest.ErrImportFinished):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:    err.Error(),
			Hint:     "the import already finished; resubmit under a new import ID",
			ImportID: importID,
		})
	case errors.Is(err, ingest.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), ImportID: importID})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:    "ingestion failed; retry with a new import ID",
			ImportID: importID,
		})
	}
}

// getImport handles GET /v1/imports/{importID}.
func (h *Handler) getImport(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get(HeaderTenantID)
	importID := chi.URLParam(r, "importID")

	rec, err := h.reader.GetImport(r.Context(), tenantID, importID)
	if err != nil {
		h.writeReadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importRecordResponse{
		ImportID:         rec.ImportID,
		Status:           string(rec.Status),
		Format:           string(rec.Format),
		BankAccountID:    rec.BankAccountID,
		StatementID:      rec.StatementID,
		TransactionCount: rec.TransactionCount,
		Error:            rec.ErrorMessage,
		UpdatedAt:        rec.UpdatedAt,
	})
}

// listLines handles GET /v1/statements/{statementID}/lines. Responds with CSV
// when the Accept header or ?format=csv asks for it.
func (h *Handler) listLines(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get(HeaderTenantID)
	statementID := chi.URLParam(r, "statementID")

	lines, err := h.reader.ListLines(r.Context(), tenantID, statementID)
	if err != nil {
		h.writeReadError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" || r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", statementID+".csv"))
		if err := export.WriteLines(w, lines); err != nil {
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Msg("failed to write CSV export")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statementId": statementID,
		"lines":       linesResponse(lines),
		"count":       len(lines),
	})
}

func (h *Handler) writeReadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	log := logger.FromContext(r.Context())
	log.Error().Err(err).Msg("failed to read from store")
	writeError(w, http.StatusInternalServerError, "failed to read from store")
}

type lineResponse struct {
	ID                  string `json:"id"`
	Seq                 int    `json:"seq"`
	LineDate            string `json:"lineDate"`
	ValueDate           string `json:"valueDate,omitempty"`
	Amount              string `json:"amount"`
	Direction           string `json:"direction"`
	Type                string `json:"type"`
	Description         string `json:"description,omitempty"`
	CounterpartyName    string `json:"counterpartyName,omitempty"`
	CounterpartyAccount string `json:"counterpartyAccount,omitempty"`
	CounterpartyBank    string `json:"counterpartyBank,omitempty"`
	PaymentReference    string `json:"paymentReference,omitempty"`
	PaymentPurpose      string `json:"paymentPurpose,omitempty"`
}

func linesResponse(lines []model.StatementLine) []lineResponse {
	out := make([]lineResponse, len(lines))
	for i, l := range lines {
		out[i] = lineResponse{
			ID:                  l.ID,
			Seq:                 l.Seq,
			LineDate:            l.LineDate.Format(time.DateOnly),
			Amount:              model.FormatAmount(l.Amount),
			Direction:           string(l.Direction),
			Type:                string(l.TransactionType),
			Description:         l.Description,
			CounterpartyName:    l.CounterpartyName,
			CounterpartyAccount: l.CounterpartyAccount,
			CounterpartyBank:    l.CounterpartyBank,
			PaymentReference:    l.PaymentReference,
			PaymentPurpose:      l.PaymentPurpose,
		}
		if l.ValueDate != nil {
			out[i].ValueDate = l.ValueDate.Format(time.DateOnly)
		}
	}
	return out
}
