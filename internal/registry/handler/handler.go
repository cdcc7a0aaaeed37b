// Package handler wires the registration service to the HTTP API. Handlers
// are thin glue: decode, call the service, translate coded errors.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
	"mhregistry/pkg/platform/httputil"
	"mhregistry/pkg/requestcontext"
)

// Service defines the registration operations the HTTP layer depends on.
type Service interface {
	CreateTransfer(ctx context.Context, req registry.TransferRequest) (*models.Registration, error)
	CreatePermit(ctx context.Context, req registry.PermitRequest) (*models.Registration, error)
	CreateExemption(ctx context.Context, req registry.ExemptionRequest) (*models.Registration, error)
	CreateNote(ctx context.Context, req registry.NoteRequest) (*models.Registration, error)
	CreateAdminRegistration(ctx context.Context, req registry.AdminRequest) (*models.Registration, error)

	GetRegistration(ctx context.Context, mhrNumber domain.MhrNumber) (*models.Registration, error)
	ListAccountRegistrations(ctx context.Context) ([]*models.Registration, error)

	CreateDraft(ctx context.Context, registrationType models.RegistrationType,
		mhrNumber domain.MhrNumber, payload json.RawMessage) (*models.Draft, error)
	UpdateDraft(ctx context.Context, number domain.DraftNumber, payload json.RawMessage) (*models.Draft, error)
	GetDraft(ctx context.Context, number domain.DraftNumber) (*models.Draft, error)
	DeleteDraft(ctx context.Context, number domain.DraftNumber) error
	ListDrafts(ctx context.Context) ([]*models.Draft, error)

	SubmitForReview(ctx context.Context, registrationType models.RegistrationType,
		mhrNumber domain.MhrNumber, payload json.RawMessage) (*models.Draft, error)
	ApproveReview(ctx context.Context, mhrNumber domain.MhrNumber, draftNumber domain.DraftNumber) (*models.Registration, error)
	DeclineReview(ctx context.Context, mhrNumber domain.MhrNumber, draftNumber domain.DraftNumber) error
}

// Handler wires registration endpoints to the registration service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registration handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the registration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/transfers", h.HandleCreateTransfer)
	r.Get("/transfers", h.listFamily(transferTypes))
	r.Post("/permits", h.HandleCreatePermit)
	r.Get("/permits", h.listFamily(permitTypes))
	r.Post("/exemptions", h.HandleCreateExemption)
	r.Get("/exemptions", h.listFamily(exemptionTypes))
	r.Post("/notes", h.HandleCreateNote)
	r.Get("/notes", h.listFamily(noteTypes))
	r.Post("/admin-registrations", h.HandleCreateAdmin)
	r.Get("/admin-registrations", h.listFamily(adminTypes))

	r.Get("/registrations", h.HandleListRegistrations)
	r.Get("/registrations/{mhrNumber}", h.HandleGetRegistration)

	r.Post("/drafts", h.HandleCreateDraft)
	r.Get("/drafts", h.HandleListDrafts)
	r.Get("/drafts/{draftNumber}", h.HandleGetDraft)
	r.Put("/drafts/{draftNumber}", h.HandleUpdateDraft)
	r.Delete("/drafts/{draftNumber}", h.HandleDeleteDraft)

	r.Post("/reviews", h.HandleSubmitReview)
	r.Post("/reviews/{mhrNumber}/approve", h.HandleApproveReview)
	r.Post("/reviews/{mhrNumber}/decline", h.HandleDeclineReview)
}

// HandleCreateTransfer handles POST /transfers.
func (h *Handler) HandleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	createEndpoint(h, w, r, "transfer filed", h.service.CreateTransfer)
}

// HandleCreatePermit handles POST /permits.
func (h *Handler) HandleCreatePermit(w http.ResponseWriter, r *http.Request) {
	createEndpoint(h, w, r, "permit filed", h.service.CreatePermit)
}

// HandleCreateExemption handles POST /exemptions.
func (h *Handler) HandleCreateExemption(w http.ResponseWriter, r *http.Request) {
	createEndpoint(h, w, r, "exemption filed", h.service.CreateExemption)
}

// HandleCreateNote handles POST /notes.
func (h *Handler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	createEndpoint(h, w, r, "note filed", h.service.CreateNote)
}

// HandleCreateAdmin handles POST /admin-registrations.
func (h *Handler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	createEndpoint(h, w, r, "admin registration filed", h.service.CreateAdminRegistration)
}

// createEndpoint is the shared decode/call/log shape of the five filing
// endpoints. The request type carries the JSON contract.
func createEndpoint[T any](h *Handler, w http.ResponseWriter, r *http.Request,
	logMsg string, create func(context.Context, T) (*models.Registration, error)) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.Decode[T](w, r, h.logger)
	if !ok {
		return
	}

	newReg, err := create(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "filing rejected",
			"request_id", requestcontext.RequestID(ctx),
			"account_id", requestcontext.AccountID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, logMsg,
		"request_id", requestcontext.RequestID(ctx),
		"mhr_number", newReg.MhrNumber,
		"document_id", newReg.Document.DocumentID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, newReg)
}

// HandleGetRegistration handles GET /registrations/{mhrNumber}.
func (h *Handler) HandleGetRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mhrNumber := domain.MhrNumber(chi.URLParam(r, "mhrNumber"))

	reg, err := h.service.GetRegistration(ctx, mhrNumber)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

// HandleListRegistrations handles GET /registrations.
func (h *Handler) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regs, err := h.service.ListAccountRegistrations(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, registrationList(regs))
}

var (
	transferTypes = map[models.RegistrationType]bool{
		models.RegTypeTransfer:          true,
		models.RegTypeTransferDeath:     true,
		models.RegTypeTransferAffidavit: true,
		models.RegTypeTransferAdmin:     true,
		models.RegTypeTransferWill:      true,
	}
	permitTypes = map[models.RegistrationType]bool{
		models.RegTypePermit:          true,
		models.RegTypePermitExtension: true,
		models.RegTypeAmendPermit:     true,
		models.RegTypeCancelPermit:    true,
	}
	exemptionTypes = map[models.RegistrationType]bool{
		models.RegTypeExemptionRes:    true,
		models.RegTypeExemptionNonRes: true,
	}
	noteTypes = map[models.RegistrationType]bool{
		models.RegTypeNote: true,
	}
	adminTypes = map[models.RegistrationType]bool{
		models.RegTypeStaffAdmin: true,
	}
)

// listFamily returns the account's change registrations of one filing
// family, flattened across its chains.
func (h *Handler) listFamily(types map[models.RegistrationType]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		regs, err := h.service.ListAccountRegistrations(ctx)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		matches := []*models.Registration{}
		for _, reg := range regs {
			for _, c := range reg.Changes {
				if types[c.RegistrationType] {
					matches = append(matches, c)
				}
			}
		}
		httputil.WriteJSON(w, http.StatusOK, matches)
	}
}

func registrationList(regs []*models.Registration) []*models.Registration {
	if regs == nil {
		return []*models.Registration{}
	}
	return regs
}

// DraftRequest is the JSON body for creating or replacing a draft.
type DraftRequest struct {
	RegistrationType models.RegistrationType `json:"registrationType"`
	MhrNumber        domain.MhrNumber        `json:"mhrNumber,omitempty"`
	Registration     json.RawMessage         `json:"registration"`
}

// HandleCreateDraft handles POST /drafts.
func (h *Handler) HandleCreateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[DraftRequest](w, r, h.logger)
	if !ok {
		return
	}
	draft, err := h.service.CreateDraft(ctx, req.RegistrationType, req.MhrNumber, req.Registration)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, draft)
}

// HandleUpdateDraft handles PUT /drafts/{draftNumber}.
func (h *Handler) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := domain.DraftNumber(chi.URLParam(r, "draftNumber"))
	req, ok := httputil.Decode[DraftRequest](w, r, h.logger)
	if !ok {
		return
	}
	draft, err := h.service.UpdateDraft(ctx, number, req.Registration)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, draft)
}

// HandleGetDraft handles GET /drafts/{draftNumber}.
func (h *Handler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := domain.DraftNumber(chi.URLParam(r, "draftNumber"))
	draft, err := h.service.GetDraft(ctx, number)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, draft)
}

// HandleDeleteDraft handles DELETE /drafts/{draftNumber}.
func (h *Handler) HandleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := domain.DraftNumber(chi.URLParam(r, "draftNumber"))
	if err := h.service.DeleteDraft(ctx, number); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListDrafts handles GET /drafts.
func (h *Handler) HandleListDrafts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	drafts, err := h.service.ListDrafts(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if drafts == nil {
		drafts = []*models.Draft{}
	}
	httputil.WriteJSON(w, http.StatusOK, drafts)
}

// ReviewRequest is the JSON body for staging a review-gated filing.
type ReviewRequest struct {
	RegistrationType models.RegistrationType `json:"registrationType"`
	MhrNumber        domain.MhrNumber        `json:"mhrNumber"`
	Registration     json.RawMessage         `json:"registration"`
}

// ReviewDecision identifies the staged draft a registrar is acting on.
type ReviewDecision struct {
	DraftNumber domain.DraftNumber `json:"draftNumber"`
}

// HandleSubmitReview handles POST /reviews.
func (h *Handler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[ReviewRequest](w, r, h.logger)
	if !ok {
		return
	}
	draft, err := h.service.SubmitForReview(ctx, req.RegistrationType, req.MhrNumber, req.Registration)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, draft)
}

// HandleApproveReview handles POST /reviews/{mhrNumber}/approve.
func (h *Handler) HandleApproveReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mhrNumber := domain.MhrNumber(chi.URLParam(r, "mhrNumber"))
	req, ok := httputil.Decode[ReviewDecision](w, r, h.logger)
	if !ok {
		return
	}
	newReg, err := h.service.ApproveReview(ctx, mhrNumber, req.DraftNumber)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, newReg)
}

// HandleDeclineReview handles POST /reviews/{mhrNumber}/decline.
func (h *Handler) HandleDeclineReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mhrNumber := domain.MhrNumber(chi.URLParam(r, "mhrNumber"))
	req, ok := httputil.Decode[ReviewDecision](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.DeclineReview(ctx, mhrNumber, req.DraftNumber); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
