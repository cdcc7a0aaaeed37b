// Package service orchestrates registration filings: authorize, validate,
// collect the fee, apply the change, persist, and queue the verification
// report.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"mhregistry/internal/auth"
	"mhregistry/internal/payment"
	"mhregistry/internal/registry"
	"mhregistry/internal/registry/change"
	"mhregistry/internal/registry/metrics"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/validator"
	"mhregistry/internal/report"
	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/platform/sentinel"
	"mhregistry/pkg/requestcontext"
)

// RegistrationStore persists registration chains.
type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
	SaveChange(ctx context.Context, base *models.Registration, changeReg *models.Registration) error
	FindByMhrNumber(ctx context.Context, mhrNumber domain.MhrNumber) (*models.Registration, error)
	ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*models.Registration, error)
	UpdateStatus(ctx context.Context, mhrNumber domain.MhrNumber, status models.RegistrationStatus) error
	DocumentExists(ctx context.Context, documentID domain.DocumentID) (bool, error)
	NextMhrNumber(ctx context.Context) (domain.MhrNumber, error)
	NextDocumentID(ctx context.Context) (domain.DocumentID, error)
	NextRegistrationID(ctx context.Context) (int64, error)
}

// DraftStore stages filings until payment completes.
type DraftStore interface {
	Put(ctx context.Context, draft *models.Draft) error
	Get(ctx context.Context, accountID domain.AccountID, number domain.DraftNumber) (*models.Draft, error)
	Delete(ctx context.Context, accountID domain.AccountID, number domain.DraftNumber) error
	ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*models.Draft, error)
	NextDraftNumber(ctx context.Context) (domain.DraftNumber, error)
}

// ReportEnqueuer queues verification reports, fire and forget.
type ReportEnqueuer interface {
	Enqueue(event report.Event)
}

// Service orchestrates the registration lifecycle.
type Service struct {
	registrations RegistrationStore
	drafts        DraftStore
	payments      payment.Client
	changeCfg     change.Config

	logger  *slog.Logger
	reports ReportEnqueuer
	metrics *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithReportEnqueuer sets the verification report queue.
func WithReportEnqueuer(reports ReportEnqueuer) Option {
	return func(s *Service) { s.reports = reports }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(registrations RegistrationStore, drafts DraftStore, payments payment.Client,
	changeCfg change.Config, opts ...Option) *Service {
	s := &Service{
		registrations: registrations,
		drafts:        drafts,
		payments:      payments,
		changeCfg:     changeCfg,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRegistration loads the current aggregate. Non-staff accounts may only
// read their own registrations.
func (s *Service) GetRegistration(ctx context.Context, mhrNumber domain.MhrNumber) (*models.Registration, error) {
	start := time.Now()
	defer s.observeGet(start)
	current, err := s.loadChain(ctx, mhrNumber)
	if err != nil {
		return nil, err
	}
	current.Location = current.ActiveLocation()
	return current, nil
}

// ListAccountRegistrations returns the calling account's base registrations.
func (s *Service) ListAccountRegistrations(ctx context.Context) ([]*models.Registration, error) {
	accountID := requestcontext.AccountID(ctx)
	regs, err := s.registrations.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return regs, nil
}

// loadChain resolves the chain and enforces account scoping.
func (s *Service) loadChain(ctx context.Context, mhrNumber domain.MhrNumber) (*models.Registration, error) {
	current, err := s.registrations.FindByMhrNumber(ctx, mhrNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	if auth.GroupFrom(ctx) != registry.GroupStaff && current.AccountID != requestcontext.AccountID(ctx) {
		return nil, dErrors.New(dErrors.CodeForbidden, "registration belongs to another account")
	}
	return current, nil
}

// documentExists adapts the store check into the validator predicate.
func (s *Service) documentExists(ctx context.Context) validator.DocumentExists {
	return func(documentID domain.DocumentID) bool {
		exists, err := s.registrations.DocumentExists(ctx, documentID)
		if err != nil {
			s.logger.WarnContext(ctx, "document existence check failed",
				"document_id", documentID, "error", err)
			return false
		}
		return exists
	}
}

// newChangeRegistration reserves identifiers and builds the change
// registration shell. Staff supply their own document ID (validated
// upstream); other submitters get a generated one.
func (s *Service) newChangeRegistration(ctx context.Context, current *models.Registration,
	sub registry.Submission, docType models.DocumentType) (*models.Registration, error) {
	regID, err := s.registrations.NextRegistrationID(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve registration id")
	}

	documentID := sub.DocumentID
	if documentID == "" {
		documentID, err = s.registrations.NextDocumentID(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve document id")
		}
	}

	return &models.Registration{
		ID:                regID,
		MhrNumber:         current.MhrNumber,
		RegistrationType:  docType.RegistrationFamily(),
		Status:            current.Status,
		RegistrationTs:    requestcontext.Now(ctx),
		AccountID:         requestcontext.AccountID(ctx),
		ClientReferenceID: sub.ClientReferenceID,
		DraftNumber:       sub.DraftNumber,
		Document: &models.Document{
			DocumentID:         documentID,
			DocumentType:       docType,
			AttentionReference: sub.AttentionReference,
		},
	}, nil
}

// saveChange persists the applied change and runs the post-save side
// effects shared by every family.
func (s *Service) saveChange(ctx context.Context, current, newReg *models.Registration) error {
	if err := s.registrations.SaveChange(ctx, current, newReg); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "document id already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration")
	}

	if newReg.DraftNumber != "" {
		if err := s.drafts.Delete(ctx, requestcontext.AccountID(ctx), newReg.DraftNumber); err != nil &&
			!errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to delete completed draft",
				"draft_number", newReg.DraftNumber, "error", err)
		}
	}

	s.enqueueReport(ctx, newReg)
	s.incrementCreated(string(newReg.RegistrationType))
	s.logger.InfoContext(ctx, "registration created",
		"mhr_number", newReg.MhrNumber,
		"registration_type", newReg.RegistrationType,
		"document_id", newReg.Document.DocumentID,
		"status", current.Status,
		"account_id", newReg.AccountID,
		"request_id", requestcontext.RequestID(ctx))
	return nil
}

func (s *Service) enqueueReport(ctx context.Context, newReg *models.Registration) {
	if s.reports == nil {
		return
	}
	payload, err := json.Marshal(newReg)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to marshal report payload",
			"mhr_number", newReg.MhrNumber, "error", err)
		return
	}
	s.reports.Enqueue(report.Event{
		MhrNumber:        newReg.MhrNumber,
		RegistrationID:   newReg.ID,
		DocumentID:       newReg.Document.DocumentID,
		RegistrationType: string(newReg.RegistrationType),
		AccountID:        newReg.AccountID,
		Username:         requestcontext.Username(ctx),
		SubmittedTs:      newReg.RegistrationTs,
		Registration:     payload,
	})
}

// pay collects the filing fee, counting failures.
func (s *Service) pay(ctx context.Context, filingType payment.FilingType, quantity int) error {
	if _, err := s.payments.Pay(ctx, requestcontext.AccountID(ctx), filingType, quantity); err != nil {
		s.incrementPaymentFailure()
		s.logger.WarnContext(ctx, "payment failed",
			"filing_type", filingType,
			"account_id", requestcontext.AccountID(ctx),
			"error", err)
		return err
	}
	return nil
}

func (s *Service) rejected(ctx context.Context, regType string, msg string) error {
	s.incrementRejected(regType)
	s.logger.InfoContext(ctx, "registration rejected",
		"registration_type", regType,
		"account_id", requestcontext.AccountID(ctx),
		"violations", msg)
	return dErrors.New(dErrors.CodeBadRequest, msg)
}

func (s *Service) incrementCreated(regType string) {
	if s.metrics != nil {
		s.metrics.IncrementCreated(regType)
	}
}

func (s *Service) incrementRejected(regType string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(regType)
	}
}

func (s *Service) incrementPaymentFailure() {
	if s.metrics != nil {
		s.metrics.IncrementPaymentFailure()
	}
}

func (s *Service) observeGet(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveGet(start)
	}
}
