package service

import (
	"context"
	"encoding/json"
	"errors"

	"mhregistry/internal/auth"
	"mhregistry/internal/registry"
	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/platform/sentinel"
)

// SubmitForReview stages a filing that needs staff review. The payload is
// saved as a draft and the base registration is locked by moving its status
// to DRAFT: concurrent changes against the chain are rejected by state
// gating until a registrar approves or declines.
func (s *Service) SubmitForReview(ctx context.Context, registrationType models.RegistrationType,
	mhrNumber domain.MhrNumber, payload json.RawMessage) (*models.Draft, error) {
	current, err := s.loadChain(ctx, mhrNumber)
	if err != nil {
		return nil, err
	}
	if err := current.CanTransition(models.StatusDraft); err != nil {
		return nil, err
	}

	draft, err := s.CreateDraft(ctx, registrationType, mhrNumber, payload)
	if err != nil {
		return nil, err
	}

	if err := s.registrations.UpdateStatus(ctx, mhrNumber, models.StatusDraft); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock registration for review")
	}

	s.logger.InfoContext(ctx, "registration locked for review",
		"mhr_number", mhrNumber,
		"draft_number", draft.DraftNumber,
		"registration_type", registrationType)
	return draft, nil
}

// ApproveReview unlocks a chain held for review and files the staged draft,
// returning the resulting change registration. Staff only. The lock must
// drop before filing because state gating rejects changes against a DRAFT
// chain; if the filing then fails the chain is left unlocked and the draft
// preserved, so the registrar can correct and retry.
func (s *Service) ApproveReview(ctx context.Context, mhrNumber domain.MhrNumber,
	draftNumber domain.DraftNumber) (*models.Registration, error) {
	current, err := s.requireReviewLock(ctx, mhrNumber)
	if err != nil {
		return nil, err
	}

	draft, err := s.drafts.Get(ctx, current.AccountID, draftNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "draft not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load draft")
	}

	if err := s.registrations.UpdateStatus(ctx, mhrNumber, models.StatusActive); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to release review lock")
	}

	newReg, err := s.fileDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, draft.AccountID, draft.DraftNumber); err != nil &&
		!errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to delete approved draft",
			"draft_number", draft.DraftNumber, "error", err)
	}

	s.logger.InfoContext(ctx, "review approved",
		"mhr_number", mhrNumber,
		"draft_number", draftNumber,
		"registration_type", newReg.RegistrationType)
	return newReg, nil
}

// DeclineReview unlocks a chain held for review without filing. The draft
// is preserved so the submitter can amend and resubmit.
func (s *Service) DeclineReview(ctx context.Context, mhrNumber domain.MhrNumber,
	draftNumber domain.DraftNumber) error {
	if _, err := s.requireReviewLock(ctx, mhrNumber); err != nil {
		return err
	}

	if err := s.registrations.UpdateStatus(ctx, mhrNumber, models.StatusActive); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to release review lock")
	}

	s.logger.InfoContext(ctx, "review declined",
		"mhr_number", mhrNumber, "draft_number", draftNumber)
	return nil
}

// fileDraft replays a staged payload through the filing path matching its
// registration type. The filing runs under the approver's context, so the
// usual validation and payment steps still apply.
func (s *Service) fileDraft(ctx context.Context, draft *models.Draft) (*models.Registration, error) {
	switch draft.RegistrationType {
	case models.RegTypeTransfer, models.RegTypeTransferDeath, models.RegTypeTransferAffidavit,
		models.RegTypeTransferAdmin, models.RegTypeTransferWill:
		var req registry.TransferRequest
		if err := decodeDraft(draft, &req); err != nil {
			return nil, err
		}
		req.MhrNumber = draft.MhrNumber
		req.DraftNumber = draft.DraftNumber
		return s.CreateTransfer(ctx, req)

	case models.RegTypePermit, models.RegTypePermitExtension, models.RegTypeAmendPermit:
		var req registry.PermitRequest
		if err := decodeDraft(draft, &req); err != nil {
			return nil, err
		}
		req.MhrNumber = draft.MhrNumber
		req.DraftNumber = draft.DraftNumber
		return s.CreatePermit(ctx, req)

	case models.RegTypeExemptionRes, models.RegTypeExemptionNonRes:
		var req registry.ExemptionRequest
		if err := decodeDraft(draft, &req); err != nil {
			return nil, err
		}
		req.MhrNumber = draft.MhrNumber
		req.DraftNumber = draft.DraftNumber
		req.NonResidential = draft.RegistrationType == models.RegTypeExemptionNonRes
		return s.CreateExemption(ctx, req)

	case models.RegTypeNote:
		var req registry.NoteRequest
		if err := decodeDraft(draft, &req); err != nil {
			return nil, err
		}
		req.MhrNumber = draft.MhrNumber
		req.DraftNumber = draft.DraftNumber
		return s.CreateNote(ctx, req)

	case models.RegTypeStaffAdmin, models.RegTypeCancelPermit:
		var req registry.AdminRequest
		if err := decodeDraft(draft, &req); err != nil {
			return nil, err
		}
		req.MhrNumber = draft.MhrNumber
		req.DraftNumber = draft.DraftNumber
		return s.CreateAdminRegistration(ctx, req)

	default:
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"draft registration type %s cannot be filed", draft.RegistrationType)
	}
}

func decodeDraft(draft *models.Draft, req any) error {
	if err := json.Unmarshal(draft.Payload, req); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "draft payload is not a valid filing")
	}
	return nil
}

func (s *Service) requireReviewLock(ctx context.Context, mhrNumber domain.MhrNumber) (*models.Registration, error) {
	if auth.GroupFrom(ctx) != registry.GroupStaff {
		return nil, dErrors.New(dErrors.CodeForbidden, "staff review requires the staff role")
	}
	current, err := s.loadChain(ctx, mhrNumber)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusDraft {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation,
			"registration %s is not locked for review", mhrNumber)
	}
	return current, nil
}
