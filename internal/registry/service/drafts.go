package service

import (
	"context"
	"encoding/json"
	"errors"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/platform/sentinel"
	"mhregistry/pkg/requestcontext"
)

// CreateDraft stages a filing payload under a reserved draft number.
func (s *Service) CreateDraft(ctx context.Context, registrationType models.RegistrationType,
	mhrNumber domain.MhrNumber, payload json.RawMessage) (*models.Draft, error) {
	number, err := s.drafts.NextDraftNumber(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve draft number")
	}

	now := requestcontext.Now(ctx)
	draft := &models.Draft{
		DraftNumber:      number,
		AccountID:        requestcontext.AccountID(ctx),
		RegistrationType: registrationType,
		MhrNumber:        mhrNumber,
		Payload:          payload,
		CreatedTs:        now,
		UpdatedTs:        now,
	}
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store draft")
	}
	return draft, nil
}

// UpdateDraft replaces a staged payload, refreshing its TTL.
func (s *Service) UpdateDraft(ctx context.Context, number domain.DraftNumber,
	payload json.RawMessage) (*models.Draft, error) {
	draft, err := s.GetDraft(ctx, number)
	if err != nil {
		return nil, err
	}
	draft.Payload = payload
	draft.UpdatedTs = requestcontext.Now(ctx)
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store draft")
	}
	return draft, nil
}

// GetDraft loads a staged draft owned by the calling account.
func (s *Service) GetDraft(ctx context.Context, number domain.DraftNumber) (*models.Draft, error) {
	draft, err := s.drafts.Get(ctx, requestcontext.AccountID(ctx), number)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "draft not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load draft")
	}
	return draft, nil
}

// DeleteDraft discards a staged draft.
func (s *Service) DeleteDraft(ctx context.Context, number domain.DraftNumber) error {
	if err := s.drafts.Delete(ctx, requestcontext.AccountID(ctx), number); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "draft not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete draft")
	}
	return nil
}

// ListDrafts returns the calling account's staged drafts.
func (s *Service) ListDrafts(ctx context.Context) ([]*models.Draft, error) {
	drafts, err := s.drafts.ListByAccount(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list drafts")
	}
	return drafts, nil
}
