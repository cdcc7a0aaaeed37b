package service

import (
	"context"
	"time"

	"mhregistry/internal/auth"
	"mhregistry/internal/payment"
	"mhregistry/internal/registry"
	"mhregistry/internal/registry/change"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/validator"
	"mhregistry/pkg/requestcontext"
)

// CreateTransfer files an ownership transfer or transmission.
func (s *Service) CreateTransfer(ctx context.Context, req registry.TransferRequest) (*models.Registration, error) {
	start := time.Now()
	defer s.observeCreate(start)

	current, err := s.loadChain(ctx, req.MhrNumber)
	if err != nil {
		return nil, err
	}

	group := auth.GroupFrom(ctx)
	isStaff := group == registry.GroupStaff
	now := requestcontext.Now(ctx)
	if msg := validator.ValidateTransfer(current, req, isStaff, group, now, s.documentExists(ctx)); msg != "" {
		return nil, s.rejected(ctx, string(req.DocumentType.RegistrationFamily()), msg)
	}

	if err := s.pay(ctx, payment.FilingTransfer, 1); err != nil {
		return nil, err
	}

	newReg, err := s.newChangeRegistration(ctx, current, req.Submission, req.DocumentType)
	if err != nil {
		return nil, err
	}
	newReg.Document.DeclaredValue = req.DeclaredValue
	newReg.Document.ConsiderationValue = req.Consideration

	change.ApplyTransfer(current, req, newReg)
	if err := s.saveChange(ctx, current, newReg); err != nil {
		return nil, err
	}
	return newReg, nil
}

// CreatePermit files a transport permit, extension, or amendment.
func (s *Service) CreatePermit(ctx context.Context, req registry.PermitRequest) (*models.Registration, error) {
	start := time.Now()
	defer s.observeCreate(start)

	current, err := s.loadChain(ctx, req.MhrNumber)
	if err != nil {
		return nil, err
	}

	isStaff := auth.GroupFrom(ctx) == registry.GroupStaff
	now := requestcontext.Now(ctx)
	if msg := validator.ValidatePermit(current, req, isStaff, now, s.documentExists(ctx)); msg != "" {
		return nil, s.rejected(ctx, string(req.DocumentType().RegistrationFamily()), msg)
	}

	if err := s.pay(ctx, payment.FilingTransportPermit, 1); err != nil {
		return nil, err
	}

	newReg, err := s.newChangeRegistration(ctx, current, req.Submission, req.DocumentType())
	if err != nil {
		return nil, err
	}

	change.ApplyPermit(s.changeCfg, current, req, newReg, now)
	if err := s.saveChange(ctx, current, newReg); err != nil {
		return nil, err
	}
	return newReg, nil
}

// CreateExemption files a residential or non-residential exemption.
func (s *Service) CreateExemption(ctx context.Context, req registry.ExemptionRequest) (*models.Registration, error) {
	start := time.Now()
	defer s.observeCreate(start)

	current, err := s.loadChain(ctx, req.MhrNumber)
	if err != nil {
		return nil, err
	}

	isStaff := auth.GroupFrom(ctx) == registry.GroupStaff
	now := requestcontext.Now(ctx)
	if msg := validator.ValidateExemption(current, req, isStaff, now, s.documentExists(ctx)); msg != "" {
		return nil, s.rejected(ctx, string(req.DocumentType().RegistrationFamily()), msg)
	}

	filingType := payment.FilingExemptionRes
	if req.NonResidential {
		filingType = payment.FilingExemptionNonRes
	}
	if err := s.pay(ctx, filingType, 1); err != nil {
		return nil, err
	}

	newReg, err := s.newChangeRegistration(ctx, current, req.Submission, req.DocumentType())
	if err != nil {
		return nil, err
	}

	change.ApplyExemption(current, req, newReg)
	if err := s.saveChange(ctx, current, newReg); err != nil {
		return nil, err
	}
	return newReg, nil
}

// CreateNote files a unit note, or cancels a prior one.
func (s *Service) CreateNote(ctx context.Context, req registry.NoteRequest) (*models.Registration, error) {
	start := time.Now()
	defer s.observeCreate(start)

	current, err := s.loadChain(ctx, req.MhrNumber)
	if err != nil {
		return nil, err
	}

	isStaff := auth.GroupFrom(ctx) == registry.GroupStaff
	now := requestcontext.Now(ctx)
	if msg := validator.ValidateNote(current, req, isStaff, now, s.documentExists(ctx)); msg != "" {
		return nil, s.rejected(ctx, string(models.RegTypeNote), msg)
	}

	if err := s.pay(ctx, payment.FilingUnitNote, 1); err != nil {
		return nil, err
	}

	newReg, err := s.newChangeRegistration(ctx, current, req.Submission, req.Note.DocumentType)
	if err != nil {
		return nil, err
	}

	change.ApplyNote(s.changeCfg, current, req, newReg)
	if err := s.saveChange(ctx, current, newReg); err != nil {
		return nil, err
	}
	return newReg, nil
}

// CreateAdminRegistration files a staff correction or administrative
// registration.
func (s *Service) CreateAdminRegistration(ctx context.Context, req registry.AdminRequest) (*models.Registration, error) {
	start := time.Now()
	defer s.observeCreate(start)

	current, err := s.loadChain(ctx, req.MhrNumber)
	if err != nil {
		return nil, err
	}

	isStaff := auth.GroupFrom(ctx) == registry.GroupStaff
	now := requestcontext.Now(ctx)
	if msg := validator.ValidateAdmin(current, req, isStaff, now, s.documentExists(ctx)); msg != "" {
		return nil, s.rejected(ctx, string(req.DocumentType.RegistrationFamily()), msg)
	}

	if err := s.pay(ctx, payment.FilingAdmin, 1); err != nil {
		return nil, err
	}

	newReg, err := s.newChangeRegistration(ctx, current, req.Submission, req.DocumentType)
	if err != nil {
		return nil, err
	}

	change.ApplyAdmin(s.changeCfg, current, req, newReg)
	if err := s.saveChange(ctx, current, newReg); err != nil {
		return nil, err
	}
	return newReg, nil
}

func (s *Service) observeCreate(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCreate(start)
	}
}
