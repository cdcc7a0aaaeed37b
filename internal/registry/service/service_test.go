package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mhregistry/internal/auth"
	"mhregistry/internal/payment"
	"mhregistry/internal/registry"
	"mhregistry/internal/registry/change"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/store/draft"
	"mhregistry/internal/registry/store/registration"
	"mhregistry/internal/registry/validator"
	"mhregistry/internal/report"
	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/requestcontext"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service  *Service
	store    *registration.InMemory
	drafts   *draft.InMemory
	payments *payment.Fake
	reports  *reportRecorder
}

type reportRecorder struct {
	mu     sync.Mutex
	events []report.Event
}

func (r *reportRecorder) Enqueue(event report.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *reportRecorder) Events() []report.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]report.Event(nil), r.events...)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := registration.NewInMemory()
	drafts := draft.NewInMemory()
	payments := payment.NewFake()
	reports := &reportRecorder{}
	svc := New(store, drafts, payments,
		change.Config{PermitTermDays: 30, HomeProvince: "BC"},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithReportEnqueuer(reports))
	return &fixture{service: svc, store: store, drafts: drafts, payments: payments, reports: reports}
}

func (f *fixture) seedChain(t *testing.T, accountID domain.AccountID) domain.MhrNumber {
	t.Helper()
	base := &models.Registration{
		ID:               1,
		MhrNumber:        "100001",
		RegistrationType: models.RegTypeManufacturedHome,
		Status:           models.StatusActive,
		RegistrationTs:   testNow.Add(-24 * time.Hour),
		AccountID:        accountID,
		Document: &models.Document{
			DocumentID:   "10000018",
			DocumentType: models.DocReg101,
		},
		Locations: []*models.Location{
			{RegistrationID: 1, Status: models.LocationActive,
				Address: models.Address{Street: "45 Cedar Grove", City: "Victoria", Region: "BC", Country: "CA"}},
		},
		OwnerGroups: []*models.OwnerGroup{
			{RegistrationID: 1, GroupID: 1, Tenancy: models.TenancySole, Status: models.GroupActive,
				Owners: []models.Party{{BusinessName: "Island Homes Ltd",
					Address: models.Address{Street: "45 Cedar Grove", City: "Victoria", Region: "BC", Country: "CA"}}}},
		},
	}
	require.NoError(t, f.store.Create(context.Background(), base))
	return base.MhrNumber
}

func callerCtx(accountID domain.AccountID, group registry.Group) context.Context {
	ctx := context.Background()
	ctx = requestcontext.WithAccountID(ctx, accountID)
	ctx = requestcontext.WithUsername(ctx, "tester")
	ctx = requestcontext.WithTime(ctx, testNow)
	return auth.WithGroup(ctx, group)
}

func noticeParty() *models.Party {
	return &models.Party{
		BusinessName: "Notice Co",
		Address:      models.Address{Street: "1 Main St", City: "Victoria", Region: "BC", Country: "CA"},
	}
}

func TestCreateNote(t *testing.T) {
	t.Run("files a caution note and queues the report", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS12345", registry.GroupGeneral)

		newReg, err := f.service.CreateNote(ctx, registry.NoteRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			Note: models.Note{
				DocumentType:      models.DocCau,
				Remarks:           "caution filed",
				GivingNoticeParty: noticeParty(),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.RegTypeNote, newReg.RegistrationType)
		assert.True(t, newReg.Document.DocumentID.ChecksumValid(), "generated document id")

		current, err := f.store.FindByMhrNumber(ctx, mhr)
		require.NoError(t, err)
		require.Len(t, current.Notes, 1)
		assert.Equal(t, models.NoteActive, current.Notes[0].Status)

		require.Len(t, f.payments.Charges, 1)
		assert.Equal(t, payment.FilingUnitNote, f.payments.Charges[0].FilingType)

		events := f.reports.Events()
		require.Len(t, events, 1)
		assert.Equal(t, mhr, events[0].MhrNumber)
	})

	t.Run("rejects an invalid note before payment", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS12345", registry.GroupGeneral)

		_, err := f.service.CreateNote(ctx, registry.NoteRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			Note:       models.Note{DocumentType: models.DocCau},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.Contains(t, dErrors.MessageOf(err), validator.MsgNoticeRequired)
		assert.Empty(t, f.payments.Charges, "no fee collected for rejected filing")
	})

	t.Run("rejects a document type outside the note family", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS12345", registry.GroupGeneral)

		_, err := f.service.CreateNote(ctx, registry.NoteRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			Note: models.Note{
				DocumentType:      models.DocExrs,
				GivingNoticeParty: noticeParty(),
			},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.Contains(t, dErrors.MessageOf(err), validator.MsgNoteDocTypeInvalid)
		assert.Empty(t, f.payments.Charges, "no fee collected for rejected filing")
	})

	t.Run("surfaces a declined payment and saves nothing", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		f.payments.Decline()
		ctx := callerCtx("PS12345", registry.GroupGeneral)

		_, err := f.service.CreateNote(ctx, registry.NoteRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			Note: models.Note{
				DocumentType:      models.DocCau,
				GivingNoticeParty: noticeParty(),
			},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePaymentRequired))

		current, err := f.store.FindByMhrNumber(ctx, mhr)
		require.NoError(t, err)
		assert.Empty(t, current.Notes)
		assert.Empty(t, current.Changes)
	})

	t.Run("rejects filings against another account's home", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS99999", registry.GroupGeneral)

		_, err := f.service.CreateNote(ctx, registry.NoteRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			Note:       models.Note{DocumentType: models.DocCau, GivingNoticeParty: noticeParty()},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("returns not found for an unknown home", func(t *testing.T) {
		f := newFixture(t)
		ctx := callerCtx("PS12345", registry.GroupGeneral)

		_, err := f.service.CreateNote(ctx, registry.NoteRequest{
			Submission: registry.Submission{MhrNumber: "999999"},
			Note:       models.Note{DocumentType: models.DocCau, GivingNoticeParty: noticeParty()},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestCreateTransfer(t *testing.T) {
	t.Run("reconciles owner groups and deletes the completed draft", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS12345", registry.GroupQualifiedSupplier)

		staged, err := f.service.CreateDraft(ctx, models.RegTypeTransfer, mhr,
			json.RawMessage(`{"documentType":"TRAN"}`))
		require.NoError(t, err)

		newReg, err := f.service.CreateTransfer(ctx, registry.TransferRequest{
			Submission:        registry.Submission{MhrNumber: mhr, DraftNumber: staged.DraftNumber},
			DocumentType:      models.DocTran,
			DeclaredValue:     120000,
			DeleteOwnerGroups: []registry.GroupRef{{GroupID: 1}},
			AddOwnerGroups: []*models.OwnerGroup{
				{Tenancy: models.TenancySole, Owners: []models.Party{
					{PersonName: &models.PersonName{First: "Dana", Last: "Singh"},
						Address: models.Address{Street: "45 Cedar Grove", City: "Victoria", Region: "BC", Country: "CA"}},
				}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.RegTypeTransfer, newReg.RegistrationType)
		assert.EqualValues(t, 120000, newReg.Document.DeclaredValue)

		require.Len(t, newReg.AddOwnerGroups, 1)
		require.NotNil(t, newReg.AddOwnerGroups[0].Owners[0].PersonName)
		assert.Equal(t, "Dana", newReg.AddOwnerGroups[0].Owners[0].PersonName.First)

		events := f.reports.Events()
		require.Len(t, events, 1)
		assert.Contains(t, string(events[0].Registration), `"addOwnerGroups"`,
			"report payload carries the added groups")

		current, err := f.store.FindByMhrNumber(ctx, mhr)
		require.NoError(t, err)
		active := current.ActiveOwnerGroups()
		require.Len(t, active, 1)
		require.NotNil(t, active[0].Owners[0].PersonName)
		assert.Equal(t, "Dana", active[0].Owners[0].PersonName.First)

		_, err = f.service.GetDraft(ctx, staged.DraftNumber)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), "draft removed after filing")
	})

	t.Run("rejects transmission documents from qualified suppliers", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS12345", registry.GroupQualifiedSupplier)

		_, err := f.service.CreateTransfer(ctx, registry.TransferRequest{
			Submission:        registry.Submission{MhrNumber: mhr},
			DocumentType:      models.DocWill,
			DeleteOwnerGroups: []registry.GroupRef{{GroupID: 1}},
			AddOwnerGroups: []*models.OwnerGroup{
				{Tenancy: models.TenancySole, Owners: []models.Party{{BusinessName: "Estate Co"}}},
			},
		})
		require.Error(t, err)
		assert.Contains(t, dErrors.MessageOf(err), validator.MsgGroupNotAllowed)
	})
}

func TestCreatePermit(t *testing.T) {
	t.Run("issues a permit with the configured term", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS12345", registry.GroupGeneral)

		newReg, err := f.service.CreatePermit(ctx, registry.PermitRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			NewLocation: &models.Location{
				Address: models.Address{Street: "99 Lakeside Dr", City: "Kelowna", Region: "BC", Country: "CA"},
			},
		})
		require.NoError(t, err)

		current, err := f.store.FindByMhrNumber(ctx, mhr)
		require.NoError(t, err)
		permit := current.ActivePermitNote()
		require.NotNil(t, permit)
		require.NotNil(t, permit.ExpiryTs)
		assert.Equal(t, testNow.AddDate(0, 0, 30), *permit.ExpiryTs)

		loc := current.ActiveLocation()
		require.NotNil(t, loc)
		assert.Equal(t, "Kelowna", loc.Address.City)
		assert.EqualValues(t, newReg.ID, loc.RegistrationID)
		assert.Equal(t, models.StatusActive, current.Status, "in-province move keeps the home ACTIVE")
	})

	t.Run("out-of-province move flips the home EXEMPT", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS12345", registry.GroupGeneral)

		_, err := f.service.CreatePermit(ctx, registry.PermitRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			NewLocation: &models.Location{
				Address: models.Address{Street: "1 Prairie Way", City: "Calgary", Region: "AB", Country: "CA"},
			},
		})
		require.NoError(t, err)

		current, err := f.store.FindByMhrNumber(ctx, mhr)
		require.NoError(t, err)
		assert.Equal(t, models.StatusExempt, current.Status)
	})
}

func TestCreateExemption(t *testing.T) {
	f := newFixture(t)
	mhr := f.seedChain(t, "PS12345")
	ctx := callerCtx("PS12345", registry.GroupGeneral)

	// Open a permit first; the exemption must close it.
	_, err := f.service.CreatePermit(ctx, registry.PermitRequest{
		Submission: registry.Submission{MhrNumber: mhr},
		NewLocation: &models.Location{
			Address: models.Address{Street: "99 Lakeside Dr", City: "Kelowna", Region: "BC", Country: "CA"},
		},
	})
	require.NoError(t, err)

	_, err = f.service.CreateExemption(ctx, registry.ExemptionRequest{
		Submission: registry.Submission{MhrNumber: mhr},
		Note:       models.Note{Remarks: "destroyed", GivingNoticeParty: noticeParty()},
	})
	require.NoError(t, err)

	current, err := f.store.FindByMhrNumber(ctx, mhr)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExempt, current.Status)
	assert.Nil(t, current.ActivePermitNote(), "open permit cancelled by exemption")
	require.NotNil(t, current.ActiveExemptionNote())

	require.Len(t, f.payments.Charges, 2)
	assert.Equal(t, payment.FilingExemptionRes, f.payments.Charges[1].FilingType)
}

func TestCreateAdminRegistration(t *testing.T) {
	t.Run("staff reverse an exemption", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		owner := callerCtx("PS12345", registry.GroupGeneral)

		exemption, err := f.service.CreateExemption(owner, registry.ExemptionRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			Note:       models.Note{Remarks: "destroyed", GivingNoticeParty: noticeParty()},
		})
		require.NoError(t, err)

		staff := callerCtx("STAFF", registry.GroupStaff)
		_, err = f.service.CreateAdminRegistration(staff, registry.AdminRequest{
			Submission:       registry.Submission{MhrNumber: mhr, DocumentID: "90000010"},
			DocumentType:     models.DocExre,
			UpdateDocumentID: exemption.Document.DocumentID,
		})
		require.NoError(t, err)

		current, err := f.store.FindByMhrNumber(staff, mhr)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, current.Status)
		assert.Nil(t, current.ActiveExemptionNote())
	})

	t.Run("non-staff cannot file admin registrations", func(t *testing.T) {
		f := newFixture(t)
		mhr := f.seedChain(t, "PS12345")
		ctx := callerCtx("PS12345", registry.GroupGeneral)

		_, err := f.service.CreateAdminRegistration(ctx, registry.AdminRequest{
			Submission:   registry.Submission{MhrNumber: mhr},
			DocumentType: models.DocRegc,
		})
		require.Error(t, err)
		assert.Contains(t, dErrors.MessageOf(err), validator.MsgGroupNotAllowed)
	})
}

func TestStaffReview(t *testing.T) {
	f := newFixture(t)
	mhr := f.seedChain(t, "PS12345")
	owner := callerCtx("PS12345", registry.GroupGeneral)

	payload := json.RawMessage(`{
		"documentType": "WILL",
		"documentId": "10000027",
		"deleteOwnerGroups": [{"groupId": 1}],
		"addOwnerGroups": [{
			"type": "SOLE",
			"owners": [{
				"personName": {"first": "Mika", "last": "Tanaka"},
				"address": {"street": "45 Cedar Grove", "city": "Victoria", "region": "BC", "country": "CA"}
			}]
		}]
	}`)
	staged, err := f.service.SubmitForReview(owner, models.RegTypeTransferWill, mhr, payload)
	require.NoError(t, err)

	current, err := f.store.FindByMhrNumber(owner, mhr)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, current.Status)

	t.Run("locked chain rejects concurrent changes", func(t *testing.T) {
		_, err := f.service.CreateNote(owner, registry.NoteRequest{
			Submission: registry.Submission{MhrNumber: mhr},
			Note:       models.Note{DocumentType: models.DocCau, GivingNoticeParty: noticeParty()},
		})
		require.Error(t, err)
		assert.Contains(t, dErrors.MessageOf(err), validator.MsgStateNotAllowed)
	})

	t.Run("approval requires staff", func(t *testing.T) {
		_, err := f.service.ApproveReview(owner, mhr, staged.DraftNumber)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("approval unlocks and files the staged transfer", func(t *testing.T) {
		staff := callerCtx("STAFF", registry.GroupStaff)
		filed, err := f.service.ApproveReview(staff, mhr, staged.DraftNumber)
		require.NoError(t, err)
		assert.Equal(t, models.RegTypeTransferWill, filed.RegistrationType)
		assert.EqualValues(t, "10000027", filed.Document.DocumentID)

		current, err := f.store.FindByMhrNumber(staff, mhr)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, current.Status)
		require.Len(t, current.Changes, 1)

		active := current.ActiveOwnerGroups()
		require.Len(t, active, 1)
		require.NotNil(t, active[0].Owners[0].PersonName)
		assert.Equal(t, "Mika", active[0].Owners[0].PersonName.First)

		_, err = f.service.GetDraft(owner, staged.DraftNumber)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), "draft removed after filing")
	})

	t.Run("decline preserves the draft", func(t *testing.T) {
		second, err := f.service.SubmitForReview(owner, models.RegTypeTransferWill, mhr,
			json.RawMessage(`{"documentType":"WILL"}`))
		require.NoError(t, err)

		staff := callerCtx("PS12345", registry.GroupStaff)
		require.NoError(t, f.service.DeclineReview(staff, mhr, second.DraftNumber))

		current, err := f.store.FindByMhrNumber(staff, mhr)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, current.Status)

		_, err = f.service.GetDraft(owner, second.DraftNumber)
		assert.NoError(t, err, "declined draft kept for resubmission")
	})
}

func TestDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := callerCtx("PS12345", registry.GroupGeneral)

	staged, err := f.service.CreateDraft(ctx, models.RegTypeNote, "100001",
		json.RawMessage(`{"note":{"documentType":"CAU"}}`))
	require.NoError(t, err)
	assert.True(t, staged.DraftNumber.Valid())

	updated, err := f.service.UpdateDraft(ctx, staged.DraftNumber,
		json.RawMessage(`{"note":{"documentType":"CAUC"}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"note":{"documentType":"CAUC"}}`, string(updated.Payload))

	drafts, err := f.service.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)

	require.NoError(t, f.service.DeleteDraft(ctx, staged.DraftNumber))
	_, err = f.service.GetDraft(ctx, staged.DraftNumber)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
