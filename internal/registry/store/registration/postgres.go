package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
	"mhregistry/pkg/platform/sentinel"
	txcontext "mhregistry/pkg/platform/tx"
)

// PostgresStore persists registration chains in PostgreSQL.
//
// Child tables are append-only: SaveChange inserts new rows and upserts
// status/change-stamp mutations keyed by each child's creating registration;
// no statement deletes.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registration store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, reg *models.Registration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create registration: %w", err)
	}
	defer tx.Rollback()

	txCtx := txcontext.WithTx(ctx, tx)
	if err := s.insertRegistration(txCtx, reg); err != nil {
		return err
	}
	if err := s.upsertChildren(txCtx, reg); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveChange(ctx context.Context, base *models.Registration, change *models.Registration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save change: %w", err)
	}
	defer tx.Rollback()

	txCtx := txcontext.WithTx(ctx, tx)
	if err := s.insertRegistration(txCtx, change); err != nil {
		return err
	}
	// The change may have flipped the chain status and stamped children on
	// the base aggregate; persist both.
	if _, err := s.execer(txCtx).ExecContext(ctx,
		`UPDATE mhr_registrations SET status = $1 WHERE id = $2`,
		string(base.Status), base.ID); err != nil {
		return fmt.Errorf("update base status: %w", err)
	}
	if err := s.upsertChildren(txCtx, base); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save change: %w", err)
	}
	base.AppendChange(change)
	return nil
}

func (s *PostgresStore) insertRegistration(ctx context.Context, reg *models.Registration) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO mhr_registrations
			(id, mhr_number, registration_type, status, registration_ts,
			 account_id, client_reference_id, draft_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		reg.ID, reg.MhrNumber.String(), string(reg.RegistrationType), string(reg.Status),
		reg.RegistrationTs, reg.AccountID.String(), reg.ClientReferenceID, reg.DraftNumber.String())
	if err != nil {
		return translatePqErr(err, "insert registration")
	}
	if reg.Document != nil {
		_, err = s.execer(ctx).ExecContext(ctx, `
			INSERT INTO mhr_documents
				(document_id, registration_id, document_type, attention_reference,
				 declared_value, consideration_value, own_land)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			reg.Document.DocumentID.String(), reg.ID, string(reg.Document.DocumentType),
			reg.Document.AttentionReference, reg.Document.DeclaredValue,
			reg.Document.ConsiderationValue, reg.Document.OwnLand)
		if err != nil {
			return translatePqErr(err, "insert document")
		}
	}
	return nil
}

// upsertChildren persists every child row of the aggregate. Inserts and
// stamp updates share one ON CONFLICT statement per table, which keeps the
// write path idempotent.
func (s *PostgresStore) upsertChildren(ctx context.Context, reg *models.Registration) error {
	for _, n := range reg.Notes {
		notice, err := marshalNullable(n.GivingNoticeParty)
		if err != nil {
			return fmt.Errorf("marshal notice party: %w", err)
		}
		if _, err := s.execer(ctx).ExecContext(ctx, `
			INSERT INTO mhr_notes
				(document_id, registration_id, change_registration_id, document_type,
				 status, remarks, effective_ts, expiry_ts, giving_notice_party)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (document_id) DO UPDATE
				SET status = EXCLUDED.status,
				    change_registration_id = EXCLUDED.change_registration_id`,
			n.DocumentID.String(), n.RegistrationID, n.ChangeRegistrationID,
			string(n.DocumentType), string(n.Status), n.Remarks,
			nullTime(n.EffectiveTs), nullTime(n.ExpiryTs), notice); err != nil {
			return translatePqErr(err, "upsert note")
		}
	}

	for _, l := range reg.Locations {
		address, err := json.Marshal(l.Address)
		if err != nil {
			return fmt.Errorf("marshal address: %w", err)
		}
		if _, err := s.execer(ctx).ExecContext(ctx, `
			INSERT INTO mhr_locations
				(registration_id, change_registration_id, status, address,
				 location_type, park_name, pad, pid_number, legal_description, tax_certificate_ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (registration_id) DO UPDATE
				SET status = EXCLUDED.status,
				    change_registration_id = EXCLUDED.change_registration_id`,
			l.RegistrationID, l.ChangeRegistrationID, string(l.Status), address,
			l.LocationType, l.ParkName, l.Pad, l.PidNumber, l.LegalDescription,
			nullTime(l.TaxCertificateTs)); err != nil {
			return translatePqErr(err, "upsert location")
		}
	}

	for _, g := range reg.OwnerGroups {
		owners, err := json.Marshal(g.Owners)
		if err != nil {
			return fmt.Errorf("marshal owners: %w", err)
		}
		if _, err := s.execer(ctx).ExecContext(ctx, `
			INSERT INTO mhr_owner_groups
				(mhr_number, group_id, registration_id, change_registration_id,
				 tenancy, status, interest, interest_numerator, interest_denominator,
				 owners, existing)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (mhr_number, group_id) DO UPDATE
				SET status = EXCLUDED.status,
				    change_registration_id = EXCLUDED.change_registration_id`,
			reg.MhrNumber.String(), g.GroupID, g.RegistrationID, g.ChangeRegistrationID,
			string(g.Tenancy), string(g.Status), g.Interest,
			g.InterestNumerator, g.InterestDenominator, owners, g.Existing); err != nil {
			return translatePqErr(err, "upsert owner group")
		}
	}
	return nil
}

const selectRegistrations = `
	SELECT r.id, r.mhr_number, r.registration_type, r.status, r.registration_ts,
	       r.account_id, r.client_reference_id, r.draft_number,
	       d.document_id, d.document_type, d.attention_reference,
	       d.declared_value, d.consideration_value, d.own_land
	FROM mhr_registrations r
	LEFT JOIN mhr_documents d ON d.registration_id = r.id`

func (s *PostgresStore) FindByMhrNumber(ctx context.Context, mhrNumber domain.MhrNumber) (*models.Registration, error) {
	regs, err := s.queryRegistrations(ctx, selectRegistrations+`
		WHERE r.mhr_number = $1
		ORDER BY r.registration_ts, r.id`, mhrNumber.String())
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("registration %s: %w", mhrNumber, sentinel.ErrNotFound)
	}

	base := regs[0]
	for _, change := range regs[1:] {
		base.AppendChange(change)
	}
	if err := s.loadChildren(ctx, base); err != nil {
		return nil, err
	}
	return base, nil
}

// ListByAccount returns the account's base registrations, each carrying
// its ordered change registrations. Family listings read the changes, so
// bare base rows are not enough here.
func (s *PostgresStore) ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*models.Registration, error) {
	bases, err := s.queryRegistrations(ctx, selectRegistrations+`
		WHERE r.account_id = $1 AND r.registration_type = $2
		ORDER BY r.registration_ts DESC`, accountID.String(), string(models.RegTypeManufacturedHome))
	if err != nil {
		return nil, err
	}
	for _, base := range bases {
		changes, err := s.queryRegistrations(ctx, selectRegistrations+`
			WHERE r.mhr_number = $1 AND r.id <> $2
			ORDER BY r.registration_ts, r.id`, base.MhrNumber.String(), base.ID)
		if err != nil {
			return nil, err
		}
		for _, change := range changes {
			base.AppendChange(change)
		}
	}
	return bases, nil
}

func (s *PostgresStore) queryRegistrations(ctx context.Context, query string, args ...any) ([]*models.Registration, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var regs []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func scanRegistration(rows *sql.Rows) (*models.Registration, error) {
	var (
		reg       models.Registration
		mhr       string
		regType   string
		status    string
		accountID string
		draft     sql.NullString
		docID     sql.NullString
		docType   sql.NullString
		attention sql.NullString
		declared  sql.NullInt64
		consider  sql.NullString
		ownLand   sql.NullBool
	)
	if err := rows.Scan(&reg.ID, &mhr, &regType, &status, &reg.RegistrationTs,
		&accountID, &reg.ClientReferenceID, &draft,
		&docID, &docType, &attention, &declared, &consider, &ownLand); err != nil {
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	reg.MhrNumber = domain.MhrNumber(mhr)
	reg.RegistrationType = models.RegistrationType(regType)
	reg.Status = models.RegistrationStatus(status)
	reg.AccountID = domain.AccountID(accountID)
	if draft.Valid {
		reg.DraftNumber = domain.DraftNumber(draft.String)
	}
	if docID.Valid {
		reg.Document = &models.Document{
			DocumentID:         domain.DocumentID(docID.String),
			DocumentType:       models.DocumentType(docType.String),
			AttentionReference: attention.String,
			DeclaredValue:      declared.Int64,
			ConsiderationValue: consider.String,
			OwnLand:            ownLand.Bool,
		}
	}
	return &reg, nil
}

// loadChildren fills the aggregate's chain-wide child collections.
func (s *PostgresStore) loadChildren(ctx context.Context, base *models.Registration) error {
	ids := []int64{base.ID}
	for _, c := range base.Changes {
		ids = append(ids, c.ID)
	}

	noteRows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT document_id, registration_id, change_registration_id, document_type,
		       status, remarks, effective_ts, expiry_ts, giving_notice_party
		FROM mhr_notes WHERE registration_id = ANY($1) ORDER BY registration_id`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query notes: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var (
			n      models.Note
			docID  string
			dt     string
			status string
			eff    sql.NullTime
			exp    sql.NullTime
			notice []byte
		)
		if err := noteRows.Scan(&docID, &n.RegistrationID, &n.ChangeRegistrationID,
			&dt, &status, &n.Remarks, &eff, &exp, &notice); err != nil {
			return fmt.Errorf("scan note: %w", err)
		}
		n.DocumentID = domain.DocumentID(docID)
		n.DocumentType = models.DocumentType(dt)
		n.Status = models.NoteStatus(status)
		n.EffectiveTs = timePtr(eff)
		n.ExpiryTs = timePtr(exp)
		if len(notice) > 0 {
			var party models.Party
			if err := json.Unmarshal(notice, &party); err != nil {
				return fmt.Errorf("unmarshal notice party: %w", err)
			}
			n.GivingNoticeParty = &party
		}
		base.Notes = append(base.Notes, &n)
	}
	if err := noteRows.Err(); err != nil {
		return err
	}

	locRows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT registration_id, change_registration_id, status, address,
		       location_type, park_name, pad, pid_number, legal_description, tax_certificate_ts
		FROM mhr_locations WHERE registration_id = ANY($1) ORDER BY registration_id`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query locations: %w", err)
	}
	defer locRows.Close()
	for locRows.Next() {
		var (
			l       models.Location
			status  string
			address []byte
			taxTs   sql.NullTime
		)
		if err := locRows.Scan(&l.RegistrationID, &l.ChangeRegistrationID, &status, &address,
			&l.LocationType, &l.ParkName, &l.Pad, &l.PidNumber, &l.LegalDescription, &taxTs); err != nil {
			return fmt.Errorf("scan location: %w", err)
		}
		l.Status = models.LocationStatus(status)
		l.TaxCertificateTs = timePtr(taxTs)
		if err := json.Unmarshal(address, &l.Address); err != nil {
			return fmt.Errorf("unmarshal address: %w", err)
		}
		base.Locations = append(base.Locations, &l)
	}
	if err := locRows.Err(); err != nil {
		return err
	}

	groupRows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT group_id, registration_id, change_registration_id, tenancy, status,
		       interest, interest_numerator, interest_denominator, owners, existing
		FROM mhr_owner_groups WHERE mhr_number = $1 ORDER BY group_id`,
		base.MhrNumber.String())
	if err != nil {
		return fmt.Errorf("query owner groups: %w", err)
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var (
			g       models.OwnerGroup
			tenancy string
			status  string
			owners  []byte
		)
		if err := groupRows.Scan(&g.GroupID, &g.RegistrationID, &g.ChangeRegistrationID,
			&tenancy, &status, &g.Interest, &g.InterestNumerator, &g.InterestDenominator,
			&owners, &g.Existing); err != nil {
			return fmt.Errorf("scan owner group: %w", err)
		}
		g.Tenancy = models.Tenancy(tenancy)
		g.Status = models.GroupStatus(status)
		if err := json.Unmarshal(owners, &g.Owners); err != nil {
			return fmt.Errorf("unmarshal owners: %w", err)
		}
		base.OwnerGroups = append(base.OwnerGroups, &g)
	}
	return groupRows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, mhrNumber domain.MhrNumber, status models.RegistrationStatus) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE mhr_registrations SET status = $1
		WHERE mhr_number = $2 AND registration_type = $3`,
		string(status), mhrNumber.String(), string(models.RegTypeManufacturedHome))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("registration %s: %w", mhrNumber, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DocumentExists(ctx context.Context, documentID domain.DocumentID) (bool, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mhr_documents WHERE document_id = $1`,
		documentID.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	return count > 0, nil
}

func (s *PostgresStore) NextMhrNumber(ctx context.Context) (domain.MhrNumber, error) {
	var seq int64
	if err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT nextval('mhr_number_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("next mhr number: %w", err)
	}
	return domain.FormatMhrNumber(seq), nil
}

func (s *PostgresStore) NextDocumentID(ctx context.Context) (domain.DocumentID, error) {
	var seq int64
	if err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT nextval('mhr_document_id_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("next document id: %w", err)
	}
	return domain.FormatDocumentID(seq), nil
}

func (s *PostgresStore) NextRegistrationID(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT nextval('mhr_registration_id_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next registration id: %w", err)
	}
	return seq, nil
}

// ListExpirableNotes scans for ACTIVE notes with an elapsed expiry. The
// partial index on (expiry_ts) WHERE status = 'ACTIVE' keeps this cheap.
func (s *PostgresStore) ListExpirableNotes(ctx context.Context, asOf time.Time) ([]NoteRef, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT r.mhr_number, n.document_id
		FROM mhr_notes n
		JOIN mhr_registrations r ON r.id = n.registration_id
		WHERE n.status = $1 AND n.expiry_ts IS NOT NULL AND n.expiry_ts <= $2
		ORDER BY n.expiry_ts`,
		string(models.NoteActive), asOf)
	if err != nil {
		return nil, fmt.Errorf("query expirable notes: %w", err)
	}
	defer rows.Close()

	var refs []NoteRef
	for rows.Next() {
		var (
			mhr   string
			docID string
		)
		if err := rows.Scan(&mhr, &docID); err != nil {
			return nil, fmt.Errorf("scan expirable note: %w", err)
		}
		refs = append(refs, NoteRef{
			MhrNumber:  domain.MhrNumber(mhr),
			DocumentID: domain.DocumentID(docID),
		})
	}
	return refs, rows.Err()
}

func (s *PostgresStore) ExpireNote(ctx context.Context, documentID domain.DocumentID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE mhr_notes SET status = $1
		WHERE document_id = $2 AND status = $3`,
		string(models.NoteExpired), documentID.String(), string(models.NoteActive))
	if err != nil {
		return fmt.Errorf("expire note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("expire note: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", documentID, sentinel.ErrNotFound)
	}
	return nil
}

func translatePqErr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func marshalNullable(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	if party, ok := value.(*models.Party); ok && party == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	return &value.Time
}
