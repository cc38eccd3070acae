package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// RawStore reads the ingestion collaborator's raw disclosure tables.
// All reads page ascending by id so maintenance jobs can resume.
type RawStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewRawStore(db *pgxpool.Pool, logger *slog.Logger) *RawStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RawStore{db: db, logger: logger}
}

const congressColumns = `
	t.id, t.filing_id, m.member_key, t.security_id,
	m.full_name, m.chamber, m.party, m.state,
	s.symbol, s.name, s.asset_class, s.sector,
	t.owner_type, t.transaction_type, t.trade_date, t.report_date,
	t.amount_min, t.amount_max, t.description,
	coalesce(f.source, m.chamber, '')`

const congressJoins = `
	FROM raw_congress_transactions t
	JOIN raw_congress_members m ON m.id = t.member_id
	LEFT JOIN raw_congress_filings f ON f.id = t.filing_id
	LEFT JOIN raw_securities s ON s.id = t.security_id`

// CongressRecords pages raw congress transactions ascending by id.
func (s *RawStore) CongressRecords(ctx context.Context, afterID int64, limit int) ([]model.CongressRecord, error) {
	rows, err := s.db.Query(ctx,
		"SELECT"+congressColumns+congressJoins+" WHERE t.id > $1 ORDER BY t.id LIMIT $2",
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("congress records: %w", err)
	}
	defer rows.Close()

	var records []model.CongressRecord
	for rows.Next() {
		rec, err := scanCongressRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CongressRecordByID fetches one raw transaction for repair. Returns
// (nil, nil) when the source row no longer exists.
func (s *RawStore) CongressRecordByID(ctx context.Context, id int64) (*model.CongressRecord, error) {
	rows, err := s.db.Query(ctx,
		"SELECT"+congressColumns+congressJoins+" WHERE t.id = $1",
		id)
	if err != nil {
		return nil, fmt.Errorf("congress record %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("congress record %d: %w", id, err)
		}
		return nil, nil
	}
	rec, err := scanCongressRecord(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsiderRecords pages raw insider transactions ascending by id.
func (s *RawStore) InsiderRecords(ctx context.Context, afterID int64, limit int) ([]model.InsiderRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, source, external_id, symbol, reporting_cik, insider_name,
			transaction_type, role, ownership, transaction_date, filing_date,
			shares, price, payload
		FROM raw_insider_transactions
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("insider records: %w", err)
	}
	defer rows.Close()

	var records []model.InsiderRecord
	for rows.Next() {
		var rec model.InsiderRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.ExternalID, &rec.Symbol,
			&rec.ReportingCIK, &rec.InsiderName, &rec.TransactionType, &rec.Role,
			&rec.Ownership, &rec.TransactionDate, &rec.FilingDate,
			&rec.Shares, &rec.Price, &payload); err != nil {
			return nil, fmt.Errorf("scan insider record: %w", err)
		}
		rec.Payload = model.DecodeAttributes(payload).Attrs
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanCongressRecord(rows pgx.Rows) (model.CongressRecord, error) {
	var rec model.CongressRecord
	if err := rows.Scan(&rec.ID, &rec.FilingID, &rec.MemberKey, &rec.SecurityID,
		&rec.MemberName, &rec.Chamber, &rec.Party, &rec.State,
		&rec.Symbol, &rec.SecurityName, &rec.AssetClass, &rec.Sector,
		&rec.OwnerType, &rec.TransactionType, &rec.TradeDate, &rec.ReportDate,
		&rec.AmountMin, &rec.AmountMax, &rec.Description, &rec.Source); err != nil {
		return model.CongressRecord{}, fmt.Errorf("scan congress record: %w", err)
	}
	return rec, nil
}
