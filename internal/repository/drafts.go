package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/common"
	"github.com/joseph-ayodele/perks-tracker/internal/core/perks"
)

const draftsTable = "perk_drafts"

var draftColumns = []string{
	"id", "batch_id", "source", "issuer", "position",
	"merchant", "description", "value", "expiration",
	"confidence", "lines", "created_at",
}

// Draft is a stored candidate waiting for review.
type Draft struct {
	ID        uuid.UUID
	BatchID   uuid.UUID
	Source    string
	Position  int
	CreatedAt time.Time
	perks.PerkCandidate
}

type DraftRepository interface {
	Migrate(ctx context.Context) error
	SaveDrafts(ctx context.Context, batchID uuid.UUID, source string, issuer constants.IssuerKey, candidates []perks.PerkCandidate) ([]Draft, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]Draft, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type draftRepository struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewDraftRepository(db *DB, logger *slog.Logger) DraftRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &draftRepository{db: db, now: time.Now, logger: logger}
}

func (r *draftRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

func dbError(op string, err error) error {
	return common.NewAppError("DB_ERROR", op, fmt.Errorf("%w: %v", common.ErrDatabase, err))
}

// Migrate creates the drafts table and its indexes when missing.
func (r *draftRepository) Migrate(ctx context.Context) error {
	query, args := r.builder().CreateTable(draftsTable).IfNotExists().
		Columns(
			entsql.Column("id").Type("VARCHAR(36)").Attr("NOT NULL"),
			entsql.Column("batch_id").Type("VARCHAR(36)").Attr("NOT NULL"),
			entsql.Column("source").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("issuer").Type("VARCHAR(32)").Attr("NOT NULL"),
			entsql.Column("position").Type("INTEGER").Attr("NOT NULL"),
			entsql.Column("merchant").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("description").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("value").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("expiration").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("confidence").Type("DOUBLE PRECISION").Attr("NOT NULL"),
			entsql.Column("lines").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("created_at").Type("BIGINT").Attr("NOT NULL"),
		).
		PrimaryKey("id").
		Query()

	db := r.db.drv.DB()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create drafts table", "error", err)
		return dbError("migrate", err)
	}
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS perk_drafts_batch_id ON perk_drafts (batch_id)",
		"CREATE INDEX IF NOT EXISTS perk_drafts_created_at ON perk_drafts (created_at)",
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return dbError("migrate", err)
		}
	}
	r.logger.Debug("drafts schema ready", "dialect", r.db.Dialect())
	return nil
}

// SaveDrafts stores the candidates found in one screenshot, in order, in one transaction.
func (r *draftRepository) SaveDrafts(ctx context.Context, batchID uuid.UUID, source string, issuer constants.IssuerKey, candidates []perks.PerkCandidate) ([]Draft, error) {
	if len(candidates) == 0 {
		return []Draft{}, nil
	}
	now := r.now().UTC()
	drafts := make([]Draft, len(candidates))

	ins := r.builder().Insert(draftsTable).Columns(draftColumns...)
	for i, c := range candidates {
		if c.Issuer == "" {
			c.Issuer = issuer
		}
		lines, err := json.Marshal(c.Lines)
		if err != nil {
			return nil, err
		}
		d := Draft{ID: uuid.New(), BatchID: batchID, Source: source, Position: i, CreatedAt: now, PerkCandidate: c}
		drafts[i] = d
		ins.Values(
			d.ID.String(), batchID.String(), source, string(c.Issuer), i,
			c.Merchant, c.Description, c.Value, c.Expiration,
			c.Confidence, string(lines), now.UnixMilli(),
		)
	}
	query, args := ins.Query()

	tx, err := r.db.drv.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, dbError("begin", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		r.logger.Error("failed to save drafts", "batch_id", batchID, "source", source, "error", err)
		return nil, dbError("save drafts", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, dbError("commit", err)
	}
	r.logger.Debug("drafts saved", "batch_id", batchID, "source", source, "count", len(drafts))
	return drafts, nil
}

// ListByBatch returns a batch's drafts ordered by source and position.
func (r *draftRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]Draft, error) {
	b := r.builder()
	query, args := b.Select(draftColumns...).
		From(b.Table(draftsTable)).
		Where(entsql.EQ("batch_id", batchID.String())).
		OrderBy("source", "position").
		Query()

	rows, err := r.db.drv.DB().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list drafts", "batch_id", batchID, "error", err)
		return nil, dbError("list drafts", err)
	}
	defer rows.Close()

	out := []Draft{}
	for rows.Next() {
		var (
			d                 Draft
			id, batch, issuer string
			lines             string
			created           int64
		)
		if err := rows.Scan(
			&id, &batch, &d.Source, &issuer, &d.Position,
			&d.Merchant, &d.Description, &d.Value, &d.Expiration,
			&d.Confidence, &lines, &created,
		); err != nil {
			return nil, dbError("scan draft", err)
		}
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, dbError("scan draft", err)
		}
		if d.BatchID, err = uuid.Parse(batch); err != nil {
			return nil, dbError("scan draft", err)
		}
		if err := json.Unmarshal([]byte(lines), &d.Lines); err != nil {
			return nil, dbError("scan draft", err)
		}
		d.Issuer = constants.IssuerKey(issuer)
		d.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list drafts", err)
	}
	return out, nil
}

// PurgeBefore deletes drafts created before cutoff and reports how many went.
func (r *draftRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args := r.builder().Delete(draftsTable).
		Where(entsql.LT("created_at", cutoff.UTC().UnixMilli())).
		Query()

	res, err := r.db.drv.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to purge drafts", "cutoff", cutoff, "error", err)
		return 0, dbError("purge drafts", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbError("purge drafts", err)
	}
	r.logger.Info("drafts purged", "cutoff", cutoff, "deleted", n)
	return n, nil
}
