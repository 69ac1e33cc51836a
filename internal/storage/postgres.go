package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const columns = `id, user_id, title, prompt, status, video_type, provider_job_id, media_url,
	thumbnail_url, failure_reason, product_name, product_description, product_price,
	product_link, product_benefits, brand_colors, target_audience, slides, hook,
	image_style, slideshow_type, hashtags, total_duration, views, likes, shares, saves,
	created_at, updated_at`

const insertQuery = `INSERT INTO videos (` + columns + `) VALUES (
	:id, :user_id, :title, :prompt, :status, :video_type, :provider_job_id, :media_url,
	:thumbnail_url, :failure_reason, :product_name, :product_description, :product_price,
	:product_link, :product_benefits, :brand_colors, :target_audience, :slides, :hook,
	:image_style, :slideshow_type, :hashtags, :total_duration, :views, :likes, :shares, :saves,
	:created_at, :updated_at)`

// PostgresStore is the ContentStore backed by the videos table
type PostgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

type listRow struct {
	models.ContentRecord
	TotalCount int `db:"total_count"`
}

// Open connects to PostgreSQL and applies the schema
func Open(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Migrate creates the videos table if it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Insert writes a new record, assigning its id and timestamps when unset
func (s *PostgresStore) Insert(ctx context.Context, rec *models.ContentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if _, err := s.db.NamedExecContext(ctx, insertQuery, rec); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	rec.Saved = true
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id, ownerID string) (*models.ContentRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.ErrNotFound
	}

	query := `SELECT ` + columns + ` FROM videos WHERE id = $1`
	args := []interface{}{id}
	if ownerID != "" {
		query += ` AND user_id = $2`
		args = append(args, ownerID)
	}

	var rec models.ContentRecord
	if err := s.db.GetContext(ctx, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	rec.Saved = true
	return &rec, nil
}

// List returns one page of records and the total number matching the filters
func (s *PostgresStore) List(ctx context.Context, q ListQuery) ([]models.ContentRecord, int, error) {
	q = q.Normalize()

	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.OwnerID != "" {
		add("user_id = $%d", q.OwnerID)
	}
	if q.Kind != "" {
		add("video_type = $%d", string(q.Kind))
	}
	if q.Status != "" {
		add("status = $%d", string(q.Status))
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM videos%s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, columns, filter, len(args)+1, len(args)+2)

	var rows []listRow
	if err := s.db.SelectContext(ctx, &rows, query, append(args, q.Limit, q.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("list videos: %w", err)
	}

	records := make([]models.ContentRecord, len(rows))
	total := 0
	for i, row := range rows {
		records[i] = row.ContentRecord
		records[i].Saved = true
		total = row.TotalCount
	}

	// the window count is unavailable when the page is past the end
	if len(rows) == 0 && q.Offset > 0 {
		if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM videos`+filter, args...); err != nil {
			return nil, 0, fmt.Errorf("count videos: %w", err)
		}
	}

	return records, total, nil
}

// GetMany returns the owner's records among ids, newest first
func (s *PostgresStore) GetMany(ctx context.Context, ownerID string, ids []string) ([]models.ContentRecord, error) {
	if ownerID == "" {
		return nil, errs.ErrUnauthorized
	}
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []models.ContentRecord{}, nil
	}

	var records []models.ContentRecord
	err := s.db.SelectContext(ctx, &records,
		`SELECT `+columns+` FROM videos WHERE user_id = $1 AND id = ANY($2::uuid[]) ORDER BY created_at DESC`,
		ownerID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get videos: %w", err)
	}
	for i := range records {
		records[i].Saved = true
	}
	return records, nil
}

// DeleteMany removes the owner's records among ids and reports how many went
func (s *PostgresStore) DeleteMany(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if ownerID == "" {
		return 0, errs.ErrUnauthorized
	}
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM videos WHERE user_id = $1 AND id = ANY($2::uuid[])`,
		ownerID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete videos: %w", err)
	}
	return res.RowsAffected()
}

// MarkProcessing stores the provider job id on a record that is not yet terminal
func (s *PostgresStore) MarkProcessing(ctx context.Context, id, jobID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE videos SET status = 'processing', provider_job_id = $2, updated_at = $3
		WHERE id = $1 AND status IN ('pending', 'processing')`,
		id, jobID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("mark video %s processing: %w", id, err)
	}
	return nil
}

// Complete records the final media and clears the provider job id
func (s *PostgresStore) Complete(ctx context.Context, id, mediaURL, thumbnailURL string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE videos SET status = 'completed', media_url = $2, thumbnail_url = $3,
		provider_job_id = NULL, failure_reason = NULL, updated_at = $4
		WHERE id = $1`,
		id, models.StringPtr(mediaURL), models.StringPtr(thumbnailURL), s.now().UTC())
	if err != nil {
		return fmt.Errorf("complete video %s: %w", id, err)
	}
	return expectOne(res)
}

// Fail moves a record that has not completed to failed
func (s *PostgresStore) Fail(ctx context.Context, id, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE videos SET status = 'failed', failure_reason = $2, provider_job_id = NULL, updated_at = $3
		WHERE id = $1 AND status <> 'completed'`,
		id, reason, s.now().UTC())
	if err != nil {
		return fmt.Errorf("fail video %s: %w", id, err)
	}
	return nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
