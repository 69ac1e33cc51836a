package storage

import (
	"context"
	"database/sql/driver"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	videoID = "7f8c1a9e-1b7e-4f55-9a55-2d3f0d5c6a10"
	otherID = "0b3c8d5e-55aa-4b8f-8f0e-0e4c1f2a9b77"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	store := NewPostgresStore(sqlx.NewDb(mockDB, "postgres"))
	store.now = func() time.Time { return fixedNow }
	return store, mock
}

func columnNames() []string {
	var cols []string
	for _, c := range strings.Split(columns, ",") {
		cols = append(cols, strings.TrimSpace(c))
	}
	return cols
}

func recordRow(id, owner string) []driver.Value {
	return []driver.Value{
		id, owner, "Glow up at home", "Stop scrolling", "completed", "slideshow",
		nil, nil, "https://cdn.example.com/slideshows/x/slide-1.webp", nil,
		"LED mask", "LED face mask, reduces wrinkles", "$49.99", nil,
		[]byte(`{"reduces wrinkles","at-home spa"}`), nil, nil,
		[]byte(`[{"slideNumber":1,"text":"Stop scrolling","imagePrompt":"mask","duration":3},{"slideNumber":2,"text":"Save this","imagePrompt":"spa","duration":3}]`),
		[]byte(`{"hook":"Stop scrolling","style":"fomo","whyItWorks":"urgency"}`),
		"aesthetic", "listicle", []byte(`{skincare,ledmask}`), int64(6),
		int64(1200), int64(90), int64(12), int64(30),
		fixedNow, fixedNow,
	}
}

func TestInsert(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO videos (id, user_id")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.ContentRecord{
		Title:  "Glow",
		Status: models.StatusCompleted,
		Kind:   models.KindSlideshow,
		Slides: models.Slides{{SlideNumber: 1, Text: "a", Duration: 3}},
		Hook:   &models.Hook{Text: "a", Style: models.HookFOMO},
	}
	require.NoError(t, store.Insert(context.Background(), rec))

	assert.Len(t, rec.ID, 36)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.True(t, rec.Saved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM videos WHERE id = \$1 AND user_id = \$2`).
		WithArgs(videoID, "owner-1").
		WillReturnRows(sqlmock.NewRows(columnNames()).AddRow(recordRow(videoID, "owner-1")...))

	rec, err := store.Get(context.Background(), videoID, "owner-1")
	require.NoError(t, err)

	assert.Equal(t, videoID, rec.ID)
	assert.Equal(t, models.KindSlideshow, rec.Kind)
	require.Len(t, rec.Slides, 2)
	assert.Equal(t, "Save this", rec.Slides[1].Text)
	require.NotNil(t, rec.Hook)
	assert.Equal(t, models.HookFOMO, rec.Hook.Style)
	assert.Equal(t, []string{"reduces wrinkles", "at-home spa"}, []string(rec.ProductBenefits))
	assert.Nil(t, rec.MediaURL)
	assert.Equal(t, int64(1200), rec.Views)
	assert.True(t, rec.Saved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM videos WHERE id = \$1`).
		WithArgs(videoID).
		WillReturnRows(sqlmock.NewRows(columnNames()))

	_, err := store.Get(context.Background(), videoID, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	// malformed ids never reach the database
	_, err = store.Get(context.Background(), "mock-123", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	store, mock := newMockStore(t)
	cols := append(columnNames(), "total_count")
	rows := sqlmock.NewRows(cols).
		AddRow(append(recordRow(videoID, "owner-1"), int64(42))...).
		AddRow(append(recordRow(otherID, "owner-1"), int64(42))...)

	mock.ExpectQuery(`SELECT .+ COUNT\(\*\) OVER\(\) AS total_count FROM videos WHERE user_id = \$1 AND video_type = \$2\s+ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("owner-1", "slideshow", 100, 10).
		WillReturnRows(rows)

	records, total, err := store.List(context.Background(), ListQuery{
		OwnerID: "owner-1",
		Kind:    models.KindSlideshow,
		Limit:   500,
		Offset:  10,
	})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 42, total)
	assert.Equal(t, otherID, records[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPastTheEnd(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM videos WHERE status = \$1`).
		WithArgs("failed", DefaultLimit, 40).
		WillReturnRows(sqlmock.NewRows(append(columnNames(), "total_count")))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM videos WHERE status = $1`)).
		WithArgs("failed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	records, total, err := store.List(context.Background(), ListQuery{Status: models.StatusFailed, Offset: 40})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 3, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMany(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM videos WHERE user_id = $1 AND id = ANY($2::uuid[])`)).
		WithArgs("owner-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.DeleteMany(context.Background(), "owner-1", []string{videoID, otherID, videoID, "not-a-uuid"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.DeleteMany(context.Background(), "", []string{videoID})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	n, err = store.DeleteMany(context.Background(), "owner-1", []string{"garbage"})
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMany(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM videos WHERE user_id = \$1 AND id = ANY\(\$2::uuid\[\]\)`).
		WithArgs("owner-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columnNames()).AddRow(recordRow(videoID, "owner-1")...))

	records, err := store.GetMany(context.Background(), "owner-1", []string{videoID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Saved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusTransitions(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE videos SET status = 'processing', provider_job_id = \$2`).
		WithArgs(videoID, "hg-1", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE videos SET status = 'completed'`).
		WithArgs(videoID, "https://files.heygen.ai/v.mp4", nil, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE videos SET status = 'completed'`).
		WithArgs(otherID, "https://files.heygen.ai/v.mp4", nil, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE videos SET status = 'failed', failure_reason = \$2`).
		WithArgs(videoID, "polling timed out", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, store.MarkProcessing(ctx, videoID, "hg-1"))
	require.NoError(t, store.Complete(ctx, videoID, "https://files.heygen.ai/v.mp4", ""))
	assert.ErrorIs(t, store.Complete(ctx, otherID, "https://files.heygen.ai/v.mp4", ""), errs.ErrNotFound)
	require.NoError(t, store.Fail(ctx, videoID, "polling timed out"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS videos")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Limit: -1, Offset: -5}.Normalize()
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Zero(t, q.Offset)
}

func TestR2StorePut(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Contains(t, r.Header.Get("Authorization"), "AWS4-HMAC-SHA256")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewR2Store(context.Background(), R2Config{
		Endpoint:  server.URL,
		AccessKey: "ak",
		SecretKey: "sk",
		Bucket:    "slideshow-images",
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "slideshows/abc/slide-1-deadbeef.webp", []byte("webp-bytes"), "image/webp")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/slideshows/abc/slide-1-deadbeef.webp", url)
	assert.Equal(t, "/slideshow-images/slideshows/abc/slide-1-deadbeef.webp", gotPath)
	assert.Equal(t, "image/webp", gotType)
	assert.Equal(t, []byte("webp-bytes"), gotBody)

	assert.True(t, store.IsDurable(url))
	assert.False(t, store.IsDurable("https://replicate.delivery/x.webp"))
	assert.False(t, store.IsDurable("https://cdn.example.com.evil.test/x.webp"))
}
