package persist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/models"
	"github.com/bilgisen/adforge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cdn = "https://cdn.example.com"

type fakeStore struct {
	inserted []*models.ContentRecord
	query    storage.ListQuery
	err      error
}

func (f *fakeStore) Insert(_ context.Context, rec *models.ContentRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.Saved = true
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeStore) Get(context.Context, string, string) (*models.ContentRecord, error) {
	return nil, errs.ErrNotFound
}

func (f *fakeStore) List(_ context.Context, q storage.ListQuery) ([]models.ContentRecord, int, error) {
	f.query = q
	out := make([]models.ContentRecord, 0, len(f.inserted))
	for _, rec := range f.inserted {
		out = append(out, *rec)
	}
	return out, len(out), f.err
}

func (f *fakeStore) GetMany(context.Context, string, []string) ([]models.ContentRecord, error) {
	return nil, nil
}

func (f *fakeStore) DeleteMany(context.Context, string, []string) (int64, error) { return 0, nil }
func (f *fakeStore) MarkProcessing(context.Context, string, string) error         { return nil }
func (f *fakeStore) Complete(context.Context, string, string, string) error       { return nil }
func (f *fakeStore) Fail(context.Context, string, string) error                   { return nil }
func (f *fakeStore) Close() error                                                 { return nil }

type fakeObjects struct {
	keys []string
	err  error
}

func (f *fakeObjects) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return cdn + "/" + key, nil
}

func (f *fakeObjects) IsDurable(url string) bool {
	return strings.HasPrefix(url, cdn+"/")
}

type fakeFetcher struct {
	fetched []string
	failing map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*Download, error) {
	f.fetched = append(f.fetched, url)
	if f.failing[url] {
		return nil, errors.New("connection reset")
	}
	return &Download{Body: []byte("img:" + url), ContentType: "image/webp"}, nil
}

func saveRequest(urls ...string) SaveRequest {
	req := SaveRequest{
		Title:              "5 reasons your skin needs this",
		Hook:               &models.Hook{Text: "Stop scrolling", Style: models.HookFOMO},
		ImageStyle:         models.StyleAesthetic,
		SlideshowType:      models.SlideshowListicle,
		Hashtags:           []string{"skincare"},
		ProductDescription: "LED face mask, reduces wrinkles, $49.99",
		ProductPrice:       "$49.99",
	}
	for i, u := range urls {
		req.Slides = append(req.Slides, models.Slide{SlideNumber: 10 + i, Text: "slide", Duration: 3, ImageURL: u})
	}
	return req
}

func TestSaveRehostsProviderImages(t *testing.T) {
	store, objects, fetcher := &fakeStore{}, &fakeObjects{}, &fakeFetcher{}
	svc := NewService(store, objects, fetcher)

	rec, err := svc.Save(context.Background(), "owner-1", saveRequest(
		"",
		"https://replicate.delivery/a.webp",
		"https://replicate.delivery/b.webp",
	))
	require.NoError(t, err)
	require.Len(t, store.inserted, 1)

	assert.True(t, rec.Saved)
	assert.Len(t, rec.ID, 36)
	assert.Equal(t, models.StatusCompleted, rec.Status)
	assert.Equal(t, models.KindSlideshow, rec.Kind)
	assert.Equal(t, "Stop scrolling", rec.Prompt)
	assert.Equal(t, "owner-1", models.Deref(rec.OwnerID))
	assert.Equal(t, 9, rec.TotalDuration)

	require.Len(t, objects.keys, 2)
	assert.True(t, strings.HasPrefix(objects.keys[0], "slideshows/"+rec.ID+"/slide-2-"))
	assert.True(t, strings.HasSuffix(objects.keys[0], ".webp"))

	assert.Equal(t, 1, rec.Slides[0].SlideNumber)
	assert.Empty(t, rec.Slides[0].ImageURL)
	assert.Equal(t, cdn+"/"+objects.keys[0], rec.Slides[1].ImageURL)
	assert.Equal(t, cdn+"/"+objects.keys[1], rec.Slides[2].ImageURL)
	assert.Equal(t, rec.Slides[1].ImageURL, models.Deref(rec.ThumbnailURL))
}

func TestSaveSkipsDurableImages(t *testing.T) {
	store, objects, fetcher := &fakeStore{}, &fakeObjects{}, &fakeFetcher{}
	svc := NewService(store, objects, fetcher)

	durable := cdn + "/slideshows/old/slide-1-abc.webp"
	rec, err := svc.Save(context.Background(), "", saveRequest(durable, durable))
	require.NoError(t, err)

	assert.Empty(t, fetcher.fetched)
	assert.Empty(t, objects.keys)
	assert.Equal(t, durable, rec.Slides[0].ImageURL)
	assert.Equal(t, durable, rec.Slides[1].ImageURL)
	assert.Nil(t, rec.OwnerID)
}

func TestSaveKeepsURLWhenCopyFails(t *testing.T) {
	failing := "https://replicate.delivery/gone.webp"
	store, fetcher := &fakeStore{}, &fakeFetcher{failing: map[string]bool{failing: true}}

	rec, err := NewService(store, &fakeObjects{}, fetcher).
		Save(context.Background(), "owner-1", saveRequest(failing, "https://replicate.delivery/ok.webp"))
	require.NoError(t, err)
	assert.Equal(t, failing, rec.Slides[0].ImageURL)
	assert.True(t, strings.HasPrefix(rec.Slides[1].ImageURL, cdn+"/"))

	rec, err = NewService(store, &fakeObjects{err: errors.New("bucket missing")}, &fakeFetcher{}).
		Save(context.Background(), "owner-1", saveRequest("https://replicate.delivery/ok.webp"))
	require.NoError(t, err)
	assert.Equal(t, "https://replicate.delivery/ok.webp", rec.Slides[0].ImageURL)
}

func TestSaveWithoutObjectStore(t *testing.T) {
	fetcher := &fakeFetcher{}
	rec, err := NewService(&fakeStore{}, nil, fetcher).
		Save(context.Background(), "", saveRequest("https://replicate.delivery/a.webp"))
	require.NoError(t, err)
	assert.Empty(t, fetcher.fetched)
	assert.Equal(t, "https://replicate.delivery/a.webp", rec.Slides[0].ImageURL)
}

func TestSaveDemoMode(t *testing.T) {
	svc := NewService(nil, &fakeObjects{}, &fakeFetcher{})
	require.True(t, svc.Demo())

	req := saveRequest("https://replicate.delivery/a.webp", "")
	rec, err := svc.Save(context.Background(), "", req)
	require.NoError(t, err)

	assert.False(t, rec.Saved)
	assert.True(t, strings.HasPrefix(rec.ID, "mock-"))
	assert.Equal(t, models.StatusCompleted, rec.Status)
	assert.Equal(t, *req.Hook, *rec.Hook)
	require.Len(t, rec.Slides, 2)
	assert.Equal(t, "https://replicate.delivery/a.webp", rec.Slides[0].ImageURL)
	assert.Equal(t, "slide", rec.Slides[1].Text)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestSaveValidation(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, nil)
	var ve *errs.ValidationError

	req := saveRequest("x")
	req.Title = "  "
	_, err := svc.Save(context.Background(), "", req)
	assert.ErrorAs(t, err, &ve)

	req = saveRequest("x")
	req.Hook = nil
	_, err = svc.Save(context.Background(), "", req)
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Save(context.Background(), "", saveRequest())
	assert.ErrorAs(t, err, &ve)
}

func TestSaveRejectsOutOfBoundsSlideshows(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, nil)
	var ve *errs.ValidationError

	req := saveRequest("x")
	req.Hook = &models.Hook{Text: "   "}
	_, err := svc.Save(context.Background(), "", req)
	assert.ErrorAs(t, err, &ve)

	req = saveRequest("x", "y")
	req.Slides[0].Duration = 500
	_, err = svc.Save(context.Background(), "", req)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "slides", ve.Field)

	req = saveRequest("x", "y")
	req.Slides[1].Duration = 0
	_, err = svc.Save(context.Background(), "", req)
	assert.ErrorAs(t, err, &ve)

	req = saveRequest(make([]string, models.MaxSlides+1)...)
	_, err = svc.Save(context.Background(), "", req)
	assert.ErrorAs(t, err, &ve)

	// demo mode applies the same limits
	_, err = NewService(nil, nil, nil).Save(context.Background(), "", req)
	assert.ErrorAs(t, err, &ve)

	assert.Empty(t, store.inserted)

	req = saveRequest(make([]string, models.MaxSlides)...)
	rec, err := svc.Save(context.Background(), "", req)
	require.NoError(t, err)
	assert.Equal(t, 3*models.MaxSlides, rec.TotalDuration)
}

func TestSaveInsertError(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("connection refused")}, nil, nil)
	_, err := svc.Save(context.Background(), "", saveRequest(""))
	assert.ErrorContains(t, err, "failed to save slideshow")
}

func TestList(t *testing.T) {
	res, err := NewService(nil, nil, nil).List(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Videos)
	assert.NotEmpty(t, res.Message)

	store := &fakeStore{}
	svc := NewService(store, nil, nil)
	_, err = svc.Save(context.Background(), "owner-1", saveRequest(""))
	require.NoError(t, err)

	res, err = svc.List(context.Background(), "owner-1", 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, storage.ListQuery{OwnerID: "owner-1", Kind: models.KindSlideshow, Limit: 5, Offset: 10}, store.query)
}

func TestDownloader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.webp":
			w.Header().Set("Content-Type", "image/webp")
			w.Write([]byte("webp-bytes"))
		case "/big.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte(strings.Repeat("x", 64)))
		case "/octet":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("raw"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	d := NewDownloader(5*time.Second, 32)
	ctx := context.Background()

	file, err := d.Fetch(ctx, server.URL+"/ok.webp")
	require.NoError(t, err)
	assert.Equal(t, []byte("webp-bytes"), file.Body)
	assert.Equal(t, "image/webp", file.ContentType)

	file, err = d.Fetch(ctx, server.URL+"/octet")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", file.ContentType)

	_, err = d.Fetch(ctx, server.URL+"/big.png")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = d.Fetch(ctx, server.URL+"/missing")
	assert.ErrorContains(t, err, "unexpected status code 404")
}
