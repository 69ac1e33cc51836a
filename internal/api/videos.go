package api

import (
	"strings"

	"github.com/bilgisen/adforge/internal/avatar"
	"github.com/bilgisen/adforge/internal/dashboard"
	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/middleware"
	"github.com/bilgisen/adforge/internal/models"
	"github.com/bilgisen/adforge/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const defaultVideoLimit = 50

type videosQuery struct {
	Status    string `query:"status"`
	Search    string `query:"search"`
	Sort      string `query:"sort"`
	Direction string `query:"direction"`
	Limit     int    `query:"limit" validate:"omitempty,min=1"`
}

type createVideoRequest struct {
	Title           string        `json:"title" validate:"notblank"`
	Prompt          string        `json:"prompt"`
	VideoURL        string        `json:"video_url" validate:"omitempty,url"`
	ThumbnailURL    string        `json:"thumbnail_url" validate:"omitempty,url"`
	Status          models.Status `json:"status" validate:"omitempty,oneof=pending processing completed failed"`
	VideoType       models.Kind   `json:"video_type" validate:"omitempty,oneof=slideshow avatar_video meme"`
	ProductName     string        `json:"product_name"`
	ProductPrice    string        `json:"product_price"`
	ProductLink     string        `json:"product_link" validate:"omitempty,url"`
	ProductBenefits []string      `json:"product_benefits"`
	BrandColors     []string      `json:"brand_colors"`
}

type bulkRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1"`
	Action string   `json:"action"`
}

type analyticsQuery struct {
	Top int `query:"top" validate:"omitempty,min=1,max=50"`
}

// GenerateVideo handles POST /api/generate
func (h *Handlers) GenerateVideo(c *fiber.Ctx) error {
	if h.svc.Videos == nil {
		return notConfigured("Avatar video generation")
	}
	var req avatar.StartRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}

	res, err := h.svc.Videos.Start(c.UserContext(), middleware.Owner(c), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"videoId":       res.VideoID,
		"providerJobId": res.ProviderJobID,
		"status":        res.Status,
	})
}

// VideoStatus handles GET /api/videos/:id/status
func (h *Handlers) VideoStatus(c *fiber.Ctx) error {
	if h.svc.Poller == nil {
		return errs.ErrStoreUnavailable
	}
	view, err := h.svc.Poller.Status(c.UserContext(), c.Params("id"), middleware.Owner(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// ListVideos handles GET /api/videos
func (h *Handlers) ListVideos(c *fiber.Ctx) error {
	store, err := h.store()
	if err != nil {
		return err
	}
	var q videosQuery
	if err := middleware.BindQuery(c, &q); err != nil {
		return err
	}
	sort, err := dashboard.ParseSort(q.Sort, q.Direction)
	if err != nil {
		return err
	}
	statuses, err := parseStatuses(q.Status)
	if err != nil {
		return err
	}

	query := storage.ListQuery{OwnerID: middleware.Owner(c), Limit: q.Limit}
	if query.Limit == 0 {
		query.Limit = defaultVideoLimit
	}
	if len(statuses) == 1 {
		query.Status = statuses[0]
	}

	records, _, err := store.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	records = dashboard.Sort(dashboard.Filter(records, dashboard.Criteria{
		Search:   q.Search,
		Statuses: statuses,
	}), sort)

	return c.JSON(fiber.Map{
		"videos": records,
		"total":  len(records),
		"sort":   sort,
	})
}

// CreateVideo handles POST /api/videos
func (h *Handlers) CreateVideo(c *fiber.Ctx) error {
	store, err := h.store()
	if err != nil {
		return err
	}
	var req createVideoRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if req.VideoType == "" {
		req.VideoType = models.KindAvatarVideo
	}

	rec := &models.ContentRecord{
		OwnerID:         models.StringPtr(middleware.Owner(c)),
		Title:           strings.TrimSpace(req.Title),
		Prompt:          req.Prompt,
		Status:          req.Status,
		Kind:            req.VideoType,
		MediaURL:        models.StringPtr(req.VideoURL),
		ThumbnailURL:    models.StringPtr(req.ThumbnailURL),
		ProductName:     models.StringPtr(req.ProductName),
		ProductPrice:    models.StringPtr(req.ProductPrice),
		ProductLink:     models.StringPtr(req.ProductLink),
		ProductBenefits: req.ProductBenefits,
		BrandColors:     req.BrandColors,
	}
	if err := store.Insert(c.UserContext(), rec); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"video": rec})
}

// GetVideo handles GET /api/videos/:id
func (h *Handlers) GetVideo(c *fiber.Ctx) error {
	store, err := h.store()
	if err != nil {
		return err
	}
	rec, err := store.Get(c.UserContext(), c.Params("id"), middleware.Owner(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"video": rec})
}

// DeleteVideos handles DELETE /api/videos/bulk
func (h *Handlers) DeleteVideos(c *fiber.Ctx) error {
	store, err := h.store()
	if err != nil {
		return err
	}
	var req bulkRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}

	sel := dashboard.NewSelection(req.IDs...)
	deleted, err := store.DeleteMany(c.UserContext(), middleware.Owner(c), sel.IDs())
	if err != nil {
		return err
	}

	logger.Component("api").Info().
		Str("owner", middleware.Owner(c)).
		Int("requested", sel.Count()).
		Int64("deleted", deleted).
		Msg("Videos deleted")

	return c.JSON(fiber.Map{
		"success": true,
		"deleted": deleted,
	})
}

// BulkAction handles POST /api/videos/bulk. Only export is supported.
func (h *Handlers) BulkAction(c *fiber.Ctx) error {
	store, err := h.store()
	if err != nil {
		return err
	}
	var req bulkRequest
	if err := middleware.BindBody(c, &req); err != nil {
		return err
	}
	if req.Action != "export" {
		return errs.Invalid("action", "Invalid action")
	}

	sel := dashboard.NewSelection(req.IDs...)
	records, err := store.GetMany(c.UserContext(), middleware.Owner(c), sel.IDs())
	if err != nil {
		return err
	}
	videos := sel.Selected(records)

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(videos),
		"videos":  videos,
	})
}

// Analytics handles GET /api/analytics
func (h *Handlers) Analytics(c *fiber.Ctx) error {
	store, err := h.store()
	if err != nil {
		return err
	}
	var q analyticsQuery
	if err := middleware.BindQuery(c, &q); err != nil {
		return err
	}

	var all []models.ContentRecord
	query := storage.ListQuery{OwnerID: middleware.Owner(c), Limit: storage.MaxLimit}
	for {
		page, total, err := store.List(c.UserContext(), query)
		if err != nil {
			return err
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			break
		}
		query.Offset += len(page)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"summary": dashboard.Summarize(all, q.Top),
	})
}

func (h *Handlers) store() (storage.ContentStore, error) {
	if h.svc.Store == nil {
		return nil, errs.ErrStoreUnavailable
	}
	return h.svc.Store, nil
}

func parseStatuses(raw string) ([]models.Status, error) {
	var out []models.Status
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s := models.Status(part)
		switch s {
		case models.StatusPending, models.StatusProcessing, models.StatusCompleted, models.StatusFailed:
			out = append(out, s)
		default:
			return nil, errs.Invalid("status", "unknown status %q", part)
		}
	}
	return out, nil
}
