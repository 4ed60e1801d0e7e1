// Package handlers exposes the game data over HTTP.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/latoulicious/vtmsu/internal/jobs"
	"github.com/latoulicious/vtmsu/internal/version"
	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/latoulicious/vtmsu/pkg/hunting"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"github.com/latoulicious/vtmsu/pkg/notify"
)

const (
	defaultPostLimit = 20
	maxPostLimit     = 100
)

// JobRunner is the part of the scheduler the API exposes
type JobRunner interface {
	Status() []jobs.Status
	RunNow(ctx context.Context, name string) error
}

// Handler serves every route of the API
type Handler struct {
	manager    *database.DatabaseManager
	factions   *repository.FactionRepository
	traits     *repository.TraitRepository
	rules      *repository.RuleRepository
	posts      *repository.PostRepository
	products   *repository.ProductRepository
	characters *repository.CharacterRepository
	hunting    *repository.HuntingRepository
	recorder   *hunting.Recorder
	notifier   notify.Notifier
	jobs       JobRunner
	logger     logging.Logger
	started    time.Time
	now        func() time.Time
}

// Option configures a Handler
type Option func(*Handler)

// WithNotifier sets the notifier told about verified characters
func WithNotifier(n notify.Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// WithJobs exposes the scheduler on /status and the admin routes
func WithJobs(j JobRunner) Option {
	return func(h *Handler) { h.jobs = j }
}

// WithRecorder replaces the hunt recorder
func WithRecorder(r *hunting.Recorder) Option {
	return func(h *Handler) { h.recorder = r }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates the API handler on top of manager's connection
func NewHandler(manager *database.DatabaseManager, opts ...Option) *Handler {
	db := manager.DB()
	h := &Handler{
		manager:    manager,
		factions:   repository.NewFactionRepository(db),
		traits:     repository.NewTraitRepository(db),
		rules:      repository.NewRuleRepository(db),
		posts:      repository.NewPostRepository(db),
		products:   repository.NewProductRepository(db),
		characters: repository.NewCharacterRepository(db),
		hunting:    repository.NewHuntingRepository(db),
		notifier:   notify.NopNotifier{},
		logger:     logging.GetGlobalLoggerFactory().CreateLogger("http"),
		started:    time.Now(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.recorder == nil {
		h.recorder = hunting.NewRecorder(db, hunting.WithNotifier(h.notifier), hunting.WithClock(h.now))
	}
	return h
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Database bool   `json:"database_connected"`
}

// Health pings the database
func (h *Handler) Health(c echo.Context) error {
	resp := HealthResponse{
		Status:   "healthy",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Database: true,
	}
	if err := h.manager.Ping(c.Request().Context()); err != nil {
		h.logger.Warn("Health check failed", map[string]interface{}{"error": err.Error()})
		resp.Status = "unhealthy"
		resp.Database = false
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// StatusResponse is returned by /status
type StatusResponse struct {
	Application string           `json:"application"`
	Version     version.Info     `json:"version"`
	Uptime      string           `json:"uptime"`
	StartTime   time.Time        `json:"start_time"`
	Database    DatabaseStatus   `json:"database"`
	Jobs        []jobs.Status    `json:"jobs,omitempty"`
	Tables      map[string]int64 `json:"tables,omitempty"`
}

// DatabaseStatus describes the connection pool
type DatabaseStatus struct {
	Dialect         string `json:"dialect"`
	Version         string `json:"version"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
}

// Status reports versions, pool statistics, table sizes and job schedules
func (h *Handler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	dbVersion, err := h.manager.Version(ctx)
	if err != nil {
		return apiError(err)
	}
	stats, err := h.manager.Stats()
	if err != nil {
		return apiError(err)
	}
	tables, err := h.manager.GetTableStats(ctx)
	if err != nil {
		return apiError(err)
	}

	resp := StatusResponse{
		Application: "vtmsu",
		Version:     version.Get(),
		Uptime:      time.Since(h.started).Round(time.Second).String(),
		StartTime:   h.started.UTC(),
		Database: DatabaseStatus{
			Dialect:         h.manager.DB().Dialector.Name(),
			Version:         dbVersion,
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
		},
		Tables: tables,
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs.Status()
	}
	return c.JSON(http.StatusOK, resp)
}

// ListFactions returns the factions players may see
func (h *Handler) ListFactions(c echo.Context) error {
	factions, err := h.factions.VisibleFactions(c.Request().Context())
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, factions)
}

// ListFactionClans returns the clans of a faction
func (h *Handler) ListFactionClans(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.factions.GetFaction(ctx, id); err != nil {
		return apiError(err)
	}
	clans, err := h.factions.ClansOfFaction(ctx, id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, clans)
}

// ListClans returns the clans players may see
func (h *Handler) ListClans(c echo.Context) error {
	clans, err := h.factions.VisibleClans(c.Request().Context())
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, clans)
}

// ClanAbilities returns the abilities available to a clan
func (h *Handler) ClanAbilities(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.factions.GetClan(ctx, id); err != nil {
		return apiError(err)
	}
	abilities, err := h.traits.AbilitiesForClan(ctx, id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, abilities)
}

// ClanFeatures returns the features available to a clan
func (h *Handler) ClanFeatures(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.factions.GetClan(ctx, id); err != nil {
		return apiError(err)
	}
	features, err := h.traits.FeaturesForClan(ctx, id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, features)
}

// ListRules returns the rules in reading order, optionally of one category
func (h *Handler) ListRules(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		rules []models.Rule
		err   error
	)
	if raw := c.QueryParam("category"); raw != "" {
		category, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return badRequest("category must be an integer")
		}
		rules, err = h.rules.ListByCategory(ctx, category)
	} else {
		rules, err = h.rules.ListOrdered(ctx)
	}
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, rules)
}

// ListPosts returns the latest posts
func (h *Handler) ListPosts(c echo.Context) error {
	limit := defaultPostLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return badRequest("limit must be a positive integer")
		}
		limit = min(n, maxPostLimit)
	}

	posts, err := h.posts.Latest(c.Request().Context(), limit)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// ListProducts returns the shop catalog
func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.products.List(c.Request().Context())
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct returns one product with its images
func (h *Handler) GetProduct(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.Request().Context(), id)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, product)
}

// ListInstances returns the live hunting instances, optionally of one ground
func (h *Handler) ListInstances(c echo.Context) error {
	var groundID *int
	if raw := c.QueryParam("ground"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest("ground must be an integer")
		}
		groundID = &id
	}

	instances, err := h.hunting.LiveInstances(c.Request().Context(), groundID, h.now())
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, instances)
}

// HuntRequest is the body of POST /api/hunts
type HuntRequest struct {
	CharacterID int    `json:"characterId" validate:"required,gt=0"`
	CreatedByID string `json:"createdById" validate:"required,max=255"`
	InstanceID  *int   `json:"instanceId" validate:"omitempty,gt=0"`
	Status      string `json:"status" validate:"required"`
}

// HuntResponse is returned once a hunt is recorded
type HuntResponse struct {
	Hunt        *models.Hunt               `json:"hunt"`
	Instance    *models.HuntingInstance    `json:"instance,omitempty"`
	Description *models.HuntingDescription `json:"description,omitempty"`
}

// RecordHunt stores a hunt and applies it to its instance
func (h *Handler) RecordHunt(c echo.Context) error {
	var req HuntRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	status, err := models.ParseHuntStatus(req.Status)
	if err != nil {
		return apiError(err)
	}

	result, err := h.recorder.Record(c.Request().Context(), hunting.HuntInput{
		CharacterID: req.CharacterID,
		CreatedByID: req.CreatedByID,
		InstanceID:  req.InstanceID,
		Status:      status,
	})
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusCreated, HuntResponse{
		Hunt:        result.Hunt,
		Instance:    result.Instance,
		Description: result.Description,
	})
}

// VerifyCharacter accepts a submitted character and announces it
func (h *Handler) VerifyCharacter(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if err := h.characters.Verify(ctx, id); err != nil {
		return apiError(err)
	}
	character, err := h.characters.Get(ctx, id)
	if err != nil {
		return apiError(err)
	}

	if err := h.notifier.CharacterVerified(ctx, character); err != nil {
		h.logger.Warn("Failed to announce verified character", map[string]interface{}{
			"character_id": id,
			"error":        err.Error(),
		})
	}
	return c.JSON(http.StatusOK, character)
}

// RunJob runs a scheduled job immediately
func (h *Handler) RunJob(c echo.Context) error {
	if h.jobs == nil {
		return apiError(jobs.ErrUnknownJob)
	}
	if err := h.jobs.RunNow(c.Request().Context(), c.Param("name")); err != nil {
		return apiError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func intParam(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, badRequest(name + " must be a positive integer")
	}
	return id, nil
}
