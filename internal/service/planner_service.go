package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/planner"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

const (
	plannerCachePrefix = "planner:auto"
	defaultMaxDays     = 400
)

// LoadedCatalog is a stored catalog assembled into its subject graph.
type LoadedCatalog struct {
	ID      string
	MinDate planner.Date
	MaxDate planner.Date
	Graph   planner.Catalog
}

type catalogLoader interface {
	Load(ctx context.Context, id string) (*LoadedCatalog, error)
}

type planCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type plannerMetrics interface {
	ObservePlannerRun(mode, outcome string, duration time.Duration, candidates int)
}

// PlannerServiceConfig tunes planner runs.
type PlannerServiceConfig struct {
	// Threshold is the overlap budget of auto runs. Zero admits only
	// conflict-free assignments; negative values use DefaultThreshold.
	Threshold     int
	SearchTimeout time.Duration
	MaxSubjects   int
	MaxDays       int
	CacheTTL      time.Duration
}

// PlannerServiceParams wires the planner service.
type PlannerServiceParams struct {
	Catalogs  catalogLoader
	Cache     planCache
	Metrics   plannerMetrics
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    PlannerServiceConfig
}

// PlannerService resolves requests into subject graphs and runs the planner
// on them.
type PlannerService struct {
	catalogs  catalogLoader
	cache     planCache
	metrics   plannerMetrics
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PlannerServiceConfig
}

// NewPlannerService constructs a PlannerService. Catalogs, Cache and Metrics
// may be nil.
func NewPlannerService(params PlannerServiceParams) *PlannerService {
	cfg := params.Config
	if cfg.Threshold < 0 {
		cfg.Threshold = planner.DefaultThreshold
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 10 * time.Second
	}
	if cfg.MaxSubjects <= 0 {
		cfg.MaxSubjects = 12
	}
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = defaultMaxDays
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		catalogs:  params.Catalogs,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// resolvedPlan is a request turned into planner inputs.
type resolvedPlan struct {
	catalog  planner.Catalog
	window   dto.DateWindow
	dates    []planner.Date
	sessions planner.SessionAxis
	current  planner.Grid
}

// Manual renders the grid for the caller's current selections.
func (s *PlannerService) Manual(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	start := time.Now()
	plan, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	result := planner.Manual(planner.Request{
		Catalog:  plan.catalog,
		Dates:    plan.dates,
		Sessions: plan.sessions,
		Grid:     plan.current,
	})
	outcome := "clean"
	if result.IsConflict {
		outcome = "conflict"
	}
	s.observe(models.PlanModeManual, outcome, time.Since(start), 0)
	return buildPlanResponse(models.PlanModeManual, result, plan, planner.BandNone), nil
}

// Auto picks one class per displayed subject and renders the result. The
// boolean reports whether the response came from cache.
func (s *PlannerService) Auto(ctx context.Context, req dto.AutoPlanRequest) (*dto.PlanResponse, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid auto plan payload")
	}
	band, err := planner.ParseBand(req.Band)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "band must be one of none, morning, afternoon, evening")
	}

	cacheKey, err := s.cacheKey(req)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fingerprint request")
	}
	if cached, hit := s.tryCache(ctx, cacheKey); hit {
		return cached, true, nil
	}

	start := time.Now()
	plan, err := s.resolve(ctx, req.PlanRequest)
	if err != nil {
		return nil, false, err
	}
	if displayed := len(plan.catalog.Displayed()); displayed > s.cfg.MaxSubjects {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("auto scheduling supports at most %d displayed subjects, got %d", s.cfg.MaxSubjects, displayed))
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()
	result, err := planner.Auto(searchCtx, planner.AutoRequest{
		Request: planner.Request{
			Catalog:  plan.catalog,
			Dates:    plan.dates,
			Sessions: plan.sessions,
			Grid:     plan.current,
		},
		Band:        band,
		CyclicIndex: req.CyclicIndex,
		Threshold:   s.cfg.Threshold,
	})
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			s.observe(models.PlanModeAuto, "timeout", duration, 0)
			s.logger.Warn("auto plan search timed out", zap.Duration("timeout", s.cfg.SearchTimeout), zap.Int("subjects", len(plan.catalog.Displayed())))
			return nil, false, appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, "auto scheduling did not finish in time; display fewer subjects")
		}
		s.observe(models.PlanModeAuto, "cancelled", duration, 0)
		return nil, false, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "auto scheduling was cancelled")
	}

	outcome := "found"
	if !result.Found {
		outcome = "not_found"
	}
	s.observe(models.PlanModeAuto, outcome, duration, result.Candidates)

	resp := buildPlanResponse(models.PlanModeAuto, result, plan, band)
	s.persistCache(ctx, cacheKey, resp)
	return resp, false, nil
}

func (s *PlannerService) resolve(ctx context.Context, req dto.PlanRequest) (*resolvedPlan, error) {
	hasCatalog := req.CatalogID != ""
	hasGraph := len(req.Majors) > 0
	if hasCatalog == hasGraph {
		return nil, appErrors.Clone(appErrors.ErrValidation, "provide exactly one of catalogId or majors")
	}

	var (
		catalog  planner.Catalog
		from, to planner.Date
		hasSpan  bool
	)
	if hasCatalog {
		if s.catalogs == nil {
			return nil, appErrors.Clone(appErrors.ErrUnavailable, "catalog store is disabled; send majors inline")
		}
		loaded, err := s.catalogs.Load(ctx, req.CatalogID)
		if err != nil {
			return nil, err
		}
		catalog, from, to, hasSpan = loaded.Graph, loaded.MinDate, loaded.MaxDate, true
	} else {
		catalog = catalogFromPayload(req.Majors)
		if err := validateCatalog(catalog); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		from, to, hasSpan = catalogSpan(catalog)
	}

	catalog, err := applySelections(catalog, req.Selections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if req.Dates != nil {
		from, to, hasSpan = req.Dates.From, req.Dates.To, true
	}
	if !hasSpan {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dates are required when no class has a schedule")
	}
	if to < from {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dates.to must not precede dates.from")
	}
	if days := int(to-from) + 1; days > s.cfg.MaxDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range spans %d days; at most %d are supported", days, s.cfg.MaxDays))
	}

	sessions, err := planner.SessionAxis(req.Sessions).Normalize()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	dates := planner.DateRange(from, to)
	return &resolvedPlan{
		catalog:  catalog,
		window:   dto.DateWindow{From: from, To: to},
		dates:    dates,
		sessions: sessions,
		current:  gridFromCells(req.Grid, dates, sessions),
	}, nil
}

func buildPlanResponse(mode models.PlanMode, result planner.Result, plan *resolvedPlan, band planner.Band) *dto.PlanResponse {
	resp := &dto.PlanResponse{
		Mode:          string(mode),
		Found:         result.Found,
		IsConflict:    result.IsConflict,
		ConflictSlots: len(result.Grid.Conflicts()),
		Overlap:       result.Overlap,
		Candidates:    result.Candidates,
		Index:         result.Index,
		Dates:         plan.window,
		Sessions:      append([]int(nil), plan.sessions...),
		Grid:          cellsFromGrid(result.Grid),
		Majors:        payloadFromCatalog(result.Catalog),
		Assignment:    assignmentPayload(result.Assignment),
	}
	if mode == models.PlanModeAuto {
		resp.Band = band.String()
	}
	return resp
}

// cacheKey fingerprints the request together with the overlap budget. Stored
// catalogs are immutable, so the id stands in for their content; the id is
// kept in clear so a deleted catalog's entries can be dropped by pattern.
func (s *PlannerService) cacheKey(req dto.AutoPlanRequest) (string, error) {
	if s.cache == nil {
		return "", nil
	}
	payload, err := json.Marshal(struct {
		Threshold int                 `json:"threshold"`
		Request   dto.AutoPlanRequest `json:"request"`
	}{Threshold: s.cfg.Threshold, Request: req})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	scope := req.CatalogID
	if scope == "" {
		scope = "inline"
	}
	return fmt.Sprintf("%s:%s:%s", plannerCachePrefix, scope, hex.EncodeToString(sum[:])), nil
}

// CatalogCachePattern matches every cached auto plan built from catalogID.
func CatalogCachePattern(catalogID string) string {
	return fmt.Sprintf("%s:%s:*", plannerCachePrefix, catalogID)
}

func (s *PlannerService) tryCache(ctx context.Context, key string) (*dto.PlanResponse, bool) {
	if s.cache == nil || key == "" {
		return nil, false
	}
	var cached dto.PlanResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("planner cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return &cached, true
}

func (s *PlannerService) persistCache(ctx context.Context, key string, value *dto.PlanResponse) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("planner cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *PlannerService) observe(mode models.PlanMode, outcome string, duration time.Duration, candidates int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObservePlannerRun(string(mode), outcome, duration, candidates)
}
