package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/planner"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type catalogStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, catalog *models.Catalog) error
	InsertEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.CatalogEntry) error
	InsertSegments(ctx context.Context, exec sqlx.ExtContext, segments []models.CatalogSegment) error
	List(ctx context.Context, limit, offset int) ([]models.CatalogSummary, int, error)
	FindByID(ctx context.Context, id string) (*models.Catalog, error)
	ListEntries(ctx context.Context, catalogID string) ([]models.CatalogEntry, error)
	ListSegments(ctx context.Context, catalogID string) ([]models.CatalogSegment, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// CatalogServiceParams wires the catalog service.
type CatalogServiceParams struct {
	Repo      catalogStore
	Tx        txProvider
	Cache     cacheInvalidator
	Metrics   queryObserver
	Validator *validator.Validate
	Logger    *zap.Logger
}

// CatalogService imports ETL output and assembles stored catalogs into
// subject graphs.
type CatalogService struct {
	repo      catalogStore
	tx        txProvider
	cache     cacheInvalidator
	metrics   queryObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(params CatalogServiceParams) *CatalogService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		repo:      params.Repo,
		tx:        params.Tx,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
	}
}

// Import stores the ETL document. Map keys are walked in sorted order so the
// stored positions are deterministic.
func (s *CatalogService) Import(ctx context.Context, req dto.CatalogImportRequest, actorID string) (*dto.CatalogDetailResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog payload")
	}

	catalog := &models.Catalog{
		Title:     req.Title,
		MinDate:   req.MinDate,
		MaxDate:   req.MaxDate,
		CreatedBy: actorID,
		CreatedAt: time.Now().UTC(),
	}
	entries, segments, err := flattenImport(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repo.Create(ctx, tx, catalog); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create catalog")
	}
	for i := range entries {
		entries[i].CatalogID = catalog.ID
	}
	for i := range segments {
		segments[i].CatalogID = catalog.ID
	}
	if err = s.repo.InsertEntries(ctx, tx, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store catalog entries")
	}
	if err = s.repo.InsertSegments(ctx, tx, segments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store catalog segments")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit catalog")
	}

	graph := assembleGraph(entries, segments)
	s.logger.Info("catalog imported",
		zap.String("catalog_id", catalog.ID),
		zap.String("title", catalog.Title),
		zap.Int("entries", len(entries)),
		zap.Int("segments", len(segments)),
	)
	return detailResponse(summarize(*catalog, entries), graph), nil
}

// List pages through stored catalogs.
func (s *CatalogService) List(ctx context.Context, query dto.CatalogQuery) ([]dto.CatalogSummaryResponse, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = 20
	}
	rows, total, err := s.repo.List(ctx, size, (page-1)*size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list catalogs")
	}
	items := make([]dto.CatalogSummaryResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, summaryResponse(row))
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a catalog with its subject graph.
func (s *CatalogService) Get(ctx context.Context, id string) (*dto.CatalogDetailResponse, error) {
	catalog, entries, segments, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return detailResponse(summarize(*catalog, entries), assembleGraph(entries, segments)), nil
}

// Load assembles a stored catalog for the planner.
func (s *CatalogService) Load(ctx context.Context, id string) (*LoadedCatalog, error) {
	start := time.Now()
	catalog, entries, segments, err := s.fetch(ctx, id)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("catalog_load", time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return &LoadedCatalog{
		ID:      catalog.ID,
		MinDate: catalog.MinDate,
		MaxDate: catalog.MaxDate,
		Graph:   assembleGraph(entries, segments),
	}, nil
}

// Delete removes a catalog and drops the auto plans cached for it.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.repo.Delete(ctx, tx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "catalog not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete catalog")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit catalog delete")
	}
	if s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, CatalogCachePattern(id)); cacheErr != nil {
			s.logger.Warn("failed to invalidate cached plans", zap.String("catalog_id", id), zap.Error(cacheErr))
		}
	}
	s.logger.Info("catalog deleted", zap.String("catalog_id", id))
	return nil
}

func (s *CatalogService) fetch(ctx context.Context, id string) (*models.Catalog, []models.CatalogEntry, []models.CatalogSegment, error) {
	catalog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, "catalog not found")
		}
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}
	entries, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog entries")
	}
	segments, err := s.repo.ListSegments(ctx, id)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog segments")
	}
	return catalog, entries, segments, nil
}

// flattenImport turns the nested ETL maps into rows. Segments are stored
// once per (subject, class code); when cohorts disagree on a class's
// schedule the first cohort in sorted order wins.
func flattenImport(req dto.CatalogImportRequest) ([]models.CatalogEntry, []models.CatalogSegment, error) {
	var (
		entries  []models.CatalogEntry
		segments []models.CatalogSegment
	)
	stored := make(map[classKey]bool)
	for _, major := range sortedKeys(req.Majors) {
		if major == "" {
			return nil, nil, fmt.Errorf("major name must not be empty")
		}
		subjects := req.Majors[major]
		for _, subject := range sortedKeys(subjects) {
			if subject == "" {
				return nil, nil, fmt.Errorf("%s: subject name must not be empty", major)
			}
			classes := subjects[subject]
			for _, code := range sortedKeys(classes) {
				if code == "" {
					return nil, nil, fmt.Errorf("%s / %s: class code must not be empty", major, subject)
				}
				class := classes[code]
				entries = append(entries, models.CatalogEntry{
					Position:  len(entries),
					Major:     major,
					Subject:   subject,
					ClassCode: code,
					Teacher:   class.Teacher,
				})
				key := classKey{subject: subject, code: code}
				if stored[key] {
					continue
				}
				stored[key] = true
				for _, sched := range class.Schedules {
					seg := planner.Segment{
						StartDate:    sched.StartDate,
						EndDate:      sched.EndDate,
						Weekday:      sched.DayOfWeekStandard,
						StartSession: sched.StartSession,
						EndSession:   sched.EndSession,
					}
					if err := seg.Validate(); err != nil {
						return nil, nil, fmt.Errorf("%s / %s / %s: %w", major, subject, code, err)
					}
					segments = append(segments, models.CatalogSegment{
						Subject:      subject,
						ClassCode:    code,
						Position:     len(segments),
						StartDate:    seg.StartDate,
						EndDate:      seg.EndDate,
						Weekday:      seg.Weekday,
						StartSession: seg.StartSession,
						EndSession:   seg.EndSession,
					})
				}
			}
		}
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("catalog has no classes")
	}
	return entries, segments, nil
}

// assembleGraph rebuilds the cohort -> subject -> class graph from stored
// rows, following entry positions. Nothing is displayed or selected.
func assembleGraph(entries []models.CatalogEntry, segments []models.CatalogSegment) planner.Catalog {
	ordered := append([]models.CatalogEntry(nil), entries...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	blocks := make(map[classKey][]planner.Segment)
	sortedSegments := append([]models.CatalogSegment(nil), segments...)
	sort.SliceStable(sortedSegments, func(i, j int) bool { return sortedSegments[i].Position < sortedSegments[j].Position })
	for _, seg := range sortedSegments {
		key := classKey{subject: seg.Subject, code: seg.ClassCode}
		blocks[key] = append(blocks[key], planner.Segment{
			StartDate:    seg.StartDate,
			EndDate:      seg.EndDate,
			Weekday:      seg.Weekday,
			StartSession: seg.StartSession,
			EndSession:   seg.EndSession,
		})
	}

	var catalog planner.Catalog
	majorIdx := make(map[string]int)
	subjectIdx := make(map[string]map[string]int)
	for _, entry := range ordered {
		mi, ok := majorIdx[entry.Major]
		if !ok {
			mi = len(catalog.Majors)
			majorIdx[entry.Major] = mi
			subjectIdx[entry.Major] = make(map[string]int)
			catalog.Majors = append(catalog.Majors, planner.Major{Name: entry.Major})
		}
		major := &catalog.Majors[mi]
		si, ok := subjectIdx[entry.Major][entry.Subject]
		if !ok {
			si = len(major.Subjects)
			subjectIdx[entry.Major][entry.Subject] = si
			major.Subjects = append(major.Subjects, planner.Subject{Name: entry.Subject})
		}
		subject := &major.Subjects[si]
		subject.Classes = append(subject.Classes, planner.ClassOption{
			SubjectName: entry.Subject,
			ClassCode:   entry.ClassCode,
			Teacher:     entry.Teacher,
			Segments:    append([]planner.Segment(nil), blocks[classKey{subject: entry.Subject, code: entry.ClassCode}]...),
		})
	}
	linkSharedClasses(&catalog)
	return catalog
}

func summarize(catalog models.Catalog, entries []models.CatalogEntry) models.CatalogSummary {
	majors := make(map[string]struct{})
	subjects := make(map[string]struct{})
	classes := make(map[classKey]struct{})
	for _, entry := range entries {
		majors[entry.Major] = struct{}{}
		subjects[entry.Subject] = struct{}{}
		classes[classKey{subject: entry.Subject, code: entry.ClassCode}] = struct{}{}
	}
	return models.CatalogSummary{Catalog: catalog, Majors: len(majors), Subjects: len(subjects), Classes: len(classes)}
}

func summaryResponse(summary models.CatalogSummary) dto.CatalogSummaryResponse {
	return dto.CatalogSummaryResponse{
		ID:        summary.ID,
		Title:     summary.Title,
		MinDate:   summary.MinDate,
		MaxDate:   summary.MaxDate,
		Majors:    summary.Majors,
		Subjects:  summary.Subjects,
		Classes:   summary.Classes,
		CreatedBy: summary.CreatedBy,
		CreatedAt: summary.CreatedAt,
	}
}

func detailResponse(summary models.CatalogSummary, graph planner.Catalog) *dto.CatalogDetailResponse {
	return &dto.CatalogDetailResponse{
		CatalogSummaryResponse: summaryResponse(summary),
		Graph:                  payloadFromCatalog(graph),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
