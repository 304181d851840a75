package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ntholi/registry-web/internal/dto"
	"github.com/ntholi/registry-web/internal/eligibility"
	"github.com/ntholi/registry-web/internal/models"
	appErrors "github.com/ntholi/registry-web/pkg/errors"
)

type studentRecordReader interface {
	AcademicGraph(ctx context.Context, stdNo int64) (*models.Student, error)
}

type structureReader interface {
	Exists(ctx context.Context, structureID int64) (bool, error)
	ModuleCatalog(ctx context.Context, structureID int64, upTo int) ([]models.ModuleCatalogEntry, error)
}

type prerequisiteReader interface {
	Relation(ctx context.Context) ([]models.Prerequisite, error)
}

type termReader interface {
	Current(ctx context.Context) (*models.Term, error)
}

const prerequisiteCacheKey = "registry:prerequisites"

// RegistrationServiceConfig tunes eligibility policy, caching and batch evaluation.
type RegistrationServiceConfig struct {
	Policy                eligibility.Policy
	RemainFailedThreshold int
	CatalogTTL            time.Duration
	BatchWorkers          int
	BatchMax              int
}

// RegistrationServiceParams groups constructor dependencies.
type RegistrationServiceParams struct {
	Students      studentRecordReader
	Structures    structureReader
	Prerequisites prerequisiteReader
	Terms         termReader
	Cache         *CacheService
	Metrics       *MetricsService
	Validator     *validator.Validate
	Logger        *zap.Logger
	Config        RegistrationServiceConfig
}

// RegistrationService loads academic snapshots and runs the eligibility engine over them.
type RegistrationService struct {
	students      studentRecordReader
	structures    structureReader
	prerequisites prerequisiteReader
	terms         termReader
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	resolver      *eligibility.Resolver
	cfg           RegistrationServiceConfig
}

// curriculum is the student-independent input of an eligibility decision.
type curriculum struct {
	structureID  int64
	semester     int
	termSemester int
	catalog      []models.ModuleCatalogEntry
	relation     []models.Prerequisite
	cacheHit     bool
}

// NewRegistrationService constructs a RegistrationService with sane defaults.
func NewRegistrationService(params RegistrationServiceParams) *RegistrationService {
	cfg := params.Config
	if cfg.RemainFailedThreshold <= 0 {
		cfg.RemainFailedThreshold = 3
	}
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = 30 * time.Minute
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 4
	}
	if cfg.BatchMax <= 0 {
		cfg.BatchMax = 500
	}
	resolver := eligibility.NewResolver(cfg.Policy)
	cfg.Policy = resolver.Policy()

	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		students:      params.Students,
		structures:    params.Structures,
		prerequisites: params.Prerequisites,
		terms:         params.Terms,
		cache:         params.Cache,
		metrics:       params.Metrics,
		validator:     validate,
		logger:        logger,
		resolver:      resolver,
		cfg:           cfg,
	}
}

// FailedModules lists the failing attempts recorded for the student in the given
// semester-of-study. Later passes of the same module are not taken into account.
func (s *RegistrationService) FailedModules(ctx context.Context, stdNo int64, semester int) ([]models.FailedModule, error) {
	if err := validateSemester(semester); err != nil {
		return nil, err
	}
	_, records, err := s.loadRecords(ctx, stdNo)
	if err != nil {
		return nil, err
	}
	return eligibility.FailedInSemester(records, semester), nil
}

// RemainInSemester reports whether the student failed enough modules in the semester to be
// held back.
func (s *RegistrationService) RemainInSemester(ctx context.Context, stdNo int64, semester int) (*models.RemainCheck, error) {
	failed, err := s.FailedModules(ctx, stdNo, semester)
	if err != nil {
		return nil, err
	}
	return &models.RemainCheck{
		StdNo:         stdNo,
		Semester:      semester,
		FailedModules: failed,
		Threshold:     s.cfg.RemainFailedThreshold,
		Remain:        len(failed) >= s.cfg.RemainFailedThreshold,
	}, nil
}

// FailedPrerequisites maps each module code of the structure's earlier semesters to the
// prerequisites the student has not yet satisfied.
func (s *RegistrationService) FailedPrerequisites(ctx context.Context, stdNo int64, semester int, structureID int64) (map[string][]models.PrerequisiteWarning, bool, error) {
	if err := validateSemester(semester); err != nil {
		return nil, false, err
	}
	if err := s.ensureStructure(ctx, structureID); err != nil {
		return nil, false, err
	}
	_, records, err := s.loadRecords(ctx, stdNo)
	if err != nil {
		return nil, false, err
	}
	catalog, catalogHit, err := s.moduleCatalog(ctx, structureID, semester)
	if err != nil {
		return nil, false, err
	}
	relation, relationHit, err := s.prerequisiteRelation(ctx)
	if err != nil {
		return nil, false, err
	}
	history := eligibility.ClassifyHistory(records)
	return eligibility.ResolvePrerequisiteWarnings(catalog, semester, history, relation), catalogHit && relationHit, nil
}

// RepeatModules lists the failed, never-passed modules the student must repeat in the
// current term, filtered by the term's semester parity.
func (s *RegistrationService) RepeatModules(ctx context.Context, stdNo int64) ([]models.RepeatEntry, error) {
	_, records, err := s.loadRecords(ctx, stdNo)
	if err != nil {
		return nil, err
	}
	term, err := s.currentTerm(ctx)
	if err != nil {
		return nil, err
	}
	return eligibility.RepeatModules(records, term.Semester), nil
}

// StudentSemesterModules returns the modules the student may register for in semesterNo of
// the given structure.
func (s *RegistrationService) StudentSemesterModules(ctx context.Context, stdNo int64, semesterNo int, structureID int64) (*dto.SemesterModulesResponse, bool, error) {
	cur, err := s.loadCurriculum(ctx, structureID, semesterNo)
	if err != nil {
		return nil, false, err
	}
	offer, err := s.offer(ctx, stdNo, cur)
	if err != nil {
		return nil, false, err
	}
	return offer, cur.cacheHit, nil
}

// DetermineSemesterStatus infers which semester-of-study a module selection represents and
// whether the student is repeating it.
func (s *RegistrationService) DetermineSemesterStatus(ctx context.Context, stdNo int64, req dto.SemesterStatusRequest) (*models.SemesterStatusResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module selection")
	}
	student, err := s.loadStudent(ctx, stdNo)
	if err != nil {
		return nil, err
	}
	result, err := eligibility.DetermineSemesterStatus(req.Modules, eligibility.CompletedSemesters(student))
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BatchSemesterModules evaluates many students against one structure and semester. The
// curriculum is loaded once; each student's outcome, success or error, is reported
// independently and in request order.
func (s *RegistrationService) BatchSemesterModules(ctx context.Context, req dto.BatchSemesterModulesRequest) (*dto.BatchSemesterModulesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch request")
	}
	if len(req.StdNos) > s.cfg.BatchMax {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("batch exceeds %d students", s.cfg.BatchMax))
	}

	start := time.Now()
	cur, err := s.loadCurriculum(ctx, req.StructureID, req.Semester)
	if err != nil {
		return nil, err
	}

	results := make([]dto.BatchSemesterModulesItem, len(req.StdNos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchWorkers)
	for i, stdNo := range req.StdNos {
		i, stdNo := i, stdNo
		g.Go(func() error {
			item := dto.BatchSemesterModulesItem{StdNo: stdNo}
			offer, err := s.offer(gctx, stdNo, cur)
			if err != nil {
				item.Error = appErrors.FromError(err)
			} else {
				item.Rule = offer.Rule
				item.Modules = offer.Modules
			}
			results[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "batch evaluation failed")
	}

	resp := &dto.BatchSemesterModulesResponse{Semester: req.Semester, StructureID: req.StructureID, Results: results}
	for _, item := range results {
		if item.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	s.metrics.ObserveBatch(time.Since(start), resp.Succeeded, resp.Failed)
	s.logger.Info("batch eligibility evaluated",
		zap.Int64("structure_id", req.StructureID),
		zap.Int("semester", req.Semester),
		zap.Int("succeeded", resp.Succeeded),
		zap.Int("failed", resp.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (s *RegistrationService) offer(ctx context.Context, stdNo int64, cur *curriculum) (*dto.SemesterModulesResponse, error) {
	student, records, err := s.loadRecords(ctx, stdNo)
	if err != nil {
		return nil, err
	}
	decision, err := s.resolver.Resolve(eligibility.Input{
		Program:       student.ActiveProgram(),
		Semester:      cur.semester,
		TermSemester:  cur.termSemester,
		Records:       records,
		Catalog:       cur.catalog,
		Prerequisites: cur.relation,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordDecision(string(decision.Rule))
	s.logger.Debug("eligibility decided",
		zap.Int64("std_no", stdNo),
		zap.String("rule", string(decision.Rule)),
		zap.Int("semester", cur.semester),
		zap.Int("modules", len(decision.Modules)),
		zap.Int("repeats", len(decision.Repeats)),
	)
	return &dto.SemesterModulesResponse{
		StdNo:       stdNo,
		Semester:    cur.semester,
		StructureID: cur.structureID,
		Rule:        string(decision.Rule),
		Modules:     decision.Modules,
	}, nil
}

func (s *RegistrationService) loadCurriculum(ctx context.Context, structureID int64, semester int) (*curriculum, error) {
	if err := validateSemester(semester); err != nil {
		return nil, err
	}
	if err := s.ensureStructure(ctx, structureID); err != nil {
		return nil, err
	}
	term, err := s.currentTerm(ctx)
	if err != nil {
		return nil, err
	}
	catalog, catalogHit, err := s.moduleCatalog(ctx, structureID, semester)
	if err != nil {
		return nil, err
	}
	relation, relationHit, err := s.prerequisiteRelation(ctx)
	if err != nil {
		return nil, err
	}
	return &curriculum{
		structureID:  structureID,
		semester:     semester,
		termSemester: term.Semester,
		catalog:      catalog,
		relation:     relation,
		cacheHit:     catalogHit && relationHit,
	}, nil
}

func (s *RegistrationService) loadStudent(ctx context.Context, stdNo int64) (*models.Student, error) {
	if stdNo <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid student number")
	}
	start := time.Now()
	student, err := s.students.AcademicGraph(ctx, stdNo)
	s.metrics.ObserveDBQuery("academic_graph", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %d not found", stdNo))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic record")
	}
	return student, nil
}

func (s *RegistrationService) loadRecords(ctx context.Context, stdNo int64) (*models.Student, []models.AttemptRecord, error) {
	student, err := s.loadStudent(ctx, stdNo)
	if err != nil {
		return nil, nil, err
	}
	records, err := eligibility.FlattenAttempts(student)
	if err != nil {
		s.metrics.RecordDataIntegrityError()
		s.logger.Warn("academic record rejected", zap.Int64("std_no", stdNo), zap.Error(err))
		return nil, nil, err
	}
	return student, records, nil
}

func (s *RegistrationService) ensureStructure(ctx context.Context, structureID int64) error {
	if structureID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "invalid structure id")
	}
	exists, err := s.structures.Exists(ctx, structureID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load structure")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("structure %d not found", structureID))
	}
	return nil
}

func (s *RegistrationService) currentTerm(ctx context.Context) (*models.Term, error) {
	term, err := s.terms.Current(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active registration term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current term")
	}
	return term, nil
}

func (s *RegistrationService) moduleCatalog(ctx context.Context, structureID int64, upTo int) ([]models.ModuleCatalogEntry, bool, error) {
	key := fmt.Sprintf("registry:catalog:%d:%d", structureID, upTo)
	var cached []models.ModuleCatalogEntry
	if hit := s.tryCache(ctx, key, &cached); hit {
		return cached, true, nil
	}

	start := time.Now()
	catalog, err := s.structures.ModuleCatalog(ctx, structureID, upTo)
	s.metrics.ObserveDBQuery("module_catalog", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module catalog")
	}
	s.persistCache(ctx, key, catalog)
	return catalog, false, nil
}

func (s *RegistrationService) prerequisiteRelation(ctx context.Context) ([]models.Prerequisite, bool, error) {
	var cached []models.Prerequisite
	if hit := s.tryCache(ctx, prerequisiteCacheKey, &cached); hit {
		return cached, true, nil
	}

	start := time.Now()
	relation, err := s.prerequisites.Relation(ctx)
	s.metrics.ObserveDBQuery("prerequisites", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prerequisites")
	}
	s.persistCache(ctx, prerequisiteCacheKey, relation)
	return relation, false, nil
}

// tryCache treats cache failures as misses; curriculum data can always be reloaded.
func (s *RegistrationService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	return err == nil && hit
}

func (s *RegistrationService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CatalogTTL); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateCurriculum drops cached catalogs and the prerequisite relation, e.g. after a
// structure revision is published.
func (s *RegistrationService) InvalidateCurriculum(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, "registry:catalog:*"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate catalog cache")
	}
	if err := s.cache.Invalidate(ctx, prerequisiteCacheKey); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate prerequisite cache")
	}
	return nil
}

func validateSemester(semester int) error {
	if semester < 1 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid semester %d", semester))
	}
	return nil
}
