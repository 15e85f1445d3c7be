package service

import (
	"context"
	cryptorand "crypto/rand"
	"database/sql"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campusops/timetable-solver/internal/domain"
	"github.com/campusops/timetable-solver/internal/dto"
	"github.com/campusops/timetable-solver/internal/models"
	"github.com/campusops/timetable-solver/internal/repository"
	"github.com/campusops/timetable-solver/internal/search"
	appErrors "github.com/campusops/timetable-solver/pkg/errors"
	"github.com/campusops/timetable-solver/pkg/export"
	"github.com/campusops/timetable-solver/pkg/jobs"
	"github.com/campusops/timetable-solver/pkg/storage"
)

// txProvider abstracts *sqlx.DB down to what the audit write needs, so
// tests can supply a fake without standing up Postgres.
type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// solverRunWriter persists the audit trail of a completed solve.
type solverRunWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, run *models.SolverRun) error
}

// reportRenderer renders a tabular dataset into bytes for one export format.
type reportRenderer interface {
	csv(data export.Dataset) ([]byte, error)
	pdf(data export.Dataset, title string) ([]byte, error)
}

type exporters struct {
	csvExporter *export.CSVExporter
	pdfExporter *export.PDFExporter
}

func (e exporters) csv(data export.Dataset) ([]byte, error) { return e.csvExporter.Render(data) }
func (e exporters) pdf(data export.Dataset, title string) ([]byte, error) {
	return e.pdfExporter.Render(data, title)
}

// solverProposal is a completed solve held long enough for its client to
// request an export without resubmitting the dataset.
type solverProposal struct {
	ProposalID  string
	Dataset     domain.Dataset
	Schedule    domain.Schedule
	Violations  []string
	Cost        int
	Happiness   int
	Explanation []string
	Seed        int64
	RequestedAt time.Time
}

// proposalStore is a TTL-bounded, mutex-guarded map of recent proposals.
// Mirrors the teacher's proposalStore in schedule_generator_service.go:
// entries are evicted lazily on Get rather than by a background sweep.
type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]solverProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{ttl: ttl, items: make(map[string]solverProposal)}
}

func (s *proposalStore) Save(p solverProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ProposalID] = p
}

func (s *proposalStore) Get(id string) (solverProposal, bool) {
	s.mu.RLock()
	p, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return solverProposal{}, false
	}
	if time.Since(p.RequestedAt) > s.ttl {
		s.Delete(id)
		return solverProposal{}, false
	}
	return p, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// SolverConfig governs SolverService behaviour. Storage and signed-URL
// configuration live on the caller-constructed pkg/storage values passed
// separately to NewSolverService, not here.
type SolverConfig struct {
	ProposalTTL         time.Duration
	CacheTTL            time.Duration
	ReportWorkers       int
	ReportBufferSize    int
	ReportRenderTimeout time.Duration
	DownloadURLPrefix   string
}

// SeedSource returns a fresh int64 seed for solves that omit one. Injected
// at construction time so the search core itself never reads a clock or
// entropy source directly.
type SeedSource func() int64

// defaultSeedSource draws from crypto/rand; this lives in the ambient
// service layer, not in internal/search, which only ever sees the
// resulting *rand.Rand.
func defaultSeedSource() int64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.BigEndian.Uint64(buf[:]))
}

// SolverService validates timetabling requests, runs the three-stage
// search core, and tracks the resulting proposals for export. Grounded on
// ScheduleGeneratorService: the same validator/logger/txProvider
// constructor-injection shape, and the same TTL proposal store.
type SolverService struct {
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService

	tx   txProvider
	runs solverRunWriter

	cache *CacheService

	store *proposalStore
	seeds SeedSource

	render  reportRenderer
	jobs    *jobs.Queue
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner

	reportTimeout     time.Duration
	downloadURLPrefix string
}

// NewSolverService wires the solver's ambient dependencies. Any of tx,
// runs, cache, storage, or signer may be nil: persistence and export then
// degrade gracefully (an export without storage/signer configured fails
// with a clear error instead of panicking).
func NewSolverService(
	tx txProvider,
	runs solverRunWriter,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	seeds SeedSource,
	storageBackend *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	cfg SolverConfig,
) *SolverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if seeds == nil {
		seeds = defaultSeedSource
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.ReportRenderTimeout <= 0 {
		cfg.ReportRenderTimeout = 10 * time.Second
	}
	if cfg.DownloadURLPrefix == "" {
		cfg.DownloadURLPrefix = "/api/v1/export"
	}

	// Guard against the classic typed-nil gotcha: a caller passing a nil
	// *sqlx.DB (e.g. because Postgres was unreachable at startup) produces
	// a non-nil txProvider interface value whose underlying pointer is
	// nil, which would otherwise panic the first time it's dereferenced.
	if db, ok := tx.(*sqlx.DB); ok && db == nil {
		tx = nil
	}
	if repo, ok := runs.(*repository.SolverRunRepository); ok && repo == nil {
		runs = nil
	}

	svc := &SolverService{
		validator:         validate,
		logger:            logger,
		metrics:           metrics,
		tx:                tx,
		runs:              runs,
		cache:             cache,
		store:             newProposalStore(cfg.ProposalTTL),
		seeds:             seeds,
		render:            exporters{csvExporter: export.NewCSVExporter(), pdfExporter: export.NewPDFExporter()},
		storage:           storageBackend,
		signer:            signer,
		reportTimeout:     cfg.ReportRenderTimeout,
		downloadURLPrefix: cfg.DownloadURLPrefix,
	}

	queueCfg := jobs.QueueConfig{
		Workers:    cfg.ReportWorkers,
		BufferSize: cfg.ReportBufferSize,
		Logger:     logger,
	}
	svc.jobs = jobs.NewQueue("report-render", svc.handleReportJob, queueCfg)
	svc.jobs.Start(context.Background())

	return svc
}

// Solve validates the request, runs the search core on a seeded *rand.Rand,
// records the outcome, and returns the wire response.
func (s *SolverService) Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve request payload")
	}

	dataset := buildDataset(req)

	seed := s.seeds()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := mathrand.New(mathrand.NewSource(seed))

	schedule, violations, happiness, explanation := search.Solve(ctx, dataset, rng)
	cost := len(violations)

	proposal := solverProposal{
		ProposalID:  uuid.NewString(),
		Dataset:     dataset,
		Schedule:    schedule,
		Violations:  violations,
		Cost:        cost,
		Happiness:   happiness,
		Explanation: explanation,
		Seed:        seed,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	s.logger.Sugar().Infow("solve completed",
		"proposalId", proposal.ProposalID,
		"cost", cost,
		"happiness", happiness,
		"courses", len(dataset.Courses),
		"seed", seed,
	)

	s.mirrorToCache(ctx, proposal)
	s.recordAudit(ctx, proposal)

	return &dto.SolveResponse{
		ProposalID:  proposal.ProposalID,
		Schedule:    toScheduleDTO(schedule),
		Violations:  violations,
		Cost:        cost,
		Happiness:   happiness,
		Explanation: explanation,
	}, nil
}

// mirrorToCache writes a best-effort summary to Redis so a client can poll
// a cheap key instead of resubmitting the dataset. Failures are logged,
// never returned: the cache is a convenience, not a dependency.
func (s *SolverService) mirrorToCache(ctx context.Context, p solverProposal) {
	if !s.cache.Enabled() {
		return
	}
	summary := map[string]interface{}{
		"proposalId": p.ProposalID,
		"cost":       p.Cost,
		"happiness":  p.Happiness,
	}
	if err := s.cache.Set(ctx, "solver:proposal:"+p.ProposalID, summary, 0); err != nil {
		s.logger.Sugar().Warnw("failed to mirror proposal to cache", "proposalId", p.ProposalID, "error", err)
	}
}

// recordAudit writes a solver_runs row inside its own transaction. A
// missing tx provider or repository is not an error: the audit trail is
// operational history, not something the solve path depends on.
func (s *SolverService) recordAudit(ctx context.Context, p solverProposal) {
	if s.tx == nil || s.runs == nil {
		return
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Sugar().Warnw("failed to begin audit transaction", "proposalId", p.ProposalID, "error", err)
		return
	}
	var seed *int64
	if p.Seed != 0 {
		v := p.Seed
		seed = &v
	}
	run := &models.SolverRun{
		ProposalID:  p.ProposalID,
		CourseCount: len(p.Dataset.Courses),
		Cost:        p.Cost,
		Happiness:   p.Happiness,
		Seed:        seed,
	}
	if err := s.runs.Create(ctx, tx, run); err != nil {
		_ = tx.Rollback()
		s.logger.Sugar().Warnw("failed to record solver run", "proposalId", p.ProposalID, "error", err)
		return
	}
	if err := tx.Commit(); err != nil {
		s.logger.Sugar().Warnw("failed to commit audit transaction", "proposalId", p.ProposalID, "error", err)
	}
}

// reportJobPayload is delivered to the report-render worker pool.
type reportJobPayload struct {
	ProposalID string
	Filename   string
	Data       []byte
	Result     chan reportJobResult
}

type reportJobResult struct {
	DownloadURL string
	ExpiresAt   time.Time
	Err         error
}

// handleReportJob writes rendered report bytes to storage and mints a
// signed download token, off the request goroutine.
func (s *SolverService) handleReportJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(reportJobPayload)
	if !ok {
		return fmt.Errorf("unexpected report job payload type %T", job.Payload)
	}
	if s.storage == nil || s.signer == nil {
		err := fmt.Errorf("report storage not configured")
		payload.Result <- reportJobResult{Err: err}
		return err
	}
	relPath, err := s.storage.Save(payload.Filename, payload.Data)
	if err != nil {
		payload.Result <- reportJobResult{Err: err}
		return err
	}
	token, expiresAt, err := s.signer.Generate(payload.ProposalID, relPath)
	if err != nil {
		payload.Result <- reportJobResult{Err: err}
		return err
	}
	payload.Result <- reportJobResult{
		DownloadURL: fmt.Sprintf("%s/%s", s.downloadURLPrefix, token),
		ExpiresAt:   expiresAt,
	}
	return nil
}

// ExportReport renders a previously-solved proposal as CSV or PDF,
// persists it through the report-render worker pool, and returns a
// time-limited signed download URL.
func (s *SolverService) ExportReport(ctx context.Context, proposalID string, format models.ReportFormat) (*dto.ReportResponse, error) {
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}

	data := buildExportDataset(proposal)

	var rendered []byte
	var err error
	switch format {
	case models.ReportFormatPDF:
		rendered, err = s.render.pdf(data, fmt.Sprintf("Schedule %s", proposalID))
	default:
		format = models.ReportFormatCSV
		rendered, err = s.render.csv(data)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	result := make(chan reportJobResult, 1)
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "report_render",
		Payload: reportJobPayload{
			ProposalID: proposalID,
			Filename:   fmt.Sprintf("%s.%s", proposalID, format),
			Data:       rendered,
			Result:     result,
		},
	}
	if err := s.jobs.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report render")
	}

	select {
	case res := <-result:
		if res.Err != nil {
			return nil, appErrors.Wrap(res.Err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist report")
		}
		return &dto.ReportResponse{
			ProposalID:  proposalID,
			Format:      string(format),
			DownloadURL: res.DownloadURL,
			ExpiresAt:   res.ExpiresAt,
		}, nil
	case <-ctx.Done():
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "report render cancelled")
	case <-time.After(s.reportTimeout):
		return nil, appErrors.Clone(appErrors.ErrInternal, "report render timed out")
	}
}

// Close stops the report-render worker pool. Intended to be called once
// during graceful shutdown.
func (s *SolverService) Close() {
	s.jobs.Stop()
}

// buildDataset converts the wire request into the immutable domain.Dataset
// the search core operates on.
func buildDataset(req dto.SolveRequest) domain.Dataset {
	professors := make([]domain.Professor, 0, len(req.Professors))
	for _, p := range req.Professors {
		professors = append(professors, domain.Professor{
			Name:             p.Name,
			UnavailableSlots: p.UnavailableSlots,
			PreferredSlots:   p.PreferredSlots,
			HatesSlots:       p.HatesSlots,
		})
	}

	rooms := make([]domain.Room, 0, len(req.Rooms))
	for _, r := range req.Rooms {
		rooms = append(rooms, domain.Room{
			Name:             r.Name,
			Capacity:         r.Capacity,
			UnavailableSlots: r.UnavailableSlots,
		})
	}

	slots := make([]domain.TimeSlot, 0, len(req.TimeSlots))
	for _, t := range req.TimeSlots {
		slots = append(slots, domain.TimeSlot{
			SlotID:    t.SlotID,
			Day:       t.Day,
			StartTime: t.StartTime,
			EndTime:   t.EndTime,
		})
	}

	courses := make([]domain.Course, 0, len(req.Courses))
	for _, c := range req.Courses {
		courses = append(courses, domain.Course{
			Name:          c.Name,
			Enrollment:    c.Enrollment,
			Professor:     c.Professor,
			Department:    c.Department,
			IsElectiveFor: c.IsElectiveFor,
		})
	}

	return domain.Dataset{
		Professors: professors,
		Rooms:      rooms,
		TimeSlots:  slots,
		Courses:    courses,
	}
}

// toScheduleDTO converts a solved domain.Schedule into its wire form.
func toScheduleDTO(schedule domain.Schedule) dto.ScheduleDTO {
	assignments := make(map[string]dto.AssignmentDTO, len(schedule.Assignments))
	for course, a := range schedule.Assignments {
		assignments[course] = dto.AssignmentDTO{Room: a.Room, SlotID: a.SlotID}
	}
	return dto.ScheduleDTO{Assignments: assignments}
}

// buildExportDataset flattens a solved proposal into one row per course,
// matching the teacher's tabular export.Dataset contract.
func buildExportDataset(p solverProposal) export.Dataset {
	courseDept := make(map[string]string, len(p.Dataset.Courses))
	courseProf := make(map[string]string, len(p.Dataset.Courses))
	for _, c := range p.Dataset.Courses {
		courseDept[c.Name] = c.Department
		courseProf[c.Name] = c.Professor
	}
	slotDay := make(map[int]string, len(p.Dataset.TimeSlots))
	for _, t := range p.Dataset.TimeSlots {
		slotDay[t.SlotID] = t.Day
	}

	headers := []string{"course", "professor", "department", "room", "slot", "day"}
	rows := make([]map[string]string, 0, len(p.Dataset.Courses))
	for _, c := range p.Dataset.Courses {
		a := p.Schedule.Assignments[c.Name]
		row := map[string]string{
			"course":     c.Name,
			"professor":  courseProf[c.Name],
			"department": courseDept[c.Name],
			"room":       a.RoomName(),
		}
		if a.SlotID != nil {
			row["slot"] = fmt.Sprintf("%d", *a.SlotID)
			row["day"] = slotDay[*a.SlotID]
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
