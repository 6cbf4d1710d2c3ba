package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobKind is what a job refreshes
type JobKind string

const (
	// JobKindRefreshApartment recomputes one apartment's occupancy projection
	JobKindRefreshApartment JobKind = "REFRESH_APARTMENT"
	// JobKindRefreshView refreshes the occupancy materialized view
	JobKindRefreshView JobKind = "REFRESH_VIEW"
)

// IsValid checks if the job kind is known
func (k JobKind) IsValid() bool {
	return k == JobKindRefreshApartment || k == JobKindRefreshView
}

// Job represents a scheduled refresh job
type Job struct {
	ID          uuid.UUID
	Kind        JobKind
	ApartmentID int64 // zero for view refreshes
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a new job instance
func NewJob(kind JobKind, apartmentID int64, maxRetries int) *Job {
	return &Job{
		ID:          uuid.New(),
		Kind:        kind,
		ApartmentID: apartmentID,
		Status:      JobStatusPending,
		MaxRetries:  maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// JobExecutor is the interface for executing refresh jobs
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// JobExecutorFunc adapts a function to JobExecutor
type JobExecutorFunc func(ctx context.Context, job *Job) error

// Execute calls f
func (f JobExecutorFunc) Execute(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		QueueSize:         1000,
		JobTimeout:        time.Minute,
		RetryAttempts:     2,
		RetryDelay:        10 * time.Second,
	}
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("%w: max concurrent jobs must be at least 1", ErrInvalidConfig)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue size must be at least 1", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Scheduler runs refresh jobs on a fixed pool of workers
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool

	// inflight tracks submitted jobs until they finish for good
	inflight sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, executor JobExecutor, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, config.QueueSize),
	}, nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Refresh scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler. Queued jobs that have not started are dropped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Refresh scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Refresh scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the worker pool is accepting jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// SubmitJob queues a job for execution
func (s *Scheduler) SubmitJob(job *Job) error {
	if !job.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidJobKind, job.Kind)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	s.inflight.Add(1)
	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.Int64("apartment_id", job.ApartmentID),
		)
		return nil
	default:
		s.inflight.Done()
		return ErrJobQueueFull
	}
}

// ScheduleApartmentRefresh queues a projection refresh for one apartment
func (s *Scheduler) ScheduleApartmentRefresh(apartmentID int64) error {
	return s.SubmitJob(NewJob(JobKindRefreshApartment, apartmentID, s.config.RetryAttempts))
}

// ScheduleViewRefresh queues a materialized view refresh
func (s *Scheduler) ScheduleViewRefresh() error {
	return s.SubmitJob(NewJob(JobKindRefreshView, 0, s.config.RetryAttempts))
}

// Wait blocks until every submitted job has finished or ctx is done
func (s *Scheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-ctx.Done():
			s.drain()
			s.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

// drain releases queued jobs that will never run
func (s *Scheduler) drain() {
	for {
		select {
		case <-s.jobs:
			s.inflight.Done()
		default:
			return
		}
	}
}

func (s *Scheduler) requeue(job *Job) {
	select {
	case s.jobs <- job:
	default:
		s.logger.Warn("Failed to re-queue job for retry", zap.String("job_id", job.ID.String()))
		s.inflight.Done()
	}
}

// processJob executes a single job
func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		// not due yet; give other jobs a turn
		time.Sleep(min(time.Until(*job.NextRetryAt), 50*time.Millisecond))
		s.requeue(job)
		return
	}

	job.Start()
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	jobCtx = logger.WithJobID(jobCtx, job.ID.String())
	if job.ApartmentID != 0 {
		jobCtx = logger.WithApartmentID(jobCtx, job.ApartmentID)
	}
	log := logger.WithLogger(jobCtx, s.logger).With(
		zap.Int("worker_id", workerID),
		zap.String("kind", string(job.Kind)),
	)
	log.Debug("Processing job")

	err := s.execute(jobCtx, job)
	if err != nil {
		job.Fail(err.Error())
		log.Error("Job failed", zap.Error(err))

		if job.ShouldRetry() && ctx.Err() == nil {
			job.ScheduleRetry(s.config.RetryDelay)
			log.Info("Job scheduled for retry",
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
			)
			s.requeue(job)
			return
		}
		s.inflight.Done()
		return
	}

	job.Complete()
	log.Debug("Job completed successfully")
	s.inflight.Done()
}

func (s *Scheduler) execute(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return s.executor.Execute(ctx, job)
}
