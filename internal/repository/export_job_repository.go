package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// ErrExportJobNotFound is returned for unknown or expired export jobs.
var ErrExportJobNotFound = errors.New("export job not found")

const exportJobKeyPrefix = "export_job:"

// UpdateExportJobParams lists the mutable export job fields. Nil fields are left untouched.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	Progress     *int
	Attempts     *int
	ObjectKey    *string
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

func (p UpdateExportJobParams) apply(job *models.ExportJob) {
	if p.Status != nil {
		job.Status = *p.Status
	}
	if p.Progress != nil {
		job.Progress = *p.Progress
	}
	if p.Attempts != nil {
		job.Attempts = *p.Attempts
	}
	if p.ObjectKey != nil {
		job.ObjectKey = *p.ObjectKey
	}
	if p.ResultURL != nil {
		url := *p.ResultURL
		job.ResultURL = &url
	}
	if p.ErrorMessage != nil {
		if *p.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			msg := *p.ErrorMessage
			job.ErrorMessage = &msg
		}
	}
	if p.FinishedAt != nil {
		ts := p.FinishedAt.UTC()
		job.FinishedAt = &ts
	}
}

func prepareExportJob(job *models.ExportJob, now time.Time) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
}

// MemoryExportJobRepository keeps export jobs in process memory and forgets
// them once their TTL has passed.
type MemoryExportJobRepository struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	jobs map[string]memoryExportJob
}

type memoryExportJob struct {
	job       models.ExportJob
	expiresAt time.Time
}

// NewMemoryExportJobRepository constructs an in-memory job store.
func NewMemoryExportJobRepository(ttl time.Duration) *MemoryExportJobRepository {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &MemoryExportJobRepository{ttl: ttl, now: time.Now, jobs: make(map[string]memoryExportJob)}
}

// Create stores a new job.
func (r *MemoryExportJobRepository) Create(_ context.Context, job *models.ExportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	prepareExportJob(job, now)
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("export job %s already exists", job.ID)
	}
	r.jobs[job.ID] = memoryExportJob{job: *job, expiresAt: now.Add(r.ttl)}
	return nil
}

// GetByID returns a copy of the job.
func (r *MemoryExportJobRepository) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.lookup(id)
	if !ok {
		return nil, ErrExportJobNotFound
	}
	job := entry.job
	return &job, nil
}

// Update applies params to a stored job without extending its TTL.
func (r *MemoryExportJobRepository) Update(_ context.Context, id string, params UpdateExportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.lookup(id)
	if !ok {
		return ErrExportJobNotFound
	}
	params.apply(&entry.job)
	r.jobs[id] = entry
	return nil
}

// Purge drops expired jobs and returns how many were removed.
func (r *MemoryExportJobRepository) Purge(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for id, entry := range r.jobs {
		if now.After(entry.expiresAt) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed, nil
}

func (r *MemoryExportJobRepository) lookup(id string) (memoryExportJob, bool) {
	entry, ok := r.jobs[id]
	if !ok {
		return memoryExportJob{}, false
	}
	if r.now().After(entry.expiresAt) {
		delete(r.jobs, id)
		return memoryExportJob{}, false
	}
	return entry, true
}

// RedisExportJobRepository stores export jobs as JSON values with a Redis TTL.
type RedisExportJobRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisExportJobRepository constructs a Redis backed job store.
func NewRedisExportJobRepository(client *redis.Client, ttl time.Duration) *RedisExportJobRepository {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisExportJobRepository{client: client, ttl: ttl}
}

// Create stores a new job with the configured TTL.
func (r *RedisExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	prepareExportJob(job, time.Now().UTC())
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal export job %s: %w", job.ID, err)
	}
	created, err := r.client.SetNX(ctx, exportJobKeyPrefix+job.ID, payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis create export job %s: %w", job.ID, err)
	}
	if !created {
		return fmt.Errorf("export job %s already exists", job.ID)
	}
	return nil
}

// GetByID loads a job.
func (r *RedisExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	raw, err := r.client.Get(ctx, exportJobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrExportJobNotFound
		}
		return nil, fmt.Errorf("redis get export job %s: %w", id, err)
	}
	var job models.ExportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("unmarshal export job %s: %w", id, err)
	}
	return &job, nil
}

// Update applies params and writes the job back keeping its remaining TTL.
func (r *RedisExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	params.apply(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal export job %s: %w", id, err)
	}
	if err := r.client.Set(ctx, exportJobKeyPrefix+id, payload, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("redis update export job %s: %w", id, err)
	}
	return nil
}

// Purge is a no-op; Redis expires keys on its own.
func (r *RedisExportJobRepository) Purge(context.Context) (int, error) {
	return 0, nil
}
