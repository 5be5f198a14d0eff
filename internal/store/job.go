package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridadocs/docflow/internal/store/model"
)

// Job interface for job-related database operations. All stage mutation goes
// through Update so the forward-only transition invariant is enforced in one
// place.
type Job interface {
	Insert(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(job *model.Job) error) (*model.Job, error)
	List(ctx context.Context, opts *JobQueryOptions) (model.JobList, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// JobStore implements the Job interface
type JobStore struct {
	db    *gorm.DB
	locks keyedMutex
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

// NewJobStore creates a new job store
func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Insert(ctx context.Context, job *model.Job) error {
	result := s.db.WithContext(ctx).Create(job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("inserting job: %w", result.Error)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	result := s.db.WithContext(ctx).First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying job: %w", result.Error)
	}
	return &job, nil
}

// Update loads the job, applies the mutator to a copy and persists it.
// Updates for the same id are serialized. The mutated job must keep id,
// filename and source metadata intact, must not move the stage backward,
// and must not rewrite markdown once set. Terminal jobs reject any update.
func (s *JobStore) Update(ctx context.Context, id uuid.UUID, mutate func(job *model.Job) error) (*model.Job, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if err := mutate(&updated); err != nil {
		return nil, err
	}

	if err := validateMutation(current, &updated); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Save(&updated)
	if result.Error != nil {
		return nil, fmt.Errorf("updating job: %w", result.Error)
	}
	return &updated, nil
}

func (s *JobStore) List(ctx context.Context, opts *JobQueryOptions) (model.JobList, error) {
	var jobs model.JobList
	tx := s.db.WithContext(ctx).Model(&model.Job{})
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}
	if result := tx.Find(&jobs); result.Error != nil {
		return nil, fmt.Errorf("listing jobs: %w", result.Error)
	}
	return jobs, nil
}

// DeleteExpired removes jobs whose last update happened before cutoff,
// returning the number of rows removed.
func (s *JobStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&model.Job{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting expired jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func validateMutation(current, updated *model.Job) error {
	if updated.ID != current.ID {
		return ErrInvalidTransition
	}
	if updated.Filename != current.Filename ||
		updated.MimeType != current.MimeType ||
		updated.SizeBytes != current.SizeBytes {
		return ErrInvalidTransition
	}
	if updated.Stage != current.Stage && !current.Stage.CanTransitionTo(updated.Stage) {
		return ErrInvalidTransition
	}
	if updated.Stage == current.Stage && current.Stage.Terminal() {
		return ErrInvalidTransition
	}
	// Markdown is write-once.
	if current.Markdown != nil && (updated.Markdown == nil || *updated.Markdown != *current.Markdown) {
		return ErrInvalidTransition
	}
	return nil
}

// keyedMutex serializes access per job id. Entries are reference counted so
// the map does not grow with the number of jobs ever seen.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id uuid.UUID) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[uuid.UUID]*lockEntry)
	}
	e, ok := k.entries[id]
	if !ok {
		e = &lockEntry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}
