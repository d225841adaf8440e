package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/service"
)

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job tracks one submitted statement analysis.
type Job struct {
	SubmittedAt time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
	Results     []model.ClassifiedTransaction
	Stats       service.CompletionStats
	ID          string
	Status      JobStatus
	Error       string
}

// jobStore is an in-memory job registry. Jobs are kept until the server
// shuts down; there is no persistence.
type jobStore struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*Job)}
}

func (s *jobStore) create() *Job {
	job := &Job{
		ID:          uuid.NewString(),
		Status:      JobPending,
		SubmittedAt: time.Now(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

func (s *jobStore) setRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = JobRunning
		job.StartedAt = time.Now()
	}
}

func (s *jobStore) setCompleted(id string, results []model.ClassifiedTransaction, stats service.CompletionStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = JobCompleted
		job.FinishedAt = time.Now()
		job.Results = results
		job.Stats = stats
	}
}

func (s *jobStore) setFailed(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = JobFailed
		job.FinishedAt = time.Now()
		job.Error = err.Error()
	}
}

// snapshot returns a copy of the job safe to serialize without holding the
// store lock.
func (s *jobStore) snapshot(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}
