package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists jobs.
type Store interface {
	// Save creates or updates a job. An empty ID is replaced with a new UUID.
	Save(job *Job) error

	// Get retrieves a job by ID.
	Get(id string) (Job, error)

	// List returns all jobs, newest first.
	List() ([]Job, error)

	// Count returns the number of jobs.
	Count() int
}

// JSONStore implements Store using a JSON file for persistence.
type JSONStore struct {
	path string
	jobs map[string]Job
	mu   sync.RWMutex
}

// storeData is the JSON structure for the store file.
type storeData struct {
	Version   int    `json:"version"`
	UpdatedAt string `json:"updated_at"`
	Jobs      []Job  `json:"jobs"`
}

const currentVersion = 1

// NewJSONStore creates a store at path, loading existing jobs if the file
// exists. Jobs left in the processing state by a previous run are marked
// as failed since runs are not resumed.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{
		path: path,
		jobs: make(map[string]Job),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jobs: create directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("jobs: load store: %w", err)
		}
	}

	return s, nil
}

// load reads the store from disk.
func (s *JSONStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}

	interrupted := false
	s.jobs = make(map[string]Job, len(stored.Jobs))
	for _, job := range stored.Jobs {
		if job.Status == StatusProcessing {
			job.Status = StatusError
			job.Error = "interrupted"
			interrupted = true
		}
		s.jobs[job.ID] = job
	}

	if interrupted {
		return s.save()
	}
	return nil
}

// save writes the store to disk. Callers hold s.mu.
func (s *JSONStore) save() error {
	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })

	stored := storeData{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Jobs:      jobs,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	// Write to temp file first, then rename (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *JSONStore) Save(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	prev, existed := s.jobs[job.ID]
	s.jobs[job.ID] = *job
	if err := s.save(); err != nil {
		if existed {
			s.jobs[job.ID] = prev
		} else {
			delete(s.jobs, job.ID)
		}
		return err
	}
	return nil
}

// Get implements Store.
func (s *JSONStore) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return job, nil
}

// List implements Store.
func (s *JSONStore) List() ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

// Count implements Store.
func (s *JSONStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Path returns the file path of the store.
func (s *JSONStore) Path() string {
	return s.path
}
