package jobstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"terrainforge/internal/apperr"
	"terrainforge/pkg/logging"
)

const subsystem = "jobstore"

// Update carries the optional fields a caller may mutate on a job. Nil
// pointers/empty strings mean "leave unchanged" except where noted.
type Update struct {
	Status     *Status
	Progress   *int
	Message    *string
	Result     map[string]interface{}
	Error      *string
	OutputPath *string
}

// Store is the persistent, process-wide, coarse-locked job record store.
// All mutations and reads take the same lock; the spec notes throughput is
// low enough that simple coarse locking is sufficient.
type Store struct {
	dir string

	mu    sync.Mutex
	cache map[string]*Job
}

// Open constructs a Store rooted at dir, creating dir if necessary, and
// rehydrates the in-memory cache by scanning dir for "<id>.job" files (and,
// for ids with no ".job" file, "<id>.status" compatibility files).
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("jobstore: create dir %q: %w", dir, err)
	}
	s := &Store{dir: dir, cache: make(map[string]*Job)}
	if err := s.rehydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) rehydrate() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("jobstore: scan dir: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".job") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".job")
		job, err := s.loadJobFile(id)
		if err != nil {
			logging.Warn(subsystem, "skipping unreadable job record %q: %v", id, err)
			continue
		}
		s.cache[id] = job
		seen[id] = true
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".status") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".status")
		if seen[id] {
			continue
		}
		job, err := s.loadStatusFile(id)
		if err != nil {
			logging.Warn(subsystem, "skipping unreadable status file %q: %v", id, err)
			continue
		}
		s.cache[id] = job
	}

	logging.Info(subsystem, "rehydrated %d job records from %s", len(s.cache), s.dir)
	return nil
}

// Create registers a new job in QUEUED state and persists it.
func (s *Store) Create(jobType string, parameters map[string]interface{}) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Status:     StatusQueued,
		Progress:   0,
		Parameters: parameters,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(job); err != nil {
		return nil, err
	}
	s.cache[job.ID] = job
	logging.Audit(logging.AuditEvent{Action: "job_create", Outcome: "success", JobID: job.ID, Details: jobType})
	return job.clone(), nil
}

// Get returns the job record with the given id, checking for a compatibility
// ".status" file first if the id is not yet in the in-memory cache.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (*Job, error) {
	if job, ok := s.cache[id]; ok {
		return job.clone(), nil
	}
	if job, err := s.loadStatusFile(id); err == nil {
		s.cache[id] = job
		return job.clone(), nil
	}
	return nil, fmt.Errorf("%w: job %q", apperr.ErrNotFound, id)
}

// ListFilter narrows List results; zero-value fields are unconstrained.
type ListFilter struct {
	Status Status
	Type   string
	Limit  int
}

// List returns jobs matching filter, most-recently-updated first.
func (s *Store) List(filter ListFilter) []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Job, 0, len(s.cache))
	for _, job := range s.cache {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if filter.Type != "" && job.Type != filter.Type {
			continue
		}
		out = append(out, job.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// Update applies the given field changes to job id. Status regressions (a
// transition backwards through the partial order QUEUED ≺ RUNNING ≺
// terminal) are rejected with apperr.ErrJobStateRegression and otherwise
// ignored; progress is clamped to [0,100].
func (s *Store) Update(id string, upd Update) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	current, ok := s.cache[id]
	if !ok {
		// Rehydrated from a .status file on first read; adopt it into the cache.
		current = job
	}

	if upd.Status != nil {
		if !upd.Status.valid() {
			return nil, fmt.Errorf("jobstore: invalid status %q", *upd.Status)
		}
		if upd.Status.regressesFrom(current.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", apperr.ErrJobStateRegression, current.Status, *upd.Status)
		}
		current.Status = *upd.Status
	}
	if upd.Progress != nil {
		p := *upd.Progress
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		current.Progress = p
	}
	if upd.Message != nil {
		current.Message = *upd.Message
	}
	if upd.Result != nil {
		current.Result = upd.Result
	}
	if upd.Error != nil {
		current.Error = *upd.Error
	}
	if upd.OutputPath != nil {
		current.OutputPath = *upd.OutputPath
	}
	current.UpdatedAt = time.Now()

	if err := s.persist(current); err != nil {
		return nil, err
	}
	s.cache[id] = current
	return current.clone(), nil
}

// Cancel marks job id CANCELLED, unless it is already in a terminal state.
func (s *Store) Cancel(id string) (*Job, error) {
	s.mu.Lock()
	job, ok := s.cache[id]
	s.mu.Unlock()
	if !ok {
		if _, err := s.Get(id); err != nil {
			return nil, err
		}
	}
	if job != nil && job.Status.IsTerminal() {
		logging.Audit(logging.AuditEvent{Action: "job_cancel", Outcome: "failure", JobID: id, Details: "already terminal"})
		return job.clone(), nil
	}
	cancelled := StatusCancelled
	updated, err := s.Update(id, Update{Status: &cancelled})
	if err != nil {
		logging.Audit(logging.AuditEvent{Action: "job_cancel", Outcome: "failure", JobID: id, Error: err.Error()})
		return nil, err
	}
	logging.Audit(logging.AuditEvent{Action: "job_cancel", Outcome: "success", JobID: id})
	return updated, nil
}

// Reap deletes job records (and their on-disk artifacts) for terminal jobs
// whose UpdatedAt is older than maxAge. Intended to be called hourly by a
// background reaper; see Store.RunReaper.
func (s *Store) Reap(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	var toRemove []string
	artifacts := make(map[string]string)
	for id, job := range s.cache {
		if job.Status.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			toRemove = append(toRemove, id)
			if job.OutputPath != "" {
				artifacts[id] = job.OutputPath
			}
		}
	}
	for _, id := range toRemove {
		delete(s.cache, id)
	}
	s.mu.Unlock()

	for _, id := range toRemove {
		s.removeFiles(id)
		if p := artifacts[id]; p != "" {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				logging.Warn(subsystem, "reap: failed to remove %s: %v", p, err)
			}
		}
		logging.Audit(logging.AuditEvent{Action: "job_reap", Outcome: "success", JobID: id})
	}
	return len(toRemove)
}

// RunReaper runs Reap once per hour with the given maxAge (default 24h if
// maxAge <= 0) until stop is closed.
func (s *Store) RunReaper(maxAge time.Duration, stop <-chan struct{}) {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n := s.Reap(maxAge)
			if n > 0 {
				logging.Info(subsystem, "reaped %d expired job records", n)
			}
		}
	}
}

func (s *Store) jobPath(id string) string    { return filepath.Join(s.dir, id+".job") }
func (s *Store) statusPath(id string) string { return filepath.Join(s.dir, id+".status") }

// persist writes the full record atomically: write to a temp file in the
// same directory, then rename over the destination.
func (s *Store) persist(job *Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("jobstore: marshal job %q: %w", job.ID, err)
	}
	dst := s.jobPath(job.ID)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("jobstore: write job %q: %w", job.ID, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("jobstore: rename job %q: %w", job.ID, err)
	}
	return nil
}

func (s *Store) loadJobFile(id string) (*Job, error) {
	data, err := os.ReadFile(s.jobPath(id))
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("jobstore: parse job file %q: %w", id, err)
	}
	return &job, nil
}

// statusFile is the shape of an externally-written "<id>.status" file; all
// fields are optional so a partial file from a mid-write subprocess still
// synthesizes a usable record.
type statusFile struct {
	Status     string                 `json:"status"`
	Progress   int                    `json:"progress"`
	Message    string                 `json:"message"`
	Error      string                 `json:"error"`
	Result     map[string]interface{} `json:"result"`
	OutputPath string                 `json:"output_path"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// loadStatusFile synthesizes a minimal Job from a plain "<id>.status" file
// written by an external subprocess reporting progress, used when no
// ".job" file exists for id.
func (s *Store) loadStatusFile(id string) (*Job, error) {
	data, err := os.ReadFile(s.statusPath(id))
	if err != nil {
		return nil, err
	}
	var raw statusFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("jobstore: parse status file %q: %w", id, err)
	}

	status := Status(raw.Status)
	if !status.valid() {
		status = StatusRunning
	}
	now := time.Now()
	created, updated := raw.CreatedAt, raw.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}

	return &Job{
		ID:         id,
		Type:       "external",
		Status:     status,
		Progress:   raw.Progress,
		Message:    raw.Message,
		CreatedAt:  created,
		UpdatedAt:  updated,
		Result:     raw.Result,
		Error:      raw.Error,
		OutputPath: raw.OutputPath,
	}, nil
}

func (s *Store) removeFiles(id string) {
	for _, p := range []string{s.jobPath(id), s.statusPath(id)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Warn(subsystem, "reap: failed to remove %s: %v", p, err)
		}
	}
}
