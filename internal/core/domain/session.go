package domain

import (
	"sync"
	"time"
)

// Session holds the working set of one matching workflow. It is owned by
// the caller, passed explicitly to every matching operation and only
// cleared on request.
type Session struct {
	ID        string
	CreatedAt time.Time

	// run serialises matching runs, which mutate candidates in place.
	run sync.Mutex

	mu         sync.RWMutex
	candidates []*Candidate
	job        *Job
	results    []MatchResult
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	return &Session{ID: id, CreatedAt: time.Now()}
}

// AcquireRun blocks until no other matching run holds the session and
// returns the function that releases it.
func (s *Session) AcquireRun() (release func()) {
	s.run.Lock()
	return s.run.Unlock
}

// AddCandidates appends candidates and drops any stale results.
func (s *Session) AddCandidates(c ...*Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, c...)
	s.results = nil
}

// Candidates returns a copy of the candidate list.
func (s *Session) Candidates() []*Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// SetJob replaces the job and drops any stale results.
func (s *Session) SetJob(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = j
	s.results = nil
}

// Job returns the current job, or nil.
func (s *Session) Job() *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job
}

// SetResults stores the results of a matching run.
func (s *Session) SetResults(r []MatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = r
}

// Results returns a copy of the last matching run, or nil.
func (s *Session) Results() []MatchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.results == nil {
		return nil
	}
	out := make([]MatchResult, len(s.results))
	copy(out, s.results)
	return out
}

// ClearCandidates removes all candidates and results.
func (s *Session) ClearCandidates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = nil
	s.results = nil
}

// ClearJob removes the job and results.
func (s *Session) ClearJob() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = nil
	s.results = nil
}

// Reset clears everything.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = nil
	s.job = nil
	s.results = nil
}
