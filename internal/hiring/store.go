package hiring

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
)

type Store interface {
	PutJob(j Job) (Job, error)
	GetJob(id string) (Job, error)
	ListJobs(status string) ([]Job, error)
	DeleteJob(id string) error

	PutRound(r Round) (Round, error)
	ListRounds(jobID string) ([]Round, error)
	GetRound(id string) (Round, error)

	PutQuestions(roundID string, qs []Question) ([]Question, error)
	ListQuestions(roundID string) ([]Question, error)

	PutApplication(a Application) (Application, error)
	ListApplications(candidateID string) ([]Application, error)

	PutReport(r Report) (Report, error)
	ListReports(jobID, roundID string) ([]Report, error)
	GetReport(jobID, roundID, candidateID string) (Report, error)
}

type memoryStore struct {
	mu        sync.RWMutex
	jobs      map[string]Job
	rounds    map[string]Round
	questions map[string][]Question // roundID -> ordered questions
	apps      map[string]Application
	reports   map[string]Report
}

func NewInMemoryStore() Store {
	return &memoryStore{
		jobs:      map[string]Job{},
		rounds:    map[string]Round{},
		questions: map[string][]Question{},
		apps:      map[string]Application{},
		reports:   map[string]Report{},
	}
}

func (m *memoryStore) PutJob(j Job) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = "open"
	}
	m.jobs[j.ID] = j
	return j, nil
}

func (m *memoryStore) GetJob(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

func (m *memoryStore) ListJobs(status string) ([]Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if status == "" || j.Status == status {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (m *memoryStore) DeleteJob(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *memoryStore) PutRound(r Round) (Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[r.JobID]; !ok {
		return Round{}, ErrNotFound
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.rounds[r.ID] = r
	return r, nil
}

func (m *memoryStore) ListRounds(jobID string) ([]Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Round
	for _, r := range m.rounds {
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Number < out[k].Number })
	return out, nil
}

func (m *memoryStore) GetRound(id string) (Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rounds[id]
	if !ok {
		return Round{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) PutQuestions(roundID string, qs []Question) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rounds[roundID]; !ok {
		return nil, ErrNotFound
	}
	stored := m.questions[roundID]
	for _, q := range qs {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if err := q.Validate(); err != nil {
			return nil, err
		}
		stored = append(stored, q)
	}
	m.questions[roundID] = stored
	return stored, nil
}

func (m *memoryStore) ListQuestions(roundID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qs, ok := m.questions[roundID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (m *memoryStore) PutApplication(a Application) (Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[a.JobID]; !ok {
		return Application{}, ErrNotFound
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = "applied"
	}
	m.apps[a.ID] = a
	return a, nil
}

func (m *memoryStore) ListApplications(candidateID string) ([]Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Application
	for _, a := range m.apps {
		if a.CandidateID == candidateID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func reportKey(jobID, roundID, candidateID string) string {
	return jobID + "/" + roundID + "/" + candidateID
}

func (m *memoryStore) PutReport(r Report) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.reports[reportKey(r.JobID, r.RoundID, r.CandidateID)] = r
	return r, nil
}

func (m *memoryStore) ListReports(jobID, roundID string) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Report
	for _, r := range m.reports {
		if (jobID == "" || r.JobID == jobID) && (roundID == "" || r.RoundID == roundID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (m *memoryStore) GetReport(jobID, roundID, candidateID string) (Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[reportKey(jobID, roundID, candidateID)]
	if !ok {
		return Report{}, ErrNotFound
	}
	return r, nil
}
