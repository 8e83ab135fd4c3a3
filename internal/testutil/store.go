// Package testutil holds in-memory stand-ins for the repositories and outbound services
// so usecases and handlers can be tested without Postgres or an LLM.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/fadilmartias/hireprep/internal/repository"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.Session
	SaveErr  error
	Saves    int
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[uuid.UUID]model.Session{}}
}

func copySession(s model.Session) *model.Session {
	if s.Data != nil {
		s.Data = s.Data.Clone()
	}
	return &s
}

func (r *SessionStore) Create(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	r.sessions[s.ID] = *copySession(*s)
	return nil
}

func (r *SessionStore) Save(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.Saves++
	s.UpdatedAt = time.Now()
	r.sessions[s.ID] = *copySession(*s)
	return nil
}

func (r *SessionStore) FindByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copySession(s), nil
}

// Get returns a copy of the stored session, nil if absent.
func (r *SessionStore) Get(id uuid.UUID) *model.Session {
	s, _ := r.FindByID(context.Background(), id)
	return s
}

func (r *SessionStore) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type CandidateStore struct {
	mu    sync.Mutex
	Items []model.Candidate
}

func (r *CandidateStore) Create(_ context.Context, c *model.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items = append(r.Items, *c)
	return nil
}

type InterviewerStore struct {
	mu    sync.Mutex
	Items []model.Interviewer
}

func (r *InterviewerStore) Create(_ context.Context, i *model.Interviewer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items = append(r.Items, *i)
	return nil
}

type AnalysisStore struct {
	mu        sync.Mutex
	Items     []model.Analysis
	CreateErr error
	// ids whose UpdateCost fails
	FailUpdate map[uuid.UUID]error
}

func (r *AnalysisStore) Create(_ context.Context, a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.Items = append(r.Items, *a)
	return nil
}

func (r *AnalysisStore) FindLatestBySession(_ context.Context, sessionID uuid.UUID, kind string) (*model.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Items) - 1; i >= 0; i-- {
		if a := r.Items[i]; a.SessionID == sessionID && a.Kind == kind {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AnalysisStore) ListUnpriced(_ context.Context, after uuid.UUID, limit int) ([]model.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Analysis
	for _, a := range r.Items {
		if a.Cost == 0 && (a.InputTokens > 0 || a.OutputTokens > 0) && (after == uuid.Nil || a.ID.String() > after.String()) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AnalysisStore) UpdateCost(_ context.Context, id uuid.UUID, cost float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailUpdate[id]; err != nil {
		return err
	}
	for i := range r.Items {
		if r.Items[i].ID == id {
			r.Items[i].Cost = cost
			return nil
		}
	}
	return repository.ErrNotFound
}

type JobPostingStore struct {
	mu    sync.Mutex
	Items map[uuid.UUID]model.JobPosting
	order []uuid.UUID
}

func NewJobPostingStore() *JobPostingStore {
	return &JobPostingStore{Items: map[uuid.UUID]model.JobPosting{}}
}

func (r *JobPostingStore) Create(_ context.Context, job *model.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items[job.ID] = *job
	r.order = append(r.order, job.ID)
	return nil
}

func (r *JobPostingStore) FindByID(_ context.Context, id uuid.UUID) (*model.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.Items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &j, nil
}

func (r *JobPostingStore) UpdateEmbedding(_ context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.Items[id]
	if !ok {
		return repository.ErrNotFound
	}
	j.Embedding = &embedding
	r.Items[id] = j
	return nil
}

// SearchSimilar ignores distance and returns embedded postings in insertion order.
func (r *JobPostingStore) SearchSimilar(_ context.Context, _ pgvector.Vector, excludeSession uuid.UUID, topK int) ([]model.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.JobPosting
	for _, id := range r.order {
		j := r.Items[id]
		if j.Embedding == nil || j.SessionID == excludeSession {
			continue
		}
		out = append(out, j)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

type PromptStore struct {
	mu    sync.Mutex
	Items []model.PromptTemplate
}

func (r *PromptStore) Create(_ context.Context, p *model.PromptTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Items {
		if existing.Key == p.Key && existing.Language == p.Language && existing.Version == p.Version {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.Items = append(r.Items, *p)
	return nil
}

func (r *PromptStore) FindByID(_ context.Context, id uuid.UUID) (*model.PromptTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PromptStore) FindLatest(_ context.Context, key, language string) (*model.PromptTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.PromptTemplate
	for i := range r.Items {
		p := r.Items[i]
		if p.Key == key && p.Language == language && (latest == nil || p.Version > latest.Version) {
			latest = &p
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (r *PromptStore) ListVersions(_ context.Context, key, language string) ([]model.PromptTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PromptTemplate
	for _, p := range r.Items {
		if p.Key == key && p.Language == language {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r *PromptStore) ListLatest(_ context.Context, filter repository.PromptFilter, offset, limit int) ([]model.PromptTemplate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := map[[2]string]model.PromptTemplate{}
	for _, p := range r.Items {
		if filter.Key != "" && p.Key != filter.Key {
			continue
		}
		if filter.Language != "" && p.Language != filter.Language {
			continue
		}
		k := [2]string{p.Key, p.Language}
		if cur, ok := latest[k]; !ok || p.Version > cur.Version {
			latest[k] = p
		}
	}
	all := make([]model.PromptTemplate, 0, len(latest))
	for _, p := range latest {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Key != all[j].Key {
			return all[i].Key < all[j].Key
		}
		return all[i].Language < all[j].Language
	})
	total := int64(len(all))
	if offset >= len(all) {
		return []model.PromptTemplate{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *PromptStore) DeleteChain(_ context.Context, key, language string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.Items[:0]
	var n int64
	for _, p := range r.Items {
		if p.Key == key && p.Language == language {
			n++
			continue
		}
		kept = append(kept, p)
	}
	r.Items = kept
	return n, nil
}
