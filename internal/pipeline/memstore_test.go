package pipeline

import (
	"context"
	"sync"

	"github.com/jonathan/cv-tailor/internal/db"
	"github.com/jonathan/cv-tailor/internal/types"
)

// memStore is an in-memory Store with the same overwrite semantics as
// the real persistence layer.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]*types.ProfileSnapshot
	analyses map[string]*db.AnalysisRecord
	cvs      map[string]*db.CVRecord

	failSetCVProcessing bool
}

func newMemStore() *memStore {
	return &memStore{
		profiles: make(map[string]*types.ProfileSnapshot),
		analyses: make(map[string]*db.AnalysisRecord),
		cvs:      make(map[string]*db.CVRecord),
	}
}

func (m *memStore) GetProfileSnapshot(_ context.Context, userID string) (*types.ProfileSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, db.ErrProfileNotFound
	}
	return profile, nil
}

func (m *memStore) ReplaceProfile(_ context.Context, snapshot *types.ProfileSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[snapshot.UserID] = snapshot
	return nil
}

func (m *memStore) GetAnalysis(_ context.Context, id string) (*db.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.analyses[id]
	if !ok {
		return nil, db.ErrAnalysisNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memStore) SetAnalysisProcessing(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.analyses[id]
	if !ok {
		record = &db.AnalysisRecord{ID: id}
		m.analyses[id] = record
	}
	record.Status = types.StatusProcessing
	record.Diagnostic = ""
	return nil
}

func (m *memStore) CompleteAnalysis(_ context.Context, id string, result *types.AnalysisResult, requirements *types.JobRequirements) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.analyses[id]
	if !ok {
		record = &db.AnalysisRecord{ID: id}
		m.analyses[id] = record
	}
	record.Status = types.StatusCompleted
	record.Result = result
	record.Requirements = requirements
	record.Diagnostic = ""
	return nil
}

func (m *memStore) FailAnalysis(_ context.Context, id, diagnostic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.analyses[id]
	if !ok {
		record = &db.AnalysisRecord{ID: id}
		m.analyses[id] = record
	}
	record.Status = types.StatusFailed
	record.Diagnostic = diagnostic
	return nil
}

func (m *memStore) GetCV(_ context.Context, id string) (*db.CVRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.cvs[id]
	if !ok {
		return nil, db.ErrCVNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memStore) SetCVProcessing(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetCVProcessing {
		return errTransient
	}
	record, ok := m.cvs[id]
	if !ok {
		record = &db.CVRecord{ID: id}
		m.cvs[id] = record
	}
	record.Status = types.StatusProcessing
	record.Diagnostic = ""
	return nil
}

func (m *memStore) CompleteCV(_ context.Context, id string, data *types.CVData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.cvs[id]
	if !ok {
		record = &db.CVRecord{ID: id}
		m.cvs[id] = record
	}
	record.Status = types.StatusCompleted
	record.Data = data
	record.Diagnostic = ""
	return nil
}

func (m *memStore) FailCV(_ context.Context, id, diagnostic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.cvs[id]
	if !ok {
		record = &db.CVRecord{ID: id}
		m.cvs[id] = record
	}
	record.Status = types.StatusFailed
	record.Diagnostic = diagnostic
	return nil
}
