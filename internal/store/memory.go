package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/barkshad/Real-estate/internal/models"
	"github.com/google/uuid"
)

// Memory is an in-process Store. It backs the "memory" database type and
// the tests.
type Memory struct {
	mu         sync.RWMutex
	properties map[string]models.Property
	inquiries  map[string]models.Inquiry
	accounts   map[string]models.Account
	settings   *models.SiteSettings
	now        func() time.Time
}

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{
		properties: make(map[string]models.Property),
		inquiries:  make(map[string]models.Inquiry),
		accounts:   make(map[string]models.Account),
		now:        time.Now,
	}
}

// SetClock replaces the creation-time source
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) CreateProperty(ctx context.Context, draft models.PropertyDraft, ownerID string) (*models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := draft.ToProperty(ownerID, m.now())
	p.ID = uuid.NewString()
	m.properties[p.ID] = p
	return &p, nil
}

func (m *Memory) DeleteProperty(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.properties[id]; !ok {
		return ErrNotFound
	}
	delete(m.properties, id)
	return nil
}

func (m *Memory) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	properties := make([]models.Property, 0, len(m.properties))
	for _, p := range m.properties {
		if ownerID != "" && p.OwnerID != ownerID {
			continue
		}
		properties = append(properties, p)
	}
	sort.SliceStable(properties, func(i, j int) bool {
		if properties[i].CreatedAt.Equal(properties[j].CreatedAt) {
			return properties[i].ID < properties[j].ID
		}
		return properties[i].CreatedAt.After(properties[j].CreatedAt)
	})
	return properties, nil
}

func (m *Memory) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return nil, ErrNotFound
	}
	s := *m.settings
	return &s, nil
}

func (m *Memory) MergeSettings(ctx context.Context, patch models.SettingsPatch) (*models.SiteSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current := models.SiteSettings{ID: models.SettingsDocumentID}
	if m.settings != nil {
		current = *m.settings
	}
	merged := current.Merge(patch)
	merged.UpdatedAt = m.now()
	m.settings = &merged
	s := merged
	return &s, nil
}

func (m *Memory) CreateInquiry(ctx context.Context, draft models.InquiryDraft) (*models.Inquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	inq := draft.ToInquiry(m.now())
	inq.ID = uuid.NewString()
	m.inquiries[inq.ID] = inq
	return &inq, nil
}

func (m *Memory) ListInquiries(ctx context.Context) ([]models.Inquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	inquiries := make([]models.Inquiry, 0, len(m.inquiries))
	for _, inq := range m.inquiries {
		inquiries = append(inquiries, inq)
	}
	sort.SliceStable(inquiries, func(i, j int) bool {
		return inquiries[i].CreatedAt.After(inquiries[j].CreatedAt)
	})
	return inquiries, nil
}

func (m *Memory) SetInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	inq, ok := m.inquiries[id]
	if !ok {
		return ErrNotFound
	}
	inq.Status = status
	m.inquiries[id] = inq
	return nil
}

func (m *Memory) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, exists := m.accounts[key]; exists {
		return ErrConflict
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = m.now()
	}
	m.accounts[key] = *account
	return nil
}

func (m *Memory) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (m *Memory) Close() error {
	return nil
}
