// Package store defines the persistence boundary. The marketplace never
// talks to a database directly; every backend (memory, MySQL, PostgreSQL,
// MongoDB) implements these interfaces.
package store

import (
	"context"
	"errors"

	"github.com/barkshad/Real-estate/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("record already exists")
)

// PropertyStore persists listings. List returns records newest first.
type PropertyStore interface {
	CreateProperty(ctx context.Context, draft models.PropertyDraft, ownerID string) (*models.Property, error)
	DeleteProperty(ctx context.Context, id string) error
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	ListProperties(ctx context.Context, ownerID string) ([]models.Property, error)
}

// SettingsStore holds the singleton site settings document
type SettingsStore interface {
	GetSettings(ctx context.Context) (*models.SiteSettings, error)
	MergeSettings(ctx context.Context, patch models.SettingsPatch) (*models.SiteSettings, error)
}

// InquiryStore persists contact-form submissions. List returns newest first.
type InquiryStore interface {
	CreateInquiry(ctx context.Context, draft models.InquiryDraft) (*models.Inquiry, error)
	ListInquiries(ctx context.Context) ([]models.Inquiry, error)
	SetInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error
}

// AccountStore persists credentials for the identity provider
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Store is the full backend used by the service
type Store interface {
	PropertyStore
	SettingsStore
	InquiryStore
	AccountStore
	Close() error
}
