package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/store"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormDB is the MySQL store
type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.SiteSettings{},
		&models.Inquiry{},
		&models.Account{},
	)
}

func (gdb *GormDB) CreateProperty(ctx context.Context, draft models.PropertyDraft, ownerID string) (*models.Property, error) {
	p := draft.ToProperty(ownerID, time.Now())
	p.ID = uuid.NewString()
	if err := gdb.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// DeleteProperty removes the row; there is no soft delete for listings
func (gdb *GormDB) DeleteProperty(ctx context.Context, id string) error {
	result := gdb.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Property{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (gdb *GormDB) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	if err := gdb.db.WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		return nil, translate(err)
	}
	return &property, nil
}

// ListProperties returns listings newest first, optionally for one owner
func (gdb *GormDB) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	query := gdb.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	properties := []models.Property{}
	if err := query.Find(&properties).Error; err != nil {
		return nil, translate(err)
	}
	return properties, nil
}

func (gdb *GormDB) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := gdb.db.WithContext(ctx).Where("id = ?", models.SettingsDocumentID).First(&settings).Error
	if err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}

// MergeSettings applies the patch to the singleton row, creating it when
// missing. The read and the write happen under one row lock.
func (gdb *GormDB) MergeSettings(ctx context.Context, patch models.SettingsPatch) (*models.SiteSettings, error) {
	var merged models.SiteSettings
	err := gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current := models.SiteSettings{ID: models.SettingsDocumentID}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", models.SettingsDocumentID).
			First(&current).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		merged = current.Merge(patch)
		merged.UpdatedAt = time.Now()
		return tx.Save(&merged).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &merged, nil
}

func (gdb *GormDB) CreateInquiry(ctx context.Context, draft models.InquiryDraft) (*models.Inquiry, error) {
	inq := draft.ToInquiry(time.Now())
	inq.ID = uuid.NewString()
	if err := gdb.db.WithContext(ctx).Create(&inq).Error; err != nil {
		return nil, translate(err)
	}
	return &inq, nil
}

func (gdb *GormDB) ListInquiries(ctx context.Context) ([]models.Inquiry, error) {
	inquiries := []models.Inquiry{}
	if err := gdb.db.WithContext(ctx).Order("created_at DESC").Find(&inquiries).Error; err != nil {
		return nil, translate(err)
	}
	return inquiries, nil
}

func (gdb *GormDB) SetInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	result := gdb.db.WithContext(ctx).Model(&models.Inquiry{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (gdb *GormDB) CreateAccount(ctx context.Context, account *models.Account) error {
	account.Email = strings.ToLower(account.Email)
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	return translate(gdb.db.WithContext(ctx).Create(account).Error)
}

func (gdb *GormDB) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := gdb.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// translate maps gorm errors onto the store sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrConflict
	}
	return err
}
