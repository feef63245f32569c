package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/store"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DB is the PostgreSQL store
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id VARCHAR(64) PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(15, 2) NOT NULL,
		location VARCHAR(255) NOT NULL,
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms NUMERIC(4, 1) NOT NULL DEFAULT 0,
		square_feet INTEGER NOT NULL DEFAULT 0,
		images TEXT[] NOT NULL DEFAULT '{}',
		status VARCHAR(20) NOT NULL DEFAULT 'for_sale',
		owner_id VARCHAR(64) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_properties_owner_id ON properties(owner_id);
	CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price);

	CREATE TABLE IF NOT EXISTS site_settings (
		id VARCHAR(32) PRIMARY KEY,
		brand_name VARCHAR(120) NOT NULL DEFAULT '',
		hero_title TEXT NOT NULL DEFAULT '',
		hero_subtitle TEXT NOT NULL DEFAULT '',
		primary_color VARCHAR(32) NOT NULL DEFAULT '',
		contact_email VARCHAR(190) NOT NULL DEFAULT '',
		footer_text TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS inquiries (
		id VARCHAR(64) PRIMARY KEY,
		property_id VARCHAR(64) NOT NULL,
		property_title TEXT NOT NULL DEFAULT '',
		user_name VARCHAR(120) NOT NULL,
		user_email VARCHAR(190) NOT NULL,
		message TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_inquiries_created_at ON inquiries(created_at DESC);

	CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR(64) PRIMARY KEY,
		email VARCHAR(190) NOT NULL UNIQUE,
		display_name VARCHAR(120) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.conn.Exec(query)
	return err
}

const propertyColumns = `id, title, description, price, location, bedrooms, bathrooms,
	square_feet, images, status, owner_id, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(row scanner) (models.Property, error) {
	var p models.Property
	var images pq.StringArray
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Location, &p.Bedrooms, &p.Bathrooms,
		&p.SquareFeet, &images, &p.Status, &p.OwnerID, &p.CreatedAt,
	)
	p.Images = []string(images)
	return p, err
}

func (db *DB) CreateProperty(ctx context.Context, draft models.PropertyDraft, ownerID string) (*models.Property, error) {
	p := draft.ToProperty(ownerID, time.Now())
	p.ID = uuid.NewString()

	query := `
	INSERT INTO properties (` + propertyColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := db.conn.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.Price, p.Location, p.Bedrooms, p.Bathrooms,
		p.SquareFeet, pq.Array(p.Images), p.Status, p.OwnerID, p.CreatedAt)
	if err != nil {
		return nil, translatePQ(err)
	}
	return &p, nil
}

func (db *DB) DeleteProperty(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return translatePQ(err)
	}
	return requireRow(result)
}

func (db *DB) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(db.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translatePQ(err)
	}
	return &p, nil
}

// ListProperties returns listings newest first, optionally for one owner
func (db *DB) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties`
	var args []any
	if ownerID != "" {
		query += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translatePQ(err)
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (db *DB) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	query := `
		SELECT id, brand_name, hero_title, hero_subtitle, primary_color, contact_email, footer_text, updated_at
		FROM site_settings
		WHERE id = $1
	`
	var s models.SiteSettings
	err := db.conn.QueryRowContext(ctx, query, models.SettingsDocumentID).Scan(
		&s.ID, &s.BrandName, &s.HeroTitle, &s.HeroSubtitle, &s.PrimaryColor, &s.ContactEmail, &s.FooterText, &s.UpdatedAt,
	)
	if err != nil {
		return nil, translatePQ(err)
	}
	return &s, nil
}

// settingsColumns maps patch field names onto site_settings columns
var settingsColumns = map[string]string{
	"brandName":    "brand_name",
	"heroTitle":    "hero_title",
	"heroSubtitle": "hero_subtitle",
	"primaryColor": "primary_color",
	"contactEmail": "contact_email",
	"footerText":   "footer_text",
}

// MergeSettings upserts the singleton row, touching only the patched columns
func (db *DB) MergeSettings(ctx context.Context, patch models.SettingsPatch) (*models.SiteSettings, error) {
	fields := patch.Fields()
	columns := []string{"id", "updated_at"}
	args := []any{models.SettingsDocumentID, time.Now()}
	updates := []string{"updated_at = EXCLUDED.updated_at"}

	for _, key := range []string{"brandName", "heroTitle", "heroSubtitle", "primaryColor", "contactEmail", "footerText"} {
		value, ok := fields[key]
		if !ok {
			continue
		}
		column := settingsColumns[key]
		columns = append(columns, column)
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
	INSERT INTO site_settings (%s)
	VALUES (%s)
	ON CONFLICT (id) DO UPDATE SET %s
	`, strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return nil, translatePQ(err)
	}
	return db.GetSettings(ctx)
}

func (db *DB) CreateInquiry(ctx context.Context, draft models.InquiryDraft) (*models.Inquiry, error) {
	inq := draft.ToInquiry(time.Now())
	inq.ID = uuid.NewString()

	query := `
	INSERT INTO inquiries (id, property_id, property_title, user_name, user_email, message, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.conn.ExecContext(ctx, query,
		inq.ID, inq.PropertyID, inq.PropertyTitle, inq.UserName, inq.UserEmail, inq.Message, inq.Status, inq.CreatedAt)
	if err != nil {
		return nil, translatePQ(err)
	}
	return &inq, nil
}

func (db *DB) ListInquiries(ctx context.Context) ([]models.Inquiry, error) {
	query := `
		SELECT id, property_id, property_title, user_name, user_email, message, status, created_at
		FROM inquiries
		ORDER BY created_at DESC
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, translatePQ(err)
	}
	defer rows.Close()

	inquiries := []models.Inquiry{}
	for rows.Next() {
		var inq models.Inquiry
		err := rows.Scan(&inq.ID, &inq.PropertyID, &inq.PropertyTitle, &inq.UserName,
			&inq.UserEmail, &inq.Message, &inq.Status, &inq.CreatedAt)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inq)
	}
	return inquiries, rows.Err()
}

func (db *DB) SetInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	result, err := db.conn.ExecContext(ctx, `UPDATE inquiries SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return translatePQ(err)
	}
	return requireRow(result)
}

func (db *DB) CreateAccount(ctx context.Context, account *models.Account) error {
	account.Email = strings.ToLower(account.Email)
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO accounts (id, email, display_name, password_hash, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.conn.ExecContext(ctx, query,
		account.ID, account.Email, account.DisplayName, account.PasswordHash, account.CreatedAt)
	return translatePQ(err)
}

func (db *DB) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at
		FROM accounts
		WHERE email = $1
	`
	var a models.Account
	err := db.conn.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.CreatedAt,
	)
	if err != nil {
		return nil, translatePQ(err)
	}
	return &a, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// translatePQ maps driver errors onto the store sentinels
func translatePQ(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return store.ErrConflict
		case "42501":
			return store.ErrPermissionDenied
		}
	}
	return err
}
