package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/barkshad/Real-estate/internal/config"
	"github.com/barkshad/Real-estate/internal/store"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.DatabaseConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*store.Memory); !ok {
		t.Errorf("got %T, want *store.Memory", s)
	}
}

func TestOpenUnknownType(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{Type: "sqlite"}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestAdaptersImplementStore(t *testing.T) {
	var _ store.Store = (*GormDB)(nil)
	var _ store.Store = (*DB)(nil)
	var _ store.Store = (*MongoStore)(nil)
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name string
		got  error
		want error
	}{
		{"gorm not found", translate(gorm.ErrRecordNotFound), store.ErrNotFound},
		{"gorm duplicate", translate(gorm.ErrDuplicatedKey), store.ErrConflict},
		{"mongo no documents", translateMongo(mongo.ErrNoDocuments), store.ErrNotFound},
		{"pq unique violation", translatePQ(&pq.Error{Code: "23505"}), store.ErrConflict},
		{"pq no rows", translatePQ(sql.ErrNoRows), store.ErrNotFound},
		{"mongo unauthorized", translateMongo(mongo.CommandError{Code: 13, Message: "not authorized"}), store.ErrPermissionDenied},
	}
	for _, tt := range tests {
		if !errors.Is(tt.got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if translate(nil) != nil || translateMongo(nil) != nil || translatePQ(nil) != nil {
		t.Error("nil should stay nil")
	}
}

func TestPortOrDefault(t *testing.T) {
	if got := portOrDefault(0, "3306"); got != "3306" {
		t.Errorf("got %q", got)
	}
	if got := portOrDefault(3307, "3306"); got != "3307" {
		t.Errorf("got %q", got)
	}
}
