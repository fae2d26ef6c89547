package db

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

func TestSqliteMigrateAndInsert(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	svc, err := NewService(log)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}

	user := &types.User{
		Email:    "sqlite@example.com",
		Name:     "Sqlite User",
		Password: "x",
	}
	if err := svc.DB().Create(user).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatalf("expected BeforeCreate to assign an ID")
	}

	var got types.User
	if err := svc.DB().First(&got, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("read user back: %v", err)
	}
	if got.Email != user.Email {
		t.Fatalf("got email %q, want %q", got.Email, user.Email)
	}
	if got.SubscriptionType != types.SubscriptionFree {
		t.Fatalf("got subscription %q, want default %q", got.SubscriptionType, types.SubscriptionFree)
	}
}
