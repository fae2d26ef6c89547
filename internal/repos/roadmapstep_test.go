package repos

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}, &types.Roadmap{}, &types.RoadmapStep{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return gdb
}

func seedRoadmapWithSteps(t *testing.T, gdb *gorm.DB, userID uuid.UUID, active bool, completedHours ...int) {
	t.Helper()
	roadmap := &types.Roadmap{
		UserID:    userID,
		SkillName: "Go",
		Title:     "Learn Go",
		IsActive:  active,
	}
	if err := gdb.Create(roadmap).Error; err != nil {
		t.Fatalf("create roadmap: %v", err)
	}
	for i, hours := range completedHours {
		step := &types.RoadmapStep{
			RoadmapID:      roadmap.ID,
			StepOrder:      i + 1,
			Title:          "Step",
			EstimatedHours: hours,
			IsCompleted:    true,
		}
		if err := gdb.Create(step).Error; err != nil {
			t.Fatalf("create step: %v", err)
		}
	}
}

func TestStepAggregatesOnlyCountActiveRoadmaps(t *testing.T) {
	gdb := newTestDB(t)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	repo := NewRoadmapStepRepo(gdb, log)

	userID := uuid.New()
	seedRoadmapWithSteps(t, gdb, userID, true, 2, 3)
	seedRoadmapWithSteps(t, gdb, userID, false, 10)

	ctx := context.Background()
	counts, err := repo.CountByUser(ctx, nil, userID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if counts.Total != 2 || counts.Completed != 2 {
		t.Fatalf("got counts=%+v, want total=2 completed=2", counts)
	}

	hours, err := repo.SumCompletedHoursByUser(ctx, nil, userID)
	if err != nil {
		t.Fatalf("SumCompletedHoursByUser: %v", err)
	}
	if hours != 5 {
		t.Fatalf("got hours=%d, want 5 (inactive roadmap excluded)", hours)
	}
}
