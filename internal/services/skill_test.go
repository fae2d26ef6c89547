package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type fakeAIClient struct {
	result map[string]any
	err    error
}

func (f *fakeAIClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestSuggestSkillUsesAIResult(t *testing.T) {
	ai := &fakeAIClient{result: map[string]any{
		"name":                     "Rust",
		"category":                 "programming",
		"description":              "Systems programming with Rust",
		"difficulty_level":         "advanced",
		"estimated_duration_weeks": float64(14),
	}}
	ss := NewSkillService(testLogger(t), ai, nil)

	got, err := ss.SuggestSkill(context.Background(), "  i want to learn RUST ")
	if err != nil {
		t.Fatalf("SuggestSkill: %v", err)
	}
	if got.Name != "Rust" || got.Source != "ai" {
		t.Fatalf("got name=%q source=%q, want Rust/ai", got.Name, got.Source)
	}
	if got.EstimatedDurationWeeks != 14 {
		t.Fatalf("got weeks=%d, want 14", got.EstimatedDurationWeeks)
	}
}

func TestSuggestSkillFallbackFuzzyMatch(t *testing.T) {
	ai := &fakeAIClient{err: fmt.Errorf("upstream down")}
	ss := NewSkillService(testLogger(t), ai, nil)

	got, err := ss.SuggestSkill(context.Background(), "pyton programing")
	if err != nil {
		t.Fatalf("SuggestSkill: %v", err)
	}
	if got.Name != "Python Programming" {
		t.Fatalf("got name=%q, want Python Programming", got.Name)
	}
	if got.Source != "fallback" {
		t.Fatalf("got source=%q, want fallback", got.Source)
	}
}

func TestSuggestSkillFallbackGeneric(t *testing.T) {
	ai := &fakeAIClient{err: fmt.Errorf("upstream down")}
	ss := NewSkillService(testLogger(t), ai, nil)

	got, err := ss.SuggestSkill(context.Background(), "underwater basket weaving")
	if err != nil {
		t.Fatalf("SuggestSkill: %v", err)
	}
	if got.Name != "Underwater Basket Weaving" {
		t.Fatalf("got name=%q", got.Name)
	}
	if got.Source != "fallback" || got.EstimatedDurationWeeks != 12 {
		t.Fatalf("got source=%q weeks=%d", got.Source, got.EstimatedDurationWeeks)
	}
}

func TestSuggestSkillRejectsEmptyInput(t *testing.T) {
	ss := NewSkillService(testLogger(t), &fakeAIClient{}, nil)
	if _, err := ss.SuggestSkill(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestGenerateAssessmentFallback(t *testing.T) {
	ai := &fakeAIClient{err: fmt.Errorf("upstream down")}
	ss := NewSkillService(testLogger(t), ai, nil)

	got, err := ss.GenerateAssessment(context.Background(), "Go")
	if err != nil {
		t.Fatalf("GenerateAssessment: %v", err)
	}
	if got.Source != "fallback" {
		t.Fatalf("got source=%q, want fallback", got.Source)
	}
	if len(got.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(got.Questions))
	}
	for _, q := range got.Questions {
		if len(q.Options) < 2 {
			t.Fatalf("question %q has %d options", q.Question, len(q.Options))
		}
	}
}

func TestGenerateAssessmentDropsMalformedQuestions(t *testing.T) {
	ai := &fakeAIClient{result: map[string]any{
		"questions": []any{
			map[string]any{"question": "Valid?", "options": []any{"a", "b"}},
			map[string]any{"question": "", "options": []any{"a", "b"}},
			map[string]any{"question": "One option", "options": []any{"a"}},
		},
	}}
	ss := NewSkillService(testLogger(t), ai, nil)

	got, err := ss.GenerateAssessment(context.Background(), "Go")
	if err != nil {
		t.Fatalf("GenerateAssessment: %v", err)
	}
	if got.Source != "ai" || len(got.Questions) != 1 {
		t.Fatalf("got source=%q questions=%d, want ai/1", got.Source, len(got.Questions))
	}
}

type fakeSkillRepo struct {
	skills   map[string]*types.Skill
	upserted []*types.Skill
}

func (f *fakeSkillRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Skill, error) {
	return f.skills[strings.ToLower(name)], nil
}

func (f *fakeSkillRepo) Upsert(ctx context.Context, tx *gorm.DB, skill *types.Skill) error {
	f.upserted = append(f.upserted, skill)
	return nil
}

func (f *fakeSkillRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Skill, error) {
	var out []*types.Skill
	for _, s := range f.skills {
		out = append(out, s)
	}
	return out, nil
}

func TestSuggestSkillCatalogHitSkipsAI(t *testing.T) {
	repo := &fakeSkillRepo{skills: map[string]*types.Skill{
		"rust": {Name: "Rust", Category: "programming", DifficultyLevel: "advanced", EstimatedDurationWeeks: 14},
	}}
	ai := &fakeAIClient{err: fmt.Errorf("must not be called")}
	ss := NewSkillService(testLogger(t), ai, repo)

	got, err := ss.SuggestSkill(context.Background(), "Rust")
	if err != nil {
		t.Fatalf("SuggestSkill: %v", err)
	}
	if got.Source != "catalog" || got.Name != "Rust" {
		t.Fatalf("got name=%q source=%q, want Rust/catalog", got.Name, got.Source)
	}
}

func TestSuggestSkillStoresAIResult(t *testing.T) {
	repo := &fakeSkillRepo{skills: map[string]*types.Skill{}}
	ai := &fakeAIClient{result: map[string]any{
		"name":                     "Kotlin",
		"category":                 "programming",
		"description":              "JVM development with Kotlin",
		"difficulty_level":         "intermediate",
		"estimated_duration_weeks": float64(10),
	}}
	ss := NewSkillService(testLogger(t), ai, repo)

	if _, err := ss.SuggestSkill(context.Background(), "kotlin for android"); err != nil {
		t.Fatalf("SuggestSkill: %v", err)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].Name != "Kotlin" {
		t.Fatalf("expected Kotlin upserted into catalog, got %+v", repo.upserted)
	}
}
