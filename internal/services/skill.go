package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/normalization"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/types"
)

// SkillSuggestion is the normalized form of a free-text skill request.
type SkillSuggestion struct {
	Name                   string `json:"name"`
	Category               string `json:"category"`
	Description            string `json:"description"`
	DifficultyLevel        string `json:"difficulty_level"`
	EstimatedDurationWeeks int    `json:"estimated_duration_weeks"`
	Source                 string `json:"source"`
}

type AssessmentQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type Assessment struct {
	SkillName string               `json:"skill_name"`
	Questions []AssessmentQuestion `json:"questions"`
	Source    string               `json:"source"`
}

type SkillService interface {
	SuggestSkill(ctx context.Context, rawInput string) (*SkillSuggestion, error)
	GenerateAssessment(ctx context.Context, skillName string) (*Assessment, error)
}

type skillService struct {
	log       *logger.Logger
	aiClient  AIClient
	skillRepo repos.SkillRepo
}

// popularSkills is the fallback catalog used when the AI call fails.
// Names are stored lowercase for similarity matching.
var popularSkills = []SkillSuggestion{
	{Name: "Python Programming", Category: "programming", Description: "General-purpose programming with Python", DifficultyLevel: "beginner", EstimatedDurationWeeks: 12},
	{Name: "JavaScript", Category: "programming", Description: "Web development with JavaScript", DifficultyLevel: "beginner", EstimatedDurationWeeks: 12},
	{Name: "Go", Category: "programming", Description: "Backend development with Go", DifficultyLevel: "intermediate", EstimatedDurationWeeks: 10},
	{Name: "Data Science", Category: "data", Description: "Statistics, pandas and machine learning basics", DifficultyLevel: "intermediate", EstimatedDurationWeeks: 16},
	{Name: "Machine Learning", Category: "data", Description: "Supervised and unsupervised learning fundamentals", DifficultyLevel: "advanced", EstimatedDurationWeeks: 20},
	{Name: "UI Design", Category: "design", Description: "Interface design principles and tooling", DifficultyLevel: "beginner", EstimatedDurationWeeks: 8},
	{Name: "Digital Marketing", Category: "business", Description: "Channels, analytics and campaign planning", DifficultyLevel: "beginner", EstimatedDurationWeeks: 8},
	{Name: "Spanish", Category: "language", Description: "Conversational Spanish", DifficultyLevel: "beginner", EstimatedDurationWeeks: 24},
	{Name: "Guitar", Category: "music", Description: "Acoustic guitar from scratch", DifficultyLevel: "beginner", EstimatedDurationWeeks: 16},
	{Name: "Photography", Category: "creative", Description: "Camera craft and composition", DifficultyLevel: "beginner", EstimatedDurationWeeks: 10},
}

const skillMatchThreshold = 0.6

func NewSkillService(log *logger.Logger, aiClient AIClient, skillRepo repos.SkillRepo) SkillService {
	return &skillService{
		log:       log.With("service", "SkillService"),
		aiClient:  aiClient,
		skillRepo: skillRepo,
	}
}

var skillSuggestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":                     map[string]any{"type": "string"},
		"category":                 map[string]any{"type": "string"},
		"description":              map[string]any{"type": "string"},
		"difficulty_level":         map[string]any{"type": "string", "enum": []string{"beginner", "intermediate", "advanced"}},
		"estimated_duration_weeks": map[string]any{"type": "integer"},
	},
	"required":             []string{"name", "category", "description", "difficulty_level", "estimated_duration_weeks"},
	"additionalProperties": false,
}

func (ss *skillService) SuggestSkill(ctx context.Context, rawInput string) (*SkillSuggestion, error) {
	input := normalization.ParseInputString(rawInput)
	if input == "" {
		return nil, fmt.Errorf("skill input must not be empty")
	}

	// Known skills short-circuit the AI call entirely.
	if cached := ss.catalogLookup(ctx, input); cached != nil {
		return cached, nil
	}

	if ss.aiClient != nil {
		suggestion, err := ss.suggestViaAI(ctx, input)
		if err == nil {
			ss.catalogStore(ctx, suggestion)
			return suggestion, nil
		}
		ss.log.Warn("AI skill suggestion failed, using fallback", "error", err)
	}

	return ss.fallbackSuggestion(input), nil
}

func (ss *skillService) catalogLookup(ctx context.Context, input string) *SkillSuggestion {
	if ss.skillRepo == nil {
		return nil
	}
	skill, err := ss.skillRepo.GetByName(ctx, nil, input)
	if err != nil {
		ss.log.Warn("Skill catalog lookup failed", "error", err)
		return nil
	}
	if skill == nil {
		return nil
	}
	return &SkillSuggestion{
		Name:                   skill.Name,
		Category:               skill.Category,
		Description:            skill.Description,
		DifficultyLevel:        skill.DifficultyLevel,
		EstimatedDurationWeeks: skill.EstimatedDurationWeeks,
		Source:                 "catalog",
	}
}

// catalogStore persists an AI suggestion so the next request for the
// same skill is served without an AI round trip. Best effort.
func (ss *skillService) catalogStore(ctx context.Context, suggestion *SkillSuggestion) {
	if ss.skillRepo == nil {
		return
	}
	err := ss.skillRepo.Upsert(ctx, nil, &types.Skill{
		Name:                   suggestion.Name,
		Description:            suggestion.Description,
		Category:               suggestion.Category,
		DifficultyLevel:        suggestion.DifficultyLevel,
		EstimatedDurationWeeks: suggestion.EstimatedDurationWeeks,
		IsActive:               true,
	})
	if err != nil {
		ss.log.Warn("Skill catalog upsert failed", "error", err)
	}
}

func (ss *skillService) suggestViaAI(ctx context.Context, input string) (*SkillSuggestion, error) {
	system := "You normalize free-text learning goals into a canonical skill. Respond with a single well-known skill."
	user := fmt.Sprintf("The user wants to learn: %q. Suggest the canonical skill name, a category, a one-sentence description, a difficulty level and a realistic duration in weeks.", input)

	raw, err := ss.aiClient.GenerateJSON(ctx, system, user, "skill_suggestion", skillSuggestSchema)
	if err != nil {
		return nil, err
	}

	suggestion := &SkillSuggestion{
		Name:            stringField(raw, "name"),
		Category:        stringField(raw, "category"),
		Description:     stringField(raw, "description"),
		DifficultyLevel: stringField(raw, "difficulty_level"),
		Source:          "ai",
	}
	suggestion.EstimatedDurationWeeks = intField(raw, "estimated_duration_weeks")

	if suggestion.Name == "" {
		return nil, fmt.Errorf("AI response missing skill name")
	}
	if suggestion.EstimatedDurationWeeks <= 0 {
		suggestion.EstimatedDurationWeeks = 12
	}
	return suggestion, nil
}

// fallbackSuggestion matches the input against the popular skills table
// and falls back to a generic entry built from the input itself.
func (ss *skillService) fallbackSuggestion(input string) *SkillSuggestion {
	stripped := normalization.StripPunctuation(input)

	var best *SkillSuggestion
	bestRatio := 0.0
	for i := range popularSkills {
		candidate := strings.ToLower(popularSkills[i].Name)
		ratio := normalization.SimilarityRatio(stripped, candidate)
		if strings.Contains(stripped, candidate) || strings.Contains(candidate, stripped) {
			ratio = 1.0
		}
		if ratio > bestRatio {
			bestRatio = ratio
			best = &popularSkills[i]
		}
	}

	if best != nil && bestRatio > skillMatchThreshold {
		out := *best
		out.Source = "fallback"
		return &out
	}

	return &SkillSuggestion{
		Name:                   normalization.TitleCase(stripped),
		Category:               "general",
		Description:            fmt.Sprintf("Learn %s step by step", normalization.TitleCase(stripped)),
		DifficultyLevel:        "beginner",
		EstimatedDurationWeeks: 12,
		Source:                 "fallback",
	}
}

var assessmentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required":             []string{"question", "options"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"questions"},
	"additionalProperties": false,
}

func (ss *skillService) GenerateAssessment(ctx context.Context, skillName string) (*Assessment, error) {
	name := strings.TrimSpace(skillName)
	if name == "" {
		return nil, fmt.Errorf("skill name must not be empty")
	}

	if ss.aiClient != nil {
		assessment, err := ss.assessmentViaAI(ctx, name)
		if err == nil {
			return assessment, nil
		}
		ss.log.Warn("AI assessment generation failed, using fallback", "error", err)
	}

	return fallbackAssessment(name), nil
}

func (ss *skillService) assessmentViaAI(ctx context.Context, skillName string) (*Assessment, error) {
	system := "You create short self-assessment quizzes for learners. Each question has exactly four options ordered from least to most experienced."
	user := fmt.Sprintf("Create 3 multiple-choice questions to estimate how experienced someone already is with %s.", skillName)

	raw, err := ss.aiClient.GenerateJSON(ctx, system, user, "skill_assessment", assessmentSchema)
	if err != nil {
		return nil, err
	}

	rawQuestions, _ := raw["questions"].([]any)
	questions := make([]AssessmentQuestion, 0, len(rawQuestions))
	for _, rq := range rawQuestions {
		obj, ok := rq.(map[string]any)
		if !ok {
			continue
		}
		q := AssessmentQuestion{Question: stringField(obj, "question")}
		rawOpts, _ := obj["options"].([]any)
		for _, ro := range rawOpts {
			if s, ok := ro.(string); ok && s != "" {
				q.Options = append(q.Options, s)
			}
		}
		if q.Question != "" && len(q.Options) >= 2 {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("AI response contained no usable questions")
	}

	return &Assessment{SkillName: skillName, Questions: questions, Source: "ai"}, nil
}

func fallbackAssessment(skillName string) *Assessment {
	levels := []string{"Complete beginner", "Some exposure", "Comfortable with basics", "Experienced"}
	return &Assessment{
		SkillName: skillName,
		Questions: []AssessmentQuestion{
			{Question: fmt.Sprintf("How would you rate your current experience with %s?", skillName), Options: levels},
			{Question: fmt.Sprintf("How many hours per week can you spend on %s?", skillName), Options: []string{"Under 2", "2-5", "5-10", "More than 10"}},
			{Question: "What is your main goal?", Options: []string{"Curiosity", "Hobby project", "Career change", "Advance in current job"}},
		},
		Source: "fallback",
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
