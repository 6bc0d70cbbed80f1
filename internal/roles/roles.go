package roles

import (
	"context"
	"fmt"
	"strings"

	"studybuddy/internal/models"
)

// Generator produces a completion for a classification prompt.
type Generator interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// maxPromptChars bounds how much document text is shown to the model.
const maxPromptChars = 4000

const promptTemplate = `You are classifying an academic document uploaded by a professor.

FILENAME:
%s

FILE TYPE:
%s

DOCUMENT TEXT (BEGINNING ONLY):
%s

Choose EXACTLY ONE role from the list below that best represents the PURPOSE of this document.

ROLES:
- syllabus
- marks_distribution
- study_material
- practice_sets
- unknown

RULES:
- If the document describes marks, grading, evaluation, weightage, internal/external exams, choose "marks_distribution"
- If the document contains unit-wise explanations, lecture slides, notes, concepts, choose "study_material"
- If the document contains exercises, questions, problem sets, choose "practice_sets"
- If none apply or you are unsure, choose "unknown"

IMPORTANT:
- Do NOT explain your choice
- Output must be exactly one of the role strings above

ROLE:
`

var (
	marksKeywords    = []string{"marks", "evaluation", "weightage", "grading"}
	practiceKeywords = []string{"question", "practice", "exercise", "problem"}
)

// Classifier assigns a purpose role to classroom documents. Filename keyword
// heuristics take precedence; the LLM is only consulted when they are
// inconclusive.
type Classifier struct {
	llm Generator
}

// NewClassifier creates a Classifier. A nil generator disables the LLM
// fallback, leaving heuristic misses as unknown.
func NewClassifier(llm Generator) *Classifier {
	return &Classifier{llm: llm}
}

// Classify returns the role for a document. Model answers outside the allowed
// set collapse to unknown.
func (c *Classifier) Classify(ctx context.Context, doc models.Document) (models.Role, error) {
	title := strings.ToLower(doc.Title)

	if strings.Contains(title, "syllabus") {
		return models.RoleSyllabus, nil
	}
	if containsAny(title, marksKeywords) {
		return models.RoleMarksDistribution, nil
	}
	if containsAny(title, practiceKeywords) {
		return models.RolePracticeSets, nil
	}

	if c.llm == nil {
		return models.RoleUnknown, nil
	}

	text := doc.RawText
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}
	prompt := fmt.Sprintf(promptTemplate, doc.Title, doc.FileType, text)

	answer, err := c.llm.GenerateResponse(ctx, prompt)
	if err != nil {
		return models.RoleUnknown, fmt.Errorf("failed to classify document %s: %w", doc.ID, err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if models.ValidRole(answer) {
		return models.Role(answer), nil
	}
	return models.RoleUnknown, nil
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
