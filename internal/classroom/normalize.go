package classroom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studybuddy/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dump is the raw Google Classroom export, one block per course.
type Dump []CourseBlock

// CourseBlock groups a course with its materials, coursework and announcements.
type CourseBlock struct {
	Course        CourseInfo     `json:"course"`
	Materials     []Material     `json:"materials"`
	Coursework    []Coursework   `json:"coursework"`
	Announcements []Announcement `json:"announcements"`
}

// CourseInfo is the classroom course record.
type CourseInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Section     string `json:"section"`
	CourseState string `json:"courseState"`
}

// Material is a classroom material post; each may carry several file items.
type Material struct {
	ID        string         `json:"id"`
	Materials []MaterialItem `json:"materials"`
}

// MaterialItem wraps one attached item; only drive files are normalized.
type MaterialItem struct {
	DriveFile *DriveFileWrapper `json:"driveFile"`
}

// DriveFileWrapper mirrors the doubly nested driveFile envelope in the export.
type DriveFileWrapper struct {
	DriveFile *DriveFile `json:"driveFile"`
}

// DriveFile identifies the attached Google Drive file.
type DriveFile struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Coursework is a graded classroom assignment.
type Coursework struct {
	WorkType  string   `json:"workType"`
	Title     string   `json:"title"`
	DueDate   *DueDate `json:"dueDate"`
	MaxPoints *int     `json:"maxPoints"`
}

// DueDate is the classroom date triple.
type DueDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Announcement is a free-text classroom post.
type Announcement struct {
	Text string `json:"text"`
}

// Store is the subset of persistence the normalizer writes through.
type Store interface {
	InsertCourse(ctx context.Context, c *models.Course) error
	InsertDocument(ctx context.Context, d *models.Document) error
	InsertAssessment(ctx context.Context, a *models.Assessment) error
}

// Stats counts what an import produced.
type Stats struct {
	Courses     int
	Documents   int
	Assessments int
}

// Normalizer flattens a classroom dump into course, document and assessment
// rows. Documents start unparsed; text extraction fills them in later.
type Normalizer struct {
	store Store
	log   *zap.SugaredLogger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(store Store, log *zap.SugaredLogger) *Normalizer {
	return &Normalizer{store: store, log: log}
}

var examKeywords = []string{"exam", "test", "class test", "mid", "quiz", "semester"}

// Import writes every course block to the store. It stops at the first store
// error so a partial import is visible in the returned stats.
func (n *Normalizer) Import(ctx context.Context, dump Dump) (Stats, error) {
	var stats Stats
	now := time.Now().UTC()

	for _, block := range dump {
		course := models.Course{
			ID:             uuid.NewString(),
			GCCourseID:     block.Course.ID,
			Name:           block.Course.Name,
			Section:        block.Course.Section,
			CourseState:    block.Course.CourseState,
			IsOpenElective: isOpenElective(block.Course.Name, block.Course.Section),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := n.store.InsertCourse(ctx, &course); err != nil {
			return stats, fmt.Errorf("failed to insert course %s: %w", block.Course.ID, err)
		}
		stats.Courses++

		for _, material := range block.Materials {
			for _, item := range material.Materials {
				if item.DriveFile == nil || item.DriveFile.DriveFile == nil {
					continue
				}
				drive := item.DriveFile.DriveFile

				doc := models.Document{
					ID:           uuid.NewString(),
					CourseID:     course.ID,
					GCMaterialID: material.ID,
					DriveFileID:  drive.ID,
					Title:        drive.Title,
					FileType:     inferFileType(drive.Title),
					Source:       "classroom",
					Parsed:       false,
					CreatedAt:    now,
				}
				if err := n.store.InsertDocument(ctx, &doc); err != nil {
					return stats, fmt.Errorf("failed to insert document %s: %w", drive.ID, err)
				}
				stats.Documents++
			}
		}

		for _, work := range block.Coursework {
			workType := strings.ToLower(work.WorkType)
			if workType == "" {
				workType = "unknown"
			}

			assessment := models.Assessment{
				ID:        uuid.NewString(),
				CourseID:  course.ID,
				Type:      workType,
				Title:     work.Title,
				DueDate:   formatDueDate(work.DueDate),
				MaxPoints: work.MaxPoints,
				Source:    "coursework",
				Inferred:  false,
				CreatedAt: now,
			}
			if err := n.store.InsertAssessment(ctx, &assessment); err != nil {
				return stats, fmt.Errorf("failed to insert assessment %q: %w", work.Title, err)
			}
			stats.Assessments++
		}

		for _, ann := range block.Announcements {
			if !containsExamKeywords(ann.Text) {
				continue
			}

			assessment := models.Assessment{
				ID:        uuid.NewString(),
				CourseID:  course.ID,
				Type:      "class_test",
				Title:     "Inferred from announcement",
				Source:    "announcement",
				Inferred:  true,
				CreatedAt: now,
			}
			if err := n.store.InsertAssessment(ctx, &assessment); err != nil {
				return stats, fmt.Errorf("failed to insert inferred assessment: %w", err)
			}
			stats.Assessments++
		}

		n.log.Debugw("course imported", "course", course.Name)
	}

	return stats, nil
}

func inferFileType(filename string) string {
	if filename == "" {
		return ""
	}
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return "pdf"
	case strings.HasSuffix(name, ".ppt"), strings.HasSuffix(name, ".pptx"):
		return "ppt"
	case strings.HasSuffix(name, ".doc"), strings.HasSuffix(name, ".docx"):
		return "docx"
	}
	return "unknown"
}

func isOpenElective(name, section string) bool {
	nameLower := strings.ToLower(name)
	return strings.Contains(nameLower, "open elective") ||
		strings.ToLower(section) == "open elective" ||
		strings.HasPrefix(nameLower, "oe")
}

func containsExamKeywords(text string) bool {
	text = strings.ToLower(text)
	for _, k := range examKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func formatDueDate(d *DueDate) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
