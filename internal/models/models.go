package models

import "time"

// Role classifies the purpose of a classroom document.
type Role string

const (
	RoleSyllabus          Role = "syllabus"
	RoleMarksDistribution Role = "marks_distribution"
	RoleStudyMaterial     Role = "study_material"
	RolePracticeSets      Role = "practice_sets"
	RoleUnknown           Role = "unknown"
)

// ValidRole reports whether s is one of the allowed role labels.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleSyllabus, RoleMarksDistribution, RoleStudyMaterial, RolePracticeSets, RoleUnknown:
		return true
	}
	return false
}

// Eligible reports whether documents with this role get topic associations.
// Syllabi, marks breakdowns and practice sets are never topic-mapped.
func (r Role) Eligible() bool {
	return r == RoleStudyMaterial || r == RoleUnknown
}

// Course represents a Google Classroom course normalized into the store.
type Course struct {
	ID             string    `json:"id"`
	GCCourseID     string    `json:"gc_course_id"`
	Name           string    `json:"name"`
	Section        string    `json:"section"`
	CourseState    string    `json:"course_state"`
	IsOpenElective bool      `json:"is_open_elective"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Document is a course material file with its extracted text.
type Document struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	GCMaterialID string    `json:"gc_material_id"`
	DriveFileID  string    `json:"drive_file_id"`
	Title        string    `json:"title"`
	FileType     string    `json:"file_type"`
	Source       string    `json:"source"`
	Role         Role      `json:"role"`
	RawText      string    `json:"raw_text"`
	Parsed       bool      `json:"parsed"`
	CreatedAt    time.Time `json:"created_at"`
}

// Assessment is a graded coursework item or an exam inferred from announcements.
type Assessment struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	DueDate   string    `json:"due_date,omitempty"`
	MaxPoints *int      `json:"max_points,omitempty"`
	Source    string    `json:"source"`
	Inferred  bool      `json:"inferred"`
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a token-bounded segment of a document's text, the unit downstream
// consumers embed and retrieve.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	CourseID   string    `json:"course_id"`
	Index      int       `json:"chunk_index"`
	Text       string    `json:"text"`
	TokenCount int       `json:"token_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Topic is a curriculum topic scoped to a course, with the label text its
// embedding is computed from (unit name plus topic name).
type Topic struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Label    string `json:"label"`
}

// ChunkTopic associates a chunk with a curriculum topic. Rank 1 always carries
// a similarity greater than or equal to rank 2's. Inferred is always true:
// these rows are algorithmically derived, never human-confirmed.
type ChunkTopic struct {
	ID         string    `json:"id"`
	ChunkID    string    `json:"chunk_id"`
	TopicID    string    `json:"topic_id"`
	Similarity float64   `json:"similarity"`
	Rank       int       `json:"rank"`
	Inferred   bool      `json:"inferred"`
	CreatedAt  time.Time `json:"created_at"`
}
