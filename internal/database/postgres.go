package database

import (
	"context"
	"fmt"

	"studybuddy/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents the database connection
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection
func NewDB(connStr string) (*DB, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Initialize sets up the database tables and indices
func (db *DB) Initialize(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS courses (
            id TEXT PRIMARY KEY,
            gc_course_id TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL,
            section TEXT,
            course_state TEXT,
            is_open_elective BOOLEAN,
            created_at TIMESTAMP,
            updated_at TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create courses table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS documents (
            id TEXT PRIMARY KEY,
            course_id TEXT REFERENCES courses(id) ON DELETE CASCADE,
            gc_material_id TEXT,
            drive_file_id TEXT,
            title TEXT,
            file_type TEXT,
            source TEXT,
            role TEXT,
            raw_text TEXT,
            parsed BOOLEAN,
            created_at TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS assessments (
            id TEXT PRIMARY KEY,
            course_id TEXT REFERENCES courses(id) ON DELETE CASCADE,
            type TEXT,
            title TEXT,
            due_date DATE,
            max_points INTEGER,
            source TEXT,
            inferred BOOLEAN,
            created_at TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create assessments table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS units (
            id TEXT PRIMARY KEY,
            course_id TEXT REFERENCES courses(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            order_index INTEGER,
            inferred BOOLEAN
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create units table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS topics (
            id TEXT PRIMARY KEY,
            course_id TEXT REFERENCES courses(id) ON DELETE CASCADE,
            unit_id TEXT REFERENCES units(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            order_index INTEGER,
            inferred BOOLEAN
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create topics table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS chunks (
            id TEXT PRIMARY KEY,
            document_id TEXT REFERENCES documents(id) ON DELETE CASCADE,
            course_id TEXT REFERENCES courses(id) ON DELETE CASCADE,
            chunk_index INTEGER NOT NULL,
            text TEXT NOT NULL,
            token_count INTEGER NOT NULL,
            created_at TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create chunks table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS chunk_topics (
            id TEXT PRIMARY KEY,
            chunk_id TEXT REFERENCES chunks(id) ON DELETE CASCADE,
            topic_id TEXT REFERENCES topics(id) ON DELETE CASCADE,
            similarity DOUBLE PRECISION NOT NULL,
            rank INTEGER NOT NULL,
            inferred BOOLEAN NOT NULL,
            created_at TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create chunk_topics table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS chunks_document_idx ON chunks (document_id);
        CREATE INDEX IF NOT EXISTS chunk_topics_chunk_idx ON chunk_topics (chunk_id);
    `)
	if err != nil {
		return fmt.Errorf("failed to create additional indices: %w", err)
	}

	return nil
}

// InsertCourse stores a normalized course
func (db *DB) InsertCourse(ctx context.Context, c *models.Course) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO courses (
            id, gc_course_id, name, section,
            course_state, is_open_elective,
            created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `,
		c.ID,
		c.GCCourseID,
		c.Name,
		c.Section,
		c.CourseState,
		c.IsOpenElective,
		c.CreatedAt,
		c.UpdatedAt)

	return err
}

// InsertDocument stores a document record (without text; parsing fills that in later)
func (db *DB) InsertDocument(ctx context.Context, d *models.Document) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO documents (
            id, course_id, gc_material_id,
            drive_file_id, title,
            file_type, source, parsed, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `,
		d.ID,
		d.CourseID,
		d.GCMaterialID,
		d.DriveFileID,
		d.Title,
		d.FileType,
		d.Source,
		d.Parsed,
		d.CreatedAt)

	return err
}

// InsertAssessment stores a coursework or inferred assessment record
func (db *DB) InsertAssessment(ctx context.Context, a *models.Assessment) error {
	var dueDate any
	if a.DueDate != "" {
		dueDate = a.DueDate
	}

	_, err := db.Pool.Exec(ctx, `
        INSERT INTO assessments (
            id, course_id, type, title,
            due_date, max_points,
            source, inferred, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `,
		a.ID,
		a.CourseID,
		a.Type,
		a.Title,
		dueDate,
		a.MaxPoints,
		a.Source,
		a.Inferred,
		a.CreatedAt)

	return err
}

// UnparsedDocuments returns documents that have no extracted text yet
func (db *DB) UnparsedDocuments(ctx context.Context) ([]models.Document, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, course_id, COALESCE(drive_file_id, ''), COALESCE(title, ''), COALESCE(file_type, '')
        FROM documents
        WHERE parsed = FALSE
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query unparsed documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.CourseID, &d.DriveFileID, &d.Title, &d.FileType); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return docs, nil
}

// MarkParsed stores a document's extracted text and flips its parsed flag
func (db *DB) MarkParsed(ctx context.Context, documentID, rawText string) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE documents
        SET raw_text = $1,
            parsed = TRUE
        WHERE id = $2
    `, rawText, documentID)

	return err
}

// ParsedDocuments returns all documents with extracted text available
func (db *DB) ParsedDocuments(ctx context.Context) ([]models.Document, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, course_id, COALESCE(title, ''), COALESCE(file_type, ''),
               COALESCE(role, 'unknown'), raw_text
        FROM documents
        WHERE parsed = TRUE
          AND raw_text IS NOT NULL
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query parsed documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		var role string
		if err := rows.Scan(&d.ID, &d.CourseID, &d.Title, &d.FileType, &role, &d.RawText); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		d.Role = models.Role(role)
		d.Parsed = true
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return docs, nil
}

// UpdateRole stores an inferred document role
func (db *DB) UpdateRole(ctx context.Context, documentID string, role models.Role) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE documents
        SET role = $1
        WHERE id = $2
    `, string(role), documentID)

	return err
}

// AllTopics returns every topic across all courses, with the embedding label
// composed from the owning unit's name and the topic's name
func (db *DB) AllTopics(ctx context.Context) ([]models.Topic, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT t.id, t.course_id, u.name || ' - ' || t.name
        FROM topics t
        JOIN units u ON t.unit_id = u.id
        ORDER BY t.course_id, u.order_index, t.order_index
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.CourseID, &t.Label); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return topics, nil
}

// HasChunks reports whether at least one chunk exists for the document
func (db *DB) HasChunks(ctx context.Context, documentID string) (bool, error) {
	var one int
	err := db.Pool.QueryRow(ctx, `
        SELECT 1 FROM chunks WHERE document_id = $1 LIMIT 1
    `, documentID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check chunks for document %s: %w", documentID, err)
	}
	return true, nil
}

// CommitDocument writes one document's chunks and topic associations in a
// single transaction, so a crash mid-document leaves nothing visible
func (db *DB) CommitDocument(ctx context.Context, chunks []models.Chunk, associations []models.ChunkTopic) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		_, err := tx.Exec(ctx, `
            INSERT INTO chunks (
                id, document_id, course_id,
                chunk_index, text, token_count, created_at
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `,
			c.ID,
			c.DocumentID,
			c.CourseID,
			c.Index,
			c.Text,
			c.TokenCount,
			c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d of document %s: %w", c.Index, c.DocumentID, err)
		}
	}

	for _, a := range associations {
		_, err := tx.Exec(ctx, `
            INSERT INTO chunk_topics (
                id, chunk_id, topic_id,
                similarity, rank, inferred, created_at
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `,
			a.ID,
			a.ChunkID,
			a.TopicID,
			a.Similarity,
			a.Rank,
			a.Inferred,
			a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert association for chunk %s: %w", a.ChunkID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}

	return nil
}

// AllChunks returns every chunk ordered by course, document and index
func (db *DB) AllChunks(ctx context.Context) ([]models.Chunk, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, course_id, document_id, chunk_index, text
        FROM chunks
        ORDER BY course_id, document_id, chunk_index
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ID, &c.CourseID, &c.DocumentID, &c.Index, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return chunks, nil
}

// Close closes the database connection
func (db *DB) Close() {
	db.Pool.Close()
}
