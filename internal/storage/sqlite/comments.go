package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/outings/internal/models"
)

// CreateComment persists a new comment on an existing event.
func (s *SQLiteStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.CreatedAt == 0 {
		comment.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO comments (id, event_id, author, content, created_at) VALUES (?, ?, ?, ?, ?)",
		comment.ID, comment.EventID, comment.Author, comment.Content, comment.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return notFound("event", comment.EventID)
	}
	if err != nil {
		return unavailable("insert comment", err)
	}
	return nil
}

// ListComments retrieves the comments of an event in creation order.
func (s *SQLiteStore) ListComments(ctx context.Context, eventID string) ([]*models.Comment, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id = ?", eventID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("event", eventID)
	}
	if err != nil {
		return nil, unavailable("check event existence", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, author, content, created_at
		 FROM comments WHERE event_id = ? ORDER BY created_at, rowid`,
		eventID,
	)
	if err != nil {
		return nil, unavailable("list comments", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.EventID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, unavailable("scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate comments", err)
	}
	return comments, nil
}
