package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/models"
)

// CreateGroup persists a new group. The code must be unused.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	group.Code = strings.ToUpper(group.Code)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO groups (id, name, code, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, group.Code, group.CreatedBy, group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("group code %s: %w", group.Code, apperr.ErrConflict)
	}
	if err != nil {
		return unavailable("insert group", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.getGroup(ctx, "id = ?", groupID)
}

// GetGroupByCode retrieves a group by its join code (case-insensitive).
func (s *SQLiteStore) GetGroupByCode(ctx context.Context, code string) (*models.Group, error) {
	return s.getGroup(ctx, "code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

func (s *SQLiteStore) getGroup(ctx context.Context, where, arg string) (*models.Group, error) {
	g := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, code, created_by, created_at FROM groups WHERE "+where,
		arg,
	).Scan(&g.ID, &g.Name, &g.Code, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("group", arg)
	}
	if err != nil {
		return nil, unavailable("get group", err)
	}
	return g, nil
}

// DeleteGroup removes a group. Its events (with their attendees and
// comments) cascade; push subscriptions stop referencing it.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
		if err != nil {
			return unavailable("delete group", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return unavailable("delete group", err)
		}
		if n == 0 {
			return notFound("group", groupID)
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM push_subscription_groups WHERE group_id = ?", groupID)
		if err != nil {
			return unavailable("unlink group subscriptions", err)
		}
		return nil
	})
}
