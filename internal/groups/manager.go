// Package groups manages invite-coded parent groups.
package groups

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/models"
	"github.com/mmynk/outings/internal/storage"
)

const (
	// CodeLength is the length of a join code.
	CodeLength = 6
	// codeAlphabet leaves out 0/O and 1/I so codes survive being read aloud.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 8
	maxNameLen      = 80
)

// Manager creates, joins and deletes groups.
type Manager struct {
	store   storage.GroupStore
	newCode func() (string, error)
}

// NewManager creates a group manager.
func NewManager(store storage.GroupStore) *Manager {
	return &Manager{store: store, newCode: randomCode}
}

// Create stores a group with a fresh join code. A taken code is retried.
func (m *Manager) Create(ctx context.Context, name, createdBy string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	createdBy = strings.TrimSpace(createdBy)
	switch {
	case name == "":
		return nil, apperr.Invalid("name", "is required")
	case len([]rune(name)) > maxNameLen:
		return nil, apperr.Invalid("name", "must be at most %d characters", maxNameLen)
	case createdBy == "":
		return nil, apperr.Invalid("createdBy", "is required")
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := m.newCode()
		if err != nil {
			return nil, err
		}
		group := &models.Group{Name: name, Code: code, CreatedBy: createdBy}
		err = m.store.CreateGroup(ctx, group)
		if err == nil {
			return group, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		slog.Debug("Group code collision, retrying", "attempt", attempt)
	}
	return nil, fmt.Errorf("no free group code after %d attempts: %w", maxCodeAttempts, apperr.ErrConflict)
}

// Join resolves a join code, ignoring case and surrounding blanks.
func (m *Manager) Join(ctx context.Context, code string) (*models.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLength {
		return nil, apperr.Invalid("code", "must be %d characters", CodeLength)
	}
	return m.store.GetGroupByCode(ctx, code)
}

// Get returns a group by id.
func (m *Manager) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return m.store.GetGroup(ctx, groupID)
}

// Delete removes a group and its events. confirm must be set and requester
// must be the group's creator.
func (m *Manager) Delete(ctx context.Context, groupID, requester string, confirm bool) error {
	if !confirm {
		return apperr.Invalid("confirm", "deleting a group must be confirmed")
	}
	group, err := m.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	requester = strings.TrimSpace(requester)
	if requester == "" || !strings.EqualFold(requester, group.CreatedBy) {
		return apperr.ErrForbidden
	}
	return m.store.DeleteGroup(ctx, groupID)
}

func randomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate group code: %w", err)
	}
	// 256 is a multiple of the alphabet size, so the modulo is unbiased.
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
