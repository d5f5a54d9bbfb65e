package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/outings/internal/apperr"
)

// insertAttendeeIfRoom appends an attendee only while the committed count is
// below max_participants (or the event has no limit).
const insertAttendeeIfRoom = `
INSERT INTO attendees (event_id, name, name_key, joined_at)
SELECT ?, ?, ?, ?
WHERE (SELECT max_participants FROM events WHERE id = ?) IS NULL
   OR (SELECT COUNT(*) FROM attendees WHERE event_id = ?) < (SELECT max_participants FROM events WHERE id = ?)`

// AddAttendee appends name to the event's attendees.
//
// Checks run in this order inside one transaction: the event exists, it has
// not started, name is not already listed, and a spot is left.
func (s *SQLiteStore) AddAttendee(ctx context.Context, eventID, name string, now time.Time) ([]string, error) {
	var attendees []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var date int64
		err := tx.QueryRowContext(ctx, "SELECT date FROM events WHERE id = ?", eventID).Scan(&date)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("event", eventID)
		}
		if err != nil {
			return unavailable("get event", err)
		}
		if date <= now.Unix() {
			return fmt.Errorf("event %s: %w", eventID, apperr.ErrEventPast)
		}

		key := nameKey(name)
		var existing int
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM attendees WHERE event_id = ? AND name_key = ?",
			eventID, key,
		).Scan(&existing)
		if err != nil {
			return unavailable("check attendee", err)
		}
		if existing > 0 {
			return fmt.Errorf("%q on event %s: %w", name, eventID, apperr.ErrAlreadySubscribed)
		}

		res, err := tx.ExecContext(ctx, insertAttendeeIfRoom,
			eventID, name, key, now.Unix(),
			eventID, eventID, eventID,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("%q on event %s: %w", name, eventID, apperr.ErrAlreadySubscribed)
		}
		if err != nil {
			return unavailable("insert attendee", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return unavailable("insert attendee", err)
		}
		if n == 0 {
			return fmt.Errorf("event %s: %w", eventID, apperr.ErrEventFull)
		}

		attendees, err = loadAttendees(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return attendees, nil
}

// RemoveAttendee removes name from the event's attendees. Removing a name
// that is not listed is a no-op.
func (s *SQLiteStore) RemoveAttendee(ctx context.Context, eventID, name string) ([]string, error) {
	var attendees []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id = ?", eventID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("event", eventID)
		}
		if err != nil {
			return unavailable("check event existence", err)
		}

		_, err = tx.ExecContext(ctx,
			"DELETE FROM attendees WHERE event_id = ? AND name_key = ?",
			eventID, nameKey(name),
		)
		if err != nil {
			return unavailable("delete attendee", err)
		}

		attendees, err = loadAttendees(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return attendees, nil
}

// loadAttendees returns attendee names in join order.
func loadAttendees(ctx context.Context, q queryer, eventID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT name FROM attendees WHERE event_id = ? ORDER BY seq",
		eventID,
	)
	if err != nil {
		return nil, unavailable("get attendees", err)
	}
	defer rows.Close()

	attendees := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable("scan attendee", err)
		}
		attendees = append(attendees, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate attendees", err)
	}
	return attendees, nil
}
