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
	"github.com/mmynk/outings/internal/storage"
)

const eventColumns = `id, series_id, title, description, category, location, lat, lng,
	date, end_date, price, max_participants, age_min, age_max, organizer, group_id,
	image, reminded_at, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		ev                   models.Event
		seriesID, groupID    sql.NullString
		lat, lng             sql.NullFloat64
		date                 int64
		endDate, remindAt    sql.NullInt64
		maxP, ageMin, ageMax sql.NullInt64
		category             string
	)
	err := row.Scan(&ev.ID, &seriesID, &ev.Title, &ev.Description, &category, &ev.Location.Text,
		&lat, &lng, &date, &endDate, &ev.Price, &maxP, &ageMin, &ageMax, &ev.Organizer,
		&groupID, &ev.Image, &remindAt, &ev.CreatedAt)
	if err != nil {
		return nil, err
	}

	ev.SeriesID = seriesID.String
	ev.GroupID = groupID.String
	ev.Category = models.Category(category)
	ev.Location.Lat = floatPtr(lat)
	ev.Location.Lng = floatPtr(lng)
	ev.Date = fromUnix(date)
	ev.EndDate = timePtr(endDate)
	ev.MaxParticipants = intPtr(maxP)
	ev.AgeMin = intPtr(ageMin)
	ev.AgeMax = intPtr(ageMax)
	ev.RemindedAt = timePtr(remindAt)
	return &ev, nil
}

// CreateEvents persists a batch of events in a single transaction.
func (s *SQLiteStore) CreateEvents(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().Unix()
		for _, ev := range events {
			if ev.ID == "" {
				ev.ID = uuid.New().String()
			}
			if ev.CreatedAt == 0 {
				ev.CreatedAt = now
			}

			_, err := tx.ExecContext(ctx,
				`INSERT INTO events (`+eventColumns+`)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				ev.ID, nullString(ev.SeriesID), ev.Title, ev.Description, string(ev.Category),
				ev.Location.Text, nullFloat(ev.Location.Lat), nullFloat(ev.Location.Lng),
				ev.Date.Unix(), nullTime(ev.EndDate), ev.Price, nullInt(ev.MaxParticipants),
				nullInt(ev.AgeMin), nullInt(ev.AgeMax), ev.Organizer, nullString(ev.GroupID),
				ev.Image, nullTime(ev.RemindedAt), ev.CreatedAt,
			)
			if isForeignKeyViolation(err) {
				return notFound("group", ev.GroupID)
			}
			if err != nil {
				return unavailable("insert event", err)
			}
		}
		return nil
	})
}

// GetEvent retrieves an event by ID, including its attendees.
func (s *SQLiteStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return getEvent(ctx, s.db, eventID)
}

func getEvent(ctx context.Context, q queryer, eventID string) (*models.Event, error) {
	ev, err := scanEvent(q.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("event", eventID)
	}
	if err != nil {
		return nil, unavailable("get event", err)
	}

	ev.Attendees, err = loadAttendees(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// ListEvents retrieves events matching the filter, ordered by date.
func (s *SQLiteStore) ListEvents(ctx context.Context, filter storage.EventFilter) ([]*models.Event, error) {
	var (
		scope []string
		args  []any
	)
	if len(filter.GroupIDs) > 0 {
		scope = append(scope, "group_id IN ("+placeholders(len(filter.GroupIDs))+")")
		for _, id := range filter.GroupIDs {
			args = append(args, id)
		}
	}
	if filter.IncludeUngrouped {
		scope = append(scope, "group_id IS NULL")
	}
	if len(scope) == 0 {
		return nil, nil
	}

	where := "(" + strings.Join(scope, " OR ") + ")"
	if !filter.From.IsZero() {
		where += " AND date >= ?"
		args = append(args, filter.From.Unix())
	}

	return listEvents(ctx, s.db, where, args...)
}

// ListSeries retrieves all instances sharing seriesID, ordered by date.
func (s *SQLiteStore) ListSeries(ctx context.Context, seriesID string) ([]*models.Event, error) {
	events, err := listEvents(ctx, s.db, "series_id = ?", seriesID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, notFound("series", seriesID)
	}
	return events, nil
}

func listEvents(ctx context.Context, q queryer, where string, args ...any) ([]*models.Event, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE "+where+" ORDER BY date, id", args...)
	if err != nil {
		return nil, unavailable("list events", err)
	}

	var events []*models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, unavailable("scan event", err)
		}
		events = append(events, ev)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate events", err)
	}

	// Attendees are loaded after the rows are closed: the pool has one connection.
	for _, ev := range events {
		ev.Attendees, err = loadAttendees(ctx, q, ev.ID)
		if err != nil {
			return nil, err
		}
	}
	return events, nil
}

// UpdateEvent rewrites the editable columns of an event.
// Moving the start date clears the reminder flag.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, ev *models.Event) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		capacity := nullInt(ev.MaxParticipants)
		res, err := tx.ExecContext(ctx,
			`UPDATE events SET
				title = ?, description = ?, category = ?, location = ?, lat = ?, lng = ?,
				date = ?, end_date = ?, price = ?, max_participants = ?, age_min = ?, age_max = ?,
				image = ?,
				reminded_at = CASE WHEN date = ? THEN reminded_at ELSE NULL END
			 WHERE id = ?
			   AND (? IS NULL OR ? >= (SELECT COUNT(*) FROM attendees WHERE event_id = ?))`,
			ev.Title, ev.Description, string(ev.Category), ev.Location.Text,
			nullFloat(ev.Location.Lat), nullFloat(ev.Location.Lng),
			ev.Date.Unix(), nullTime(ev.EndDate), ev.Price, capacity,
			nullInt(ev.AgeMin), nullInt(ev.AgeMax), ev.Image,
			ev.Date.Unix(),
			ev.ID,
			capacity, capacity, ev.ID,
		)
		if err != nil {
			return unavailable("update event", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return unavailable("update event", err)
		}
		if n > 0 {
			return nil
		}

		// Nothing matched: either the event is gone or the capacity is too low.
		var count int
		err = tx.QueryRowContext(ctx,
			"SELECT (SELECT COUNT(*) FROM attendees WHERE event_id = ?) FROM events WHERE id = ?",
			ev.ID, ev.ID,
		).Scan(&count)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("event", ev.ID)
		}
		if err != nil {
			return unavailable("count attendees", err)
		}
		return apperr.Invalid("maxParticipants", "cannot be below the %d current attendees", count)
	})
}

// DeleteEvent removes an event. Attendees and comments cascade.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", eventID)
	if err != nil {
		return unavailable("delete event", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete event", err)
	}
	if n == 0 {
		return notFound("event", eventID)
	}
	return nil
}

// ClaimUpcomingEvents flags events starting in (from, to] that were never
// reminded and returns them. Flagging happens before any delivery so that
// overlapping sweeps never claim the same event twice.
func (s *SQLiteStore) ClaimUpcomingEvents(ctx context.Context, from, to, claimedAt time.Time) ([]*models.Event, error) {
	var claimed []*models.Event
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM events
			 WHERE reminded_at IS NULL AND date > ? AND date <= ?
			 ORDER BY date, id`,
			from.Unix(), to.Unix(),
		)
		if err != nil {
			return unavailable("select upcoming events", err)
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return unavailable("scan upcoming event", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return unavailable("iterate upcoming events", err)
		}

		for _, id := range ids {
			res, err := tx.ExecContext(ctx,
				"UPDATE events SET reminded_at = ? WHERE id = ? AND reminded_at IS NULL",
				claimedAt.Unix(), id,
			)
			if err != nil {
				return unavailable("flag event", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				continue
			}

			ev, err := getEvent(ctx, tx, id)
			if err != nil {
				return err
			}
			claimed = append(claimed, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim upcoming events: %w", err)
	}
	return claimed, nil
}
