package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mmynk/outings/internal/models"
)

// UpsertSubscription creates or refreshes a push subscription.
func (s *SQLiteStore) UpsertSubscription(ctx context.Context, sub *models.PushSubscription) error {
	now := time.Now().Unix()
	if sub.CreatedAt == 0 {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO push_subscriptions (endpoint, p256dh, auth, username, username_key, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(endpoint) DO UPDATE SET
				p256dh = excluded.p256dh,
				auth = excluded.auth,
				username = excluded.username,
				username_key = excluded.username_key,
				updated_at = excluded.updated_at`,
			sub.Endpoint, sub.P256dh, sub.Auth, sub.Username, nameKey(sub.Username),
			sub.CreatedAt, sub.UpdatedAt,
		)
		if err != nil {
			return unavailable("upsert subscription", err)
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM push_subscription_groups WHERE endpoint = ?", sub.Endpoint)
		if err != nil {
			return unavailable("reset subscription groups", err)
		}
		for _, groupID := range sub.GroupIDs {
			_, err = tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO push_subscription_groups (endpoint, group_id) VALUES (?, ?)",
				sub.Endpoint, groupID,
			)
			if err != nil {
				return unavailable("insert subscription group", err)
			}
		}
		return nil
	})
}

// DeleteSubscription removes a push subscription by endpoint.
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint)
	if err != nil {
		return unavailable("delete subscription", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete subscription", err)
	}
	if n == 0 {
		return notFound("subscription", endpoint)
	}
	return nil
}

// ListSubscriptionsByUsernames returns subscriptions whose username matches
// one of names (case-insensitive).
func (s *SQLiteStore) ListSubscriptionsByUsernames(ctx context.Context, names []string) ([]*models.PushSubscription, error) {
	if len(names) == 0 {
		return nil, nil
	}
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = nameKey(name)
	}
	return s.listSubscriptions(ctx,
		`SELECT endpoint, p256dh, auth, username, created_at, updated_at
		 FROM push_subscriptions WHERE username_key IN (`+placeholders(len(names))+`)
		 ORDER BY endpoint`,
		args...,
	)
}

// ListSubscriptionsByGroup returns subscriptions opted in for groupID.
func (s *SQLiteStore) ListSubscriptionsByGroup(ctx context.Context, groupID string) ([]*models.PushSubscription, error) {
	return s.listSubscriptions(ctx,
		`SELECT s.endpoint, s.p256dh, s.auth, s.username, s.created_at, s.updated_at
		 FROM push_subscriptions s
		 JOIN push_subscription_groups g ON g.endpoint = s.endpoint
		 WHERE g.group_id = ?
		 ORDER BY s.endpoint`,
		groupID,
	)
}

func (s *SQLiteStore) listSubscriptions(ctx context.Context, query string, args ...any) ([]*models.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list subscriptions", err)
	}

	var subs []*models.PushSubscription
	for rows.Next() {
		sub := &models.PushSubscription{}
		if err := rows.Scan(&sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.Username, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			rows.Close()
			return nil, unavailable("scan subscription", err)
		}
		subs = append(subs, sub)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate subscriptions", err)
	}

	for _, sub := range subs {
		sub.GroupIDs, err = s.subscriptionGroups(ctx, sub.Endpoint)
		if err != nil {
			return nil, err
		}
	}
	return subs, nil
}

func (s *SQLiteStore) subscriptionGroups(ctx context.Context, endpoint string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT group_id FROM push_subscription_groups WHERE endpoint = ? ORDER BY group_id",
		endpoint,
	)
	if err != nil {
		return nil, unavailable("get subscription groups", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, unavailable("scan subscription group", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate subscription groups", err)
	}
	return ids, nil
}
