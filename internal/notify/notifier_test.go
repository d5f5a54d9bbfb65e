package notify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/mmynk/outings/internal/apperr"
	"github.com/mmynk/outings/internal/models"
	"github.com/mmynk/outings/internal/storage/sqlite"
)

// fakeSender records deliveries and answers with a per-endpoint error.
type fakeSender struct {
	mu        sync.Mutex
	delivered []string
	errs      map[string]error
}

func (f *fakeSender) Send(ctx context.Context, sub *models.PushSubscription, payload Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[sub.Endpoint]; err != nil {
		return err
	}
	f.delivered = append(f.delivered, sub.Endpoint)
	return nil
}

func (f *fakeSender) endpoints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.delivered...)
	sort.Strings(out)
	return out
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addSubscription(t *testing.T, store *sqlite.SQLiteStore, endpoint, username string, groups ...string) {
	t.Helper()
	err := store.UpsertSubscription(context.Background(), &models.PushSubscription{
		Endpoint: endpoint,
		P256dh:   "key",
		Auth:     "auth",
		Username: username,
		GroupIDs: groups,
	})
	if err != nil {
		t.Fatalf("UpsertSubscription failed: %v", err)
	}
}

func TestNotifier_DedupByEndpoint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	addSubscription(t, store, "https://push/alice-phone", "Alice", "g1")
	addSubscription(t, store, "https://push/alice-laptop", "alice")
	addSubscription(t, store, "https://push/bob", "Bob", "g1")
	addSubscription(t, store, "https://push/carol", "Carol")

	sender := &fakeSender{}
	n := NewNotifier(store, sender, 2, nil)

	result, err := n.Send(ctx, Audience{Names: []string{"ALICE", "Bob"}, GroupID: "g1"}, Payload{Title: "t"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	want := []string{"https://push/alice-laptop", "https://push/alice-phone", "https://push/bob"}
	if got := sender.endpoints(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("delivered to %v, want %v", got, want)
	}
	if result.Delivered != 3 {
		t.Errorf("expected 3 deliveries, got %+v", result)
	}
}

func TestNotifier_ExcludesActor(t *testing.T) {
	store := newTestStore(t)
	addSubscription(t, store, "https://push/alice", "Alice", "g1")
	addSubscription(t, store, "https://push/bob", "Bob", "g1")

	sender := &fakeSender{}
	n := NewNotifier(store, sender, 4, nil)

	n.Send(context.Background(), Audience{Names: []string{"Alice"}, GroupID: "g1", Exclude: " alice "}, Payload{Title: "t"})

	if got := sender.endpoints(); len(got) != 1 || got[0] != "https://push/bob" {
		t.Errorf("expected only Bob notified, got %v", got)
	}
}

func TestNotifier_PrunesGoneAndIsolatesFailures(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	addSubscription(t, store, "https://push/gone", "Alice")
	addSubscription(t, store, "https://push/flaky", "Bob")
	addSubscription(t, store, "https://push/ok", "Carol")

	sender := &fakeSender{errs: map[string]error{
		"https://push/gone":  fmt.Errorf("%w: status 410", ErrGone),
		"https://push/flaky": errors.New("status 503"),
	}}
	n := NewNotifier(store, sender, 1, nil)

	result, err := n.Send(ctx, Audience{Names: []string{"Alice", "Bob", "Carol"}}, Payload{Title: "t"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result != (Result{Delivered: 1, Gone: 1, Failed: 1}) {
		t.Errorf("unexpected result: %+v", result)
	}

	left, _ := store.ListSubscriptionsByUsernames(ctx, []string{"Alice", "Bob"})
	if len(left) != 1 || left[0].Endpoint != "https://push/flaky" {
		t.Errorf("expected only the gone subscription pruned, left %d", len(left))
	}
	if err := store.DeleteSubscription(ctx, "https://push/gone"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("gone subscription still stored: %v", err)
	}
}

func TestNotifier_EmptyAudience(t *testing.T) {
	store := newTestStore(t)
	sender := &fakeSender{}
	n := NewNotifier(store, sender, 1, nil)

	result, err := n.Send(context.Background(), Audience{}, Payload{Title: "t"})
	if err != nil || result != (Result{}) {
		t.Errorf("expected empty result, got %+v, %v", result, err)
	}
}
