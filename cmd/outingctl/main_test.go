package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/events"
	"github.com/mmynk/outings/internal/groups"
	"github.com/mmynk/outings/internal/middleware"
	"github.com/mmynk/outings/internal/profile"
	"github.com/mmynk/outings/internal/service"
	"github.com/mmynk/outings/internal/storage/sqlite"
	"github.com/mmynk/outings/pkg/api"
)

func setupServer(t *testing.T) string {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	manager := events.NewManager(store, store, nil)
	interceptors := connect.WithInterceptors(middleware.IdentityInterceptor())

	mux := http.NewServeMux()
	mux.Handle(api.NewEventServiceHandler(service.NewEventService(manager), interceptors))
	mux.Handle(api.NewGroupServiceHandler(service.NewGroupService(groups.NewManager(store)), interceptors))
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		manager.Wait()
		store.Close()
	})
	return server.URL
}

type cli struct {
	t       *testing.T
	profile string
	server  string
}

func (c *cli) run(args ...string) (string, int) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"-profile", c.profile, "-server", c.server}, args...)
	code := run(full, &stdout, &stderr)
	return stdout.String() + stderr.String(), code
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, code := c.run(args...)
	if code != 0 {
		c.t.Fatalf("%v exited %d: %s", args, code, out)
	}
	return out
}

func TestCLIFlow(t *testing.T) {
	url := setupServer(t)
	dir := t.TempDir()
	alice := &cli{t: t, profile: filepath.Join(dir, "alice.yaml"), server: url}
	bob := &cli{t: t, profile: filepath.Join(dir, "bob.yaml"), server: url}

	if out, code := alice.run("join", "whatever"); code != 1 || !strings.Contains(out, "no display name") {
		t.Fatalf("expected a missing name error, got %d: %s", code, out)
	}

	alice.mustRun("whoami", "Alice")
	bob.mustRun("whoami", "Bob")
	if out := alice.mustRun("whoami"); strings.TrimSpace(out) != "Alice" {
		t.Errorf("whoami: got %q", out)
	}

	alice.mustRun("group-create", "Foot", "U9")
	aliceProfile, err := profile.Load(alice.profile)
	if err != nil || len(aliceProfile.Groups) != 1 {
		t.Fatalf("group not saved: %+v, %v", aliceProfile, err)
	}
	code := aliceProfile.Groups[0].Code

	out := bob.mustRun("group-join", strings.ToLower(code))
	if !strings.Contains(out, "Joined Foot U9") {
		t.Errorf("group-join: got %q", out)
	}

	date := time.Now().Add(48 * time.Hour).Format("2006-01-02 15:04")
	alice.mustRun("create", "-title", "Match", "-date", date, "-location", "Stade", "-max", "1", "-group", code)

	bobProfile, _ := profile.Load(bob.profile)
	client := api.NewEventServiceClient(http.DefaultClient, url)
	list, err := client.ListEvents(t.Context(), connect.NewRequest(&api.ListEventsRequest{GroupIDs: bobProfile.GroupIDs()}))
	if err != nil || len(list.Msg.Events) != 1 {
		t.Fatalf("expected the group event, got %v", err)
	}
	eventID := list.Msg.Events[0].ID

	if out := bob.mustRun("list"); !strings.Contains(out, "Match") || !strings.Contains(out, "Foot U9") {
		t.Errorf("list: got %q", out)
	}

	bob.mustRun("join", eventID)
	if out, code := alice.run("join", eventID); code != 1 || !strings.Contains(out, "full") {
		t.Errorf("expected a full event, got %d: %s", code, out)
	}

	bob.mustRun("comment", eventID, "On", "y", "sera")
	if out := bob.mustRun("show", eventID); !strings.Contains(out, "On y sera") || !strings.Contains(out, "Going:     Bob") {
		t.Errorf("show: got %q", out)
	}

	if out, code := bob.run("delete", eventID); code != 1 || !strings.Contains(out, "not allowed") {
		t.Errorf("expected a permission error, got %d: %s", code, out)
	}
	alice.mustRun("delete", eventID)
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"dance"}, &stdout, &stderr); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "unknown command") {
		t.Errorf("unexpected output: %s", stderr.String())
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-06-01 14:00", "2024-06-01T14:00", "2024-06-01T14:00:00+02:00"} {
		if _, err := parseDate(s); err != nil {
			t.Errorf("parseDate(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "tomorrow", "01/06/2024"} {
		if _, err := parseDate(s); err == nil {
			t.Errorf("parseDate(%q) should fail", s)
		}
	}
}
