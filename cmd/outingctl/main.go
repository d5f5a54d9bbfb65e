// Command outingctl is a terminal client for the outings server. The display
// name and joined groups live in a local profile.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/middleware"
	"github.com/mmynk/outings/internal/profile"
	"github.com/mmynk/outings/pkg/api"
	"github.com/mmynk/outings/pkg/logging"
)

const requestTimeout = 15 * time.Second

// app carries what every command needs.
type app struct {
	profile     *profile.Profile
	profilePath string
	out         io.Writer

	events *api.EventServiceClient
	groups *api.GroupServiceClient
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"whoami":       {"whoami [name]           show or set your display name", runWhoami},
	"group-create": {"group-create <name>     create a group and join it", runGroupCreate},
	"group-join":   {"group-join <code>       join a group by its code", runGroupJoin},
	"group-leave":  {"group-leave <code|id>   forget a group locally", runGroupLeave},
	"list":         {"list [-all]             list upcoming events", runList},
	"show":         {"show <event-id>         show an event and its comments", runShow},
	"create":       {"create [flags]          create an event or a series", runCreate},
	"join":         {"join <event-id>         join an event", runJoin},
	"leave":        {"leave <event-id>        leave an event", runLeave},
	"comment":      {"comment <event-id> <text>  comment on an event", runComment},
	"delete":       {"delete <event-id>       delete an event you organize", runDelete},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("outingctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	profilePath := fs.String("profile", "", "Path to the profile file (default: user config dir)")
	server := fs.String("server", "", "Server URL (overrides the profile)")
	verbose := fs.Bool("v", false, "Enable debug logging")
	fs.Usage = func() { usage(fs, stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(logging.New(stderr, level))

	if fs.NArg() == 0 {
		usage(fs, stderr)
		return 2
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		usage(fs, stderr)
		return 2
	}

	a, err := newApp(*profilePath, *server, stdout)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := cmd.run(ctx, a, fs.Args()[1:]); err != nil {
		fmt.Fprintln(stderr, "error:", describe(err))
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: outingctl [flags] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, "  "+commands[name].usage)
	}
	fmt.Fprintln(w, "\nflags:")
	fs.PrintDefaults()
}

func newApp(profilePath, server string, out io.Writer) (*app, error) {
	if profilePath == "" {
		p, err := profile.DefaultPath()
		if err != nil {
			return nil, err
		}
		profilePath = p
	}
	prof, err := profile.Load(profilePath)
	if err != nil {
		return nil, err
	}
	if server != "" {
		prof.Server = server
	}

	// The interceptor reads the profile at call time so whoami can rename
	// before a request.
	opts := connect.WithInterceptors(displayNameInterceptor(prof))
	return &app{
		profile:     prof,
		profilePath: profilePath,
		out:         out,
		events:      api.NewEventServiceClient(http.DefaultClient, prof.Server, opts),
		groups:      api.NewGroupServiceClient(http.DefaultClient, prof.Server, opts),
	}, nil
}

func (a *app) save() error {
	return a.profile.Save(a.profilePath)
}

// requireName fails when no display name was chosen yet.
func (a *app) requireName() error {
	if a.profile.DisplayName == "" {
		return errors.New("no display name set, run: outingctl whoami <name>")
	}
	return nil
}

// displayNameInterceptor sends the profile's display name, percent-encoded,
// with every call.
func displayNameInterceptor(p *profile.Profile) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && p.DisplayName != "" {
				req.Header().Set(middleware.DisplayNameHeader, url.PathEscape(p.DisplayName))
			}
			return next(ctx, req)
		}
	}
}

// describe turns Connect errors into messages for people.
func describe(err error) string {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return err.Error()
	}
	switch connectErr.Code() {
	case connect.CodeFailedPrecondition, connect.CodeAlreadyExists, connect.CodeInvalidArgument:
		return connectErr.Message()
	case connect.CodeNotFound:
		return "not found: " + connectErr.Message()
	case connect.CodePermissionDenied:
		return "not allowed: " + connectErr.Message()
	case connect.CodeUnavailable:
		return "server unavailable, try again later"
	default:
		return err.Error()
	}
}
