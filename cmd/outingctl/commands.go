package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/profile"
	"github.com/mmynk/outings/pkg/api"
)

// dateLayouts are the accepted -date formats, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

func runWhoami(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		if a.profile.DisplayName == "" {
			fmt.Fprintln(a.out, "no display name set")
			return nil
		}
		fmt.Fprintln(a.out, a.profile.DisplayName)
		return nil
	}
	a.profile.DisplayName = strings.TrimSpace(strings.Join(args, " "))
	if a.profile.DisplayName == "" {
		return errors.New("display name cannot be empty")
	}
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "You are now %s\n", a.profile.DisplayName)
	return nil
}

func runGroupCreate(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: group-create <name>")
	}
	if err := a.requireName(); err != nil {
		return err
	}
	resp, err := a.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name: strings.Join(args, " "),
	}))
	if err != nil {
		return err
	}
	g := resp.Msg.Group
	a.profile.AddGroup(profile.Group{ID: g.ID, Name: g.Name, Code: g.Code})
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s, share the code %s\n", g.Name, g.Code)
	return nil
}

func runGroupJoin(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: group-join <code>")
	}
	resp, err := a.groups.JoinGroup(ctx, connect.NewRequest(&api.JoinGroupRequest{Code: args[0]}))
	if err != nil {
		return err
	}
	g := resp.Msg.Group
	if !a.profile.AddGroup(profile.Group{ID: g.ID, Name: g.Name, Code: g.Code}) {
		fmt.Fprintf(a.out, "Already in %s\n", g.Name)
		return a.save()
	}
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Joined %s\n", g.Name)
	return nil
}

func runGroupLeave(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: group-leave <code|id>")
	}
	if !a.profile.RemoveGroup(args[0]) {
		return fmt.Errorf("not in group %s", args[0])
	}
	return a.save()
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	all := fs.Bool("all", false, "Include events that already started")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.events.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{
		GroupIDs:         a.profile.GroupIDs(),
		IncludeUngrouped: true,
		UpcomingOnly:     !*all,
	}))
	if err != nil {
		return err
	}
	if len(resp.Msg.Events) == 0 {
		fmt.Fprintln(a.out, "No events")
		return nil
	}
	printEvents(a.out, resp.Msg.Events, a.groupNames())
	return nil
}

func runShow(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <event-id>")
	}
	resp, err := a.events.GetEvent(ctx, connect.NewRequest(&api.GetEventRequest{EventID: args[0]}))
	if err != nil {
		return err
	}
	ev := resp.Msg.Event

	fmt.Fprintf(a.out, "%s (%s)\n", ev.Title, ev.Category)
	fmt.Fprintf(a.out, "When:      %s\n", ev.Date.Local().Format("Mon 2 Jan 2006 15:04"))
	fmt.Fprintf(a.out, "Where:     %s\n", ev.Location.Text)
	fmt.Fprintf(a.out, "Organizer: %s\n", ev.Organizer)
	if ev.Price != "" {
		fmt.Fprintf(a.out, "Price:     %s\n", ev.Price)
	}
	fmt.Fprintf(a.out, "Going:     %s (%s)\n", strings.Join(ev.Attendees, ", "), spots(ev))
	if ev.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", ev.Description)
	}

	comments, err := a.events.ListComments(ctx, connect.NewRequest(&api.ListCommentsRequest{EventID: ev.ID}))
	if err != nil {
		return err
	}
	for _, c := range comments.Msg.Comments {
		fmt.Fprintf(a.out, "\n%s, %s:\n  %s\n", c.Author, time.Unix(c.CreatedAt, 0).Format("2 Jan 15:04"), c.Content)
	}
	return nil
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	title := fs.String("title", "", "Event title (required)")
	date := fs.String("date", "", "Start, e.g. 2024-06-01 14:00 (required)")
	duration := fs.Duration("duration", 0, "Optional duration, e.g. 2h")
	where := fs.String("location", "", "Location (required)")
	category := fs.String("category", "other", "outdoor, culture, sport, workshop, playdate or other")
	description := fs.String("description", "", "Description")
	price := fs.String("price", "", "Price, empty when free")
	maxP := fs.Int("max", 0, "Maximum participants, 0 for no limit")
	group := fs.String("group", "", "Group code or id, empty for a public event")
	repeat := fs.String("repeat", api.RecurrenceNone, "none, weekly, biweekly, monthly or custom")
	count := fs.Int("count", 0, "Number of occurrences for a series")
	interval := fs.Int("interval", 0, "Days between occurrences for custom series")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireName(); err != nil {
		return err
	}

	start, err := parseDate(*date)
	if err != nil {
		return err
	}
	in := api.EventInput{
		Title:       *title,
		Description: *description,
		Category:    *category,
		Location:    api.Location{Text: *where},
		Date:        start,
		Price:       *price,
	}
	if *duration > 0 {
		end := start.Add(*duration)
		in.EndDate = &end
	}
	if *maxP > 0 {
		in.MaxParticipants = maxP
	}
	if *group != "" {
		id, ok := a.groupID(*group)
		if !ok {
			return fmt.Errorf("not in group %s, join it first", *group)
		}
		in.GroupID = id
	}

	resp, err := a.events.CreateEventSeries(ctx, connect.NewRequest(&api.CreateEventSeriesRequest{
		Event:           in,
		Recurrence:      *repeat,
		IntervalDays:    *interval,
		OccurrenceCount: *count,
	}))
	if err != nil {
		return err
	}
	if resp.Msg.SeriesID != "" {
		fmt.Fprintf(a.out, "Created series %s with %d events\n", resp.Msg.SeriesID, len(resp.Msg.Events))
	}
	printEvents(a.out, resp.Msg.Events, a.groupNames())
	return nil
}

func runJoin(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: join <event-id>")
	}
	if err := a.requireName(); err != nil {
		return err
	}
	resp, err := a.events.Subscribe(ctx, connect.NewRequest(&api.SubscribeRequest{EventID: args[0]}))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "You're in! Going: %s\n", strings.Join(resp.Msg.Attendees, ", "))
	return nil
}

func runLeave(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: leave <event-id>")
	}
	if err := a.requireName(); err != nil {
		return err
	}
	resp, err := a.events.Unsubscribe(ctx, connect.NewRequest(&api.UnsubscribeRequest{EventID: args[0]}))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Left. Going: %s\n", strings.Join(resp.Msg.Attendees, ", "))
	return nil
}

func runComment(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: comment <event-id> <text>")
	}
	if err := a.requireName(); err != nil {
		return err
	}
	_, err := a.events.AddComment(ctx, connect.NewRequest(&api.AddCommentRequest{
		EventID: args[0],
		Content: strings.Join(args[1:], " "),
	}))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Comment posted")
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <event-id>")
	}
	if err := a.requireName(); err != nil {
		return err
	}
	if _, err := a.events.DeleteEvent(ctx, connect.NewRequest(&api.DeleteEventRequest{EventID: args[0]})); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Event deleted")
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("-date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q, use YYYY-MM-DD HH:MM", s)
}

// groupID resolves a joined group by code or id.
func (a *app) groupID(codeOrID string) (string, bool) {
	for _, g := range a.profile.Groups {
		if g.ID == codeOrID || strings.EqualFold(g.Code, codeOrID) {
			return g.ID, true
		}
	}
	return "", false
}

func (a *app) groupNames() map[string]string {
	names := make(map[string]string, len(a.profile.Groups))
	for _, g := range a.profile.Groups {
		names[g.ID] = g.Name
	}
	return names
}

func spots(ev *api.Event) string {
	switch {
	case ev.SpotsLeft < 0:
		return "no limit"
	case ev.IsFull:
		return "full"
	default:
		return fmt.Sprintf("%d left", ev.SpotsLeft)
	}
}

func printEvents(w io.Writer, list []*api.Event, groups map[string]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTITLE\tGROUP\tGOING\tSPOTS")
	for _, ev := range list {
		group := "public"
		if ev.GroupID != "" {
			group = groups[ev.GroupID]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			ev.ID, ev.Date.Local().Format("Mon 02/01 15:04"), ev.Title, group, len(ev.Attendees), spots(ev))
	}
	tw.Flush()
}
