package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"fieldops.service/internal/app"
	"fieldops.service/internal/core"
	"fieldops.service/internal/core/model"
	"fieldops.service/internal/screen"
)

const usage = `Commands:
  login <email> <password>
  register <email> <password> <name...>
  logout
  dashboard
  workers [query]
  worker <id>
  toggle <id>
  delete <id>
  checkin <workerId> [address...]
  checkins [--only] [query]
  customers [query]
  surveys [all|active|draft|completed]
  summary <surveyId>
  reports
  report <worker|customer|checkin|survey> <excel|csv> <name...>
  help
  quit`

// shell reads commands line by line and renders the screens as text.
type shell struct {
	services *app.Services
	in       *bufio.Scanner
	out      io.Writer
}

func newShell(services *app.Services, in io.Reader, out io.Writer) *shell {
	return &shell{services: services, in: bufio.NewScanner(in), out: out}
}

// run processes commands until input ends or the user quits.
func (s *shell) run(ctx context.Context) {
	fmt.Fprintln(s.out, "fieldctl. Type 'help' for commands.")
	for {
		fmt.Fprint(s.out, "> ")
		line, ok := s.readLine()
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return
		}
		if err := s.exec(ctx, args[0], args[1:]); err != nil {
			fmt.Fprintln(s.out, "Error:", core.UserMessage(err))
		}
	}
}

func (s *shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

var errUsage = &core.ValidationError{Field: "command", Message: "Wrong arguments. Type 'help' for usage."}

func (s *shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, usage)
		return nil
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		user, err := s.services.Auth.Login(ctx, core.Credentials{Email: args[0], Password: args[1]})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Signed in as %s\n", user.Name)
		return nil
	case "register":
		if len(args) < 3 {
			return errUsage
		}
		_, err := s.services.Auth.Register(ctx, core.Registration{
			Email: args[0], Password: args[1], ConfirmPassword: args[1], Name: strings.Join(args[2:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Account created. You are signed in.")
		return nil
	}

	if !s.services.Auth.IsAuthenticated() {
		return &core.ValidationError{Field: "session", Message: "Please sign in first."}
	}

	switch cmd {
	case "logout":
		if err := s.services.Auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Signed out.")
		return nil
	case "dashboard":
		return s.dashboard(ctx)
	case "workers":
		return s.workers(ctx, strings.Join(args, " "))
	case "worker":
		if len(args) != 1 {
			return errUsage
		}
		return s.worker(ctx, args[0])
	case "toggle":
		if len(args) != 1 {
			return errUsage
		}
		return s.toggle(ctx, args[0])
	case "delete":
		if len(args) != 1 {
			return errUsage
		}
		return s.deleteWorker(ctx, args[0])
	case "checkin":
		if len(args) < 1 {
			return errUsage
		}
		return s.checkIn(ctx, args[0], strings.Join(args[1:], " "))
	case "checkins":
		only := len(args) > 0 && args[0] == "--only"
		if only {
			args = args[1:]
		}
		return s.checkIns(ctx, only, strings.Join(args, " "))
	case "customers":
		return s.customers(ctx, strings.Join(args, " "))
	case "surveys":
		tab := ""
		if len(args) > 0 {
			tab = args[0]
		}
		return s.surveys(ctx, tab)
	case "summary":
		if len(args) != 1 {
			return errUsage
		}
		return s.summary(ctx, args[0])
	case "reports":
		return s.reports(ctx)
	case "report":
		if len(args) < 3 {
			return errUsage
		}
		return s.report(ctx, model.ReportType(args[0]), model.ExportFormat(args[1]), strings.Join(args[2:], " "))
	}
	return &core.ValidationError{Field: "command", Message: fmt.Sprintf("Unknown command %q. Type 'help' for commands.", cmd)}
}

func (s *shell) table(header string, rows func(w io.Writer)) {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func (s *shell) dashboard(ctx context.Context) error {
	scr := screen.NewDashboardScreen(s.services.Dashboard)
	defer scr.Unmount()
	if err := scr.Load(ctx); err != nil {
		return err
	}
	stats := scr.State().Item
	active := fmt.Sprint(stats.ActiveWorkers)
	if stats.ActiveApproximate {
		active += "+"
	}
	s.table("METRIC\tVALUE", func(w io.Writer) {
		fmt.Fprintf(w, "Workers\t%d\n", stats.TotalWorkers)
		fmt.Fprintf(w, "Checked in\t%s\n", active)
		fmt.Fprintf(w, "Customers\t%d\n", stats.TotalCustomers)
		fmt.Fprintf(w, "Active surveys\t%d\n", stats.ActiveSurveys)
	})
	if len(stats.RecentCheckIns) > 0 {
		fmt.Fprintln(s.out, "\nRecent activity:")
		s.printCheckIns(stats.RecentCheckIns)
	}
	return nil
}

func (s *shell) workers(ctx context.Context, query string) error {
	scr := screen.NewWorkersScreen(s.services.Workers)
	defer scr.Unmount()
	if err := scr.Load(ctx); err != nil {
		return err
	}
	scr.SetQuery(query)
	state := scr.State()
	s.table("ID\tNAME\tPOSITION\tDEPARTMENT\tSTATUS", func(w io.Writer) {
		for _, wk := range state.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", wk.ID, wk.Name, wk.Position, wk.Department, wk.Status)
		}
	})
	fmt.Fprintf(s.out, "%d of %d workers\n", len(state.Items), state.Total)
	return nil
}

func (s *shell) loadWorker(ctx context.Context, id string) (*screen.DetailScreen[core.WorkerDetail], error) {
	scr := screen.NewWorkerDetailScreen(s.services.Workers, id)
	if err := scr.Load(ctx); err != nil {
		scr.Unmount()
		if core.IsNotFound(err) {
			return nil, &core.ValidationError{Field: "id", Message: fmt.Sprintf("Worker %s not found.", id)}
		}
		return nil, err
	}
	return scr, nil
}

func (s *shell) worker(ctx context.Context, id string) error {
	scr, err := s.loadWorker(ctx, id)
	if err != nil {
		return err
	}
	defer scr.Unmount()
	d := scr.State().Item
	wk := d.Worker
	fmt.Fprintf(s.out, "%s (%s)\n%s, %s\nEmail: %s\nPhone: %s\nSkills: %s\n",
		wk.Name, wk.Status, wk.Position, wk.Department, wk.ContactInfo.Email, wk.ContactInfo.Phone, strings.Join(wk.Skills, ", "))
	if len(d.RecentCheckIns) > 0 {
		fmt.Fprintln(s.out, "\nRecent check-ins:")
		s.printCheckIns(d.RecentCheckIns)
	}
	return nil
}

func (s *shell) toggle(ctx context.Context, id string) error {
	scr, err := s.loadWorker(ctx, id)
	if err != nil {
		return err
	}
	defer scr.Unmount()
	err = scr.Update(ctx, func(ctx context.Context, d core.WorkerDetail) (core.WorkerDetail, error) {
		updated, err := s.services.Workers.ToggleStatus(ctx, d.Worker)
		d.Worker = updated
		return d, err
	})
	if err != nil {
		return err
	}
	wk := scr.State().Item.Worker
	fmt.Fprintf(s.out, "%s is now %s\n", wk.Name, wk.Status)
	return nil
}

// deleteWorker asks for confirmation on the next input line.
func (s *shell) deleteWorker(ctx context.Context, id string) error {
	scr, err := s.loadWorker(ctx, id)
	if err != nil {
		return err
	}
	defer scr.Unmount()
	name := scr.State().Item.Worker.Name

	scr.RequestDelete()
	fmt.Fprintf(s.out, "Delete %s? This cannot be undone. [y/N] ", name)
	answer, _ := s.readLine()
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		scr.CancelDelete()
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	if err := scr.ConfirmDelete(ctx); err != nil {
		if errors.Is(err, screen.ErrPending) {
			return &core.ValidationError{Field: "id", Message: "A change is already in progress."}
		}
		return err
	}
	fmt.Fprintf(s.out, "%s deleted.\n", name)
	return nil
}

func (s *shell) checkIn(ctx context.Context, workerID, address string) error {
	res, err := s.services.CheckIns.Record(ctx, workerID, model.Location{Address: address})
	if err != nil {
		return err
	}
	c := res.CheckIn
	if c.Type == model.TypeCheckOut {
		fmt.Fprintf(s.out, "%s checked out at %s after %.2f hours\n", c.WorkerName, c.Timestamp.Format("15:04"), res.HoursWorked)
		return nil
	}
	fmt.Fprintf(s.out, "%s checked in at %s\n", c.WorkerName, c.Timestamp.Format("15:04"))
	return nil
}

func (s *shell) checkIns(ctx context.Context, only bool, query string) error {
	scr := screen.NewCheckInsScreen(s.services.CheckIns, core.CheckInFilter{})
	defer scr.Unmount()
	if err := scr.Load(ctx); err != nil {
		return err
	}
	scr.SetOnly(only)
	scr.SetQuery(query)
	s.printCheckIns(scr.State().Items)
	return nil
}

func (s *shell) printCheckIns(records []model.CheckIn) {
	s.table("TIME\tWORKER\tTYPE\tLOCATION", func(w io.Writer) {
		for _, c := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Timestamp.Local().Format(time.DateTime), c.WorkerName, c.Type, c.Location.Address)
		}
	})
}

func (s *shell) customers(ctx context.Context, query string) error {
	scr := screen.NewCustomersScreen(s.services.Customers)
	defer scr.Unmount()
	if err := scr.Load(ctx); err != nil {
		return err
	}
	scr.SetQuery(query)
	s.table("ID\tNAME\tCONTACT\tINDUSTRY\tSTATUS\tPROJECT VALUE", func(w io.Writer) {
		for _, c := range scr.State().Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f\n", c.ID, c.Name, c.ContactName, c.Industry, c.Status, core.ProjectValue(c))
		}
	})
	return nil
}

func (s *shell) surveys(ctx context.Context, tab string) error {
	tabs := map[string]string{
		"": screen.TabAll, "all": screen.TabAll, "active": screen.TabActive,
		"draft": screen.TabDraft, "completed": screen.TabCompleted,
	}
	selected, ok := tabs[strings.ToLower(tab)]
	if !ok {
		return errUsage
	}
	scr := screen.NewSurveysScreen(s.services.Surveys)
	defer scr.Unmount()
	if err := scr.Load(ctx); err != nil {
		return err
	}
	scr.SetTab(selected)
	s.table("ID\tTITLE\tSTATUS\tQUESTIONS", func(w io.Writer) {
		for _, sv := range scr.State().Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", sv.ID, sv.Title, sv.Status, len(sv.Questions))
		}
	})
	return nil
}

func (s *shell) summary(ctx context.Context, id string) error {
	scr := screen.NewSurveyDetailScreen(s.services.Surveys, id)
	defer scr.Unmount()
	if err := scr.Load(ctx); err != nil {
		return err
	}
	sum := scr.State().Item
	fmt.Fprintf(s.out, "%d responses\n", sum.TotalResponses)
	for _, q := range sum.Questions {
		fmt.Fprintf(s.out, "\n%s (%d answered)\n", q.Prompt, q.Answered)
		for _, oc := range q.OptionCounts {
			fmt.Fprintf(s.out, "  %-30s %d\n", oc.Option, oc.Count)
		}
		if q.Type == model.QuestionRating && q.Answered > 0 {
			fmt.Fprintf(s.out, "  average %.1f\n", q.Average)
		}
		for _, t := range q.TextAnswers {
			fmt.Fprintf(s.out, "  %q\n", t)
		}
	}
	return nil
}

func (s *shell) reports(ctx context.Context) error {
	scr := screen.NewReportsScreen(s.services.Reports)
	defer scr.Unmount()
	if err := scr.Load(ctx); err != nil {
		return err
	}
	s.table("ID\tNAME\tTYPE\tFORMAT\tSTATUS", func(w io.Writer) {
		for _, r := range scr.State().Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Type, r.Format, r.Status)
		}
	})
	return nil
}

func (s *shell) report(ctx context.Context, t model.ReportType, format model.ExportFormat, name string) error {
	d := core.NewReportDraft(time.Now().UTC())
	if err := d.SelectType(t); err != nil {
		return err
	}
	d.Name = name
	d.Format = format
	r, err := s.services.Reports.Request(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Report %s is %s\n", r.ID, r.Status)
	if r.Content != nil {
		for _, m := range r.Content.Summary {
			fmt.Fprintf(s.out, "  %-24s %g\n", m.Name, m.Value)
		}
	}
	return nil
}
