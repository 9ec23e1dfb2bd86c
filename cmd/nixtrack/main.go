package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/five82/nixtrack/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("nixtrack", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "override config path (optional)")
	pollSeconds := global.Int("poll", 0, "dashboard refresh interval in seconds (optional, defaults to 5m)")
	global.Usage = func() {
		fmt.Fprintln(stderr, "usage: nixtrack [-config path] [-poll seconds] [login|logout|report|logs] [flags]")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	rest := global.Args()
	var err error
	switch {
	case len(rest) == 0:
		err = app.Run(ctx, opts)
	case rest[0] == "login":
		err = login(ctx, opts, rest[1:], stdin, stdout, stderr)
	case rest[0] == "logout":
		err = app.Logout(opts, stdout)
	case rest[0] == "report":
		err = report(ctx, opts, rest[1:], stdout, stderr)
	case rest[0] == "logs":
		err = logs(opts, rest[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "nixtrack: unknown command %q\n", rest[0])
		global.Usage()
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "nixtrack: %v\n", err)
		return 1
	}
	return 0
}

func login(ctx context.Context, opts app.Options, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "account email (password is read from stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return app.Login(ctx, opts, *email, stdin, stdout)
}

func report(ctx context.Context, opts app.Options, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		req     app.ReportRequest
		files   listFlag
		objects listFlag
	)
	fs.Int64Var(&req.OrderID, "order", 0, "order id")
	fs.StringVar(&req.Location, "location", "", "checkpoint location name")
	fs.StringVar(&req.Notes, "notes", "", "checkpoint notes (optional)")
	fs.Var(&files, "file", "local file to attach (repeatable)")
	fs.Var(&objects, "object", "attachment bucket key to attach (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.Files = files
	req.Objects = objects
	return app.Report(ctx, opts, req, stdout)
}

func logs(opts app.Options, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var req app.LogsRequest
	fs.IntVar(&req.Lines, "n", 0, "number of lines (default 200, negative for all)")
	fs.StringVar(&req.Match, "match", "", "only lines containing this text")
	fs.BoolVar(&req.Failures, "failures", false, "only failure lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return app.Logs(opts, req, stdout)
}
