package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/five82/nixtrack/internal/attach"
	"github.com/five82/nixtrack/internal/config"
	"github.com/five82/nixtrack/internal/nixtrack"
	"github.com/five82/nixtrack/internal/state"
)

// Login signs in with email and the password read from stdin, then persists
// the session. It prints the signed-in user to out.
func Login(ctx context.Context, opts Options, email string, stdin io.Reader, out io.Writer) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	password, err := readPassword(stdin)
	if err != nil {
		return err
	}

	rt, err := openFromOptions(opts)
	if err != nil {
		return err
	}
	if err := rt.auth.Login(ctx, nixtrack.LoginRequest{Email: email, Password: password}); err != nil {
		return fmt.Errorf("login: %s", nixtrack.ErrorMessage(err, "Error al iniciar sesión"))
	}
	user, _ := rt.auth.User()
	fmt.Fprintf(out, "Signed in as %s (%s), session saved to %s\n", user.Name, user.Email, rt.sessions.Path())
	return nil
}

// Logout removes the persisted session.
func Logout(opts Options, out io.Writer) error {
	rt, err := openFromOptions(opts)
	if err != nil {
		return err
	}
	rt.auth.Logout()
	fmt.Fprintln(out, "Signed out")
	return nil
}

// ReportRequest describes a checkpoint report created from the command line.
type ReportRequest struct {
	OrderID  int64
	Location string
	Notes    string
	Files    []string // local paths
	Objects  []string // keys in the configured attachment bucket
}

// Report creates a checkpoint report on an order and attaches the given
// files. Individual attachment failures are logged and skipped.
func Report(ctx context.Context, opts Options, req ReportRequest, out io.Writer) error {
	if req.OrderID <= 0 {
		return fmt.Errorf("order id is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		return fmt.Errorf("location is required")
	}

	rt, err := openFromOptions(opts)
	if err != nil {
		return err
	}
	if !rt.auth.Snapshot().IsAuthenticated {
		return ErrSignedOut
	}

	uploads, err := attach.FromPaths(req.Files)
	if err != nil {
		return fmt.Errorf("attachments: %w", err)
	}
	if len(req.Objects) > 0 {
		if !rt.cfg.Attachments.Enabled() {
			return fmt.Errorf("bucket objects given but no [attachments] s3_bucket is configured")
		}
		src, err := attach.NewS3Source(ctx, rt.cfg.Attachments)
		if err != nil {
			return fmt.Errorf("attachment bucket: %w", err)
		}
		for _, key := range req.Objects {
			up, err := src.Open(ctx, key)
			if err != nil {
				return err
			}
			uploads = append(uploads, up)
		}
	}

	in := nixtrack.OrderDetailInput{
		ShipmentID:   req.OrderID,
		LocationName: strings.TrimSpace(req.Location),
		ReportedAt:   nixtrack.FormatTimestamp(time.Now()),
	}
	if user, ok := rt.auth.User(); ok {
		in.ReportedBy = user.Name
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		in.Notes = &notes
	}

	detail, err := rt.stores.OrderDetails.CreateWithFiles(ctx, in, uploads)
	if err != nil {
		return fmt.Errorf("report: %s", nixtrack.ErrorMessage(err, "Error al crear reporte"))
	}
	fmt.Fprintf(out, "Report %d created on order %d with %d attachment(s)\n", detail.ID, req.OrderID, len(uploads))
	return nil
}

func openFromOptions(opts Options) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return open(cfg, state.LogNotifier{}, time.Now())
}

func readPassword(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(string(data), "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required on stdin")
	}
	return password, nil
}
