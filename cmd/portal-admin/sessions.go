package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisadapter "github.com/stagepass/portal/internal/adapters/redis"
	"github.com/stagepass/portal/internal/bootstrap"
	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

const commandTimeout = 2 * time.Minute

var errAborted = errors.New("aborted")

// sessionAdmin is the slice of the Redis session store the CLI drives.
type sessionAdmin interface {
	List(ctx context.Context) ([]domainauth.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, userID string) (int, error)
}

// lockAdmin is the slice of the Redis in-flight lock the CLI drives.
type lockAdmin interface {
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) (int, error)
}

// withRedis connects, runs fn and closes the client.
func withRedis(cmdCtx *commandContext, fn func(ctx context.Context, client goredis.UniversalClient) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, cmdCtx.Config.Redis, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()
	return fn(ctx, client)
}

type listSessionsOptions struct {
	UserID  string
	Role    string
	RawJSON bool
}

func parseListSessionsFlags(args []string) (listSessionsOptions, error) {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts listSessionsOptions
	fs.StringVar(&opts.UserID, "user-id", "", "Only sessions for this user ID")
	fs.StringVar(&opts.Role, "role", "", "Only sessions for this role")
	fs.BoolVar(&opts.RawJSON, "json", false, "Print sessions as JSON (tokens redacted)")
	if err := fs.Parse(args); err != nil {
		return listSessionsOptions{}, err
	}
	opts.UserID = strings.TrimSpace(opts.UserID)
	if opts.Role != "" {
		role, ok := domainauth.ParseRole(opts.Role)
		if !ok {
			return listSessionsOptions{}, fmt.Errorf("unknown role %q", opts.Role)
		}
		opts.Role = string(role)
	}
	return opts, nil
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseListSessionsFlags(args)
	if err != nil {
		return err
	}
	return withRedis(cmdCtx, func(ctx context.Context, client goredis.UniversalClient) error {
		return listSessions(ctx, redisadapter.NewSessionStore(client), cmdCtx.Out, opts)
	})
}

func listSessions(ctx context.Context, store sessionAdmin, w io.Writer, opts listSessionsOptions) error {
	all, err := store.List(ctx)
	if err != nil {
		return err
	}
	rows := make([]domainauth.Session, 0, len(all))
	for _, s := range all {
		if opts.UserID != "" && s.User.ID != opts.UserID {
			continue
		}
		if opts.Role != "" && string(s.User.UserType) != opts.Role {
			continue
		}
		s.Token = ""
		rows = append(rows, s)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })

	if opts.RawJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "SESSION ID\tUSER ID\tUSERNAME\tROLE\tPLAN\tEXPIRES (UTC)"); err != nil {
		return fmt.Errorf("write sessions header row: %w", err)
	}
	for _, s := range rows {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.User.ID, s.User.Username, s.User.UserType, s.User.SubscriptionPlan,
			s.ExpiresAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("write session row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d session(s)\n", len(rows))
}

func runRevokeSession(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("revoke-session", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "Session ID to delete (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("--id is required")
	}
	return withRedis(cmdCtx, func(ctx context.Context, client goredis.UniversalClient) error {
		if err := redisadapter.NewSessionStore(client).Delete(ctx, strings.TrimSpace(*id)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		cmdCtx.Logger.Info("session revoked", "session_id", *id)
		return nil
	})
}

type revokeUserOptions struct {
	UserID string
	Yes    bool
}

func runRevokeUser(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("revoke-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts revokeUserOptions
	fs.StringVar(&opts.UserID, "user-id", "", "User ID whose sessions are deleted (required)")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.UserID = strings.TrimSpace(opts.UserID)
	if opts.UserID == "" {
		return errors.New("--user-id is required")
	}
	return withRedis(cmdCtx, func(ctx context.Context, client goredis.UniversalClient) error {
		return revokeUser(ctx, cmdCtx, redisadapter.NewSessionStore(client), opts)
	})
}

func revokeUser(ctx context.Context, cmdCtx *commandContext, store sessionAdmin, opts revokeUserOptions) error {
	if !opts.Yes {
		if err := confirm(cmdCtx, "sign out every session for user "+opts.UserID); err != nil {
			return err
		}
	}
	n, err := store.DeleteUser(ctx, opts.UserID)
	if err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	cmdCtx.Logger.Info("user sessions revoked", "user_id", opts.UserID, "count", n)
	return writef(cmdCtx.Out, "Revoked %d session(s).\n", n)
}

func runListLocks(cmdCtx *commandContext, _ []string) error {
	return withRedis(cmdCtx, func(ctx context.Context, client goredis.UniversalClient) error {
		return listLocks(ctx, redisadapter.NewInflightLock(client, cmdCtx.Config.Redis.LockTTL), cmdCtx.Out)
	})
}

func listLocks(ctx context.Context, locks lockAdmin, w io.Writer) error {
	keys, err := locks.Keys(ctx)
	if err != nil {
		return err
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writeln(w, k); err != nil {
			return err
		}
	}
	return writef(w, "%d lock(s) held\n", len(keys))
}

type clearLocksOptions struct {
	DryRun bool
	Yes    bool
}

func runClearLocks(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("clear-locks", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts clearLocksOptions
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print held locks without deleting")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withRedis(cmdCtx, func(ctx context.Context, client goredis.UniversalClient) error {
		return clearLocks(ctx, cmdCtx, redisadapter.NewInflightLock(client, cmdCtx.Config.Redis.LockTTL), opts)
	})
}

func clearLocks(ctx context.Context, cmdCtx *commandContext, locks lockAdmin, opts clearLocksOptions) error {
	if opts.DryRun {
		return listLocks(ctx, locks, cmdCtx.Out)
	}
	if !opts.Yes {
		if err := confirm(cmdCtx, "force-release every in-flight lock"); err != nil {
			return err
		}
	}
	n, err := locks.Clear(ctx)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("in-flight locks cleared", "count", n)
	return writef(cmdCtx.Out, "Cleared %d lock(s).\n", n)
}

// confirm asks for an explicit "yes" on cmdCtx.In.
func confirm(cmdCtx *commandContext, action string) error {
	if err := writef(cmdCtx.Out, "About to %s. Type 'yes' to continue: ", action); err != nil {
		return err
	}
	line, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if strings.TrimSpace(strings.ToLower(line)) != "yes" {
		return errAborted
	}
	return nil
}
