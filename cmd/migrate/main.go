// Command migrate manages the closet schema and bootstraps the first super admin.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/logger"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/migration"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

// tool carries what every command may need. cfg and migrator are set only
// for commands that declare they need them.
type tool struct {
	log      *zap.Logger
	dir      string // -path, empty for the embedded set
	args     []string
	cfg      *config.Config
	migrator *migration.Migrator
}

type command struct {
	usage   string
	help    string
	needs   need
	run     func(t *tool) error
	minArgs int
}

type need int

const (
	needNothing need = iota
	needConfig
	needMigrator
)

var commands = map[string]command{
	"up":      {usage: "up", help: "Apply all pending migrations", needs: needMigrator, run: func(t *tool) error { return t.migrator.Up() }},
	"down":    {usage: "down", help: "Roll back every migration", needs: needMigrator, run: func(t *tool) error { return t.migrator.Down() }},
	"step":    {usage: "step <n>", help: "Apply n migrations, negative n rolls back", needs: needMigrator, minArgs: 1, run: runStep},
	"goto":    {usage: "goto <version>", help: "Migrate up or down to version", needs: needMigrator, minArgs: 1, run: runGoto},
	"version": {usage: "version", help: "Show the applied version", needs: needMigrator, run: runVersion},
	"force":   {usage: "force <version>", help: "Mark version as applied without running it", needs: needMigrator, minArgs: 1, run: runForce},
	"create":  {usage: "create <name> [description]", help: "Write an empty up/down pair", minArgs: 1, run: runCreate},
	"list":    {usage: "list", help: "List migrations, embedded unless -path is given", run: runList},
	"create-admin": {
		usage:   "create-admin <email> <first> <last>",
		help:    "Create or promote a super admin; password from CLOSET_ADMIN_PASSWORD",
		needs:   needConfig,
		minArgs: 3,
		run:     runCreateAdmin,
	},
}

var commandOrder = []string{"up", "down", "step", "goto", "version", "force", "create", "list", "create-admin"}

func main() {
	dir := flag.String("path", "", "read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok || len(args)-1 < cmd.minArgs {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout", TimeFormat: time.DateTime})
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	t := &tool{log: log, dir: *dir, args: args[1:]}
	if err := t.exec(cmd); err != nil {
		log.Error("migrate "+args[0]+" failed", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
}

func (t *tool) exec(cmd command) error {
	if cmd.needs >= needConfig {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		t.cfg = cfg
	}
	if cmd.needs >= needMigrator {
		db, err := sql.Open("postgres", t.cfg.Database.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		m, err := migration.New(db, t.source(), t.log)
		if err != nil {
			return err
		}
		defer m.Close()
		t.migrator = m
	}
	return cmd.run(t)
}

func (t *tool) source() migration.Source {
	if t.dir == "" {
		return migration.Embedded()
	}
	return migration.FromDir(resolveDir(t.dir))
}

func runStep(t *tool) error {
	n, err := strconv.Atoi(t.args[0])
	if err != nil {
		return fmt.Errorf("step count %q: %w", t.args[0], err)
	}
	return t.migrator.Steps(n)
}

func runGoto(t *tool) error {
	v, err := strconv.ParseUint(t.args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("version %q: %w", t.args[0], err)
	}
	return t.migrator.GoTo(uint(v))
}

func runVersion(t *tool) error {
	v, dirty, err := t.migrator.Version()
	if err != nil {
		return err
	}
	if v == 0 {
		t.log.Info("no migrations applied")
		return nil
	}
	t.log.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}

func runForce(t *tool) error {
	v, err := strconv.Atoi(t.args[0])
	if err != nil {
		return fmt.Errorf("version %q: %w", t.args[0], err)
	}
	t.log.Warn("forcing schema version", zap.Int("version", v))
	return t.migrator.Force(v)
}

func runCreate(t *tool) error {
	var description string
	if len(t.args) > 1 {
		description = t.args[1]
	}
	dir := t.dir
	if dir == "" {
		dir = defaultMigrationsDir
	}
	mf, err := migration.CreateMigration(resolveDir(dir), t.args[0], description)
	if err != nil {
		return err
	}
	t.log.Info("migration created",
		zap.String("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath))
	return nil
}

func runList(t *tool) error {
	names, err := migration.List(t.source())
	if err != nil {
		return err
	}
	t.log.Info("migrations", zap.Stringer("source", t.source()), zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

// runCreateAdmin bootstraps a super admin. The password comes from the
// environment so it stays out of shell history.
func runCreateAdmin(t *tool) error {
	email, first, last := t.args[0], t.args[1], t.args[2]
	password := os.Getenv("CLOSET_ADMIN_PASSWORD")
	if password == "" {
		return errors.New("CLOSET_ADMIN_PASSWORD is not set")
	}

	db, err := persistence.NewDatabase(&t.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := persistence.NewGormClientRepository(db.DB)
	admin, err := repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if admin, err = client.NewClient(first, last, email, password); err != nil {
			return err
		}
		admin.SetRoles(true, true)
		err = repo.Create(ctx, admin)
	case err != nil:
		return err
	default:
		t.log.Info("promoting existing client", zap.String(logger.FieldClientID, admin.ID.String()))
		admin.SetRoles(true, true)
		err = repo.Save(ctx, admin)
	}
	if err != nil {
		return err
	}
	t.log.Info("super admin ready", zap.String(logger.FieldClientID, admin.ID.String()), zap.String("email", admin.Email))
	return nil
}

// resolveDir makes dir absolute. A relative directory that does not exist is
// also looked up two levels above the binary, where `go build -o bin/...`
// leaves it.
func resolveDir(dir string) string {
	if _, err := os.Stat(dir); err != nil && !filepath.IsAbs(dir) {
		if exe, err := os.Executable(); err == nil {
			candidate := filepath.Join(filepath.Dir(exe), "..", "..", dir)
			if _, err := os.Stat(candidate); err == nil {
				dir = candidate
			}
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: migrate [flags] <command> [arguments]")
	fmt.Fprintln(out, "\nCommands:")
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Fprintf(out, "  %-38s %s\n", c.usage, c.help)
	}
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nDatabase settings come from config.toml or CLOSET_DATABASE_* variables.")
}
