package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/shopforge/backend/internal/infrastructure/config"
	"github.com/shopforge/backend/internal/infrastructure/logger"
	"github.com/shopforge/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

// sourceMigrationsPath is where create writes new files, relative to the repo root
const sourceMigrationsPath = "internal/infrastructure/migration/sql"

// session is what a command runs against. migrator is nil for offline commands.
type session struct {
	dir      string
	log      *zap.Logger
	migrator *migration.Migrator
}

type command struct {
	name    string
	args    string
	summary string
	offline bool
	run     func(s *session, args []string) error
}

var commands = []command{
	{name: "up", summary: "Apply all pending migrations", run: func(s *session, _ []string) error {
		return s.migrator.Up()
	}},
	{name: "down", summary: "Roll back all migrations", run: func(s *session, _ []string) error {
		return s.migrator.Down()
	}},
	{name: "step", args: "<n>", summary: "Apply n migrations (negative rolls back)", run: func(s *session, args []string) error {
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return s.migrator.Steps(n)
	}},
	{name: "goto", args: "<version>", summary: "Migrate to a specific version", run: func(s *session, args []string) error {
		v, err := intArg(args, "goto <version>")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("version must not be negative")
		}
		return s.migrator.GoTo(uint(v))
	}},
	{name: "version", summary: "Show the applied version", run: showVersion},
	{name: "force", args: "<version>", summary: "Mark a version as applied without running it", run: func(s *session, args []string) error {
		v, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		s.log.Warn("Forcing migration version", zap.Int("version", v))
		return s.migrator.Force(v)
	}},
	{name: "drop", args: "-confirm", summary: "Drop every database object", run: func(s *session, args []string) error {
		if !hasConfirm(args) {
			return errors.New("drop needs -confirm")
		}
		return s.migrator.Drop()
	}},
	{name: "create", args: "<name> [desc]", summary: "Write a new up/down file pair", offline: true, run: createMigration},
	{name: "list", summary: "List available migrations", offline: true, run: listMigrations},
}

func main() {
	var dir, logLevel string
	flag.StringVar(&dir, "path", "", "migrations directory (default: migrations built into the binary)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if dir != "" {
		if dir, err = filepath.Abs(dir); err != nil {
			log.Fatal("Invalid migrations path", zap.Error(err))
		}
	}
	s := &session{dir: dir, log: log}
	log.Info("Migration CLI started", zap.String("command", cmd.name), zap.String("migrations", s.source()))

	if !cmd.offline {
		closeDB, err := s.connect()
		if err != nil {
			log.Fatal("Failed to open migrator", zap.Error(err))
		}
		defer closeDB()
	}

	if err := cmd.run(s, args[1:]); err != nil {
		log.Fatal("Migration command failed", zap.String("command", cmd.name), zap.Error(err))
	}
}

func (s *session) source() string {
	if s.dir == "" {
		return "embedded"
	}
	return s.dir
}

// connect opens the configured database and a migrator over it
func (s *session) connect() (func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	m, err := migration.New(db, s.dir, s.log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.migrator = m
	return func() {
		_ = m.Close()
		_ = db.Close()
	}, nil
}

func showVersion(s *session, _ []string) error {
	version, dirty, err := s.migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		s.log.Info("No migrations applied")
		return nil
	}
	s.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func createMigration(s *session, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: migrate create <name> [description]")
	}
	description := strings.Join(args[1:], " ")
	dir := s.dir
	if dir == "" {
		dir = sourceMigrationsPath
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	s.log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath))
	return nil
}

func listMigrations(s *session, _ []string) error {
	names, err := migration.ListMigrations(s.dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		s.log.Info("No migrations found")
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func intArg(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: migrate %s", usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", args[0])
	}
	return n, nil
}

func hasConfirm(args []string) bool {
	for _, a := range args {
		if a == "-confirm" || a == "--confirm" {
			return true
		}
	}
	return false
}

func printUsage() {
	var b strings.Builder
	b.WriteString("ShopForge database migrations\n\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-22s %s\n", strings.TrimSpace(c.name+" "+c.args), c.summary)
	}
	b.WriteString("\nFlags:\n")
	fmt.Fprint(os.Stderr, b.String())
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nDatabase settings come from SHOP_DATABASE_* variables or the config file.")
}
