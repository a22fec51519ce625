// Emberfall is a data-driven narrative RPG core with console front ends.
// Usage: emberfall [--version] [--plain] [--script <file>] [--content <dir>]
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"github.com/mirren/emberfall/cli"
	"github.com/mirren/emberfall/engine"
	"github.com/mirren/emberfall/loader"
	"github.com/mirren/emberfall/logger"
	"github.com/mirren/emberfall/storage"
	"github.com/mirren/emberfall/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config carries the environment settings. Command-line flags override.
type Config struct {
	ContentDir string `env:"EMBERFALL_CONTENT" env-default:"content"`
	SaveDir    string `env:"EMBERFALL_SAVE_DIR" env-default:""`
	RedisAddr  string `env:"EMBERFALL_REDIS_ADDR" env-default:""`
	LogLevel   string `env:"EMBERFALL_LOG_LEVEL" env-default:"info"`
	LogFormat  string `env:"EMBERFALL_LOG_FORMAT" env-default:"console"`
}

func main() {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}

	plain := false
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("emberfall %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--content":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--content requires a directory\n")
				os.Exit(1)
			}
			i++
			cfg.ContentDir = args[i]
		default:
			// A bare argument names the content directory.
			cfg.ContentDir = args[i]
		}
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	defs, err := loader.Load(cfg.ContentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	g := engine.New(defs, log)

	// Script mode: read commands from the file, echoing each one.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(g, store)
		c.In = f
		c.EchoInput = true
		c.Run()
		return
	}

	// Plain CLI when asked for, or when stdout is not a terminal.
	if plain || !isTerminal() {
		cli.New(g, store).Run()
		return
	}

	if err := tui.Run(g, store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore picks Redis when an address is configured, otherwise a
// file store under the save directory.
func openStore(cfg Config, log *zap.Logger) (storage.Store, error) {
	if cfg.RedisAddr != "" {
		return storage.NewRedisStore(context.Background(), cfg.RedisAddr, log)
	}
	dir := cfg.SaveDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".emberfall", "saves")
	}
	return storage.NewFileStore(dir, log)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
