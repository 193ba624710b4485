package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jeanpaul/mnemo/internal/config"
	"github.com/jeanpaul/mnemo/internal/ops"
	"github.com/jeanpaul/mnemo/internal/store"
)

// request is one line on stdin: an operation name plus its arguments.
type request struct {
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// response is one line on stdout.
type response struct {
	OK     bool   `json:"ok"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func main() {
	dataFlag := flag.String("data", "", "Memory file path (overrides config)")
	initConfigFlag := flag.Bool("init-config", false, "Write a starter config.yaml and exit")
	statsFlag := flag.Bool("stats", false, "Print store statistics and exit")
	exportFlag := flag.Bool("export", false, "Print a snapshot of the store and exit")
	namespaceFlag := flag.String("namespace", "", "Namespace for -export")
	importFlag := flag.String("import", "", "Import a snapshot file and exit")
	overwriteFlag := flag.Bool("overwrite", false, "Overwrite existing keys during -import")
	quietFlag := flag.Bool("quiet", false, "Suppress logging")
	flag.Parse()

	if *initConfigFlag {
		path, err := config.WriteDefault()
		if err != nil {
			fatal("Failed to write config: %v", err)
		}
		fmt.Println("Wrote", path)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *dataFlag != "" {
		cfg.DataFile = *dataFlag
	}

	logger := newLogger(cfg.LogLevel, *quietFlag)
	slog.SetDefault(logger)

	st, err := store.Open(cfg.DataFile,
		store.WithLogger(logger),
		store.WithPrettySave(cfg.PrettySave),
		store.WithDefaultLimit(cfg.SearchLimit),
	)
	if err != nil {
		fatal("Failed to open memory store: %v", err)
	}

	registry := ops.NewDefaultRegistry(st, logger)
	ctx := context.Background()

	switch {
	case *statsFlag:
		runOnce(ctx, registry, "memory_stats", "")
	case *exportFlag:
		args := "{}"
		if *namespaceFlag != "" {
			args = fmt.Sprintf(`{"namespace":%q}`, *namespaceFlag)
		}
		runOnce(ctx, registry, "memory_export", args)
	case *importFlag != "":
		data, err := os.ReadFile(*importFlag)
		if err != nil {
			fatal("Failed to read %s: %v", *importFlag, err)
		}
		args, err := json.Marshal(map[string]any{
			"snapshot":  json.RawMessage(data),
			"overwrite": *overwriteFlag,
		})
		if err != nil {
			fatal("%s is not valid JSON: %v", *importFlag, err)
		}
		runOnce(ctx, registry, "memory_import", string(args))
	default:
		serve(ctx, registry, os.Stdin, os.Stdout)
	}
}

// runOnce executes a single operation and prints its result.
func runOnce(ctx context.Context, registry *ops.Registry, op, args string) {
	res, err := registry.Execute(ctx, op, args)
	if err != nil {
		fatal("%s failed: %v", op, err)
	}
	if res.Error != "" {
		fatal("%s: %s", op, res.Error)
	}
	fmt.Println(res.Output)
}

// serve reads one JSON request per line and writes one JSON response per
// line. This is the stand-in for a real protocol front end: requests arrive
// already shaped, responses leave as structured values.
func serve(ctx context.Context, registry *ops.Registry, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			enc.Encode(response{Error: "malformed request: " + err.Error()})
			continue
		}
		if req.Op == "" {
			enc.Encode(response{Error: "missing op"})
			continue
		}

		res, err := registry.Execute(ctx, req.Op, string(req.Args))
		switch {
		case err != nil:
			enc.Encode(response{Error: err.Error()})
		case res.Error != "":
			enc.Encode(response{Error: res.Error})
		default:
			enc.Encode(response{OK: true, Output: res.Output})
		}
	}
	if err := scanner.Err(); err != nil {
		fatal("Failed to read requests: %v", err)
	}
}

func newLogger(level string, quiet bool) *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// Logs go to stderr so the response stream stays clean.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
