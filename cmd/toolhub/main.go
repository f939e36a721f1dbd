// Command toolhub is a command-line front end for the tool registry: list
// registered tools, invoke one with key=value arguments, run documentation
// discovery, and summarize usage costs.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skosovsky/toolhub"
	"github.com/skosovsky/toolhub/toolkits/docs"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := toolhub.LoadConfig()
	if err != nil {
		fatal(err)
	}
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg, logger)
	if err != nil {
		fatal(err)
	}

	switch os.Args[1] {
	case "list":
		err = app.list(os.Args[2:])
	case "run":
		err = app.run(ctx, os.Args[2:])
	case "docs":
		err = app.docs(ctx, os.Args[2:])
	case "costs":
		err = app.costs(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Println("Usage: toolhub <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  list [-tag TAG] [-json]         List registered tools")
	fmt.Println("  run <tool> [-kv key=value]...   Invoke a tool")
	fmt.Println("  docs <technology> [-validate]   Find documentation for a technology")
	fmt.Println("  costs [-tool NAME] [-days N]    Summarize usage costs")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

type app struct {
	cfg        toolhub.Config
	registry   *toolhub.Registry
	dispatcher *toolhub.Dispatcher
}

func newApp(cfg toolhub.Config, logger *zap.Logger) (*app, error) {
	reg := toolhub.NewRegistry()
	if err := docs.NewToolkit(nil, nil).Register(reg); err != nil {
		return nil, err
	}
	d := toolhub.FromConfig(reg, cfg, toolhub.WithLogger(logger))
	return &app{cfg: cfg, registry: reg, dispatcher: d}, nil
}

func (a *app) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	tag := fs.String("tag", "", "only tools carrying this tag")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	type entry struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Tags        []string `json:"tags,omitempty"`
	}
	var entries []entry
	for t := range a.registry.List(*tag) {
		entries = append(entries, entry{
			Name:        t.Name(),
			Description: t.Description(),
			Tags:        toolhub.Tags(t),
		})
	}

	if *asJSON {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}
	for _, e := range entries {
		line := e.Name
		if len(e.Tags) > 0 {
			line += " [" + strings.Join(e.Tags, ",") + "]"
		}
		if e.Description != "" {
			line += "  " + e.Description
		}
		fmt.Println(line)
	}
	return nil
}

// kvFlags collects repeated -kv key=value pairs into an argument map,
// parsing values as JSON scalars when possible so -kv count=3 arrives as a
// number, not a string.
type kvFlags struct {
	args toolhub.Args
}

func (f *kvFlags) String() string { return "" }

func (f *kvFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	if f.args == nil {
		f.args = toolhub.Args{}
	}
	f.args[key] = parseScalar(value)
	return nil
}

func parseScalar(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return x
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: run <tool> [-kv key=value]...")
	}
	name := args[0]
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var kv kvFlags
	fs.Var(&kv, "kv", "tool argument as key=value (repeatable)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	res := a.dispatcher.Invoke(ctx, name, kv.args)
	if !res.Ok() {
		return fmt.Errorf("%s", res.Failure.Message)
	}
	return json.NewEncoder(os.Stdout).Encode(res.Output)
}

func (a *app) docs(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docs <technology> [-validate] [-json]")
	}
	technology := args[0]
	fs := flag.NewFlagSet("docs", flag.ExitOnError)
	validate := fs.Bool("validate", false, "fetch and validate the top candidate")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	tool := "find_docs"
	if *validate {
		tool = "find_docs_validated"
	}
	res := a.dispatcher.Invoke(ctx, tool, toolhub.Args{"technology": technology})
	if !res.Ok() {
		return fmt.Errorf("%s", res.Failure.Message)
	}
	if *asJSON {
		return json.NewEncoder(os.Stdout).Encode(res.Output)
	}
	if url := res.Output.String("url"); url != "" {
		fmt.Println(url)
		return nil
	}
	fmt.Println("no documentation found:", res.Output.String("reason"))
	return nil
}

func (a *app) costs(args []string) error {
	fs := flag.NewFlagSet("costs", flag.ExitOnError)
	tool := fs.String("tool", "", "only this tool")
	days := fs.Int("days", 0, "only records from the last N days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var since time.Time
	if *days > 0 {
		since = time.Now().AddDate(0, 0, -*days)
	}
	summaries, err := toolhub.SummarizeFile(a.cfg.UsageLogPath, *tool, since)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no usage recorded")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%-30s calls=%-5d in=%-8d out=%-8d $%.4f\n",
			s.Tool, s.Calls, s.InputTokens, s.OutputTokens, s.Cost)
	}
	return nil
}
