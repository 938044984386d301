// Command agentlens replays recorded agent event logs against the
// AgentLens backend. Logs are JSONL files (one trace or span event per
// line), optionally gzip-compressed, as written by the framework's
// file-based processor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentlens/agentlens-go/exporter"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("agentlens: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("agentlens", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to a YAML config file")
		pattern    = fs.String("pattern", "**/*.jsonl*", "glob matched against file paths inside directories")
		chunkSize  = fs.Int("chunk", 200, "events per export call")
		debug      = fs.Bool("debug", false, "log every pipeline step")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: agentlens [flags] <file|dir>...")
	}
	if *chunkSize < 1 {
		return fmt.Errorf("chunk must be positive, got %d", *chunkSize)
	}

	cfg, err := loadConfig(*configPath, *debug)
	if err != nil {
		return err
	}
	cfg.OnError = func(err error, ectx exporter.ErrorContext) {
		log.Printf("export %s failed for %s %s: %v",
			ectx.Operation, ectx.ItemType, ectx.ExternalID, err)
	}

	exp, err := exporter.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = exp.Shutdown(context.Background())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := discoverLogs(fs.Args(), *pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no event logs matched %q", *pattern)
	}

	var exported, malformed int
	for _, path := range files {
		items, bad, err := readEvents(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		malformed += bad

		for start := 0; start < len(items); start += *chunkSize {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			end := min(start+*chunkSize, len(items))
			if err := exp.Export(ctx, items[start:end]); err != nil {
				return err
			}
			exported += end - start
		}
	}

	stats := exp.CacheStats()
	fmt.Printf("exported %d events from %d files (%d malformed lines skipped, %d traces live)\n",
		exported, len(files), malformed, stats.Traces)
	return nil
}
