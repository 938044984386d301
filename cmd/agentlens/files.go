package main

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"

	"github.com/agentlens/agentlens-go/telemetry"
)

// discoverLogs expands the CLI arguments into a sorted list of event log
// files. Files are taken as-is; directories are walked and matched
// against pattern (relative to the directory, slash-separated).
func discoverLogs(roots []string, pattern string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if ok {
				mu.Lock()
				files = append(files, path)
				mu.Unlock()
			}
			return nil
		}
		if err := fastwalk.Walk(&fastwalk.Config{Follow: true}, root, walkFn); err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// readEvents decodes one event log. Compression is detected by content,
// not extension. Malformed lines are skipped and counted, never fatal:
// a partially corrupt log still yields its good events.
func readEvents(path string) ([]telemetry.Item, int, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if mt.Is("application/gzip") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, 0, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	var (
		items     []telemetry.Item
		malformed int
		lineNo    int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 8<<20)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		item, err := telemetry.DecodeItem(line)
		if err != nil {
			malformed++
			log.Printf("%s:%d: %v", path, lineNo, err)
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed, fmt.Errorf("read %s: %w", path, err)
	}
	return items, malformed, nil
}
