package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bukubesar/models"
)

// Global DB handle for helper funcs
var db *gorm.DB

// global flags (parsed in main)
var (
	verbose bool
	dryRun  bool
)

// MIME mapping to avoid opening files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".csv":  "text/csv",
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func attachmentBaseDir() string {
	if v := os.Getenv("ATTACHMENT_BASE"); v != "" {
		return v
	}
	return "attachments"
}

// Main: scans an inbox laid out as <inbox>/<event-id>/<file>, registering each
// file as an attachment of that event, with optional watch mode for dropped-in
// files (scanners, bank exports).
func main() {
	dirFlag := flag.String("dir", "inbox", "inbox directory scanned for <event-id>/<file> entries")
	watch := flag.Bool("watch", false, "Watch inbox for new files")
	workers := flag.Int("workers", 4, "Worker pool size")
	flag.BoolVar(&dryRun, "dry-run", false, "List candidate files without DB writes or moves")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	if !dryRun {
		db = mustInitDBFromEnv()
		if err := os.MkdirAll(attachmentBaseDir(), 0755); err != nil {
			log.Fatalf("failed to create attachment base dir: %v", err)
		}
	}

	files := listInboxFiles(*dirFlag)
	log.Printf("Found %d candidate files in %s", len(files), *dirFlag)
	if dryRun {
		for _, f := range files {
			log.Printf("would ingest %s", f)
		}
		return
	}

	fileCh := make(chan string, 256)
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range fileCh {
				if err := ingest(*dirFlag, rel); err != nil {
					log.Printf("ingest %s: %v", rel, err)
				} else if verbose {
					log.Printf("ingested %s", rel)
				}
			}
		}()
	}

	for _, f := range files {
		fileCh <- f
	}

	if *watch {
		if err := watchInbox(*dirFlag, fileCh); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
	close(fileCh)
	wg.Wait()
}

// listInboxFiles returns event-id/filename pairs relative to the inbox root.
func listInboxFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue // stray files at the root have no event to belong to
		}
		if _, err := strconv.ParseUint(e.Name(), 10, 64); err != nil {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		for _, f := range sub {
			if f.IsDir() || !isSupportedExt(f.Name()) {
				continue
			}
			out = append(out, filepath.Join(e.Name(), f.Name()))
		}
	}
	return out
}

func isSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := extMime[ext]
	return ok
}

// ingest copies one inbox file into attachment storage under a fresh random
// key, records the Attachment row, then removes the source. The event id is
// the name of the containing directory and must already exist.
func ingest(root, rel string) error {
	eventIDStr := filepath.Dir(rel)
	eventID, err := strconv.ParseUint(eventIDStr, 10, 64)
	if err != nil {
		return err
	}
	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		return err
	}

	src := filepath.Join(root, rel)
	ext := strings.ToLower(filepath.Ext(rel))
	key := uuid.New().String() + ext
	dst := filepath.Join(attachmentBaseDir(), key)
	if err := copyFile(src, dst); err != nil {
		return err
	}

	att := models.Attachment{
		EventID:     event.ID,
		FileName:    filepath.Base(rel),
		StorePath:   "attachments/" + key,
		ContentType: extMime[ext],
	}
	if err := db.Create(&att).Error; err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// watchInbox feeds newly created inbox files into fileCh. Events are debounced
// so half-written files (scanners write slowly) are picked up once stable.
func watchInbox(dir string, fileCh chan<- string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	// watch existing event subdirectories too
	if entries, err := os.ReadDir(dir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				_ = w.Add(filepath.Join(dir, e.Name()))
			}
		}
	}
	log.Printf("Watching %s (debounced) ...", dir)

	// simple debounce map of pending files
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
				// a new event directory appeared; watch it
				_ = w.Add(ev.Name)
				continue
			}
			if !isSupportedExt(filepath.Base(ev.Name)) {
				continue
			}
			if rel, err := filepath.Rel(dir, ev.Name); err == nil {
				pending[rel] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for rel, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					fileCh <- rel
					delete(pending, rel)
				}
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", werr)
		}
	}
}
