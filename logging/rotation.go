package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logFilePrefix = "interactions-"

// numberedFile matches size rotated files such as interactions-2026-W41_02.log
var numberedFile = regexp.MustCompile(`^interactions-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingWriter writes to one file per ISO week, starting a numbered file
// whenever the current one reaches maxFileSize. Files older than the retention
// period are removed by Cleanup.
type RotatingWriter struct {
	dir         string
	retention   time.Duration
	maxFileSize int64
	now         func() time.Time

	mu   sync.Mutex
	file *os.File
	week string
	size int64

	stop chan struct{}
	done chan struct{}
}

// NewRotatingWriter opens the current week's file in dir, creating dir if needed.
// A zero maxFileSize disables size rotation.
func NewRotatingWriter(dir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.open(weekKey(w.now()), false); err != nil {
		return nil, err
	}
	return w, nil
}

// weekKey returns the ISO week in YYYY-Www format
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write appends p to the current file, rotating first when the week changed
// or p would push the file over the size limit.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	week := weekKey(w.now())
	switch {
	case week != w.week:
		if err := w.open(week, false); err != nil {
			return 0, err
		}
	case w.maxFileSize > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxFileSize:
		if err := w.open(week, true); err != nil {
			return 0, err
		}
	}

	if w.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// open switches to the file for week (caller must hold mu).
// full forces a new numbered file.
func (w *RotatingWriter) open(week string, full bool) error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}

	name := w.pickFile(week, full)
	path := filepath.Join(w.dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file %s: %w", path, err)
	}

	w.file = file
	w.week = week
	w.size = info.Size()
	return nil
}

// pickFile returns the first file of week that still has room
func (w *RotatingWriter) pickFile(week string, full bool) string {
	base := logFilePrefix + week + ".log"

	hasRoom := func(name string) bool {
		info, err := os.Stat(filepath.Join(w.dir, name))
		if err != nil {
			return true
		}
		return w.maxFileSize == 0 || info.Size() < w.maxFileSize
	}

	highest := 0
	matches, _ := filepath.Glob(filepath.Join(w.dir, logFilePrefix+week+"_??.log"))
	for _, match := range matches {
		if m := numberedFile.FindStringSubmatch(filepath.Base(match)); m != nil {
			if num, _ := strconv.Atoi(m[1]); num > highest {
				highest = num
			}
		}
	}

	if highest == 0 {
		if !full && hasRoom(base) {
			return base
		}
		return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, 1)
	}

	last := fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, highest)
	if !full && hasRoom(last) {
		return last
	}
	return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, highest+1)
}

// Cleanup removes log files last modified before the retention period.
// It returns the number of files removed.
func (w *RotatingWriter) Cleanup() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := w.now().Add(-w.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.dir, name)); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// StartCleanup runs Cleanup every interval until Close
func (w *RotatingWriter) StartCleanup(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		return
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if removed, err := w.Cleanup(); err != nil {
					fmt.Fprintf(os.Stderr, "log cleanup failed: %v\n", err)
				} else if removed > 0 {
					// console only, the file handler would recurse
					fmt.Fprintf(os.Stderr, "Cleaned up %d old log files\n", removed)
				}
			}
		}
	}(w.stop, w.done)
}

// Close stops the cleanup loop and closes the current file
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop = nil
	w.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
