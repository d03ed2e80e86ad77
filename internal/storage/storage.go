// Package storage appends raw sentences to daily log files.
package storage

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// Storage writes raw AIS sentences to OUTPUT_DIR/ais_YYYY-MM-DD.log
type Storage struct {
	outputDir string
	now       func() time.Time
	file      *os.File
	day       string
	mu        sync.Mutex
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New creates a new Storage instance
func New(outputDir string) *Storage {
	return &Storage{
		outputDir: outputDir,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// FileName returns the log file name for the UTC day of t
func FileName(t time.Time) string {
	return fmt.Sprintf("ais_%s.log", t.UTC().Format(dayLayout))
}

// Start opens today's file and starts the rotation timer
func (s *Storage) Start() error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	s.mu.Lock()
	err := s.openFile(s.now())
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go s.rotationTimer()
	return nil
}

// Stop closes the current file and stops the rotation timer
func (s *Storage) Stop() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// WriteMessage appends a sentence and a newline to the current day's file.
// A write on a new UTC day rotates first.
func (s *Storage) WriteMessage(message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.file == nil {
		if err := s.openFile(now); err != nil {
			return err
		}
	} else if FileName(now) != s.day {
		if err := s.rotateLocked(now); err != nil {
			return err
		}
	}

	if len(message) == 0 || message[len(message)-1] != '\n' {
		message = append(message[:len(message):len(message)], '\n')
	}
	_, err := s.file.Write(message)
	return err
}

// rotationTimer handles daily rotation at midnight UTC
func (s *Storage) rotationTimer() {
	defer s.wg.Done()

	for {
		now := s.now().UTC()
		nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

		select {
		case <-time.After(nextMidnight.Sub(now)):
			if err := s.Rotate(); err != nil {
				log.Printf("Error during rotation: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// Rotate switches to the current day's file and compresses the previous one
func (s *Storage) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotateLocked(s.now())
}

func (s *Storage) rotateLocked(now time.Time) error {
	if FileName(now) == s.day && s.file != nil {
		return nil
	}

	previous := ""
	if s.file != nil {
		previous = s.file.Name()
		if err := s.file.Close(); err != nil {
			log.Printf("Warning: failed to close %s: %v", previous, err)
		}
		s.file = nil
	}

	if err := s.openFile(now); err != nil {
		return err
	}

	if previous != "" {
		if err := compressFile(previous); err != nil {
			return fmt.Errorf("failed to compress file: %w", err)
		}
	}
	return nil
}

// compressFile gzips path into path.gz and removes the original
func compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer target.Close()

	gzipWriter := gzip.NewWriter(target)
	gzipWriter.Name = filepath.Base(path)

	if _, err := io.Copy(gzipWriter, source); err != nil {
		gzipWriter.Close()
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		return err
	}
	if err := target.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}

// openFile opens the log file for the day of now in append mode
func (s *Storage) openFile(now time.Time) error {
	name := FileName(now)
	file, err := os.OpenFile(filepath.Join(s.outputDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	s.file = file
	s.day = name
	return nil
}
