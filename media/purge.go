package media

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PurgeStale removes regular files in dir last modified more than maxAge
// before now and returns how many were removed. Errors are ignored.
func PurgeStale(dir string, maxAge time.Duration, now time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(dir, entry.Name())) == nil {
				removed++
			}
		}
	}
	return removed
}

// Sweeper periodically purges stale temporary files.
type Sweeper struct {
	cron   *cron.Cron
	dirs   []string
	maxAge time.Duration
	logger *logrus.Logger
}

func NewSweeper(schedule string, maxAge time.Duration, logger *logrus.Logger, dirs ...string) (*Sweeper, error) {
	s := &Sweeper{
		cron:   cron.New(),
		dirs:   dirs,
		maxAge: maxAge,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.logger.WithFields(logrus.Fields{
		"dirs":    s.dirs,
		"max_age": s.maxAge.String(),
	}).Info("Starting temp file sweeper")
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep purges every directory once.
func (s *Sweeper) Sweep() int {
	total := 0
	now := time.Now()
	for _, dir := range s.dirs {
		n := PurgeStale(dir, s.maxAge, now)
		if n > 0 {
			s.logger.WithFields(logrus.Fields{
				"operation": "Sweeper.Sweep",
				"dir":       dir,
				"removed":   n,
			}).Info("Purged stale files")
		}
		total += n
	}
	return total
}
