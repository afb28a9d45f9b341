package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type LogRotation struct {
	maxSize int64
	maxAge  time.Duration
	now     func() time.Time
}

// NewLogRotation returns nil when both limits are disabled.
func NewLogRotation(maxSizeMB, maxAgeHours int) *LogRotation {
	if maxSizeMB <= 0 && maxAgeHours <= 0 {
		return nil
	}
	return &LogRotation{
		maxSize: int64(maxSizeMB) << 20,
		maxAge:  time.Duration(maxAgeHours) * time.Hour,
		now:     time.Now,
	}
}

func (lr *LogRotation) ShouldRotate(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return false
	}

	if lr.maxSize > 0 && info.Size() >= lr.maxSize {
		return true
	}

	return lr.maxAge > 0 && lr.now().Sub(info.ModTime()) >= lr.maxAge
}

// Rotate renames path to path-<timestamp>.ext.
func (lr *LogRotation) Rotate(path string) (string, error) {
	timestamp := lr.now().Format("20060102-150405")
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	newPath := fmt.Sprintf("%s-%s%s", base, timestamp, ext)

	err := os.Rename(path, newPath)
	return newPath, err
}
