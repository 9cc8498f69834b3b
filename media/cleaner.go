package media

import (
	"os"
	"path/filepath"
	"time"

	"github.com/minglehq/mingle/utils"
)

// StartTempCleaner launches a background goroutine that periodically deletes
// multipart temp files older than ttl from dir. Uploads land in the media
// store immediately, so anything still sitting in the temp directory after ttl
// belongs to an abandoned request. Best-effort; failures are logged.
func StartTempCleaner(dir string, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)

			entries, err := os.ReadDir(dir)
			if err != nil {
				if !os.IsNotExist(err) {
					utils.Sugar.Warnf("temp cleaner read dir failed: %v", err)
				}
				continue
			}
			cutoff := time.Now().Add(-ttl)
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				if info.ModTime().After(cutoff) {
					continue
				}
				if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
					utils.Sugar.Warnf("temp cleaner remove %s failed: %v", entry.Name(), err)
				}
			}
		}
	}()
}
