package organizer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"taxfiler/internal/services"
)

// ErrBatchInProgress is returned when another process holds the batch lock.
var ErrBatchInProgress = fmt.Errorf("%w: another taxfiler batch is already running", services.ErrTransient)

// acquireLock takes the advisory batch lock. The returned release func is a
// no-op when no lock file is configured.
func acquireLock(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageOrganizing, "create lock dir", "Failed to create state directory", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, stageOrganizing, "acquire lock", "Failed to acquire batch lock", err)
	}
	if !ok {
		return nil, ErrBatchInProgress
	}
	return func() { _ = lock.Unlock() }, nil
}
