package support

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// lowDiskThreshold triggers the free-space warning. Bundles from large
// clusters run to gigabytes.
const lowDiskThreshold = 1 << 30

// Injection point for tests.
var confirmOverwrite = func(path string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
				Value(&ok),
		),
	).Run()
	return ok, err
}

// preflight validates the destination before any bytes move: the target is
// not silently overwritten, the parent directory accepts writes, and low
// free space earns a warning on warn (when non-nil).
func preflight(path string, force bool, warn io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		ok, err := confirmOverwrite(path)
		if err != nil || !ok {
			return errdefs.Validationf("refusing to overwrite %s (use --force to skip the prompt)", path)
		}
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return errdefs.IOWrap(err, "destination directory %s", dir)
	}
	if !info.IsDir() {
		return errdefs.Validationf("destination parent %s is not a directory", dir)
	}
	probe, err := os.CreateTemp(dir, ".redisctl-write-check-*")
	if err != nil {
		return errdefs.IOWrap(err, "destination directory %s is not writable", dir)
	}
	probe.Close()
	os.Remove(probe.Name())

	if free, ok := diskFree(dir); ok && free < lowDiskThreshold && warn != nil {
		fmt.Fprintf(warn, "warning: low disk space in %s (%s free)\n", dir, humanize.Bytes(free))
	}
	return nil
}
