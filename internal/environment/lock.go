package environment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperlane-xyz/hyperlane-svm-ops/internal/errs"
)

// Lock is an advisory, exclusive-create file lock over an environment root,
// held for the duration of one state-mutating command (§4.2 guarantees, §5
// shared resources).
type Lock struct {
	path string
}

// AcquireLock creates the environment's advisory lock file. If it already
// exists, the command fails with ErrorKind EnvLocked, per §4.2 and the exit
// code table.
func AcquireLock(envRoot string) (*Lock, error) {
	if err := os.MkdirAll(envRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create environment root %q: %w", envRoot, err)
	}
	path := filepath.Join(envRoot, ".hyperlane.lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, errs.New(errs.KindEnvLocked, "", "environment.lock", err,
				"environment %q is locked by another command (lock file %q)", envRoot, path)
		}
		return nil, fmt.Errorf("failed to acquire environment lock %q: %w", path, err)
	}
	_ = f.Close()
	return &Lock{path: path}, nil
}

// Release removes the lock file. It is safe to call multiple times.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release environment lock %q: %w", l.path, err)
	}
	return nil
}
