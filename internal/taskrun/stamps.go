package taskrun

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/target"
)

// Stamps records when each task last succeeded. A stamp is a file whose
// modification time is the time of the run and whose content is a digest
// of the task's file dependency list.
type Stamps struct {
	Dir string
}

// NewStamps stores stamps in dir, created on first write.
func NewStamps(dir string) *Stamps {
	return &Stamps{Dir: dir}
}

// Path returns the stamp file of task.
func (s *Stamps) Path(task string) string {
	name := strings.NewReplacer(":", "__", "/", "_").Replace(task)
	return filepath.Join(s.Dir, name+".stamp")
}

func digest(deps []string) string {
	sorted := append([]string(nil), deps...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return hex.EncodeToString(sum[:])
}

// Fresh reports whether task's stamp records exactly deps and is newer than
// every one of them. deps must be absolute or relative to the working
// directory; a missing dependency is an error.
func (s *Stamps) Fresh(task string, deps []string) (bool, error) {
	path := s.Path(task)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(string(data)) != digest(deps) {
		return false, nil
	}

	for _, dep := range deps {
		if _, err := os.Stat(dep); err != nil {
			return false, fmt.Errorf("file dependency %s: %w", dep, err)
		}
	}
	stale, err := target.Path(path, deps...)
	if err != nil {
		return false, err
	}
	return !stale, nil
}

// Record writes task's stamp for deps.
func (s *Stamps) Record(task string, deps []string) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	return os.WriteFile(s.Path(task), []byte(digest(deps)+"\n"), 0644)
}

// Forget removes task's stamp.
func (s *Stamps) Forget(task string) error {
	err := os.Remove(s.Path(task))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
