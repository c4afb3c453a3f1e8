// Package project reads the metadata of a generated Python project from its
// pyproject.toml.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project metadata file.
const FileName = "pyproject.toml"

// ErrNoProject is returned when a directory has no pyproject.toml.
var ErrNoProject = errors.New("no " + FileName + " found")

// Project is the [tool.poetry] table of pyproject.toml.
type Project struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Description string   `toml:"description"`
	License     string   `toml:"license"`
	Authors     []string `toml:"authors"`
}

type pyproject struct {
	Tool struct {
		Poetry Project `toml:"poetry"`
	} `toml:"tool"`
}

// Load reads dir/pyproject.toml.
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, FileName)
	var doc pyproject
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoProject, dir)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p := doc.Tool.Poetry
	if p.Name == "" {
		return nil, fmt.Errorf("%s: tool.poetry.name is required", path)
	}
	return &p, nil
}

var invalidPackageChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Package returns the importable module directory name, which is the
// project name with dashes and dots turned into underscores.
func (p *Project) Package() string {
	return strings.ToLower(invalidPackageChars.ReplaceAllString(p.Name, "_"))
}

// Author returns the name and email of the first author ("Jane <j@x.org>").
func (p *Project) Author() (name, email string) {
	if len(p.Authors) == 0 {
		return "", ""
	}
	a := strings.TrimSpace(p.Authors[0])
	if i := strings.Index(a, "<"); i >= 0 && strings.HasSuffix(a, ">") {
		return strings.TrimSpace(a[:i]), a[i+1 : len(a)-1]
	}
	return a, ""
}
