package bake

import (
	"github.com/mark3labs/snek/internal/fsops"
	"github.com/mark3labs/snek/internal/logger"
)

// Choice values that drive pruning.
const (
	NotOpenSource = "Not open source"
	NoCLI         = "No command-line interface"
	DocsMkDocs    = "MkDocs"
	DocsSphinx    = "Sphinx"
	CITravis      = "Travis CI"
	CICircle      = "CircleCI"
	CIGitHub      = "GitHub Actions"
	NoCI          = "No CI"
)

// ciFiles maps each CI provider to the paths only it uses.
var ciFiles = map[string][]string{
	CITravis: {".travis.yml"},
	CICircle: {".circleci"},
	CIGitHub: {".github"},
}

// Inapplicable returns the generated paths, relative to the project
// directory, that do not apply to ctx. Variables the context does not
// define remove nothing.
func Inapplicable(ctx Context) []string {
	var paths []string
	if ctx["license"] == NotOpenSource {
		paths = append(paths, "LICENSE")
	}
	if ctx["command_line_interface"] == NoCLI {
		s := ctx[SlugKey]
		paths = append(paths, s+"/cli.py", s+"/__main__.py", "tests/test_cli.py")
	}
	switch ctx["docs_generator"] {
	case DocsMkDocs:
		paths = append(paths, "docs/index.rst", "docs/conf.py", "bin/serve-docs")
	case DocsSphinx:
		paths = append(paths, "mkdocs.yml", "docs/index.md")
	}
	if ci, ok := ctx["continuous_integration"]; ok {
		for _, provider := range []string{CITravis, CICircle, CIGitHub} {
			if provider != ci {
				paths = append(paths, ciFiles[provider]...)
			}
		}
	}
	return paths
}

// Prune deletes the inapplicable paths from the project in dir and returns
// the ones it was asked to remove.
func Prune(dir string, ctx Context) ([]string, error) {
	paths := Inapplicable(ctx)
	if err := fsops.CleanIn(dir, paths...); err != nil {
		return nil, err
	}
	for _, p := range paths {
		logger.Debug("pruned %s", p)
	}
	return paths, nil
}
