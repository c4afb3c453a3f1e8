// Package skeleton embeds the default Python project template.
package skeleton

import (
	"embed"
	"io/fs"
)

//go:embed all:template
var files embed.FS

// FS returns the template root, holding cookiecutter.json and the
// templated project directory.
func FS() fs.FS {
	sub, err := fs.Sub(files, "template")
	if err != nil {
		panic(err)
	}
	return sub
}
