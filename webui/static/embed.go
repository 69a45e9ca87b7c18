// Package static embeds the page template and the assets it references.
package static

import (
	"embed"
	"io/fs"
)

//go:embed templates css js
var files embed.FS

// FS returns every embedded file.
func FS() fs.FS {
	return files
}

// Templates returns the filesystem holding the HTML templates.
func Templates() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic("static: templates directory missing: " + err.Error())
	}
	return sub
}
