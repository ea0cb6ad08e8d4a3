package ingest

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadFile decodes the export at path, picking the format from its
// extension.
func LoadFile(path string) (*Export, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open crawl export: %w", err)
	}
	defer f.Close()

	return Decode(f, FormatFromPath(path))
}

// HTMLRootFor returns the option resolving html_file entries of the
// export at path.
func HTMLRootFor(path string) Option {
	return WithHTMLRoot(os.DirFS(filepath.Dir(path)))
}
