package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var extensions = []string{"txt", "csv", "dat"}

// FileExtensions lists the extensions, without dot, this importer is
// associated with. The association is informational; any stream can be read.
func FileExtensions() []string {
	out := make([]string, len(extensions))
	copy(out, extensions)
	return out
}

// CanImport reports whether path has one of FileExtensions.
func CanImport(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ImportFile opens path and imports it. When opt.TableName is empty the
// table is named after the file.
func ImportFile(ctx context.Context, path string, opt Options) (*Result, error) {
	if opt.TableName == "" {
		base := filepath.Base(path)
		opt.TableName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	im, err := New(opt)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return im.ImportContext(ctx, f)
}
