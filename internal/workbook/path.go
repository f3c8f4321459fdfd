package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
)

// FilesPathEnvVar names the directory relative workbook paths are resolved under
const FilesPathEnvVar = "WORKBOOK_FILES_PATH"

var supportedExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// SupportedExtensions lists the workbook file extensions ResolvePath accepts
func SupportedExtensions() []string {
	return slices.Clone(supportedExtensions)
}

// PathError is returned when a workbook path is rejected
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid workbook path '%s': %s", e.Path, e.Message)
}

// IsPathError reports whether err is a rejected workbook path
func IsPathError(err error) bool {
	var pathErr *PathError
	return errors.As(err, &pathErr)
}

// Resolver returns a sheetdata.Resolver mapping a caller-supplied path to an absolute workbook path.
// Relative paths are joined to basePath; any ".." segment is rejected.
func Resolver(basePath string) sheetdata.Resolver {
	return func(locator string) (string, error) {
		return ResolvePath(basePath, locator)
	}
}

// ResolvePath validates and resolves a workbook path
func ResolvePath(basePath, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", &PathError{Path: path, Message: "path cannot be empty"}
	}

	if slices.Contains(strings.FieldsFunc(path, isSeparator), "..") {
		return "", &PathError{Path: path, Message: "path traversal is not allowed"}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(supportedExtensions, ext) {
		return "", &PathError{
			Path:    path,
			Message: fmt.Sprintf("unsupported file type, expected one of %s", strings.Join(supportedExtensions, ", ")),
		}
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		base := basePath
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", &PathError{Path: path, Message: "cannot determine working directory"}
			}
			base = wd
		}
		resolved = filepath.Join(base, resolved)
	}
	resolved = filepath.Clean(resolved)

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &PathError{Path: path, Message: "file does not exist"}
		}
		return "", &PathError{Path: path, Message: err.Error()}
	}
	if info.IsDir() {
		return "", &PathError{Path: path, Message: "path is a directory"}
	}

	return resolved, nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
