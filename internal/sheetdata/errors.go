package sheetdata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

var (
	// ErrSummaryFailed replaces any upstream failure while building a summary
	ErrSummaryFailed = errors.New("failed to retrieve spreadsheet summary")

	// ErrSheetDataFailed replaces any upstream failure while fetching sheet data
	ErrSheetDataFailed = errors.New("failed to retrieve sheet data")
)

// maxSuggestions caps the worksheet names offered on a miss
const maxSuggestions = 3

// MalformedURLError is returned when no known identifier pattern matches a URL
type MalformedURLError struct {
	URL string
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed spreadsheet URL '%s': expected a URL containing /spreadsheets/d/<id>, /d/<id> or id=<id>", e.URL)
}

// InvalidURLError wraps an unexpected failure while parsing a URL
type InvalidURLError struct {
	URL   string
	Cause error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid spreadsheet URL '%s': %v", e.URL, e.Cause)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Cause
}

// WorksheetNotFoundError is returned when no worksheet title matches the requested name
type WorksheetNotFoundError struct {
	Name        string
	Available   []string
	Suggestions []string
}

// NewWorksheetNotFoundError builds the error, ranking close titles as suggestions
func NewWorksheetNotFoundError(name string, available []string) *WorksheetNotFoundError {
	err := &WorksheetNotFoundError{Name: name, Available: available}

	for _, match := range fuzzy.Find(name, available) {
		if len(err.Suggestions) == maxSuggestions {
			break
		}
		err.Suggestions = append(err.Suggestions, match.Str)
	}

	// Fall back to case-insensitive equality
	if len(err.Suggestions) == 0 {
		for _, title := range available {
			if strings.EqualFold(title, name) {
				err.Suggestions = append(err.Suggestions, title)
			}
		}
	}

	return err
}

func (e *WorksheetNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "worksheet '%s' not found", e.Name)
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, ", did you mean: %s?", quoteAll(e.Suggestions))
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, " (available worksheets: %s)", quoteAll(e.Available))
	}
	return b.String()
}

// IsInputError reports whether err was caused by the caller's arguments rather than the upstream service
func IsInputError(err error) bool {
	var malformed *MalformedURLError
	var invalid *InvalidURLError
	var notFound *WorksheetNotFoundError
	return errors.As(err, &malformed) || errors.As(err, &invalid) || errors.As(err, &notFound)
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
