package sheetdata

import (
	"fmt"
	"regexp"
)

// spreadsheetIDPatterns are tried in order and the first match wins.
// The bare /d/ form also matches canonical URLs, so it must stay second.
var spreadsheetIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9\-_]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9\-_]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9\-_]+)`),
}

// URLForms are example URL shapes accepted by ResolveSpreadsheetID, in match priority order
var URLForms = []string{
	"https://docs.google.com/spreadsheets/d/<id>/edit#gid=0",
	"https://drive.google.com/file/d/<id>/view",
	"https://docs.google.com/open?id=<id>",
}

// matchID is swapped in tests to exercise the recovery path
var matchID = func(pattern *regexp.Regexp, s string) []string {
	return pattern.FindStringSubmatch(s)
}

// ResolveSpreadsheetID extracts the spreadsheet identifier from a Google Sheets URL.
// See URLForms for the accepted shapes.
func ResolveSpreadsheetID(rawURL string) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			id = ""
			err = &InvalidURLError{URL: rawURL, Cause: fmt.Errorf("%v", r)}
		}
	}()

	for _, pattern := range spreadsheetIDPatterns {
		if match := matchID(pattern, rawURL); len(match) == 2 {
			return match[1], nil
		}
	}

	return "", &MalformedURLError{URL: rawURL}
}
