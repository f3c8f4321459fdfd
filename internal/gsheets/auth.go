package gsheets

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested for the service account: read-only spreadsheets and file-scoped drive access
var Scopes = []string{
	sheets.SpreadsheetsReadonlyScope,
	drive.DriveFileScope,
}

// ServiceAccount holds the fields of a Google service account key file that are needed to authenticate
type ServiceAccount struct {
	Type         string `json:"type,omitempty"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id,omitempty"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri,omitempty"`
}

// ConfigError represents a problem with the credential configuration
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("credential configuration error for '%s': %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("credential configuration error for '%s': %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// LoadServiceAccount reads and validates a service account key file
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &ConfigError{
			Field:   "credentials_path",
			Message: "no credentials file configured, set GOOGLE_APPLICATION_CREDENTIALS to the path of a service account key file",
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "credentials_path", Message: fmt.Sprintf("cannot read '%s'", path), Cause: err}
	}

	return ParseServiceAccount(data)
}

// ParseServiceAccount parses service account JSON, requiring client_email, private_key and project_id.
// Private keys with literal "\n" sequences are unescaped.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var account ServiceAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, &ConfigError{Field: "credentials", Message: "credentials file is not valid JSON", Cause: err}
	}

	missing := make([]string, 0, 3)
	if account.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if account.PrivateKey == "" {
		missing = append(missing, "private_key")
	}
	if account.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{
			Field:   strings.Join(missing, ","),
			Message: "required field(s) missing from credentials file",
		}
	}

	account.PrivateKey = strings.ReplaceAll(account.PrivateKey, `\n`, "\n")
	return &account, nil
}

// JWTConfig returns the two-legged OAuth2 configuration for the account
func (a *ServiceAccount) JWTConfig() *jwt.Config {
	tokenURL := a.TokenURI
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	return &jwt.Config{
		Email:        a.ClientEmail,
		PrivateKey:   []byte(a.PrivateKey),
		PrivateKeyID: a.PrivateKeyID,
		Scopes:       Scopes,
		TokenURL:     tokenURL,
	}
}
