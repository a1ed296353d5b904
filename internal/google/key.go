package google

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultTokenURI is the Google OAuth2 token endpoint used when the key
// file does not carry one.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// ServiceAccountKey holds the fields of a Google service account JSON
// key file that are needed for the JWT bearer flow. The key is loaded
// once at startup and never mutated.
type ServiceAccountKey struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// LoadServiceAccountKey reads and parses a service account key file
func LoadServiceAccountKey(path string) (*ServiceAccountKey, error) {
	if path == "" {
		return nil, &AuthError{Op: "load key", Err: fmt.Errorf("key file path is empty")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AuthError{Op: "load key", Err: fmt.Errorf("failed to read key file: %w", err)}
	}

	return ParseServiceAccountKey(data)
}

// ParseServiceAccountKey parses service account key JSON and validates
// that the fields required for the JWT bearer flow are present.
func ParseServiceAccountKey(data []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, &AuthError{Op: "parse key", Err: fmt.Errorf("invalid key file JSON: %w", err)}
	}

	if key.Type != "" && key.Type != "service_account" {
		return nil, &AuthError{Op: "parse key", Err: fmt.Errorf("unexpected credential type %q, want service_account", key.Type)}
	}
	if key.ClientEmail == "" {
		return nil, &AuthError{Op: "parse key", Err: fmt.Errorf("key file is missing client_email")}
	}
	if key.PrivateKey == "" {
		return nil, &AuthError{Op: "parse key", Err: fmt.Errorf("key file is missing private_key")}
	}
	if key.TokenURI == "" {
		key.TokenURI = DefaultTokenURI
	}

	return &key, nil
}
