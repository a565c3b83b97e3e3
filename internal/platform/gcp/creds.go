package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
)

// credentialOptions picks inline JSON over a key file. A "file" value that
// is itself a JSON document is accepted, since deploys often paste the key
// into GOOGLE_APPLICATION_CREDENTIALS. With neither set the client library
// falls back to application default credentials.
func credentialOptions(cfg objectstore.Config) []option.ClientOption {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && strings.HasPrefix(file, "{") {
		inline, file = file, ""
	}
	switch {
	case inline != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(inline))}
	case file != "":
		return []option.ClientOption{option.WithCredentialsFile(file)}
	}
	return nil
}
