package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// credential sources, first non-empty wins
var credentialEnvKeys = []string{"GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS"}

// ClientOptionsFromEnv returns nil when no credentials are configured so the
// client falls back to application default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	return credentialOptions(os.Getenv)
}

func credentialOptions(getenv func(string) string) []option.ClientOption {
	for _, key := range credentialEnvKeys {
		v := strings.TrimSpace(getenv(key))
		switch {
		case v == "":
			continue
		case strings.HasPrefix(v, "{"):
			return []option.ClientOption{option.WithCredentialsJSON([]byte(v))}
		default:
			return []option.ClientOption{option.WithCredentialsFile(v)}
		}
	}
	return nil
}
