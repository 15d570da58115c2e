package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/yungbote/learnsphere-backend/internal/platform/envutil"
)

// credentialEnvKeys are checked in order; the first non-empty value wins.
var credentialEnvKeys = []string{
	"GOOGLE_APPLICATION_CREDENTIALS_JSON",
	"GOOGLE_APPLICATION_CREDENTIALS",
}

// ClientOptions resolves service-account credentials from the environment and
// appends scopes. Inline JSON and file paths are both accepted. With neither
// set the client uses application default credentials.
func ClientOptions(scopes ...string) []option.ClientOption {
	var opts []option.ClientOption
	for _, key := range credentialEnvKeys {
		creds := envutil.String(key, "")
		if creds == "" {
			continue
		}
		if strings.HasPrefix(creds, "{") {
			opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
		} else {
			opts = append(opts, option.WithCredentialsFile(creds))
		}
		break
	}
	if len(scopes) > 0 {
		opts = append(opts, option.WithScopes(scopes...))
	}
	return opts
}

// normalizeOCRText folds the layout whitespace Document AI returns into single spaces.
func normalizeOCRText(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
