// Package googleauth builds client options for the Google APIs used by the
// statement processor.
package googleauth

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// ClientOptions returns options that authenticate with the service account
// JSON at credentialsFile when it exists, and with Application Default
// Credentials otherwise (Cloud Run, gcloud login).
func ClientOptions(log zerolog.Logger, credentialsFile string, scopes ...string) []option.ClientOption {
	opts := []option.ClientOption{}
	if len(scopes) > 0 {
		opts = append(opts, option.WithScopes(scopes...))
	}

	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err == nil {
			log.Info().Str("file", credentialsFile).Msg("Using service account credentials")
			return append(opts, option.WithCredentialsFile(credentialsFile))
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("file", credentialsFile).Msg("Cannot stat credentials file")
		}
	}

	log.Info().Msg("Using application default credentials")
	return opts
}
