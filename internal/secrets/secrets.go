// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads the triplestore credentials and the wiki contact
// address from a directory holding one file per key, and applies them to the
// pipeline configuration. File contents are trimmed.
//
// Supported key files: fuseki-username, fuseki-password,
// fuseki-admin-password, wiki-contact.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/wikigraph/pkg/types"
)

// Load returns the non-empty files of dir keyed by filename. A missing
// directory yields an empty map. Unreadable files are reported on stderr and
// skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Key names recognised by the CLI.
const (
	FusekiUsername      = "fuseki-username"
	FusekiPassword      = "fuseki-password"
	FusekiAdminPassword = "fuseki-admin-password"
	WikiContact         = "wiki-contact"
)

// FusekiAuth returns the triplestore basic-auth credentials, if both are present.
func FusekiAuth(secrets map[string]string) (user, pass string, ok bool) {
	user, pass = secrets[FusekiUsername], secrets[FusekiPassword]
	return user, pass, user != "" && pass != ""
}

// AdminPassword returns the password a local Fuseki container is started
// with: fuseki-admin-password, else fuseki-password.
func AdminPassword(secrets map[string]string) string {
	if pw := secrets[FusekiAdminPassword]; pw != "" {
		return pw
	}
	return secrets[FusekiPassword]
}

// Apply copies the loaded credentials into cfg. Fuseki credentials replace
// any configured ones only when both are present. A wiki contact is
// appended to the wiki User-Agent as "agent (contact)", as Wikimedia's
// User-Agent policy asks of bots.
func Apply(secrets map[string]string, cfg *types.PipelineConfig) {
	if user, pass, ok := FusekiAuth(secrets); ok {
		cfg.Sink.Username, cfg.Sink.Password = user, pass
	}
	if contact := secrets[WikiContact]; contact != "" && !strings.Contains(cfg.Wiki.UserAgent, contact) {
		cfg.Wiki.UserAgent = fmt.Sprintf("%s (%s)", cfg.Wiki.UserAgent, contact)
	}
}
