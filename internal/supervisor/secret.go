// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package supervisor

import (
	"fmt"
	"os"
	"strings"
)

// readSecret loads the operator-supplied encryption password from path
// (spec.md §6 "SECRET_PATH"). The file's contents are trimmed of
// surrounding whitespace; an empty result is treated as a configuration
// error rather than silently deriving keys from an empty password.
func readSecret(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("supervisor: read secret file %q: %w", path, err)
	}

	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return "", fmt.Errorf("supervisor: secret file %q is empty", path)
	}

	return secret, nil
}
