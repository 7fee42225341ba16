// Package nanoid generates compact record identifiers.
package nanoid

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	lowercase      = "abcdefghijklmnopqrstuvwxyz"
	uppercase      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits         = "0123456789"
	alphabet       = digits + lowercase + uppercase
	primaryKeySize = 16
)

// PrimaryKey returns a generator for record primary keys.
func PrimaryKey() func() string {
	return func() string {
		return gonanoid.MustGenerate(alphabet, primaryKeySize)
	}
}

// IsPrimaryKey reports whether id looks like a generated primary key.
func IsPrimaryKey(id string) bool {
	if len(id) != primaryKeySize {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}
