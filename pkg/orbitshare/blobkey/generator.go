// Package blobkey generates storage keys for uploaded files.
package blobkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for blob key generation strategies.
type Generator interface {
	// Key creates the storage key for a resource's uploaded file.
	Key(resourceID uuid.UUID, fileName string) string
}

// ShardedGenerator produces Git-style sharded keys so no single directory
// or prefix accumulates every upload:
//
//	resources/ab/cdef1234..._notes.pdf
type ShardedGenerator struct {
	// ShardLength controls how many characters form the shard directory.
	ShardLength int
}

// NewShardedGenerator creates a generator with the default shard length.
func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{ShardLength: 2}
}

func (g *ShardedGenerator) Key(resourceID uuid.UUID, fileName string) string {
	id := strings.ReplaceAll(resourceID.String(), "-", "")

	shardLen := g.ShardLength
	if shardLen <= 0 || shardLen >= len(id) {
		shardLen = 2
	}

	name := id[shardLen:]
	if fileName != "" {
		name = fmt.Sprintf("%s_%s", name, sanitizeFileName(fileName))
	}

	return fmt.Sprintf("resources/%s/%s", id[:shardLen], name)
}

// sanitizeFileName keeps keys safe for both filesystem paths and object
// store keys.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
