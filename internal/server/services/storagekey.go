package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var whitespace = regexp.MustCompile(`\s+`)

// NewStorageKey builds the object-store key for one upload. The key is
// server-generated and never client-chosen: the timestamp plus a random
// UUID make it unique even for repeated uploads of the same filename, and
// unguessable enough that slots cannot collide or overwrite each other.
// The filename part is display sugar only; whitespace runs collapse to '_'.
func NewStorageKey(name string) string {
	return fmt.Sprintf("uploads/%d-%s-%s", time.Now().UnixMilli(), uuid.New(), sanitizeName(name))
}

func sanitizeName(name string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(name), "_")
}
