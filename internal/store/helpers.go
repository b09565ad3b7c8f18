package store

import (
	"strings"

	"github.com/google/uuid"
)

// maxBatch bounds the number of bound parameters in a single IN clause.
const maxBatch = 500

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(vals []string) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

// chunks splits vals into slices of at most size elements.
func chunks(vals []string, size int) [][]string {
	var out [][]string
	for len(vals) > size {
		out = append(out, vals[:size])
		vals = vals[size:]
	}
	if len(vals) > 0 {
		out = append(out, vals)
	}
	return out
}

// mintURI returns a fresh resource URI under the store namespace.
func (s *Store) mintURI() string {
	return s.namespace + "#i" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
