// Package tenant identifies per-customer database namespaces. Every
// schema-scoped operation takes a Schema explicitly; there is no ambient
// "current schema" selector.
package tenant

import (
	"errors"
	"fmt"
	"regexp"
)

// Schema is the name of one tenant's database namespace.
type Schema string

// Public is the shared namespace holding cross-tenant tables such as the
// report manifests and the provider registry.
const Public Schema = "public"

var ErrInvalidSchema = errors.New("invalid_schema")

var schemaPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Parse validates a raw schema name. Names are restricted to lowercase
// identifiers so they can be interpolated into qualified table names without
// quoting.
func Parse(raw string) (Schema, error) {
	if !schemaPattern.MatchString(raw) || len(raw) > 63 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSchema, raw)
	}
	return Schema(raw), nil
}

func (s Schema) String() string { return string(s) }

// Table returns the schema-qualified table name.
func (s Schema) Table(name string) string {
	return fmt.Sprintf("%s.%s", s, name)
}
