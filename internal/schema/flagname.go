package schema

import (
	"strings"

	"github.com/thellimist/openapi-client-generator/internal/nameutil"
)

// ToFlagName converts a camelCase, PascalCase or snake_case property name to
// a kebab-case flag name: "httpClient" -> "http-client".
func ToFlagName(property string) string {
	return strings.ToLower(strings.Join(nameutil.Words(property), "-"))
}
