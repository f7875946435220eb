package pecs

import "strings"

// ResourceName extracts the trailing name segment from a fully qualified
// resource ARN, e.g. "arn:aws:ecs:us-east-1:123:service/web/api" -> "api".
// No validation: malformed identifiers silently produce wrong output.
func ResourceName(id string) string {
	parts := strings.Split(id, "/")
	return parts[len(parts)-1]
}
