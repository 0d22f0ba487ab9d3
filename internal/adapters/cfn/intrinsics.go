package cfn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// maxLogicalIDLength is the CloudFormation limit on logical resource IDs.
const maxLogicalIDLength = 255

// LogicalID derives a stable logical ID from a construct path.
// The readable part keeps the alphanumeric characters of every path component and the
// suffix is the xxhash of the full path, so two paths that sanitize to the same prefix
// still get distinct IDs.
func LogicalID(path ...string) string {
	full := strings.Join(path, "/")
	suffix := fmt.Sprintf("%08X", uint32(xxhash.Sum64String(full))) //nolint:gosec // truncation is intended

	var b strings.Builder
	for _, component := range path {
		b.WriteString(nonAlphanumeric.ReplaceAllString(component, ""))
	}
	human := b.String()
	if limit := maxLogicalIDLength - len(suffix); len(human) > limit {
		human = human[:limit]
	}
	return human + suffix
}

// Ref returns a reference to another resource.
func Ref(logicalID string) map[string]any {
	return map[string]any{"Ref": logicalID}
}

// GetAtt returns an attribute of another resource.
func GetAtt(logicalID, attribute string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{logicalID, attribute}}
}

// Join concatenates values with a delimiter at deploy time.
func Join(delimiter string, values ...any) map[string]any {
	return map[string]any{"Fn::Join": []any{delimiter, values}}
}

// Sub substitutes pseudo parameters and resource references in a string.
func Sub(format string) map[string]any {
	return map[string]any{"Fn::Sub": format}
}
