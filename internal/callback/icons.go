package callback

import "strings"

var statusIcons = map[string]string{
	"ok":          "✅",
	"changed":     "🔄",
	"failed":      "❌",
	"skipped":     "⏭️",
	"unreachable": "🚫",
	"rescued":     "🔧",
	"ignored":     "⚠️",
	"installed":   "✅",
	"missing":     "❌",
	"working":     "🔄",
}

// StatusIcon returns the icon for a status name, or a bullet for unknown ones.
func StatusIcon(status string) string {
	if icon, ok := statusIcons[strings.ToLower(status)]; ok {
		return icon
	}
	return "•"
}
