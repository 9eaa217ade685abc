package callback

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category is the display class of a task, derived from its name.
type Category int

const (
	// CategoryGeneric tasks get the normal success/failure lines.
	CategoryGeneric Category = iota
	// CategoryPackage tasks install or query packages.
	CategoryPackage
	// CategoryStatus tasks only display information.
	CategoryStatus
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStatus:
		return "status"
	case CategoryPackage:
		return "package"
	default:
		return "generic"
	}
}

// Keyword tables. Matching is a case-insensitive substring test.
var (
	statusKeywords = []string{
		"display", "show", "status", "inventory", "banner",
		"completed", "summary", "verification", "check",
	}
	packageKeywords = []string{
		"homebrew", "brew", "apt", "pacman", "scoop", "chocolatey",
		"npm", "pip", "pipx", "package", "install",
	}
	// progressKeywords select the tasks announced on start.
	progressKeywords = []string{"install", "configure", "setup", "create"}
	// skipVisibleKeywords select the skipped tasks worth mentioning.
	skipVisibleKeywords = []string{"install", "configure", "platform"}
)

// classificationRules are tried in order; the first match wins.
var classificationRules = []struct {
	keywords []string
	category Category
}{
	{statusKeywords, CategoryStatus},
	{packageKeywords, CategoryPackage},
}

// playDisplayRules map a marker in the play name to a decorated heading.
// The first rule whose marker occurs in the name wins.
var playDisplayRules = []struct {
	marker  string
	display string
}{
	{"Pre-Flight", "🔍 System Validation"},
	{"Platform-Specific", "🔧 Platform Configuration"},
	{"Application", "📱 Application Setup"},
	{"Profile-Specific", "👤 Profile Configuration"},
	{"Final", "🏁 Final Setup"},
}

// Classify returns the category of a task name.
func Classify(task string) Category {
	folded := fold(task)
	for _, rule := range classificationRules {
		if containsAny(folded, rule.keywords) {
			return rule.category
		}
	}
	return CategoryGeneric
}

// DecoratePlay returns the display heading for a play name.
func DecoratePlay(name string) string {
	for _, rule := range playDisplayRules {
		if strings.Contains(name, rule.marker) {
			return rule.display
		}
	}
	return "📋 " + name
}

// isPackageStatusTask reports whether the name mentions both "status" and
// "package"; such tasks report one package state per result.
func isPackageStatusTask(task string) bool {
	folded := fold(task)
	return strings.Contains(folded, "status") && strings.Contains(folded, "package")
}

// parsePackageStatus extracts "<package>: <STATUS>" from a result message.
// The status is the text between the first and second colon.
func parsePackageStatus(msg string) (pkg, status string, ok bool) {
	if !strings.Contains(msg, ":") {
		return "", "", false
	}
	if !strings.Contains(msg, "INSTALLED") && !strings.Contains(msg, "MISSING") {
		return "", "", false
	}
	parts := strings.Split(msg, ":")
	pkg = strings.TrimSpace(parts[0])
	status = strings.TrimSpace(parts[1])
	if pkg == "" || status == "" {
		return "", "", false
	}
	return pkg, status, true
}

func containsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// fold returns s case-folded for keyword matching. Keywords are stored
// already folded.
func fold(s string) string {
	return cases.Fold().String(s)
}
