package callback

import (
	"fmt"
	"strings"

	"github.com/dotsible/dotsible/internal/events"
)

// Outcome is the end-of-run verdict for one host.
type Outcome int

const (
	OutcomeNoChanges Outcome = iota
	OutcomeChanged
	OutcomeFailed
)

// HostOutcome classifies a host summary. Failures take precedence over
// changes.
func HostOutcome(h events.HostSummary) Outcome {
	switch {
	case h.Failures > 0:
		return OutcomeFailed
	case h.Changed > 0:
		return OutcomeChanged
	default:
		return OutcomeNoChanges
	}
}

// Stats prints the deployment summary, one block per host in runner order.
func (f *Formatter) Stats(s events.RunStats) {
	rule := strings.Repeat("=", bannerWidth)
	f.line(roleBanner, "\n"+rule)
	f.line(roleBanner, "📊 DEPLOYMENT SUMMARY")
	f.line(roleBanner, rule)

	for _, h := range s.Hosts {
		f.renderHostSummary(h)
	}

	f.line(roleBanner, "\n"+rule)
}

func (f *Formatter) renderHostSummary(h events.HostSummary) {
	f.line(roleHeader, "\nHost: "+h.Host)
	f.line(roleOK, fmt.Sprintf("  %s Successful: %d", StatusIcon("ok"), h.OK))
	f.line(roleWarn, fmt.Sprintf("  %s Changed: %d", StatusIcon("changed"), h.Changed))
	f.line(roleFailed, fmt.Sprintf("  %s Failed: %d", StatusIcon("failed"), h.Failures))
	f.line(roleBanner, fmt.Sprintf("  %s  Skipped: %d", StatusIcon("skipped"), h.Skipped))
	f.line(roleDetail, fmt.Sprintf("  📊 Total: %d", h.Total()))

	switch HostOutcome(h) {
	case OutcomeFailed:
		f.line(roleFailed, "\n❌ DEPLOYMENT FAILED")
		f.line(roleFailed, "Check the errors above and retry.")
	case OutcomeChanged:
		f.line(roleOK, "\n🎉 DEPLOYMENT COMPLETED WITH CHANGES")
		f.line(roleOK, "Your system has been updated successfully!")
	default:
		f.line(roleOK, "\n✅ DEPLOYMENT COMPLETED - NO CHANGES NEEDED")
		f.line(roleOK, "Your system is already up to date!")
	}
}
