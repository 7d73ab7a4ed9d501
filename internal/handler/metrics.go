package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/relaychat/relay/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "relay_login_states_issued_total %d\n", snap.LoginStatesIssued)
	writeMetric(w, "relay_login_states_consumed_total{result=\"ok\"} %d\n", snap.LoginStatesConsumed)
	writeMetric(w, "relay_login_states_consumed_total{result=\"rejected\"} %d\n", snap.LoginStatesRejected)
	writeMetric(w, "relay_sessions_created_total %d\n", snap.SessionsCreated)

	writeMetric(w, "relay_invites_total{status=\"created\"} %d\n", snap.InvitesCreated)
	writeMetric(w, "relay_invites_total{status=\"accepted\"} %d\n", snap.InvitesAccepted)
	writeMetric(w, "relay_invites_total{status=\"declined\"} %d\n", snap.InvitesDeclined)
	writeMetric(w, "relay_invites_total{status=\"expired\"} %d\n", snap.InvitesExpired)

	writeMetric(w, "relay_members_added_total %d\n", snap.MembersAdded)
	writeMetric(w, "relay_members_removed_total %d\n", snap.MembersRemoved)
	writeMetric(w, "relay_member_roles_updated_total %d\n", snap.MemberRolesUpdated)

	// Stable output order for scrapers and tests
	reasons := make([]string, 0, len(snap.AuthzRejections))
	for reason := range snap.AuthzRejections {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		writeMetric(w, "relay_authz_rejections_total{reason=%q} %d\n", reason, snap.AuthzRejections[reason])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
