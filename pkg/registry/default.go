package registry

import (
	"time"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/dsl"
)

// DefaultScriptID identifies the built-in governance dashboard walkthrough.
const DefaultScriptID = "governance-dashboard"

// Dashboard views, as routed by the governance dashboard.
const (
	ViewOverview    = "overview"
	ViewModels      = "models"
	ViewRisk        = "risk"
	ViewPolicies    = "policies"
	ViewIncidents   = "incidents"
	ViewAudit       = "audit"
	ViewReports     = "reports"
	ViewSettings    = "settings"
	ViewLanding     = "landing"
	ViewLogin       = "login"
	ViewDocs        = "docs"
	ViewUnsupported = "unsupported"
)

// DashboardViews lists every view the governance dashboard routes.
var DashboardViews = []string{
	ViewOverview, ViewModels, ViewRisk, ViewPolicies, ViewIncidents,
	ViewAudit, ViewReports, ViewSettings, ViewLanding, ViewLogin, ViewDocs,
}

// ExcludedViews are public views unrelated to the tour. Highlighting is
// suppressed while the user visits them.
var ExcludedViews = []string{ViewLanding, ViewLogin, ViewDocs}

// Default returns the built-in walkthrough of the governance dashboard.
func Default() *domain.Script {
	b := dsl.New(DefaultScriptID).Title("AI governance dashboard tour")

	b.Add("welcome").
		On(ViewOverview).
		Target("#compliance-score").
		Category("overview").
		Text("Compliance at a glance",
			"The overall compliance score aggregates every registered model against the active policies.")

	b.Add("alerts").
		On(ViewOverview).
		Target("#open-alerts").
		Category("overview").
		Text("Open alerts", "Alerts raised by monitors and reviewers that still need an owner.")

	b.Add("inventory").
		On(ViewModels).
		Target("#model-inventory").
		Action("#filter-high-risk", 1500*time.Millisecond).
		Category("models").
		Text("Model inventory", "Every model in production, filtered here to the high-risk tier.")

	b.Add("risk-matrix").
		On(ViewRisk).
		Target("#risk-matrix").
		Category("risk").
		Text("Risk matrix", "Likelihood against impact for each model, updated after every assessment.")

	b.Add("policies").
		On(ViewPolicies).
		Target("#policy-list").
		Category("policies").
		Text("Policies", "The rules models are evaluated against, with their enforcement status.")

	b.Add("incidents").
		On(ViewIncidents).
		Target("#incident-timeline").
		Action("#expand-latest", 0).
		Category("incidents").
		Text("Incident timeline", "Reported incidents with their investigation state.")

	b.Add("audit").
		On(ViewAudit).
		Target("#audit-log").
		Category("audit").
		Text("Audit trail", "Immutable record of approvals, overrides and configuration changes.")

	b.Add("reports").
		On(ViewReports).
		Target("#report-builder").
		Category("reports").
		Text("Reports", "Export evidence packs for regulators and internal review boards.").
		Terminal()

	return b.MustBuild()
}
