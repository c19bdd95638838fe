package metrics

import "github.com/de-tools/report-atlas/pkg/models/domain"

// field describes one normalized metric. Paths are dotted lookups tried in
// order; the first present and well-typed value wins.
type field struct {
	domain.MetricField
	Paths   []string
	Default any
}

type schema []field

func number(name, label string, kind domain.MetricKind, def float64, paths ...string) field {
	return field{
		MetricField: domain.MetricField{Name: name, Label: label, Kind: kind},
		Paths:       paths,
		Default:     def,
	}
}

func label(name, title, def string, paths ...string) field {
	return field{
		MetricField: domain.MetricField{Name: name, Label: title, Kind: domain.MetricLabel},
		Paths:       paths,
		Default:     def,
	}
}

var analysisSchemas = map[domain.ReportType]schema{
	domain.ReportTypeSecurity: {
		number("total_actions", "Security actions", domain.MetricNumber, 0,
			"basic_metrics.total_security_actions", "dashboard_metrics.total_actions"),
		number("critical_issues", "Critical issues", domain.MetricNumber, 0,
			"basic_metrics.high_impact_actions", "dashboard_metrics.critical_issues"),
		number("working_hours", "Working hours", domain.MetricHours, 0,
			"basic_metrics.estimated_working_hours", "dashboard_metrics.working_hours"),
		number("security_score", "Security score", domain.MetricPercentage, 0,
			"security_score", "dashboard_metrics.security_score"),
		number("compliance_coverage", "Compliance coverage", domain.MetricPercentage, 0,
			"dashboard_metrics.compliance_coverage"),
		label("risk_level", "Risk level", "Unknown",
			"dashboard_metrics.risk_level"),
	},
	domain.ReportTypePerformance: {
		number("total_actions", "Performance actions", domain.MetricNumber, 0,
			"basic_metrics.total_performance_actions", "dashboard_metrics.total_actions"),
		number("critical_optimizations", "Critical optimizations", domain.MetricNumber, 0,
			"basic_metrics.high_impact_optimizations", "dashboard_metrics.critical_optimizations"),
		number("working_hours", "Working hours", domain.MetricHours, 0,
			"basic_metrics.estimated_working_hours", "dashboard_metrics.working_hours"),
		number("performance_score", "Performance score", domain.MetricPercentage, 100,
			"performance_score", "dashboard_metrics.performance_score"),
		number("optimization_potential", "Optimization potential", domain.MetricPercentage, 0,
			"basic_metrics.estimated_performance_improvement", "dashboard_metrics.optimization_potential"),
		label("efficiency_rating", "Efficiency rating", "Excellent",
			"dashboard_metrics.efficiency_rating"),
	},
	domain.ReportTypeCost: {
		number("total_actions", "Cost actions", domain.MetricNumber, 0,
			"basic_metrics.total_cost_actions", "dashboard_metrics.total_actions"),
		number("monthly_savings", "Monthly savings", domain.MetricCurrency, 0,
			"basic_metrics.estimated_monthly_savings", "dashboard_metrics.monthly_savings"),
		number("annual_savings", "Annual savings", domain.MetricCurrency, 0,
			"basic_metrics.estimated_annual_savings", "dashboard_metrics.annual_savings"),
		number("working_hours", "Working hours", domain.MetricHours, 0,
			"basic_metrics.estimated_working_hours", "dashboard_metrics.working_hours"),
		number("roi_percentage", "Monthly ROI", domain.MetricPercentage, 0,
			"roi_analysis.monthly_roi_percentage", "dashboard_metrics.roi_percentage"),
		number("payback_months", "Payback (months)", domain.MetricNumber, 0,
			"roi_analysis.payback_period_months", "dashboard_metrics.payback_months"),
		number("optimization_score", "Optimization score", domain.MetricPercentage, 0,
			"optimization_score", "dashboard_metrics.optimization_score"),
	},
	domain.ReportTypeComprehensive: {
		number("total_actions", "Total actions", domain.MetricNumber, 0,
			"dashboard_metrics.total_recommendations", "totals.total_actions", "total_actions"),
		number("advisor_score", "Advisor score", domain.MetricPercentage, 0,
			"dashboard_metrics.advisor_score", "totals.azure_advisor_score", "advisor_score"),
		number("monthly_savings", "Monthly optimization", domain.MetricCurrency, 0,
			"cost_optimization.estimated_monthly_optimization",
			"dashboard_metrics.estimated_monthly_optimization", "totals.total_monthly_savings"),
		number("working_hours", "Working hours", domain.MetricHours, 0,
			"totals.total_working_hours", "dashboard_metrics.working_hours"),
		number("high_impact_actions", "High impact actions", domain.MetricNumber, 0,
			"totals.high_impact_actions", "dashboard_metrics.high_impact_actions", "high_impact_actions"),
	},
}

var statsSchemas = map[domain.ReportType]schema{
	domain.ReportTypeSecurity: {
		number("total_reports", "Reports", domain.MetricNumber, 0, "total_reports"),
		number("success_rate", "Success rate", domain.MetricPercentage, 0, "analytics.success_rate"),
		number("average_security_score", "Average security score", domain.MetricPercentage, 0,
			"analytics.type_specific_metrics.average_security_score"),
		number("total_critical_issues", "Critical issues", domain.MetricNumber, 0,
			"analytics.type_specific_metrics.total_critical_issues"),
	},
	domain.ReportTypePerformance: {
		number("total_reports", "Reports", domain.MetricNumber, 0, "total_reports"),
		number("success_rate", "Success rate", domain.MetricPercentage, 0, "analytics.success_rate"),
		number("average_performance_score", "Average performance score", domain.MetricPercentage, 0,
			"analytics.type_specific_metrics.average_performance_score"),
		number("average_optimization_potential", "Average optimization potential", domain.MetricPercentage, 0,
			"analytics.type_specific_metrics.average_optimization_potential"),
	},
	domain.ReportTypeCost: {
		number("total_reports", "Reports", domain.MetricNumber, 0, "total_reports"),
		number("success_rate", "Success rate", domain.MetricPercentage, 0, "analytics.success_rate"),
		number("total_potential_savings", "Potential savings", domain.MetricCurrency, 0,
			"analytics.type_specific_metrics.total_potential_savings"),
		number("average_roi", "Average ROI", domain.MetricPercentage, 0,
			"analytics.type_specific_metrics.average_roi"),
		number("average_payback_months", "Average payback (months)", domain.MetricNumber, 0,
			"analytics.type_specific_metrics.average_payback_months"),
	},
}

var dashboardSchema = schema{
	number("total_reports", "Reports", domain.MetricNumber, 0, "total_reports", "reports.total"),
	number("completed_reports", "Completed", domain.MetricNumber, 0, "completed_reports", "reports.completed"),
	number("processing_reports", "In progress", domain.MetricNumber, 0, "processing_reports", "reports.processing"),
	number("failed_reports", "Failed", domain.MetricNumber, 0, "failed_reports", "reports.failed"),
	number("total_files", "Files", domain.MetricNumber, 0, "total_files", "files.total"),
	number("success_rate", "Success rate", domain.MetricPercentage, 0, "success_rate"),
}

func (s schema) metricFields() []domain.MetricField {
	out := make([]domain.MetricField, 0, len(s))
	for _, f := range s {
		out = append(out, f.MetricField)
	}
	return out
}

// Fields lists the normalized metrics for t in display order
func Fields(t domain.ReportType) []domain.MetricField {
	return analysisSchemas[t].metricFields()
}

func StatsFields(t domain.ReportType) []domain.MetricField {
	return statsSchemas[t].metricFields()
}

func DashboardFields() []domain.MetricField {
	return dashboardSchema.metricFields()
}
