package models

// Period enumerates the aggregation windows offered by the dashboard.
type Period string

const (
	PeriodMonthly    Period = "mensual"
	PeriodQuarterly  Period = "trimestral"
	PeriodSemiannual Period = "semestral"
	PeriodAnnual     Period = "anual"
)

// Valid reports whether the period is one of the supported windows.
func (p Period) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodSemiannual, PeriodAnnual:
		return true
	}
	return false
}

// KeyCount is one bucket of a grouped count.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DashboardSummary is the server-side aggregation previously computed in the
// browser: grouped survey counts for the selected filters.
type DashboardSummary struct {
	Kind             string                    `json:"tipo"`
	Service          string                    `json:"servicio"`
	Period           Period                    `json:"periodo"`
	Total            int                       `json:"total"`
	CountsByPeriod   []KeyCount                `json:"counts_by_period"`
	CountsByService  []KeyCount                `json:"counts_by_service"`
	CountsByOperator []KeyCount                `json:"counts_by_operator"`
	ServicePeriods   map[string]map[string]int `json:"service_period_matrix"`
}

// BackfillResult reports the outcome of a file-reference backfill run.
type BackfillResult struct {
	Updated int `json:"updated"`
	Missing int `json:"missing"`
}
