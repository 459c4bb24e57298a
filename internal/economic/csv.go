package economic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

// CSVHeader lists the columns of the scenario summary.
var CSVHeader = []string{
	"Scenario",
	"Duration_Hours",
	"Affected_Capacity_MW",
	"Total_Economic_Impact_AUD",
	"Direct_Costs_AUD",
	"Indirect_Costs_AUD",
	"Recovery_Costs_AUD",
	"Spot_Price_Impact_AUD",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes one summary row per scenario, in evaluation order.
func (a Analysis) WriteCSV(w io.Writer) error {
	return WriteImpactsCSV(w, a.Impacts)
}

// WriteImpactsCSV writes the scenario summary for impacts.
func WriteImpactsCSV(w io.Writer, impacts []schemas.EconomicImpact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, impact := range impacts {
		row := []string{
			ScenarioTitle(impact.Scenario),
			formatFloat(impact.DurationHours),
			formatFloat(impact.AffectedCapacityMW),
			formatFloat(impact.Total()),
			formatFloat(schemas.SumValues(impact.DirectCosts)),
			formatFloat(schemas.SumValues(impact.IndirectCosts)),
			formatFloat(schemas.SumValues(impact.RecoveryCosts)),
			formatFloat(impact.SpotPriceImpact[SpotTotalMarketImpact]),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", impact.Scenario, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
