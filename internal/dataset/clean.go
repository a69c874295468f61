package dataset

import (
	"fmt"

	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// maxImputeRun is the longest run of consecutive missing values the cleaner
// will fill. Longer gaps usually mean a listing gap or bad extract, and
// papering over them would fabricate returns.
const maxImputeRun = 2

// Clean imputes short gaps in each price column in place: runs of at most
// maxImputeRun missing values are forward-filled from the previous
// observation, or backfilled from the next one when the gap sits at the
// start of the series. Longer gaps are left untouched and reported. Every
// imputed cell and long gap is appended to report.
func Clean(table *models.PriceTable, report *ValidationReport) {
	for _, name := range table.Columns {
		col := table.Prices[name]
		i := 0
		for i < len(col) {
			if !models.IsMissing(col[i]) {
				i++
				continue
			}
			// Measure the run of missing cells starting at i.
			j := i
			for j < len(col) && models.IsMissing(col[j]) {
				j++
			}
			run := j - i

			if run > maxImputeRun {
				report.add(i+1, name, IssueLongGap,
					fmt.Sprintf("%d consecutive missing values starting %s left unfilled", run, utils.FormatDate(table.Dates[i])))
				i = j
				continue
			}

			var fill float64
			var method string
			switch {
			case i > 0: // forward fill from the prior observation
				fill, method = col[i-1], "forward-filled"
			case j < len(col) && !models.IsMissing(col[j]): // gap at start: backfill
				fill, method = col[j], "backfilled"
			default: // entire column missing
				i = j
				continue
			}
			for k := i; k < j; k++ {
				col[k] = fill
				report.add(k+1, name, IssueImputed,
					fmt.Sprintf("missing value on %s %s", utils.FormatDate(table.Dates[k]), method))
			}
			i = j
		}
	}
}
