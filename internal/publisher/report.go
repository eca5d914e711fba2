package publisher

import (
	"fmt"

	"eaglepub/internal/api"
	"eaglepub/internal/teamname"
)

// unknownErrorDetail stands in when a failed result carried no body.
const unknownErrorDetail = "unknown error"

// Detail is one per-team line of the results list.
type Detail struct {
	TeamID  string
	Label   string
	OK      bool
	Outcome string
}

// Summary aggregates a batch for display.
type Summary struct {
	BatchID   string
	Succeeded int
	Failed    int
	Details   []Detail
}

// Summarize resolves each result to a display label and outcome line.
// Team labels come from the normalizer, falling back to the raw id when
// the team is missing from the last-known list.
func Summarize(batch Batch, teams []api.Team) Summary {
	sum := Summary{BatchID: batch.ID, Details: make([]Detail, 0, len(batch.Results))}
	for _, res := range batch.Results {
		label := res.TeamID
		for _, t := range teams {
			if t.ID == res.TeamID {
				label = teamname.Normalize(t.RawName)
				break
			}
		}
		d := Detail{TeamID: res.TeamID, Label: label, OK: res.OK}
		if res.OK {
			sum.Succeeded++
			d.Outcome = fmt.Sprintf("HTTP %d", res.StatusCode)
		} else {
			sum.Failed++
			detail := res.ErrorDetail
			if detail == "" {
				detail = unknownErrorDetail
			}
			d.Outcome = fmt.Sprintf("HTTP %d: %s", res.StatusCode, detail)
		}
		sum.Details = append(sum.Details, d)
	}
	return sum
}
