package formaters

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/policy"
)

func Report(report *policy.Report) {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("CONTAINER", "OUTCOME", "ACTIONS", "DETAIL")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

	for _, outcome := range report.Outcomes {
		actions := "-"

		if len(outcome.Actions) > 0 {
			kinds := make([]string, 0, len(outcome.Actions))

			for _, kind := range outcome.Actions {
				kinds = append(kinds, string(kind))
			}

			actions = strings.Join(kinds, ", ")
		}

		detail := "-"

		switch {
		case outcome.Error != "":
			detail = outcome.Error
		case outcome.Reason != "":
			detail = outcome.Reason
		}

		tbl.AddRow(outcome.Node, outcomeLabel(outcome.Kind), actions, detail)
	}

	tbl.Print()
}

func outcomeLabel(kind policy.OutcomeKind) string {
	switch kind {
	case policy.OutcomeActed:
		return color.GreenString(string(kind))
	case policy.OutcomeFailed:
		return color.RedString(string(kind))
	case policy.OutcomeSkipped:
		return color.YellowString(string(kind))
	default:
		return string(kind)
	}
}

func Plan(actions []*contracts.Action) {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("CONTAINER", "ACTION", "CLIENT", "KIND")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

	for _, action := range actions {
		client := action.Client

		if client == "" {
			client = "-"
		}

		kind := "container"

		if action.Auxiliary {
			kind = "auxiliary"
		}

		tbl.AddRow(action.Name, string(action.Kind), client, kind)
	}

	tbl.Print()

	fmt.Printf("\n%d action(s) planned\n", len(actions))
}
