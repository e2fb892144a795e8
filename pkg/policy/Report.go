package policy

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/zalan-axis/docker-map/pkg/contracts"
)

func NewReport() *Report {
	return &Report{Outcomes: make([]*Outcome, 0)}
}

func (report *Report) Append(outcome *Outcome) {
	report.Outcomes = append(report.Outcomes, outcome)
}

func (report *Report) Acted(node string, actions []*contracts.Action) {
	kinds := make([]contracts.ActionKind, 0, len(actions))

	for _, action := range actions {
		kinds = append(kinds, action.Kind)
	}

	report.Append(&Outcome{Node: node, Kind: OutcomeActed, Actions: kinds})
}

func (report *Report) Noop(node string) {
	report.Append(&Outcome{Node: node, Kind: OutcomeNoop})
}

func (report *Report) Skipped(node string, reason string) {
	report.Append(&Outcome{Node: node, Kind: OutcomeSkipped, Reason: reason})
}

func (report *Report) Failed(node string, err error) {
	report.Append(&Outcome{Node: node, Kind: OutcomeFailed, Error: err.Error()})
}

// Succeeded reports whether the request completed without a failing node.
func (report *Report) Succeeded() bool {
	for _, outcome := range report.Outcomes {
		if outcome.Kind == OutcomeFailed {
			return false
		}
	}

	return true
}

func (report *Report) Find(node string) *Outcome {
	for _, outcome := range report.Outcomes {
		if outcome.Node == node {
			return outcome
		}
	}

	return nil
}

func (report *Report) ToJSON() ([]byte, error) {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary

	return json.Marshal(report)
}
