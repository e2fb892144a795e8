package metrics

var Actions = NewCounter("dmap_actions_total", "Total runtime actions executed", []string{"kind"})
var ActionFailures = NewCounter("dmap_action_failures_total", "Total runtime actions that failed", []string{"kind"})
var Observations = NewCounter("dmap_observations_total", "Total container state observations", []string{})
var ObservationFailures = NewCounter("dmap_observation_failures_total", "Total observations that failed after retries", []string{})
var Containers = NewGauge("dmap_containers", "Containers seen by the last request, by observed state", []string{"state"})
var ConvergeDuration = NewHistogram("dmap_converge_seconds", "Time spent converging one request", []string{"operation"})
