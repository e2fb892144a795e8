package options

// Options is one layer of runtime arguments for a create or start call.
type Options map[string]interface{}

// Value holds a configuration's declared option set, either as a static map or
// as a provider resolved right before merging. Deferred providers run exactly
// once per invocation and are never cached.
type Value struct {
	Static   Options
	Deferred func() Options
}
