package options

func NewStatic(options Options) Value {
	return Value{Static: options}
}

func NewDeferred(provider func() Options) Value {
	return Value{Deferred: provider}
}

// Resolve produces the declared option layer. A deferred provider is invoked
// on every call; the result is not cached across invocations.
func (value Value) Resolve() Options {
	if value.Deferred != nil {
		return value.Deferred()
	}

	return value.Static
}

func (value Value) IsEmpty() bool {
	return value.Static == nil && value.Deferred == nil
}

// Merge combines option layers given in ascending precedence. Mapping values
// merge recursively with the higher layer winning on conflicts. Scalars and
// sequences replace wholesale; lists are never merged element-wise.
func Merge(layers ...Options) Options {
	merged := Options{}

	for _, layer := range layers {
		for key, value := range layer {
			existing, found := merged[key]

			if found {
				existingMap, existingOk := asMap(existing)
				valueMap, valueOk := asMap(value)

				if existingOk && valueOk {
					merged[key] = mergeMaps(existingMap, valueMap)
					continue
				}
			}

			merged[key] = copyValue(value)
		}
	}

	return merged
}

func mergeMaps(lower map[string]interface{}, higher map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(lower)+len(higher))

	for key, value := range lower {
		result[key] = copyValue(value)
	}

	for key, value := range higher {
		existing, found := result[key]

		if found {
			existingMap, existingOk := asMap(existing)
			valueMap, valueOk := asMap(value)

			if existingOk && valueOk {
				result[key] = mergeMaps(existingMap, valueMap)
				continue
			}
		}

		result[key] = copyValue(value)
	}

	return result
}

func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case Options:
		return v, true
	}

	return nil, false
}

// copyValue guards the input layers against mutation through the merged
// result. Mapping values are copied; scalars and sequences are shared.
func copyValue(value interface{}) interface{} {
	if m, ok := asMap(value); ok {
		result := make(map[string]interface{}, len(m))
		for key, nested := range m {
			result[key] = copyValue(nested)
		}
		return result
	}

	return value
}
