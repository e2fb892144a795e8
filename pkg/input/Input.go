package input

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// IsPath reports whether the value looks like an absolute or relative path
// rather than a volume alias.
func IsPath(value string) bool {
	return strings.HasPrefix(value, "/") || strings.HasPrefix(value, "./")
}

func readOnly(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "ro", "true":
			return true, nil
		case "rw", "false", "":
			return false, nil
		}
		return false, NewConfigurationError("invalid access mode %q; expected ro, rw, true, or false", v)
	}
	return false, NewConfigurationError("invalid access mode type %T", value)
}

func asString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}

// sortedKeys gives map-form shorthand a stable element order. Go maps carry no
// insertion order, and resolution must be deterministic.
func sortedKeys(value map[string]interface{}) []string {
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewSharedVolume converts a single shorthand value into a SharedVolume.
// Accepted forms: "alias", ["alias"], ["alias", access], {"alias": access}.
func NewSharedVolume(value interface{}) (SharedVolume, error) {
	switch v := value.(type) {
	case SharedVolume:
		return v, nil
	case string:
		return SharedVolume{Volume: v}, nil
	case []interface{}:
		switch len(v) {
		case 1:
			name, ok := asString(v[0])
			if !ok {
				return SharedVolume{}, NewConfigurationError("invalid volume element type %T", v[0])
			}
			return SharedVolume{Volume: name}, nil
		case 2:
			name, ok := asString(v[0])
			if !ok {
				return SharedVolume{}, NewConfigurationError("invalid volume element type %T", v[0])
			}
			ro, err := readOnly(v[1])
			if err != nil {
				return SharedVolume{}, err
			}
			return SharedVolume{Volume: name, ReadOnly: ro}, nil
		}
		return SharedVolume{}, NewConfigurationError("invalid element length %d; shared volumes take 1 or 2 elements", len(v))
	case map[string]interface{}:
		if len(v) != 1 {
			return SharedVolume{}, NewConfigurationError("invalid element length %d; shared volume mappings take exactly one entry", len(v))
		}
		for name, access := range v {
			ro, err := readOnly(access)
			if err != nil {
				return SharedVolume{}, err
			}
			return SharedVolume{Volume: name, ReadOnly: ro}, nil
		}
	}
	return SharedVolume{}, NewConfigurationError("invalid type %T; expected string, list, or mapping", value)
}

func hostVolumeFromList(elements []interface{}) (SharedVolume, error) {
	switch len(elements) {
	case 1:
		name, ok := asString(elements[0])
		if !ok {
			return SharedVolume{}, NewConfigurationError("invalid volume element type %T", elements[0])
		}
		return SharedVolume{Volume: name}, nil
	case 2:
		first, ok := asString(elements[0])
		if !ok {
			return SharedVolume{}, NewConfigurationError("invalid volume element type %T", elements[0])
		}

		switch second := elements[1].(type) {
		case []interface{}:
			// Nested form: (container path, (host path[, access])).
			switch len(second) {
			case 1:
				if isAccessMode(second[0]) {
					ro, err := readOnly(second[0])
					if err != nil {
						return SharedVolume{}, err
					}
					return SharedVolume{Volume: first, ReadOnly: ro}, nil
				}
				host, ok := asString(second[0])
				if !ok {
					return SharedVolume{}, NewConfigurationError("invalid host path type %T", second[0])
				}
				return SharedVolume{Volume: first, Host: host}, nil
			case 2:
				host, ok := asString(second[0])
				if !ok {
					return SharedVolume{}, NewConfigurationError("invalid host path type %T", second[0])
				}
				ro, err := readOnly(second[1])
				if err != nil {
					return SharedVolume{}, err
				}
				return SharedVolume{Volume: first, Host: host, ReadOnly: ro}, nil
			}
			return SharedVolume{}, NewConfigurationError("nested host volume entries take 1 or 2 elements; found %d", len(second))
		default:
			if isAccessMode(second) {
				ro, err := readOnly(second)
				if err != nil {
					return SharedVolume{}, err
				}
				return SharedVolume{Volume: first, ReadOnly: ro}, nil
			}
			host, ok := asString(second)
			if !ok {
				return SharedVolume{}, NewConfigurationError("invalid host path type %T", second)
			}
			return SharedVolume{Volume: first, Host: host}, nil
		}
	case 3:
		container, ok := asString(elements[0])
		if !ok {
			return SharedVolume{}, NewConfigurationError("invalid volume element type %T", elements[0])
		}
		host, ok := asString(elements[1])
		if !ok {
			return SharedVolume{}, NewConfigurationError("invalid host path type %T", elements[1])
		}
		ro, err := readOnly(elements[2])
		if err != nil {
			return SharedVolume{}, err
		}
		return SharedVolume{Volume: container, Host: host, ReadOnly: ro}, nil
	}
	return SharedVolume{}, NewConfigurationError("invalid element length %d; host volumes take 1 to 3 elements", len(elements))
}

// isAccessMode distinguishes a read-only indicator from a host path in the
// ambiguous two-element form.
func isAccessMode(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(v) {
		case "ro", "rw", "true", "false":
			return true
		}
	}
	return false
}

// NewHostVolume converts a single shorthand value into a SharedVolume for a
// host bind. On top of the NewSharedVolume forms it accepts
// (container path, host path), (container path, host path, access), and the
// nested mapping {container path: (host path, access)}.
func NewHostVolume(value interface{}) (SharedVolume, error) {
	switch v := value.(type) {
	case SharedVolume:
		return v, nil
	case string:
		return SharedVolume{Volume: v}, nil
	case []interface{}:
		return hostVolumeFromList(v)
	case map[string]interface{}:
		if len(v) != 1 {
			return SharedVolume{}, NewConfigurationError("invalid element length %d; host volume mappings take exactly one entry", len(v))
		}
		for container, nested := range v {
			if list, ok := nested.([]interface{}); ok {
				return hostVolumeFromList(append([]interface{}{container}, list...))
			}
			return hostVolumeFromList([]interface{}{container, nested})
		}
	}
	return SharedVolume{}, NewConfigurationError("invalid type %T; expected string, list, or mapping", value)
}

// NewContainerLink converts a single shorthand value into a ContainerLink.
// A bare name links under its own name; two elements are (container, alias).
func NewContainerLink(value interface{}) (ContainerLink, error) {
	switch v := value.(type) {
	case ContainerLink:
		return v, nil
	case string:
		return ContainerLink{Container: v, Alias: v}, nil
	case []interface{}:
		switch len(v) {
		case 1:
			name, ok := asString(v[0])
			if !ok {
				return ContainerLink{}, NewConfigurationError("invalid link element type %T", v[0])
			}
			return ContainerLink{Container: name, Alias: name}, nil
		case 2:
			name, ok := asString(v[0])
			if !ok {
				return ContainerLink{}, NewConfigurationError("invalid link element type %T", v[0])
			}
			alias, ok := asString(v[1])
			if !ok {
				return ContainerLink{}, NewConfigurationError("invalid link alias type %T", v[1])
			}
			return ContainerLink{Container: name, Alias: alias}, nil
		}
		return ContainerLink{}, NewConfigurationError("invalid element length %d; links take 1 or 2 elements", len(v))
	case map[string]interface{}:
		if len(v) != 1 {
			return ContainerLink{}, NewConfigurationError("invalid element length %d; link mappings take exactly one entry", len(v))
		}
		for name, alias := range v {
			aliasStr, ok := asString(alias)
			if !ok {
				return ContainerLink{}, NewConfigurationError("invalid link alias type %T", alias)
			}
			return ContainerLink{Container: name, Alias: aliasStr}, nil
		}
	}
	return ContainerLink{}, NewConfigurationError("invalid type %T; expected string, list, or mapping", value)
}

// NewPortBinding converts a single shorthand value into a PortBinding.
// A bare port exposes to links only; (port, host port) publishes on all
// interfaces; (port, host port, interface) or (port, (host port, interface))
// publishes on one interface.
func NewPortBinding(value interface{}) (PortBinding, error) {
	if v, ok := value.(PortBinding); ok {
		return v, nil
	}

	if port, ok := asString(value); ok {
		return PortBinding{Exposed: port}, nil
	}

	list, ok := value.([]interface{})
	if !ok {
		return PortBinding{}, NewConfigurationError("invalid type %T; expected string, int, or list", value)
	}

	switch len(list) {
	case 1:
		port, ok := asString(list[0])
		if !ok {
			return PortBinding{}, NewConfigurationError("invalid port type %T", list[0])
		}
		return PortBinding{Exposed: port}, nil
	case 2:
		exposed, ok := asString(list[0])
		if !ok {
			return PortBinding{}, NewConfigurationError("invalid port type %T", list[0])
		}

		switch second := list[1].(type) {
		case nil:
			return PortBinding{Exposed: exposed}, nil
		case []interface{}:
			if len(second) != 2 {
				return PortBinding{}, NewConfigurationError("nested port entries need exactly (host port, interface); found %d elements", len(second))
			}
			host, ok := asString(second[0])
			if !ok {
				return PortBinding{}, NewConfigurationError("invalid host port type %T", second[0])
			}
			iface, ok := asString(second[1])
			if !ok {
				return PortBinding{}, NewConfigurationError("invalid interface type %T", second[1])
			}
			return PortBinding{Exposed: exposed, HostPort: &host, Interface: &iface}, nil
		default:
			host, ok := asString(second)
			if !ok {
				return PortBinding{}, NewConfigurationError("invalid host port type %T", second)
			}
			return PortBinding{Exposed: exposed, HostPort: &host}, nil
		}
	case 3:
		exposed, ok := asString(list[0])
		if !ok {
			return PortBinding{}, NewConfigurationError("invalid port type %T", list[0])
		}
		host, ok := asString(list[1])
		if !ok {
			return PortBinding{}, NewConfigurationError("invalid host port type %T", list[1])
		}
		iface, ok := asString(list[2])
		if !ok {
			return PortBinding{}, NewConfigurationError("invalid interface type %T", list[2])
		}
		return PortBinding{Exposed: exposed, HostPort: &host, Interface: &iface}, nil
	}
	return PortBinding{}, NewConfigurationError("invalid element length %d; port bindings take 1 to 3 elements", len(list))
}

// NewSharedVolumes converts any accepted shorthand into a canonical sequence.
// Already-canonical sequences come back unchanged.
func NewSharedVolumes(value interface{}) ([]SharedVolume, error) {
	return listed(value, NewSharedVolume)
}

func NewHostVolumes(value interface{}) ([]SharedVolume, error) {
	return listed(value, NewHostVolume)
}

func NewContainerLinks(value interface{}) ([]ContainerLink, error) {
	return listed(value, NewContainerLink)
}

func NewPortBindings(value interface{}) ([]PortBinding, error) {
	return listed(value, NewPortBinding)
}

func listed[T any](value interface{}, convert func(interface{}) (T, error)) ([]T, error) {
	switch v := value.(type) {
	case nil:
		return []T{}, nil
	case []T:
		return v, nil
	case T:
		return []T{v}, nil
	case []interface{}:
		result := make([]T, 0, len(v))
		for _, element := range v {
			converted, err := convert(element)
			if err != nil {
				return nil, err
			}
			result = append(result, converted)
		}
		return result, nil
	case map[string]interface{}:
		result := make([]T, 0, len(v))
		for _, key := range sortedKeys(v) {
			converted, err := convert(map[string]interface{}{key: v[key]})
			if err != nil {
				return nil, err
			}
			result = append(result, converted)
		}
		return result, nil
	}

	converted, err := convert(value)
	if err != nil {
		return nil, err
	}
	return []T{converted}, nil
}
