package input

// SharedVolume is the canonical form of a volume declaration. Volume holds a
// volume alias or an in-container path. Host is only set for explicit host
// binds of the form (container path, host path).
type SharedVolume struct {
	Volume   string `json:"volume"`
	Host     string `json:"host,omitempty"`
	ReadOnly bool   `json:"readOnly"`
}

// ContainerLink is the canonical form of a link declaration. Alias defaults to
// the linked container's name; the owning map's prefix is stripped when the
// link is derived into runtime options.
type ContainerLink struct {
	Container string `json:"container"`
	Alias     string `json:"alias"`
}

// PortBinding is the canonical form of a port exposure. A nil HostPort means
// the port is exposed to linked containers only. A set HostPort with a nil
// Interface publishes on all host interfaces.
type PortBinding struct {
	Exposed   string  `json:"exposed"`
	HostPort  *string `json:"hostPort,omitempty"`
	Interface *string `json:"interface,omitempty"`
}

type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}
