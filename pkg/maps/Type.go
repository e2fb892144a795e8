package maps

import (
	"strings"

	"github.com/zalan-axis/docker-map/pkg/input"
	"github.com/zalan-axis/docker-map/pkg/options"
)

// ContainerMap is the declarative description of a named set of containers,
// their shared volume aliases, and host path bindings. The map name prefixes
// every generated container name. Built once by a loader, then read-mostly.
type ContainerMap struct {
	Name              string
	Repository        string
	DefaultDomain     string
	GenerateHostnames bool
	Clients           []string
	Volumes           map[string]string
	Host              HostVolumeConfiguration

	containers map[string]*ContainerConfiguration
	order      []string
}

// HostVolumeConfiguration maps volume aliases to host paths. A path may be
// overridden per instance name. Relative paths resolve against Root.
type HostVolumeConfiguration struct {
	Root    string
	Volumes map[string]HostPath
}

type HostPath struct {
	Default   string
	Instances map[string]string
}

// ContainerConfiguration describes one container of a map. It belongs to
// exactly one ContainerMap; Map is a back-reference, not ownership.
type ContainerConfiguration struct {
	Name string
	Map  *ContainerMap

	Image     string
	Instances []string
	Clients   []string

	Binds    []input.SharedVolume
	Shares   []string
	Uses     []string
	Attaches []string
	Links    []input.ContainerLink
	Exposes  []input.PortBinding

	User        string
	Permissions string
	Persistent  bool

	CreateOptions options.Value
	StartOptions  options.Value
}

// IntegrityError reports every violation found in a map, not just the first.
type IntegrityError struct {
	Violations []string
}

func (e *IntegrityError) Error() string {
	return "container map integrity check failed: " + strings.Join(e.Violations, "; ")
}
