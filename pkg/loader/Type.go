package loader

import (
	"gopkg.in/yaml.v3"
)

// Definition is the YAML document shape of a container map. Containers stays a
// raw node so declaration order survives decoding.
type Definition struct {
	Name              string            `yaml:"name" validate:"required"`
	Repository        string            `yaml:"repository"`
	DefaultDomain     string            `yaml:"default_domain"`
	GenerateHostnames bool              `yaml:"generate_hostnames"`
	Clients           []string          `yaml:"clients"`
	Volumes           map[string]string `yaml:"volumes"`
	Host              HostDefinition    `yaml:"host"`
	Containers        yaml.Node         `yaml:"containers"`
}

type HostDefinition struct {
	Root    string                        `yaml:"root"`
	Volumes map[string]HostPathDefinition `yaml:"volumes"`
}

// HostPathDefinition accepts either a bare path or the long form with
// per-instance overrides.
type HostPathDefinition struct {
	Default   string
	Instances map[string]string
}

func (definition *HostPathDefinition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&definition.Default)
	}

	var typed struct {
		Default   string            `yaml:"default"`
		Instances map[string]string `yaml:"instances"`
	}

	if err := node.Decode(&typed); err != nil {
		return err
	}

	definition.Default = typed.Default
	definition.Instances = typed.Instances

	return nil
}

// ContainerDefinition keeps the shorthand-bearing fields untyped; they are
// normalized through pkg/input after decoding.
type ContainerDefinition struct {
	Image     string   `yaml:"image"`
	Instances []string `yaml:"instances"`
	Clients   []string `yaml:"clients"`

	Binds    interface{} `yaml:"binds"`
	Shares   []string    `yaml:"shares"`
	Uses     []string    `yaml:"uses"`
	Attaches []string    `yaml:"attaches"`
	Links    interface{} `yaml:"links"`
	Exposes  interface{} `yaml:"exposes"`

	User        string `yaml:"user"`
	Permissions string `yaml:"permissions"`
	Persistent  bool   `yaml:"persistent"`

	CreateOptions map[string]interface{} `yaml:"create_options"`
	StartOptions  map[string]interface{} `yaml:"start_options"`
}
