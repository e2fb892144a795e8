package loader

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zalan-axis/docker-map/pkg/input"
	"github.com/zalan-axis/docker-map/pkg/maps"
	"github.com/zalan-axis/docker-map/pkg/options"
)

var validate = validator.New()

func Load(path string) (*maps.ContainerMap, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, errors.Wrapf(err, "reading map definition %s", path)
	}

	return Parse(data)
}

// Parse decodes, normalizes, and integrity-checks one map definition.
// Containers keep their declaration order.
func Parse(data []byte) (*maps.ContainerMap, error) {
	definition := &Definition{}

	if err := yaml.Unmarshal(data, definition); err != nil {
		return nil, errors.Wrap(err, "parsing map definition")
	}

	if err := validate.Struct(definition); err != nil {
		return nil, errors.Wrap(err, "validating map definition")
	}

	if definition.Containers.Kind != yaml.MappingNode {
		return nil, input.NewConfigurationError("containers must be a non-empty mapping")
	}

	containerMap := maps.New(definition.Name)
	containerMap.Repository = definition.Repository
	containerMap.DefaultDomain = definition.DefaultDomain
	containerMap.GenerateHostnames = definition.GenerateHostnames
	containerMap.Clients = definition.Clients

	for alias, path := range definition.Volumes {
		containerMap.Volumes[alias] = path
	}

	containerMap.Host.Root = definition.Host.Root

	for alias, entry := range definition.Host.Volumes {
		containerMap.Host.Volumes[alias] = maps.HostPath{
			Default:   entry.Default,
			Instances: entry.Instances,
		}
	}

	content := definition.Containers.Content

	for index := 0; index < len(content); index += 2 {
		name := content[index].Value

		var container ContainerDefinition

		if err := content[index+1].Decode(&container); err != nil {
			return nil, errors.Wrapf(err, "decoding container %s", name)
		}

		configuration, existed := containerMap.GetOrCreate(name)

		if existed {
			return nil, input.NewConfigurationError("container %s declared twice", name)
		}

		if err := apply(configuration, &container); err != nil {
			return nil, errors.Wrapf(err, "container %s", name)
		}
	}

	if err := containerMap.CheckIntegrity(); err != nil {
		return nil, err
	}

	return containerMap, nil
}

func apply(configuration *maps.ContainerConfiguration, definition *ContainerDefinition) error {
	configuration.Image = definition.Image
	configuration.Instances = definition.Instances
	configuration.Clients = definition.Clients
	configuration.Shares = definition.Shares
	configuration.Uses = definition.Uses
	configuration.Attaches = definition.Attaches
	configuration.User = definition.User
	configuration.Permissions = definition.Permissions
	configuration.Persistent = definition.Persistent

	binds, err := input.NewHostVolumes(definition.Binds)

	if err != nil {
		return err
	}

	configuration.Binds = binds

	links, err := input.NewContainerLinks(definition.Links)

	if err != nil {
		return err
	}

	configuration.Links = links

	exposes, err := input.NewPortBindings(definition.Exposes)

	if err != nil {
		return err
	}

	configuration.Exposes = exposes

	if definition.CreateOptions != nil {
		configuration.CreateOptions = options.NewStatic(options.Options(definition.CreateOptions))
	}

	if definition.StartOptions != nil {
		configuration.StartOptions = options.NewStatic(options.Options(definition.StartOptions))
	}

	return nil
}
