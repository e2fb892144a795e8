package tests

import (
	"github.com/zalan-axis/docker-map/pkg/input"
	"github.com/zalan-axis/docker-map/pkg/maps"
)

// MapBuilder assembles container maps for tests. Container scopes the
// following calls until the next Container call.
type MapBuilder struct {
	containerMap *maps.ContainerMap
	current      *maps.ContainerConfiguration
}

func NewMapBuilder(name string) *MapBuilder {
	return &MapBuilder{containerMap: maps.New(name)}
}

func (builder *MapBuilder) Volume(alias string, path string) *MapBuilder {
	builder.containerMap.Volumes[alias] = path

	return builder
}

func (builder *MapBuilder) HostVolume(alias string, path string) *MapBuilder {
	builder.containerMap.Host.Volumes[alias] = maps.HostPath{Default: path}

	return builder
}

func (builder *MapBuilder) Container(name string) *MapBuilder {
	builder.current, _ = builder.containerMap.GetOrCreate(name)

	return builder
}

func (builder *MapBuilder) Image(image string) *MapBuilder {
	builder.current.Image = image

	return builder
}

func (builder *MapBuilder) Instances(names ...string) *MapBuilder {
	builder.current.Instances = names

	return builder
}

func (builder *MapBuilder) Attaches(aliases ...string) *MapBuilder {
	builder.current.Attaches = append(builder.current.Attaches, aliases...)

	return builder
}

func (builder *MapBuilder) Uses(names ...string) *MapBuilder {
	builder.current.Uses = append(builder.current.Uses, names...)

	return builder
}

func (builder *MapBuilder) Links(targets ...string) *MapBuilder {
	for _, target := range targets {
		builder.current.Links = append(builder.current.Links,
			input.ContainerLink{Container: target, Alias: target})
	}

	return builder
}

func (builder *MapBuilder) Shares(paths ...string) *MapBuilder {
	builder.current.Shares = append(builder.current.Shares, paths...)

	return builder
}

func (builder *MapBuilder) Persistent() *MapBuilder {
	builder.current.Persistent = true

	return builder
}

func (builder *MapBuilder) Build() *maps.ContainerMap {
	return builder.containerMap
}

// ExampleMap is the canonical three-container scenario used across packages:
// web_server uses app_server_socket, attached by app_server which runs two
// instances.
func ExampleMap() *maps.ContainerMap {
	return NewMapBuilder("example_map").
		Volume("app_server_socket", "/var/lib/app/socket").
		Container("app_server").
		Image("app").
		Instances("instance1", "instance2").
		Attaches("app_server_socket").
		Container("web_server").
		Image("nginx").
		Uses("app_server_socket").
		Links("app_server").
		Build()
}
