package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalan-axis/docker-map/pkg/input"
	"github.com/zalan-axis/docker-map/pkg/maps"
	"github.com/zalan-axis/docker-map/pkg/resolver"
)

func exampleNodes(t *testing.T) map[string]*resolver.Node {
	t.Helper()

	containerMap := maps.New("example_map")
	containerMap.Volumes["app_server_socket"] = "/var/lib/app/socket"
	containerMap.Volumes["web_config"] = "/etc/web"
	containerMap.Host.Root = "/srv/data"
	containerMap.Host.Volumes["web_config"] = maps.HostPath{
		Default:   "config",
		Instances: map[string]string{"instance1": "config1"},
	}

	appServer, _ := containerMap.GetOrCreate("app_server")
	appServer.Image = "app"
	appServer.Instances = []string{"instance1", "instance2"}
	appServer.Attaches = []string{"app_server_socket"}

	webServer, _ := containerMap.GetOrCreate("web_server")
	webServer.Image = "nginx"
	webServer.Uses = []string{"app_server_socket"}
	webServer.Links = []input.ContainerLink{{Container: "app_server", Alias: "app"}}
	webServer.Binds = []input.SharedVolume{{Volume: "web_config", ReadOnly: true}}

	hostPort := "8080"
	webServer.Exposes = []input.PortBinding{
		{Exposed: "80", HostPort: &hostPort},
		{Exposed: "443"},
	}

	nodes, err := resolver.Resolve(containerMap, []string{"app_server", "web_server"}, resolver.Forward)
	require.NoError(t, err)

	byName := make(map[string]*resolver.Node, len(nodes))

	for _, node := range nodes {
		byName[node.Name()] = node
	}

	return byName
}

func TestDeriveCreateOptions(t *testing.T) {
	nodes := exampleNodes(t)

	webServer := DeriveCreateOptions(nodes["example_map.web_server"], "")
	assert.Equal(t, "nginx:latest", webServer["image"])
	assert.Equal(t, []string{"/etc/web"}, webServer["volumes"])
	assert.Equal(t, []string{"80", "443"}, webServer["exposed_ports"])

	socket := DeriveCreateOptions(nodes["example_map.app_server_socket"], "")
	assert.Equal(t, "busybox:stable", socket["image"])
	assert.Equal(t, []string{"/var/lib/app/socket"}, socket["volumes"])
}

func TestDeriveStartOptions(t *testing.T) {
	nodes := exampleNodes(t)

	options := DeriveStartOptions(nodes["example_map.web_server"])

	assert.Equal(t, []string{"/srv/data/config:/etc/web:ro"}, options["binds"])
	assert.Equal(t, []string{"example_map.app_server_socket"}, options["volumes_from"])
	assert.Equal(t, []string{
		"example_map.app_server.instance1:app.instance1",
		"example_map.app_server.instance2:app.instance2",
	}, options["links"])

	bindings, ok := options["port_bindings"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, bindings, "80")
	assert.NotContains(t, bindings, "443")

	entry, ok := bindings["80"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "8080", entry["host_port"])
}

func TestDeriveStartOptions_InstanceBind(t *testing.T) {
	nodes := exampleNodes(t)
	containerMap := nodes["example_map.web_server"].Configuration.Map

	appServer := containerMap.Get("app_server")
	appServer.Binds = []input.SharedVolume{{Volume: "web_config"}}

	instance1 := DeriveStartOptions(nodes["example_map.app_server.instance1"])
	assert.Equal(t, []string{"/srv/data/config1:/etc/web:rw"}, instance1["binds"])

	instance2 := DeriveStartOptions(nodes["example_map.app_server.instance2"])
	assert.Equal(t, []string{"/srv/data/config:/etc/web:rw"}, instance2["binds"])
}

func TestDeriveFingerprintIsSorted(t *testing.T) {
	nodes := exampleNodes(t)

	fingerprint := DeriveFingerprint(nodes["example_map.web_server"], "")

	assert.Equal(t, "nginx:latest", fingerprint.Image)
	assert.Equal(t, []string{"/etc/web"}, fingerprint.Volumes)
	assert.Equal(t, []string{"example_map.app_server_socket"}, fingerprint.VolumesFrom)
	assert.Equal(t, []string{"443", "80"}, fingerprint.Ports)
	assert.Equal(t, []string{
		"example_map.app_server.instance1:app.instance1",
		"example_map.app_server.instance2:app.instance2",
	}, fingerprint.Links)
}
