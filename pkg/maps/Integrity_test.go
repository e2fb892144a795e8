package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalan-axis/docker-map/pkg/input"
)

func TestCheckIntegrity_Valid(t *testing.T) {
	containerMap := New("example_map")
	containerMap.Volumes["app_server_socket"] = "/var/lib/app/socket"
	containerMap.Volumes["web_config"] = "/etc/web"
	containerMap.Host.Volumes = map[string]HostPath{
		"web_config": {Default: "/srv/web/config"},
	}

	appServer, _ := containerMap.GetOrCreate("app_server")
	appServer.Attaches = []string{"app_server_socket"}

	webServer, _ := containerMap.GetOrCreate("web_server")
	webServer.Uses = []string{"app_server_socket"}
	webServer.Binds = []input.SharedVolume{{Volume: "web_config", ReadOnly: true}}

	assert.NoError(t, containerMap.CheckIntegrity())
}

func TestCheckIntegrity_CollectsEveryViolation(t *testing.T) {
	containerMap := New("example_map")

	webServer, _ := containerMap.GetOrCreate("web_server")
	webServer.Binds = []input.SharedVolume{{Volume: "missing_alias"}}
	webServer.Uses = []string{"missing_container"}
	webServer.Links = []input.ContainerLink{{Container: "missing_target", Alias: "db"}}
	webServer.Attaches = []string{"missing_attached"}

	err := containerMap.CheckIntegrity()
	require.Error(t, err)

	integrity, ok := err.(*IntegrityError)
	require.True(t, ok)

	assert.Len(t, integrity.Violations, 4)
}

func TestCheckIntegrity_BindWithoutHostPath(t *testing.T) {
	containerMap := New("example_map")
	containerMap.Volumes["internal_only"] = "/var/lib/internal"

	webServer, _ := containerMap.GetOrCreate("web_server")
	webServer.Binds = []input.SharedVolume{{Volume: "internal_only"}}

	err := containerMap.CheckIntegrity()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no host path assignment")
}

func TestCheckIntegrity_InternalAliasWithoutBindIsValid(t *testing.T) {
	containerMap := New("example_map")
	containerMap.Volumes["internal_only"] = "/var/lib/internal"

	appServer, _ := containerMap.GetOrCreate("app_server")
	appServer.Attaches = []string{"internal_only"}

	assert.NoError(t, containerMap.CheckIntegrity())
}

func TestCheckIntegrity_DetectsCycle(t *testing.T) {
	containerMap := New("example_map")

	first, _ := containerMap.GetOrCreate("first")
	first.Uses = []string{"second"}

	second, _ := containerMap.GetOrCreate("second")
	second.Uses = []string{"first"}

	err := containerMap.CheckIntegrity()
	require.Error(t, err)

	assert.Contains(t, err.Error(), "dependency cycle")
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestCheckIntegrity_DuplicateAttachedAlias(t *testing.T) {
	containerMap := New("example_map")
	containerMap.Volumes["shared_socket"] = "/var/lib/socket"

	first, _ := containerMap.GetOrCreate("first")
	first.Attaches = []string{"shared_socket"}

	second, _ := containerMap.GetOrCreate("second")
	second.Attaches = []string{"shared_socket"}

	err := containerMap.CheckIntegrity()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared by both")
}

func TestCheckIntegrity_DuplicateInstance(t *testing.T) {
	containerMap := New("example_map")

	appServer, _ := containerMap.GetOrCreate("app_server")
	appServer.Instances = []string{"instance1", "instance1"}

	err := containerMap.CheckIntegrity()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}
