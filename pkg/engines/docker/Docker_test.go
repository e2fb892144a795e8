package docker

import (
	"testing"

	"github.com/docker/docker/api/types"
	TDContainer "github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/options"
)

func TestStateOf(t *testing.T) {
	cases := []struct {
		status   string
		expected contracts.State
	}{
		{"running", contracts.Running},
		{"paused", contracts.Running},
		{"restarting", contracts.Running},
		{"created", contracts.Created},
		{"exited", contracts.Stopped},
		{"dead", contracts.Stopped},
	}

	for _, testCase := range cases {
		inspected := types.ContainerJSON{
			ContainerJSONBase: &types.ContainerJSONBase{
				State: &types.ContainerState{Status: testCase.status},
			},
		}

		assert.Equal(t, testCase.expected, stateOf(inspected), testCase.status)
	}
}

func TestFingerprintOf(t *testing.T) {
	inspected := types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{
			State: &types.ContainerState{Status: "running"},
			HostConfig: &TDContainer.HostConfig{
				Binds:       []string{"/srv/web:/var/lib/web:rw"},
				VolumesFrom: []string{"example_map.app_server_socket"},
				Links:       []string{"/example_map.app_server:/example_map.web_server/app_server"},
			},
		},
		Config: &TDContainer.Config{
			Image: "nginx:latest",
			User:  "web:web",
			Volumes: map[string]struct{}{
				"/var/lib/web": {},
			},
			ExposedPorts: nat.PortSet{
				"80/tcp":   {},
				"53/udp":   {},
				"8080/tcp": {},
			},
		},
	}

	fingerprint := fingerprintOf(inspected)

	assert.Equal(t, "nginx:latest", fingerprint.Image)
	assert.Equal(t, "web:web", fingerprint.User)
	assert.Equal(t, []string{"/var/lib/web"}, fingerprint.Volumes)
	assert.Equal(t, []string{"/srv/web:/var/lib/web:rw"}, fingerprint.Binds)
	assert.Equal(t, []string{"example_map.app_server_socket"}, fingerprint.VolumesFrom)
	assert.Equal(t, []string{"example_map.app_server:app_server"}, fingerprint.Links)
	assert.Equal(t, []string{"53/udp", "80", "8080"}, fingerprint.Ports)
}

func TestLinkLabel(t *testing.T) {
	assert.Equal(t, "db:db", linkLabel("/db:/web/db"))
	assert.Equal(t, "db:alias", linkLabel("db:alias"))
	assert.Equal(t, "db", linkLabel("/db"))
}

func TestNatPort(t *testing.T) {
	port, err := natPort("80")
	require.NoError(t, err)
	assert.Equal(t, nat.Port("80/tcp"), port)

	port, err = natPort("53/udp")
	require.NoError(t, err)
	assert.Equal(t, nat.Port("53/udp"), port)
}

func TestPorts(t *testing.T) {
	set, bindings, err := ports(options.Options{
		"exposed_ports": []string{"80", "443"},
		"port_bindings": map[string]interface{}{
			"80": map[string]interface{}{
				"host_port": "8080",
				"interface": "127.0.0.1",
			},
		},
	})

	require.NoError(t, err)

	assert.Contains(t, set, nat.Port("80/tcp"))
	assert.Contains(t, set, nat.Port("443/tcp"))

	require.Len(t, bindings[nat.Port("80/tcp")], 1)
	assert.Equal(t, nat.PortBinding{HostIP: "127.0.0.1", HostPort: "8080"}, bindings[nat.Port("80/tcp")][0])
}

func TestPortsEmpty(t *testing.T) {
	set, bindings, err := ports(options.Options{})

	require.NoError(t, err)
	assert.Nil(t, set)
	assert.Nil(t, bindings)
}

func TestStringsOf(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, stringsOf([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, stringsOf([]interface{}{"a", "b"}))
	assert.Nil(t, stringsOf(nil))
	assert.Nil(t, stringsOf("a"))
}
