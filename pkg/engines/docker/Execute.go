package docker

import (
	"context"
	"io"
	"strings"
	"time"

	TDContainer "github.com/docker/docker/api/types/container"
	TDImage "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/strslice"
	IDClient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/options"
	"github.com/zalan-axis/docker-map/pkg/static"
)

// Execute applies one action against the daemon. Option keys the runtime does
// not understand are ignored.
func (transport *Transport) Execute(ctx context.Context, action *contracts.Action) error {
	cli, err := transport.client()

	if err != nil {
		return &contracts.ActionError{Action: action, Err: err}
	}

	defer func(cli *IDClient.Client) {
		err = cli.Close()
		if err != nil {
			return
		}
	}(cli)

	switch action.Kind {
	case contracts.ActionCreate:
		err = transport.create(ctx, cli, action)
	case contracts.ActionStart:
		err = cli.ContainerStart(ctx, action.Name, TDContainer.StartOptions{})
	case contracts.ActionStop:
		timeout := static.STOP_TIMEOUT
		err = cli.ContainerStop(ctx, action.Name, TDContainer.StopOptions{Timeout: &timeout})
	case contracts.ActionRemove:
		err = cli.ContainerRemove(ctx, action.Name, TDContainer.RemoveOptions{Force: true})
	case contracts.ActionWait:
		err = transport.wait(ctx, cli, action.Name)
	default:
		err = errors.Errorf("unknown action kind %q", action.Kind)
	}

	if err != nil {
		return &contracts.ActionError{Action: action, Err: err}
	}

	return nil
}

func (transport *Transport) create(ctx context.Context, cli *IDClient.Client, action *contracts.Action) error {
	opts := action.Options
	image := stringOf(opts["image"])

	if err := pullImage(ctx, cli, image); err != nil {
		return err
	}

	config := &TDContainer.Config{
		Image:      image,
		Hostname:   stringOf(opts["hostname"]),
		User:       stringOf(opts["user"]),
		Cmd:        strslice.StrSlice(stringsOf(opts["command"])),
		Entrypoint: strslice.StrSlice(stringsOf(opts["entrypoint"])),
		Env:        stringsOf(opts["env"]),
	}

	if volumes := stringsOf(opts["volumes"]); len(volumes) > 0 {
		config.Volumes = make(map[string]struct{}, len(volumes))

		for _, volume := range volumes {
			config.Volumes[volume] = struct{}{}
		}
	}

	exposed, bindings, err := ports(opts)

	if err != nil {
		return err
	}

	config.ExposedPorts = exposed

	hostConfig := &TDContainer.HostConfig{
		Binds:        stringsOf(opts["binds"]),
		VolumesFrom:  stringsOf(opts["volumes_from"]),
		Links:        stringsOf(opts["links"]),
		PortBindings: bindings,
		NetworkMode:  TDContainer.NetworkMode(stringOf(opts["network_mode"])),
		Privileged:   boolOf(opts["privileged"]),
	}

	_, err = cli.ContainerCreate(ctx, config, hostConfig, nil, nil, action.Name)

	return err
}

func pullImage(ctx context.Context, cli *IDClient.Client, image string) error {
	_, _, err := cli.ImageInspectWithRaw(ctx, image)

	if err == nil {
		return nil
	}

	if !IDClient.IsErrNotFound(err) {
		return err
	}

	reader, err := cli.ImagePull(ctx, image, TDImage.PullOptions{})

	if err != nil {
		return err
	}

	defer func(reader io.ReadCloser) {
		err = reader.Close()
		if err != nil {
			return
		}
	}(reader)

	_, err = io.Copy(io.Discard, reader)

	return err
}

func (transport *Transport) wait(ctx context.Context, cli *IDClient.Client, name string) error {
	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(static.WAIT_TIMEOUT)*time.Second)
	defer cancel()

	resultC, errC := cli.ContainerWait(waitCtx, name, TDContainer.WaitConditionNotRunning)

	select {
	case result := <-resultC:
		if result.StatusCode != 0 {
			return errors.Errorf("%s exited with status %d", name, result.StatusCode)
		}

		return nil
	case err := <-errC:
		return err
	}
}

func ports(opts options.Options) (nat.PortSet, nat.PortMap, error) {
	var set nat.PortSet

	for _, exposed := range stringsOf(opts["exposed_ports"]) {
		port, err := natPort(exposed)

		if err != nil {
			return nil, nil, err
		}

		if set == nil {
			set = nat.PortSet{}
		}

		set[port] = struct{}{}
	}

	raw, _ := opts["port_bindings"].(map[string]interface{})

	var portMap nat.PortMap

	for exposed, value := range raw {
		port, err := natPort(exposed)

		if err != nil {
			return nil, nil, err
		}

		entry, _ := value.(map[string]interface{})

		binding := nat.PortBinding{
			HostIP:   stringOf(entry["interface"]),
			HostPort: stringOf(entry["host_port"]),
		}

		if portMap == nil {
			portMap = nat.PortMap{}
		}

		portMap[port] = append(portMap[port], binding)
	}

	return set, portMap, nil
}

func natPort(value string) (nat.Port, error) {
	if !strings.Contains(value, "/") {
		value += "/tcp"
	}

	proto, port := nat.SplitProtoPort(value)

	return nat.NewPort(proto, port)
}

func stringOf(value interface{}) string {
	result, _ := value.(string)

	return result
}

func boolOf(value interface{}) bool {
	result, _ := value.(bool)

	return result
}

func stringsOf(value interface{}) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []interface{}:
		result := make([]string, 0, len(typed))

		for _, element := range typed {
			if entry, ok := element.(string); ok {
				result = append(result, entry)
			}
		}

		return result
	}

	return nil
}
