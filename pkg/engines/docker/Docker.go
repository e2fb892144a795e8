package docker

import (
	"context"

	TDContainer "github.com/docker/docker/api/types/container"
	IDClient "github.com/docker/docker/client"
)

func (transport *Transport) client() (*IDClient.Client, error) {
	opts := []IDClient.Opt{IDClient.FromEnv, IDClient.WithAPIVersionNegotiation()}

	if transport.Host != "" {
		opts = append(opts, IDClient.WithHost(transport.Host))
	}

	return IDClient.NewClientWithOpts(opts...)
}

// IsDaemonRunning probes the daemon with a plain list call.
func (transport *Transport) IsDaemonRunning(ctx context.Context) error {
	cli, err := transport.client()

	if err != nil {
		return err
	}

	defer func(cli *IDClient.Client) {
		err = cli.Close()
		if err != nil {
			return
		}
	}(cli)

	_, err = cli.ContainerList(ctx, TDContainer.ListOptions{})

	return err
}
