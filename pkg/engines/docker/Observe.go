package docker

import (
	"context"
	"sort"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/docker/docker/api/types"
	IDClient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/metrics"
)

// Observe inspects the named container. A missing container observes as
// Absent; a daemon failure is retried with backoff and reported as an error,
// never as an Absent state.
func (transport *Transport) Observe(ctx context.Context, name string) (*contracts.Observation, error) {
	var observation *contracts.Observation

	inspect := func() error {
		result, err := transport.inspect(ctx, name)

		if err != nil {
			return err
		}

		observation = result

		return nil
	}

	retry := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	if err := backoff.Retry(inspect, retry); err != nil {
		metrics.ObservationFailures.Increment()

		return nil, &contracts.ObservationError{Name: name, Err: err}
	}

	metrics.Observations.Increment()

	return observation, nil
}

func (transport *Transport) inspect(ctx context.Context, name string) (*contracts.Observation, error) {
	cli, err := transport.client()

	if err != nil {
		return nil, err
	}

	defer func(cli *IDClient.Client) {
		err = cli.Close()
		if err != nil {
			return
		}
	}(cli)

	inspected, err := cli.ContainerInspect(ctx, name)

	if err != nil {
		if IDClient.IsErrNotFound(err) {
			return &contracts.Observation{Name: name, State: contracts.Absent}, nil
		}

		return nil, err
	}

	return &contracts.Observation{
		Name:        name,
		State:       stateOf(inspected),
		Fingerprint: fingerprintOf(inspected),
	}, nil
}

func stateOf(inspected types.ContainerJSON) contracts.State {
	if inspected.State == nil {
		return contracts.Stopped
	}

	switch inspected.State.Status {
	case "running", "paused", "restarting":
		return contracts.Running
	case "created":
		return contracts.Created
	default:
		return contracts.Stopped
	}
}

func fingerprintOf(inspected types.ContainerJSON) *contracts.Fingerprint {
	fingerprint := &contracts.Fingerprint{}

	if inspected.Config != nil {
		fingerprint.Image = inspected.Config.Image
		fingerprint.User = inspected.Config.User

		for volume := range inspected.Config.Volumes {
			fingerprint.Volumes = append(fingerprint.Volumes, volume)
		}
		sort.Strings(fingerprint.Volumes)

		for port := range inspected.Config.ExposedPorts {
			fingerprint.Ports = append(fingerprint.Ports, portLabel(port))
		}
		sort.Strings(fingerprint.Ports)
	}

	if inspected.HostConfig != nil {
		fingerprint.Binds = sortedCopy(inspected.HostConfig.Binds)
		fingerprint.VolumesFrom = sortedCopy(inspected.HostConfig.VolumesFrom)

		for _, link := range inspected.HostConfig.Links {
			fingerprint.Links = append(fingerprint.Links, linkLabel(link))
		}
		sort.Strings(fingerprint.Links)
	}

	return fingerprint
}

// portLabel reports the port the way map definitions write it: the protocol
// suffix is dropped for plain tcp.
func portLabel(port nat.Port) string {
	if port.Proto() == "tcp" {
		return port.Port()
	}

	return string(port)
}

// linkLabel undoes the daemon's path-style link rendering, /target:/self/alias
// back to target:alias.
func linkLabel(link string) string {
	parts := strings.SplitN(link, ":", 2)
	target := strings.TrimPrefix(parts[0], "/")

	if len(parts) == 1 {
		return target
	}

	alias := parts[1]

	if index := strings.LastIndex(alias, "/"); index >= 0 {
		alias = alias[index+1:]
	}

	return target + ":" + alias
}

func sortedCopy(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	result := make([]string, len(values))
	copy(result, values)
	sort.Strings(result)

	return result
}
