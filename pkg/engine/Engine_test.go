package engine

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/metrics"
	"github.com/zalan-axis/docker-map/pkg/policy"
	"github.com/zalan-axis/docker-map/pkg/tests"
)

func TestRun_StartupConvergesExampleMap(t *testing.T) {
	runtime := tests.NewRuntime()
	engine := New(tests.ExampleMap(), runtime)

	report, err := engine.Run(context.Background(), OperationStartup, []string{"all"}, nil)

	require.NoError(t, err)
	assert.True(t, report.Succeeded())

	assert.Equal(t, []string{
		"example_map.app_server.instance1",
		"example_map.app_server.instance2",
		"example_map.app_server_socket",
		"example_map.web_server",
		"example_map.app_server.instance1",
		"example_map.app_server.instance2",
		"example_map.web_server",
	}, runtime.Names())

	assert.Equal(t, []contracts.ActionKind{
		contracts.ActionCreate,
		contracts.ActionCreate,
		contracts.ActionCreate,
		contracts.ActionCreate,
		contracts.ActionStart,
		contracts.ActionStart,
		contracts.ActionStart,
	}, runtime.Kinds())

	assert.Equal(t, contracts.Running, runtime.State("example_map.app_server.instance1"))
	assert.Equal(t, contracts.Running, runtime.State("example_map.app_server.instance2"))
	assert.Equal(t, contracts.Created, runtime.State("example_map.app_server_socket"))
	assert.Equal(t, contracts.Running, runtime.State("example_map.web_server"))
}

func TestRun_StartupIsIdempotent(t *testing.T) {
	runtime := tests.NewRuntime()
	engine := New(tests.ExampleMap(), runtime)

	_, err := engine.Run(context.Background(), OperationStartup, nil, nil)
	require.NoError(t, err)

	executed := len(runtime.Log)

	report, err := engine.Run(context.Background(), OperationStartup, nil, nil)

	require.NoError(t, err)
	assert.Len(t, runtime.Log, executed)

	for _, outcome := range report.Outcomes {
		assert.Equal(t, policy.OutcomeNoop, outcome.Kind)
	}
}

func TestRun_UpdateRecreatesDrifted(t *testing.T) {
	runtime := tests.NewRuntime()
	containerMap := tests.ExampleMap()
	engine := New(containerMap, runtime)

	_, err := engine.Run(context.Background(), OperationStartup, nil, nil)
	require.NoError(t, err)

	containerMap.Get("web_server").Image = "nginx:1.27"

	report, err := engine.Run(context.Background(), OperationUpdate, []string{"web_server"}, nil)
	require.NoError(t, err)

	outcome := report.Find("example_map.web_server")
	require.NotNil(t, outcome)
	assert.Equal(t, policy.OutcomeActed, outcome.Kind)
	assert.Equal(t, []contracts.ActionKind{
		contracts.ActionStop,
		contracts.ActionRemove,
		contracts.ActionCreate,
		contracts.ActionStart,
	}, outcome.Actions)

	for _, name := range []string{
		"example_map.app_server.instance1",
		"example_map.app_server.instance2",
		"example_map.app_server_socket",
	} {
		dependency := report.Find(name)
		require.NotNil(t, dependency)
		assert.Equal(t, policy.OutcomeNoop, dependency.Kind)
	}

	assert.Equal(t, contracts.Running, runtime.State("example_map.web_server"))
}

func TestRun_ShutdownRemovesInReverseOrder(t *testing.T) {
	runtime := tests.NewRuntime()
	engine := New(tests.ExampleMap(), runtime)

	_, err := engine.Run(context.Background(), OperationStartup, nil, nil)
	require.NoError(t, err)

	executed := len(runtime.Log)

	report, err := engine.Run(context.Background(), OperationShutdown, []string{"all"}, nil)

	require.NoError(t, err)
	assert.True(t, report.Succeeded())

	assert.Equal(t, []string{
		"example_map.web_server",
		"example_map.app_server.instance2",
		"example_map.app_server.instance1",
		"example_map.web_server",
		"example_map.app_server_socket",
		"example_map.app_server.instance2",
		"example_map.app_server.instance1",
	}, runtime.Names()[executed:])

	for _, name := range []string{
		"example_map.web_server",
		"example_map.app_server_socket",
		"example_map.app_server.instance1",
		"example_map.app_server.instance2",
	} {
		assert.Equal(t, contracts.Absent, runtime.State(name))
	}
}

func TestRun_StartupReconcilesDrift(t *testing.T) {
	runtime := tests.NewRuntime()
	containerMap := tests.ExampleMap()
	engine := New(containerMap, runtime)

	_, err := engine.Run(context.Background(), OperationStartup, nil, nil)
	require.NoError(t, err)

	containerMap.Get("web_server").Image = "nginx:1.27"
	executed := len(runtime.Log)

	report, err := engine.Run(context.Background(), OperationStartup, nil, nil)

	require.NoError(t, err)
	assert.True(t, report.Succeeded())

	assert.Equal(t, []contracts.ActionKind{
		contracts.ActionStop,
		contracts.ActionRemove,
		contracts.ActionCreate,
		contracts.ActionStart,
	}, runtime.Kinds()[executed:])

	recreated := runtime.Log[len(runtime.Log)-2]
	assert.Equal(t, contracts.ActionCreate, recreated.Kind)
	assert.Equal(t, "nginx:1.27", recreated.Options["image"])

	assert.Equal(t, contracts.Running, runtime.State("example_map.web_server"))
}

func TestRun_ShutdownStopsPersistent(t *testing.T) {
	runtime := tests.NewRuntime()
	containerMap := tests.ExampleMap()
	containerMap.Get("web_server").Persistent = true
	engine := New(containerMap, runtime)

	_, err := engine.Run(context.Background(), OperationStartup, nil, nil)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), OperationShutdown, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, contracts.Stopped, runtime.State("example_map.web_server"))
	assert.Equal(t, contracts.Absent, runtime.State("example_map.app_server_socket"))
	assert.Equal(t, contracts.Absent, runtime.State("example_map.app_server.instance1"))
	assert.Equal(t, contracts.Absent, runtime.State("example_map.app_server.instance2"))
}

func TestRun_RemoveKeepsAttachedVolumeInUse(t *testing.T) {
	runtime := tests.NewRuntime()
	containerMap := tests.ExampleMap()
	containerMap.Get("web_server").Persistent = true
	engine := New(containerMap, runtime)

	_, err := engine.Run(context.Background(), OperationStartup, nil, nil)
	require.NoError(t, err)

	report, err := engine.Run(context.Background(), OperationRemove, []string{"app_server_socket"}, nil)
	require.NoError(t, err)

	webServer := report.Find("example_map.web_server")
	require.NotNil(t, webServer)
	assert.Equal(t, policy.OutcomeSkipped, webServer.Kind)

	socket := report.Find("example_map.app_server_socket")
	require.NotNil(t, socket)
	assert.Equal(t, policy.OutcomeSkipped, socket.Kind)

	assert.Equal(t, contracts.Running, runtime.State("example_map.web_server"))
	assert.Equal(t, contracts.Created, runtime.State("example_map.app_server_socket"))
}

func TestRun_FailFastSkipsRemaining(t *testing.T) {
	runtime := tests.NewRuntime()
	runtime.FailExecute["example_map.app_server.instance1"] = errors.New("daemon unavailable")
	engine := New(tests.ExampleMap(), runtime)

	report, err := engine.Run(context.Background(), OperationStartup, nil, nil)

	assert.Error(t, err)
	assert.False(t, report.Succeeded())

	failed := report.Find("example_map.app_server.instance1")
	require.NotNil(t, failed)
	assert.Equal(t, policy.OutcomeFailed, failed.Kind)

	for _, name := range []string{
		"example_map.app_server.instance2",
		"example_map.app_server_socket",
		"example_map.web_server",
	} {
		outcome := report.Find(name)
		require.NotNil(t, outcome)
		assert.Equal(t, policy.OutcomeSkipped, outcome.Kind)
	}
}

func TestRun_RestartStopsThenStarts(t *testing.T) {
	runtime := tests.NewRuntime()
	engine := New(tests.ExampleMap(), runtime)

	_, err := engine.Run(context.Background(), OperationStartup, nil, nil)
	require.NoError(t, err)

	executed := len(runtime.Log)

	report, err := engine.Run(context.Background(), OperationRestart, []string{"web_server"}, nil)

	require.NoError(t, err)
	assert.True(t, report.Succeeded())

	assert.Equal(t, []contracts.ActionKind{
		contracts.ActionStop,
		contracts.ActionStart,
	}, runtime.Kinds()[executed:])

	assert.Equal(t, contracts.Running, runtime.State("example_map.web_server"))
}

func TestRun_UnknownOperation(t *testing.T) {
	engine := New(tests.ExampleMap(), tests.NewRuntime())

	_, err := engine.Run(context.Background(), Operation("scale"), nil, nil)
	assert.Error(t, err)
}

func TestPlan_DoesNotExecute(t *testing.T) {
	runtime := tests.NewRuntime()
	engine := New(tests.ExampleMap(), runtime)

	actions, err := engine.Plan(context.Background(), OperationStartup, []string{"all"}, nil)

	require.NoError(t, err)
	assert.Empty(t, runtime.Log)

	kinds := make([]contracts.ActionKind, 0, len(actions))

	for _, action := range actions {
		kinds = append(kinds, action.Kind)
	}

	assert.Equal(t, []contracts.ActionKind{
		contracts.ActionCreate,
		contracts.ActionCreate,
		contracts.ActionCreate,
		contracts.ActionCreate,
		contracts.ActionStart,
		contracts.ActionStart,
		contracts.ActionStart,
	}, kinds)
}

func TestRun_RecordsContainerStates(t *testing.T) {
	runtime := tests.NewRuntime()
	engine := New(tests.ExampleMap(), runtime)

	_, err := engine.Run(context.Background(), OperationStartup, nil, nil)
	require.NoError(t, err)

	gauge := metrics.Containers.Get()
	assert.Equal(t, 3.0, testutil.ToFloat64(gauge.WithLabelValues("running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge.WithLabelValues("created")))
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge.WithLabelValues("absent")))
}

func TestRun_OverridesReachCreate(t *testing.T) {
	runtime := tests.NewRuntime()
	engine := New(tests.ExampleMap(), runtime)

	_, err := engine.Run(context.Background(), OperationCreate, []string{"web_server"}, &Overrides{
		Create: map[string]interface{}{"mem_limit": "512m"},
	})
	require.NoError(t, err)

	for _, action := range runtime.Log {
		if action.Name == "example_map.web_server" && action.Kind == contracts.ActionCreate {
			assert.Equal(t, "512m", action.Options["mem_limit"])

			return
		}
	}

	t.Fatal("web_server create action not executed")
}
