package startup

import (
	"flag"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zalan-axis/docker-map/pkg/static"
)

// SetFlags declares the process flags and binds them into viper so every
// package reads configuration the same way.
func SetFlags() {
	flag.String("map", "docker-map.yaml", "Path to the container map definition")
	flag.String("log", static.DEFAULT_LOG_LEVEL, "Log level: debug, info, warn, error")
	flag.Bool("json", false, "Print reports as JSON instead of a table")
	flag.String("docker-host", "", "Docker daemon address; defaults to the environment")
	flag.String("metrics-listen", "", "Expose prometheus metrics on this address, e.g. :9090")

	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)
}
