package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zalan-axis/docker-map/pkg/commands"
	"github.com/zalan-axis/docker-map/pkg/logger"
	"github.com/zalan-axis/docker-map/pkg/startup"
	"github.com/zalan-axis/docker-map/pkg/version"
)

var Version = "dev"

func main() {
	startup.SetFlags()

	logger.Setup(viper.GetString("log"))

	if viper.GetString("log") == "debug" {
		fmt.Println(fmt.Sprintf("logging level set to %s (override with --log flag)", viper.GetString("log")))
	}

	if listen := viper.GetString("metrics-listen"); listen != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())

			if err := http.ListenAndServe(listen, nil); err != nil {
				logger.Log.Error("metrics listener failed", zap.String("error", err.Error()))
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:     "dmap",
		Short:   "Declarative docker container maps",
		Version: version.New(Version).String(),
	}

	root.SetArgs(os.Args[1:])

	commands.PreloadCommands()

	if err := commands.Run(ctx, root); err != nil {
		os.Exit(1)
	}
}
