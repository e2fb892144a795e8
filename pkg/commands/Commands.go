package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zalan-axis/docker-map/pkg/engine"
	"github.com/zalan-axis/docker-map/pkg/engines/docker"
	"github.com/zalan-axis/docker-map/pkg/formaters"
	"github.com/zalan-axis/docker-map/pkg/loader"
	"github.com/zalan-axis/docker-map/pkg/maps"
	"github.com/zalan-axis/docker-map/pkg/policy"
)

var Commands []Command

func PreloadCommands() {
	Check()
	Plan()
	Operations()
}

func Run(ctx context.Context, root *cobra.Command) error {
	for _, command := range Commands {
		root.AddCommand(&cobra.Command{
			Use:           command.Name,
			Short:         command.Short,
			Args:          command.Args,
			RunE:          command.Function,
			SilenceUsage:  true,
			SilenceErrors: false,
		})
	}

	return root.ExecuteContext(ctx)
}

func loadMap() (*maps.ContainerMap, error) {
	return loader.Load(viper.GetString("map"))
}

func newEngine(containerMap *maps.ContainerMap) *engine.Engine {
	return engine.New(containerMap, docker.New(viper.GetString("docker-host")))
}

func output(report *policy.Report) error {
	if viper.GetBool("json") {
		encoded, err := report.ToJSON()

		if err != nil {
			return err
		}

		fmt.Println(string(encoded))

		return nil
	}

	formaters.Report(report)

	return nil
}
