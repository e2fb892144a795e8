package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zalan-axis/docker-map/pkg/engine"
	"github.com/zalan-axis/docker-map/pkg/formaters"
)

// Check loads the map and runs the integrity check without touching the
// runtime.
func Check() {
	Commands = append(Commands, Command{
		Name:  "check",
		Short: "Validate the container map definition",
		Args:  cobra.NoArgs,
		Function: func(cmd *cobra.Command, args []string) error {
			containerMap, err := loadMap()

			if err != nil {
				return err
			}

			fmt.Printf("%s: %d container(s), no violations\n", containerMap.Name, len(containerMap.Names()))

			return nil
		},
	})
}

// Plan prints the actions an operation would execute, without executing them.
func Plan() {
	Commands = append(Commands, Command{
		Name:  "plan",
		Short: "Show the actions an operation would execute",
		Args:  cobra.MinimumNArgs(1),
		Function: func(cmd *cobra.Command, args []string) error {
			containerMap, err := loadMap()

			if err != nil {
				return err
			}

			operation := engine.Operation(args[0])

			actions, err := newEngine(containerMap).Plan(cmd.Context(), operation, args[1:], nil)

			if err != nil {
				return err
			}

			formaters.Plan(actions)

			return nil
		},
	})
}

// Operations registers one command per engine operation. Each takes container
// names as arguments; none means the whole map, as does the literal "all".
func Operations() {
	operations := []struct {
		operation engine.Operation
		short     string
	}{
		{engine.OperationCreate, "Create containers that do not match their configuration"},
		{engine.OperationStart, "Start containers, creating them first when needed"},
		{engine.OperationStop, "Stop running containers in reverse dependency order"},
		{engine.OperationRemove, "Remove containers in reverse dependency order"},
		{engine.OperationUpdate, "Recreate containers whose configuration drifted"},
		{engine.OperationRestart, "Stop and start containers"},
		{engine.OperationStartup, "Bring the whole map up"},
		{engine.OperationShutdown, "Take the whole map down"},
	}

	for _, entry := range operations {
		operation := entry.operation

		Commands = append(Commands, Command{
			Name:  string(operation),
			Short: entry.short,
			Args:  cobra.ArbitraryArgs,
			Function: func(cmd *cobra.Command, args []string) error {
				containerMap, err := loadMap()

				if err != nil {
					return err
				}

				report, runErr := newEngine(containerMap).Run(cmd.Context(), operation, args, nil)

				if report != nil {
					if err = output(report); err != nil {
						return err
					}
				}

				return runErr
			},
		})
	}
}
