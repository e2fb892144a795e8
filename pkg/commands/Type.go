package commands

import "github.com/spf13/cobra"

type Command struct {
	Name     string
	Short    string
	Args     cobra.PositionalArgs
	Function func(cmd *cobra.Command, args []string) error
}
