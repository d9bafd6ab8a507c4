package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/listkeeper/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "listkeeper",
		Short: "ListKeeper API server",
		Long:  `ListKeeper is a task list service with a two-tier list hierarchy, list sharing, and inter-task dependency gating.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("command execution failed: %v", err)
		os.Exit(1)
	}
}
