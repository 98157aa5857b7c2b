package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configDir string
	var logLevel string

	ctx := newCommandContext(&configDir, &logLevel)
	return buildRootCommand(ctx, &configDir, &logLevel)
}

func buildRootCommand(ctx *commandContext, configDir, logLevel *string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "coursectl",
		Short:         "LessonHub operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(configDir, "config-dir", "c", ".", "Directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(logLevel, "log-level", "", "Override log.level from the config")

	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newCoursesCommand(ctx))
	rootCmd.AddCommand(newProgressCommand(ctx))
	rootCmd.AddCommand(newIndexesCommand(ctx))

	return rootCmd
}
