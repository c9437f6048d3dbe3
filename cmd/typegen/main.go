package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/blimu-dev/typegen/internal/cli"
)

func main() {
	var logParams cli.LogParams

	root := &cobra.Command{
		Use:           "typegen",
		Short:         "Generate type declarations from OpenAPI specs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logParams.Level, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&logParams.Format, "log-format", "", "Log format: text or json")

	root.AddCommand(newGenerateCmd(&logParams))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newIRCmd(&logParams))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newGenerateCmd(logParams *cli.LogParams) *cobra.Command {
	var p cli.RunGenerateParams

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate type declarations for the configured clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Log = *logParams
			return cli.RunGenerate(cmd.Context(), p, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&p.ConfigPath, "config", "c", "", "Path to typegen.yaml or typegen.toml config")
	cmd.Flags().StringVar(&p.SingleClient, "client", "", "Generate only the named client from config")
	cmd.Flags().BoolVar(&p.Check, "check", false, "Fail when generated files are missing or out of date instead of writing them")
	// Fallback single-client flags
	cmd.Flags().StringVar(&p.Fallback.Spec, "input", "", "OpenAPI spec file (yaml/json) or URL")
	cmd.Flags().StringVar(&p.Fallback.Type, "type", "", "Target type: typescript, typescript-types, go, python or ir")
	cmd.Flags().StringVar(&p.Fallback.OutDir, "out", "", "Output directory")
	cmd.Flags().StringVar(&p.Fallback.FileName, "file", "", "Output file name (defaults per target)")
	cmd.Flags().StringVar(&p.Fallback.PackageName, "package-name", "", "Package or module name")
	cmd.Flags().StringVar(&p.Fallback.Name, "client-name", "", "Client name used in logs")
	cmd.Flags().StringVar(&p.Fallback.Dialect, "dialect", "", "Force the OpenAPI dialect: 3.0 or 3.1")
	cmd.Flags().StringArrayVar(&p.Fallback.IncludeTags, "include-tags", nil, "Regex patterns for tags to include")
	cmd.Flags().StringArrayVar(&p.Fallback.ExcludeTags, "exclude-tags", nil, "Regex patterns for tags to exclude")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.RunValidate(input); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", input)
			return err
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json) or URL")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newIRCmd(logParams *cli.LogParams) *cobra.Command {
	var p cli.RunIRParams
	cmd := &cobra.Command{
		Use:   "ir",
		Short: "Print the intermediate representation of a spec as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Log = *logParams
			return cli.RunIR(cmd.Context(), p, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&p.Input, "input", "", "OpenAPI spec file (yaml/json) or URL")
	cmd.Flags().StringVar(&p.Dialect, "dialect", "", "Force the OpenAPI dialect: 3.0 or 3.1")
	cmd.Flags().StringVarP(&p.Out, "out", "o", "", "Write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
