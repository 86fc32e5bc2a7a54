package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/dagpipe/bootstrap"
	"github.com/kbukum/dagpipe/config"
	"github.com/kbukum/dagpipe/dag"
	"github.com/kbukum/dagpipe/version"
)

type rootFlags struct {
	configFile string
	envFile    string
	dirs       []string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "dagpipe",
		Short:         "Validate and inspect lazy task pipelines",
		Long:          "dagpipe loads YAML pipeline definitions, checks that they build into\nan acyclic pipeline and renders their execution order.",
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&flags.configFile, "config", "", "Config file (default: search config.yml)")
	f.StringVar(&flags.envFile, "env-file", "", ".env file (default: search .env)")
	f.StringSliceVar(&flags.dirs, "dir", nil, "Extra definition directory (repeatable)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Log at debug level")

	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newPlanCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// newApp loads the dagpipe config and builds the runtime around it. Logs go
// to stderr so rendered output stays clean.
func newApp(flags *rootFlags) (*bootstrap.App[*config.Config], error) {
	var opts []config.LoaderOption
	if flags.configFile != "" {
		opts = append(opts, config.WithConfigFile(flags.configFile))
	}
	if flags.envFile != "" {
		opts = append(opts, config.WithEnvFile(flags.envFile))
	}

	cfg := &config.Config{}
	if err := config.LoadConfig("dagpipe", cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = "dagpipe"
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	switch {
	case flags.verbose:
		cfg.Logging.Level = "debug"
	case cfg.Logging.Level == "":
		cfg.Logging.Level = "warn"
	}
	cfg.Engine.DefinitionDirs = append(cfg.Engine.DefinitionDirs, flags.dirs...)

	return bootstrap.NewApp(cfg)
}

// loadDefinition treats arg as a file when it has a YAML extension or
// exists on disk, and as a definition name otherwise.
func loadDefinition(loader dag.Loader, arg string) (*dag.Definition, error) {
	ext := strings.ToLower(filepath.Ext(arg))
	if ext == ".yaml" || ext == ".yml" {
		return dag.LoadDefinition(arg)
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return dag.LoadDefinition(arg)
	}
	return loader.Load(arg)
}

// outline builds def against placeholder implementations.
func outline(loader dag.Loader, def *dag.Definition) (*dag.Pipeline, error) {
	return dag.Build(def, dag.Outline(def, loader), loader)
}
