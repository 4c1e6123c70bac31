package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/jovyan/kernelnav/pkg/config"
	"github.com/jovyan/kernelnav/pkg/envpath"
	"github.com/jovyan/kernelnav/pkg/gateway"
	"github.com/jovyan/kernelnav/pkg/kernelspec"
	"github.com/jovyan/kernelnav/pkg/runtime/logging"
	"github.com/jovyan/kernelnav/pkg/specwatch"
	"github.com/jovyan/kernelnav/pkg/version"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "kernelnav",
		Short: "Kernel environment path resolution",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.kernelnav/config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(resolveCmd())
	root.AddCommand(listCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if p := config.DefaultConfigPath(); fileExists(p) {
			path = p
		}
	}
	return config.LoadConfig(path)
}

func buildRegistry(cfg *config.Config) *kernelspec.Registry {
	return kernelspec.NewRegistry(
		kernelspec.NewStandardProvider(cfg.Kernels.ExtraPaths...),
		&kernelspec.CondaProvider{Root: cfg.Kernels.CondaRoot},
	)
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the resolution gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Gateway.Address = addr
			}

			logger := logging.New(cfg.Log.Level, cfg.Log.Format)

			registry := buildRegistry(cfg)
			registry.SetLogger(logger)
			resolver := envpath.NewResolver(nil)
			resolver.SetLogger(logger)

			gw := gateway.NewServer(cfg.Gateway.Address, registry, resolver,
				gateway.AllowlistAuthorizer{Allowed: cfg.Gateway.AllowedAddrs})
			gw.SetLogger(logger)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if cfg.Kernels.Watch {
				watcher := specwatch.New(append(kernelspec.DataDirs(), cfg.Kernels.ExtraPaths...))
				watcher.SetLogger(logger)
				gw.SetEventSource(watcher)
				go func() { _ = watcher.Start(ctx) }()
			}

			if err := gw.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	return cmd
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <display-name>",
		Short: "Resolve the environment path behind a kernel display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			spec, err := buildRegistry(cfg).Snapshot().FindByDisplayName(args[0])
			if err != nil {
				return err
			}

			resolver := envpath.NewResolver(nil)
			resp := gateway.KernelPathResponse{
				KernelName:  spec.Name,
				DisplayName: args[0],
				ResourceDir: spec.ResourceDir,
			}
			if exe := spec.ExecutablePath(); exe != "" {
				resp.ExecutablePath = &exe
			}
			if root, ok := resolver.Resolve(spec.ExecutablePath(), spec.ResourceDir); ok {
				resp.EnvPath = &root
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed kernels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			snap := buildRegistry(cfg).Snapshot()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDISPLAY NAME\tRESOURCE DIR")
			for _, spec := range snap.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", spec.Name, spec.DisplayName, spec.ResourceDir)
			}
			return w.Flush()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
