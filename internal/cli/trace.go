package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/vecprep/internal/plugin/executor"
)

func newTraceCmd(opts *globalOptions) *cobra.Command {
	pf := newPrepareFlags()
	var (
		pluginPath string
		outDir     string
		pluginArgs map[string]string
		dryRun     bool
		showFlags  bool
	)

	cmd := &cobra.Command{
		Use:   "trace [image]",
		Short: "Segment an image and hand the regions to a tracer plugin",
		Long: `Segment an image and hand the regions to a tracer plugin.

The plugin is an executable that answers --plugin-info with its metadata. It
either speaks the go-plugin RPC protocol or reads the JSON trace request (see
"vecprep segment --format json") on stdin. JSON plugins write either a JSON
object mapping file names to base64 content, or a single SVG document, to
stdout. Files are written under --out-dir; names that would escape it are
rejected.

The plugin defaults to $VECPREP_TRACER.`,
		Example: `  vecprep trace logo.png -c 4 --plugin ./vecprep-potrace --out-dir out/
  vecprep trace logo.png --plugin ./vecprep-potrace --arg turdsize=4 --arg precision=2
  vecprep trace --plugin ./vecprep-potrace --show-flags`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pluginPath == "" {
				pluginPath = opts.config.TracerPath
			}
			if pluginPath == "" {
				return fmt.Errorf("no tracer plugin: use --plugin or set VECPREP_TRACER")
			}

			exec, err := executor.New(cmd.Context(), pluginPath, opts.logger.Named("tracer"))
			if err != nil {
				return err
			}
			defer exec.Close()

			if showFlags {
				flags, err := exec.GetFlagHelp()
				if err != nil {
					return err
				}
				info := exec.Info()
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", info.Name, info.Version, exec.Protocol())
				table := NewTable([]string{"FLAG", "TYPE", "DEFAULT", "DESCRIPTION"})
				table.SetColumnMaxWidth(3, 60)
				for _, f := range flags {
					table.AddRow([]string{f.Name, f.Type, f.Default, f.Description})
				}
				fmt.Fprint(cmd.OutOrStdout(), table.Render())
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("an image is required")
			}
			prepared, err := pf.prepare(cmd, opts, args[0])
			if err != nil {
				return err
			}

			req := executor.BuildRequest(prepared, pluginArgs, dryRun)
			opts.logger.Debug("tracing", "plugin", exec.Info().Name, "regions", len(req.Regions))

			files, err := exec.Trace(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("tracer %s failed: %w", exec.Info().Name, err)
			}
			if dryRun {
				for name, data := range files {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", name, len(data))
				}
				return nil
			}

			written, err := executor.WriteFiles(outDir, files)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVarP(&pluginPath, "plugin", "p", "", "tracer plugin executable (default: $VECPREP_TRACER)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for the traced files")
	cmd.Flags().StringToStringVar(&pluginArgs, "arg", nil, "plugin argument as key=value (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "ask the plugin to plan without producing output")
	cmd.Flags().BoolVar(&showFlags, "show-flags", false, "list the plugin's arguments and exit")

	return cmd
}
