package cli

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tanakamasayuki/kicad-diff-visualizer/internal/config"
	"github.com/tanakamasayuki/kicad-diff-visualizer/internal/diff"
	"github.com/tanakamasayuki/kicad-diff-visualizer/internal/project"
	"github.com/tanakamasayuki/kicad-diff-visualizer/internal/server"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/cache"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/render"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/vcs"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	conf     string // config file path ("" means kidivis.toml if present)
	host     string // listen address, overrides config when set
	port     int    // listen port, overrides config when set
	logLevel string // log level, overrides config when set
	scratch  string // scratch directory; empty means a fresh temp dir
	layers   string // comma-separated board layers, overrides config when set
}

// serveCommand creates the serve command, the main entry point: it starts
// the review web server for a KiCad project.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [project-dir | design-files...]",
		Short: "Start the diff review web server",
		Long: `Serve starts a local web server that shows visual diffs between two
versions of the project's board or schematic. Versions come from the git
working tree, git history or KiCad backup archives.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.conf, "conf", "", "path to the kidivis.toml config file")
	cmd.Flags().StringVar(&opts.host, "host", "", "address to listen on (default from config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "port to listen on (default from config)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.scratch, "scratch-dir", "",
		"directory for render artifacts (default: fresh temp dir; pass 'kidivis cache path' output to persist)")
	cmd.Flags().StringVar(&opts.layers, "layers", "", "comma-separated board layers to diff")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, args []string, opts *serveOpts) error {
	cfg, err := config.Load(opts.conf)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = opts.port
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Server.LogLevel = opts.logLevel
	}
	if cmd.Flags().Changed("layers") {
		cfg.Common.Layers = strings.Split(opts.layers, ",")
	}

	// --verbose wins over the configured level.
	if v := cmd.Root().PersistentFlags().Lookup("verbose"); v == nil || v.Value.String() != "true" {
		if level, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
			c.SetLogLevel(level)
		} else {
			c.Logger.Warn("unknown log level, keeping current", "level", cfg.Server.LogLevel)
		}
	}

	proj, err := project.Discover(args)
	if err != nil {
		return err
	}

	scratch := opts.scratch
	if scratch == "" {
		scratch, err = os.MkdirTemp("", appName+"-")
		if err != nil {
			return fmt.Errorf("create scratch directory: %w", err)
		}
		defer os.RemoveAll(scratch)
	} else if err := os.MkdirAll(scratch, 0755); err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}

	git, err := vcs.NewGit(proj.Dir)
	if err != nil {
		return err
	}

	var backups *vcs.Backups
	if proj.Pro != "" {
		if backups, err = vcs.NewBackups(proj.Dir); err != nil {
			return err
		}
	} else {
		c.Logger.Debug("no project descriptor, backup versions disabled")
	}

	store := cache.NewStore()
	repo := vcs.NewRepo(git, backups, store, c.Logger)
	renderer := render.New(cfg.Common.KicadCLI, c.Logger)
	orch := diff.New(proj, repo, renderer, store, scratch, cfg.Common.Layers, c.Logger)
	srv := server.New(orch, proj, c.Logger)

	printInfo("Project: %s", proj.Dir)
	if proj.HasPCB() {
		printDetail("board      %s", proj.PCB)
	}
	if proj.HasSch() {
		printDetail("schematic  %s", proj.Sch)
	}
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	printInfo("Review UI: http://%s/", addr)

	return srv.Run(withLogger(cmd.Context(), c.Logger), addr)
}
