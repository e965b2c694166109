package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aether/internal/canvas"
	"aether/internal/expand"
	"aether/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

var errNotATerminal = errors.New("aether needs an interactive terminal; use `aether list` or `aether export` instead")

type globalFlags struct {
	configPath string
	dataDir    string
	logFile    string
	debug      bool
}

// app holds what every command needs: config, logger and the open store.
type app struct {
	cfg    *Config
	logger *zap.Logger
	slots  *store.Slots
}

func openApp(flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}

	logger, err := newLogger(cfg, flags.debug)
	if err != nil {
		return nil, err
	}
	slots, err := store.Open(store.Config{Dir: cfg.DataDir, Logger: logger.Named("store")})
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Info("aether starting", zap.String("data_dir", cfg.DataDir), zap.String("model", cfg.AI.Model))
	return &app{cfg: cfg, logger: logger, slots: slots}, nil
}

func (a *app) Close() {
	if err := a.slots.Close(); err != nil {
		a.logger.Warn("closing store failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// expander returns the AI client, or nil when no credentials are set.
func (a *app) expander() canvas.Expander {
	client, err := expand.New(a.cfg.expandConfig(), a.logger.Named("expand"))
	if err != nil {
		a.logger.Warn("AI expansion disabled", zap.Error(err))
		return nil
	}
	return client
}

// controller loads the saved board. The theme comes from the store when one
// was saved and from the config otherwise.
func (a *app) controller(viewport canvas.Size, exp canvas.Expander) *canvas.Controller {
	nodes, ok := a.slots.LoadNodes()
	if !ok {
		a.logger.Info("no saved board, starting fresh")
	}
	theme, saved := a.slots.StoredTheme()
	if !saved {
		theme = canvas.ParseTheme(a.cfg.Theme)
	}
	return canvas.NewController(canvas.Options{
		Nodes:     nodes,
		Viewport:  viewport,
		Theme:     theme,
		Expander:  exp,
		Persister: a.slots,
		Logger:    a.logger.Named("canvas"),
	})
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "aether",
		Short:        "An infinite canvas for ideas, in your terminal",
		Long:         "Aether is a pannable, zoomable board of idea cards. Any card can be\nexpanded by a language model into a fan of follow-up ideas.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fd := os.Stdout.Fd()
			if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				return errNotATerminal
			}
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return runTUI(a)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.aether/config.yaml)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "board database directory (overrides config)")
	pf.StringVar(&flags.logFile, "log-file", "", "log file (overrides config)")
	pf.BoolVar(&flags.debug, "debug", false, "log at debug level")

	root.AddCommand(
		newExportCmd(flags),
		newExpandCmd(flags),
		newListCmd(flags),
	)
	return root
}

func runTUI(a *app) error {
	ctrl := a.controller(canvas.Size{}, a.expander())
	m := newModel(ctrl, a.logger.Named("tui"), a.cfg.AI.Timeout)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		a.logger.Error("tui exited with error", zap.Error(err))
		return err
	}
	return nil
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.png|file.txt>",
		Short: "Render the saved board to a PNG image or a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl := a.controller(canvas.Size{}, nil)
			nodes := ctrl.Nodes()
			if err := exportBoard(args[0], nodes, ctrl.Theme()); err != nil {
				return err
			}
			a.logger.Info("board exported", zap.String("path", args[0]), zap.Int("nodes", len(nodes)))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d ideas to %s\n", len(nodes), args[0])
			return nil
		},
	}
}

func newExpandCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <node-id>",
		Short: "Expand one saved idea into branches without opening the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			exp := a.expander()
			if exp == nil {
				return errNoAPIKey
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.AI.Timeout)
			defer cancel()
			return expandOne(ctx, cmd.OutOrStdout(), a.controller(canvas.Size{}, exp), args[0])
		},
	}
}

// expandOne runs a single expansion on ctrl and prints the new ideas.
func expandOne(ctx context.Context, out io.Writer, ctrl *canvas.Controller, id string) error {
	req, ok := ctrl.BeginExpand(id)
	if !ok {
		return fmt.Errorf("no idea with id %q", id)
	}
	exp := ctrl.Expander()
	if exp == nil {
		ctrl.FinishExpand(req, nil, errNoAPIKey)
		return errNoAPIKey
	}
	branches, err := exp.Expand(ctx, req.Source.Title, req.Source.Description)
	children := ctrl.FinishExpand(req, branches, err)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		fmt.Fprintf(out, "No branches suggested for %q\n", req.Source.Title)
		return nil
	}
	fmt.Fprintf(out, "%s\n", req.Source.Title)
	for _, c := range children {
		fmt.Fprintf(out, "  ↳ %s  %s\n", c.ID, c.Title)
	}
	return nil
}

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the saved ideas as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			nodes, ok := a.slots.LoadNodes()
			if !ok || len(nodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved ideas.")
				return nil
			}
			printTree(cmd.OutOrStdout(), nodes)
			return nil
		},
	}
}

// printTree writes one line per node, children indented under parents.
func printTree(out io.Writer, nodes []canvas.Node) {
	mm := newMindMap(nodes)
	mm.walk(func(n canvas.Node, depth int) {
		title := n.Title
		if title == "" {
			title = "Untitled"
		}
		line := fmt.Sprintf("%s%s  %s", strings.Repeat("  ", depth), n.ID, title)
		if n.ParentID != "" && mm.parentLabel(n) == removedParentLabel {
			line += "  (parent removed)"
		}
		if n.IsCollapsed {
			line += "  [collapsed]"
		}
		fmt.Fprintln(out, line)
	})
}
