// Package cli implements invoicectl, which edits invoice snapshot files from the command line.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/application/editor"
	"github.com/garyjia/invoice-editor/internal/config"
	"github.com/garyjia/invoice-editor/internal/storage"
	"github.com/garyjia/invoice-editor/pkg/utils"
)

var version = "1.0.0"

type options struct {
	configPath string
	outputDir  string
	force      bool
	verbose    bool
}

type app struct {
	opts   options
	in     *bufio.Reader
	out    io.Writer
	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the invoicectl command tree reading answers from in and writing to out and errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		in:     bufio.NewReader(in),
		out:    out,
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "invoicectl",
		Short: "Edit invoice snapshot files",
		Long: `invoicectl edits invoice snapshots, the JSON files the invoice editor
exports and imports, and renders them as PDF, spreadsheet or PNG preview.

Every editing command loads the snapshot, applies one change, re-derives
the totals and writes the snapshot back in place.`,
		Example: `  invoicectl new --title "Invoice 42"
  invoicectl set invoice.json clientName "Client AS"
  invoicectl line set invoice.json 0 quantity 3
  invoicectl totals invoice.json
  invoicectl render invoice.json --format pdf`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = utils.NewCLILogger(a.opts.verbose)

			cfg, err := config.Load(a.opts.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.opts.outputDir == "" {
				a.opts.outputDir = cfg.Render.OutputDir
			}
			return nil
		},
	}

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "config file (defaults and INVOICE_* environment when empty)")
	flags.StringVarP(&a.opts.outputDir, "output-dir", "d", "", "directory for new snapshots and rendered documents")
	flags.BoolVarP(&a.opts.force, "force", "f", false, "overwrite existing files instead of numbering new ones")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.newCmd(),
		a.fieldsCmd(),
		a.setCmd(),
		a.lineCmd(),
		a.totalsCmd(),
		a.renderCmd(),
		a.resetCmd(),
	)
	return root
}

// Execute runs invoicectl on the process streams.
func Execute() {
	if err := NewRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// open loads the snapshot at path into a new session.
func (a *app) open(cmd *cobra.Command, path string) (*editor.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	session := editor.NewSession(nil, a.logger)
	if _, err := session.Import(cmd.Context(), f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return session, nil
}

// save writes the session's snapshot back to path.
func (a *app) save(session *editor.Session, path string) error {
	data, _, err := session.Export()
	if err != nil {
		return err
	}
	store := storage.NewLocalFileStorage(filepath.Dir(path), true, a.logger)
	_, err = store.Save(filepath.Base(path), data)
	return err
}

// output stores a new file named name in the output directory and reports where it went.
func (a *app) output(name string, data []byte) error {
	store := storage.NewLocalFileStorage(a.opts.outputDir, a.opts.force, a.logger)
	path, err := store.Save(name, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, path)
	return nil
}

// confirm asks prompt on out and reads a yes/no answer. Anything but yes declines.
func (a *app) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
