package cli

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/application/editor"
	"github.com/garyjia/invoice-editor/internal/domain/entity"
	"github.com/garyjia/invoice-editor/internal/domain/invoice"
	"github.com/garyjia/invoice-editor/internal/domain/totals"
	"github.com/garyjia/invoice-editor/internal/render"
)

func (a *app) newCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Write the default invoice as a new snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := editor.NewSession(nil, a.logger)
			if title != "" {
				session.SetField("title", title)
			}

			data, filename, err := session.Export()
			if err != nil {
				return err
			}
			return a.output(filename, data)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "invoice title, also used as the file name")
	return cmd
}

func (a *app) fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the field names accepted by set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range invoice.FieldNames() {
				fmt.Fprintln(a.out, name)
			}
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <snapshot> <field> <value>",
		Short: "Set one invoice field",
		Long: `Set one field of the invoice. logoWidth takes a number, every other
field takes text. Run "invoicectl fields" for the list of names.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, field, raw := args[0], args[1], args[2]

			var value interface{} = raw
			switch {
			case field == invoice.FieldLogoWidth:
				width, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("%s must be a number: %w", field, err)
				}
				value = width
			case !invoice.IsStringField(field):
				return fmt.Errorf("unknown field %q (have %s)", field, strings.Join(invoice.FieldNames(), ", "))
			}

			session, err := a.open(cmd, path)
			if err != nil {
				return err
			}
			if !session.SetField(field, value) {
				return fmt.Errorf("field %q was not changed", field)
			}
			return a.save(session, path)
		},
	}
}

func (a *app) lineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "line",
		Short: "Add, edit or remove product lines",
	}

	add := &cobra.Command{
		Use:   "add <snapshot>",
		Short: "Append an empty product line and print its index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			index := session.AddLine()
			if err := a.save(session, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, index)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <snapshot> <index> <description|quantity|rate> <value>",
		Short: "Set one field of a product line",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line index %q", args[1])
			}
			session, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			if !session.UpdateLine(index, args[2], args[3]) {
				return fmt.Errorf("no line %d or unknown line field %q", index, args[2])
			}
			return a.save(session, args[0])
		},
	}

	remove := &cobra.Command{
		Use:     "remove <snapshot> <index>",
		Aliases: []string{"rm"},
		Short:   "Remove a product line",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line index %q", args[1])
			}
			session, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			if !session.RemoveLine(index) {
				return fmt.Errorf("no line %d", index)
			}
			return a.save(session, args[0])
		},
	}

	cmd.AddCommand(add, set, remove)
	return cmd
}

func (a *app) totalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals <snapshot>",
		Short: "Print the product lines and derived totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			inv, t := session.State()
			return printTotals(a.out, inv, t)
		},
	}
}

func printTotals(w io.Writer, inv entity.Invoice, t totals.Totals) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\t%s\t%s\t%s\t%s\t\n",
		inv.ProductLineDescription, inv.ProductLineQuantity, inv.ProductLineQuantityRate, inv.ProductLineQuantityAmount)

	amounts := totals.FormatLineAmounts(inv.ProductLines)
	for i, line := range inv.ProductLines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", i, line.Description, line.Quantity, line.Rate, amounts[i])
	}

	f := t.Format()
	fmt.Fprintf(tw, "\t\t\t%s\t%s\t\n", inv.SubTotalLabel, f.SubTotal)
	fmt.Fprintf(tw, "\t\t\t%s\t%s\t\n", inv.TaxLabel, f.SaleTax)
	fmt.Fprintf(tw, "\t\t\t%s\t%s %s\t\n", inv.TotalLabel, inv.Currency, f.GrandTotal)
	return tw.Flush()
}

func (a *app) renderCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "render <snapshot>",
		Short: "Render the invoice as a PDF, spreadsheet or PNG preview",
		Example: `  invoicectl render invoice.json
  invoicectl render invoice.json --format xlsx -d exports
  invoicectl render invoice.json --format png -o preview.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := render.NewFormats(render.Options{
				FontFamily: a.cfg.Render.FontFamily,
				PreviewDPI: a.cfg.Render.PreviewDPI,
			}, a.logger)
			r, err := formats.Get(format)
			if err != nil {
				return err
			}

			session, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			inv := session.Invoice()

			var buf bytes.Buffer
			if err := r.Render(&buf, inv); err != nil {
				return err
			}
			a.logger.Debug("Document rendered",
				zap.String("format", format),
				zap.Int("size", buf.Len()))

			if output != "" {
				a.opts.outputDir, a.opts.force = filepath.Dir(output), true
				return a.output(filepath.Base(output), buf.Bytes())
			}
			return a.output(render.FileName(inv.Title, r), buf.Bytes())
		},
	}

	cmd.Flags().StringVar(&format, "format", "pdf", "document format: pdf, xlsx or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of the output directory")
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset <snapshot>",
		Short: "Replace the snapshot with the default invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}

			confirm := editor.ConfirmFunc(a.confirm)
			if yes {
				confirm = func(string) bool { return true }
			}
			if !session.Reset(confirm) {
				fmt.Fprintln(a.out, "Reset cancelled")
				return nil
			}
			return a.save(session, args[0])
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
