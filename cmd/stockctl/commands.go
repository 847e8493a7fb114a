package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"stockscan/internal/domain/model"
	"stockscan/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func addFilterFlags(cmd *cobra.Command, f *model.Filter) {
	cmd.Flags().StringVar(&f.Location, "location", "", "Only rows at this location")
	cmd.Flags().StringVar(&f.Unit, "unit", "", "Only rows with this unit")
}

func newSummaryCmd(a *app) *cobra.Command {
	var f model.Filter
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, groupings and top items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.reports.Summary(cmd.Context(), f)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	return cmd
}

func printSummary(out io.Writer, s model.Summary) {
	fmt.Fprintf(out, "Products:  %d\n", s.Products)
	fmt.Fprintf(out, "Locations: %d\n", s.Locations)
	fmt.Fprintf(out, "Units:     %d\n", s.Units)
	fmt.Fprintf(out, "Total in:  %s\n", s.TotalIn)
	fmt.Fprintf(out, "Total out: %s\n", s.TotalOut)
	fmt.Fprintf(out, "Total Qty: %s\n", s.TotalQty)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nQty by location\t")
	for _, g := range s.QtyByLocation {
		fmt.Fprintf(tw, "  %s\t%s\n", g.Key, g.Qty)
	}
	fmt.Fprintln(tw, "\nQty by unit\t")
	for _, g := range s.QtyByUnit {
		fmt.Fprintf(tw, "  %s\t%s\n", g.Key, g.Qty)
	}
	fmt.Fprintln(tw, "\nTop items by Qty\t")
	for _, it := range s.TopByQty {
		fmt.Fprintf(tw, "  %s\t%s\n", it.Description, nullString(it.Qty))
	}
	_ = tw.Flush()
}

func newListCmd(a *app) *cobra.Command {
	var f model.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stock rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.reports.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	return cmd
}

func printRecords(out io.Writer, records []model.StockRecord) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(append(append([]string{}, model.StockColumns...), model.ColCurrentBalance), "\t"))
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StockCode, r.Description, r.Barcode,
			nullString(r.QuantityIn), nullString(r.QuantityOut),
			r.Unit, nullString(r.Qty), r.Location, r.CurrentBalance)
	}
	_ = tw.Flush()
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}

func newExportCmd(a *app) *cobra.Command {
	var f model.Filter
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the (filtered) table to an xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.reports.Export(cmd.Context(), f)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = file.Name
			}
			if err := os.WriteFile(outPath, file.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: generated name)")
	return cmd
}

func newLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the operation log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.inventory.Log(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(model.LogColumns, "\t"))
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Format(model.LogTimeLayout), e.Barcode, e.Description, e.Operation, e.Quantity)
			}
			return tw.Flush()
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "move <code> <IN|OUT> <quantity>",
		Short: "Record a stock movement",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := model.ParseOperation(args[1])
			if err != nil {
				return err
			}
			qty, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}

			matches, err := a.inventory.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			confirmed := yes
			if len(matches) > 0 && !yes {
				r := matches[0]
				confirmed, err = confirm(cmd, fmt.Sprintf("%s %s of %s (%s), balance %s?", op, qty, r.Barcode, r.Description, r.CurrentBalance))
				if err != nil {
					return err
				}
			}

			res, err := a.inventory.ProcessMovement(cmd.Context(), usecase.MovementInput{
				Code:      args[0],
				Operation: op,
				Quantity:  qty,
				Confirmed: confirmed,
			})
			return report(cmd, res, err)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without asking")
	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	var yes bool
	var in usecase.CreateInput
	var qty string
	cmd := &cobra.Command{
		Use:   "create <code>",
		Short: "Add a record for an unknown barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Code = args[0]
			q, err := decimal.NewFromString(qty)
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			in.Quantity = q

			matches, err := a.inventory.Lookup(cmd.Context(), in.Code)
			if err != nil {
				return err
			}
			in.Confirmed = yes
			if len(matches) == 0 && !yes {
				in.Confirmed, err = confirm(cmd, fmt.Sprintf("create %s (%s), Qty %s at %s?", in.Code, in.Description, in.Quantity, in.Location))
				if err != nil {
					return err
				}
			}

			res, err := a.inventory.CreateRecord(cmd.Context(), in)
			return report(cmd, res, err)
		},
	}
	cmd.Flags().StringVar(&in.StockCode, "stock-code", "", "Stock Code")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.Unit, "unit", "", "Unit")
	cmd.Flags().StringVar(&qty, "qty", "0", "Initial Qty")
	cmd.Flags().StringVar(&in.Location, "location", "", "LOCATION")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without asking")
	return cmd
}

// confirm asks on stdin; anything but y/yes is a no.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func report(cmd *cobra.Command, res usecase.Result, err error) error {
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch res.Outcome {
	case usecase.OutcomeCommitted:
		fmt.Fprintf(out, "committed: %s %s %s, balance %s\n",
			res.Entry.Operation, res.Entry.Quantity, res.Code, res.Record.CurrentBalance)
	case usecase.OutcomeConflict:
		return fmt.Errorf("barcode %s already exists", res.Code)
	case usecase.OutcomeNotFound:
		return fmt.Errorf("barcode %s not found", res.Code)
	case usecase.OutcomeIgnored:
		return fmt.Errorf("empty barcode")
	default:
		fmt.Fprintf(out, "%s: %s\n", res.Outcome, res.Code)
	}
	return nil
}
