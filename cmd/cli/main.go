package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gotally/adapters/coercer"
	"gotally/app"
	"gotally/domain/aggregate"
	"gotally/domain/dataset"
	dfilter "gotally/domain/filter"
	"gotally/domain/selection"
	"gotally/internal"
	"gotally/internal/config"
	"gotally/internal/container"
	"gotally/internal/session"
	"gotally/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cli carries the wiring shared by every command
type cli struct {
	container *container.Container
	session   *session.Session
}

func main() {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "gotally-cli",
		Short: "gotally CLI for loading spreadsheets and computing dashboard metrics",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.container == nil {
				return nil
			}
			return c.container.Close()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newLoadCmd(c),
		newSheetsCmd(c),
		newConfigCmd(c),
		newDashboardCmd(c),
		newAnalyzeCmd(c),
		newQueryCmd(c),
		newDescribeCmd(c),
		newStoreCmd(c),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// open builds the container and restores the saved dataset into a fresh session
func (c *cli) open(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewLoggerWithWriter(os.Stderr, internal.ParseLogLevel(cfg.Log.Level))
	internal.SetDefault(logger)

	c.container, err = container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	c.session = session.New()
	if _, err := c.container.Datasets.Restore(ctx, c.session); err != nil {
		return err
	}
	return nil
}

func newLoadCmd(c *cli) *cobra.Command {
	var sheet string
	var headerRow int

	cmd := &cobra.Command{
		Use:   "load [file]",
		Short: "Load a spreadsheet and save it as the working dataset",
		Long: `Load an .xlsx, .xls or .csv file, parse it with the given header row and
persist it so later commands and the web server pick it up.

Example: gotally-cli load ventas.xlsx --sheet Hoja1 --header-row 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, err := readUpload(args[0])
			if err != nil {
				return err
			}
			if sheet == "" {
				sheet = c.container.Config.Data.DefaultSheet
			}
			result, err := c.container.Datasets.Load(cmd.Context(), c.session, upload, ports.LoadOptions{
				SheetName: sheet,
				HeaderRow: headerRow,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %s\n", result)
			return printJSON(result.Preview)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (defaults to the first sheet)")
	cmd.Flags().IntVar(&headerRow, "header-row", 1, "1-based row holding the column names")
	return cmd
}

func newSheetsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets [file]",
		Short: "List the sheets of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, err := readUpload(args[0])
			if err != nil {
				return err
			}
			names, err := c.container.Datasets.ListSheets(cmd.Context(), upload)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the dashboard field selection",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the saved selection and available columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.container.Configuration.View(cmd.Context(), c.session)
			if err != nil {
				return err
			}
			return printJSON(view)
		},
	}

	var sums, counts, averages []string
	var noSave bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace the selection and save it",
		Long: `Replace the sum, count and average field lists.

Example: gotally-cli config set --sum amount --count units --average amount`,
		RunE: func(cmd *cobra.Command, args []string) error {
			next := selection.Empty()
			next.SumFields = append(next.SumFields, sums...)
			next.CountFields = append(next.CountFields, counts...)
			next.AverageFields = append(next.AverageFields, averages...)

			view, err := c.container.Configuration.Configure(cmd.Context(), c.session, next, !noSave)
			if err != nil {
				return err
			}
			return printJSON(view)
		},
	}
	set.Flags().StringSliceVar(&sums, "sum", nil, "Fields to sum")
	set.Flags().StringSliceVar(&counts, "count", nil, "Fields to count")
	set.Flags().StringSliceVar(&averages, "average", nil, "Fields to average")
	set.Flags().BoolVar(&noSave, "no-save", false, "Apply without persisting")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.container.Configuration.Reset(cmd.Context(), c.session)
			if err != nil {
				return err
			}
			return printJSON(view)
		},
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}

func newStoreCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the blob store",
	}

	var prefix string
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored blob keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := c.container.Store.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
	list.Flags().StringVar(&prefix, "prefix", "", "Only list keys with this prefix")

	cmd.AddCommand(list)
	return cmd
}

func newDashboardCmd(c *cli) *cobra.Command {
	var filters []string
	var format string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Render the dashboard metrics",
		Long: `Render sum, count and average cards for the saved selection.
Up to two filters may be given as field=value1,value2, each on its own field.

Example: gotally-cli dashboard --filter region=Norte --filter category=A,B --format md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := make([]dfilter.Spec, 0, len(filters))
			for _, raw := range filters {
				spec, err := parseFilter(raw)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}
			view, err := c.container.Dashboard.Render(cmd.Context(), c.session, specs)
			if err != nil {
				return err
			}
			switch format {
			case "text":
				printDashboard(view)
				return nil
			case "json":
				return printJSON(view)
			case "md":
				fmt.Print(view.Report("Dashboard").Markdown())
				return nil
			case "html":
				_, err := os.Stdout.Write(view.Report("Dashboard").HTML())
				return err
			}
			return fmt.Errorf("unknown format %q: use text, json, md or html", format)
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as field=value1,value2 (repeatable, max 2)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, md or html")
	return cmd
}

func newAnalyzeCmd(c *cli) *cobra.Command {
	var category, numeric, filter string
	var values, ops []string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute per-category metrics",
		Long: `Compute sum, count and average of a numeric field restricted to the chosen
values of a text field, plus a grouped table.

Example: gotally-cli analyze --category region --values Norte,Sur --numeric amount --ops sum,average`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.AnalysisRequest{
				CategoricalField: category,
				NumericField:     numeric,
			}
			for _, v := range values {
				req.Values = append(req.Values, coercer.CellValue(v))
			}
			for _, raw := range ops {
				op, err := aggregate.ParseOperation(raw)
				if err != nil {
					return err
				}
				req.Operations = append(req.Operations, op)
			}
			if filter != "" {
				spec, err := parseFilter(filter)
				if err != nil {
					return err
				}
				req.Filter = spec
			}

			view, err := c.container.Analysis.Analyze(cmd.Context(), c.session, req)
			if err != nil {
				return err
			}
			return printJSON(view)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Text field to group by")
	cmd.Flags().StringSliceVar(&values, "values", nil, "Category values to include")
	cmd.Flags().StringVar(&numeric, "numeric", "", "Numeric field to aggregate")
	cmd.Flags().StringSliceVar(&ops, "ops", []string{"sum", "count", "average"}, "Operations to compute")
	cmd.Flags().StringVar(&filter, "filter", "", "Additional filter as field=value1,value2")
	return cmd
}

func newQueryCmd(c *cli) *cobra.Command {
	var field, value string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List rows where a field equals a value",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.QueryRequest{Field: field}
			if cmd.Flags().Changed("value") {
				v := coercer.CellValue(value)
				req.Value = &v
			}
			result, err := c.container.Query.Query(cmd.Context(), c.session, req)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Field to match")
	cmd.Flags().StringVar(&value, "value", "", "Value to match")
	return cmd
}

func newDescribeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Summarize the numeric columns of the working dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := c.container.Query.Describe(cmd.Context(), c.session)
			if err != nil {
				return err
			}
			return printJSON(summaries)
		},
	}
}

// parseFilter reads field=value1,value2
func parseFilter(raw string) (dfilter.Spec, error) {
	field, list, ok := strings.Cut(raw, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return dfilter.Spec{}, fmt.Errorf("invalid filter %q: expected field=value1,value2", raw)
	}
	spec := dfilter.Spec{Field: field, Values: []dataset.Value{}}
	for _, v := range strings.Split(list, ",") {
		if v = strings.TrimSpace(v); v != "" {
			spec.Values = append(spec.Values, coercer.CellValue(v))
		}
	}
	return spec, nil
}

func readUpload(path string) (ports.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ports.Upload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ports.Upload{Filename: filepath.Base(path), Data: data}, nil
}

func printDashboard(view *app.DashboardView) {
	for _, w := range view.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if view.Error != "" {
		fmt.Printf("error: %s\n", view.Error)
		return
	}
	if view.Filename != "" {
		fmt.Printf("%s (%d rows)\n", view.Filename, view.RowCount)
	}
	sections := []struct {
		title string
		cards []aggregate.Card
	}{
		{"Sums", view.Sums},
		{"Counts", view.Counts},
		{"Averages", view.Averages},
	}
	for _, section := range sections {
		if len(section.cards) == 0 {
			continue
		}
		fmt.Printf("\n%s\n", section.title)
		for _, card := range section.cards {
			if card.Failed() {
				fmt.Printf("  %-24s %s\n", card.Label, card.Error)
				continue
			}
			fmt.Printf("  %-24s %s\n", card.Label, card.Display)
		}
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
