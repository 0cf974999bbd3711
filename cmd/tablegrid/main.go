// Package main provides the CLI entry point for tablegrid.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/javajack/tablegrid"
	"github.com/javajack/tablegrid/sqlsource"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	sheetName  string
	dataPath   string
	dbPath     string
	query      string
	sourceID   string
	maxRows    int
	debug      bool
	rowQuery   tablegrid.RowQuery
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tablegrid",
		Short: "Inspect, convert and fill label table layouts",
		Long: `tablegrid works with table layouts saved as JSON snapshots or XLSX sheets.
It can describe and validate a layout, convert between the two formats and
fill a layout from JSON or SQLite data.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Print the layout trace to stderr")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "Sheet to read or write (default: first sheet)")

	describeCmd := &cobra.Command{
		Use:   "describe [layout]",
		Short: "Print a summary of a layout",
		Args:  cobra.ExactArgs(1),
		RunE:  runDescribe,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [layout]",
		Short: "Check merges, sizes, expressions and bindings",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [layout]",
		Short: "Convert a layout between JSON and XLSX",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvert,
	}
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (.json or .xlsx)")
	_ = convertCmd.MarkFlagRequired("output")

	fillCmd := &cobra.Command{
		Use:   "fill [layout]",
		Short: "Fill a layout with data and write one sheet per page",
		Args:  cobra.ExactArgs(1),
		RunE:  runFill,
	}
	fillCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output .xlsx file")
	fillCmd.Flags().StringVar(&dataPath, "data", "", "JSON file holding an array of row objects")
	fillCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file")
	fillCmd.Flags().StringVar(&query, "query", "", "SQL query producing the rows (default: all rows of the data table)")
	fillCmd.Flags().StringVar(&sourceID, "source", "", "Data source id (default: the layout's bound id or \"data\")")
	fillCmd.Flags().IntVar(&maxRows, "max-rows", 0, "Maximum rows to read (0 = all)")
	fillCmd.Flags().StringVar(&rowQuery.Select, "select", "", "Only fill rows for which this expression is true")
	fillCmd.Flags().StringVar(&rowQuery.OrderBy, "order-by", "", "Sort rows, e.g. \"name ASC, qty DESC\"")
	fillCmd.Flags().StringVar(&rowQuery.GroupBy, "group-by", "", "Start a new page whenever this field changes")
	_ = fillCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(describeCmd, validateCmd, convertCmd, fillCmd)
	return rootCmd
}

func runDescribe(cmd *cobra.Command, args []string) error {
	tbl, err := loadTable(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(filepath.Base(args[0])))
	fmt.Fprint(out, tbl.Describe())
	printTrace(cmd, tbl)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	tbl, err := loadTable(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	issues := tbl.Validate()
	if len(issues) == 0 {
		fmt.Fprintln(out, okStyle.Render("OK")+" "+args[0])
		return nil
	}
	for _, is := range issues {
		style := warnStyle
		if is.Severity == tablegrid.SeverityError {
			style = errStyle
		}
		fmt.Fprintln(out, style.Render(is.String()))
	}
	if tablegrid.HasErrors(issues) {
		return fmt.Errorf("%s: %d issue(s)", args[0], len(issues))
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	tbl, err := loadTable(args[0])
	if err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".xlsx":
		err = tbl.WriteXLSX(f, sheetName)
	case ".json":
		err = tbl.WriteJSON(f)
	default:
		return fmt.Errorf("unsupported output format: %s", outputPath)
	}
	if err != nil {
		return err
	}
	printTrace(cmd, tbl)
	return f.Close()
}

func runFill(cmd *cobra.Command, args []string) error {
	tbl, err := loadTable(args[0])
	if err != nil {
		return err
	}
	src, err := openSource(cmd.Context())
	if err != nil {
		return err
	}
	defer src.Close()

	id := sourceID
	if id == "" {
		id = tbl.DataSourceID()
	}
	if id == "" {
		id = "data"
	}
	if !tbl.BindDataSource(id, src) {
		return errors.New("bind data source: table is busy")
	}
	if len(tbl.ColumnMapping()) == 0 {
		return fmt.Errorf("%s has no column mappings", args[0])
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer f.Close()
	if err := tbl.FillXLSX(cmd.Context(), f, tablegrid.FillOptions{RowQuery: rowQuery, MaxRows: maxRows}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("wrote")+" "+outputPath)
	printTrace(cmd, tbl)
	return f.Close()
}

// openSource builds the row source from --db/--query or --data.
func openSource(ctx context.Context) (*sqlsource.Source, error) {
	switch {
	case dbPath != "":
		if query == "" {
			return nil, errors.New("--query is required with --db")
		}
		return sqlsource.Open(dbPath, query)
	case dataPath != "":
		raw, err := os.ReadFile(dataPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dataPath, err)
		}
		var rows []tablegrid.Row
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("parse %s: %w", dataPath, err)
		}
		q := query
		if q == "" {
			q = `SELECT * FROM "data"`
		}
		src, err := sqlsource.Open(":memory:", q)
		if err != nil {
			return nil, err
		}
		if err := sqlsource.Load(ctx, src.DB(), "data", rows); err != nil {
			src.Close()
			return nil, err
		}
		return src, nil
	default:
		return nil, errors.New("one of --data or --db is required")
	}
}

// loadTable reads a layout from a .json snapshot or an .xlsx sheet.
func loadTable(path string) (*tablegrid.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readTable(f, path)
}

func readTable(r io.Reader, path string) (*tablegrid.Table, error) {
	opts := []tablegrid.Option{tablegrid.WithDebug(debug)}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return tablegrid.ReadXLSX(r, sheetName, opts...)
	case ".json":
		return tablegrid.ReadJSON(r, opts...)
	default:
		return nil, fmt.Errorf("unsupported layout format: %s", path)
	}
}

func printTrace(cmd *cobra.Command, tbl *tablegrid.Table) {
	if debug {
		fmt.Fprint(cmd.ErrOrStderr(), tbl.Trace())
	}
}
