// Copyright 2021, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command xlsxedit lists, reads and edits the cells of .xlsx files,
// and converts between CSV and .xlsx.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/xlsxedit"
	"github.com/UNO-SOFT/xlsxedit/xlsx"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		slog.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

func Main() error {
	slog.SetDefault(logger)
	opts := func() xlsx.Options { return xlsx.Options{Logger: logger} }
	envOpts := []ff.Option{ff.WithEnvVarPrefix("XLSXEDIT")}

	fsSheets := flag.NewFlagSet("sheets", flag.ContinueOnError)
	commonFlags(fsSheets)
	sheetsCmd := ffcli.Command{Name: "sheets", ShortUsage: "sheets FILE",
		ShortHelp: "list the sheets", FlagSet: fsSheets, Options: envOpts,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("sheets FILE")
			}
			wb, err := xlsx.OpenFile(args[0], opts())
			if err != nil {
				return err
			}
			for _, sh := range wb.Sheets() {
				kind := "worksheet"
				if !sh.IsWorksheet() {
					kind = "chartsheet"
				}
				fmt.Printf("%s\t%s\t%s\t%s\n", sh.Name(), kind, sh.Dimension(), sh.State())
			}
			return nil
		},
	}

	fsGet := flag.NewFlagSet("get", flag.ContinueOnError)
	commonFlags(fsGet)
	flagGetFormula := fsGet.Bool("formula", false, "print the formula instead of the value")
	getCmd := ffcli.Command{Name: "get", ShortUsage: "get [-formula] FILE SHEET ADDR...",
		ShortHelp: "print cell values", FlagSet: fsGet, Options: envOpts,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 3 {
				return usageError("get [-formula] FILE SHEET ADDR...")
			}
			wb, err := xlsx.OpenFile(args[0], opts())
			if err != nil {
				return err
			}
			sh, err := wb.Sheet(args[1])
			if err != nil {
				return err
			}
			for _, addr := range args[2:] {
				c, err := sh.Cell(addr)
				if err != nil {
					return err
				}
				if *flagGetFormula {
					fmt.Println(c.Formula())
					continue
				}
				v, err := c.Value()
				if err != nil {
					return err
				}
				fmt.Println(v)
			}
			return nil
		},
	}

	fsSet := flag.NewFlagSet("set", flag.ContinueOnError)
	commonFlags(fsSet)
	flagSetOut := fsSet.String("o", "", "output file name (default: overwrite FILE)")
	flagSetBold := fsSet.Bool("bold", false, "bold font")
	flagSetFill := fsSet.String("fill", "", "solid fill color as RRGGBB")
	flagSetNumFmt := fsSet.String("numfmt", "", "number format code")
	flagSetFormula := fsSet.Bool("formula", false, "VALUE is a formula")
	flagSetString := fsSet.Bool("string", false, "store VALUE as text even if it looks like a number")
	setCmd := ffcli.Command{Name: "set", ShortUsage: "set [flags] FILE SHEET ADDR VALUE",
		ShortHelp: "set the value and style of a cell", FlagSet: fsSet, Options: envOpts,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 4 {
				return usageError("set [flags] FILE SHEET ADDR VALUE")
			}
			wb, err := xlsx.OpenFile(args[0], opts())
			if err != nil {
				return err
			}
			sh, err := wb.Sheet(args[1])
			if err != nil {
				return err
			}
			c, err := sh.Cell(args[2])
			if err != nil {
				return err
			}
			switch value := args[3]; {
			case *flagSetFormula:
				err = c.SetFormula(value)
			case *flagSetString:
				err = c.SetString(value)
			default:
				err = c.SetValue(value)
			}
			if err != nil {
				return err
			}
			if *flagSetBold || *flagSetFill != "" || *flagSetNumFmt != "" {
				st, err := c.Style()
				if err != nil {
					return err
				}
				if *flagSetBold {
					st.Font.Bold = true
				}
				if *flagSetFill != "" {
					color, err := parseColor(*flagSetFill)
					if err != nil {
						return err
					}
					st.Fill = xlsx.Fill{Pattern: "solid", FgColor: color}
				}
				if *flagSetNumFmt != "" {
					st.NumFmt = xlsx.NumFmt{Code: *flagSetNumFmt}
				}
				if err = c.SetStyle(st); err != nil {
					return err
				}
			}
			logger.Debug("set", "sheet", sh.Name(), "cell", c.Address(), "style", c.StyleIndex())
			if *flagSetOut != "" {
				return wb.SaveAs(*flagSetOut)
			}
			return wb.Save()
		},
	}

	fsTable := flag.NewFlagSet("table", flag.ContinueOnError)
	commonFlags(fsTable)
	flagTableOut := fsTable.String("o", "", "output file name (default: overwrite FILE)")
	tableCmd := ffcli.Command{Name: "table", ShortUsage: "table [-o OUT] FILE SHEET NAME RANGE",
		ShortHelp: "turn a range with a header row into a table", FlagSet: fsTable, Options: envOpts,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 4 {
				return usageError("table [-o OUT] FILE SHEET NAME RANGE")
			}
			wb, err := xlsx.OpenFile(args[0], opts())
			if err != nil {
				return err
			}
			if err = wb.AddTable(args[1], args[2], args[3]); err != nil {
				return err
			}
			if *flagTableOut != "" {
				return wb.SaveAs(*flagTableOut)
			}
			return wb.Save()
		},
	}

	fsExport := flag.NewFlagSet("export", flag.ContinueOnError)
	commonFlags(fsExport)
	flagExportSheet := fsExport.String("sheet", "", "sheet name (default: the first)")
	flagExportEnc := fsExport.String("charset", xlsxedit.EncName, "csv charset name")
	exportCmd := ffcli.Command{Name: "export", ShortUsage: "export [-sheet NAME] [-charset CS] FILE",
		ShortHelp: "write a sheet as CSV to stdout", FlagSet: fsExport, Options: envOpts,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("export [-sheet NAME] [-charset CS] FILE")
			}
			wb, err := xlsx.OpenFile(args[0], opts())
			if err != nil {
				return err
			}
			name := *flagExportSheet
			if name == "" {
				names := wb.SheetNames()
				if len(names) == 0 {
					return xlsxedit.ErrSheetNotFound
				}
				name = names[0]
			}
			sh, err := wb.Sheet(name)
			if err != nil {
				return err
			}
			rows, err := sh.Rows()
			if err != nil {
				return err
			}
			cw, err := xlsxedit.NewCsvWriter(os.Stdout, *flagExportEnc)
			if err != nil {
				return err
			}
			if err = cw.WriteAll(rows); err != nil {
				return err
			}
			return cw.Error()
		},
	}

	fsImport := flag.NewFlagSet("import", flag.ContinueOnError)
	commonFlags(fsImport)
	flagImportEnc := fsImport.String("charset", xlsxedit.EncName, "csv charset name")
	importCmd := ffcli.Command{Name: "import", ShortUsage: "import [-charset CS] OUT.xlsx [name:]in.csv...",
		ShortHelp: "convert CSV files to sheets", FlagSet: fsImport, Options: envOpts,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 1 {
				return usageError("import [-charset CS] OUT.xlsx [name:]in.csv...")
			}
			out, closeOut, err := createOutput(args[0])
			if err != nil {
				return err
			}
			defer closeOut()
			w := xlsx.NewWriter(out, opts())
			inputs := args[1:]
			if len(inputs) == 0 {
				inputs = []string{"-"}
			}
			for i, fn := range inputs {
				sheetName := "Sheet" + strconv.Itoa(i+1)
				if i := strings.IndexByte(fn, ':'); i >= 0 {
					sheetName, fn = fn[:i], fn[i+1:]
				} else if fn != "" && fn != "-" {
					sheetName = strings.TrimSuffix(filepath.Base(fn), ".csv")
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := copyFile(w, sheetName, *flagImportEnc, fn); err != nil {
					return fmt.Errorf("%q: %w", fn, err)
				}
			}
			if err := w.Close(); err != nil {
				return err
			}
			return closeOut()
		},
	}

	fsApp := flag.NewFlagSet("xlsxedit", flag.ContinueOnError)
	commonFlags(fsApp)
	app := ffcli.Command{Name: "xlsxedit", ShortUsage: "xlsxedit [-v] <subcommand> [flags] ...",
		FlagSet: fsApp, Options: envOpts,
		Subcommands: []*ffcli.Command{&sheetsCmd, &getCmd, &setCmd, &tableCmd, &exportCmd, &importCmd},
		Exec: func(ctx context.Context, args []string) error {
			return usageError("sheets|get|set|table|export|import [flags] ...")
		},
	}

	if err := app.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	slog.Debug("args", "args", os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.Run(ctx)
}

func usageError(usage string) error { return errors.New("usage: xlsxedit " + usage) }

// createOutput creates fn, or returns stdout for "" and "-".
// The returned function closes only a file created here.
func createOutput(fn string) (io.Writer, func() error, error) {
	if fn == "" || fn == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	fh, err := os.Create(fn)
	if err != nil {
		return nil, nil, err
	}
	return fh, fh.Close, nil
}

func commonFlags(fs *flag.FlagSet) {
	fs.Var(&verbose, "v", "logging verbosity")
}

// parseColor converts RRGGBB into ARGB.
func parseColor(s string) (string, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil {
		return "", fmt.Errorf("color %q: %w", s, err)
	}
	if len(b) != 3 {
		return "", fmt.Errorf("color %q: want RRGGBB", s)
	}
	return "FF" + strings.ToUpper(hex.EncodeToString(b)), nil
}

func copyFile(w xlsxedit.Writer, sheetName, encName, fn string) error {
	cr, err := xlsxedit.OpenCsv(fn, encName)
	if err != nil {
		return err
	}
	defer cr.Close()

	row, err := cr.Read()
	if err != nil {
		return err
	}
	cols := make([]xlsxedit.Column, len(row))
	for i, r := range row {
		cols[i].Name = r
		cols[i].Header.FontBold = true
	}
	sheet, err := w.NewSheet(sheetName, cols)
	if err != nil {
		return err
	}

	var rowI []any
	for {
		if row, err = cr.Read(); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		rowI = rowI[:0]
		for _, s := range row {
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				rowI = append(rowI, xlsxedit.Number(s))
			} else {
				rowI = append(rowI, s)
			}
		}
		if err = sheet.AppendRow(rowI...); err != nil {
			return err
		}
	}
	return sheet.Close()
}
