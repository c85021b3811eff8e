package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/ahmethakanbesel/stockseries/internal/config"
	"github.com/ahmethakanbesel/stockseries/internal/quote"
	"github.com/ahmethakanbesel/stockseries/internal/series"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print historical quotes for one or more symbols as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Ticker symbol, or a comma-separated list for a merged table",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "begin",
				Aliases:  []string{"b"},
				Usage:    "First date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{quote.DateFormat},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "Last date in `YYYY-MM-DD` format. Defaults to today.",
				Config: cli.TimestampConfig{
					Layouts: []string{quote.DateFormat},
				},
			},
			&cli.StringFlag{
				Name:    "resolution",
				Aliases: []string{"r"},
				Usage:   "Sampling resolution (day or week)",
				Value:   string(quote.Daily),
			},
			&cli.StringFlag{
				Name:    "measures",
				Aliases: []string{"m"},
				Usage:   "Comma-separated measures (open, high, low, close, volume). A symbol list takes one.",
				Value:   string(quote.Close),
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Quote source, overrides the config file",
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Provider endpoint URL, overrides the config file",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar on stderr",
			},
		},
		Action: historyAction,
	}
}

// historyArgs is the validated form of the history flags.
type historyArgs struct {
	symbols    []string
	begin      time.Time
	end        time.Time
	resolution quote.Resolution
	measures   []quote.Measure
}

func parseHistoryArgs(cmd *cli.Command, today time.Time) (historyArgs, error) {
	args := historyArgs{
		symbols: series.SplitSymbols(cmd.String("symbol")),
		begin:   quote.Day(cmd.Timestamp("begin")),
		end:     today,
	}
	if len(args.symbols) == 0 {
		return historyArgs{}, fmt.Errorf("at least one symbol is required")
	}
	if cmd.IsSet("end") {
		args.end = quote.Day(cmd.Timestamp("end"))
	}
	// begin is checked against the earlier of today and end; end itself goes
	// to the provider as given.
	latest := args.end
	if today.Before(latest) {
		latest = today
	}
	if args.begin.After(latest) {
		return historyArgs{}, fmt.Errorf("begin date %s is after %s", args.begin.Format(quote.DateFormat), latest.Format(quote.DateFormat))
	}

	var err error
	if args.resolution, err = quote.ParseResolution(cmd.String("resolution")); err != nil {
		return historyArgs{}, err
	}
	if args.measures, err = quote.ParseMeasures(cmd.String("measures")); err != nil {
		return historyArgs{}, err
	}
	if len(args.symbols) > 1 && len(args.measures) != 1 {
		return historyArgs{}, fmt.Errorf("a symbol list takes exactly one measure, got %d", len(args.measures))
	}
	return args, nil
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	applyOverrides(&cfg, cmd)

	args, err := parseHistoryArgs(cmd, quote.Day(time.Now()))
	if err != nil {
		return err
	}

	fetcher, err := fetcherFor(cfg)
	if err != nil {
		return err
	}

	var opts []series.Option
	if cmd.Bool("progress") {
		opts = append(opts, series.WithProgress(progressReporter(os.Stderr, len(args.symbols))))
	}
	svc := series.NewService(fetcher, opts...)

	var table series.Table
	if len(args.symbols) == 1 {
		table, err = svc.Single(ctx, quote.Request{
			Symbol:     args.symbols[0],
			Begin:      args.begin,
			End:        args.end,
			Resolution: args.resolution,
			Measures:   args.measures,
		})
	} else {
		table, err = svc.Multi(ctx, series.MultiQuery{
			Symbols:    args.symbols,
			Begin:      args.begin,
			End:        args.end,
			Resolution: args.resolution,
			Measure:    args.measures[0],
		})
	}
	if err != nil {
		return err
	}

	return table.WriteCSV(cmd.Root().Writer)
}

func applyOverrides(cfg *config.Config, cmd *cli.Command) {
	if v := cmd.String("source"); v != "" {
		cfg.Quote.Source = v
	}
	if v := cmd.String("endpoint"); v != "" {
		cfg.Quote.Endpoint = v
	}
}

func progressReporter(w io.Writer, total int) func(done, total int) {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Fetching"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(done, _ int) {
		_ = bar.Set(done)
	}
}
