package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/config"
	"github.com/Veraticus/sats-budget/internal/model"
	"github.com/Veraticus/sats-budget/internal/projection"
	"github.com/Veraticus/sats-budget/internal/storage"
)

// projectionClock is "today" for every projection. Tests pin it.
var projectionClock = time.Now

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Power-law projections of purchasing power",
		Long: `Project prices along the power-law fair-value curve

    price = 1.0117e-17 * days^5.82

where days counts from the genesis block (2009-01-03). The floor is 42% of
fair value. Prices are model outputs in fiat, not forecasts.`,
	}

	cmd.AddCommand(fairValueCmd())
	cmd.AddCommand(powerCmd())
	cmd.AddCommand(retireCmd())
	cmd.AddCommand(stackCmd())
	cmd.AddCommand(lifecycleCmd())

	return cmd
}

// projectionSettings returns the configured inflation rate and floor choice,
// with flags taking precedence when set.
func projectionSettings(cmd *cobra.Command, inflation *float64, useFloor *bool) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if inflation != nil && !cmd.Flags().Changed("inflation") {
		*inflation = settings.InflationRate
	}
	if useFloor != nil && !cmd.Flags().Changed("floor") {
		*useFloor = settings.UseFloor
	}
	return nil
}

func fairValueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fair-value [YYYY-MM-DD]",
		Short: "Fair value and floor price on a date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := model.Day(projectionClock())
			if len(args) == 1 {
				var err error
				if day, err = model.ParseDate(args[0]); err != nil {
					return err
				}
			}

			days := projection.DaysSinceGenesis(day)
			fair, err := projection.FairValue(days)
			if err != nil {
				return err
			}
			floor, err := projection.FloorValue(days)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, cli.TitleStyle.Render("Power-law price on "+cli.Date(day)))
			t := cli.NewTable(out)
			t.Row("Days since genesis", fmt.Sprint(days))
			t.Row("Fair value", cli.Fiat(fair))
			t.Row("Floor", cli.Fiat(floor))
			t.Row("Sats per dollar", fmt.Sprintf("%.0f", float64(model.SatsPerBTC)/fair))
			return t.Flush()
		},
	}
}

func powerCmd() *cobra.Command {
	var (
		years     float64
		inflation float64
	)

	cmd := &cobra.Command{
		Use:   "power <amount>",
		Short: "Sats needed later to buy what an amount buys today",
		Example: `  sats project power 100,000 --years 10
  sats project power "0.01 BTC" --years 5 --inflation 0.12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := model.ParseAmount(args[0])
			if err != nil {
				return err
			}
			if err := projectionSettings(cmd, &inflation, nil); err != nil {
				return err
			}

			p := projection.NewProjector(projection.WithClock(projectionClock))
			pp, err := p.FuturePurchasingPower(amount, years, inflation)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("Purchasing power in %g years at %s inflation",
				years, cli.Percent(inflation*100))))
			t := cli.NewTable(out)
			t.Row("Today", model.FormatSats(amount))
			t.Row("Needed then", model.FormatSats(model.Sats(math.Round(pp.Future))))
			t.Row("Reduction", cli.Percent(pp.ReductionPercent))
			t.Row("Price now", cli.Fiat(pp.PriceNow))
			t.Row("Price then", cli.Fiat(pp.PriceFuture))
			t.Row("Appreciation", fmt.Sprintf("%.2fx", pp.Appreciation))
			t.Row("Inflation", fmt.Sprintf("%.2fx", pp.Inflation))
			return t.Flush()
		},
	}

	cmd.Flags().Float64VarP(&years, "years", "y", 10, "years ahead")
	cmd.Flags().Float64Var(&inflation, "inflation", config.DefaultInflationRate, "annual fiat inflation (0.08 = 8%)")
	return cmd
}

func retireCmd() *cobra.Command {
	var (
		expense   float64
		from      int
		to        int
		duration  int
		inflation float64
		useFloor  bool
	)

	cmd := &cobra.Command{
		Use:   "retire",
		Short: "BTC needed to fund yearly spending from a start year",
		Long: `Find the smallest stack, in BTC, that covers an inflating yearly expense
for the given number of years when coins are sold at the modelled price each
January. Results at 100 BTC mean the search bound was reached.`,
		Example: `  sats project retire --expense 60000 --from 2030 --to 2040 --duration 30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := projectionSettings(cmd, &inflation, &useFloor); err != nil {
				return err
			}
			if to == 0 {
				to = from
			}

			rows, err := projection.RetirementTable(from, to, projection.Schedule{
				AnnualExpense: expense,
				InflationRate: inflation,
				DurationYears: duration,
				UseFloor:      useFloor,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("Retiring on %s a year for %d years",
				cli.Fiat(expense), duration)))
			t := cli.NewTable(out)
			t.Header("YEAR", "PRICE", "BTC NEEDED", "")
			for _, r := range rows {
				note := ""
				if !r.Solvent {
					note = cli.WarningStyle.Render("exceeds search bound")
				}
				t.Row(fmt.Sprint(r.Year), cli.Fiat(r.Price), fmt.Sprintf("%.3f", r.Principal), note)
			}
			return t.Flush()
		},
	}

	year := projectionClock().Year()
	cmd.Flags().Float64VarP(&expense, "expense", "e", 50_000, "fiat spent in the first year")
	cmd.Flags().IntVar(&from, "from", year+1, "first start year")
	cmd.Flags().IntVar(&to, "to", 0, "last start year (default --from)")
	cmd.Flags().IntVarP(&duration, "duration", "d", 30, "years of withdrawals")
	cmd.Flags().Float64Var(&inflation, "inflation", config.DefaultInflationRate, "annual fiat inflation (0.08 = 8%)")
	cmd.Flags().BoolVar(&useFloor, "floor", false, "price sales at the floor instead of fair value")
	return cmd
}

func stackCmd() *cobra.Command {
	var (
		monthly  string
		years    int
		useFloor bool
	)

	cmd := &cobra.Command{
		Use:     "stack <current>",
		Short:   "Future value of a stack with regular monthly buys",
		Example: `  sats project stack "0.5 BTC" --monthly 500,000 --years 10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := parseAllocationAmount(args[0])
			if err != nil {
				return err
			}
			var buy model.Sats
			if monthly != "" {
				if buy, err = parseAllocationAmount(monthly); err != nil {
					return err
				}
			}
			if err := projectionSettings(cmd, nil, &useFloor); err != nil {
				return err
			}

			p := projection.NewProjector(projection.WithClock(projectionClock))
			proj, err := p.ProjectStack(current, buy, years, useFloor)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, cli.TitleStyle.Render("Stack projection"))
			_, _ = fmt.Fprintf(out, "Today: %s worth %s at %s\n\n",
				model.FormatBTC(current), cli.Fiat(proj.CurrentValue), cli.Fiat(proj.CurrentPrice))

			t := cli.NewTable(out)
			t.Header("YEAR", "STACK", "PRICE", "VALUE", "MULTIPLE")
			for _, r := range proj.Rows {
				multiple := "-"
				if r.Multiplier > 0 {
					multiple = fmt.Sprintf("%.1fx", r.Multiplier)
				}
				t.Row(fmt.Sprint(r.Year), model.FormatBTC(r.Stack), cli.Fiat(r.Price), cli.Fiat(r.Value), multiple)
			}
			return t.Flush()
		},
	}

	cmd.Flags().StringVar(&monthly, "monthly", "", "amount bought each month")
	cmd.Flags().IntVarP(&years, "years", "y", 10, "years to project")
	cmd.Flags().BoolVar(&useFloor, "floor", false, "value the stack at the floor price")
	return cmd
}

func lifecycleCmd() *cobra.Command {
	var (
		date     string
		txID     int64
		horizons []int
		useFloor bool
	)

	cmd := &cobra.Command{
		Use:   "lifecycle [amount]",
		Short: "What spending sats costs in forgone appreciation",
		Long: `Value an amount spent on a date at fair value then, and again at each
horizon after it, had the sats been held instead. Use --tx to price a
recorded expense.`,
		Example: `  sats project lifecycle 250,000 --date 2025-06-14
  sats project lifecycle --tx 42 --horizons 1,4,10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (txID != 0) {
				return fmt.Errorf("give either an amount or --tx")
			}
			if err := projectionSettings(cmd, nil, &useFloor); err != nil {
				return err
			}

			var (
				amount model.Sats
				day    time.Time
				err    error
			)
			if txID != 0 {
				err = withStore(cmd, func(ctx context.Context, store *storage.SQLiteStorage) error {
					txn, err := findTransaction(ctx, store, txID)
					if err != nil {
						return err
					}
					amount, day = txn.Amount, txn.Date
					return nil
				})
			} else {
				amount, err = model.ParseAmount(args[0])
				if err == nil {
					day, err = parseDate(date)
				}
			}
			if err != nil {
				return err
			}

			cost, err := projection.LifecycleCost(amount, day, horizons, useFloor)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("Lifecycle cost of %s spent on %s",
				model.FormatSats(amount), cli.Date(day))))
			_, _ = fmt.Fprintf(out, "Worth %s at %s\n\n", cli.Fiat(cost.PurchaseValue), cli.Fiat(cost.PurchasePrice))

			t := cli.NewTable(out)
			t.Header("YEARS", "PRICE", "WORTH", "COST", "MULTIPLE")
			for _, r := range cost.Rows {
				t.Row(fmt.Sprint(r.Years), cli.Fiat(r.FuturePrice), cli.Fiat(r.FutureValue), cli.Fiat(r.Cost),
					fmt.Sprintf("%.1fx", r.Multiple))
			}
			return t.Flush()
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "date spent (YYYY-MM-DD, default today)")
	cmd.Flags().Int64Var(&txID, "tx", 0, "price a recorded transaction")
	cmd.Flags().IntSliceVar(&horizons, "horizons", []int{1, 5, 10, 20}, "years after the purchase")
	cmd.Flags().BoolVar(&useFloor, "floor", false, "value later years at the floor price")
	return cmd
}
