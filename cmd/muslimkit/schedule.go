package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func scheduleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule city-id",
		Short: "Print a month of prayer times for a city (see `cities` for IDs)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			year, month := viper.GetInt("year"), viper.GetInt("month")
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("month %d out of range 1-12", month)
			}
			return a.schedule(cmd.Context(), args[0], time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local))
		},
	}

	cmd.Flags().Int("year", 0, "Year (default: this year)")
	cmd.Flags().Int("month", 0, "Month, 1-12 (default: this month)")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

func (a *app) schedule(ctx context.Context, cityID string, t time.Time) error {
	s, err := a.myquran().Schedule(ctx, cityID, t)
	if err != nil {
		return err
	}

	fmt.Printf("%s, %s (%s)\n\n", a.s.Bright(s.Data.Location), a.s.Noun(s.Data.Province), a.s.Info(t.Format("January 2006")))

	today := time.Now().Format("2006-01-02")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tFajr\tSunrise\tDhuha\tDhuhr\tAsr\tMaghrib\tIsha")
	for _, d := range s.Data.Days {
		date := d.Date
		if date == today {
			date += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", date, d.Fajr, d.Sunrise, d.Dhuha, d.Dhuhr, d.Asr, d.Maghrib, d.Isha)
	}
	return tw.Flush()
}
