package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roamkit/tripscope/internal/utils"
	"github.com/roamkit/tripscope/pkg/places"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find local experiences for a destination",
	Long: `Finds experiences, restaurants, attractions and deals for a destination.
Known cities are answered from the built-in catalog; everything else goes
through live source extraction with caching.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		location, _ := cmd.Flags().GetString("location")
		if strings.TrimSpace(location) == "" {
			return fmt.Errorf("a location is required (use --location)")
		}
		interests, _ := cmd.Flags().GetString("interests")
		travelDates, _ := cmd.Flags().GetString("dates")
		budget, _ := cmd.Flags().GetString("budget")
		asJSON, _ := cmd.Flags().GetBool("json")
		dbPath, _ := cmd.Flags().GetString("dbpath")

		lock, err := utils.NewDBLock(dbPath)
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		db, err := openStore(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		agg, err := buildAggregator(db)
		if err != nil {
			return err
		}

		q := places.Query{
			Location:    location,
			Interests:   utils.SplitCSV(interests),
			TravelDates: travelDates,
			Budget:      budget,
		}

		report, err := agg.Discover(context.Background(), q)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("Found %d local experiences in %s\n\n", report.TotalResults, location)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tCATEGORY\tRATING\tPRICE\t")
		for _, p := range report.Experiences {
			fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\t\n", p.Name, p.Category, p.Rating, p.PriceRange)
		}
		w.Flush()

		if len(report.Events) > 0 {
			fmt.Println("\nUpcoming events:")
			for _, e := range report.Events {
				fmt.Printf("  %s (%s) at %s\n", e.Name, e.Date, e.Location)
			}
		}
		if len(report.Deals) > 0 {
			fmt.Println("\nDeals:")
			for _, d := range report.Deals {
				fmt.Printf("  %s, %s off, expires %s\n", d.Description, d.Discount, d.Expires)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringP("location", "L", "", "Destination city (required)")
	discoverCmd.Flags().StringP("interests", "i", "", "Comma-separated interests (e.g. food,art,history)")
	discoverCmd.Flags().String("dates", "", "Travel dates (free-form, e.g. 2026-09-10 to 2026-09-17)")
	discoverCmd.Flags().String("budget", "", "Budget hint (e.g. low, medium, high)")
	discoverCmd.Flags().Bool("json", false, "Print the full report as JSON")
	discoverCmd.Flags().String("dbpath", "", "Path to SQLite cache file (default ~/.config/tripscope/tripscope.sqlite)")
}
