// Command tillview reads a point-of-sale database and reports orders and
// loyalty activity as receipts, CSV or JSON.
//
// Usage:
//
//	tillview order -number 1234 [-format receipt|json|csv]
//	tillview orders -day 2024-03-15 [-format csv|json]
//	tillview orders -from 2024-03-01 -to 2024-03-15 [-format csv|json]
//	tillview loyalty -day 2024-03-15 [-format csv|json]
//	tillview waiter -uuid <uuid>
//
// The database path, venue timezone and business-day boundary come from the
// environment (TILLVIEW_DB, TILLVIEW_TZ, TILLVIEW_DAY_BOUNDARY) and can be
// overridden with -db, -tz and -boundary on each subcommand.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tillview/tillview/internal/config"
	"github.com/tillview/tillview/internal/dates"
	"github.com/tillview/tillview/internal/models"
	"github.com/tillview/tillview/internal/report"
	"github.com/tillview/tillview/internal/storage/sqlite"
	"github.com/tillview/tillview/pkg/logging"
)

func main() {
	logging.Setup()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tillview <order|orders|loyalty|waiter> [flags]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var runErr error
	switch os.Args[1] {
	case "order":
		runErr = runOrder(cfg, os.Args[2:])
	case "orders":
		runErr = runOrders(cfg, os.Args[2:])
	case "loyalty":
		runErr = runLoyalty(cfg, os.Args[2:])
	case "waiter":
		runErr = runWaiter(cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
	if runErr != nil {
		slog.Error("Command failed", "command", os.Args[1], "error", runErr)
		os.Exit(1)
	}
}

// storeFlags binds the flags shared by every subcommand.
func storeFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the POS database file")
	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "venue timezone (IANA name)")
	fs.StringVar(&cfg.DayBoundary, "boundary", cfg.DayBoundary, "business day boundary (HH:MM:SS)")
}

func openStore(cfg *config.Config) (*sqlite.SQLiteStore, *time.Location, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	store, err := sqlite.New(cfg.DBPath, loc)
	if err != nil {
		return nil, nil, err
	}
	return store, loc, nil
}

func runOrder(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	storeFlags(fs, cfg)
	number := fs.Int64("number", 0, "order number to look up")
	format := fs.String("format", "receipt", "output format: receipt, json or csv")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *number == 0 {
		return fmt.Errorf("-number is required")
	}

	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	o, err := store.OrderByNumber(context.Background(), *number)
	if err != nil {
		return err
	}

	switch *format {
	case "receipt":
		fmt.Print(report.Receipt(o))
		return nil
	case "json":
		return report.WriteOrderJSON(os.Stdout, o)
	case "csv":
		return report.WriteOrdersCSV(os.Stdout, []*models.Order{o})
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func runOrders(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	storeFlags(fs, cfg)
	day := fs.String("day", "", "business day to report (YYYY-MM-DD)")
	from := fs.String("from", "", "first business day of the range (YYYY-MM-DD)")
	to := fs.String("to", "", "last business day of the range (YYYY-MM-DD)")
	format := fs.String("format", "csv", "output format: csv or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, loc, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	earliest, cutoff, err := resolveRange(cfg, loc, *day, *from, *to)
	if err != nil {
		return err
	}
	slog.Debug("Reporting orders", "earliest", earliest, "cutoff", cutoff)

	orders, err := store.OrdersInRange(context.Background(), earliest, cutoff)
	if err != nil {
		return err
	}

	switch *format {
	case "csv":
		return report.WriteOrdersCSV(os.Stdout, orders)
	case "json":
		return report.WriteOrdersJSON(os.Stdout, orders)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func runLoyalty(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("loyalty", flag.ExitOnError)
	storeFlags(fs, cfg)
	day := fs.String("day", "", "business day to report (YYYY-MM-DD)")
	from := fs.String("from", "", "first business day of the range (YYYY-MM-DD)")
	to := fs.String("to", "", "last business day of the range (YYYY-MM-DD)")
	format := fs.String("format", "csv", "output format: csv or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, loc, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	earliest, cutoff, err := resolveRange(cfg, loc, *day, *from, *to)
	if err != nil {
		return err
	}

	activities, err := store.LoyaltyInRange(context.Background(), earliest, cutoff)
	if err != nil {
		return err
	}

	switch *format {
	case "csv":
		return report.WriteLoyaltyCSV(os.Stdout, activities)
	case "json":
		return report.WriteLoyaltyJSON(os.Stdout, activities)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func runWaiter(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("waiter", flag.ExitOnError)
	storeFlags(fs, cfg)
	waiterUUID := fs.String("uuid", "", "waiter UUID to look up")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *waiterUUID == "" {
		return fmt.Errorf("-uuid is required")
	}

	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	w, err := store.Waiter(context.Background(), *waiterUUID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(w.Summary())
}

// resolveRange turns -day or -from/-to into a [earliest, cutoff) wall-clock
// range, shifting each calendar date by the business-day boundary.
func resolveRange(cfg *config.Config, loc *time.Location, day, from, to string) (time.Time, time.Time, error) {
	boundary, err := cfg.Boundary()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if day != "" {
		d, err := time.ParseInLocation("2006-01-02", day, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -day: %w", err)
		}
		earliest, cutoff := dates.BusinessDayRange(d, boundary)
		return earliest, cutoff, nil
	}
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either -day or both -from and -to are required")
	}
	f, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
	}
	t, err := time.ParseInLocation("2006-01-02", to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
	}
	earliest, _ := dates.BusinessDayRange(f, boundary)
	_, cutoff := dates.BusinessDayRange(t, boundary)
	if !earliest.Before(cutoff) {
		return time.Time{}, time.Time{}, fmt.Errorf("-from must not be after -to")
	}
	return earliest, cutoff, nil
}
