// cmd/analyze/main.go
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/config"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/service"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store/erp"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string (postgres backend)",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newERPFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "erp-base-url",
			Usage:   "ERP API base URL (erp backend)",
			EnvVars: []string{"ERP_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "erp-api-key",
			Usage:   "ERP API key",
			EnvVars: []string{"ERP_API_KEY"},
		},
	}
}

func commonFlags() []cli.Flag {
	return append([]cli.Flag{newDBURLFlag()}, newERPFlags()...)
}

func buildService(c *cli.Context) (*service.AnalyticsService, func(), error) {
	cfg := config.Load()

	var (
		inventoryStore store.InventoryStore
		cleanup        = func() {}
	)

	switch {
	case c.String("erp-base-url") != "":
		inventoryStore = erp.NewClient(c.String("erp-base-url"), c.String("erp-api-key"))
	case c.String("db-url") != "":
		raw, err := sqlx.Connect("pgx", c.String("db-url"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		inventoryStore = postgres.NewInventoryStore(postgres.Wrap(raw))
		cleanup = func() { raw.Close() }
	default:
		return nil, nil, fmt.Errorf("either --db-url or --erp-base-url is required")
	}

	return service.NewAnalyticsService(inventoryStore, nil, cfg.Engine), cleanup, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analyze",
		Usage: "Run inventory analytics from the command line",
		Commands: []*cli.Command{
			{
				Name:  "overview",
				Usage: "Print the inventory overview metrics",
				Flags: commonFlags(),
				Action: func(c *cli.Context) error {
					svc, cleanup, err := buildService(c)
					if err != nil {
						return err
					}
					defer cleanup()

					overview, err := svc.Overview(c.Context)
					if err != nil {
						return err
					}
					return printJSON(overview)
				},
			},
			{
				Name:  "recalibrate",
				Usage: "Recalibrate safety stock for one warehouse",
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "warehouse-id",
						Usage:    "Warehouse to recalibrate",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "service-level",
						Usage: "Target service level (0..1 exclusive)",
					},
					&cli.IntFlag{
						Name:  "lead-time-days",
						Usage: "Replenishment lead time in days",
					},
				),
				Action: func(c *cli.Context) error {
					svc, cleanup, err := buildService(c)
					if err != nil {
						return err
					}
					defer cleanup()

					policy := svc.DefaultPolicy()
					if c.IsSet("service-level") {
						policy.ServiceLevel = c.Float64("service-level")
					}
					if c.IsSet("lead-time-days") {
						policy.LeadTimeDays = c.Int("lead-time-days")
					}
					if policy.ServiceLevel <= 0 || policy.ServiceLevel >= 1 {
						return fmt.Errorf("service level must be between 0 and 1 exclusive")
					}
					if policy.LeadTimeDays <= 0 {
						return fmt.Errorf("lead time days must be positive")
					}

					result, err := svc.RecalibrateSafetyStock(c.Context, c.String("warehouse-id"), policy)
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:  "anomalies",
				Usage: "Detect transaction anomalies",
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "lookback-days",
						Usage: "Recent window size in days",
					},
					&cli.Float64Flag{
						Name:  "threshold-pct",
						Usage: "Minimum absolute change percentage",
					},
				),
				Action: func(c *cli.Context) error {
					svc, cleanup, err := buildService(c)
					if err != nil {
						return err
					}
					defer cleanup()

					anomalies, err := svc.DetectAnomalies(c.Context, c.Int("lookback-days"), c.Float64("threshold-pct"))
					if err != nil {
						return err
					}
					return printJSON(anomalies)
				},
			},
			{
				Name:  "stockouts",
				Usage: "Reconstruct stockout history from transactions",
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "lookback-days",
						Usage: "Reconstruction window in days",
					},
				),
				Action: func(c *cli.Context) error {
					svc, cleanup, err := buildService(c)
					if err != nil {
						return err
					}
					defer cleanup()

					items, err := svc.StockoutHistory(c.Context, c.Int("lookback-days"))
					if err != nil {
						return err
					}
					return printJSON(items)
				},
			},
			{
				Name:  "classify",
				Usage: "Classify products into portfolio quadrants",
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "warehouse-id",
						Usage: "Restrict to one warehouse",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict to one product category",
					},
					&cli.IntFlag{
						Name:  "window-days",
						Usage: "Classification window in days",
					},
				),
				Action: func(c *cli.Context) error {
					svc, cleanup, err := buildService(c)
					if err != nil {
						return err
					}
					defer cleanup()

					result, err := svc.ClassifyProducts(c.Context, c.String("warehouse-id"), c.String("category"), c.Int("window-days"))
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:  "alerts",
				Usage: "Build the aggregated alert report",
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "lookback-days",
						Usage: "Recent window size in days",
					},
					&cli.Float64Flag{
						Name:  "threshold-pct",
						Usage: "Minimum absolute change percentage",
					},
				),
				Action: func(c *cli.Context) error {
					svc, cleanup, err := buildService(c)
					if err != nil {
						return err
					}
					defer cleanup()

					report, err := svc.AlertReport(c.Context, c.Int("lookback-days"), c.Float64("threshold-pct"))
					if err != nil {
						return err
					}
					return printJSON(report)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
