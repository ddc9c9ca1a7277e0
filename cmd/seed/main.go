package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/ingest"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the inventory database with initial data",
		Commands: []*cli.Command{
			{
				Name:  "master",
				Usage: "Seed master data (products, warehouses, suppliers, balances, PO items)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing master seed CSV files",
						Value:   "./data/seeds/master_data",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: runMasterSeeder,
			},
			{
				Name:  "transactions",
				Usage: "Ingest transaction ledger CSV files",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "transactions-dir",
						Usage:   "Directory containing transaction CSV files",
						Value:   "./data/seeds/transactions",
						EnvVars: []string{"TRANSACTIONS_DIR"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent file workers",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Rows per insert transaction",
						Value: 500,
					},
				},
				Action: runTransactionIngest,
			},
			{
				Name:  "all",
				Usage: "Seed master data then ingest transactions",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing master seed CSV files",
						Value:   "./data/seeds/master_data",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
					&cli.StringFlag{
						Name:    "transactions-dir",
						Usage:   "Directory containing transaction CSV files",
						Value:   "./data/seeds/transactions",
						EnvVars: []string{"TRANSACTIONS_DIR"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent file workers",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Rows per insert transaction",
						Value: 500,
					},
				},
				Action: func(c *cli.Context) error {
					if err := runMasterSeeder(c); err != nil {
						return fmt.Errorf("error running master seed: %w", err)
					}
					if err := runTransactionIngest(c); err != nil {
						return fmt.Errorf("error running transaction ingest: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMasterSeeder(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	dataDir := c.String("data-dir")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Defer a rollback in case anything fails.
	defer tx.Rollback()

	log.Println("Starting database seeding...")

	if err := seedMasterData(ctx, tx, dataDir); err != nil {
		return fmt.Errorf("failed to seed master data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func seedMasterData(ctx context.Context, tx *sql.Tx, dataDir string) error {
	tables := []struct {
		table       string
		columns     []string
		conflictKey string
		file        string
	}{
		{
			table:       "products",
			columns:     []string{"product_id", "sku", "name", "category", "active"},
			conflictKey: "product_id",
			file:        "products.csv",
		},
		{
			table:       "warehouses",
			columns:     []string{"warehouse_id", "name", "location"},
			conflictKey: "warehouse_id",
			file:        "warehouses.csv",
		},
		{
			table:       "suppliers",
			columns:     []string{"supplier_id", "name", "email"},
			conflictKey: "supplier_id",
			file:        "suppliers.csv",
		},
		{
			table:       "inventory_balances",
			columns:     []string{"warehouse_id", "product_id", "qty_on_hand", "qty_reserved", "safety_stock", "reorder_point"},
			conflictKey: "warehouse_id, product_id",
			file:        "balances.csv",
		},
		{
			table:       "purchase_order_items",
			columns:     []string{"product_id", "unit_cost", "created_at"},
			conflictKey: "",
			file:        "purchase_order_items.csv",
		},
	}

	for _, t := range tables {
		path := filepath.Join(dataDir, t.file)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Printf("File not found, skipping: %s", path)
			continue
		}
		if err := seedTable(ctx, tx, t.table, t.columns, t.conflictKey, path); err != nil {
			return fmt.Errorf("failed to seed %s: %w", t.table, err)
		}
	}

	return nil
}

func seedTable(ctx context.Context, tx *sql.Tx, tableName string, columns []string, conflictKey, filePath string) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	if conflictKey != "" {
		query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", conflictKey, buildUpdateClause(columns, conflictKey))
	}

	rowCount := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			idx := getColumnIndex(header, col)
			if idx < 0 || idx >= len(record) {
				return fmt.Errorf("column %q missing in record (record has %d columns)", col, len(record))
			}
			args[i] = record[idx]
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		rowCount++
	}

	log.Printf("Successfully seeded %s (%d records)\n", tableName, rowCount)
	return nil
}

func buildUpdateClause(columns []string, conflictKey string) string {
	keys := make(map[string]bool)
	for _, k := range strings.Split(conflictKey, ",") {
		keys[strings.TrimSpace(k)] = true
	}

	updates := make([]string, 0, len(columns))
	for _, col := range columns {
		if keys[col] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return strings.Join(updates, ", ")
}

func getColumnIndex(header []string, column string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == column {
			return i
		}
	}
	return -1
}

func runTransactionIngest(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	dir := c.String("transactions-dir")
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return fmt.Errorf("failed to list transaction files: %w", err)
	}
	if len(matches) == 0 {
		log.Printf("No transaction files found in %s", dir)
		return nil
	}
	sort.Strings(matches)

	ingester := ingest.NewIngester(db, ingest.Config{
		WorkerCount: c.Int("workers"),
		BatchSize:   c.Int("batch-size"),
	})

	total, err := ingester.IngestTransactionFiles(context.Background(), matches)
	if err != nil {
		return fmt.Errorf("transaction ingest failed: %w", err)
	}

	log.Printf("Transaction ingest completed: %d files, %d rows", len(matches), total)
	return nil
}
