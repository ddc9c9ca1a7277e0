package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Config holds configuration for a transaction ingest run.
type Config struct {
	WorkerCount int // Number of concurrent file workers
	BatchSize   int // Number of rows per insert transaction
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		WorkerCount: 4,
		BatchSize:   500,
	}
}

// Ingester loads transaction ledger CSV files into the database. Files are
// processed concurrently by a worker pool; each file is inserted in batches
// inside its own transaction.
type Ingester struct {
	db  *sql.DB
	cfg Config

	mu        sync.Mutex
	totalRows int
}

func NewIngester(db *sql.DB, cfg Config) *Ingester {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 500
	}
	return &Ingester{db: db, cfg: cfg}
}

// IngestTransactionFiles processes the given CSV files and returns the total
// number of rows inserted.
func (ing *Ingester) IngestTransactionFiles(ctx context.Context, files []string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	log.Info().Int("files", len(files)).Int("workers", ing.cfg.WorkerCount).Msg("Starting transaction ingest")

	fileChan := make(chan string, len(files))
	errChan := make(chan error, ing.cfg.WorkerCount)
	var wg sync.WaitGroup

	for i := 0; i < ing.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for file := range fileChan {
				start := time.Now()
				rows, err := ing.ingestFile(ctx, file)
				if err != nil {
					log.Error().Err(err).Int("worker", workerID).Str("file", file).Msg("Failed to ingest file")
					select {
					case errChan <- err:
					default:
					}
					continue
				}

				ing.mu.Lock()
				ing.totalRows += rows
				ing.mu.Unlock()

				log.Info().
					Str("file", file).
					Int("rows", rows).
					Dur("duration", time.Since(start)).
					Msg("Ingested file")
			}
		}(i)
	}

	for _, file := range files {
		select {
		case <-ctx.Done():
			close(fileChan)
			return 0, ctx.Err()
		case fileChan <- file:
		}
	}
	close(fileChan)

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return ing.totalRows, err
	}
	return ing.totalRows, nil
}

func (ing *Ingester) ingestFile(ctx context.Context, filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := indexColumns(header)
	for _, required := range []string{"trx_id", "date", "warehouse_id", "product_id", "type", "qty"} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("missing column %q in %s", required, filePath)
		}
	}

	batch := make([]domain.InventoryTransaction, 0, ing.cfg.BatchSize)
	rowCount := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return rowCount, fmt.Errorf("failed to read CSV record: %w", err)
		}

		trx, err := parseTransaction(record, cols)
		if err != nil {
			return rowCount, fmt.Errorf("invalid record in %s: %w", filePath, err)
		}

		batch = append(batch, trx)
		if len(batch) >= ing.cfg.BatchSize {
			if err := ing.insertBatch(ctx, batch); err != nil {
				return rowCount, err
			}
			rowCount += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := ing.insertBatch(ctx, batch); err != nil {
			return rowCount, err
		}
		rowCount += len(batch)
	}

	return rowCount, nil
}

func (ing *Ingester) insertBatch(ctx context.Context, batch []domain.InventoryTransaction) error {
	tx, err := ing.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO inventory_transactions (
			trx_id, date, warehouse_id, product_id, type, qty, signed_qty,
			ref_type, ref_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (trx_id) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, trx := range batch {
		if _, err := stmt.ExecContext(ctx,
			trx.TrxID, trx.Date, trx.WarehouseID, trx.ProductID,
			trx.Type, trx.Qty, trx.SignedQty,
			nullIfEmpty(trx.RefType), nullIfEmpty(trx.RefID),
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", trx.TrxID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func parseTransaction(record []string, cols map[string]int) (domain.InventoryTransaction, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	trxType := strings.ToUpper(get("type"))
	if trxType != domain.TrxTypeIssue && trxType != domain.TrxTypeReceipt {
		return domain.InventoryTransaction{}, fmt.Errorf("unknown transaction type %q", get("type"))
	}

	qty, err := strconv.ParseFloat(get("qty"), 64)
	if err != nil {
		return domain.InventoryTransaction{}, fmt.Errorf("invalid qty %q: %w", get("qty"), err)
	}
	if qty < 0 {
		qty = -qty
	}

	date, err := parseDate(get("date"))
	if err != nil {
		return domain.InventoryTransaction{}, err
	}

	signed := qty
	if trxType == domain.TrxTypeIssue {
		signed = -qty
	}

	return domain.InventoryTransaction{
		TrxID:       get("trx_id"),
		Date:        date,
		WarehouseID: get("warehouse_id"),
		ProductID:   get("product_id"),
		Type:        trxType,
		Qty:         qty,
		SignedQty:   signed,
		RefType:     get("ref_type"),
		RefID:       get("ref_id"),
	}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
