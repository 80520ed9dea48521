// Command catalog-ingest bulk-loads product feed files into the catalog.
//
// Suppliers deliver the same feed through several channels; a SKU is trusted
// only when at least two independent feed files agree on it. The feeds are
// far too large to dedupe in memory, so the tool makes two streaming passes:
// pass 1 builds a bloom filter per file, pass 2 re-streams each file and
// keeps SKUs that another file's filter also claims. Confirmed rows are
// bulk-copied into the database.
//
// Feed format: gzipped files of tab-separated lines
//
//	sku<TAB>title<TAB>price<TAB>stock[<TAB>category]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-api/internal/storage/postgres"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	progressEvery = 5_000_000
	copyBatchSize = 10_000
)

// feedRow is one parsed product line from a feed file.
type feedRow struct {
	sku      string
	title    string
	price    decimal.Decimal
	stock    int
	category string
}

// fileResult holds the confirmed rows found in a single file during pass 2,
// with a bitmask of which files claimed each SKU.
type fileResult struct {
	rows  map[string]feedRow
	masks map[string]uint
}

func main() {
	var (
		dataDir     string
		numFiles    int
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing productfeedN.gz files")
	flag.IntVar(&numFiles, "feed-files", 3, "number of feed files to cross-check")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if numFiles < 2 {
		slog.Error("at least 2 feed files are required for cross-checking")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, numFiles, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir string, numFiles int, databaseURL string) error {
	files := make([]string, numFiles)
	for i := range numFiles {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("productfeed%d.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: build bloom filters concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", numFiles))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: collect rows whose SKU appears in 2+ files.
	slog.Info("pass 2: cross-checking SKUs")

	confirmed, err := findConfirmedRows(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find confirmed rows")
	}

	slog.Info("confirmed SKUs", slog.Int("count", len(confirmed)))

	if len(confirmed) == 0 {
		slog.Info("no confirmed rows to insert")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := writeProducts(ctx, pool, confirmed); err != nil {
		return errors.Wrap(err, "write products to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter of SKUs per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(line string) {
			sku, _, ok := strings.Cut(line, "\t")
			if !ok || sku == "" {
				return
			}
			filter.AddString(sku)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("skus", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_skus", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findConfirmedRows re-streams each file and checks SKUs against OTHER files'
// bloom filters. A row is confirmed when its SKU appears in 2 or more files;
// the row with the lowest file index wins.
func findConfirmedRows(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]feedRow, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findConfirmedInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks from all files; keep the first file's row per SKU.
	merged := make(map[string]uint)
	rows := make(map[string]feedRow)
	for _, r := range results {
		for sku, mask := range r.masks {
			merged[sku] |= mask
			if _, ok := rows[sku]; !ok {
				rows[sku] = r.rows[sku]
			}
		}
	}

	var confirmed []feedRow
	for sku, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			confirmed = append(confirmed, rows[sku])
		}
	}

	return confirmed, nil
}

func findConfirmedInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		rows := make(map[string]feedRow)
		masks := make(map[string]uint)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(line string) {
			row, ok := parseFeedLine(line)
			if !ok {
				return
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}

			// Check if this SKU appears in any OTHER file's bloom filter.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(row.sku) {
					masks[row.sku] |= fileBit
					rows[row.sku] = row
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for confirmed rows", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
			slog.Int("candidates", len(masks)),
		)

		results[idx] = fileResult{rows: rows, masks: masks}
		return nil
	}
}

// parseFeedLine parses "sku\ttitle\tprice\tstock[\tcategory]". Malformed
// lines are skipped rather than failing the whole feed.
func parseFeedLine(line string) (feedRow, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 4 {
		return feedRow{}, false
	}

	price, err := decimal.NewFromString(fields[2])
	if err != nil || price.IsNegative() {
		return feedRow{}, false
	}
	stock, err := strconv.Atoi(fields[3])
	if err != nil || stock < 0 {
		return feedRow{}, false
	}

	row := feedRow{
		sku:   fields[0],
		title: fields[1],
		price: price,
		stock: stock,
	}
	if row.sku == "" || row.title == "" {
		return feedRow{}, false
	}
	if len(fields) > 4 {
		row.category = fields[4]
	}
	return row, true
}

// writeProducts bulk-copies confirmed rows into a temp table, then upserts
// into products from it. CopyFrom cannot handle conflicts itself, and feeds
// re-deliver existing SKUs routinely.
func writeProducts(ctx context.Context, pool *pgxpool.Pool, rows []feedRow) error {
	slog.Info("writing products to database", slog.Int("count", len(rows)))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
CREATE TEMP TABLE feed_products (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    price       NUMERIC(12, 2) NOT NULL,
    stock       INTEGER NOT NULL,
    category_id TEXT
) ON COMMIT DROP`); err != nil {
		return errors.Wrap(err, "create temp table")
	}

	for start := 0; start < len(rows); start += copyBatchSize {
		end := min(start+copyBatchSize, len(rows))
		batch := rows[start:end]

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"feed_products"},
			[]string{"id", "title", "price", "stock", "category_id"},
			pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
				r := batch[i]
				var category any
				if r.category != "" {
					category = r.category
				}
				return []any{r.sku, r.title, r.price, r.stock, category}, nil
			}),
		)
		if err != nil {
			return errors.Wrap(err, "copy batch")
		}
		if n != int64(len(batch)) {
			return errors.Errorf("copy batch: copied %d of %d rows", n, len(batch))
		}

		slog.Info("copy progress", slog.Int("copied", end), slog.Int("total", len(rows)))
	}

	tag, err := tx.Exec(ctx, `
INSERT INTO products (id, title, price, discount_percentage, sale_price, stock, category_id)
SELECT f.id, f.title, f.price, 0, f.price, f.stock,
       CASE WHEN EXISTS (SELECT 1 FROM categories c WHERE c.id = f.category_id)
            THEN f.category_id END
FROM feed_products f
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    price = EXCLUDED.price,
    sale_price = CASE WHEN products.discount_percentage > 0
                      THEN FLOOR(EXCLUDED.price * (100 - products.discount_percentage) / 100)
                      ELSE EXCLUDED.price END,
    stock = EXCLUDED.stock,
    updated_at = now()`)
	if err != nil {
		return errors.Wrap(err, "upsert from temp table")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}

	slog.Info("products upserted", slog.Int64("rows", tag.RowsAffected()))

	return nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
