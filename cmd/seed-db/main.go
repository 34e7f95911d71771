package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/mall-orders/internal/handler"
	"github.com/xenking/mall-orders/internal/repository"
)

type skuJSON struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	DefaultImage string          `json:"default_image"`
}

func main() {
	var (
		databaseURL   string
		skusFile      string
		sessionToken  string
		sessionPepper string
		username      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&skusFile, "skus-file", "db/seed/skus.json", "path to SKUs JSON file")
	flag.StringVar(&sessionToken, "session-token", "", "session token to seed (or MALL_SEED_SESSION_TOKEN env)")
	flag.StringVar(&sessionPepper, "session-pepper", "", "HMAC pepper for token hashing (or MALL_SESSION_PEPPER env)")
	flag.StringVar(&username, "username", "demo", "username for the seeded account")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if sessionToken == "" {
		sessionToken = os.Getenv("MALL_SEED_SESSION_TOKEN")
	}
	if sessionToken == "" {
		slog.Error("session token is required: set --session-token or MALL_SEED_SESSION_TOKEN")
		os.Exit(1)
	}
	if sessionPepper == "" {
		sessionPepper = os.Getenv("MALL_SESSION_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, skusFile, sessionToken, sessionPepper, username); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, skusFile, token, pepper, username string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedSKUs(ctx, pool, skusFile); err != nil {
		return errors.Wrap(err, "seed skus")
	}

	userID, err := seedUser(ctx, pool, username)
	if err != nil {
		return errors.Wrap(err, "seed user")
	}

	if err := seedAddress(ctx, pool, userID); err != nil {
		return errors.Wrap(err, "seed address")
	}

	if err := seedSession(ctx, pool, userID, token, pepper); err != nil {
		return errors.Wrap(err, "seed session")
	}

	return nil
}

func seedSKUs(ctx context.Context, pool *pgxpool.Pool, skusFile string) error {
	slog.Info("reading skus file", slog.String("path", skusFile))

	data, err := os.ReadFile(skusFile)
	if err != nil {
		return errors.Wrap(err, "read skus file")
	}

	var skus []skuJSON
	if err := json.Unmarshal(data, &skus); err != nil {
		return errors.Wrap(err, "parse skus JSON")
	}

	slog.Info("upserting skus", slog.Int("count", len(skus)))

	const insertSKU = `
INSERT INTO skus (name, price, stock, default_image)
VALUES ($1, $2, $3, $4)`

	// Names are not unique in the catalog, so re-running the seed against a
	// populated database would duplicate rows. Skip when any SKU exists.
	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM skus`).Scan(&count); err != nil {
		return errors.Wrap(err, "count skus")
	}
	if count > 0 {
		slog.Info("skus already present, skipping", slog.Int("existing", count))
		return nil
	}

	for _, s := range skus {
		if _, err := pool.Exec(ctx, insertSKU, s.Name, s.Price, s.Stock, s.DefaultImage); err != nil {
			return errors.Wrapf(err, "insert sku %s", s.Name)
		}

		slog.Info("inserted sku", slog.String("name", s.Name), slog.String("price", s.Price.String()))
	}

	return nil
}

func seedUser(ctx context.Context, pool *pgxpool.Pool, username string) (int64, error) {
	slog.Info("seeding user", slog.String("username", username))

	const upsertUser = `
INSERT INTO users (username)
VALUES ($1)
ON CONFLICT (username) DO UPDATE SET username = excluded.username
RETURNING id`

	var id int64
	if err := pool.QueryRow(ctx, upsertUser, username).Scan(&id); err != nil {
		return 0, errors.Wrapf(err, "upsert user %s", username)
	}

	slog.Info("upserted user", slog.Int64("id", id))

	return id, nil
}

func seedAddress(ctx context.Context, pool *pgxpool.Pool, userID int64) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM addresses WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return errors.Wrap(err, "count addresses")
	}
	if count > 0 {
		slog.Info("address already present, skipping")
		return nil
	}

	const insertAddress = `
INSERT INTO addresses (user_id, receiver, province, city, district, detail, phone)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	var id int64
	err := pool.QueryRow(ctx, insertAddress,
		userID, "Demo Receiver", "Guangdong", "Shenzhen", "Nanshan", "1 Demo Road", "13800000000",
	).Scan(&id)
	if err != nil {
		return errors.Wrap(err, "insert address")
	}

	slog.Info("inserted address", slog.Int64("id", id))

	return nil
}

func seedSession(ctx context.Context, pool *pgxpool.Pool, userID int64, token, pepper string) error {
	slog.Info("seeding session")

	tokenHash := handler.HashToken(token, []byte(pepper))

	const upsertSession = `
INSERT INTO sessions (token_hash, user_id, name)
VALUES ($1, $2, $3)
ON CONFLICT (token_hash) DO UPDATE SET user_id = excluded.user_id`

	if _, err := pool.Exec(ctx, upsertSession, tokenHash, userID, "Seeded test session"); err != nil {
		return errors.Wrap(err, "upsert session")
	}

	slog.Info("upserted session", slog.Int64("user_id", userID))

	return nil
}
