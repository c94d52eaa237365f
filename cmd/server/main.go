package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"delivery-log-service/internal/adapters/media"
	"delivery-log-service/internal/adapters/repositories"
	"delivery-log-service/internal/adapters/sheets"
	"delivery-log-service/internal/adapters/transcribe"
	"delivery-log-service/internal/api"
	"delivery-log-service/internal/config"
	"delivery-log-service/internal/domain"
	"delivery-log-service/internal/pending"
	"delivery-log-service/internal/platform/db"
	"delivery-log-service/internal/ports"
	"delivery-log-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (sqlite or postgres, Redis, the speech and
// media collaborators) behind ports and starts the webhook server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	accountSID := mustGetEnv("TWILIO_ACCOUNT_SID")
	authToken := mustGetEnv("TWILIO_AUTH_TOKEN")
	speechKey := mustGetEnv("GOOGLE_SPEECH_API_KEY")

	deliveryLog, repo, closeDB, err := openDeliveryLog()
	if err != nil {
		log.Fatal(err)
	}
	defer closeDB()

	// Optional workbook mirror of the log for people who live in
	// spreadsheets.
	if sheetPath := os.Getenv("SHEET_PATH"); sheetPath != "" {
		workbook, err := sheets.NewXLSXDeliveryLog(sheetPath)
		if err != nil {
			log.Fatal(err)
		}
		deliveryLog = &teeLog{logs: []ports.DeliveryLog{deliveryLog, workbook}}
	}

	store, err := openPendingStore()
	if err != nil {
		log.Fatal(err)
	}

	fetcher, err := media.NewTwilioFetcher(accountSID, authToken)
	if err != nil {
		log.Fatal(err)
	}
	transcriber, err := transcribe.NewGoogleTranscriber(speechKey)
	if err != nil {
		log.Fatal(err)
	}

	conv := &services.Conversation{
		Pending:     store,
		Media:       fetcher,
		Transcriber: transcriber,
		Log:         deliveryLog,
	}
	router := api.NewRouter(conv, repo)

	// The write timeout leaves room for a cold speech-to-text round trip.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// Postgres when DATABASE_URL is set, local sqlite otherwise.
func openDeliveryLog() (ports.DeliveryLog, ports.DeliveryRepository, func(), error) {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repositories.NewSQLDeliveryLog(pg)
		return repo, repo, func() { _ = pg.Close() }, nil
	}

	dbPath := config.Get("DB_PATH", "data/deliveries.db")
	sqliteDB, err := openSqlite(dbPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := repositories.InitSchema(sqliteDB); err != nil {
		_ = sqliteDB.Close()
		return nil, nil, nil, err
	}
	repo := repositories.NewSqliteDeliveryLog(sqliteDB)
	return repo, repo, func() { _ = sqliteDB.Close() }, nil
}

// Redis-backed shared state when REDIS_ADDR is set, in-process otherwise.
func openPendingStore() (pending.Store, error) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		return pending.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("verify redis connection to %q: %w", redisAddr, err)
	}
	return pending.NewRedisStore(client), nil
}

func openSqlite(dbPath string) (*sql.DB, error) {
	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openSqlite: open sqlite database %q: %w", dbPath, err)
	}

	if err := sqliteDB.Ping(); err != nil {
		return nil, fmt.Errorf("openSqlite: verify sqlite connection to %q: %w", dbPath, err)
	}

	return sqliteDB, nil
}

// teeLog fans one append out to every configured delivery log.
type teeLog struct {
	logs []ports.DeliveryLog
}

func (t *teeLog) Append(ctx context.Context, rec *domain.DeliveryRecord) error {
	for _, l := range t.logs {
		if err := l.Append(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		log.Fatalf("%s is required", key)
	}
	return value
}
