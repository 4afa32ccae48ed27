package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/chetan-code/taskshare/internal/auth"
	"github.com/chetan-code/taskshare/internal/handler"
	"github.com/chetan-code/taskshare/internal/repository"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func loadEnvVar() {
	//load env variables - a real environment may carry them directly
	err := godotenv.Load()
	if err != nil {
		slog.Warn("environment_var_load_failure", "error", err)
	}
}

func initDB() *sql.DB {
	dburl := os.Getenv("DB_URL")
	db, err := sql.Open("pgx", dburl)
	if err != nil {
		slog.Error("database_intialization_failed", "error", err)
		os.Exit(1)
	}

	//check if connectoin is alive
	err = db.Ping()
	if err != nil {
		slog.Error("database_connection_ping_failed", "error", err)
		os.Exit(1)
	}

	slog.Info("database_intialisation_success", "url", dburl)

	return db
}

// initCache is optional - without REDIS_ADDR the store reads straight
// from postgres every time.
func initCache() *repository.TaskCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		slog.Info("task_cache_disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("redis_connection_ping_failed", "error", err, "addr", addr)
		os.Exit(1)
	}

	slog.Info("redis_connection_success", "addr", addr)
	return repository.NewTaskCache(rdb)
}

func tokenTTL() time.Duration {
	raw := os.Getenv("TOKEN_TTL")
	if raw == "" {
		return auth.DefaultTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		slog.Error("invalid_token_ttl", "value", raw, "error", err)
		os.Exit(1)
	}
	return ttl
}

func loggerMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		//logging completion of a request
		slog.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"ip", r.RemoteAddr,
			//imp : how long does it take a req to complete
			"duration", time.Since(start).String(),
		)
	})
}

func startServer(port string, mux http.Handler) {
	err := http.ListenAndServe(port, mux)
	if err != nil {
		slog.Error("server_start_failed", "error", err)
	}
	slog.Info("server_start_success", "port", port)
}

func setupSlog() {
	//Json handler that writes to standard out
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug, //log debug and above
		AddSource: true,            //adds file name and line number
	})

	//Intialise new logger and set it as default for the server
	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func main() {

	//structure logging
	setupSlog()

	loadEnvVar()

	db := initDB()
	defer db.Close()

	cache := initCache()

	store, err := repository.NewSQLStore(db, cache)
	if err != nil {
		slog.Error("repository_creation_failed", "error", err)
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("jwt_secret_missing")
		os.Exit(1)
	}
	tokens := auth.NewTokenService([]byte(secret), tokenTTL())

	ah := handler.NewAuthHandler(store, tokens)
	th := handler.NewTaskHandler(store, store)

	//routing
	mux := handler.NewRouter(ah, th)

	//middleweare
	wrappedMux := loggerMW(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}
	startServer(port, wrappedMux)
}
