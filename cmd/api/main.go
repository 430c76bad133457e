package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Anasanas60/krishokbazar/handlers"
	"github.com/Anasanas60/krishokbazar/internal/auth"
	"github.com/Anasanas60/krishokbazar/internal/categories"
	"github.com/Anasanas60/krishokbazar/internal/messages"
	"github.com/Anasanas60/krishokbazar/internal/orders"
	"github.com/Anasanas60/krishokbazar/internal/products"
	"github.com/Anasanas60/krishokbazar/internal/stores/kafka"
	"github.com/Anasanas60/krishokbazar/internal/stores/postgres"
	"github.com/Anasanas60/krishokbazar/internal/users"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		log.Fatalf("startup failed: %v", err)
	}
}

func run() error {
	db, err := postgres.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	keys, err := auth.NewKeys(os.Getenv("JWT_SECRET"), jwtExpiry())
	if err != nil {
		return err
	}

	userConf, err := users.NewConf(db)
	if err != nil {
		return err
	}
	productConf, err := products.NewConf(db)
	if err != nil {
		return err
	}
	categoryConf, err := categories.NewConf(db)
	if err != nil {
		return err
	}
	orderConf, err := orders.NewConf(db)
	if err != nil {
		return err
	}
	messageConf, err := messages.NewConf(db)
	if err != nil {
		return err
	}

	// Order events are optional; the API runs without a broker.
	kafkaConf, err := kafka.NewConf()
	if err != nil {
		slog.Warn("kafka disabled", slog.String("reason", err.Error()))
		kafkaConf = nil
	} else {
		defer kafkaConf.Close()
	}

	r := handlers.API(userConf, productConf, categoryConf, orderConf, messageConf, kafkaConf, keys)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("starting server", slog.String("port", port))
	return http.ListenAndServe(":"+port, r)
}

func jwtExpiry() time.Duration {
	if v := os.Getenv("JWT_EXPIRE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 24 * time.Hour
}
