package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/examdesk/examdesk/internal/adapters/handler/http"
	"github.com/examdesk/examdesk/internal/adapters/repository/memory"
	"github.com/examdesk/examdesk/internal/adapters/repository/postgres"
	"github.com/examdesk/examdesk/internal/adapters/repository/redis"
	"github.com/examdesk/examdesk/internal/config"
	"github.com/examdesk/examdesk/internal/core/ports"
	"github.com/examdesk/examdesk/internal/core/services"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Println("Warning: JWT_SECRET not set, using the insecure development key")
	}

	hasher, err := services.NewHasher(cfg.HashScheme)
	if err != nil {
		log.Fatal(err)
	}

	var db *sql.DB
	if cfg.UserStore == "postgres" || cfg.RefreshStore == "postgres" {
		db, err = openDB()
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
	}

	userRepo, err := buildUserRepo(cfg, db)
	if err != nil {
		log.Fatal(err)
	}
	refreshRepo, err := buildRefreshRepo(cfg, db)
	if err != nil {
		log.Fatal(err)
	}

	userService := services.NewUserService(userRepo, hasher)
	tokenService := services.NewTokenService(services.TokenConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	authService := services.NewAuthService(userService, tokenService, refreshRepo)

	if cfg.UserStore == "memory" {
		seedDefaultAccounts(userService)
	}

	authHandler := http.NewAuthHandler(authService, userService)
	handler := http.NewHandler(authHandler, tokenService)
	server := &stdhttp.Server{Addr: cfg.Addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func openDB() (*sql.DB, error) {
	db, err := sql.Open("postgres", config.DBConnString())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func buildUserRepo(cfg config.Config, db *sql.DB) (ports.UserRepository, error) {
	switch cfg.UserStore {
	case "memory":
		return memory.NewUserRepository(), nil
	case "postgres":
		return postgres.NewUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown USER_STORE %q", cfg.UserStore)
	}
}

func buildRefreshRepo(cfg config.Config, db *sql.DB) (ports.RefreshTokenRepository, error) {
	switch cfg.RefreshStore {
	case "memory":
		return memory.NewRefreshTokenRepository(), nil
	case "postgres":
		return postgres.NewRefreshTokenRepository(db), nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, err
		}
		return redis.NewRefreshTokenRepository(client), nil
	default:
		return nil, fmt.Errorf("unknown REFRESH_STORE %q", cfg.RefreshStore)
	}
}

// seedDefaultAccounts provides the sample data the in-memory store ships
// with: one account per role, for local development.
func seedDefaultAccounts(users ports.UserService) {
	defaults := []ports.RegisterInput{
		{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: "Admin", Department: "Administration"},
		{Name: "John Instructor", Email: "instructor@example.com", Password: "instructor123", Role: "Instructor", Department: "Computer Science"},
		{Name: "Jane Student", Email: "student@example.com", Password: "student123", Role: "Student", Department: "Computer Science", StudentID: "STU001"},
	}

	for _, input := range defaults {
		if _, err := users.Register(context.Background(), input); err != nil {
			log.Printf("seed account %s: %v", input.Email, err)
		}
	}
}
