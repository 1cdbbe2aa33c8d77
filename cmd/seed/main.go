// seed creates a demo user with a month of diaries in the configured store.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/diary-service/internal/token"
	"github.com/ErlanBelekov/diary-service/internal/usecase"
	"github.com/joho/godotenv"
)

const (
	seedEmail    = "seed@diary.local"
	seedPassword = "seed-password"
	seedDays     = 30
)

var moods = []string{"happy", "calm", "tired", "", "anxious", "grateful"}

var titles = []string{
	"Morning run", "Team standup went long", "Rainy walk", "Read on the balcony",
	"Cooked for friends", "Quiet day", "Trip planning",
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if len(secret) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 characters")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	pool, err := postgres.NewPool(ctx, dbURL, logger)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := postgres.NewUserRepository(pool)
	authUsecase := usecase.NewAuthUsecase(users, token.NewService([]byte(secret), 0))
	diaryUsecase := usecase.NewDiaryUsecase(postgres.NewDiaryRepository(pool))

	user, err := authUsecase.Register(ctx, seedEmail, seedPassword)
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		user, err = users.FindByEmail(ctx, seedEmail)
		if err != nil {
			log.Fatalf("find seed user: %v", err)
		}
	case err != nil:
		log.Fatalf("register: %v", err)
	}

	existing, err := diaryUsecase.ListAll(ctx, user.ID)
	if err != nil {
		log.Fatalf("list diaries: %v", err)
	}

	var created int
	if len(existing) == 0 {
		today := time.Now().UTC()
		for i := range seedDays {
			day := today.AddDate(0, 0, -i)
			mood := moods[i%len(moods)]
			_, err := diaryUsecase.Create(ctx, usecase.CreateDiaryInput{
				UserID:      user.ID,
				Title:       titles[i%len(titles)],
				Content:     fmt.Sprintf("Entry %d written for %s.", i+1, domain.FormatJournalDate(day)),
				JournalDate: domain.FormatJournalDate(day),
				Mood:        &mood,
			})
			if err != nil {
				log.Fatalf("create diary %d: %v", i+1, err)
			}
			created++
		}
	}

	accessToken, err := authUsecase.Login(ctx, seedEmail, seedPassword)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:            %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:         %d\n", user.ID)
	fmt.Printf("  Diaries created: %d  (%d already existed)\n", created, len(existing))
	fmt.Println()
	fmt.Println("Try it:")
	fmt.Println()
	fmt.Printf("  export JWT=%s\n", accessToken)
	fmt.Println("  curl -s 'http://localhost:3001/diaries?limit=5' -H \"Authorization: Bearer $JWT\"")
	fmt.Println("  curl -s http://localhost:3001/diaries/export/csv -H \"Authorization: Bearer $JWT\" -o diaries.csv")
}
