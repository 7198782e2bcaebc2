package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"footybot/backend/internal/api/handler"
	"footybot/backend/internal/config"
	"footybot/backend/internal/models"
	"footybot/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultTokenHours = 24

// adminConfig is the subset of the bot's environment the CLI needs.
type adminConfig struct {
	DatabaseDSN string `envconfig:"DATABASE_DSN"`
	JWTSecret   string `envconfig:"JWT_SECRET"`
}

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("  token <user_id> [hours]     mint an API token")
	fmt.Println("  history <chat_id> [limit]   list archived matches")
}

func main() {
	_ = godotenv.Load()

	var cfg adminConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "token":
		err = runToken(os.Stdout, cfg, os.Args[2:])
	case "history":
		err = runHistory(os.Stdout, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runToken(w io.Writer, cfg adminConfig, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: admin token <user_id> [hours]")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || userID <= 0 {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	hours := defaultTokenHours
	if len(args) > 1 {
		hours, err = strconv.Atoi(args[1])
		if err != nil || hours <= 0 {
			return fmt.Errorf("invalid duration %q, expected a positive number of hours", args[1])
		}
	}

	token, err := handler.GenerateToken([]byte(cfg.JWTSecret), userID, time.Duration(hours)*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Fprintln(w, token)
	return nil
}

func runHistory(w io.Writer, cfg adminConfig, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: admin history <chat_id> [limit]")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is not set")
	}

	chatID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q", args[0])
	}
	limit := config.HistoryLimit
	if len(args) > 1 {
		limit, err = strconv.Atoi(args[1])
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid limit %q", args[1])
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	matches, err := storage.NewStorageService(db, nil).RecentMatches(context.Background(), chatID, limit)
	if err != nil {
		return err
	}
	renderMatches(w, matches)
	return nil
}

func renderMatches(w io.Writer, matches []models.MatchRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Closed At", "Closed By", "Players", "Teams"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, m := range matches {
		teams := make([]string, len(m.Teams))
		for i, t := range m.Teams {
			teams[i] = fmt.Sprintf("%s: %s", t.Label, strings.Join(t.Players, ", "))
		}
		table.Append([]string{
			m.ClosedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(m.ClosedBy, 10),
			strconv.Itoa(m.Players),
			strings.Join(teams, " | "),
		})
	}
	table.Render()
}
