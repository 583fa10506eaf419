// Command siraracore is a thin CLI front end for the ledger core: it
// can run pending migrations, create ledger accounts, post a journal
// from a JSON command file, and inspect an account balance.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/victorotene80/sirara-core/internal/core/ports"
	"github.com/victorotene80/sirara-core/internal/core/services"
	"github.com/victorotene80/sirara-core/internal/domain"
	"github.com/victorotene80/sirara-core/internal/dto"
	"github.com/victorotene80/sirara-core/internal/ledgerctx"
	"github.com/victorotene80/sirara-core/internal/platform/config"
	"github.com/victorotene80/sirara-core/internal/platform/database"
	"github.com/victorotene80/sirara-core/internal/postingpolicy"
	"github.com/victorotene80/sirara-core/internal/repositories/pgsql"
	"github.com/victorotene80/sirara-core/internal/uow"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := ledgerctx.WithLogger(context.Background(), logger)

	switch os.Args[1] {
	case "migrate":
		runMigrate(cfg, logger)
	case "create-account":
		runCreateAccount(ctx, cfg, logger, os.Args[2:])
	case "post":
		runPost(ctx, cfg, logger, os.Args[2:])
	case "balance":
		runBalance(ctx, cfg, logger, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: siraracore <migrate|create-account|post|balance> [flags]")
}

func runMigrate(cfg *config.Config, logger *slog.Logger) {
	if err := database.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		logger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("migrations applied")
}

// newValidator builds the go-playground/validator instance used to
// check inbound commands before they reach the domain layer, and
// registers the one custom rule this CLI needs beyond the built-ins.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("big_int_str", validateBigIntString); err != nil {
		slog.Error("failed to register 'big_int_str' validator", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return v
}

// validateBigIntString implements validator.Func for a string field
// that must parse as a base-10 integer of arbitrary size.
func validateBigIntString(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		slog.Warn("validator 'big_int_str' used on non-string type", "fieldType", fl.Field().Type())
		return false
	}
	_, ok = new(big.Int).SetString(s, 10)
	return ok
}

func setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.LedgerService, func()) {
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.Options{
		MaxConns:       cfg.DBPoolMaxConns,
		AcquireTimeout: cfg.DBAcquireTimeout,
	})
	if err != nil {
		logger.Error("failed to open database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := pgsql.NewLedgerRepository(pool)
	unitOfWork := uow.New(pool)
	policy := postingpolicy.NewService(postingpolicy.Limits{
		MaxLinesNormal:    cfg.MaxLinesNormal,
		MaxLinesBatch:     cfg.MaxLinesBatch,
		MaxAmountAbsMinor: cfg.MaxAmountMinorPerAsset,
	})
	svc := services.NewLedgerService(repo, unitOfWork, policy)

	return svc, func() { database.ClosePgxPool(pool) }
}

func runCreateAccount(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("create-account", flag.ExitOnError)
	ownerType := fs.String("owner-type", "", "USER, PLATFORM, or TREASURY")
	ownerID := fs.String("owner-id", "", "owner UUID, required for USER-owned accounts")
	accountType := fs.String("account-type", "", "e.g. USER_AVAILABLE, USER_LOCKED")
	assetID := fs.Int("asset-id", 0, "asset id")
	_ = fs.Parse(args)

	var ownerUUID *uuid.UUID
	if *ownerID != "" {
		parsed, err := uuid.Parse(*ownerID)
		if err != nil {
			logger.Error("invalid owner-id", slog.String("error", err.Error()))
			os.Exit(1)
		}
		ownerUUID = &parsed
	}

	svc, cleanup := setup(ctx, cfg, logger)
	defer cleanup()

	account, err := svc.CreateAccount(ctx, domain.OwnerType(*ownerType), ownerUUID, domain.AccountType(*accountType), int16(*assetID))
	if err != nil {
		logger.Error("failed to create account", slog.String("error", err.Error()))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(account)
}

func runPost(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	path := fs.String("file", "", "path to a JSON PostJournalCommand")
	_ = fs.Parse(args)

	if *path == "" {
		logger.Error("post requires -file")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		logger.Error("failed to read command file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cmd dto.PostJournalCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		logger.Error("failed to parse command file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := newValidator().Struct(cmd); err != nil {
		logger.Error("command failed validation", slog.String("error", err.Error()))
		os.Exit(1)
	}

	draft, err := cmd.ToDomainDraft()
	if err != nil {
		logger.Error("command could not be mapped to a journal draft", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc, cleanup := setup(ctx, cfg, logger)
	defer cleanup()

	posted, err := svc.PostJournalAtomic(ctx, draft, cmd.Batch)
	if err != nil {
		logger.Error("failed to post journal", slog.String("error", err.Error()))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(posted)
}

func runBalance(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	accountID := fs.Int64("account-id", 0, "ledger account id")
	_ = fs.Parse(args)

	svc, cleanup := setup(ctx, cfg, logger)
	defer cleanup()

	balance, err := svc.GetBalance(ctx, *accountID)
	if err != nil {
		logger.Error("failed to look up balance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("%s\n", balance.String())
}
