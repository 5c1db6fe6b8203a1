package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/svetlin-marinov/kicktip/internal/logger"
	"github.com/svetlin-marinov/kicktip/pkg/kicktip"
)

const usage = `kicktip - football match prediction engine

Usage:
  kicktip predict [date]          evaluate fixtures (default: today)
  kicktip refresh [date]          drop the cache and evaluate fresh
  kicktip invalidate [date]       drop the cached batch for the date
  kicktip result <home> <away> <hg> <ag>  record a finished match
  kicktip stats                   show engine and cache diagnostics

Dates are YYYY-MM-DD. Configuration comes from KICKTIP_* environment
variables or a YAML file named by KICKTIP_CONFIG.`

func main() {
	logger.SetShowDateTime(true)

	config, err := kicktip.LoadConfig()
	if err != nil {
		logger.Error("Configuration invalid:", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(config.LogLevel))

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	if err := run(config, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("Command failed:", err)
		os.Exit(1)
	}
}

func run(config *kicktip.EngineConfig, command string, args []string) error {
	if err := kicktip.InitDatabase(config.DbPath); err != nil {
		return fmt.Errorf("failed to initialise database: %w", err)
	}
	defer kicktip.CloseDatabase()

	ratings, err := kicktip.NewPersistentRatingStore(config)
	if err != nil {
		return err
	}

	source := kicktip.NewAPIDataSource(
		os.Getenv("KICKTIP_API_URL"),
		os.Getenv("KICKTIP_ODDS_URL"),
		os.Getenv("KICKTIP_API_KEY"),
		config,
	)

	engine, err := kicktip.NewEngine(config, source, source, ratings)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch command {
	case "predict":
		result, err := engine.EvaluateDate(ctx, dateArg(engine, args))
		if err != nil {
			return err
		}
		logger.Info("Predictions served", result.Provenance, len(result.Batch.Records))
		return printJSON(result)

	case "refresh":
		result, err := engine.Refresh(ctx, dateArg(engine, args))
		if err != nil {
			return err
		}
		logger.Info("Fresh predictions evaluated", len(result.Batch.Records))
		return printJSON(result)

	case "invalidate":
		engine.InvalidateCache(dateArg(engine, args))
		return nil

	case "result":
		if len(args) != 4 {
			return fmt.Errorf("usage: kicktip result <home> <away> <homeGoals> <awayGoals>")
		}
		homeGoals, err := strconv.Atoi(args[2])
		if err != nil || homeGoals < 0 {
			return fmt.Errorf("home goals must be a non-negative number, got %q", args[2])
		}
		awayGoals, err := strconv.Atoi(args[3])
		if err != nil || awayGoals < 0 {
			return fmt.Errorf("away goals must be a non-negative number, got %q", args[3])
		}
		engine.ApplyResult(args[0], args[1], homeGoals, awayGoals)
		logger.Info("Result recorded", args[0], args[1], homeGoals, awayGoals)
		return nil

	case "stats":
		return printJSON(engine.Stats())

	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func dateArg(engine *kicktip.Engine, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return engine.Today()
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
