package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"doc-compliance/internal/adapter/repository/mysql"
	"doc-compliance/internal/config"
	"doc-compliance/internal/infrastructure/db"
	"doc-compliance/internal/usecase/assignment"
	"doc-compliance/internal/usecase/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	file := flag.String("file", cfg.CatalogFile, "catalog YAML file")
	backfill := flag.Bool("backfill", false, "assign new required types to known employees")
	flag.Parse()

	logger := config.NewLogger(cfg)
	ctx := context.Background()

	gdb, err := db.Open(cfg, logger)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}

	entries, err := catalog.LoadSeedFile(*file)
	if err != nil {
		logger.Error("read catalog", slog.String("file", *file), slog.Any("error", err))
		os.Exit(1)
	}

	types := mysql.NewDocumentTypeRepository(gdb)
	seeded, err := catalog.NewUsecase(types, logger).Seed(ctx, entries)
	if err != nil {
		logger.Error("seed catalog", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("catalog seeded", slog.String("file", *file), slog.Int("entries", len(seeded)))

	if !*backfill {
		return
	}
	assign := assignment.NewUsecase(types, mysql.NewRequirementRepository(gdb),
		assignment.WithLogger(logger),
		assignment.WithUnitOfWork(mysql.NewGormUoW(gdb)))
	for _, d := range seeded {
		if !d.Required {
			continue
		}
		if _, err := assign.BackfillType(ctx, d.TypeID); err != nil {
			logger.Error("backfill", slog.String("type_id", d.TypeID), slog.Any("error", err))
			os.Exit(1)
		}
	}
}
