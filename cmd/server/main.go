package main

import (
	"log"

	"github.com/openlum/landreport-backend-go/internal/api"
	"github.com/openlum/landreport-backend-go/internal/config"
	"github.com/openlum/landreport-backend-go/internal/database"
	"github.com/openlum/landreport-backend-go/internal/expand"
	"github.com/openlum/landreport-backend-go/internal/grid"
	"github.com/openlum/landreport-backend-go/internal/handler"
	"github.com/openlum/landreport-backend-go/internal/landtype"
	"github.com/openlum/landreport-backend-go/internal/mapping"
	"github.com/openlum/landreport-backend-go/internal/repository"
	"github.com/openlum/landreport-backend-go/internal/service"
	"github.com/openlum/landreport-backend-go/internal/store"
)

func main() {
	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to apply migrations:", err)
	}

	reader := store.NewReader(db)
	mappings := mapping.NewProvider(db)
	expander := expand.New(reader, landtype.Default())
	repo := repository.NewReportRepository(db)

	landService := service.NewLandService(reader, mappings, expander, grid.NaturalVegSplitter{}, repo, cfg.OutputDir)
	nutrientService := service.NewNutrientService(reader, repo, cfg.OutputDir)
	reportService := service.NewReportService(repo)

	reportHandler := handler.NewReportHandler(landService, nutrientService, reportService)
	authHandler := handler.NewAuthHandler(cfg.JWTSecret)

	router := api.SetupRouter(cfg, reportHandler, authHandler)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
