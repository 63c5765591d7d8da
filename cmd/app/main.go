package main

import (
	"courtside/config"
	"courtside/di"
	"courtside/helper"
	"courtside/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Courtside API
// @version 1.0
// @description Court booking: availability, allocation, pricing and booking lifecycle.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if err := helper.AutoMigrate(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	http := di.InitializeService()
	http.Serve()
}
