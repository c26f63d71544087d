package main

import (
	"roombooking/config"
	"roombooking/di"
	"roombooking/helper"
	"roombooking/shared/logger"
	"roombooking/shared/timezone"

	"github.com/rs/zerolog/log"
)

// @title Room Booking API
// @version 1.0
// @description Meeting room booking backend: rooms, facilities, bookings with approval and check-in/out evidence.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Get()

	logger.InitLogger(cfg.Server.Env)

	logger.SetLogLevel(cfg)

	timezone.Init(cfg.App.Timezone)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
