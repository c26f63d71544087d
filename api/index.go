package handler

import (
	"net/http"
	"roombooking/config"
	"roombooking/di"
	"roombooking/shared/logger"
	"roombooking/shared/timezone"
	"sync"

	roombookingHTTP "roombooking/transport/http"
)

var (
	server *roombookingHTTP.HTTP
	once   sync.Once
)

// Handler is the serverless entrypoint. The dependency graph is built on the first invocation and reused.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger(cfg.Server.Env)

		logger.SetLogLevel(cfg)

		timezone.Init(cfg.App.Timezone)

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
