package handler

import (
	"courtside/config"
	"courtside/di"
	"courtside/shared/logger"
	"net/http"
	"sync"

	thttp "courtside/transport/http"
)

var (
	server     *thttp.HTTP
	serverOnce sync.Once
)

// Handler is the serverless entrypoint. The dependency graph is built once per warm instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	serverOnce.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
