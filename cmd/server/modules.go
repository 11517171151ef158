package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/grader/internal/api"
	"github.com/JaimeStill/grader/internal/auth"
	"github.com/JaimeStill/grader/internal/config"
	"github.com/JaimeStill/grader/internal/infrastructure"
	"github.com/JaimeStill/grader/pkg/middleware"
	"github.com/JaimeStill/grader/pkg/module"
	"github.com/JaimeStill/grader/pkg/routes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Modules struct {
	API  *module.Module
	Auth *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	logger := infra.Logger.With("module", "auth")
	authMux := http.NewServeMux()
	routes.Register(authMux, auth.NewHandler(infra.Auth, logger).Routes())

	authModule := module.New("/auth", authMux)
	authModule.Use(middleware.Logger(logger))
	authModule.Use(middleware.Metrics())

	return &Modules{
		API:  apiModule,
		Auth: authModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Auth)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.HandleNative("GET /metrics", promhttp.Handler().ServeHTTP)

	return router
}
