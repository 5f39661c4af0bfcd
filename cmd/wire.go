package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/seungjunone/peloton-data-explorer/internal/adapters/peloton"
	tablesadapter "github.com/seungjunone/peloton-data-explorer/internal/adapters/render/tables"
	sessionstore "github.com/seungjunone/peloton-data-explorer/internal/adapters/session/toml"
	"github.com/seungjunone/peloton-data-explorer/internal/application"
	"github.com/seungjunone/peloton-data-explorer/internal/domain"
	"github.com/seungjunone/peloton-data-explorer/internal/ports"
)

const (
	apiBaseURLKey   = "api.base_url"
	authUsernameKey = "auth.username"
	authPasswordKey = "auth.password"

	defaultRequestTimeout = 30 * time.Second
)

type app struct {
	service  *application.Service
	renderer func(domain.Extracts, tablesadapter.RenderOptions) string
	config   *viper.Viper
}

func wireApp() (*app, error) {
	cfg := viper.New()

	sessions, err := sessionstore.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	cfg.SetDefault(apiBaseURLKey, peloton.DefaultBaseURL)
	client, err := peloton.NewClient(envOrDefault("PDE_API_BASE_URL", cfg.GetString(apiBaseURLKey)), defaultRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	return &app{
		service:  application.NewService(client, sessions, ports.SystemClock{}),
		renderer: tablesadapter.Render,
		config:   cfg,
	}, nil
}

// resolveCredentials settles the username/password at the edge: explicit
// flags win, then the config file, then the environment. The core only ever
// sees the resolved pair.
func (a *app) resolveCredentials(username, password string) domain.Credentials {
	if username == "" {
		username = a.config.GetString(authUsernameKey)
	}
	if username == "" {
		username = os.Getenv("PELOTON_USER_NAME")
	}

	if password == "" {
		password = a.config.GetString(authPasswordKey)
	}
	if password == "" {
		password = os.Getenv("PELOTON_PASSWORD")
	}

	return domain.Credentials{Username: username, Password: password}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
