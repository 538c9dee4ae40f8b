package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del servicio.
// Todo viene por env vars; .env es opcional para dev local.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"pet-adoption-platform"`
	Port    string `env:"PORT" envDefault:"8080"`

	// Si DB_DSN está vacío, el router cae a los repos in-memory (modo dev).
	DBDSN string `env:"DB_DSN"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Identity provider externo. Si falta BaseURL, el API corre en modo dev
	// (headers X-Debug-User-ID / X-Debug-Role).
	IDPBaseURL string `env:"IDP_BASE_URL"`
	IDPAPIKey  string `env:"IDP_API_KEY"`
}

func Load() (Config, error) {
	// .env solo para dev; en deploy real las vars vienen del entorno.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}
