package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	AIAPIKey    string
	AIModel     string
	AIBaseURL   string
	PromptsPath string // optional YAML prompt overrides

	MirrorPath string // durable session mirror directory

	PassThresholdPct float64
	ReadingSeconds   int
	PauseSeconds     int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:      addr,
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		AuthSecret:    envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", ""),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		AIAPIKey:    os.Getenv("AI_API_KEY"),
		AIModel:     envOr("AI_MODEL", ""),
		AIBaseURL:   envOr("AI_BASE_URL", ""),
		PromptsPath: envOr("PROMPTS_PATH", ""),

		MirrorPath: envOr("MIRROR_PATH", "./data/sessions"),

		PassThresholdPct: envFloat("PASS_THRESHOLD_PCT", 50),
		ReadingSeconds:   envInt("READING_SECONDS", 10),
		PauseSeconds:     envInt("PAUSE_SECONDS", 3),
	}
}
func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
func envFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
