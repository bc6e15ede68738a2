package config

import (
	"os"
	"strings"
)

// Config is read once from the environment and then threaded explicitly into
// each adapter's constructor; nothing holds it as process-global state.
type Config struct {
	HTTPAddr string

	// Local single-slot store (sqlite DSN).
	LocalStoreDSN string

	// Remote store, public write path (safe for untrusted clients).
	SupabaseURL     string
	SupabaseAnonKey string

	// Privileged read path. Server-side only; never serialized and never
	// handed to anything that renders responses.
	ServiceRoleKey string
	DatabaseURL    string // primary direct-SQL strategy; REST when empty

	// Admin surface.
	AdminPassword string
	AdminPassHash string // bcrypt; takes precedence over AdminPassword
	SessionSecret string

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:        addr,
		LocalStoreDSN:   envOr("LOCAL_STORE_DSN", ""),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		ServiceRoleKey:  os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AdminPassHash:   os.Getenv("ADMIN_PASS_HASH"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		CORSOrigins:     csvOr("CORS_ORIGINS", "*"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
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
