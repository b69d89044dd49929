package app

import (
	"strings"
	"time"

	"github.com/junoathena/gateway-backend/internal/platform/envutil"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// LabAccessCodeHash is a bcrypt hash of the shared lab access code.
	// Empty disables the check.
	LabAccessCodeHash string

	// MentorEmails get the mentor flag at first login.
	MentorEmails []string

	// AbilityPolicyPath points at a YAML role-defaults file. Empty uses the
	// built-in policy.
	AbilityPolicyPath string

	Environment string
	Version     string
	Port        string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		JWTSecretKey:      envutil.Str("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:    envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:   envutil.Seconds("REFRESH_TOKEN_TTL", 24*time.Hour),
		LabAccessCodeHash: envutil.Str("LAB_ACCESS_CODE_HASH", ""),
		AbilityPolicyPath: envutil.Str("ABILITY_POLICY_PATH", ""),
		Environment:       envutil.Str("APP_ENV", "development"),
		Version:           envutil.Str("APP_VERSION", "dev"),
		Port:              envutil.Str("PORT", "8080"),
	}
	if raw := envutil.Str("MENTOR_EMAILS", ""); raw != "" {
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				cfg.MentorEmails = append(cfg.MentorEmails, m)
			}
		}
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using default secret")
	}
	if cfg.LabAccessCodeHash == "" {
		log.Warn("LAB_ACCESS_CODE_HASH not set, lab access code check disabled")
	}
	return cfg
}
