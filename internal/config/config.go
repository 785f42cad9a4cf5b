package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"it-incidents-backend/internal/core/domain"
	"it-incidents-backend/internal/pkg/jwt"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Security SecurityConfig
	Log      LoggerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// SecurityConfig holds the credential security policy
type SecurityConfig struct {
	LockoutThreshold    int
	LockoutDuration     time.Duration
	PasswordExpiryDays  int
	RequireApproval     bool
	BcryptCost          int
	TokenCleanupCronExp string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	jwtConfig, err := loadJWTConfig(appMode)
	if err != nil {
		return nil, err
	}

	security, err := loadSecurityConfig()
	if err != nil {
		return nil, err
	}

	// Build config based on APP_MODE
	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      jwtConfig,
		Cookie:   loadCookieConfig(appMode),
		Security: security,
		Log:      LoggerConfigFromEnv(),
	}

	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "it_incidents"),
	}
}

// loadJWTConfig loads JWT config based on mode. The mode-prefixed secret wins over JWT_SECRET.
func loadJWTConfig(mode string) (JWTConfig, error) {
	prefix := modePrefix(mode)

	secret := getEnv(prefix+"JWT_SECRET", getEnv("JWT_SECRET", ""))
	if len(secret) < jwt.MinSecretLength {
		return JWTConfig{}, fmt.Errorf("%sJWT_SECRET must be at least %d bytes", prefix, jwt.MinSecretLength)
	}

	accessTTL, err := getDuration("ACCESS_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return JWTConfig{}, err
	}
	refreshTTL, err := getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	if err != nil {
		return JWTConfig{}, err
	}

	return JWTConfig{
		Secret:     secret,
		Issuer:     getEnv("JWT_ISSUER", "it-incidents"),
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}, nil
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadSecurityConfig loads lockout, expiry and hashing settings
func loadSecurityConfig() (SecurityConfig, error) {
	threshold, err := getInt("LOCKOUT_THRESHOLD", 5)
	if err != nil {
		return SecurityConfig{}, err
	}
	lockout, err := getDuration("LOCKOUT_DURATION", 15*time.Minute)
	if err != nil {
		return SecurityConfig{}, err
	}
	expiryDays, err := getInt("PASSWORD_EXPIRY_DAYS", 90)
	if err != nil {
		return SecurityConfig{}, err
	}
	bcryptCost, err := getInt("BCRYPT_COST", 12)
	if err != nil {
		return SecurityConfig{}, err
	}
	requireApproval, err := strconv.ParseBool(getEnv("REQUIRE_APPROVAL", "true"))
	if err != nil {
		return SecurityConfig{}, fmt.Errorf("invalid REQUIRE_APPROVAL: %w", err)
	}

	if threshold < 1 {
		return SecurityConfig{}, fmt.Errorf("LOCKOUT_THRESHOLD must be positive")
	}

	return SecurityConfig{
		LockoutThreshold:    threshold,
		LockoutDuration:     lockout,
		PasswordExpiryDays:  expiryDays,
		RequireApproval:     requireApproval,
		BcryptCost:          bcryptCost,
		TokenCleanupCronExp: getEnv("REFRESH_TOKEN_CLEANUP_CRON", "@every 1h"),
	}, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://incidents.example.com"
	}
	return origins
}

// SecurityPolicy returns the policy handed to the auth services
func (c *Config) SecurityPolicy() domain.SecurityPolicy {
	return domain.SecurityPolicy{
		LockoutThreshold: c.Security.LockoutThreshold,
		LockoutDuration:  c.Security.LockoutDuration,
		PasswordExpiry:   time.Duration(c.Security.PasswordExpiryDays) * 24 * time.Hour,
		RequireApproval:  c.Security.RequireApproval,
	}
}

// IssuerConfig returns the token issuer settings
func (c *Config) IssuerConfig() jwt.Config {
	return jwt.Config{
		Secret:     c.JWT.Secret,
		Issuer:     c.JWT.Issuer,
		AccessTTL:  c.JWT.AccessTTL,
		RefreshTTL: c.JWT.RefreshTTL,
	}
}
