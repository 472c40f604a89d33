package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"AUTHCORE_APP_"`
	Server       ServerConfig       `envPrefix:"AUTHCORE_SERVER_"`
	Log          LogConfig          `envPrefix:"AUTHCORE_LOG_"`
	Database     DatabaseConfig     `envPrefix:"AUTHCORE_DB_"`
	Redis        RedisConfig        `envPrefix:"AUTHCORE_REDIS_"`
	JWT          JWTConfig          `envPrefix:"AUTHCORE_JWT_"`
	RefreshToken RefreshTokenConfig `envPrefix:"AUTHCORE_REFRESH_"`
	Password     PasswordConfig     `envPrefix:"AUTHCORE_PASSWORD_"`
	TOTP         TOTPConfig         `envPrefix:"AUTHCORE_TOTP_"`
	APIKey       APIKeyConfig       `envPrefix:"AUTHCORE_APIKEY_"`
	RateLimit    RateLimitConfig    `envPrefix:"AUTHCORE_RATELIMIT_"`
	OTP          OTPConfig          `envPrefix:"AUTHCORE_OTP_"`
	Mail         MailConfig         `envPrefix:"AUTHCORE_MAIL_"`
	OAuth        OAuthConfig        `envPrefix:"AUTHCORE_OAUTH_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"authcore"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"8080"`

	// TrustInternalHeaders lets unauthenticated requests assert identity via
	// X-User-ID/X-Tenant-ID. Only safe behind a gateway that strips those
	// headers from client traffic.
	TrustInternalHeaders bool `env:"TRUST_INTERNAL_HEADERS" envDefault:"false"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"postgres"`
	DSN             string        `env:"DSN"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"false"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type JWTConfig struct {
	Issuer        string        `env:"ISSUER" envDefault:"saasforge"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	PrivateKeyPEM string        `env:"PRIVATE_KEY"`
	PublicKeyPEM  string        `env:"PUBLIC_KEY"`
}

type RefreshTokenConfig struct {
	Expiry      time.Duration `env:"EXPIRY" envDefault:"720h"`
	TokenLength int           `env:"TOKEN_LENGTH" envDefault:"32"`
}

type PasswordConfig struct {
	Memory      uint32 `env:"ARGON2_MEMORY" envDefault:"65536"`
	Time        uint32 `env:"ARGON2_TIME" envDefault:"3"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"2"`
	SaltLength  uint32 `env:"ARGON2_SALT_LENGTH" envDefault:"16"`
	KeyLength   uint32 `env:"ARGON2_KEY_LENGTH" envDefault:"32"`
}

type TOTPConfig struct {
	Issuer     string `env:"ISSUER" envDefault:"SaaSForge"`
	SecretSize uint   `env:"SECRET_SIZE" envDefault:"20"`
	Skew       uint   `env:"SKEW" envDefault:"1"`
}

type APIKeyConfig struct {
	DefaultExpiry time.Duration `env:"DEFAULT_EXPIRY" envDefault:"8760h"`
	KeyBytes      int           `env:"KEY_BYTES" envDefault:"32"`
}

type RateLimitConfig struct {
	LoginMax    int           `env:"LOGIN_MAX" envDefault:"5"`
	LoginWindow time.Duration `env:"LOGIN_WINDOW" envDefault:"1m"`
	OTPMax      int           `env:"OTP_MAX" envDefault:"3"`
	OTPWindow   time.Duration `env:"OTP_WINDOW" envDefault:"1m"`
}

type OTPConfig struct {
	Digits int           `env:"DIGITS" envDefault:"6"`
	Expiry time.Duration `env:"EXPIRY" envDefault:"10m"`
}

type MailConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
}

type OAuthConfig struct {
	StateExpiry   time.Duration `env:"STATE_EXPIRY" envDefault:"10m"`
	DefaultTenant string        `env:"DEFAULT_TENANT"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
