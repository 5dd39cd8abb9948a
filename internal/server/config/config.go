// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the newsfeed identity server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing session tokens (HS256). Do not use test defaults in prod.
//   - SessionTokenValidityDuration: lifetime of an issued session token.
//   - VerificationCodeTTL: lifetime of an email verification code.
//   - OperationTimeout: upper bound for every store, storage and notifier call.
//   - PasswordHashMemory: argon2id memory cost in KiB.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - S3PublicBaseURL: prefix of the URLs handed back for stored media.
//   - MaxUploadSize: largest accepted media file, in bytes.
//   - RabbitMQURL / EmailQueue: verification email delivery. Empty URL logs codes instead.
//   - KafkaBrokers / KafkaTopic: account lifecycle events. No brokers disables publishing.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC             string
	DatabaseDSN                  string
	SecretKey                    string
	SessionTokenValidityDuration time.Duration
	VerificationCodeTTL          time.Duration
	OperationTimeout             time.Duration
	PasswordHashMemory           uint32
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
	S3PublicBaseURL              string
	MaxUploadSize                int64
	RabbitMQURL                  string
	EmailQueue                   string
	KafkaBrokers                 []string
	KafkaTopic                   string
	LogLevel                     string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionTokenValidityDuration = 1 * time.Hour
	c.VerificationCodeTTL = 30 * time.Minute
	c.OperationTimeout = 5 * time.Second
	c.PasswordHashMemory = 64 * 1024
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "newsfeed-media"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3PublicBaseURL = ""
	c.MaxUploadSize = 10 << 20
	c.RabbitMQURL = ""
	c.EmailQueue = "verification-emails"
	c.KafkaBrokers = nil
	c.KafkaTopic = "account-events"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
