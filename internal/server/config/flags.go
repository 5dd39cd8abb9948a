package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN (empty: in-memory store)
//	-s string   session token HMAC secret key
//	-t int      session token validity, minutes
//	-v int      verification code TTL, minutes
//	-o int      operation timeout, seconds
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m int      max upload size, bytes
//	-q string   RabbitMQ URL
//	-n string   Kafka brokers, comma separated
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first so that flags owned by
// other layers (-c/-config) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-v", "-o", "-u", "-p", "-b", "-g", "-e", "-m", "-q", "-n", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	codeTTL := fs.Int("v", int(config.VerificationCodeTTL.Minutes()), "verification code ttl (in minutes)")
	opTimeout := fs.Int("o", int(config.OperationTimeout.Seconds()), "operation timeout (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.Int64Var(&config.MaxUploadSize, "m", config.MaxUploadSize, "max upload size (in bytes)")
	fs.StringVar(&config.RabbitMQURL, "q", config.RabbitMQURL, "RabbitMQ URL")
	brokers := fs.String("n", strings.Join(config.KafkaBrokers, ","), "Kafka brokers (comma separated)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Unit-converted flags only override when given, so sub-minute values
	// from JSON survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidity) * time.Minute
		case "v":
			config.VerificationCodeTTL = time.Duration(*codeTTL) * time.Minute
		case "o":
			config.OperationTimeout = time.Duration(*opTimeout) * time.Second
		case "n":
			config.KafkaBrokers = splitList(*brokers)
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
