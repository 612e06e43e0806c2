package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/tripti/internal/flagx"
)

var flagNames = []string{
	"-storage", "-dsn", "-session", "-session-dsn", "-session-ttl", "-s",
	"-capacity", "-otp-ttl", "-confirm-delay", "-log-level", "-tz",
	"-audit-dir", "-b", "-g", "-e", "-u", "-p",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-storage string        durable backend: memory, sqlite, postgres, redis
//	-dsn string            durable backend DSN (file path or URL)
//	-session string        session backend: memory, redis
//	-session-dsn string    session backend DSN
//	-session-ttl duration  session lifetime (e.g. "12h")
//	-s string              session signing secret
//	-capacity int          tokens per month
//	-otp-ttl duration      verification code lifetime
//	-confirm-delay duration pause before a signup is stored
//	-log-level string      debug, info, warn, error
//	-tz string             IANA time zone or "Local"
//	-audit-dir string      directory for local audit exports
//	-b, -g, -e             S3 bucket, region, base endpoint
//	-u, -p                 S3 access key and secret key
//
// Only the flags above are picked out of os.Args via flagx.FilterArgs, so
// -c/-config and -env do not collide with them.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "durable storage backend")
	fs.StringVar(&config.StorageDSN, "dsn", config.StorageDSN, "durable storage DSN")
	fs.StringVar(&config.SessionBackend, "session", config.SessionBackend, "session storage backend")
	fs.StringVar(&config.SessionDSN, "session-dsn", config.SessionDSN, "session storage DSN")
	fs.DurationVar(&config.SessionTTL, "session-ttl", config.SessionTTL, "session lifetime")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.MonthlyCapacity, "capacity", config.MonthlyCapacity, "tokens per month")
	fs.DurationVar(&config.OTPTTL, "otp-ttl", config.OTPTTL, "verification code lifetime")
	fs.DurationVar(&config.ConfirmDelay, "confirm-delay", config.ConfirmDelay, "signup confirmation delay")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.Timezone, "tz", config.Timezone, "time zone")
	fs.StringVar(&config.AuditDir, "audit-dir", config.AuditDir, "audit export directory")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
