package log

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. Production deployments log JSON; elsewhere
// the console encoder is used. An unparsable level falls back to debug.
func New(levelEnv string, production bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if production {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)

	if levelEnv != "" {
		if err := cfg.Level.UnmarshalText([]byte(levelEnv)); err != nil {
			fmt.Printf("bad LOG_LEVEL=%s, fallback to debug\n", levelEnv)
			cfg.Level.SetLevel(zap.DebugLevel)
		}
	}
	return cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func Must(levelEnv string, production bool) *zap.Logger {
	l, err := New(levelEnv, production)
	if err != nil {
		panic(err)
	}
	return l
}

// Fingerprint identifies a user in logs without writing the email itself.
func Fingerprint(email string) zap.Field {
	sum := sha256.Sum256([]byte(email))
	return zap.String("user", hex.EncodeToString(sum[:]))
}
