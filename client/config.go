package client

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	TokenRetry RetryConfig `mapstructure:"token_retry"`
}

// RetryConfig bounds the token fetch retry loop. Call signaling itself is
// never retried; a failed call settles in a terminal state instead.
type RetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("token_retry.initial_interval"), "200ms")
	v.SetDefault(p("token_retry.max_interval"), "2s")
	v.SetDefault(p("token_retry.max_elapsed_time"), "10s")
}
