// Package config maps environment variables onto mapstructure-tagged
// structs. Packages expose a Setup(v, prefix) that registers their
// defaults; a binary composes them inside the Load configure hook.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// NewViper returns a viper reading the environment with dots mapped to
// underscores, so the key "signaling.dial_timeout" binds to
// SIGNALING_DIAL_TIMEOUT.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	return v
}

// Load fills c from the environment after configure has registered the
// defaults.
func Load[T any](c *T, configure func(v *viper.Viper)) (*T, error) {
	v := NewViper()

	configure(v)
	return c, v.Unmarshal(c)
}
