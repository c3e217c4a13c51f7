package ws

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	URL            string        `mapstructure:"url" validate:"required"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// outbound frame rate, to keep a misbehaving UI from flooding the
	// signaling channel
	OutboundRate  float64 `mapstructure:"outbound_rate"`
	OutboundBurst int     `mapstructure:"outbound_burst"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("dial_timeout"), "10s")
	v.SetDefault(p("request_timeout"), "15s")
	v.SetDefault(p("outbound_rate"), 50.0)
	v.SetDefault(p("outbound_burst"), 20)
}
