package config

import (
	"time"

	"github.com/spf13/viper"
)

// Retry holds the default retry policy applied to store queries.
type Retry struct {
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
}

func getRetryConfig(v *viper.Viper) *Retry {
	return &Retry{
		MaxRetries:      v.GetInt("retry.max_retries"),
		InitialDelay:    v.GetDuration("retry.initial_delay"),
		MaxDelay:        v.GetDuration("retry.max_delay"),
		ExponentialBase: v.GetFloat64("retry.exponential_base"),
	}
}
