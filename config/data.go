package config

import (
	"time"

	"github.com/spf13/viper"
)

// Data represents the data layer configuration.
type Data struct {
	MongoDB *MongoDB
}

// MongoDB represents the document store configuration.
type MongoDB struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

func getDataConfig(v *viper.Viper) *Data {
	connectTimeout := v.GetDuration("data.mongodb.connect_timeout")
	if connectTimeout == 0 {
		connectTimeout = 10 * time.Second
	}
	return &Data{
		MongoDB: &MongoDB{
			URI:            v.GetString("data.mongodb.uri"),
			Database:       v.GetString("data.mongodb.database"),
			ConnectTimeout: connectTimeout,
		},
	}
}
