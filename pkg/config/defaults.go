package config

import "github.com/knadh/koanf/providers/confmap"

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"environment": "development",
		"timezone":    "Asia/Tashkent",
		"server": map[string]interface{}{
			"host":      "127.0.0.1",
			"port":      4280,
			"api_token": "",
		},
		"database": map[string]interface{}{
			"file_path":              "./tmp/data.sqlite",
			"debug":                  false,
			"max_retries":            5,
			"connect_retry_count":    5,
			"connect_retry_delay_ms": 2000,
			"busy_timeout_ms":        5000,
		},
		"telegram": map[string]interface{}{
			"bot_token": "",
		},
		"scheduler": map[string]interface{}{
			"tick_interval_seconds": 60,
		},
	}
}

func defaultProvider() *confmap.Confmap {
	return confmap.Provider(defaults(), ".")
}
