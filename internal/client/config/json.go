package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Intervals use timex.Duration so they can be written as "3s" or as integer
// nanoseconds. Empty fields keep whatever value the Config already has.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	NetworkCheckAddr    string         `json:"network_check_addr"`
	DatabasePath        string         `json:"database_path"`
	HealthEndpoint      string         `json:"health_endpoint"`
	RegisterEndpoint    string         `json:"register_endpoint"`
	LoginEndpoint       string         `json:"login_endpoint"`
	UsersEndpoint       string         `json:"users_endpoint"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
}

// parseJson overlays Config with values from the file named by -c / -config.
// Without such a flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.NetworkCheckAddr, jc.NetworkCheckAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.HealthEndpoint, jc.HealthEndpoint)
	setString(&cfg.RegisterEndpoint, jc.RegisterEndpoint)
	setString(&cfg.LoginEndpoint, jc.LoginEndpoint)
	setString(&cfg.UsersEndpoint, jc.UsersEndpoint)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
