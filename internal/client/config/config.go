package config

import (
	"net"
	"net/url"
	"os"
	"time"
)

// Config holds runtime settings for the taskkeeper client.
//
// Fields:
//   - ServerURL: base address of the remote auth service ("" means same origin,
//     which for the CLI is never reachable and forces local mode).
//   - RequestTimeout: upper bound for every remote call, probes included.
//   - OnlineCheckInterval: period of the CLI's probe-and-sync timer.
//   - NetworkCheckAddr: host:port dialled to decide whether the network is up;
//     derived from ServerURL when empty.
//   - DatabasePath: SQLite file holding the local account store.
//   - *Endpoint: path overrides for the remote wire contract.
type Config struct {
	ServerURL           string        `env:"TASKKEEPER_SERVER_URL"`
	RequestTimeout      time.Duration `env:"TASKKEEPER_REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"TASKKEEPER_ONLINE_CHECK_INTERVAL"`
	NetworkCheckAddr    string        `env:"TASKKEEPER_NETWORK_CHECK_ADDR"`
	DatabasePath        string        `env:"TASKKEEPER_DATABASE_PATH"`
	HealthEndpoint      string        `env:"TASKKEEPER_HEALTH_ENDPOINT"`
	RegisterEndpoint    string        `env:"TASKKEEPER_REGISTER_ENDPOINT"`
	LoginEndpoint       string        `env:"TASKKEEPER_LOGIN_ENDPOINT"`
	UsersEndpoint       string        `env:"TASKKEEPER_USERS_ENDPOINT"`
	LogLevel            string        `env:"TASKKEEPER_LOG_LEVEL"`
	LogFormat           string        `env:"TASKKEEPER_LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.RequestTimeout = 5 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.NetworkCheckAddr = ""
	c.DatabasePath = "auth.db"
	c.HealthEndpoint = "/api/health"
	c.RegisterEndpoint = "/api/register"
	c.LoginEndpoint = "/api/login"
	c.UsersEndpoint = "/api/users"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config from defaults, then overlays the JSON file
// (if -c/-config is given), the environment and finally the command-line
// flags found in args (usually os.Args[1:]). Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig is LoadConfig over os.Args that exits the process on error.
func MustLoadConfig() *Config {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		Exitf("config: %v", err)
	}
	return cfg
}

// NetworkProbeAddr returns the address used to detect network reachability:
// NetworkCheckAddr when set, otherwise ServerURL's host with the scheme's
// default port filled in. It returns "" when nothing usable is configured.
func (c *Config) NetworkProbeAddr() string {
	if c.NetworkCheckAddr != "" {
		return c.NetworkCheckAddr
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	if port := u.Port(); port != "" {
		return net.JoinHostPort(u.Hostname(), port)
	}
	if u.Scheme == "https" {
		return net.JoinHostPort(u.Hostname(), "443")
	}
	return net.JoinHostPort(u.Hostname(), "80")
}
