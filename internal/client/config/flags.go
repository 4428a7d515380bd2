package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-i", "-d", "-n", "-l"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   base URL of the remote auth service
//	-t int      remote request timeout (milliseconds)
//	-i int      online check interval (seconds)
//	-d string   path of the local SQLite database
//	-n string   host:port dialled to detect network reachability
//	-l string   log level (debug, info, warn, error)
//
// Only the flags above are considered; everything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("taskkeeper", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the auth service")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Milliseconds()), "remote request timeout (in milliseconds)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	fs.StringVar(&cfg.NetworkCheckAddr, "n", cfg.NetworkCheckAddr, "address dialled to detect network reachability")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Millisecond
	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
