// Package config loads simulator settings from an optional JSON file and
// command-line flags. Flags win over the file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
)

const DefaultFile = "config.json"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Debug     bool   `json:"debug"`
	AccessLog bool   `json:"accessLog"`
	// MDNS advertises the service on the local network under Instance.
	MDNS     bool   `json:"mdns"`
	Instance string `json:"instance"`
}

func Default() Config {
	return Config{
		Host: "0.0.0.0",
		Port: 5000,
	}
}

// Load reads filename over the defaults. A missing file is not an error.
func Load(filename string) (*Config, error) {
	config := Default()

	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("No config file, using defaults", "file", filename)
			return &config, nil
		}
		return nil, err
	}
	defer file.Close()

	err = json.NewDecoder(file).Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	log.Debug("Loaded config", "file", filename, "config", config)

	return &config, nil
}

// Parse builds the configuration from args (without the program name).
func Parse(name string, args []string) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	defaults := Default()
	file := fs.String("config", DefaultFile, "Path to JSON config file")
	host := fs.String("host", defaults.Host, "Address to bind")
	port := fs.Int("port", defaults.Port, "Port to listen on")
	debug := fs.Bool("debug", false, "Enable debug logging")
	accessLog := fs.Bool("access-log", false, "Write combined access log to stderr")
	mdns := fs.Bool("mdns", false, "Advertise the service over mDNS")
	instance := fs.String("instance", "", "mDNS instance name (default: hostname)")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}

	config, err := Load(*file)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			config.Host = *host
		case "port":
			config.Port = *port
		case "debug":
			config.Debug = *debug
		case "access-log":
			config.AccessLog = *accessLog
		case "mdns":
			config.MDNS = *mdns
		case "instance":
			config.Instance = *instance
		}
	})

	if config.Instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, err
		}
		config.Instance = hostname
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port)
	}
	if c.Host != "" && net.ParseIP(c.Host) == nil && c.Host != "localhost" {
		return fmt.Errorf("%w: host %q is not an IP address", ErrInvalid, c.Host)
	}
	return nil
}

// Addr is the listen address for net/http.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
