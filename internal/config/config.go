// Package config loads and hot-reloads client connection defaults: target
// address, retry policy, and the ack/non-stop mode to request at startup.
// cmd/gorsp reads the file once with Load and applies only Addr and
// RequireAcks; it does not apply MaxRetries or NonStop and does not Watch.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the connection defaults a gorsp client dials with.
type Config struct {
	Addr        string
	MaxRetries  *uint16
	RequireAcks bool
	NonStop     bool
}

// Load reads a simple key=value file (one setting per line, '#' comments,
// blank lines ignored) into a Config. Unknown keys are rejected so a typo
// in the file surfaces immediately rather than silently doing nothing.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg := Config{RequireAcks: true}

	scanner := bufio.NewScanner(f)
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return Config{}, fmt.Errorf("config: %s:%d: missing '='", path, line)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "addr":
			cfg.Addr = value

		case "max_retries":
			n, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return Config{}, fmt.Errorf("config: %s:%d: max_retries: %w", path, line, err)
			}

			r := uint16(n)
			cfg.MaxRetries = &r

		case "require_acks":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Config{}, fmt.Errorf("config: %s:%d: require_acks: %w", path, line, err)
			}

			cfg.RequireAcks = b

		case "non_stop":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Config{}, fmt.Errorf("config: %s:%d: non_stop: %w", path, line, err)
			}

			cfg.NonStop = b

		default:
			return Config{}, fmt.Errorf("config: %s:%d: unknown key %q", path, line, key)
		}
	}

	if err := scanner.Err(); err != nil {
		return Config{}, err
	}

	if cfg.Addr == "" {
		return Config{}, fmt.Errorf("config: %s: missing required key \"addr\"", path)
	}

	return cfg, nil
}
