package config

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Set assigns one key from its string form, as typed on the command line.
func (c *Global) Set(key, val string) error {
	switch key {
	case "data_path":
		c.DataPath = val
	case "delimiter":
		c.Delimiter = val
		if _, err := c.DelimiterRune(); err != nil {
			return err
		}
	case "target_column":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("target_column cannot be empty")
		}
		c.TargetColumn = val
	case "nominal_columns":
		c.NominalColumns = splitList(val)
	case "missing_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("invalid float for missing_threshold: %v (want 0 < x <= 1)", val)
		}
		c.MissingThreshold = f
	case "histogram_bins":
		return setPositive(&c.HistogramBins, key, val)
	case "default_categorical":
		c.DefaultCategorical = val
	case "default_comparison":
		c.DefaultComparison = val
	case "default_x":
		c.DefaultX = val
	case "default_y":
		c.DefaultY = val
	case "chart_width":
		return setPositive(&c.ChartWidth, key, val)
	case "chart_height":
		return setPositive(&c.ChartHeight, key, val)
	case "listen_addr":
		c.ListenAddr = val
	case "session_ttl_min":
		return setPositive(&c.SessionTTLMin, key, val)
	case "read_timeout_sec":
		return setPositive(&c.ReadTimeoutSec, key, val)
	case "write_timeout_sec":
		return setPositive(&c.WriteTimeoutSec, key, val)
	case "shutdown_timeout_sec":
		return setPositive(&c.ShutdownTimeoutSec, key, val)
	case "log_level":
		if _, err := zapcore.ParseLevel(val); err != nil {
			return fmt.Errorf("invalid log_level: %s", val)
		}
		c.LogLevel = val
	case "log_encoding":
		switch val {
		case "json", "console":
			c.LogEncoding = val
		default:
			return fmt.Errorf("invalid log_encoding: %s (use json or console)", val)
		}
	case "log_development":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for log_development: %v", val)
		}
		c.LogDevelopment = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func setPositive(dst *int, key, val string) error {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return fmt.Errorf("invalid int for %s: %v", key, val)
	}
	*dst = i
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
