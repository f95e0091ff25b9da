package cli

import (
	"strings"
	"testing"
)

func TestLogConfigScan(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		level  logLevel
		format logFormat
		caller bool
		pretty bool
	}{
		{
			name:   "separate values",
			args:   []string{"validate", "--log-level", "debug", "--log-format", "text", "x.tdl"},
			level:  "debug",
			format: "text",
			pretty: true,
		},
		{
			name:   "assigned values",
			args:   []string{"--log-level=trace", "--log-caller", "--no-log-pretty", "render"},
			level:  "trace",
			caller: true,
		},
		{
			name:   "explicit booleans",
			args:   []string{"--log-pretty=false", "--no-log-caller=false"},
			caller: true,
		},
		{
			name:   "unrelated flags",
			args:   []string{"--format", "json", "--level", "x"},
			pretty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := logConfig{Pretty: true}
			cfg.scan(tt.args)

			if cfg.Level != tt.level || cfg.Format != tt.format ||
				cfg.Caller != tt.caller || cfg.Pretty != tt.pretty {
				t.Errorf("scan(%v) = %+v", tt.args, cfg)
			}
		})
	}
}

func TestLogConfigVars(t *testing.T) {
	vars := (&logConfig{}).vars()

	if !strings.Contains(vars["logLevelEnum"], "trace") {
		t.Errorf("level enum = %q", vars["logLevelEnum"])
	}

	if vars["logFormatEnum"] != "json,text" {
		t.Errorf("format enum = %q", vars["logFormatEnum"])
	}
}
