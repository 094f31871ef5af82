package main

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/stagepass/portal/config"
)

const redacted = "[redacted]"

func runCheckConfig(cmdCtx *commandContext, _ []string) error {
	return printConfig(cmdCtx.Out, cmdCtx.Config)
}

// printConfig writes cfg as indented JSON with credentials masked.
func printConfig(w io.Writer, cfg config.AppConfig) error {
	if cfg.Redis.Password != "" {
		cfg.Redis.Password = redacted
	}
	if cfg.Redis.SentinelPassword != "" {
		cfg.Redis.SentinelPassword = redacted
	}
	cfg.Redis.URI = redactURI(cfg.Redis.URI)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func redactURI(raw string) string {
	if !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	return u.Redacted()
}
