// Package secrets pulls credentials from a Vault KV engine into the process environment
// so that config.Load picks them up like any other variable.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
)

// DefaultKeys are the only variables copied out of Vault unless VAULT_KEYS says otherwise.
var DefaultKeys = []string{"OPENAI_API_KEY", "REDIS_PASSWORD"}

type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Keys      []string
	Overwrite bool
}

// Result reports which variables were exported.
type Result struct {
	Loaded  []string
	Skipped []string
}

// VaultConfigFromEnv reads the VAULT_* variables.
func VaultConfigFromEnv() VaultConfig {
	cfg := VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     envOr("VAULT_MOUNT", "secret"),
		Path:      envOr("VAULT_PATH", "carenav"),
		KVVersion: 2,
		Timeout:   5 * time.Second,
		Keys:      DefaultKeys,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = v
	}
	if d, err := time.ParseDuration(os.Getenv("VAULT_TIMEOUT")); err == nil {
		cfg.Timeout = d
	}
	if raw := os.Getenv("VAULT_KEYS"); raw != "" {
		cfg.Keys = nil
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.Keys = append(cfg.Keys, k)
			}
		}
	}
	return cfg
}

// Apply fetches the secret at cfg.Path and exports the allowed keys.
// Variables already set in the environment win unless cfg.Overwrite is set.
// A disabled config is a no-op.
func Apply(ctx context.Context, cfg VaultConfig, client *http.Client) (Result, error) {
	if !cfg.Enabled {
		return Result{}, nil
	}

	data, err := Fetch(ctx, cfg, client)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, key := range cfg.Keys {
		value, ok := data[key]
		if !ok {
			continue
		}
		if !cfg.Overwrite && os.Getenv(key) != "" {
			res.Skipped = append(res.Skipped, key)
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return res, apperrors.NewInternalError(fmt.Sprintf("failed to export %s", key), err)
		}
		res.Loaded = append(res.Loaded, key)
	}
	return res, nil
}

// Fetch reads one KV secret and returns its fields as strings.
func Fetch(ctx context.Context, cfg VaultConfig, client *http.Client) (map[string]string, error) {
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return nil, apperrors.NewConfigurationError("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN, VAULT_PATH)")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, secretURL(cfg), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build vault request", err)
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("vault request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read vault response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError(fmt.Sprintf("vault returned %s", resp.Status), fmt.Errorf("%s", strings.TrimSpace(string(body))))
	}

	var payload struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.NewExternalError("invalid vault response", err)
	}

	fields := payload.Data
	if cfg.KVVersion != 1 {
		// KV v2 nests the secret under data.data next to data.metadata.
		inner, ok := fields["data"]
		if !ok {
			return nil, apperrors.NewExternalError("vault response missing data", nil)
		}
		fields = nil
		if err := json.Unmarshal(inner, &fields); err != nil {
			return nil, apperrors.NewExternalError("invalid vault secret payload", err)
		}
	}
	if fields == nil {
		return nil, apperrors.NewExternalError("vault response missing data", nil)
	}

	out := make(map[string]string, len(fields))
	for k, raw := range fields {
		out[k] = stringify(raw)
	}
	return out, nil
}

func secretURL(cfg VaultConfig) string {
	addr := strings.TrimRight(cfg.Addr, "/")
	mount := strings.Trim(cfg.Mount, "/")
	path := strings.TrimLeft(cfg.Path, "/")
	if cfg.KVVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path)
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path)
}

// stringify unquotes JSON strings and keeps other values in their JSON form.
func stringify(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
