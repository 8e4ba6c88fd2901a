// Package vsh drives a device through the vendor's JSON CLI. Every
// operation shells out to the CLI binary and decodes the JSON envelope
// it prints: {"status": ..., "message": ..., "result": ...}.
package vsh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/shunt-io/shunt/internal/gateway"
	"github.com/shunt-io/shunt/internal/logger"
)

// Runner executes a prepared command line and returns its stdout.
// Injected so tests can script device answers without a real CLI.
type Runner func(ctx context.Context, name string, env []string, args ...string) ([]byte, error)

// Config describes how to reach the device CLI.
type Config struct {
	// Binary is the CLI executable. Defaults to "vsh".
	Binary string

	// Host selects a remote device; empty means the local CLI session.
	Host string

	// Username for remote sessions.
	Username string

	// PasswordEnv names the environment variable holding the session
	// password. The value is handed to the CLI via VSH_PASSWORD, never
	// placed on the command line.
	PasswordEnv string
}

// Client implements gateway.Gateway over the vendor CLI.
type Client struct {
	cfg Config
	run Runner
	log *logger.Logger
}

// New creates a Client using the real CLI binary.
func New(cfg Config, log *logger.Logger) *Client {
	return NewWithRunner(cfg, defaultRunner, log)
}

// NewWithRunner creates a Client with an injected Runner.
func NewWithRunner(cfg Config, run Runner, log *logger.Logger) *Client {
	if cfg.Binary == "" {
		cfg.Binary = "vsh"
	}
	return &Client{cfg: cfg, run: run, log: log}
}

var _ gateway.Gateway = (*Client)(nil)

// envelope is the JSON answer the CLI prints for every command.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// List implements gateway.Gateway.
func (c *Client) List(ctx context.Context, kind string) ([]string, error) {
	env, err := c.invoke(ctx, kind+"-show", nil)
	if err != nil {
		return nil, err
	}
	if len(env.Result) == 0 {
		return nil, nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(env.Result, &rows); err != nil {
		return nil, fmt.Errorf("decode %s collection: %w", kind, err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id := stringify(row["id"]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Show implements gateway.Gateway.
func (c *Client) Show(ctx context.Context, kind, id string) (map[string]string, error) {
	env, err := c.invoke(ctx, kind+"-show", []string{"id", id})
	if err != nil {
		return nil, err
	}
	return decodeAttrs(env.Result, kind)
}

// Create implements gateway.Gateway.
func (c *Client) Create(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	args := append([]string{"id", id}, attrPairs(attrs)...)
	env, err := c.invoke(ctx, kind+"-create", args)
	if err != nil {
		return nil, err
	}
	return decodeAttrs(env.Result, kind)
}

// Edit implements gateway.Gateway.
func (c *Client) Edit(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	args := append([]string{"id", id}, attrPairs(attrs)...)
	env, err := c.invoke(ctx, kind+"-modify", args)
	if err != nil {
		return nil, err
	}
	return decodeAttrs(env.Result, kind)
}

// Delete implements gateway.Gateway.
func (c *Client) Delete(ctx context.Context, kind, id string) error {
	_, err := c.invoke(ctx, kind+"-delete", []string{"id", id})
	return err
}

func (c *Client) invoke(ctx context.Context, verb string, args []string) (*envelope, error) {
	argv := []string{"--quiet", "--format", "json"}
	if c.cfg.Host != "" {
		argv = append(argv, "--host", c.cfg.Host)
	}
	if c.cfg.Username != "" {
		argv = append(argv, "--user", c.cfg.Username)
	}
	argv = append(argv, verb)
	argv = append(argv, args...)

	c.log.WithFields(map[string]any{"cmd": verb, "host": c.cfg.Host}).Debug("invoking device cli")

	out, runErr := c.run(ctx, c.cfg.Binary, c.env(), argv...)

	// The CLI exits non-zero for device-level failures but still prints
	// the envelope; prefer the envelope's status over the exit code.
	env := &envelope{}
	if decodeErr := json.Unmarshal(trimOutput(out), env); decodeErr != nil {
		if runErr != nil {
			return nil, fmt.Errorf("run %s: %w", verb, runErr)
		}
		return nil, fmt.Errorf("decode %s response: %w", verb, decodeErr)
	}

	if !gateway.IsSuccess(env.Status) {
		return nil, gateway.NewStatusError(env.Status, env.Message)
	}
	return env, nil
}

func (c *Client) env() []string {
	if c.cfg.PasswordEnv == "" {
		return nil
	}
	password, ok := os.LookupEnv(c.cfg.PasswordEnv)
	if !ok {
		return nil
	}
	return append(os.Environ(), "VSH_PASSWORD="+password)
}

func defaultRunner(ctx context.Context, name string, env []string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = env
	}

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return out, err
	}
	return out, nil
}

func trimOutput(out []byte) []byte {
	return []byte(strings.TrimSpace(string(out)))
}

// attrPairs renders attributes as alternating key/value arguments in a
// deterministic order.
func attrPairs(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(attrs)*2)
	for _, key := range keys {
		pairs = append(pairs, key, attrs[key])
	}
	return pairs
}

func decodeAttrs(raw json.RawMessage, kind string) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		// The resource exists; it just has no tracked attributes.
		return map[string]string{}, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode %s attributes: %w", kind, err)
	}

	attrs := make(map[string]string, len(obj))
	for key, value := range obj {
		attrs[key] = stringify(value)
	}
	return attrs, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, stringify(item))
		}
		return strings.Join(items, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}
