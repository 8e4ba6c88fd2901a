// Package telnet drives legacy switches that expose no structured CLI.
// It screen-scrapes a telnet session: listing parses "show vlan brief",
// mutations replay config-mode command scripts. Only the vlan family is
// supported; richer kinds need the vendor CLI driver.
package telnet

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	ztelnet "github.com/ziutek/telnet"

	"github.com/shunt-io/shunt/internal/gateway"
	"github.com/shunt-io/shunt/internal/logger"
)

const (
	defaultPort    = 23
	defaultTimeout = 30 * time.Second

	promptUsername   = "Username:"
	promptPassword   = "Password:"
	promptEnable     = ">"
	promptPrivileged = "#"
)

// Lines the switch prints when it rejects a command.
var commandErrHints = []string{
	"invalid input",
	"incomplete command",
	"ambiguous command",
	"unknown command",
	"syntax error",
}

// Config describes the telnet session.
type Config struct {
	Host string
	Port int

	Username string

	// PasswordEnv and EnablePasswordEnv name the environment variables
	// holding the login and enable secrets.
	PasswordEnv       string
	EnablePasswordEnv string

	// Timeout bounds a single prompt wait. Zero means 30s.
	Timeout time.Duration
}

// session is the prompt-driven connection underneath the client.
// Injected so tests can script switch output.
type session interface {
	Execute(ctx context.Context, cmd string) (string, error)
	Close() error
}

// Client implements gateway.Gateway by screen-scraping a switch CLI.
type Client struct {
	cfg Config
	log *logger.Logger

	mu   sync.Mutex
	sess session
	dial func(ctx context.Context) (session, error)
}

// New creates a Client. The connection opens lazily on first use.
func New(cfg Config, log *logger.Logger) *Client {
	c := &Client{cfg: cfg, log: log}
	c.dial = c.dialSwitch
	return c
}

var (
	_ gateway.Gateway = (*Client)(nil)
	_ gateway.Closer  = (*Client)(nil)
)

// List implements gateway.Gateway.
func (c *Client) List(ctx context.Context, kind string) ([]string, error) {
	if err := c.supported(kind); err != nil {
		return nil, err
	}

	entries, err := c.vlanTable(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

// Show implements gateway.Gateway.
func (c *Client) Show(ctx context.Context, kind, id string) (map[string]string, error) {
	if err := c.supported(kind); err != nil {
		return nil, err
	}

	entries, err := c.vlanTable(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.ID == id {
			return map[string]string{
				"name":   entry.Name,
				"status": entry.Status,
			}, nil
		}
	}
	return nil, gateway.NewStatusError(gateway.StatusNotFound, fmt.Sprintf("vlan with id %s not found", id))
}

// Create implements gateway.Gateway.
func (c *Client) Create(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	if err := c.supported(kind); err != nil {
		return nil, err
	}
	script, err := vlanConfigScript(id, attrs)
	if err != nil {
		return nil, err
	}
	if err := c.runScript(ctx, script); err != nil {
		return nil, err
	}
	return nil, nil
}

// Edit implements gateway.Gateway. On these switches an edit replays
// the same config-mode script a create uses.
func (c *Client) Edit(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error) {
	return c.Create(ctx, kind, id, attrs)
}

// Delete implements gateway.Gateway. The switch accepts "no vlan" for
// absent ids without complaint, which already matches how deletes of
// missing resources are treated upstream.
func (c *Client) Delete(ctx context.Context, kind, id string) error {
	if err := c.supported(kind); err != nil {
		return err
	}
	return c.runScript(ctx, []string{
		"configure terminal",
		"no vlan " + id,
		"end",
	})
}

// Close terminates the telnet session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	err := c.sess.Close()
	c.sess = nil
	return err
}

func (c *Client) supported(kind string) error {
	if kind != "vlan" {
		return gateway.NewStatusError(gateway.StatusUnsupported, fmt.Sprintf("kind '%s' not supported by the telnet driver", kind))
	}
	return nil
}

func vlanConfigScript(id string, attrs map[string]string) ([]string, error) {
	script := []string{"configure terminal", "vlan " + id}
	for name, value := range attrs {
		switch name {
		case "name":
			script = append(script, "name "+value)
		case "status":
			// Read-only on the brief table; never pushed.
		default:
			return nil, gateway.NewStatusError(gateway.StatusUnsupported, fmt.Sprintf("attribute '%s' not supported by the telnet driver", name))
		}
	}
	script = append(script, "end")
	return script, nil
}

func (c *Client) vlanTable(ctx context.Context) ([]vlanEntry, error) {
	output, err := c.execute(ctx, "show vlan brief")
	if err != nil {
		return nil, err
	}
	return parseVLANBrief(output), nil
}

func (c *Client) runScript(ctx context.Context, script []string) error {
	for _, cmd := range script {
		output, err := c.execute(ctx, cmd)
		if err != nil {
			return err
		}
		if hint := commandError(output); hint != "" {
			return gateway.NewStatusError(gateway.StatusBadRequest, fmt.Sprintf("switch rejected %q: %s", cmd, hint))
		}
	}
	return nil
}

func (c *Client) execute(ctx context.Context, cmd string) (string, error) {
	sess, err := c.ensure(ctx)
	if err != nil {
		return "", err
	}

	c.log.WithFields(map[string]any{"host": c.cfg.Host, "cmd": cmd}).Debug("executing switch command")
	return sess.Execute(ctx, cmd)
}

func (c *Client) ensure(ctx context.Context) (session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil {
		return c.sess, nil
	}

	sess, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.sess = sess
	return sess, nil
}

func (c *Client) dialSwitch(ctx context.Context) (session, error) {
	port := c.cfg.Port
	if port == 0 {
		port = defaultPort
	}
	timeout := c.cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, port)
	conn, err := ztelnet.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	sess := &telnetSession{conn: conn, timeout: timeout}
	if err := sess.login(ctx, c.cfg); err != nil {
		conn.Close()
		return nil, err
	}
	return sess, nil
}

// telnetSession drives the raw prompt loop over a ziutek/telnet
// connection.
type telnetSession struct {
	conn    *ztelnet.Conn
	timeout time.Duration
}

func (s *telnetSession) login(ctx context.Context, cfg Config) error {
	password := os.Getenv(cfg.PasswordEnv)
	enable := os.Getenv(cfg.EnablePasswordEnv)
	if enable == "" {
		enable = password
	}

	steps := []struct {
		waitFor string
		send    string
	}{
		{promptUsername, cfg.Username},
		{promptPassword, password},
		{promptEnable, "enable"},
		{promptPassword, enable},
		{promptPrivileged, "terminal length 0"},
		{promptPrivileged, ""},
	}

	for _, step := range steps {
		output, err := s.readUntil(ctx, step.waitFor)
		if err != nil {
			return fmt.Errorf("login: waiting for %q: %w (got %q)", step.waitFor, err, strings.TrimSpace(output))
		}
		if step.send != "" {
			if _, err := s.conn.Write([]byte(step.send + "\n")); err != nil {
				return fmt.Errorf("login: %w", err)
			}
		}
	}
	return nil
}

func (s *telnetSession) Execute(ctx context.Context, cmd string) (string, error) {
	if _, err := s.conn.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("send %q: %w", cmd, err)
	}

	output, err := s.readUntil(ctx, promptPrivileged)
	if err != nil {
		return "", fmt.Errorf("execute %q: %w", cmd, err)
	}

	// Strip the echoed command and the trailing prompt line.
	lines := strings.Split(output, "\n")
	if len(lines) <= 1 {
		return "", nil
	}
	return strings.Join(lines[1:len(lines)-1], "\n"), nil
}

func (s *telnetSession) Close() error {
	return s.conn.Close()
}

func (s *telnetSession) readUntil(ctx context.Context, pattern string) (string, error) {
	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return "", err
	}

	buffer := make([]byte, 4096)
	var output strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return output.String(), err
		}

		n, err := s.conn.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
			if strings.Contains(output.String(), pattern) {
				return output.String(), nil
			}
		}
		if err != nil {
			return output.String(), fmt.Errorf("waiting for %q: %w", pattern, err)
		}
	}
}

func commandError(output string) string {
	lower := strings.ToLower(output)
	for _, hint := range commandErrHints {
		if strings.Contains(lower, hint) {
			for _, line := range strings.Split(output, "\n") {
				if strings.Contains(strings.ToLower(line), hint) {
					return strings.TrimSpace(line)
				}
			}
			return hint
		}
	}
	return ""
}
