// Package routeros drives the real access point over SSH. The appliance has
// no transactions and no request pipelining, so one client instance keeps at
// most one command in flight.
package routeros

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rapidwifi/zone/internal/config"
	"github.com/rapidwifi/zone/internal/router/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

type Client struct {
	mu   sync.Mutex
	cfg  config.RouterConfig
	log  *zap.Logger
	conn *ssh.Client
}

func New(cfg config.RouterConfig, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: log.Named("router.ssh"),
	}
}

func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	timeout := c.cfg.CommandTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := c.connection(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrChannelUnavailable, err)
	}

	session, err := conn.NewSession()
	if err != nil {
		// A dead connection surfaces here first; drop it so the next
		// command redials.
		c.reset()
		return "", fmt.Errorf("%w: %v", domain.ErrChannelUnavailable, err)
	}
	defer session.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := session.CombinedOutput(command)
		done <- result{output: output, err: err}
	}()

	select {
	case <-ctx.Done():
		c.reset()
		return "", fmt.Errorf("%w: %v", domain.ErrChannelUnavailable, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrChannelUnavailable, res.err)
		}
		return string(res.output), nil
	}
}

// Close tears down the SSH connection. Safe to call on an idle client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) connection(ctx context.Context) (*ssh.Client, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	addr := net.JoinHostPort(c.cfg.Host, c.cfg.Port)
	sshCfg := &ssh.ClientConfig{
		User: c.cfg.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(c.cfg.Password),
		},
		// The appliance lives on the hotspot's own management LAN.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.cfg.CommandTimeout,
	}

	dialer := net.Dialer{Timeout: c.cfg.CommandTimeout}
	tcp, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcp, addr, sshCfg)
	if err != nil {
		tcp.Close()
		return nil, err
	}

	c.conn = ssh.NewClient(sshConn, chans, reqs)
	c.log.Info("connected to access point", zap.String("addr", addr))
	return c.conn, nil
}

func (c *Client) reset() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
