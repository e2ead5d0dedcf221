package control

import (
	"context"
	"net/http"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/warpdl/warpjs/internal/host"
)

// bearerClient adds the control secret to every request.
type bearerClient struct {
	secret string
	client *http.Client
}

func (b *bearerClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+b.secret)
	return b.client.Do(req)
}

// Client calls the control methods of a running host over HTTP.
type Client struct {
	rpc *jrpc2.Client
}

// NewClient returns a client for the endpoint at addr, which may be a
// host:port pair or a full URL.
func NewClient(addr, secret string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	url := addr
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	url = strings.TrimSuffix(url, "/") + "/jsonrpc"
	ch := jhttp.NewChannel(url, &jhttp.ChannelOptions{
		Client: &bearerClient{secret: secret, client: hc},
	})
	return &Client{rpc: jrpc2.NewClient(ch, nil)}
}

func (c *Client) Version(ctx context.Context) (*VersionResult, error) {
	var res VersionResult
	if err := c.rpc.CallResult(ctx, "system.getVersion", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Status(ctx context.Context) (*host.Status, error) {
	var res host.Status
	if err := c.rpc.CallResult(ctx, "host.status", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Timers(ctx context.Context) ([]host.TimerInfo, error) {
	var res TimersResult
	if err := c.rpc.CallResult(ctx, "timers.list", nil, &res); err != nil {
		return nil, err
	}
	return res.Timers, nil
}

func (c *Client) Stop(ctx context.Context) (*StopResult, error) {
	var res StopResult
	if err := c.rpc.CallResult(ctx, "host.stop", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Close releases the underlying channel.
func (c *Client) Close() error {
	return c.rpc.Close()
}
