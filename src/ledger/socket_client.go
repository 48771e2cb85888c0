package ledger

import (
	"context"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"time"
)

// SocketClient implements the Port interface against a SocketServer.
type SocketClient struct {
	sync.Mutex

	addr    string
	timeout time.Duration
	rpc     *rpc.Client
}

// NewSocketClient creates a client for the ledger listening on addr. The
// connection is established lazily. timeout bounds dialing and every call
// whose context carries no deadline.
func NewSocketClient(addr string, timeout time.Duration) *SocketClient {
	return &SocketClient{
		addr:    addr,
		timeout: timeout,
	}
}

// SubmitTransaction implements the Port interface.
func (c *SocketClient) SubmitTransaction(ctx context.Context, name string, args ...string) ([]byte, error) {
	return c.call(ctx, "Ledger.Submit", Request{Name: name, Args: args})
}

// EvaluateTransaction implements the Port interface.
func (c *SocketClient) EvaluateTransaction(ctx context.Context, name string, args ...string) ([]byte, error) {
	return c.call(ctx, "Ledger.Evaluate", Request{Name: name, Args: args})
}

// Close closes the underlying connection, if any.
func (c *SocketClient) Close() error {
	c.Lock()
	defer c.Unlock()

	if c.rpc == nil {
		return nil
	}

	err := c.rpc.Close()
	c.rpc = nil

	return err
}

func (c *SocketClient) getConnection() (*rpc.Client, error) {
	c.Lock()
	defer c.Unlock()

	if c.rpc == nil {
		conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
		if err != nil {
			return nil, err
		}

		c.rpc = jsonrpc.NewClient(conn)
	}

	return c.rpc, nil
}

func (c *SocketClient) reset(client *rpc.Client) {
	c.Lock()
	defer c.Unlock()

	if c.rpc == client {
		c.rpc.Close()
		c.rpc = nil
	}
}

func (c *SocketClient) call(ctx context.Context, method string, req Request) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	client, err := c.getConnection()
	if err != nil {
		return nil, err
	}

	var resp Response

	call := client.Go(method, req, &resp, make(chan *rpc.Call, 1))

	select {
	case <-call.Done:
		if call.Error != nil {
			c.reset(client)
			return nil, call.Error
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if resp.Code != "" {
		return nil, decodeError(req.Name, resp.Code, resp.Message)
	}

	return resp.Payload, nil
}
