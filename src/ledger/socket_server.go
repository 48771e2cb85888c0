package ledger

import (
	"context"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"github.com/sirupsen/logrus"
)

// SocketServer exposes a Port over JSON-RPC.
type SocketServer struct {
	netListener net.Listener
	rpcServer   *rpc.Server
	logger      *logrus.Entry
}

// NewSocketServer binds bindAddress and registers the Ledger service. Every
// call is given timeout to complete.
func NewSocketServer(bindAddress string,
	port Port,
	timeout time.Duration,
	logger *logrus.Entry) (*SocketServer, error) {

	rpcServer := rpc.NewServer()

	err := rpcServer.RegisterName("Ledger", &rpcLedger{
		port:    port,
		timeout: timeout,
		logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return nil, err
	}

	return &SocketServer{
		netListener: l,
		rpcServer:   rpcServer,
		logger:      logger,
	}, nil
}

// Addr returns the address the server listens on.
func (s *SocketServer) Addr() net.Addr {
	return s.netListener.Addr()
}

// Serve accepts connections until the listener is closed. This is a blocking
// call.
func (s *SocketServer) Serve() error {
	s.logger.WithField("bind_address", s.Addr().String()).Debug("Serving ledger")

	for {
		conn, err := s.netListener.Accept()
		if err != nil {
			return err
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

// Close stops accepting connections.
func (s *SocketServer) Close() error {
	return s.netListener.Close()
}

type rpcLedger struct {
	port    Port
	timeout time.Duration
	logger  *logrus.Entry
}

func (r *rpcLedger) Submit(req Request, resp *Response) error {
	ctx, cancel := r.context()
	defer cancel()

	payload, err := r.port.SubmitTransaction(ctx, req.Name, req.Args...)
	r.fill(resp, "Submit", req, payload, err)

	return nil
}

func (r *rpcLedger) Evaluate(req Request, resp *Response) error {
	ctx, cancel := r.context()
	defer cancel()

	payload, err := r.port.EvaluateTransaction(ctx, req.Name, req.Args...)
	r.fill(resp, "Evaluate", req, payload, err)

	return nil
}

func (r *rpcLedger) context() (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *rpcLedger) fill(resp *Response, method string, req Request, payload []byte, err error) {
	if err != nil {
		resp.Code, resp.Message = encodeError(err)
	} else {
		resp.Payload = payload
	}

	r.logger.WithFields(logrus.Fields{
		"tx":   req.Name,
		"code": resp.Code,
	}).Debugf("SocketServer.%s", method)
}
