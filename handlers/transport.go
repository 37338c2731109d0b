package handlers

import (
	"context"

	gethrpc "github.com/centrifuge/go-substrate-rpc-client/v4/gethrpc"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

// Transport is the request/response side of a node connection.
type Transport interface {
	Call(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// DialFunc opens a Transport to a node endpoint.
type DialFunc func(ctx context.Context, url string) (Transport, error)

type rpcTransport struct {
	cli *gethrpc.Client
}

// Dial connects to url (ws, wss, http or https). ctx bounds the handshake
// only; later calls carry their own context.
func Dial(ctx context.Context, url string) (Transport, error) {
	cli, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, models.NewError(models.ErrConnection, url, err)
	}
	return &rpcTransport{cli: cli}, nil
}

func (t *rpcTransport) Call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	return t.cli.CallContext(ctx, result, method, args...)
}

func (t *rpcTransport) Close() {
	t.cli.Close()
}
