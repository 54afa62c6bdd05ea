package grpc

import (
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// App owns the connection to the sso auth service.
type App struct {
	log  *slog.Logger
	conn *grpc.ClientConn
	addr string
}

// New prepares the connection. grpc connects lazily, so an unreachable
// service shows up on the first call, not here.
func New(log *slog.Logger, addr string) (*App, error) {
	const op = "grpcapp.New"

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("grpc client created", slog.String("addr", addr))

	return &App{log: log, conn: conn, addr: addr}, nil
}

func (a *App) Conn() *grpc.ClientConn {
	return a.conn
}

// Close closes the connection to the auth service.
func (a *App) Close() {
	const op = "grpcapp.Close"

	a.log.With(slog.String("op", op)).
		Info("closing gRPC connection", slog.String("addr", a.addr))

	if err := a.conn.Close(); err != nil {
		a.log.Warn("failed to close gRPC connection", slog.String("error", err.Error()))
	}
}
