package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
)

// AuthClient is the part of client.GRPCClient the commands use.
type AuthClient interface {
	Register(ctx context.Context, name, email, password string) (*pb.User, error)
	Login(ctx context.Context, email, password string) (*pb.User, error)
	Refresh(ctx context.Context) (client.Session, error)
	Me(ctx context.Context) (*pb.MeResponse, error)
	Tokens() client.Session
	SetTokens(client.Session)
	Close() error
}

// Dialer connects to the server at addr.
type Dialer func(addr string) (AuthClient, error)

// DialGRPC is the production Dialer.
func DialGRPC(addr string) (AuthClient, error) {
	c, err := client.NewGRPCClient(addr)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type App struct {
	config *config.Config
	dial   Dialer
	reader *bufio.Reader
	out    io.Writer
}

// withClient dials the server, restores the stored session, runs fn under
// the request timeout and persists the token pair if fn changed it.
func (a *App) withClient(ctx context.Context, fn func(ctx context.Context, c AuthClient) error) error {
	c, err := a.dial(a.config.ServerEndpointAddr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", a.config.ServerEndpointAddr, err)
	}
	defer c.Close()

	before, err := client.LoadSession(a.config.SessionFile)
	if err != nil {
		return err
	}
	c.SetTokens(before)

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	runErr := fn(ctx, c)

	if after := c.Tokens(); after != before {
		if err := client.SaveSession(a.config.SessionFile, after); err != nil {
			return err
		}
	}
	return runErr
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
