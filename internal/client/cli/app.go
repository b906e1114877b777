package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/taxvault/internal/client/client"
	"github.com/dmitrijs2005/taxvault/internal/client/config"
	"github.com/dmitrijs2005/taxvault/internal/common"
)

var errNoToken = errors.New("no access token")

type App struct {
	config   *config.Config
	api      client.Client
	setToken func(string)
	reader   *bufio.Reader
	out      io.Writer
	// stdoutIsTerminal reports whether "-" outputs would hit a terminal.
	stdoutIsTerminal func() bool
}

func NewApp(c *config.Config) (*App, error) {
	rc := client.NewRESTClient(c.ServerURL, c.AccessToken, c.RequestTimeout)

	return &App{
		config:           c,
		api:              rc,
		setToken:         rc.SetAccessToken,
		reader:           bufio.NewReader(os.Stdin),
		out:              os.Stdout,
		stdoutIsTerminal: func() bool { return isTerminal(int(os.Stdout.Fd())) },
	}, nil
}

// authenticate prompts for an access token unless one is configured.
func (a *App) authenticate() error {
	if a.config.AccessToken != "" {
		return nil
	}

	token, err := getPassword(a.out, "Enter access token")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(token)

	if len(token) == 0 {
		return errNoToken
	}
	a.config.AccessToken = string(token)
	a.setToken(a.config.AccessToken)
	return nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.authenticate(); err != nil {
		return err
	}
	a.Root(ctx)
	return nil
}
