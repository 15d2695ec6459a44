package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/minikv/internal/cli/connection"
	"github.com/yndnr/minikv/internal/cli/output"
	"github.com/yndnr/minikv/internal/cli/repl"
	"github.com/yndnr/minikv/internal/infra/buildinfo"
	"github.com/yndnr/minikv/pkg/resp"
)

// DefaultServer is the address used when --server is not given.
const DefaultServer = "127.0.0.1:6379"

// ErrServerReply is returned after the server answered with an error
// reply. The reply itself has already been printed.
var ErrServerReply = errors.New("server returned an error reply")

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "minikv-cli",
		Usage:     "command-line client for minikv",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		ArgsUsage: " ",
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
		},
		Action: interactive,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address",
			EnvVars: []string{"MINIKV_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json, yaml",
			Value:   string(output.FormatText),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "dial and round-trip timeout",
			Value: connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:  "history",
			Usage: "interactive history file (empty disables it)",
			Value: repl.DefaultHistoryFile(),
		},
	}
}

// GlobalFlags holds the parsed global flags.
type GlobalFlags struct {
	Server  string
	Format  output.Format
	Timeout time.Duration
	History string
}

// ParseGlobalFlags extracts and validates the global flags.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return nil, err
	}
	return &GlobalFlags{
		Server:  c.String("server"),
		Format:  format,
		Timeout: c.Duration("timeout"),
		History: c.String("history"),
	}, nil
}

// connect dials the server named by the global flags.
func connect(c *cli.Context) (*connection.Client, *GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}
	client, err := connection.Dial(c.Context, flags.Server, flags.Timeout)
	if err != nil {
		return nil, nil, err
	}
	return client, flags, nil
}

func interactive(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	exec := func(ctx context.Context, args []string) (resp.Value, error) {
		return client.Do(ctx, args...)
	}
	r := repl.New(exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithPrompt(client.Addr()+"> "),
		repl.WithFormatter(output.NewFormatter(flags.Format)),
		repl.WithHistory(repl.NewHistory(flags.History)),
	)
	return r.Run(c.Context)
}
