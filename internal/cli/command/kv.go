package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/minikv/internal/cli/connection"
	"github.com/yndnr/minikv/internal/cli/output"
)

// PingCommand checks that the server answers.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server answers",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 0); err != nil {
				return err
			}
			return run(c, "PING")
		},
	}
}

// EchoCommand asks the server to repeat a message.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			return run(c, "ECHO", c.Args().Get(0))
		},
	}
}

// GetCommand reads a key.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			return run(c, "GET", c.Args().Get(0))
		},
	}
}

// SetCommand writes a key, optionally with an expiry.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value under a key",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "px",
				Usage: "expire the key after this many milliseconds",
			},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2); err != nil {
				return err
			}
			args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
			if c.IsSet("px") {
				args = append(args, "PX", strconv.FormatInt(c.Int64("px"), 10))
			}
			return run(c, args...)
		},
	}
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", c.Command.Name, n, c.NArg())
	}
	return nil
}

// run sends one command and prints the reply. Error replies are printed
// too and reported as ErrServerReply.
func run(c *cli.Context, args ...string) error {
	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	v, err := client.Do(c.Context, args...)
	var serverErr *connection.ServerError
	if err != nil && !errors.As(err, &serverErr) {
		return err
	}

	if ferr := output.NewFormatter(flags.Format).Format(c.App.Writer, output.FromValue(v)); ferr != nil {
		return ferr
	}
	if serverErr != nil {
		return ErrServerReply
	}
	return nil
}
