package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"

	"tool-agent/agent"
	"tool-agent/config"
	"tool-agent/tools"
)

const genericFailure = "Sorry, something went wrong."

type options struct {
	Config  string `short:"c" long:"config" description:"YAML configuration file" value-name:"FILE"`
	Verbose bool   `short:"v" long:"verbose" description:"Write logs to stderr"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash|flags.PassAfterNonOption|flags.IgnoreUnknown)
	parser.Usage = "[OPTIONS] [--] <query...>\n\nUse -- before a query that starts with -h or --help."

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	log.SetOutput(io.Discard)
	if opts.Verbose {
		log.SetOutput(stderr)
	}

	query := strings.TrimSpace(strings.Join(rest, " "))
	if query == "" {
		parser.WriteHelp(stdout)
		return 1
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	chatAgent, err := agent.Build(ctx, cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	answer, err := chatAgent.ProcessUserQuery(ctx, query)
	if err != nil {
		log.Printf("[main] query failed: %v", err)
		message, ok := describeError(err)
		fmt.Fprintln(stdout, oneLine(message))
		if !ok {
			return 1
		}
		return 0
	}

	fmt.Fprintln(stdout, oneLine(answer))
	return 0
}

// describeError maps a failed query to the line shown to the user. It
// reports false for failures outside the known kinds.
func describeError(err error) (string, bool) {
	switch {
	case errors.Is(err, tools.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Sorry, the request timed out.", true
	case errors.Is(err, tools.ErrTransport):
		return fmt.Sprintf("Sorry, the %s service could not be reached right now.", serviceName(err)), true
	case errors.Is(err, tools.ErrInvalidInput):
		var toolErr *agent.ToolError
		if errors.As(err, &toolErr) {
			return toolErr.Err.Error(), true
		}
		return err.Error(), true
	default:
		return genericFailure, false
	}
}

func serviceName(err error) string {
	var toolErr *agent.ToolError
	if errors.As(err, &toolErr) {
		switch toolErr.Tool {
		case tools.WeatherName:
			return "weather"
		case tools.CurrencyConverterName:
			return "exchange rate"
		}
	}
	return "upstream"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
