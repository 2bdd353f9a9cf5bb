// Package main fetches the responder's status payload once and prints the
// derived value and date.
//
// Exit codes: 0 on success, 2 when the responder could not be reached or
// answered with a non-2xx status, 1 for any other failure.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"statuspact/config"
	"statuspact/internal/consumer"
	"statuspact/internal/core"
	"statuspact/internal/logging"
	"statuspact/internal/version"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitUnavailable = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type output struct {
	Value int    `json:"value"`
	Date  string `json:"date"`
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("consumer", flag.ContinueOnError)
	flags.SetOutput(stderr)
	baseURL := flags.String("base-url", "", "Responder base URL (overrides RESPONDER_BASE_URL)")
	timeout := flags.Duration("timeout", 0, "Round-trip timeout (overrides HTTP_TIMEOUT)")
	asJSON := flags.Bool("json", false, "Print the result as JSON")
	versionFlag := flags.Bool("version", false, "Print version information")
	if err := flags.Parse(args); err != nil {
		return exitFailure
	}

	if *versionFlag {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading config: %v\n", err)
		return exitFailure
	}
	if *baseURL != "" {
		cfg.Consumer.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Consumer.Timeout = *timeout
	}

	// Results go to stdout; logs stay on stderr.
	logger := logging.New(cfg.Log, stderr)

	client, err := consumer.New(consumer.Config{
		BaseURL: cfg.Consumer.BaseURL,
		Timeout: cfg.Consumer.Timeout,
	}, consumer.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	result, err := client.FetchAndProcess(context.Background())
	if err != nil {
		if *asJSON {
			writeJSONError(stdout, err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		if core.IsUnavailable(err) {
			return exitUnavailable
		}
		return exitFailure
	}

	out := output{Value: result.Value, Date: result.Date.Format(time.RFC3339)}
	if *asJSON {
		_ = json.NewEncoder(stdout).Encode(out)
	} else {
		fmt.Fprintf(stdout, "value=%d date=%s\n", out.Value, out.Date)
	}
	return exitOK
}

func writeJSONError(w io.Writer, err error) {
	body := map[string]interface{}{
		"error": map[string]interface{}{"message": err.Error()},
	}
	var contractErr *core.ContractError
	if errors.As(err, &contractErr) {
		body = contractErr.ToJSON()
	}
	_ = json.NewEncoder(w).Encode(body)
}
