package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:5000", "Query service URL")
		token     = flag.String("token", os.Getenv("KPIQUERY_TOKEN"), "Bearer token")
		timeout   = flag.Duration("timeout", 10*time.Second, "Request timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ask [flags] <pregunta>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Str("service", "ask").
		Logger()

	question := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if question == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	answer, err := client.NewClient(*serverURL).WithToken(*token).Ask(ctx, question)
	if err != nil {
		logger.Fatal().Err(err).Str("server", *serverURL).Msg("question failed")
	}

	fmt.Println(answer)
}
