// Command restoctl manages the restaurant collection from a shell by calling
// the API of a running restotrack server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"restotrack/internal/httpapi"
	"restotrack/shared/go/config"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "restoctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("restoctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", "", "server base URL (default RESTOTRACK_API or http://localhost:<server.port>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		usage(stderr)
		return fmt.Errorf("missing command")
	}

	base, err := resolveAPIURL(*apiURL)
	if err != nil {
		return err
	}

	c := &cli{svc: httpapi.NewClient(base, nil), out: stdout}
	return c.dispatch(ctx, fs.Args())
}

// resolveAPIURL picks the server address: flag, then RESTOTRACK_API, then the
// port from the shared server config.
func resolveAPIURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("RESTOTRACK_API"); env != "" {
		return env, nil
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return "", err
	}
	return "http://localhost:" + strconv.Itoa(cfg.Server.Port), nil
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: restoctl [-api url] <command> [flags]

commands:
  list    [-q text] [-genre g] [-min-rating n] [-price n] [-where expr]
  show    <id>
  add     -name n -address a -genre g [-lat f -lng f] [-min yen -max yen | -tier n] [-rating n] [-notes s] [-link url]...
  rate    <id> <1-5>    (repeating the current rating clears it)
  delete  <id>
  genres
  tier    <min> <max>

restoctl needs a running restotrack server; it never opens the store itself.
`)
}
