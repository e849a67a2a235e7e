// Command bolillero runs sequential lottery draws for youth-league categories.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xtding233/bolillero/internal/config"
)

const usageText = `usage: bolillero <command> [flags]

commands:
  run         draw every entrant of a category to completion
  import      load a draw configuration YAML file into the store
  categories  list category definitions (-sync copies them from the YAML files)
  simulate    measure random-order uniformity for a category

Run "bolillero <command> -h" for command flags. Flags override BOLILLERO_* env.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	log := cfg.Logger(stderr)
	slog.SetDefault(log)

	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cmdErr error
	switch args[0] {
	case "run":
		cmdErr = cmdRun(ctx, cfg, args[1:], stdout, log)
	case "import":
		cmdErr = cmdImport(ctx, cfg, args[1:], stdout, log)
	case "categories":
		cmdErr = cmdCategories(ctx, cfg, args[1:], stdout, log)
	case "simulate":
		cmdErr = cmdSimulate(ctx, cfg, args[1:], stdout, log)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usageText)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usageText)
		return 2
	}

	switch {
	case cmdErr == nil:
		return 0
	case errors.Is(cmdErr, flag.ErrHelp):
		return 0
	case errors.Is(cmdErr, errUsage):
		fmt.Fprintln(stderr, cmdErr)
		return 2
	default:
		log.Error(args[0]+" failed", "error", cmdErr)
		return 1
	}
}
