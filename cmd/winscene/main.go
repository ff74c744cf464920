package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/winscene/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runWindow(os.Args[2:]))
	case "clear":
		os.Exit(runClear(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "prune":
		os.Exit(runPrune(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winscene <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open a window and join the shared scene")
	fmt.Fprintln(w, "  run --clear         Wipe the shared store and exit")
	fmt.Fprintln(w, "  clear               Wipe the shared store")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List registered windows")
	fmt.Fprintln(w, "  watch               Show registered windows live")
	fmt.Fprintln(w, "  prune               Remove windows whose process has exited")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winscene <command> --help' for command-specific options.")
}

// loadConfig reads the config at path, or the default location when path is
// empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// setup loads the config and logger shared by every subcommand.
func setup(path string) (*config.Config, *slog.Logger, bool) {
	cfg, err := loadConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, false
	}
	logger, err := config.NewLogger(os.Stderr, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, false
	}
	return cfg, logger, true
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}
