// Command vsbridge exposes a running Visual Studio instance over MCP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/deixis/vsbridge"
	"github.com/deixis/vsbridge/internal/apartment"
	"github.com/deixis/vsbridge/internal/automation"
	"github.com/deixis/vsbridge/internal/com"
	"github.com/deixis/vsbridge/internal/config"
	vsmcp "github.com/deixis/vsbridge/internal/mcp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// errUsage makes run exit with status 2.
var errUsage = errors.New("usage error")

// errToolFailed reports a tool error result; its text is already printed.
var errToolFailed = errors.New("tool returned an error")

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one subcommand and returns the process exit code. Deferred
// cleanup in subcommands runs on every path, including panics.
func run(args []string) (code int) {
	log.SetFlags(0)
	log.SetPrefix("vsbridge: ")

	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic: %v", r)
			code = 1
		}
	}()

	if len(args) < 1 {
		usage()
		return 2
	}

	cmd := args[0]
	args = args[1:]

	var err error
	switch cmd {
	case "mcp":
		err = mcpMain(args)
	case "call":
		err = callMain(args)
	case "version":
		fmt.Println(vsbridge.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "vsbridge: unknown command %q\n", cmd)
		usage()
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		log.Print(err)
		return 2
	case errors.Is(err, errToolFailed):
		return 1
	default:
		log.Print(err)
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: vsbridge <command> [flags]

Commands:
  mcp         Start the MCP server (stdio, or HTTP with -http)
  call        Invoke one tool and print its result
  version     Print the version
  help        Show this help

Use "vsbridge <command> -h" for command-specific flags.`)
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default <UserConfigDir>/vsbridge/config.yaml)")
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	verbose := fs.Bool("v", false, "log every MCP request to stderr")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(vsmcp.Instructions)
		return nil
	}

	b, err := openBridge(*configPath)
	if err != nil {
		return err
	}
	defer b.Close()
	b.logConnection()

	var opts []vsmcp.ServerOption
	if *verbose || b.cfg.LogCalls {
		opts = append(opts, vsmcp.WithCallLog(log.Default()))
	}
	server := vsmcp.NewServer(b.cfg, b.conn, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *httpAddr != "" {
		return serveHTTP(ctx, server, *httpAddr)
	}
	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- call ---

func callMain(args []string) error {
	fs := flag.NewFlagSet("call", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default <UserConfigDir>/vsbridge/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: vsbridge call [-config FILE] TOOL [key=value ...]")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("call: missing tool name: %w", errUsage)
	}
	name := fs.Arg(0)
	toolArgs, err := parseToolArgs(fs.Args()[1:])
	if err != nil {
		return fmt.Errorf("call: %v: %w", err, errUsage)
	}

	b, err := openBridge(*configPath)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := callTool(ctx, vsmcp.NewServer(b.cfg, b.conn), name, toolArgs)
	if err != nil {
		return fmt.Errorf("calling %s: %w", name, err)
	}

	fmt.Println(resultText(res))
	if res.IsError {
		return errToolFailed
	}
	return nil
}

// callTool runs one tool call against server through an in-memory client
// session.
func callTool(ctx context.Context, server *mcpsdk.Server, name string, args map[string]any) (*mcpsdk.CallToolResult, error) {
	ct, st := mcpsdk.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting server: %w", err)
	}
	defer func() { _ = ss.Wait() }()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "vsbridge-call", Version: vsbridge.Version}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		_ = ss.Close()
		return nil, fmt.Errorf("connecting client: %w", err)
	}
	defer func() { _ = cs.Close() }()

	return cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
}

func resultText(r *mcpsdk.CallToolResult) string {
	var text string
	for _, c := range r.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}
	return text
}

// --- shared ---

// bridge owns the automation thread and the connector running on it.
type bridge struct {
	cfg    *config.Config
	thread *apartment.Thread
	conn   *automation.Connector
}

func openBridge(configPath string) (*bridge, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	thread, err := apartment.Start(com.ApartmentHooks(com.FilterPolicy{
		RetryDelay:  cfg.RetryDelay(),
		RetryBudget: cfg.RetryBudget(),
	}))
	if err != nil {
		return nil, err
	}

	conn := automation.NewConnector(com.NewResolver(), thread, cfg.CandidateProgIDs())
	return &bridge{cfg: cfg, thread: thread, conn: conn}, nil
}

// logConnection reports at startup whether an IDE is reachable yet.
func (b *bridge) logConnection() bool {
	if b.conn.Connected() {
		return true
	}
	log.Print("tools will report no instance until Visual Studio is started")
	return false
}

// Close releases the IDE handle and shuts down the automation thread.
func (b *bridge) Close() {
	_ = b.conn.Close()
	b.thread.Close()
}
