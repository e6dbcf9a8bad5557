package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/scenewire/scenewire/internal/eventbus"
	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/meta"
	"github.com/scenewire/scenewire/internal/otel"
	"github.com/scenewire/scenewire/internal/protocol"
	"github.com/scenewire/scenewire/internal/server"
)

const rootUsage = `scenewire: JSON automation bridge for a live scene graph

USAGE:
  scenewire <command> [flags]

COMMANDS:
  serve            Load a scene document and serve the automation endpoint
  describe         Print an entity's reflected fields from a scene document
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -scene <file>               Scene document to load (required)
  -server.addr <addr>         HTTP listen address (default: :8091)
  -server.pretty              Pretty-print JSON responses
  -server.timeout <duration>  Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>    Request body limit (default: 1048576)
  -otel.endpoint <addr>       OTLP collector endpoint
  -otel.service <name>        OpenTelemetry service name (default: scenewire)
  -log.level <level>          Log level: debug, info, warn, error (default: info)
`

const describeUsage = `describe FLAGS and ARGS:
  -scene <file>   Scene document to load (required)
  <identifier>    Entity persistent path, or display label as fallback
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		logrus.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("scenewire", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "describe":
		return cmdDescribe(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "describe":
		fmt.Print(describeUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

// loadSession builds the editor session from a scene document: registry,
// world, asset table.
func loadSession(scenePath string) (*graph.Session, error) {
	reg := meta.NewRegistry()
	if err := graph.RegisterStandardClasses(reg); err != nil {
		return nil, err
	}
	f, err := os.Open(scenePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	world, assets, err := graph.LoadScene(f, reg)
	if err != nil {
		return nil, err
	}
	session := graph.NewSession(world, reg)
	session.Loader = assets
	return session, nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	scene := fs.String("scene", "", "scene document")
	addr := fs.String("server.addr", ":8091", "listen address")
	pretty := fs.Bool("server.pretty", false, "pretty JSON")
	timeout := fs.Duration("server.timeout", 10*time.Second, "request timeout")
	maxBody := fs.Int64("server.max-body", 1<<20, "request body limit")
	otelEndpoint := fs.String("otel.endpoint", "", "OTLP endpoint")
	otelService := fs.String("otel.service", "scenewire", "service name")
	logLevel := fs.String("log.level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if *scene == "" {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("-scene is required")
	}
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(*otelEndpoint, *otelService)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	session, err := loadSession(*scene)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"entities": session.World.Len(),
		"scene":    *scene,
	}).Info("scene loaded")

	opts := []server.Option{
		server.WithTimeout(*timeout),
		server.WithMaxBodyBytes(*maxBody),
	}
	if *pretty {
		opts = append(opts, server.WithPretty())
	}
	mux := http.NewServeMux()
	mux.Handle("/automation", server.New(protocol.NewDispatcher(session), opts...))

	logrus.WithField("addr", *addr).Info("serving automation endpoint")
	return http.ListenAndServe(*addr, mux)
}

func cmdDescribe(args []string) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	scene := fs.String("scene", "", "scene document")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, describeUsage)
		return err
	}
	if *scene == "" || fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, describeUsage)
		return fmt.Errorf("-scene and exactly one identifier are required")
	}
	session, err := loadSession(*scene)
	if err != nil {
		return err
	}
	disp := protocol.NewDispatcher(session)

	ident := fs.Arg(0)
	resp := disp.Dispatch(context.Background(), protocol.Request{
		Op:     protocol.OpDescribeEntity,
		Entity: protocol.EntityRef{Path: ident},
	})
	if !resp.Success {
		// Paths are the precise address; labels are the convenient one.
		resp = disp.Dispatch(context.Background(), protocol.Request{
			Op:     protocol.OpDescribeEntity,
			Entity: protocol.EntityRef{Label: ident},
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("describe %q failed: %s", ident, resp.Error)
	}
	return nil
}
