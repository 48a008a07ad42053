package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"htmlpad/internal/config"
	"htmlpad/internal/editor"
	"htmlpad/internal/httpx"
	"htmlpad/internal/logx"
	"htmlpad/internal/ports"
	"htmlpad/internal/proc"
	"htmlpad/internal/server"
	"htmlpad/internal/surface/browser"
	"htmlpad/internal/surface/relay"
	"htmlpad/internal/tui"
	"htmlpad/internal/tui/util"
	"htmlpad/internal/tunnel"
	"htmlpad/web"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const (
	shutdownGrace = 5 * time.Second
	tunnelWait    = 20 * time.Second
)

/* ---------- CLI ---------- */

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	var err error
	switch os.Args[1] {
	case "help", "-h", "--help":
		if len(os.Args) > 2 {
			helpTopic(os.Args[2])
		} else {
			usage()
		}
	case "version", "-v", "--version":
		fmt.Println("htmlpad", Version)
	case "serve":
		err = cmdServe(os.Args[2:])
	case "edit":
		err = cmdEdit(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "htmlpad:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`htmlpad ` + Version + `
Live HTML/CSS/JS editor: type markup on the left, see it rendered on the right.
USAGE
  htmlpad <command> [options]
COMMANDS
  serve        Host the browser editor, POST /preview and the preview bridge
  edit         Terminal editor (optionally mirrored to browser tabs)
  help         Show help (try: htmlpad help serve)
  version      Print version
NOTES
  • Settings come from defaults, then --config FILE (.json/.yaml), then flags.
  • Use -v or -vv for more logs and --log-file to append them to a file.
`)
}

func helpTopic(name string) {
	switch name {
	case "serve":
		fmt.Println(`USAGE
  htmlpad serve [--config PATH] [--addr HOST:PORT|auto] [--public-dir DIR]
                [--max-body N] [--open] [--share] [--tui] [-v | -vv] [--log-file PATH] [--log-format text|json]
DESCRIPTION
  Serves the browser editor (embedded unless --public-dir is given), the
  pass-through POST /preview endpoint, GET /example, GET /healthz and the
  preview bridge websocket at /bridge (open /bridge.html to attach a tab).
OPTIONS
  --config PATH      JSON or YAML settings file
  --addr ADDR        Listen address (default: 127.0.0.1:3000; auto or :0 picks a free port)
  --public-dir DIR   Serve static files from DIR instead of the embedded assets
  --max-body N       Largest accepted /preview body in bytes
  --open             Open the editor in the system browser
  --share            Expose the editor through a cloudflared quick tunnel
  --tui              Live request monitor instead of plain logs
  -v, -vv            DEBUG logs; -vv adds source lines
  --log-file PATH    Append logs to file (created if missing)
  --log-format FMT   text or json`)
	case "edit":
		fmt.Println(`USAGE
  htmlpad edit [--config PATH] [--indent STR] [--banner-ttl DUR] [--min-panel N]
               [--example FILE] [--via-server URL] [--bridge] [--addr ADDR]
               [-v | -vv] [--log-file PATH]
DESCRIPTION
  Terminal editor. Ctrl+R (or the Run button) renders the buffer into the
  preview pane. With --bridge a preview server starts in-process and every
  render is also pushed to browser tabs on /bridge.html, whose script errors
  show up in the terminal. With --via-server renders go through POST /preview
  of a running htmlpad serve. The config file, when given, is watched and
  indent, banner TTL and panel minimum are re-applied on change.
OPTIONS
  --config PATH      JSON or YAML settings file
  --indent STR       Indent unit inserted by Tab (default: a tab character)
  --banner-ttl DUR   How long error messages stay up (default: 5s)
  --min-panel N      Smallest panel width in cells
  --example FILE     Markup loaded by the Example button
  --via-server URL   Relay renders through a running server
  --bridge           Mirror renders to browser tabs
  --addr ADDR        Bridge server address (default: auto)
  -v, -vv            DEBUG logs; -vv adds source lines (needs --log-file)
  --log-file PATH    Append logs to file (created if missing)`)
	default:
		usage()
	}
}

/* ---------- shared setup ---------- */

type commonFlags struct {
	config    string
	verbose   bool
	debug     bool
	logFile   string
	logFormat string
}

func (c *commonFlags) register(flags *flag.FlagSet) {
	flags.StringVar(&c.config, "config", "", "Settings file (.json, .yaml)")
	flags.BoolVar(&c.verbose, "v", false, "One level more verbose (DEBUG by default)")
	flags.BoolVar(&c.debug, "vv", false, "DEBUG logs with source lines")
	flags.StringVar(&c.logFile, "log-file", "", "Append logs to file (created if missing)")
	flags.StringVar(&c.logFormat, "log-format", "", "Log format: text|json")
}

func (c *commonFlags) verbosity() int {
	switch {
	case c.debug:
		return 2
	case c.verbose:
		return 1
	}
	return 0
}

// loadConfig layers the file and every flag the user actually set. keys
// maps flag names to config keys.
func loadConfig(flags *flag.FlagSet, common *commonFlags, keys map[string]string) (*config.Config, config.Settings, error) {
	cfg := config.New(nil)
	if common.config != "" {
		if err := cfg.LoadFile(common.config); err != nil {
			return nil, config.Settings{}, err
		}
	}
	var errs []error
	flags.Visit(func(f *flag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			return
		}
		var v any = f.Value.String()
		if g, ok := f.Value.(flag.Getter); ok {
			v = g.Get()
		}
		if err := cfg.Set(key, v); err != nil {
			errs = append(errs, err)
		}
	})
	if err := errors.Join(errs...); err != nil {
		return nil, config.Settings{}, err
	}
	s, err := cfg.Settings()
	if err != nil {
		return nil, config.Settings{}, err
	}
	return cfg, s, nil
}

func baseLogKeys() map[string]string {
	return map[string]string{
		"log-file":   "log.file",
		"log-format": "log.format",
	}
}

// openLog builds the logger writing to out and, when set, log.file. The
// returned closer is never nil.
func openLog(s config.Settings, verbosity int, out io.Writer) (*slog.Logger, io.Closer, error) {
	f, err := logx.OpenFile(s.Log.File, Version)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	var closer io.Closer = io.NopCloser(nil)
	switch {
	case f != nil && out != nil:
		out = io.MultiWriter(out, f)
		closer = f
	case f != nil:
		out = f
		closer = f
	case out == nil:
		return logx.Discard(), closer, nil
	}
	return logx.New(logx.Options{Level: s.Log.Level, Format: s.Log.Format, Output: out, Verbose: verbosity}), closer, nil
}

func exampleMarkup(s config.Settings) (string, error) {
	ex, err := s.ExampleMarkup()
	if err != nil || ex != "" {
		return ex, err
	}
	return editor.ExampleMarkup(), nil
}

func sessionOptions(s config.Settings, example string, log *slog.Logger) editor.Options {
	return editor.Options{
		Indent:    s.Editor.Indent,
		BannerTTL: s.Editor.BannerTTL,
		MinPanel:  s.TUI.MinPanel,
		Example:   example,
		Log:       log,
	}
}

// startServer binds and serves in the background. The returned channel
// yields Serve's result.
func startServer(opts server.Options) (*server.Server, <-chan error, error) {
	addr, err := ports.ResolveAddr(opts.Addr)
	if err != nil {
		return nil, nil, err
	}
	opts.Addr = addr
	srv, err := server.New(opts)
	if err != nil {
		return nil, nil, err
	}
	if err := srv.Listen(); err != nil {
		return nil, nil, err
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()
	return srv, done, nil
}

/* ---------- commands ---------- */

func cmdServe(args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	flags.Usage = func() { helpTopic("serve") }
	var common commonFlags
	common.register(flags)
	flags.String("addr", "", "Listen address (host:port, :0 or auto)")
	flags.String("public-dir", "", "Serve static files from this directory")
	flags.Int64("max-body", server.DefaultMaxBody, "Largest accepted /preview body in bytes")
	flags.Bool("open", false, "Open the editor in the system browser")
	flags.Bool("share", false, "Expose the editor through a cloudflared quick tunnel")
	useTUI := flags.Bool("tui", false, "Live request monitor")
	_ = flags.Parse(args)

	keys := baseLogKeys()
	keys["addr"] = "server.addr"
	keys["public-dir"] = "server.public_dir"
	keys["max-body"] = "server.max_body"
	keys["open"] = "server.open"
	keys["share"] = "server.share"
	_, s, err := loadConfig(flags, &common, keys)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	var sink *tui.LineSink
	if *useTUI {
		sink = tui.NewLineSink(256)
		out = sink
	}
	logger, closer, err := openLog(s, common.verbosity(), out)
	if err != nil {
		return err
	}
	defer closer.Close()

	example, err := exampleMarkup(s)
	if err != nil {
		return err
	}
	var public fs.FS = web.Public()
	if s.Server.PublicDir != "" {
		public = os.DirFS(s.Server.PublicDir)
	}

	hub := browser.NewHub(logger)
	defer hub.Close()

	var reqs chan server.RequestLog
	var onRequest func(server.RequestLog)
	if *useTUI {
		reqs = make(chan server.RequestLog, 256)
		onRequest = func(r server.RequestLog) {
			select {
			case reqs <- r:
			default:
			}
		}
	}
	srv, done, err := startServer(server.Options{
		Addr:      s.Server.Addr,
		Public:    public,
		MaxBody:   s.Server.MaxBody,
		Bridge:    hub,
		Example:   example,
		Log:       logger,
		OnRequest: onRequest,
	})
	if err != nil {
		return err
	}
	url := ports.BaseURL(srv.Addr())
	if !*useTUI {
		fmt.Printf("htmlpad %s serving %s (bridge: %s/bridge.html)\n", Version, url, url)
	}

	sup := proc.NewSupervisor(logger)
	if s.Server.Open {
		if err := sup.OpenBrowser(runtime.GOOS, url+"/"); err != nil {
			logger.Warn("could not open browser", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shared := ""
	if s.Server.Share {
		shared, err = tunnel.Quick(ctx, sup, url, tunnelWait)
		if err != nil {
			logger.Warn("share tunnel unavailable", "err", err)
		} else if !*useTUI {
			fmt.Printf("shared at %s\n", shared)
		}
	}

	var serveErr error
	if *useTUI {
		info := tui.ServerInfo{URL: url, BridgeURL: url + "/bridge.html", Public: s.Server.PublicDir, Shared: shared}
		if info.Public == "" {
			info.Public = "embedded"
		}
		uiCtx, stopUI := context.WithCancel(ctx)
		uiDone := make(chan error, 1)
		go func() { uiDone <- tui.ShowServer(uiCtx, info, reqs, sink.Lines(), hub.OnClientsChanged) }()
		uiRunning := true
		select {
		case serveErr = <-uiDone:
			uiRunning = false
		case serveErr = <-done:
		case <-ctx.Done():
		}
		stopUI()
		if uiRunning {
			if err := <-uiDone; err != nil {
				logger.Warn("request monitor", "err", err)
			}
		}
	} else {
		select {
		case serveErr = <-done:
		case <-ctx.Done():
			logger.Info("shutting down")
		}
	}

	shutdown, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = hub.Close()
	if err := srv.Close(shutdown); err != nil {
		logger.Warn("server shutdown", "err", err)
	}
	if err := sup.StopAll(shutdown); err != nil {
		logger.Warn("stop helpers", "err", err)
	}
	return serveErr
}

func cmdEdit(args []string) error {
	flags := flag.NewFlagSet("edit", flag.ExitOnError)
	flags.Usage = func() { helpTopic("edit") }
	var common commonFlags
	common.register(flags)
	flags.String("indent", "", "Indent unit inserted by Tab")
	flags.Duration("banner-ttl", editor.DefaultBannerTTL, "How long error messages stay up")
	flags.Int("min-panel", 0, "Smallest panel width in cells")
	flags.String("example", "", "Markup file loaded by the Example button")
	flags.String("via-server", "", "Relay renders through a running htmlpad server")
	flags.Bool("bridge", false, "Mirror renders to browser tabs")
	addr := flags.String("addr", "auto", "Bridge server address")
	noColor := flags.Bool("no-color", false, "Disable colors")
	_ = flags.Parse(args)

	keys := baseLogKeys()
	keys["indent"] = "editor.indent"
	keys["banner-ttl"] = "editor.banner_ttl"
	keys["min-panel"] = "tui.min_panel"
	keys["example"] = "editor.example_file"
	keys["via-server"] = "render.via_server"
	keys["bridge"] = "render.bridge"
	cfg, s, err := loadConfig(flags, &common, keys)
	if err != nil {
		return err
	}
	defer cfg.Close()

	logger, closer, err := openLog(s, common.verbosity(), nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	example, err := exampleMarkup(s)
	if err != nil {
		return err
	}
	opts := tui.Options{
		Session: sessionOptions(s, example, logger),
		NoColor: util.NoColor(*noColor),
		Log:     logger,
	}

	if s.Render.ViaServer != "" {
		client := httpx.NewClient(s.Render.ViaServer)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := httpx.WaitHTTPUp(ctx, client.BaseURL+"/healthz", 2*time.Second)
		cancel()
		if err != nil {
			return fmt.Errorf("server at %s is not answering: %w", s.Render.ViaServer, err)
		}
		opts.Relay = client
		opts.RelayTimeout = relay.DefaultTimeout
	}

	if s.Render.Bridge {
		hub := browser.NewHub(logger)
		defer hub.Close()
		srv, _, err := startServer(server.Options{
			Addr:    *addr,
			Public:  web.Public(),
			MaxBody: s.Server.MaxBody,
			Bridge:  hub,
			Example: example,
			Log:     logger,
		})
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			_ = srv.Close(ctx)
		}()
		opts.Bridge = hub
		opts.BridgeURL = ports.BaseURL(srv.Addr()) + "/bridge.html"
		logger.Info("bridge ready", "url", opts.BridgeURL)
	}

	if cfg.File() != "" {
		reload := make(chan editor.Options, 1)
		err := cfg.Watch(func(ns config.Settings) {
			ex, err := exampleMarkup(ns)
			if err != nil {
				logger.Warn("reload example", "err", err)
				ex = ""
			}
			select {
			case reload <- sessionOptions(ns, ex, logger):
			default:
			}
		})
		if err != nil {
			logger.Warn("config watch unavailable", "err", err)
		} else {
			opts.Reload = reload
		}
	}

	return tui.Run(opts)
}
