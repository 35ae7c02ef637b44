package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"SketchRoom/internal/config"
	"SketchRoom/internal/export"
	sknet "SketchRoom/internal/net"
	"SketchRoom/internal/relay"
	"SketchRoom/internal/state"
	"SketchRoom/internal/ui"
)

const discoverTimeout = 3 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	args := os.Args[1:]
	switch {
	case len(args) == 0:
		err = runHost(cfg)
	case strings.HasPrefix(args[0], sknet.LinkScheme):
		err = runLink(cfg, args[0])
	case args[0] == "discover":
		room := ""
		if len(args) > 1 {
			room = args[1]
		}
		err = runDiscover(cfg, room)
	case args[0] == "export" && len(args) == 3:
		err = runExport(cfg, args[1], args[2])
	default:
		err = fmt.Errorf("usage: sketchroom [%s<host>:<port>/<room> | discover [room] | export <link> <out.pdf|out.png>]", sknet.LinkScheme)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runHost starts a relay on this machine, advertises it and opens a board
// connected to it.
func runHost(cfg config.Config) error {
	log.Println("Starting as HOST")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	history, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}
	go func() {
		if err := relay.NewServer(history).Serve(ctx, ln); err != nil {
			log.Printf("[RELAY] Stopped: %v", err)
		}
	}()

	if cfg.Advertise {
		server, err := sknet.Advertise(cfg.Port, cfg.Room)
		if err != nil {
			log.Printf("[MDNS] %v", err)
		} else {
			defer server.Shutdown()
		}
	}

	hostIP, err := sknet.GetOutgoingIP()
	if err != nil {
		log.Printf("Could not determine LAN address: %v", err)
		hostIP = "127.0.0.1"
	}
	shared := sknet.Endpoint{Host: hostIP, Port: cfg.Port, Room: cfg.Room}
	local := sknet.Endpoint{Host: "127.0.0.1", Port: cfg.Port, Room: cfg.Room}
	log.Printf("Share link: %s", shared.Link())

	return openBoard(cfg, local, shared.Link())
}

func runLink(cfg config.Config, link string) error {
	log.Println("Starting as CLIENT")
	ep, err := sknet.ParseLink(link)
	if err != nil {
		return err
	}
	return openBoard(cfg, ep, ep.Link())
}

func runDiscover(cfg config.Config, room string) error {
	log.Println("Looking for a relay on the local network")
	ep, err := sknet.Discover(discoverTimeout, room)
	if err != nil {
		return err
	}
	return openBoard(cfg, ep, ep.Link())
}

// runExport renders a room's history to a file without opening a window.
func runExport(cfg config.Config, link, out string) error {
	ep, err := sknet.ParseLink(link)
	if err != nil {
		return err
	}
	opts := connectOptions(cfg, ep)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := sknet.NewHistoryClient(opts.HistoryURL, opts.NewestFirst).Fetch(ctx, ep.Room)
	if err != nil {
		return err
	}
	shapes := state.ShapesOf(entries)
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		return export.SavePNG(out, shapes, 1600, 1200)
	case ".pdf":
		return export.SavePDF(out, shapes)
	}
	return errors.New("export target must end in .pdf or .png")
}

func openBoard(cfg config.Config, ep sknet.Endpoint, link string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, transport, err := sknet.Connect(ctx, ep.Room, connectOptions(cfg, ep))
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer transport.Close()

	return ui.RunApp(ui.Session{
		Title:   "SketchRoom - " + ep.Room,
		Link:    link,
		Sender:  client,
		Inbound: client,
		History: client,
	})
}

// connectOptions locates the relay for ep, letting configured URLs win.
func connectOptions(cfg config.Config, ep sknet.Endpoint) sknet.ConnectOptions {
	opts := sknet.EndpointOptions(ep)
	if cfg.RelayURL != "" {
		opts.RelayURL = cfg.RelayURL
	}
	if cfg.HistoryURL != "" {
		opts.HistoryURL = cfg.HistoryURL
	}
	opts.Token = cfg.Token
	opts.NewestFirst = cfg.HistoryNewestFirst
	return opts
}

func openHistory(ctx context.Context, cfg config.Config) (relay.HistoryStore, error) {
	if cfg.RedisAddr == "" {
		return relay.NewMemoryHistory(), nil
	}
	h, err := relay.NewRedisHistory(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	log.Printf("[RELAY] Using Redis history at %s", cfg.RedisAddr)
	return h, nil
}
