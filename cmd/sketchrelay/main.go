// Command sketchrelay runs a standalone room relay.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SketchRoom/internal/config"
	sknet "SketchRoom/internal/net"
	"SketchRoom/internal/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var history relay.HistoryStore = relay.NewMemoryHistory()
	if cfg.RedisAddr != "" {
		rh, err := relay.NewRedisHistory(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to open history: %v", err)
		}
		defer rh.Close()
		history = rh
		log.Printf("[RELAY] Using Redis history at %s", cfg.RedisAddr)
	}

	if cfg.Advertise {
		server, err := sknet.Advertise(cfg.Port, cfg.Room)
		if err != nil {
			log.Printf("[MDNS] %v", err)
		} else {
			defer server.Shutdown()
		}
	}

	if err := relay.NewServer(history).ListenAndServe(ctx, cfg.ListenAddr()); err != nil {
		log.Fatal(err)
	}
	log.Println("[RELAY] Shut down")
}
