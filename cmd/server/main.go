package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, defaults are used otherwise)")
	listenAddr := flag.String("listen", "", "override the configured listen address")
	broadcasterKind := flag.String("broadcaster", "", "override the configured broadcaster (memory|redis)")
	redisAddr := flag.String("redis", "", "override the configured redis address")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("inkwell: %v", err)
		}
		cfg = loaded
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *broadcasterKind != "" {
		cfg.Broadcaster = *broadcasterKind
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("inkwell: %v", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatalf("inkwell: %v", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatalf("inkwell: %v", err)
	}
}
