// Package main starts the storefront web service.
//
// This process owns the whole shopper surface: catalog browsing, the cart,
// authentication, and checkout, all served from a single HTTP listener.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	storefrontcmd "github.com/urbanhaven/storefront/internal/cmd/storefront"
)

func main() {
	cfg, err := storefrontcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[STOREFRONT] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := storefrontcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
