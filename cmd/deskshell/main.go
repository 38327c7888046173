package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/justyntemme/deskshell/internal/app"
	"github.com/justyntemme/deskshell/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config.json (default ~/.config/deskshell/config.json)")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	generate := flag.Bool("generate-config", false, "Write a default config, backing up any existing one, and exit")
	issue := flag.String("issue-token", "", "Print a signed token for the given user and exit")
	addMount := flag.String("add-mount", "", "Save a category=dir mount to the config and exit")
	watchMount := flag.Bool("watch", false, "With -add-mount, re-import the directory when it changes")
	removeMount := flag.String("remove-mount", "", "Remove the mount of a category from the config and exit")
	namePolicy := flag.String("name-policy", "", "Save the name policy (permit or unique) to the config and exit")
	flag.Parse()

	if *generate {
		backup, err := config.GenerateConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		if backup != "" {
			fmt.Printf("Backed up existing config to %s\n", backup)
		}
		fmt.Println("Wrote default config")
		return
	}

	cfg := config.NewManager(*configPath)

	switch {
	case *addMount != "":
		if err := app.AddMount(cfg, *addMount, *watchMount); err != nil {
			log.Fatalf("Failed to add mount: %v", err)
		}
		fmt.Printf("Saved mount %s\n", *addMount)
		return
	case *removeMount != "":
		if err := app.RemoveMount(cfg, *removeMount); err != nil {
			log.Fatalf("Failed to remove mount: %v", err)
		}
		fmt.Printf("Removed mount %s\n", *removeMount)
		return
	case *namePolicy != "":
		if err := app.SetNamePolicy(cfg, *namePolicy); err != nil {
			log.Fatalf("Failed to set name policy: %v", err)
		}
		fmt.Printf("Saved name policy %s\n", *namePolicy)
		return
	}

	if *issue != "" {
		if err := cfg.Load(); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		token, exp, err := app.IssueToken(cfg.Get().Auth, *issue)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Printf("%s\n# expires %s\n", token, exp.Format("2006-01-02 15:04:05 MST"))
		return
	}

	o := app.NewOrchestrator(cfg, *debug)
	if err := o.Setup(); err != nil {
		o.Close()
		log.Fatalf("Failed to start: %v", err)
	}

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := o.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped.")
}
