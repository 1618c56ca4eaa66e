package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/amonteverde/cv-valorador/internal/agent"
	"github.com/amonteverde/cv-valorador/internal/api"
	"github.com/amonteverde/cv-valorador/internal/config"
	"github.com/amonteverde/cv-valorador/internal/gui"
	"github.com/amonteverde/cv-valorador/internal/rubric"
)

func main() {
	guiMode := flag.Bool("gui", false, "run the desktop interface instead of the HTTP server")
	rubricPath := flag.String("rubric", "", "path to a rubric YAML file (default: embedded rubric)")
	flag.Parse()

	if *guiMode {
		gui.NewApp().Run()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	if *rubricPath != "" {
		cfg.RubricPath = *rubricPath
	}

	rubricCfg := rubric.Default()
	if cfg.RubricPath != "" {
		rubricCfg, err = rubric.Load(cfg.RubricPath)
		if err != nil {
			log.Fatalf("Failed to load rubric from %s: %v", cfg.RubricPath, err)
		}
	}

	valorador, err := agent.NewValoradorAgent(rubricCfg, cfg.UploadsDir, cfg.GmailCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize agent: %v", err)
	}

	server := api.NewServer(valorador)

	addr := cfg.ListenAddr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	fmt.Printf("Starting CV Valorador on %s (rubric v%s)...\n", addr, rubricCfg.Version)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  POST /ingest - Upload CVs or fetch from Gmail\n")
	fmt.Printf("  GET /report - Get ranked candidate results\n")
	fmt.Printf("  GET /rubric - Get the active scoring rubric\n")

	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
