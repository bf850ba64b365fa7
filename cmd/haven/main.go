package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/haven-ai/haven/pkg/config"
	"github.com/haven-ai/haven/pkg/engine"
)

const Version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		addr := ""
		if len(os.Args) > 2 {
			addr = ":" + os.Args[2]
		}
		runHTTPServer(addr)
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Usage: haven scan <text>")
			os.Exit(1)
		}
		runCLIScan(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("Haven v%s\n", Version)
		fmt.Println("On-device crisis detection and support")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Haven v%s - Crisis detection and support\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  haven serve [port]    Start HTTP server (default: 8787)")
	fmt.Println("  haven scan <text>     Analyze text from the command line")
	fmt.Println("  haven version         Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  haven serve 8080")
	fmt.Println("  haven scan \"I've been feeling really overwhelmed lately\"")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  HAVEN_ORACLE_PROVIDER  Provider: ollama, openrouter, groq, openai, none")
	fmt.Println("  HAVEN_ORACLE_API_KEY   API key for cloud providers")
	fmt.Println("  HAVEN_REDIS_ADDR       Redis address for the session ledger (default: in-memory)")
	fmt.Println("  HAVEN_OVERRIDES_PATH   YAML file with extra lexicon keywords")
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

type analyzeRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	ImagePath string `json:"image_path"`
}

func runHTTPServer(addr string) {
	cfg := config.NewDefaultConfig()
	cfg.MustValidate()
	if addr == "" {
		addr = cfg.ListenAddr
	}

	ctx := context.Background()
	eng, err := engine.New(ctx, cfg)
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}
	defer func() { _ = eng.Close() }()

	app := fiber.New(fiber.Config{
		AppName: "Haven",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	app.Post("/api/analyze", func(c fiber.Ctx) error {
		var req analyzeRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		resp, err := eng.Process(c.Context(), engine.Request{
			SessionID: req.SessionID,
			Text:      req.Text,
			ImagePath: req.ImagePath,
		})
		switch {
		case errors.Is(err, engine.ErrEmptyRequest):
			return c.Status(400).JSON(fiber.Map{"error": "text or image_path is required"})
		case errors.Is(err, engine.ErrMalformedImage):
			return c.Status(422).JSON(fiber.Map{"error": "image could not be decoded"})
		case err != nil:
			log.Printf("[ERROR] analyze failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
		return c.JSON(resp)
	})

	app.Get("/api/session/:id/summary", func(c fiber.Ctx) error {
		summary, err := eng.Summary(c.Context(), c.Params("id"))
		if err != nil {
			log.Printf("[ERROR] summary failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
		return c.JSON(summary)
	})

	log.Printf("Haven HTTP server starting on %s", addr)
	log.Printf("Endpoints:")
	log.Printf("  GET  /health                   - Health check")
	log.Printf("  POST /api/analyze              - Analyze text and/or image")
	log.Printf("  GET  /api/session/:id/summary  - Session history summary")

	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

// ============================================================================
// CLI Mode
// ============================================================================

func runCLIScan(text string) {
	cfg := config.NewDefaultConfig()
	ctx := context.Background()

	eng, err := engine.New(ctx, cfg)
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}
	defer func() { _ = eng.Close() }()

	resp, err := eng.Process(ctx, engine.Request{
		SessionID: uuid.NewString(),
		Text:      text,
	})
	if err != nil {
		log.Fatalf("analyze failed: %v", err)
	}

	output, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(output))
}
