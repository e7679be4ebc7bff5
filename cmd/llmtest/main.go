package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/lamitex/lamitex-crm/internal/app/bootstrap"
	appconfig "github.com/lamitex/lamitex-crm/internal/config"
	"github.com/lamitex/lamitex-crm/internal/conversation"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	message := flag.String("message", "Olá, preciso de um tecido para bancos automotivos. O que vocês recomendam?", "message to send to the sales agent")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("============================================================")
	fmt.Println("Sales agent smoke test")
	fmt.Println("============================================================")

	if !cfg.HasAPIKey() {
		fmt.Println("\nSkipping: API_KEY (or GEMINI_API_KEY) not set; the chat panel would run degraded.")
		os.Exit(0)
	}

	client, closeClient, err := bootstrap.BuildChatClient(ctx, cfg, nil, logger)
	if err != nil {
		fmt.Printf("    ❌ Failed to create Gemini client: %v\n", err)
		os.Exit(1)
	}
	defer closeClient()

	newSender := bootstrap.NewSenderFactory(client, cfg, logger, nil)
	session := newSender()

	fmt.Printf("\n[1] Sending to %s...\n", cfg.ChatModel)
	start := time.Now()
	reply, err := session.Send(ctx, conversation.Turn{Text: *message})
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    ❌ Gemini error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("    ✅ Reply (%v):\n", elapsed.Round(time.Millisecond))
	fmt.Printf("    %s\n", reply)
}
