package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pttwnz/elie/internal/api"
	"github.com/pttwnz/elie/internal/config"
	"github.com/pttwnz/elie/internal/core"
	"github.com/pttwnz/elie/internal/extract"
	"github.com/pttwnz/elie/internal/store"
	"github.com/pttwnz/elie/internal/wiki"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize flat-file stores
	users, err := store.NewCredentialStore(config.AppConfig.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize credential store: %v", err)
	}
	prompts, err := store.NewPromptStore(config.AppConfig.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize prompt store: %v", err)
	}
	sessions, err := store.NewSessionStore(config.AppConfig.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}

	// External capabilities
	llmService := core.NewLLMService()
	wikiClient := wiki.New(wiki.Config{
		Lang:    config.AppConfig.WikipediaLang,
		Timeout: config.AppConfig.WikiTimeout,
	})

	// Core services
	accountService := core.NewAccountService(users, prompts, sessions)
	promptService := core.NewPromptService(prompts, sessions)
	sessionService := core.NewSessionService(sessions)
	ingestService := core.NewIngestService(sessions, extract.Text)
	assembler := core.NewAssembler(wikiClient)
	chatService := core.NewChatService(sessions, prompts, assembler, llmService)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(accountService, promptService, sessionService, ingestService, chatService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // completion calls can take a while
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
