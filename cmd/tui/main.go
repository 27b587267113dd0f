package main

import (
	"fmt"
	"log"
	"os"

	"taskdesk.org/internal/client"
	"taskdesk.org/internal/tui"
)

func main() {
	baseURL := os.Getenv("TASKDESK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	credential := os.Getenv("TASKDESK_TOKEN")
	if credential == "" {
		fmt.Fprintln(os.Stderr, "TASKDESK_TOKEN is not set.")
		fmt.Fprintln(os.Stderr, "Obtain one from POST /v1/auth/token, or use \"allow\" against a dev server.")
		os.Exit(2)
	}

	store := client.New(client.NewHTTPGateway(baseURL, credential))
	if err := tui.Run(store); err != nil {
		log.Fatalf("tui: %v", err)
	}
}
