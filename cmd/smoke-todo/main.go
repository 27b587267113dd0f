// smoke-todo exercises a running API end to end: create, list, toggle,
// delete. Exits non-zero on the first contract violation.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"taskdesk.org/internal/client"
	"taskdesk.org/internal/todo"
)

func main() {
	baseURL := os.Getenv("TASKDESK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	credential := os.Getenv("TASKDESK_TOKEN")
	if credential == "" {
		// Works against a server started with TASKDESK_DEV_TOKENS=1.
		credential = "allow"
	}

	gw := client.NewHTTPGateway(baseURL, credential)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	title := fmt.Sprintf("smoke-%d", time.Now().UnixNano())
	created, err := gw.Create(ctx, title, "created by smoke-todo")
	if err != nil {
		log.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Completed {
		log.Fatalf("unexpected created record: %+v", created)
	}

	items, err := gw.List(ctx)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	if !contains(items, created.ID) {
		log.Fatalf("created todo %s missing from list", created.ID)
	}

	completed := true
	updated, err := gw.Update(ctx, created.ID, todo.Patch{Completed: &completed})
	if err != nil {
		log.Fatalf("toggle: %v", err)
	}
	if !updated.Completed {
		log.Fatalf("toggle did not stick: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		log.Fatalf("updatedAt did not advance: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}

	if err := gw.Delete(ctx, created.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	items, err = gw.List(ctx)
	if err != nil {
		log.Fatalf("list after delete: %v", err)
	}
	if contains(items, created.ID) {
		log.Fatalf("todo %s still listed after delete", created.ID)
	}

	fmt.Printf("✅ taskdesk smoke test passed: todo=%s\n", created.ID)
}

func contains(items []todo.Todo, id string) bool {
	for _, t := range items {
		if t.ID == id {
			return true
		}
	}
	return false
}
