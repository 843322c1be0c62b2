package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	// Configuration
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "gateway base URL")
	email := flag.String("email", "admin@example.com", "account used to sign in")
	password := flag.String("password", "", "account password")
	numWorkers := flag.Int("workers", 500, "workers to create and toggle")
	requestsPerWorker := flag.Int("requests", 2, "check-in requests per worker")
	concurrency := flag.Int("concurrency", 50, "concurrent requests, bounded to avoid local port exhaustion")
	flag.Parse()

	contentType := "application/json"
	post := func(path string, body any) (*http.Response, error) {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		return http.Post(*baseURL+path, contentType, bytes.NewBuffer(payload))
	}

	resp, err := post("/auth/login", map[string]string{"email": *email, "password": *password})
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "login: unexpected status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Printf("Creating %d workers...\n", *numWorkers)
	workerIDs := make([]string, 0, *numWorkers)
	for i := 0; i < *numWorkers; i++ {
		resp, err := post("/workers", map[string]string{
			"name":       fmt.Sprintf("Load Test Worker %d", i),
			"position":   "Technician",
			"department": "Load Test",
			"email":      fmt.Sprintf("load-test-%d@example.com", i),
			"phone":      "(555) 000-0000",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "create worker: %v\n", err)
			os.Exit(1)
		}
		var created struct {
			ID string `json:"$id"`
		}
		err = json.NewDecoder(resp.Body).Decode(&created)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusCreated {
			fmt.Fprintf(os.Stderr, "create worker: status %d: %v\n", resp.StatusCode, err)
			os.Exit(1)
		}
		workerIDs = append(workerIDs, created.ID)
	}

	totalRequests := len(workerIDs) * *requestsPerWorker
	fmt.Printf("Starting load test: %d workers (%d requests each) to %s with concurrency %d\n", len(workerIDs), *requestsPerWorker, *baseURL+"/checkins", *concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, *concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for _, id := range workerIDs {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		go func(workerID string) {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			body := map[string]any{
				"workerId": workerID,
				"location": map[string]any{"latitude": 40.7128, "longitude": -74.0060, "address": "Load Test Site"},
			}
			// Requests for one worker are sequential so check-in and
			// check-out alternate.
			for j := 0; j < *requestsPerWorker; j++ {
				resp, err := post("/checkins", body)
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}

				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					atomic.AddInt64(&successCount, 1)
				} else {
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
		}(id)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
