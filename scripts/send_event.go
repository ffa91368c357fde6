package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// send_event.go - Utility to post a sample event to the ingestion API
//
// Usage:
//   go run scripts/send_event.go <access|speed|motion> [base_url]
//
// Example:
//   go run scripts/send_event.go speed http://localhost:8000

var samples = map[string]string{
	"access": `{
		"device_id": "AA:BB:CC:DD:EE:FF",
		"timestamp": "%s",
		"event_type": "access_attempt",
		"user_id": "user123"
	}`,
	"speed": `{
		"device_id": "11:22:33:44:55:66",
		"timestamp": "%s",
		"event_type": "speed_violation",
		"speed_kmh": 120,
		"location": "Highway 101"
	}`,
	"motion": `{
		"device_id": "77:88:99:AA:BB:CC",
		"timestamp": "%s",
		"event_type": "motion_detected",
		"zone": "Secure Zone B",
		"confidence": 0.95,
		"photo_base64": "iVBORw0KGgoAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="
	}`,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/send_event.go <access|speed|motion> [base_url]")
		os.Exit(1)
	}

	sample, ok := samples[os.Args[1]]
	if !ok {
		fmt.Printf("unknown event kind %q\n", os.Args[1])
		os.Exit(1)
	}

	baseURL := "http://localhost:8000"
	if len(os.Args) > 2 {
		baseURL = os.Args[2]
	}

	body := fmt.Sprintf(sample, time.Now().UTC().Format(time.RFC3339))
	resp, err := http.Post(baseURL+"/api/v1/events", "application/json", bytes.NewBufferString(body))
	if err != nil {
		fmt.Printf("request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Printf("Body:   %s\n", out)
}
