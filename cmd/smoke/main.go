// Command smoke posts the reference questions to a running server and checks
// that each one comes back with an answer and diagnostics.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var baseURL = "http://localhost:8080"

var queries = []string{
	"What does Section 302 of BNS say?",
	"Explain Article 14 of the Constitution",
	"Someone entered my home and stole my property",
}

type answerResponse struct {
	Answer struct {
		Text string `json:"text"`
	} `json:"answer"`
	Diagnostics struct {
		RunID         string  `json:"run_id"`
		Outcome       string  `json:"outcome"`
		Selection     string  `json:"selection"`
		TopSimilarity float64 `json:"top_similarity"`
		GraphError    string  `json:"graph_error"`
		VectorError   string  `json:"vector_error"`
	} `json:"diagnostics"`
}

func main() {
	if v := os.Getenv("LEGALRAG_BASE_URL"); v != "" {
		baseURL = v
	}
	client := &http.Client{Timeout: 5 * time.Minute}

	fmt.Println("Starting smoke test against", baseURL)

	if _, ok := send(client, http.MethodGet, "/healthz", nil); !ok {
		fmt.Println("WARN: server reports degraded health")
	}

	failed := 0
	for i, q := range queries {
		fmt.Printf("%d. %s\n", i+1, q)
		body, ok := send(client, http.MethodPost, "/answer", map[string]string{"query": q})
		if !ok {
			fmt.Println("FAILED: request")
			failed++
			continue
		}

		var resp answerResponse
		if err := json.Unmarshal(body, &resp); err != nil || resp.Answer.Text == "" || resp.Diagnostics.RunID == "" {
			fmt.Println("FAILED: malformed response")
			failed++
			continue
		}
		d := resp.Diagnostics
		fmt.Printf("PASSED: outcome=%s selection=%s top_similarity=%.3f\n", d.Outcome, d.Selection, d.TopSimilarity)
		if d.GraphError != "" || d.VectorError != "" {
			fmt.Printf("  degraded: graph=%q vector=%q\n", d.GraphError, d.VectorError)
		}
	}

	if failed > 0 {
		fmt.Printf("%d of %d queries failed\n", failed, len(queries))
		os.Exit(1)
	}
}

func send(client *http.Client, method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Unexpected status %d: %s\n", resp.StatusCode, string(respBody))
		return respBody, false
	}
	return respBody, true
}
