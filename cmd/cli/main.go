package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"mediascout/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	global := flag.NewFlagSet("mediascout", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 15 * time.Second}

	switch args[0] {
	case "recommend":
		handleRecommend(ctx, client, *baseURL, args[1:])
	case "suggest":
		handleSuggest(ctx, client, *baseURL, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleRecommend(ctx context.Context, client *http.Client, baseURL string, args []string) {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	query := fs.String("q", "", "seed title")
	mediaType := fs.String("type", "", "movie|series|anime|book")
	loc := fs.String("locale", "", "preferred locale, e.g. de or pt-BR")
	limit := fs.Int("limit", 10, "result count")
	raw := fs.Bool("json", false, "print raw JSON")
	_ = fs.Parse(args)

	if *query == "" {
		log.Fatal("-q is required")
	}

	u, err := url.Parse(baseURL + "/recommendations")
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}
	qv := u.Query()
	qv.Set("q", *query)
	qv.Set("limit", fmt.Sprintf("%d", *limit))
	if *mediaType != "" {
		qv.Set("type", *mediaType)
	}
	if *loc != "" {
		qv.Set("locale", *loc)
	}
	u.RawQuery = qv.Encode()

	var resp models.Result
	if err := doJSON(ctx, client, u.String(), &resp); err != nil {
		log.Fatalf("recommend failed: %v", err)
	}

	if *raw {
		printJSON(resp)
		return
	}

	fmt.Printf("%d results (candidates: %d, relaxations: %d)\n\n",
		len(resp.Items), resp.Debug.TotalCandidates, resp.Debug.Relaxations)
	for i, it := range resp.Items {
		year := ""
		if it.Year > 0 {
			year = fmt.Sprintf(" (%d)", it.Year)
		}
		fmt.Printf("%2d. [%.3f] %s%s - %s\n", i+1, it.Score, it.Title, year, it.Type)
		if len(it.Genres) > 0 {
			fmt.Printf("      %s\n", strings.Join(it.Genres, ", "))
		}
	}
}

func handleSuggest(ctx context.Context, client *http.Client, baseURL string, args []string) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	query := fs.String("q", "", "partial title")
	limit := fs.Int("limit", 8, "suggestion count")
	_ = fs.Parse(args)

	if *query == "" {
		log.Fatal("-q is required")
	}

	u, err := url.Parse(baseURL + "/suggest")
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}
	qv := u.Query()
	qv.Set("q", *query)
	qv.Set("limit", fmt.Sprintf("%d", *limit))
	u.RawQuery = qv.Encode()

	var resp struct {
		Suggestions []models.Suggestion `json:"suggestions"`
	}
	if err := doJSON(ctx, client, u.String(), &resp); err != nil {
		log.Fatalf("suggest failed: %v", err)
	}

	for _, s := range resp.Suggestions {
		year := ""
		if s.Year > 0 {
			year = fmt.Sprintf(" (%d)", s.Year)
		}
		fmt.Printf("%s%s - %s\n", s.Title, year, s.Type)
	}
}

func doJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func printUsage() {
	fmt.Println(`usage: mediascout [-api URL] <command>

commands:
  recommend -q <title> [-type movie|series|anime|book] [-locale LOC] [-limit N] [-json]
  suggest   -q <text> [-limit N]`)
}
