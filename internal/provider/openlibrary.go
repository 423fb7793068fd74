package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediascout/pkg/models"
)

const openLibraryBase = "https://openlibrary.org"

// OpenLibrary searches the Open Library catalog for books.
type OpenLibrary struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewOpenLibrary() *OpenLibrary {
	return &OpenLibrary{
		Client:  &http.Client{Timeout: DefaultTimeout + time.Second},
		Timeout: DefaultTimeout,
	}
}

func (p *OpenLibrary) Name() string { return "openlibrary" }

func (p *OpenLibrary) Supports(t models.MediaType) bool {
	return t == models.TypeAny || t == models.TypeBook
}

type openLibraryResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string   `json:"key"` // "/works/OL27448W"
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		Subject          []string `json:"subject"`
		CoverI           int      `json:"cover_i"`
		RatingsAverage   float64  `json:"ratings_average"` // 0-5
		FirstSentence    []string `json:"first_sentence"`
	} `json:"docs"`
}

func (p *OpenLibrary) Search(ctx context.Context, query string, opts SearchOptions) ([]models.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	u, _ := url.Parse(openLibraryBase + "/search.json")
	q := u.Query()
	q.Set("q", query)
	limit := opts.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: build request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openlibrary: status %d: %s", resp.StatusCode, string(body))
	}

	var ol openLibraryResponse
	if err := json.NewDecoder(resp.Body).Decode(&ol); err != nil {
		return nil, fmt.Errorf("openlibrary: decode: %w", err)
	}

	items := make([]models.CatalogItem, 0, len(ol.Docs))
	for _, d := range ol.Docs {
		workID := strings.TrimPrefix(d.Key, "/works/")
		if workID == "" || d.Title == "" {
			continue
		}

		// subjects are unbounded folksonomy; keep a handful
		genres := d.Subject
		if len(genres) > 6 {
			genres = genres[:6]
		}

		it := models.CatalogItem{
			ID:       "openlibrary:" + workID,
			Title:    d.Title,
			Type:     models.TypeBook,
			Year:     d.FirstPublishYear,
			Genres:   genres,
			Creators: d.AuthorName,
			Source:   "openlibrary",
		}
		if len(d.FirstSentence) > 0 {
			it.Synopsis = d.FirstSentence[0]
		}
		if d.CoverI > 0 {
			it.ThumbKey = strconv.Itoa(d.CoverI)
		}
		if d.RatingsAverage > 0 {
			// ratings come back on a 0-5 scale
			rating := d.RatingsAverage * 2
			it.PopularityRaw = &rating
		}
		items = append(items, it)
	}
	return items, nil
}
