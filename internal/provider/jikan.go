package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mediascout/pkg/models"
)

const jikanBase = "https://api.jikan.moe/v4"

// Jikan searches MyAnimeList (via the keyless Jikan mirror) for anime.
type Jikan struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewJikan() *Jikan {
	return &Jikan{
		Client:  &http.Client{Timeout: DefaultTimeout + time.Second},
		Timeout: DefaultTimeout,
	}
}

func (p *Jikan) Name() string { return "jikan" }

func (p *Jikan) Supports(t models.MediaType) bool {
	return t == models.TypeAny || t == models.TypeAnime
}

type jikanResponse struct {
	Data []struct {
		MalID    int      `json:"mal_id"`
		Title    string   `json:"title"`
		TitleEn  string   `json:"title_english"`
		Synopsis string   `json:"synopsis"`
		Score    float64  `json:"score"` // 0-10
		Year     int      `json:"year"`
		Genres   []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Studios []struct {
			Name string `json:"name"`
		} `json:"studios"`
		Images struct {
			JPG struct {
				ImageURL string `json:"image_url"`
			} `json:"jpg"`
		} `json:"images"`
	} `json:"data"`
}

func (p *Jikan) Search(ctx context.Context, query string, opts SearchOptions) ([]models.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	u, _ := url.Parse(jikanBase + "/anime")
	q := u.Query()
	q.Set("q", query)
	q.Set("sfw", "true")
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("jikan: build request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jikan: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("jikan: status %d: %s", resp.StatusCode, string(body))
	}

	var jr jikanResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return nil, fmt.Errorf("jikan: decode: %w", err)
	}

	items := make([]models.CatalogItem, 0, len(jr.Data))
	for _, d := range jr.Data {
		if d.MalID == 0 {
			continue
		}
		title := d.TitleEn
		if title == "" {
			title = d.Title
		}
		if title == "" {
			continue
		}

		genres := make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			if g.Name != "" {
				genres = append(genres, g.Name)
			}
		}
		creators := make([]string, 0, len(d.Studios))
		for _, s := range d.Studios {
			if s.Name != "" {
				creators = append(creators, s.Name)
			}
		}

		it := models.CatalogItem{
			ID:       fmt.Sprintf("jikan:%d", d.MalID),
			Title:    title,
			Type:     models.TypeAnime,
			Year:     d.Year,
			Genres:   genres,
			Synopsis: d.Synopsis,
			Creators: creators,
			ThumbKey: d.Images.JPG.ImageURL,
			Source:   "jikan",
		}
		if d.Score > 0 {
			score := d.Score
			it.PopularityRaw = &score
		}
		items = append(items, it)
	}
	return items, nil
}
