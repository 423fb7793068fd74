package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediascout/pkg/models"
)

const tmdbBase = "https://api.themoviedb.org/3"

// TMDB searches The Movie Database for movies and series.
type TMDB struct {
	APIKey  string
	Client  *http.Client
	Timeout time.Duration
}

func NewTMDB(apiKey string) *TMDB {
	return &TMDB{
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: DefaultTimeout + time.Second},
		Timeout: DefaultTimeout,
	}
}

func (p *TMDB) Name() string { return "tmdb" }

func (p *TMDB) Supports(t models.MediaType) bool {
	switch t {
	case models.TypeAny, models.TypeMovie, models.TypeSeries:
		return true
	}
	return false
}

type tmdbResponse struct {
	Page    int `json:"page"`
	Results []struct {
		ID           int     `json:"id"`
		MediaType    string  `json:"media_type"`
		Title        string  `json:"title"`          // movies
		Name         string  `json:"name"`           // tv
		ReleaseDate  string  `json:"release_date"`   // movies
		FirstAirDate string  `json:"first_air_date"` // tv
		Overview     string  `json:"overview"`
		VoteAverage  float64 `json:"vote_average"`
		GenreIDs     []int   `json:"genre_ids"`
		PosterPath   string  `json:"poster_path"`
	} `json:"results"`
	TotalResults int `json:"total_results"`
}

func (p *TMDB) Search(ctx context.Context, query string, opts SearchOptions) ([]models.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	u, _ := url.Parse(tmdbBase + "/search/multi")
	q := u.Query()
	q.Set("query", query)
	q.Set("api_key", p.APIKey)
	q.Set("include_adult", "false")
	u.RawQuery = q.Encode()

	var td tmdbResponse
	if err := p.getJSON(ctx, u.String(), &td); err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(td.Results))
	for _, r := range td.Results {
		it, ok := p.mapResult(r.ID, r.MediaType, r.Title, r.Name, r.ReleaseDate, r.FirstAirDate,
			r.Overview, r.VoteAverage, r.GenreIDs, r.PosterPath)
		if !ok || !matchesType(it, opts.Type) {
			continue
		}
		items = append(items, it)
		if opts.Limit > 0 && len(items) >= opts.Limit {
			break
		}
	}
	return items, nil
}

// FetchByID looks up one entry directly. nativeID is "movie/603" or
// "tv/1396", matching how Search qualifies ids.
func (p *TMDB) FetchByID(ctx context.Context, nativeID string) (*models.CatalogItem, error) {
	kind, id, ok := strings.Cut(nativeID, "/")
	if !ok || (kind != "movie" && kind != "tv") {
		return nil, fmt.Errorf("tmdb: bad native id %q", nativeID)
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	u, _ := url.Parse(fmt.Sprintf("%s/%s/%s", tmdbBase, kind, id))
	q := u.Query()
	q.Set("api_key", p.APIKey)
	u.RawQuery = q.Encode()

	var d struct {
		ID           int     `json:"id"`
		Title        string  `json:"title"`
		Name         string  `json:"name"`
		ReleaseDate  string  `json:"release_date"`
		FirstAirDate string  `json:"first_air_date"`
		Overview     string  `json:"overview"`
		VoteAverage  float64 `json:"vote_average"`
		PosterPath   string  `json:"poster_path"`
		Genres       []struct {
			Name string `json:"name"`
		} `json:"genres"`
	}
	if err := p.getJSON(ctx, u.String(), &d); err != nil {
		return nil, err
	}

	it, ok := p.mapResult(d.ID, kind, d.Title, d.Name, d.ReleaseDate, d.FirstAirDate,
		d.Overview, d.VoteAverage, nil, d.PosterPath)
	if !ok {
		return nil, nil
	}
	for _, g := range d.Genres {
		if g.Name != "" {
			it.Genres = append(it.Genres, g.Name)
		}
	}
	return &it, nil
}

func (p *TMDB) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("tmdb: build request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tmdb: status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: decode: %w", err)
	}
	return nil
}

func (p *TMDB) mapResult(id int, mediaType, title, name, releaseDate, firstAirDate,
	overview string, voteAverage float64, genreIDs []int, posterPath string) (models.CatalogItem, bool) {

	var (
		mt      models.MediaType
		mtTitle string
		date    string
	)
	switch mediaType {
	case "movie":
		mt, mtTitle, date = models.TypeMovie, title, releaseDate
	case "tv":
		mt, mtTitle, date = models.TypeSeries, name, firstAirDate
	default:
		// "person" and anything future
		return models.CatalogItem{}, false
	}
	if id == 0 || mtTitle == "" {
		return models.CatalogItem{}, false
	}

	it := models.CatalogItem{
		ID:       fmt.Sprintf("tmdb:%s/%d", mediaType, id),
		Title:    mtTitle,
		Type:     mt,
		Year:     yearOf(date),
		Genres:   tmdbGenreNames(genreIDs),
		Synopsis: overview,
		ThumbKey: strings.TrimPrefix(posterPath, "/"),
		Source:   "tmdb",
	}
	if voteAverage > 0 {
		v := voteAverage
		it.PopularityRaw = &v
	}
	return it, true
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		y = y*10 + int(c-'0')
	}
	return y
}

// tmdbGenres maps the stable numeric genre ids TMDB returns on search
// results (full objects only come back on detail lookups).
var tmdbGenres = map[int]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy",
	80: "Crime", 99: "Documentary", 18: "Drama", 10751: "Family",
	14: "Fantasy", 36: "History", 27: "Horror", 10402: "Music",
	9648: "Mystery", 10749: "Romance", 878: "Science Fiction",
	53: "Thriller", 10752: "War", 37: "Western",
	10759: "Action & Adventure", 10762: "Kids", 10764: "Reality",
	10765: "Sci-Fi & Fantasy", 10766: "Soap", 10768: "War & Politics",
}

func tmdbGenreNames(ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := tmdbGenres[id]; ok {
			out = append(out, name)
		}
	}
	return out
}
