package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	resolveTimeout = 3 * time.Second
	cacheTTL       = 24 * time.Hour
	cacheKeyPrefix = "geoloc:"
)

// reverseGeocodeResponse matches the BigDataCloud-style reverse geocode payload.
type reverseGeocodeResponse struct {
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryName          string `json:"countryName"`
}

type httpResolver struct {
	baseURL string
	client  *http.Client
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

// NewHTTPResolver resolves coordinates against a reverse-geocode endpoint.
// Lookups are coalesced per rounded coordinate and cached in redis; the
// short client timeout keeps a slow upstream from ever blocking a punch.
func NewHTTPResolver(baseURL string, rdb *redis.Client, logger ...*zap.Logger) Resolver {
	l := zap.L().Named("geolocation.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("geolocation.resolver")
	}
	return &httpResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: resolveTimeout},
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (r *httpResolver) Resolve(ctx context.Context, latitude, longitude float64) (string, error) {
	// Three decimals (~110m) is plenty for a place label and keeps the
	// cache keyspace bounded.
	key := fmt.Sprintf("%s%.3f:%.3f", cacheKeyPrefix, latitude, longitude)

	if r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	v, err, _ := r.sf.Do(key, func() (interface{}, error) {
		label, err := r.fetch(ctx, latitude, longitude)
		if err != nil {
			return "", err
		}

		if r.rdb != nil {
			if err := r.rdb.Set(ctx, key, label, cacheTTL).Err(); err != nil {
				r.logger.Warn("cache resolved location failed", zap.Error(err))
			}
		}
		return label, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *httpResolver) fetch(ctx context.Context, latitude, longitude float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", latitude))
	q.Set("longitude", fmt.Sprintf("%f", longitude))
	q.Set("localityLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", ErrResolutionFailed
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("reverse geocode request failed", zap.Error(err))
		return "", ErrResolutionFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("reverse geocode unexpected status", zap.Int("status", resp.StatusCode))
		return "", ErrResolutionFailed
	}

	var body reverseGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", ErrResolutionFailed
	}

	label := buildLabel(body)
	if label == "" {
		return "", ErrResolutionFailed
	}
	return label, nil
}

func buildLabel(body reverseGeocodeResponse) string {
	parts := make([]string, 0, 3)
	if body.City != "" {
		parts = append(parts, body.City)
	} else if body.Locality != "" {
		parts = append(parts, body.Locality)
	}
	if body.PrincipalSubdivision != "" {
		parts = append(parts, body.PrincipalSubdivision)
	}
	if body.CountryName != "" {
		parts = append(parts, body.CountryName)
	}
	return strings.Join(parts, ", ")
}
