package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://servicodados.ibge.gov.br/api/v1/localidades"

// State é uma unidade federativa.
type State struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

// City é um município de uma unidade federativa.
type City struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Config descreve o endpoint e o cache opcional.
type Config struct {
	BaseURL  string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// Client consulta estados e municípios no serviço de localidades do IBGE.
// Falhas nunca chegam ao chamador: o resultado é uma lista vazia.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      redisCommander
	cacheTTL   time.Duration
}

// New cria o cliente; cache pode ser nil.
func New(cfg Config, cache redisCommander) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		cacheTTL:   cfg.CacheTTL,
	}
	if cache != nil && cfg.CacheTTL > 0 {
		c.cache = cache
	}
	return c
}

// States lista as unidades federativas ordenadas por nome.
func (c *Client) States(ctx context.Context) []State {
	var states []State
	c.fetch(ctx, "geo:estados", c.baseURL+"/estados?orderBy=nome", &states)
	if states == nil {
		states = []State{}
	}
	return states
}

// Cities lista os municípios da UF informada.
func (c *Client) Cities(ctx context.Context, uf string) []City {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if len(uf) != 2 {
		return []City{}
	}
	var cities []City
	c.fetch(ctx, "geo:municipios:"+uf, c.baseURL+"/estados/"+url.PathEscape(uf)+"/municipios", &cities)
	if cities == nil {
		cities = []City{}
	}
	return cities
}

func (c *Client) fetch(ctx context.Context, cacheKey, endpoint string, out any) {
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			if json.Unmarshal(data, out) == nil {
				return
			}
		}
	}

	payload, err := c.get(ctx, endpoint)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("consulta de localidades falhou")
		return
	}
	if err := json.Unmarshal(payload, out); err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("resposta de localidades inválida")
		return
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, payload, c.cacheTTL).Err(); err != nil {
			log.Debug().Err(err).Str("key", cacheKey).Msg("falha ao gravar cache de localidades")
		}
	}
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ibge: status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
