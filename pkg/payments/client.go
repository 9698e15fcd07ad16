package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://api.mercadopago.com"

var ErrNoRedirectURL = errors.New("payment gateway returned no redirect url")

// PreferenceRequest describes one checkout to create with the gateway.
type PreferenceRequest struct {
	Title       string
	Description string
	Quantity    int
	UnitPrice   float64
	// TenantRef is sent as the external reference so the gateway webhook can
	// be matched back to the paying tenant.
	TenantRef string
	Users     int
}

// Preference is the gateway's answer: an id plus the checkout redirect URLs.
type Preference struct {
	Id               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type Client interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error)
}

type Config struct {
	AccessToken string `koanf:"accessToken"`
	BaseURL     string `koanf:"baseUrl"`
	Sandbox     bool   `koanf:"sandbox"`
}

type ClientImpl struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *ClientImpl {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	token := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	return &ClientImpl{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(context.Background(), token),
	}
}

type preferenceItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type preferenceBody struct {
	Items             []preferenceItem  `json:"items"`
	ExternalReference string            `json:"external_reference"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (c *ClientImpl) CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error) {
	body := preferenceBody{
		Items: []preferenceItem{{
			Title:       req.Title,
			Description: req.Description,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
		}},
		ExternalReference: req.TenantRef,
	}
	if req.Users > 0 {
		body.Metadata = map[string]string{"users": fmt.Sprintf("%d", req.Users)}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Preference{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/checkout/preferences", bytes.NewReader(payload))
	if err != nil {
		log.Errorf("Failed to create preference request: %v", err)
		return Preference{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Errorf("Failed to execute preference request: %v", err)
		return Preference{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := fmt.Errorf("payment gateway answered %d", resp.StatusCode)
		log.Error(err)
		return Preference{}, err
	}

	var preference Preference
	if err := json.NewDecoder(resp.Body).Decode(&preference); err != nil {
		log.Errorf("Failed to decode preference response: %v", err)
		return Preference{}, err
	}
	return preference, nil
}
