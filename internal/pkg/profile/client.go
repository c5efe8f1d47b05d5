package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tradekart/tradekart/internal/pkg/env"
)

const defaultProfileServiceURL = "http://profile:8081"

// BuyerDetails is what the user-profile service knows about a customer,
// reduced to the fields the payment processor asks for.
type BuyerDetails struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	IdentityNumber string
	Address        string
	City           string
	Country        string
	ZipCode        string
}

// Client fetches buyer details from the external user-profile service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClientFromEnv builds the profile client from the environment.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL: strings.TrimRight(env.GetEnv("PROFILE_SERVICE_URL", defaultProfileServiceURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type meResponse struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	IdentityNumber string `json:"identityNumber"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Country        string `json:"country"`
	ZipCode        string `json:"zipCode"`
}

// GetBuyer resolves buyer details for an owner. The profile service being
// down must not block a payment, so any failure falls back to placeholder
// details and is logged.
func (c *Client) GetBuyer(ctx context.Context, ownerID string) BuyerDetails {
	details, err := c.fetch(ctx, ownerID)
	if err != nil {
		log.Printf("Failed to fetch buyer details for owner %s: %v", ownerID, err)
		return defaultBuyerDetails()
	}
	return details
}

func (c *Client) fetch(ctx context.Context, ownerID string) (BuyerDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/me", nil)
	if err != nil {
		return BuyerDetails{}, err
	}
	req.Header.Set("X-User-Id", ownerID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return BuyerDetails{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BuyerDetails{}, fmt.Errorf("profile service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return BuyerDetails{}, err
	}

	var me meResponse
	if err := json.Unmarshal(body, &me); err != nil {
		return BuyerDetails{}, err
	}

	details := BuyerDetails{
		FirstName:      me.FirstName,
		LastName:       me.LastName,
		Email:          me.Email,
		Phone:          me.Phone,
		IdentityNumber: me.IdentityNumber,
		Address:        me.Address,
		City:           me.City,
		Country:        me.Country,
		ZipCode:        me.ZipCode,
	}
	fillBuyerDefaults(&details)
	return details, nil
}

func defaultBuyerDetails() BuyerDetails {
	d := BuyerDetails{}
	fillBuyerDefaults(&d)
	return d
}

func fillBuyerDefaults(d *BuyerDetails) {
	if d.FirstName == "" {
		d.FirstName = "Customer"
	}
	if d.LastName == "" {
		d.LastName = "Unknown"
	}
	if d.Email == "" {
		d.Email = "customer@example.com"
	}
	if d.Phone == "" {
		d.Phone = "+905550000000"
	}
	if d.IdentityNumber == "" {
		d.IdentityNumber = "00000000000"
	}
	if d.Address == "" {
		d.Address = "Unknown"
	}
	if d.City == "" {
		d.City = "Istanbul"
	}
	if d.Country == "" {
		d.Country = "Turkey"
	}
	if d.ZipCode == "" {
		d.ZipCode = "34000"
	}
}
