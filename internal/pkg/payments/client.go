package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tradekart/tradekart/internal/pkg/env"
)

const (
	defaultProcessorBaseURL = "https://sandbox-api.iyzipay.com"

	initializeEndpoint = "/payment/3dsecure/initialize"
	authorizeEndpoint  = "/payment/v2/3dsecure/auth"

	authorizeMaxAttempts = 3
)

// ProcessorClient abstracts the external card-authentication processor.
type ProcessorClient interface {
	Initialize3DS(ctx context.Context, req *ThreeDSInitRequest) (*ThreeDSInitResponse, error)
	Authorize3DS(ctx context.Context, req *ThreeDSAuthRequest) (*ThreeDSAuthResponse, error)
}

// Client talks to the processor's REST API. Every request is signed with an
// HMAC-SHA256 authorization header derived from the API credentials and the
// request body.
type Client struct {
	BaseURL   string
	APIKey    string
	SecretKey string

	HTTPClient *http.Client
}

// NewClientFromEnv builds the processor client from the environment.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:   strings.TrimRight(env.GetEnv("PROCESSOR_BASE_URL", defaultProcessorBaseURL), "/"),
		APIKey:    strings.TrimSpace(env.GetEnv("PROCESSOR_API_KEY", "")),
		SecretKey: strings.TrimSpace(env.GetEnv("PROCESSOR_SECRET_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Initialize3DS starts the card-authentication round trip. It is sent
// exactly once: a transport error (timeout included) can fire after the
// request body was delivered, and re-sending an init the processor already
// accepted opens a double-charge window. The caller keeps the payment row in
// PENDING_3DS for reconciliation instead.
func (c *Client) Initialize3DS(ctx context.Context, req *ThreeDSInitRequest) (*ThreeDSInitResponse, error) {
	var resp ThreeDSInitResponse
	if err := c.post(ctx, initializeEndpoint, req, &resp, 1); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Authorize3DS completes the round trip after the browser challenge. Retries
// are safe here: the terminal transition on our side is guarded, so a
// re-sent auth can only re-confirm the same outcome.
func (c *Client) Authorize3DS(ctx context.Context, req *ThreeDSAuthRequest) (*ThreeDSAuthResponse, error) {
	var resp ThreeDSAuthResponse
	if err := c.post(ctx, authorizeEndpoint, req, &resp, authorizeMaxAttempts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends a signed JSON request with up to maxAttempts tries on transport
// errors. HTTP-level responses are never retried.
func (c *Client) post(ctx context.Context, endpoint string, request, response interface{}, maxAttempts int) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal processor request: %w", err)
	}

	url := c.BaseURL + endpoint

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build processor request: %w", err)
		}
		rnd := strconv.FormatInt(time.Now().UnixMilli(), 10)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", c.authorizationHeader(body, rnd))
		req.Header.Set("x-iyzi-rnd", rnd)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read processor response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("processor returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("decode processor response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("processor unreachable after %d attempts: %w", maxAttempts, lastErr)
}

// authorizationHeader signs apiKey + rnd + secret + body with the secret key.
func (c *Client) authorizationHeader(body []byte, rnd string) string {
	mac := hmac.New(sha256.New, []byte(c.SecretKey))
	mac.Write([]byte(c.APIKey))
	mac.Write([]byte(rnd))
	mac.Write([]byte(c.SecretKey))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
