package payments

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTransport struct {
	calls int
}

func (t *failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return nil, errors.New("connection reset by peer")
}

type recordingTransport struct {
	lastReq *http.Request
	body    string
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lastReq = req
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Header:     http.Header{},
	}, nil
}

func newTransportClient(rt http.RoundTripper) *Client {
	return &Client{
		BaseURL:    "http://processor.test",
		APIKey:     "api-key",
		SecretKey:  "secret-key",
		HTTPClient: &http.Client{Transport: rt},
	}
}

func TestInitialize3DSIsNeverRetried(t *testing.T) {
	transport := &failingTransport{}
	client := newTransportClient(transport)

	_, err := client.Initialize3DS(context.Background(), &ThreeDSInitRequest{ConversationID: "conv-1"})
	require.Error(t, err)

	// A timeout can strike after the request body was delivered, so a second
	// send could double-charge. One attempt only.
	assert.Equal(t, 1, transport.calls)
}

func TestAuthorize3DSRetriesTransportErrors(t *testing.T) {
	transport := &failingTransport{}
	client := newTransportClient(transport)

	_, err := client.Authorize3DS(context.Background(), &ThreeDSAuthRequest{PaymentID: "proc-1"})
	require.Error(t, err)
	assert.Equal(t, authorizeMaxAttempts, transport.calls)
}

func TestClientSignsRequests(t *testing.T) {
	transport := &recordingTransport{body: `{"status":"success","paymentId":"proc-1"}`}
	client := newTransportClient(transport)

	resp, err := client.Initialize3DS(context.Background(), &ThreeDSInitRequest{ConversationID: "conv-1"})
	require.NoError(t, err)
	assert.Equal(t, "proc-1", resp.PaymentID)

	req := transport.lastReq
	require.NotNil(t, req)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.NotEmpty(t, req.Header.Get("Authorization"))
	assert.NotEmpty(t, req.Header.Get("x-iyzi-rnd"))
	assert.Equal(t, "/payment/3dsecure/initialize", req.URL.Path)
}
