//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	pacttest "github.com/ignasiusberneo/clinic-admin/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type problemDetail struct {
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Message string `json:"error"`
}

type apiError struct {
	status  int
	message string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.message, e.status)
}

func TestCashierPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", `application\/json(?:;\s?charset=utf-8)?`)
	bearer := matchers.S("Bearer " + pacttest.ConsumerToken)

	pact.AddInteraction().
		Given(pacttest.StateAdminAccount).
		UponReceiving("a login with valid credentials").
		WithRequest(http.MethodPost, "/api/auth/login", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(map[string]string{"username": pacttest.AdminUsername, "password": pacttest.AdminPassword})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"token":      matchers.Like("3f1c0d6e9b2a4c58a7e1f0d2c3b4a596"),
				"expires_at": matchers.Like("2030-01-15T09:00:00Z"),
				"user": matchers.Map{
					"username": matchers.S(pacttest.AdminUsername),
				},
				"role": matchers.Map{
					"name":        matchers.Like("admin"),
					"permissions": matchers.ArrayMinLike("*", 1),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateBookableSlot).
		UponReceiving("a booking for the seeded therapy slot").
		WithRequest(http.MethodPost, "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", bearer)
			b.JSONBody(pacttest.ExampleOrderRequest())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id": matchers.Term("ORD-1736931600000-04217", pacttest.OrderIDPattern),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateAdminSession).
		UponReceiving("a request for an unknown order").
		WithRequest(http.MethodGet, "/api/orders/"+pacttest.MissingOrderID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"status": matchers.Like(http.StatusNotFound),
				"error":  matchers.S("Order tidak ditemukan"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateAdminAccount).
		UponReceiving("an order listing without a session").
		WithRequest(http.MethodGet, "/api/orders").
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"status": matchers.Like(http.StatusUnauthorized),
				"error":  matchers.S("Sesi tidak valid, silakan login kembali"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newCashierClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		token, err := client.Login(ctx, pacttest.AdminUsername, pacttest.AdminPassword)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if token == "" {
			return fmt.Errorf("expected a session token")
		}

		client.token = pacttest.ConsumerToken
		id, err := client.CreateOrder(ctx, pacttest.ExampleOrderRequest())
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if !regexp.MustCompile(pacttest.OrderIDPattern).MatchString(id) {
			return fmt.Errorf("unexpected order id %q", id)
		}

		if err := client.GetOrder(ctx, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %s", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %v", err)
		}

		client.token = ""
		if err := client.ListOrders(ctx); err == nil {
			return fmt.Errorf("expected 401 without a session")
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusUnauthorized {
			return fmt.Errorf("expected 401, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type cashierClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newCashierClient(config pactconsumer.MockServerConfig) *cashierClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &cashierClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *cashierClient) Login(ctx context.Context, username, password string) (string, error) {
	var session struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password}, &session)
	return session.Token, err
}

func (c *cashierClient) CreateOrder(ctx context.Context, body map[string]any) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/orders", body, &created)
	return created.ID, err
}

func (c *cashierClient) GetOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodGet, "/api/orders/"+id, nil, nil)
}

func (c *cashierClient) ListOrders(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/orders", nil, nil)
}

func (c *cashierClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(res.Body).Decode(&problem)
		return apiError{status: res.StatusCode, message: problem.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
