package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noa10/mataresit-app-sub003/models"
)

// HTTPClientConfig configures the REST implementation of [RemoteAPI].
type HTTPClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type httpRemoteAPI struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPRemoteAPI constructs a [RemoteAPI] speaking REST/JSON against the
// remote base URL. Every request is bounded by cfg.Timeout (default 15s) so
// that one stuck call cannot wedge a sync pass.
func NewHTTPRemoteAPI(cfg HTTPClientConfig) RemoteAPI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	api := &httpRemoteAPI{client: cli}
	api.SetToken(cfg.Token)
	return api
}

func (h *httpRemoteAPI) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteAPI) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpRemoteAPI) Principal() (string, error) {
	token := h.Token()
	if token == "" {
		return "", ErrAuthRequired
	}
	sub, err := parseSubjectFromJWT(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	return sub, nil
}

func (h *httpRemoteAPI) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return fmt.Errorf("%w: health probe: %v", ErrUnavailable, err)
	}
	return mapHTTPError(resp)
}

func (h *httpRemoteAPI) Upsert(ctx context.Context, collection models.EntityType, record models.RemoteEntity) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Put(fmt.Sprintf("/api/%s/%s", collection, record.ID))
	if err != nil {
		return fmt.Errorf("%w: upsert request: %v", ErrUnavailable, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteAPI) Delete(ctx context.Context, collection models.EntityType, id string) error {
	resp, err := h.authedRequest(ctx).
		Delete(fmt.Sprintf("/api/%s/%s", collection, id))
	if err != nil {
		return fmt.Errorf("%w: delete request: %v", ErrUnavailable, err)
	}

	// The remote delete is idempotent: a 404 means the record is already
	// gone, which is the state the queue item asked for.
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	return mapHTTPError(resp)
}

func (h *httpRemoteAPI) ListSince(ctx context.Context, collection models.EntityType, since time.Time, limit, offset int) ([]models.RemoteEntity, error) {
	req := h.authedRequest(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("offset", strconv.Itoa(offset))
	if !since.IsZero() {
		req.SetQueryParam("since", since.UTC().Format(time.RFC3339Nano))
	}

	resp, err := req.Get(fmt.Sprintf("/api/%s", collection))
	if err != nil {
		return nil, fmt.Errorf("%w: list since request: %v", ErrUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var records []models.RemoteEntity
	if err = json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	return records, nil
}

func (h *httpRemoteAPI) ListIDs(ctx context.Context, collection models.EntityType, limit, offset int) (models.RemoteIDPage, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("offset", strconv.Itoa(offset)).
		Get(fmt.Sprintf("/api/%s/ids", collection))
	if err != nil {
		return models.RemoteIDPage{}, fmt.Errorf("%w: list ids request: %v", ErrUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteIDPage{}, err
	}

	var page models.RemoteIDPage
	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return models.RemoteIDPage{}, fmt.Errorf("decode id page response: %w", err)
	}

	return page, nil
}

func (h *httpRemoteAPI) Fetch(ctx context.Context, collection models.EntityType, ids []string) ([]models.RemoteEntity, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string][]string{"ids": ids}).
		Post(fmt.Sprintf("/api/%s/fetch", collection))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch request: %v", ErrUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var records []models.RemoteEntity
	if err = json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("decode fetch response: %w", err)
	}

	return records, nil
}

func (h *httpRemoteAPI) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// mapHTTPError converts a non-2xx response into one of the package's
// sentinel errors.
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: http %d: %s", ErrAuthRequired, code, body)
	case code == http.StatusBadRequest || code == http.StatusConflict || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: http %d: %s", ErrRemoteRejected, code, body)
	default:
		// 5xx, 429 and anything else unexpected is treated as transient.
		return fmt.Errorf("%w: http %d: %s", ErrUnavailable, code, body)
	}
}

func parseSubjectFromJWT(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("access token has no subject")
	}

	return sub, nil
}
