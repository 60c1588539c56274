// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

/*
client.go - Fanline REST API client

One method per synced resource, each fetching a single page of an owner's
records:

  - Cursor-paginated (time-ordered insight data): Earnings, Chats.
    GET /owners/{externalUuid}/{resource}?cursor=…&limit=…
    Body: {"data":[…],"nextCursor":"…"|null}
  - Page/size-paginated (list data): TrackingLinks, Media, Subscribers.
    GET /owners/{externalUuid}/{resource}?page=…&size=…
    Body: {"data":[…],"pagination":{"page":n,"size":n,"hasMore":bool}}

Every request carries Authorization: Bearer <token> and the pinned
X-Api-Version header. Non-2xx statuses are translated into the typed errors
in errors.go; the client never retries on its own — the retry policy lives
in the Transport, pacing and failure isolation in the per-credential
limiter/breaker registries.

The wire structs in this file mirror the upstream JSON exactly (camelCase,
RFC 3339 times) and are converted into the internal models. Returned records
carry upstream identity and payload fields only; the caller assigns local
ownership (OwnerID) and the sync timestamp before persisting.
*/

package fanline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/credentials"
	"github.com/creatorops/upsync/internal/models"
)

const (
	headerAPIVersion  = "X-Api-Version"
	defaultAPIVersion = "2026-07"
)

// maxBodyExcerpt caps how much of an error response body is read for
// diagnostics. Prevents unbounded allocation on large error pages.
const maxBodyExcerpt = 64 * 1024

// ClientInterface defines the per-resource fetch operations. Implemented by
// Client for production use and by fakes in orchestrator tests.
//
// All methods are safe for concurrent use and honor ctx cancellation during
// pacing waits, HTTP calls, and retry sleeps.
type ClientInterface interface {
	TrackingLinks(ctx context.Context, cred *credentials.Resolved, externalUUID string, page, size int) (*ListPage[models.TrackingLink], error)
	Earnings(ctx context.Context, cred *credentials.Resolved, externalUUID, cursor string, limit int) (*CursorPage[models.EarningRecord], error)
	Chats(ctx context.Context, cred *credentials.Resolved, externalUUID, cursor string, limit int) (*CursorPage[models.ChatThread], error)
	Media(ctx context.Context, cred *credentials.Resolved, externalUUID string, page, size int) (*ListPage[models.MediaAsset], error)
	Subscribers(ctx context.Context, cred *credentials.Resolved, externalUUID string, page, size int) (*ListPage[models.Subscriber], error)
}

// Ensure Client implements ClientInterface.
var _ ClientInterface = (*Client)(nil)

// CursorPage is one slice of a cursor-paginated stream. NextCursor is empty
// on the final page.
type CursorPage[T any] struct {
	Items      []T
	NextCursor string
}

// ListPage is one slice of a page/size-paginated list. HasMore reports
// whether another page follows.
type ListPage[T any] struct {
	Items   []T
	Page    int
	Size    int
	HasMore bool
}

// Client provides access to the Fanline REST API.
type Client struct {
	baseURL    string
	apiVersion string
	transport  *Transport
	limiters   *limiterRegistry
	breakers   *breakerRegistry
}

// NewClient builds a Fanline client from the upstream config.
func NewClient(cfg *config.UpstreamConfig) *Client {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiVersion: apiVersion,
		transport:  NewTransport(cfg),
		limiters:   newLimiterRegistry(cfg.RequestsPerSecond, cfg.RequestBurst),
		breakers:   newBreakerRegistry(cfg.BreakerDisabled),
	}
}

// TrackingLinks fetches one page of an owner's promotional tracking links.
func (c *Client) TrackingLinks(ctx context.Context, cred *credentials.Resolved, externalUUID string, page, size int) (*ListPage[models.TrackingLink], error) {
	var env listEnvelope[trackingLinkWire]
	if err := c.get(ctx, cred, models.ResourceTrackingLinks, externalUUID, listQuery(page, size), &env); err != nil {
		return nil, err
	}
	return &ListPage[models.TrackingLink]{
		Items:   convert(env.Data, trackingLinkWire.toModel),
		Page:    env.Pagination.Page,
		Size:    env.Pagination.Size,
		HasMore: env.Pagination.HasMore,
	}, nil
}

// Earnings fetches one page of an owner's earnings ledger, newest-first
// cursor order. Pass an empty cursor for the first page.
func (c *Client) Earnings(ctx context.Context, cred *credentials.Resolved, externalUUID, cursor string, limit int) (*CursorPage[models.EarningRecord], error) {
	var env cursorEnvelope[earningWire]
	if err := c.get(ctx, cred, models.ResourceEarnings, externalUUID, cursorQuery(cursor, limit), &env); err != nil {
		return nil, err
	}
	return &CursorPage[models.EarningRecord]{
		Items:      convert(env.Data, earningWire.toModel),
		NextCursor: env.next(),
	}, nil
}

// Chats fetches one page of an owner's fan conversations in cursor order.
func (c *Client) Chats(ctx context.Context, cred *credentials.Resolved, externalUUID, cursor string, limit int) (*CursorPage[models.ChatThread], error) {
	var env cursorEnvelope[chatThreadWire]
	if err := c.get(ctx, cred, models.ResourceChats, externalUUID, cursorQuery(cursor, limit), &env); err != nil {
		return nil, err
	}
	return &CursorPage[models.ChatThread]{
		Items:      convert(env.Data, chatThreadWire.toModel),
		NextCursor: env.next(),
	}, nil
}

// Media fetches one page of an owner's published content.
func (c *Client) Media(ctx context.Context, cred *credentials.Resolved, externalUUID string, page, size int) (*ListPage[models.MediaAsset], error) {
	var env listEnvelope[mediaAssetWire]
	if err := c.get(ctx, cred, models.ResourceMedia, externalUUID, listQuery(page, size), &env); err != nil {
		return nil, err
	}
	return &ListPage[models.MediaAsset]{
		Items:   convert(env.Data, mediaAssetWire.toModel),
		Page:    env.Pagination.Page,
		Size:    env.Pagination.Size,
		HasMore: env.Pagination.HasMore,
	}, nil
}

// Subscribers fetches one page of an owner's audience list.
func (c *Client) Subscribers(ctx context.Context, cred *credentials.Resolved, externalUUID string, page, size int) (*ListPage[models.Subscriber], error) {
	var env listEnvelope[subscriberWire]
	if err := c.get(ctx, cred, models.ResourceSubscribers, externalUUID, listQuery(page, size), &env); err != nil {
		return nil, err
	}
	return &ListPage[models.Subscriber]{
		Items:   convert(env.Data, subscriberWire.toModel),
		Page:    env.Pagination.Page,
		Size:    env.Pagination.Size,
		HasMore: env.Pagination.HasMore,
	}, nil
}

// get performs one paced, breaker-guarded, transport-retried page fetch and
// decodes a 200 body into out. Non-2xx statuses become typed errors:
// 404 → ErrNotFound, 403 → *ForbiddenError, anything else → *UpstreamError.
// Server-side errors (5xx) count against the credential's breaker; valid
// upstream answers (2xx/403/404) do not.
func (c *Client) get(ctx context.Context, cred *credentials.Resolved, resource models.Resource, externalUUID string, query url.Values, out interface{}) error {
	if err := c.limiters.wait(ctx, cred); err != nil {
		return fmt.Errorf("%s for owner %s: pacing wait: %w", resource, externalUUID, err)
	}

	reqURL := fmt.Sprintf("%s/owners/%s/%s?%s", c.baseURL, url.PathEscape(externalUUID), resource, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", resource, err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)
	req.Header.Set(headerAPIVersion, c.apiVersion)
	req.Header.Set("Accept", "application/json")

	resp, err := c.breakers.execute(cred, func() (*http.Response, error) {
		resp, err := c.transport.Execute(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			excerpt := strings.TrimSpace(string(readBodyExcerpt(resp.Body)))
			_ = resp.Body.Close()
			return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: excerpt}
		}
		return resp, nil
	})
	if err != nil {
		return fmt.Errorf("%s for owner %s: %w", resource, externalUUID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		if derr := json.NewDecoder(resp.Body).Decode(out); derr != nil {
			return fmt.Errorf("decode %s response for owner %s: %w", resource, externalUUID, derr)
		}
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%s for owner %s: %w", resource, externalUUID, ErrNotFound)
	case http.StatusForbidden:
		excerpt := strings.TrimSpace(string(readBodyExcerpt(resp.Body)))
		return fmt.Errorf("%s for owner %s: %w", resource, externalUUID,
			&ForbiddenError{Capability: requiredCapability(resource), Detail: excerpt})
	default:
		excerpt := strings.TrimSpace(string(readBodyExcerpt(resp.Body)))
		return fmt.Errorf("%s for owner %s: %w", resource, externalUUID,
			&UpstreamError{StatusCode: resp.StatusCode, Body: excerpt})
	}
}

// cursorEnvelope is the wire shape of cursor-paginated responses.
type cursorEnvelope[T any] struct {
	Data       []T     `json:"data"`
	NextCursor *string `json:"nextCursor"`
}

// next returns the cursor for the following page, empty on the final page.
func (e cursorEnvelope[T]) next() string {
	if e.NextCursor == nil {
		return ""
	}
	return *e.NextCursor
}

// listEnvelope is the wire shape of page/size-paginated responses.
type listEnvelope[T any] struct {
	Data       []T            `json:"data"`
	Pagination listPagination `json:"pagination"`
}

type listPagination struct {
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasMore bool `json:"hasMore"`
}

// convert maps a decoded wire slice into model records.
func convert[W, M any](in []W, f func(W) M) []M {
	out := make([]M, 0, len(in))
	for _, w := range in {
		out = append(out, f(w))
	}
	return out
}

// cursorQuery builds ?cursor=…&limit=… (cursor omitted for the first page).
func cursorQuery(cursor string, limit int) url.Values {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// listQuery builds ?page=…&size=….
func listQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// readBodyExcerpt reads at most maxBodyExcerpt bytes of a response body for
// error reporting, marking truncation when the cap is hit.
func readBodyExcerpt(r io.Reader) []byte {
	limited := io.LimitReader(r, maxBodyExcerpt)
	body, err := io.ReadAll(limited)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxBodyExcerpt {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Wire structs, one per resource. Field names and types mirror the upstream
// schema; required fields are plain values, optional ones pointers.

type trackingLinkWire struct {
	UUID         string     `json:"uuid"`
	Name         string     `json:"name"`
	TargetURL    string     `json:"targetUrl"`
	Clicks       int64      `json:"clicks"`
	UniqueClicks int64      `json:"uniqueClicks"`
	LastClickAt  *time.Time `json:"lastClickAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (w trackingLinkWire) toModel() models.TrackingLink {
	return models.TrackingLink{
		ExternalUUID: w.UUID,
		Name:         w.Name,
		TargetURL:    w.TargetURL,
		Clicks:       w.Clicks,
		UniqueClicks: w.UniqueClicks,
		LastClickAt:  w.LastClickAt,
		CreatedAt:    w.CreatedAt,
	}
}

type earningWire struct {
	UUID       string    `json:"uuid"`
	Source     string    `json:"source"`
	GrossCents int64     `json:"grossCents"`
	NetCents   int64     `json:"netCents"`
	Currency   string    `json:"currency"`
	EarnedAt   time.Time `json:"earnedAt"`
}

func (w earningWire) toModel() models.EarningRecord {
	return models.EarningRecord{
		ExternalUUID: w.UUID,
		Source:       w.Source,
		GrossCents:   w.GrossCents,
		NetCents:     w.NetCents,
		Currency:     w.Currency,
		EarnedAt:     w.EarnedAt,
	}
}

type chatThreadWire struct {
	UUID            string     `json:"uuid"`
	FanHandle       string     `json:"fanHandle"`
	MessageCount    int64      `json:"messageCount"`
	UnreadCount     int64      `json:"unreadCount"`
	TotalSpendCents int64      `json:"totalSpendCents"`
	LastMessageAt   *time.Time `json:"lastMessageAt"`
}

func (w chatThreadWire) toModel() models.ChatThread {
	return models.ChatThread{
		ExternalUUID:    w.UUID,
		FanHandle:       w.FanHandle,
		MessageCount:    w.MessageCount,
		UnreadCount:     w.UnreadCount,
		TotalSpendCents: w.TotalSpendCents,
		LastMessageAt:   w.LastMessageAt,
	}
}

type mediaAssetWire struct {
	UUID          string    `json:"uuid"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title"`
	Likes         int64     `json:"likes"`
	PurchaseCount int64     `json:"purchaseCount"`
	PriceCents    int64     `json:"priceCents"`
	PostedAt      time.Time `json:"postedAt"`
}

func (w mediaAssetWire) toModel() models.MediaAsset {
	return models.MediaAsset{
		ExternalUUID:  w.UUID,
		Kind:          w.Kind,
		Title:         w.Title,
		Likes:         w.Likes,
		PurchaseCount: w.PurchaseCount,
		PriceCents:    w.PriceCents,
		PostedAt:      w.PostedAt,
	}
}

type subscriberWire struct {
	UUID            string     `json:"uuid"`
	Handle          string     `json:"handle"`
	Status          string     `json:"status"`
	TotalSpendCents int64      `json:"totalSpendCents"`
	RenewEnabled    bool       `json:"renewEnabled"`
	SubscribedAt    time.Time  `json:"subscribedAt"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

func (w subscriberWire) toModel() models.Subscriber {
	return models.Subscriber{
		ExternalUUID:    w.UUID,
		Handle:          w.Handle,
		Status:          w.Status,
		TotalSpendCents: w.TotalSpendCents,
		RenewEnabled:    w.RenewEnabled,
		SubscribedAt:    w.SubscribedAt,
		ExpiresAt:       w.ExpiresAt,
	}
}
