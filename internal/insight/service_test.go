package insight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyAgentHubs/logifyer/internal/db"
)

type fakeCompleter struct {
	calls     int
	system    string
	prompt    string
	maxTokens int
	err       error
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string, maxTokens int) (string, error) {
	f.calls++
	f.system, f.prompt, f.maxTokens = system, prompt, maxTokens
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("analysis #%d", f.calls), nil
}

func ptr(s string) *string { return &s }

type fixture struct {
	store  *db.DB
	now    *time.Time
	fake   *fakeCompleter
	svc    *Service
	person int64
	late   int64
	listen int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store := db.NewTestDBAt(t, &now)

	person, err := store.AddPerson(ctx, "Jordan", "coworker", nil)
	require.NoError(t, err)

	f := &fixture{store: store, now: &now, fake: &fakeCompleter{}, person: person}
	cats, err := store.ListCategories(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		switch c.Name {
		case "Always late":
			f.late = c.ID
		case "Actually listened":
			f.listen = c.ID
		}
	}
	f.svc = NewService(store, f.fake,
		WithClock(func() time.Time { return *f.now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return f
}

func (f *fixture) log(t *testing.T, categoryID int64, points int, major bool, note *string) int64 {
	t.Helper()
	inc, err := f.store.LogIncident(context.Background(), f.person, categoryID, points, major, note)
	require.NoError(t, err)
	*f.now = f.now.Add(time.Hour)
	return inc.ID
}

func TestPersonInsights_GeneratesThenCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.log(t, f.late, -2, false, ptr("45 minutes"))
	f.log(t, f.listen, 5, false, nil)

	res, err := f.svc.PersonInsights(ctx, f.person, false)
	require.NoError(t, err)
	assert.Equal(t, "analysis #1", res.Content)
	assert.False(t, res.Cached)
	assert.Equal(t, InsightMaxTokens, f.fake.maxTokens)
	assert.Equal(t, analystSystem, f.fake.system)
	assert.Contains(t, f.fake.prompt, "Analyze this relationship data for Jordan")
	assert.Contains(t, f.fake.prompt, "Total Incidents: 2")
	assert.Contains(t, f.fake.prompt, "Negative: 1")
	assert.Contains(t, f.fake.prompt, "Always late (-2pts) - 45 minutes")
	assert.Contains(t, f.fake.prompt, "Actually listened (+5pts)")

	res, err = f.svc.PersonInsights(ctx, f.person, false)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "analysis #1", res.Content)
	assert.Equal(t, 1, f.fake.calls)
}

func TestPersonInsights_NewIncidentInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.log(t, f.late, -2, false, nil)

	_, err := f.svc.PersonInsights(ctx, f.person, false)
	require.NoError(t, err)

	f.log(t, f.late, -2, true, nil)
	res, err := f.svc.PersonInsights(ctx, f.person, false)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, f.fake.calls)
}

func TestPersonInsights_ExpiryAndForce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.log(t, f.late, -2, false, nil)

	_, err := f.svc.PersonInsights(ctx, f.person, false)
	require.NoError(t, err)

	res, err := f.svc.PersonInsights(ctx, f.person, true)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, f.fake.calls)

	*f.now = f.now.Add(DefaultCacheTTL + time.Minute)
	res, err = f.svc.PersonInsights(ctx, f.person, false)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 3, f.fake.calls)
}

func TestPersonInsights_CompleterErrorNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.err = errors.New("quota exceeded")

	_, err := f.svc.PersonInsights(ctx, f.person, false)
	require.Error(t, err)

	stats, err := f.store.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.CachedInsights)
}

func TestPersonInsights_UnknownPerson(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PersonInsights(context.Background(), 999, false)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Zero(t, f.fake.calls)
}

func TestPersonInsights_PromptQuotesAtMostTwenty(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.log(t, f.late, -2, false, nil)
	}

	_, err := f.svc.PersonInsights(context.Background(), f.person, false)
	require.NoError(t, err)
	assert.Contains(t, f.fake.prompt, "Total Incidents: 25")
	assert.Equal(t, recentLimit, countOccurrences(f.fake.prompt, "Always late (-2pts)"))
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}

func TestConfrontationScript(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.log(t, f.late, -2, true, ptr("skipped my birthday"))
	f.log(t, f.listen, 5, false, nil)
	third := f.log(t, f.late, -2, false, nil)

	script, err := f.svc.ConfrontationScript(ctx, f.person, []int64{first, third, 12345})
	require.NoError(t, err)
	assert.Equal(t, "analysis #1", script)
	assert.Equal(t, ScriptMaxTokens, f.fake.maxTokens)
	assert.Equal(t, coachSystem, f.fake.system)
	assert.Contains(t, f.fake.prompt, "difficult conversation with Jordan")
	assert.Contains(t, f.fake.prompt, "1. Always late (MAJOR): skipped my birthday [2026-05-01]")
	assert.Contains(t, f.fake.prompt, "2. Always late: No details")

	// Scripts are never cached.
	stats, err := f.store.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.CachedInsights)
}

func TestConfrontationScript_NoIncidents(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ConfrontationScript(context.Background(), f.person, []int64{42})
	assert.ErrorIs(t, err, ErrNoIncidents)
	assert.Zero(t, f.fake.calls)
}

func TestOpenAI_Complete(t *testing.T) {
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodPost, "https://llm.example.test/v1/chat/completions",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"id":     "chatcmpl-1",
				"object": "chat.completion",
				"model":  DefaultModel,
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": "Keep boundaries clear."},
				}},
			})
		})

	c, err := NewOpenAI("sk-test", "",
		WithBaseURL("https://llm.example.test/v1"),
		WithHTTPClient(&http.Client{Transport: mt}),
	)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "system", "prompt", 50)
	require.NoError(t, err)
	assert.Equal(t, "Keep boundaries clear.", out)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestOpenAI_APIError(t *testing.T) {
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodPost, "https://llm.example.test/v1/chat/completions",
		httpmock.NewStringResponder(http.StatusUnauthorized,
			`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))

	c, err := NewOpenAI("sk-bad", "gpt-4o",
		WithBaseURL("https://llm.example.test/v1"),
		WithHTTPClient(&http.Client{Transport: mt}),
	)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "system", "prompt", 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI("", "")
	assert.Error(t, err)
}
