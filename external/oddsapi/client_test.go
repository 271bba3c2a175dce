package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/betstats/external/httpfetch"
	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/domain/match"
	"github.com/riskibarqy/betstats/internal/infrastructure/quota"
	"github.com/riskibarqy/betstats/internal/platform/cache"
	"github.com/riskibarqy/betstats/internal/platform/keypool"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

var (
	epl = catalog.League{
		Name:     "Premier League",
		Country:  "England",
		Division: "E0",
		OddsAPI:  &catalog.OddsAPIRef{SportKey: "soccer_epl"},
	}
	fixedNow = time.Date(2024, 3, 2, 16, 0, 0, 0, time.UTC)
)

const scoresPayload = `[
  {"id":"done1","sport_key":"soccer_epl","commence_time":"2024-02-29T19:45:00Z","completed":true,
   "home_team":"Luton","away_team":"Aston Villa","scores":[{"name":"Aston Villa","score":"3"},{"name":"Luton","score":"2"}]},
  {"id":"live1","sport_key":"soccer_epl","commence_time":"2024-03-02T15:00:00Z","completed":false,
   "home_team":"Everton","away_team":"West Ham United","scores":[{"name":"Everton","score":"1"},{"name":"West Ham United","score":"0"}]},
  {"id":"old1","sport_key":"soccer_epl","commence_time":"2024-02-20T19:45:00Z","completed":true,
   "home_team":"Brentford","away_team":"Wolves","scores":[{"name":"Brentford","score":"1"},{"name":"Wolves","score":"1"}]},
  {"id":"bad","sport_key":"soccer_epl","commence_time":"yesterday","completed":true,"home_team":"A","away_team":"B","scores":null}
]`

const eventsPayload = `[
  {"id":"next1","sport_key":"soccer_epl","commence_time":"2024-03-03T14:00:00Z","home_team":"Manchester City","away_team":"Manchester United"},
  {"id":"live1","sport_key":"soccer_epl","commence_time":"2024-03-02T15:00:00Z","home_team":"Everton","away_team":"West Ham United"}
]`

func newTestClient(t *testing.T, server *httptest.Server, credentials ...keypool.Credential) *Client {
	t.Helper()

	if len(credentials) == 0 {
		credentials = []keypool.Credential{{ID: "odds-1", Key: "odds-key-1", DailyLimit: 500}}
	}
	logger := logging.NewNop()
	return NewClient(ClientConfig{
		BaseURL: server.URL,
		HTTP: httpfetch.New(httpfetch.Config{
			Name:         "odds-api",
			HTTPClient:   server.Client(),
			RetryBackoff: time.Millisecond,
			Logger:       logger,
		}),
		Pool:   keypool.New("odds-api", credentials, quota.NewMemoryTracker(cache.NewCounters()), keypool.WithLogger(logger)),
		Logger: logger,
		Now:    func() time.Time { return fixedNow },
	})
}

func TestClient_FetchRangeMergesScoresAndEvents(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "odds-key-1", r.URL.Query().Get("apiKey"))
		switch r.URL.Path {
		case "/sports/soccer_epl/scores":
			assert.Equal(t, "3", r.URL.Query().Get("daysFrom"))
			_, _ = w.Write([]byte(scoresPayload))
		case "/sports/soccer_epl/events":
			assert.Equal(t, "2024-03-02T16:00:00Z", r.URL.Query().Get("commenceTimeFrom"))
			_, _ = w.Write([]byte(eventsPayload))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	from := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	items, err := newTestClient(t, server).FetchRange(context.Background(), epl, from, fixedNow.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, items, 3)

	byID := make(map[string]int, len(items))
	for idx, item := range items {
		byID[item.ExternalID] = idx
		assert.False(t, item.ReliableKickoff)
		assert.Equal(t, "Premier League", item.LeagueName)
	}

	done := items[byID["odds:done1"]]
	assert.Equal(t, match.StatusFinished, done.Status)
	assert.Equal(t, 2, *done.HomeScore)
	assert.Equal(t, 3, *done.AwayScore)

	live := items[byID["odds:live1"]]
	assert.Equal(t, match.StatusLive, live.Status)
	assert.Equal(t, 1, *live.HomeScore)

	next := items[byID["odds:next1"]]
	assert.Equal(t, match.StatusScheduled, next.Status)
	assert.False(t, next.HasScore())
}

func TestClient_PastRangeSkipsEvents(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/soccer_epl/scores" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		assert.Equal(t, "1", r.URL.Query().Get("daysFrom"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).FetchRange(context.Background(), epl, fixedNow.Add(-2*time.Hour), fixedNow)
	require.NoError(t, err)
}

func TestClient_OutOfCreditsRotatesKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") == "spent" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Usage quota has been reached.","error_code":"OUT_OF_USAGE_CREDITS"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server,
		keypool.Credential{ID: "odds-spent", Key: "spent", DailyLimit: 500},
		keypool.Credential{ID: "odds-fresh", Key: "fresh", DailyLimit: 400},
	)
	_, err := client.FetchRange(context.Background(), epl, fixedNow.Add(-time.Hour), fixedNow)
	require.NoError(t, err)

	status, err := client.pool.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, status[0].Remaining)
	assert.Equal(t, 399, status[1].Remaining)
}

func TestClient_ErrorsNeverLeakKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"bad request for ` + r.URL.RawQuery + `"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).FetchRange(context.Background(), epl, fixedNow.Add(-time.Hour), fixedNow)
	require.Error(t, err)
	assert.True(t, crerr.Is(err, keypool.ErrProvidersExhausted))
	assert.False(t, strings.Contains(crerr.FlattenDetails(err)+err.Error(), "odds-key-1"))
}

func TestClient_Properties(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := newTestClient(t, server)
	assert.False(t, client.CreatesTeams())
	assert.True(t, client.Paid())
	assert.True(t, client.Supports(epl))
	assert.False(t, client.Supports(catalog.League{Name: "X", Country: "Y", Division: "Z"}))
}
