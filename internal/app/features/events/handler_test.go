package events_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	eventsfeature "github.com/dalemusser/schedhub/internal/app/features/events"
	"github.com/dalemusser/schedhub/internal/app/roster"
	availabilitystore "github.com/dalemusser/schedhub/internal/app/store/availability"
	eventstore "github.com/dalemusser/schedhub/internal/app/store/events"
	signupstore "github.com/dalemusser/schedhub/internal/app/store/signups"
	"github.com/dalemusser/schedhub/internal/app/system/ratelimit"
	"github.com/dalemusser/schedhub/internal/testutil"
)

const testDefaultLimit = 5

func newRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	signups := signupstore.New(db)
	h := eventsfeature.NewHandler(
		eventstore.New(db),
		availabilitystore.New(db),
		signups,
		roster.New(signups, 5*time.Second, zap.NewNop()),
		testDefaultLimit,
		zap.NewNop(),
	)
	// Rate limit high enough to stay out of the way; TestJoin_RateLimited
	// builds its own router with a tight limit.
	return eventsfeature.Routes(h, ratelimit.New(1000, time.Minute)), testutil.NewFixtures(t, db)
}

type eventView struct {
	ID              string   `json:"id"`
	ScopeID         string   `json:"scope_id"`
	Title           string   `json:"title"`
	Status          string   `json:"status"`
	Date            *string  `json:"date"`
	ShareCode       string   `json:"share_code"`
	MinParticipants int      `json:"min_participants"`
	RequiredMembers []string `json:"required_members"`
}

func createEvent(t *testing.T, router http.Handler, body map[string]any) eventView {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/", body)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var ev eventView
	rec.DecodeJSON(t, &ev)
	return ev
}

func defaultEventBody() map[string]any {
	return map[string]any{
		"scope_id":         "scope-1",
		"title":            "Game Night",
		"description":      "Bring snacks",
		"min_participants": 2,
		"created_by":       "alice",
	}
}

func TestCreateAndGet(t *testing.T) {
	router, _ := newRouter(t)

	ev := createEvent(t, router, defaultEventBody())
	if ev.Status != "planning" {
		t.Errorf("status: got %q, want %q", ev.Status, "planning")
	}
	if ev.ShareCode == "" {
		t.Error("share code missing")
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/"+ev.ID))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/share/"+ev.ShareCode))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/ffffffffffffffffffffffff"))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/not-an-id"))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestCreate_BadInput(t *testing.T) {
	router, _ := newRouter(t)

	cases := []struct {
		name  string
		patch func(map[string]any)
	}{
		{"missing scope", func(b map[string]any) { b["scope_id"] = "" }},
		{"missing title", func(b map[string]any) { b["title"] = "  " }},
		{"zero min participants", func(b map[string]any) { b["min_participants"] = 0 }},
		{"zero max participants", func(b map[string]any) { b["max_participants"] = 0 }},
		{"missing creator", func(b map[string]any) { b["created_by"] = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := defaultEventBody()
			tc.patch(body)
			req := testutil.NewJSONRequest(t, "POST", "/", body)
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestCandidates(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// June 1st 2024 is a Saturday. Alice and Bob both make it; only Alice
	// makes the 2nd, which min_participants=2 filters out.
	fx.SubmitAvailability(ctx, "scope-1", "alice", "2024-06-01", "2024-06-02")
	fx.SubmitAvailability(ctx, "scope-1", "bob", "2024-06-01")

	ev := createEvent(t, router, defaultEventBody())

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET",
		fmt.Sprintf("/%s/candidates?start=2024-06-01&end=2024-06-07", ev.ID)))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Limit      int `json:"limit"`
		Candidates []struct {
			Date    string   `json:"date"`
			Count   int      `json:"count"`
			Members []string `json:"members"`
			Tags    []string `json:"tags"`
		} `json:"candidates"`
	}
	rec.DecodeJSON(t, &resp)

	if resp.Limit != testDefaultLimit {
		t.Errorf("limit: got %d, want config default %d", resp.Limit, testDefaultLimit)
	}
	if len(resp.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1: %v", len(resp.Candidates), resp.Candidates)
	}
	c := resp.Candidates[0]
	if c.Date != "2024-06-01" || c.Count != 2 {
		t.Errorf("got %+v, want 2024-06-01 with count 2", c)
	}
	hasWeekend := false
	for _, tag := range c.Tags {
		if tag == "weekend" {
			hasWeekend = true
		}
	}
	if !hasWeekend {
		t.Errorf("Saturday candidate should carry the weekend tag, got %v", c.Tags)
	}
}

func TestCandidates_QueryValidation(t *testing.T) {
	router, _ := newRouter(t)
	ev := createEvent(t, router, defaultEventBody())

	cases := []struct {
		name  string
		query string
	}{
		{"missing start", "end=2024-06-07"},
		{"bad end", "start=2024-06-01&end=soon"},
		{"end before start", "start=2024-06-07&end=2024-06-01"},
		{"zero limit", "start=2024-06-01&end=2024-06-07&limit=0"},
		{"negative limit", "start=2024-06-01&end=2024-06-07&limit=-3"},
		{"weekday out of range", "start=2024-06-01&end=2024-06-07&weekdays=7"},
		{"weekday not a number", "start=2024-06-01&end=2024-06-07&weekdays=sat"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewRequest("GET",
				fmt.Sprintf("/%s/candidates?%s", ev.ID, tc.query)))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestCandidates_WeekdayFilterAndLimit(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Saturday the 1st, Monday the 3rd, Tuesday the 4th; two members each.
	for _, date := range []string{"2024-06-01", "2024-06-03", "2024-06-04"} {
		fx.SubmitAvailability(ctx, "scope-1", "alice", date)
		fx.SubmitAvailability(ctx, "scope-1", "bob", date)
	}
	ev := createEvent(t, router, defaultEventBody())

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET",
		fmt.Sprintf("/%s/candidates?start=2024-06-01&end=2024-06-07&weekdays=1,2&limit=1", ev.ID)))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Candidates []struct {
			Date string `json:"date"`
		} `json:"candidates"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (limit): %v", len(resp.Candidates), resp.Candidates)
	}
	// Equal counts fall back to date ascending, so Monday wins.
	if resp.Candidates[0].Date != "2024-06-03" {
		t.Errorf("got %q, want 2024-06-03", resp.Candidates[0].Date)
	}
}

func TestConfirm_OneShot(t *testing.T) {
	router, _ := newRouter(t)
	ev := createEvent(t, router, defaultEventBody())

	req := testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/confirm", map[string]string{"date": "2024-06-01"})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	req = testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/confirm", map[string]string{"date": "2024-06-08"})
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusConflict)

	req = testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/confirm", map[string]string{"date": "whenever"})
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestJoinCancelPromoteFlow(t *testing.T) {
	router, _ := newRouter(t)

	body := defaultEventBody()
	body["max_participants"] = 1
	ev := createEvent(t, router, body)

	join := func(user string) *testutil.ResponseRecorder {
		t.Helper()
		req := testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/join", map[string]string{"user_id": user})
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := join("alice")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"outcome":"confirmed"`)

	rec = join("bob")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"outcome":"waitlisted"`)

	// Joining twice reports the existing state.
	rec = join("alice")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"outcome":"already_confirmed"`)

	// Alice leaves; Bob is promoted into the vacated slot.
	req := testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/cancel", map[string]string{"user_id": "alice"})
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"outcome":"promoted"`)
	rec.AssertContains(t, `"promoted_user_id":"bob"`)

	// Nothing left to cancel for Alice.
	req = testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/cancel", map[string]string{"user_id": "alice"})
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)

	// Roster shows Bob confirmed, nobody waitlisted.
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/"+ev.ID+"/roster"))
	rec.AssertStatus(t, http.StatusOK)

	var rosterResp struct {
		Confirmed []struct {
			UserID string `json:"user_id"`
		} `json:"confirmed"`
		Waitlisted []struct {
			UserID string `json:"user_id"`
		} `json:"waitlisted"`
	}
	rec.DecodeJSON(t, &rosterResp)
	if len(rosterResp.Confirmed) != 1 || rosterResp.Confirmed[0].UserID != "bob" {
		t.Errorf("confirmed: got %v, want [bob]", rosterResp.Confirmed)
	}
	if len(rosterResp.Waitlisted) != 0 {
		t.Errorf("waitlisted: got %v, want empty", rosterResp.Waitlisted)
	}
}

func TestJoin_UnknownEvent(t *testing.T) {
	router, _ := newRouter(t)

	req := testutil.NewJSONRequest(t, "POST", "/ffffffffffffffffffffffff/join", map[string]string{"user_id": "alice"})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestJoin_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	signups := signupstore.New(db)
	h := eventsfeature.NewHandler(
		eventstore.New(db),
		availabilitystore.New(db),
		signups,
		roster.New(signups, 5*time.Second, zap.NewNop()),
		testDefaultLimit,
		zap.NewNop(),
	)
	router := eventsfeature.Routes(h, ratelimit.New(1, time.Minute))
	ev := createEvent(t, router, defaultEventBody())

	req := testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/join", map[string]string{"user_id": "alice"})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	req = testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/join", map[string]string{"user_id": "bob"})
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, `"retryable":true`)
}

func TestDelete_RemovesSignups(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := createEvent(t, router, defaultEventBody())

	req := testutil.NewJSONRequest(t, "POST", "/"+ev.ID+"/join", map[string]string{"user_id": "alice"})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", "/"+ev.ID))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"signups_removed":1`)

	n, err := fx.DB().Collection("signups").CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count signups: %v", err)
	}
	if n != 0 {
		t.Errorf("signups remaining after event delete: %d", n)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", "/"+ev.ID))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestListByScope(t *testing.T) {
	router, _ := newRouter(t)

	createEvent(t, router, defaultEventBody())
	other := defaultEventBody()
	other["scope_id"] = "scope-2"
	createEvent(t, router, other)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/?scope=scope-1"))
	rec.AssertStatus(t, http.StatusOK)

	var list []eventView
	rec.DecodeJSON(t, &list)
	if len(list) != 1 {
		t.Errorf("got %d events for scope-1, want 1", len(list))
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusBadRequest)
}
