package availability_test

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/schedhub/internal/app/features/availability"
	availabilitystore "github.com/dalemusser/schedhub/internal/app/store/availability"
	"github.com/dalemusser/schedhub/internal/testutil"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := availability.NewHandler(availabilitystore.New(db), zap.NewNop())
	return availability.Routes(h)
}

type submitBody struct {
	Start   string        `json:"start"`
	End     string        `json:"end"`
	Answers []answerEntry `json:"answers"`
}

type answerEntry struct {
	UserID string `json:"user_id,omitempty"`
	Date   string `json:"date"`
	State  string `json:"state"`
}

func TestSubmitThenList(t *testing.T) {
	router := newRouter(t)

	req := testutil.NewJSONRequest(t, "PUT", "/scope-1/alice", submitBody{
		Start: "2024-06-01",
		End:   "2024-06-07",
		Answers: []answerEntry{
			{Date: "2024-06-01", State: "available"},
			{Date: "2024-06-02", State: "unavailable"},
			{Date: "2024-06-03", State: "available"},
		},
	})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/scope-1?start=2024-06-01&end=2024-06-07"))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Answers []answerEntry `json:"answers"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.Answers) != 2 {
		t.Fatalf("got %d available answers, want 2: %v", len(resp.Answers), resp.Answers)
	}
	for _, a := range resp.Answers {
		if a.State != "available" {
			t.Errorf("list without user filter should only return available answers, got %+v", a)
		}
	}
}

func TestSubmit_ReplacesPreviousPeriod(t *testing.T) {
	router := newRouter(t)

	submit := func(answers []answerEntry) {
		t.Helper()
		req := testutil.NewJSONRequest(t, "PUT", "/scope-1/alice", submitBody{
			Start: "2024-06-01", End: "2024-06-07", Answers: answers,
		})
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusOK)
	}

	submit([]answerEntry{{Date: "2024-06-01", State: "available"}})
	submit([]answerEntry{{Date: "2024-06-02", State: "available"}})

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/scope-1?start=2024-06-01&end=2024-06-07"))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Answers []answerEntry `json:"answers"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.Answers) != 1 || resp.Answers[0].Date != "2024-06-02" {
		t.Errorf("resubmission should replace the period, got %v", resp.Answers)
	}
}

func TestSubmit_BadInput(t *testing.T) {
	router := newRouter(t)

	cases := []struct {
		name string
		body submitBody
	}{
		{"bad start", submitBody{Start: "yesterday", End: "2024-06-07"}},
		{"end before start", submitBody{Start: "2024-06-07", End: "2024-06-01"}},
		{"answer outside period", submitBody{
			Start: "2024-06-01", End: "2024-06-07",
			Answers: []answerEntry{{Date: "2024-07-01", State: "available"}},
		}},
		{"bad state", submitBody{
			Start: "2024-06-01", End: "2024-06-07",
			Answers: []answerEntry{{Date: "2024-06-03", State: "maybe"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "PUT", "/scope-1/alice", tc.body)
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestList_UserFilter(t *testing.T) {
	router := newRouter(t)

	req := testutil.NewJSONRequest(t, "PUT", "/scope-1/alice", submitBody{
		Start: "2024-06-01", End: "2024-06-07",
		Answers: []answerEntry{
			{Date: "2024-06-01", State: "available"},
			{Date: "2024-06-02", State: "unavailable"},
		},
	})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/scope-1?start=2024-06-01&end=2024-06-07&user=alice"))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Answers []answerEntry `json:"answers"`
	}
	rec.DecodeJSON(t, &resp)
	// The per-user view includes unavailable answers too.
	if len(resp.Answers) != 2 {
		t.Errorf("got %d answers, want 2: %v", len(resp.Answers), resp.Answers)
	}
}

func TestList_MissingRange(t *testing.T) {
	router := newRouter(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/scope-1"))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestPurge(t *testing.T) {
	router := newRouter(t)

	req := testutil.NewJSONRequest(t, "PUT", "/scope-1/alice", submitBody{
		Start: "2024-06-01", End: "2024-06-07",
		Answers: []answerEntry{{Date: "2024-06-01", State: "available"}},
	})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", "/scope-1"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"deleted":1`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/scope-1?start=2024-06-01&end=2024-06-07"))
	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Answers []answerEntry `json:"answers"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.Answers) != 0 {
		t.Errorf("expected no answers after purge, got %v", resp.Answers)
	}
}
