package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresTokenForLaterCalls(t *testing.T) {
	var sawAuthHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "r@x.com", body["email"])
			json.NewEncoder(w).Encode(AuthResult{
				User:         User{ID: 1, Name: "Ramesh"},
				Token:        "tok-123",
				RefreshToken: "ref-456",
			})
		case "/api/problems":
			sawAuthHeader = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(map[string]interface{}{"problems": []Problem{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.Login(context.Background(), "r@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", result.Token)

	_, err = client.GetAllProblems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", sawAuthHeader)
}

func TestGetUserProblemsParsesStringCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("userId"))
		w.Write([]byte(`{"problems":[
			{"id":"a","latitude":"26.45","longitude":"80.33","status":"not completed"},
			{"id":"b","latitude":26.5,"longitude":80.3,"status":"completed"},
			{"id":"c","latitude":null,"longitude":"","status":"in-progress"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	problems, err := client.GetUserProblems(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, problems, 3)

	assert.InDelta(t, 26.45, float64(problems[0].Latitude), 1e-9)
	assert.InDelta(t, 80.33, float64(problems[0].Longitude), 1e-9)
	assert.InDelta(t, 26.5, float64(problems[1].Latitude), 1e-9)
	assert.Zero(t, float64(problems[2].Latitude))
	assert.Zero(t, float64(problems[2].Longitude))
}

func TestSubmitProblemSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var payload SubmitPayload
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("payload")), &payload))
		assert.Equal(t, "pipe burst", payload.OthersText)
		assert.Equal(t, "high", payload.Priority)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "leak.jpg", header.Filename)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]Problem{"problem": {ID: "created-id", Status: "not completed"}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	problem, err := client.SubmitProblem(context.Background(), SubmitPayload{
		OthersText: "pipe burst",
		Priority:   "high",
	}, "leak.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "created-id", problem.ID)
}

func TestUpdateProblemPatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/problems/p1", r.URL.Path)

		var update ProblemUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
		assert.Equal(t, "in-progress", update.Status)

		json.NewEncoder(w).Encode(map[string]Problem{"problem": {ID: "p1", Status: update.Status}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	problem, err := client.UpdateProblem(context.Background(), "p1", ProblemUpdate{Status: "in-progress"})
	require.NoError(t, err)
	assert.Equal(t, "in-progress", problem.Status)
}

func TestBackendErrorSurfacesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"staff account required"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.AdminLogin(context.Background(), "c@x.com", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "staff account required")
}

func TestLogoutClearsTokensEvenWhenServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AuthResult{Token: "tok", RefreshToken: "ref"})
	}))

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), "r@x.com", "pw")
	require.NoError(t, err)

	server.Close() // backend goes away

	_ = client.Logout(context.Background())
	assert.Empty(t, client.bearer(), "tokens cleared regardless of the network outcome")
}

func TestFlexFloatUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{`26.45`, 26.45, true},
		{`"26.45"`, 26.45, true},
		{`null`, 0, true},
		{`""`, 0, true},
		{`"not-a-number"`, 0, false},
	}

	for _, tc := range cases {
		var f FlexFloat
		err := json.Unmarshal([]byte(tc.in), &f)
		if tc.ok {
			require.NoError(t, err, "input %s", tc.in)
			assert.InDelta(t, tc.want, float64(f), 1e-9, "input %s", tc.in)
		} else {
			assert.Error(t, err, "input %s", tc.in)
		}
	}
}
