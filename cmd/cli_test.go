package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overviewFixture = `{
	"personal_records": [
		{
			"records": [
				{"slug": 20, "value": 240, "raw_value": 240.5, "workout_date": "2023-04-01T10:30:00Z"},
				{"slug": 5, "value": 80, "raw_value": 80.0, "workout_date": "2023-03-12"}
			]
		}
	],
	"streaks": {
		"start_date_of_current_weekly": 1700000000,
		"start_date_of_current_daily": 1700086400
	},
	"achievement_counts": {
		"achievements": [
			{"template": {"name": "First Ride"}, "count": 3}
		]
	},
	"workout_counts": {
		"workouts": [
			{"name": "Cycling", "count": 120}
		]
	}
}`

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newAPIServer(t *testing.T, overview string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"u-1","session_id":"s-1"}`))
	})
	mux.HandleFunc("GET /api/user/u-1/overview", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "web", r.Header.Get("Peloton-Platform"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(overview))
	})
	mux.HandleFunc("GET /api/user/u-1/workouts", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page_count":2,"data":[{"id":"w-` + page + `"}]}`))
	})
	mux.HandleFunc("GET /api/workout/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"w-1","status":"COMPLETE"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("PDE_API_BASE_URL", server.URL)

	return server
}

func loginForTest(t *testing.T, home string) {
	t.Helper()

	stdout, _, err := executeCLI(t, home, "login", "--username", "rider@example.com", "--password", "hunter2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as user u-1")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func TestLoginStoresSession(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)

	loginForTest(t, home)

	_, err := os.Stat(filepath.Join(home, ".pde", "session.toml"))
	require.NoError(t, err)
}

func TestLoginWithoutAnyCredentialsFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PELOTON_USER_NAME", "")
	t.Setenv("PELOTON_PASSWORD", "")

	_, _, err := executeCLI(t, home, "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username and password are required")
}

func TestLoginReadsCredentialsFromEnvironment(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)
	t.Setenv("PELOTON_USER_NAME", "rider@example.com")
	t.Setenv("PELOTON_PASSWORD", "hunter2")

	stdout, _, err := executeCLI(t, home, "login")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as user u-1")
}

func TestOverviewRendersExtractTables(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)
	loginForTest(t, home)

	stdout, stderr, err := executeCLI(t, home, "overview")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Personal Records")
	assert.Contains(t, stdout, "Streaks")
	assert.Contains(t, stdout, "Achievements")
	assert.Contains(t, stdout, "Workout Counts")
	assert.Contains(t, stdout, "First Ride")
	assert.Empty(t, stderr)
}

func TestOverviewJSONEmitsRawDocument(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)
	loginForTest(t, home)

	stdout, _, err := executeCLI(t, home, "overview", "--json")
	require.NoError(t, err)

	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "personal_records")
}

func TestOverviewMissingSectionWarnsAndRendersEmptyTables(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, `{
		"personal_records": [{"records": [{"slug": 1, "value": 2, "raw_value": 2.0, "workout_date": "2023-01-01"}]}],
		"achievement_counts": {"achievements": [{"template": {"name": "First Ride"}, "count": 3}]},
		"workout_counts": {"workouts": []}
	}`)
	loginForTest(t, home)

	stdout, stderr, err := executeCLI(t, home, "overview")
	require.NoError(t, err)

	assert.Contains(t, stderr, "warning")
	assert.Contains(t, stderr, "streaks")
	assert.Equal(t, 4, bytes.Count([]byte(stdout), []byte("no rows")))
}

func TestOverviewWithoutLoginFails(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)

	_, _, err := executeCLI(t, home, "overview")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pde login")
}

func TestWorkoutsJSONFetchesAllPages(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)
	loginForTest(t, home)

	stdout, _, err := executeCLI(t, home, "workouts", "--json")
	require.NoError(t, err)

	var workouts []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &workouts))
	require.Len(t, workouts, 2)
	assert.Equal(t, "w-0", workouts[0]["id"])
	assert.Equal(t, "w-1", workouts[1]["id"])
}

func TestWorkoutsWritesJSONFile(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)
	loginForTest(t, home)

	outPath := filepath.Join(home, "workouts.json")
	stdout, _, err := executeCLI(t, home, "workouts", "--json", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 2 workouts")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestWorkoutDetailPrintsDocument(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)
	loginForTest(t, home)

	stdout, _, err := executeCLI(t, home, "workout", "w-1")
	require.NoError(t, err)

	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "COMPLETE")
}

func TestExportCSVWritesOneFilePerExtract(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)
	loginForTest(t, home)

	outDir := filepath.Join(home, "export")
	stdout, _, err := executeCLI(t, home, "export", "--format", "csv", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 2 personal records")

	for _, name := range []string{"personal_records", "streaks", "achievements", "workout_counts"} {
		_, err := os.Stat(filepath.Join(outDir, name+".csv"))
		require.NoError(t, err, name)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)

	_, _, err := executeCLI(t, home, "export", "--format", "parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestLogoutForgetsSession(t *testing.T) {
	home := t.TempDir()
	newAPIServer(t, overviewFixture)
	loginForTest(t, home)

	stdout, _, err := executeCLI(t, home, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged out")

	_, _, err = executeCLI(t, home, "overview")
	require.Error(t, err)
}
