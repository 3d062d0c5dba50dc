package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	sampleFixture = "../../testdata/fixtures/sample.html"
	noListFixture = "../../testdata/fixtures/no_event_list.html"
)

// runCmd executes the root command and returns stdout, stderr and the error
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type dayJSON struct {
	Date   string                    `json:"date"`
	Events []map[string]interface{} `json:"events"`
}

func TestRun_FixtureJSON(t *testing.T) {
	stdout, _, err := runCmd(t, "--fixture", sampleFixture)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if !strings.Contains(stdout, "\n    {\n        \"date\"") {
		t.Errorf("JSON output should be indented with 4 spaces:\n%s", stdout)
	}

	var days []dayJSON
	if err := json.Unmarshal([]byte(stdout), &days); err != nil {
		t.Fatalf("output is not a JSON array of days: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	if days[0].Date != "Friday, October 16" {
		t.Errorf("first day = %q", days[0].Date)
	}

	jazz := days[0].Events[0]
	if jazz["name"] != "Jazz Night" || jazz["time"] != "7:30 PM" || jazz["price"] != "$10" {
		t.Errorf("first event = %v", jazz)
	}

	market := days[1].Events[0]
	if v, ok := market["time"]; !ok || v != nil {
		t.Errorf("unparseable range time = %v, want null", v)
	}
}

func TestRun_StructuralError(t *testing.T) {
	stdout, _, err := runCmd(t, "--fixture", noListFixture)
	if !errors.Is(err, ErrStructure) {
		t.Fatalf("Execute() error = %v, want ErrStructure", err)
	}

	var out []map[string]string
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if len(out) != 1 || out[0]["error"] != "Event list not found" {
		t.Errorf("output = %v", out)
	}
}

func TestRun_FetchText(t *testing.T) {
	page, err := os.ReadFile(sampleFixture)
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(page)
	}))
	defer server.Close()

	stdout, _, err := runCmd(t, "--url", server.URL, "--format", "text")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	for _, want := range []string{"Friday, October 16 (3 events):", "Jazz Night", "No Name", "Total: 6 events across 3 days"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("text output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRun_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	stdout, _, err := runCmd(t, "--url", server.URL)
	if err == nil || !strings.Contains(err.Error(), "unexpected status code: 503") {
		t.Fatalf("Execute() error = %v, want status error", err)
	}
	if stdout != "" {
		t.Errorf("nothing should be written on fetch failure, got %q", stdout)
	}
}

func TestRun_NewOnly(t *testing.T) {
	dataDir := t.TempDir()

	first, _, err := runCmd(t, "--fixture", sampleFixture, "--new-only", "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	var firstDays []dayJSON
	if err := json.Unmarshal([]byte(first), &firstDays); err != nil {
		t.Fatal(err)
	}
	// The day without events has nothing new to report
	if len(firstDays) != 2 {
		t.Errorf("first run reported %d days, want 2", len(firstDays))
	}

	if _, err := os.Stat(filepath.Join(dataDir, "snapshot_fixture.json")); err != nil {
		t.Errorf("snapshot not saved: %v", err)
	}

	second, _, err := runCmd(t, "--fixture", sampleFixture, "--new-only", "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if strings.TrimSpace(second) != "[]" {
		t.Errorf("second run = %q, want []", second)
	}
}

// saveJSON runs the fixture once and writes its JSON output to a file
func saveJSON(t *testing.T, fixture string) string {
	t.Helper()
	stdout, _, err := runCmd(t, "--fixture", fixture)
	if err != nil && !errors.Is(err, ErrStructure) {
		t.Fatalf("Execute() error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(stdout), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_InputText(t *testing.T) {
	path := saveJSON(t, sampleFixture)

	stdout, _, err := runCmd(t, "--input", path, "--format", "text", "--sort", "name")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, want := range []string{"Saturday, October 17 (3 events):", "Trivia at the Wharf", "Total: 6 events across 3 days"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("text output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Index(stdout, "Gallery Walk") > strings.Index(stdout, "No Name") {
		t.Errorf("--sort name not applied to input:\n%s", stdout)
	}
}

func TestRun_InputJSONUnchanged(t *testing.T) {
	path := saveJSON(t, sampleFixture)
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCmd(t, "--input", path)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if stdout != string(saved) {
		t.Errorf("re-rendered JSON differs from saved result:\n%s\nwant:\n%s", stdout, saved)
	}
}

func TestRun_InputErrorDescriptor(t *testing.T) {
	path := saveJSON(t, noListFixture)

	stdout, _, err := runCmd(t, "--input", path)
	if !errors.Is(err, ErrStructure) {
		t.Fatalf("Execute() error = %v, want ErrStructure", err)
	}
	if !strings.Contains(stdout, `"error": "Event list not found"`) {
		t.Errorf("error descriptor not re-rendered:\n%s", stdout)
	}
}

func TestRun_InputNewOnly(t *testing.T) {
	path := saveJSON(t, sampleFixture)
	dataDir := t.TempDir()

	first, _, err := runCmd(t, "--input", path, "--new-only", "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	var days []dayJSON
	if err := json.Unmarshal([]byte(first), &days); err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Errorf("first run reported %d days, want 2", len(days))
	}
	if _, err := os.Stat(filepath.Join(dataDir, "snapshot_input.json")); err != nil {
		t.Errorf("snapshot not saved: %v", err)
	}

	second, _, err := runCmd(t, "--input", path, "--new-only", "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if strings.TrimSpace(second) != "[]" {
		t.Errorf("second run = %q, want []", second)
	}
}

func TestRun_InputMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(`{"date": "Friday"}`), 0600); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCmd(t, "--input", path)
	if err == nil || !strings.Contains(err.Error(), "parsing input") {
		t.Errorf("Execute() error = %v, want parsing input error", err)
	}
}

func TestRun_SortByName(t *testing.T) {
	stdout, _, err := runCmd(t, "--fixture", sampleFixture, "--sort", "name")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	var days []dayJSON
	if err := json.Unmarshal([]byte(stdout), &days); err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, evt := range days[1].Events {
		names = append(names, evt["name"].(string))
	}
	want := []string{"Dupont Farmers Market", "Gallery Walk", "No Name"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestRun_ICS(t *testing.T) {
	stdout, _, err := runCmd(t, "--fixture", sampleFixture, "--format", "ics", "--timezone", "UTC")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(stdout, "BEGIN:VCALENDAR") {
		t.Errorf("ics output should start with BEGIN:VCALENDAR:\n%s", stdout)
	}
	if strings.Count(stdout, "BEGIN:VEVENT") != 6 {
		t.Errorf("expected 6 events, got %d", strings.Count(stdout, "BEGIN:VEVENT"))
	}
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("format: text\nlog_level: error\n"), 0600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCmd(t, "--config", path, "--fixture", sampleFixture)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(stdout, "Total: 6 events") {
		t.Errorf("config format not applied:\n%s", stdout)
	}

	// Flags win over the file
	stdout, _, err = runCmd(t, "--config", path, "--fixture", sampleFixture, "--format", "json")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(stdout, "[") {
		t.Errorf("--format json should override config:\n%s", stdout)
	}
}

func TestRun_VerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := runCmd(t, "--fixture", sampleFixture, "--verbose")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(stderr, `"message":"Extracted events"`) {
		t.Errorf("verbose logs missing from stderr:\n%s", stderr)
	}
	if strings.Contains(stdout, "Extracted events") {
		t.Error("logs should not be written to stdout")
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad format", []string{"--fixture", sampleFixture, "--format", "xml"}, "invalid format"},
		{"bad sort", []string{"--fixture", sampleFixture, "--sort", "price"}, "invalid sort"},
		{"bad url", []string{"--url", "not a url"}, "invalid url"},
		{"test and fixture", []string{"--test", "--fixture", sampleFixture}, "none of the others can be"},
		{"fixture and input", []string{"--fixture", sampleFixture, "--input", "events.json"}, "none of the others can be"},
		{"missing input", []string{"--input", "does-not-exist.json"}, "reading input"},
		{"missing fixture", []string{"--fixture", "does-not-exist.html"}, "reading fixture"},
		{"bad timezone", []string{"--fixture", sampleFixture, "--format", "ics", "--timezone", "Mars/Olympus"}, "loading time zone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCmd(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Execute() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
