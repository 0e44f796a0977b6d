package core

import (
	"context"
	"errors"
	"testing"

	"github.com/illarion/chatvault/internal/vault"
)

func TestTheme(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")

	theme, err := app.Theme()
	if err != nil || theme != DefaultTheme {
		t.Errorf("Expected default theme, got %q, %v", theme, err)
	}

	if err := app.SetTheme("purple"); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	if theme, _ := app.Theme(); theme != "purple" {
		t.Errorf("Theme not stored: %s", theme)
	}

	if err := app.SetTheme("neon"); !errors.Is(err, ErrInvalidTheme) {
		t.Errorf("Expected ErrInvalidTheme, got %v", err)
	}

	// Stored in clear
	if raw, _, _ := app.db.Get(ThemeKey); raw != "purple" {
		t.Errorf("Theme should be plain text, got %q", raw)
	}
}

func TestReset(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")
	api := seed(t, app)
	if _, err := app.SelectModel(api.ID, "gpt-4"); err != nil {
		t.Fatal(err)
	}
	if err := app.db.Set(LegacyAPIsKey, "[]"); err != nil {
		t.Fatal(err)
	}

	if err := app.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	for _, name := range []string{APIsKey, ConversationsKey, LegacyAPIsKey, SessionKey, SelectedModelKey, vault.KeyName} {
		if _, found, _ := app.db.Get(name); found {
			t.Errorf("%s should be removed", name)
		}
	}
	if app.vault.State() != vault.Uninitialized {
		t.Error("Key state should be uninitialized after reset")
	}

	// Theme survives
	if theme, _ := app.Theme(); theme != "dark" {
		t.Errorf("Theme should survive reset, got %s", theme)
	}

	apis, err := app.APIs()
	if err != nil || len(apis) != 0 {
		t.Errorf("Expected no APIs after reset: %+v, %v", apis, err)
	}

	// The store is usable again with a fresh key
	if _, err := app.AddAPI(context.Background(), NewAPI{Name: "New", Key: routerKey}); err != nil {
		t.Fatalf("AddAPI after reset failed: %v", err)
	}
	if app.vault.State() != vault.Initialized {
		t.Error("Key should be recreated on next save")
	}
}

func TestReport(t *testing.T) {
	srv := fakeProvider(t, routerKey)
	app, _ := newTestApp(t, srv.URL)
	ctx := context.Background()

	report, err := app.Report()
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if report.TotalAPIs != 0 || report.LastActivity != nil || len(report.Providers) != 0 {
		t.Errorf("Unexpected empty report: %+v", report)
	}

	good, _ := app.AddAPI(ctx, NewAPI{Name: "Router", Key: routerKey})
	app.AddAPI(ctx, NewAPI{Name: "OpenAI", Key: openAIKey})
	app.AddAPI(ctx, NewAPI{Name: "Router 2", Key: routerKey + "x"})
	if _, err := app.TestConnection(ctx, good.ID); err != nil {
		t.Fatalf("TestConnection failed: %v", err)
	}

	report, err = app.Report()
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if report.TotalAPIs != 3 || report.ActiveAPIs != 1 {
		t.Errorf("Unexpected counts: %+v", report)
	}
	if len(report.Providers) != 2 || report.Providers[0] != "AgentRouter" || report.Providers[1] != "OpenAI" {
		t.Errorf("Unexpected providers: %v", report.Providers)
	}
	if report.LastActivity == nil {
		t.Error("Expected last activity after a successful test")
	}
	if report.CurrentTheme != DefaultTheme {
		t.Errorf("Unexpected theme: %s", report.CurrentTheme)
	}
}

func TestStatus(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")

	status, err := app.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.KeyState != vault.Uninitialized || status.Method != vault.MethodAdvanced {
		t.Errorf("Unexpected fresh status: %+v", status)
	}
	for _, ds := range status.Datasets {
		if ds.State != DatasetAbsent {
			t.Errorf("%s should be absent, got %s", ds.Name, ds.State)
		}
	}
	if app.vault.State() != vault.Uninitialized {
		t.Error("Status must not create a key")
	}

	seed(t, app)
	if err := app.db.Set(LegacyConversationsKey, `[]`); err != nil {
		t.Fatal(err)
	}

	status, err = app.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.KeyState != vault.Initialized || status.APICount != 1 || status.TurnCount != 1 {
		t.Errorf("Unexpected status: %+v", status)
	}
	if status.Entries < 4 {
		t.Errorf("Expected key, datasets and legacy entry, got %d entries", status.Entries)
	}

	states := map[string]string{}
	for _, ds := range status.Datasets {
		states[ds.Name] = ds.State
	}
	if states[APIsKey] != "encrypted (advanced)" {
		t.Errorf("Unexpected APIs state: %s", states[APIsKey])
	}
	if states[LegacyConversationsKey] != DatasetPlaintext {
		t.Errorf("Unexpected legacy state: %s", states[LegacyConversationsKey])
	}
	if status.Theme != "dark" {
		t.Errorf("Unexpected theme: %s", status.Theme)
	}
}

func TestStatusLeavesLegacyDataInPlace(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")
	seed(t, app)

	if err := app.db.Remove(APIsKey); err != nil {
		t.Fatal(err)
	}
	legacy := `[{"id":"legacy-1","name":"Old","key":"sk-legacykeylegacykeylegacy","url":"https://agentrouter.org"}]`
	if err := app.db.Set(LegacyAPIsKey, legacy); err != nil {
		t.Fatal(err)
	}
	before := dump(t, app)

	status, err := app.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.APICount != 1 {
		t.Errorf("Expected the legacy API to be counted, got %d", status.APICount)
	}

	after := dump(t, app)
	if len(after) != len(before) {
		t.Fatalf("Status changed the store: %d entries before, %d after", len(before), len(after))
	}
	for k, v := range before {
		if after[k] != v {
			t.Errorf("Status changed %s", k)
		}
	}
	if _, found, _ := app.db.Get(APIsKey); found {
		t.Error("Status must not migrate legacy data")
	}
}

// dump copies every item of the store
func dump(t *testing.T, app *App) map[string]string {
	t.Helper()
	keys, err := app.db.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	items := make(map[string]string, len(keys))
	for _, k := range keys {
		v, _, err := app.db.Get(k)
		if err != nil {
			t.Fatalf("Get %s failed: %v", k, err)
		}
		items[k] = v
	}
	return items
}

func TestCompact(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")
	seed(t, app)

	if err := app.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	apis, err := app.APIs()
	if err != nil || len(apis) != 1 {
		t.Errorf("Data lost by compaction: %+v, %v", apis, err)
	}
}
