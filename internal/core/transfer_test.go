package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/illarion/chatvault/internal/security"
)

func seed(t *testing.T, app *App) API {
	t.Helper()
	api, err := app.AddAPI(context.Background(), NewAPI{Name: "Work", Key: openAIKey})
	if err != nil {
		t.Fatalf("AddAPI failed: %v", err)
	}
	if err := app.SetTheme("dark"); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	if err := app.saveConversation([]Turn{{User: "hi", AI: "hello", Timestamp: time.Now().UTC(), APIID: api.ID, ModelID: "gpt-4"}}); err != nil {
		t.Fatalf("saveConversation failed: %v", err)
	}
	return api
}

func TestExportMasksKeys(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")
	seed(t, app)

	data, err := app.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if data.Version != ExportVersion || data.Theme != "dark" || data.SessionID != app.SessionID() {
		t.Errorf("Unexpected export header: %+v", data)
	}
	if len(data.APIs) != 1 || data.APIs[0].Key != security.Mask(openAIKey) {
		t.Errorf("Key not masked: %+v", data.APIs)
	}
	if len(data.Conversations) != 1 {
		t.Errorf("Expected 1 turn, got %d", len(data.Conversations))
	}

	// The store keeps the real key
	apis, _ := app.APIs()
	if apis[0].Key != openAIKey {
		t.Error("Export must not change the stored key")
	}
}

func TestWriteExport(t *testing.T) {
	app, dir := newTestApp(t, "https://agentrouter.org")
	seed(t, app)

	path, err := app.WriteExport("backups/export.json")
	if err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}
	if path != "backups/export.json" {
		t.Errorf("Unexpected path: %s", path)
	}

	content, err := os.ReadFile(filepath.Join(dir, "backups", "export.json"))
	if err != nil {
		t.Fatalf("Export file missing: %v", err)
	}
	if strings.Contains(string(content), openAIKey) {
		t.Error("Export file contains the clear key")
	}

	var data ExportData
	if err := json.Unmarshal(content, &data); err != nil {
		t.Fatalf("Export is not JSON: %v", err)
	}

	if _, err := app.WriteExport("../outside.json"); !errors.Is(err, security.ErrPathEscapes) {
		t.Errorf("Expected ErrPathEscapes, got %v", err)
	}
}

func TestImportRoundTrip(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")
	api := seed(t, app)

	path, err := app.WriteExport("export.json")
	if err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}
	data, err := app.ReadImportFile(path)
	if err != nil {
		t.Fatalf("ReadImportFile failed: %v", err)
	}

	if err := app.ClearConversation(); err != nil {
		t.Fatal(err)
	}
	if err := app.SetTheme("blue"); err != nil {
		t.Fatal(err)
	}

	result, err := app.Import(data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.APIs != 1 || result.Conversations != 1 || result.Theme != "dark" {
		t.Errorf("Unexpected result: %+v", result)
	}
	if result.RestoredKeys != 1 || result.MaskedKeys != 0 {
		t.Errorf("Masked key should be restored from the store: %+v", result)
	}

	apis, _ := app.APIs()
	if len(apis) != 1 || apis[0].ID != api.ID || apis[0].Key != openAIKey {
		t.Errorf("Unexpected APIs after import: %+v", apis)
	}
	if theme, _ := app.Theme(); theme != "dark" {
		t.Errorf("Theme not imported: %s", theme)
	}
}

func TestImportPartialAndMasked(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")
	seed(t, app)

	// Only APIs, from another machine
	data := []byte(`{"apis":[{"id":"1700000000000","name":"Elsewhere","key":"sk-a****************wxyz","provider":"openai","providerName":"OpenAI"}]}`)
	result, err := app.Import(data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.MaskedKeys != 1 || result.Conversations != 0 || result.Theme != "" {
		t.Errorf("Unexpected result: %+v", result)
	}

	apis, _ := app.APIs()
	if len(apis) != 1 || apis[0].Name != "Elsewhere" || apis[0].ConnectionStatus != StatusInactive {
		t.Errorf("APIs not replaced: %+v", apis)
	}

	// Conversation and theme left alone
	turns, _ := app.Conversation()
	if len(turns) != 1 {
		t.Errorf("Conversation should be kept, got %d turns", len(turns))
	}
	if theme, _ := app.Theme(); theme != "dark" {
		t.Errorf("Theme should be kept, got %s", theme)
	}
}

func TestImportSkipsInvalidAPIs(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")

	data := []byte(`{"apis":[
		{"id":"bad-url","name":"Script","key":"` + openAIKey + `","url":"javascript:alert(1)"},
		{"id":"bad-key","name":"Short","key":"short","url":"https://api.openai.com"},
		{"id":"bad-name","name":"<script>x</script>","key":"` + routerKey + `"},
		{"id":"good","name":"Router ","key":"` + routerKey + `"}
	]}`)
	result, err := app.Import(data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.APIs != 1 || result.Skipped != 3 {
		t.Errorf("Unexpected result: %+v", result)
	}

	apis, _ := app.APIs()
	if len(apis) != 1 || apis[0].ID != "good" {
		t.Fatalf("Only the valid API should be stored: %+v", apis)
	}
	if apis[0].URL != "https://agentrouter.org" || apis[0].Name != "Router" {
		t.Errorf("Imported API not normalized: %+v", apis[0])
	}
}

func TestImportInvalid(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")

	if _, err := app.Import([]byte("not json")); !errors.Is(err, ErrInvalidImport) {
		t.Errorf("Expected ErrInvalidImport, got %v", err)
	}

	// Unknown theme is ignored
	result, err := app.Import([]byte(`{"theme":"neon"}`))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Theme != "" {
		t.Errorf("Unknown theme should be ignored: %+v", result)
	}
}

func TestDiff(t *testing.T) {
	app, _ := newTestApp(t, "https://agentrouter.org")
	seed(t, app)

	path, err := app.WriteExport("export.json")
	if err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}
	data, err := app.ReadImportFile(path)
	if err != nil {
		t.Fatal(err)
	}

	diff, err := app.Diff(path, data)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if diff != "" {
		t.Errorf("Fresh export should not differ, got:\n%s", diff)
	}

	if err := app.SetTheme("purple"); err != nil {
		t.Fatal(err)
	}
	diff, err = app.Diff(path, data)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if !strings.Contains(diff, `-  "theme": "dark"`) || !strings.Contains(diff, `+  "theme": "purple"`) {
		t.Errorf("Expected theme change in diff, got:\n%s", diff)
	}
	if strings.Contains(diff, openAIKey) {
		t.Error("Diff must not reveal keys")
	}

	if _, err := app.Diff(path, []byte("{")); !errors.Is(err, ErrInvalidImport) {
		t.Errorf("Expected ErrInvalidImport, got %v", err)
	}
}
