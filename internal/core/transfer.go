package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/illarion/chatvault/internal/security"
)

// ExportVersion tags export files. It matches files written by the browser
// version so both can be imported.
const ExportVersion = "GUI AI BETA v1.0"

// ExportData is the export file layout. API keys are always masked.
type ExportData struct {
	APIs          []API     `json:"apis"`
	Conversations []Turn    `json:"conversations"`
	ExportDate    time.Time `json:"exportDate"`
	Version       string    `json:"version"`
	SessionID     string    `json:"sessionId"`
	Theme         string    `json:"theme"`
}

// ImportResult summarizes what Import replaced
type ImportResult struct {
	APIs          int
	Conversations int
	Theme         string
	// MaskedKeys counts imported APIs left with a masked, unusable key
	MaskedKeys int
	// RestoredKeys counts masked keys replaced by the stored key of the same API
	RestoredKeys int
	// Skipped counts imported APIs rejected by the same checks as AddAPI
	Skipped int
}

type importFile struct {
	APIs          *[]API  `json:"apis"`
	Conversations *[]Turn `json:"conversations"`
	Theme         string  `json:"theme"`
}

// snapshot is the part of the state that export files carry and Diff compares
type snapshot struct {
	APIs          []API  `json:"apis"`
	Conversations []Turn `json:"conversations"`
	Theme         string `json:"theme"`
}

// DefaultExportName is the export file name for the given day
func DefaultExportName(now time.Time) string {
	return fmt.Sprintf("chatvault-export-%s.json", now.Format("2006-01-02"))
}

// Export builds the export document with masked keys
func (a *App) Export() (*ExportData, error) {
	apis, err := a.loadAPIs()
	if err != nil {
		return nil, err
	}
	turns, err := a.loadConversation()
	if err != nil {
		return nil, err
	}
	theme, err := a.Theme()
	if err != nil {
		return nil, err
	}

	return &ExportData{
		APIs:          maskAPIs(apis),
		Conversations: nonNil(turns),
		ExportDate:    time.Now().UTC(),
		Version:       ExportVersion,
		SessionID:     a.sessionID,
		Theme:         theme,
	}, nil
}

// WriteExport writes the export document to path inside the working
// directory and returns the normalized path
func (a *App) WriteExport(path string) (string, error) {
	data, err := a.Export()
	if err != nil {
		return "", err
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}

	normalized, err := a.validator.Normalize(path)
	if err != nil {
		return "", err
	}
	if err := a.validator.WriteFile(normalized, append(out, '\n')); err != nil {
		return "", err
	}
	return normalized, nil
}

// ReadImportFile reads an import file from inside the working directory
func (a *App) ReadImportFile(path string) ([]byte, error) {
	normalized, err := a.validator.Normalize(path)
	if err != nil {
		return nil, err
	}
	return a.validator.ReadFile(normalized)
}

// Import replaces the APIs, the conversation and the theme with those present
// in data. Absent sections are left alone. Masked keys of APIs that already
// exist are restored from the store.
func (a *App) Import(data []byte) (*ImportResult, error) {
	var in importFile
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	apis, err := a.loadAPIs()
	if err != nil {
		return nil, err
	}
	turns, err := a.loadConversation()
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	if in.APIs != nil {
		current := make(map[string]API, len(apis))
		for _, api := range apis {
			current[api.ID] = api
		}

		imported := make([]API, 0, len(*in.APIs))
		for _, api := range *in.APIs {
			if err := a.checkImported(&api); err != nil {
				a.log.Warn().Err(err).Str("id", api.ID).Str("name", api.Name).Msg("Skipping imported API")
				result.Skipped++
				continue
			}
			if api.ID == "" {
				api.ID = uuid.NewString()
			}
			if api.ConnectionStatus == "" {
				api.ConnectionStatus = StatusInactive
			}
			if isMasked(api.Key) {
				if existing, ok := current[api.ID]; ok && !isMasked(existing.Key) {
					api.Key = existing.Key
					result.RestoredKeys++
				} else {
					result.MaskedKeys++
				}
			}
			imported = append(imported, api)
		}
		apis = imported
		result.APIs = len(apis)
	}

	if in.Conversations != nil {
		turns = *in.Conversations
		result.Conversations = len(turns)
	}

	if err := a.save(apis, turns); err != nil {
		return nil, err
	}

	if in.Theme != "" {
		if err := a.SetTheme(in.Theme); err != nil {
			a.log.Warn().Err(err).Str("theme", in.Theme).Msg("Ignoring imported theme")
		} else {
			result.Theme = in.Theme
		}
	}

	if result.MaskedKeys > 0 {
		a.log.Warn().Int("count", result.MaskedKeys).Msg("Imported APIs carry masked keys, re-add them to use them")
	}
	return result, nil
}

// checkImported applies the AddAPI checks to an imported record. A masked
// key cannot be validated and is let through. An empty URL gets the default.
func (a *App) checkImported(api *API) error {
	var err error
	if api.Name, err = a.sanitize("name", api.Name); err != nil {
		return err
	}
	if api.Description, err = a.sanitize("description", api.Description); err != nil {
		return err
	}
	if !isMasked(api.Key) {
		if err := security.ValidateAPIKey(api.Key); err != nil {
			return err
		}
	}

	api.URL = strings.TrimRight(strings.TrimSpace(api.URL), "/")
	if api.URL == "" {
		api.URL = a.defaultURL
	}
	if err := security.ValidateURL(api.URL); err != nil {
		return fmt.Errorf("%w: %s", err, api.URL)
	}
	return nil
}

// Diff compares an export file with the current state as a unified diff of
// their JSON. Keys are masked on both sides. An empty string means no
// differences.
func (a *App) Diff(name string, data []byte) (string, error) {
	var in importFile
	if err := json.Unmarshal(data, &in); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	apis, err := a.loadAPIs()
	if err != nil {
		return "", err
	}
	turns, err := a.loadConversation()
	if err != nil {
		return "", err
	}
	theme, err := a.Theme()
	if err != nil {
		return "", err
	}

	file := snapshot{Theme: in.Theme}
	if in.APIs != nil {
		file.APIs = maskAPIs(*in.APIs)
	}
	if in.Conversations != nil {
		file.Conversations = *in.Conversations
	}
	current := snapshot{APIs: maskAPIs(apis), Conversations: turns, Theme: theme}

	fileJSON, err := marshalSnapshot(file)
	if err != nil {
		return "", err
	}
	currentJSON, err := marshalSnapshot(current)
	if err != nil {
		return "", err
	}

	return GenerateUnifiedDiff(name, a.path, fileJSON, currentJSON), nil
}

func marshalSnapshot(s snapshot) ([]byte, error) {
	s.APIs = nonNil(s.APIs)
	s.Conversations = nonNil(s.Conversations)
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return append(out, '\n'), nil
}

func maskAPIs(apis []API) []API {
	masked := make([]API, len(apis))
	for i, api := range apis {
		if !isMasked(api.Key) {
			api.Key = security.Mask(api.Key)
		}
		masked[i] = api
	}
	return masked
}

func isMasked(key string) bool {
	return strings.Contains(key, "*")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
