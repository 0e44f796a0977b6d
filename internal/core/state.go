package core

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/illarion/chatvault/internal/git"
	"github.com/illarion/chatvault/internal/vault"
)

// Themes are the accepted theme names
var Themes = []string{"light", "dark", "blue", "purple"}

// DefaultTheme is used until a theme is chosen
const DefaultTheme = "light"

// Dataset states reported by Status
const (
	DatasetAbsent     = "absent"
	DatasetPlaintext  = "plaintext"
	DatasetUnreadable = "unreadable"
)

// Report summarizes the stored APIs and conversation
type Report struct {
	TotalAPIs          int        `json:"totalApis"`
	ActiveAPIs         int        `json:"activeApis"`
	Providers          []string   `json:"providers"`
	TotalConversations int        `json:"totalConversations"`
	LastActivity       *time.Time `json:"lastActivity"`
	CurrentTheme       string     `json:"currentTheme"`
	ReportGenerated    time.Time  `json:"reportGenerated"`
}

// DatasetStatus tells how one stored dataset is protected
type DatasetStatus struct {
	Name  string
	State string
}

// StatusInfo contains status information
type StatusInfo struct {
	Path           string
	Created        time.Time
	Modified       time.Time
	KeyState       vault.State
	Method         vault.Method
	WeakKey        bool
	Datasets       []DatasetStatus
	Entries        int
	APICount       int
	TurnCount      int
	Selected       string
	Theme          string
	SecurityEvents int
	GitStatus      *git.Status
}

// Theme returns the current theme
func (a *App) Theme() (string, error) {
	theme, found, err := a.db.Get(ThemeKey)
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	if !found || !slices.Contains(Themes, theme) {
		return DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme stores the theme. It is kept in clear, like the browser did.
func (a *App) SetTheme(theme string) error {
	if !slices.Contains(Themes, theme) {
		return fmt.Errorf("%w: %s", ErrInvalidTheme, theme)
	}
	return a.db.Set(ThemeKey, theme)
}

// Reset removes both datasets, their legacy forms, the session, the
// selection and the key. The theme and the security log survive.
func (a *App) Reset() error {
	err := a.vault.Reset(
		APIsKey,
		ConversationsKey,
		LegacyAPIsKey,
		LegacyConversationsKey,
		SessionKey,
		SelectedModelKey,
	)
	a.limiter.Reset(time.Now())
	return err
}

// Report summarizes the stored state
func (a *App) Report() (*Report, error) {
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

	report := &Report{
		TotalAPIs:          len(apis),
		Providers:          []string{},
		TotalConversations: len(turns),
		CurrentTheme:       theme,
		ReportGenerated:    time.Now().UTC(),
	}

	for _, api := range apis {
		if api.ConnectionStatus == StatusActive {
			report.ActiveAPIs++
		}
		if !slices.Contains(report.Providers, api.ProviderName) {
			report.Providers = append(report.Providers, api.ProviderName)
		}
		if api.LastUsed != nil && (report.LastActivity == nil || api.LastUsed.After(*report.LastActivity)) {
			last := *api.LastUsed
			report.LastActivity = &last
		}
	}
	return report, nil
}

// Status inspects the store without changing it
func (a *App) Status() (*StatusInfo, error) {
	status := &StatusInfo{
		Path:     a.path,
		KeyState: a.vault.State(),
		Method:   a.vault.Method(),
		WeakKey:  a.vault.WeakKey(),
	}

	var err error
	if status.Created, err = a.db.GetCreated(); err != nil {
		// Not critical
		status.Created = time.Time{}
	}
	if status.Modified, err = a.db.GetModified(); err != nil {
		status.Modified = time.Time{}
	}

	for _, name := range []string{APIsKey, ConversationsKey, LegacyAPIsKey, LegacyConversationsKey} {
		state, err := a.datasetState(name)
		if err != nil {
			return nil, err
		}
		status.Datasets = append(status.Datasets, DatasetStatus{Name: name, State: state})
	}

	if keys, err := a.db.Keys(); err == nil {
		status.Entries = len(keys)
	}

	// Loading before a key exists would create one
	if status.KeyState == vault.Initialized {
		var (
			apis  []API
			turns []Turn
		)
		if err := a.peekDataset(APIsKey, LegacyAPIsKey, &apis); err == nil {
			status.APICount = len(apis)
		}
		if err := a.peekDataset(ConversationsKey, LegacyConversationsKey, &turns); err == nil {
			status.TurnCount = len(turns)
		}
	}

	if ref, found, err := a.db.Get(SelectedModelKey); err == nil && found {
		status.Selected = ref
	}
	if status.Theme, err = a.Theme(); err != nil {
		return nil, err
	}
	if events, err := a.events.Events(); err == nil {
		status.SecurityEvents = len(events)
	}

	workDir, storeFile := filepath.Split(a.path)
	if workDir == "" {
		workDir = "."
	}
	if gitStatus := git.CheckStore(workDir, storeFile); gitStatus.IsRepo {
		status.GitStatus = gitStatus
	}

	return status, nil
}

// datasetState classifies one stored dataset without decrypting it
func (a *App) datasetState(name string) (string, error) {
	raw, found, err := a.db.Get(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !found {
		return DatasetAbsent, nil
	}

	blob, err := vault.ParseBlob([]byte(raw))
	if err != nil {
		return DatasetUnreadable, nil
	}
	switch blob.(type) {
	case vault.AdvancedBlob:
		return "encrypted (" + string(vault.MethodAdvanced) + ")", nil
	case vault.SimpleBlob:
		return "encrypted (" + string(vault.MethodSimple) + ")", nil
	default:
		return DatasetPlaintext, nil
	}
}
