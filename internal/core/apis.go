package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/illarion/chatvault/internal/crypto"
	"github.com/illarion/chatvault/internal/provider"
	"github.com/illarion/chatvault/internal/security"
)

// NewAPI is user input for AddAPI
type NewAPI struct {
	Name        string
	Key         string
	URL         string
	Description string
}

// ModelChoice is a model offered through one registered API
type ModelChoice struct {
	APIID        string
	APIName      string
	ProviderName string
	Model        provider.Model
}

// Ref is the "apiID:modelID" form stored as the current selection
func (m ModelChoice) Ref() string {
	return m.APIID + ":" + m.Model.ID
}

// TestResult is the outcome of testing one API
type TestResult struct {
	API API
	Err error
}

// AddAPI validates and registers a credential
func (a *App) AddAPI(ctx context.Context, in NewAPI) (API, error) {
	if err := ctx.Err(); err != nil {
		return API{}, err
	}
	if err := a.allow("add"); err != nil {
		return API{}, err
	}

	name, err := a.sanitize("name", in.Name)
	if err != nil {
		return API{}, err
	}
	description, err := a.sanitize("description", in.Description)
	if err != nil {
		return API{}, err
	}

	key := strings.TrimSpace(in.Key)
	if err := security.ValidateAPIKey(key); err != nil {
		if errors.Is(err, security.ErrSuspiciousInput) {
			a.record(security.EventSuspiciousAPIKey, map[string]any{"key": security.Mask(key)})
		}
		return API{}, err
	}

	url := strings.TrimRight(strings.TrimSpace(in.URL), "/")
	if url == "" {
		url = a.defaultURL
	}
	if err := security.ValidateURL(url); err != nil {
		return API{}, fmt.Errorf("%w: %s", err, url)
	}

	apis, err := a.loadAPIs()
	if err != nil {
		return API{}, err
	}
	for _, existing := range apis {
		if crypto.ConstantTimeCompare([]byte(existing.Key), []byte(key)) {
			return API{}, fmt.Errorf("%w as %q", ErrDuplicateKey, existing.Name)
		}
	}

	if name == "" {
		name = fmt.Sprintf("API %d", len(apis)+1)
	}

	detected := provider.Detect(key)
	api := API{
		ID:               uuid.NewString(),
		Name:             name,
		Key:              key,
		URL:              url,
		Description:      description,
		Provider:         detected.ID,
		ProviderName:     detected.Name,
		CreatedAt:        time.Now().UTC(),
		SessionID:        a.sessionID,
		ConnectionStatus: StatusInactive,
	}

	if err := a.saveAPIs(append(apis, api)); err != nil {
		return API{}, err
	}

	a.log.Debug().Str("id", api.ID).Str("provider", string(api.Provider)).Msg("Added API")
	return api, nil
}

// RemoveAPI deletes an API by id or unique id prefix. A selection pointing
// at it is cleared.
func (a *App) RemoveAPI(id string) (API, error) {
	apis, err := a.loadAPIs()
	if err != nil {
		return API{}, err
	}

	idx, err := findAPI(apis, id)
	if err != nil {
		return API{}, err
	}
	removed := apis[idx]
	apis = append(apis[:idx], apis[idx+1:]...)

	if err := a.saveAPIs(apis); err != nil {
		return API{}, err
	}

	ref, found, err := a.db.Get(SelectedModelKey)
	if err == nil && found && strings.HasPrefix(ref, removed.ID+":") {
		if err := a.db.Remove(SelectedModelKey); err != nil {
			return removed, fmt.Errorf("failed to clear selection: %w", err)
		}
	}
	return removed, nil
}

// APIs returns all registered APIs
func (a *App) APIs() ([]API, error) {
	return a.loadAPIs()
}

// AvailableModels lists the catalog models of every registered API
func (a *App) AvailableModels() ([]ModelChoice, error) {
	apis, err := a.loadAPIs()
	if err != nil {
		return nil, err
	}

	var choices []ModelChoice
	for _, api := range apis {
		for _, m := range provider.Models(api.Provider) {
			choices = append(choices, ModelChoice{
				APIID:        api.ID,
				APIName:      api.Name,
				ProviderName: api.ProviderName,
				Model:        m,
			})
		}
	}
	return choices, nil
}

// SelectModel makes modelID through apiID the model used by Chat
func (a *App) SelectModel(apiID, modelID string) (ModelChoice, error) {
	apis, err := a.loadAPIs()
	if err != nil {
		return ModelChoice{}, err
	}

	idx, err := findAPI(apis, apiID)
	if err != nil {
		return ModelChoice{}, err
	}
	api := apis[idx]

	model, ok := provider.FindModel(api.Provider, modelID)
	if !ok {
		return ModelChoice{}, fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
	}

	choice := ModelChoice{APIID: api.ID, APIName: api.Name, ProviderName: api.ProviderName, Model: model}
	if err := a.db.Set(SelectedModelKey, choice.Ref()); err != nil {
		return ModelChoice{}, fmt.Errorf("failed to store selection: %w", err)
	}
	return choice, nil
}

// Selected returns the current model selection
func (a *App) Selected() (ModelChoice, error) {
	ref, found, err := a.db.Get(SelectedModelKey)
	if err != nil {
		return ModelChoice{}, fmt.Errorf("failed to read selection: %w", err)
	}
	if !found {
		return ModelChoice{}, ErrNoModelSelected
	}

	apiID, modelID, ok := strings.Cut(ref, ":")
	if !ok {
		return ModelChoice{}, ErrNoModelSelected
	}

	apis, err := a.loadAPIs()
	if err != nil {
		return ModelChoice{}, err
	}
	idx, err := findAPI(apis, apiID)
	if err != nil {
		return ModelChoice{}, ErrNoModelSelected
	}
	api := apis[idx]

	model, ok := provider.FindModel(api.Provider, modelID)
	if !ok {
		return ModelChoice{}, ErrNoModelSelected
	}
	return ModelChoice{APIID: api.ID, APIName: api.Name, ProviderName: api.ProviderName, Model: model}, nil
}

// TestConnection pings one API and records whether it answered
func (a *App) TestConnection(ctx context.Context, id string) (API, error) {
	apis, err := a.loadAPIs()
	if err != nil {
		return API{}, err
	}
	idx, err := findAPI(apis, id)
	if err != nil {
		return API{}, err
	}

	pingErr := a.ping(ctx, &apis[idx])
	if err := a.saveAPIs(apis); err != nil {
		return apis[idx], err
	}
	return apis[idx], pingErr
}

// TestAll pings every API in turn
func (a *App) TestAll(ctx context.Context) ([]TestResult, error) {
	apis, err := a.loadAPIs()
	if err != nil {
		return nil, err
	}

	results := make([]TestResult, 0, len(apis))
	for i := range apis {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		pingErr := a.ping(ctx, &apis[i])
		results = append(results, TestResult{API: apis[i], Err: pingErr})
	}

	if err := a.saveAPIs(apis); err != nil {
		return results, err
	}
	return results, nil
}

func (a *App) ping(ctx context.Context, api *API) error {
	err := a.client.Ping(ctx, provider.Endpoint{BaseURL: api.URL, Key: api.Key, SessionID: a.sessionID})
	if err != nil {
		api.ConnectionStatus = StatusInactive
		a.log.Debug().Err(err).Str("id", api.ID).Msg("Connection test failed")
		return err
	}

	now := time.Now().UTC()
	api.ConnectionStatus = StatusActive
	api.LastUsed = &now
	return nil
}

// sanitize cleans free text and records rejected input
func (a *App) sanitize(field, input string) (string, error) {
	clean, err := security.Sanitize(input)
	if err != nil {
		a.record(security.EventSuspiciousInput, map[string]any{
			"field":   field,
			"pattern": security.Suspicious(input),
		})
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return clean, nil
}

// findAPI locates an API by exact id, then by unique id prefix
func findAPI(apis []API, id string) (int, error) {
	if id == "" {
		return -1, ErrAPINotFound
	}

	for i, api := range apis {
		if api.ID == id {
			return i, nil
		}
	}

	match := -1
	for i, api := range apis {
		if !strings.HasPrefix(api.ID, id) {
			continue
		}
		if match >= 0 {
			return -1, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		}
		match = i
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrAPINotFound, id)
	}
	return match, nil
}
