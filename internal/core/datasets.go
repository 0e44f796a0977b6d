package core

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/illarion/chatvault/internal/vault"
)

// loadDataset reads an encrypted dataset into dst. When it is absent, the
// legacy plaintext dataset is migrated: re-saved encrypted and removed.
// Unreadable data loads as empty, with a warning.
func (a *App) loadDataset(name, legacy string, dst any) error {
	opened, err := a.vault.Load(name, dst)
	switch {
	case err == nil:
		if opened.Status == vault.StatusPassthrough {
			a.log.Warn().Str("dataset", name).Msg("Dataset stored in plain text, it will be encrypted on next save")
		}
		return nil
	case errors.Is(err, vault.ErrNotFound):
		return a.migrateLegacy(name, legacy, dst)
	case errors.Is(err, vault.ErrDecodeFailure):
		a.log.Warn().Err(err).Str("dataset", name).Msg("Failed to decrypt dataset, starting empty")
		return nil
	default:
		return err
	}
}

func (a *App) migrateLegacy(name, legacy string, dst any) error {
	raw, found, err := a.db.Get(legacy)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", legacy, err)
	}
	if !found {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.log.Warn().Err(err).Str("dataset", legacy).Msg("Ignoring unreadable legacy dataset")
		return nil
	}

	if _, err := a.vault.Save(name, dst); err != nil {
		return err
	}
	if err := a.db.Remove(legacy); err != nil {
		return fmt.Errorf("failed to remove %s: %w", legacy, err)
	}

	a.log.Info().Str("from", legacy).Str("to", name).Msg("Migrated legacy dataset")
	return nil
}

// peekDataset reads a dataset like loadDataset but never writes. A legacy
// dataset is decoded where it is and left in place.
func (a *App) peekDataset(name, legacy string, dst any) error {
	_, err := a.vault.Load(name, dst)
	if !errors.Is(err, vault.ErrNotFound) {
		return err
	}

	raw, found, err := a.db.Get(legacy)
	if err != nil || !found {
		return err
	}
	return json.Unmarshal([]byte(raw), dst)
}

func (a *App) loadAPIs() ([]API, error) {
	var apis []API
	if err := a.loadDataset(APIsKey, LegacyAPIsKey, &apis); err != nil {
		return nil, err
	}
	return apis, nil
}

func (a *App) loadConversation() ([]Turn, error) {
	var turns []Turn
	if err := a.loadDataset(ConversationsKey, LegacyConversationsKey, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// save writes both datasets and the session id
func (a *App) save(apis []API, turns []Turn) error {
	if apis == nil {
		apis = []API{}
	}
	if turns == nil {
		turns = []Turn{}
	}

	if err := a.saveDataset(APIsKey, apis); err != nil {
		return err
	}
	if err := a.saveDataset(ConversationsKey, turns); err != nil {
		return err
	}
	return a.db.Set(SessionKey, a.sessionID)
}

func (a *App) saveAPIs(apis []API) error {
	turns, err := a.loadConversation()
	if err != nil {
		return err
	}
	return a.save(apis, turns)
}

func (a *App) saveConversation(turns []Turn) error {
	apis, err := a.loadAPIs()
	if err != nil {
		return err
	}
	return a.save(apis, turns)
}

func (a *App) saveDataset(name string, v any) error {
	sealed, err := a.vault.Save(name, v)
	if err != nil {
		return err
	}
	if sealed.Status == vault.StatusDegraded {
		a.log.Warn().Err(sealed.Err).Str("dataset", name).Msg("Dataset saved without encryption")
	}
	return nil
}
