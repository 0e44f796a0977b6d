package core

import (
	"context"
	"strings"
	"time"

	"github.com/illarion/chatvault/internal/provider"
)

// Chat sends message to the selected model and appends the exchange to the
// conversation. A failed call marks the API inactive and is not recorded.
func (a *App) Chat(ctx context.Context, message string) (Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Turn{}, ErrEmptyMessage
	}

	sel, err := a.Selected()
	if err != nil {
		return Turn{}, err
	}
	if err := a.allow("chat"); err != nil {
		return Turn{}, err
	}

	apis, err := a.loadAPIs()
	if err != nil {
		return Turn{}, err
	}
	idx, err := findAPI(apis, sel.APIID)
	if err != nil {
		return Turn{}, err
	}
	api := &apis[idx]

	turns, err := a.loadConversation()
	if err != nil {
		return Turn{}, err
	}

	ep := provider.Endpoint{BaseURL: api.URL, Key: api.Key, SessionID: a.sessionID}
	reply, chatErr := a.client.Chat(ctx, ep, sel.Model.ID, message)
	now := time.Now().UTC()

	if chatErr != nil {
		api.ConnectionStatus = StatusInactive
		if err := a.save(apis, turns); err != nil {
			a.log.Warn().Err(err).Msg("Failed to store connection status")
		}
		return Turn{}, chatErr
	}

	turn := Turn{
		User:      message,
		AI:        reply,
		Timestamp: now,
		APIID:     api.ID,
		ModelID:   sel.Model.ID,
	}
	api.LastUsed = &now
	api.ConnectionStatus = StatusActive

	if err := a.save(apis, append(turns, turn)); err != nil {
		return turn, err
	}
	return turn, nil
}

// Conversation returns the stored conversation, oldest first
func (a *App) Conversation() ([]Turn, error) {
	return a.loadConversation()
}

// ClearConversation empties the conversation and keeps the APIs
func (a *App) ClearConversation() error {
	return a.saveConversation(nil)
}
