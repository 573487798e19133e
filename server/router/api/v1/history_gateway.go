package v1

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/parleyhq/parley/chat"
	"github.com/parleyhq/parley/store"
)

// storeHistoryGateway persists session transcripts as chat_history records.
// Append follows the read-existing, concatenate, store-merged policy: the
// merged transcript is written as a new record, so the latest record always
// carries the full conversation in order. Two live sessions for the same
// user can interleave here; there is no cross-session isolation.
type storeHistoryGateway struct {
	store *store.Store
}

func (g *storeHistoryGateway) LoadLatest(ctx context.Context, userID int32) ([]chat.Turn, error) {
	record, err := g.store.GetLatestChatHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return decodeTurns(record.Messages)
}

func (g *storeHistoryGateway) Append(ctx context.Context, userID int32, delta []chat.Turn) error {
	existing, err := g.LoadLatest(ctx, userID)
	if err != nil {
		return err
	}
	merged := append(existing, delta...)

	encoded, err := json.Marshal(merged)
	if err != nil {
		return errors.Wrap(err, "failed to encode transcript")
	}
	_, err = g.store.CreateChatHistory(ctx, &store.ChatHistory{
		UID:       shortuuid.New(),
		UserID:    userID,
		Messages:  string(encoded),
		CreatedTs: time.Now().Unix(),
	})
	return err
}

func decodeTurns(encoded string) ([]chat.Turn, error) {
	var turns []chat.Turn
	if err := json.Unmarshal([]byte(encoded), &turns); err != nil {
		return nil, errors.Wrap(err, "failed to decode transcript")
	}
	return turns, nil
}
