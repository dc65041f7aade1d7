package connectors

import (
	"sunquote/internal/storage"
)

type FetchService struct {
	db        *storage.DB
	connector MailConnector
	store     *MailStoreService
}

// Skipped counts re-fetched messages whose raw content was already in
// the store.
type FetchResult struct {
	Fetched int
	Stored  int
	Skipped int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
	}
}

// FetchAndStore pulls quote mail through the connector and persists
// every message, deduplicating by raw content.
func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		_, isNew, err := s.store.Store(msg)
		if err != nil {
			return result, err
		}
		if isNew {
			result.Stored++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}
