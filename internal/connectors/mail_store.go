package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"sunquote/internal"
	"sunquote/internal/storage"
)

// MailStoreService writes raw quote mail content-addressed by hash: a
// re-fetched message maps onto the same .eml file and only refreshes
// its database row.
type MailStoreService struct {
	db         *storage.DB
	rawMailDir string
}

func NewMailStoreService(db *storage.DB, rawMailDir string) *MailStoreService {
	return &MailStoreService{db: db, rawMailDir: rawMailDir}
}

// Store persists one fetched message and reports whether its raw
// content was new to the store.
func (s *MailStoreService) Store(msg internal.FetchedMailMessage) (internal.EmailRow, bool, error) {
	if len(msg.Raw) == 0 {
		return internal.EmailRow{}, false, errors.New("empty raw message")
	}

	sum := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(sum[:])

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.EmailRow{}, false, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	isNew := false
	if _, err := os.Stat(rawPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.EmailRow{}, false, err
		}
		isNew = true
	}

	row, err := s.db.UpsertEmail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
	if err != nil {
		return internal.EmailRow{}, false, err
	}
	return row, isNew, nil
}
