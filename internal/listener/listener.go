package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"sunquote/internal/config"
	"sunquote/internal/connectors"
	gmailconnector "sunquote/internal/connectors/gmail"
	imapconnector "sunquote/internal/connectors/imap"
	"sunquote/internal/pipeline"
	"sunquote/internal/storage"
)

// Service polls a mailbox on an interval and drives each new quote email
// through fetch, detection, extraction and the review export.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetch := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetched, err := fetch.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	processed, extracted, err := processor.ProcessPending(s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	exported := 0
	if s.cfg.MailListenerAutoExport {
		exported, err = s.exportProcessed(provider)
		if err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d skipped=%d processed=%d extracted=%d exported=%d\n",
		provider, fetched.Fetched, fetched.Stored, fetched.Skipped, processed, extracted, exported)
	return nil
}

// exportProcessed writes one review workbook per processed email and
// advances its status, so a quote is exported exactly once.
func (s *Service) exportProcessed(provider string) (int, error) {
	emails, err := s.db.ListEmailsByStatus("processed", 200)
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, email := range emails {
		if email.Provider != provider {
			continue
		}
		rows, err := s.db.GetExportRows(email.ID)
		if err != nil {
			return exported, err
		}
		if len(rows) == 0 {
			continue
		}

		filename := fmt.Sprintf("%d_%s.xlsx", email.ID, sanitizeMessageID(email.MessageID))
		if err := pipeline.ExportRowsToXLSX(rows, filepath.Join(s.cfg.OutputDir, "listener", filename)); err != nil {
			return exported, err
		}
		if err := s.db.UpdateEmailStatus(email.ID, "exported"); err != nil {
			return exported, err
		}
		exported++
	}
	return exported, nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

// sanitizeMessageID strips filesystem-hostile characters from a mail
// Message-ID so it can name the export workbook.
func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
