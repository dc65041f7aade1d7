package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"sunquote/internal/catalog"
	"sunquote/internal/config"
	"sunquote/internal/connectors"
	gmailconnector "sunquote/internal/connectors/gmail"
	imapconnector "sunquote/internal/connectors/imap"
	"sunquote/internal/engine"
	"sunquote/internal/listener"
	"sunquote/internal/pipeline"
	"sunquote/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "catalog:initial-sync":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.InitialSync(context.Background())
		must(err)
		fmt.Printf("initial sync complete: %d products\n", count)
	case "catalog:incremental-sync":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.IncrementalSync(context.Background())
		must(err)
		fmt.Printf("incremental sync complete: %d products\n", count)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d skipped=%d\n", *provider, result.Fetched, result.Stored, result.Skipped)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(*provider, *messageID)
			must(err)
			fmt.Printf("processed email id=%d extracted=%d\n", res.EmailID, res.Extracted)
			return
		}
		processedEmails, extracted, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending emails=%d extracted=%d\n", processedEmails, extracted)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		emailID := fs.Int("emailId", 0, "internal email id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *emailID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--emailId and --out are required"))
		}
		rows, err := db.GetExportRows(*emailID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows for emailId=%d", *emailID))
		}
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "mail:listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path or raw text")
		inType := fs.String("type", "", "eml|pdf|txt|html|text")
		output := fs.String("output", "", "optional output json path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *inType == "" {
			must(fmt.Errorf("--input and --type are required"))
		}

		pages, err := pipeline.PagesFromInput(*inType, *input)
		must(err)
		result := engine.New(cfg).Extract(pages)

		blob, err := json.MarshalIndent(result, "", "  ")
		must(err)
		if strings.TrimSpace(*output) != "" {
			must(os.WriteFile(*output, blob, 0o644))
			fmt.Printf("run done pages=%d output=%s\n", len(pages), *output)
			return
		}
		fmt.Println(string(blob))
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: sunquote <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:initial-sync")
	fmt.Println("  catalog:incremental-sync")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx --emailId=1 --out=./out/review.xlsx")
	fmt.Println("  run --input=... --type=eml|pdf|txt|html|text [--output=result.json]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
