package imap

import (
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"sunquote/internal"
	"sunquote/internal/config"
)

// Subject keywords narrowing a mailbox search to quote mail, the IMAP
// counterpart of the gmail connector's search query.
var subjectKeywords = []string{"quote", "proposal", "solar"}

type Connector struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	markSeen bool
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}

	return &Connector{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		markSeen: cfg.IMAPMarkSeen,
	}, nil
}

// FetchInbox pulls unseen quote-looking mail from one mailbox. Seen
// flags are only stored after the whole batch downloaded cleanly, so a
// broken cycle leaves its messages for the next poll.
func (c *Connector) FetchInbox(mailbox string, max int) ([]internal.FetchedMailMessage, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Logout()

	if err := conn.Login(c.user, c.password); err != nil {
		return nil, err
	}
	if _, err := conn.Select(mailbox, false); err != nil {
		return nil, err
	}

	ids, err := conn.Search(quoteCriteria())
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > max {
		ids = ids[len(ids)-max:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}
	ch := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() { done <- conn.Fetch(seqset, items, ch) }()

	fetched := new(imap.SeqSet)
	out := make([]internal.FetchedMailMessage, 0, len(ids))
	for msg := range ch {
		m, ok := toMailMessage(msg, section)
		if !ok {
			continue
		}
		out = append(out, m)
		fetched.AddNum(msg.SeqNum)
	}
	if err := <-done; err != nil {
		return nil, err
	}

	if c.markSeen && !fetched.Empty() {
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := conn.Store(fetched, item, []interface{}{imap.SeenFlag}, nil); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (c *Connector) dial() (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	if c.secure {
		return imapclient.DialTLS(addr, &tls.Config{ServerName: c.host})
	}
	return imapclient.Dial(addr)
}

// quoteCriteria matches unseen mail whose subject carries at least one
// quote keyword. IMAP OR is binary, so the keyword list folds into a
// right-nested chain.
func quoteCriteria() *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	subject := subjectCriteria(subjectKeywords)
	criteria.Or = subject.Or
	criteria.Header = subject.Header
	return criteria
}

func subjectCriteria(keywords []string) *imap.SearchCriteria {
	head := imap.NewSearchCriteria()
	head.Header.Add("Subject", keywords[0])
	if len(keywords) == 1 {
		return head
	}

	or := imap.NewSearchCriteria()
	or.Or = [][2]*imap.SearchCriteria{{head, subjectCriteria(keywords[1:])}}
	return or
}

func toMailMessage(msg *imap.Message, section *imap.BodySectionName) (internal.FetchedMailMessage, bool) {
	if msg == nil {
		return internal.FetchedMailMessage{}, false
	}
	body := msg.GetBody(section)
	if body == nil {
		return internal.FetchedMailMessage{}, false
	}
	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return internal.FetchedMailMessage{}, false
	}

	messageID := ""
	subject := ""
	from := ""
	if msg.Envelope != nil {
		messageID = msg.Envelope.MessageId
		subject = msg.Envelope.Subject
		from = formatAddresses(msg.Envelope.From)
	}
	if messageID == "" {
		messageID = fmt.Sprintf("imap-%d", msg.Uid)
	}

	received := time.Now().UTC().Format(time.RFC3339)
	if !msg.InternalDate.IsZero() {
		received = msg.InternalDate.UTC().Format(time.RFC3339)
	}

	return internal.FetchedMailMessage{
		Provider:   "imap",
		MessageID:  messageID,
		Subject:    subject,
		From:       from,
		ReceivedAt: received,
		Raw:        raw,
	}, true
}

func formatAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		email := strings.Trim(a.MailboxName+"@"+a.HostName, "@")
		if a.PersonalName != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.PersonalName, email))
		} else {
			parts = append(parts, email)
		}
	}
	return strings.Join(parts, ", ")
}
