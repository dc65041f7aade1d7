package imap

import (
	"testing"

	"github.com/emersion/go-imap"
)

func TestQuoteCriteriaUnseenWithSubjectKeywords(t *testing.T) {
	criteria := quoteCriteria()

	if len(criteria.WithoutFlags) != 1 || criteria.WithoutFlags[0] != imap.SeenFlag {
		t.Fatalf("WithoutFlags = %v, want unseen only", criteria.WithoutFlags)
	}

	got := collectSubjects(criteria)
	if len(got) != len(subjectKeywords) {
		t.Fatalf("subjects = %v, want %v", got, subjectKeywords)
	}
	for i, kw := range subjectKeywords {
		if got[i] != kw {
			t.Fatalf("subjects = %v, want %v", got, subjectKeywords)
		}
	}
}

func TestSubjectCriteriaSingleKeyword(t *testing.T) {
	c := subjectCriteria([]string{"quote"})
	if len(c.Or) != 0 {
		t.Fatalf("single keyword must not wrap in OR: %v", c.Or)
	}
	if c.Header.Get("Subject") != "quote" {
		t.Fatalf("subject = %q", c.Header.Get("Subject"))
	}
}

// collectSubjects walks the right-nested OR chain and returns the
// subject keywords in order.
func collectSubjects(c *imap.SearchCriteria) []string {
	if c == nil {
		return nil
	}
	out := []string{}
	if v := c.Header.Get("Subject"); v != "" {
		out = append(out, v)
	}
	for _, pair := range c.Or {
		out = append(out, collectSubjects(pair[0])...)
		out = append(out, collectSubjects(pair[1])...)
	}
	return out
}

func TestFormatAddresses(t *testing.T) {
	got := formatAddresses([]*imap.Address{
		{PersonalName: "Sunny Solar", MailboxName: "quotes", HostName: "sunnysolar.com.au"},
		{MailboxName: "sales", HostName: "example.com"},
	})
	want := "Sunny Solar <quotes@sunnysolar.com.au>, sales@example.com"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
