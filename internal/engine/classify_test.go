package engine

import (
	"testing"

	"sunquote/internal"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		line string
		want internal.Context
	}{
		{name: "proposal header", line: "Proposal for John Citizen", want: internal.ContextHeader},
		{name: "prepared by header", line: "Prepared by Sunny Solar Pty Ltd", want: internal.ContextHeader},
		{name: "quote number header", line: "Quote # 10423", want: internal.ContextHeader},
		{name: "page footer", line: "Page 2 of 10", want: internal.ContextFooter},
		{name: "copyright footer", line: "(c) 2025 Sunny Solar", want: internal.ContextFooter},
		{name: "domain footer", line: "visit www.sunnysolar.com.au for more", want: internal.ContextFooter},
		{name: "phone footer", line: "Phone: 02 9999 1234", want: internal.ContextFooter},
		{name: "note line", line: "Note: prices include GST", want: internal.ContextNote},
		{name: "starred note", line: "* subject to site inspection", want: internal.ContextNote},
		{name: "tab table", line: "Qty\tModel\tWatts", want: internal.ContextTable},
		{name: "pipe table", line: "Panels | 30 | 440W", want: internal.ContextTable},
		{name: "spaced table", line: "Jinko   440W   30", want: internal.ContextTable},
		{name: "plain line", line: "The system includes thirty panels", want: internal.ContextLine},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.line); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestContextWeightRange(t *testing.T) {
	for _, ctx := range []internal.Context{
		internal.ContextTable, internal.ContextLine, internal.ContextHeader,
		internal.ContextFooter, internal.ContextNote,
	} {
		w := contextWeight(ctx)
		if w < 1 || w > 5 {
			t.Fatalf("weight %d for %s out of range", w, ctx)
		}
	}
}
