package main

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"timelinekit/internal/rtime"
)

var (
	countPrinter = message.NewPrinter(language.English)
	kindTitler   = cases.Title(language.English)
)

// countLabel formats n with digit grouping and the matching noun.
func countLabel(n int, singular, plural string) string {
	noun := plural
	if n == 1 {
		noun = singular
	}
	return countPrinter.Sprintf("%d %s", n, noun)
}

// kindTitle turns "marker_out_of_range" into "Marker Out Of Range".
func kindTitle(kind string) string {
	return kindTitler.String(strings.ReplaceAll(kind, "_", " "))
}

func formatDuration(d rtime.RationalTime) string {
	if !d.IsValid() {
		return d.String()
	}
	return fmt.Sprintf("%s (%.3fs)", d, d.Seconds())
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
