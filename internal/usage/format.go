package usage

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/janekbaraniewski/cursorusage/internal/core"
)

// FormatTokenCount compresses a token count for the status line.
func FormatTokenCount(tokens int64) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%dk", int64(math.Round(float64(tokens)/1_000)))
	default:
		return fmt.Sprintf("%d", tokens)
	}
}

// FormatTokenTotal renders the full count with digit grouping.
func FormatTokenTotal(tokens int64) string {
	return humanize.Comma(tokens) + " tokens"
}

// FormatClock renders an epoch-ms timestamp as a local wall-clock time.
func FormatClock(ms int64) string {
	return formatClockIn(ms, time.Local)
}

func formatClockIn(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format("3:04 PM")
}

// Describe is the secondary text of a list row.
func Describe(ev core.UsageEvent) string {
	return strings.Join([]string{
		FormatTokenTotal(ev.Tokens),
		FormatClock(ev.TimestampMs),
		PrettyModelName(ev.Model),
		ev.Kind,
	}, " • ")
}

type modelVariant struct {
	contains []string
	name     string
}

type modelFamily struct {
	match    string
	icon     string
	variants []modelVariant
	upper    bool // unmatched variants are upper-cased instead of capitalized
}

// modelFamilies is checked in order; the first family whose marker appears in
// the lower-cased model name wins.
var modelFamilies = []modelFamily{
	{
		match: "claude", icon: "🧠",
		variants: []modelVariant{
			{contains: []string{"4", "sonnet"}, name: "Claude 4 Sonnet"},
			{contains: []string{"3.5", "sonnet"}, name: "Claude 3.5 Sonnet"},
			{contains: []string{"3", "haiku"}, name: "Claude 3 Haiku"},
			{contains: []string{"3", "opus"}, name: "Claude 3 Opus"},
		},
	},
	{
		match: "gpt", icon: "🤖", upper: true,
		variants: []modelVariant{
			{contains: []string{"4o"}, name: "GPT-4o"},
			{contains: []string{"4", "turbo"}, name: "GPT-4 Turbo"},
			{contains: []string{"4"}, name: "GPT-4"},
			{contains: []string{"3.5"}, name: "GPT-3.5"},
		},
	},
	{match: "gemini", icon: "💎"},
	{
		match: "llama", icon: "🦙",
		variants: []modelVariant{{contains: []string{"code"}, name: "Code Llama"}},
	},
	{match: "mistral", icon: "🌬️"},
	{match: "palm", icon: "🌴"},
	{match: "bard", icon: "🎭"},
	{match: "codex", icon: "💻"},
}

// PrettyModelName maps a raw model id to a display name. It has no effect on
// cost classification.
func PrettyModelName(model string) string {
	lower := strings.ToLower(model)
	if lower == "auto" {
		return "🎯 Auto"
	}

	for _, fam := range modelFamilies {
		if !strings.Contains(lower, fam.match) {
			continue
		}
		for _, v := range fam.variants {
			if containsAll(lower, v.contains) {
				return fam.icon + " " + v.name
			}
		}
		if fam.upper {
			return fam.icon + " " + strings.ToUpper(model)
		}
		return fam.icon + " " + capitalize(model)
	}
	return capitalize(model)
}

func containsAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
