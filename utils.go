package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

// clipboardAccess is the system clipboard, swappable in tests.
type clipboardAccess interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) { return readClipboardText() }

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		// Ask for plain text first so rich copies don't arrive as RTF.
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func isHTML(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<p"))
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

func stripHTML(html string) string {
	var b strings.Builder
	b.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return htmlEntities.Replace(b.String())
}

// stripRTF drops RTF control words and groups, keeping escaped literals and
// turning \par and \line into newlines.
func stripRTF(text string) string {
	if !strings.HasPrefix(text, "{\\rtf") && !strings.Contains(text, "\\rtf1") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '{', '}':
			continue
		case '\\':
		default:
			b.WriteRune(r)
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		next := runes[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			b.WriteRune(next)
			i++
		case next == '\'' && i+3 < len(runes):
			if v, err := strconv.ParseUint(string(runes[i+2:i+4]), 16, 8); err == nil {
				b.WriteRune(rune(v))
			}
			i += 3
		case isASCIILetter(next):
			start := i + 1
			for i+1 < len(runes) && isASCIILetter(runes[i+1]) {
				i++
			}
			word := string(runes[start : i+1])
			for i+1 < len(runes) && (runes[i+1] == '-' || (runes[i+1] >= '0' && runes[i+1] <= '9')) {
				i++
			}
			if i+1 < len(runes) && runes[i+1] == ' ' {
				i++
			}
			switch word {
			case "par", "line":
				b.WriteByte('\n')
			case "tab":
				b.WriteByte('\t')
			}
		default:
			i++
		}
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// cleanClipboardText turns whatever the clipboard held into plain text with
// \n line endings.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	if isHTML(text) {
		text = stripHTML(text)
	}
	text = stripRTF(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitPasted makes a node out of pasted text: the first non-empty line is
// the title, the rest the description.
func splitPasted(text string) (title, description string) {
	text = strings.TrimSpace(cleanClipboardText(text))
	if text == "" {
		return "", ""
	}
	title, description, _ = strings.Cut(text, "\n")
	return strings.TrimSpace(title), strings.TrimSpace(description)
}

// nodeClipboardText is what y copies: the title, a blank line, the notes.
func nodeClipboardText(title, description string) string {
	if description == "" {
		return title
	}
	return title + "\n\n" + description
}
