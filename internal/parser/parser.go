// Package parser reads reading-list entries out of Markdown files for bulk
// import.
//
// Every list line ("- ", "* ", "+ " or "1. ") becomes one item. A Markdown
// link supplies the name and URL, a bare URL is used as both, and anything
// after it (or after " - " for plain text) is kept as the note. Headings and inline #tags
// that name an item type set the type; YAML frontmatter may carry defaults
// for type, kind and author.
package parser

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/models"
)

var (
	bulletRe   = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.*)$`)
	checkboxRe = regexp.MustCompile(`^\[[ xX]\]\s+`)
	linkRe     = regexp.MustCompile(`^\[([^\]]+)\]\(([^)\s]+)\)`)
	urlRe      = regexp.MustCompile(`^<?(https?://[^\s>]+)>?`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_-]*)`)
)

const noteSep = " - "

// Defaults are frontmatter values applied to every entry that does not set
// its own.
type Defaults struct {
	Type   string `yaml:"type"`
	Kind   string `yaml:"kind"`
	Author string `yaml:"author"`
}

// Result holds the output of parsing an import file.
type Result struct {
	Defaults Defaults
	Items    []models.NewItemParams
}

// Parse extracts item entries from raw Markdown bytes. Lines that are not
// list entries are ignored.
func Parse(data []byte) (*Result, error) {
	defaults, body := splitFrontmatter(data)
	res := &Result{Defaults: defaults}

	sectionType := ""
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if isHeading(line) {
			sectionType = typeFromWord(strings.TrimLeft(strings.TrimSpace(line), "# "))
			continue
		}
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if p, ok := parseEntry(m[1], sectionType, defaults); ok {
			res.Items = append(res.Items, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func isHeading(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "# ") || strings.HasPrefix(t, "## ") || strings.HasPrefix(t, "### ")
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. Missing or invalid frontmatter leaves the whole input as body.
func splitFrontmatter(data []byte) (Defaults, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return Defaults{}, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return Defaults{}, string(data)
	}

	var d Defaults
	if err := yaml.Unmarshal(rest[:idx], &d); err != nil {
		return Defaults{}, string(data)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return d, body
}

func parseEntry(text, sectionType string, d Defaults) (models.NewItemParams, bool) {
	text = checkboxRe.ReplaceAllString(strings.TrimSpace(text), "")

	p := models.NewItemParams{Type: d.Type, Kind: d.Kind, Author: d.Author}
	if sectionType != "" {
		p.Type = sectionType
	}

	rest := text
	switch {
	case linkRe.MatchString(text):
		m := linkRe.FindStringSubmatch(text)
		p.Name, p.Link = strings.TrimSpace(m[1]), m[2]
		rest = text[len(m[0]):]
	case urlRe.MatchString(text):
		m := urlRe.FindStringSubmatch(text)
		p.Name, p.Link = m[1], m[1]
		rest = text[len(m[0]):]
	default:
		p.Name, rest, _ = strings.Cut(text, noteSep)
	}

	rest, tagType := stripTypeTags(rest)
	p.Name, _ = stripTypeTags(p.Name)
	if tagType != "" {
		p.Type = tagType
	}
	rest = strings.TrimSpace(rest)
	if note, ok := strings.CutPrefix(rest, "-"); ok {
		rest = note
	}
	p.Note = strings.TrimSpace(rest)
	p.Name = strings.TrimSpace(p.Name)
	return p, p.Name != ""
}

// stripTypeTags removes inline #tags that name an item type and returns
// the last such type.
func stripTypeTags(s string) (string, string) {
	found := ""
	out := tagRe.ReplaceAllStringFunc(s, func(m string) string {
		tag := strings.TrimSpace(m)[1:]
		if t := typeFromWord(tag); t != "" {
			found = t
			return ""
		}
		return m
	})
	return out, found
}

// typeFromWord maps a heading or tag such as "Blog posts" or "#video" to an
// item type, or "" when it names none.
func typeFromWord(w string) string {
	w = strings.ToLower(strings.TrimSpace(w))
	w = strings.NewReplacer(" ", "_", "-", "_").Replace(w)
	if t, err := models.ParseItemType(w); err == nil {
		return string(t)
	}
	if t, err := models.ParseItemType(strings.TrimSuffix(w, "s")); err == nil {
		return string(t)
	}
	return ""
}
