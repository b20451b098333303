package nft

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/muurk/giftgrid/internal/grid"
)

var (
	// ErrInvalidSlug is returned for slugs not shaped like "GiftSlug-123"
	ErrInvalidSlug = errors.New("invalid slug, expected GiftSlug-123")

	// ErrNoAttributes is returned when a page carries nothing recognizable
	ErrNoAttributes = errors.New("collectible page has no attributes")
)

// Gift is a collectible resolved from its public page
type Gift struct {
	Slug   string `json:"slug"`
	Gift   string `json:"gift"`
	Number int    `json:"number"`

	Model    string `json:"model,omitempty"`
	Backdrop string `json:"backdrop,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Owner    string `json:"owner,omitempty"`

	AvailabilityIssued int `json:"availability_issued,omitempty"`
	AvailabilityTotal  int `json:"availability_total,omitempty"`
}

// Attributes returns the four cell fields of the collectible
func (g Gift) Attributes() grid.Attributes {
	return grid.Attributes{Gift: g.Gift, Model: g.Model, Backdrop: g.Backdrop, Pattern: g.Pattern}
}

// NormalizeSlug accepts a bare slug or a collectible link such as
// "https://t.me/nft/PlushPepe-42?start=x" and returns the slug
func NormalizeSlug(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/nft/"); i >= 0 {
		s = s[i+len("/nft/"):]
	}
	return s
}

// ParseSlug splits "PlushPepe-42" into its gift slug and number
func ParseSlug(slug string) (string, int, error) {
	slug = NormalizeSlug(slug)
	i := strings.LastIndex(slug, "-")
	if i <= 0 || i == len(slug)-1 {
		return "", 0, ErrInvalidSlug
	}
	n, err := strconv.Atoi(slug[i+1:])
	if err != nil || n <= 0 {
		return "", 0, ErrInvalidSlug
	}
	return slug[:i], n, nil
}

var rarity = regexp.MustCompile(`\s+\d+(\.\d+)?%$`)

func stripRarity(s string) string {
	return strings.TrimSpace(rarity.ReplaceAllString(strings.TrimSpace(s), ""))
}

func digitsOnly(s string) int {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	n, _ := strconv.Atoi(b.String())
	return n
}

// page holds what the parser found in the document
type page struct {
	rows  map[string]string
	metas map[string]string
}

// Parse reads a collectible page. The table rows win; the og:title gives
// the gift name and twitter:description fills missing attributes.
func Parse(body, slug string) (Gift, error) {
	giftSlug, num, err := ParseSlug(slug)
	if err != nil {
		return Gift{}, err
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return Gift{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	p := page{rows: map[string]string{}, metas: map[string]string{}}
	p.walk(doc)

	out := Gift{
		Slug:     strings.TrimSpace(slug),
		Gift:     giftSlug,
		Number:   num,
		Owner:    p.rows["Owner"],
		Model:    stripRarity(p.rows["Model"]),
		Backdrop: stripRarity(p.rows["Backdrop"]),
		Pattern:  stripRarity(p.rows["Symbol"]),
	}

	// "14 046/14 278 issued"
	if left, right, ok := strings.Cut(p.rows["Quantity"], "/"); ok {
		out.AvailabilityIssued = digitsOnly(left)
		out.AvailabilityTotal = digitsOnly(right)
	}

	// "Kissed Frog #3639"
	if title := strings.TrimSpace(p.metas["og:title"]); title != "" {
		name, _, _ := strings.Cut(title, "#")
		if name = strings.TrimSpace(name); name != "" {
			out.Gift = name
		}
	}

	if out.Model == "" || out.Backdrop == "" || out.Pattern == "" {
		model, backdrop, symbol := parseDescription(p.metas["twitter:description"])
		if out.Model == "" {
			out.Model = model
		}
		if out.Backdrop == "" {
			out.Backdrop = backdrop
		}
		if out.Pattern == "" {
			out.Pattern = symbol
		}
	}

	if out.Model == "" && out.Backdrop == "" && out.Pattern == "" && out.AvailabilityIssued == 0 && out.AvailabilityTotal == 0 {
		return Gift{}, ErrNoAttributes
	}
	return out, nil
}

func parseDescription(desc string) (model, backdrop, symbol string) {
	for _, ln := range strings.Split(desc, "\n") {
		ln = strings.TrimSpace(ln)
		switch {
		case strings.HasPrefix(ln, "Model:"):
			model = strings.TrimSpace(strings.TrimPrefix(ln, "Model:"))
		case strings.HasPrefix(ln, "Backdrop:"):
			backdrop = strings.TrimSpace(strings.TrimPrefix(ln, "Backdrop:"))
		case strings.HasPrefix(ln, "Symbol:"):
			symbol = strings.TrimSpace(strings.TrimPrefix(ln, "Symbol:"))
		}
	}
	return
}

func (p *page) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			key := getAttrValue(n, "property")
			if key == "" {
				key = getAttrValue(n, "name")
			}
			if key != "" {
				if _, seen := p.metas[key]; !seen {
					p.metas[key] = getAttrValue(n, "content")
				}
			}
		case "tr":
			p.row(n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

// row records a <tr><th>Label</th><td>Value</td></tr> pair
func (p *page) row(tr *html.Node) {
	var th, td *html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case c.Data == "th" && th == nil:
			th = c
		case c.Data == "td" && td == nil:
			td = c
		}
	}
	if th == nil || td == nil {
		return
	}
	label := getTextContent(th)
	if _, seen := p.rows[label]; !seen {
		p.rows[label] = getTextContent(td)
	}
}

func getAttrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// getTextContent returns the text of n with whitespace collapsed
func getTextContent(n *html.Node) string {
	var sb strings.Builder
	var getText func(*html.Node)
	getText = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			getText(c)
		}
	}
	getText(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
