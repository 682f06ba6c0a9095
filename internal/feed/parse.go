package feed

import (
	"bytes"
	"crypto/sha1"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"jobradar/internal/model"
)

// entry is a format-neutral feed entry prior to normalization.
type entry struct {
	title     string
	link      string
	guid      string
	published string
	html      string // raw item HTML (description or content)
}

type rssEnvelope struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Content     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
}

// rdfEnvelope covers RSS 1.0, where items are siblings of <channel>
// under the <rdf:RDF> root rather than children of it.
type rdfEnvelope struct {
	XMLName xml.Name  `xml:"RDF"`
	Items   []rdfItem `xml:"item"`
}

type rdfItem struct {
	About       string `xml:"about,attr"`
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Date        string `xml:"http://purl.org/dc/elements/1.1/ date"`
	Description string `xml:"description"`
	Content     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
}

type atomEnvelope struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string     `xml:"id"`
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
	Content   string     `xml:"content"`
	Summary   string     `xml:"summary"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// parseFeed decodes an RSS 2.0, RSS 1.0 (RDF), or Atom document,
// tolerating non-UTF-8 encodings via the declared charset.
func parseFeed(data []byte) ([]entry, error) {
	root, err := rootElement(data)
	if err != nil {
		return nil, err
	}

	switch root {
	case "RDF":
		var env rdfEnvelope
		if err := decode(data, &env); err != nil {
			return nil, err
		}
		entries := make([]entry, 0, len(env.Items))
		for _, it := range env.Items {
			html := it.Content
			if html == "" {
				html = it.Description
			}
			entries = append(entries, entry{
				title:     strings.TrimSpace(it.Title),
				link:      strings.TrimSpace(it.Link),
				guid:      strings.TrimSpace(it.About),
				published: strings.TrimSpace(it.Date),
				html:      html,
			})
		}
		return entries, nil
	case "rss":
		var env rssEnvelope
		if err := decode(data, &env); err != nil {
			return nil, err
		}
		entries := make([]entry, 0, len(env.Channel.Items))
		for _, it := range env.Channel.Items {
			html := it.Content
			if html == "" {
				html = it.Description
			}
			entries = append(entries, entry{
				title:     strings.TrimSpace(it.Title),
				link:      strings.TrimSpace(it.Link),
				guid:      strings.TrimSpace(it.GUID),
				published: strings.TrimSpace(it.PubDate),
				html:      html,
			})
		}
		return entries, nil
	case "feed":
		var env atomEnvelope
		if err := decode(data, &env); err != nil {
			return nil, err
		}
		entries := make([]entry, 0, len(env.Entries))
		for _, e := range env.Entries {
			published := e.Published
			if published == "" {
				published = e.Updated
			}
			html := e.Content
			if html == "" {
				html = e.Summary
			}
			entries = append(entries, entry{
				title:     strings.TrimSpace(e.Title),
				link:      atomAlternate(e.Links),
				guid:      strings.TrimSpace(e.ID),
				published: strings.TrimSpace(published),
				html:      html,
			})
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unrecognized feed root element %q", root)
	}
}

func decode(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}

func rootElement(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("find feed root: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}

func atomAlternate(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

// pubDateFormats covers the timestamp variants seen across WeChat RSS
// bridges and standard feeds.
var pubDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

func parsePublished(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range pubDateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// toItem normalizes an entry: identity resolution, plain-text body, and
// image refs in document order.
func (e entry) toItem(source string) model.FeedItem {
	text, images := splitContent(e.html)

	id := e.guid
	if id == "" {
		id = e.link
	}
	if id == "" {
		sum := sha1.Sum([]byte(e.title + "|" + e.published))
		id = fmt.Sprintf("sha1:%x", sum[:8])
	}

	return model.FeedItem{
		Source:      source,
		ID:          id,
		Title:       e.title,
		Link:        e.link,
		PublishedAt: parsePublished(e.published),
		BodyText:    text,
		ImageRefs:   images,
	}
}

// splitContent parses the item HTML, strips script/style, and returns
// the collapsed plain text plus the image URLs in order.
func splitContent(html string) (string, []string) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable HTML degrades to the raw text.
		return strings.Join(strings.Fields(html), " "), nil
	}

	doc.Find("script,noscript,style").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	var images []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("data-src", s.AttrOr("src", "")))
		if src != "" {
			images = append(images, src)
		}
	})

	text := strings.Join(strings.Fields(doc.Text()), " ")
	return text, images
}
