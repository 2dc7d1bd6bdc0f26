// Package extract locates the listing's estimated value inside rendered
// HTML. The target site's markup drifts over time, so extraction is a stack
// of ordered strategies: narrowly scoped DOM anchors first, then textual
// fallbacks that survive DOM restructuring. The first strategy that finds a
// candidate decides the outcome: a present-but-bogus value fails instead of
// silently sliding to a weaker match.
package extract

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"estimate-tracker/internal/application"
	"estimate-tracker/internal/domain"
)

type Extractor struct {
	Log *zap.Logger
}

var _ application.PriceExtractor = (*Extractor)(nil)

var (
	dollarRe      = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	previewTextRe = regexp.MustCompile(`"sectionPreviewText"\s*:\s*"\\?\$([0-9][0-9,]*(?:\.[0-9]+)?)`)
	labelRe       = regexp.MustCompile(`(?i)estimate[^$]{0,120}\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

// Extract returns the estimated value as an exact decimal. It fails with
// domain.ErrPriceNotFound when no strategy finds a candidate and with
// domain.ErrMalformedPrice when the found candidate does not parse to a
// positive amount. It never substitutes a default.
func (e *Extractor) Extract(htmlText string) (decimal.Decimal, error) {
	raw, ok := e.find(htmlText)
	if !ok {
		return decimal.Decimal{}, domain.ErrPriceNotFound
	}
	return domain.ParseAmount(raw)
}

func (e *Extractor) find(htmlText string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		doc = nil
	}

	if doc != nil {
		if v, ok := e.fromEstimateAttr(doc); ok {
			return v, true
		}
		if v, ok := e.fromAnchorText(doc, `[data-rf-test-id="abp-price"]`); ok {
			return v, true
		}
		if v, ok := e.fromAnchorText(doc, `[class*="RedfinEstimateValueHeader"]`); ok {
			return v, true
		}
	}
	if m := previewTextRe.FindStringSubmatch(htmlText); m != nil {
		return m[1], true
	}
	return e.fromLabel(htmlText, doc)
}

// fromEstimateAttr reads the amount straight out of a data-rf-estimate
// attribute, the narrowest anchor the site exposes.
func (e *Extractor) fromEstimateAttr(doc *goquery.Document) (string, bool) {
	sel := doc.Find(`[data-rf-estimate]`)
	if sel.Length() == 0 {
		return "", false
	}
	if sel.Length() > 1 {
		e.warnAmbiguous("data-rf-estimate", sel.Length())
	}
	v, _ := sel.First().Attr("data-rf-estimate")
	return v, true
}

// fromAnchorText finds the first $-amount in the text of a known display
// element. An anchor that renders no amount at all is treated as absent so
// the next strategy gets a chance.
func (e *Extractor) fromAnchorText(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return "", false
	}
	if sel.Length() > 1 {
		e.warnAmbiguous(selector, sel.Length())
	}
	m := dollarRe.FindStringSubmatch(normalizeText(sel.First().Text()))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// fromLabel is the broadest fallback: a $-amount following an "estimate"
// label in the page text. Works on entity-decoded, whitespace-normalized
// text so it tolerates arbitrary markup between label and amount.
func (e *Extractor) fromLabel(htmlText string, doc *goquery.Document) (string, bool) {
	var text string
	if doc != nil {
		text = doc.Text()
	} else {
		text = html.UnescapeString(htmlText)
	}
	text = normalizeText(text)

	ms := labelRe.FindAllStringSubmatch(text, -1)
	if len(ms) == 0 {
		return "", false
	}
	if len(ms) > 1 {
		e.warnAmbiguous("estimate label", len(ms))
	}
	return ms[0][1], true
}

func (e *Extractor) warnAmbiguous(anchor string, n int) {
	if e.Log == nil {
		return
	}
	e.Log.Warn("extract.ambiguous_candidates",
		zap.String("anchor", anchor),
		zap.Int("candidates", n),
	)
}

// normalizeText collapses all whitespace (including NBSP) to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
