package richtext

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Feature — возможность редактора, которая разрешает набор HTML-элементов.
type Feature string

const (
	FeatureBold   Feature = "bold"
	FeatureItalic Feature = "italic"
	FeatureLink   Feature = "link"
	FeatureImage  Feature = "image"
	FeatureList   Feature = "ol"
	FeatureH2     Feature = "h2"
)

// DefaultFeatures используются полями без явного списка (body страниц).
var DefaultFeatures = []Feature{FeatureBold, FeatureItalic, FeatureLink, FeatureImage, FeatureList, FeatureH2}

var plain = bluemonday.StrictPolicy()

// Policy чистит HTML, оставляя только разрешённые фичами элементы.
type Policy struct {
	features []Feature
	p        *bluemonday.Policy
}

func NewPolicy(features ...Feature) *Policy {
	if len(features) == 0 {
		features = DefaultFeatures
	}
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br")
	for _, f := range features {
		switch f {
		case FeatureBold:
			p.AllowElements("b", "strong")
		case FeatureItalic:
			p.AllowElements("i", "em")
		case FeatureLink:
			p.AllowStandardURLs()
			p.AllowAttrs("href").OnElements("a")
			// внутренние ссылки на страницы хранятся как <a linktype="page" id="N">
			p.AllowAttrs("linktype", "id").OnElements("a")
		case FeatureImage:
			p.AllowAttrs("embedtype", "id", "format", "alt").OnElements("embed")
		case FeatureList:
			p.AllowElements("ol", "ul", "li")
		case FeatureH2:
			p.AllowElements("h2")
		}
	}
	return &Policy{features: features, p: p}
}

func (p *Policy) Features() []Feature { return p.features }

func (p *Policy) Sanitize(raw string) string {
	return strings.TrimSpace(p.p.Sanitize(raw))
}

// PlainText возвращает текст без разметки, с раскрытыми HTML-сущностями.
func PlainText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(plain.Sanitize(raw)))
}

// IsEmpty — true, если в HTML нет видимого текста и нет встроенных объектов.
func IsEmpty(raw string) bool {
	if PlainText(raw) != "" {
		return false
	}
	return !strings.Contains(strings.ToLower(raw), "<embed")
}
