package richtext

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	nethtml "golang.org/x/net/html"
)

// ImageFormat описывает, как картинка, вставленная в rich text, превращается в <img>.
type ImageFormat struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Classname  string `json:"classname"`
	FilterSpec string `json:"filter_spec"`
}

// ImageToHTML рендерит картинку с id через rendition FilterSpec.
func (f ImageFormat) ImageToHTML(imageID int64, alt string) string {
	return fmt.Sprintf(`<img alt="%s" class="%s" src="/images/%d/%s/">`,
		html.EscapeString(alt), html.EscapeString(f.Classname), imageID, f.FilterSpec)
}

type Formats struct {
	mu    sync.RWMutex
	byKey map[string]ImageFormat
}

func NewFormats() *Formats {
	return &Formats{byKey: map[string]ImageFormat{}}
}

func DefaultFormats() *Formats {
	f := NewFormats()
	f.Register(ImageFormat{
		Name:       "thumbnail",
		Label:      "richtext-image thumbnail-150",
		Classname:  "fill-150x150",
		FilterSpec: "width-150",
	})
	return f
}

// Register добавляет или заменяет формат с тем же именем.
func (f *Formats) Register(format ImageFormat) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byKey[format.Name] = format
}

func (f *Formats) Get(name string) (ImageFormat, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	format, ok := f.byKey[name]
	return format, ok
}

func (f *Formats) List() []ImageFormat {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]ImageFormat, 0, len(f.byKey))
	for _, v := range f.byKey {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExpandEmbeds заменяет <embed embedtype="image" ...> на <img> по зарегистрированному формату.
// Неизвестный формат или битый id — embed выкидывается.
func (f *Formats) ExpandEmbeds(raw string) (string, error) {
	if !strings.Contains(raw, "<embed") {
		return raw, nil
	}

	var out bytes.Buffer
	z := nethtml.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		switch tt {
		case nethtml.ErrorToken:
			if z.Err() == io.EOF {
				return out.String(), nil
			}
			return "", z.Err()
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			rawTag := append([]byte(nil), z.Raw()...)
			tok := z.Token()
			if tok.Data != "embed" {
				out.Write(rawTag)
				continue
			}
			attrs := map[string]string{}
			for _, a := range tok.Attr {
				attrs[a.Key] = a.Val
			}
			if attrs["embedtype"] != "image" {
				continue
			}
			format, ok := f.Get(attrs["format"])
			if !ok {
				continue
			}
			id, err := strconv.ParseInt(attrs["id"], 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			out.WriteString(format.ImageToHTML(id, attrs["alt"]))
		default:
			out.Write(z.Raw())
		}
	}
}
