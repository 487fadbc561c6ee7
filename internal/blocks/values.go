package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type — тег типа блока в сохранённом JSON. Значения менять нельзя: по ним читаются старые документы.
type Type string

const (
	TypeText         Type = "text"
	TypeInfo         Type = "info"
	TypeFAQEntry     Type = "faq_entry"
	TypeFAQList      Type = "faq_list"
	TypeImage        Type = "image"
	TypeDocumentRef  Type = "document_ref"
	TypePageRef      Type = "page_ref"
	TypeAuthorRef    Type = "author_ref"
	TypeCarousel     Type = "carousel"
	TypeCallToAction Type = "call_to_action"
)

// Value — значение одного блока. Набор реализаций закрыт и совпадает с таблицей registry.
type Value interface {
	BlockType() Type
}

type Text string

func (Text) BlockType() Type { return TypeText }

// Info — статический блок без значения, хранится как null.
type Info struct{}

func (Info) BlockType() Type { return TypeInfo }

func (Info) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

type RichText string

type FAQEntry struct {
	Question string   `json:"question"`
	Answer   RichText `json:"answer"`
}

func (FAQEntry) BlockType() Type { return TypeFAQEntry }

// FAQItem.Legacy: запись хранится голым значением без id (старый формат).
type FAQItem struct {
	ID     string
	Entry  FAQEntry
	Legacy bool
}

// FAQList хранится либо списком значений (старый формат), либо списком
// {"type":"item","value":…,"id":…}. Формат запоминается для каждой записи,
// поэтому смешанный список пишется обратно без изменений.
type FAQList struct {
	Items []FAQItem
}

// Legacy сообщает, что весь список в старом формате.
func (l FAQList) Legacy() bool {
	if len(l.Items) == 0 {
		return false
	}
	for _, it := range l.Items {
		if !it.Legacy {
			return false
		}
	}
	return true
}

func (FAQList) BlockType() Type { return TypeFAQList }

type listItemJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
	ID    string          `json:"id,omitempty"`
}

func (l FAQList) MarshalJSON() ([]byte, error) {
	items := make([]any, 0, len(l.Items))
	for _, it := range l.Items {
		if it.Legacy {
			items = append(items, it.Entry)
			continue
		}
		raw, err := json.Marshal(it.Entry)
		if err != nil {
			return nil, err
		}
		items = append(items, listItemJSON{Type: "item", Value: raw, ID: it.ID})
	}
	return json.Marshal(items)
}

func (l *FAQList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	l.Items = make([]FAQItem, 0, len(raws))
	for i, raw := range raws {
		var item listItemJSON
		if err := json.Unmarshal(raw, &item); err == nil && item.Type == "item" && item.Value != nil {
			var e FAQEntry
			if err := json.Unmarshal(item.Value, &e); err != nil {
				return fmt.Errorf("faq item %d: %w", i, err)
			}
			l.Items = append(l.Items, FAQItem{ID: item.ID, Entry: e})
			continue
		}
		var e FAQEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("faq item %d: %w", i, err)
		}
		l.Items = append(l.Items, FAQItem{Entry: e, Legacy: true})
	}
	return nil
}

// Ссылки на объекты хранятся как id; пустая ссылка — null.

type ImageRef int64
type DocumentRef int64
type PageRef int64
type AuthorRef int64

func (ImageRef) BlockType() Type    { return TypeImage }
func (DocumentRef) BlockType() Type { return TypeDocumentRef }
func (PageRef) BlockType() Type     { return TypePageRef }
func (AuthorRef) BlockType() Type   { return TypeAuthorRef }

func refJSON(id int64) ([]byte, error) {
	if id == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(id)
}

func (r ImageRef) MarshalJSON() ([]byte, error)    { return refJSON(int64(r)) }
func (r DocumentRef) MarshalJSON() ([]byte, error) { return refJSON(int64(r)) }
func (r PageRef) MarshalJSON() ([]byte, error)     { return refJSON(int64(r)) }
func (r AuthorRef) MarshalJSON() ([]byte, error)   { return refJSON(int64(r)) }

type Quotation struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

const (
	CarouselImage     = "image"
	CarouselQuotation = "quotation"
)

// CarouselItem — либо картинка, либо цитата, в зависимости от Kind.
type CarouselItem struct {
	Kind      string
	ID        string
	Image     ImageRef
	Quotation Quotation
}

type Carousel struct {
	Items []CarouselItem
}

func (Carousel) BlockType() Type { return TypeCarousel }

func (c Carousel) MarshalJSON() ([]byte, error) {
	items := make([]listItemJSON, 0, len(c.Items))
	for _, it := range c.Items {
		var (
			raw []byte
			err error
		)
		switch it.Kind {
		case CarouselImage:
			raw, err = json.Marshal(it.Image)
		case CarouselQuotation:
			raw, err = json.Marshal(it.Quotation)
		default:
			err = fmt.Errorf("carousel: %w %q", ErrUnknownBlockType, it.Kind)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, listItemJSON{Type: it.Kind, Value: raw, ID: it.ID})
	}
	return json.Marshal(items)
}

func (c *Carousel) UnmarshalJSON(data []byte) error {
	var items []listItemJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.Items = make([]CarouselItem, 0, len(items))
	for i, it := range items {
		ci := CarouselItem{Kind: it.Type, ID: it.ID}
		switch it.Type {
		case CarouselImage:
			var id *int64
			if err := json.Unmarshal(it.Value, &id); err != nil {
				return fmt.Errorf("carousel item %d: %w", i, err)
			}
			if id != nil {
				ci.Image = ImageRef(*id)
			}
		case CarouselQuotation:
			if err := json.Unmarshal(it.Value, &ci.Quotation); err != nil {
				return fmt.Errorf("carousel item %d: %w", i, err)
			}
		default:
			return fmt.Errorf("carousel item %d: %w %q", i, ErrUnknownBlockType, it.Type)
		}
		c.Items = append(c.Items, ci)
	}
	return nil
}

type CallToAction struct {
	Text       RichText `json:"text"`
	Page       PageRef  `json:"page"`
	ButtonText string   `json:"button_text"`
}

func (CallToAction) BlockType() Type { return TypeCallToAction }

type Unit struct {
	ID    string
	Value Value
}

func (u Unit) Type() Type { return u.Value.BlockType() }

type unitJSON struct {
	Type  Type            `json:"type"`
	Value json.RawMessage `json:"value"`
	ID    string          `json:"id,omitempty"`
}

func (u Unit) MarshalJSON() ([]byte, error) {
	if u.Value == nil {
		return nil, fmt.Errorf("block %q has no value", u.ID)
	}
	raw, err := json.Marshal(u.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(unitJSON{Type: u.Type(), Value: raw, ID: u.ID})
}

func (u *Unit) UnmarshalJSON(data []byte) error {
	var uj unitJSON
	if err := json.Unmarshal(data, &uj); err != nil {
		return err
	}
	def, ok := Lookup(uj.Type)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownBlockType, uj.Type)
	}
	raw := uj.Value
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("null")
	}
	v, err := def.decode(raw)
	if err != nil {
		return fmt.Errorf("block %s: %w", uj.Type, err)
	}
	u.ID = uj.ID
	u.Value = v
	return nil
}
