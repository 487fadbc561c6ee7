package blocks

import (
	"strings"
	"unicode/utf8"

	"blogsite/internal/richtext"
)

const (
	textMinLength       = 2
	textMaxLength       = 15
	faqListMinNum       = 1
	faqListMaxNum       = 5
	buttonTextMaxLength = 100
)

// у FAQ и CTA в редакторе только жирный и курсив
var inlinePolicy = richtext.NewPolicy(richtext.FeatureBold, richtext.FeatureItalic)

func containsWordpress(s string) bool {
	return strings.Contains(strings.ToLower(s), "wordpress")
}

func minNumError(n int) error {
	return NewFieldError("The minimum number of items is %d", n)
}

func maxNumError(n int) error {
	return NewFieldError("The maximum number of items is %d", n)
}

// CleanText — необязательный текст длиной 2–15 символов без слова wordpress.
func CleanText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return s, nil
	}
	n := utf8.RuneCountInString(s)
	if n < textMinLength {
		return s, NewFieldError("Ensure this value has at least %d characters (it has %d).", textMinLength, n)
	}
	if n > textMaxLength {
		return s, NewFieldError("Ensure this value has at most %d characters (it has %d).", textMaxLength, n)
	}
	if containsWordpress(s) {
		return s, &FieldValidationError{Message: MsgWordpress}
	}
	return s, nil
}

func cleanText(v Value) (Value, error) {
	s, err := CleanText(string(v.(Text)))
	if err != nil {
		return nil, err
	}
	return Text(s), nil
}

// CleanFAQEntry проверяет только обязательные поля.
func CleanFAQEntry(e FAQEntry) (FAQEntry, error) {
	errs := &StructuredValidationError{}
	out := FAQEntry{
		Question: strings.TrimSpace(e.Question),
		Answer:   RichText(inlinePolicy.Sanitize(string(e.Answer))),
	}
	if out.Question == "" {
		errs.Add("question", &FieldValidationError{Message: MsgRequired})
	}
	if richtext.IsEmpty(string(out.Answer)) {
		errs.Add("answer", &FieldValidationError{Message: MsgRequired})
	}
	return out, errs.ErrOrNil()
}

func cleanFAQEntryValue(v Value) (Value, error) {
	e, err := CleanFAQEntry(v.(FAQEntry))
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CleanFAQList проверяет 1–5 записей и собирает ошибки всех записей сразу.
func CleanFAQList(l FAQList) (FAQList, error) {
	errs := &StructuredValidationError{}
	out := FAQList{Items: make([]FAQItem, 0, len(l.Items))}

	for i, item := range l.Items {
		entry, err := CleanFAQEntry(item.Entry)
		if err != nil {
			errs.Add(IndexKey(i), err)
			continue
		}
		if containsWordpress(richtext.PlainText(string(entry.Answer))) {
			errs.Add(IndexKey(i), &FieldValidationError{Message: MsgWordpress})
			continue
		}
		out.Items = append(out.Items, FAQItem{ID: item.ID, Entry: entry, Legacy: item.Legacy})
	}

	if len(l.Items) < faqListMinNum {
		errs.AddNonField(minNumError(faqListMinNum))
	}
	if len(l.Items) > faqListMaxNum {
		errs.AddNonField(maxNumError(faqListMaxNum))
	}
	if err := errs.ErrOrNil(); err != nil {
		return l, err
	}
	return out, nil
}

func cleanFAQList(v Value) (Value, error) {
	l, err := CleanFAQList(v.(FAQList))
	if err != nil {
		return nil, err
	}
	return l, nil
}

func cleanRef(v Value) (Value, error) {
	var id int64
	switch r := v.(type) {
	case ImageRef:
		id = int64(r)
	case DocumentRef:
		id = int64(r)
	case PageRef:
		id = int64(r)
	case AuthorRef:
		id = int64(r)
	}
	if id <= 0 {
		return nil, &FieldValidationError{Message: MsgRequired}
	}
	return v, nil
}

// CleanCarousel: сначала поля элементов, затем наличие и равное число картинок и цитат.
func CleanCarousel(c Carousel) (Carousel, error) {
	errs := &StructuredValidationError{}
	out := Carousel{Items: make([]CarouselItem, 0, len(c.Items))}
	var images, quotations []CarouselItem

	for i, it := range c.Items {
		switch it.Kind {
		case CarouselImage:
			if it.Image <= 0 {
				errs.Add(IndexKey(i), &FieldValidationError{Message: MsgRequired})
				continue
			}
			images = append(images, it)
		case CarouselQuotation:
			q := Quotation{Text: strings.TrimSpace(it.Quotation.Text), Author: strings.TrimSpace(it.Quotation.Author)}
			qErrs := &StructuredValidationError{}
			if q.Text == "" {
				qErrs.Add("text", &FieldValidationError{Message: MsgRequired})
			}
			if q.Author == "" {
				qErrs.Add("author", &FieldValidationError{Message: MsgRequired})
			}
			if err := qErrs.ErrOrNil(); err != nil {
				errs.Add(IndexKey(i), err)
				continue
			}
			it.Quotation = q
			quotations = append(quotations, it)
		default:
			errs.Add(IndexKey(i), &FieldValidationError{Message: MsgNotAllowed})
			continue
		}
		out.Items = append(out.Items, it)
	}
	if err := errs.ErrOrNil(); err != nil {
		return c, err
	}

	if len(images) == 0 || len(quotations) == 0 {
		return c, &FieldValidationError{Message: MsgCarouselBoth}
	}
	if len(images) != len(quotations) {
		return c, &FieldValidationError{Message: MsgCarouselEq}
	}
	return out, nil
}

func cleanCarousel(v Value) (Value, error) {
	c, err := CleanCarousel(v.(Carousel))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CleanCallToAction требует текст и страницу; button_text необязателен.
func CleanCallToAction(c CallToAction) (CallToAction, error) {
	errs := &StructuredValidationError{}
	out := CallToAction{
		Text:       RichText(inlinePolicy.Sanitize(string(c.Text))),
		Page:       c.Page,
		ButtonText: strings.TrimSpace(c.ButtonText),
	}
	if richtext.IsEmpty(string(out.Text)) {
		errs.Add("text", &FieldValidationError{Message: MsgRequired})
	}
	if out.Page <= 0 {
		errs.Add("page", &FieldValidationError{Message: MsgRequired})
	}
	if n := utf8.RuneCountInString(out.ButtonText); n > buttonTextMaxLength {
		errs.Add("button_text", NewFieldError("Ensure this value has at most %d characters (it has %d).", buttonTextMaxLength, n))
	}
	if err := errs.ErrOrNil(); err != nil {
		return c, err
	}
	return out, nil
}

func cleanCallToAction(v Value) (Value, error) {
	c, err := CleanCallToAction(v.(CallToAction))
	if err != nil {
		return nil, err
	}
	return c, nil
}
