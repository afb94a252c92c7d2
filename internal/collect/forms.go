package collect

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/privacygrade/internal/model"
)

// sensitiveKeywords mark a form field as collecting personal data.
// Keywords of three letters or fewer must match a whole word, so "age"
// does not match "message".
var sensitiveKeywords = []string{
	"ssn", "social", "phone", "mobile", "address", "birthday", "birth",
	"age", "income", "salary", "credit", "card", "passport", "license",
}

// ignoredInputTypes never collect user data.
var ignoredInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

// formSignal counts the fields of every form in the document.
func formSignal(doc *goquery.Document) model.FormSignal {
	var forms model.FormSignal
	doc.Find("form").Find("input, select, textarea").Each(func(_ int, field *goquery.Selection) {
		if goquery.NodeName(field) == "input" && ignoredInputTypes[strings.ToLower(field.AttrOr("type", "text"))] {
			return
		}
		forms.Fields++
		if isSensitiveField(field) {
			forms.Sensitive++
		}
	})
	return forms
}

func isSensitiveField(field *goquery.Selection) bool {
	text := strings.ToLower(strings.Join([]string{
		field.AttrOr("name", ""),
		field.AttrOr("id", ""),
		field.AttrOr("placeholder", ""),
		field.AttrOr("autocomplete", ""),
	}, " "))
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, kw := range sensitiveKeywords {
		for _, w := range words {
			if w == kw || (len(kw) > 3 && strings.Contains(w, kw)) {
				return true
			}
		}
	}
	return false
}
