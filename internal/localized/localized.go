// Package localized holds short texts translated in a fixed set of languages,
// and the rules picking one of them for a given locale.
package localized

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrMissingEnglish is returned when decoding a text without its mandatory english translation.
var ErrMissingEnglish = errors.New(`localized text is missing its "en" translation`)

// ErrKeyCase is returned when a translation key differs from a known language code only by its case.
var ErrKeyCase = errors.New("language code with invalid case")

// Text is a string translated in several languages. English is mandatory and is the fallback
// for any language without a translation.
type Text struct {
	EN     string  `json:"en"`
	DE     *string `json:"de,omitempty"`
	ES     *string `json:"es,omitempty"`
	FR     *string `json:"fr,omitempty"`
	IT     *string `json:"it,omitempty"`
	JA     *string `json:"ja,omitempty"`
	KO     *string `json:"ko,omitempty"`
	NL     *string `json:"nl,omitempty"`
	PT     *string `json:"pt,omitempty"`
	NO     *string `json:"no,omitempty"`
	TH     *string `json:"th,omitempty"`
	TR     *string `json:"tr,omitempty"`
	VI     *string `json:"vi,omitempty"`
	SV     *string `json:"sv,omitempty"`
	FI     *string `json:"fi,omitempty"`
	RU     *string `json:"ru,omitempty"`
	ZHHans *string `json:"zh-Hans,omitempty"`
	ZHHant *string `json:"zh-Hant,omitempty"`
}

// New returns a Text with only its english translation set.
func New(en string) Text {
	return Text{EN: en}
}

// S returns a pointer to s, to fill optional translations in literals.
func S(s string) *string {
	return &s
}

// UnmarshalJSON decodes a sparse translation object. Unknown keys are ignored, "en" is required.
// Language codes are matched with their exact case.
func (t *Text) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	known := append([]string{"en"}, codes...)
	for k := range keys {
		for _, code := range known {
			if k != code && strings.EqualFold(k, code) {
				return fmt.Errorf("%w: %q instead of %q", ErrKeyCase, k, code)
			}
		}
	}

	type plain Text
	var raw struct {
		plain
		EN *string `json:"en"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.EN == nil {
		return ErrMissingEnglish
	}

	*t = Text(raw.plain)
	t.EN = *raw.EN
	return nil
}

// Equal reports whether both texts hold exactly the same translations.
func (t Text) Equal(other Text) bool {
	if t.EN != other.EN {
		return false
	}
	for _, code := range codes {
		a, b := t.field(code), other.field(code)
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && *a != *b {
			return false
		}
	}
	return true
}

// Languages returns the codes of the languages with a translation, english first.
func (t Text) Languages() []string {
	langs := []string{"en"}
	for _, code := range codes {
		if t.field(code) != nil {
			langs = append(langs, code)
		}
	}
	return langs
}

// Resolve returns the translation matching locale, falling back to english.
//
// locale is a BCP 47 tag or a POSIX-like identifier (e.g. "pt_BR"). An explicit chinese script
// wins over the region, which wins over the simplified chinese default.
func (t Text) Resolve(locale string) string {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return t.EN
	}

	base, _ := tag.Base()
	code := base.String()
	if code == "zh" {
		code = chineseVariant(tag)
	}

	switch code {
	case "nb", "nn":
		code = "no"
	case "en":
		return t.EN
	}

	if v := t.field(code); v != nil {
		return *v
	}
	return t.EN
}

// chineseVariant returns the translation key for a chinese tag.
func chineseVariant(tag language.Tag) string {
	if script, conf := tag.Script(); conf == language.Exact {
		switch script.String() {
		case "Hant":
			return "zh-Hant"
		case "Hans":
			return "zh-Hans"
		}
	}

	if region, conf := tag.Region(); conf == language.Exact {
		switch region.String() {
		case "HK", "TW", "MO":
			return "zh-Hant"
		}
	}
	return "zh-Hans"
}

// codes lists the optional translations, in declaration order.
var codes = []string{"de", "es", "fr", "it", "ja", "ko", "nl", "pt", "no", "th", "tr", "vi", "sv", "fi", "ru", "zh-Hans", "zh-Hant"}

func (t *Text) field(code string) *string {
	switch code {
	case "de":
		return t.DE
	case "es":
		return t.ES
	case "fr":
		return t.FR
	case "it":
		return t.IT
	case "ja":
		return t.JA
	case "ko":
		return t.KO
	case "nl":
		return t.NL
	case "pt":
		return t.PT
	case "no":
		return t.NO
	case "th":
		return t.TH
	case "tr":
		return t.TR
	case "vi":
		return t.VI
	case "sv":
		return t.SV
	case "fi":
		return t.FI
	case "ru":
		return t.RU
	case "zh-Hans":
		return t.ZHHans
	case "zh-Hant":
		return t.ZHHant
	}
	return nil
}
