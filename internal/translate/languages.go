package translate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto asks the provider to detect the source language.
const Auto = "auto"

var supported = []language.Tag{
	language.English, language.Russian, language.Romanian, language.Ukrainian,
	language.German, language.French, language.Spanish, language.Italian,
	language.Portuguese, language.Polish, language.Turkish, language.Chinese,
	language.Japanese, language.Korean, language.Arabic, language.Hindi,
	language.Dutch, language.Swedish, language.Czech, language.Greek,
	language.Hebrew, language.Hungarian, language.Finnish, language.Danish,
	language.Norwegian, language.Bulgarian, language.Serbian, language.Croatian,
	language.Slovak, language.Slovenian, language.Lithuanian, language.Latvian,
	language.Estonian, language.Indonesian, language.Vietnamese, language.Thai,
	language.Persian, language.Azerbaijani, language.Georgian, language.Armenian,
	language.Kazakh, language.Make("be"),
}

// Resolver maps user supplied language hints to ISO 639-1 codes. It accepts
// codes ("ru", "pt-BR"), English names ("Russian") and native names ("Русский").
type Resolver struct {
	names map[string]string
	known map[string]struct{}
}

// NewResolver builds the name index once.
func NewResolver() *Resolver {
	r := &Resolver{names: map[string]string{}, known: map[string]struct{}{}}
	english := display.English.Languages()
	for _, tag := range supported {
		code := baseCode(tag)
		r.known[code] = struct{}{}
		r.add(english.Name(tag), code)
		r.add(display.Self.Name(tag), code)
	}
	return r
}

func (r *Resolver) add(name, code string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" {
		r.names[name] = code
	}
}

// Resolve returns the code for hint. Auto is accepted only when allowAuto is set.
func (r *Resolver) Resolve(hint string, allowAuto bool) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return "", false
	}
	if h == Auto {
		return Auto, allowAuto
	}
	if code, ok := r.names[h]; ok {
		return code, true
	}
	tag, err := language.Parse(h)
	if err != nil {
		return "", false
	}
	code := baseCode(tag)
	if _, ok := r.known[code]; !ok {
		return "", false
	}
	return code, true
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
