// Package i18n resolves failure message keys into human-readable text.
package i18n

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	picfield "github.com/reoring/picfield"
)

// Translator retrieves localized messages for message keys.
// data provides optional parameters substituted into "{name}" placeholders
// (for example "picture" or "position").
type Translator interface {
	Message(key string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"validation.required":           "{field} is required",
		"validation.pattern":            "{field} must match picture {picture} (position {position})",
		"validation.numeric":            "{field} must be numeric",
		"validation.invalid_format":     "{field} has an invalid format",
		"validation.overflow":           "{field} does not fit in {max} digits",
		"validation.business_rule":      "{field} is inconsistent with related fields",
		"validation.rule_error":         "{field} could not be validated",
		"validation.zero_width_picture": "picture {picture} of {field} matches only empty text",
		"validation.picture_width":      "picture {picture} of {field} is {width} wide, field holds {length}",
		"validation.too_long":           "{field} exceeds {max} characters",
	},
	"ja": {
		"validation.required":           "{field} は必須です",
		"validation.pattern":            "{field} はピクチャ {picture} に一致しません (位置 {position})",
		"validation.numeric":            "{field} は数字で入力してください",
		"validation.invalid_format":     "{field} の形式が不正です",
		"validation.overflow":           "{field} は {max} 桁に収まりません",
		"validation.business_rule":      "{field} が関連項目と整合しません",
		"validation.rule_error":         "{field} を検証できませんでした",
		"validation.zero_width_picture": "{field} のピクチャ {picture} は空文字にしか一致しません",
		"validation.picture_width":      "{field} のピクチャ {picture} は {width} 桁ですが項目長は {length} です",
		"validation.too_long":           "{field} は {max} 文字以内で入力してください",
	},
}

func (t dictTranslator) Message(key string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][key]
	if !ok {
		return key
	}
	return expand(msg, data)
}

// expand replaces {name} placeholders with data values. Unknown placeholders
// are left in place.
func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// Languages lists the built-in dictionary languages.
func Languages() []string {
	out := make([]string, 0, len(dictionaries))
	for k := range dictionaries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given key using the current Translator.
func T(key string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(key, data)
}

// Failure renders f with the current Translator. The failure's params and its
// field are available as placeholders. A failure without a message key falls
// back to "validation.<code>".
func Failure(f picfield.ValidationFailure) string {
	data := make(map[string]string, len(f.Params)+1)
	for k, v := range f.Params {
		data[k] = fmt.Sprint(v)
	}
	data["field"] = f.Field
	key := f.Message
	if key == "" {
		key = "validation." + f.Code
	}
	return T(key, data)
}
