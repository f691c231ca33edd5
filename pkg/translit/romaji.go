package translit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/japaniel/medterm/pkg/dictionary"
)

// digraphs are two-kana syllables; checked before single kana.
var digraphs = map[string]string{
	"きゃ": "kya", "きゅ": "kyu", "きょ": "kyo",
	"しゃ": "sha", "しゅ": "shu", "しょ": "sho", "しぇ": "she",
	"ちゃ": "cha", "ちゅ": "chu", "ちょ": "cho", "ちぇ": "che",
	"にゃ": "nya", "にゅ": "nyu", "にょ": "nyo",
	"ひゃ": "hya", "ひゅ": "hyu", "ひょ": "hyo",
	"みゃ": "mya", "みゅ": "myu", "みょ": "myo",
	"りゃ": "rya", "りゅ": "ryu", "りょ": "ryo",
	"ぎゃ": "gya", "ぎゅ": "gyu", "ぎょ": "gyo",
	"じゃ": "ja", "じゅ": "ju", "じょ": "jo", "じぇ": "je",
	"ぢゃ": "ja", "ぢゅ": "ju", "ぢょ": "jo",
	"びゃ": "bya", "びゅ": "byu", "びょ": "byo",
	"ぴゃ": "pya", "ぴゅ": "pyu", "ぴょ": "pyo",
	"ふぁ": "fa", "ふぃ": "fi", "ふぇ": "fe", "ふぉ": "fo",
	"てぃ": "ti", "でぃ": "di", "とぅ": "tu", "どぅ": "du",
	"うぃ": "wi", "うぇ": "we", "うぉ": "wo",
	"ゔぁ": "va", "ゔぃ": "vi", "ゔぇ": "ve", "ゔぉ": "vo",
}

var monographs = map[rune]string{
	'あ': "a", 'い': "i", 'う': "u", 'え': "e", 'お': "o",
	'か': "ka", 'き': "ki", 'く': "ku", 'け': "ke", 'こ': "ko",
	'さ': "sa", 'し': "shi", 'す': "su", 'せ': "se", 'そ': "so",
	'た': "ta", 'ち': "chi", 'つ': "tsu", 'て': "te", 'と': "to",
	'な': "na", 'に': "ni", 'ぬ': "nu", 'ね': "ne", 'の': "no",
	'は': "ha", 'ひ': "hi", 'ふ': "fu", 'へ': "he", 'ほ': "ho",
	'ま': "ma", 'み': "mi", 'む': "mu", 'め': "me", 'も': "mo",
	'や': "ya", 'ゆ': "yu", 'よ': "yo",
	'ら': "ra", 'り': "ri", 'る': "ru", 'れ': "re", 'ろ': "ro",
	'わ': "wa", 'ゐ': "i", 'ゑ': "e", 'を': "o", 'ん': "n",
	'が': "ga", 'ぎ': "gi", 'ぐ': "gu", 'げ': "ge", 'ご': "go",
	'ざ': "za", 'じ': "ji", 'ず': "zu", 'ぜ': "ze", 'ぞ': "zo",
	'だ': "da", 'ぢ': "ji", 'づ': "zu", 'で': "de", 'ど': "do",
	'ば': "ba", 'び': "bi", 'ぶ': "bu", 'べ': "be", 'ぼ': "bo",
	'ぱ': "pa", 'ぴ': "pi", 'ぷ': "pu", 'ぺ': "pe", 'ぽ': "po",
	'ゔ': "vu",
	'ぁ': "a", 'ぃ': "i", 'ぅ': "u", 'ぇ': "e", 'ぉ': "o",
	'ゃ': "ya", 'ゅ': "yu", 'ょ': "yo", 'ゎ': "wa",
	'ー': "-",
}

// UnromanizableError reports a rune with no latin spelling.
type UnromanizableError struct {
	Rune rune
}

func (e *UnromanizableError) Error() string {
	return fmt.Sprintf("cannot romanize %q", e.Rune)
}

// Romanize spells kana in modified Hepburn. Katakana is folded to hiragana
// first; the prolonged sound mark becomes "-" and ASCII passes through.
// Any other rune (an unread ideograph, say) is an error.
func Romanize(kana string) (string, error) {
	runes := []rune(dictionary.ToHiragana(kana))
	var b strings.Builder
	geminate := false

	for i := 0; i < len(runes); {
		var syl string
		width := 1
		if i+1 < len(runes) {
			if d, ok := digraphs[string(runes[i:i+2])]; ok {
				syl, width = d, 2
			}
		}
		if syl == "" {
			r := runes[i]
			switch {
			case r == 'っ':
				geminate = true
				i++
				continue
			case r <= unicode.MaxASCII:
				syl = string(r)
			default:
				m, ok := monographs[r]
				if !ok {
					return "", &UnromanizableError{Rune: r}
				}
				syl = m
			}
		}

		if geminate {
			b.WriteString(doubled(syl))
			geminate = false
		}
		b.WriteString(syl)
		i += width
	}
	return b.String(), nil
}

// doubled returns the consonant written before syl for a small tsu.
func doubled(syl string) string {
	if strings.HasPrefix(syl, "ch") {
		return "t"
	}
	c := syl[0]
	if strings.IndexByte("aiueo-n ", c) >= 0 {
		return ""
	}
	return string(c)
}
