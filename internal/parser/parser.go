// Package parser turns loosely structured log-bot text into structured
// inventory transactions or task-XP submissions. The upstream logging bot is
// inconsistent and partially localized (English, transliterated Persian and
// Persian script all appear), so every extraction runs as an ordered chain of
// fallbacks where the first structurally valid match wins.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Action is an inventory transaction direction
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Kind distinguishes the two record shapes a log message can produce
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindXP          Kind = "xp"
)

// XPType is the task system an XP submission belongs to
type XPType string

const (
	XPDrug XPType = "drug"
	XPGang XPType = "gang"
)

// Placeholders used when a name cannot be extracted
const (
	UnknownIC       = "UnknownIC"
	UnknownOOC      = "UnknownOOC"
	UnknownXPPlayer = "Unknown Player"
)

// Config is the static input to a parse: the tracked item names, an optional
// action determined upstream from an embed title, and the message author used
// as the OOC fallback.
type Config struct {
	TrackedItems []string
	ActionHint   Action
	AuthorName   string
}

// Record is the parser's output. Kind selects which fields are meaningful.
type Record struct {
	Kind Kind

	// Transaction fields
	Action   Action
	ItemName string
	Quantity int

	// XP fields
	XPType   XPType
	XPAmount int

	ICPlayerName  string
	OOCPlayerName string
}

// Action markers. "Bardasht" = remove, "Gozashtan" = add.
var (
	removeFuzzyRe = regexp.MustCompile(`(?i)bardasht|برداشت|remove|take|pickup|برداشتن|برداشته`)
	addFuzzyRe    = regexp.MustCompile(`(?i)gozashtan|گذاشت|add|put|place|drop|گذاشتن|گذاشته`)

	itemWordRe   = regexp.MustCompile(`(?i)item|آیتم`)
	removeNearRe = regexp.MustCompile(`(?i)bardasht|برداشت|remove|take`)
	addNearRe    = regexp.MustCompile(`(?i)gozashtan|گذاشت|add|put`)
)

// Item + quantity patterns, strictest first
var (
	itemStrictRe   = regexp.MustCompile(`(?i)Item\s*:\s*([A-Za-z0-9_]+)(?:\(|\s*\()(\d+)(?:\)|\s*\))`)
	itemFlexRe     = regexp.MustCompile(`(?i)Item\s*:\s*([A-Za-z0-9_]+)[\s()]*(\d+)[\s()]*`)
	itemNameOnlyRe = regexp.MustCompile(`(?i)Item\s*:\s*([A-Za-z0-9_]+)`)
	qtyParenRe     = regexp.MustCompile(`\((\d+)\)`)
	bareNumberRe   = regexp.MustCompile(`\b(\d+)\b`)
)

// Known drug names followed directly by a number
var drugNumberPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"cocaine", regexp.MustCompile(`(?i)cocaine\s*(\d+)`)},
	{"crack", regexp.MustCompile(`(?i)crack\s*(\d+)`)},
	{"marijuana", regexp.MustCompile(`(?i)marijuana\s*(\d+)`)},
	{"ghaarch", regexp.MustCompile(`(?i)ghaarch\s*(\d+)`)},
	{"shishe", regexp.MustCompile(`(?i)shishe\s*(\d+)`)},
	{"kheshab", regexp.MustCompile(`(?i)kheshab\s*(\d+)`)},
}

// Player name patterns, strictest first
var (
	icLabeledRe = regexp.MustCompile(`(?i)Esm\s*IC\s*Player\s*:\s*([A-Za-z0-9_]+)`)
	icLooseRe   = regexp.MustCompile(`(?i)(?:Esm\s*IC|IC\s*Player|IC)\s*[:.]\s*([A-Za-z0-9_]+)`)
	icBareRe    = regexp.MustCompile(`(?i)\bIC\b[^A-Za-z0-9_]*([A-Za-z0-9_]+)`)

	oocLabeledRe = regexp.MustCompile(`(?i)Esm\s*OOC\s*Player\s*:\s*([A-Za-z0-9_]+)`)
	oocLooseRe   = regexp.MustCompile(`(?i)(?:Esm\s*OOC|OOC\s*Player|OOC)\s*[:.]\s*([A-Za-z0-9_]+)`)
	oocBareRe    = regexp.MustCompile(`(?i)\bOOC\b[^A-Za-z0-9_]*([A-Za-z0-9_]+)`)

	capTokenRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)
)

// XP submission patterns
var (
	xpModelRe    = regexp.MustCompile(`(?i)XP\s*Model\s*:\s*([^\r\n]+)`)
	xpAmountRe   = regexp.MustCompile(`(?i)Meghdar\s*:\s*(\d+)`)
	xpICPlayerRe = regexp.MustCompile(`(?i)Esm\s*IC\s*Player\s*:\s*([^\r\n]+)`)
	xpOOCRe      = regexp.MustCompile(`(?i)Esm\s*OOC\s*Player\s*:\s*([^\r\n]+)`)
)

// Aliases mapped to canonical in-game names
var itemAliases = map[string]string{
	"cocaine":   "Cocaine",
	"crack":     "Crack",
	"marijuana": "Marijuana",
	"ghaarch":   "Ghaarch",
	"mushroom":  "Ghaarch", // English alias
	"shishe":    "Shishe",
	"meth":      "Shishe", // English alias
}

// Words the bare capitalized-token scan must never mistake for a player name
var nameStopwords = map[string]bool{
	"bardasht": true, "gozashtan": true, "remove": true, "add": true,
	"take": true, "put": true, "place": true, "drop": true, "pickup": true,
	"item": true, "items": true, "log": true, "logs": true, "system": true,
	"inventory": true, "esm": true, "player": true, "etelaat": true,
}

// Parse converts raw log text into a Record, or nil when the text is not a
// recognizable log message. A nil result is the normal outcome for unrelated
// chat, never an error.
func Parse(content string, cfg Config) *Record {
	lower := strings.ToLower(content)

	// XP task logs take priority over inventory transactions
	if strings.Contains(content, "Use XP") ||
		(strings.Contains(lower, "xp") && strings.Contains(lower, "task")) {
		return parseXP(content, lower)
	}

	action, exactPhrase, ok := detectAction(content, lower, cfg.ActionHint)
	if !ok {
		return nil
	}

	// Unless the source was an embed (action came from a title hint, or the
	// body is empty) or the action phrase itself marks a log line, require a
	// generic log tag so random chat never matches.
	isEmbed := cfg.ActionHint != "" || content == ""
	if !isEmbed && !exactPhrase && !hasLogTag(content) {
		return nil
	}

	// Empty embed body with a title-derived action: fall back to the first
	// tracked item with quantity 1.
	if content == "" && cfg.ActionHint != "" && len(cfg.TrackedItems) > 0 {
		ooc := cfg.AuthorName
		if ooc == "" {
			ooc = UnknownOOC
		}
		return &Record{
			Kind:          KindTransaction,
			Action:        cfg.ActionHint,
			ItemName:      cfg.TrackedItems[0],
			Quantity:      1,
			ICPlayerName:  UnknownIC,
			OOCPlayerName: ooc,
		}
	}

	rawName, qty, ok := extractItem(content, lower, cfg.TrackedItems)
	if !ok {
		return nil
	}

	itemName := normalizeItemName(rawName)
	if !isTracked(itemName, cfg.TrackedItems) {
		return nil
	}

	return &Record{
		Kind:          KindTransaction,
		Action:        action,
		ItemName:      itemName,
		Quantity:      qty,
		ICPlayerName:  extractICPlayer(content, cfg.TrackedItems),
		OOCPlayerName: extractOOCPlayer(content, cfg.AuthorName),
	}
}

// detectAction resolves the transaction direction. The hint from an embed
// title always wins; otherwise exact phrases, then fuzzy synonyms. When both
// directions fire, the marker appearing earliest in the text wins; a dead
// tie rejects the message. The second return reports whether an exact
// "Bardasht Item"/"Gozashtan Item" phrase matched, which doubles as a log
// format marker.
func detectAction(content, lower string, hint Action) (Action, bool, bool) {
	if hint == ActionAdd || hint == ActionRemove {
		return hint, false, true
	}

	isRemove := strings.Contains(content, "Bardasht Item")
	isAdd := strings.Contains(content, "Gozashtan Item")
	exactPhrase := isRemove || isAdd

	if !isRemove && !isAdd {
		isRemove = removeFuzzyRe.MatchString(content)
		isAdd = addFuzzyRe.MatchString(content)

		// "item" within three words of an action word is a stronger signal
		words := strings.Fields(lower)
		for i, w := range words {
			if !itemWordRe.MatchString(w) {
				continue
			}
			lo := max(0, i-3)
			hi := min(len(words), i+3)
			nearby := strings.Join(words[lo:hi], " ")
			if removeNearRe.MatchString(nearby) {
				isRemove = true
			}
			if addNearRe.MatchString(nearby) {
				isAdd = true
			}
		}
	}

	switch {
	case !isRemove && !isAdd:
		return "", false, false
	case isRemove && isAdd:
		removeIdx := firstMatchIndex(removeFuzzyRe, content)
		addIdx := firstMatchIndex(addFuzzyRe, content)
		if removeIdx < addIdx {
			return ActionRemove, exactPhrase, true
		}
		if addIdx < removeIdx {
			return ActionAdd, exactPhrase, true
		}
		// Cannot tell which action is meant
		return "", false, false
	case isRemove:
		return ActionRemove, exactPhrase, true
	default:
		return ActionAdd, exactPhrase, true
	}
}

func firstMatchIndex(re *regexp.Regexp, s string) int {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return len(s) + 1
	}
	return loc[0]
}

func hasLogTag(content string) bool {
	return strings.Contains(content, "Log System") ||
		strings.Contains(content, "Etelaat:") ||
		strings.Contains(content, "لاگ") ||
		strings.Contains(content, "log") ||
		strings.Contains(content, "inventory")
}

// itemExtractor is one stage of the item+quantity fallback chain
type itemExtractor func(content, lower string, tracked []string) (string, int, bool)

var itemExtractors = []itemExtractor{
	extractItemStrict,
	extractItemFlexible,
	extractItemSplit,
	extractItemDrugNumber,
	extractItemNearbyNumber,
	extractItemAssumeOne,
}

func extractItem(content, lower string, tracked []string) (string, int, bool) {
	for _, extract := range itemExtractors {
		if name, qty, ok := extract(content, lower, tracked); ok {
			return name, qty, true
		}
	}
	return "", 0, false
}

// Item: Name(qty)
func extractItemStrict(content, _ string, _ []string) (string, int, bool) {
	return matchNameQty(itemStrictRe, content)
}

// Item: Name with the number loosely placed
func extractItemFlexible(content, _ string, _ []string) (string, int, bool) {
	return matchNameQty(itemFlexRe, content)
}

// Item: Name anywhere plus any (number) anywhere
func extractItemSplit(content, _ string, _ []string) (string, int, bool) {
	nameMatch := itemNameOnlyRe.FindStringSubmatch(content)
	qtyMatch := qtyParenRe.FindStringSubmatch(content)
	if nameMatch == nil || qtyMatch == nil {
		return "", 0, false
	}
	qty, err := strconv.Atoi(qtyMatch[1])
	if err != nil {
		return "", 0, false
	}
	return nameMatch[1], qty, true
}

// A literal known drug name immediately followed by a number
func extractItemDrugNumber(content, _ string, _ []string) (string, int, bool) {
	for _, dp := range drugNumberPatterns {
		if m := dp.re.FindStringSubmatch(content); m != nil {
			qty, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return dp.name, qty, true
		}
	}
	return "", 0, false
}

// Any tracked item name with the nearest bare integer inside a 20-character
// window around its occurrence
func extractItemNearbyNumber(content, lower string, tracked []string) (string, int, bool) {
	for _, item := range tracked {
		idx := strings.Index(lower, strings.ToLower(item))
		if idx < 0 {
			continue
		}
		lo := max(0, idx-20)
		hi := min(len(content), idx+20)
		if m := bareNumberRe.FindStringSubmatch(content[lo:hi]); m != nil {
			qty, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return item, qty, true
		}
	}
	return "", 0, false
}

// Last resort: a tracked item mentioned with no discoverable quantity means 1
func extractItemAssumeOne(_, lower string, tracked []string) (string, int, bool) {
	for _, item := range tracked {
		if strings.Contains(lower, strings.ToLower(item)) {
			return item, 1, true
		}
	}
	return "", 0, false
}

func matchNameQty(re *regexp.Regexp, content string) (string, int, bool) {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return "", 0, false
	}
	qty, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(m[1]), qty, true
}

// normalizeItemName maps aliases to canonical names and title-cases the rest
func normalizeItemName(raw string) string {
	if canonical, ok := itemAliases[strings.ToLower(raw)]; ok {
		return canonical
	}
	if raw == "" {
		return raw
	}
	return strings.ToUpper(raw[:1]) + strings.ToLower(raw[1:])
}

func isTracked(name string, tracked []string) bool {
	for _, item := range tracked {
		if strings.EqualFold(item, name) {
			return true
		}
	}
	return false
}

// extractICPlayer runs the IC name cascade: explicit label, looser label,
// bare "IC" token, then any capitalized token that is not a known keyword.
func extractICPlayer(content string, tracked []string) string {
	for _, re := range []*regexp.Regexp{icLabeledRe, icLooseRe, icBareRe} {
		if m := re.FindStringSubmatch(content); m != nil && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
	}

	for _, word := range strings.Fields(content) {
		if len(word) > 2 && capTokenRe.MatchString(word) && !isNameStopword(word, tracked) {
			return word
		}
	}

	return UnknownIC
}

// extractOOCPlayer mirrors the IC cascade, but falls back to the message
// author instead of scanning for arbitrary tokens.
func extractOOCPlayer(content, authorName string) string {
	for _, re := range []*regexp.Regexp{oocLabeledRe, oocLooseRe, oocBareRe} {
		if m := re.FindStringSubmatch(content); m != nil && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
	}

	if authorName != "" {
		return authorName
	}
	return UnknownOOC
}

func isNameStopword(word string, tracked []string) bool {
	w := strings.ToLower(strings.Trim(word, ":.,"))
	if nameStopwords[w] {
		return true
	}
	if _, ok := itemAliases[w]; ok {
		return true
	}
	for _, item := range tracked {
		if strings.EqualFold(item, w) {
			return true
		}
	}
	return false
}

// parseXP extracts a task-XP submission. Names here never come from blind
// token scans; a missing label means a placeholder, not a guess.
func parseXP(content, lower string) *Record {
	var xpType XPType

	if m := xpModelRe.FindStringSubmatch(content); m != nil {
		model := strings.ToLower(strings.TrimSpace(m[1]))
		if strings.Contains(model, "drug") {
			xpType = XPDrug
		} else if strings.Contains(model, "gang") {
			xpType = XPGang
		}
	}

	if xpType == "" {
		if strings.Contains(lower, "drug") && strings.Contains(lower, "task") {
			xpType = XPDrug
		} else if strings.Contains(lower, "gang") && strings.Contains(lower, "task") {
			xpType = XPGang
		}
	}

	if xpType == "" {
		return nil
	}

	amount := 0
	if m := xpAmountRe.FindStringSubmatch(content); m != nil {
		amount, _ = strconv.Atoi(m[1])
	}

	icName := UnknownXPPlayer
	if m := xpICPlayerRe.FindStringSubmatch(content); m != nil {
		icName = strings.TrimSpace(m[1])
		// Multi-word captures run to end of line; the character name is the
		// first token
		if i := strings.IndexByte(icName, ' '); i > 0 {
			icName = icName[:i]
		}
	}

	oocName := UnknownXPPlayer
	if m := xpOOCRe.FindStringSubmatch(content); m != nil {
		oocName = strings.TrimSpace(m[1])
	}

	return &Record{
		Kind:          KindXP,
		XPType:        xpType,
		XPAmount:      amount,
		ICPlayerName:  icName,
		OOCPlayerName: oocName,
	}
}
