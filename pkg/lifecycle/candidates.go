package lifecycle

import "strings"

// Identifier suffixes for the two lifecycle modes of a localized document.
// A compound id has the form "<docId>:<locale>:<mode>".
const (
	ModePublished = "published"
	ModeDraft     = "draft"
)

// Candidates derives the ordered set of identifiers to attempt for ref:
//
//  1. the stable document id, when known (locale and mode independent);
//  2. the raw id with a published mode marker rewritten to draft;
//  3. the raw id with any locale/mode suffix stripped.
//
// Duplicates are dropped keeping first occurrence. The result is never
// empty: when no transformation applies the raw id itself is the only
// candidate.
func Candidates(ref ContentRef) []string {
	var out []string
	seen := make(map[string]struct{}, 3)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	add(ref.DocID)
	if drafted, ok := toDraft(ref.RawID); ok {
		add(drafted)
	}
	add(bareID(ref.RawID))
	add(ref.RawID)

	return out
}

// toDraft rewrites a trailing published marker to draft. Returns false when
// the raw id carries no published marker.
func toDraft(raw string) (string, bool) {
	suffix := ":" + ModePublished
	if !strings.HasSuffix(raw, suffix) {
		return "", false
	}
	return strings.TrimSuffix(raw, suffix) + ":" + ModeDraft, true
}

// bareID strips the locale/mode suffix, leaving the document id.
func bareID(raw string) string {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return raw[:i]
	}
	return raw
}
