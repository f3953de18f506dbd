// Package lifecycle retires CMS content items whose identifier form is
// uncertain. Identifiers obtained from API responses may be compound
// ("docId:locale:mode"), bare document ids, or draft/published variants of
// one another; which form a state-changing endpoint accepts depends on the
// item's current publication state. The resolver derives an ordered set of
// candidate identifiers and applies the terminal operation until the item is
// deleted or confirmed already absent, treating "not found" as a successful
// cleanup.
package lifecycle
