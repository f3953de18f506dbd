package aposclient

// Doc is the common shape of a CMS document as returned by the API. Compound
// identifiers ("docId:locale:mode") live in ID; DocID is the stable document
// id shared by the draft and published variants.
type Doc struct {
	ID       string `json:"_id"`
	DocID    string `json:"aposDocId,omitempty"`
	Locale   string `json:"aposLocale,omitempty"`
	Mode     string `json:"aposMode,omitempty"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Archived bool   `json:"archived,omitempty"`
}

// DocList is a paginated list response.
type DocList struct {
	Results []Doc `json:"results"`
	Pages   int   `json:"pages"`
	Page    int   `json:"currentPage"`
}

// Attachment is an uploaded media asset and its generated renditions.
type Attachment struct {
	ID        string            `json:"_id"`
	Name      string            `json:"name"`
	Extension string            `json:"extension"`
	Group     string            `json:"group"`
	Length    int64             `json:"length"`
	URLs      map[string]string `json:"urls"`
}

// User is an account document on the users API surface.
type User struct {
	Doc
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Page is a document in the page tree.
type Page struct {
	Doc
	Path  string `json:"path,omitempty"`
	Rank  int    `json:"rank,omitempty"`
	Level int    `json:"level,omitempty"`
}

// WhoAmI describes the authenticated session.
type WhoAmI struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Title    string `json:"title,omitempty"`
	Role     string `json:"role,omitempty"`
}
