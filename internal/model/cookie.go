package model

// Cookie is a cookie attributed to a page.
// Expires holds the raw expiry attribute; an empty value means a session cookie.
type Cookie struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Expires string `json:"expires,omitempty"`
}

// CookieStats summarizes the cookies of a page.
type CookieStats struct {
	Total    int `json:"total"`
	Tracking int `json:"tracking"`
	LongTerm int `json:"long_term"`
}

// Header is one HTTP response header as observed by the platform.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
