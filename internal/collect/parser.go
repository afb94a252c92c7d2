package collect

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// resources walks the document and returns the absolute http(s) URLs of
// every script, iframe, image and link element it references.
func resources(doc *html.Node, base *url.URL) []*url.URL {
	out := make([]*url.URL, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if u := resolve(base, resourceAttr(n)); u != nil {
				out = append(out, u)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// resourceAttr returns the attribute through which an element loads a
// resource, or "" for elements that load nothing.
func resourceAttr(n *html.Node) string {
	switch n.Data {
	case "script", "iframe", "img":
		return getAttr(n, "src")
	case "link":
		return getAttr(n, "href")
	default:
		return ""
	}
}

// resolve resolves href against base and keeps only http(s) URLs with a host.
func resolve(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	u := base.ResolveReference(ref)
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil
	}
	return u
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
