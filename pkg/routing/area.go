package routing

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/dmitrymomot/pressgate/pkg/pipeline"
)

// Area is the part of the site a request or route belongs to.
type Area uint8

const (
	AreaWeb Area = iota
	AreaAdmin
	AreaAPI
)

// DefaultAdminPrefix is the path prefix of the admin area.
const DefaultAdminPrefix = "/wp-admin"

func (a Area) String() string {
	switch a {
	case AreaAdmin:
		return "admin"
	case AreaAPI:
		return "api"
	default:
		return "web"
	}
}

// Group returns the middleware group that applies to routes of the area.
func (a Area) Group() string {
	switch a {
	case AreaAdmin:
		return pipeline.GroupAdmin
	case AreaAPI:
		return pipeline.GroupAPI
	default:
		return pipeline.GroupFrontend
	}
}

// ParseArea converts "web", "admin" or "api" to an Area.
func ParseArea(s string) (Area, bool) {
	switch s {
	case "web", "":
		return AreaWeb, true
	case "admin":
		return AreaAdmin, true
	case "api":
		return AreaAPI, true
	}
	return AreaWeb, false
}

// Areas classifies requests into areas and computes the path used for
// route matching.
type Areas struct {
	AdminPrefix string   `yaml:"admin_prefix"`
	APIPrefixes []string `yaml:"api_prefixes"`
}

// DefaultAreas returns the default area configuration.
func DefaultAreas() Areas {
	return Areas{AdminPrefix: DefaultAdminPrefix}
}

// Detect returns the area for a request path.
func (a Areas) Detect(path string) Area {
	if a.AdminPrefix != "" && hasPathPrefix(path, a.AdminPrefix) {
		return AreaAdmin
	}
	for _, p := range a.APIPrefixes {
		if p != "" && hasPathPrefix(path, p) {
			return AreaAPI
		}
	}
	return AreaWeb
}

// MatchContext builds the input for Matcher.Match from r.
func (a Areas) MatchContext(r *http.Request) MatchContext {
	path := RoutingPath(r.URL)
	area := a.Detect(path)
	if area == AreaAdmin {
		path = a.rewriteAdmin(path, r.URL.Query())
	}
	return MatchContext{Method: r.Method, Path: path, Area: area, Request: r}
}

// AdminPage returns the routing path of an admin page registered under slug.
func (a Areas) AdminPage(slug string) string {
	return strings.TrimRight(a.AdminPrefix, "/") + "/admin.php/" + slug
}

// admin.php?page=slug routes as admin.php/slug.
func (a Areas) rewriteAdmin(path string, q url.Values) string {
	page := q.Get("page")
	if page == "" || path != strings.TrimRight(a.AdminPrefix, "/")+"/admin.php" {
		return path
	}
	return a.AdminPage(page)
}

var encodedSlash = regexp.MustCompile(`%2[fF]`)

// RoutingPath returns the request path decoded except for percent signs
// and slashes that were encoded, which stay as %25 and %2F. A %2F inside a
// segment never splits it, and captured values decode exactly once.
func RoutingPath(u *url.URL) string {
	raw := u.EscapedPath()
	if raw == "" {
		return "/"
	}
	parts := encodedSlash.Split(raw, -1)
	for i, p := range parts {
		if d, err := url.PathUnescape(p); err == nil {
			parts[i] = strings.ReplaceAll(d, "%", "%25")
		}
	}
	return strings.Join(parts, "%2F")
}

// routingSegment renders a parameter value the way RoutingPath shows it.
func routingSegment(v string) string {
	return strings.ReplaceAll(strings.ReplaceAll(v, "%", "%25"), "/", "%2F")
}

func hasPathPrefix(path, prefix string) bool {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
