package response

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultCharset is applied to text content types that do not carry one.
const DefaultCharset = "UTF-8"

// Preparer normalizes a response against the request it answers before the
// response is sent.
type Preparer struct {
	now     func() time.Time
	charset string
}

// PrepareOption configures a Preparer.
type PrepareOption func(*Preparer)

// WithCharset overrides the default charset.
func WithCharset(charset string) PrepareOption {
	return func(p *Preparer) {
		p.charset = charset
	}
}

// WithClock overrides the clock used for the Date header.
func WithClock(now func() time.Time) PrepareOption {
	return func(p *Preparer) {
		p.now = now
	}
}

// NewPreparer creates a Preparer.
func NewPreparer(opts ...PrepareOption) *Preparer {
	p := &Preparer{now: time.Now, charset: DefaultCharset}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare fixes up headers and body of resp for req:
//   - informational, 204 and 304 responses lose their body and entity headers;
//   - a body without a content type is text/html and text types get a charset;
//   - Content-Length reflects the buffered body unless chunked;
//   - HEAD responses keep their headers but drop the body;
//   - Cache-Control and Date get sane defaults.
func (p *Preparer) Prepare(resp *Response, req *http.Request) *Response {
	h := resp.Header()

	if isEmptyStatus(resp.Status()) {
		resp.ResetBody()
		h.Del("Content-Type")
		h.Del("Content-Length")
	} else {
		p.prepareContentType(resp)
		if h.Get("Transfer-Encoding") != "" {
			h.Del("Content-Length")
		} else {
			h.Set("Content-Length", strconv.Itoa(resp.Len()))
		}
		if req != nil && req.Method == http.MethodHead {
			resp.ResetBody()
		}
	}

	h.Set("Cache-Control", cacheControl(h))
	if h.Get("Date") == "" {
		h.Set("Date", p.now().UTC().Format(http.TimeFormat))
	}

	return resp
}

func (p *Preparer) prepareContentType(resp *Response) {
	h := resp.Header()
	ct := h.Get("Content-Type")
	if ct == "" {
		if resp.Len() > 0 {
			h.Set("Content-Type", "text/html; charset="+p.charset)
		}
		return
	}
	if strings.HasPrefix(ct, "text/") && !strings.Contains(strings.ToLower(ct), "charset") {
		h.Set("Content-Type", ct+"; charset="+p.charset)
	}
}

func cacheControl(h http.Header) string {
	cc := h.Get("Cache-Control")
	if cc == "" {
		if h.Get("Last-Modified") != "" || h.Get("Expires") != "" {
			return "private, must-revalidate"
		}
		return "no-cache, private"
	}

	lower := strings.ToLower(cc)
	if strings.Contains(lower, "public") || strings.Contains(lower, "private") || strings.Contains(lower, "s-maxage") {
		return cc
	}
	return cc + ", private"
}

func isEmptyStatus(status int) bool {
	return status < 200 || status == http.StatusNoContent || status == http.StatusNotModified
}
