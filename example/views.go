package main

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// statusPage is the shop status screen shown in the CMS admin.
func statusPage(storefront string, products int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		href := templ.EscapeString(string(templ.URL(storefront)))
		_, err := fmt.Fprintf(w,
			`<div class="wrap"><h1>Shop</h1><p>Storefront: <a href="%s">%s</a></p><p>%d products</p></div>`,
			href, templ.EscapeString(storefront), products)
		return err
	})
}
