// Package hostrouter dispatches requests to handlers by Host header. The
// multisite server uses it to give every site its own App:
//
//	router := hostrouter.New(hostrouter.Routes{
//	    "shop.example.com": shop,
//	    "*.example.com":    sites,
//	}, main)
//
// Hosts are compared lowercased, without port and without a trailing dot.
package hostrouter
