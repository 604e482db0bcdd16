// Package testutil holds test servers: TCP echo, single-accept and a
// scriptable fake SOCKS5 proxy.
package testutil
