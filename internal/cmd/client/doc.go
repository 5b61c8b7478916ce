// Package client provides the `flostream` command-line client.
//
// The CLI talks to the flostream gRPC and HTTP endpoints to perform common
// stream operations from a terminal.
//
// # Address configuration
//
// The gRPC address is read from FLOSTREAM_GRPC (default 127.0.0.1:50051).
// The HTTP base URL, used only by `stream search`, comes from the embedding
// application through a BaseURLFunc; the standalone binary reads
// FLOSTREAM_HTTP (default http://127.0.0.1:8080).
//
// Usage
//
//	flostream stream add --stream orders --field sku=a1 --field qty=2
//	flostream stream add --stream orders --id 1700000000000-0 --field sku=b2 --maxlen 1000
//
//	flostream stream range --stream orders --start - --end + --count 10
//	flostream stream revrange --stream orders --count 1
//	flostream stream read --stream orders --id 1700000000000-0
//
//	flostream stream len --stream orders
//	flostream stream info --stream orders
//	flostream stream trim --stream orders --maxlen 100
//
//	flostream stream search --stream logs --filter 'fields["level"] == "error"' --limit 20
//
//	flostream exec XRANGE orders - + COUNT 2
//
// Notes
//
//   - range, revrange, read and search print entries as JSON lines;
//     exec prints replies in redis-cli form.
//   - read is inclusive of --id and never blocks.
//   - search runs the CEL filter on the server and reports when the scan
//     bound was reached.
package client
