// Package streamsvc implements the typed Streams facade on top of the
// runtime's keyspace. HTTP controllers call it instead of building command
// vectors.
//
// Example:
//
//	svc := streamsvc.New(rt)
//	id, _ := svc.Add(ctx, "orders", streamsvc.AddRequest{ID: "*", Fields: []streamlog.Field{{Name: "sku", Value: "42"}}, MaxLen: -1})
//	items, _ := svc.Range(ctx, "orders", "-", "+", 10, false)
//	res, _ := svc.Search(ctx, "orders", streamsvc.SearchOptions{Filter: `fields["sku"] == "42"`})
package streamsvc

// Search notes
//
//   - Filters are CEL expressions over id (string), ms and seq (int),
//     fields (map<string, string>) and now_ms (int). A filter that does not
//     type-check to bool is rejected before scanning.
//   - search.maxScan bounds how many entries one call examines, whatever
//     the match count. Zero disables the bound.
