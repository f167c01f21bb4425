// Package rest adds typed JSON calls on top of httpclient:
//
//	tags, err := rest.Get[tagList](ctx, client, "/api/tags")
//	out, err := rest.Post[embedResponse](ctx, client, "/api/embed", req)
package rest
