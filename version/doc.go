// Package version reports what build of nyaya is running.
//
//	go build -ldflags "-X github.com/nyayagpt/nyaya/version.Version=1.0.0" ./cmd/nyaya
package version
