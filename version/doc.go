// Package version reports build metadata for jsonfs.
//
// Values come from variables set at link time, for example
//
//	-ldflags "-X github.com/dendrascience/jsonfs/version.Version=v1.0.0 -X github.com/dendrascience/jsonfs/version.Commit=abc1234"
//
// and otherwise from debug.ReadBuildInfo, falling back to development
// defaults.
package version
