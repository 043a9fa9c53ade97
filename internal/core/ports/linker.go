package ports

// AssetLinker exposes a source directory under another path.
//
//go:generate mockgen -source=linker.go -destination=mocks/mock_linker.go -package=mocks
type AssetLinker interface {
	// Link creates dst pointing at src unless dst already exists.
	// It reports whether a link was created.
	Link(src, dst string) (bool, error)
}
