package docs

// NewTestOpener returns an opener that records launches via start.
func NewTestOpener(start func(path string) error) *BrowserOpener {
	return &BrowserOpener{start: start}
}
