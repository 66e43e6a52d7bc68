package testing

// WithFiles pre-populates the mock filesystem with files.
// Keys are paths, values are file contents.
func WithFiles(client *MockClient, files map[string]string) {
	for path, content := range files {
		_ = client.GetFS().WriteFile(path, []byte(content))
	}
}

// WithSequence makes successive reads of path return each content in turn.
func WithSequence(client *MockClient, path string, contents ...string) {
	versions := make([][]byte, len(contents))
	for i, c := range contents {
		versions[i] = []byte(c)
	}
	_ = client.GetFS().WriteSequence(path, versions...)
}
