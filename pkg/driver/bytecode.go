package driver

import "os"

// readBytecode reads a guest .wasm binary from disk.
func readBytecode(path string) ([]byte, error) {
	return os.ReadFile(path)
}
