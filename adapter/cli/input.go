package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/triage/internal/shared/infrastructure/security"
	"github.com/spf13/cobra"
)

// readInput reads a JSON document from path, or from stdin when path is
// empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) == 0 {
			return nil, errors.New("no input: pass a file or pipe JSON on stdin")
		}
		return data, nil
	}
	data, err := security.SafeReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// requireApp returns the application or an error when it was not built.
func requireApp() (*App, error) {
	a := GetApp()
	if a == nil {
		return nil, errors.New("app not initialized")
	}
	return a, nil
}
