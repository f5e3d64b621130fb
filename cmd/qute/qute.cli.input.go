package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readInput reads a file, or stdin for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgReadStdinFailed, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fail(ExitCodeInputError, ErrMsgReadFileFailed, err)
	}
	return data, nil
}

// loadData decodes render data from a JSON string or a JSON/YAML file.
// Without either the data is an empty map.
func loadData(jsonStr, filePath string) (map[string]any, error) {
	data := make(map[string]any)
	switch {
	case jsonStr != "" && filePath != "":
		return nil, fail(ExitCodeUsageError, ErrMsgUsage, errDataConflict)
	case filePath != "":
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgReadFileFailed, err)
		}
		ext := strings.ToLower(filepath.Ext(filePath))
		if ext == ExtYAML || ext == ExtYML {
			err = yaml.Unmarshal(raw, &data)
		} else {
			err = json.Unmarshal(raw, &data)
		}
		if err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgInvalidData, err)
		}
	case jsonStr != "":
		if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgInvalidData, err)
		}
	}
	return data, nil
}

// writeOutput writes to a file, or to stdout for "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	var err error
	if path == "" || path == InputSourceStdin {
		_, err = stdout.Write(data)
	} else {
		err = os.WriteFile(path, data, FilePermissions)
	}
	if err != nil {
		return fail(ExitCodeError, ErrMsgWriteOutputFailed, err)
	}
	return nil
}
