package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/itsatony/go-qute"
)

type versionCmd struct {
	Format string `default:"text" enum:"text,json" help:"Output format: text or json." short:"F"`
}

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

// Run prints the version.
func (c *versionCmd) Run(a *app) error {
	if c.Format == OutputFormatJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(versionOutput{Version: qute.Version, GoVersion: runtime.Version()})
	}
	_, err := fmt.Fprintf(a.stdout, VersionTextTemplate, qute.Version, runtime.Version())
	return err
}
