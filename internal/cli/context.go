package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/forgeline/forgeline/internal/config"
	"github.com/forgeline/forgeline/internal/db"
	"github.com/forgeline/forgeline/internal/store"
	"github.com/spf13/cobra"
)

// openStore opens the workspace store at the default (or overridden) root.
func openStore() (*store.Store, error) {
	st, err := store.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// openDB opens and migrates the event database under the store root.
func openDB(st *store.Store) (*db.DB, error) {
	d, err := db.Open(st.DBPath())
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// loadConfigs loads and validates the build spec and agent registry,
// rejecting invalid configuration before anything runs.
func loadConfigs(specPath string, registryPath string) (*config.BuildSpec, *config.Registry, error) {
	var reg *config.Registry
	var err error
	if registryPath != "" {
		reg, err = config.LoadRegistry(registryPath)
	} else {
		reg, err = config.LoadDefaultRegistry()
	}
	if err != nil {
		return nil, nil, err
	}

	spec, err := config.LoadSpec(specPath)
	if err != nil {
		return nil, nil, err
	}

	var errs []config.ValidationError
	errs = append(errs, config.ValidateRegistry(reg)...)
	errs = append(errs, config.ValidateSpec(spec, reg)...)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Println("  -", e.Error())
		}
		return nil, nil, fmt.Errorf("configuration invalid: %d error(s)", len(errs))
	}

	return spec, reg, nil
}

// resolveLogDir places a relative log_directory under the store root.
func resolveLogDir(st *store.Store, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(st.Root(), dir)
}

// writeJSON prints v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
