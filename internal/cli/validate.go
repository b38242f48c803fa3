package cli

import (
	"fmt"

	"github.com/forgeline/forgeline/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the build spec and agent registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		specPath, _ := cmd.Flags().GetString("spec")
		registryPath, _ := cmd.Flags().GetString("registry")

		var reg *config.Registry
		var err error
		if registryPath != "" {
			reg, err = config.LoadRegistry(registryPath)
		} else {
			reg, err = config.LoadDefaultRegistry()
		}
		if err != nil {
			return err
		}

		spec, err := config.LoadSpec(specPath)
		if err != nil {
			return err
		}

		var errs []config.ValidationError
		errs = append(errs, config.ValidateRegistry(reg)...)
		errs = append(errs, config.ValidateSpec(spec, reg)...)

		w := cmd.OutOrStdout()
		if len(errs) == 0 {
			fmt.Fprintln(w, "Configuration is valid.")
			fmt.Fprintf(w, "  Agents: %d, phases: %d, required gates: %d\n",
				len(reg.Agents), len(reg.Pipeline.Phases), len(spec.QualityGates))
			return nil
		}

		for _, e := range errs {
			fmt.Fprintf(w, "  - %s\n", e.Error())
		}
		return fmt.Errorf("configuration invalid: %d error(s)", len(errs))
	},
}

func init() {
	validateCmd.Flags().String("spec", "build.yaml", "Path to the build spec YAML")
	validateCmd.Flags().String("registry", "", "Path to the agent registry YAML (default: forgeline.yaml, ~/.forgeline/config.yaml)")
}
