package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Chaosflow/internal/scenario"
)

// NewValidateCmd создаёт команду проверки файла сценария.
func NewValidateCmd(envFn func() *Env) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := env.Output

			loaded, err := scenario.Load(args[0], env.Catalog)
			if err != nil {
				return err
			}

			missing := loaded.Registry.Missing(loaded.Scenario.Stages())

			type stageInfo struct {
				Index   int    `json:"index"`
				Name    string `json:"name"`
				Uses    string `json:"uses,omitempty"`
				Adapter bool   `json:"adapter"`
			}
			stages := make([]stageInfo, len(loaded.File.Stages))
			rows := make([][]string, len(loaded.File.Stages))
			for i, st := range loaded.File.Stages {
				has := loaded.Registry.Has(st.Name)
				stages[i] = stageInfo{Index: i, Name: st.Name, Uses: st.Uses, Adapter: has}
				rows[i] = []string{strconv.Itoa(i), st.Name, orDash(st.Uses), strconv.FormatBool(has)}
			}

			out.Print([]string{"#", "STAGE", "USES", "ADAPTER"}, rows, map[string]any{
				"scenario": loaded.Scenario.ID,
				"stages":   stages,
				"missing":  missing,
			})

			for _, name := range missing {
				out.Warn(fmt.Sprintf("stage %s has no adapter and will fail with %q", name, "missing plugin"))
			}
			if strict && len(missing) > 0 {
				return fmt.Errorf("%d stage(s) without adapter", len(missing))
			}

			out.Success(fmt.Sprintf("Scenario %s is valid: %d stages", loaded.Scenario.ID, loaded.Scenario.Len()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail if any stage has no adapter")

	return cmd
}
