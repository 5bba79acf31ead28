package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/scenario"
)

// NewTopologyCmd создаёт команду вывода топологии сценария.
func NewTopologyCmd(envFn func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "topology FILE",
		Short: "Show the stage chain of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := env.Output

			f, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := f.Validate(env.Catalog); err != nil {
				return err
			}

			topo := domain.BuildTopology(f.Scenario().Stages())

			rows := make([][]string, len(topo.Entries))
			for i, e := range topo.Entries {
				rows[i] = []string{e.From, e.To, strconv.Itoa(e.Weight)}
			}
			out.Print([]string{"FROM", "TO", "WEIGHT"}, rows, topo)

			if roots := topo.Roots(); len(roots) > 0 {
				out.Success(fmt.Sprintf("Roots: %s", strings.Join(roots, ", ")))
			}
			return nil
		},
	}
}
