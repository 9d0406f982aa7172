package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/amats-service/internal/suspension"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "encode <quantity> <unit>",
		Short:   "Convert a quantity and unit into suspension minutes",
		Example: "  amatsctl encode 2 weeks",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[0], err)
			}
			unit, err := suspension.ParseUnit(args[1])
			if err != nil {
				return err
			}
			minutes, err := suspension.Encode(quantity, unit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), minutes)
			return nil
		},
	}
}

func newDescribeCmd() *cobra.Command {
	var exact bool
	cmd := &cobra.Command{
		Use:   "describe <minutes>",
		Short: "Render suspension minutes as readable text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid minutes %q: %w", args[0], err)
			}
			if minutes < 0 {
				return fmt.Errorf("minutes must not be negative")
			}
			if exact {
				fmt.Fprintln(cmd.OutOrStdout(), suspension.FormatParts(suspension.Decompose(minutes)))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), suspension.Describe(minutes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&exact, "exact", false, "list every unit instead of the two largest")
	return cmd
}
