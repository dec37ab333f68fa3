package main

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fleshka4/ammpool/internal/dexmath"
)

func amountFlag(cmd *cobra.Command, name string) (*big.Int, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return nil, errors.Errorf("--%s is required", name)
	}
	a, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, errors.Errorf("--%s: %q is not an integer", name, v)
	}
	return a, nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	amountIn, err := amountFlag(cmd, "amount-in")
	if err != nil {
		return err
	}
	reserveIn, err := amountFlag(cmd, "reserve-in")
	if err != nil {
		return err
	}
	reserveOut, err := amountFlag(cmd, "reserve-out")
	if err != nil {
		return err
	}

	out, err := dexmath.Quote(amountIn, reserveIn, reserveOut)
	if err != nil {
		return errors.Wrap(err, "dexmath.Quote")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return err
}
