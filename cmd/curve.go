package cmd

import (
	"lending/pkg/lasa"
	"lending/pkg/number"

	"github.com/spf13/cobra"
)

var curveCmd = &cobra.Command{
	Use:   "curve <multiplicative factor>",
	Short: "print the rate curve bounds for a multiplicative factor",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mf, err := number.Parse(args[0])
		if err != nil {
			cmd.PrintErrln("parse multiplicative factor:", err)
			return
		}

		curve, err := lasa.Init(mf)
		if err != nil {
			cmd.PrintErrln("build curve:", err)
			return
		}

		cmd.Println("min pole  ", number.WadToDecimal(curve.MinPole))
		cmd.Println("max pole  ", number.WadToDecimal(curve.MaxPole))
		cmd.Println("delta pole", number.WadToDecimal(curve.DeltaPole))
		cmd.Println("start pole", number.WadToDecimal(curve.Pole))

		for _, u := range []string{"0.5", "0.8", "0.95"} {
			rate, err := lasa.BorrowRate(&curve, number.MustParse(u))
			if err != nil {
				cmd.PrintErrln("borrow rate:", err)
				return
			}

			cmd.Printf("rate at %s: %s\n", u, number.WadToDecimal(rate))
		}
	},
}

func init() {
	rootCmd.AddCommand(curveCmd)
}
