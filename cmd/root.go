package cmd

import (
	"context"
	"errors"
	goflag "flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

var rootCmd = &cobra.Command{
	Use:   "realms-cli",
	Short: "Realms CLI is a console for SPL governance realms.",
	Long: `A command-line console for SPL governance: browse realms, governances and proposals,
deposit governing tokens, create proposals and vote, with voter weight taken from the
wormhole staking program when a realm uses the staking addin.`,
	SilenceUsage: true,
	Run:          run,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.profile, "profile", "p", "", "wallet profile to sign with (env REALMS_PROFILE, default \"default\")")
	pf.StringVar(&flags.rpc, "rpc", "", "RPC endpoint (env RPC_URL)")
	pf.StringVar(&flags.ws, "ws", "", "websocket endpoint for confirmations and watch (env WS_URL)")
	pf.StringVar(&flags.program, "program", "", "governance program id (env GOVERNANCE_PROGRAM_ID)")
	pf.Uint8Var(&flags.programVersion, "program-version", 0, "governance program version (env GOVERNANCE_PROGRAM_VERSION, default 2)")
	pf.StringVar(&flags.priorityFee, "priority-fee", "", "priority fee in micro-lamports per compute unit, 0 to disable, \"auto\" to estimate (env PRIORITY_FEE)")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "build and sign transactions without sending them")
	pf.BoolVar(&jsonOutput, "json", false, "print query results as JSON")
	bindKlogFlags(pf)
}

// bindKlogFlags exposes -v, --vmodule and the other klog flags on fs.
func bindKlogFlags(fs *pflag.FlagSet) {
	klogFlags := goflag.NewFlagSet("klog", goflag.ExitOnError)
	klog.InitFlags(klogFlags)
	fs.AddGoFlagSet(klogFlags)
}

// run is the main entry point for the interactive CLI.
func run(cmd *cobra.Command, args []string) {
	loadEnv()

	myFigure := figure.NewFigure("REALMS", "larry3d", true)
	fmt.Println(titleStyle.Render(myFigure.String()))

	// The main application loop is wrapped in profile selection.
	for {
		wallet, err := runProfileSelection()
		if err != nil {
			if !errors.Is(err, errUserExited) {
				fmt.Println(warningStyle.Render(err.Error()))
			}
			fmt.Println("Exiting Realms CLI.")
			return
		}
		if cmd.Context().Err() != nil {
			return
		}
		runInteractive(cmd.Context(), wallet)
	}
}

// Execute runs the root command until it completes or the process is interrupted.
func Execute() {
	defer klog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(warningStyle.Render(err.Error()))
		klog.Flush()
		os.Exit(1)
	}
}
