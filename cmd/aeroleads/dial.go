package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/aeroleads/internal/config"
	"github.com/jonathan/aeroleads/internal/dialer"
	"github.com/jonathan/aeroleads/internal/observability"
	"github.com/jonathan/aeroleads/internal/telephony"
)

var dialCmd = &cobra.Command{
	Use:   "dial",
	Short: "Place one outbound call per phone number",
	Long: `Places calls sequentially, in input order, through the telephony provider configured
by TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER.

Numbers that are not valid E.164 after removing spaces, dashes, dots and parentheses
are reported as failed with "invalid format" and never sent. Every run places every
call again; nothing is deduplicated.`,
	RunE: runDial,
}

var (
	dialNumbersFile string
	dialNumbers     []string
	dialMessage     string
	dialTwimlURL    string
	dialOutput      string
)

func init() {
	dialCmd.Flags().StringVarP(&dialNumbersFile, "numbers-file", "i", "", "Text file (one number per line) or JSON call list")
	dialCmd.Flags().StringArrayVar(&dialNumbers, "number", nil, "Phone number (repeatable)")
	dialCmd.Flags().StringVarP(&dialMessage, "message", "m", "", "Message spoken on each call")
	dialCmd.Flags().StringVar(&dialTwimlURL, "twiml-url", "", "Remote call script used when no message is given")
	dialCmd.Flags().StringVarP(&dialOutput, "out", "o", "", "Write call results as JSON to this file")

	rootCmd.AddCommand(dialCmd)
}

func runDial(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg := fileCfg.Calls
	flags := cmd.Flags()

	if flags.Changed("numbers-file") {
		cfg.NumbersFile = dialNumbersFile
	}
	if flags.Changed("twiml-url") {
		cfg.TwimlURL = dialTwimlURL
	}
	if flags.Changed("out") {
		cfg.Output = dialOutput
	}

	var numbers []string
	message := cfg.Message
	if cfg.NumbersFile != "" {
		list, err := dialer.ReadCallList(cfg.NumbersFile)
		if err != nil {
			return err
		}
		numbers = list.Numbers
		if list.Message != "" {
			message = list.Message
		}
	}
	numbers = append(numbers, dialNumbers...)
	if flags.Changed("message") {
		message = dialMessage
	}
	if len(numbers) == 0 {
		return fmt.Errorf("provide phone numbers with --numbers-file or --number")
	}

	creds := config.LoadCredentials()
	if err := creds.RequireTelephony(); err != nil {
		return err
	}
	client, err := telephony.NewClient(telephony.Config{
		AccountSID: creds.TwilioAccountSID,
		AuthToken:  creds.TwilioAuthToken,
		FromNumber: creds.TwilioFromNumber,
		BaseURL:    creds.TwilioBaseURL,
	})
	if err != nil {
		return err
	}
	if isVerbose(fileCfg) {
		log.Printf("[DIALER] Using account %s", config.Redact(creds.TwilioAccountSID))
	}

	ctx, stop := interruptible()
	defer stop()

	d := dialer.NewDispatcher(client, dialer.Options{
		From:     client.FromNumber(),
		Message:  message,
		TwimlURL: cfg.TwimlURL,
	})
	results, summary, err := d.Dispatch(ctx, numbers)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintCallResults(results)
	printer.PrintRunSummary(summary)

	if cfg.Output != "" {
		if err := dialer.WriteResults(cfg.Output, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Results written to %s\n", cfg.Output)
	}
	return nil
}
