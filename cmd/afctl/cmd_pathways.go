package main

import (
	"context"
	"fmt"

	"artisanal-futures/internal/app"
	logisticsservice "artisanal-futures/internal/service/logistics"

	"github.com/spf13/cobra"
)

// operator acts with admin rights on every depot.
var operator = logisticsservice.Actor{UserID: "afctl", Admin: true}

var passcodeCmd = &cobra.Command{
	Use:   "passcode",
	Short: "Driver passcode tools",
}

var passcodeGenerateCmd = &cobra.Command{
	Use:   "generate <path-id>",
	Short: "Print the passcode and route link for a path",
	Args:  cobra.ExactArgs(1),
	RunE:  runPasscodeGenerate,
}

var passcodeSend bool

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Route archive tools",
}

var routesArchiveCmd = &cobra.Command{
	Use:   "archive <route-id>",
	Short: "Export a route's paths as CSV to object storage",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoutesArchive,
}

func init() {
	passcodeGenerateCmd.Flags().BoolVar(&passcodeSend, "send", false, "email the link to the driver")
	passcodeCmd.AddCommand(passcodeGenerateCmd)
	routesCmd.AddCommand(routesArchiveCmd)
}

func withLogistics(ctx context.Context, fn func(*logisticsservice.LogisticsService) error) error {
	infra, err := app.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	deriver, err := app.NewDeriver(cfg)
	if err != nil {
		return err
	}

	return fn(app.NewLogisticsService(cfg, infra, deriver, logger))
}

func runPasscodeGenerate(cmd *cobra.Command, args []string) error {
	return withLogistics(cmd.Context(), func(svc *logisticsservice.LogisticsService) error {
		out := cmd.OutOrStdout()

		if passcodeSend {
			res, err := svc.SendRouteLink(cmd.Context(), operator, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "sent to %s\n%s\n", res.Email, res.SentURL)
			return nil
		}

		_, code, link, err := svc.GeneratePasscode(cmd.Context(), operator, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "passcode: %s\nurl:      %s\n", code, link)
		return nil
	})
}

func runRoutesArchive(cmd *cobra.Command, args []string) error {
	return withLogistics(cmd.Context(), func(svc *logisticsservice.LogisticsService) error {
		res, err := svc.ArchiveRoute(cmd.Context(), operator, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "archived %d paths to %s\n", res.Paths, res.Key)
		if res.URL != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "download: %s\n", res.URL)
		}
		return nil
	})
}
