package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/settlewise/internal/rpc"
)

var balancesCmd = &cobra.Command{
	Use:   "balances <network-id>",
	Short: "Show each member's net balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient(cmd).ComputeBalances(cmd.Context(), &rpc.ComputeBalancesRequest{NetworkID: args[0]})
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <network-id>",
	Short: "Show the transfers that would settle the network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient(cmd).PlanSettlements(cmd.Context(), &rpc.PlanSettlementsRequest{NetworkID: args[0]})
		if err != nil {
			return err
		}
		return printJSON(resp.Plan)
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit <network-id>",
	Short: "Record a settlement plan",
	Long: `Commit records a plan as pending settlements and marks the network's
open bill splits paid. With --plan the plan is read from a file written by
"plan"; otherwise the current plan is fetched and committed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient(cmd)
		req := &rpc.CommitPlanRequest{NetworkID: args[0]}

		if path, _ := cmd.Flags().GetString("plan"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read plan: %w", err)
			}
			if err := json.Unmarshal(data, &req.Plan); err != nil {
				return fmt.Errorf("failed to parse plan: %w", err)
			}
		} else {
			planned, err := client.PlanSettlements(cmd.Context(), &rpc.PlanSettlementsRequest{NetworkID: args[0]})
			if err != nil {
				return err
			}
			req.Plan = planned.Plan
		}

		resp, err := client.CommitPlan(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(resp.Settlements)
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <settlement-id>",
	Short: "Mark a pending settlement as paid out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(cmd).CompleteSettlement(cmd.Context(), &rpc.CompleteSettlementRequest{SettlementID: args[0]})
	},
}

func init() {
	commitCmd.Flags().String("plan", "", "plan file produced by the plan command")
}

func newClient(cmd *cobra.Command) *rpc.Client {
	url, _ := cmd.Flags().GetString("server")
	if url == "" {
		url = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	return rpc.NewClient(http.DefaultClient, url)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
