package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the cached E*Trade credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}

		if err := app.Service.Logout(cmd.Context()); err != nil {
			return err
		}

		app.Bus.WaitAsync()
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", app.Store.Path())
		return nil
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts using the cached credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}

		sessionID, found := app.Registry.RestoreFromCache()
		if !found {
			return fmt.Errorf("no cached credential; run `itrade serve` and log in first")
		}

		accounts, err := app.Service.ListAccounts(cmd.Context(), sessionID)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Account Key", "Account", "Description", "Type", "Status"})
		for _, item := range accounts {
			account, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			table.Append([]string{
				fmt.Sprint(account["accountIdKey"]),
				fmt.Sprint(account["accountId"]),
				fmt.Sprint(account["accountDesc"]),
				fmt.Sprint(account["accountType"]),
				fmt.Sprint(account["accountStatus"]),
			})
		}
		table.Render()

		return nil
	},
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Print normalized positions using the cached credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		accountKey, _ := cmd.Flags().GetString("account")
		format, _ := cmd.Flags().GetString("format")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}

		sessionID, found := app.Registry.RestoreFromCache()
		if !found {
			return fmt.Errorf("no cached credential; run `itrade serve` and log in first")
		}

		positions, err := app.Service.GetPositions(cmd.Context(), sessionID, accountKey)
		if err != nil {
			return err
		}

		switch strings.ToLower(format) {
		case "csv":
			return writePositionsCSV(cmd.OutOrStdout(), positions)
		case "table":
			writePositionsTable(cmd.OutOrStdout(), positions)
			return nil
		default:
			return fmt.Errorf("unknown format %q", format)
		}
	},
}

type positionRow struct {
	Symbol       string  `csv:"symbol"`
	BaseSymbol   string  `csv:"base_symbol"`
	Type         string  `csv:"type"`
	Quantity     float64 `csv:"quantity"`
	PricePaid    float64 `csv:"price_paid"`
	LastPrice    float64 `csv:"last_price"`
	MarketValue  float64 `csv:"market_value"`
	TotalCost    float64 `csv:"total_cost"`
	DayGain      float64 `csv:"day_gain"`
	TotalGain    float64 `csv:"total_gain"`
	TotalGainPct float64 `csv:"total_gain_pct"`
	DTE          string  `csv:"dte"`
}

func toPositionRows(positions []eventmodels.Position) []*positionRow {
	rows := make([]*positionRow, 0, len(positions))
	for _, p := range positions {
		dte := ""
		if p.IsOption() && p.DTE != nil {
			dte = fmt.Sprintf("%d", *p.DTE)
		}

		rows = append(rows, &positionRow{
			Symbol:       p.Symbol,
			BaseSymbol:   p.BaseSymbol,
			Type:         p.Type,
			Quantity:     p.Quantity,
			PricePaid:    p.PricePaid,
			LastPrice:    p.LastPrice,
			MarketValue:  p.MarketValue,
			TotalCost:    p.TotalCost,
			DayGain:      p.DayGain,
			TotalGain:    p.TotalGain,
			TotalGainPct: p.TotalGainPct,
			DTE:          dte,
		})
	}

	return rows
}

func writePositionsCSV(w io.Writer, positions []eventmodels.Position) error {
	rows := toPositionRows(positions)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writePositionsCSV: %w", err)
	}

	return nil
}

func writePositionsTable(w io.Writer, positions []eventmodels.Position) {
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Qty", "Last", "Market Value", "Day Gain", "Total Gain", "DTE"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)

	var totalValue, totalGain float64
	for _, row := range toPositionRows(positions) {
		table.Append([]string{
			row.Symbol,
			p.Sprintf("%v", row.Quantity),
			fmt.Sprintf("$%s", p.Sprintf("%.2f", row.LastPrice)),
			fmt.Sprintf("$%s", p.Sprintf("%.2f", row.MarketValue)),
			fmt.Sprintf("$%s", p.Sprintf("%.2f", row.DayGain)),
			fmt.Sprintf("$%s (%.2f%%)", p.Sprintf("%.2f", row.TotalGain), row.TotalGainPct),
			row.DTE,
		})
		totalValue += row.MarketValue
		totalGain += row.TotalGain
	}

	table.SetFooter([]string{"", "", "Total", fmt.Sprintf("$%s", p.Sprintf("%.2f", totalValue)), "", fmt.Sprintf("$%s", p.Sprintf("%.2f", totalGain)), time.Now().Format("2006-01-02")})
	table.Render()
}
