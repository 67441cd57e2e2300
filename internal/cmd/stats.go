package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/leighmacdonald/q3stats/internal/config"
	applog "github.com/leighmacdonald/q3stats/internal/log"
	"github.com/leighmacdonald/q3stats/internal/stats"
	"github.com/leighmacdonald/q3stats/pkg/logparse"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var asJSON bool

	command := &cobra.Command{
		Use:   "stats <logfile>",
		Short: "Generate ranked player statistics from a server log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if errConfig := config.Read(cfgFile); errConfig != nil {
				return errConfig
			}

			closeLogger := applog.MustCreateLogger(config.Log.File, applog.Level(config.Log.Level))
			defer closeLogger()

			report, errReport := generate(args[0])
			if errReport != nil {
				return errReport
			}

			if asJSON {
				return renderJSON(os.Stdout, report)
			}

			render(os.Stdout, report)

			return nil
		},
	}

	command.Flags().BoolVar(&asJSON, "json", false, "emit the report as JSON")

	return command
}

// generate runs the whole pipeline: scan, aggregate, rank, ban, project.
func generate(path string) (*stats.Report, error) {
	logFile, errOpen := os.Open(path)
	if errOpen != nil {
		return nil, errors.Wrapf(errOpen, "Failed to open log: %s", path)
	}

	defer applog.Closer(logFile)

	server, games, errProcess := logparse.NewScanner(config.Stats.MinPlay).Process(logFile)
	if errProcess != nil {
		return nil, errProcess
	}

	careers := stats.Aggregate(games)

	var ranked []*stats.PlayerCareer

	if len(careers) > 0 {
		// The ranker treats an oversized result count as an error, the CLI
		// just wants "everybody" when the server has fewer players than the
		// limit
		limit := config.Stats.MaxPlayers
		if limit > len(careers) {
			limit = len(careers)
		}

		var errRank error
		if ranked, errRank = stats.Rank(careers, config.Stats.Sort, limit); errRank != nil {
			return nil, errRank
		}

		ranked = stats.ApplyBan(ranked, config.Stats.BanList)
	}

	return stats.BuildReport(server, ranked, stats.CollectQuotes(games), stats.ReportOptions{
		GameTypeOverride: config.Stats.GameTypeOverride,
		CTFTable:         config.Stats.CTFTable,
		QuoteCount:       config.Stats.QuoteCount,
	}), nil
}

func renderJSON(writer io.Writer, report *stats.Report) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if errEncode := encoder.Encode(report); errEncode != nil {
		return errors.Wrap(errEncode, "Failed to encode report")
	}

	return nil
}

func render(writer io.Writer, report *stats.Report) {
	fmt.Fprintf(writer, "%s (%s)\nTotal time played: %s  Total frags: %s\n\n",
		report.Server.Hostname,
		report.Server.GameType,
		formatSeconds(report.Server.Time),
		humanize.Comma(int64(report.Server.Frags)))

	renderMain(writer, report.Main)
	renderRatios(writer, report.Ratios)
	renderWeapons(writer, report.Weapons)

	if len(report.CTF) > 0 {
		renderCTF(writer, report.CTF)
	}

	renderQuotes(writer, report.Quotes)
}

func renderMain(writer io.Writer, rows []stats.MainRow) {
	table := tablewriter.NewTable(writer)
	table.Header("Name", "Games", "Won", "Time", "Hand",
		"Ping-", "Ping~", "Ping+", "Frags", "Deaths", "Suics", "WFrags", "Excl", "Impr")

	for _, row := range rows {
		_ = table.Append([]string{
			row.Name,
			strconv.Itoa(row.Games),
			strconv.Itoa(row.Won),
			formatSeconds(row.Time),
			fmt.Sprintf("%.0f", row.Handicap),
			strconv.Itoa(row.PingMin),
			fmt.Sprintf("%.0f", row.PingAvg),
			strconv.Itoa(row.PingMax),
			strconv.Itoa(row.Frags),
			strconv.Itoa(row.Deaths),
			strconv.Itoa(row.Suicides),
			strconv.Itoa(row.WorldFrags),
			strconv.Itoa(row.Excellent),
			strconv.Itoa(row.Impressive),
		})
	}

	_ = table.Render()
	fmt.Fprintln(writer)
}

func renderRatios(writer io.Writer, rows []stats.RatioRow) {
	table := tablewriter.NewTable(writer)
	table.Header("Name", "Won%", "F/D", "F/h", "F/game", "D/h", "D/game", "Acc/h", "Acc/game", "Eff%")

	for _, row := range rows {
		_ = table.Append([]string{
			row.Name,
			fmt.Sprintf("%.2f", row.WonPct),
			fmt.Sprintf("%.2f", row.FragsPerDeath),
			fmt.Sprintf("%.2f", row.FragsPerHour),
			fmt.Sprintf("%.2f", row.FragsPerGame),
			fmt.Sprintf("%.2f", row.DeathsPerHour),
			fmt.Sprintf("%.2f", row.DeathsPerGame),
			fmt.Sprintf("%.2f", row.AccidentsPerHour),
			fmt.Sprintf("%.2f", row.AccidentsPerGame),
			fmt.Sprintf("%.2f", row.Efficiency),
		})
	}

	_ = table.Render()
	fmt.Fprintln(writer)
}

func renderWeapons(writer io.Writer, rows []stats.WeaponRow) {
	headers := make([]string, 0, len(logparse.Weapons)+1)
	headers = append(headers, "Name")

	for _, weapon := range logparse.Weapons {
		headers = append(headers, string(weapon))
	}

	table := tablewriter.NewTable(writer)
	table.Header(headers)

	for _, row := range rows {
		cells := make([]string, 0, len(row.Usage)+1)
		cells = append(cells, row.Name)

		for _, share := range row.Usage {
			cells = append(cells, fmt.Sprintf("%.2f", share))
		}

		_ = table.Append(cells)
	}

	_ = table.Render()
	fmt.Fprintln(writer)
}

func renderCTF(writer io.Writer, rows []stats.CTFRow) {
	table := tablewriter.NewTable(writer)
	table.Header("Name", "Taken", "Captured", "Returned", "CarrierFrags", "Defence", "Assist", "Capture")

	for _, row := range rows {
		_ = table.Append([]string{
			row.Name,
			strconv.Itoa(row.Taken),
			strconv.Itoa(row.Captures),
			strconv.Itoa(row.Returns),
			strconv.Itoa(row.CarrierFrags),
			strconv.Itoa(row.Defence),
			strconv.Itoa(row.Assist),
			strconv.Itoa(row.Capture),
		})
	}

	_ = table.Render()
	fmt.Fprintln(writer)
}

func renderQuotes(writer io.Writer, quotes []logparse.Quote) {
	for _, quote := range quotes {
		fmt.Fprintf(writer, "%s: %s\n", quote.Name, quote.Message)
	}
}

func formatSeconds(seconds int) string {
	return (time.Duration(seconds) * time.Second).String()
}
