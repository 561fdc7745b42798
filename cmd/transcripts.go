package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DachengChen/sqlchat/transcript"
)

var transcriptsLimit int

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "List recently recorded turns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := transcript.OpenConfigured(ctx, appCfg)
		if err != nil {
			return err
		}
		if store == nil {
			pterm.Warning.Println("Transcripts are disabled. Set transcript.enabled in ~/.sqlchat/config.json.")
			return nil
		}
		defer store.Close()

		entries, err := store.Recent(ctx, transcriptsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			pterm.Info.Println("No turns recorded yet.")
			return nil
		}

		now := time.Now()
		data := pterm.TableData{{"ID", "Age", "Connection", "Question", "Query", "Result"}}
		for _, e := range entries {
			result := "ok " + e.Duration.Round(time.Millisecond).String()
			if e.Error != "" {
				result = pterm.Red(truncate(e.Error, 40))
			}
			data = append(data, []string{
				strconv.FormatInt(e.ID, 10),
				transcript.FormatAge(e.CreatedAt, now),
				e.Connection,
				truncate(e.Question, 40),
				truncate(e.Query, 50),
				result,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

// truncate collapses whitespace and cuts s to n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	transcriptsCmd.Flags().IntVarP(&transcriptsLimit, "limit", "n", 20, "Number of turns to show")
	rootCmd.AddCommand(transcriptsCmd)
}
