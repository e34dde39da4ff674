package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chess-relay/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryGame  string
)

var historyCmd = &cobra.Command{
	Use:   "history [player]",
	Short: "Show archived games",
	Long: `Display recently archived games, or one player's games and record.

Examples:
  relay history
  relay history alice
  relay history alice --limit 50
  relay history --game <game-id>`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum number of games to show")
	historyCmd.Flags().StringVar(&flagHistoryGame, "game", "", "Show one archived game by ID")
}

func runHistory(_ *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Archive.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening game archive: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagHistoryGame != "" {
		showGame(store, flagHistoryGame)
		return
	}

	var games []storage.GameRecord
	if len(args) == 1 {
		games, err = store.PlayerHistory(args[0], flagHistoryLimit)
	} else {
		games, err = store.RecentGames(flagHistoryLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving games: %v\n", err)
		os.Exit(1)
	}

	if len(args) == 1 {
		fmt.Printf("Games - %s\n", args[0])
	} else {
		fmt.Println("Recent games")
	}
	fmt.Println()

	if len(games) == 0 {
		fmt.Println("No games archived yet.")
		return
	}

	// Print header
	fmt.Printf("  %-16s  %-16s  %-16s  %-7s  %-19s  %-5s  %s\n", "White", "Black", "Winner", "Result", "Reason", "Moves", "Date")
	fmt.Printf("  %-16s  %-16s  %-16s  %-7s  %-19s  %-5s  %s\n", "-----", "-----", "------", "------", "------", "-----", "----")

	for _, g := range games {
		dateStr := g.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-16s  %-16s  %-16s  %-7s  %-19s  %-5d  %s\n",
			g.White, g.Black, winnerLabel(g), g.Result, g.EndReason, g.Moves, dateStr)
	}

	if len(args) == 1 {
		stats, err := store.PlayerStats(args[0])
		if err == nil {
			fmt.Println()
			fmt.Printf("Record: %d won, %d lost, %d drawn\n", stats.Wins, stats.Losses, stats.Draws)
		}
	}
}

func showGame(store *storage.Store, gameID string) {
	g, err := store.GameByID(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving game: %v\n", err)
		os.Exit(1)
	}
	if g == nil {
		fmt.Fprintf(os.Stderr, "Error: no archived game %q\n", gameID)
		os.Exit(1)
	}

	fmt.Printf("Game %s\n", g.GameID)
	fmt.Println()
	fmt.Printf("  White:    %s\n", g.White)
	fmt.Printf("  Black:    %s\n", g.Black)
	fmt.Printf("  Winner:   %s\n", winnerLabel(*g))
	fmt.Printf("  Result:   %s (%s)\n", g.Result, g.EndReason)
	fmt.Printf("  Moves:    %d\n", g.Moves)
	fmt.Printf("  Duration: %ds\n", g.Duration)
	fmt.Printf("  Played:   %s\n", g.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("  Final:    %s\n", g.FinalPosition)
}

func winnerLabel(g storage.GameRecord) string {
	if w := g.Winner(); w != "" {
		return w
	}
	return "(draw)"
}
