package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roamkit/tripscope/internal/utils"
)

var cacheDBPath string

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the source cache and blacklist",
}

// cacheListCmd represents the cache list command
var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known sources with cache and blacklist status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cacheDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		statuses, err := db.List(context.Background())
		if err != nil {
			return err
		}
		if len(statuses) == 0 {
			fmt.Println("The cache is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tPLACES\tFETCHED\tFRESH\tBLOCKED\tREASON\t")
		for _, s := range statuses {
			fetched := ""
			if !s.FetchedAt.IsZero() {
				fetched = s.FetchedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%v\t%v\t%s\t\n",
				s.Key, s.PayloadCount, fetched, s.Fresh, s.Blacklisted, s.Reason)
		}
		return w.Flush()
	},
}

// cacheStatsCmd represents the cache stats command
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache and blacklist statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cacheDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "CACHED\tFRESH\tBLOCKED\t")
		fmt.Fprintf(w, "%d\t%d\t%d\t\n", stats.Cached, stats.Fresh, stats.Blocked)
		return w.Flush()
	},
}

// cacheClearCmd represents the cache clear command
var cacheClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Remove one cached source, or everything with --all",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return fmt.Errorf("provide a source key or use --all")
		}

		lock, err := utils.NewDBLock(cacheDBPath)
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		db, err := openStore(cacheDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if all {
			if err := db.Purge(context.Background()); err != nil {
				return err
			}
			fmt.Println("Cache cleared.")
			return nil
		}
		if err := db.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s from the cache.\n", args[0])
		return nil
	},
}

// cacheUnblockCmd represents the cache unblock command
var cacheUnblockCmd = &cobra.Command{
	Use:   "unblock <key>",
	Short: "Lift the blacklist cooldown for a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cacheDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Clear(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Unblocked %s.\n", args[0])
		return nil
	},
}

// cacheShellCmd represents the cache shell command
var cacheShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the cache database",
	RunE: func(cmd *cobra.Command, args []string) error {
		absPath, err := utils.GetAbsDBPath(cacheDBPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", absPath)
		}

		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the cache shell")
		}

		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, absPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, absPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheUnblockCmd)
	cacheCmd.AddCommand(cacheShellCmd)
	cacheCmd.PersistentFlags().StringVar(&cacheDBPath, "dbpath", "", "Path to SQLite cache file (default ~/.config/tripscope/tripscope.sqlite)")

	cacheClearCmd.Flags().Bool("all", false, "Remove every cached source and blacklist entry")
}
