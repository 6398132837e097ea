package cmd

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"boscoin.io/xcb/cmd/xcbtrace/common"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List the recorded sessions",
	Run: func(c *cobra.Command, args []string) {
		if err := listSessions(c); err != nil {
			common.PrintError(c, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func listSessions(c *cobra.Command) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := store.Sessions()
	if err != nil {
		return err
	}
	log.Debug("found sessions", "count", len(sessions))

	return flagFormat.Encode(sessions, c.OutOrStdout())
}

var rmCmd = &cobra.Command{
	Use:   "rm <session id>",
	Short: "Delete a recorded session",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		if err := removeSession(args[0]); err != nil {
			common.PrintError(c, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func removeSession(id string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Delete(id); err != nil {
		return err
	}
	log.Info("session deleted", "session", id)
	return nil
}

var exportCmd = &cobra.Command{
	Use:   "export <session id> <file>",
	Short: "Write a session to an archive file",
	Args:  cobra.ExactArgs(2),
	Run: func(c *cobra.Command, args []string) {
		if err := exportSession(args[0], args[1]); err != nil {
			common.PrintError(c, err)
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a session from an archive file",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		if err := importSession(c, args[0]); err != nil {
			common.PrintError(c, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func exportSession(id, path string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := store.Export(w, id); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	log.Info("session exported", "session", id, "file", path)
	return nil
}

func importSession(c *cobra.Command, path string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	session, err := store.Import(bufio.NewReader(f))
	if err != nil {
		return err
	}
	log.Info("session imported", "session", session.ID, "file", path)
	return flagFormat.Encode(session, c.OutOrStdout())
}
