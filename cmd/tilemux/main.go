// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/tilemux/main.go
// Summary: tilemux entrypoint: loads config and profiles, runs the desktop.

package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tilemux/tilemux/apps/banner"
	"github.com/tilemux/tilemux/apps/clock"
	"github.com/tilemux/tilemux/apps/shell"
	"github.com/tilemux/tilemux/config"
	"github.com/tilemux/tilemux/tile"
)

var version = "dev"

var (
	flagProfile string
	flagLogFile string
)

var rootCmd = &cobra.Command{
	Use:   "tilemux",
	Short: "Terminal multiplexer with tiled panes",
	Long: `tilemux splits the terminal into a tree of panes, each hosting a shell
or a builtin. Panes split, resize, swap and close from a Ctrl+A command
mode; focus moves with Shift+arrows.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDesktop()
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configured profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := config.LoadProfiles()
		if err != nil {
			return err
		}
		for _, name := range config.ProfileNames(profiles) {
			p := profiles[name]
			target := p.Kind
			if p.Kind == "shell" {
				target = p.Command
				if target == "" {
					target = "$SHELL"
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-8s %s\n", name, p.Kind, target)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagProfile, "profile", "", "startup profile (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "append debug logs to this file")
	rootCmd.AddCommand(profilesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDesktop() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tilemux requires a terminal")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logs go to a file or nowhere; the tty belongs to the desktop.
	logPath := flagLogFile
	if logPath == "" {
		logPath = cfg.General.LogFile
	}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}
	log.Printf("tilemux %s starting", version)

	profiles, err := config.LoadProfiles()
	if err != nil {
		return err
	}
	name := flagProfile
	if name == "" {
		name = cfg.General.DefaultProfile
	}
	prof, ok := profiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q", name)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}

	lifecycle := &tile.LocalContentLifecycle{}
	limits := tile.Limits{
		MinWidth:   cfg.Pane.MinWidth,
		MinHeight:  cfg.Pane.MinHeight,
		ResizeStep: cfg.Pane.ResizeStep,
	}

	desktop, err := tile.NewDesktop(tile.NewTcellScreenDriver(screen), newContentFactory(prof), lifecycle, limits)
	if err != nil {
		return err
	}
	defer desktop.Close()

	if err := desktop.Run(); err != nil {
		return err
	}
	lifecycle.Wait()
	log.Printf("tilemux stopped")
	return nil
}

// newContentFactory maps a profile onto the content constructor for its kind.
func newContentFactory(p config.Profile) tile.ContentFactory {
	return func() (tile.Content, error) {
		switch p.Kind {
		case "shell":
			return shell.New(p.Command, p.Args, p.Title, p.Scrollback, p.ID()), nil
		case "clock":
			return clock.New(p.ID()), nil
		case "banner":
			return banner.New(p.Title, p.ID()), nil
		default:
			return nil, fmt.Errorf("unknown profile kind %q", p.Kind)
		}
	}
}
