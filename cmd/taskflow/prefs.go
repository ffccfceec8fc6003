package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/domain"
)

var (
	languageFlag string
	themeFlag    string
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change language and theme",
	Run:   managePrefs,
}

func init() {
	prefsCmd.Flags().StringVar(&languageFlag, "language", "", "Notification language: ar or en")
	prefsCmd.Flags().StringVar(&themeFlag, "theme", "", "Theme: light or dark")
}

func managePrefs(cmd *cobra.Command, args []string) {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		fatal("%v", err)
	}

	prefs := ws.Preferences.Get()
	if languageFlag != "" || themeFlag != "" {
		if languageFlag != "" {
			if prefs.Language, err = domain.ParseLanguage(languageFlag); err != nil {
				fatal("%v", err)
			}
		}
		if themeFlag != "" {
			if prefs.Theme, err = domain.ParseTheme(themeFlag); err != nil {
				fatal("%v", err)
			}
		}
		if err := ws.Preferences.Set(ctx, prefs); err != nil {
			fatal("%v", err)
		}
	}
	fmt.Printf("Language: %s\n", prefs.Language)
	fmt.Printf("Theme:    %s\n", prefs.Theme)
}
