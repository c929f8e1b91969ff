package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huanfeng/androidgen-cli/internal/i18n"
)

// applyCommandLocalization updates command and flag descriptions after i18n is initialized.
func applyCommandLocalization() {
	rootCmd.Short = i18n.T("cmd.root.short")
	rootCmd.Long = i18n.T("cmd.root.long")

	for _, name := range []string{"config", "verbose", "debug", "log-file", "no-color", "lang"} {
		if flag := rootCmd.PersistentFlags().Lookup(name); flag != nil {
			flag.Usage = i18n.T("flags." + name)
		}
	}

	localize(registerCmd, "register")
	localize(generateCmd, "generate")
	localize(deployCmd, "deploy")
	localize(sdkCmd, "sdk")
	localize(sdkListCmd, "sdk.list")
	localize(sdkInstallCmd, "sdk.install")
	localize(sdkLicensesCmd, "sdk.licenses")
	localize(doctorCmd, "doctor")
	localize(versionCmd, "version")
	localize(configCmd, "config")
	localize(configInitCmd, "config.init")
	localize(configShowCmd, "config.show")
}

// localize replaces the descriptions of cmd when the catalog has them; a missing message
// keeps the built-in English text
func localize(cmd *cobra.Command, id string) {
	if msg := i18n.T("cmd." + id + ".short"); msg != "cmd."+id+".short" {
		cmd.Short = msg
	}
	if msg := i18n.T("cmd." + id + ".long"); msg != "cmd."+id+".long" {
		cmd.Long = msg
	}
}
