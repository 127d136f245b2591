package cmd

import (
	"github.com/spf13/cobra"
)

func newRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the keyword rule set",
		Long:  `List the configured keyword rules in precedence order with their tier.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rules, err := loadRuleSet(cfg)
			if err != nil {
				return err
			}

			renderRules(cmd.OutOrStdout(), rules)
			return nil
		},
	}
}
