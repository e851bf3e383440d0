// edconnectctl 离线运维工具：迁移、导入组织数据、脱敏预览
//
// 用法:
//
//	go run ./cmd/edconnectctl migrate
//	go run ./cmd/edconnectctl seed --file configs/seed.yaml
//	echo "I'm Jane Doe" | go run ./cmd/edconnectctl redact --name "Jane Doe"
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "edconnectctl",
	Short: "EdConnect maintenance commands",
	Long: `Maintenance commands for the EdConnect backend.

Available subcommands:
  migrate - Create or update the database schema
  seed    - Load districts, schools, departments and accounts from YAML
  redact  - Print text as it would be sent to the AI tutor`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")
	rootCmd.AddCommand(migrateCmd, seedCmd, redactCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
