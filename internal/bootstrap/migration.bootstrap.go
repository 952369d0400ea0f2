package bootstrap

import (
	"database/sql"
	"errors"

	"github.com/guregu/null/v6"
	"github.com/krobus00/derivex-service/internal/config"
	"github.com/krobus00/derivex-service/internal/util"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var errInvalidMigrateAction = errors.New("invalid command")

func StartMigrate(cmd *cobra.Command, args []string) {
	databaseName, _ := cmd.Flags().GetString("databaseName")
	actionType, _ := cmd.Flags().GetString("action")
	migrationName, _ := cmd.Flags().GetString("name")
	version, _ := cmd.Flags().GetInt64("version")

	migrationDir := "migration/postgresql/" + databaseName

	db, err := sql.Open("postgres", config.Env.Database[databaseName].DSN)
	util.ContinueOrFatal(err)
	defer db.Close()

	err = goose.SetDialect("postgres")
	util.ContinueOrFatal(err)

	err = runMigration(db, migrationDir, actionType, migrationName, version)
	util.ContinueOrFatal(err)
}

func runMigration(db *sql.DB, migrationDir, actionType, migrationName string, version int64) error {
	switch actionType {
	case "create":
		return goose.Create(db, migrationDir, migrationName, "sql")
	case "up":
		return goose.Up(db, migrationDir, goose.WithAllowMissing())
	case "up-by-one":
		return goose.UpByOne(db, migrationDir, goose.WithAllowMissing())
	case "up-to":
		return goose.UpTo(db, migrationDir, null.IntFrom(version).Int64, goose.WithAllowMissing())
	case "down":
		return goose.Down(db, migrationDir, goose.WithAllowMissing())
	case "down-to":
		return goose.DownTo(db, migrationDir, null.IntFrom(version).Int64, goose.WithAllowMissing())
	case "status":
		return goose.Status(db, migrationDir)
	case "reset":
		if err := goose.Reset(db, migrationDir, goose.WithAllowMissing()); err != nil {
			return err
		}
		return goose.Up(db, migrationDir, goose.WithAllowMissing())
	default:
		return errInvalidMigrateAction
	}
}
