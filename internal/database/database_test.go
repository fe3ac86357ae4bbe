package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	db, err := Connect("sqlite:file:database_migrate?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, model := range []interface{}{&models.Criterion{}, &models.Answer{}, &models.ActivityLog{}} {
		require.True(t, db.Migrator().HasTable(model))
	}
	require.True(t, db.Migrator().HasIndex(&models.Answer{}, "idx_answers_natural_key"))
}

func TestConnectRejectsEmptyURLs(t *testing.T) {
	_, err := Connect("")
	require.Error(t, err)

	_, err = Connect("sqlite:")
	require.Error(t, err)

	_, err = ConnectRedis("")
	require.Error(t, err)

	_, err = ConnectNATS("", "spk")
	require.Error(t, err)
}
