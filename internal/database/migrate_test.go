package database

import (
	"io"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readUp(t *testing.T, version uint) string {
	t.Helper()
	source, err := iofs.New(embeddedMigrations, "migrations")
	require.NoError(t, err)
	defer source.Close()

	body, _, err := source.ReadUp(version)
	require.NoError(t, err)
	defer body.Close()

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	return string(raw)
}

func TestEmbeddedMigrationsAreSequential(t *testing.T) {
	source, err := iofs.New(embeddedMigrations, "migrations")
	require.NoError(t, err)
	defer source.Close()

	version, err := source.First()
	require.NoError(t, err)

	versions := []uint{version}
	for {
		next, err := source.Next(version)
		if err != nil {
			break
		}
		versions = append(versions, next)
		version = next
	}

	assert.Equal(t, []uint{1, 2, 3}, versions)
}

func TestPaidAmountColumnIsUnscaled(t *testing.T) {
	// Un total como 1 x 9.99 al 5.5% vale 10.53945; NUMERIC(18,4) lo guardaría como 10.5395
	up := readUp(t, 3)
	assert.Contains(t, up, "ALTER COLUMN paid_amount TYPE NUMERIC;")
	assert.NotContains(t, strings.ToUpper(up), "NUMERIC(")
}
