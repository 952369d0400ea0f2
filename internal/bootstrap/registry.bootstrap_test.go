package bootstrap

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunRegistry(t *testing.T) {
	var out bytes.Buffer

	runRegistry(context.Background(), &out, "horizon.test", "", []string{"TOKEN_A", "TOKEN_B", "TOKEN_A", " "})

	expected := "Exchange created: Exchange{token: TOKEN_A, factory: Factory, server: horizon.test}\n" +
		"Exchange created: Exchange{token: TOKEN_B, factory: Factory, server: horizon.test}\n" +
		"Error: DuplicateToken: \"TOKEN_A\"\n" +
		"Error: InvalidToken: \" \"\n"
	assert.Equal(t, expected, out.String())
}

func TestRunRegistry_FactoryLabel(t *testing.T) {
	var out bytes.Buffer

	runRegistry(context.Background(), &out, "horizon.test", "Derivex", []string{"TOKEN_A"})

	assert.Equal(t, "Exchange created: Exchange{token: TOKEN_A, factory: Derivex, server: horizon.test}\n", out.String())
}

func TestRunCleanup(t *testing.T) {
	done := make(chan string, 2)

	runCleanup(context.Background(), map[string]operation{
		"first": func(ctx context.Context) error {
			done <- "first"
			return nil
		},
		"second": func(ctx context.Context) error {
			done <- "second"
			return assert.AnError
		},
	})

	close(done)
	var names []string
	for name := range done {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{"first", "second"}, names)
}

func TestRunMigration_InvalidAction(t *testing.T) {
	err := runMigration(nil, "migration/postgresql/derivex", "sideways", "", 0)
	assert.ErrorIs(t, err, errInvalidMigrateAction)
}
