//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// exerciseStores clears every store, builds twice and checks the status commands.
func exerciseStores(t *testing.T) {
	dir := t.TempDir()
	entities, activity := writeFixture(t, dir)

	for _, args := range [][]string{
		{"cache", "clear"},
		{"snapshot", "clear"},
		{"runs", "clear"},
		{"runs", "migrate"},
	} {
		_, err := runRepodex(t, dir, args...)
		require.NoError(t, err, args)
	}

	for range 2 {
		_, err := runRepodex(t, dir, "build", "--input", entities, "--activity", activity, "--min-tag-shard", "1")
		require.NoError(t, err)
	}

	out, err := runRepodex(t, dir, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Entries: 2")

	out, err = runRepodex(t, dir, "snapshot", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Entries: 3")

	out, err = runRepodex(t, dir, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")
}

// TestRepodexWithMySQL runs the store lifecycle against a MySQL backend.
func TestRepodexWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "repodex",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/repodex?parseTime=true&multiStatements=true", host, port.Port())
	for _, store := range []string{"CACHE", "SNAPSHOT", "RUNS"} {
		t.Setenv("REPODEX_"+store+"_BACKEND", "mysql")
		t.Setenv("REPODEX_"+store+"_DB_CONNECT", connStr)
	}

	exerciseStores(t)
}

// TestRepodexWithPostgres runs the store lifecycle against a PostgreSQL backend.
func TestRepodexWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	for _, store := range []string{"CACHE", "SNAPSHOT", "RUNS"} {
		t.Setenv("REPODEX_"+store+"_BACKEND", "postgresql")
		t.Setenv("REPODEX_"+store+"_DB_CONNECT", connStr)
	}

	exerciseStores(t)
}

// TestRepodexGraphPublish publishes the contributor graph into Neo4j twice.
func TestRepodexGraphPublish(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env:          map[string]string{"NEO4J_AUTH": "neo4j/secret1234"},
		WaitingFor:   wait.ForLog("Started.").WithStartupTimeout(90 * time.Second),
	}
	neoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = neoC.Terminate(ctx) }()

	host, err := neoC.Host(ctx)
	require.NoError(t, err)
	port, err := neoC.MappedPort(ctx, "7687")
	require.NoError(t, err)

	dir := t.TempDir()
	entities, activity := writeFixture(t, dir)
	t.Setenv("REPODEX_CACHE_BACKEND", "none")
	t.Setenv("REPODEX_SNAPSHOT_BACKEND", "none")
	_, err = runRepodex(t, dir, "build", "--input", entities, "--activity", activity)
	require.NoError(t, err)

	t.Setenv("REPODEX_GRAPH_PASSWORD", "secret1234")
	uri := fmt.Sprintf("bolt://%s:%s", host, port.Port())
	for range 2 {
		_, err = runRepodex(t, dir, "graph", "--publish", "--graph-uri", uri)
		require.NoError(t, err)
	}
}
