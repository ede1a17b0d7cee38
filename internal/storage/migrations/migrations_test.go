package migrations

import (
	"context"
	"embed"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `
-- comment; with semicolon
CREATE TABLE a (x INTEGER);

CREATE INDEX i ON a (x);
`
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x INTEGER)", stmts[0])
	assert.Equal(t, "CREATE INDEX i ON a (x)", stmts[1])
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`INSERT INTO t VALUES ('it''s');`))
	assert.Error(t, validateNoSemicolonInStrings(`INSERT INTO t VALUES ('a;b');`))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		dir  string
		fsys embed.FS
		want string
	}{
		{"postgres", PostgresFS, "001_coins.sql"},
		{"sqlite", SQLiteFS, "001_coins.sql"},
		{"clickhouse", ClickhouseFS, "001_score_history.sql"},
	}
	for _, tt := range tests {
		files, err := load(tt.fsys, tt.dir)
		require.NoError(t, err)
		var names []string
		for _, m := range files {
			names = append(names, m.name)
			assert.NotEmpty(t, m.body)
		}
		assert.Contains(t, names, tt.want)
	}
}

func TestLoad_SortsAndSkipsBlank(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_b.sql":  {Data: []byte("CREATE TABLE b (x INTEGER);")},
		"m/001_a.sql":  {Data: []byte("CREATE TABLE a (x INTEGER);")},
		"m/003_c.sql":  {Data: []byte("  \n")},
		"m/README.txt": {Data: []byte("not sql")},
	}
	files, err := load(fsys, "m")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "001_a.sql", files[0].name)
	assert.Equal(t, "002_b.sql", files[1].name)
}

func TestApplyEach(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_a.sql": {Data: []byte("CREATE TABLE a (x INTEGER);\n-- note\nCREATE INDEX i ON a (x);")},
		"m/002_b.sql": {Data: []byte("CREATE TABLE b (x INTEGER);")},
	}

	var got []string
	err := applyEach(context.Background(), fsys, "m", func(_ context.Context, stmt string) error {
		got = append(got, stmt)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE a (x INTEGER)", "CREATE INDEX i ON a (x)", "CREATE TABLE b (x INTEGER)"}, got)

	err = applyEach(context.Background(), fsys, "m", func(_ context.Context, stmt string) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_a.sql")
}

func TestEmbeddedMigrationsSplit(t *testing.T) {
	for dir, fsys := range map[string]embed.FS{"sqlite": SQLiteFS, "clickhouse": ClickhouseFS} {
		files, err := load(fsys, dir)
		require.NoError(t, err)
		for _, m := range files {
			require.NoError(t, validateNoSemicolonInStrings(m.body), m.name)
			assert.NotEmpty(t, splitStatements(m.body), m.name)
		}
	}
}
